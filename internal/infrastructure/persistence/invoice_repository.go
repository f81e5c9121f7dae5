package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/invoice"
	"github.com/storefront/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// invoiceNumberLock is the advisory lock key that serializes invoice numbering
const invoiceNumberLock = 7210001

// GormInvoiceConfigRepository implements invoice.ConfigRepository using GORM
type GormInvoiceConfigRepository struct {
	db *gorm.DB
}

// NewGormInvoiceConfigRepository creates a new GormInvoiceConfigRepository
func NewGormInvoiceConfigRepository(db *gorm.DB) *GormInvoiceConfigRepository {
	return &GormInvoiceConfigRepository{db: db}
}

var _ invoice.ConfigRepository = (*GormInvoiceConfigRepository)(nil)

// Get returns the oldest stored config row
func (r *GormInvoiceConfigRepository) Get(ctx context.Context) (*invoice.Config, error) {
	var m models.InvoiceConfigModel
	if err := r.db.WithContext(ctx).Order("created_at ASC").First(&m).Error; err != nil {
		return nil, translateError(err, "invoice config")
	}
	return m.ToDomain(), nil
}

// Save creates or updates the config
func (r *GormInvoiceConfigRepository) Save(ctx context.Context, c *invoice.Config) error {
	var m models.InvoiceConfigModel
	m.FromDomain(c)
	return translateError(r.db.WithContext(ctx).Save(&m).Error, "invoice config")
}

// GormInvoiceRepository implements invoice.InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

var _ invoice.InvoiceRepository = (*GormInvoiceRepository)(nil)

// FindLatestByOrder returns the order's newest invoice still marked latest
func (r *GormInvoiceRepository) FindLatestByOrder(ctx context.Context, orderID uuid.UUID) (*invoice.Invoice, error) {
	var m models.InvoiceModel
	err := r.db.WithContext(ctx).
		Where("order_id = ? AND status = ?", orderID, invoice.StatusLatest).
		Order("display_id DESC").
		First(&m).Error
	if err != nil {
		return nil, translateError(err, "invoice")
	}
	return m.ToDomain(), nil
}

// Save creates or updates an invoice
func (r *GormInvoiceRepository) Save(ctx context.Context, inv *invoice.Invoice) error {
	var m models.InvoiceModel
	m.FromDomain(inv)
	return translateError(r.db.WithContext(ctx).Save(&m).Error, "invoice")
}

// MarkStaleByOrder flags every latest invoice of the order as stale
func (r *GormInvoiceRepository) MarkStaleByOrder(ctx context.Context, orderID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.InvoiceModel{}).
		Where("order_id = ? AND status = ?", orderID, invoice.StatusLatest).
		Update("status", invoice.StatusStale)
	if result.Error != nil {
		return 0, translateError(result.Error, "invoice")
	}
	return result.RowsAffected, nil
}

// Issue numbers invoices as MAX+1 inside one transaction, so a failed
// produce or insert leaves no gap in the numbering
func (r *GormInvoiceRepository) Issue(ctx context.Context, orderID uuid.UUID, produce func(inv *invoice.Invoice) error) (*invoice.Invoice, error) {
	var (
		issued     *invoice.Invoice
		produceErr error
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if isPostgres(tx) {
			if err := tx.Exec("SELECT pg_advisory_xact_lock(?)", invoiceNumberLock).Error; err != nil {
				return err
			}
		}
		var next int64
		if err := tx.Raw("SELECT COALESCE(MAX(display_id), 0) + 1 FROM invoices").Scan(&next).Error; err != nil {
			return err
		}
		inv, err := invoice.NewInvoice(next, orderID)
		if err != nil {
			produceErr = err
			return err
		}
		if produceErr = produce(inv); produceErr != nil {
			return produceErr
		}
		var m models.InvoiceModel
		m.FromDomain(inv)
		if err := tx.Create(&m).Error; err != nil {
			return err
		}
		issued = inv
		return nil
	})
	if produceErr != nil {
		return nil, produceErr
	}
	if err != nil {
		return nil, translateError(err, "invoice")
	}
	return issued, nil
}
