package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/fulfillment"
	"github.com/storefront/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormFulfillmentRepository implements fulfillment.FulfillmentRepository using GORM
type GormFulfillmentRepository struct {
	db *gorm.DB
}

// NewGormFulfillmentRepository creates a new GormFulfillmentRepository
func NewGormFulfillmentRepository(db *gorm.DB) *GormFulfillmentRepository {
	return &GormFulfillmentRepository{db: db}
}

var _ fulfillment.FulfillmentRepository = (*GormFulfillmentRepository)(nil)

// FindByID finds a fulfillment by its ID
func (r *GormFulfillmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*fulfillment.Fulfillment, error) {
	var m models.FulfillmentModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, translateError(err, "fulfillment")
	}
	return m.ToDomain(), nil
}

// FindByOrder lists outbound and return fulfillments of the order, oldest first
func (r *GormFulfillmentRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]fulfillment.Fulfillment, error) {
	return r.find(r.db.WithContext(ctx).Where("order_id = ?", orderID))
}

// FindByReturn lists the return fulfillments of a return, oldest first
func (r *GormFulfillmentRepository) FindByReturn(ctx context.Context, returnID uuid.UUID) ([]fulfillment.Fulfillment, error) {
	return r.find(r.db.WithContext(ctx).Where("return_id = ?", returnID))
}

func (r *GormFulfillmentRepository) find(query *gorm.DB) ([]fulfillment.Fulfillment, error) {
	var rows []models.FulfillmentModel
	if err := query.Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, translateError(err, "fulfillment")
	}
	out := make([]fulfillment.Fulfillment, 0, len(rows))
	for i := range rows {
		out = append(out, *rows[i].ToDomain())
	}
	return out, nil
}

// Save creates or updates a fulfillment
func (r *GormFulfillmentRepository) Save(ctx context.Context, f *fulfillment.Fulfillment) error {
	var m models.FulfillmentModel
	m.FromDomain(f)
	return translateError(r.db.WithContext(ctx).Save(&m).Error, "fulfillment")
}
