package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormProductRepository implements catalog.ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

var _ catalog.ProductRepository = (*GormProductRepository)(nil)

func (r *GormProductRepository) withVariants(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Variants", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, sku ASC")
		}).
		Where("deleted_at IS NULL")
}

// FindByID finds a product by its ID
func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	var m models.ProductModel
	if err := r.withVariants(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, translateError(err, "product")
	}
	return m.ToDomain(), nil
}

// FindByHandle finds a product by its handle
func (r *GormProductRepository) FindByHandle(ctx context.Context, handle string) (*catalog.Product, error) {
	var m models.ProductModel
	if err := r.withVariants(ctx).First(&m, "handle = ?", handle).Error; err != nil {
		return nil, translateError(err, "product")
	}
	return m.ToDomain(), nil
}

// FindByVariantID returns the product owning the variant
func (r *GormProductRepository) FindByVariantID(ctx context.Context, variantID uuid.UUID) (*catalog.Product, error) {
	var m models.ProductModel
	sub := r.db.Model(&models.VariantModel{}).Select("product_id").Where("id = ?", variantID)
	if err := r.withVariants(ctx).First(&m, "id IN (?)", sub).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewDomainError(shared.ErrNotFound.Code, "variant not found")
		}
		return nil, translateError(err, "product")
	}
	return m.ToDomain(), nil
}

// FindAll lists non-deleted products with filtering and pagination
func (r *GormProductRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Product, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.ProductModel{}).Where("deleted_at IS NULL")
	if filter.Search != "" {
		p := likePattern(filter.Search)
		query = query.Where(`LOWER(title) LIKE ? ESCAPE '\' OR LOWER(handle) LIKE ? ESCAPE '\'`, p, p)
	}
	if status, ok := filter.Filters["status"]; ok && status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, translateError(err, "product")
	}

	var rows []models.ProductModel
	err := paginate(query, filter).
		Preload("Variants", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, sku ASC")
		}).
		Order(orderClause(filter.OrderBy, filter.OrderDir, ProductSortFields, "created_at")).
		Find(&rows).Error
	if err != nil {
		return nil, 0, translateError(err, "product")
	}

	products := make([]catalog.Product, 0, len(rows))
	for i := range rows {
		products = append(products, *rows[i].ToDomain())
	}
	return products, total, nil
}

// Save creates or updates a product and replaces its variants
func (r *GormProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	m := models.ProductModelFromDomain(product)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(m).Error; err != nil {
			return err
		}

		ids := make([]uuid.UUID, len(m.Variants))
		for i, v := range m.Variants {
			ids[i] = v.ID
		}
		if err := replaceChildren(tx, &models.VariantModel{}, "product_id", m.ID, ids); err != nil {
			return err
		}
		for i := range m.Variants {
			if err := tx.Save(&m.Variants[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	return translateError(err, "product")
}

// ExistsByHandle checks handle uniqueness, excluding the given product
func (r *GormProductRepository) ExistsByHandle(ctx context.Context, handle string, excludeID uuid.UUID) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.ProductModel{}).Where("handle = ?", handle)
	if excludeID != uuid.Nil {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, translateError(err, "product")
	}
	return count > 0, nil
}

// AdjustInventory adds delta to a managed variant's stock in a single guarded UPDATE
func (r *GormProductRepository) AdjustInventory(ctx context.Context, variantID uuid.UUID, delta int) error {
	db := r.db.WithContext(ctx)
	result := db.Model(&models.VariantModel{}).
		Where("id = ? AND manage_inventory = ? AND inventory_quantity + ? >= 0", variantID, true, delta).
		Update("inventory_quantity", gorm.Expr("inventory_quantity + ?", delta))
	if result.Error != nil {
		return translateError(result.Error, "variant")
	}
	if result.RowsAffected > 0 {
		return nil
	}

	var v models.VariantModel
	if err := db.Select("id", "manage_inventory", "inventory_quantity").First(&v, "id = ?", variantID).Error; err != nil {
		return translateError(err, "variant")
	}
	if !v.ManageInventory {
		return nil
	}
	return shared.NewDomainError(shared.ErrInsufficientStock.Code, "insufficient stock for "+v.ID.String())
}
