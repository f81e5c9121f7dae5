package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/returns"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormReturnRepository implements returns.ReturnRepository using GORM
type GormReturnRepository struct {
	db *gorm.DB
}

// NewGormReturnRepository creates a new GormReturnRepository
func NewGormReturnRepository(db *gorm.DB) *GormReturnRepository {
	return &GormReturnRepository{db: db}
}

var _ returns.ReturnRepository = (*GormReturnRepository)(nil)

// FindByID finds a return by its ID
func (r *GormReturnRepository) FindByID(ctx context.Context, id uuid.UUID) (*returns.Return, error) {
	var m models.ReturnModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, translateError(err, "return")
	}
	return m.ToDomain(), nil
}

// FindAll lists returns, newest first by default
func (r *GormReturnRepository) FindAll(ctx context.Context, filter shared.Filter) ([]returns.Return, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.ReturnModel{})
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "order_id":
			query = query.Where("order_id = ?", value)
		}
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, translateError(err, "return")
	}

	var rows []models.ReturnModel
	err := paginate(query, filter).
		Order(orderClause(filter.OrderBy, filter.OrderDir, ReturnSortFields, "created_at")).
		Find(&rows).Error
	if err != nil {
		return nil, 0, translateError(err, "return")
	}
	out := make([]returns.Return, 0, len(rows))
	for i := range rows {
		out = append(out, *rows[i].ToDomain())
	}
	return out, total, nil
}

// FindByOrder lists every return of an order, oldest first
func (r *GormReturnRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]returns.Return, error) {
	var rows []models.ReturnModel
	if err := r.db.WithContext(ctx).Where("order_id = ?", orderID).Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, translateError(err, "return")
	}
	out := make([]returns.Return, 0, len(rows))
	for i := range rows {
		out = append(out, *rows[i].ToDomain())
	}
	return out, nil
}

// Save creates or updates a return
func (r *GormReturnRepository) Save(ctx context.Context, ret *returns.Return) error {
	var m models.ReturnModel
	m.FromDomain(ret)
	return translateError(r.db.WithContext(ctx).Save(&m).Error, "return")
}
