package persistence

import (
	"context"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const orderDisplayIDSequence = "orders_display_id_seq"

// GormOrderRepository implements order.OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

var _ order.OrderRepository = (*GormOrderRepository)(nil)

func preloadOrderItems(db *gorm.DB) *gorm.DB {
	return db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	})
}

// FindByID finds an order by its ID
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	var m models.OrderModel
	if err := preloadOrderItems(r.db.WithContext(ctx)).First(&m, "id = ?", id).Error; err != nil {
		return nil, translateError(err, "order")
	}
	return m.ToDomain(), nil
}

// FindByCartID returns the order created from the cart
func (r *GormOrderRepository) FindByCartID(ctx context.Context, cartID uuid.UUID) (*order.Order, error) {
	var m models.OrderModel
	if err := preloadOrderItems(r.db.WithContext(ctx)).First(&m, "cart_id = ?", cartID).Error; err != nil {
		return nil, translateError(err, "order")
	}
	return m.ToDomain(), nil
}

// FindAll lists orders. A numeric search also matches the display id.
func (r *GormOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]order.Order, int64, error) {
	return r.list(r.applyFilter(r.db.WithContext(ctx).Model(&models.OrderModel{}), filter), filter)
}

// FindByCustomer lists a customer's orders
func (r *GormOrderRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID, filter shared.Filter) ([]order.Order, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.OrderModel{}).Where("customer_id = ?", customerID)
	return r.list(r.applyFilter(query, filter), filter)
}

func (r *GormOrderRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if s := strings.TrimSpace(filter.Search); s != "" {
		if id, err := strconv.ParseInt(strings.TrimPrefix(s, "#"), 10, 64); err == nil {
			query = query.Where(`LOWER(email) LIKE ? ESCAPE '\' OR display_id = ?`, likePattern(s), id)
		} else {
			query = query.Where(`LOWER(email) LIKE ? ESCAPE '\'`, likePattern(s))
		}
	}
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "payment_status":
			query = query.Where("payment_status = ?", value)
		case "fulfillment_status":
			query = query.Where("fulfillment_status = ?", value)
		}
	}
	return query
}

func (r *GormOrderRepository) list(query *gorm.DB, filter shared.Filter) ([]order.Order, int64, error) {
	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, translateError(err, "order")
	}

	var rows []models.OrderModel
	err := preloadOrderItems(paginate(query, filter)).
		Order(orderClause(filter.OrderBy, filter.OrderDir, OrderSortFields, "created_at")).
		Find(&rows).Error
	if err != nil {
		return nil, 0, translateError(err, "order")
	}

	orders := make([]order.Order, 0, len(rows))
	for i := range rows {
		orders = append(orders, *rows[i].ToDomain())
	}
	return orders, total, nil
}

// Save persists the order. The unique cart_id index rejects a second order for a cart.
func (r *GormOrderRepository) Save(ctx context.Context, o *order.Order) error {
	var m models.OrderModel
	m.FromDomain(o)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(&m).Error; err != nil {
			return err
		}
		ids := make([]uuid.UUID, len(m.Items))
		for i, li := range m.Items {
			ids[i] = li.ID
		}
		if err := replaceChildren(tx, &models.OrderLineItemModel{}, "order_id", m.ID, ids); err != nil {
			return err
		}
		for i := range m.Items {
			if err := tx.Save(&m.Items[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	return translateError(err, "order")
}

// NextDisplayID allocates the next sequential display id
func (r *GormOrderRepository) NextDisplayID(ctx context.Context) (int64, error) {
	id, err := nextSequenceValue(r.db.WithContext(ctx), orderDisplayIDSequence, "orders")
	if err != nil {
		return 0, translateError(err, "order")
	}
	return id, nil
}
