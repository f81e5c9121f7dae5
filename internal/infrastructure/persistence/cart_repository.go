package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormCartRepository implements cart.CartRepository using GORM
type GormCartRepository struct {
	db *gorm.DB
}

// NewGormCartRepository creates a new GormCartRepository
func NewGormCartRepository(db *gorm.DB) *GormCartRepository {
	return &GormCartRepository{db: db}
}

var _ cart.CartRepository = (*GormCartRepository)(nil)

func (r *GormCartRepository) withItems(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	})
}

// FindByID finds a cart by its ID
func (r *GormCartRepository) FindByID(ctx context.Context, id uuid.UUID) (*cart.Cart, error) {
	var m models.CartModel
	if err := r.withItems(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, translateError(err, "cart")
	}
	return m.ToDomain(), nil
}

// FindByPaymentIntentID resolves the cart behind a Stripe payment intent
func (r *GormCartRepository) FindByPaymentIntentID(ctx context.Context, paymentIntentID string) (*cart.Cart, error) {
	var m models.CartModel
	if err := r.withItems(ctx).First(&m, "payment_intent_id = ?", paymentIntentID).Error; err != nil {
		return nil, translateError(err, "cart")
	}
	return m.ToDomain(), nil
}

// Save persists the cart with its line items, replacing existing lines
func (r *GormCartRepository) Save(ctx context.Context, c *cart.Cart) error {
	var m models.CartModel
	m.FromDomain(c)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(&m).Error; err != nil {
			return err
		}
		ids := make([]uuid.UUID, len(m.Items))
		for i, li := range m.Items {
			ids[i] = li.ID
		}
		if err := replaceChildren(tx, &models.CartLineItemModel{}, "cart_id", m.ID, ids); err != nil {
			return err
		}
		for i := range m.Items {
			if err := tx.Save(&m.Items[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	return translateError(err, "cart")
}
