package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/wishlist"
	"github.com/storefront/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormWishlistRepository implements wishlist.WishlistRepository using GORM
type GormWishlistRepository struct {
	db *gorm.DB
}

// NewGormWishlistRepository creates a new GormWishlistRepository
func NewGormWishlistRepository(db *gorm.DB) *GormWishlistRepository {
	return &GormWishlistRepository{db: db}
}

var _ wishlist.WishlistRepository = (*GormWishlistRepository)(nil)

// FindByCustomer returns the customer's wishlist with items in insertion order
func (r *GormWishlistRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID) (*wishlist.Wishlist, error) {
	var m models.WishlistModel
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		First(&m, "customer_id = ?", customerID).Error
	if err != nil {
		return nil, translateError(err, "wishlist")
	}
	return m.ToDomain(), nil
}

// Save persists the wishlist and replaces its items
func (r *GormWishlistRepository) Save(ctx context.Context, w *wishlist.Wishlist) error {
	var m models.WishlistModel
	m.FromDomain(w)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(&m).Error; err != nil {
			return err
		}
		ids := make([]uuid.UUID, len(m.Items))
		for i, it := range m.Items {
			ids[i] = it.ID
		}
		if err := replaceChildren(tx, &models.WishlistItemModel{}, "wishlist_id", m.ID, ids); err != nil {
			return err
		}
		for i := range m.Items {
			if err := tx.Save(&m.Items[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	return translateError(err, "wishlist item")
}
