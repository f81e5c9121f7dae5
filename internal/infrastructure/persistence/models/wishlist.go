package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/wishlist"
)

// WishlistModel is the persistence model for the Wishlist aggregate
type WishlistModel struct {
	AggregateModel
	CustomerID uuid.UUID           `gorm:"type:uuid;not null;uniqueIndex"`
	Items      []WishlistItemModel `gorm:"foreignKey:WishlistID;references:ID"`
}

// TableName returns the table name for GORM
func (WishlistModel) TableName() string {
	return "wishlists"
}

// WishlistItemModel is a saved variant; (wishlist_id, variant_id) is unique
type WishlistItemModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	WishlistID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_wishlist_items_variant,priority:1"`
	VariantID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_wishlist_items_variant,priority:2"`
	Position   int       `gorm:"not null;default:0"`
	CreatedAt  time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (WishlistItemModel) TableName() string {
	return "wishlist_items"
}

// ToDomain converts the persistence model to a domain Wishlist
func (m *WishlistModel) ToDomain() *wishlist.Wishlist {
	w := &wishlist.Wishlist{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		CustomerID:        m.CustomerID,
		Items:             make([]wishlist.Item, 0, len(m.Items)),
	}
	for _, it := range m.Items {
		w.Items = append(w.Items, wishlist.Item{ID: it.ID, VariantID: it.VariantID, CreatedAt: it.CreatedAt})
	}
	return w
}

// FromDomain populates the persistence model from a domain Wishlist
func (m *WishlistModel) FromDomain(w *wishlist.Wishlist) {
	m.FromDomainAggregateRoot(w.BaseAggregateRoot)
	m.CustomerID = w.CustomerID
	m.Items = make([]WishlistItemModel, 0, len(w.Items))
	for i, it := range w.Items {
		m.Items = append(m.Items, WishlistItemModel{
			ID:         it.ID,
			WishlistID: w.ID,
			VariantID:  it.VariantID,
			Position:   i,
			CreatedAt:  it.CreatedAt,
		})
	}
}
