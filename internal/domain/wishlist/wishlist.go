package wishlist

import (
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// Item is a saved variant
type Item struct {
	ID        uuid.UUID
	VariantID uuid.UUID
	CreatedAt time.Time
}

// Wishlist holds the variants a customer saved. There is one per customer.
type Wishlist struct {
	shared.BaseAggregateRoot
	CustomerID uuid.UUID
	Items      []Item
}

// NewWishlist creates an empty wishlist for the customer
func NewWishlist(customerID uuid.UUID) (*Wishlist, error) {
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	return &Wishlist{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		CustomerID:        customerID,
		Items:             make([]Item, 0),
	}, nil
}

// Contains reports whether the variant is already saved
func (w *Wishlist) Contains(variantID uuid.UUID) bool {
	for _, it := range w.Items {
		if it.VariantID == variantID {
			return true
		}
	}
	return false
}

// AddItem saves a variant. A variant can only be saved once.
func (w *Wishlist) AddItem(variantID uuid.UUID) (*Item, error) {
	if variantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_VARIANT", "Variant ID cannot be empty")
	}
	if w.Contains(variantID) {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Variant is already in the wishlist")
	}
	w.Items = append(w.Items, Item{
		ID:        uuid.New(),
		VariantID: variantID,
		CreatedAt: time.Now(),
	})
	w.Touch()
	w.IncrementVersion()
	return &w.Items[len(w.Items)-1], nil
}

// RemoveItem deletes a saved item by its id
func (w *Wishlist) RemoveItem(itemID uuid.UUID) error {
	for i := range w.Items {
		if w.Items[i].ID == itemID {
			w.Items = append(w.Items[:i], w.Items[i+1:]...)
			w.Touch()
			w.IncrementVersion()
			return nil
		}
	}
	return shared.NewDomainError("NOT_FOUND", "Wishlist item not found")
}

// VariantIDs returns saved variant ids in wishlist order
func (w *Wishlist) VariantIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(w.Items))
	for _, it := range w.Items {
		ids = append(ids, it.VariantID)
	}
	return ids
}

// Merge back-fills variants kept in browser storage while logged out
func (w *Wishlist) Merge(local []uuid.UUID, exists func(uuid.UUID) bool) MergeResult {
	result := Reconcile(w.VariantIDs(), local, exists)
	for _, id := range result.Added {
		// Reconcile guarantees the id is new and unique
		_, _ = w.AddItem(id)
	}
	return result
}
