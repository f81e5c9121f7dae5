package wishlist

import (
	"context"

	"github.com/google/uuid"
)

// WishlistRepository defines the interface for wishlist persistence
type WishlistRepository interface {
	// FindByCustomer returns the customer's wishlist or ErrNotFound
	FindByCustomer(ctx context.Context, customerID uuid.UUID) (*Wishlist, error)

	// Save persists the wishlist and replaces its items
	Save(ctx context.Context, w *Wishlist) error
}
