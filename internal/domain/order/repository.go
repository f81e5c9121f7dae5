package order

import (
	"context"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// OrderRepository defines the interface for order persistence
type OrderRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// FindByCartID returns the order created from the cart, if any
	FindByCartID(ctx context.Context, cartID uuid.UUID) (*Order, error)

	// FindAll lists orders. Filter.Search matches email or display id.
	FindAll(ctx context.Context, filter shared.Filter) ([]Order, int64, error)

	FindByCustomer(ctx context.Context, customerID uuid.UUID, filter shared.Filter) ([]Order, int64, error)

	// Save persists the order. A second order for the same cart fails with ALREADY_EXISTS.
	Save(ctx context.Context, order *Order) error

	// NextDisplayID allocates the next sequential display id
	NextDisplayID(ctx context.Context) (int64, error)
}
