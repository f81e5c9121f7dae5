package cart

import (
	"context"

	"github.com/google/uuid"
)

// CartRepository defines the interface for cart persistence
type CartRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Cart, error)

	// FindByPaymentIntentID resolves the cart behind a Stripe payment intent
	FindByPaymentIntentID(ctx context.Context, paymentIntentID string) (*Cart, error)

	// Save persists the cart with its line items, replacing existing lines
	Save(ctx context.Context, cart *Cart) error
}
