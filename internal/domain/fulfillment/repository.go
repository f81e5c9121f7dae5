package fulfillment

import (
	"context"

	"github.com/google/uuid"
)

// FulfillmentRepository defines the interface for fulfillment persistence
type FulfillmentRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Fulfillment, error)

	// FindByOrder lists outbound and return fulfillments of the order, oldest first
	FindByOrder(ctx context.Context, orderID uuid.UUID) ([]Fulfillment, error)

	// FindByReturn lists the return fulfillments of a return, oldest first
	FindByReturn(ctx context.Context, returnID uuid.UUID) ([]Fulfillment, error)

	Save(ctx context.Context, f *Fulfillment) error
}
