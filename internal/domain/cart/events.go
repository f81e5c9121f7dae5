package cart

import (
	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// AggregateTypeCart is the aggregate type for carts
const AggregateTypeCart = "Cart"

// EventTypeCartCompleted is published once a cart became an order
const EventTypeCartCompleted = "CartCompleted"

// CartCompletedEvent is raised when checkout finishes
type CartCompletedEvent struct {
	shared.BaseDomainEvent
	CartID  uuid.UUID `json:"cart_id"`
	OrderID uuid.UUID `json:"order_id"`
}

// NewCartCompletedEvent creates a new CartCompletedEvent
func NewCartCompletedEvent(c *Cart, orderID uuid.UUID) *CartCompletedEvent {
	return &CartCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCartCompleted, AggregateTypeCart, c.ID),
		CartID:          c.ID,
		OrderID:         orderID,
	}
}
