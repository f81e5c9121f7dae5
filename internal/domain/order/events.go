package order

import (
	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
)

// AggregateTypeOrder is the aggregate type for orders
const AggregateTypeOrder = "Order"

// Event type constants for Order
const (
	EventTypeOrderPlaced   = "OrderPlaced"
	EventTypeOrderCanceled = "OrderCanceled"
	EventTypeOrderShipped  = "OrderShipped"
)

// OrderPlacedEvent is raised when checkout produced an order
type OrderPlacedEvent struct {
	shared.BaseDomainEvent
	OrderID    uuid.UUID         `json:"order_id"`
	DisplayID  int64             `json:"display_id"`
	CustomerID *uuid.UUID        `json:"customer_id,omitempty"`
	Email      string            `json:"email"`
	Total      valueobject.Money `json:"total"`
	ItemCount  int               `json:"item_count"`
}

// NewOrderPlacedEvent creates a new OrderPlacedEvent
func NewOrderPlacedEvent(o *Order) *OrderPlacedEvent {
	count := 0
	for _, li := range o.Items {
		count += li.Quantity
	}
	return &OrderPlacedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderPlaced, AggregateTypeOrder, o.ID),
		OrderID:         o.ID,
		DisplayID:       o.DisplayID,
		CustomerID:      o.CustomerID,
		Email:           o.Email,
		Total:           o.Total,
		ItemCount:       count,
	}
}

// OrderCanceledEvent is raised when an order is canceled
type OrderCanceledEvent struct {
	shared.BaseDomainEvent
	OrderID       uuid.UUID     `json:"order_id"`
	DisplayID     int64         `json:"display_id"`
	Email         string        `json:"email"`
	PaymentStatus PaymentStatus `json:"payment_status"`
}

// NewOrderCanceledEvent creates a new OrderCanceledEvent
func NewOrderCanceledEvent(o *Order) *OrderCanceledEvent {
	return &OrderCanceledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderCanceled, AggregateTypeOrder, o.ID),
		OrderID:         o.ID,
		DisplayID:       o.DisplayID,
		Email:           o.Email,
		PaymentStatus:   o.PaymentStatus,
	}
}

// OrderShippedEvent is raised when a shipment is registered
type OrderShippedEvent struct {
	shared.BaseDomainEvent
	OrderID        uuid.UUID `json:"order_id"`
	DisplayID      int64     `json:"display_id"`
	FulfillmentID  uuid.UUID `json:"fulfillment_id"`
	Email          string    `json:"email"`
	TrackingNumber string    `json:"tracking_number,omitempty"`
	TrackingURL    string    `json:"tracking_url,omitempty"`
}

// NewOrderShippedEvent creates a new OrderShippedEvent
func NewOrderShippedEvent(o *Order, fulfillmentID uuid.UUID, trackingNumber, trackingURL string) *OrderShippedEvent {
	return &OrderShippedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderShipped, AggregateTypeOrder, o.ID),
		OrderID:         o.ID,
		DisplayID:       o.DisplayID,
		FulfillmentID:   fulfillmentID,
		Email:           o.Email,
		TrackingNumber:  trackingNumber,
		TrackingURL:     trackingURL,
	}
}
