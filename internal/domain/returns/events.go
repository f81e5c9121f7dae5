package returns

import (
	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
)

// AggregateTypeReturn is the aggregate type for returns
const AggregateTypeReturn = "Return"

// Event type constants for Return
const (
	EventTypeReturnRequested = "ReturnRequested"
	EventTypeReturnReceived  = "ReturnReceived"
	EventTypeReturnCanceled  = "ReturnCanceled"
)

// ReturnRequestedEvent is raised when a return is requested
type ReturnRequestedEvent struct {
	shared.BaseDomainEvent
	ReturnID     uuid.UUID         `json:"return_id"`
	OrderID      uuid.UUID         `json:"order_id"`
	RefundAmount valueobject.Money `json:"refund_amount"`
	ItemCount    int               `json:"item_count"`
}

// NewReturnRequestedEvent creates a new ReturnRequestedEvent
func NewReturnRequestedEvent(r *Return) *ReturnRequestedEvent {
	count := 0
	for _, it := range r.Items {
		count += it.Quantity
	}
	return &ReturnRequestedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReturnRequested, AggregateTypeReturn, r.ID),
		ReturnID:        r.ID,
		OrderID:         r.OrderID,
		RefundAmount:    r.RefundAmount,
		ItemCount:       count,
	}
}

// ReturnReceivedEvent is raised when returned goods arrive
type ReturnReceivedEvent struct {
	shared.BaseDomainEvent
	ReturnID     uuid.UUID         `json:"return_id"`
	OrderID      uuid.UUID         `json:"order_id"`
	RefundAmount valueobject.Money `json:"refund_amount"`
}

// NewReturnReceivedEvent creates a new ReturnReceivedEvent
func NewReturnReceivedEvent(r *Return) *ReturnReceivedEvent {
	return &ReturnReceivedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReturnReceived, AggregateTypeReturn, r.ID),
		ReturnID:        r.ID,
		OrderID:         r.OrderID,
		RefundAmount:    r.RefundAmount,
	}
}

// ReturnCanceledEvent is raised when a return is canceled
type ReturnCanceledEvent struct {
	shared.BaseDomainEvent
	ReturnID uuid.UUID `json:"return_id"`
	OrderID  uuid.UUID `json:"order_id"`
}

// NewReturnCanceledEvent creates a new ReturnCanceledEvent
func NewReturnCanceledEvent(r *Return) *ReturnCanceledEvent {
	return &ReturnCanceledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReturnCanceled, AggregateTypeReturn, r.ID),
		ReturnID:        r.ID,
		OrderID:         r.OrderID,
	}
}
