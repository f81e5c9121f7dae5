package returns

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
)

// Status represents the status of a return
type Status string

const (
	StatusRequested Status = "requested"
	StatusReceived  Status = "received"
	StatusCanceled  Status = "canceled"
)

// IsValid checks if the status is a valid return status
func (s Status) IsValid() bool {
	switch s {
	case StatusRequested, StatusReceived, StatusCanceled:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s Status) CanTransitionTo(target Status) bool {
	switch s {
	case StatusRequested:
		return target == StatusReceived || target == StatusCanceled
	case StatusReceived, StatusCanceled:
		return false // Terminal states
	}
	return false
}

// Item is an order line being sent back
type Item struct {
	LineItemID uuid.UUID `json:"line_item_id"`
	Quantity   int       `json:"quantity"`
	Reason     string    `json:"reason,omitempty"`
	Note       string    `json:"note,omitempty"`
}

// Return is the aggregate root for a customer return
type Return struct {
	shared.BaseAggregateRoot
	OrderID      uuid.UUID
	Items        []Item
	Status       Status
	RefundAmount valueobject.Money
	Note         string
	ReceivedAt   *time.Time
	CanceledAt   *time.Time
}

// NewReturn creates a requested return. Quantities per line are merged.
func NewReturn(orderID uuid.UUID, items []Item, refundAmount valueobject.Money, note string) (*Return, error) {
	if orderID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORDER", "Order ID cannot be empty")
	}
	if len(items) == 0 {
		return nil, shared.NewDomainError("INVALID_ITEMS", "Return must contain at least one item")
	}
	if refundAmount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Refund amount cannot be negative")
	}

	merged := make([]Item, 0, len(items))
	index := make(map[uuid.UUID]int, len(items))
	for _, it := range items {
		if it.Quantity <= 0 {
			return nil, shared.NewDomainError("INVALID_QUANTITY", "Return quantity must be greater than zero")
		}
		if i, ok := index[it.LineItemID]; ok {
			merged[i].Quantity += it.Quantity
			continue
		}
		it.Reason = strings.TrimSpace(it.Reason)
		index[it.LineItemID] = len(merged)
		merged = append(merged, it)
	}

	r := &Return{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderID:           orderID,
		Items:             merged,
		Status:            StatusRequested,
		RefundAmount:      refundAmount,
		Note:              strings.TrimSpace(note),
	}
	r.AddDomainEvent(NewReturnRequestedEvent(r))
	return r, nil
}

func (r *Return) transition(target Status) error {
	if !r.Status.CanTransitionTo(target) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot move return from %s to %s", r.Status, target))
	}
	r.Status = target
	r.Touch()
	r.IncrementVersion()
	return nil
}

// Receive marks the returned goods as arrived
func (r *Return) Receive() error {
	if err := r.transition(StatusReceived); err != nil {
		return err
	}
	now := time.Now()
	r.ReceivedAt = &now
	r.AddDomainEvent(NewReturnReceivedEvent(r))
	return nil
}

// Cancel cancels a requested return
func (r *Return) Cancel() error {
	if err := r.transition(StatusCanceled); err != nil {
		return err
	}
	now := time.Now()
	r.CanceledAt = &now
	r.AddDomainEvent(NewReturnCanceledEvent(r))
	return nil
}

// Quantities returns quantities keyed by order line item id
func (r *Return) Quantities() map[uuid.UUID]int {
	q := make(map[uuid.UUID]int, len(r.Items))
	for _, it := range r.Items {
		q[it.LineItemID] += it.Quantity
	}
	return q
}
