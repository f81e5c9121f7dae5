package invoice

import (
	"context"

	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
)

// StaleHandler marks an order's invoices stale when the order is canceled
type StaleHandler struct {
	service *InvoiceService
}

// NewStaleHandler creates the OrderCanceled subscriber
func NewStaleHandler(service *InvoiceService) *StaleHandler {
	return &StaleHandler{service: service}
}

// EventTypes returns the event types this handler is interested in
func (h *StaleHandler) EventTypes() []string {
	return []string{order.EventTypeOrderCanceled}
}

// Handle marks the invoices of the canceled order stale
func (h *StaleHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	e, ok := event.(*order.OrderCanceledEvent)
	if !ok {
		return nil
	}
	return h.service.MarkStale(ctx, e.OrderID)
}
