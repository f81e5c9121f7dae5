// Package notification sends transactional emails in response to domain events.
package notification

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/returns"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/infrastructure/notification"
	"go.uber.org/zap"
)

// OrderFinder loads the order a return belongs to
type OrderFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error)
}

// Store identifies the shop in email copy
type Store struct {
	Name string
	URL  string
}

// EmailHandler renders and sends the customer emails for storefront events
type EmailHandler struct {
	notifier notification.Notifier
	orders   OrderFinder
	store    Store
	logger   *zap.Logger
}

// NewEmailHandler creates a new handler for customer-facing events
func NewEmailHandler(notifier notification.Notifier, orders OrderFinder, store Store, log *zap.Logger) *EmailHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &EmailHandler{notifier: notifier, orders: orders, store: store, logger: log}
}

// EventTypes returns the event types this handler is interested in
func (h *EmailHandler) EventTypes() []string {
	return []string{
		order.EventTypeOrderPlaced,
		order.EventTypeOrderShipped,
		returns.EventTypeReturnRequested,
		returns.EventTypeReturnCanceled,
		identity.EventTypeCustomerRegistered,
	}
}

// Handle maps the event to a template and sends it
func (h *EmailHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	msg, err := h.message(ctx, event)
	if err != nil {
		return err
	}
	if msg == nil {
		return nil
	}

	subject, text, err := Render(msg.Template, msg.Data)
	if err != nil {
		return err
	}
	msg.Subject = subject
	msg.Text = text

	log := logger.FromContextOr(ctx, h.logger).With(
		zap.String("template", msg.Template),
		zap.String("provider", h.notifier.Name()),
		zap.String("event_id", event.EventID().String()))
	if err := h.notifier.Send(ctx, *msg); err != nil {
		log.Error("failed to send notification", zap.Error(err))
		return fmt.Errorf("send %s: %w", msg.Template, err)
	}
	log.Info("notification sent")
	return nil
}

func (h *EmailHandler) message(ctx context.Context, event shared.DomainEvent) (*notification.Message, error) {
	switch e := event.(type) {
	case *order.OrderPlacedEvent:
		return h.newMessage(e.Email, TemplateOrderPlaced, map[string]any{
			"OrderID":   e.OrderID.String(),
			"DisplayID": e.DisplayID,
			"ItemCount": e.ItemCount,
			"Total":     e.Total.String(),
		}), nil
	case *order.OrderShippedEvent:
		return h.newMessage(e.Email, TemplateOrderShipped, map[string]any{
			"DisplayID":      e.DisplayID,
			"TrackingNumber": e.TrackingNumber,
			"TrackingURL":    e.TrackingURL,
		}), nil
	case *returns.ReturnRequestedEvent:
		o, err := h.orders.FindByID(ctx, e.OrderID)
		if err != nil {
			return nil, fmt.Errorf("load order for return %s: %w", e.ReturnID, err)
		}
		return h.newMessage(o.Email, TemplateReturnRequested, map[string]any{
			"DisplayID":    o.DisplayID,
			"ItemCount":    e.ItemCount,
			"RefundAmount": e.RefundAmount.String(),
		}), nil
	case *returns.ReturnCanceledEvent:
		o, err := h.orders.FindByID(ctx, e.OrderID)
		if err != nil {
			return nil, fmt.Errorf("load order for return %s: %w", e.ReturnID, err)
		}
		return h.newMessage(o.Email, TemplateReturnCanceled, map[string]any{
			"DisplayID": o.DisplayID,
		}), nil
	case *identity.CustomerRegisteredEvent:
		return h.newMessage(e.Email, TemplateCustomerWelcome, map[string]any{
			"FirstName": e.FirstName,
		}), nil
	}
	h.logger.Debug("no email for event", zap.String("event_type", event.EventType()))
	return nil, nil
}

func (h *EmailHandler) newMessage(to, tmpl string, data map[string]any) *notification.Message {
	data["StoreName"] = h.store.Name
	data["StoreURL"] = h.store.URL
	return &notification.Message{To: to, Template: tmpl, Data: data}
}
