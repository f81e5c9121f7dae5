package order

import (
	"context"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/fulfillment"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/infrastructure/payment"
	"github.com/storefront/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// PaymentCanceler releases or returns the money behind an order
type PaymentCanceler interface {
	CancelPaymentIntent(ctx context.Context, id string) (*payment.Intent, error)
	Refund(ctx context.Context, paymentIntentID string, amountMinor int64) (*payment.RefundResult, error)
}

// InventoryReleaser puts reserved stock back
type InventoryReleaser interface {
	ReleaseInventory(ctx context.Context, variantID uuid.UUID, qty int) error
}

// OrderService handles order-related business operations
type OrderService struct {
	orderRepo       order.OrderRepository
	fulfillmentRepo fulfillment.FulfillmentRepository
	payments        PaymentCanceler
	inventory       InventoryReleaser
	eventPublisher  shared.EventPublisher
	metrics         *telemetry.BusinessMetrics
	logger          *zap.Logger
}

// NewOrderService creates a new OrderService
func NewOrderService(
	orderRepo order.OrderRepository,
	fulfillmentRepo fulfillment.FulfillmentRepository,
	payments PaymentCanceler,
	inventory InventoryReleaser,
	eventPublisher shared.EventPublisher,
	metrics *telemetry.BusinessMetrics,
	log *zap.Logger,
) *OrderService {
	if log == nil {
		log = zap.NewNop()
	}
	return &OrderService{
		orderRepo:       orderRepo,
		fulfillmentRepo: fulfillmentRepo,
		payments:        payments,
		inventory:       inventory,
		eventPublisher:  eventPublisher,
		metrics:         metrics,
		logger:          log,
	}
}

// GetOrder returns an order with its fulfillments
func (s *OrderService) GetOrder(ctx context.Context, orderID uuid.UUID) (*OrderResponse, error) {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	response := ToOrderResponse(o)
	if s.fulfillmentRepo != nil {
		list, err := s.fulfillmentRepo.FindByOrder(ctx, orderID)
		if err != nil {
			return nil, err
		}
		response.Fulfillments = toFulfillmentSummaries(list)
	}
	return &response, nil
}

// GetCustomerOrder returns an order owned by the customer.
// Orders of other customers are reported as not found.
func (s *OrderService) GetCustomerOrder(ctx context.Context, orderID, customerID uuid.UUID) (*OrderResponse, error) {
	if _, err := s.FindOwned(ctx, orderID, customerID); err != nil {
		return nil, err
	}
	return s.GetOrder(ctx, orderID)
}

// FindOwned loads an order and checks that the customer owns it
func (s *OrderService) FindOwned(ctx context.Context, orderID, customerID uuid.UUID) (*order.Order, error) {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.CustomerID == nil || *o.CustomerID != customerID {
		return nil, shared.NewDomainError("NOT_FOUND", "Order not found")
	}
	return o, nil
}

// ListForCustomer lists the orders of one customer, newest first
func (s *OrderService) ListForCustomer(ctx context.Context, customerID uuid.UUID, filter OrderListFilter) ([]OrderResponse, int64, error) {
	orders, total, err := s.orderRepo.FindByCustomer(ctx, customerID, toDomainFilter(filter))
	if err != nil {
		return nil, 0, err
	}
	return ToOrderResponses(orders), total, nil
}

// List lists all orders for the admin, searchable by email or display id
func (s *OrderService) List(ctx context.Context, filter OrderListFilter) ([]OrderResponse, int64, error) {
	domainFilter := toDomainFilter(filter)
	if filter.Status != "" {
		domainFilter.Filters["status"] = order.Status(filter.Status)
	}
	if filter.PaymentStatus != "" {
		domainFilter.Filters["payment_status"] = order.PaymentStatus(filter.PaymentStatus)
	}
	if filter.FulfillmentStatus != "" {
		domainFilter.Filters["fulfillment_status"] = order.FulfillmentStatus(filter.FulfillmentStatus)
	}

	orders, total, err := s.orderRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToOrderResponses(orders), total, nil
}

// Cancel cancels an order whose fulfillments are all canceled. Captured
// payments are refunded and uncaptured intents are canceled at Stripe
// before the order changes state.
func (s *OrderService) Cancel(ctx context.Context, orderID uuid.UUID) (*OrderResponse, error) {
	log := logger.FromContextOr(ctx, s.logger).With(zap.String("order_id", orderID.String()))

	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	active, err := s.activeFulfillments(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := o.CanCancel(active); err != nil {
		return nil, err
	}

	refunded, err := s.settlePayment(ctx, o)
	if err != nil {
		log.Error("Failed to settle payment for canceled order", zap.Error(err))
		return nil, err
	}

	if err := o.Cancel(active, refunded); err != nil {
		return nil, err
	}
	if err := s.orderRepo.Save(ctx, o); err != nil {
		return nil, err
	}
	s.releaseInventory(ctx, o)
	s.publish(ctx, o)
	s.metrics.OrderCanceled(ctx)

	log.Info("Order canceled", zap.Bool("refunded", refunded))
	response := ToOrderResponse(o)
	return &response, nil
}

// Complete marks a shipped order completed
func (s *OrderService) Complete(ctx context.Context, orderID uuid.UUID) (*OrderResponse, error) {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := o.Complete(); err != nil {
		return nil, err
	}
	if err := s.orderRepo.Save(ctx, o); err != nil {
		return nil, err
	}
	s.publish(ctx, o)
	response := ToOrderResponse(o)
	return &response, nil
}

func (s *OrderService) activeFulfillments(ctx context.Context, orderID uuid.UUID) (int, error) {
	if s.fulfillmentRepo == nil {
		return 0, nil
	}
	list, err := s.fulfillmentRepo.FindByOrder(ctx, orderID)
	if err != nil {
		return 0, err
	}
	return len(fulfillment.FilterActive(list)), nil
}

// settlePayment refunds what is left of a captured payment or cancels an
// uncaptured intent. It reports whether money was refunded.
func (s *OrderService) settlePayment(ctx context.Context, o *order.Order) (bool, error) {
	if o.PaymentIntentID == "" || s.payments == nil {
		return false, nil
	}
	switch o.PaymentStatus {
	case order.PaymentStatusCaptured, order.PaymentStatusPartiallyRefunded:
		remaining := o.Total.MinorUnits() - o.RefundedTotal.MinorUnits()
		if remaining <= 0 {
			return true, nil
		}
		if _, err := s.payments.Refund(ctx, o.PaymentIntentID, remaining); err != nil {
			return false, shared.NewDomainError("UPSTREAM_FAILURE", err.Error())
		}
		return true, nil
	case order.PaymentStatusAwaiting:
		if _, err := s.payments.CancelPaymentIntent(ctx, o.PaymentIntentID); err != nil {
			return false, shared.NewDomainError("UPSTREAM_FAILURE", err.Error())
		}
	}
	return false, nil
}

func (s *OrderService) releaseInventory(ctx context.Context, o *order.Order) {
	if s.inventory == nil {
		return
	}
	for _, li := range o.Items {
		if err := s.inventory.ReleaseInventory(ctx, li.VariantID, li.Quantity); err != nil {
			logger.FromContextOr(ctx, s.logger).Warn("failed to release inventory",
				zap.String("order_id", o.ID.String()),
				zap.String("variant_id", li.VariantID.String()),
				zap.Error(err))
		}
	}
}

func (s *OrderService) publish(ctx context.Context, o *order.Order) {
	if s.eventPublisher != nil {
		if events := o.GetDomainEvents(); len(events) > 0 {
			if err := s.eventPublisher.Publish(ctx, events...); err != nil {
				logger.FromContextOr(ctx, s.logger).Warn("failed to publish order events",
					zap.String("order_id", o.ID.String()),
					zap.Error(err))
			}
		}
	}
	o.ClearDomainEvents()
}

func toDomainFilter(filter OrderListFilter) shared.Filter {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "created_at"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "desc"
	}
	return shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
		Filters:  make(map[string]interface{}),
	}
}
