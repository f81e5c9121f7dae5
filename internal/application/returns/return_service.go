// Package returns handles customer returns and the cancellation cascade that
// unwinds their return parcels.
package returns

import (
	"context"
	"strings"

	"github.com/google/uuid"
	fulfillmentapp "github.com/storefront/backend/internal/application/fulfillment"
	"github.com/storefront/backend/internal/domain/fulfillment"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/returns"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/infrastructure/payment"
	"github.com/storefront/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// Fulfillments creates and cancels return parcels
type Fulfillments interface {
	CreateReturnFulfillment(ctx context.Context, o *order.Order, returnID uuid.UUID, quantities map[uuid.UUID]int) (*fulfillment.Fulfillment, error)
	CancelFulfillment(ctx context.Context, fulfillmentID uuid.UUID) (*fulfillmentapp.FulfillmentResponse, error)
	MarkCanceled(ctx context.Context, fulfillmentID uuid.UUID) error
}

// Refunder pays money back to the customer
type Refunder interface {
	Refund(ctx context.Context, paymentIntentID string, amountMinor int64) (*payment.RefundResult, error)
}

// ReturnService handles return-related business operations
type ReturnService struct {
	returnRepo      returns.ReturnRepository
	orderRepo       order.OrderRepository
	fulfillmentRepo fulfillment.FulfillmentRepository
	fulfillments    Fulfillments
	refunds         Refunder
	eventPublisher  shared.EventPublisher
	metrics         *telemetry.BusinessMetrics
	logger          *zap.Logger
}

// NewReturnService creates a new ReturnService. refunds may be nil when
// payments are disabled.
func NewReturnService(
	returnRepo returns.ReturnRepository,
	orderRepo order.OrderRepository,
	fulfillmentRepo fulfillment.FulfillmentRepository,
	fulfillments Fulfillments,
	refunds Refunder,
	eventPublisher shared.EventPublisher,
	metrics *telemetry.BusinessMetrics,
	log *zap.Logger,
) *ReturnService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ReturnService{
		returnRepo:      returnRepo,
		orderRepo:       orderRepo,
		fulfillmentRepo: fulfillmentRepo,
		fulfillments:    fulfillments,
		refunds:         refunds,
		eventPublisher:  eventPublisher,
		metrics:         metrics,
		logger:          log,
	}
}

// RequestReturn validates the items against the order and opens a return
func (s *ReturnService) RequestReturn(ctx context.Context, req RequestReturnRequest) (*ReturnResponse, error) {
	log := logger.FromContextOr(ctx, s.logger).With(zap.String("order_id", req.OrderID.String()))

	o, err := s.orderRepo.FindByID(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}
	if req.CustomerID != nil && (o.CustomerID == nil || *o.CustomerID != *req.CustomerID) {
		return nil, shared.NewDomainError("NOT_FOUND", "Order not found")
	}

	items := make([]returns.Item, len(req.Items))
	quantities := make(map[uuid.UUID]int, len(req.Items))
	for i, it := range req.Items {
		items[i] = returns.Item{LineItemID: it.LineItemID, Quantity: it.Quantity, Reason: it.Reason, Note: it.Note}
		quantities[it.LineItemID] += it.Quantity
	}
	if err := o.ReserveReturnQuantity(quantities); err != nil {
		return nil, err
	}
	r, err := returns.NewReturn(o.ID, items, o.RefundAmountFor(quantities), req.Note)
	if err != nil {
		return nil, err
	}

	if req.ReturnShipping && s.fulfillments == nil {
		return nil, shared.NewDomainError("INVALID_STATE", "Return shipping is not available")
	}

	// The return row must exist before its parcel row references it.
	if err := s.returnRepo.Save(ctx, r); err != nil {
		return nil, err
	}

	var fulfillmentIDs []uuid.UUID
	if req.ReturnShipping {
		f, err := s.fulfillments.CreateReturnFulfillment(ctx, o, r.ID, quantities)
		if err != nil {
			log.Error("Failed to create return fulfillment", zap.Error(err))
			s.abandon(ctx, r, nil)
			return nil, err
		}
		fulfillmentIDs = append(fulfillmentIDs, f.ID)
	}

	if err := s.orderRepo.Save(ctx, o); err != nil {
		log.Error("Failed to reserve returned quantities", zap.Error(err))
		s.abandon(ctx, r, fulfillmentIDs)
		return nil, err
	}
	s.publish(ctx, r)

	log.Info("Return requested",
		zap.String("return_id", r.ID.String()),
		zap.String("refund_amount", r.RefundAmount.String()))
	response := ToReturnResponse(r)
	response.FulfillmentIDs = fulfillmentIDs
	return &response, nil
}

// GetReturn returns a return with the ids of its fulfillments
func (s *ReturnService) GetReturn(ctx context.Context, returnID uuid.UUID) (*ReturnResponse, error) {
	r, err := s.returnRepo.FindByID(ctx, returnID)
	if err != nil {
		return nil, err
	}
	response := ToReturnResponse(r)
	list, err := s.fulfillmentRepo.FindByReturn(ctx, returnID)
	if err != nil {
		return nil, err
	}
	for _, f := range list {
		response.FulfillmentIDs = append(response.FulfillmentIDs, f.ID)
	}
	return &response, nil
}

// List lists returns with filtering and pagination
func (s *ReturnService) List(ctx context.Context, filter ReturnListFilter) ([]ReturnResponse, int64, error) {
	list, total, err := s.returnRepo.FindAll(ctx, toDomainFilter(filter))
	if err != nil {
		return nil, 0, err
	}
	return ToReturnResponses(list), total, nil
}

// ReceiveReturn marks the goods as arrived and refunds the return amount
func (s *ReturnService) ReceiveReturn(ctx context.Context, returnID uuid.UUID) (*ReturnResponse, error) {
	log := logger.FromContextOr(ctx, s.logger).With(zap.String("return_id", returnID.String()))

	r, err := s.returnRepo.FindByID(ctx, returnID)
	if err != nil {
		return nil, err
	}
	if err := r.Receive(); err != nil {
		return nil, err
	}
	o, err := s.orderRepo.FindByID(ctx, r.OrderID)
	if err != nil {
		return nil, err
	}

	if refundable(o) && r.RefundAmount.MinorUnits() > 0 {
		if s.refunds == nil {
			return nil, shared.NewDomainError("PAYMENT_NOT_CONFIGURED", "Payments are not configured")
		}
		if _, err := s.refunds.Refund(ctx, o.PaymentIntentID, r.RefundAmount.MinorUnits()); err != nil {
			log.Error("Refund failed", zap.Error(err))
			return nil, shared.NewDomainError("UPSTREAM_FAILURE", err.Error())
		}
		if err := o.RecordRefund(r.RefundAmount); err != nil {
			return nil, err
		}
	}

	if err := s.returnRepo.Save(ctx, r); err != nil {
		return nil, err
	}
	if err := s.orderRepo.Save(ctx, o); err != nil {
		return nil, err
	}
	s.publish(ctx, r)

	log.Info("Return received", zap.String("refund_amount", r.RefundAmount.String()))
	response := ToReturnResponse(r)
	return &response, nil
}

// CancelReturn cancels every active fulfillment of the return and then the
// return itself. Fulfillments the provider no longer knows are reported as
// already resolved; any other provider failure leaves the return untouched.
func (s *ReturnService) CancelReturn(ctx context.Context, returnID uuid.UUID) (*CancelReturnResponse, error) {
	log := logger.FromContextOr(ctx, s.logger).With(zap.String("return_id", returnID.String()))

	r, err := s.returnRepo.FindByID(ctx, returnID)
	if err != nil {
		return nil, err
	}
	if !r.Status.CanTransitionTo(returns.StatusCanceled) {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot cancel a return that is "+r.Status.String())
	}

	list, err := s.fulfillmentRepo.FindByReturn(ctx, returnID)
	if err != nil {
		return nil, err
	}
	canceled := make([]uuid.UUID, 0)
	resolved := make([]uuid.UUID, 0)
	for _, f := range fulfillment.FilterActive(list) {
		_, err := s.fulfillments.CancelFulfillment(ctx, f.ID)
		switch {
		case err == nil:
			canceled = append(canceled, f.ID)
		case isAlreadyResolved(err):
			log.Warn("Fulfillment already resolved at provider",
				zap.String("fulfillment_id", f.ID.String()),
				zap.Error(err))
			if err := s.fulfillments.MarkCanceled(ctx, f.ID); err != nil {
				log.Warn("Failed to mark fulfillment canceled", zap.String("fulfillment_id", f.ID.String()), zap.Error(err))
			}
			resolved = append(resolved, f.ID)
		default:
			log.Error("Return cancellation aborted",
				zap.String("fulfillment_id", f.ID.String()),
				zap.Error(err))
			s.metrics.ReturnCanceled(ctx, "aborted")
			return nil, shared.NewDomainError("UPSTREAM_FAILURE",
				"Failed to cancel fulfillment "+f.ID.String()+": "+err.Error())
		}
	}

	if err := r.Cancel(); err != nil {
		return nil, err
	}
	if err := s.returnRepo.Save(ctx, r); err != nil {
		return nil, err
	}
	if o, err := s.orderRepo.FindByID(ctx, r.OrderID); err != nil {
		log.Warn("Failed to load order of canceled return", zap.Error(err))
	} else {
		o.ReleaseReturnQuantity(r.Quantities())
		if err := s.orderRepo.Save(ctx, o); err != nil {
			log.Warn("Failed to release returned quantities", zap.Error(err))
		}
	}
	s.publish(ctx, r)

	outcome := "canceled"
	if len(resolved) > 0 {
		outcome = "canceled_with_resolved"
	}
	s.metrics.ReturnCanceled(ctx, outcome)
	log.Info("Return canceled",
		zap.Int("canceled_fulfillments", len(canceled)),
		zap.Int("already_resolved_fulfillments", len(resolved)))

	return &CancelReturnResponse{
		ReturnResponse:              ToReturnResponse(r),
		CanceledFulfillments:        canceled,
		AlreadyResolvedFulfillments: resolved,
	}, nil
}

// abandon unwinds a return whose request failed half way. Its parcels are
// canceled at the provider and the return is stored as canceled without
// publishing any event.
func (s *ReturnService) abandon(ctx context.Context, r *returns.Return, fulfillmentIDs []uuid.UUID) {
	log := logger.FromContextOr(ctx, s.logger).With(zap.String("return_id", r.ID.String()))
	for _, id := range fulfillmentIDs {
		if _, err := s.fulfillments.CancelFulfillment(ctx, id); err != nil {
			log.Warn("Failed to cancel parcel of abandoned return", zap.String("fulfillment_id", id.String()), zap.Error(err))
		}
	}
	if err := r.Cancel(); err != nil {
		log.Warn("Failed to cancel abandoned return", zap.Error(err))
		return
	}
	r.ClearDomainEvents()
	if err := s.returnRepo.Save(ctx, r); err != nil {
		log.Warn("Failed to store abandoned return", zap.Error(err))
	}
}

func (s *ReturnService) publish(ctx context.Context, r *returns.Return) {
	if s.eventPublisher != nil {
		if events := r.GetDomainEvents(); len(events) > 0 {
			if err := s.eventPublisher.Publish(ctx, events...); err != nil {
				logger.FromContextOr(ctx, s.logger).Warn("failed to publish return events",
					zap.String("return_id", r.ID.String()),
					zap.Error(err))
			}
		}
	}
	r.ClearDomainEvents()
}

// isAlreadyResolved reports provider errors meaning the parcel no longer exists
func isAlreadyResolved(err error) bool {
	msg := err.Error()
	return strings.Contains(strings.ToLower(msg), "not found") ||
		strings.Contains(msg, "Gone") ||
		strings.Contains(msg, "404")
}

func refundable(o *order.Order) bool {
	if o.PaymentIntentID == "" {
		return false
	}
	return o.PaymentStatus == order.PaymentStatusCaptured ||
		o.PaymentStatus == order.PaymentStatusPartiallyRefunded
}

func toDomainFilter(filter ReturnListFilter) shared.Filter {
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
	filters := make(map[string]interface{})
	if filter.Status != "" {
		filters["status"] = filter.Status
	}
	if id, err := uuid.Parse(filter.OrderID); err == nil {
		filters["order_id"] = id
	}
	return shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Filters:  filters,
	}
}
