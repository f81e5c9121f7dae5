// Package fulfillment creates, ships and cancels parcels for orders and
// returns, and serves their shipping labels.
package fulfillment

import (
	"context"
	"errors"
	"strconv"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/fulfillment"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// FulfillmentService handles fulfillment-related business operations
type FulfillmentService struct {
	orderRepo       order.OrderRepository
	fulfillmentRepo fulfillment.FulfillmentRepository
	providers       map[string]fulfillment.Provider
	defaultProvider string
	eventPublisher  shared.EventPublisher
	logger          *zap.Logger
}

// NewFulfillmentService creates a new FulfillmentService. The first provider
// is used when a request does not name one.
func NewFulfillmentService(
	orderRepo order.OrderRepository,
	fulfillmentRepo fulfillment.FulfillmentRepository,
	providers []fulfillment.Provider,
	eventPublisher shared.EventPublisher,
	log *zap.Logger,
) *FulfillmentService {
	if log == nil {
		log = zap.NewNop()
	}
	s := &FulfillmentService{
		orderRepo:       orderRepo,
		fulfillmentRepo: fulfillmentRepo,
		providers:       make(map[string]fulfillment.Provider, len(providers)),
		eventPublisher:  eventPublisher,
		logger:          log,
	}
	for _, p := range providers {
		if s.defaultProvider == "" {
			s.defaultProvider = p.ID()
		}
		s.providers[p.ID()] = p
	}
	return s
}

// CreateFulfillment creates a parcel for an order and marks the order fulfilled
func (s *FulfillmentService) CreateFulfillment(ctx context.Context, orderID uuid.UUID, req CreateFulfillmentRequest) (*FulfillmentResponse, error) {
	log := logger.FromContextOr(ctx, s.logger).With(zap.String("order_id", orderID.String()))

	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.IsCanceled() {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot fulfill a canceled order")
	}
	provider, err := s.provider(req.ProviderID)
	if err != nil {
		return nil, err
	}

	items, err := orderItems(o, req.Items)
	if err != nil {
		return nil, err
	}
	f, err := fulfillment.NewFulfillment(o.ID, provider.ID(), items)
	if err != nil {
		return nil, err
	}

	data, err := provider.CreateFulfillment(ctx, parcelRequest(o, f.Quantities()))
	if err != nil {
		log.Error("Provider failed to create fulfillment", zap.String("provider", provider.ID()), zap.Error(err))
		return nil, upstream(err)
	}
	f.SetProviderData(data)
	if err := s.fulfillmentRepo.Save(ctx, f); err != nil {
		s.discardParcel(ctx, provider, data)
		return nil, err
	}

	if err := o.MarkFulfilled(); err != nil {
		return nil, err
	}
	if err := s.orderRepo.Save(ctx, o); err != nil {
		return nil, err
	}

	log.Info("Fulfillment created",
		zap.String("fulfillment_id", f.ID.String()),
		zap.String("parcel_id", data.ParcelID))
	response := ToFulfillmentResponse(f)
	return &response, nil
}

// CreateReturnFulfillment creates the return parcel for a return
func (s *FulfillmentService) CreateReturnFulfillment(ctx context.Context, o *order.Order, returnID uuid.UUID, quantities map[uuid.UUID]int) (*fulfillment.Fulfillment, error) {
	provider, err := s.provider("")
	if err != nil {
		return nil, err
	}
	items := make([]fulfillment.Item, 0, len(quantities))
	for _, li := range o.Items {
		if qty, ok := quantities[li.ID]; ok {
			items = append(items, fulfillment.Item{LineItemID: li.ID, Quantity: qty})
		}
	}
	f, err := fulfillment.NewReturnFulfillment(o.ID, returnID, provider.ID(), items)
	if err != nil {
		return nil, err
	}

	data, err := provider.CreateReturnFulfillment(ctx, parcelRequest(o, quantities))
	if err != nil {
		return nil, upstream(err)
	}
	f.SetProviderData(data)
	if err := s.fulfillmentRepo.Save(ctx, f); err != nil {
		s.discardParcel(ctx, provider, data)
		return nil, err
	}
	return f, nil
}

// CreateShipment marks a fulfillment shipped. Outbound shipments publish OrderShipped.
func (s *FulfillmentService) CreateShipment(ctx context.Context, fulfillmentID uuid.UUID, req CreateShipmentRequest) (*FulfillmentResponse, error) {
	f, err := s.fulfillmentRepo.FindByID(ctx, fulfillmentID)
	if err != nil {
		return nil, err
	}
	if err := f.Ship(req.TrackingNumber, req.TrackingURL); err != nil {
		return nil, err
	}
	if err := s.fulfillmentRepo.Save(ctx, f); err != nil {
		return nil, err
	}

	if !f.IsReturn() {
		o, err := s.orderRepo.FindByID(ctx, f.OrderID)
		if err != nil {
			return nil, err
		}
		if err := o.MarkShipped(f.ID, f.Data.TrackingNumber, f.Data.TrackingURL); err != nil {
			return nil, err
		}
		if err := s.orderRepo.Save(ctx, o); err != nil {
			return nil, err
		}
		s.publish(ctx, o)
	}

	response := ToFulfillmentResponse(f)
	return &response, nil
}

// CancelFulfillment cancels the parcel at the provider first and then locally.
// Provider errors keep the upstream message.
func (s *FulfillmentService) CancelFulfillment(ctx context.Context, fulfillmentID uuid.UUID) (*FulfillmentResponse, error) {
	log := logger.FromContextOr(ctx, s.logger).With(zap.String("fulfillment_id", fulfillmentID.String()))

	f, err := s.fulfillmentRepo.FindByID(ctx, fulfillmentID)
	if err != nil {
		return nil, err
	}
	if err := f.CanCancel(); err != nil {
		return nil, err
	}
	provider, ok := s.providers[f.ProviderID]
	if !ok {
		return nil, shared.NewDomainError("INVALID_STATE", "Fulfillment provider "+f.ProviderID+" is not configured")
	}
	if err := provider.CancelFulfillment(ctx, f.Data); err != nil {
		log.Warn("Provider failed to cancel fulfillment", zap.String("parcel_id", f.ParcelID()), zap.Error(err))
		return nil, upstream(err)
	}

	if err := f.Cancel(); err != nil {
		return nil, err
	}
	if err := s.fulfillmentRepo.Save(ctx, f); err != nil {
		return nil, err
	}

	if !f.IsReturn() {
		if err := s.syncOrderAfterCancel(ctx, f.OrderID); err != nil {
			return nil, err
		}
	}

	log.Info("Fulfillment canceled")
	response := ToFulfillmentResponse(f)
	return &response, nil
}

// MarkCanceled cancels a fulfillment locally without contacting the provider.
// Used when the provider reports the parcel as already gone.
func (s *FulfillmentService) MarkCanceled(ctx context.Context, fulfillmentID uuid.UUID) error {
	f, err := s.fulfillmentRepo.FindByID(ctx, fulfillmentID)
	if err != nil {
		return err
	}
	if !f.IsActive() {
		return nil
	}
	if err := f.Cancel(); err != nil {
		return err
	}
	if err := s.fulfillmentRepo.Save(ctx, f); err != nil {
		return err
	}
	if !f.IsReturn() {
		return s.syncOrderAfterCancel(ctx, f.OrderID)
	}
	return nil
}

// ListByOrder lists all fulfillments of an order
func (s *FulfillmentService) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]FulfillmentResponse, error) {
	list, err := s.fulfillmentRepo.FindByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return ToFulfillmentResponses(list), nil
}

// ListByReturn lists the return fulfillments of a return
func (s *FulfillmentService) ListByReturn(ctx context.Context, returnID uuid.UUID) ([]FulfillmentResponse, error) {
	list, err := s.fulfillmentRepo.FindByReturn(ctx, returnID)
	if err != nil {
		return nil, err
	}
	return ToFulfillmentResponses(list), nil
}

func (s *FulfillmentService) syncOrderAfterCancel(ctx context.Context, orderID uuid.UUID) error {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return err
	}
	list, err := s.fulfillmentRepo.FindByOrder(ctx, orderID)
	if err != nil {
		return err
	}
	remaining := 0
	for _, f := range fulfillment.FilterActive(list) {
		if !f.IsReturn() {
			remaining++
		}
	}
	o.MarkFulfillmentCanceled(remaining)
	return s.orderRepo.Save(ctx, o)
}

// discardParcel cancels a parcel the provider created but that could not be stored
func (s *FulfillmentService) discardParcel(ctx context.Context, provider fulfillment.Provider, data fulfillment.Data) {
	if err := provider.CancelFulfillment(ctx, data); err != nil {
		logger.FromContextOr(ctx, s.logger).Error("Failed to cancel unsaved parcel",
			zap.String("provider", provider.ID()),
			zap.String("parcel_id", data.ParcelID),
			zap.Error(err))
	}
}

func (s *FulfillmentService) provider(id string) (fulfillment.Provider, error) {
	if id == "" {
		id = s.defaultProvider
	}
	p, ok := s.providers[id]
	if !ok {
		return nil, shared.NewDomainError("INVALID_PROVIDER", "Fulfillment provider is not configured: "+id)
	}
	return p, nil
}

func (s *FulfillmentService) publish(ctx context.Context, o *order.Order) {
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

// orderItems validates requested lines against the order, defaulting to every line
func orderItems(o *order.Order, reqs []FulfillmentItemRequest) ([]fulfillment.Item, error) {
	if len(reqs) == 0 {
		items := make([]fulfillment.Item, 0, len(o.Items))
		for _, li := range o.Items {
			items = append(items, fulfillment.Item{LineItemID: li.ID, Quantity: li.Quantity})
		}
		return items, nil
	}

	items := make([]fulfillment.Item, 0, len(reqs))
	for _, r := range reqs {
		li := o.FindItem(r.LineItemID)
		if li == nil {
			return nil, shared.NewDomainError("NOT_FOUND", "Line item not found on order")
		}
		if r.Quantity <= 0 || r.Quantity > li.Quantity {
			return nil, shared.NewDomainError("INVALID_QUANTITY", "Fulfillment quantity exceeds the ordered quantity of "+li.SKU)
		}
		items = append(items, fulfillment.Item{LineItemID: li.ID, Quantity: r.Quantity})
	}
	return items, nil
}

func parcelRequest(o *order.Order, quantities map[uuid.UUID]int) fulfillment.ParcelRequest {
	req := fulfillment.ParcelRequest{
		OrderNumber:      strconv.FormatInt(o.DisplayID, 10),
		Email:            o.Email,
		Address:          o.ShippingAddress,
		ShippingMethodID: o.ShippingMethod.ShippingOptionID,
		WeightGrams:      o.TotalWeightGrams(quantities),
		TotalValue:       o.RefundAmountFor(quantities),
	}
	for _, li := range o.Items {
		qty, ok := quantities[li.ID]
		if !ok {
			continue
		}
		req.Items = append(req.Items, fulfillment.ParcelItem{
			Description: li.ProductTitle + " " + li.VariantTitle,
			SKU:         li.SKU,
			Quantity:    qty,
			WeightGrams: li.WeightGrams,
			Value:       li.UnitPrice,
		})
	}
	return req
}

// upstream keeps domain errors and wraps provider failures
func upstream(err error) error {
	var de *shared.DomainError
	if errors.As(err, &de) {
		return err
	}
	return shared.NewDomainError("UPSTREAM_FAILURE", err.Error())
}
