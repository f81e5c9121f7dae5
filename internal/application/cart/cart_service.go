// Package cart runs the storefront checkout: cart mutations, repricing,
// payment sessions and the conversion of a paid cart into an order.
package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	catalogapp "github.com/storefront/backend/internal/application/catalog"
	orderapp "github.com/storefront/backend/internal/application/order"
	shippingapp "github.com/storefront/backend/internal/application/shipping"
	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/infrastructure/payment"
	"github.com/storefront/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Catalog prices line items and holds stock
type Catalog interface {
	FindVariant(ctx context.Context, variantID uuid.UUID) (*catalogapp.VariantSnapshot, error)
	ReserveInventory(ctx context.Context, variantID uuid.UUID, qty int) error
	ReleaseInventory(ctx context.Context, variantID uuid.UUID, qty int) error
}

// PaymentGateway manages the Stripe payment intent of a cart
type PaymentGateway interface {
	CreatePaymentIntent(ctx context.Context, req payment.CreateIntentRequest) (*payment.Intent, error)
	UpdatePaymentIntentAmount(ctx context.Context, id string, amountMinor int64) (*payment.Intent, error)
	RetrievePaymentIntent(ctx context.Context, id string) (*payment.Intent, error)
}

// ShippingOptions resolves the shipping options a cart may choose
type ShippingOptions interface {
	FindOption(ctx context.Context, c *cart.Cart, optionID string) (*shippingapp.Option, error)
}

// Deps groups the collaborators of CartService
type Deps struct {
	Carts     cart.CartRepository
	Orders    order.OrderRepository
	Customers identity.CustomerRepository
	Catalog   Catalog
	Shipping  ShippingOptions
	Payments  PaymentGateway
	Publisher shared.EventPublisher
	Metrics   *telemetry.BusinessMetrics
	Currency  valueobject.Currency
}

// CartService handles cart-related business operations
type CartService struct {
	cartRepo     cart.CartRepository
	orderRepo    order.OrderRepository
	customerRepo identity.CustomerRepository
	catalog      Catalog
	shipping     ShippingOptions
	payments     PaymentGateway
	publisher    shared.EventPublisher
	metrics      *telemetry.BusinessMetrics
	currency     valueobject.Currency
	logger       *zap.Logger

	locks         *keyedMutex
	refreshGroup  singleflight.Group
	completeGroup singleflight.Group
}

// NewCartService creates a new CartService
func NewCartService(deps Deps, log *zap.Logger) *CartService {
	if log == nil {
		log = zap.NewNop()
	}
	currency := deps.Currency
	if currency == "" {
		currency = valueobject.DefaultCurrency
	}
	return &CartService{
		cartRepo:     deps.Carts,
		orderRepo:    deps.Orders,
		customerRepo: deps.Customers,
		catalog:      deps.Catalog,
		shipping:     deps.Shipping,
		payments:     deps.Payments,
		publisher:    deps.Publisher,
		metrics:      deps.Metrics,
		currency:     currency,
		logger:       log,
		locks:        newKeyedMutex(),
	}
}

// Create creates a cart
func (s *CartService) Create(ctx context.Context, req CreateCartRequest) (*CartResponse, error) {
	currency := s.currency
	if req.CurrencyCode != "" {
		c, err := valueobject.ParseCurrency(req.CurrencyCode)
		if err != nil {
			return nil, err
		}
		currency = c
	}

	c := cart.NewCart(currency)
	if req.Email != "" {
		if err := c.SetEmail(req.Email); err != nil {
			return nil, err
		}
	}
	if req.CustomerID != nil {
		if err := c.AssignCustomer(*req.CustomerID, req.CustomerEmail); err != nil {
			return nil, err
		}
	}
	if req.ShippingAddress != nil {
		if err := c.SetShippingAddress(*req.ShippingAddress); err != nil {
			return nil, err
		}
	}
	for _, item := range req.Items {
		if err := s.addItem(ctx, c, item.VariantID, item.Quantity); err != nil {
			return nil, err
		}
	}

	if err := s.cartRepo.Save(ctx, c); err != nil {
		return nil, err
	}
	logger.FromContextOr(ctx, s.logger).Info("Cart created", zap.String("cart_id", c.ID.String()))
	response := ToCartResponse(c)
	return &response, nil
}

// Get returns a cart without repricing it
func (s *CartService) Get(ctx context.Context, cartID uuid.UUID) (*CartResponse, error) {
	c, err := s.cartRepo.FindByID(ctx, cartID)
	if err != nil {
		return nil, err
	}
	response := ToCartResponse(c)
	return &response, nil
}

// Update changes email, shipping address and the customer association
func (s *CartService) Update(ctx context.Context, cartID uuid.UUID, req UpdateCartRequest) (*CartResponse, error) {
	return s.mutate(ctx, cartID, func(c *cart.Cart) error {
		if req.CustomerID != nil {
			if err := c.AssignCustomer(*req.CustomerID, req.CustomerEmail); err != nil {
				return err
			}
		}
		if req.Email != nil {
			if err := c.SetEmail(*req.Email); err != nil {
				return err
			}
		}
		if req.ShippingAddress != nil {
			if err := c.SetShippingAddress(*req.ShippingAddress); err != nil {
				return err
			}
		}
		return nil
	})
}

// AddLineItem prices the variant from the catalog and adds it
func (s *CartService) AddLineItem(ctx context.Context, cartID uuid.UUID, req AddLineItemRequest) (*CartResponse, error) {
	return s.mutate(ctx, cartID, func(c *cart.Cart) error {
		return s.addItem(ctx, c, req.VariantID, req.Quantity)
	})
}

// UpdateLineItem sets the quantity of a line; zero removes it
func (s *CartService) UpdateLineItem(ctx context.Context, cartID, lineID uuid.UUID, req UpdateLineItemRequest) (*CartResponse, error) {
	return s.mutate(ctx, cartID, func(c *cart.Cart) error {
		item := c.FindItem(lineID)
		if item == nil {
			return shared.NewDomainError("NOT_FOUND", "Line item not found")
		}
		if req.Quantity > item.Quantity {
			v, err := s.catalog.FindVariant(ctx, item.VariantID)
			if err != nil {
				return err
			}
			if !v.Variant.CanFulfill(req.Quantity) {
				return insufficientStock(v)
			}
		}
		return c.UpdateItemQuantity(lineID, req.Quantity)
	})
}

// RemoveLineItem deletes a line
func (s *CartService) RemoveLineItem(ctx context.Context, cartID, lineID uuid.UUID) (*CartResponse, error) {
	return s.mutate(ctx, cartID, func(c *cart.Cart) error {
		return c.RemoveItem(lineID)
	})
}

// AddShippingMethod stores one of the cart's shipping options
func (s *CartService) AddShippingMethod(ctx context.Context, cartID uuid.UUID, req AddShippingMethodRequest) (*CartResponse, error) {
	return s.mutate(ctx, cartID, func(c *cart.Cart) error {
		opt, err := s.shipping.FindOption(ctx, c, req.OptionID)
		if err != nil {
			return err
		}
		return c.SetShippingMethod(cart.ShippingMethod{
			ShippingOptionID: opt.ID,
			Name:             opt.Name,
			Carrier:          opt.Carrier,
			Price:            opt.Price,
		})
	})
}

// Refresh reprices the cart from the catalog. Concurrent refreshes of one
// cart share a single execution; a mutation that lands meanwhile makes the
// next refresh start over. The shared execution is detached from every
// caller, so one caller going away does not fail the others.
func (s *CartService) Refresh(ctx context.Context, cartID uuid.UUID) (*CartResponse, error) {
	key := cartID.String()
	flightCtx := context.WithoutCancel(ctx)
	ch := s.refreshGroup.DoChan(key, func() (interface{}, error) {
		unlock := s.locks.Lock(key)
		defer unlock()

		c, err := s.cartRepo.FindByID(flightCtx, cartID)
		if err != nil {
			return nil, err
		}
		changed, err := s.reprice(flightCtx, c)
		if err != nil {
			return nil, err
		}
		if changed {
			if err := s.cartRepo.Save(flightCtx, c); err != nil {
				return nil, err
			}
		}
		response := ToCartResponse(c)
		return &response, nil
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-ch:
	}
	v, err := res.Val, res.Err
	if err != nil {
		return nil, err
	}
	return v.(*CartResponse), nil
}

// InitiatePaymentSession creates or updates the Stripe payment intent for the cart total
func (s *CartService) InitiatePaymentSession(ctx context.Context, cartID uuid.UUID) (*CartResponse, error) {
	if s.payments == nil {
		return nil, shared.NewDomainError("PAYMENT_NOT_CONFIGURED", "Payments are not configured")
	}
	return s.mutate(ctx, cartID, func(c *cart.Cart) error {
		if len(c.Items) == 0 {
			return shared.NewDomainError("INVALID_STATE", "Cannot start payment for an empty cart")
		}
		total := c.Total()
		amount := total.MinorUnits()
		if amount <= 0 {
			return shared.NewDomainError("INVALID_STATE", "Cart total must be positive")
		}

		intent, err := s.syncIntent(ctx, c, amount)
		if err != nil {
			return err
		}
		return c.SetPaymentSession(cart.PaymentSession{
			Provider:        cart.ProviderStripe,
			PaymentIntentID: intent.ID,
			ClientSecret:    intent.ClientSecret,
			Status:          sessionStatus(intent.Status),
			Amount:          valueobject.NewMoneyFromMinor(intent.Amount, c.CurrencyCode),
		})
	})
}

// CompleteCart turns a paid cart into an order. It is idempotent per cart:
// concurrent calls share one execution and later calls return the order
// that was already placed.
func (s *CartService) CompleteCart(ctx context.Context, cartID uuid.UUID) (*orderapp.OrderResponse, error) {
	// The order must not be abandoned halfway because one caller went away.
	ctx = context.WithoutCancel(ctx)
	v, err, joined := s.completeGroup.Do(cartID.String(), func() (interface{}, error) {
		return s.complete(ctx, cartID)
	})
	if err != nil {
		return nil, err
	}
	if joined {
		logger.FromContextOr(ctx, s.logger).Debug("Joined in-flight cart completion", zap.String("cart_id", cartID.String()))
	}
	return v.(*orderapp.OrderResponse), nil
}

// RecordPaymentFailure stores a declined payment on the cart behind the intent
func (s *CartService) RecordPaymentFailure(ctx context.Context, paymentIntentID, message string) error {
	c, err := s.cartRepo.FindByPaymentIntentID(ctx, paymentIntentID)
	if err != nil {
		return err
	}
	_, err = s.mutate(ctx, c.ID, func(c *cart.Cart) error {
		if c.IsCompleted() {
			return nil
		}
		c.RecordPaymentFailure(message)
		return nil
	})
	return err
}

func (s *CartService) complete(ctx context.Context, cartID uuid.UUID) (*orderapp.OrderResponse, error) {
	log := logger.FromContextOr(ctx, s.logger).With(zap.String("cart_id", cartID.String()))
	unlock := s.locks.Lock(cartID.String())
	defer unlock()

	existing, err := s.orderRepo.FindByCartID(ctx, cartID)
	if err == nil {
		response := orderapp.ToOrderResponse(existing)
		return &response, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	c, err := s.cartRepo.FindByID(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if c.PaymentSession == nil || c.PaymentSession.PaymentIntentID == "" {
		return nil, shared.NewDomainError("INVALID_STATE", "Cart has no payment session")
	}
	if err := c.ValidateForCompletion(); err != nil {
		return nil, err
	}
	if s.payments == nil {
		return nil, shared.NewDomainError("PAYMENT_NOT_CONFIGURED", "Payments are not configured")
	}

	intent, err := s.payments.RetrievePaymentIntent(ctx, c.PaymentSession.PaymentIntentID)
	if err != nil {
		return nil, shared.NewDomainError("UPSTREAM_FAILURE", err.Error())
	}
	if !intent.Status.IsPaid() {
		return nil, shared.NewDomainError("INVALID_STATE", "payment not completed")
	}
	if intent.Amount != c.Total().MinorUnits() {
		log.Warn("Payment amount does not match cart total",
			zap.Int64("intent_amount", intent.Amount),
			zap.Int64("cart_total", c.Total().MinorUnits()))
		return nil, shared.NewDomainError("INVALID_STATE", "Payment amount does not match the cart total")
	}

	reserved, err := s.reserve(ctx, c)
	if err != nil {
		return nil, err
	}

	if err := s.attachCustomer(ctx, c); err != nil {
		s.release(ctx, reserved)
		return nil, err
	}

	displayID, err := s.orderRepo.NextDisplayID(ctx)
	if err != nil {
		s.release(ctx, reserved)
		return nil, err
	}
	o, err := order.NewOrderFromCart(displayID, c, intent.Status.IsCaptured())
	if err != nil {
		s.release(ctx, reserved)
		return nil, err
	}
	if err := s.orderRepo.Save(ctx, o); err != nil {
		s.release(ctx, reserved)
		if errors.Is(err, shared.ErrAlreadyExists) {
			// Another instance placed the order first.
			placed, findErr := s.orderRepo.FindByCartID(ctx, cartID)
			if findErr != nil {
				return nil, findErr
			}
			response := orderapp.ToOrderResponse(placed)
			return &response, nil
		}
		return nil, err
	}

	if err := c.Complete(o.ID); err != nil {
		return nil, err
	}
	if err := s.cartRepo.Save(ctx, c); err != nil {
		// The order is placed; a retry finds it through the cart id.
		log.Error("Failed to mark cart completed", zap.String("order_id", o.ID.String()), zap.Error(err))
	}

	s.publish(ctx, c.GetDomainEvents()...)
	c.ClearDomainEvents()
	s.publish(ctx, o.GetDomainEvents()...)
	o.ClearDomainEvents()
	s.metrics.OrderPlaced(ctx, o.CurrencyCode.Upper(), o.Total.MinorUnits())

	log.Info("Order placed",
		zap.String("order_id", o.ID.String()),
		zap.Int64("display_id", o.DisplayID),
		zap.String("total", o.Total.String()))
	response := orderapp.ToOrderResponse(o)
	return &response, nil
}

// mutate loads, changes and saves a cart under the cart lock. Any refresh
// that starts after this point runs again instead of joining an older one.
func (s *CartService) mutate(ctx context.Context, cartID uuid.UUID, fn func(c *cart.Cart) error) (*CartResponse, error) {
	key := cartID.String()
	s.refreshGroup.Forget(key)
	unlock := s.locks.Lock(key)
	defer unlock()
	defer s.refreshGroup.Forget(key)

	c, err := s.cartRepo.FindByID(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if c.IsCompleted() {
		return nil, shared.NewDomainError("INVALID_STATE", "Cart is already completed")
	}
	if err := fn(c); err != nil {
		return nil, err
	}
	if err := s.cartRepo.Save(ctx, c); err != nil {
		return nil, err
	}
	response := ToCartResponse(c)
	return &response, nil
}

func (s *CartService) addItem(ctx context.Context, c *cart.Cart, variantID uuid.UUID, qty int) error {
	v, err := s.catalog.FindVariant(ctx, variantID)
	if err != nil {
		return err
	}
	if !v.Published {
		return shared.NewDomainError("NOT_FOUND", "Variant not found")
	}
	wanted := qty
	for _, li := range c.Items {
		if li.VariantID == variantID {
			wanted += li.Quantity
		}
	}
	if !v.Variant.CanFulfill(wanted) {
		return insufficientStock(v)
	}
	_, err = c.AddItem(toCartSnapshot(v), qty)
	return err
}

// reprice refreshes every line from the catalog and drops lines whose
// variant is gone or no longer sold
func (s *CartService) reprice(ctx context.Context, c *cart.Cart) (bool, error) {
	if c.IsCompleted() {
		return false, nil
	}
	changed := false
	var gone []uuid.UUID
	for _, li := range c.Items {
		v, err := s.catalog.FindVariant(ctx, li.VariantID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				gone = append(gone, li.ID)
				continue
			}
			return false, err
		}
		if !v.Published {
			gone = append(gone, li.ID)
			continue
		}
		if c.Reprice(toCartSnapshot(v)) {
			changed = true
		}
	}
	for _, id := range gone {
		if err := c.RemoveItem(id); err != nil {
			return false, err
		}
		changed = true
	}
	return changed, nil
}

// syncIntent reuses the cart's intent while Stripe still accepts changes
// and creates a new one otherwise
func (s *CartService) syncIntent(ctx context.Context, c *cart.Cart, amount int64) (*payment.Intent, error) {
	if ps := c.PaymentSession; ps != nil && ps.PaymentIntentID != "" {
		intent, err := s.payments.RetrievePaymentIntent(ctx, ps.PaymentIntentID)
		if err != nil {
			return nil, shared.NewDomainError("UPSTREAM_FAILURE", err.Error())
		}
		switch {
		case intent.Status.IsPaid(), intent.Status == payment.IntentProcessing:
			return intent, nil
		case intent.Status.IsMutable():
			if intent.Amount == amount {
				return intent, nil
			}
			updated, err := s.payments.UpdatePaymentIntentAmount(ctx, intent.ID, amount)
			if err != nil {
				return nil, shared.NewDomainError("UPSTREAM_FAILURE", err.Error())
			}
			return updated, nil
		}
	}

	intent, err := s.payments.CreatePaymentIntent(ctx, payment.CreateIntentRequest{
		AmountMinor:    amount,
		Currency:       string(c.CurrencyCode),
		CartID:         c.ID.String(),
		Email:          c.Email,
		IdempotencyKey: fmt.Sprintf("cart:%s:%d", c.ID, amount),
	})
	if err != nil {
		return nil, shared.NewDomainError("UPSTREAM_FAILURE", err.Error())
	}
	return intent, nil
}

type reservation struct {
	variantID uuid.UUID
	qty       int
}

func (s *CartService) reserve(ctx context.Context, c *cart.Cart) ([]reservation, error) {
	reserved := make([]reservation, 0, len(c.Items))
	for _, li := range c.Items {
		if err := s.catalog.ReserveInventory(ctx, li.VariantID, li.Quantity); err != nil {
			s.release(ctx, reserved)
			return nil, err
		}
		reserved = append(reserved, reservation{variantID: li.VariantID, qty: li.Quantity})
	}
	return reserved, nil
}

func (s *CartService) release(ctx context.Context, reserved []reservation) {
	for _, r := range reserved {
		if err := s.catalog.ReleaseInventory(ctx, r.variantID, r.qty); err != nil {
			logger.FromContextOr(ctx, s.logger).Warn("failed to release inventory",
				zap.String("variant_id", r.variantID.String()),
				zap.Error(err))
		}
	}
}

// attachCustomer links guest checkouts to a customer record by email
func (s *CartService) attachCustomer(ctx context.Context, c *cart.Cart) error {
	if c.CustomerID != nil || s.customerRepo == nil {
		return nil
	}
	customer, err := s.customerRepo.FindByEmail(ctx, c.Email)
	switch {
	case err == nil:
	case errors.Is(err, shared.ErrNotFound):
		customer, err = identity.NewGuestCustomer(c.Email)
		if err != nil {
			return err
		}
		if err := s.customerRepo.Save(ctx, customer); err != nil {
			return err
		}
	default:
		return err
	}
	return c.AssignCustomer(customer.ID, customer.Email)
}

func (s *CartService) publish(ctx context.Context, events ...shared.DomainEvent) {
	if s.publisher == nil || len(events) == 0 {
		return
	}
	if err := s.publisher.Publish(ctx, events...); err != nil {
		logger.FromContextOr(ctx, s.logger).Warn("failed to publish checkout events", zap.Error(err))
	}
}

func toCartSnapshot(v *catalogapp.VariantSnapshot) cart.VariantSnapshot {
	return cart.VariantSnapshot{
		VariantID:    v.Variant.ID,
		ProductID:    v.ProductID,
		ProductTitle: v.ProductTitle,
		VariantTitle: v.Variant.Title,
		SKU:          v.Variant.SKU,
		Thumbnail:    v.Thumbnail,
		UnitPrice:    v.Variant.Price,
		WeightGrams:  v.Variant.WeightGrams,
	}
}

func insufficientStock(v *catalogapp.VariantSnapshot) error {
	return shared.NewDomainError("INSUFFICIENT_STOCK", "Insufficient stock for "+v.Variant.SKU)
}

func sessionStatus(status payment.IntentStatus) cart.PaymentSessionStatus {
	switch {
	case status.IsPaid():
		return cart.PaymentSessionAuthorized
	case status == payment.IntentCanceled:
		return cart.PaymentSessionCanceled
	}
	return cart.PaymentSessionPending
}
