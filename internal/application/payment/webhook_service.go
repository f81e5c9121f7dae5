// Package payment processes Stripe webhooks. Successful intents complete the
// cart they belong to when the storefront did not do so itself.
package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	orderapp "github.com/storefront/backend/internal/application/order"
	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/infrastructure/payment"
	"github.com/storefront/backend/internal/infrastructure/telemetry"
	"github.com/stripe/stripe-go/v81"
	"go.uber.org/zap"
)

const (
	defaultDedupTTL   = 72 * time.Hour
	dedupKeyPrefix    = "stripe:event:"
	outcomeProcessed  = "processed"
	outcomeDuplicate  = "duplicate"
	outcomeIgnored    = "ignored"
	outcomeFailed     = "failed"
	outcomeBadRequest = "rejected"
)

// WebhookVerifier checks the Stripe-Signature header
type WebhookVerifier interface {
	VerifyWebhook(payload []byte, signature string) (stripe.Event, error)
}

// CartCompleter turns paid carts into orders
type CartCompleter interface {
	CompleteCart(ctx context.Context, cartID uuid.UUID) (*orderapp.OrderResponse, error)
	RecordPaymentFailure(ctx context.Context, paymentIntentID, message string) error
}

// WebhookServiceConfig contains configuration for WebhookService
type WebhookServiceConfig struct {
	Verifier    WebhookVerifier
	Carts       CartCompleter
	CartRepo    cart.CartRepository
	Idempotency shared.IdempotencyStore
	DedupTTL    time.Duration
	Metrics     *telemetry.BusinessMetrics
	Logger      *zap.Logger
}

// WebhookService handles Stripe webhook events
type WebhookService struct {
	verifier    WebhookVerifier
	carts       CartCompleter
	cartRepo    cart.CartRepository
	idempotency shared.IdempotencyStore
	dedupTTL    time.Duration
	metrics     *telemetry.BusinessMetrics
	logger      *zap.Logger
}

// NewWebhookService creates a new WebhookService
func NewWebhookService(cfg WebhookServiceConfig) *WebhookService {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.DedupTTL <= 0 {
		cfg.DedupTTL = defaultDedupTTL
	}
	return &WebhookService{
		verifier:    cfg.Verifier,
		carts:       cfg.Carts,
		cartRepo:    cfg.CartRepo,
		idempotency: cfg.Idempotency,
		dedupTTL:    cfg.DedupTTL,
		metrics:     cfg.Metrics,
		logger:      cfg.Logger,
	}
}

// WebhookResult contains the result of processing a webhook
type WebhookResult struct {
	EventID   string `json:"event_id"`
	EventType string `json:"event_type"`
	Processed bool   `json:"processed"`
	Duplicate bool   `json:"duplicate,omitempty"`
	Message   string `json:"message,omitempty"`
}

// ProcessWebhook verifies and handles a Stripe webhook event. Only signature
// failures are returned as errors; processing failures are reported in the
// result so Stripe stops retrying.
func (s *WebhookService) ProcessWebhook(ctx context.Context, payload []byte, signature string) (*WebhookResult, error) {
	log := logger.FromContextOr(ctx, s.logger)

	if s.verifier == nil {
		return nil, payment.ErrWebhookNotConfigured
	}
	event, err := s.verifier.VerifyWebhook(payload, signature)
	if err != nil {
		log.Warn("Rejected Stripe webhook", zap.Error(err))
		s.metrics.WebhookEvent(ctx, "unknown", outcomeBadRequest)
		return nil, err
	}

	eventType := string(event.Type)
	log = log.With(zap.String("event_id", event.ID), zap.String("event_type", eventType))
	result := &WebhookResult{EventID: event.ID, EventType: eventType}

	if s.idempotency != nil {
		fresh, err := s.idempotency.MarkProcessed(ctx, dedupKeyPrefix+event.ID, s.dedupTTL)
		if err != nil {
			log.Warn("Idempotency store unavailable, processing anyway", zap.Error(err))
		} else if !fresh {
			log.Info("Duplicate Stripe event skipped")
			s.metrics.WebhookEvent(ctx, eventType, outcomeDuplicate)
			result.Duplicate = true
			result.Message = "Event already processed"
			return result, nil
		}
	}

	log.Info("Processing Stripe webhook event")
	switch event.Type {
	case "payment_intent.succeeded":
		err = s.handlePaymentSucceeded(ctx, event)
	case "payment_intent.payment_failed":
		err = s.handlePaymentFailed(ctx, event)
	default:
		log.Debug("Unhandled webhook event type")
		s.metrics.WebhookEvent(ctx, eventType, outcomeIgnored)
		result.Message = "Event type not handled"
		return result, nil
	}

	if err != nil {
		log.Error("Failed to process webhook event", zap.Error(err))
		s.metrics.WebhookEvent(ctx, eventType, outcomeFailed)
		result.Message = err.Error()
		return result, nil
	}
	s.metrics.WebhookEvent(ctx, eventType, outcomeProcessed)
	result.Processed = true
	return result, nil
}

func (s *WebhookService) handlePaymentSucceeded(ctx context.Context, event stripe.Event) error {
	pi, err := decodeIntent(event)
	if err != nil {
		return err
	}
	cartID, err := s.resolveCart(ctx, pi)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			logger.FromContextOr(ctx, s.logger).Warn("No cart for payment intent",
				zap.String("payment_intent_id", pi.ID))
			return nil
		}
		return err
	}
	o, err := s.carts.CompleteCart(ctx, cartID)
	if err != nil {
		return fmt.Errorf("failed to complete cart %s: %w", cartID, err)
	}
	logger.FromContextOr(ctx, s.logger).Info("Cart completed from webhook",
		zap.String("cart_id", cartID.String()),
		zap.Int64("display_id", o.DisplayID))
	return nil
}

func (s *WebhookService) handlePaymentFailed(ctx context.Context, event stripe.Event) error {
	pi, err := decodeIntent(event)
	if err != nil {
		return err
	}
	message := "payment failed"
	if pi.LastPaymentError != nil && pi.LastPaymentError.Msg != "" {
		message = pi.LastPaymentError.Msg
	}
	if err := s.carts.RecordPaymentFailure(ctx, pi.ID, message); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to record payment failure: %w", err)
	}
	return nil
}

// resolveCart reads the cart id from the intent metadata, falling back to the
// cart that stores the intent id
func (s *WebhookService) resolveCart(ctx context.Context, pi *stripe.PaymentIntent) (uuid.UUID, error) {
	if raw, ok := pi.Metadata[payment.MetadataCartID]; ok {
		if id, err := uuid.Parse(raw); err == nil {
			return id, nil
		}
	}
	if s.cartRepo == nil {
		return uuid.Nil, shared.ErrNotFound
	}
	c, err := s.cartRepo.FindByPaymentIntentID(ctx, pi.ID)
	if err != nil {
		return uuid.Nil, err
	}
	return c.ID, nil
}

func decodeIntent(event stripe.Event) (*stripe.PaymentIntent, error) {
	if event.Data == nil {
		return nil, errors.New("event has no data")
	}
	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		return nil, fmt.Errorf("failed to unmarshal payment intent: %w", err)
	}
	return &pi, nil
}
