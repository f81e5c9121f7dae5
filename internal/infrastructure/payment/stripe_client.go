package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/client"
	"github.com/stripe/stripe-go/v81/webhook"
	"go.uber.org/zap"
)

// MetadataCartID is the PaymentIntent metadata key linking an intent to its cart
const MetadataCartID = "cart_id"

// StripeClient wraps the Stripe Payment Intents and Refunds APIs
type StripeClient struct {
	api           *client.API
	webhookSecret string
	automatic     bool
	logger        *zap.Logger
}

// StripeOption configures a StripeClient
type StripeOption func(*stripeOptions)

type stripeOptions struct {
	backends *stripe.Backends
	logger   *zap.Logger
}

// WithBackend routes API calls through the given backend instead of api.stripe.com
func WithBackend(b stripe.Backend) StripeOption {
	return func(o *stripeOptions) {
		o.backends = &stripe.Backends{API: b, Connect: b, Uploads: b}
	}
}

// WithStripeLogger sets the logger
func WithStripeLogger(logger *zap.Logger) StripeOption {
	return func(o *stripeOptions) {
		o.logger = logger
	}
}

// NewStripeClient creates a Stripe client from config
func NewStripeClient(cfg config.StripeConfig, opts ...StripeOption) (*StripeClient, error) {
	if err := validateStripeConfig(cfg); err != nil {
		return nil, err
	}
	o := &stripeOptions{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(o)
	}
	return &StripeClient{
		api:           client.New(cfg.SecretKey, o.backends),
		webhookSecret: cfg.WebhookSecret,
		automatic:     cfg.AutomaticPaymentMethods,
		logger:        o.logger,
	}, nil
}

func validateStripeConfig(cfg config.StripeConfig) error {
	if cfg.SecretKey == "" {
		return errors.New("stripe: secret key is required")
	}
	if !strings.HasPrefix(cfg.SecretKey, "sk_") && !strings.HasPrefix(cfg.SecretKey, "rk_") {
		return errors.New("stripe: secret key must start with sk_ or rk_")
	}
	return nil
}

// CreatePaymentIntent creates an intent for a cart total in minor units
func (c *StripeClient) CreatePaymentIntent(ctx context.Context, req CreateIntentRequest) (*Intent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(req.AmountMinor),
		Currency: stripe.String(strings.ToLower(req.Currency)),
	}
	if c.automatic {
		params.AutomaticPaymentMethods = &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		}
	}
	if req.Email != "" {
		params.ReceiptEmail = stripe.String(req.Email)
	}
	params.AddMetadata(MetadataCartID, req.CartID)
	params.Context = ctx
	if req.IdempotencyKey != "" {
		params.SetIdempotencyKey(req.IdempotencyKey)
	}

	pi, err := c.api.PaymentIntents.New(params)
	if err != nil {
		c.logger.Error("Failed to create Stripe payment intent",
			zap.String("cart_id", req.CartID),
			zap.Error(err))
		return nil, fmt.Errorf("stripe: failed to create payment intent: %w", err)
	}

	c.logger.Info("Created Stripe payment intent",
		zap.String("cart_id", req.CartID),
		zap.String("payment_intent_id", pi.ID),
		zap.Int64("amount", pi.Amount))
	return intentFromStripe(pi), nil
}

// UpdatePaymentIntentAmount changes the amount of an unconfirmed intent
func (c *StripeClient) UpdatePaymentIntentAmount(ctx context.Context, id string, amountMinor int64) (*Intent, error) {
	params := &stripe.PaymentIntentParams{Amount: stripe.Int64(amountMinor)}
	params.Context = ctx

	pi, err := c.api.PaymentIntents.Update(id, params)
	if err != nil {
		return nil, fmt.Errorf("stripe: failed to update payment intent: %w", err)
	}
	return intentFromStripe(pi), nil
}

// RetrievePaymentIntent fetches the current state of an intent
func (c *StripeClient) RetrievePaymentIntent(ctx context.Context, id string) (*Intent, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := c.api.PaymentIntents.Get(id, params)
	if err != nil {
		return nil, fmt.Errorf("stripe: failed to retrieve payment intent: %w", err)
	}
	return intentFromStripe(pi), nil
}

// CancelPaymentIntent cancels an intent that has not been captured
func (c *StripeClient) CancelPaymentIntent(ctx context.Context, id string) (*Intent, error) {
	params := &stripe.PaymentIntentCancelParams{
		CancellationReason: stripe.String(string(stripe.PaymentIntentCancellationReasonRequestedByCustomer)),
	}
	params.Context = ctx

	pi, err := c.api.PaymentIntents.Cancel(id, params)
	if err != nil {
		c.logger.Error("Failed to cancel Stripe payment intent",
			zap.String("payment_intent_id", id),
			zap.Error(err))
		return nil, fmt.Errorf("stripe: failed to cancel payment intent: %w", err)
	}
	return intentFromStripe(pi), nil
}

// Refund refunds amountMinor of a captured intent; zero refunds the remainder
func (c *StripeClient) Refund(ctx context.Context, paymentIntentID string, amountMinor int64) (*RefundResult, error) {
	params := &stripe.RefundParams{PaymentIntent: stripe.String(paymentIntentID)}
	if amountMinor > 0 {
		params.Amount = stripe.Int64(amountMinor)
	}
	params.Context = ctx

	r, err := c.api.Refunds.New(params)
	if err != nil {
		c.logger.Error("Failed to refund Stripe payment intent",
			zap.String("payment_intent_id", paymentIntentID),
			zap.Int64("amount", amountMinor),
			zap.Error(err))
		return nil, fmt.Errorf("stripe: failed to refund payment: %w", err)
	}

	c.logger.Info("Refunded Stripe payment",
		zap.String("payment_intent_id", paymentIntentID),
		zap.String("refund_id", r.ID),
		zap.Int64("amount", r.Amount))
	return &RefundResult{
		ID:       r.ID,
		Amount:   r.Amount,
		Currency: string(r.Currency),
		Status:   string(r.Status),
	}, nil
}

// VerifyWebhook checks the Stripe-Signature header and decodes the event
func (c *StripeClient) VerifyWebhook(payload []byte, signature string) (stripe.Event, error) {
	if c.webhookSecret == "" {
		return stripe.Event{}, ErrWebhookNotConfigured
	}
	if signature == "" {
		return stripe.Event{}, ErrMissingSignature
	}
	event, err := webhook.ConstructEvent(payload, signature, c.webhookSecret)
	if err != nil {
		return stripe.Event{}, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	return event, nil
}

// IsStripeError reports whether err came back from the Stripe API with the given HTTP status
func IsStripeError(err error, status int) bool {
	var se *stripe.Error
	if errors.As(err, &se) {
		return se.HTTPStatusCode == status
	}
	return false
}

func intentFromStripe(pi *stripe.PaymentIntent) *Intent {
	intent := &Intent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Status:       IntentStatus(pi.Status),
		Amount:       pi.Amount,
		Currency:     string(pi.Currency),
		Metadata:     pi.Metadata,
	}
	if pi.LastPaymentError != nil {
		intent.LastError = pi.LastPaymentError.Msg
	}
	return intent
}
