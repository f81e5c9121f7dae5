package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	paymentapp "github.com/storefront/backend/internal/application/payment"
	"github.com/storefront/backend/internal/infrastructure/payment"
)

// Maximum webhook payload size (64KB - Stripe webhooks are typically small)
const maxWebhookPayloadSize = 65536

// WebhookProcessor verifies and handles Stripe events
type WebhookProcessor interface {
	ProcessWebhook(ctx context.Context, payload []byte, signature string) (*paymentapp.WebhookResult, error)
}

// StripeWebhookHandler handles Stripe webhook endpoints
// These endpoints are called by Stripe and do not require authentication
type StripeWebhookHandler struct {
	BaseHandler
	processor WebhookProcessor
}

// NewStripeWebhookHandler creates a new StripeWebhookHandler
func NewStripeWebhookHandler(processor WebhookProcessor) *StripeWebhookHandler {
	return &StripeWebhookHandler{processor: processor}
}

// StripeWebhookResponse represents the response for Stripe webhook
//
//	@Description	Stripe webhook response
type StripeWebhookResponse struct {
	Received  bool   `json:"received" example:"true"`
	EventID   string `json:"event_id,omitempty" example:"evt_1234567890"`
	EventType string `json:"event_type,omitempty" example:"payment_intent.succeeded"`
	Duplicate bool   `json:"duplicate,omitempty" example:"false"`
	Message   string `json:"message,omitempty" example:"Webhook processed successfully"`
}

// HandleStripeWebhook godoc
//
//	@ID				handleStripeWebhook
//	@Summary		Handle Stripe webhook
//	@Description	Completes the cart of a succeeded payment intent. Redelivered events are acknowledged without being processed again.
//	@Tags			webhooks
//	@Accept			json
//	@Produce		json
//	@Param			Stripe-Signature	header		string					true	"Stripe webhook signature"
//	@Success		200					{object}	StripeWebhookResponse	"Webhook received"
//	@Failure		400					{object}	StripeWebhookResponse	"Invalid request"
//	@Failure		401					{object}	StripeWebhookResponse	"Invalid signature"
//	@Failure		413					{object}	StripeWebhookResponse	"Payload too large"
//	@Failure		503					{object}	StripeWebhookResponse	"Payments not configured"
//	@Router			/hooks/stripe [post]
func (h *StripeWebhookHandler) HandleStripeWebhook(c *gin.Context) {
	// Stripe requires the raw body for signature verification
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookPayloadSize+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, StripeWebhookResponse{
			Received: false,
			Message:  "Failed to read request body",
		})
		return
	}

	if len(payload) > maxWebhookPayloadSize {
		c.JSON(http.StatusRequestEntityTooLarge, StripeWebhookResponse{
			Received: false,
			Message:  "Payload too large",
		})
		return
	}

	signature := c.GetHeader("Stripe-Signature")
	if signature == "" {
		c.JSON(http.StatusBadRequest, StripeWebhookResponse{
			Received: false,
			Message:  "Missing Stripe-Signature header",
		})
		return
	}

	result, err := h.processor.ProcessWebhook(c.Request.Context(), payload, signature)
	if err != nil {
		if errors.Is(err, payment.ErrWebhookNotConfigured) {
			c.JSON(http.StatusServiceUnavailable, StripeWebhookResponse{
				Received: false,
				Message:  "Payments are not configured",
			})
			return
		}
		c.JSON(http.StatusUnauthorized, StripeWebhookResponse{
			Received: false,
			Message:  "Webhook signature verification failed",
		})
		return
	}

	// Processing failures still answer 200 so Stripe does not retry them.
	// Internal error details stay in the logs.
	message := result.Message
	if !result.Processed && !result.Duplicate && message != "Event type not handled" {
		message = "Webhook received but processing encountered an issue"
	}
	c.JSON(http.StatusOK, StripeWebhookResponse{
		Received:  true,
		EventID:   result.EventID,
		EventType: result.EventType,
		Duplicate: result.Duplicate,
		Message:   message,
	})
}
