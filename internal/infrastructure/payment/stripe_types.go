package payment

import "errors"

var (
	// ErrMissingSignature is returned when a webhook arrives without a Stripe-Signature header
	ErrMissingSignature = errors.New("stripe: missing Stripe-Signature header")
	// ErrInvalidSignature is returned when the webhook signature does not verify
	ErrInvalidSignature = errors.New("stripe: invalid webhook signature")
	// ErrWebhookNotConfigured is returned when no webhook secret is set
	ErrWebhookNotConfigured = errors.New("stripe: webhook secret not configured")
)

// IntentStatus mirrors the Stripe PaymentIntent status values
type IntentStatus string

const (
	IntentRequiresPaymentMethod IntentStatus = "requires_payment_method"
	IntentRequiresConfirmation  IntentStatus = "requires_confirmation"
	IntentRequiresAction        IntentStatus = "requires_action"
	IntentProcessing            IntentStatus = "processing"
	IntentRequiresCapture       IntentStatus = "requires_capture"
	IntentCanceled              IntentStatus = "canceled"
	IntentSucceeded             IntentStatus = "succeeded"
)

// IsPaid reports whether the customer has authorized the payment
func (s IntentStatus) IsPaid() bool {
	return s == IntentSucceeded || s == IntentRequiresCapture
}

// IsCaptured reports whether the funds have been captured
func (s IntentStatus) IsCaptured() bool {
	return s == IntentSucceeded
}

// IsMutable reports whether amount changes are still accepted
func (s IntentStatus) IsMutable() bool {
	switch s {
	case IntentRequiresPaymentMethod, IntentRequiresConfirmation, IntentRequiresAction:
		return true
	}
	return false
}

// CreateIntentRequest holds the input for CreatePaymentIntent
type CreateIntentRequest struct {
	AmountMinor    int64
	Currency       string
	CartID         string
	Email          string
	IdempotencyKey string
}

// Intent is the subset of a PaymentIntent the storefront uses
type Intent struct {
	ID           string            `json:"id"`
	ClientSecret string            `json:"client_secret"`
	Status       IntentStatus      `json:"status"`
	Amount       int64             `json:"amount"`
	Currency     string            `json:"currency"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	LastError    string            `json:"last_error,omitempty"`
}

// CartID returns the cart the intent was created for
func (i *Intent) CartID() string {
	return i.Metadata[MetadataCartID]
}

// RefundResult is the outcome of a refund
type RefundResult struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Status   string `json:"status"`
}
