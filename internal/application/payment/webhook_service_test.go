package payment

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	orderapp "github.com/storefront/backend/internal/application/order"
	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
	"github.com/storefront/backend/internal/infrastructure/cache"
	"github.com/storefront/backend/internal/infrastructure/payment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v81"
)

type fakeVerifier struct {
	event stripe.Event
	err   error
}

func (v *fakeVerifier) VerifyWebhook(_ []byte, _ string) (stripe.Event, error) {
	return v.event, v.err
}

type MockCarts struct {
	mock.Mock
}

func (m *MockCarts) CompleteCart(ctx context.Context, cartID uuid.UUID) (*orderapp.OrderResponse, error) {
	args := m.Called(ctx, cartID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*orderapp.OrderResponse), args.Error(1)
}

func (m *MockCarts) RecordPaymentFailure(ctx context.Context, paymentIntentID, message string) error {
	return m.Called(ctx, paymentIntentID, message).Error(0)
}

type MockCartRepository struct {
	mock.Mock
}

func (m *MockCartRepository) FindByID(ctx context.Context, id uuid.UUID) (*cart.Cart, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cart.Cart), args.Error(1)
}

func (m *MockCartRepository) FindByPaymentIntentID(ctx context.Context, paymentIntentID string) (*cart.Cart, error) {
	args := m.Called(ctx, paymentIntentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cart.Cart), args.Error(1)
}

func (m *MockCartRepository) Save(ctx context.Context, c *cart.Cart) error {
	return m.Called(ctx, c).Error(0)
}

func intentEvent(t *testing.T, id, eventType string, pi map[string]interface{}) stripe.Event {
	t.Helper()
	raw, err := json.Marshal(pi)
	require.NoError(t, err)
	return stripe.Event{
		ID:   id,
		Type: stripe.EventType(eventType),
		Data: &stripe.EventData{Raw: raw},
	}
}

func newTestWebhookService(t *testing.T, verifier WebhookVerifier) (*WebhookService, *MockCarts, *MockCartRepository) {
	t.Helper()
	store := cache.NewInMemoryIdempotencyStore()
	t.Cleanup(func() { _ = store.Close() })
	carts := new(MockCarts)
	repo := new(MockCartRepository)
	svc := NewWebhookService(WebhookServiceConfig{
		Verifier:    verifier,
		Carts:       carts,
		CartRepo:    repo,
		Idempotency: store,
	})
	return svc, carts, repo
}

func TestWebhookService_PaymentSucceeded(t *testing.T) {
	ctx := context.Background()
	cartID := uuid.New()
	event := intentEvent(t, "evt_1", "payment_intent.succeeded", map[string]interface{}{
		"id":       "pi_123",
		"object":   "payment_intent",
		"status":   "succeeded",
		"metadata": map[string]string{payment.MetadataCartID: cartID.String()},
	})
	svc, carts, _ := newTestWebhookService(t, &fakeVerifier{event: event})
	carts.On("CompleteCart", ctx, cartID).Return(&orderapp.OrderResponse{DisplayID: 1001}, nil).Once()

	result, err := svc.ProcessWebhook(ctx, []byte("{}"), "t=1,v1=sig")
	require.NoError(t, err)
	assert.True(t, result.Processed)
	assert.Equal(t, "evt_1", result.EventID)

	// Stripe redelivers the same event
	result, err = svc.ProcessWebhook(ctx, []byte("{}"), "t=1,v1=sig")
	require.NoError(t, err)
	assert.True(t, result.Duplicate)
	assert.False(t, result.Processed)
	carts.AssertNumberOfCalls(t, "CompleteCart", 1)
}

func TestWebhookService_FallsBackToCartLookup(t *testing.T) {
	ctx := context.Background()
	c := cart.NewCart(valueobject.EUR)
	event := intentEvent(t, "evt_2", "payment_intent.succeeded", map[string]interface{}{
		"id": "pi_456", "object": "payment_intent", "status": "succeeded",
	})
	svc, carts, repo := newTestWebhookService(t, &fakeVerifier{event: event})
	repo.On("FindByPaymentIntentID", ctx, "pi_456").Return(c, nil)
	carts.On("CompleteCart", ctx, c.ID).Return(&orderapp.OrderResponse{DisplayID: 1002}, nil)

	result, err := svc.ProcessWebhook(ctx, []byte("{}"), "sig")
	require.NoError(t, err)
	assert.True(t, result.Processed)
}

func TestWebhookService_ProcessingErrorsAreAcknowledged(t *testing.T) {
	ctx := context.Background()
	cartID := uuid.New()
	event := intentEvent(t, "evt_3", "payment_intent.succeeded", map[string]interface{}{
		"id": "pi_789", "object": "payment_intent",
		"metadata": map[string]string{payment.MetadataCartID: cartID.String()},
	})
	svc, carts, _ := newTestWebhookService(t, &fakeVerifier{event: event})
	carts.On("CompleteCart", ctx, cartID).
		Return(nil, shared.NewDomainError("INVALID_STATE", "payment not completed"))

	result, err := svc.ProcessWebhook(ctx, []byte("{}"), "sig")
	require.NoError(t, err)
	assert.False(t, result.Processed)
	assert.Contains(t, result.Message, "payment not completed")
}

func TestWebhookService_PaymentFailed(t *testing.T) {
	ctx := context.Background()
	event := intentEvent(t, "evt_4", "payment_intent.payment_failed", map[string]interface{}{
		"id": "pi_123", "object": "payment_intent",
		"last_payment_error": map[string]interface{}{"message": "Your card was declined."},
	})
	svc, carts, _ := newTestWebhookService(t, &fakeVerifier{event: event})
	carts.On("RecordPaymentFailure", ctx, "pi_123", "Your card was declined.").Return(nil)

	result, err := svc.ProcessWebhook(ctx, []byte("{}"), "sig")
	require.NoError(t, err)
	assert.True(t, result.Processed)
	carts.AssertExpectations(t)
}

func TestWebhookService_IgnoresOtherEvents(t *testing.T) {
	ctx := context.Background()
	event := stripe.Event{ID: "evt_5", Type: "charge.refunded", Data: &stripe.EventData{Raw: []byte("{}")}}
	svc, carts, _ := newTestWebhookService(t, &fakeVerifier{event: event})

	result, err := svc.ProcessWebhook(ctx, []byte("{}"), "sig")
	require.NoError(t, err)
	assert.False(t, result.Processed)
	assert.Equal(t, "Event type not handled", result.Message)
	carts.AssertNotCalled(t, "CompleteCart", mock.Anything, mock.Anything)
}

func TestWebhookService_SignatureFailures(t *testing.T) {
	ctx := context.Background()

	svc, _, _ := newTestWebhookService(t, &fakeVerifier{err: payment.ErrMissingSignature})
	_, err := svc.ProcessWebhook(ctx, []byte("{}"), "")
	assert.True(t, errors.Is(err, payment.ErrMissingSignature))

	svc, _, _ = newTestWebhookService(t, &fakeVerifier{err: payment.ErrInvalidSignature})
	_, err = svc.ProcessWebhook(ctx, []byte("{}"), "bad")
	assert.True(t, errors.Is(err, payment.ErrInvalidSignature))

	svc = NewWebhookService(WebhookServiceConfig{})
	_, err = svc.ProcessWebhook(ctx, []byte("{}"), "sig")
	assert.True(t, errors.Is(err, payment.ErrWebhookNotConfigured))
}
