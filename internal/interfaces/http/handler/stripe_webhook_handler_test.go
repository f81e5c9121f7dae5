package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	paymentapp "github.com/storefront/backend/internal/application/payment"
	"github.com/storefront/backend/internal/infrastructure/payment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func performWebhook(t *testing.T, processor WebhookProcessor, body []byte, signature string) (*httptest.ResponseRecorder, StripeWebhookResponse) {
	t.Helper()
	h := NewStripeWebhookHandler(processor)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/hooks/stripe", bytes.NewReader(body))
	if signature != "" {
		c.Request.Header.Set("Stripe-Signature", signature)
	}
	h.HandleStripeWebhook(c)

	var resp StripeWebhookResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w, resp
}

func TestStripeWebhookHandler(t *testing.T) {
	payload := []byte(`{"id":"evt_1","type":"payment_intent.succeeded"}`)

	tests := []struct {
		name         string
		body         []byte
		signature    string
		result       *paymentapp.WebhookResult
		err          error
		wantStatus   int
		wantReceived bool
	}{
		{
			name:         "processed",
			body:         payload,
			signature:    "t=1,v1=abc",
			result:       &paymentapp.WebhookResult{EventID: "evt_1", EventType: "payment_intent.succeeded", Processed: true},
			wantStatus:   http.StatusOK,
			wantReceived: true,
		},
		{
			name:         "duplicate",
			body:         payload,
			signature:    "t=1,v1=abc",
			result:       &paymentapp.WebhookResult{EventID: "evt_1", Duplicate: true, Message: "Event already processed"},
			wantStatus:   http.StatusOK,
			wantReceived: true,
		},
		{
			name:         "processing failure still acknowledged",
			body:         payload,
			signature:    "t=1,v1=abc",
			result:       &paymentapp.WebhookResult{EventID: "evt_1", Message: "cart not found"},
			wantStatus:   http.StatusOK,
			wantReceived: true,
		},
		{
			name:       "bad signature",
			body:       payload,
			signature:  "t=1,v1=bad",
			err:        errors.New("signature mismatch"),
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "not configured",
			body:       payload,
			signature:  "t=1,v1=abc",
			err:        payment.ErrWebhookNotConfigured,
			wantStatus: http.StatusServiceUnavailable,
		},
		{
			name:       "missing signature",
			body:       payload,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "payload too large",
			body:       bytes.Repeat([]byte("a"), maxWebhookPayloadSize+1),
			signature:  "t=1,v1=abc",
			wantStatus: http.StatusRequestEntityTooLarge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			processor := new(MockWebhookProcessor)
			if tt.result != nil || tt.err != nil {
				processor.On("ProcessWebhook", mock.Anything, tt.body, tt.signature).Return(tt.result, tt.err)
			}

			w, resp := performWebhook(t, processor, tt.body, tt.signature)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantReceived, resp.Received)
			processor.AssertExpectations(t)
		})
	}
}

func TestStripeWebhookHandler_HidesProcessingError(t *testing.T) {
	processor := new(MockWebhookProcessor)
	processor.On("ProcessWebhook", mock.Anything, mock.Anything, mock.Anything).
		Return(&paymentapp.WebhookResult{EventID: "evt_2", Message: "pq: connection refused"}, nil)

	_, resp := performWebhook(t, processor, []byte(`{}`), "t=1,v1=abc")

	assert.NotContains(t, resp.Message, "connection refused")
	assert.Equal(t, "evt_2", resp.EventID)
}
