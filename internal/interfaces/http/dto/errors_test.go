package dto

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Codes as the domain and application layers raise them, and what a client sees.
func TestDomainCodeResponses(t *testing.T) {
	tests := []struct {
		domainCode string
		wantCode   string
		wantStatus int
	}{
		{"NOT_FOUND", ErrCodeNotFound, http.StatusNotFound},
		{"ALREADY_EXISTS", ErrCodeAlreadyExists, http.StatusConflict},
		{"CONCURRENCY_CONFLICT", ErrCodeConcurrencyConflict, http.StatusConflict},
		{"INVALID_STATE", ErrCodeInvalidState, http.StatusUnprocessableEntity},
		{"INVALID_QUANTITY", ErrCodeInvalidQuantity, http.StatusUnprocessableEntity},
		{"INSUFFICIENT_STOCK", ErrCodeInsufficientStock, http.StatusUnprocessableEntity},
		{"UPSTREAM_FAILURE", ErrCodeUpstreamFailure, http.StatusBadGateway},
		{"PAYMENT_NOT_CONFIGURED", ErrCodePaymentNotConfigured, http.StatusServiceUnavailable},
		{"PRINTING_NOT_CONFIGURED", ErrCodePrintingNotConfigured, http.StatusServiceUnavailable},
		{"INVALID_CREDENTIALS", ErrCodeUnauthorized, http.StatusUnauthorized},
		{"FORBIDDEN", ErrCodeForbidden, http.StatusForbidden},
		{"DUPLICATE_SKU", ErrCodeInvalidInput, http.StatusBadRequest},
		{"PASSWORD_HASH_ERROR", ErrCodeInternal, http.StatusInternalServerError},

		// Field-level domain validation is a client error through the prefix rule
		{"INVALID_HANDLE", "ERR_INVALID_HANDLE", http.StatusBadRequest},
		{"INVALID_CURRENCY", "ERR_INVALID_CURRENCY", http.StatusBadRequest},
		{"INVALID_ADDRESS", "ERR_INVALID_ADDRESS", http.StatusBadRequest},
		{"INVALID_PROVIDER", "ERR_INVALID_PROVIDER", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.domainCode, func(t *testing.T) {
			code := NormalizeErrorCode(tt.domainCode)
			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, tt.wantStatus, GetHTTPStatus(code))
		})
	}
}

func TestGetHTTPStatus_InvalidPrefix(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		expected int
	}{
		{"unlisted invalid code", "ERR_INVALID_SKU", http.StatusBadRequest},
		{"listed invalid state wins over prefix", ErrCodeInvalidState, http.StatusUnprocessableEntity},
		{"listed invalid quantity wins over prefix", ErrCodeInvalidQuantity, http.StatusUnprocessableEntity},
		{"prefix without trailing part", "ERR_INVALID", http.StatusInternalServerError},
		{"unprefixed domain code", "INVALID_EMAIL", http.StatusInternalServerError},
		{"unknown code", "ERR_CART_EXPLODED", http.StatusInternalServerError},
		{"empty code", "", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetHTTPStatus(tt.code))
		})
	}
}

func TestNormalizeErrorCode_PassThrough(t *testing.T) {
	assert.Equal(t, ErrCodeWebhookSignature, NormalizeErrorCode(ErrCodeWebhookSignature))
	assert.Equal(t, "ERR_INVALID_EMAIL", NormalizeErrorCode("ERR_INVALID_EMAIL"))
	assert.Equal(t, "ERR_INVALID_EMAIL", NormalizeErrorCode("INVALID_EMAIL"))
	assert.Empty(t, NormalizeErrorCode(""))
}

func TestLegacyMappingTargetsHaveStatus(t *testing.T) {
	for domainCode, code := range LegacyErrorCodeMapping {
		_, ok := ErrorCodeHTTPStatus[code]
		assert.True(t, ok, "%s maps to %s which has no HTTP status", domainCode, code)
	}
	for code, status := range ErrorCodeHTTPStatus {
		assert.True(t, strings.HasPrefix(code, "ERR_"), code)
		assert.GreaterOrEqual(t, status, http.StatusBadRequest, code)
	}
}

func TestNewErrorResponse_NormalizesDomainCode(t *testing.T) {
	resp := NewErrorResponseWithRequestID("PRINTING_NOT_CONFIGURED", "Invoice printing is not configured", "req-42")

	assert.False(t, resp.Success)
	assert.Nil(t, resp.Data)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodePrintingNotConfigured, resp.Error.Code)
	assert.Equal(t, "req-42", resp.Error.RequestID)
	assert.WithinDuration(t, time.Now(), resp.Error.Timestamp, time.Second)

	raw, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), `"data"`)
	assert.Contains(t, string(raw), `"code":"ERR_PRINTING_NOT_CONFIGURED"`)
}

func TestNewValidationErrorResponse_ListsFields(t *testing.T) {
	resp := NewValidationErrorResponse("Validation failed", "req-7", []ValidationDetail{
		{Field: "email", Message: "must be a valid email"},
		{Field: "quantity", Message: "must be at least 1"},
	})

	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeValidation, resp.Error.Code)
	require.Len(t, resp.Error.Details, 2)
	assert.Equal(t, "quantity", resp.Error.Details[1].Field)
}

func TestNewSuccessResponseWithMeta_Pages(t *testing.T) {
	tests := []struct {
		name          string
		total         int64
		pageSize      int
		expectedPages int
		expectedSize  int
	}{
		{"exact pages", 40, 20, 2, 20},
		{"partial last page", 41, 20, 3, 20},
		{"empty catalog", 0, 20, 0, 20},
		{"single short page", 3, 20, 1, 20},
		{"missing page size uses default", 45, 0, 3, DefaultPageSize},
		{"negative page size uses default", 45, -5, 3, DefaultPageSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := NewSuccessResponseWithMeta([]string{}, tt.total, 1, tt.pageSize)
			assert.True(t, resp.Success)
			assert.Nil(t, resp.Error)
			require.NotNil(t, resp.Meta)
			assert.Equal(t, tt.expectedPages, resp.Meta.TotalPages)
			assert.Equal(t, tt.expectedSize, resp.Meta.PageSize)
			assert.Equal(t, tt.total, resp.Meta.Total)
		})
	}
}

func TestNewSuccessResponse_NoMeta(t *testing.T) {
	resp := NewSuccessResponse(map[string]string{"handle": "linen-shirt"})
	assert.True(t, resp.Success)
	assert.Nil(t, resp.Meta)
	assert.Nil(t, resp.Error)
}
