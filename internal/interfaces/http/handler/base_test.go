package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/interfaces/http/dto"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	if err := middleware.SetupValidator(); err != nil {
		panic(err)
	}
}

// setJWTContext simulates an authenticated request without a real token
func setJWTContext(c *gin.Context, userID uuid.UUID, role string) {
	c.Set(middleware.JWTUserIDKey, userID.String())
	c.Set(middleware.JWTRoleKey, role)
}

func newTestContext(method, target string) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, target, nil)
	return c, w
}

func newJSONContext(t *testing.T, method, target string, body any) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, target, bytes.NewReader(raw))
	c.Request.Header.Set("Content-Type", "application/json")
	return c, w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestGetRequestID(t *testing.T) {
	c, _ := newTestContext(http.MethodGet, "/")
	assert.Empty(t, getRequestID(c))

	c.Request.Header.Set(middleware.RequestIDHeader, "header-id")
	assert.Equal(t, "header-id", getRequestID(c))

	c.Set("request_id", "ctx-id")
	assert.Equal(t, "ctx-id", getRequestID(c))
}

func TestBaseHandlerCustomerID(t *testing.T) {
	h := &BaseHandler{}

	t.Run("authenticated", func(t *testing.T) {
		c, _ := newTestContext(http.MethodGet, "/")
		userID := uuid.New()
		setJWTContext(c, userID, "customer")

		id, ok := h.customerID(c)
		assert.True(t, ok)
		assert.Equal(t, userID, id)
	})

	t.Run("anonymous", func(t *testing.T) {
		c, w := newTestContext(http.MethodGet, "/")

		_, ok := h.customerID(c)
		assert.False(t, ok)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestBaseHandlerPathUUID(t *testing.T) {
	h := &BaseHandler{}
	c, w := newTestContext(http.MethodGet, "/")
	c.Params = gin.Params{{Key: "id", Value: "not-a-uuid"}}

	_, ok := h.pathUUID(c, "id")
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrCodeBadRequest, decodeResponse(t, w).Error.Code)
}

func TestBaseHandlerSuccessWithMeta(t *testing.T) {
	h := &BaseHandler{}
	c, w := newTestContext(http.MethodGet, "/")

	h.SuccessWithMeta(c, []string{"a", "b"}, 45, 2, 20)

	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(45), resp.Meta.Total)
	assert.Equal(t, 3, resp.Meta.TotalPages)
}

func TestBaseHandlerAttachment(t *testing.T) {
	h := &BaseHandler{}
	c, w := newTestContext(http.MethodGet, "/")

	h.Attachment(c, "invoice-42.pdf", "application/pdf", []byte("%PDF-1.7"))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="invoice-42.pdf"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, "%PDF-1.7", w.Body.String())
}

func TestBaseHandlerHandleDomainError(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{shared.ErrNotFound, http.StatusNotFound, dto.ErrCodeNotFound},
		{shared.NewDomainError("INVALID_STATE", "Order is canceled"), http.StatusUnprocessableEntity, dto.ErrCodeInvalidState},
		{shared.NewDomainError("UPSTREAM_FAILURE", "sendcloud: 500"), http.StatusBadGateway, dto.ErrCodeUpstreamFailure},
		{shared.NewDomainError("INVALID_EMAIL", "bad email"), http.StatusBadRequest, "ERR_INVALID_EMAIL"},
		{fmt.Errorf("wrapped: %w", shared.ErrInsufficientStock), http.StatusUnprocessableEntity, dto.ErrCodeInsufficientStock},
		{errors.New("db down"), http.StatusInternalServerError, dto.ErrCodeInternal},
	}

	h := &BaseHandler{}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			c, w := newTestContext(http.MethodGet, "/")
			c.Set("request_id", "req-1")

			h.HandleDomainError(c, tt.err)

			assert.Equal(t, tt.status, w.Code)
			resp := decodeResponse(t, w)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
			assert.Equal(t, "req-1", resp.Error.RequestID)
		})
	}
}

func TestBaseHandlerNonDomainErrorHidesDetails(t *testing.T) {
	h := &BaseHandler{}
	c, w := newTestContext(http.MethodGet, "/")

	h.HandleDomainError(c, errors.New("pq: password authentication failed"))

	assert.NotContains(t, w.Body.String(), "password")
}
