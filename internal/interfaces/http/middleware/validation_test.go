package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/storefront/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signupForm struct {
	Email     string `json:"email" binding:"required,email"`
	FirstName string `json:"first_name" binding:"required,max=5"`
	Quantity  int    `json:"quantity" binding:"min=1"`
}

type labelForm struct {
	Format string `form:"format" binding:"omitempty,label_format"`
}

func validationRouter(t *testing.T) *gin.Engine {
	t.Helper()
	require.NoError(t, SetupValidator())

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/signup", func(c *gin.Context) {
		var req signupForm
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.Status(http.StatusOK)
	})
	router.GET("/label", func(c *gin.Context) {
		var q labelForm
		if err := c.ShouldBindQuery(&q); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.Status(http.StatusOK)
	})
	return router
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) dto.ErrorInfo {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.False(t, resp.Success)
	return *resp.Error
}

func TestHandleValidationError(t *testing.T) {
	router := validationRouter(t)

	t.Run("reports fields by json name", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/signup", strings.NewReader(`{"email":"nope","first_name":"Alexandra","quantity":0}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		info := decodeError(t, w)
		assert.Equal(t, dto.ErrCodeValidation, info.Code)

		messages := map[string]string{}
		for _, d := range info.Details {
			messages[d.Field] = d.Message
		}
		assert.Equal(t, map[string]string{
			"email":      "Invalid email format",
			"first_name": "Must be at most 5 characters",
			"quantity":   "Must be at least 1",
		}, messages)
	})

	t.Run("malformed json has no details", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/signup", strings.NewReader(`{`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Empty(t, decodeError(t, w).Details)
	})

	t.Run("valid input passes", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/signup", strings.NewReader(`{"email":"jo@example.com","first_name":"Jo","quantity":2}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestLabelFormatValidator(t *testing.T) {
	router := validationRouter(t)

	tests := []struct {
		query string
		code  int
	}{
		{"", http.StatusOK},
		{"?format=normal_printer", http.StatusOK},
		{"?format=label_printer", http.StatusOK},
		{"?format=a4", http.StatusBadRequest},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/label"+tt.query, nil))
		assert.Equal(t, tt.code, w.Code, tt.query)
	}
}
