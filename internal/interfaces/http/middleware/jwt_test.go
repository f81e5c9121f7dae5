package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/storefront/backend/internal/infrastructure/auth"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestJWTService() *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                "test-secret-key-at-least-32-chars",
		AccessTokenExpiration: 15 * time.Minute,
		Issuer:                "test-issuer",
	})
}

func newTestToken(t *testing.T, jwtService *auth.JWTService, role string) (string, uuid.UUID) {
	t.Helper()
	userID := uuid.New()
	token, err := jwtService.GenerateAccessToken(userID, "jane@example.com", role)
	require.NoError(t, err)
	return token.AccessToken, userID
}

func serve(router *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestJWTAuthMiddleware_ValidToken(t *testing.T) {
	jwtService := newTestJWTService()
	token, userID := newTestToken(t, jwtService, auth.RoleCustomer)

	router := gin.New()
	router.Use(JWTAuthMiddleware(jwtService))
	router.GET("/test", func(c *gin.Context) {
		claims := GetJWTClaims(c)
		require.NotNil(t, claims)
		assert.Equal(t, userID.String(), claims.UserID)
		assert.Equal(t, userID.String(), GetJWTUserID(c))
		assert.Equal(t, auth.RoleCustomer, GetJWTRole(c))
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	assert.Equal(t, http.StatusOK, serve(router, token).Code)
}

func TestJWTAuthMiddleware_Rejections(t *testing.T) {
	jwtService := newTestJWTService()
	router := gin.New()
	router.Use(JWTAuthMiddleware(jwtService))
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	t.Run("missing header", func(t *testing.T) {
		rec := serve(router, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("wrong scheme", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		rec := serve(router, "not-a-jwt")
		require.Equal(t, http.StatusUnauthorized, rec.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, dto.ErrCodeTokenInvalid, resp.Error.Code)
	})

	t.Run("token signed with another secret", func(t *testing.T) {
		other := auth.NewJWTService(config.JWTConfig{Secret: "another-secret-key-of-32-characters", Issuer: "test-issuer"})
		token, _ := newTestToken(t, other, auth.RoleAdmin)
		assert.Equal(t, http.StatusUnauthorized, serve(router, token).Code)
	})

	t.Run("expired token", func(t *testing.T) {
		short := auth.NewJWTService(config.JWTConfig{
			Secret:                "test-secret-key-at-least-32-chars",
			AccessTokenExpiration: time.Nanosecond,
			Issuer:                "test-issuer",
		})
		token, _ := newTestToken(t, short, auth.RoleCustomer)
		time.Sleep(time.Second)

		rec := serve(router, token)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		var resp dto.Response
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, dto.ErrCodeTokenExpired, resp.Error.Code)
	})
}

func TestJWTAuthMiddleware_SkipPaths(t *testing.T) {
	router := gin.New()
	router.Use(JWTAuthMiddlewareWithConfig(JWTMiddlewareConfig{
		JWTService: newTestJWTService(),
		SkipPaths:  []string{"/test"},
	}))
	router.GET("/test", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	assert.Equal(t, http.StatusOK, serve(router, "").Code)
}

func TestOptionalJWTAuthMiddleware(t *testing.T) {
	jwtService := newTestJWTService()
	token, userID := newTestToken(t, jwtService, auth.RoleCustomer)

	router := gin.New()
	router.Use(OptionalJWTAuthMiddleware(jwtService))
	router.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, GetJWTUserID(c))
	})

	rec := serve(router, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())

	rec = serve(router, "broken")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())

	rec = serve(router, token)
	assert.Equal(t, userID.String(), rec.Body.String())
}

func TestRequireRole(t *testing.T) {
	jwtService := newTestJWTService()
	router := gin.New()
	router.Use(JWTAuthMiddleware(jwtService), RequireAdmin())
	router.GET("/test", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	adminToken, _ := newTestToken(t, jwtService, auth.RoleAdmin)
	customerToken, _ := newTestToken(t, jwtService, auth.RoleCustomer)

	assert.Equal(t, http.StatusOK, serve(router, adminToken).Code)
	assert.Equal(t, http.StatusForbidden, serve(router, customerToken).Code)
}

func TestRequireRole_WithoutClaims(t *testing.T) {
	router := gin.New()
	router.Use(RequireCustomer())
	router.GET("/test", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	assert.Equal(t, http.StatusUnauthorized, serve(router, "").Code)
}
