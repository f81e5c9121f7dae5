package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
)

func serveSwagger(cfg config.SwaggerConfig, remoteAddr string, auth ...gin.HandlerFunc) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/swagger/*any", SwaggerProtection(cfg, auth...), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil)
	req.RemoteAddr = remoteAddr
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestSwaggerProtection(t *testing.T) {
	deny := func(c *gin.Context) { c.AbortWithStatus(http.StatusUnauthorized) }
	allow := func(c *gin.Context) {}

	tests := []struct {
		name       string
		cfg        config.SwaggerConfig
		remoteAddr string
		auth       []gin.HandlerFunc
		want       int
	}{
		{"disabled", config.SwaggerConfig{}, "10.0.0.1:1", nil, http.StatusNotFound},
		{"open", config.SwaggerConfig{Enabled: true}, "10.0.0.1:1", nil, http.StatusOK},
		{"exact ip allowed", config.SwaggerConfig{Enabled: true, AllowedIPs: []string{"10.0.0.1"}}, "10.0.0.1:1", nil, http.StatusOK},
		{"ip denied", config.SwaggerConfig{Enabled: true, AllowedIPs: []string{"10.0.0.1"}}, "192.168.1.1:1", nil, http.StatusForbidden},
		{"cidr allowed", config.SwaggerConfig{Enabled: true, AllowedIPs: []string{"10.0.0.0/8"}}, "10.20.30.40:1", nil, http.StatusOK},
		{"auth denies", config.SwaggerConfig{Enabled: true, RequireAuth: true}, "10.0.0.1:1", []gin.HandlerFunc{deny}, http.StatusUnauthorized},
		{"auth allows", config.SwaggerConfig{Enabled: true, RequireAuth: true}, "10.0.0.1:1", []gin.HandlerFunc{allow}, http.StatusOK},
		{"ip checked before auth", config.SwaggerConfig{Enabled: true, RequireAuth: true, AllowedIPs: []string{"10.0.0.1"}}, "192.168.1.1:1", []gin.HandlerFunc{deny}, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, serveSwagger(tt.cfg, tt.remoteAddr, tt.auth...).Code)
		})
	}
}

func TestIsIPAllowed(t *testing.T) {
	prefixes := parseAllowedIPs([]string{"127.0.0.1", "10.0.0.0/8", "::1", "not-an-ip"})

	assert.Len(t, prefixes, 3)
	assert.True(t, isIPAllowed("127.0.0.1", prefixes))
	assert.True(t, isIPAllowed("10.1.2.3", prefixes))
	assert.True(t, isIPAllowed("::1", prefixes))
	assert.True(t, isIPAllowed("::ffff:10.1.2.3", prefixes))
	assert.False(t, isIPAllowed("192.168.0.1", prefixes))
	assert.False(t, isIPAllowed("garbage", prefixes))
}
