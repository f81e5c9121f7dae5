package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTService() *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:                "test-secret-key-at-least-32-chars",
		AccessTokenExpiration: 15 * time.Minute,
		Issuer:                "test-issuer",
	})
}

func TestNewJWTService_DefaultsExpiration(t *testing.T) {
	svc := NewJWTService(config.JWTConfig{Secret: "s"})
	assert.Equal(t, 24*time.Hour, svc.GetExpiration())
}

func TestGenerateAccessToken(t *testing.T) {
	svc := newTestJWTService()
	userID := uuid.New()

	token, err := svc.GenerateAccessToken(userID, "jane@example.com", RoleCustomer)
	require.NoError(t, err)
	assert.NotEmpty(t, token.AccessToken)
	assert.Equal(t, "Bearer", token.TokenType)
	assert.True(t, token.ExpiresAt.After(time.Now()))

	claims, err := svc.ValidateAccessToken(token.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.UserID)
	assert.Equal(t, "jane@example.com", claims.Email)
	assert.Equal(t, RoleCustomer, claims.Role)
	assert.False(t, claims.IsAdmin())
	assert.Equal(t, "test-issuer", claims.Issuer)

	parsed, err := claims.GetUserUUID()
	require.NoError(t, err)
	assert.Equal(t, userID, parsed)
}

func TestGenerateAccessToken_Admin(t *testing.T) {
	svc := newTestJWTService()
	token, err := svc.GenerateAccessToken(uuid.New(), "ops@example.com", RoleAdmin)
	require.NoError(t, err)

	claims, err := svc.ValidateAccessToken(token.AccessToken)
	require.NoError(t, err)
	assert.True(t, claims.IsAdmin())
}

func TestGenerateAccessToken_RejectsBadInput(t *testing.T) {
	svc := newTestJWTService()

	_, err := svc.GenerateAccessToken(uuid.Nil, "a@b.c", RoleCustomer)
	assert.ErrorIs(t, err, ErrMissingUserID)

	_, err = svc.GenerateAccessToken(uuid.New(), "a@b.c", "superuser")
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestValidateAccessToken_Expired(t *testing.T) {
	svc := NewJWTService(config.JWTConfig{Secret: "test-secret-key-at-least-32-chars", AccessTokenExpiration: time.Millisecond})
	token, err := svc.GenerateAccessToken(uuid.New(), "a@b.c", RoleCustomer)
	require.NoError(t, err)

	time.Sleep(1100 * time.Millisecond)

	_, err = svc.ValidateAccessToken(token.AccessToken)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateAccessToken_WrongSecret(t *testing.T) {
	token, err := newTestJWTService().GenerateAccessToken(uuid.New(), "a@b.c", RoleCustomer)
	require.NoError(t, err)

	other := NewJWTService(config.JWTConfig{Secret: "another-secret-key-of-32-characters"})
	_, err = other.ValidateAccessToken(token.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateAccessToken_Malformed(t *testing.T) {
	_, err := newTestJWTService().ValidateAccessToken("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateAccessToken_WrongSigningMethod(t *testing.T) {
	claims := &Claims{UserID: uuid.NewString(), Role: RoleAdmin, TokenType: TokenTypeAccess}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = newTestJWTService().ValidateAccessToken(unsigned)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateAccessToken_WrongTokenType(t *testing.T) {
	svc := newTestJWTService()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
		UserID:           uuid.NewString(),
		Role:             RoleCustomer,
		TokenType:        "refresh",
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(svc.secret)
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(signed)
	assert.ErrorIs(t, err, ErrInvalidTokenType)
}
