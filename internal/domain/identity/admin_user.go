package identity

import (
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
	"golang.org/x/crypto/bcrypt"
)

// AdminUser is a back-office operator
type AdminUser struct {
	shared.BaseAggregateRoot
	Email        string
	PasswordHash string
}

// NewAdminUser creates an admin with a hashed password
func NewAdminUser(email, password string) (*AdminUser, error) {
	normalized, err := valueobject.NormalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	hash, err := hashPassword(password)
	if err != nil {
		return nil, shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}
	return &AdminUser{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Email:             normalized,
		PasswordHash:      hash,
	}, nil
}

// VerifyPassword checks the password against the stored hash
func (a *AdminUser) VerifyPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)) == nil
}
