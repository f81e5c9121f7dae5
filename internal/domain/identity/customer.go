package identity

import (
	"regexp"
	"strings"

	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
	"golang.org/x/crypto/bcrypt"
)

// Role is the role carried in access tokens
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

// IsValid checks if the role is known
func (r Role) IsValid() bool {
	return r == RoleCustomer || r == RoleAdmin
}

// String returns the string representation of the role
func (r Role) String() string {
	return string(r)
}

// bcryptCost is a variable so tests can lower it
var bcryptCost = 12

// Customer is a shopper. Guest customers have no password.
type Customer struct {
	shared.BaseAggregateRoot
	Email        string
	FirstName    string
	LastName     string
	Phone        string
	PasswordHash string
	HasAccount   bool
}

// NewGuestCustomer creates a customer record without login credentials
func NewGuestCustomer(email string) (*Customer, error) {
	normalized, err := valueobject.NormalizeEmail(email)
	if err != nil {
		return nil, err
	}
	return &Customer{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Email:             normalized,
	}, nil
}

// NewRegisteredCustomer creates a customer with an account
func NewRegisteredCustomer(email, password, firstName, lastName string) (*Customer, error) {
	c, err := NewGuestCustomer(email)
	if err != nil {
		return nil, err
	}
	if err := c.Register(password, firstName, lastName); err != nil {
		return nil, err
	}
	return c, nil
}

// Register upgrades a guest to an account holder
func (c *Customer) Register(password, firstName, lastName string) error {
	if c.HasAccount {
		return shared.NewDomainError("ALREADY_EXISTS", "A customer with this email already has an account")
	}
	if err := validatePassword(password); err != nil {
		return err
	}
	hash, err := hashPassword(password)
	if err != nil {
		return shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}
	c.PasswordHash = hash
	c.HasAccount = true
	c.FirstName = strings.TrimSpace(firstName)
	c.LastName = strings.TrimSpace(lastName)
	c.Touch()
	c.IncrementVersion()
	c.AddDomainEvent(NewCustomerRegisteredEvent(c))
	return nil
}

// UpdateProfile updates name and phone
func (c *Customer) UpdateProfile(firstName, lastName, phone string) error {
	if len(phone) > 50 {
		return shared.NewDomainError("INVALID_PHONE", "Phone cannot exceed 50 characters")
	}
	c.FirstName = strings.TrimSpace(firstName)
	c.LastName = strings.TrimSpace(lastName)
	c.Phone = strings.TrimSpace(phone)
	c.Touch()
	c.IncrementVersion()
	return nil
}

// VerifyPassword checks the password against the stored hash
func (c *Customer) VerifyPassword(password string) bool {
	if !c.HasAccount || c.PasswordHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(c.PasswordHash), []byte(password)) == nil
}

// FullName joins first and last name
func (c *Customer) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

func validatePassword(password string) error {
	if password == "" {
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot be empty")
	}
	if len(password) < 8 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must be at least 8 characters")
	}
	if len(password) > 72 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot exceed 72 characters")
	}

	hasLetter := regexp.MustCompile(`[a-zA-Z]`).MatchString(password)
	hasNumber := regexp.MustCompile(`[0-9]`).MatchString(password)
	if !hasLetter || !hasNumber {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must contain at least one letter and one number")
	}
	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
