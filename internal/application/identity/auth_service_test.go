package identity

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/auth"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockCustomerRepository is a mock implementation of identity.CustomerRepository
type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Customer), args.Error(1)
}

func (m *MockCustomerRepository) FindByEmail(ctx context.Context, email string) (*identity.Customer, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Customer), args.Error(1)
}

func (m *MockCustomerRepository) Save(ctx context.Context, customer *identity.Customer) error {
	return m.Called(ctx, customer).Error(0)
}

// MockAdminUserRepository is a mock implementation of identity.AdminUserRepository
type MockAdminUserRepository struct {
	mock.Mock
}

func (m *MockAdminUserRepository) FindByEmail(ctx context.Context, email string) (*identity.AdminUser, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.AdminUser), args.Error(1)
}

func (m *MockAdminUserRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAdminUserRepository) Save(ctx context.Context, admin *identity.AdminUser) error {
	return m.Called(ctx, admin).Error(0)
}

// MockEventPublisher is a mock implementation of shared.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	return m.Called(ctx, events).Error(0)
}

func newTestAuthService() (*AuthService, *MockCustomerRepository, *MockAdminUserRepository, *MockEventPublisher, *auth.JWTService) {
	customers := new(MockCustomerRepository)
	admins := new(MockAdminUserRepository)
	pub := new(MockEventPublisher)
	jwtSvc := auth.NewJWTService(config.JWTConfig{
		Secret:                "test-secret-key-that-is-long-enough-32",
		AccessTokenExpiration: time.Hour,
		Issuer:                "storefront-test",
	})
	return NewAuthService(customers, admins, jwtSvc, pub, nil), customers, admins, pub, jwtSvc
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a new account", func(t *testing.T) {
		svc, customers, _, pub, _ := newTestAuthService()
		customers.On("FindByEmail", ctx, "jane@example.com").Return(nil, shared.ErrNotFound)
		customers.On("Save", ctx, mock.AnythingOfType("*identity.Customer")).Return(nil)
		pub.On("Publish", ctx, mock.Anything).Return(nil)

		resp, err := svc.Register(ctx, RegisterRequest{Email: "Jane@Example.com", Password: "secret123", FirstName: "Jane"})
		require.NoError(t, err)
		assert.Equal(t, "jane@example.com", resp.Email)
		assert.True(t, resp.HasAccount)

		events := pub.Calls[0].Arguments.Get(1).([]shared.DomainEvent)
		require.Len(t, events, 1)
		assert.Equal(t, identity.EventTypeCustomerRegistered, events[0].EventType())
	})

	t.Run("upgrades a guest", func(t *testing.T) {
		svc, customers, _, pub, _ := newTestAuthService()
		guest, err := identity.NewGuestCustomer("guest@example.com")
		require.NoError(t, err)
		customers.On("FindByEmail", ctx, "guest@example.com").Return(guest, nil)
		customers.On("Save", ctx, guest).Return(nil)
		pub.On("Publish", ctx, mock.Anything).Return(nil)

		resp, err := svc.Register(ctx, RegisterRequest{Email: "guest@example.com", Password: "secret123"})
		require.NoError(t, err)
		assert.Equal(t, guest.ID, resp.ID)
		assert.True(t, guest.HasAccount)
	})

	t.Run("rejects existing account", func(t *testing.T) {
		svc, customers, _, _, _ := newTestAuthService()
		existing, err := identity.NewRegisteredCustomer("jane@example.com", "secret123", "", "")
		require.NoError(t, err)
		customers.On("FindByEmail", ctx, "jane@example.com").Return(existing, nil)

		_, err = svc.Register(ctx, RegisterRequest{Email: "jane@example.com", Password: "secret123"})
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
		customers.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	customer, err := identity.NewRegisteredCustomer("jane@example.com", "secret123", "Jane", "Doe")
	require.NoError(t, err)

	svc, customers, _, _, jwtSvc := newTestAuthService()
	customers.On("FindByEmail", ctx, "jane@example.com").Return(customer, nil)
	customers.On("FindByEmail", ctx, "nobody@example.com").Return(nil, shared.ErrNotFound)

	result, err := svc.Login(ctx, LoginRequest{Email: "JANE@example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer", result.TokenType)
	claims, err := jwtSvc.ValidateAccessToken(result.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, customer.ID.String(), claims.UserID)
	assert.Equal(t, auth.RoleCustomer, claims.Role)

	_, err = svc.Login(ctx, LoginRequest{Email: "jane@example.com", Password: "wrong-pass1"})
	assert.ErrorContains(t, err, "Invalid email or password")

	_, err = svc.Login(ctx, LoginRequest{Email: "nobody@example.com", Password: "secret123"})
	assert.ErrorContains(t, err, "Invalid email or password")
}

func TestAuthService_AdminLoginAndBootstrap(t *testing.T) {
	ctx := context.Background()
	svc, _, admins, _, jwtSvc := newTestAuthService()

	cfg := config.AdminConfig{BootstrapEmail: "admin@example.com", BootstrapPassword: "supersecret1"}
	admins.On("Count", ctx).Return(int64(0), nil).Once()
	var saved *identity.AdminUser
	admins.On("Save", ctx, mock.AnythingOfType("*identity.AdminUser")).
		Run(func(args mock.Arguments) { saved = args.Get(1).(*identity.AdminUser) }).
		Return(nil)

	created, err := svc.BootstrapAdmin(ctx, cfg)
	require.NoError(t, err)
	assert.True(t, created)
	require.NotNil(t, saved)

	admins.On("Count", ctx).Return(int64(1), nil).Once()
	created, err = svc.BootstrapAdmin(ctx, cfg)
	require.NoError(t, err)
	assert.False(t, created)

	created, err = svc.BootstrapAdmin(ctx, config.AdminConfig{})
	require.NoError(t, err)
	assert.False(t, created)

	admins.On("FindByEmail", ctx, "admin@example.com").Return(saved, nil)
	result, err := svc.AdminLogin(ctx, LoginRequest{Email: "admin@example.com", Password: "supersecret1"})
	require.NoError(t, err)
	claims, err := jwtSvc.ValidateAccessToken(result.AccessToken)
	require.NoError(t, err)
	assert.True(t, claims.IsAdmin())

	_, err = svc.AdminLogin(ctx, LoginRequest{Email: "admin@example.com", Password: "nope12345"})
	assert.Error(t, err)
}

func TestAuthService_UpdateCustomer(t *testing.T) {
	ctx := context.Background()
	svc, customers, _, _, _ := newTestAuthService()
	customer, err := identity.NewGuestCustomer("jane@example.com")
	require.NoError(t, err)

	customers.On("FindByID", ctx, customer.ID).Return(customer, nil)
	customers.On("Save", ctx, customer).Return(nil)

	phone := "+49 30 1234"
	first := "Jane"
	resp, err := svc.UpdateCustomer(ctx, customer.ID, UpdateProfileRequest{FirstName: &first, Phone: &phone})
	require.NoError(t, err)
	assert.Equal(t, "Jane", resp.FirstName)
	assert.Equal(t, "+49 30 1234", resp.Phone)

	got, err := svc.GetCustomer(ctx, customer.ID)
	require.NoError(t, err)
	assert.Equal(t, customer.Email, got.Email)
}
