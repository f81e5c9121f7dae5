package identity

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
	"github.com/storefront/backend/internal/infrastructure/auth"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

var errInvalidCredentials = shared.NewDomainError("INVALID_CREDENTIALS", "Invalid email or password")

// AuthService handles customer accounts and token issuing for customers and admins
type AuthService struct {
	customerRepo   identity.CustomerRepository
	adminRepo      identity.AdminUserRepository
	jwtService     *auth.JWTService
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(
	customerRepo identity.CustomerRepository,
	adminRepo identity.AdminUserRepository,
	jwtService *auth.JWTService,
	eventPublisher shared.EventPublisher,
	log *zap.Logger,
) *AuthService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthService{
		customerRepo:   customerRepo,
		adminRepo:      adminRepo,
		jwtService:     jwtService,
		eventPublisher: eventPublisher,
		logger:         log,
	}
}

// Register creates a customer account. A guest record left behind by an
// earlier checkout is upgraded in place.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*CustomerResponse, error) {
	email, err := valueobject.NormalizeEmail(req.Email)
	if err != nil {
		return nil, err
	}

	customer, err := s.customerRepo.FindByEmail(ctx, email)
	switch {
	case err == nil:
		if err := customer.Register(req.Password, req.FirstName, req.LastName); err != nil {
			return nil, err
		}
	case errors.Is(err, shared.ErrNotFound):
		customer, err = identity.NewRegisteredCustomer(email, req.Password, req.FirstName, req.LastName)
		if err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	if err := s.customerRepo.Save(ctx, customer); err != nil {
		return nil, err
	}
	s.publish(ctx, customer)

	logger.FromContextOr(ctx, s.logger).Info("Customer registered",
		zap.String("customer_id", customer.ID.String()))

	response := ToCustomerResponse(customer)
	return &response, nil
}

// Login authenticates a customer and issues a customer token
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	log := logger.FromContextOr(ctx, s.logger)
	email, err := valueobject.NormalizeEmail(req.Email)
	if err != nil {
		return nil, errInvalidCredentials
	}

	customer, err := s.customerRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			log.Warn("Customer not found during login")
			return nil, errInvalidCredentials
		}
		return nil, err
	}
	if !customer.VerifyPassword(req.Password) {
		log.Warn("Invalid password attempt", zap.String("customer_id", customer.ID.String()))
		return nil, errInvalidCredentials
	}

	return s.issue(customer.ID, customer.Email, auth.RoleCustomer)
}

// AdminLogin authenticates an admin user and issues an admin token
func (s *AuthService) AdminLogin(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	log := logger.FromContextOr(ctx, s.logger)
	email, err := valueobject.NormalizeEmail(req.Email)
	if err != nil {
		return nil, errInvalidCredentials
	}

	admin, err := s.adminRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			log.Warn("Admin not found during login")
			return nil, errInvalidCredentials
		}
		return nil, err
	}
	if !admin.VerifyPassword(req.Password) {
		log.Warn("Invalid admin password attempt", zap.String("admin_id", admin.ID.String()))
		return nil, errInvalidCredentials
	}

	log.Info("Admin logged in", zap.String("admin_id", admin.ID.String()))
	return s.issue(admin.ID, admin.Email, auth.RoleAdmin)
}

// BootstrapAdmin creates the first admin user when none exists.
// It does nothing if credentials are not configured or an admin is present.
func (s *AuthService) BootstrapAdmin(ctx context.Context, cfg config.AdminConfig) (bool, error) {
	if cfg.BootstrapEmail == "" || cfg.BootstrapPassword == "" {
		return false, nil
	}
	count, err := s.adminRepo.Count(ctx)
	if err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	admin, err := identity.NewAdminUser(cfg.BootstrapEmail, cfg.BootstrapPassword)
	if err != nil {
		return false, err
	}
	if err := s.adminRepo.Save(ctx, admin); err != nil {
		return false, err
	}
	s.logger.Info("Bootstrap admin created", zap.String("email", admin.Email))
	return true, nil
}

// GetCustomer returns the customer behind a token
func (s *AuthService) GetCustomer(ctx context.Context, customerID uuid.UUID) (*CustomerResponse, error) {
	customer, err := s.customerRepo.FindByID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	response := ToCustomerResponse(customer)
	return &response, nil
}

// UpdateCustomer updates the logged-in customer's profile
func (s *AuthService) UpdateCustomer(ctx context.Context, customerID uuid.UUID, req UpdateProfileRequest) (*CustomerResponse, error) {
	customer, err := s.customerRepo.FindByID(ctx, customerID)
	if err != nil {
		return nil, err
	}

	firstName, lastName, phone := customer.FirstName, customer.LastName, customer.Phone
	if req.FirstName != nil {
		firstName = *req.FirstName
	}
	if req.LastName != nil {
		lastName = *req.LastName
	}
	if req.Phone != nil {
		phone = *req.Phone
	}
	if err := customer.UpdateProfile(firstName, lastName, phone); err != nil {
		return nil, err
	}
	if err := s.customerRepo.Save(ctx, customer); err != nil {
		return nil, err
	}

	response := ToCustomerResponse(customer)
	return &response, nil
}

func (s *AuthService) issue(userID uuid.UUID, email, role string) (*LoginResult, error) {
	token, err := s.jwtService.GenerateAccessToken(userID, email, role)
	if err != nil {
		s.logger.Error("Failed to generate access token", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to generate authentication token")
	}
	return &LoginResult{
		AccessToken: token.AccessToken,
		TokenType:   token.TokenType,
		ExpiresAt:   token.ExpiresAt,
		Role:        role,
		UserID:      userID,
		Email:       email,
	}, nil
}

func (s *AuthService) publish(ctx context.Context, customer *identity.Customer) {
	events := customer.GetDomainEvents()
	if s.eventPublisher != nil && len(events) > 0 {
		if err := s.eventPublisher.Publish(ctx, events...); err != nil {
			logger.FromContextOr(ctx, s.logger).Warn("failed to publish customer events", zap.Error(err))
		}
	}
	customer.ClearDomainEvents()
}
