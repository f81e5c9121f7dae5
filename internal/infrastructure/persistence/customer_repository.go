package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormCustomerRepository implements identity.CustomerRepository using GORM
type GormCustomerRepository struct {
	db *gorm.DB
}

// NewGormCustomerRepository creates a new GormCustomerRepository
func NewGormCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

var _ identity.CustomerRepository = (*GormCustomerRepository)(nil)

// FindByID finds a customer by its ID
func (r *GormCustomerRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Customer, error) {
	var m models.CustomerModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, translateError(err, "customer")
	}
	return m.ToDomain(), nil
}

// FindByEmail looks up a customer by normalized email
func (r *GormCustomerRepository) FindByEmail(ctx context.Context, email string) (*identity.Customer, error) {
	var m models.CustomerModel
	if err := r.db.WithContext(ctx).First(&m, "email = ?", email).Error; err != nil {
		return nil, translateError(err, "customer")
	}
	return m.ToDomain(), nil
}

// Save creates or updates a customer
func (r *GormCustomerRepository) Save(ctx context.Context, c *identity.Customer) error {
	var m models.CustomerModel
	m.FromDomain(c)
	return translateError(r.db.WithContext(ctx).Save(&m).Error, "customer")
}

// GormAdminUserRepository implements identity.AdminUserRepository using GORM
type GormAdminUserRepository struct {
	db *gorm.DB
}

// NewGormAdminUserRepository creates a new GormAdminUserRepository
func NewGormAdminUserRepository(db *gorm.DB) *GormAdminUserRepository {
	return &GormAdminUserRepository{db: db}
}

var _ identity.AdminUserRepository = (*GormAdminUserRepository)(nil)

// FindByEmail finds an admin user by email
func (r *GormAdminUserRepository) FindByEmail(ctx context.Context, email string) (*identity.AdminUser, error) {
	var m models.AdminUserModel
	if err := r.db.WithContext(ctx).First(&m, "email = ?", email).Error; err != nil {
		return nil, translateError(err, "admin user")
	}
	return m.ToDomain(), nil
}

// Count returns the number of admin users
func (r *GormAdminUserRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.AdminUserModel{}).Count(&n).Error; err != nil {
		return 0, translateError(err, "admin user")
	}
	return n, nil
}

// Save creates or updates an admin user
func (r *GormAdminUserRepository) Save(ctx context.Context, a *identity.AdminUser) error {
	var m models.AdminUserModel
	m.FromDomain(a)
	return translateError(r.db.WithContext(ctx).Save(&m).Error, "admin user")
}
