package identity

import (
	"context"

	"github.com/google/uuid"
)

// CustomerRepository defines the interface for customer persistence
type CustomerRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Customer, error)

	// FindByEmail looks up a customer by normalized email
	FindByEmail(ctx context.Context, email string) (*Customer, error)

	Save(ctx context.Context, customer *Customer) error
}

// AdminUserRepository defines the interface for admin user persistence
type AdminUserRepository interface {
	FindByEmail(ctx context.Context, email string) (*AdminUser, error)
	Count(ctx context.Context) (int64, error)
	Save(ctx context.Context, admin *AdminUser) error
}
