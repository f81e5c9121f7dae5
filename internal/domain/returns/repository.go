package returns

import (
	"context"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// ReturnRepository defines the interface for return persistence
type ReturnRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Return, error)

	// FindAll lists returns, newest first. Filters["status"] and Filters["order_id"] narrow the result.
	FindAll(ctx context.Context, filter shared.Filter) ([]Return, int64, error)

	FindByOrder(ctx context.Context, orderID uuid.UUID) ([]Return, error)

	Save(ctx context.Context, r *Return) error
}
