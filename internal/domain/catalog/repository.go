package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)
	FindByHandle(ctx context.Context, handle string) (*Product, error)

	// FindByVariantID returns the product owning the variant
	FindByVariantID(ctx context.Context, variantID uuid.UUID) (*Product, error)

	// FindAll lists non-deleted products. Filters["status"] narrows by ProductStatus.
	FindAll(ctx context.Context, filter shared.Filter) ([]Product, int64, error)

	Save(ctx context.Context, product *Product) error

	// ExistsByHandle checks handle uniqueness, excluding the given product
	ExistsByHandle(ctx context.Context, handle string, excludeID uuid.UUID) (bool, error)

	// AdjustInventory adds delta to a managed variant's stock.
	// Fails with INSUFFICIENT_STOCK if the result would go negative.
	AdjustInventory(ctx context.Context, variantID uuid.UUID, delta int) error
}
