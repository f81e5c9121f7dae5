package invoice

import (
	"context"

	"github.com/google/uuid"
)

// ConfigRepository persists the singleton invoice config
type ConfigRepository interface {
	// Get returns the config or ErrNotFound when none was stored yet
	Get(ctx context.Context) (*Config, error)
	Save(ctx context.Context, c *Config) error
}

// InvoiceRepository defines the interface for invoice persistence
type InvoiceRepository interface {
	// FindLatestByOrder returns the order's reusable invoice or ErrNotFound
	FindLatestByOrder(ctx context.Context, orderID uuid.UUID) (*Invoice, error)

	Save(ctx context.Context, inv *Invoice) error

	// MarkStaleByOrder flags every invoice of the order as stale
	MarkStaleByOrder(ctx context.Context, orderID uuid.UUID) (int64, error)

	// Issue creates the order's latest invoice under the next sequential
	// number. produce runs before the invoice is stored; when it fails the
	// number stays free. A concurrent latest invoice for the same order
	// yields ErrAlreadyExists.
	Issue(ctx context.Context, orderID uuid.UUID, produce func(inv *Invoice) error) (*Invoice, error)
}
