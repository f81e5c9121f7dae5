package invoice

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// Status tells whether an invoice still reflects its order
type Status string

const (
	StatusLatest Status = "latest"
	StatusStale  Status = "stale"
)

// Invoice is a numbered invoice document generated for an order
type Invoice struct {
	shared.BaseAggregateRoot
	DisplayID  int64
	OrderID    uuid.UUID
	Status     Status
	StorageKey string
}

// NewInvoice creates the latest invoice for an order
func NewInvoice(displayID int64, orderID uuid.UUID) (*Invoice, error) {
	if displayID <= 0 {
		return nil, shared.NewDomainError("INVALID_DISPLAY_ID", "Display ID must be positive")
	}
	if orderID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORDER", "Order ID cannot be empty")
	}
	return &Invoice{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		DisplayID:         displayID,
		OrderID:           orderID,
		Status:            StatusLatest,
	}, nil
}

// IsLatest reports whether the invoice can be reused
func (i *Invoice) IsLatest() bool {
	return i.Status == StatusLatest
}

// MarkStale flags the invoice as outdated
func (i *Invoice) MarkStale() {
	if i.Status == StatusStale {
		return
	}
	i.Status = StatusStale
	i.Touch()
	i.IncrementVersion()
}

// SetStorageKey records where the archived PDF lives
func (i *Invoice) SetStorageKey(key string) {
	i.StorageKey = key
	i.Touch()
}

// FileName returns the download file name of the invoice
func (i *Invoice) FileName() string {
	return fmt.Sprintf("invoice-%d.pdf", i.DisplayID)
}
