package fulfillment

import (
	"context"

	"github.com/storefront/backend/internal/domain/shared/valueobject"
)

// LabelFormat selects the printer layout of a shipping label
type LabelFormat string

const (
	LabelFormatNormalPrinter LabelFormat = "normal_printer"
	LabelFormatLabelPrinter  LabelFormat = "label_printer"
)

// IsValid checks if the format is supported
func (f LabelFormat) IsValid() bool {
	return f == LabelFormatNormalPrinter || f == LabelFormatLabelPrinter
}

// String returns the string representation of the format
func (f LabelFormat) String() string {
	return string(f)
}

// ParcelItem describes one parcel line for customs and packing slips
type ParcelItem struct {
	Description string
	SKU         string
	Quantity    int
	WeightGrams int
	Value       valueobject.Money
}

// ParcelRequest is what a provider needs to create a parcel
type ParcelRequest struct {
	OrderNumber      string
	Email            string
	Address          valueobject.Address
	ShippingMethodID string
	WeightGrams      int
	Items            []ParcelItem
	TotalValue       valueobject.Money
}

// Provider is implemented by carriers that can create and cancel parcels
type Provider interface {
	// ID returns the provider identifier stored on fulfillments
	ID() string

	CreateFulfillment(ctx context.Context, req ParcelRequest) (Data, error)

	// CreateReturnFulfillment creates a return parcel from the customer to the shop
	CreateReturnFulfillment(ctx context.Context, req ParcelRequest) (Data, error)

	// CancelFulfillment cancels the parcel at the provider. Errors keep the upstream
	// message so callers can tell "already gone" from real failures.
	CancelFulfillment(ctx context.Context, data Data) error

	// RetrieveLabel downloads the label PDF
	RetrieveLabel(ctx context.Context, data Data, format LabelFormat) ([]byte, error)
}
