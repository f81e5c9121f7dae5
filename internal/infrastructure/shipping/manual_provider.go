package shipping

import (
	"context"

	"github.com/storefront/backend/internal/domain/fulfillment"
	"github.com/storefront/backend/internal/domain/shared"
)

// ManualProvider records fulfillments that are shipped outside any carrier integration
type ManualProvider struct{}

// NewManualProvider creates the manual provider
func NewManualProvider() *ManualProvider {
	return &ManualProvider{}
}

func (ManualProvider) ID() string { return fulfillment.ProviderManual }

func (ManualProvider) CreateFulfillment(_ context.Context, req fulfillment.ParcelRequest) (fulfillment.Data, error) {
	return fulfillment.Data{ShippingMethodID: req.ShippingMethodID}, nil
}

func (ManualProvider) CreateReturnFulfillment(_ context.Context, req fulfillment.ParcelRequest) (fulfillment.Data, error) {
	return fulfillment.Data{ShippingMethodID: req.ShippingMethodID}, nil
}

func (ManualProvider) CancelFulfillment(context.Context, fulfillment.Data) error { return nil }

func (ManualProvider) RetrieveLabel(context.Context, fulfillment.Data, fulfillment.LabelFormat) ([]byte, error) {
	return nil, shared.NewDomainError("NOT_FOUND", "label not available")
}
