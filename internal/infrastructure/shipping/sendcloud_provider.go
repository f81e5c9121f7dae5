package shipping

import (
	"context"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/fulfillment"
	"github.com/storefront/backend/internal/domain/shared"
)

// SendcloudProvider implements fulfillment.Provider on top of Sendcloud parcels
type SendcloudProvider struct {
	client *SendcloudClient
}

// NewSendcloudProvider creates the Sendcloud fulfillment provider
func NewSendcloudProvider(client *SendcloudClient) *SendcloudProvider {
	return &SendcloudProvider{client: client}
}

// ID returns the provider identifier stored on fulfillments
func (p *SendcloudProvider) ID() string {
	return fulfillment.ProviderSendcloud
}

// CreateFulfillment creates an outbound parcel with a label
func (p *SendcloudProvider) CreateFulfillment(ctx context.Context, req fulfillment.ParcelRequest) (fulfillment.Data, error) {
	return p.create(ctx, req, false)
}

// CreateReturnFulfillment creates a return parcel with a label
func (p *SendcloudProvider) CreateReturnFulfillment(ctx context.Context, req fulfillment.ParcelRequest) (fulfillment.Data, error) {
	return p.create(ctx, req, true)
}

func (p *SendcloudProvider) create(ctx context.Context, req fulfillment.ParcelRequest, isReturn bool) (fulfillment.Data, error) {
	in, err := buildParcelInput(req, isReturn)
	if err != nil {
		return fulfillment.Data{}, err
	}
	parcel, err := p.client.CreateParcel(ctx, in)
	if err != nil {
		return fulfillment.Data{}, err
	}
	data := fulfillment.Data{
		ParcelID:         strconv.FormatInt(parcel.ID, 10),
		TrackingNumber:   parcel.TrackingNumber,
		TrackingURL:      parcel.TrackingURL,
		LabelURL:         parcel.Label.LabelPrinter,
		ShippingMethodID: req.ShippingMethodID,
		Carrier:          parcel.Carrier.Code,
		Status:           parcel.Status.Message,
	}
	return data, nil
}

// CancelFulfillment cancels the parcel behind a fulfillment
func (p *SendcloudProvider) CancelFulfillment(ctx context.Context, data fulfillment.Data) error {
	if data.ParcelID == "" {
		return nil
	}
	_, err := p.client.CancelParcel(ctx, data.ParcelID)
	return err
}

// RetrieveLabel downloads the label PDF
func (p *SendcloudProvider) RetrieveLabel(ctx context.Context, data fulfillment.Data, format fulfillment.LabelFormat) ([]byte, error) {
	if data.ParcelID == "" {
		return nil, shared.NewDomainError("NOT_FOUND", "label not available")
	}
	return p.client.DownloadLabel(ctx, data.ParcelID, format.String())
}

func buildParcelInput(req fulfillment.ParcelRequest, isReturn bool) (ParcelInput, error) {
	addr := req.Address
	in := ParcelInput{
		Name:         addr.FullName(),
		CompanyName:  addr.Company,
		Address:      addr.Address1,
		Address2:     addr.Address2,
		HouseNumber:  addr.HouseNumber,
		City:         addr.City,
		PostalCode:   addr.PostalCode,
		Country:      addr.CountryCode,
		CountryState: addr.Province,
		Telephone:    addr.Phone,
		Email:        req.Email,
		OrderNumber:  req.OrderNumber,
		Weight:       gramsToKilos(req.WeightGrams),
		RequestLabel: true,
		IsReturn:     isReturn,
	}
	if in.Name == "" {
		in.Name = req.Email
	}
	if req.ShippingMethodID != "" {
		id, err := strconv.Atoi(req.ShippingMethodID)
		if err != nil {
			return ParcelInput{}, shared.NewDomainError("INVALID_INPUT", "shipping method id must be numeric for sendcloud")
		}
		in.Shipment = &ShipmentRef{ID: id}
	}
	if req.TotalValue.Currency() != "" {
		in.TotalOrderValue = req.TotalValue.Amount().StringFixed(2)
		in.TotalOrderValueCurrency = req.TotalValue.Currency().Upper()
	}
	for _, it := range req.Items {
		in.ParcelItems = append(in.ParcelItems, ParcelItem{
			Description: it.Description,
			Quantity:    it.Quantity,
			Weight:      gramsToKilos(it.WeightGrams),
			Value:       it.Value.Amount().StringFixed(2),
			SKU:         it.SKU,
		})
	}
	return in, nil
}

func gramsToKilos(grams int) string {
	if grams <= 0 {
		grams = 1
	}
	return decimal.New(int64(grams), -3).StringFixed(3)
}
