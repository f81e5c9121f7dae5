package fulfillment

import (
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// Provider identifiers
const (
	ProviderSendcloud = "sendcloud"
	ProviderManual    = "manual"
)

// Data holds provider-specific parcel details
type Data struct {
	ParcelID         string `json:"parcel_id,omitempty"`
	TrackingNumber   string `json:"tracking_number,omitempty"`
	TrackingURL      string `json:"tracking_url,omitempty"`
	LabelURL         string `json:"label_url,omitempty"`
	ShippingMethodID string `json:"shipping_method_id,omitempty"`
	Carrier          string `json:"carrier,omitempty"`
	Status           string `json:"status,omitempty"`
}

// Item is an order line included in the parcel
type Item struct {
	LineItemID uuid.UUID `json:"line_item_id"`
	Quantity   int       `json:"quantity"`
}

// Fulfillment is a shipment or return shipment for an order
type Fulfillment struct {
	shared.BaseAggregateRoot
	OrderID    uuid.UUID
	ReturnID   *uuid.UUID
	ProviderID string
	Data       Data
	Items      []Item
	ShippedAt  *time.Time
	CanceledAt *time.Time
}

// NewFulfillment creates an outbound fulfillment
func NewFulfillment(orderID uuid.UUID, providerID string, items []Item) (*Fulfillment, error) {
	if orderID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORDER", "Order ID cannot be empty")
	}
	if providerID != ProviderSendcloud && providerID != ProviderManual {
		return nil, shared.NewDomainError("INVALID_PROVIDER", "Unknown fulfillment provider: "+providerID)
	}
	if len(items) == 0 {
		return nil, shared.NewDomainError("INVALID_ITEMS", "Fulfillment must contain at least one item")
	}
	for _, it := range items {
		if it.Quantity <= 0 {
			return nil, shared.NewDomainError("INVALID_QUANTITY", "Fulfillment item quantity must be greater than zero")
		}
	}
	return &Fulfillment{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderID:           orderID,
		ProviderID:        providerID,
		Items:             items,
	}, nil
}

// NewReturnFulfillment creates the return shipment for a return
func NewReturnFulfillment(orderID, returnID uuid.UUID, providerID string, items []Item) (*Fulfillment, error) {
	f, err := NewFulfillment(orderID, providerID, items)
	if err != nil {
		return nil, err
	}
	f.ReturnID = &returnID
	return f, nil
}

// IsActive reports whether the fulfillment was not canceled
func (f *Fulfillment) IsActive() bool {
	return f.CanceledAt == nil
}

// IsReturn reports whether this is a return shipment
func (f *Fulfillment) IsReturn() bool {
	return f.ReturnID != nil
}

// IsShipped reports whether a shipment was registered
func (f *Fulfillment) IsShipped() bool {
	return f.ShippedAt != nil
}

// ParcelID returns the provider parcel id, if any
func (f *Fulfillment) ParcelID() string {
	return f.Data.ParcelID
}

// SetProviderData stores what the provider returned
func (f *Fulfillment) SetProviderData(d Data) {
	f.Data = d
	f.Touch()
	f.IncrementVersion()
}

// Ship registers the shipment with tracking details
func (f *Fulfillment) Ship(trackingNumber, trackingURL string) error {
	if !f.IsActive() {
		return shared.NewDomainError("INVALID_STATE", "Cannot ship a canceled fulfillment")
	}
	if f.IsShipped() {
		return shared.NewDomainError("INVALID_STATE", "Fulfillment is already shipped")
	}
	now := time.Now()
	f.ShippedAt = &now
	if trackingNumber != "" {
		f.Data.TrackingNumber = trackingNumber
	}
	if trackingURL != "" {
		f.Data.TrackingURL = trackingURL
	}
	f.Touch()
	f.IncrementVersion()
	return nil
}

// CanCancel checks the local preconditions of Cancel
func (f *Fulfillment) CanCancel() error {
	if !f.IsActive() {
		return shared.NewDomainError("INVALID_STATE", "fulfillment already canceled")
	}
	if f.IsShipped() {
		return shared.NewDomainError("INVALID_STATE", "Cannot cancel a shipped fulfillment")
	}
	return nil
}

// Cancel marks the fulfillment canceled
func (f *Fulfillment) Cancel() error {
	if err := f.CanCancel(); err != nil {
		return err
	}
	now := time.Now()
	f.CanceledAt = &now
	f.Touch()
	f.IncrementVersion()
	return nil
}

// Quantities returns line item quantities keyed by line item id
func (f *Fulfillment) Quantities() map[uuid.UUID]int {
	q := make(map[uuid.UUID]int, len(f.Items))
	for _, it := range f.Items {
		q[it.LineItemID] += it.Quantity
	}
	return q
}

// FilterActive keeps the fulfillments that were not canceled
func FilterActive(list []Fulfillment) []Fulfillment {
	active := make([]Fulfillment, 0, len(list))
	for _, f := range list {
		if f.IsActive() {
			active = append(active, f)
		}
	}
	return active
}
