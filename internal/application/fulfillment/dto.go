package fulfillment

import (
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/fulfillment"
)

// FulfillmentItemRequest selects an order line and quantity
type FulfillmentItemRequest struct {
	LineItemID uuid.UUID `json:"line_item_id" binding:"required"`
	Quantity   int       `json:"quantity" binding:"required,min=1"`
}

// CreateFulfillmentRequest creates a parcel for an order. Without items the
// whole order is fulfilled.
type CreateFulfillmentRequest struct {
	ProviderID string                   `json:"provider_id" binding:"omitempty,oneof=sendcloud manual"`
	Items      []FulfillmentItemRequest `json:"items" binding:"omitempty,dive"`
}

// CreateShipmentRequest registers that a parcel left the warehouse
type CreateShipmentRequest struct {
	TrackingNumber string `json:"tracking_number" binding:"max=100"`
	TrackingURL    string `json:"tracking_url" binding:"omitempty,url,max=500"`
}

// LabelQuery selects the label layout
type LabelQuery struct {
	Format string `form:"format" binding:"omitempty,label_format"`
}

// FulfillmentItemResponse is a fulfilled order line
type FulfillmentItemResponse struct {
	LineItemID uuid.UUID `json:"line_item_id"`
	Quantity   int       `json:"quantity"`
}

// FulfillmentResponse represents a fulfillment in API responses
type FulfillmentResponse struct {
	ID         uuid.UUID                 `json:"id"`
	OrderID    uuid.UUID                 `json:"order_id"`
	ReturnID   *uuid.UUID                `json:"return_id,omitempty"`
	ProviderID string                    `json:"provider_id"`
	Data       fulfillment.Data          `json:"data"`
	Items      []FulfillmentItemResponse `json:"items"`
	ShippedAt  *time.Time                `json:"shipped_at,omitempty"`
	CanceledAt *time.Time                `json:"canceled_at,omitempty"`
	CreatedAt  time.Time                 `json:"created_at"`
	UpdatedAt  time.Time                 `json:"updated_at"`
}

// Label is a label PDF ready to be streamed
type Label struct {
	Filename    string
	ContentType string
	Data        []byte
	Source      string
}

// LabelURLResponse is a presigned link to an archived label
type LabelURLResponse struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ToFulfillmentResponse converts a domain Fulfillment to FulfillmentResponse
func ToFulfillmentResponse(f *fulfillment.Fulfillment) FulfillmentResponse {
	items := make([]FulfillmentItemResponse, len(f.Items))
	for i, it := range f.Items {
		items[i] = FulfillmentItemResponse{LineItemID: it.LineItemID, Quantity: it.Quantity}
	}
	return FulfillmentResponse{
		ID:         f.ID,
		OrderID:    f.OrderID,
		ReturnID:   f.ReturnID,
		ProviderID: f.ProviderID,
		Data:       f.Data,
		Items:      items,
		ShippedAt:  f.ShippedAt,
		CanceledAt: f.CanceledAt,
		CreatedAt:  f.CreatedAt,
		UpdatedAt:  f.UpdatedAt,
	}
}

// ToFulfillmentResponses converts a slice of domain Fulfillments
func ToFulfillmentResponses(list []fulfillment.Fulfillment) []FulfillmentResponse {
	responses := make([]FulfillmentResponse, len(list))
	for i := range list {
		responses[i] = ToFulfillmentResponse(&list[i])
	}
	return responses
}
