package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/fulfillment"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
)

// OrderListFilter contains filtering and pagination options for orders
type OrderListFilter struct {
	Search            string `form:"q" binding:"max=100"`
	Status            string `form:"status" binding:"omitempty,oneof=pending completed canceled"`
	PaymentStatus     string `form:"payment_status" binding:"omitempty,oneof=awaiting captured partially_refunded refunded canceled"`
	FulfillmentStatus string `form:"fulfillment_status" binding:"omitempty,oneof=not_fulfilled fulfilled shipped canceled"`
	Page              int    `form:"page" binding:"omitempty,min=1"`
	PageSize          int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy           string `form:"order_by" binding:"omitempty,oneof=created_at display_id total"`
	OrderDir          string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// LineItemResponse represents an order line in API responses
type LineItemResponse struct {
	ID               uuid.UUID         `json:"id"`
	VariantID        uuid.UUID         `json:"variant_id"`
	ProductTitle     string            `json:"product_title"`
	VariantTitle     string            `json:"variant_title"`
	SKU              string            `json:"sku"`
	Thumbnail        string            `json:"thumbnail,omitempty"`
	UnitPrice        valueobject.Money `json:"unit_price"`
	Quantity         int               `json:"quantity"`
	ReturnedQuantity int               `json:"returned_quantity"`
	Total            valueobject.Money `json:"total"`
}

// ShippingMethodResponse represents the chosen shipping method
type ShippingMethodResponse struct {
	ShippingOptionID string            `json:"shipping_option_id"`
	Name             string            `json:"name"`
	Carrier          string            `json:"carrier"`
	Price            valueobject.Money `json:"price"`
}

// FulfillmentSummary is the short fulfillment view embedded in order details
type FulfillmentSummary struct {
	ID             uuid.UUID  `json:"id"`
	ReturnID       *uuid.UUID `json:"return_id,omitempty"`
	ProviderID     string     `json:"provider_id"`
	ParcelID       string     `json:"parcel_id,omitempty"`
	TrackingNumber string     `json:"tracking_number,omitempty"`
	TrackingURL    string     `json:"tracking_url,omitempty"`
	ShippedAt      *time.Time `json:"shipped_at,omitempty"`
	CanceledAt     *time.Time `json:"canceled_at,omitempty"`
}

// OrderResponse represents an order in API responses
type OrderResponse struct {
	ID                uuid.UUID              `json:"id"`
	DisplayID         int64                  `json:"display_id"`
	CartID            uuid.UUID              `json:"cart_id"`
	CustomerID        *uuid.UUID             `json:"customer_id,omitempty"`
	Email             string                 `json:"email"`
	CurrencyCode      string                 `json:"currency_code"`
	Items             []LineItemResponse     `json:"items"`
	ShippingAddress   valueobject.Address    `json:"shipping_address"`
	ShippingMethod    ShippingMethodResponse `json:"shipping_method"`
	Subtotal          valueobject.Money      `json:"subtotal"`
	ShippingTotal     valueobject.Money      `json:"shipping_total"`
	Total             valueobject.Money      `json:"total"`
	RefundedTotal     valueobject.Money      `json:"refunded_total"`
	Status            string                 `json:"status"`
	PaymentStatus     string                 `json:"payment_status"`
	FulfillmentStatus string                 `json:"fulfillment_status"`
	Fulfillments      []FulfillmentSummary   `json:"fulfillments,omitempty"`
	CanceledAt        *time.Time             `json:"canceled_at,omitempty"`
	CreatedAt         time.Time              `json:"created_at"`
	UpdatedAt         time.Time              `json:"updated_at"`
}

// ToOrderResponse converts a domain Order to OrderResponse
func ToOrderResponse(o *order.Order) OrderResponse {
	items := make([]LineItemResponse, len(o.Items))
	for i, li := range o.Items {
		items[i] = LineItemResponse{
			ID:               li.ID,
			VariantID:        li.VariantID,
			ProductTitle:     li.ProductTitle,
			VariantTitle:     li.VariantTitle,
			SKU:              li.SKU,
			Thumbnail:        li.Thumbnail,
			UnitPrice:        li.UnitPrice,
			Quantity:         li.Quantity,
			ReturnedQuantity: li.ReturnedQuantity,
			Total:            li.Total(),
		}
	}
	return OrderResponse{
		ID:              o.ID,
		DisplayID:       o.DisplayID,
		CartID:          o.CartID,
		CustomerID:      o.CustomerID,
		Email:           o.Email,
		CurrencyCode:    string(o.CurrencyCode),
		Items:           items,
		ShippingAddress: o.ShippingAddress,
		ShippingMethod: ShippingMethodResponse{
			ShippingOptionID: o.ShippingMethod.ShippingOptionID,
			Name:             o.ShippingMethod.Name,
			Carrier:          o.ShippingMethod.Carrier,
			Price:            o.ShippingMethod.Price,
		},
		Subtotal:          o.Subtotal,
		ShippingTotal:     o.ShippingTotal,
		Total:             o.Total,
		RefundedTotal:     o.RefundedTotal,
		Status:            string(o.Status),
		PaymentStatus:     string(o.PaymentStatus),
		FulfillmentStatus: string(o.FulfillmentStatus),
		CanceledAt:        o.CanceledAt,
		CreatedAt:         o.CreatedAt,
		UpdatedAt:         o.UpdatedAt,
	}
}

// ToOrderResponses converts a slice of domain Orders
func ToOrderResponses(orders []order.Order) []OrderResponse {
	responses := make([]OrderResponse, len(orders))
	for i := range orders {
		responses[i] = ToOrderResponse(&orders[i])
	}
	return responses
}

func toFulfillmentSummaries(list []fulfillment.Fulfillment) []FulfillmentSummary {
	summaries := make([]FulfillmentSummary, len(list))
	for i, f := range list {
		summaries[i] = FulfillmentSummary{
			ID:             f.ID,
			ReturnID:       f.ReturnID,
			ProviderID:     f.ProviderID,
			ParcelID:       f.Data.ParcelID,
			TrackingNumber: f.Data.TrackingNumber,
			TrackingURL:    f.Data.TrackingURL,
			ShippedAt:      f.ShippedAt,
			CanceledAt:     f.CanceledAt,
		}
	}
	return summaries
}
