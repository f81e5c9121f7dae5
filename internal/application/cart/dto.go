package cart

import (
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
)

// CreateCartRequest creates a cart, optionally with a first set of items
type CreateCartRequest struct {
	Email           string               `json:"email" binding:"omitempty,email,max=200"`
	CurrencyCode    string               `json:"currency_code" binding:"omitempty,len=3"`
	ShippingAddress *valueobject.Address `json:"shipping_address"`
	Items           []AddLineItemRequest `json:"items" binding:"omitempty,dive"`

	CustomerID    *uuid.UUID `json:"-"`
	CustomerEmail string     `json:"-"`
}

// UpdateCartRequest updates contact and destination details
type UpdateCartRequest struct {
	Email           *string              `json:"email" binding:"omitempty,email,max=200"`
	ShippingAddress *valueobject.Address `json:"shipping_address"`

	CustomerID    *uuid.UUID `json:"-"`
	CustomerEmail string     `json:"-"`
}

// AddLineItemRequest adds a variant to the cart
type AddLineItemRequest struct {
	VariantID uuid.UUID `json:"variant_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,min=1,max=999"`
}

// UpdateLineItemRequest sets the quantity of a line; zero removes it
type UpdateLineItemRequest struct {
	Quantity int `json:"quantity" binding:"min=0,max=999"`
}

// AddShippingMethodRequest picks one of the cart's shipping options
type AddShippingMethodRequest struct {
	OptionID string `json:"option_id" binding:"required,max=50"`
}

// LineItemResponse represents a cart line in API responses
type LineItemResponse struct {
	ID           uuid.UUID         `json:"id"`
	VariantID    uuid.UUID         `json:"variant_id"`
	ProductID    uuid.UUID         `json:"product_id"`
	ProductTitle string            `json:"product_title"`
	VariantTitle string            `json:"variant_title"`
	SKU          string            `json:"sku"`
	Thumbnail    string            `json:"thumbnail,omitempty"`
	UnitPrice    valueobject.Money `json:"unit_price"`
	Quantity     int               `json:"quantity"`
	Total        valueobject.Money `json:"total"`
}

// ShippingMethodResponse represents the chosen shipping method
type ShippingMethodResponse struct {
	ShippingOptionID string            `json:"shipping_option_id"`
	Name             string            `json:"name"`
	Carrier          string            `json:"carrier"`
	Price            valueobject.Money `json:"price"`
}

// PaymentSessionResponse exposes what the storefront needs to confirm a payment
type PaymentSessionResponse struct {
	Provider        string            `json:"provider"`
	PaymentIntentID string            `json:"payment_intent_id"`
	ClientSecret    string            `json:"client_secret"`
	Status          string            `json:"status"`
	Amount          valueobject.Money `json:"amount"`
	LastError       string            `json:"last_error,omitempty"`
}

// CartResponse represents a cart with its totals
type CartResponse struct {
	ID              uuid.UUID               `json:"id"`
	Email           string                  `json:"email"`
	CustomerID      *uuid.UUID              `json:"customer_id,omitempty"`
	CurrencyCode    string                  `json:"currency_code"`
	Items           []LineItemResponse      `json:"items"`
	ShippingAddress *valueobject.Address    `json:"shipping_address,omitempty"`
	ShippingMethod  *ShippingMethodResponse `json:"shipping_method,omitempty"`
	PaymentSession  *PaymentSessionResponse `json:"payment_session,omitempty"`
	Subtotal        valueobject.Money       `json:"subtotal"`
	ShippingTotal   valueobject.Money       `json:"shipping_total"`
	Total           valueobject.Money       `json:"total"`
	CompletedAt     *time.Time              `json:"completed_at,omitempty"`
	CreatedAt       time.Time               `json:"created_at"`
	UpdatedAt       time.Time               `json:"updated_at"`
}

// ToCartResponse converts a domain Cart to CartResponse
func ToCartResponse(c *cart.Cart) CartResponse {
	items := make([]LineItemResponse, len(c.Items))
	for i, li := range c.Items {
		items[i] = LineItemResponse{
			ID:           li.ID,
			VariantID:    li.VariantID,
			ProductID:    li.ProductID,
			ProductTitle: li.ProductTitle,
			VariantTitle: li.VariantTitle,
			SKU:          li.SKU,
			Thumbnail:    li.Thumbnail,
			UnitPrice:    li.UnitPrice,
			Quantity:     li.Quantity,
			Total:        li.Total(),
		}
	}

	resp := CartResponse{
		ID:              c.ID,
		Email:           c.Email,
		CustomerID:      c.CustomerID,
		CurrencyCode:    string(c.CurrencyCode),
		Items:           items,
		ShippingAddress: c.ShippingAddress,
		Subtotal:        c.Subtotal(),
		ShippingTotal:   c.ShippingTotal(),
		Total:           c.Total(),
		CompletedAt:     c.CompletedAt,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
	if m := c.ShippingMethod; m != nil {
		resp.ShippingMethod = &ShippingMethodResponse{
			ShippingOptionID: m.ShippingOptionID,
			Name:             m.Name,
			Carrier:          m.Carrier,
			Price:            m.Price,
		}
	}
	if ps := c.PaymentSession; ps != nil {
		resp.PaymentSession = &PaymentSessionResponse{
			Provider:        ps.Provider,
			PaymentIntentID: ps.PaymentIntentID,
			ClientSecret:    ps.ClientSecret,
			Status:          string(ps.Status),
			Amount:          ps.Amount,
			LastError:       ps.LastError,
		}
	}
	return resp
}
