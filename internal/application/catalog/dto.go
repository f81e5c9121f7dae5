package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
)

// VariantRequest describes one variant in a create or update request
type VariantRequest struct {
	ID                *uuid.UUID      `json:"id"`
	Title             string          `json:"title" binding:"max=200"`
	SKU               string          `json:"sku" binding:"required,min=1,max=100"`
	Price             decimal.Decimal `json:"price"`
	InventoryQuantity int             `json:"inventory_quantity" binding:"min=0"`
	ManageInventory   *bool           `json:"manage_inventory"`
	WeightGrams       int             `json:"weight_grams" binding:"min=0"`
}

// CreateProductRequest represents a request to create a new product
type CreateProductRequest struct {
	Title        string           `json:"title" binding:"required,min=1,max=200"`
	Handle       string           `json:"handle" binding:"omitempty,max=200"`
	Subtitle     string           `json:"subtitle" binding:"max=200"`
	Description  string           `json:"description" binding:"max=5000"`
	Thumbnail    string           `json:"thumbnail" binding:"omitempty,url"`
	CurrencyCode string           `json:"currency_code" binding:"omitempty,len=3"`
	Variants     []VariantRequest `json:"variants" binding:"dive"`
	Publish      bool             `json:"publish"`
}

// UpdateProductRequest represents a request to update a product
type UpdateProductRequest struct {
	Title        *string          `json:"title" binding:"omitempty,min=1,max=200"`
	Handle       *string          `json:"handle" binding:"omitempty,max=200"`
	Subtitle     *string          `json:"subtitle" binding:"omitempty,max=200"`
	Description  *string          `json:"description" binding:"omitempty,max=5000"`
	Thumbnail    *string          `json:"thumbnail" binding:"omitempty"`
	Status       *string          `json:"status" binding:"omitempty,oneof=draft published"`
	CurrencyCode string           `json:"currency_code" binding:"omitempty,len=3"`
	Variants     []VariantRequest `json:"variants" binding:"omitempty,dive"`
}

// ProductListFilter represents filter options for product list
type ProductListFilter struct {
	Search   string `form:"q"`
	Status   string `form:"status" binding:"omitempty,oneof=draft published"`
	Page     int    `form:"page" binding:"min=0"`
	PageSize int    `form:"page_size" binding:"min=0,max=100"`
	OrderBy  string `form:"order_by" binding:"omitempty,oneof=title handle created_at updated_at"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// VariantResponse represents a variant in API responses
type VariantResponse struct {
	ID                uuid.UUID         `json:"id"`
	Title             string            `json:"title"`
	SKU               string            `json:"sku"`
	Price             valueobject.Money `json:"price"`
	InventoryQuantity int               `json:"inventory_quantity"`
	ManageInventory   bool              `json:"manage_inventory"`
	WeightGrams       int               `json:"weight_grams"`
	InStock           bool              `json:"in_stock"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID          uuid.UUID          `json:"id"`
	Handle      string             `json:"handle"`
	Title       string             `json:"title"`
	Subtitle    string             `json:"subtitle"`
	Description string             `json:"description"`
	Thumbnail   string             `json:"thumbnail"`
	Status      string             `json:"status"`
	MinPrice    *valueobject.Money `json:"min_price,omitempty"`
	Variants    []VariantResponse  `json:"variants"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
	Version     int                `json:"version"`
}

// ToProductResponse converts a domain Product to ProductResponse
func ToProductResponse(p *catalog.Product) ProductResponse {
	variants := make([]VariantResponse, len(p.Variants))
	for i := range p.Variants {
		v := &p.Variants[i]
		variants[i] = VariantResponse{
			ID:                v.ID,
			Title:             v.Title,
			SKU:               v.SKU,
			Price:             v.Price,
			InventoryQuantity: v.InventoryQuantity,
			ManageInventory:   v.ManageInventory,
			WeightGrams:       v.WeightGrams,
			InStock:           v.CanFulfill(1),
		}
	}
	resp := ProductResponse{
		ID:          p.ID,
		Handle:      p.Handle,
		Title:       p.Title,
		Subtitle:    p.Subtitle,
		Description: p.Description,
		Thumbnail:   p.Thumbnail,
		Status:      string(p.Status),
		Variants:    variants,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
		Version:     p.GetVersion(),
	}
	if price, ok := p.MinPrice(); ok {
		resp.MinPrice = &price
	}
	return resp
}

// ToProductResponses converts a slice of domain Products to ProductResponses
func ToProductResponses(products []catalog.Product) []ProductResponse {
	responses := make([]ProductResponse, len(products))
	for i := range products {
		responses[i] = ToProductResponse(&products[i])
	}
	return responses
}

// VariantSnapshot is the catalog view of a variant that carts and wishlists consume
type VariantSnapshot struct {
	ProductID    uuid.UUID
	ProductTitle string
	Thumbnail    string
	Published    bool
	Variant      catalog.Variant
}
