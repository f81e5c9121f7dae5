package wishlist

import (
	"time"

	"github.com/google/uuid"
	catalogapp "github.com/storefront/backend/internal/application/catalog"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
	"github.com/storefront/backend/internal/domain/wishlist"
)

// AddItemRequest saves a variant
type AddItemRequest struct {
	VariantID uuid.UUID `json:"variant_id" binding:"required"`
}

// MergeRequest carries the variant ids kept in browser storage
type MergeRequest struct {
	VariantIDs []uuid.UUID `json:"variant_ids" binding:"max=200"`
}

// VariantSummary is the catalog view of a saved variant
type VariantSummary struct {
	ProductID    uuid.UUID         `json:"product_id"`
	ProductTitle string            `json:"product_title"`
	Title        string            `json:"title"`
	SKU          string            `json:"sku"`
	Thumbnail    string            `json:"thumbnail,omitempty"`
	Price        valueobject.Money `json:"price"`
	InStock      bool              `json:"in_stock"`
}

// ItemResponse is a saved variant
type ItemResponse struct {
	ID        uuid.UUID       `json:"id"`
	VariantID uuid.UUID       `json:"variant_id"`
	Variant   *VariantSummary `json:"variant,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// WishlistResponse represents a wishlist in API responses
type WishlistResponse struct {
	ID         uuid.UUID      `json:"id"`
	CustomerID uuid.UUID      `json:"customer_id"`
	Items      []ItemResponse `json:"items"`
}

// MergeResponse is the merged wishlist with the outcome per local id
type MergeResponse struct {
	WishlistResponse
	Added   []uuid.UUID `json:"added"`
	Skipped []uuid.UUID `json:"skipped"`
}

// ToWishlistResponse converts a domain Wishlist; variants are looked up in the given map
func ToWishlistResponse(w *wishlist.Wishlist, variants map[uuid.UUID]*catalogapp.VariantSnapshot) WishlistResponse {
	items := make([]ItemResponse, len(w.Items))
	for i, it := range w.Items {
		items[i] = ItemResponse{ID: it.ID, VariantID: it.VariantID, CreatedAt: it.CreatedAt}
		if snap, ok := variants[it.VariantID]; ok {
			items[i].Variant = &VariantSummary{
				ProductID:    snap.ProductID,
				ProductTitle: snap.ProductTitle,
				Title:        snap.Variant.Title,
				SKU:          snap.Variant.SKU,
				Thumbnail:    snap.Thumbnail,
				Price:        snap.Variant.Price,
				InStock:      snap.Variant.CanFulfill(1),
			}
		}
	}
	return WishlistResponse{ID: w.ID, CustomerID: w.CustomerID, Items: items}
}
