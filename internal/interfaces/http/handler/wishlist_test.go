package handler

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	newsletterapp "github.com/storefront/backend/internal/application/newsletter"
	wishlistapp "github.com/storefront/backend/internal/application/wishlist"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestWishlistHandler_AddItem(t *testing.T) {
	svc := new(MockWishlistService)
	h := NewWishlistHandler(svc)
	customerID := uuid.New()
	variantID := uuid.New()

	svc.On("AddItem", mock.Anything, customerID, wishlistapp.AddItemRequest{VariantID: variantID}).
		Return(&wishlistapp.WishlistResponse{
			ID:         uuid.New(),
			CustomerID: customerID,
			Items:      []wishlistapp.ItemResponse{{ID: uuid.New(), VariantID: variantID}},
		}, nil)

	c, w := newJSONContext(t, http.MethodPost, "/", map[string]any{"variant_id": variantID})
	setJWTContext(c, customerID, auth.RoleCustomer)
	h.AddItem(c)

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestWishlistHandler_AddUnknownVariant(t *testing.T) {
	svc := new(MockWishlistService)
	h := NewWishlistHandler(svc)
	customerID := uuid.New()
	variantID := uuid.New()

	svc.On("AddItem", mock.Anything, customerID, wishlistapp.AddItemRequest{VariantID: variantID}).
		Return(nil, shared.NewDomainError("NOT_FOUND", "Variant not found"))

	c, w := newJSONContext(t, http.MethodPost, "/", map[string]any{"variant_id": variantID})
	setJWTContext(c, customerID, auth.RoleCustomer)
	h.AddItem(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestWishlistHandler_RemoveItem(t *testing.T) {
	svc := new(MockWishlistService)
	h := NewWishlistHandler(svc)
	customerID := uuid.New()
	itemID := uuid.New()

	svc.On("RemoveItem", mock.Anything, customerID, itemID).
		Return(&wishlistapp.WishlistResponse{CustomerID: customerID, Items: []wishlistapp.ItemResponse{}}, nil)

	c, w := newTestContext(http.MethodDelete, "/")
	c.Params = gin.Params{{Key: "item_id", Value: itemID.String()}}
	setJWTContext(c, customerID, auth.RoleCustomer)
	h.RemoveItem(c)

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestWishlistHandler_Merge(t *testing.T) {
	svc := new(MockWishlistService)
	h := NewWishlistHandler(svc)
	customerID := uuid.New()
	added := uuid.New()
	skipped := uuid.New()

	svc.On("Merge", mock.Anything, customerID, wishlistapp.MergeRequest{VariantIDs: []uuid.UUID{added, skipped}}).
		Return(&wishlistapp.MergeResponse{
			WishlistResponse: wishlistapp.WishlistResponse{CustomerID: customerID},
			Added:            []uuid.UUID{added},
			Skipped:          []uuid.UUID{skipped},
		}, nil)

	c, w := newJSONContext(t, http.MethodPost, "/", map[string]any{"variant_ids": []uuid.UUID{added, skipped}})
	setJWTContext(c, customerID, auth.RoleCustomer)
	h.Merge(c)

	require.Equal(t, http.StatusOK, w.Code)
	data := decodeResponse(t, w).Data.(map[string]any)
	assert.Equal(t, []any{added.String()}, data["added"])
	assert.Equal(t, []any{skipped.String()}, data["skipped"])
}

func TestWishlistHandler_RequiresCustomer(t *testing.T) {
	h := NewWishlistHandler(new(MockWishlistService))
	c, w := newTestContext(http.MethodGet, "/")
	h.Get(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestNewsletterHandler_SubscribeReportsSyncState(t *testing.T) {
	svc := new(MockNewsletterService)
	h := NewNewsletterHandler(svc)

	svc.On("Subscribe", mock.Anything, newsletterapp.SubscribeRequest{Email: "ada@example.com", FirstName: "Ada"}).
		Return(&newsletterapp.SubscriptionResponse{Email: "ada@example.com", Status: "subscribed", SyncState: "pending_sync"}, nil)

	c, w := newJSONContext(t, http.MethodPost, "/store/newsletter", map[string]any{"email": "ada@example.com", "first_name": "Ada"})
	h.Subscribe(c)

	require.Equal(t, http.StatusOK, w.Code)
	data := decodeResponse(t, w).Data.(map[string]any)
	assert.Equal(t, "pending_sync", data["sync_state"])
}

func TestNewsletterHandler_SubscribeInvalidEmail(t *testing.T) {
	svc := new(MockNewsletterService)
	h := NewNewsletterHandler(svc)

	c, w := newJSONContext(t, http.MethodPost, "/store/newsletter", map[string]any{"email": "nope"})
	h.Subscribe(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "Subscribe", mock.Anything, mock.Anything)
}

func TestNewsletterHandler_UnsubscribeUnknownAddress(t *testing.T) {
	svc := new(MockNewsletterService)
	h := NewNewsletterHandler(svc)

	svc.On("Unsubscribe", mock.Anything, "ghost@example.com").
		Return(nil, shared.NewDomainError("NOT_FOUND", "Subscription not found"))

	c, w := newTestContext(http.MethodDelete, "/")
	c.Params = gin.Params{{Key: "email", Value: "ghost@example.com"}}
	h.Unsubscribe(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
