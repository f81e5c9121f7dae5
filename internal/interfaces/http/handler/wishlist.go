package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	wishlistapp "github.com/storefront/backend/internal/application/wishlist"
)

// WishlistService is the wishlist API used by WishlistHandler
type WishlistService interface {
	Get(ctx context.Context, customerID uuid.UUID) (*wishlistapp.WishlistResponse, error)
	AddItem(ctx context.Context, customerID uuid.UUID, req wishlistapp.AddItemRequest) (*wishlistapp.WishlistResponse, error)
	RemoveItem(ctx context.Context, customerID, itemID uuid.UUID) (*wishlistapp.WishlistResponse, error)
	Merge(ctx context.Context, customerID uuid.UUID, req wishlistapp.MergeRequest) (*wishlistapp.MergeResponse, error)
}

// WishlistHandler handles the signed-in customer's wishlist
type WishlistHandler struct {
	BaseHandler
	wishlistService WishlistService
}

// NewWishlistHandler creates a new WishlistHandler
func NewWishlistHandler(wishlistService WishlistService) *WishlistHandler {
	return &WishlistHandler{wishlistService: wishlistService}
}

// Get godoc
//
//	@ID				storeGetWishlist
//	@Summary		Get my wishlist
//	@Tags			store-wishlist
//	@Produce		json
//	@Success		200	{object}	APIResponse[wishlistapp.WishlistResponse]
//	@Failure		401	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/store/customers/me/wishlist [get]
func (h *WishlistHandler) Get(c *gin.Context) {
	customerID, ok := h.customerID(c)
	if !ok {
		return
	}

	w, err := h.wishlistService.Get(c.Request.Context(), customerID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, w)
}

// AddItem godoc
//
//	@ID				storeAddWishlistItem
//	@Summary		Save a variant to my wishlist
//	@Description	Saving a variant that is already on the list is a no-op.
//	@Tags			store-wishlist
//	@Accept			json
//	@Produce		json
//	@Param			request	body		wishlistapp.AddItemRequest	true	"Variant"
//	@Success		200		{object}	APIResponse[wishlistapp.WishlistResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		401		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/store/customers/me/wishlist/items [post]
func (h *WishlistHandler) AddItem(c *gin.Context) {
	customerID, ok := h.customerID(c)
	if !ok {
		return
	}
	var req wishlistapp.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	w, err := h.wishlistService.AddItem(c.Request.Context(), customerID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, w)
}

// RemoveItem godoc
//
//	@ID				storeRemoveWishlistItem
//	@Summary		Remove an item from my wishlist
//	@Tags			store-wishlist
//	@Produce		json
//	@Param			item_id	path		string	true	"Wishlist item ID"	format(uuid)
//	@Success		200		{object}	APIResponse[wishlistapp.WishlistResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		401		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/store/customers/me/wishlist/items/{item_id} [delete]
func (h *WishlistHandler) RemoveItem(c *gin.Context) {
	customerID, ok := h.customerID(c)
	if !ok {
		return
	}
	itemID, ok := h.pathUUID(c, "item_id")
	if !ok {
		return
	}

	w, err := h.wishlistService.RemoveItem(c.Request.Context(), customerID, itemID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, w)
}

// Merge godoc
//
//	@ID				storeMergeWishlist
//	@Summary		Merge a guest wishlist into mine
//	@Description	Appends the variants kept in browser storage after sign-in. Unknown variants are reported as skipped.
//	@Tags			store-wishlist
//	@Accept			json
//	@Produce		json
//	@Param			request	body		wishlistapp.MergeRequest	true	"Local variant ids"
//	@Success		200		{object}	APIResponse[wishlistapp.MergeResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		401		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/store/customers/me/wishlist/merge [post]
func (h *WishlistHandler) Merge(c *gin.Context) {
	customerID, ok := h.customerID(c)
	if !ok {
		return
	}
	var req wishlistapp.MergeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	res, err := h.wishlistService.Merge(c.Request.Context(), customerID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, res)
}
