package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	cartapp "github.com/storefront/backend/internal/application/cart"
	orderapp "github.com/storefront/backend/internal/application/order"
	shippingapp "github.com/storefront/backend/internal/application/shipping"
	"github.com/storefront/backend/internal/infrastructure/auth"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
)

// CartService is the checkout API used by CartHandler
type CartService interface {
	Create(ctx context.Context, req cartapp.CreateCartRequest) (*cartapp.CartResponse, error)
	Update(ctx context.Context, cartID uuid.UUID, req cartapp.UpdateCartRequest) (*cartapp.CartResponse, error)
	AddLineItem(ctx context.Context, cartID uuid.UUID, req cartapp.AddLineItemRequest) (*cartapp.CartResponse, error)
	UpdateLineItem(ctx context.Context, cartID, lineID uuid.UUID, req cartapp.UpdateLineItemRequest) (*cartapp.CartResponse, error)
	RemoveLineItem(ctx context.Context, cartID, lineID uuid.UUID) (*cartapp.CartResponse, error)
	AddShippingMethod(ctx context.Context, cartID uuid.UUID, req cartapp.AddShippingMethodRequest) (*cartapp.CartResponse, error)
	Refresh(ctx context.Context, cartID uuid.UUID) (*cartapp.CartResponse, error)
	InitiatePaymentSession(ctx context.Context, cartID uuid.UUID) (*cartapp.CartResponse, error)
	CompleteCart(ctx context.Context, cartID uuid.UUID) (*orderapp.OrderResponse, error)
}

// ShippingOptionService lists the shipping options of a cart
type ShippingOptionService interface {
	ListShippingOptions(ctx context.Context, cartID uuid.UUID) ([]shippingapp.Option, error)
}

// CartHandler handles carts and checkout
type CartHandler struct {
	BaseHandler
	cartService     CartService
	shippingService ShippingOptionService
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(cartService CartService, shippingService ShippingOptionService) *CartHandler {
	return &CartHandler{cartService: cartService, shippingService: shippingService}
}

// ShippingOptionsQuery selects the cart to price options for
type ShippingOptionsQuery struct {
	CartID string `form:"cart_id" binding:"required,uuid"`
}

// signedInCustomer returns the optional customer of a store request
func signedInCustomer(c *gin.Context) (*uuid.UUID, string) {
	claims := middleware.GetJWTClaims(c)
	if claims == nil || claims.Role != auth.RoleCustomer {
		return nil, ""
	}
	id, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, ""
	}
	return &id, claims.Email
}

// Create godoc
//
//	@ID				storeCreateCart
//	@Summary		Create a cart
//	@Description	Create a cart, optionally with items. A signed-in customer is attached to the cart.
//	@Tags			store-carts
//	@Accept			json
//	@Produce		json
//	@Param			request	body		cartapp.CreateCartRequest	false	"Initial cart contents"
//	@Success		201		{object}	APIResponse[cartapp.CartResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Router			/store/carts [post]
func (h *CartHandler) Create(c *gin.Context) {
	var req cartapp.CreateCartRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BindError(c, err)
			return
		}
	}
	req.CustomerID, req.CustomerEmail = signedInCustomer(c)

	cart, err := h.cartService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, cart)
}

// Get godoc
//
//	@ID				storeGetCart
//	@Summary		Get a cart
//	@Description	Returns the cart with prices and stock refreshed. Concurrent refreshes of one cart share a single result.
//	@Tags			store-carts
//	@Produce		json
//	@Param			id	path		string	true	"Cart ID"	format(uuid)
//	@Success		200	{object}	APIResponse[cartapp.CartResponse]
//	@Failure		400	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Router			/store/carts/{id} [get]
func (h *CartHandler) Get(c *gin.Context) {
	cartID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	cart, err := h.cartService.Refresh(c.Request.Context(), cartID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, cart)
}

// Update godoc
//
//	@ID				storeUpdateCart
//	@Summary		Update a cart
//	@Tags			store-carts
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string						true	"Cart ID"	format(uuid)
//	@Param			request	body		cartapp.UpdateCartRequest	true	"Contact and address"
//	@Success		200		{object}	APIResponse[cartapp.CartResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Router			/store/carts/{id} [post]
func (h *CartHandler) Update(c *gin.Context) {
	cartID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req cartapp.UpdateCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	req.CustomerID, req.CustomerEmail = signedInCustomer(c)

	cart, err := h.cartService.Update(c.Request.Context(), cartID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, cart)
}

// AddLineItem godoc
//
//	@ID				storeAddLineItem
//	@Summary		Add a variant to the cart
//	@Tags			store-carts
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string						true	"Cart ID"	format(uuid)
//	@Param			request	body		cartapp.AddLineItemRequest	true	"Variant and quantity"
//	@Success		200		{object}	APIResponse[cartapp.CartResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Router			/store/carts/{id}/line-items [post]
func (h *CartHandler) AddLineItem(c *gin.Context) {
	cartID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req cartapp.AddLineItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	cart, err := h.cartService.AddLineItem(c.Request.Context(), cartID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, cart)
}

// UpdateLineItem godoc
//
//	@ID				storeUpdateLineItem
//	@Summary		Change a line quantity
//	@Description	Sets the quantity of a line. Zero removes the line.
//	@Tags			store-carts
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string							true	"Cart ID"	format(uuid)
//	@Param			line_id	path		string							true	"Line item ID"	format(uuid)
//	@Param			request	body		cartapp.UpdateLineItemRequest	true	"New quantity"
//	@Success		200		{object}	APIResponse[cartapp.CartResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Router			/store/carts/{id}/line-items/{line_id} [post]
func (h *CartHandler) UpdateLineItem(c *gin.Context) {
	cartID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	lineID, ok := h.pathUUID(c, "line_id")
	if !ok {
		return
	}
	var req cartapp.UpdateLineItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	cart, err := h.cartService.UpdateLineItem(c.Request.Context(), cartID, lineID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, cart)
}

// RemoveLineItem godoc
//
//	@ID				storeRemoveLineItem
//	@Summary		Remove a line from the cart
//	@Tags			store-carts
//	@Produce		json
//	@Param			id		path		string	true	"Cart ID"		format(uuid)
//	@Param			line_id	path		string	true	"Line item ID"	format(uuid)
//	@Success		200		{object}	APIResponse[cartapp.CartResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Router			/store/carts/{id}/line-items/{line_id} [delete]
func (h *CartHandler) RemoveLineItem(c *gin.Context) {
	cartID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	lineID, ok := h.pathUUID(c, "line_id")
	if !ok {
		return
	}

	cart, err := h.cartService.RemoveLineItem(c.Request.Context(), cartID, lineID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, cart)
}

// ListShippingOptions godoc
//
//	@ID				storeListShippingOptions
//	@Summary		List shipping options for a cart
//	@Description	Options come from the carrier and are cached per destination and weight.
//	@Tags			store-carts
//	@Produce		json
//	@Param			cart_id	query		string	true	"Cart ID"	format(uuid)
//	@Success		200		{object}	APIResponse[[]shippingapp.Option]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		502		{object}	ErrorResponse
//	@Router			/store/shipping-options [get]
func (h *CartHandler) ListShippingOptions(c *gin.Context) {
	var q ShippingOptionsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BindError(c, err)
		return
	}

	options, err := h.shippingService.ListShippingOptions(c.Request.Context(), uuid.MustParse(q.CartID))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, options)
}

// AddShippingMethod godoc
//
//	@ID				storeAddShippingMethod
//	@Summary		Choose a shipping option
//	@Tags			store-carts
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string								true	"Cart ID"	format(uuid)
//	@Param			request	body		cartapp.AddShippingMethodRequest	true	"Shipping option"
//	@Success		200		{object}	APIResponse[cartapp.CartResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Router			/store/carts/{id}/shipping-methods [post]
func (h *CartHandler) AddShippingMethod(c *gin.Context) {
	cartID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req cartapp.AddShippingMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	cart, err := h.cartService.AddShippingMethod(c.Request.Context(), cartID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, cart)
}

// InitiatePaymentSession godoc
//
//	@ID				storeInitiatePaymentSession
//	@Summary		Start or update the Stripe payment session
//	@Description	Creates or resizes the payment intent for the cart total and returns its client secret.
//	@Tags			store-carts
//	@Produce		json
//	@Param			id	path		string	true	"Cart ID"	format(uuid)
//	@Success		200	{object}	APIResponse[cartapp.CartResponse]
//	@Failure		404	{object}	ErrorResponse
//	@Failure		422	{object}	ErrorResponse
//	@Failure		502	{object}	ErrorResponse
//	@Failure		503	{object}	ErrorResponse
//	@Router			/store/carts/{id}/payment-session [post]
func (h *CartHandler) InitiatePaymentSession(c *gin.Context) {
	cartID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	cart, err := h.cartService.InitiatePaymentSession(c.Request.Context(), cartID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, cart)
}

// Complete godoc
//
//	@ID				storeCompleteCart
//	@Summary		Complete checkout
//	@Description	Turns an authorized cart into an order. Completing an already completed cart returns the same order.
//	@Tags			store-carts
//	@Produce		json
//	@Param			id	path		string	true	"Cart ID"	format(uuid)
//	@Success		200	{object}	APIResponse[orderapp.OrderResponse]
//	@Failure		404	{object}	ErrorResponse
//	@Failure		422	{object}	ErrorResponse
//	@Router			/store/carts/{id}/complete [post]
func (h *CartHandler) Complete(c *gin.Context) {
	cartID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	order, err := h.cartService.CompleteCart(c.Request.Context(), cartID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, order)
}
