package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	orderapp "github.com/storefront/backend/internal/application/order"
)

// OrderService is the order API used by OrderHandler
type OrderService interface {
	GetOrder(ctx context.Context, orderID uuid.UUID) (*orderapp.OrderResponse, error)
	GetCustomerOrder(ctx context.Context, orderID, customerID uuid.UUID) (*orderapp.OrderResponse, error)
	ListForCustomer(ctx context.Context, customerID uuid.UUID, filter orderapp.OrderListFilter) ([]orderapp.OrderResponse, int64, error)
	List(ctx context.Context, filter orderapp.OrderListFilter) ([]orderapp.OrderResponse, int64, error)
	Cancel(ctx context.Context, orderID uuid.UUID) (*orderapp.OrderResponse, error)
	Complete(ctx context.Context, orderID uuid.UUID) (*orderapp.OrderResponse, error)
}

// OrderHandler handles order endpoints for customers and admins
type OrderHandler struct {
	BaseHandler
	orderService OrderService
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orderService OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// StoreGet godoc
//
//	@ID				storeGetOrder
//	@Summary		Get one of my orders
//	@Description	Orders of other customers answer 404.
//	@Tags			store-orders
//	@Produce		json
//	@Param			id	path		string	true	"Order ID"	format(uuid)
//	@Success		200	{object}	APIResponse[orderapp.OrderResponse]
//	@Failure		401	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/store/orders/{id} [get]
func (h *OrderHandler) StoreGet(c *gin.Context) {
	customerID, ok := h.customerID(c)
	if !ok {
		return
	}
	orderID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	order, err := h.orderService.GetCustomerOrder(c.Request.Context(), orderID, customerID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, order)
}

// ListMine godoc
//
//	@ID				storeListMyOrders
//	@Summary		List my orders
//	@Tags			store-orders
//	@Produce		json
//	@Param			page		query		int	false	"Page number"	default(1)
//	@Param			page_size	query		int	false	"Page size"		default(20)
//	@Success		200			{object}	APIResponse[[]orderapp.OrderResponse]
//	@Failure		401			{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/store/customers/me/orders [get]
func (h *OrderHandler) ListMine(c *gin.Context) {
	customerID, ok := h.customerID(c)
	if !ok {
		return
	}
	var filter orderapp.OrderListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}

	orders, total, err := h.orderService.ListForCustomer(c.Request.Context(), customerID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	page, pageSize := paging(filter.Page, filter.PageSize)
	h.SuccessWithMeta(c, orders, total, page, pageSize)
}

// AdminList godoc
//
//	@ID				adminListOrders
//	@Summary		List orders
//	@Tags			admin-orders
//	@Produce		json
//	@Param			q					query		string	false	"Email or display id"
//	@Param			status				query		string	false	"Order status"			Enums(pending, completed, canceled)
//	@Param			payment_status		query		string	false	"Payment status"		Enums(awaiting, captured, partially_refunded, refunded, canceled)
//	@Param			fulfillment_status	query		string	false	"Fulfillment status"	Enums(not_fulfilled, fulfilled, shipped, canceled)
//	@Param			page				query		int		false	"Page number"			default(1)
//	@Param			page_size			query		int		false	"Page size"				default(20)
//	@Success		200					{object}	APIResponse[[]orderapp.OrderResponse]
//	@Failure		400					{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/admin/orders [get]
func (h *OrderHandler) AdminList(c *gin.Context) {
	var filter orderapp.OrderListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}

	orders, total, err := h.orderService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	page, pageSize := paging(filter.Page, filter.PageSize)
	h.SuccessWithMeta(c, orders, total, page, pageSize)
}

// AdminGet godoc
//
//	@ID				adminGetOrder
//	@Summary		Get an order
//	@Tags			admin-orders
//	@Produce		json
//	@Param			id	path		string	true	"Order ID"	format(uuid)
//	@Success		200	{object}	APIResponse[orderapp.OrderResponse]
//	@Failure		404	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/admin/orders/{id} [get]
func (h *OrderHandler) AdminGet(c *gin.Context) {
	orderID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	order, err := h.orderService.GetOrder(c.Request.Context(), orderID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, order)
}

// Cancel godoc
//
//	@ID				adminCancelOrder
//	@Summary		Cancel an order
//	@Description	Requires every fulfillment to be canceled first. Captured payments are refunded.
//	@Tags			admin-orders
//	@Produce		json
//	@Param			id	path		string	true	"Order ID"	format(uuid)
//	@Success		200	{object}	APIResponse[orderapp.OrderResponse]
//	@Failure		404	{object}	ErrorResponse
//	@Failure		422	{object}	ErrorResponse
//	@Failure		502	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/admin/orders/{id}/cancel [post]
func (h *OrderHandler) Cancel(c *gin.Context) {
	orderID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	order, err := h.orderService.Cancel(c.Request.Context(), orderID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, order)
}

// Complete godoc
//
//	@ID				adminCompleteOrder
//	@Summary		Complete an order
//	@Description	Closes a shipped order.
//	@Tags			admin-orders
//	@Produce		json
//	@Param			id	path		string	true	"Order ID"	format(uuid)
//	@Success		200	{object}	APIResponse[orderapp.OrderResponse]
//	@Failure		404	{object}	ErrorResponse
//	@Failure		422	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/admin/orders/{id}/complete [post]
func (h *OrderHandler) Complete(c *gin.Context) {
	orderID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	order, err := h.orderService.Complete(c.Request.Context(), orderID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, order)
}
