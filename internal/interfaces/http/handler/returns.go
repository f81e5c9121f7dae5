package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	returnsapp "github.com/storefront/backend/internal/application/returns"
)

// ReturnService is the returns API used by ReturnHandler
type ReturnService interface {
	RequestReturn(ctx context.Context, req returnsapp.RequestReturnRequest) (*returnsapp.ReturnResponse, error)
	GetReturn(ctx context.Context, returnID uuid.UUID) (*returnsapp.ReturnResponse, error)
	List(ctx context.Context, filter returnsapp.ReturnListFilter) ([]returnsapp.ReturnResponse, int64, error)
	ReceiveReturn(ctx context.Context, returnID uuid.UUID) (*returnsapp.ReturnResponse, error)
	CancelReturn(ctx context.Context, returnID uuid.UUID) (*returnsapp.CancelReturnResponse, error)
}

// ReturnHandler handles return requests
type ReturnHandler struct {
	BaseHandler
	returnService ReturnService
}

// NewReturnHandler creates a new ReturnHandler
func NewReturnHandler(returnService ReturnService) *ReturnHandler {
	return &ReturnHandler{returnService: returnService}
}

// StoreRequest godoc
//
//	@ID				storeRequestReturn
//	@Summary		Request a return for one of my orders
//	@Tags			store-returns
//	@Accept			json
//	@Produce		json
//	@Param			request	body		returnsapp.RequestReturnRequest	true	"Lines to return"
//	@Success		201		{object}	APIResponse[returnsapp.ReturnResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		401		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/store/returns [post]
func (h *ReturnHandler) StoreRequest(c *gin.Context) {
	customerID, ok := h.customerID(c)
	if !ok {
		return
	}
	var req returnsapp.RequestReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	req.CustomerID = &customerID

	ret, err := h.returnService.RequestReturn(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, ret)
}

// AdminCreate godoc
//
//	@ID				adminCreateReturn
//	@Summary		Open a return for any order
//	@Tags			admin-returns
//	@Accept			json
//	@Produce		json
//	@Param			request	body		returnsapp.RequestReturnRequest	true	"Lines to return"
//	@Success		201		{object}	APIResponse[returnsapp.ReturnResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/admin/returns [post]
func (h *ReturnHandler) AdminCreate(c *gin.Context) {
	var req returnsapp.RequestReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	ret, err := h.returnService.RequestReturn(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, ret)
}

// List godoc
//
//	@ID				adminListReturns
//	@Summary		List returns
//	@Tags			admin-returns
//	@Produce		json
//	@Param			status		query		string	false	"Return status"	Enums(requested, received, canceled)
//	@Param			order_id	query		string	false	"Order ID"		format(uuid)
//	@Param			page		query		int		false	"Page number"	default(1)
//	@Param			page_size	query		int		false	"Page size"		default(20)
//	@Success		200			{object}	APIResponse[[]returnsapp.ReturnResponse]
//	@Failure		400			{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/admin/returns [get]
func (h *ReturnHandler) List(c *gin.Context) {
	var filter returnsapp.ReturnListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}

	list, total, err := h.returnService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	page, pageSize := paging(filter.Page, filter.PageSize)
	h.SuccessWithMeta(c, list, total, page, pageSize)
}

// Get godoc
//
//	@ID				adminGetReturn
//	@Summary		Get a return
//	@Tags			admin-returns
//	@Produce		json
//	@Param			id	path		string	true	"Return ID"	format(uuid)
//	@Success		200	{object}	APIResponse[returnsapp.ReturnResponse]
//	@Failure		404	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/admin/returns/{id} [get]
func (h *ReturnHandler) Get(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	ret, err := h.returnService.GetReturn(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, ret)
}

// Receive godoc
//
//	@ID				adminReceiveReturn
//	@Summary		Receive a return
//	@Description	Restocks the returned lines and refunds the return amount.
//	@Tags			admin-returns
//	@Produce		json
//	@Param			id	path		string	true	"Return ID"	format(uuid)
//	@Success		200	{object}	APIResponse[returnsapp.ReturnResponse]
//	@Failure		404	{object}	ErrorResponse
//	@Failure		422	{object}	ErrorResponse
//	@Failure		502	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/admin/returns/{id}/receive [post]
func (h *ReturnHandler) Receive(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	ret, err := h.returnService.ReceiveReturn(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, ret)
}

// Cancel godoc
//
//	@ID				adminCancelReturn
//	@Summary		Cancel a return
//	@Description	Cancels every open return parcel first. Parcels the carrier reports as already gone are closed locally; any other carrier error stops the cancel with 502.
//	@Tags			admin-returns
//	@Produce		json
//	@Param			id	path		string	true	"Return ID"	format(uuid)
//	@Success		200	{object}	APIResponse[returnsapp.CancelReturnResponse]
//	@Failure		404	{object}	ErrorResponse
//	@Failure		422	{object}	ErrorResponse
//	@Failure		502	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/admin/returns/{id}/cancel [post]
func (h *ReturnHandler) Cancel(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	ret, err := h.returnService.CancelReturn(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, ret)
}
