package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	fulfillmentapp "github.com/storefront/backend/internal/application/fulfillment"
	"github.com/storefront/backend/internal/domain/fulfillment"
)

// FulfillmentService is the shipping workflow used by FulfillmentHandler
type FulfillmentService interface {
	CreateFulfillment(ctx context.Context, orderID uuid.UUID, req fulfillmentapp.CreateFulfillmentRequest) (*fulfillmentapp.FulfillmentResponse, error)
	CreateShipment(ctx context.Context, fulfillmentID uuid.UUID, req fulfillmentapp.CreateShipmentRequest) (*fulfillmentapp.FulfillmentResponse, error)
	CancelFulfillment(ctx context.Context, fulfillmentID uuid.UUID) (*fulfillmentapp.FulfillmentResponse, error)
}

// LabelService fetches shipping labels
type LabelService interface {
	Label(ctx context.Context, fulfillmentID uuid.UUID, format fulfillment.LabelFormat) (*fulfillmentapp.Label, error)
	ReturnLabel(ctx context.Context, returnID uuid.UUID, format fulfillment.LabelFormat) (*fulfillmentapp.Label, error)
	LabelURL(ctx context.Context, fulfillmentID uuid.UUID, format fulfillment.LabelFormat) (*fulfillmentapp.LabelURLResponse, error)
}

// FulfillmentHandler handles admin fulfillment and label endpoints
type FulfillmentHandler struct {
	BaseHandler
	fulfillmentService FulfillmentService
	labelService       LabelService
}

// NewFulfillmentHandler creates a new FulfillmentHandler
func NewFulfillmentHandler(fulfillmentService FulfillmentService, labelService LabelService) *FulfillmentHandler {
	return &FulfillmentHandler{fulfillmentService: fulfillmentService, labelService: labelService}
}

// Create godoc
//
//	@ID				adminCreateFulfillment
//	@Summary		Create a fulfillment
//	@Description	Announces a parcel to the carrier. Without items every order line is shipped.
//	@Tags			admin-fulfillments
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string									true	"Order ID"	format(uuid)
//	@Param			request	body		fulfillmentapp.CreateFulfillmentRequest	false	"Provider and lines"
//	@Success		201		{object}	APIResponse[fulfillmentapp.FulfillmentResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Failure		502		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/admin/orders/{id}/fulfillments [post]
func (h *FulfillmentHandler) Create(c *gin.Context) {
	orderID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req fulfillmentapp.CreateFulfillmentRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BindError(c, err)
			return
		}
	}

	f, err := h.fulfillmentService.CreateFulfillment(c.Request.Context(), orderID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, f)
}

// Cancel godoc
//
//	@ID				adminCancelFulfillment
//	@Summary		Cancel a fulfillment
//	@Description	Cancels the parcel at the carrier, then locally. Carrier errors are returned as 502 with the carrier message.
//	@Tags			admin-fulfillments
//	@Produce		json
//	@Param			id	path		string	true	"Fulfillment ID"	format(uuid)
//	@Success		200	{object}	APIResponse[fulfillmentapp.FulfillmentResponse]
//	@Failure		404	{object}	ErrorResponse
//	@Failure		422	{object}	ErrorResponse
//	@Failure		502	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/admin/fulfillments/{id}/cancel [post]
func (h *FulfillmentHandler) Cancel(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	f, err := h.fulfillmentService.CancelFulfillment(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, f)
}

// CreateShipment godoc
//
//	@ID				adminCreateShipment
//	@Summary		Mark a fulfillment shipped
//	@Tags			admin-fulfillments
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string									true	"Fulfillment ID"	format(uuid)
//	@Param			request	body		fulfillmentapp.CreateShipmentRequest	false	"Tracking details"
//	@Success		200		{object}	APIResponse[fulfillmentapp.FulfillmentResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/admin/fulfillments/{id}/shipments [post]
func (h *FulfillmentHandler) CreateShipment(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req fulfillmentapp.CreateShipmentRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BindError(c, err)
			return
		}
	}

	f, err := h.fulfillmentService.CreateShipment(c.Request.Context(), id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, f)
}

// Label godoc
//
//	@ID				adminGetFulfillmentLabel
//	@Summary		Download a shipping label
//	@Description	Served from the label archive when present, otherwise fetched from the carrier.
//	@Tags			admin-fulfillments
//	@Produce		application/pdf
//	@Param			id		path		string	true	"Fulfillment ID"	format(uuid)
//	@Param			format	query		string	false	"Printer layout"	Enums(normal_printer, label_printer)
//	@Success		200		{file}		binary
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		502		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/admin/fulfillments/{id}/label [get]
func (h *FulfillmentHandler) Label(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	format, ok := h.labelFormat(c)
	if !ok {
		return
	}

	label, err := h.labelService.Label(c.Request.Context(), id, format)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	c.Header("X-Label-Source", label.Source)
	h.Attachment(c, label.Filename, label.ContentType, label.Data)
}

// LabelURL godoc
//
//	@ID				adminGetFulfillmentLabelURL
//	@Summary		Get a temporary download link for a label
//	@Tags			admin-fulfillments
//	@Produce		json
//	@Param			id		path		string	true	"Fulfillment ID"	format(uuid)
//	@Param			format	query		string	false	"Printer layout"	Enums(normal_printer, label_printer)
//	@Success		200		{object}	APIResponse[fulfillmentapp.LabelURLResponse]
//	@Failure		404		{object}	ErrorResponse
//	@Failure		502		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/admin/fulfillments/{id}/label-url [get]
func (h *FulfillmentHandler) LabelURL(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	format, ok := h.labelFormat(c)
	if !ok {
		return
	}

	link, err := h.labelService.LabelURL(c.Request.Context(), id, format)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, link)
}

// ReturnLabel godoc
//
//	@ID				adminGetReturnLabel
//	@Summary		Download the label of a return parcel
//	@Tags			admin-returns
//	@Produce		application/pdf
//	@Param			id		path		string	true	"Return ID"			format(uuid)
//	@Param			format	query		string	false	"Printer layout"	Enums(normal_printer, label_printer)
//	@Success		200		{file}		binary
//	@Failure		404		{object}	ErrorResponse
//	@Failure		502		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/admin/returns/{id}/label [get]
func (h *FulfillmentHandler) ReturnLabel(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	format, ok := h.labelFormat(c)
	if !ok {
		return
	}

	label, err := h.labelService.ReturnLabel(c.Request.Context(), id, format)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	c.Header("X-Label-Source", label.Source)
	h.Attachment(c, label.Filename, label.ContentType, label.Data)
}

func (h *FulfillmentHandler) labelFormat(c *gin.Context) (fulfillment.LabelFormat, bool) {
	var q fulfillmentapp.LabelQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BindError(c, err)
		return "", false
	}
	return fulfillment.LabelFormat(q.Format), true
}
