package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	invoiceapp "github.com/storefront/backend/internal/application/invoice"
)

// InvoiceService is the invoice API used by InvoiceHandler
type InvoiceService interface {
	GetConfig(ctx context.Context) (*invoiceapp.ConfigResponse, error)
	UpdateConfig(ctx context.Context, req invoiceapp.UpdateConfigRequest) (*invoiceapp.ConfigResponse, error)
	OrderInvoice(ctx context.Context, orderID uuid.UUID, customerID *uuid.UUID) (*invoiceapp.Document, error)
}

// InvoiceHandler serves invoice PDFs and the seller details printed on them
type InvoiceHandler struct {
	BaseHandler
	invoiceService InvoiceService
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(invoiceService InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService}
}

// StoreInvoice godoc
//
//	@ID				storeGetOrderInvoice
//	@Summary		Download the invoice of one of my orders
//	@Tags			store-orders
//	@Produce		application/pdf
//	@Param			id	path		string	true	"Order ID"	format(uuid)
//	@Success		200	{file}		binary
//	@Failure		401	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Failure		503	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/store/orders/{id}/invoice [get]
func (h *InvoiceHandler) StoreInvoice(c *gin.Context) {
	customerID, ok := h.customerID(c)
	if !ok {
		return
	}
	h.invoice(c, &customerID)
}

// AdminInvoice godoc
//
//	@ID				adminGetOrderInvoice
//	@Summary		Download an order invoice
//	@Tags			admin-orders
//	@Produce		application/pdf
//	@Param			id	path		string	true	"Order ID"	format(uuid)
//	@Success		200	{file}		binary
//	@Failure		404	{object}	ErrorResponse
//	@Failure		503	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/admin/orders/{id}/invoice [get]
func (h *InvoiceHandler) AdminInvoice(c *gin.Context) {
	h.invoice(c, nil)
}

func (h *InvoiceHandler) invoice(c *gin.Context, customerID *uuid.UUID) {
	orderID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	doc, err := h.invoiceService.OrderInvoice(c.Request.Context(), orderID, customerID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Attachment(c, doc.Filename, doc.ContentType, doc.Data)
}

// GetConfig godoc
//
//	@ID				adminGetInvoiceConfig
//	@Summary		Get the invoice settings
//	@Tags			admin-invoices
//	@Produce		json
//	@Success		200	{object}	APIResponse[invoiceapp.ConfigResponse]
//	@Security		BearerAuth
//	@Router			/admin/invoice-config [get]
func (h *InvoiceHandler) GetConfig(c *gin.Context) {
	cfg, err := h.invoiceService.GetConfig(c.Request.Context())
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, cfg)
}

// UpdateConfig godoc
//
//	@ID				adminUpdateInvoiceConfig
//	@Summary		Update the invoice settings
//	@Description	Only the fields sent are changed.
//	@Tags			admin-invoices
//	@Accept			json
//	@Produce		json
//	@Param			request	body		invoiceapp.UpdateConfigRequest	true	"Seller details"
//	@Success		200		{object}	APIResponse[invoiceapp.ConfigResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/admin/invoice-config [post]
func (h *InvoiceHandler) UpdateConfig(c *gin.Context) {
	var req invoiceapp.UpdateConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	cfg, err := h.invoiceService.UpdateConfig(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, cfg)
}
