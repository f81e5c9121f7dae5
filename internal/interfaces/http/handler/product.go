package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	catalogapp "github.com/storefront/backend/internal/application/catalog"
)

// ProductService is the catalog API used by ProductHandler
type ProductService interface {
	Create(ctx context.Context, req catalogapp.CreateProductRequest) (*catalogapp.ProductResponse, error)
	GetByID(ctx context.Context, productID uuid.UUID) (*catalogapp.ProductResponse, error)
	GetPublishedByHandle(ctx context.Context, handle string) (*catalogapp.ProductResponse, error)
	List(ctx context.Context, filter catalogapp.ProductListFilter, storeOnly bool) ([]catalogapp.ProductResponse, int64, error)
	Update(ctx context.Context, productID uuid.UUID, req catalogapp.UpdateProductRequest) (*catalogapp.ProductResponse, error)
	Publish(ctx context.Context, productID uuid.UUID) (*catalogapp.ProductResponse, error)
	Delete(ctx context.Context, productID uuid.UUID) error
}

// ProductHandler handles product-related API endpoints
type ProductHandler struct {
	BaseHandler
	productService ProductService
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

// StoreList godoc
//
//	@ID				storeListProducts
//	@Summary		List published products
//	@Tags			store-products
//	@Produce		json
//	@Param			q			query		string	false	"Title or handle contains"
//	@Param			page		query		int		false	"Page number"	default(1)
//	@Param			page_size	query		int		false	"Page size"		default(20)
//	@Param			order_by	query		string	false	"Sort field"	Enums(title, handle, created_at, updated_at)
//	@Param			order_dir	query		string	false	"Sort order"	Enums(asc, desc)
//	@Success		200			{object}	APIResponse[[]catalogapp.ProductResponse]
//	@Failure		400			{object}	ErrorResponse
//	@Router			/store/products [get]
func (h *ProductHandler) StoreList(c *gin.Context) {
	h.list(c, true)
}

// AdminList godoc
//
//	@ID				adminListProducts
//	@Summary		List products
//	@Description	List draft and published products
//	@Tags			admin-products
//	@Produce		json
//	@Param			q			query		string	false	"Title or handle contains"
//	@Param			status		query		string	false	"Product status"	Enums(draft, published)
//	@Param			page		query		int		false	"Page number"		default(1)
//	@Param			page_size	query		int		false	"Page size"			default(20)
//	@Success		200			{object}	APIResponse[[]catalogapp.ProductResponse]
//	@Failure		400			{object}	ErrorResponse
//	@Failure		401			{object}	ErrorResponse
//	@Failure		403			{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/admin/products [get]
func (h *ProductHandler) AdminList(c *gin.Context) {
	h.list(c, false)
}

func (h *ProductHandler) list(c *gin.Context, storeOnly bool) {
	var filter catalogapp.ProductListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}

	products, total, err := h.productService.List(c.Request.Context(), filter, storeOnly)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	page, pageSize := paging(filter.Page, filter.PageSize)
	h.SuccessWithMeta(c, products, total, page, pageSize)
}

// StoreGet godoc
//
//	@ID				storeGetProduct
//	@Summary		Get a published product by handle
//	@Tags			store-products
//	@Produce		json
//	@Param			handle	path		string	true	"Product handle"
//	@Success		200		{object}	APIResponse[catalogapp.ProductResponse]
//	@Failure		404		{object}	ErrorResponse
//	@Router			/store/products/{handle} [get]
func (h *ProductHandler) StoreGet(c *gin.Context) {
	product, err := h.productService.GetPublishedByHandle(c.Request.Context(), c.Param("handle"))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, product)
}

// AdminGet godoc
//
//	@ID				adminGetProduct
//	@Summary		Get a product
//	@Tags			admin-products
//	@Produce		json
//	@Param			id	path		string	true	"Product ID"	format(uuid)
//	@Success		200	{object}	APIResponse[catalogapp.ProductResponse]
//	@Failure		400	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/admin/products/{id} [get]
func (h *ProductHandler) AdminGet(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	product, err := h.productService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, product)
}

// Create godoc
//
//	@ID				adminCreateProduct
//	@Summary		Create a product
//	@Description	Create a product with its variants. The handle is derived from the title when empty.
//	@Tags			admin-products
//	@Accept			json
//	@Produce		json
//	@Param			request	body		catalogapp.CreateProductRequest	true	"Product"
//	@Success		201		{object}	APIResponse[catalogapp.ProductResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		409		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/admin/products [post]
func (h *ProductHandler) Create(c *gin.Context) {
	var req catalogapp.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	product, err := h.productService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, product)
}

// Update godoc
//
//	@ID				adminUpdateProduct
//	@Summary		Update a product
//	@Tags			admin-products
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string							true	"Product ID"	format(uuid)
//	@Param			request	body		catalogapp.UpdateProductRequest	true	"Fields to change"
//	@Success		200		{object}	APIResponse[catalogapp.ProductResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		409		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/admin/products/{id} [put]
func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req catalogapp.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	product, err := h.productService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, product)
}

// Publish godoc
//
//	@ID				adminPublishProduct
//	@Summary		Publish a product
//	@Tags			admin-products
//	@Produce		json
//	@Param			id	path		string	true	"Product ID"	format(uuid)
//	@Success		200	{object}	APIResponse[catalogapp.ProductResponse]
//	@Failure		404	{object}	ErrorResponse
//	@Failure		422	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/admin/products/{id}/publish [post]
func (h *ProductHandler) Publish(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	product, err := h.productService.Publish(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, product)
}

// Delete godoc
//
//	@ID				adminDeleteProduct
//	@Summary		Delete a product
//	@Tags			admin-products
//	@Param			id	path	string	true	"Product ID"	format(uuid)
//	@Success		204
//	@Failure		404	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/admin/products/{id} [delete]
func (h *ProductHandler) Delete(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.productService.Delete(c.Request.Context(), id); err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.NoContent(c)
}
