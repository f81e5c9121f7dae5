package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	searchapp "github.com/storefront/backend/internal/application/search"
	"github.com/storefront/backend/internal/infrastructure/search"
)

// SearchService is the search API used by SearchHandler
type SearchService interface {
	Search(ctx context.Context, req searchapp.SearchRequest) (*search.Result, error)
	ReindexAll(ctx context.Context) (*searchapp.ReindexResult, error)
}

// SearchHandler serves product search
type SearchHandler struct {
	BaseHandler
	searchService SearchService
}

// NewSearchHandler creates a new SearchHandler
func NewSearchHandler(searchService SearchService) *SearchHandler {
	return &SearchHandler{searchService: searchService}
}

// Search godoc
//
//	@ID				storeSearchProducts
//	@Summary		Search published products
//	@Description	Full-text search over published products. Falls back to a title match when the search engine is unavailable.
//	@Tags			store-products
//	@Produce		json
//	@Param			q		query		string	true	"Search text"
//	@Param			limit	query		int		false	"Maximum hits"	default(20)
//	@Param			offset	query		int		false	"Hits to skip"
//	@Success		200		{object}	APIResponse[search.Result]
//	@Failure		400		{object}	ErrorResponse
//	@Router			/store/products/search [get]
func (h *SearchHandler) Search(c *gin.Context) {
	var req searchapp.SearchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.searchService.Search(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, result)
}

// Reindex godoc
//
//	@ID				adminReindexProducts
//	@Summary		Rebuild the product search index
//	@Tags			admin-products
//	@Produce		json
//	@Success		200	{object}	APIResponse[searchapp.ReindexResult]
//	@Failure		502	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/admin/search/reindex [post]
func (h *SearchHandler) Reindex(c *gin.Context) {
	result, err := h.searchService.ReindexAll(c.Request.Context())
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, result)
}
