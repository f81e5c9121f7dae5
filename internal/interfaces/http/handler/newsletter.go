package handler

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	newsletterapp "github.com/storefront/backend/internal/application/newsletter"
)

// NewsletterService is the signup API used by NewsletterHandler
type NewsletterService interface {
	Subscribe(ctx context.Context, req newsletterapp.SubscribeRequest) (*newsletterapp.SubscriptionResponse, error)
	Unsubscribe(ctx context.Context, email string) (*newsletterapp.SubscriptionResponse, error)
}

// NewsletterHandler handles newsletter signups
type NewsletterHandler struct {
	BaseHandler
	newsletterService NewsletterService
}

// NewNewsletterHandler creates a new NewsletterHandler
func NewNewsletterHandler(newsletterService NewsletterService) *NewsletterHandler {
	return &NewsletterHandler{newsletterService: newsletterService}
}

// Subscribe godoc
//
//	@ID				storeNewsletterSubscribe
//	@Summary		Subscribe to the newsletter
//	@Description	The signup is stored first and pushed to the mailing list afterwards. A failed push is retried in the background.
//	@Tags			store-newsletter
//	@Accept			json
//	@Produce		json
//	@Param			request	body		newsletterapp.SubscribeRequest	true	"Signup"
//	@Success		200		{object}	APIResponse[newsletterapp.SubscriptionResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Router			/store/newsletter [post]
func (h *NewsletterHandler) Subscribe(c *gin.Context) {
	var req newsletterapp.SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	sub, err := h.newsletterService.Subscribe(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, sub)
}

// Unsubscribe godoc
//
//	@ID				storeNewsletterUnsubscribe
//	@Summary		Unsubscribe from the newsletter
//	@Tags			store-newsletter
//	@Produce		json
//	@Param			email	path		string	true	"Subscriber email"
//	@Success		200		{object}	APIResponse[newsletterapp.SubscriptionResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Router			/store/newsletter/{email} [delete]
func (h *NewsletterHandler) Unsubscribe(c *gin.Context) {
	email := strings.TrimSpace(c.Param("email"))
	if email == "" || !strings.Contains(email, "@") {
		h.BadRequest(c, "Invalid email")
		return
	}

	sub, err := h.newsletterService.Unsubscribe(c.Request.Context(), email)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, sub)
}
