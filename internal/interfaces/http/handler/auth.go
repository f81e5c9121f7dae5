package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	identityapp "github.com/storefront/backend/internal/application/identity"
)

// AuthService is the account API used by AuthHandler
type AuthService interface {
	Register(ctx context.Context, req identityapp.RegisterRequest) (*identityapp.CustomerResponse, error)
	Login(ctx context.Context, req identityapp.LoginRequest) (*identityapp.LoginResult, error)
	AdminLogin(ctx context.Context, req identityapp.LoginRequest) (*identityapp.LoginResult, error)
	GetCustomer(ctx context.Context, customerID uuid.UUID) (*identityapp.CustomerResponse, error)
	UpdateCustomer(ctx context.Context, customerID uuid.UUID, req identityapp.UpdateProfileRequest) (*identityapp.CustomerResponse, error)
}

// AuthHandler handles customer accounts and token issuing
type AuthHandler struct {
	BaseHandler
	authService AuthService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login godoc
//
//	@ID				storeLogin
//	@Summary		Customer login
//	@Description	Exchange customer credentials for a bearer token
//	@Tags			store-auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		identityapp.LoginRequest	true	"Credentials"
//	@Success		200		{object}	APIResponse[identityapp.LoginResult]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		401		{object}	ErrorResponse
//	@Failure		429		{object}	ErrorResponse
//	@Router			/store/auth/token [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req identityapp.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, result)
}

// AdminLogin godoc
//
//	@ID				adminLogin
//	@Summary		Admin login
//	@Description	Exchange admin credentials for a bearer token with the admin role
//	@Tags			admin-auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		identityapp.LoginRequest	true	"Credentials"
//	@Success		200		{object}	APIResponse[identityapp.LoginResult]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		401		{object}	ErrorResponse
//	@Failure		429		{object}	ErrorResponse
//	@Router			/admin/auth/token [post]
func (h *AuthHandler) AdminLogin(c *gin.Context) {
	var req identityapp.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.authService.AdminLogin(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, result)
}

// Register godoc
//
//	@ID				storeRegisterCustomer
//	@Summary		Register a customer
//	@Tags			store-customers
//	@Accept			json
//	@Produce		json
//	@Param			request	body		identityapp.RegisterRequest	true	"Account details"
//	@Success		201		{object}	APIResponse[identityapp.CustomerResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		409		{object}	ErrorResponse
//	@Router			/store/customers [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req identityapp.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	customer, err := h.authService.Register(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, customer)
}

// GetMe godoc
//
//	@ID				storeGetMe
//	@Summary		Get the signed-in customer
//	@Tags			store-customers
//	@Produce		json
//	@Success		200	{object}	APIResponse[identityapp.CustomerResponse]
//	@Failure		401	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/store/customers/me [get]
func (h *AuthHandler) GetMe(c *gin.Context) {
	customerID, ok := h.customerID(c)
	if !ok {
		return
	}

	customer, err := h.authService.GetCustomer(c.Request.Context(), customerID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, customer)
}

// UpdateMe godoc
//
//	@ID				storeUpdateMe
//	@Summary		Update the signed-in customer
//	@Tags			store-customers
//	@Accept			json
//	@Produce		json
//	@Param			request	body		identityapp.UpdateProfileRequest	true	"Profile fields to change"
//	@Success		200		{object}	APIResponse[identityapp.CustomerResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		401		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/store/customers/me [post]
func (h *AuthHandler) UpdateMe(c *gin.Context) {
	customerID, ok := h.customerID(c)
	if !ok {
		return
	}
	var req identityapp.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	customer, err := h.authService.UpdateCustomer(c.Request.Context(), customerID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, customer)
}
