package handler

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	cartapp "github.com/storefront/backend/internal/application/cart"
	orderapp "github.com/storefront/backend/internal/application/order"
	shippingapp "github.com/storefront/backend/internal/application/shipping"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/auth"
	"github.com/storefront/backend/internal/interfaces/http/dto"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func setClaims(c *gin.Context, userID uuid.UUID, email, role string) {
	setJWTContext(c, userID, role)
	c.Set(middleware.JWTClaimsKey, &auth.Claims{UserID: userID.String(), Email: email, Role: role})
}

func TestCartHandler_Create(t *testing.T) {
	t.Run("attaches signed-in customer", func(t *testing.T) {
		svc := new(MockCartService)
		h := NewCartHandler(svc, nil)
		customerID := uuid.New()
		cartID := uuid.New()

		svc.On("Create", mock.Anything, mock.MatchedBy(func(req cartapp.CreateCartRequest) bool {
			return req.CustomerID != nil && *req.CustomerID == customerID && req.CustomerEmail == "ada@example.com"
		})).Return(&cartapp.CartResponse{ID: cartID, CustomerID: &customerID}, nil)

		c, w := newJSONContext(t, http.MethodPost, "/store/carts", map[string]any{"currency_code": "EUR"})
		setClaims(c, customerID, "ada@example.com", auth.RoleCustomer)
		h.Create(c)

		assert.Equal(t, http.StatusCreated, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("admin token does not attach a customer", func(t *testing.T) {
		svc := new(MockCartService)
		h := NewCartHandler(svc, nil)

		svc.On("Create", mock.Anything, mock.MatchedBy(func(req cartapp.CreateCartRequest) bool {
			return req.CustomerID == nil && req.CustomerEmail == ""
		})).Return(&cartapp.CartResponse{ID: uuid.New()}, nil)

		c, w := newTestContext(http.MethodPost, "/store/carts")
		setClaims(c, uuid.New(), "admin@example.com", auth.RoleAdmin)
		h.Create(c)

		assert.Equal(t, http.StatusCreated, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("rejects invalid items", func(t *testing.T) {
		svc := new(MockCartService)
		h := NewCartHandler(svc, nil)

		c, w := newJSONContext(t, http.MethodPost, "/store/carts", map[string]any{
			"items": []map[string]any{{"variant_id": uuid.NewString(), "quantity": 0}},
		})
		h.Create(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decodeResponse(t, w)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
		svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestCartHandler_GetRefreshesCart(t *testing.T) {
	svc := new(MockCartService)
	h := NewCartHandler(svc, nil)
	cartID := uuid.New()

	svc.On("Refresh", mock.Anything, cartID).Return(&cartapp.CartResponse{ID: cartID}, nil)

	c, w := newTestContext(http.MethodGet, "/store/carts/"+cartID.String())
	c.Params = gin.Params{{Key: "id", Value: cartID.String()}}
	h.Get(c)

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestCartHandler_GetNotFound(t *testing.T) {
	svc := new(MockCartService)
	h := NewCartHandler(svc, nil)
	cartID := uuid.New()

	svc.On("Refresh", mock.Anything, cartID).Return(nil, shared.NewDomainError("NOT_FOUND", "Cart not found"))

	c, w := newTestContext(http.MethodGet, "/store/carts/"+cartID.String())
	c.Params = gin.Params{{Key: "id", Value: cartID.String()}}
	h.Get(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, dto.ErrCodeNotFound, decodeResponse(t, w).Error.Code)
}

func TestCartHandler_AddLineItemInsufficientStock(t *testing.T) {
	svc := new(MockCartService)
	h := NewCartHandler(svc, nil)
	cartID := uuid.New()
	variantID := uuid.New()

	svc.On("AddLineItem", mock.Anything, cartID, cartapp.AddLineItemRequest{VariantID: variantID, Quantity: 3}).
		Return(nil, shared.NewDomainError("INSUFFICIENT_STOCK", "Only 2 left"))

	c, w := newJSONContext(t, http.MethodPost, "/", map[string]any{"variant_id": variantID, "quantity": 3})
	c.Params = gin.Params{{Key: "id", Value: cartID.String()}}
	h.AddLineItem(c)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, dto.ErrCodeInsufficientStock, decodeResponse(t, w).Error.Code)
}

func TestCartHandler_ListShippingOptions(t *testing.T) {
	t.Run("requires cart id", func(t *testing.T) {
		h := NewCartHandler(new(MockCartService), new(MockShippingOptionService))
		c, w := newTestContext(http.MethodGet, "/store/shipping-options")
		h.ListShippingOptions(c)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("returns priced options", func(t *testing.T) {
		shipping := new(MockShippingOptionService)
		h := NewCartHandler(new(MockCartService), shipping)
		cartID := uuid.New()

		shipping.On("ListShippingOptions", mock.Anything, cartID).
			Return([]shippingapp.Option{{ID: "8", Name: "PostNL Standard", Carrier: "postnl"}}, nil)

		c, w := newTestContext(http.MethodGet, "/store/shipping-options?cart_id="+cartID.String())
		h.ListShippingOptions(c)

		assert.Equal(t, http.StatusOK, w.Code)
		data := decodeResponse(t, w).Data.([]any)
		assert.Len(t, data, 1)
	})
}

func TestCartHandler_Complete(t *testing.T) {
	svc := new(MockCartService)
	h := NewCartHandler(svc, nil)
	cartID := uuid.New()
	orderID := uuid.New()

	svc.On("CompleteCart", mock.Anything, cartID).Return(&orderapp.OrderResponse{ID: orderID, CartID: cartID, DisplayID: 1001}, nil)

	c, w := newTestContext(http.MethodPost, "/")
	c.Params = gin.Params{{Key: "id", Value: cartID.String()}}
	h.Complete(c)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeResponse(t, w).Data.(map[string]any)
	assert.Equal(t, orderID.String(), data["id"])
}
