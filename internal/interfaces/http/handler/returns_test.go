package handler

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	returnsapp "github.com/storefront/backend/internal/application/returns"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/auth"
	"github.com/storefront/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestReturnHandler_StoreRequestSetsCustomer(t *testing.T) {
	svc := new(MockReturnService)
	h := NewReturnHandler(svc)
	customerID := uuid.New()
	orderID := uuid.New()
	lineID := uuid.New()

	svc.On("RequestReturn", mock.Anything, mock.MatchedBy(func(req returnsapp.RequestReturnRequest) bool {
		return req.CustomerID != nil && *req.CustomerID == customerID && req.OrderID == orderID
	})).Return(&returnsapp.ReturnResponse{ID: uuid.New(), OrderID: orderID, Status: "requested"}, nil)

	c, w := newJSONContext(t, http.MethodPost, "/store/returns", map[string]any{
		"order_id": orderID,
		"items":    []map[string]any{{"line_item_id": lineID, "quantity": 1}},
	})
	setJWTContext(c, customerID, auth.RoleCustomer)
	h.StoreRequest(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	svc.AssertExpectations(t)
}

func TestReturnHandler_StoreRequestIgnoresBodyCustomer(t *testing.T) {
	svc := new(MockReturnService)
	h := NewReturnHandler(svc)
	customerID := uuid.New()

	svc.On("RequestReturn", mock.Anything, mock.MatchedBy(func(req returnsapp.RequestReturnRequest) bool {
		return req.CustomerID != nil && *req.CustomerID == customerID
	})).Return(&returnsapp.ReturnResponse{ID: uuid.New()}, nil)

	c, w := newJSONContext(t, http.MethodPost, "/store/returns", map[string]any{
		"order_id":    uuid.New(),
		"customer_id": uuid.New(),
		"items":       []map[string]any{{"line_item_id": uuid.New(), "quantity": 1}},
	})
	setJWTContext(c, customerID, auth.RoleCustomer)
	h.StoreRequest(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	svc.AssertExpectations(t)
}

func TestReturnHandler_List(t *testing.T) {
	svc := new(MockReturnService)
	h := NewReturnHandler(svc)

	svc.On("List", mock.Anything, returnsapp.ReturnListFilter{Status: "requested"}).
		Return([]returnsapp.ReturnResponse{{ID: uuid.New(), Status: "requested"}}, int64(1), nil)

	c, w := newTestContext(http.MethodGet, "/admin/returns?status=requested")
	h.List(c)

	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, 1, resp.Meta.Page)
	assert.Equal(t, dto.DefaultPageSize, resp.Meta.PageSize)
}

func TestReturnHandler_CancelReportsResolvedParcels(t *testing.T) {
	svc := new(MockReturnService)
	h := NewReturnHandler(svc)
	id := uuid.New()
	canceled := uuid.New()
	resolved := uuid.New()

	svc.On("CancelReturn", mock.Anything, id).Return(&returnsapp.CancelReturnResponse{
		ReturnResponse:              returnsapp.ReturnResponse{ID: id, Status: "canceled"},
		CanceledFulfillments:        []uuid.UUID{canceled},
		AlreadyResolvedFulfillments: []uuid.UUID{resolved},
	}, nil)

	c, w := newTestContext(http.MethodPost, "/")
	c.Params = gin.Params{{Key: "id", Value: id.String()}}
	h.Cancel(c)

	require.Equal(t, http.StatusOK, w.Code)
	data := decodeResponse(t, w).Data.(map[string]any)
	assert.Equal(t, "canceled", data["status"])
	assert.Equal(t, []any{canceled.String()}, data["canceled_fulfillments"])
	assert.Equal(t, []any{resolved.String()}, data["already_resolved_fulfillments"])
}

func TestReturnHandler_CancelTwice(t *testing.T) {
	svc := new(MockReturnService)
	h := NewReturnHandler(svc)
	id := uuid.New()

	svc.On("CancelReturn", mock.Anything, id).
		Return(nil, shared.NewDomainError("INVALID_STATE", "Return is already canceled"))

	c, w := newTestContext(http.MethodPost, "/")
	c.Params = gin.Params{{Key: "id", Value: id.String()}}
	h.Cancel(c)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestReturnHandler_GetInvalidID(t *testing.T) {
	h := NewReturnHandler(new(MockReturnService))
	c, w := newTestContext(http.MethodGet, "/")
	c.Params = gin.Params{{Key: "id", Value: "42"}}
	h.Get(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
