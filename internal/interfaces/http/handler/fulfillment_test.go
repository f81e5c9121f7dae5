package handler

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	fulfillmentapp "github.com/storefront/backend/internal/application/fulfillment"
	"github.com/storefront/backend/internal/domain/fulfillment"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newFulfillmentTestHandler() (*FulfillmentHandler, *MockFulfillmentService, *MockLabelService) {
	fs := new(MockFulfillmentService)
	ls := new(MockLabelService)
	return NewFulfillmentHandler(fs, ls), fs, ls
}

func TestFulfillmentHandler_CreateWholeOrder(t *testing.T) {
	h, fs, _ := newFulfillmentTestHandler()
	orderID := uuid.New()

	fs.On("CreateFulfillment", mock.Anything, orderID, fulfillmentapp.CreateFulfillmentRequest{}).
		Return(&fulfillmentapp.FulfillmentResponse{ID: uuid.New(), OrderID: orderID, ProviderID: "sendcloud"}, nil)

	c, w := newTestContext(http.MethodPost, "/")
	c.Params = gin.Params{{Key: "id", Value: orderID.String()}}
	h.Create(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	fs.AssertExpectations(t)
}

func TestFulfillmentHandler_CancelUpstreamFailure(t *testing.T) {
	h, fs, _ := newFulfillmentTestHandler()
	id := uuid.New()

	fs.On("CancelFulfillment", mock.Anything, id).
		Return(nil, shared.NewDomainError("UPSTREAM_FAILURE", "sendcloud: parcel already announced"))

	c, w := newTestContext(http.MethodPost, "/")
	c.Params = gin.Params{{Key: "id", Value: id.String()}}
	h.Cancel(c)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	resp := decodeResponse(t, w)
	assert.Equal(t, dto.ErrCodeUpstreamFailure, resp.Error.Code)
	assert.Equal(t, "sendcloud: parcel already announced", resp.Error.Message)
}

func TestFulfillmentHandler_CreateShipmentRejectsBadURL(t *testing.T) {
	h, fs, _ := newFulfillmentTestHandler()

	c, w := newJSONContext(t, http.MethodPost, "/", map[string]any{"tracking_url": "not a url"})
	c.Params = gin.Params{{Key: "id", Value: uuid.NewString()}}
	h.CreateShipment(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	fs.AssertNotCalled(t, "CreateShipment", mock.Anything, mock.Anything, mock.Anything)
}

func TestFulfillmentHandler_Label(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		format     fulfillment.LabelFormat
		wantStatus int
	}{
		{name: "default format", query: "", format: "", wantStatus: http.StatusOK},
		{name: "label printer", query: "?format=label_printer", format: fulfillment.LabelFormatLabelPrinter, wantStatus: http.StatusOK},
		{name: "unknown format", query: "?format=a4", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _, ls := newFulfillmentTestHandler()
			id := uuid.New()
			ls.On("Label", mock.Anything, id, tt.format).Return(&fulfillmentapp.Label{
				Filename:    "label-123.pdf",
				ContentType: "application/pdf",
				Data:        []byte("%PDF"),
				Source:      "archive",
			}, nil).Maybe()

			c, w := newTestContext(http.MethodGet, "/admin/fulfillments/"+id.String()+"/label"+tt.query)
			c.Params = gin.Params{{Key: "id", Value: id.String()}}
			h.Label(c)

			require.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, "archive", w.Header().Get("X-Label-Source"))
				assert.Contains(t, w.Header().Get("Content-Disposition"), "label-123.pdf")
				ls.AssertExpectations(t)
			}
		})
	}
}

func TestFulfillmentHandler_LabelURL(t *testing.T) {
	h, _, ls := newFulfillmentTestHandler()
	id := uuid.New()
	expires := time.Now().Add(15 * time.Minute).UTC()

	ls.On("LabelURL", mock.Anything, id, fulfillment.LabelFormat("")).
		Return(&fulfillmentapp.LabelURLResponse{URL: "https://labels.example.com/x", ExpiresAt: expires}, nil)

	c, w := newTestContext(http.MethodGet, "/admin/fulfillments/"+id.String()+"/label-url")
	c.Params = gin.Params{{Key: "id", Value: id.String()}}
	h.LabelURL(c)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeResponse(t, w).Data.(map[string]any)
	assert.Equal(t, "https://labels.example.com/x", data["url"])
}

func TestFulfillmentHandler_ReturnLabelInternalError(t *testing.T) {
	h, _, ls := newFulfillmentTestHandler()
	id := uuid.New()

	ls.On("ReturnLabel", mock.Anything, id, fulfillment.LabelFormat("")).Return(nil, errors.New("disk on fire"))

	c, w := newTestContext(http.MethodGet, "/admin/returns/"+id.String()+"/label")
	c.Params = gin.Params{{Key: "id", Value: id.String()}}
	h.ReturnLabel(c)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "disk on fire")
}
