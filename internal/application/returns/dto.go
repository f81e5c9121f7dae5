package returns

import (
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/returns"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
)

// ReturnItemRequest selects an order line to send back
type ReturnItemRequest struct {
	LineItemID uuid.UUID `json:"line_item_id" binding:"required"`
	Quantity   int       `json:"quantity" binding:"required,min=1"`
	Reason     string    `json:"reason" binding:"max=100"`
	Note       string    `json:"note" binding:"max=500"`
}

// RequestReturnRequest opens a return for an order
type RequestReturnRequest struct {
	OrderID        uuid.UUID           `json:"order_id" binding:"required"`
	Items          []ReturnItemRequest `json:"items" binding:"required,min=1,dive"`
	Note           string              `json:"note" binding:"max=1000"`
	ReturnShipping bool                `json:"return_shipping"`

	// CustomerID restricts the return to orders of that customer. Set by the store handler.
	CustomerID *uuid.UUID `json:"-"`
}

// ReturnListFilter contains filtering and pagination options for returns
type ReturnListFilter struct {
	Status   string `form:"status" binding:"omitempty,oneof=requested received canceled"`
	OrderID  string `form:"order_id" binding:"omitempty,uuid"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by" binding:"omitempty,oneof=created_at updated_at status refund_amount received_at"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ReturnItemResponse is a returned order line
type ReturnItemResponse struct {
	LineItemID uuid.UUID `json:"line_item_id"`
	Quantity   int       `json:"quantity"`
	Reason     string    `json:"reason,omitempty"`
	Note       string    `json:"note,omitempty"`
}

// ReturnResponse represents a return in API responses
type ReturnResponse struct {
	ID             uuid.UUID            `json:"id"`
	OrderID        uuid.UUID            `json:"order_id"`
	Status         string               `json:"status"`
	Items          []ReturnItemResponse `json:"items"`
	RefundAmount   valueobject.Money    `json:"refund_amount"`
	Note           string               `json:"note,omitempty"`
	FulfillmentIDs []uuid.UUID          `json:"fulfillment_ids,omitempty"`
	ReceivedAt     *time.Time           `json:"received_at,omitempty"`
	CanceledAt     *time.Time           `json:"canceled_at,omitempty"`
	CreatedAt      time.Time            `json:"created_at"`
	UpdatedAt      time.Time            `json:"updated_at"`
}

// CancelReturnResponse is the canceled return with the outcome of every
// fulfillment it had open
type CancelReturnResponse struct {
	ReturnResponse
	CanceledFulfillments        []uuid.UUID `json:"canceled_fulfillments"`
	AlreadyResolvedFulfillments []uuid.UUID `json:"already_resolved_fulfillments"`
}

// ToReturnResponse converts a domain Return to ReturnResponse
func ToReturnResponse(r *returns.Return) ReturnResponse {
	items := make([]ReturnItemResponse, len(r.Items))
	for i, it := range r.Items {
		items[i] = ReturnItemResponse{
			LineItemID: it.LineItemID,
			Quantity:   it.Quantity,
			Reason:     it.Reason,
			Note:       it.Note,
		}
	}
	return ReturnResponse{
		ID:           r.ID,
		OrderID:      r.OrderID,
		Status:       r.Status.String(),
		Items:        items,
		RefundAmount: r.RefundAmount,
		Note:         r.Note,
		ReceivedAt:   r.ReceivedAt,
		CanceledAt:   r.CanceledAt,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

// ToReturnResponses converts a slice of domain Returns
func ToReturnResponses(list []returns.Return) []ReturnResponse {
	responses := make([]ReturnResponse, len(list))
	for i := range list {
		responses[i] = ToReturnResponse(&list[i])
	}
	return responses
}
