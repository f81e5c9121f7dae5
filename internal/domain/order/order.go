package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
)

// Status represents the overall order status
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusCanceled  Status = "canceled"
)

// IsValid checks if the status is a valid order status
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusCanceled:
		return true
	}
	return false
}

// PaymentStatus tracks money movement for the order
type PaymentStatus string

const (
	PaymentStatusAwaiting          PaymentStatus = "awaiting"
	PaymentStatusCaptured          PaymentStatus = "captured"
	PaymentStatusPartiallyRefunded PaymentStatus = "partially_refunded"
	PaymentStatusRefunded          PaymentStatus = "refunded"
	PaymentStatusCanceled          PaymentStatus = "canceled"
)

// FulfillmentStatus tracks shipping progress for the order
type FulfillmentStatus string

const (
	FulfillmentStatusNotFulfilled FulfillmentStatus = "not_fulfilled"
	FulfillmentStatusFulfilled    FulfillmentStatus = "fulfilled"
	FulfillmentStatusShipped      FulfillmentStatus = "shipped"
	FulfillmentStatusCanceled     FulfillmentStatus = "canceled"
)

// LineItem is a cart line frozen into the order
type LineItem struct {
	ID               uuid.UUID
	VariantID        uuid.UUID
	ProductTitle     string
	VariantTitle     string
	SKU              string
	Thumbnail        string
	UnitPrice        valueobject.Money
	Quantity         int
	ReturnedQuantity int
	WeightGrams      int
}

// Total returns unit price times quantity
func (li LineItem) Total() valueobject.Money {
	return li.UnitPrice.MultiplyByInt(int64(li.Quantity))
}

// ReturnableQuantity is the quantity not yet claimed by a return
func (li LineItem) ReturnableQuantity() int {
	return li.Quantity - li.ReturnedQuantity
}

// ShippingMethod is the carrier method copied from the cart
type ShippingMethod struct {
	ShippingOptionID string
	Name             string
	Carrier          string
	Price            valueobject.Money
}

// Order is the aggregate root for a placed order
type Order struct {
	shared.BaseAggregateRoot
	DisplayID         int64
	CartID            uuid.UUID
	CustomerID        *uuid.UUID
	Email             string
	CurrencyCode      valueobject.Currency
	Items             []LineItem
	ShippingAddress   valueobject.Address
	ShippingMethod    ShippingMethod
	Subtotal          valueobject.Money
	ShippingTotal     valueobject.Money
	Total             valueobject.Money
	RefundedTotal     valueobject.Money
	Status            Status
	PaymentStatus     PaymentStatus
	FulfillmentStatus FulfillmentStatus
	PaymentIntentID   string
	CanceledAt        *time.Time
}

// NewOrderFromCart freezes a validated cart into an order
func NewOrderFromCart(displayID int64, c *cart.Cart, paymentCaptured bool) (*Order, error) {
	if c == nil {
		return nil, shared.NewDomainError("INVALID_CART", "Cart cannot be nil")
	}
	if err := c.ValidateForCompletion(); err != nil {
		return nil, err
	}
	if displayID <= 0 {
		return nil, shared.NewDomainError("INVALID_DISPLAY_ID", "Display ID must be positive")
	}

	items := make([]LineItem, 0, len(c.Items))
	for _, li := range c.Items {
		items = append(items, LineItem{
			ID:           uuid.New(),
			VariantID:    li.VariantID,
			ProductTitle: li.ProductTitle,
			VariantTitle: li.VariantTitle,
			SKU:          li.SKU,
			Thumbnail:    li.Thumbnail,
			UnitPrice:    li.UnitPrice,
			Quantity:     li.Quantity,
			WeightGrams:  li.WeightGrams,
		})
	}

	o := &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		DisplayID:         displayID,
		CartID:            c.ID,
		CustomerID:        c.CustomerID,
		Email:             c.Email,
		CurrencyCode:      c.CurrencyCode,
		Items:             items,
		ShippingAddress:   *c.ShippingAddress,
		ShippingMethod: ShippingMethod{
			ShippingOptionID: c.ShippingMethod.ShippingOptionID,
			Name:             c.ShippingMethod.Name,
			Carrier:          c.ShippingMethod.Carrier,
			Price:            c.ShippingMethod.Price,
		},
		Subtotal:          c.Subtotal(),
		ShippingTotal:     c.ShippingTotal(),
		Total:             c.Total(),
		RefundedTotal:     valueobject.Zero(c.CurrencyCode),
		Status:            StatusPending,
		PaymentStatus:     PaymentStatusAwaiting,
		FulfillmentStatus: FulfillmentStatusNotFulfilled,
		PaymentIntentID:   c.PaymentSession.PaymentIntentID,
	}
	if paymentCaptured {
		o.PaymentStatus = PaymentStatusCaptured
	}

	o.AddDomainEvent(NewOrderPlacedEvent(o))
	return o, nil
}

// FindItem returns the line item with the given ID, or nil
func (o *Order) FindItem(id uuid.UUID) *LineItem {
	for i := range o.Items {
		if o.Items[i].ID == id {
			return &o.Items[i]
		}
	}
	return nil
}

// TotalWeightGrams sums line weights for the given quantities, or all items when nil
func (o *Order) TotalWeightGrams(quantities map[uuid.UUID]int) int {
	total := 0
	for _, li := range o.Items {
		qty := li.Quantity
		if quantities != nil {
			qty = quantities[li.ID]
		}
		total += li.WeightGrams * qty
	}
	return total
}

// IsCanceled reports whether the order was canceled
func (o *Order) IsCanceled() bool {
	return o.Status == StatusCanceled
}

func (o *Order) changed() {
	o.Touch()
	o.IncrementVersion()
}

// MarkPaymentCaptured records that the payment was captured
func (o *Order) MarkPaymentCaptured() {
	if o.PaymentStatus == PaymentStatusAwaiting {
		o.PaymentStatus = PaymentStatusCaptured
		o.changed()
	}
}

// MarkFulfilled records that a parcel was created
func (o *Order) MarkFulfilled() error {
	if o.IsCanceled() {
		return shared.NewDomainError("INVALID_STATE", "Cannot fulfill a canceled order")
	}
	if o.FulfillmentStatus == FulfillmentStatusNotFulfilled || o.FulfillmentStatus == FulfillmentStatusCanceled {
		o.FulfillmentStatus = FulfillmentStatusFulfilled
		o.changed()
	}
	return nil
}

// MarkShipped records a shipment and raises OrderShipped
func (o *Order) MarkShipped(fulfillmentID uuid.UUID, trackingNumber, trackingURL string) error {
	if o.IsCanceled() {
		return shared.NewDomainError("INVALID_STATE", "Cannot ship a canceled order")
	}
	o.FulfillmentStatus = FulfillmentStatusShipped
	o.changed()
	o.AddDomainEvent(NewOrderShippedEvent(o, fulfillmentID, trackingNumber, trackingURL))
	return nil
}

// MarkFulfillmentCanceled updates the fulfillment status after a fulfillment was canceled
func (o *Order) MarkFulfillmentCanceled(activeRemaining int) {
	if activeRemaining > 0 || o.FulfillmentStatus == FulfillmentStatusShipped {
		return
	}
	o.FulfillmentStatus = FulfillmentStatusCanceled
	o.changed()
}

// Complete closes an order once it has shipped
func (o *Order) Complete() error {
	if o.Status != StatusPending {
		return shared.NewDomainError("INVALID_STATE", "Only pending orders can be completed")
	}
	if o.FulfillmentStatus != FulfillmentStatusShipped {
		return shared.NewDomainError("INVALID_STATE", "Order must be shipped before it can be completed")
	}
	o.Status = StatusCompleted
	o.changed()
	return nil
}

// CanCancel checks the order state and that no fulfillment is still active
func (o *Order) CanCancel(activeFulfillments int) error {
	if o.Status == StatusCanceled {
		return shared.NewDomainError("INVALID_STATE", "Order is already canceled")
	}
	if o.Status == StatusCompleted {
		return shared.NewDomainError("INVALID_STATE", "Completed orders cannot be canceled")
	}
	if activeFulfillments > 0 {
		return shared.NewDomainError("INVALID_STATE", "All fulfillments must be canceled before canceling the order")
	}
	return nil
}

// Cancel cancels the order. refunded tells whether captured money was returned.
func (o *Order) Cancel(activeFulfillments int, refunded bool) error {
	if err := o.CanCancel(activeFulfillments); err != nil {
		return err
	}
	now := time.Now()
	o.Status = StatusCanceled
	o.CanceledAt = &now
	if refunded {
		o.PaymentStatus = PaymentStatusRefunded
		o.RefundedTotal = o.Total
	} else {
		o.PaymentStatus = PaymentStatusCanceled
	}
	if o.FulfillmentStatus != FulfillmentStatusNotFulfilled {
		o.FulfillmentStatus = FulfillmentStatusCanceled
	}
	o.changed()
	o.AddDomainEvent(NewOrderCanceledEvent(o))
	return nil
}

// ReserveReturnQuantity claims line quantities for a return
func (o *Order) ReserveReturnQuantity(quantities map[uuid.UUID]int) error {
	if o.IsCanceled() {
		return shared.NewDomainError("INVALID_STATE", "Cannot return items of a canceled order")
	}
	for id, qty := range quantities {
		li := o.FindItem(id)
		if li == nil {
			return shared.NewDomainError("NOT_FOUND", "Line item not found on order")
		}
		if qty <= 0 {
			return shared.NewDomainError("INVALID_QUANTITY", "Return quantity must be greater than zero")
		}
		if qty > li.ReturnableQuantity() {
			return shared.NewDomainError("INVALID_QUANTITY", "Return quantity exceeds the returnable quantity of "+li.SKU)
		}
	}
	for id, qty := range quantities {
		o.FindItem(id).ReturnedQuantity += qty
	}
	o.changed()
	return nil
}

// ReleaseReturnQuantity gives quantities back after a return was canceled
func (o *Order) ReleaseReturnQuantity(quantities map[uuid.UUID]int) {
	for id, qty := range quantities {
		if li := o.FindItem(id); li != nil {
			li.ReturnedQuantity -= qty
			if li.ReturnedQuantity < 0 {
				li.ReturnedQuantity = 0
			}
		}
	}
	o.changed()
}

// RefundAmountFor prices the given line quantities
func (o *Order) RefundAmountFor(quantities map[uuid.UUID]int) valueobject.Money {
	total := valueobject.Zero(o.CurrencyCode)
	for _, li := range o.Items {
		if qty, ok := quantities[li.ID]; ok {
			total = total.MustAdd(li.UnitPrice.MultiplyByInt(int64(qty)))
		}
	}
	return total
}

// RecordRefund adds a refund and updates the payment status
func (o *Order) RecordRefund(amount valueobject.Money) error {
	sum, err := o.RefundedTotal.Add(amount)
	if err != nil {
		return shared.NewDomainError("INVALID_CURRENCY", err.Error())
	}
	if gt, _ := sum.GreaterThan(o.Total); gt {
		return shared.NewDomainError("INVALID_AMOUNT", "Refund exceeds the order total")
	}
	o.RefundedTotal = sum
	if sum.Equals(o.Total) {
		o.PaymentStatus = PaymentStatusRefunded
	} else {
		o.PaymentStatus = PaymentStatusPartiallyRefunded
	}
	o.changed()
	return nil
}
