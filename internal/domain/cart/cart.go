package cart

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
)

// Maximum quantity per line item
const maxItemQuantity = 999

// LineItem is a variant placed in the cart, priced at the time of the last refresh
type LineItem struct {
	ID           uuid.UUID
	VariantID    uuid.UUID
	ProductID    uuid.UUID
	ProductTitle string
	VariantTitle string
	SKU          string
	Thumbnail    string
	UnitPrice    valueobject.Money
	Quantity     int
	WeightGrams  int
}

// Total returns unit price times quantity
func (li LineItem) Total() valueobject.Money {
	return li.UnitPrice.MultiplyByInt(int64(li.Quantity))
}

// ShippingMethod is the carrier method chosen at checkout
type ShippingMethod struct {
	ShippingOptionID string
	Name             string
	Carrier          string
	Price            valueobject.Money
}

// PaymentSessionStatus mirrors the lifecycle of the provider payment
type PaymentSessionStatus string

const (
	PaymentSessionPending    PaymentSessionStatus = "pending"
	PaymentSessionAuthorized PaymentSessionStatus = "authorized"
	PaymentSessionError      PaymentSessionStatus = "error"
	PaymentSessionCanceled   PaymentSessionStatus = "canceled"
)

// ProviderStripe is the only payment provider
const ProviderStripe = "stripe"

// PaymentSession links the cart to a payment intent
type PaymentSession struct {
	Provider        string
	PaymentIntentID string
	ClientSecret    string
	Status          PaymentSessionStatus
	Amount          valueobject.Money
	LastError       string
}

// VariantSnapshot is the catalog view of a variant used to price a line item
type VariantSnapshot struct {
	VariantID    uuid.UUID
	ProductID    uuid.UUID
	ProductTitle string
	VariantTitle string
	SKU          string
	Thumbnail    string
	UnitPrice    valueobject.Money
	WeightGrams  int
}

// Cart is the aggregate root for a shopping session
type Cart struct {
	shared.BaseAggregateRoot
	Email           string
	CustomerID      *uuid.UUID
	CurrencyCode    valueobject.Currency
	Items           []LineItem
	ShippingAddress *valueobject.Address
	ShippingMethod  *ShippingMethod
	PaymentSession  *PaymentSession
	CompletedAt     *time.Time
}

// NewCart creates an empty cart in the given currency
func NewCart(currency valueobject.Currency) *Cart {
	if currency == "" {
		currency = valueobject.DefaultCurrency
	}
	return &Cart{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		CurrencyCode:      currency,
		Items:             make([]LineItem, 0),
	}
}

// IsCompleted reports whether the cart was turned into an order
func (c *Cart) IsCompleted() bool {
	return c.CompletedAt != nil
}

func (c *Cart) ensureMutable() error {
	if c.IsCompleted() {
		return shared.NewDomainError("INVALID_STATE", "Cart is already completed")
	}
	return nil
}

func (c *Cart) changed() {
	c.Touch()
	c.IncrementVersion()
}

// SetEmail sets the contact email for the order confirmation
func (c *Cart) SetEmail(email string) error {
	if err := c.ensureMutable(); err != nil {
		return err
	}
	normalized, err := valueobject.NormalizeEmail(email)
	if err != nil {
		return err
	}
	c.Email = normalized
	c.changed()
	return nil
}

// AssignCustomer links the cart to a logged-in customer
func (c *Cart) AssignCustomer(customerID uuid.UUID, email string) error {
	if err := c.ensureMutable(); err != nil {
		return err
	}
	if c.CustomerID != nil && *c.CustomerID != customerID {
		return shared.NewDomainError("FORBIDDEN", "Cart belongs to another customer")
	}
	c.CustomerID = &customerID
	if c.Email == "" && email != "" {
		c.Email = strings.ToLower(strings.TrimSpace(email))
	}
	c.changed()
	return nil
}

// SetShippingAddress validates and stores the destination. A changed country drops the shipping method.
func (c *Cart) SetShippingAddress(addr valueobject.Address) error {
	if err := c.ensureMutable(); err != nil {
		return err
	}
	addr = addr.Normalize()
	if err := addr.Validate(); err != nil {
		return shared.NewDomainError("INVALID_ADDRESS", err.Error())
	}
	if c.ShippingAddress != nil && c.ShippingAddress.CountryCode != addr.CountryCode {
		c.ShippingMethod = nil
	}
	c.ShippingAddress = &addr
	c.changed()
	return nil
}

// AddItem adds a variant or increases the quantity of an existing line
func (c *Cart) AddItem(v VariantSnapshot, quantity int) (*LineItem, error) {
	if err := c.ensureMutable(); err != nil {
		return nil, err
	}
	if quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be greater than zero")
	}
	if v.UnitPrice.Currency() != c.CurrencyCode {
		return nil, shared.NewDomainError("INVALID_CURRENCY", "Variant price currency does not match cart currency")
	}

	for i := range c.Items {
		if c.Items[i].VariantID == v.VariantID {
			if c.Items[i].Quantity+quantity > maxItemQuantity {
				return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity exceeds the maximum per line item")
			}
			c.Items[i].Quantity += quantity
			c.Items[i].UnitPrice = v.UnitPrice
			c.changed()
			return &c.Items[i], nil
		}
	}
	if quantity > maxItemQuantity {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity exceeds the maximum per line item")
	}

	c.Items = append(c.Items, LineItem{
		ID:           uuid.New(),
		VariantID:    v.VariantID,
		ProductID:    v.ProductID,
		ProductTitle: v.ProductTitle,
		VariantTitle: v.VariantTitle,
		SKU:          v.SKU,
		Thumbnail:    v.Thumbnail,
		UnitPrice:    v.UnitPrice,
		Quantity:     quantity,
		WeightGrams:  v.WeightGrams,
	})
	c.changed()
	return &c.Items[len(c.Items)-1], nil
}

// UpdateItemQuantity sets the quantity of a line. Zero removes it.
func (c *Cart) UpdateItemQuantity(itemID uuid.UUID, quantity int) error {
	if err := c.ensureMutable(); err != nil {
		return err
	}
	if quantity < 0 || quantity > maxItemQuantity {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be between 0 and 999")
	}
	if quantity == 0 {
		return c.RemoveItem(itemID)
	}
	item := c.FindItem(itemID)
	if item == nil {
		return shared.NewDomainError("NOT_FOUND", "Line item not found")
	}
	item.Quantity = quantity
	c.changed()
	return nil
}

// RemoveItem deletes a line
func (c *Cart) RemoveItem(itemID uuid.UUID) error {
	if err := c.ensureMutable(); err != nil {
		return err
	}
	for i := range c.Items {
		if c.Items[i].ID == itemID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			c.changed()
			return nil
		}
	}
	return shared.NewDomainError("NOT_FOUND", "Line item not found")
}

// FindItem returns the line item with the given ID, or nil
func (c *Cart) FindItem(itemID uuid.UUID) *LineItem {
	for i := range c.Items {
		if c.Items[i].ID == itemID {
			return &c.Items[i]
		}
	}
	return nil
}

// Reprice refreshes a line from the catalog. It reports whether anything changed.
func (c *Cart) Reprice(v VariantSnapshot) bool {
	if c.IsCompleted() {
		return false
	}
	changed := false
	for i := range c.Items {
		li := &c.Items[i]
		if li.VariantID != v.VariantID {
			continue
		}
		if !li.UnitPrice.Equals(v.UnitPrice) && v.UnitPrice.Currency() == c.CurrencyCode {
			li.UnitPrice = v.UnitPrice
			changed = true
		}
		if li.ProductTitle != v.ProductTitle || li.VariantTitle != v.VariantTitle || li.Thumbnail != v.Thumbnail {
			li.ProductTitle = v.ProductTitle
			li.VariantTitle = v.VariantTitle
			li.Thumbnail = v.Thumbnail
			changed = true
		}
		li.WeightGrams = v.WeightGrams
	}
	if changed {
		c.changed()
	}
	return changed
}

// SetShippingMethod stores the chosen carrier method
func (c *Cart) SetShippingMethod(m ShippingMethod) error {
	if err := c.ensureMutable(); err != nil {
		return err
	}
	if c.ShippingAddress == nil {
		return shared.NewDomainError("INVALID_STATE", "Shipping address is required before choosing a shipping method")
	}
	if m.Price.Currency() != c.CurrencyCode {
		return shared.NewDomainError("INVALID_CURRENCY", "Shipping price currency does not match cart currency")
	}
	c.ShippingMethod = &m
	c.changed()
	return nil
}

// SetPaymentSession attaches or replaces the payment session
func (c *Cart) SetPaymentSession(s PaymentSession) error {
	if err := c.ensureMutable(); err != nil {
		return err
	}
	if len(c.Items) == 0 {
		return shared.NewDomainError("INVALID_STATE", "Cannot start payment for an empty cart")
	}
	c.PaymentSession = &s
	c.changed()
	return nil
}

// RecordPaymentFailure stores the last provider error on the session
func (c *Cart) RecordPaymentFailure(message string) {
	if c.PaymentSession == nil {
		return
	}
	c.PaymentSession.Status = PaymentSessionError
	c.PaymentSession.LastError = message
	c.changed()
}

// Subtotal sums all line totals
func (c *Cart) Subtotal() valueobject.Money {
	total := valueobject.Zero(c.CurrencyCode)
	for _, li := range c.Items {
		total = total.MustAdd(li.Total())
	}
	return total
}

// ShippingTotal returns the shipping method price, or zero
func (c *Cart) ShippingTotal() valueobject.Money {
	if c.ShippingMethod == nil {
		return valueobject.Zero(c.CurrencyCode)
	}
	return c.ShippingMethod.Price
}

// Total returns subtotal plus shipping
func (c *Cart) Total() valueobject.Money {
	return c.Subtotal().MustAdd(c.ShippingTotal())
}

// TotalWeightGrams sums line weights
func (c *Cart) TotalWeightGrams() int {
	total := 0
	for _, li := range c.Items {
		total += li.WeightGrams * li.Quantity
	}
	return total
}

// ValidateForCompletion checks everything an order needs
func (c *Cart) ValidateForCompletion() error {
	if err := c.ensureMutable(); err != nil {
		return err
	}
	if len(c.Items) == 0 {
		return shared.NewDomainError("INVALID_STATE", "Cart has no items")
	}
	if c.Email == "" {
		return shared.NewDomainError("INVALID_STATE", "Cart has no email")
	}
	if c.ShippingAddress == nil {
		return shared.NewDomainError("INVALID_STATE", "Cart has no shipping address")
	}
	if c.ShippingMethod == nil {
		return shared.NewDomainError("INVALID_STATE", "Cart has no shipping method")
	}
	if c.PaymentSession == nil {
		return shared.NewDomainError("INVALID_STATE", "Cart has no payment session")
	}
	return nil
}

// Complete marks the cart as converted into the given order
func (c *Cart) Complete(orderID uuid.UUID) error {
	if err := c.ensureMutable(); err != nil {
		return err
	}
	now := time.Now()
	c.CompletedAt = &now
	if c.PaymentSession != nil {
		c.PaymentSession.Status = PaymentSessionAuthorized
	}
	c.changed()
	c.AddDomainEvent(NewCartCompletedEvent(c, orderID))
	return nil
}
