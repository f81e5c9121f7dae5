package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
)

// OrderModel is the persistence model for the Order aggregate
type OrderModel struct {
	AggregateModel
	DisplayID       int64               `gorm:"not null;uniqueIndex"`
	CartID          uuid.UUID           `gorm:"type:uuid;not null;uniqueIndex"`
	CustomerID      *uuid.UUID          `gorm:"type:uuid;index"`
	Email           string              `gorm:"type:varchar(200);not null;index"`
	CurrencyCode    string              `gorm:"type:varchar(3);not null"`
	ShippingAddress valueobject.Address `gorm:"type:jsonb;serializer:json;not null"`

	ShippingOptionID string          `gorm:"type:varchar(100)"`
	ShippingName     string          `gorm:"type:varchar(200)"`
	ShippingCarrier  string          `gorm:"type:varchar(100)"`
	Subtotal         decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	ShippingTotal    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Total            decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	RefundedTotal    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`

	Status            order.Status            `gorm:"type:varchar(20);not null;index"`
	PaymentStatus     order.PaymentStatus     `gorm:"type:varchar(30);not null"`
	FulfillmentStatus order.FulfillmentStatus `gorm:"type:varchar(30);not null"`
	PaymentIntentID   string                  `gorm:"type:varchar(255);index"`
	CanceledAt        *time.Time

	Items []OrderLineItemModel `gorm:"foreignKey:OrderID;references:ID"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// OrderLineItemModel is the persistence model for order lines
type OrderLineItemModel struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OrderID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	Position         int             `gorm:"not null;default:0"`
	VariantID        uuid.UUID       `gorm:"type:uuid;not null"`
	ProductTitle     string          `gorm:"type:varchar(300)"`
	VariantTitle     string          `gorm:"type:varchar(200)"`
	SKU              string          `gorm:"column:sku;type:varchar(100)"`
	Thumbnail        string          `gorm:"type:varchar(1000)"`
	UnitPrice        decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Quantity         int             `gorm:"not null"`
	ReturnedQuantity int             `gorm:"not null;default:0"`
	WeightGrams      int             `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (OrderLineItemModel) TableName() string {
	return "order_line_items"
}

// ToDomain converts the persistence model to a domain Order
func (m *OrderModel) ToDomain() *order.Order {
	o := &order.Order{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		DisplayID:         m.DisplayID,
		CartID:            m.CartID,
		CustomerID:        m.CustomerID,
		Email:             m.Email,
		CurrencyCode:      valueobject.Currency(m.CurrencyCode),
		ShippingAddress:   m.ShippingAddress,
		ShippingMethod: order.ShippingMethod{
			ShippingOptionID: m.ShippingOptionID,
			Name:             m.ShippingName,
			Carrier:          m.ShippingCarrier,
			Price:            toMoney(m.ShippingTotal, m.CurrencyCode),
		},
		Subtotal:          toMoney(m.Subtotal, m.CurrencyCode),
		ShippingTotal:     toMoney(m.ShippingTotal, m.CurrencyCode),
		Total:             toMoney(m.Total, m.CurrencyCode),
		RefundedTotal:     toMoney(m.RefundedTotal, m.CurrencyCode),
		Status:            m.Status,
		PaymentStatus:     m.PaymentStatus,
		FulfillmentStatus: m.FulfillmentStatus,
		PaymentIntentID:   m.PaymentIntentID,
		CanceledAt:        m.CanceledAt,
		Items:             make([]order.LineItem, 0, len(m.Items)),
	}
	for _, li := range m.Items {
		o.Items = append(o.Items, order.LineItem{
			ID:               li.ID,
			VariantID:        li.VariantID,
			ProductTitle:     li.ProductTitle,
			VariantTitle:     li.VariantTitle,
			SKU:              li.SKU,
			Thumbnail:        li.Thumbnail,
			UnitPrice:        toMoney(li.UnitPrice, m.CurrencyCode),
			Quantity:         li.Quantity,
			ReturnedQuantity: li.ReturnedQuantity,
			WeightGrams:      li.WeightGrams,
		})
	}
	return o
}

// FromDomain populates the persistence model from a domain Order
func (m *OrderModel) FromDomain(o *order.Order) {
	m.FromDomainAggregateRoot(o.BaseAggregateRoot)
	m.DisplayID = o.DisplayID
	m.CartID = o.CartID
	m.CustomerID = o.CustomerID
	m.Email = o.Email
	m.CurrencyCode = string(o.CurrencyCode)
	m.ShippingAddress = o.ShippingAddress
	m.ShippingOptionID = o.ShippingMethod.ShippingOptionID
	m.ShippingName = o.ShippingMethod.Name
	m.ShippingCarrier = o.ShippingMethod.Carrier
	m.Subtotal = o.Subtotal.Amount()
	m.ShippingTotal = o.ShippingTotal.Amount()
	m.Total = o.Total.Amount()
	m.RefundedTotal = o.RefundedTotal.Amount()
	m.Status = o.Status
	m.PaymentStatus = o.PaymentStatus
	m.FulfillmentStatus = o.FulfillmentStatus
	m.PaymentIntentID = o.PaymentIntentID
	m.CanceledAt = o.CanceledAt
	m.Items = make([]OrderLineItemModel, 0, len(o.Items))
	for i, li := range o.Items {
		m.Items = append(m.Items, OrderLineItemModel{
			ID:               li.ID,
			OrderID:          o.ID,
			Position:         i,
			VariantID:        li.VariantID,
			ProductTitle:     li.ProductTitle,
			VariantTitle:     li.VariantTitle,
			SKU:              li.SKU,
			Thumbnail:        li.Thumbnail,
			UnitPrice:        li.UnitPrice.Amount(),
			Quantity:         li.Quantity,
			ReturnedQuantity: li.ReturnedQuantity,
			WeightGrams:      li.WeightGrams,
		})
	}
}
