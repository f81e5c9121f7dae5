package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
)

// CartModel is the persistence model for the Cart aggregate
type CartModel struct {
	AggregateModel
	Email           string               `gorm:"type:varchar(200)"`
	CustomerID      *uuid.UUID           `gorm:"type:uuid;index"`
	CurrencyCode    string               `gorm:"type:varchar(3);not null"`
	ShippingAddress *valueobject.Address `gorm:"type:jsonb;serializer:json"`

	ShippingOptionID string          `gorm:"type:varchar(100)"`
	ShippingName     string          `gorm:"type:varchar(200)"`
	ShippingCarrier  string          `gorm:"type:varchar(100)"`
	ShippingAmount   decimal.Decimal `gorm:"type:decimal(18,4)"`

	PaymentProvider     string          `gorm:"type:varchar(30)"`
	PaymentIntentID     string          `gorm:"type:varchar(255);index"`
	PaymentClientSecret string          `gorm:"type:varchar(255)"`
	PaymentStatus       string          `gorm:"type:varchar(20)"`
	PaymentAmount       decimal.Decimal `gorm:"type:decimal(18,4)"`
	PaymentLastError    string          `gorm:"type:text"`

	CompletedAt *time.Time
	Items       []CartLineItemModel `gorm:"foreignKey:CartID;references:ID"`
}

// TableName returns the table name for GORM
func (CartModel) TableName() string {
	return "carts"
}

// CartLineItemModel is the persistence model for cart lines
type CartLineItemModel struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey"`
	CartID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	Position     int             `gorm:"not null;default:0"`
	VariantID    uuid.UUID       `gorm:"type:uuid;not null"`
	ProductID    uuid.UUID       `gorm:"type:uuid;not null"`
	ProductTitle string          `gorm:"type:varchar(300)"`
	VariantTitle string          `gorm:"type:varchar(200)"`
	SKU          string          `gorm:"column:sku;type:varchar(100)"`
	Thumbnail    string          `gorm:"type:varchar(1000)"`
	UnitPrice    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Quantity     int             `gorm:"not null"`
	WeightGrams  int             `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (CartLineItemModel) TableName() string {
	return "cart_line_items"
}

// ToDomain converts the persistence model to a domain Cart
func (m *CartModel) ToDomain() *cart.Cart {
	c := &cart.Cart{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Email:             m.Email,
		CustomerID:        m.CustomerID,
		CurrencyCode:      valueobject.Currency(m.CurrencyCode),
		ShippingAddress:   m.ShippingAddress,
		CompletedAt:       m.CompletedAt,
		Items:             make([]cart.LineItem, 0, len(m.Items)),
	}
	if m.ShippingOptionID != "" {
		c.ShippingMethod = &cart.ShippingMethod{
			ShippingOptionID: m.ShippingOptionID,
			Name:             m.ShippingName,
			Carrier:          m.ShippingCarrier,
			Price:            toMoney(m.ShippingAmount, m.CurrencyCode),
		}
	}
	if m.PaymentProvider != "" {
		c.PaymentSession = &cart.PaymentSession{
			Provider:        m.PaymentProvider,
			PaymentIntentID: m.PaymentIntentID,
			ClientSecret:    m.PaymentClientSecret,
			Status:          cart.PaymentSessionStatus(m.PaymentStatus),
			Amount:          toMoney(m.PaymentAmount, m.CurrencyCode),
			LastError:       m.PaymentLastError,
		}
	}
	for _, li := range m.Items {
		c.Items = append(c.Items, cart.LineItem{
			ID:           li.ID,
			VariantID:    li.VariantID,
			ProductID:    li.ProductID,
			ProductTitle: li.ProductTitle,
			VariantTitle: li.VariantTitle,
			SKU:          li.SKU,
			Thumbnail:    li.Thumbnail,
			UnitPrice:    toMoney(li.UnitPrice, m.CurrencyCode),
			Quantity:     li.Quantity,
			WeightGrams:  li.WeightGrams,
		})
	}
	return c
}

// FromDomain populates the persistence model from a domain Cart
func (m *CartModel) FromDomain(c *cart.Cart) {
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	m.Email = c.Email
	m.CustomerID = c.CustomerID
	m.CurrencyCode = string(c.CurrencyCode)
	m.ShippingAddress = c.ShippingAddress
	m.CompletedAt = c.CompletedAt

	m.ShippingOptionID, m.ShippingName, m.ShippingCarrier, m.ShippingAmount = "", "", "", decimal.Zero
	if sm := c.ShippingMethod; sm != nil {
		m.ShippingOptionID = sm.ShippingOptionID
		m.ShippingName = sm.Name
		m.ShippingCarrier = sm.Carrier
		m.ShippingAmount = sm.Price.Amount()
	}

	m.PaymentProvider, m.PaymentIntentID, m.PaymentClientSecret, m.PaymentStatus, m.PaymentLastError = "", "", "", "", ""
	m.PaymentAmount = decimal.Zero
	if ps := c.PaymentSession; ps != nil {
		m.PaymentProvider = ps.Provider
		m.PaymentIntentID = ps.PaymentIntentID
		m.PaymentClientSecret = ps.ClientSecret
		m.PaymentStatus = string(ps.Status)
		m.PaymentAmount = ps.Amount.Amount()
		m.PaymentLastError = ps.LastError
	}

	m.Items = make([]CartLineItemModel, 0, len(c.Items))
	for i, li := range c.Items {
		m.Items = append(m.Items, CartLineItemModel{
			ID:           li.ID,
			CartID:       c.ID,
			Position:     i,
			VariantID:    li.VariantID,
			ProductID:    li.ProductID,
			ProductTitle: li.ProductTitle,
			VariantTitle: li.VariantTitle,
			SKU:          li.SKU,
			Thumbnail:    li.Thumbnail,
			UnitPrice:    li.UnitPrice.Amount(),
			Quantity:     li.Quantity,
			WeightGrams:  li.WeightGrams,
		})
	}
}
