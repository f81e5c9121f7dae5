package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/returns"
)

// ReturnModel is the persistence model for the Return aggregate
type ReturnModel struct {
	AggregateModel
	OrderID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	Items        []returns.Item  `gorm:"type:jsonb;serializer:json"`
	Status       returns.Status  `gorm:"type:varchar(20);not null;index"`
	RefundAmount decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	CurrencyCode string          `gorm:"type:varchar(3);not null"`
	Note         string          `gorm:"type:text"`
	ReceivedAt   *time.Time
	CanceledAt   *time.Time
}

// TableName returns the table name for GORM
func (ReturnModel) TableName() string {
	return "returns"
}

// ToDomain converts the persistence model to a domain Return
func (m *ReturnModel) ToDomain() *returns.Return {
	items := m.Items
	if items == nil {
		items = []returns.Item{}
	}
	return &returns.Return{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		OrderID:           m.OrderID,
		Items:             items,
		Status:            m.Status,
		RefundAmount:      toMoney(m.RefundAmount, m.CurrencyCode),
		Note:              m.Note,
		ReceivedAt:        m.ReceivedAt,
		CanceledAt:        m.CanceledAt,
	}
}

// FromDomain populates the persistence model from a domain Return
func (m *ReturnModel) FromDomain(r *returns.Return) {
	m.FromDomainAggregateRoot(r.BaseAggregateRoot)
	m.OrderID = r.OrderID
	m.Items = r.Items
	m.Status = r.Status
	m.RefundAmount = r.RefundAmount.Amount()
	m.CurrencyCode = string(r.RefundAmount.Currency())
	m.Note = r.Note
	m.ReceivedAt = r.ReceivedAt
	m.CanceledAt = r.CanceledAt
}
