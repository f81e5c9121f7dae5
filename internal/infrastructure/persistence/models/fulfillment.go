package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/fulfillment"
)

// FulfillmentModel is the persistence model for the Fulfillment aggregate
type FulfillmentModel struct {
	AggregateModel
	OrderID    uuid.UUID          `gorm:"type:uuid;not null;index"`
	ReturnID   *uuid.UUID         `gorm:"type:uuid;index"`
	ProviderID string             `gorm:"type:varchar(30);not null"`
	Data       fulfillment.Data   `gorm:"type:jsonb;serializer:json"`
	Items      []fulfillment.Item `gorm:"type:jsonb;serializer:json"`
	ShippedAt  *time.Time
	CanceledAt *time.Time `gorm:"index"`
}

// TableName returns the table name for GORM
func (FulfillmentModel) TableName() string {
	return "fulfillments"
}

// ToDomain converts the persistence model to a domain Fulfillment
func (m *FulfillmentModel) ToDomain() *fulfillment.Fulfillment {
	items := m.Items
	if items == nil {
		items = []fulfillment.Item{}
	}
	return &fulfillment.Fulfillment{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		OrderID:           m.OrderID,
		ReturnID:          m.ReturnID,
		ProviderID:        m.ProviderID,
		Data:              m.Data,
		Items:             items,
		ShippedAt:         m.ShippedAt,
		CanceledAt:        m.CanceledAt,
	}
}

// FromDomain populates the persistence model from a domain Fulfillment
func (m *FulfillmentModel) FromDomain(f *fulfillment.Fulfillment) {
	m.FromDomainAggregateRoot(f.BaseAggregateRoot)
	m.OrderID = f.OrderID
	m.ReturnID = f.ReturnID
	m.ProviderID = f.ProviderID
	m.Data = f.Data
	m.Items = f.Items
	m.ShippedAt = f.ShippedAt
	m.CanceledAt = f.CanceledAt
}
