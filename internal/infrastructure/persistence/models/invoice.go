package models

import (
	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/invoice"
)

// InvoiceConfigModel stores the single invoice config row
type InvoiceConfigModel struct {
	AggregateModel
	CompanyName    string `gorm:"type:varchar(200)"`
	CompanyAddress string `gorm:"type:varchar(500)"`
	CompanyPhone   string `gorm:"type:varchar(50)"`
	CompanyEmail   string `gorm:"type:varchar(200)"`
	CompanyLogo    string `gorm:"type:varchar(1000)"`
	VATNumber      string `gorm:"column:vat_number;type:varchar(50)"`
	Notes          string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (InvoiceConfigModel) TableName() string {
	return "invoice_configs"
}

// ToDomain converts the persistence model to a domain invoice Config
func (m *InvoiceConfigModel) ToDomain() *invoice.Config {
	return &invoice.Config{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		CompanyName:       m.CompanyName,
		CompanyAddress:    m.CompanyAddress,
		CompanyPhone:      m.CompanyPhone,
		CompanyEmail:      m.CompanyEmail,
		CompanyLogo:       m.CompanyLogo,
		VATNumber:         m.VATNumber,
		Notes:             m.Notes,
	}
}

// FromDomain populates the persistence model from a domain invoice Config
func (m *InvoiceConfigModel) FromDomain(c *invoice.Config) {
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	m.CompanyName = c.CompanyName
	m.CompanyAddress = c.CompanyAddress
	m.CompanyPhone = c.CompanyPhone
	m.CompanyEmail = c.CompanyEmail
	m.CompanyLogo = c.CompanyLogo
	m.VATNumber = c.VATNumber
	m.Notes = c.Notes
}

// InvoiceModel is the persistence model for generated invoices
type InvoiceModel struct {
	AggregateModel
	DisplayID  int64          `gorm:"not null;uniqueIndex"`
	OrderID    uuid.UUID      `gorm:"type:uuid;not null;index;uniqueIndex:idx_invoices_latest_order,where:status = 'latest'"`
	Status     invoice.Status `gorm:"type:varchar(20);not null"`
	StorageKey string         `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// ToDomain converts the persistence model to a domain Invoice
func (m *InvoiceModel) ToDomain() *invoice.Invoice {
	return &invoice.Invoice{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		DisplayID:         m.DisplayID,
		OrderID:           m.OrderID,
		Status:            m.Status,
		StorageKey:        m.StorageKey,
	}
}

// FromDomain populates the persistence model from a domain Invoice
func (m *InvoiceModel) FromDomain(i *invoice.Invoice) {
	m.FromDomainAggregateRoot(i.BaseAggregateRoot)
	m.DisplayID = i.DisplayID
	m.OrderID = i.OrderID
	m.Status = i.Status
	m.StorageKey = i.StorageKey
}

// All lists every model for AutoMigrate in tests and tooling
func All() []any {
	return []any{
		&ProductModel{}, &VariantModel{},
		&CustomerModel{}, &AdminUserModel{},
		&CartModel{}, &CartLineItemModel{},
		&OrderModel{}, &OrderLineItemModel{},
		&FulfillmentModel{}, &ReturnModel{},
		&WishlistModel{}, &WishlistItemModel{},
		&SubscriptionModel{},
		&InvoiceConfigModel{}, &InvoiceModel{},
	}
}
