package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/catalog"
)

// ProductModel is the persistence model for the Product aggregate
type ProductModel struct {
	AggregateModel
	Handle      string                `gorm:"type:varchar(200);not null;uniqueIndex"`
	Title       string                `gorm:"type:varchar(300);not null"`
	Subtitle    string                `gorm:"type:varchar(300)"`
	Description string                `gorm:"type:text"`
	Thumbnail   string                `gorm:"type:varchar(1000)"`
	Status      catalog.ProductStatus `gorm:"type:varchar(20);not null;default:'draft';index"`
	DeletedAt   *time.Time            `gorm:"index"`
	Variants    []VariantModel        `gorm:"foreignKey:ProductID;references:ID"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// VariantModel is the persistence model for product variants
type VariantModel struct {
	ID                uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ProductID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	Title             string          `gorm:"type:varchar(200);not null"`
	SKU               string          `gorm:"column:sku;type:varchar(100);not null;uniqueIndex"`
	PriceAmount       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	CurrencyCode      string          `gorm:"type:varchar(3);not null"`
	InventoryQuantity int             `gorm:"not null;default:0"`
	ManageInventory   bool            `gorm:"not null;default:true"`
	WeightGrams       int             `gorm:"not null;default:0"`
	CreatedAt         time.Time       `gorm:"not null"`
	UpdatedAt         time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (VariantModel) TableName() string {
	return "product_variants"
}

// ToDomain converts the persistence model to a domain Product
func (m *ProductModel) ToDomain() *catalog.Product {
	p := &catalog.Product{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Handle:            m.Handle,
		Title:             m.Title,
		Subtitle:          m.Subtitle,
		Description:       m.Description,
		Thumbnail:         m.Thumbnail,
		Status:            m.Status,
		DeletedAt:         m.DeletedAt,
		Variants:          make([]catalog.Variant, 0, len(m.Variants)),
	}
	for _, v := range m.Variants {
		p.Variants = append(p.Variants, catalog.Variant{
			ID:                v.ID,
			ProductID:         v.ProductID,
			Title:             v.Title,
			SKU:               v.SKU,
			Price:             toMoney(v.PriceAmount, v.CurrencyCode),
			InventoryQuantity: v.InventoryQuantity,
			ManageInventory:   v.ManageInventory,
			WeightGrams:       v.WeightGrams,
			CreatedAt:         v.CreatedAt,
			UpdatedAt:         v.UpdatedAt,
		})
	}
	return p
}

// FromDomain populates the persistence model from a domain Product
func (m *ProductModel) FromDomain(p *catalog.Product) {
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.Handle = p.Handle
	m.Title = p.Title
	m.Subtitle = p.Subtitle
	m.Description = p.Description
	m.Thumbnail = p.Thumbnail
	m.Status = p.Status
	m.DeletedAt = p.DeletedAt
	m.Variants = make([]VariantModel, 0, len(p.Variants))
	for _, v := range p.Variants {
		m.Variants = append(m.Variants, VariantModel{
			ID:                v.ID,
			ProductID:         p.ID,
			Title:             v.Title,
			SKU:               v.SKU,
			PriceAmount:       v.Price.Amount(),
			CurrencyCode:      string(v.Price.Currency()),
			InventoryQuantity: v.InventoryQuantity,
			ManageInventory:   v.ManageInventory,
			WeightGrams:       v.WeightGrams,
			CreatedAt:         v.CreatedAt,
			UpdatedAt:         v.UpdatedAt,
		})
	}
}

// ProductModelFromDomain creates a new persistence model from a domain Product
func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{}
	m.FromDomain(p)
	return m
}
