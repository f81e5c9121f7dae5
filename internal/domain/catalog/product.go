package catalog

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
)

// ProductStatus represents the publication status of a product
type ProductStatus string

const (
	ProductStatusDraft     ProductStatus = "draft"
	ProductStatusPublished ProductStatus = "published"
)

// IsValid checks if the status is a valid ProductStatus
func (s ProductStatus) IsValid() bool {
	return s == ProductStatusDraft || s == ProductStatusPublished
}

var handlePattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// Slugify turns a title into a product handle
func Slugify(title string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(title)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case r == 'ä':
			b.WriteString("ae")
			dash = false
		case r == 'ö':
			b.WriteString("oe")
			dash = false
		case r == 'ü':
			b.WriteString("ue")
			dash = false
		case r == 'ß':
			b.WriteString("ss")
			dash = false
		default:
			if !dash && b.Len() > 0 {
				b.WriteByte('-')
				dash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// Variant is a purchasable version of a product (size, color)
type Variant struct {
	ID                uuid.UUID
	ProductID         uuid.UUID
	Title             string
	SKU               string
	Price             valueobject.Money
	InventoryQuantity int
	ManageInventory   bool
	WeightGrams       int
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// CanFulfill reports whether the variant can cover the requested quantity
func (v *Variant) CanFulfill(quantity int) bool {
	if !v.ManageInventory {
		return true
	}
	return v.InventoryQuantity >= quantity
}

// Product is the catalog aggregate root
type Product struct {
	shared.BaseAggregateRoot
	Handle      string
	Title       string
	Subtitle    string
	Description string
	Thumbnail   string
	Status      ProductStatus
	Variants    []Variant
	DeletedAt   *time.Time
}

// VariantInput carries the fields needed to create or replace a variant
type VariantInput struct {
	ID                *uuid.UUID
	Title             string
	SKU               string
	Price             valueobject.Money
	InventoryQuantity int
	ManageInventory   bool
	WeightGrams       int
}

// NewProduct creates a draft product. An empty handle is derived from the title.
func NewProduct(title, handle string) (*Product, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, shared.NewDomainError("INVALID_TITLE", "Product title cannot be empty")
	}
	if handle == "" {
		handle = Slugify(title)
	}
	if !handlePattern.MatchString(handle) {
		return nil, shared.NewDomainError("INVALID_HANDLE", "Product handle must be a lowercase slug")
	}

	p := &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Handle:            handle,
		Title:             title,
		Status:            ProductStatusDraft,
		Variants:          make([]Variant, 0),
	}
	p.AddDomainEvent(NewProductCreatedEvent(p))
	return p, nil
}

// UpdateDetails updates the descriptive fields
func (p *Product) UpdateDetails(title, subtitle, description, thumbnail string) error {
	if p.IsDeleted() {
		return shared.NewDomainError("INVALID_STATE", "Cannot update a deleted product")
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return shared.NewDomainError("INVALID_TITLE", "Product title cannot be empty")
	}
	p.Title = title
	p.Subtitle = strings.TrimSpace(subtitle)
	p.Description = strings.TrimSpace(description)
	p.Thumbnail = strings.TrimSpace(thumbnail)
	p.Touch()
	p.IncrementVersion()
	p.AddDomainEvent(NewProductUpdatedEvent(p))
	return nil
}

// ChangeHandle sets a new URL handle. Uniqueness is checked by the caller.
func (p *Product) ChangeHandle(handle string) error {
	if p.IsDeleted() {
		return shared.NewDomainError("INVALID_STATE", "Cannot update a deleted product")
	}
	if !handlePattern.MatchString(handle) {
		return shared.NewDomainError("INVALID_HANDLE", "Product handle must be a lowercase slug")
	}
	if handle == p.Handle {
		return nil
	}
	p.Handle = handle
	p.Touch()
	p.IncrementVersion()
	p.AddDomainEvent(NewProductUpdatedEvent(p))
	return nil
}

// SetVariants replaces the variant list. Existing variants keep their IDs when referenced.
func (p *Product) SetVariants(inputs []VariantInput) error {
	if p.IsDeleted() {
		return shared.NewDomainError("INVALID_STATE", "Cannot update a deleted product")
	}
	seen := make(map[string]bool, len(inputs))
	var currency valueobject.Currency
	variants := make([]Variant, 0, len(inputs))
	now := time.Now()

	for _, in := range inputs {
		sku := strings.TrimSpace(in.SKU)
		if sku == "" {
			return shared.NewDomainError("INVALID_SKU", "Variant SKU cannot be empty")
		}
		if seen[sku] {
			return shared.NewDomainError("DUPLICATE_SKU", "Variant SKU must be unique: "+sku)
		}
		seen[sku] = true
		if in.Price.IsNegative() {
			return shared.NewDomainError("INVALID_PRICE", "Variant price cannot be negative")
		}
		if currency == "" {
			currency = in.Price.Currency()
		} else if in.Price.Currency() != currency {
			return shared.NewDomainError("INVALID_PRICE", "All variants must share one currency")
		}
		if in.InventoryQuantity < 0 {
			return shared.NewDomainError("INVALID_QUANTITY", "Inventory quantity cannot be negative")
		}

		v := Variant{
			ID:                uuid.New(),
			ProductID:         p.ID,
			Title:             strings.TrimSpace(in.Title),
			SKU:               sku,
			Price:             in.Price,
			InventoryQuantity: in.InventoryQuantity,
			ManageInventory:   in.ManageInventory,
			WeightGrams:       in.WeightGrams,
			CreatedAt:         now,
			UpdatedAt:         now,
		}
		if in.ID != nil {
			if existing := p.FindVariant(*in.ID); existing != nil {
				v.ID = existing.ID
				v.CreatedAt = existing.CreatedAt
			}
		}
		if v.Title == "" {
			v.Title = "Default"
		}
		variants = append(variants, v)
	}

	p.Variants = variants
	p.Touch()
	p.IncrementVersion()
	p.AddDomainEvent(NewProductUpdatedEvent(p))
	return nil
}

// Publish makes the product visible in the store
func (p *Product) Publish() error {
	if p.IsDeleted() {
		return shared.NewDomainError("INVALID_STATE", "Cannot publish a deleted product")
	}
	if p.Status == ProductStatusPublished {
		return nil
	}
	if len(p.Variants) == 0 {
		return shared.NewDomainError("INVALID_STATE", "Cannot publish a product without variants")
	}
	p.Status = ProductStatusPublished
	p.Touch()
	p.IncrementVersion()
	p.AddDomainEvent(NewProductUpdatedEvent(p))
	return nil
}

// Unpublish moves the product back to draft
func (p *Product) Unpublish() {
	if p.Status == ProductStatusDraft {
		return
	}
	p.Status = ProductStatusDraft
	p.Touch()
	p.IncrementVersion()
	p.AddDomainEvent(NewProductUpdatedEvent(p))
}

// Delete soft-deletes the product
func (p *Product) Delete() error {
	if p.IsDeleted() {
		return shared.NewDomainError("INVALID_STATE", "Product is already deleted")
	}
	now := time.Now()
	p.DeletedAt = &now
	p.Touch()
	p.IncrementVersion()
	p.AddDomainEvent(NewProductDeletedEvent(p))
	return nil
}

// IsDeleted reports whether the product was soft-deleted
func (p *Product) IsDeleted() bool {
	return p.DeletedAt != nil
}

// IsPublished reports whether the store may show the product
func (p *Product) IsPublished() bool {
	return p.Status == ProductStatusPublished && !p.IsDeleted()
}

// FindVariant returns the variant with the given ID, or nil
func (p *Product) FindVariant(id uuid.UUID) *Variant {
	for i := range p.Variants {
		if p.Variants[i].ID == id {
			return &p.Variants[i]
		}
	}
	return nil
}

// MinPrice returns the cheapest variant price, or false when there are no variants
func (p *Product) MinPrice() (valueobject.Money, bool) {
	if len(p.Variants) == 0 {
		return valueobject.Money{}, false
	}
	lowest := p.Variants[0].Price
	for _, v := range p.Variants[1:] {
		if gt, err := lowest.GreaterThan(v.Price); err == nil && gt {
			lowest = v.Price
		}
	}
	return lowest, true
}

// SKUs returns all variant SKUs
func (p *Product) SKUs() []string {
	skus := make([]string, 0, len(p.Variants))
	for _, v := range p.Variants {
		skus = append(skus, v.SKU)
	}
	return skus
}
