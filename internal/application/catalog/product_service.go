package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// ProductService handles product-related business operations
type ProductService struct {
	productRepo    catalog.ProductRepository
	eventPublisher shared.EventPublisher
	currency       valueobject.Currency
	logger         *zap.Logger
}

// NewProductService creates a new ProductService
func NewProductService(
	productRepo catalog.ProductRepository,
	eventPublisher shared.EventPublisher,
	currency valueobject.Currency,
	log *zap.Logger,
) *ProductService {
	if currency == "" {
		currency = valueobject.DefaultCurrency
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &ProductService{
		productRepo:    productRepo,
		eventPublisher: eventPublisher,
		currency:       currency,
		logger:         log,
	}
}

// Create creates a new product
func (s *ProductService) Create(ctx context.Context, req CreateProductRequest) (*ProductResponse, error) {
	product, err := catalog.NewProduct(req.Title, req.Handle)
	if err != nil {
		return nil, err
	}

	exists, err := s.productRepo.ExistsByHandle(ctx, product.Handle, uuid.Nil)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Product with this handle already exists")
	}

	if req.Subtitle != "" || req.Description != "" || req.Thumbnail != "" {
		if err := product.UpdateDetails(product.Title, req.Subtitle, req.Description, req.Thumbnail); err != nil {
			return nil, err
		}
	}

	if len(req.Variants) > 0 {
		inputs, err := s.variantInputs(req.CurrencyCode, req.Variants)
		if err != nil {
			return nil, err
		}
		if err := product.SetVariants(inputs); err != nil {
			return nil, err
		}
	}

	if req.Publish {
		if err := product.Publish(); err != nil {
			return nil, err
		}
	}

	if err := s.save(ctx, product); err != nil {
		return nil, err
	}

	response := ToProductResponse(product)
	return &response, nil
}

// GetByID retrieves a product by ID
func (s *ProductService) GetByID(ctx context.Context, productID uuid.UUID) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	response := ToProductResponse(product)
	return &response, nil
}

// GetPublishedByHandle retrieves a product for the store. Drafts are reported as not found.
func (s *ProductService) GetPublishedByHandle(ctx context.Context, handle string) (*ProductResponse, error) {
	product, err := s.productRepo.FindByHandle(ctx, handle)
	if err != nil {
		return nil, err
	}
	if !product.IsPublished() {
		return nil, shared.ErrNotFound
	}

	response := ToProductResponse(product)
	return &response, nil
}

// List retrieves products with filtering and pagination.
// Store listings only ever see published products.
func (s *ProductService) List(ctx context.Context, filter ProductListFilter, storeOnly bool) ([]ProductResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "created_at"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "desc"
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
		Filters:  make(map[string]interface{}),
	}
	if storeOnly {
		domainFilter.Filters["status"] = catalog.ProductStatusPublished
	} else if filter.Status != "" {
		domainFilter.Filters["status"] = catalog.ProductStatus(filter.Status)
	}

	products, total, err := s.productRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToProductResponses(products), total, nil
}

// Update updates a product
func (s *ProductService) Update(ctx context.Context, productID uuid.UUID, req UpdateProductRequest) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product.IsDeleted() {
		return nil, shared.ErrNotFound
	}

	if req.Handle != nil && *req.Handle != product.Handle {
		exists, err := s.productRepo.ExistsByHandle(ctx, *req.Handle, product.ID)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, shared.NewDomainError("ALREADY_EXISTS", "Product with this handle already exists")
		}
		if err := product.ChangeHandle(*req.Handle); err != nil {
			return nil, err
		}
	}

	if req.Title != nil || req.Subtitle != nil || req.Description != nil || req.Thumbnail != nil {
		title, subtitle, description, thumbnail := product.Title, product.Subtitle, product.Description, product.Thumbnail
		if req.Title != nil {
			title = *req.Title
		}
		if req.Subtitle != nil {
			subtitle = *req.Subtitle
		}
		if req.Description != nil {
			description = *req.Description
		}
		if req.Thumbnail != nil {
			thumbnail = *req.Thumbnail
		}
		if err := product.UpdateDetails(title, subtitle, description, thumbnail); err != nil {
			return nil, err
		}
	}

	if req.Variants != nil {
		inputs, err := s.variantInputs(req.CurrencyCode, req.Variants)
		if err != nil {
			return nil, err
		}
		if err := product.SetVariants(inputs); err != nil {
			return nil, err
		}
	}

	if req.Status != nil {
		switch catalog.ProductStatus(*req.Status) {
		case catalog.ProductStatusPublished:
			if err := product.Publish(); err != nil {
				return nil, err
			}
		case catalog.ProductStatusDraft:
			product.Unpublish()
		}
	}

	if err := s.save(ctx, product); err != nil {
		return nil, err
	}

	response := ToProductResponse(product)
	return &response, nil
}

// Publish makes a product visible in the store
func (s *ProductService) Publish(ctx context.Context, productID uuid.UUID) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if err := product.Publish(); err != nil {
		return nil, err
	}
	if err := s.save(ctx, product); err != nil {
		return nil, err
	}

	response := ToProductResponse(product)
	return &response, nil
}

// Delete soft-deletes a product
func (s *ProductService) Delete(ctx context.Context, productID uuid.UUID) error {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return err
	}
	if err := product.Delete(); err != nil {
		return err
	}
	return s.save(ctx, product)
}

// FindVariant resolves a variant together with its product
func (s *ProductService) FindVariant(ctx context.Context, variantID uuid.UUID) (*VariantSnapshot, error) {
	product, err := s.productRepo.FindByVariantID(ctx, variantID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Variant not found")
		}
		return nil, err
	}
	variant := product.FindVariant(variantID)
	if variant == nil || product.IsDeleted() {
		return nil, shared.NewDomainError("NOT_FOUND", "Variant not found")
	}
	return &VariantSnapshot{
		ProductID:    product.ID,
		ProductTitle: product.Title,
		Thumbnail:    product.Thumbnail,
		Published:    product.IsPublished(),
		Variant:      *variant,
	}, nil
}

// ReserveInventory takes qty units of a managed variant out of stock
func (s *ProductService) ReserveInventory(ctx context.Context, variantID uuid.UUID, qty int) error {
	if qty <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	return s.productRepo.AdjustInventory(ctx, variantID, -qty)
}

// ReleaseInventory puts qty units back into stock
func (s *ProductService) ReleaseInventory(ctx context.Context, variantID uuid.UUID, qty int) error {
	if qty <= 0 {
		return nil
	}
	return s.productRepo.AdjustInventory(ctx, variantID, qty)
}

func (s *ProductService) variantInputs(currencyCode string, reqs []VariantRequest) ([]catalog.VariantInput, error) {
	currency := s.currency
	if currencyCode != "" {
		c, err := valueobject.ParseCurrency(currencyCode)
		if err != nil {
			return nil, err
		}
		currency = c
	}

	inputs := make([]catalog.VariantInput, 0, len(reqs))
	for _, r := range reqs {
		price, err := valueobject.NewMoney(r.Price, currency)
		if err != nil {
			return nil, err
		}
		manage := true
		if r.ManageInventory != nil {
			manage = *r.ManageInventory
		}
		inputs = append(inputs, catalog.VariantInput{
			ID:                r.ID,
			Title:             r.Title,
			SKU:               r.SKU,
			Price:             price,
			InventoryQuantity: r.InventoryQuantity,
			ManageInventory:   manage,
			WeightGrams:       r.WeightGrams,
		})
	}
	return inputs, nil
}

func (s *ProductService) save(ctx context.Context, product *catalog.Product) error {
	if err := s.productRepo.Save(ctx, product); err != nil {
		return err
	}
	if s.eventPublisher != nil {
		if events := product.GetDomainEvents(); len(events) > 0 {
			if err := s.eventPublisher.Publish(ctx, events...); err != nil {
				logger.FromContextOr(ctx, s.logger).Warn("failed to publish product events",
					zap.String("product_id", product.ID.String()),
					zap.Error(err))
			}
		}
	}
	product.ClearDomainEvents()
	return nil
}
