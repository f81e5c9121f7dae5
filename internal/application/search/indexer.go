// Package search keeps the product search index in step with the catalog
// and answers store search queries.
package search

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/infrastructure/search"
	"go.uber.org/zap"
)

// DocumentFromProduct builds the index document for a product
func DocumentFromProduct(p *catalog.Product) search.ProductDocument {
	doc := search.ProductDocument{
		ID:          p.ID.String(),
		Title:       p.Title,
		Subtitle:    p.Subtitle,
		Description: p.Description,
		Handle:      p.Handle,
		Thumbnail:   p.Thumbnail,
		VariantSKU:  p.SKUs(),
	}
	if price, ok := p.MinPrice(); ok {
		doc.MinPrice = price.Amount().InexactFloat64()
		doc.CurrencyCode = string(price.Currency())
	}
	return doc
}

// ProductIndexer mirrors product events into the search index.
// Published products are upserted, everything else is removed.
type ProductIndexer struct {
	productRepo catalog.ProductRepository
	index       search.Index
	logger      *zap.Logger
}

// NewProductIndexer creates a new ProductIndexer
func NewProductIndexer(productRepo catalog.ProductRepository, index search.Index, log *zap.Logger) *ProductIndexer {
	if log == nil {
		log = zap.NewNop()
	}
	return &ProductIndexer{
		productRepo: productRepo,
		index:       index,
		logger:      log,
	}
}

// EventTypes returns the product events the indexer listens to
func (h *ProductIndexer) EventTypes() []string {
	return []string{
		catalog.EventTypeProductCreated,
		catalog.EventTypeProductUpdated,
		catalog.EventTypeProductDeleted,
	}
}

// Handle syncs the product behind the event
func (h *ProductIndexer) Handle(ctx context.Context, event shared.DomainEvent) error {
	if !h.index.Enabled() {
		return nil
	}
	productID := event.AggregateID()

	if event.EventType() == catalog.EventTypeProductDeleted {
		return h.remove(ctx, productID)
	}

	product, err := h.productRepo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return h.remove(ctx, productID)
		}
		return err
	}
	if !product.IsPublished() {
		return h.remove(ctx, productID)
	}

	if err := h.index.Upsert(ctx, DocumentFromProduct(product)); err != nil {
		return err
	}
	logger.FromContextOr(ctx, h.logger).Debug("product indexed",
		zap.String("product_id", productID.String()),
		zap.String("event_type", event.EventType()))
	return nil
}

func (h *ProductIndexer) remove(ctx context.Context, productID uuid.UUID) error {
	return h.index.Delete(ctx, productID.String())
}

var _ shared.EventHandler = (*ProductIndexer)(nil)
