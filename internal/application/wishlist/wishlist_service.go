// Package wishlist manages customer wishlists and folds in the ones kept in
// browser storage while the customer was logged out.
package wishlist

import (
	"context"
	"errors"

	"github.com/google/uuid"
	catalogapp "github.com/storefront/backend/internal/application/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/wishlist"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// VariantFinder resolves variants in the catalog
type VariantFinder interface {
	FindVariant(ctx context.Context, variantID uuid.UUID) (*catalogapp.VariantSnapshot, error)
}

// WishlistService handles wishlist-related business operations
type WishlistService struct {
	repo    wishlist.WishlistRepository
	catalog VariantFinder
	logger  *zap.Logger
}

// NewWishlistService creates a new WishlistService
func NewWishlistService(repo wishlist.WishlistRepository, catalog VariantFinder, log *zap.Logger) *WishlistService {
	if log == nil {
		log = zap.NewNop()
	}
	return &WishlistService{repo: repo, catalog: catalog, logger: log}
}

// Get returns the customer's wishlist, creating it on first access
func (s *WishlistService) Get(ctx context.Context, customerID uuid.UUID) (*WishlistResponse, error) {
	w, err := s.load(ctx, customerID)
	if err != nil {
		return nil, err
	}
	return s.respond(ctx, w), nil
}

// AddItem saves a published variant
func (s *WishlistService) AddItem(ctx context.Context, customerID uuid.UUID, req AddItemRequest) (*WishlistResponse, error) {
	if _, err := s.variant(ctx, req.VariantID); err != nil {
		return nil, err
	}
	w, err := s.load(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if _, err := w.AddItem(req.VariantID); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, w); err != nil {
		return nil, err
	}
	return s.respond(ctx, w), nil
}

// RemoveItem deletes a saved item
func (s *WishlistService) RemoveItem(ctx context.Context, customerID, itemID uuid.UUID) (*WishlistResponse, error) {
	w, err := s.load(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if err := w.RemoveItem(itemID); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, w); err != nil {
		return nil, err
	}
	return s.respond(ctx, w), nil
}

// Merge back-fills the local wishlist into the server one. Server items keep
// their order; variants that no longer exist are reported as skipped.
func (s *WishlistService) Merge(ctx context.Context, customerID uuid.UUID, req MergeRequest) (*MergeResponse, error) {
	w, err := s.load(ctx, customerID)
	if err != nil {
		return nil, err
	}

	known := make(map[uuid.UUID]bool, len(req.VariantIDs))
	for _, id := range req.VariantIDs {
		if _, done := known[id]; done || id == uuid.Nil || w.Contains(id) {
			continue
		}
		_, err := s.variant(ctx, id)
		switch {
		case err == nil:
			known[id] = true
		case errors.Is(err, shared.ErrNotFound):
			known[id] = false
		default:
			return nil, err
		}
	}

	result := w.Merge(req.VariantIDs, func(id uuid.UUID) bool { return known[id] })
	if len(result.Added) > 0 {
		if err := s.repo.Save(ctx, w); err != nil {
			return nil, err
		}
	}
	logger.FromContextOr(ctx, s.logger).Info("Wishlist merged",
		zap.String("customer_id", customerID.String()),
		zap.Int("added", len(result.Added)),
		zap.Int("skipped", len(result.Skipped)))

	return &MergeResponse{
		WishlistResponse: *s.respond(ctx, w),
		Added:            result.Added,
		Skipped:          result.Skipped,
	}, nil
}

func (s *WishlistService) load(ctx context.Context, customerID uuid.UUID) (*wishlist.Wishlist, error) {
	w, err := s.repo.FindByCustomer(ctx, customerID)
	if err == nil {
		return w, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	w, err = wishlist.NewWishlist(customerID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, w); err != nil {
		return nil, err
	}
	return w, nil
}

// variant returns a published variant; unpublished ones are not found
func (s *WishlistService) variant(ctx context.Context, id uuid.UUID) (*catalogapp.VariantSnapshot, error) {
	snap, err := s.catalog.FindVariant(ctx, id)
	if err != nil {
		return nil, err
	}
	if !snap.Published {
		return nil, shared.NewDomainError("NOT_FOUND", "Variant not found")
	}
	return snap, nil
}

func (s *WishlistService) respond(ctx context.Context, w *wishlist.Wishlist) *WishlistResponse {
	variants := make(map[uuid.UUID]*catalogapp.VariantSnapshot, len(w.Items))
	for _, it := range w.Items {
		snap, err := s.catalog.FindVariant(ctx, it.VariantID)
		if err != nil {
			if !errors.Is(err, shared.ErrNotFound) {
				logger.FromContextOr(ctx, s.logger).Warn("failed to load wishlist variant",
					zap.String("variant_id", it.VariantID.String()),
					zap.Error(err))
			}
			continue
		}
		variants[it.VariantID] = snap
	}
	response := ToWishlistResponse(w, variants)
	return &response
}
