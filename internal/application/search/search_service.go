package search

import (
	"context"
	"strings"
	"sync/atomic"

	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/infrastructure/search"
	"github.com/storefront/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	defaultLimit       = 20
	maxLimit           = 100
	defaultBatchSize   = 200
	defaultConcurrency = 4
)

// SearchRequest carries store search parameters
type SearchRequest struct {
	Query  string `form:"q"`
	Limit  int    `form:"limit" binding:"min=0,max=100"`
	Offset int    `form:"offset" binding:"min=0"`
}

// ReindexResult summarizes a full reindex
type ReindexResult struct {
	Indexed int `json:"indexed"`
	Batches int `json:"batches"`
}

// Service answers store searches and rebuilds the index
type Service struct {
	productRepo catalog.ProductRepository
	index       search.Index
	metrics     *telemetry.BusinessMetrics
	batchSize   int
	concurrency int
	logger      *zap.Logger
}

// Option configures the search Service
type Option func(*Service)

// WithBatchSize sets the number of products pushed per index request
func WithBatchSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

// WithConcurrency bounds the number of batches in flight during a reindex
func WithConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithMetrics records search queries
func WithMetrics(m *telemetry.BusinessMetrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// NewService creates a new search Service
func NewService(productRepo catalog.ProductRepository, index search.Index, log *zap.Logger, opts ...Option) *Service {
	if index == nil {
		index = search.NoopIndex{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	s := &Service{
		productRepo: productRepo,
		index:       index,
		batchSize:   defaultBatchSize,
		concurrency: defaultConcurrency,
		logger:      log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Search queries the index, or the catalog table when no index is configured
func (s *Service) Search(ctx context.Context, req SearchRequest) (*search.Result, error) {
	req.Query = strings.TrimSpace(req.Query)
	if req.Limit <= 0 {
		req.Limit = defaultLimit
	}
	if req.Limit > maxLimit {
		req.Limit = maxLimit
	}
	if req.Offset < 0 {
		req.Offset = 0
	}

	if s.index.Enabled() {
		s.metrics.SearchQuery(ctx, "meilisearch")
		res, err := s.index.Search(ctx, req.Query, req.Limit, req.Offset)
		if err != nil {
			return nil, shared.NewDomainError("UPSTREAM_FAILURE", err.Error())
		}
		return res, nil
	}

	s.metrics.SearchQuery(ctx, "database")
	return s.searchDatabase(ctx, req)
}

func (s *Service) searchDatabase(ctx context.Context, req SearchRequest) (*search.Result, error) {
	// The repository pages by page number, so offsets are rounded down to a page boundary.
	filter := shared.Filter{
		Page:     req.Offset/req.Limit + 1,
		PageSize: req.Limit,
		OrderBy:  "title",
		OrderDir: "asc",
		Search:   req.Query,
		Filters:  map[string]interface{}{"status": catalog.ProductStatusPublished},
	}
	products, total, err := s.productRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	hits := make([]search.ProductDocument, 0, len(products))
	for i := range products {
		hits = append(hits, DocumentFromProduct(&products[i]))
	}
	return &search.Result{
		Hits:               hits,
		Query:              req.Query,
		Limit:              req.Limit,
		Offset:             filter.Offset(),
		EstimatedTotalHits: total,
	}, nil
}

// ReindexAll pushes every published product to the index. Pages are read
// sequentially and uploaded with a bounded number of concurrent batches.
func (s *Service) ReindexAll(ctx context.Context) (*ReindexResult, error) {
	log := logger.FromContextOr(ctx, s.logger)
	if !s.index.Enabled() {
		log.Info("search index disabled, skipping reindex")
		return &ReindexResult{}, nil
	}
	if err := s.index.EnsureSettings(ctx); err != nil {
		return nil, err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	var indexed atomic.Int64
	batches := 0
	for page := 1; ; page++ {
		if gctx.Err() != nil {
			break
		}
		products, _, err := s.productRepo.FindAll(gctx, shared.Filter{
			Page:     page,
			PageSize: s.batchSize,
			OrderBy:  "created_at",
			OrderDir: "asc",
			Filters:  map[string]interface{}{"status": catalog.ProductStatusPublished},
		})
		if err != nil {
			_ = g.Wait()
			return nil, err
		}
		if len(products) == 0 {
			break
		}

		docs := make([]search.ProductDocument, 0, len(products))
		for i := range products {
			docs = append(docs, DocumentFromProduct(&products[i]))
		}
		batches++
		g.Go(func() error {
			if err := s.index.Upsert(gctx, docs...); err != nil {
				return err
			}
			indexed.Add(int64(len(docs)))
			return nil
		})

		if len(products) < s.batchSize {
			break
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &ReindexResult{Indexed: int(indexed.Load()), Batches: batches}
	log.Info("search reindex finished",
		zap.Int("indexed", result.Indexed),
		zap.Int("batches", result.Batches))
	return result, nil
}
