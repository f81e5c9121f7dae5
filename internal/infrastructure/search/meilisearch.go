package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/meilisearch/meilisearch-go"
	"github.com/storefront/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// MeiliIndex stores product documents in a MeiliSearch index
type MeiliIndex struct {
	client meilisearch.ServiceManager
	index  meilisearch.IndexManager
	uid    string
	logger *zap.Logger
}

// NewMeiliIndex connects to MeiliSearch
func NewMeiliIndex(cfg config.SearchConfig, logger *zap.Logger) (*MeiliIndex, error) {
	if cfg.Host == "" {
		return nil, errors.New("meilisearch: host is required")
	}
	if cfg.IndexName == "" {
		return nil, errors.New("meilisearch: index name is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	client := meilisearch.New(cfg.Host,
		meilisearch.WithAPIKey(cfg.APIKey),
		meilisearch.WithCustomClient(&http.Client{Timeout: timeout}),
	)
	return &MeiliIndex{
		client: client,
		index:  client.Index(cfg.IndexName),
		uid:    cfg.IndexName,
		logger: logger,
	}, nil
}

// NewIndex returns a MeiliSearch index when search is enabled and a no-op index otherwise
func NewIndex(cfg config.SearchConfig, logger *zap.Logger) (Index, error) {
	if !cfg.Enabled {
		logger.Info("Product search disabled, using database fallback")
		return NoopIndex{}, nil
	}
	return NewMeiliIndex(cfg, logger)
}

func (m *MeiliIndex) Enabled() bool { return true }

// EnsureSettings creates the index and applies the attribute settings
func (m *MeiliIndex) EnsureSettings(ctx context.Context) error {
	if _, err := m.client.CreateIndexWithContext(ctx, &meilisearch.IndexConfig{Uid: m.uid, PrimaryKey: "id"}); err != nil {
		return fmt.Errorf("meilisearch: failed to create index %s: %w", m.uid, err)
	}
	_, err := m.index.UpdateSettingsWithContext(ctx, &meilisearch.Settings{
		SearchableAttributes: searchableAttributes,
		FilterableAttributes: filterableAttributes,
		SortableAttributes:   sortableAttributes,
		DisplayedAttributes:  DocumentAttributes,
	})
	if err != nil {
		return fmt.Errorf("meilisearch: failed to update settings: %w", err)
	}
	m.logger.Info("MeiliSearch index settings applied", zap.String("index", m.uid))
	return nil
}

// Upsert adds or replaces documents
func (m *MeiliIndex) Upsert(ctx context.Context, docs ...ProductDocument) error {
	if len(docs) == 0 {
		return nil
	}
	task, err := m.index.AddDocumentsWithContext(ctx, docs, "id")
	if err != nil {
		return fmt.Errorf("meilisearch: failed to index %d documents: %w", len(docs), err)
	}
	m.logger.Debug("Queued product documents",
		zap.Int("count", len(docs)),
		zap.Int64("task_uid", task.TaskUID))
	return nil
}

// Delete removes documents by id
func (m *MeiliIndex) Delete(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := m.index.DeleteDocumentsWithContext(ctx, ids); err != nil {
		return fmt.Errorf("meilisearch: failed to delete documents: %w", err)
	}
	return nil
}

// Search runs a query restricted to the document attribute set
func (m *MeiliIndex) Search(ctx context.Context, query string, limit, offset int) (*Result, error) {
	raw, err := m.index.SearchRawWithContext(ctx, query, &meilisearch.SearchRequest{
		Limit:                int64(limit),
		Offset:               int64(offset),
		AttributesToRetrieve: DocumentAttributes,
	})
	if err != nil {
		return nil, fmt.Errorf("meilisearch: search failed: %w", err)
	}
	var resp struct {
		Hits               []ProductDocument `json:"hits"`
		EstimatedTotalHits int64             `json:"estimatedTotalHits"`
	}
	if err := json.Unmarshal(*raw, &resp); err != nil {
		return nil, fmt.Errorf("meilisearch: failed to decode hits: %w", err)
	}
	if resp.Hits == nil {
		resp.Hits = []ProductDocument{}
	}
	return &Result{
		Hits:               resp.Hits,
		Query:              query,
		Limit:              limit,
		Offset:             offset,
		EstimatedTotalHits: resp.EstimatedTotalHits,
	}, nil
}
