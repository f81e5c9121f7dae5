// Package search holds the product search index adapters.
package search

import "context"

// DocumentAttributes is the fixed attribute set returned by searches
var DocumentAttributes = []string{
	"id", "title", "subtitle", "description", "handle", "thumbnail",
	"variant_sku", "min_price", "currency_code",
}

var (
	searchableAttributes = []string{"title", "subtitle", "description", "variant_sku"}
	filterableAttributes = []string{"currency_code"}
	sortableAttributes   = []string{"min_price"}
)

// ProductDocument is the indexed shape of a published product
type ProductDocument struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Subtitle     string   `json:"subtitle,omitempty"`
	Description  string   `json:"description,omitempty"`
	Handle       string   `json:"handle"`
	Thumbnail    string   `json:"thumbnail,omitempty"`
	VariantSKU   []string `json:"variant_sku"`
	MinPrice     float64  `json:"min_price"`
	CurrencyCode string   `json:"currency_code"`
}

// Result is one page of search hits
type Result struct {
	Hits               []ProductDocument `json:"hits"`
	Query              string            `json:"query"`
	Limit              int               `json:"limit"`
	Offset             int               `json:"offset"`
	EstimatedTotalHits int64             `json:"estimated_total_hits"`
}

// Index is a product search index
type Index interface {
	EnsureSettings(ctx context.Context) error
	Upsert(ctx context.Context, docs ...ProductDocument) error
	Delete(ctx context.Context, ids ...string) error
	Search(ctx context.Context, query string, limit, offset int) (*Result, error)
	Enabled() bool
}

// NoopIndex is used when no search engine is configured
type NoopIndex struct{}

func (NoopIndex) EnsureSettings(context.Context) error { return nil }

func (NoopIndex) Upsert(context.Context, ...ProductDocument) error { return nil }

func (NoopIndex) Delete(context.Context, ...string) error { return nil }

func (NoopIndex) Enabled() bool { return false }

func (NoopIndex) Search(_ context.Context, query string, limit, offset int) (*Result, error) {
	return &Result{Hits: []ProductDocument{}, Query: query, Limit: limit, Offset: offset}, nil
}
