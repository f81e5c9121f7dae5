package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	catalogapp "github.com/storefront/backend/internal/application/catalog"
	csvimport "github.com/storefront/backend/internal/infrastructure/import"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// seedFile is the YAML layout accepted by "storectl seed --file"
type seedFile struct {
	Products []seedProduct `yaml:"products"`
}

type seedProduct struct {
	Title       string        `yaml:"title"`
	Handle      string        `yaml:"handle"`
	Subtitle    string        `yaml:"subtitle"`
	Description string        `yaml:"description"`
	Thumbnail   string        `yaml:"thumbnail"`
	Publish     bool          `yaml:"publish"`
	Variants    []seedVariant `yaml:"variants"`
}

type seedVariant struct {
	Title       string `yaml:"title"`
	SKU         string `yaml:"sku"`
	Price       string `yaml:"price"`
	Inventory   int    `yaml:"inventory"`
	WeightGrams int    `yaml:"weight_grams"`
}

type productCreator interface {
	Create(ctx context.Context, req catalogapp.CreateProductRequest) (*catalogapp.ProductResponse, error)
}

func seedCmd(logLevel *string) *cobra.Command {
	var (
		file    string
		fake    int
		seed    int64
		reindex bool
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load products from a YAML or CSV file, or generate fake ones",
		Example: `  storectl seed --file catalog.yaml
  storectl seed --file export.csv
  storectl seed --fake 50 --reindex`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if (file == "") == (fake <= 0) {
				return errors.New("exactly one of --file or --fake is required")
			}

			var reqs []catalogapp.CreateProductRequest
			if file != "" {
				f, err := os.Open(file)
				if err != nil {
					return err
				}
				defer f.Close()
				parse := parseSeedFile
				if strings.EqualFold(filepath.Ext(file), ".csv") {
					parse = parseSeedCSV
				}
				if reqs, err = parse(f); err != nil {
					return fmt.Errorf("%s: %w", file, err)
				}
			} else {
				reqs = fakeProducts(gofakeit.New(uint64(seed)), fake)
			}

			a, err := newApp(cmd.Context(), *logLevel)
			if err != nil {
				return err
			}
			defer a.Close()

			created, err := seedProducts(cmd.Context(), a.products, reqs, a.log)
			if err != nil {
				return err
			}
			a.log.Info("Catalog seeded", zap.Int("products", created))

			if reindex {
				result, err := a.search.ReindexAll(cmd.Context())
				if err != nil {
					return err
				}
				a.log.Info("Search index rebuilt", zap.Int("indexed", result.Indexed))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML or CSV file with products to create")
	cmd.Flags().IntVar(&fake, "fake", 0, "number of fake products to generate")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed for --fake (0 picks one)")
	cmd.Flags().BoolVar(&reindex, "reindex", false, "rebuild the search index afterwards")
	return cmd
}

func parseSeedFile(r io.Reader) ([]catalogapp.CreateProductRequest, error) {
	var sf seedFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&sf); err != nil {
		return nil, err
	}

	reqs := make([]catalogapp.CreateProductRequest, 0, len(sf.Products))
	for i, p := range sf.Products {
		if p.Title == "" {
			return nil, fmt.Errorf("product %d: title is required", i+1)
		}
		req := catalogapp.CreateProductRequest{
			Title:       p.Title,
			Handle:      p.Handle,
			Subtitle:    p.Subtitle,
			Description: p.Description,
			Thumbnail:   p.Thumbnail,
			Publish:     p.Publish,
		}
		for _, v := range p.Variants {
			price, err := decimal.NewFromString(v.Price)
			if err != nil {
				return nil, fmt.Errorf("product %q variant %q: invalid price %q", p.Title, v.SKU, v.Price)
			}
			req.Variants = append(req.Variants, catalogapp.VariantRequest{
				Title:             v.Title,
				SKU:               v.SKU,
				Price:             price,
				InventoryQuantity: v.Inventory,
				WeightGrams:       v.WeightGrams,
			})
		}
		reqs = append(reqs, req)
	}
	return reqs, nil
}

// parseSeedCSV reads the one-row-per-variant CSV layout
func parseSeedCSV(r io.Reader) ([]catalogapp.CreateProductRequest, error) {
	records, err := csvimport.ParseProducts(r)
	if err != nil {
		return nil, err
	}
	reqs := make([]catalogapp.CreateProductRequest, 0, len(records))
	for _, p := range records {
		req := catalogapp.CreateProductRequest{
			Title:       p.Title,
			Handle:      p.Handle,
			Subtitle:    p.Subtitle,
			Description: p.Description,
			Thumbnail:   p.Thumbnail,
			Publish:     p.Publish,
		}
		for _, v := range p.Variants {
			req.Variants = append(req.Variants, catalogapp.VariantRequest{
				Title:             v.Title,
				SKU:               v.SKU,
				Price:             v.Price,
				InventoryQuantity: v.Inventory,
				WeightGrams:       v.WeightGrams,
			})
		}
		reqs = append(reqs, req)
	}
	return reqs, nil
}

func fakeProducts(f *gofakeit.Faker, n int) []catalogapp.CreateProductRequest {
	reqs := make([]catalogapp.CreateProductRequest, 0, n)
	for i := 0; i < n; i++ {
		title := f.ProductName()
		prefix := strings.ToUpper(f.LetterN(3))
		variants := make([]catalogapp.VariantRequest, f.Number(1, 3))
		for j := range variants {
			variants[j] = catalogapp.VariantRequest{
				Title:             f.Color(),
				SKU:               fmt.Sprintf("%s-%04d-%d", prefix, i+1, j+1),
				Price:             decimal.NewFromFloat(f.Price(5, 250)).Round(2),
				InventoryQuantity: f.Number(0, 100),
				WeightGrams:       f.Number(100, 5000),
			}
		}
		reqs = append(reqs, catalogapp.CreateProductRequest{
			Title:       title,
			Handle:      fmt.Sprintf("%s-%d", slug(title), i+1),
			Description: f.ProductDescription(),
			Variants:    variants,
			Publish:     f.Bool(),
		})
	}
	return reqs
}

// seedProducts creates products in order and stops at the first failure
func seedProducts(ctx context.Context, products productCreator, reqs []catalogapp.CreateProductRequest, log *zap.Logger) (int, error) {
	for i, req := range reqs {
		p, err := products.Create(ctx, req)
		if err != nil {
			return i, fmt.Errorf("create %q: %w", req.Title, err)
		}
		log.Debug("Product created", zap.String("id", p.ID.String()), zap.String("handle", p.Handle))
	}
	return len(reqs), nil
}

func slug(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
