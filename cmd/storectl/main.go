// Command storectl runs maintenance tasks against the storefront database:
// seeding the catalog and rebuilding the search index.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	catalogapp "github.com/storefront/backend/internal/application/catalog"
	searchapp "github.com/storefront/backend/internal/application/search"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/infrastructure/persistence"
	"github.com/storefront/backend/internal/infrastructure/search"
	"go.uber.org/zap"
)

var version = "dev"

func main() {
	var logLevel string

	rootCmd := &cobra.Command{
		Use:           "storectl",
		Short:         "Storefront maintenance commands",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(seedCmd(&logLevel))
	rootCmd.AddCommand(reindexCmd(&logLevel))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app holds the services a command needs
type app struct {
	log      *zap.Logger
	db       *persistence.Database
	products *catalogapp.ProductService
	search   *searchapp.Service
}

func newApp(ctx context.Context, logLevel string) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	log, err := logger.New(&logger.Config{
		Level:      logLevel,
		Format:     "console",
		Output:     "stderr",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		return nil, fmt.Errorf("initialize logger: %w", err)
	}

	currency, err := valueobject.ParseCurrency(cfg.Store.Currency)
	if err != nil {
		return nil, fmt.Errorf("store currency: %w", err)
	}

	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, logger.NewGormLogger(log, logger.MapGormLogLevel("warn")))
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := db.Ping(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	index, err := search.NewIndex(cfg.Search, log)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("search index: %w", err)
	}

	productRepo := persistence.NewGormProductRepository(db.DB)
	return &app{
		log:      log,
		db:       db,
		products: catalogapp.NewProductService(productRepo, nil, currency, log),
		search: searchapp.NewService(productRepo, index, log,
			searchapp.WithBatchSize(cfg.Search.ReindexBatchSize),
			searchapp.WithConcurrency(cfg.Search.ReindexConcurrency),
		),
	}, nil
}

func (a *app) Close() {
	if err := a.db.Close(); err != nil {
		a.log.Error("Error closing database", zap.Error(err))
	}
	_ = a.log.Sync()
}
