package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func reindexCmd(logLevel *string) *cobra.Command {
	return &cobra.Command{
		Use:   "reindex",
		Short: "Rebuild the product search index from the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context(), *logLevel)
			if err != nil {
				return err
			}
			defer a.Close()

			result, err := a.search.ReindexAll(cmd.Context())
			if err != nil {
				return err
			}
			a.log.Info("Search index rebuilt",
				zap.Int("indexed", result.Indexed),
				zap.Int("batches", result.Batches))
			return nil
		},
	}
}
