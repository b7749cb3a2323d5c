package cmd

import (
	"context"

	"github.com/astro-datalab/dlfelis/internal/config"
	"github.com/astro-datalab/dlfelis/internal/storage"
)

// initializeStorage opens the configured DuckDB store and brings its
// schema up to date. Paths in cfg are already expanded by loadConfig.
func initializeStorage(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	store, err := storage.NewDuckDBStoreFromConfig(&cfg.Database)
	if err != nil {
		return nil, err
	}

	if err := store.Initialize(ctx); err != nil {
		store.Close()
		return nil, err
	}

	return store, nil
}
