package storage

import (
	"time"

	"github.com/astro-datalab/dlfelis/internal/config"
	"github.com/astro-datalab/dlfelis/internal/errors"
)

// NewDuckDBStoreFromConfig creates a new DuckDB store with settings from config
func NewDuckDBStoreFromConfig(cfg *config.DatabaseConfig) (*DuckDBStore, error) {
	queryTimeout, err := time.ParseDuration(cfg.QueryTimeout)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrTypeConfig, "invalid query_timeout")
	}

	return NewDuckDBStoreWithTimeout(cfg.Path, queryTimeout)
}
