// Package storage persists converted TAP_SCHEMA bundles in an embedded
// DuckDB database, keeping a local queryable mirror of the metadata along
// with a history of load runs.
package storage

import (
	"context"
	"time"

	"github.com/astro-datalab/dlfelis/internal/tapschema"
)

// Store defines the interface for TAP_SCHEMA database operations
type Store interface {
	Initialize(ctx context.Context) error
	LoadBundle(ctx context.Context, bundle *tapschema.Bundle) error
	GetSchema(ctx context.Context, name string) (*tapschema.SchemaRecord, error)
	ListSchemas(ctx context.Context) ([]tapschema.SchemaRecord, error)
	ListTables(ctx context.Context, schema string) ([]tapschema.TableRecord, error)
	ListColumns(ctx context.Context, schema, table string) ([]tapschema.ColumnRecord, error)
	ListKeys(ctx context.Context, schema string) ([]tapschema.KeyRecord, error)
	ListKeyColumns(ctx context.Context, keyID string) ([]tapschema.KeyColumnRecord, error)
	History(ctx context.Context, limit int) ([]LoadRecord, error)
	GetStats(ctx context.Context) (*Stats, error)
	Clear(ctx context.Context) error
	Close() error
}

// LoadRecord is one row of the load history: which schema was loaded,
// when, and how much of it.
type LoadRecord struct {
	ID         string    `json:"id"`
	SchemaName string    `json:"schema_name"`
	Tables     int       `json:"tables"`
	Columns    int       `json:"columns"`
	Keys       int       `json:"keys"`
	LoadedAt   time.Time `json:"loaded_at"`
}

// Stats summarizes the store contents
type Stats struct {
	Schemas        int       `json:"schemas"`
	Tables         int       `json:"tables"`
	Columns        int       `json:"columns"`
	Keys           int       `json:"keys"`
	LastLoadTime   time.Time `json:"last_load_time"`
	DatabaseSizeMB float64   `json:"database_size_mb"`
}
