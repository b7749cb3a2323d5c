package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/astro-datalab/dlfelis/internal/tapschema"
)

// NewTestDB creates a temporary test database with auto-cleanup.
// Returns the store and a cleanup function that should be deferred.
func NewTestDB(t *testing.T) (*DuckDBStore, func()) {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "test_db_*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}

	dbPath := filepath.Join(tempDir, "test.db")
	store, err := NewDuckDBStore(dbPath)
	if err != nil {
		os.RemoveAll(tempDir)
		t.Fatalf("failed to create test store: %v", err)
	}

	ctx := context.Background()
	if err := store.Initialize(ctx); err != nil {
		store.Close()
		os.RemoveAll(tempDir)
		t.Fatalf("failed to initialize test store: %v", err)
	}

	cleanup := func() {
		if err := store.Close(); err != nil {
			t.Errorf("failed to close test store: %v", err)
		}
		if err := os.RemoveAll(tempDir); err != nil {
			t.Errorf("failed to remove temp dir: %v", err)
		}
	}

	return store, cleanup
}

// NewTestDBWithBundle creates a temporary test database pre-loaded with a bundle.
// Returns the store and a cleanup function that should be deferred.
func NewTestDBWithBundle(t *testing.T, bundle *tapschema.Bundle) (*DuckDBStore, func()) {
	t.Helper()

	store, cleanup := NewTestDB(t)

	ctx := context.Background()
	if err := store.LoadBundle(ctx, bundle); err != nil {
		cleanup()
		t.Fatalf("failed to load test bundle: %v", err)
	}

	return store, cleanup
}
