package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/astro-datalab/dlfelis/internal/errors"
	"github.com/astro-datalab/dlfelis/internal/tapschema"
)

func TestDuckDBStore(t *testing.T) {
	// Create temporary database for testing
	tempDir := t.TempDir()
	dbPath := filepath.Join(tempDir, "test.db")

	store, err := NewDuckDBStore(dbPath)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer store.Close()

	ctx := context.Background()

	// Initialize database once for all tests
	err = store.Initialize(ctx)
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}

	// Test initialization
	t.Run("Initialize", func(t *testing.T) {
		// Verify every record-set table exists
		tables := []string{
			"tap_schemas", "tap_tables", "tap_columns",
			"tap_keys", "tap_key_columns", "load_history",
		}

		for _, table := range tables {
			var count int

			err := store.db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&count)
			if err != nil {
				t.Fatalf("Failed to query %s table: %v", table, err)
			}
		}
	})

	// Create test data
	bundle := createTestBundle()

	// Test loading a bundle
	t.Run("LoadBundle", func(t *testing.T) {
		err := store.LoadBundle(ctx, bundle)
		if err != nil {
			t.Fatalf("Failed to load bundle: %v", err)
		}

		// Verify the schema record was stored
		schema, err := store.GetSchema(ctx, "sdss_dr16")
		if err != nil {
			t.Fatalf("Failed to get stored schema: %v", err)
		}

		if schema.SchemaName != "sdss_dr16" {
			t.Errorf("Expected schema name sdss_dr16, got %s", schema.SchemaName)
		}

		if schema.Description != "SDSS Data Release 16" {
			t.Errorf("Expected schema description to survive the load, got %q", schema.Description)
		}
	})

	t.Run("ListSchemas", func(t *testing.T) {
		schemas, err := store.ListSchemas(ctx)
		if err != nil {
			t.Fatalf("Failed to list schemas: %v", err)
		}

		if len(schemas) != 1 {
			t.Errorf("Expected 1 schema, got %d", len(schemas))
		}
	})

	t.Run("ListTables", func(t *testing.T) {
		tables, err := store.ListTables(ctx, "sdss_dr16")
		if err != nil {
			t.Fatalf("Failed to list tables: %v", err)
		}

		if len(tables) != 2 {
			t.Fatalf("Expected 2 tables, got %d", len(tables))
		}

		// Should be ordered by table_index
		if tables[0].TableName != "specobj" || tables[1].TableName != "photoobj" {
			t.Errorf("Tables not in table_index order: %s, %s", tables[0].TableName, tables[1].TableName)
		}
	})

	t.Run("ListColumns", func(t *testing.T) {
		columns, err := store.ListColumns(ctx, "sdss_dr16", "specobj")
		if err != nil {
			t.Fatalf("Failed to list columns: %v", err)
		}

		if len(columns) != 3 {
			t.Fatalf("Expected 3 columns, got %d", len(columns))
		}

		// Should be ordered by column_index
		if columns[0].ColumnName != "specobjid" {
			t.Errorf("Expected specobjid first, got %s", columns[0].ColumnName)
		}

		if columns[0].Size != nil {
			t.Errorf("Expected nil size for bigint column, got %d", *columns[0].Size)
		}

		if columns[2].Size == nil || *columns[2].Size != 32 {
			t.Errorf("Expected size 32 for varchar column, got %v", columns[2].Size)
		}
	})

	t.Run("ListKeys", func(t *testing.T) {
		keys, err := store.ListKeys(ctx, "sdss_dr16")
		if err != nil {
			t.Fatalf("Failed to list keys: %v", err)
		}

		if len(keys) != 3 {
			t.Fatalf("Expected 3 keys, got %d", len(keys))
		}

		// Grouped by from_table in table_index order
		if keys[0].FromTable != "specobj" || keys[1].FromTable != "specobj" {
			t.Errorf("Expected specobj keys first, got %s, %s", keys[0].FromTable, keys[1].FromTable)
		}

		if keys[2].KeyID != "sdss_dr16_photoobj_pkey" {
			t.Errorf("Expected photoobj primary key last, got %s", keys[2].KeyID)
		}
	})

	t.Run("ListKeyColumns", func(t *testing.T) {
		keyColumns, err := store.ListKeyColumns(ctx, "fk1")
		if err != nil {
			t.Fatalf("Failed to list key columns: %v", err)
		}

		if len(keyColumns) != 1 {
			t.Fatalf("Expected 1 key column, got %d", len(keyColumns))
		}

		if keyColumns[0].FromColumn != "bestobjid" || keyColumns[0].TargetColumn != "objid" {
			t.Errorf("Unexpected key column pair: %s -> %s",
				keyColumns[0].FromColumn, keyColumns[0].TargetColumn)
		}
	})

	// Test that loading the same schema again replaces its records
	t.Run("Reload", func(t *testing.T) {
		reloaded := createTestBundle()
		reloaded.Schemas[0].Description = "SDSS Data Release 16, second load"

		err := store.LoadBundle(ctx, reloaded)
		if err != nil {
			t.Fatalf("Failed to reload bundle: %v", err)
		}

		schema, err := store.GetSchema(ctx, "sdss_dr16")
		if err != nil {
			t.Fatalf("Failed to get reloaded schema: %v", err)
		}

		if schema.Description != "SDSS Data Release 16, second load" {
			t.Errorf("Expected reloaded description, got %q", schema.Description)
		}

		// No duplicated rows
		tables, err := store.ListTables(ctx, "sdss_dr16")
		if err != nil {
			t.Fatalf("Failed to list tables after reload: %v", err)
		}

		if len(tables) != 2 {
			t.Errorf("Expected 2 tables after reload, got %d", len(tables))
		}
	})

	t.Run("History", func(t *testing.T) {
		history, err := store.History(ctx, 0)
		if err != nil {
			t.Fatalf("Failed to get load history: %v", err)
		}

		if len(history) != 2 {
			t.Fatalf("Expected 2 load runs, got %d", len(history))
		}

		for _, run := range history {
			if run.SchemaName != "sdss_dr16" {
				t.Errorf("Expected schema name sdss_dr16 in history, got %s", run.SchemaName)
			}

			if run.Tables != 2 || run.Columns != 5 || run.Keys != 3 {
				t.Errorf("Unexpected history counts: %d tables, %d columns, %d keys",
					run.Tables, run.Columns, run.Keys)
			}
		}

		limited, err := store.History(ctx, 1)
		if err != nil {
			t.Fatalf("Failed to get limited history: %v", err)
		}

		if len(limited) != 1 {
			t.Errorf("Expected 1 history row with limit 1, got %d", len(limited))
		}
	})

	// Test get stats
	t.Run("GetStats", func(t *testing.T) {
		stats, err := store.GetStats(ctx)
		if err != nil {
			t.Fatalf("Failed to get stats: %v", err)
		}

		if stats.Schemas != 1 {
			t.Errorf("Expected 1 schema in stats, got %d", stats.Schemas)
		}

		if stats.Tables != 2 {
			t.Errorf("Expected 2 tables in stats, got %d", stats.Tables)
		}

		if stats.Columns != 5 {
			t.Errorf("Expected 5 columns in stats, got %d", stats.Columns)
		}

		if stats.Keys != 3 {
			t.Errorf("Expected 3 keys in stats, got %d", stats.Keys)
		}

		if stats.LastLoadTime.IsZero() {
			t.Errorf("Expected last load time in stats")
		}
	})

	// Test clear database
	t.Run("Clear", func(t *testing.T) {
		err := store.Clear(ctx)
		if err != nil {
			t.Fatalf("Failed to clear database: %v", err)
		}

		// Verify database is empty
		schemas, err := store.ListSchemas(ctx)
		if err != nil {
			t.Fatalf("Failed to list schemas after clear: %v", err)
		}

		if len(schemas) != 0 {
			t.Errorf("Expected empty database after clear, got %d schemas", len(schemas))
		}

		history, err := store.History(ctx, 0)
		if err != nil {
			t.Fatalf("Failed to get history after clear: %v", err)
		}

		if len(history) != 0 {
			t.Errorf("Expected empty history after clear, got %d rows", len(history))
		}
	})
}

func TestDuckDBStoreErrors(t *testing.T) {
	store, cleanup := NewTestDB(t)
	defer cleanup()

	ctx := context.Background()

	t.Run("GetNonexistentSchema", func(t *testing.T) {
		_, err := store.GetSchema(ctx, "no_such_schema")
		if err == nil {
			t.Fatalf("Expected error when getting schema that was never loaded")
		}

		if !errors.IsType(err, errors.ErrTypeDatabase) {
			t.Errorf("Expected database error type, got %s", errors.GetType(err))
		}
	})

	t.Run("LoadNilBundle", func(t *testing.T) {
		err := store.LoadBundle(ctx, nil)
		if err == nil {
			t.Errorf("Expected error when loading a nil bundle")
		}
	})

	t.Run("LoadEmptyBundle", func(t *testing.T) {
		err := store.LoadBundle(ctx, &tapschema.Bundle{})
		if err == nil {
			t.Errorf("Expected error when loading a bundle without a schema record")
		}
	})

	t.Run("ListForUnknownSchema", func(t *testing.T) {
		tables, err := store.ListTables(ctx, "no_such_schema")
		if err != nil {
			t.Fatalf("Listing tables of an unloaded schema should not error: %v", err)
		}

		if len(tables) != 0 {
			t.Errorf("Expected no tables for unloaded schema, got %d", len(tables))
		}
	})
}

// Helper function to create test data
func createTestBundle() *tapschema.Bundle {
	size32 := 32

	return &tapschema.Bundle{
		Schemas: []tapschema.SchemaRecord{
			{SchemaName: "sdss_dr16", Description: "SDSS Data Release 16"},
		},
		Tables: []tapschema.TableRecord{
			{
				SchemaName:  "sdss_dr16",
				TableName:   "specobj",
				TableType:   tapschema.TableTypeTable,
				Description: "Spectroscopic objects",
				TableIndex:  1,
			},
			{
				SchemaName:  "sdss_dr16",
				TableName:   "photoobj",
				TableType:   tapschema.TableTypeTable,
				Description: "Photometric objects",
				TableIndex:  2,
			},
		},
		Columns: []tapschema.ColumnRecord{
			{
				SchemaName: "sdss_dr16", TableName: "specobj", ColumnName: "specobjid",
				Datatype: "bigint", Principal: 1, Indexed: 1, ColumnIndex: 1,
			},
			{
				SchemaName: "sdss_dr16", TableName: "specobj", ColumnName: "bestobjid",
				Datatype: "bigint", ColumnIndex: 2,
			},
			{
				SchemaName: "sdss_dr16", TableName: "specobj", ColumnName: "class",
				Datatype: "varchar", Size: &size32, ColumnIndex: 3,
			},
			{
				SchemaName: "sdss_dr16", TableName: "photoobj", ColumnName: "objid",
				Datatype: "bigint", Principal: 1, Indexed: 1, ColumnIndex: 1,
			},
			{
				SchemaName: "sdss_dr16", TableName: "photoobj", ColumnName: "ra",
				Datatype: "double", Unit: "deg", UCD: "pos.eq.ra", ColumnIndex: 2,
			},
		},
		Keys: []tapschema.KeyRecord{
			{KeyID: "sdss_dr16_specobj_pkey", FromTable: "specobj", TargetTable: "specobj"},
			{
				KeyID: "fk1", FromTable: "specobj", TargetTable: "photoobj",
				Description: "Best photometric match",
			},
			{KeyID: "sdss_dr16_photoobj_pkey", FromTable: "photoobj", TargetTable: "photoobj"},
		},
		KeyColumns: []tapschema.KeyColumnRecord{
			{KeyID: "sdss_dr16_specobj_pkey", FromColumn: "specobjid", TargetColumn: "specobjid", Ordinal: 1},
			{KeyID: "fk1", FromColumn: "bestobjid", TargetColumn: "objid", Ordinal: 1},
			{KeyID: "sdss_dr16_photoobj_pkey", FromColumn: "objid", TargetColumn: "objid", Ordinal: 1},
		},
	}
}
