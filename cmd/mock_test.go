package cmd

import (
	"context"

	"github.com/astro-datalab/dlfelis/internal/errors"
	"github.com/astro-datalab/dlfelis/internal/storage"
	"github.com/astro-datalab/dlfelis/internal/tapschema"
)

// MockStore implements storage.Store for testing
type MockStore struct {
	schemas    []tapschema.SchemaRecord
	tables     []tapschema.TableRecord
	columns    []tapschema.ColumnRecord
	keys       []tapschema.KeyRecord
	keyColumns []tapschema.KeyColumnRecord
	history    []storage.LoadRecord
	stats      *storage.Stats
	loaded     *tapschema.Bundle
	cleared    bool
	closed     bool
}

func (m *MockStore) Initialize(_ context.Context) error {
	return nil
}

func (m *MockStore) LoadBundle(_ context.Context, bundle *tapschema.Bundle) error {
	m.loaded = bundle
	return nil
}

func (m *MockStore) GetSchema(_ context.Context, name string) (*tapschema.SchemaRecord, error) {
	for i := range m.schemas {
		if m.schemas[i].SchemaName == name {
			return &m.schemas[i], nil
		}
	}

	return nil, errors.Newf(errors.ErrTypeDatabase, "schema %s is not loaded", name)
}

func (m *MockStore) ListSchemas(_ context.Context) ([]tapschema.SchemaRecord, error) {
	return m.schemas, nil
}

func (m *MockStore) ListTables(_ context.Context, schema string) ([]tapschema.TableRecord, error) {
	var out []tapschema.TableRecord

	for _, table := range m.tables {
		if table.SchemaName == schema {
			out = append(out, table)
		}
	}

	return out, nil
}

func (m *MockStore) ListColumns(
	_ context.Context,
	schema, table string,
) ([]tapschema.ColumnRecord, error) {
	var out []tapschema.ColumnRecord

	for _, col := range m.columns {
		if col.SchemaName == schema && col.TableName == table {
			out = append(out, col)
		}
	}

	return out, nil
}

func (m *MockStore) ListKeys(_ context.Context, _ string) ([]tapschema.KeyRecord, error) {
	return m.keys, nil
}

func (m *MockStore) ListKeyColumns(
	_ context.Context,
	keyID string,
) ([]tapschema.KeyColumnRecord, error) {
	var out []tapschema.KeyColumnRecord

	for _, kc := range m.keyColumns {
		if kc.KeyID == keyID {
			out = append(out, kc)
		}
	}

	return out, nil
}

func (m *MockStore) History(_ context.Context, limit int) ([]storage.LoadRecord, error) {
	if limit > 0 && limit < len(m.history) {
		return m.history[:limit], nil
	}

	return m.history, nil
}

func (m *MockStore) GetStats(_ context.Context) (*storage.Stats, error) {
	if m.stats != nil {
		return m.stats, nil
	}

	return &storage.Stats{
		Schemas:        len(m.schemas),
		Tables:         len(m.tables),
		Columns:        len(m.columns),
		Keys:           len(m.keys),
		DatabaseSizeMB: 1.5,
	}, nil
}

func (m *MockStore) Clear(_ context.Context) error {
	m.cleared = true
	m.schemas = nil
	m.tables = nil
	m.columns = nil
	m.keys = nil
	m.keyColumns = nil
	m.history = nil

	return nil
}

func (m *MockStore) Close() error {
	m.closed = true
	return nil
}

// sizeOf builds the size pointer fixtures use for sized datatypes.
func sizeOf(n int) *int {
	return &n
}

// loadedMockStore returns a store populated with a small survey schema,
// the shape a load run leaves behind.
func loadedMockStore() *MockStore {
	return &MockStore{
		schemas: []tapschema.SchemaRecord{
			{SchemaName: "sdss_dr16", Description: "SDSS Data Release 16"},
		},
		tables: []tapschema.TableRecord{
			{
				SchemaName:  "sdss_dr16",
				TableName:   "specobj",
				TableType:   "table",
				Description: "Spectroscopic objects",
				TableIndex:  1,
			},
			{
				SchemaName:  "sdss_dr16",
				TableName:   "photoobj",
				TableType:   "table",
				Description: "Photometric objects",
				TableIndex:  2,
			},
		},
		columns: []tapschema.ColumnRecord{
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
				Datatype: "varchar", Size: sizeOf(32), ColumnIndex: 3,
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
		keys: []tapschema.KeyRecord{
			{
				KeyID:     "sdss_dr16_specobj_pkey",
				FromTable: "specobj", TargetTable: "specobj",
			},
			{
				KeyID:     "fk1",
				FromTable: "specobj", TargetTable: "photoobj",
				Description: "Best photometric match",
			},
			{
				KeyID:     "sdss_dr16_photoobj_pkey",
				FromTable: "photoobj", TargetTable: "photoobj",
			},
		},
		keyColumns: []tapschema.KeyColumnRecord{
			{KeyID: "sdss_dr16_specobj_pkey", FromColumn: "specobjid", TargetColumn: "specobjid", Ordinal: 1},
			{KeyID: "fk1", FromColumn: "bestobjid", TargetColumn: "objid", Ordinal: 1},
			{KeyID: "sdss_dr16_photoobj_pkey", FromColumn: "objid", TargetColumn: "objid", Ordinal: 1},
		},
	}
}
