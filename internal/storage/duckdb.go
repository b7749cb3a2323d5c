package storage

import (
	"context"
	"database/sql"
	stderrors "errors"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/marcboeker/go-duckdb" // DuckDB driver

	"github.com/astro-datalab/dlfelis/internal/errors"
	"github.com/astro-datalab/dlfelis/internal/tapschema"
)

// DuckDBStore implements the Store interface using DuckDB
type DuckDBStore struct {
	db           *sql.DB
	path         string
	queryTimeout time.Duration
}

// NewDuckDBStore creates a new DuckDB store instance with connection pooling
func NewDuckDBStore(dbPath string) (*DuckDBStore, error) {
	// Ensure the directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrap(err, errors.ErrTypeDatabase, "failed to create database directory").WithPath(dir)
	}

	db, err := sql.Open("duckdb", dbPath)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrTypeDatabase, "failed to open database").WithPath(dbPath)
	}

	// Configure connection pool for optimal performance
	db.SetMaxOpenConns(10)                  // Maximum number of open connections
	db.SetMaxIdleConns(5)                   // Maximum number of idle connections
	db.SetConnMaxLifetime(30 * time.Minute) // Maximum lifetime of a connection
	db.SetConnMaxIdleTime(5 * time.Minute)  // Maximum idle time for a connection

	// Test the connection
	if err := db.Ping(); err != nil {
		return nil, errors.Wrap(err, errors.ErrTypeDatabase, "failed to ping database").WithPath(dbPath)
	}

	store := &DuckDBStore{
		db:   db,
		path: dbPath,
	}

	return store, nil
}

// NewDuckDBStoreWithTimeout creates a store whose read queries are bounded
// by queryTimeout. A timeout of zero disables the bound.
func NewDuckDBStoreWithTimeout(dbPath string, queryTimeout time.Duration) (*DuckDBStore, error) {
	store, err := NewDuckDBStore(dbPath)
	if err != nil {
		return nil, err
	}

	store.queryTimeout = queryTimeout

	return store, nil
}

// withTimeout derives a context bounded by the store's query timeout
func (s *DuckDBStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.queryTimeout <= 0 {
		return ctx, func() {}
	}

	return context.WithTimeout(ctx, s.queryTimeout)
}

// Initialize creates the database schema using migrations
func (s *DuckDBStore) Initialize(ctx context.Context) error {
	migrationManager := NewMigrationManager(s.db)

	if err := migrationManager.MigrateUp(ctx); err != nil {
		return errors.Wrap(err, errors.ErrTypeDatabase, "failed to migrate database schema")
	}

	return nil
}

// LoadBundle replaces the stored records for the bundle's schema with the
// bundle's contents and appends a row to the load history. The delete and
// every insert run in one transaction, so a failed load leaves the
// previously stored records untouched.
func (s *DuckDBStore) LoadBundle(ctx context.Context, bundle *tapschema.Bundle) error {
	if bundle == nil || len(bundle.Schemas) == 0 {
		return errors.New(errors.ErrTypeDatabase, "cannot load an empty bundle")
	}

	schemaName := bundle.Schemas[0].SchemaName

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, errors.ErrTypeDatabase, "failed to begin transaction")
	}

	defer func() { _ = tx.Rollback() }()

	if err := deleteSchemaRows(ctx, tx, schemaName); err != nil {
		return err
	}

	for _, rec := range bundle.Schemas {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO tap_schemas (schema_name, description, utype) VALUES (?, ?, ?)`,
			rec.SchemaName, rec.Description, rec.Utype)
		if err != nil {
			return errors.Wrapf(err, errors.ErrTypeDatabase,
				"failed to insert schema %s", rec.SchemaName)
		}
	}

	insertTableSQL := `
	INSERT INTO tap_tables (schema_name, table_name, table_type, description, utype, table_index)
	VALUES (?, ?, ?, ?, ?, ?)`

	for _, rec := range bundle.Tables {
		_, err := tx.ExecContext(ctx, insertTableSQL,
			rec.SchemaName, rec.TableName, rec.TableType,
			rec.Description, rec.Utype, rec.TableIndex)
		if err != nil {
			return errors.Wrapf(err, errors.ErrTypeDatabase,
				"failed to insert table %s", rec.TableName)
		}
	}

	insertColumnSQL := `
	INSERT INTO tap_columns (schema_name, table_name, column_name, description, unit, ucd, utype,
		datatype, size, principal, indexed, std, column_index)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	for _, rec := range bundle.Columns {
		_, err := tx.ExecContext(ctx, insertColumnSQL,
			rec.SchemaName, rec.TableName, rec.ColumnName,
			rec.Description, rec.Unit, rec.UCD, rec.Utype,
			rec.Datatype, rec.Size, rec.Principal, rec.Indexed, rec.Std, rec.ColumnIndex)
		if err != nil {
			return errors.Wrapf(err, errors.ErrTypeDatabase,
				"failed to insert column %s.%s", rec.TableName, rec.ColumnName)
		}
	}

	insertKeySQL := `
	INSERT INTO tap_keys (key_id, schema_name, from_table, target_table, description, utype)
	VALUES (?, ?, ?, ?, ?, ?)`

	for _, rec := range bundle.Keys {
		_, err := tx.ExecContext(ctx, insertKeySQL,
			rec.KeyID, schemaName, rec.FromTable, rec.TargetTable,
			rec.Description, rec.Utype)
		if err != nil {
			return errors.Wrapf(err, errors.ErrTypeDatabase,
				"failed to insert key %s", rec.KeyID)
		}
	}

	insertKeyColumnSQL := `
	INSERT INTO tap_key_columns (key_id, from_column, target_column, ordinal)
	VALUES (?, ?, ?, ?)`

	for _, rec := range bundle.KeyColumns {
		_, err := tx.ExecContext(ctx, insertKeyColumnSQL,
			rec.KeyID, rec.FromColumn, rec.TargetColumn, rec.Ordinal)
		if err != nil {
			return errors.Wrapf(err, errors.ErrTypeDatabase,
				"failed to insert key column %s/%s", rec.KeyID, rec.FromColumn)
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO load_history (id, schema_name, tables, columns, keys, loaded_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		uuid.New().String(), schemaName,
		len(bundle.Tables), len(bundle.Columns), len(bundle.Keys), time.Now().UTC())
	if err != nil {
		return errors.Wrap(err, errors.ErrTypeDatabase, "failed to record load history")
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, errors.ErrTypeDatabase, "failed to commit load")
	}

	return nil
}

// deleteSchemaRows removes all records belonging to a schema, children
// first. tap_key_columns has no schema column, so it is cleared through
// the keys it hangs off.
func deleteSchemaRows(ctx context.Context, tx *sql.Tx, schemaName string) error {
	deletes := []struct {
		what string
		stmt string
	}{
		{"key columns", `DELETE FROM tap_key_columns
			WHERE key_id IN (SELECT key_id FROM tap_keys WHERE schema_name = ?)`},
		{"keys", `DELETE FROM tap_keys WHERE schema_name = ?`},
		{"columns", `DELETE FROM tap_columns WHERE schema_name = ?`},
		{"tables", `DELETE FROM tap_tables WHERE schema_name = ?`},
		{"schema", `DELETE FROM tap_schemas WHERE schema_name = ?`},
	}

	for _, d := range deletes {
		if _, err := tx.ExecContext(ctx, d.stmt, schemaName); err != nil {
			return errors.Wrapf(err, errors.ErrTypeDatabase,
				"failed to delete %s for schema %s", d.what, schemaName)
		}
	}

	return nil
}

// GetSchema retrieves a schema record by name
func (s *DuckDBStore) GetSchema(ctx context.Context, name string) (*tapschema.SchemaRecord, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	query := `
	SELECT schema_name, COALESCE(description, ''), COALESCE(utype, '')
	FROM tap_schemas WHERE schema_name = ?`

	var rec tapschema.SchemaRecord

	err := s.db.QueryRowContext(ctx, query, name).Scan(
		&rec.SchemaName, &rec.Description, &rec.Utype)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.Newf(errors.ErrTypeDatabase, "schema %s is not loaded", name)
		}

		return nil, errors.Wrap(err, errors.ErrTypeDatabase, "failed to query schema")
	}

	return &rec, nil
}

// ListSchemas retrieves all loaded schema records
func (s *DuckDBStore) ListSchemas(ctx context.Context) ([]tapschema.SchemaRecord, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	query := `
	SELECT schema_name, COALESCE(description, ''), COALESCE(utype, '')
	FROM tap_schemas ORDER BY schema_name`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrTypeDatabase, "failed to query schemas")
	}
	defer rows.Close()

	var records []tapschema.SchemaRecord

	for rows.Next() {
		var rec tapschema.SchemaRecord

		if err := rows.Scan(&rec.SchemaName, &rec.Description, &rec.Utype); err != nil {
			return nil, errors.Wrap(err, errors.ErrTypeDatabase, "failed to scan schema row")
		}

		records = append(records, rec)
	}

	return records, rows.Err()
}

// ListTables retrieves the table records for a schema in table_index order
func (s *DuckDBStore) ListTables(ctx context.Context, schema string) ([]tapschema.TableRecord, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	query := `
	SELECT schema_name, table_name, table_type,
		   COALESCE(description, ''), COALESCE(utype, ''), table_index
	FROM tap_tables WHERE schema_name = ?
	ORDER BY table_index`

	rows, err := s.db.QueryContext(ctx, query, schema)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrTypeDatabase, "failed to query tables")
	}
	defer rows.Close()

	var records []tapschema.TableRecord

	for rows.Next() {
		var rec tapschema.TableRecord

		err := rows.Scan(&rec.SchemaName, &rec.TableName, &rec.TableType,
			&rec.Description, &rec.Utype, &rec.TableIndex)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrTypeDatabase, "failed to scan table row")
		}

		records = append(records, rec)
	}

	return records, rows.Err()
}

// ListColumns retrieves the column records for a table in column_index order
func (s *DuckDBStore) ListColumns(ctx context.Context, schema, table string) ([]tapschema.ColumnRecord, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	query := `
	SELECT schema_name, table_name, column_name,
		   COALESCE(description, ''), COALESCE(unit, ''), COALESCE(ucd, ''), COALESCE(utype, ''),
		   datatype, size, principal, indexed, std, column_index
	FROM tap_columns WHERE schema_name = ? AND table_name = ?
	ORDER BY column_index`

	rows, err := s.db.QueryContext(ctx, query, schema, table)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrTypeDatabase, "failed to query columns")
	}
	defer rows.Close()

	var records []tapschema.ColumnRecord

	for rows.Next() {
		var rec tapschema.ColumnRecord

		err := rows.Scan(&rec.SchemaName, &rec.TableName, &rec.ColumnName,
			&rec.Description, &rec.Unit, &rec.UCD, &rec.Utype,
			&rec.Datatype, &rec.Size, &rec.Principal, &rec.Indexed, &rec.Std, &rec.ColumnIndex)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrTypeDatabase, "failed to scan column row")
		}

		records = append(records, rec)
	}

	return records, rows.Err()
}

// ListKeys retrieves the key records for a schema, grouped by their
// from_table in table_index order and sorted by key identifier within
// each table
func (s *DuckDBStore) ListKeys(ctx context.Context, schema string) ([]tapschema.KeyRecord, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	query := `
	SELECT k.key_id, k.from_table, k.target_table,
		   COALESCE(k.description, ''), COALESCE(k.utype, '')
	FROM tap_keys k
	JOIN tap_tables t ON t.schema_name = k.schema_name AND t.table_name = k.from_table
	WHERE k.schema_name = ?
	ORDER BY t.table_index, k.key_id`

	rows, err := s.db.QueryContext(ctx, query, schema)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrTypeDatabase, "failed to query keys")
	}
	defer rows.Close()

	var records []tapschema.KeyRecord

	for rows.Next() {
		var rec tapschema.KeyRecord

		err := rows.Scan(&rec.KeyID, &rec.FromTable, &rec.TargetTable,
			&rec.Description, &rec.Utype)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrTypeDatabase, "failed to scan key row")
		}

		records = append(records, rec)
	}

	return records, rows.Err()
}

// ListKeyColumns retrieves the column pairs of a key in ordinal order
func (s *DuckDBStore) ListKeyColumns(ctx context.Context, keyID string) ([]tapschema.KeyColumnRecord, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	query := `
	SELECT key_id, from_column, target_column, ordinal
	FROM tap_key_columns WHERE key_id = ?
	ORDER BY ordinal`

	rows, err := s.db.QueryContext(ctx, query, keyID)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrTypeDatabase, "failed to query key columns")
	}
	defer rows.Close()

	var records []tapschema.KeyColumnRecord

	for rows.Next() {
		var rec tapschema.KeyColumnRecord

		err := rows.Scan(&rec.KeyID, &rec.FromColumn, &rec.TargetColumn, &rec.Ordinal)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrTypeDatabase, "failed to scan key column row")
		}

		records = append(records, rec)
	}

	return records, rows.Err()
}

// History retrieves the most recent load runs, newest first. A limit of
// zero or less returns the full history.
func (s *DuckDBStore) History(ctx context.Context, limit int) ([]LoadRecord, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	query := `
	SELECT id, schema_name, tables, columns, keys, loaded_at
	FROM load_history ORDER BY loaded_at DESC`

	var args []interface{}

	if limit > 0 {
		query += " LIMIT ?"

		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrTypeDatabase, "failed to query load history")
	}
	defer rows.Close()

	var records []LoadRecord

	for rows.Next() {
		var rec LoadRecord

		err := rows.Scan(&rec.ID, &rec.SchemaName, &rec.Tables, &rec.Columns, &rec.Keys, &rec.LoadedAt)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrTypeDatabase, "failed to scan load history row")
		}

		records = append(records, rec)
	}

	return records, rows.Err()
}

// GetStats returns database statistics
func (s *DuckDBStore) GetStats(ctx context.Context) (*Stats, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	stats := &Stats{}

	counts := []struct {
		table string
		dest  *int
	}{
		{"tap_schemas", &stats.Schemas},
		{"tap_tables", &stats.Tables},
		{"tap_columns", &stats.Columns},
		{"tap_keys", &stats.Keys},
	}

	for _, c := range counts {
		err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+c.table).Scan(c.dest)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrTypeDatabase, "failed to count %s", c.table)
		}
	}

	// Get last load time
	var lastLoadTime *time.Time

	err := s.db.QueryRowContext(ctx, "SELECT MAX(loaded_at) FROM load_history").Scan(&lastLoadTime)
	if err != nil && !stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.Wrap(err, errors.ErrTypeDatabase, "failed to get last load time")
	}

	if lastLoadTime != nil {
		stats.LastLoadTime = *lastLoadTime
	}

	// Get database size (approximate)
	if info, err := os.Stat(s.path); err == nil {
		stats.DatabaseSizeMB = float64(info.Size()) / (1024 * 1024)
	}

	return stats, nil
}

// Clear removes all TAP_SCHEMA records and the load history
func (s *DuckDBStore) Clear(ctx context.Context) error {
	// Children first
	tables := []string{
		"tap_key_columns",
		"tap_keys",
		"tap_columns",
		"tap_tables",
		"tap_schemas",
		"load_history",
	}

	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return errors.Wrapf(err, errors.ErrTypeDatabase, "failed to clear %s", table)
		}
	}

	return nil
}

// Close closes the database connection
func (s *DuckDBStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}

	return nil
}
