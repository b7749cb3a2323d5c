package emit

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/lib/pq"

	"github.com/astro-datalab/dlfelis/internal/errors"
	"github.com/astro-datalab/dlfelis/internal/tapschema"
)

// sqlSchema is the database schema holding the TAP_SCHEMA tables.
const sqlSchema = "tap_schema"

// WriteSQL renders the bundle as a transactional PostgreSQL load script.
// The script deletes the schema's existing rows from all five tables and
// inserts the converted rows, so running it twice leaves the same state.
func WriteSQL(w io.Writer, bundle *tapschema.Bundle) error {
	var b strings.Builder

	schemaName := ""
	if len(bundle.Schemas) > 0 {
		schemaName = bundle.Schemas[0].SchemaName
	}

	fmt.Fprintf(&b, "-- TAP_SCHEMA load for schema %s\n", schemaName)
	b.WriteString("BEGIN;\n\n")

	writeDeletes(&b, schemaName)
	b.WriteString("\n")

	for _, r := range bundle.Schemas {
		fmt.Fprintf(&b,
			"INSERT INTO %s.schemas (schema_name, description, utype) VALUES (%s, %s, %s);\n",
			sqlSchema, lit(r.SchemaName), optLit(r.Description), optLit(r.Utype))
	}

	for _, r := range bundle.Tables {
		fmt.Fprintf(&b,
			"INSERT INTO %s.tables (schema_name, table_name, table_type, description, utype, table_index) VALUES (%s, %s, %s, %s, %s, %d);\n",
			sqlSchema, lit(r.SchemaName), lit(r.TableName), lit(r.TableType),
			optLit(r.Description), optLit(r.Utype), r.TableIndex)
	}

	for _, r := range bundle.Columns {
		fmt.Fprintf(&b,
			"INSERT INTO %s.columns (schema_name, table_name, column_name, description, unit, ucd, utype, datatype, size, principal, indexed, std, column_index) VALUES (%s, %s, %s, %s, %s, %s, %s, %s, %s, %d, %d, %d, %d);\n",
			sqlSchema, lit(r.SchemaName), lit(r.TableName), lit(r.ColumnName),
			optLit(r.Description), optLit(r.Unit), optLit(r.UCD), optLit(r.Utype),
			lit(r.Datatype), sizeLit(r.Size),
			r.Principal, r.Indexed, r.Std, r.ColumnIndex)
	}

	for _, r := range bundle.Keys {
		fmt.Fprintf(&b,
			"INSERT INTO %s.keys (key_id, from_table, target_table, description, utype) VALUES (%s, %s, %s, %s, %s);\n",
			sqlSchema, lit(r.KeyID), lit(r.FromTable), lit(r.TargetTable),
			optLit(r.Description), optLit(r.Utype))
	}

	for _, r := range bundle.KeyColumns {
		fmt.Fprintf(&b,
			"INSERT INTO %s.key_columns (key_id, from_column, target_column, ordinal) VALUES (%s, %s, %s, %d);\n",
			sqlSchema, lit(r.KeyID), lit(r.FromColumn), lit(r.TargetColumn), r.Ordinal)
	}

	b.WriteString("\nCOMMIT;\n")

	if _, err := io.WriteString(w, b.String()); err != nil {
		return errors.Wrap(err, errors.ErrTypeIO, "writing sql script")
	}

	return nil
}

func writeDeletes(b *strings.Builder, schemaName string) {
	name := lit(schemaName)

	fmt.Fprintf(b, "DELETE FROM %s.key_columns WHERE key_id IN"+
		" (SELECT k.key_id FROM %s.keys k JOIN %s.tables t ON t.table_name = k.from_table"+
		" WHERE t.schema_name = %s);\n",
		sqlSchema, sqlSchema, sqlSchema, name)
	fmt.Fprintf(b, "DELETE FROM %s.keys WHERE from_table IN"+
		" (SELECT table_name FROM %s.tables WHERE schema_name = %s);\n",
		sqlSchema, sqlSchema, name)
	fmt.Fprintf(b, "DELETE FROM %s.columns WHERE schema_name = %s;\n", sqlSchema, name)
	fmt.Fprintf(b, "DELETE FROM %s.tables WHERE schema_name = %s;\n", sqlSchema, name)
	fmt.Fprintf(b, "DELETE FROM %s.schemas WHERE schema_name = %s;\n", sqlSchema, name)
}

func lit(s string) string {
	return pq.QuoteLiteral(s)
}

func optLit(s string) string {
	if s == "" {
		return "NULL"
	}

	return pq.QuoteLiteral(s)
}

func sizeLit(size *int) string {
	if size == nil {
		return "NULL"
	}

	return strconv.Itoa(*size)
}
