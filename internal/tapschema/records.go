// Package tapschema converts parsed Felis schema documents into the five
// TAP_SCHEMA record sets: schemas, tables, columns, keys, and key_columns.
//
// Conversion is all-or-nothing: Convert either returns a bundle that
// satisfies TAP_SCHEMA's referential and ordinal invariants, or an error
// and no bundle. Conversion of the same document always yields the same
// bundle, byte for byte.
package tapschema

// SchemaRecord is one row of TAP_SCHEMA.schemas.
type SchemaRecord struct {
	SchemaName  string `json:"schema_name"`
	Description string `json:"description"`
	Utype       string `json:"utype"`
}

// TableRecord is one row of TAP_SCHEMA.tables. TableIndex is a 1-based
// ordinal, contiguous across the schema's tables.
type TableRecord struct {
	SchemaName  string `json:"schema_name"`
	TableName   string `json:"table_name"`
	TableType   string `json:"table_type"`
	Description string `json:"description"`
	Utype       string `json:"utype"`
	TableIndex  int    `json:"table_index"`
}

// ColumnRecord is one row of TAP_SCHEMA.columns. ColumnIndex is a 1-based
// ordinal, contiguous within the column's table. Size is nil when the
// datatype carries no size.
type ColumnRecord struct {
	SchemaName  string `json:"schema_name"`
	TableName   string `json:"table_name"`
	ColumnName  string `json:"column_name"`
	Description string `json:"description"`
	Unit        string `json:"unit"`
	UCD         string `json:"ucd"`
	Utype       string `json:"utype"`
	Datatype    string `json:"datatype"`
	Size        *int   `json:"size"`
	Principal   int    `json:"principal"`
	Indexed     int    `json:"indexed"`
	Std         int    `json:"std"`
	ColumnIndex int    `json:"column_index"`
}

// KeyRecord is one row of TAP_SCHEMA.keys. Primary keys produce a
// self-referential row (FromTable == TargetTable); foreign keys reference
// their target table.
type KeyRecord struct {
	KeyID       string `json:"key_id"`
	FromTable   string `json:"from_table"`
	TargetTable string `json:"target_table"`
	Description string `json:"description"`
	Utype       string `json:"utype"`
}

// KeyColumnRecord is one row of TAP_SCHEMA.key_columns. Ordinal is the
// 1-based position of the column pair within its key.
type KeyColumnRecord struct {
	KeyID        string `json:"key_id"`
	FromColumn   string `json:"from_column"`
	TargetColumn string `json:"target_column"`
	Ordinal      int    `json:"ordinal"`
}

// Bundle holds one complete TAP_SCHEMA conversion result. Record order is
// part of the contract: tables follow the document's table order, columns
// are grouped by table in ordinal order, keys list each table's primary
// key before its foreign keys, and key_columns group by key in ordinal
// order. Callers must treat a returned bundle as read-only.
type Bundle struct {
	Schemas    []SchemaRecord    `json:"schemas"`
	Tables     []TableRecord     `json:"tables"`
	Columns    []ColumnRecord    `json:"columns"`
	Keys       []KeyRecord       `json:"keys"`
	KeyColumns []KeyColumnRecord `json:"key_columns"`
}

// TableTypeTable is the table_type emitted for every converted table.
// Felis documents describe base tables, not views.
const TableTypeTable = "table"

// sizeValue returns a size pointer for sized datatypes, nil otherwise.
func sizeValue(n int) *int {
	if n <= 0 {
		return nil
	}

	return &n
}
