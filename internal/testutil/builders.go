package testutil

import (
	"github.com/astro-datalab/dlfelis/internal/felis"
)

// SchemaOption is a functional option for configuring test schemas
type SchemaOption func(*felis.Schema)

// WithSchemaDescription sets the schema description
func WithSchemaDescription(desc string) SchemaOption {
	return func(s *felis.Schema) {
		s.Description = desc
	}
}

// WithSchemaUtype sets the schema VOTable utype
func WithSchemaUtype(utype string) SchemaOption {
	return func(s *felis.Schema) {
		s.Utype = utype
	}
}

// WithVersion sets the schema version
func WithVersion(current string) SchemaOption {
	return func(s *felis.Schema) {
		s.Version = felis.Version{Current: current}
	}
}

// WithTable appends a table declaration
func WithTable(table felis.Table) SchemaOption {
	return func(s *felis.Schema) {
		s.Tables = append(s.Tables, table)
	}
}

// NewSchema creates a test schema document with sensible defaults
// and applies any provided options.
func NewSchema(name string, opts ...SchemaOption) *felis.Schema {
	schema := &felis.Schema{
		Name:        name,
		ID:          "#" + name,
		Description: "Test schema " + name,
		Version:     felis.Version{Current: "1.0.0"},
	}

	for _, opt := range opts {
		opt(schema)
	}

	return schema
}

// TableOption is a functional option for configuring test tables
type TableOption func(*felis.Table)

// WithTableDescription sets the table description
func WithTableDescription(desc string) TableOption {
	return func(t *felis.Table) {
		t.Description = desc
	}
}

// WithTableIndex sets the declared tap:table_index
func WithTableIndex(index int) TableOption {
	return func(t *felis.Table) {
		t.TableIndex = index
	}
}

// WithPrimaryKey sets the primary key column references
func WithPrimaryKey(refs ...string) TableOption {
	return func(t *felis.Table) {
		t.PrimaryKey = refs
	}
}

// WithColumn appends a column declaration
func WithColumn(col felis.Column) TableOption {
	return func(t *felis.Table) {
		t.Columns = append(t.Columns, col)
	}
}

// WithConstraint appends a constraint declaration
func WithConstraint(con felis.Constraint) TableOption {
	return func(t *felis.Table) {
		t.Constraints = append(t.Constraints, con)
	}
}

// WithIndex appends an index declaration
func WithIndex(idx felis.Index) TableOption {
	return func(t *felis.Table) {
		t.Indexes = append(t.Indexes, idx)
	}
}

// NewTable creates a test table declaration with the given name.
func NewTable(name string, opts ...TableOption) felis.Table {
	table := felis.Table{
		Name:        name,
		ID:          "#" + name,
		Description: "Test table " + name,
	}

	for _, opt := range opts {
		opt(&table)
	}

	return table
}

// ColumnOption is a functional option for configuring test columns
type ColumnOption func(*felis.Column)

// WithColumnDescription sets the column description
func WithColumnDescription(desc string) ColumnOption {
	return func(c *felis.Column) {
		c.Description = desc
	}
}

// WithLength sets the declared length
func WithLength(length int) ColumnOption {
	return func(c *felis.Column) {
		c.Length = length
	}
}

// WithArraySize sets the VOTable arraysize declaration
func WithArraySize(arraysize string) ColumnOption {
	return func(c *felis.Column) {
		c.ArraySize = felis.ArraySize(arraysize)
	}
}

// WithUnit sets the FITS unit
func WithUnit(unit string) ColumnOption {
	return func(c *felis.Column) {
		c.FITSTunit = unit
	}
}

// WithUCD sets the IVOA UCD
func WithUCD(ucd string) ColumnOption {
	return func(c *felis.Column) {
		c.UCD = ucd
	}
}

// WithColumnUtype sets the column VOTable utype
func WithColumnUtype(utype string) ColumnOption {
	return func(c *felis.Column) {
		c.Utype = utype
	}
}

// AsPrincipal marks the column as principal
func AsPrincipal() ColumnOption {
	return func(c *felis.Column) {
		c.Principal = 1
	}
}

// AsStd marks the column as a standard column
func AsStd() ColumnOption {
	return func(c *felis.Column) {
		c.Std = 1
	}
}

// WithColumnIndex sets the declared tap:column_index
func WithColumnIndex(index int) ColumnOption {
	return func(c *felis.Column) {
		c.ColumnIndex = index
	}
}

// NotNullable marks the column as NOT NULL
func NotNullable() ColumnOption {
	return func(c *felis.Column) {
		f := false
		c.Nullable = &f
	}
}

// NewColumn creates a test column declaration with the given name and
// Felis datatype.
func NewColumn(name, datatype string, opts ...ColumnOption) felis.Column {
	col := felis.Column{
		Name:        name,
		ID:          "#" + name,
		Datatype:    datatype,
		Description: "Test column " + name,
	}

	for _, opt := range opts {
		opt(&col)
	}

	return col
}

// NewForeignKey creates a ForeignKey constraint from parallel source and
// referenced column references.
func NewForeignKey(name string, columns, referenced []string) felis.Constraint {
	return felis.Constraint{
		Name:              name,
		ID:                "#FK_" + name,
		Type:              felis.ConstraintForeignKey,
		Columns:           columns,
		ReferencedColumns: referenced,
	}
}

// NewIndex creates an index declaration over the given column references.
func NewIndex(name string, columns ...string) felis.Index {
	return felis.Index{
		Name:    name,
		ID:      "#" + name,
		Columns: columns,
	}
}
