// Package felis defines the typed document model for Felis schema
// definitions (the declarative format for astronomical catalog schemas)
// and the parser that populates it from YAML.
//
// The model deliberately mirrors the Felis grammar: a schema owns tables,
// a table owns columns, constraints, and indexes. Loaded documents are
// treated as read-only by everything downstream.
package felis

import (
	"fmt"
	"strconv"
	"strings"
)

// Constraint @type values. ForeignKey constraints participate in key
// resolution; Unique and Check constraints are carried but do not produce
// TAP_SCHEMA keys.
const (
	ConstraintForeignKey = "ForeignKey"
	ConstraintUnique     = "Unique"
	ConstraintCheck      = "Check"
)

// Schema is the root of a Felis document.
type Schema struct {
	Name        string  `yaml:"name"`
	ID          string  `yaml:"@id"`
	Description string  `yaml:"description"`
	Utype       string  `yaml:"votable:utype"`
	Version     Version `yaml:"version"`
	Tables      []Table `yaml:"tables"`
}

// Table is one table declaration. Column, constraint, and index order is
// declaration order and is significant: TAP_SCHEMA ordinals derive from it.
type Table struct {
	Name        string       `yaml:"name"`
	ID          string       `yaml:"@id"`
	Description string       `yaml:"description"`
	Utype       string       `yaml:"votable:utype"`
	TableIndex  int          `yaml:"tap:table_index"`
	PrimaryKey  StringList   `yaml:"primaryKey"`
	Columns     []Column     `yaml:"columns"`
	Constraints []Constraint `yaml:"constraints"`
	Indexes     []Index      `yaml:"indexes"`
}

// Column is one column declaration.
type Column struct {
	Name        string    `yaml:"name"`
	ID          string    `yaml:"@id"`
	Datatype    string    `yaml:"datatype"`
	Length      int       `yaml:"length"`
	ArraySize   ArraySize `yaml:"votable:arraysize"`
	Description string    `yaml:"description"`
	Nullable    *bool     `yaml:"nullable"`
	FITSTunit   string    `yaml:"fits:tunit"`
	IVOAUnit    string    `yaml:"ivoa:unit"`
	UCD         string    `yaml:"ivoa:ucd"`
	Utype       string    `yaml:"votable:utype"`
	Principal   Flag      `yaml:"tap:principal"`
	Std         Flag      `yaml:"tap:std"`
	ColumnIndex int       `yaml:"tap:column_index"`
}

// IsNullable reports the column's nullability; Felis columns are nullable
// unless declared otherwise.
func (c *Column) IsNullable() bool {
	if c.Nullable == nil {
		return true
	}

	return *c.Nullable
}

// Unit returns the column's physical unit, preferring ivoa:unit over
// fits:tunit when both are declared.
func (c *Column) Unit() string {
	if c.IVOAUnit != "" {
		return c.IVOAUnit
	}

	return c.FITSTunit
}

// Constraint is one table constraint. Column references are either bare
// column names or @id references of the form "#[schema.]table.column".
type Constraint struct {
	Name              string     `yaml:"name"`
	ID                string     `yaml:"@id"`
	Type              string     `yaml:"@type"`
	Description       string     `yaml:"description"`
	Utype             string     `yaml:"votable:utype"`
	Columns           StringList `yaml:"columns"`
	ReferencedColumns StringList `yaml:"referencedColumns"`
}

// Index is one index declaration.
type Index struct {
	Name        string     `yaml:"name"`
	ID          string     `yaml:"@id"`
	Description string     `yaml:"description"`
	Columns     StringList `yaml:"columns"`
}

// Version holds the Felis version block. Documents may declare it as a
// bare scalar ("v1") or as the full object form.
type Version struct {
	Current        string   `yaml:"current"`
	Compatible     []string `yaml:"compatible"`
	ReadCompatible []string `yaml:"read_compatible"`
}

// UnmarshalYAML accepts either a version scalar or the object form.
func (v *Version) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var scalar string
	if err := unmarshal(&scalar); err == nil {
		*v = Version{Current: scalar}
		return nil
	}

	type plain Version

	var obj plain
	if err := unmarshal(&obj); err != nil {
		return err
	}

	*v = Version(obj)

	return nil
}

// StringList accepts a scalar or a sequence of scalars. Felis uses the
// scalar form for single-column primary keys and single-column references.
type StringList []string

// UnmarshalYAML implements flexible scalar-or-list decoding.
func (s *StringList) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var single string
	if err := unmarshal(&single); err == nil {
		*s = []string{single}
		return nil
	}

	var multi []string
	if err := unmarshal(&multi); err == nil {
		*s = multi
		return nil
	}

	return fmt.Errorf("expected string or list of strings")
}

// Flag accepts booleans or 0/1 integers; TAP metadata files use both.
type Flag int

// UnmarshalYAML implements flexible bool-or-int decoding.
func (f *Flag) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var b bool
	if err := unmarshal(&b); err == nil {
		if b {
			*f = 1
		} else {
			*f = 0
		}

		return nil
	}

	var n int
	if err := unmarshal(&n); err == nil {
		*f = Flag(n)
		return nil
	}

	return fmt.Errorf("expected bool or integer flag")
}

// Int returns the flag as the 0/1 integer TAP_SCHEMA expects.
func (f Flag) Int() int {
	if f != 0 {
		return 1
	}

	return 0
}

// ArraySize is a VOTable arraysize declaration: "N" for fixed, "N*" for
// variable with bound N, "*" for unbounded. YAML may carry it as a bare
// integer.
type ArraySize string

// UnmarshalYAML accepts an integer or string arraysize.
func (a *ArraySize) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var n int
	if err := unmarshal(&n); err == nil {
		*a = ArraySize(strconv.Itoa(n))
		return nil
	}

	var s string
	if err := unmarshal(&s); err == nil {
		*a = ArraySize(s)
		return nil
	}

	return fmt.Errorf("expected integer or string arraysize")
}

// Bound returns the numeric bound of the arraysize, or 0 when the
// declaration is absent, unbounded ("*"), or malformed.
func (a ArraySize) Bound() int {
	s := strings.TrimSuffix(string(a), "*")
	if s == "" {
		return 0
	}

	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0
	}

	return n
}

// Narrow read-only view. These methods are the surface the conversion
// core traverses (tapschema.Source); nothing downstream of them should
// reach into the raw document.

// SchemaName returns the schema's declared name.
func (s *Schema) SchemaName() string { return s.Name }

// SchemaDescription returns the schema's description.
func (s *Schema) SchemaDescription() string { return s.Description }

// SchemaUtype returns the schema's VOTable utype, if any.
func (s *Schema) SchemaUtype() string { return s.Utype }

// ListTables returns the schema's tables in declaration order.
func (s *Schema) ListTables() []Table {
	return s.Tables
}

// ListColumns returns the named table's columns in declaration order.
func (s *Schema) ListColumns(table string) ([]Column, error) {
	t, err := s.lookupTable(table)
	if err != nil {
		return nil, err
	}

	return t.Columns, nil
}

// ListConstraints returns the named table's constraints in declaration order.
func (s *Schema) ListConstraints(table string) ([]Constraint, error) {
	t, err := s.lookupTable(table)
	if err != nil {
		return nil, err
	}

	return t.Constraints, nil
}

// ListIndexes returns the named table's index declarations.
func (s *Schema) ListIndexes(table string) ([]Index, error) {
	t, err := s.lookupTable(table)
	if err != nil {
		return nil, err
	}

	return t.Indexes, nil
}

func (s *Schema) lookupTable(name string) (*Table, error) {
	for i := range s.Tables {
		if s.Tables[i].Name == name {
			return &s.Tables[i], nil
		}
	}

	return nil, fmt.Errorf("no such table %q in schema %q", name, s.Name)
}

// Ref is a parsed Felis column or table reference. References appear as
// bare names ("objid"), dotted paths ("photoobj.objid",
// "sdss.photoobj.objid"), or @id anchors ("#sdss.photoobj.objid").
type Ref struct {
	Schema string
	Table  string
	Column string
}

// ParseRef splits a reference into its qualification parts. The last
// segment is always the column; a single segment is an unqualified
// column reference.
func ParseRef(ref string) Ref {
	trimmed := strings.TrimPrefix(strings.TrimSpace(ref), "#")
	parts := strings.Split(trimmed, ".")

	switch len(parts) {
	case 1:
		return Ref{Column: parts[0]}
	case 2:
		return Ref{Table: parts[0], Column: parts[1]}
	default:
		return Ref{
			Schema: strings.Join(parts[:len(parts)-2], "."),
			Table:  parts[len(parts)-2],
			Column: parts[len(parts)-1],
		}
	}
}

// IsQualified reports whether the reference names its table.
func (r Ref) IsQualified() bool { return r.Table != "" }

// String reassembles the reference path for diagnostics.
func (r Ref) String() string {
	parts := make([]string, 0, 3)
	if r.Schema != "" {
		parts = append(parts, r.Schema)
	}

	if r.Table != "" {
		parts = append(parts, r.Table)
	}

	parts = append(parts, r.Column)

	return strings.Join(parts, ".")
}
