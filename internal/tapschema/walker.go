package tapschema

import (
	stderrors "errors"
	"math"
	"sort"

	"github.com/astro-datalab/dlfelis/internal/errors"
	"github.com/astro-datalab/dlfelis/internal/felis"
)

// Source is the narrow read-only view of a schema document that the
// converter traverses. *felis.Schema implements it; tests substitute
// hand-built sources. List results must be in declaration order.
type Source interface {
	SchemaName() string
	SchemaDescription() string
	SchemaUtype() string
	ListTables() []felis.Table
	ListColumns(table string) ([]felis.Column, error)
	ListConstraints(table string) ([]felis.Constraint, error)
	ListIndexes(table string) ([]felis.Index, error)
}

// tablePlan is the walker's intermediate form of one table: identity and
// typed columns in output order, with the raw key material carried along
// for the key resolver.
type tablePlan struct {
	name        string
	description string
	utype       string
	orderHint   int
	columns     []columnPlan
	primaryKey  felis.StringList
	constraints []felis.Constraint
	indexes     []felis.Index
}

type columnPlan struct {
	name        string
	description string
	unit        string
	ucd         string
	utype       string
	datatype    string
	size        int
	principal   int
	std         int
	orderHint   int
}

// walkSchema traverses the source and produces one plan per table, in
// output order. Tables and columns that declare a tap:table_index or
// tap:column_index are placed by it; undeclared ones follow in
// declaration order. Missing names, missing datatypes, and unmappable
// datatypes abort the walk.
func walkSchema(src Source) ([]tablePlan, error) {
	schemaName := src.SchemaName()
	if schemaName == "" {
		return nil, errors.New(errors.ErrTypeMissingField, "schema has no name")
	}

	tables := src.ListTables()
	plans := make([]tablePlan, 0, len(tables))

	for i := range tables {
		plan, err := walkTable(src, schemaName, &tables[i])
		if err != nil {
			return nil, err
		}

		plans = append(plans, plan)
	}

	sort.SliceStable(plans, func(i, j int) bool {
		return plans[i].orderHint < plans[j].orderHint
	})

	return plans, nil
}

func walkTable(src Source, schemaName string, table *felis.Table) (tablePlan, error) {
	if table.Name == "" {
		return tablePlan{}, errors.New(errors.ErrTypeMissingField,
			"table has no name").WithPath(schemaName)
	}

	tablePath := schemaName + "." + table.Name

	cols, err := src.ListColumns(table.Name)
	if err != nil {
		return tablePlan{}, errors.Wrap(err, errors.ErrTypeInternal,
			"listing columns").WithPath(tablePath)
	}

	cons, err := src.ListConstraints(table.Name)
	if err != nil {
		return tablePlan{}, errors.Wrap(err, errors.ErrTypeInternal,
			"listing constraints").WithPath(tablePath)
	}

	idxs, err := src.ListIndexes(table.Name)
	if err != nil {
		return tablePlan{}, errors.Wrap(err, errors.ErrTypeInternal,
			"listing indexes").WithPath(tablePath)
	}

	plan := tablePlan{
		name:        table.Name,
		description: table.Description,
		utype:       table.Utype,
		orderHint:   orderHint(table.TableIndex),
		columns:     make([]columnPlan, 0, len(cols)),
		primaryKey:  table.PrimaryKey,
		constraints: cons,
		indexes:     idxs,
	}

	for i := range cols {
		cp, err := walkColumn(tablePath, &cols[i])
		if err != nil {
			return tablePlan{}, err
		}

		plan.columns = append(plan.columns, cp)
	}

	sort.SliceStable(plan.columns, func(i, j int) bool {
		return plan.columns[i].orderHint < plan.columns[j].orderHint
	})

	return plan, nil
}

func walkColumn(tablePath string, col *felis.Column) (columnPlan, error) {
	if col.Name == "" {
		return columnPlan{}, errors.New(errors.ErrTypeMissingField,
			"column has no name").WithPath(tablePath)
	}

	colPath := tablePath + "." + col.Name

	if col.Datatype == "" {
		return columnPlan{}, errors.New(errors.ErrTypeMissingField,
			"column has no datatype").WithPath(colPath)
	}

	tapType, err := MapDatatype(col.Datatype, col.Length, col.ArraySize)
	if err != nil {
		var serr *errors.Error
		if stderrors.As(err, &serr) {
			return columnPlan{}, serr.WithPath(colPath)
		}

		return columnPlan{}, err
	}

	return columnPlan{
		name:        col.Name,
		description: col.Description,
		unit:        col.Unit(),
		ucd:         col.UCD,
		utype:       col.Utype,
		datatype:    tapType.Name,
		size:        tapType.Size,
		principal:   col.Principal.Int(),
		std:         col.Std.Int(),
		orderHint:   orderHint(col.ColumnIndex),
	}, nil
}

// orderHint turns a declared 1-based index into a sort key; undeclared
// entries sort after all declared ones.
func orderHint(declared int) int {
	if declared > 0 {
		return declared
	}

	return math.MaxInt
}
