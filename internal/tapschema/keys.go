package tapschema

import (
	"strconv"

	"github.com/astro-datalab/dlfelis/internal/errors"
	"github.com/astro-datalab/dlfelis/internal/felis"
)

// keyResolver resolves primary key, foreign key, and index column
// references against the walked table plans. All references must land on
// columns the walk produced; anything else is a BadConstraint.
type keyResolver struct {
	schema  string
	columns map[string]map[string]bool
}

func newKeyResolver(schema string, plans []tablePlan) *keyResolver {
	columns := make(map[string]map[string]bool, len(plans))

	for i := range plans {
		set := make(map[string]bool, len(plans[i].columns))
		for _, col := range plans[i].columns {
			set[col.name] = true
		}

		columns[plans[i].name] = set
	}

	return &keyResolver{schema: schema, columns: columns}
}

// resolveKeys produces the key and key_column records for all tables, in
// plan order with each table's primary key ahead of its foreign keys. It
// also reports which columns lead a primary key or an index, which is
// what the indexed flag on column records means.
func resolveKeys(schema string, plans []tablePlan) ([]KeyRecord, []KeyColumnRecord, map[string]map[string]bool, error) {
	r := newKeyResolver(schema, plans)

	keys := make([]KeyRecord, 0, len(plans))
	keyCols := make([]KeyColumnRecord, 0, len(plans))
	indexed := make(map[string]map[string]bool, len(plans))

	for i := range plans {
		plan := &plans[i]
		indexed[plan.name] = make(map[string]bool)

		pk, pkCols, err := r.resolvePrimaryKey(plan)
		if err != nil {
			return nil, nil, nil, err
		}

		if pk != nil {
			keys = append(keys, *pk)
			keyCols = append(keyCols, pkCols...)
			indexed[plan.name][pkCols[0].FromColumn] = true
		}

		fkPos := 0

		for ci := range plan.constraints {
			con := &plan.constraints[ci]

			switch con.Type {
			case felis.ConstraintForeignKey:
				fkPos++

				key, cols, err := r.resolveForeignKey(plan, con, fkPos)
				if err != nil {
					return nil, nil, nil, err
				}

				keys = append(keys, key)
				keyCols = append(keyCols, cols...)
			case felis.ConstraintUnique, felis.ConstraintCheck:
				// carried in the document, not part of TAP_SCHEMA
			default:
				if len(con.ReferencedColumns) > 0 {
					return nil, nil, nil, errors.Newf(errors.ErrTypeBadConstraint,
						"constraint declares referencedColumns but its @type is %q, not %q",
						con.Type, felis.ConstraintForeignKey).
						WithPath(r.constraintPath(plan.name, con.Name, ci))
				}
			}
		}

		if err := r.markIndexes(plan, indexed[plan.name]); err != nil {
			return nil, nil, nil, err
		}
	}

	return keys, keyCols, indexed, nil
}

func (r *keyResolver) resolvePrimaryKey(plan *tablePlan) (*KeyRecord, []KeyColumnRecord, error) {
	if len(plan.primaryKey) == 0 {
		return nil, nil, nil
	}

	path := r.schema + "." + plan.name
	id := keyID(r.schema, plan.name, "pkey")
	cols := make([]KeyColumnRecord, 0, len(plan.primaryKey))

	for i, ref := range plan.primaryKey {
		name, err := r.resolveLocal(plan.name, ref, path)
		if err != nil {
			return nil, nil, err
		}

		cols = append(cols, KeyColumnRecord{
			KeyID:        id,
			FromColumn:   name,
			TargetColumn: name,
			Ordinal:      i + 1,
		})
	}

	key := &KeyRecord{
		KeyID:       id,
		FromTable:   plan.name,
		TargetTable: plan.name,
	}

	return key, cols, nil
}

func (r *keyResolver) resolveForeignKey(plan *tablePlan, con *felis.Constraint, pos int) (KeyRecord, []KeyColumnRecord, error) {
	name := con.Name
	if name == "" {
		name = "fk" + strconv.Itoa(pos)
	}

	path := r.schema + "." + plan.name + "." + name

	if len(con.Columns) == 0 {
		return KeyRecord{}, nil, errors.New(errors.ErrTypeBadConstraint,
			"foreign key declares no columns").WithPath(path)
	}

	if len(con.Columns) != len(con.ReferencedColumns) {
		return KeyRecord{}, nil, errors.Newf(errors.ErrTypeBadConstraint,
			"foreign key declares %d columns but %d referenced columns",
			len(con.Columns), len(con.ReferencedColumns)).WithPath(path)
	}

	id := keyID(r.schema, plan.name, name)
	target := ""
	cols := make([]KeyColumnRecord, 0, len(con.Columns))

	for i, ref := range con.Columns {
		from, err := r.resolveLocal(plan.name, ref, path)
		if err != nil {
			return KeyRecord{}, nil, err
		}

		toTable, toColumn, err := r.resolveRemote(con.ReferencedColumns[i], path)
		if err != nil {
			return KeyRecord{}, nil, err
		}

		if i == 0 {
			target = toTable
		} else if toTable != target {
			return KeyRecord{}, nil, errors.Newf(errors.ErrTypeBadConstraint,
				"foreign key references two tables, %q and %q", target, toTable).WithPath(path)
		}

		cols = append(cols, KeyColumnRecord{
			KeyID:        id,
			FromColumn:   from,
			TargetColumn: toColumn,
			Ordinal:      i + 1,
		})
	}

	key := KeyRecord{
		KeyID:       id,
		FromTable:   plan.name,
		TargetTable: target,
		Description: con.Description,
		Utype:       con.Utype,
	}

	return key, cols, nil
}

// markIndexes resolves every index column and marks each index's leading
// column as indexed.
func (r *keyResolver) markIndexes(plan *tablePlan, indexed map[string]bool) error {
	for xi := range plan.indexes {
		idx := &plan.indexes[xi]

		name := idx.Name
		if name == "" {
			name = "index " + strconv.Itoa(xi+1)
		}

		path := r.schema + "." + plan.name + "." + name

		if len(idx.Columns) == 0 {
			return errors.New(errors.ErrTypeBadConstraint,
				"index declares no columns").WithPath(path)
		}

		for i, ref := range idx.Columns {
			col, err := r.resolveLocal(plan.name, ref, path)
			if err != nil {
				return err
			}

			if i == 0 {
				indexed[col] = true
			}
		}
	}

	return nil
}

// resolveLocal resolves a reference that must land in the named table:
// primary key members, foreign key source columns, index columns.
func (r *keyResolver) resolveLocal(table, ref, path string) (string, error) {
	parsed := felis.ParseRef(ref)

	if parsed.Column == "" {
		return "", errors.New(errors.ErrTypeBadConstraint,
			"empty column reference").WithPath(path)
	}

	if parsed.IsQualified() &&
		(parsed.Table != table || (parsed.Schema != "" && parsed.Schema != r.schema)) {
		return "", errors.Newf(errors.ErrTypeBadConstraint,
			"reference %q does not belong to table %q", ref, table).WithPath(path)
	}

	if !r.columns[table][parsed.Column] {
		return "", errors.Newf(errors.ErrTypeBadConstraint,
			"unknown column %q in table %q", parsed.Column, table).WithPath(path)
	}

	return parsed.Column, nil
}

// resolveRemote resolves a referenced column, which must name its table.
func (r *keyResolver) resolveRemote(ref, path string) (string, string, error) {
	parsed := felis.ParseRef(ref)

	if !parsed.IsQualified() {
		return "", "", errors.Newf(errors.ErrTypeBadConstraint,
			"referenced column %q does not name a table", ref).
			WithSuggestion("qualify the reference as #schema.table.column").
			WithPath(path)
	}

	if parsed.Schema != "" && parsed.Schema != r.schema {
		return "", "", errors.Newf(errors.ErrTypeBadConstraint,
			"referenced column %q names schema %q, not %q", ref, parsed.Schema, r.schema).
			WithPath(path)
	}

	cols, ok := r.columns[parsed.Table]
	if !ok {
		return "", "", errors.Newf(errors.ErrTypeBadConstraint,
			"referenced table %q is not declared in the schema", parsed.Table).WithPath(path)
	}

	if !cols[parsed.Column] {
		return "", "", errors.Newf(errors.ErrTypeBadConstraint,
			"unknown column %q in table %q", parsed.Column, parsed.Table).WithPath(path)
	}

	return parsed.Table, parsed.Column, nil
}

func (r *keyResolver) constraintPath(table, name string, pos int) string {
	if name == "" {
		name = "constraint " + strconv.Itoa(pos+1)
	}

	return r.schema + "." + table + "." + name
}

// keyID builds the deterministic key identifier for a table's key. The
// same document always yields the same IDs.
func keyID(schema, table, name string) string {
	return schema + "_" + table + "_" + name
}
