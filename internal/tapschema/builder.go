package tapschema

import (
	"github.com/astro-datalab/dlfelis/internal/errors"
)

// Convert turns a schema source into a complete TAP_SCHEMA bundle. On any
// error the returned bundle is nil; partial output is never produced.
func Convert(src Source) (*Bundle, error) {
	plans, err := walkSchema(src)
	if err != nil {
		return nil, err
	}

	schemaName := src.SchemaName()

	if err := checkNames(schemaName, plans); err != nil {
		return nil, err
	}

	keys, keyCols, indexed, err := resolveKeys(schemaName, plans)
	if err != nil {
		return nil, err
	}

	if err := checkKeyIDs(schemaName, keys); err != nil {
		return nil, err
	}

	bundle := assemble(src, plans, keys, keyCols, indexed)

	if err := verify(bundle); err != nil {
		return nil, err
	}

	return bundle, nil
}

// checkNames rejects duplicate table names within the schema and
// duplicate column names within a table before any of them can collide
// silently in the flat record sets.
func checkNames(schema string, plans []tablePlan) error {
	tables := make(map[string]bool, len(plans))

	for i := range plans {
		plan := &plans[i]

		if tables[plan.name] {
			return errors.Newf(errors.ErrTypeDuplicateName,
				"table %q is declared twice", plan.name).WithPath(schema)
		}

		tables[plan.name] = true

		cols := make(map[string]bool, len(plan.columns))
		for _, col := range plan.columns {
			if cols[col.name] {
				return errors.Newf(errors.ErrTypeDuplicateName,
					"column %q is declared twice", col.name).WithPath(schema + "." + plan.name)
			}

			cols[col.name] = true
		}
	}

	return nil
}

// checkKeyIDs rejects key identifier collisions, which arise from
// duplicate constraint names within a table.
func checkKeyIDs(schema string, keys []KeyRecord) error {
	seen := make(map[string]bool, len(keys))

	for _, key := range keys {
		if seen[key.KeyID] {
			return errors.Newf(errors.ErrTypeDuplicateName,
				"key identifier %q is produced twice", key.KeyID).WithPath(schema)
		}

		seen[key.KeyID] = true
	}

	return nil
}

// assemble flattens the plans into the five record sets and assigns the
// contiguous 1-based table and column ordinals.
func assemble(src Source, plans []tablePlan, keys []KeyRecord, keyCols []KeyColumnRecord, indexed map[string]map[string]bool) *Bundle {
	schemaName := src.SchemaName()

	columnCount := 0
	for i := range plans {
		columnCount += len(plans[i].columns)
	}

	bundle := &Bundle{
		Schemas: []SchemaRecord{{
			SchemaName:  schemaName,
			Description: src.SchemaDescription(),
			Utype:       src.SchemaUtype(),
		}},
		Tables:     make([]TableRecord, 0, len(plans)),
		Columns:    make([]ColumnRecord, 0, columnCount),
		Keys:       keys,
		KeyColumns: keyCols,
	}

	for ti := range plans {
		plan := &plans[ti]

		bundle.Tables = append(bundle.Tables, TableRecord{
			SchemaName:  schemaName,
			TableName:   plan.name,
			TableType:   TableTypeTable,
			Description: plan.description,
			Utype:       plan.utype,
			TableIndex:  ti + 1,
		})

		for ci := range plan.columns {
			col := &plan.columns[ci]

			record := ColumnRecord{
				SchemaName:  schemaName,
				TableName:   plan.name,
				ColumnName:  col.name,
				Description: col.description,
				Unit:        col.unit,
				UCD:         col.ucd,
				Utype:       col.utype,
				Datatype:    col.datatype,
				Size:        sizeValue(col.size),
				Principal:   col.principal,
				Std:         col.std,
				ColumnIndex: ci + 1,
			}

			if indexed[plan.name][col.name] {
				record.Indexed = 1
			}

			bundle.Columns = append(bundle.Columns, record)
		}
	}

	return bundle
}

// verify is the referential integrity pass over an assembled bundle:
// every record's parents must exist within the bundle and every ordinal
// sequence must be contiguous from 1. A verify failure means the
// converter itself produced inconsistent output.
func verify(b *Bundle) error {
	if len(b.Schemas) != 1 {
		return integrityErr("bundle holds %d schema records, want 1", len(b.Schemas))
	}

	schema := b.Schemas[0].SchemaName

	tables := make(map[string]bool, len(b.Tables))
	for i, t := range b.Tables {
		if t.SchemaName != schema {
			return integrityErr("table %q belongs to schema %q, want %q",
				t.TableName, t.SchemaName, schema)
		}

		if t.TableIndex != i+1 {
			return integrityErr("table %q has table_index %d at position %d",
				t.TableName, t.TableIndex, i+1)
		}

		if tables[t.TableName] {
			return integrityErr("table %q appears twice", t.TableName)
		}

		tables[t.TableName] = true
	}

	columns := make(map[string]map[string]bool, len(b.Tables))
	ordinals := make(map[string]int, len(b.Tables))

	for _, c := range b.Columns {
		if c.SchemaName != schema {
			return integrityErr("column %q belongs to schema %q, want %q",
				c.ColumnName, c.SchemaName, schema)
		}

		if !tables[c.TableName] {
			return integrityErr("column %q references missing table %q",
				c.ColumnName, c.TableName)
		}

		if c.ColumnIndex != ordinals[c.TableName]+1 {
			return integrityErr("column %q of table %q has column_index %d, want %d",
				c.ColumnName, c.TableName, c.ColumnIndex, ordinals[c.TableName]+1)
		}

		ordinals[c.TableName]++

		if columns[c.TableName] == nil {
			columns[c.TableName] = make(map[string]bool)
		}

		if columns[c.TableName][c.ColumnName] {
			return integrityErr("column %q of table %q appears twice",
				c.ColumnName, c.TableName)
		}

		columns[c.TableName][c.ColumnName] = true
	}

	keys := make(map[string]KeyRecord, len(b.Keys))
	for _, k := range b.Keys {
		if _, dup := keys[k.KeyID]; dup {
			return integrityErr("key %q appears twice", k.KeyID)
		}

		if !tables[k.FromTable] {
			return integrityErr("key %q starts at missing table %q", k.KeyID, k.FromTable)
		}

		if !tables[k.TargetTable] {
			return integrityErr("key %q targets missing table %q", k.KeyID, k.TargetTable)
		}

		keys[k.KeyID] = k
	}

	keyOrdinals := make(map[string]int, len(b.Keys))

	for _, kc := range b.KeyColumns {
		key, ok := keys[kc.KeyID]
		if !ok {
			return integrityErr("key column %q references missing key %q",
				kc.FromColumn, kc.KeyID)
		}

		if !columns[key.FromTable][kc.FromColumn] {
			return integrityErr("key %q uses missing column %q of table %q",
				kc.KeyID, kc.FromColumn, key.FromTable)
		}

		if !columns[key.TargetTable][kc.TargetColumn] {
			return integrityErr("key %q targets missing column %q of table %q",
				kc.KeyID, kc.TargetColumn, key.TargetTable)
		}

		if kc.Ordinal != keyOrdinals[kc.KeyID]+1 {
			return integrityErr("key %q has ordinal %d, want %d",
				kc.KeyID, kc.Ordinal, keyOrdinals[kc.KeyID]+1)
		}

		keyOrdinals[kc.KeyID]++
	}

	for id := range keys {
		if keyOrdinals[id] == 0 {
			return integrityErr("key %q has no key columns", id)
		}
	}

	return nil
}

func integrityErr(format string, args ...interface{}) error {
	return errors.Newf(errors.ErrTypeInternal, "integrity check failed: "+format, args...)
}
