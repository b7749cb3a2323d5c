package emit

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"

	"github.com/astro-datalab/dlfelis/internal/errors"
	"github.com/astro-datalab/dlfelis/internal/tapschema"
)

// CSV file names, one per TAP_SCHEMA record set.
const (
	SchemasCSV    = "schemas.csv"
	TablesCSV     = "tables.csv"
	ColumnsCSV    = "columns.csv"
	KeysCSV       = "keys.csv"
	KeyColumnsCSV = "key_columns.csv"
)

// WriteCSVDir renders the bundle as five CSV files in dir, each with a
// header row. The directory is created when missing. An unset size is an
// empty field.
func WriteCSVDir(dir string, bundle *tapschema.Bundle) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, errors.ErrTypeIO, "creating output directory").WithPath(dir)
	}

	sets := []struct {
		name   string
		header []string
		rows   [][]string
	}{
		{
			name:   SchemasCSV,
			header: []string{"schema_name", "description", "utype"},
			rows:   schemaRows(bundle.Schemas),
		},
		{
			name: TablesCSV,
			header: []string{
				"schema_name", "table_name", "table_type",
				"description", "utype", "table_index",
			},
			rows: tableRows(bundle.Tables),
		},
		{
			name: ColumnsCSV,
			header: []string{
				"schema_name", "table_name", "column_name", "description",
				"unit", "ucd", "utype", "datatype", "size",
				"principal", "indexed", "std", "column_index",
			},
			rows: columnRows(bundle.Columns),
		},
		{
			name: KeysCSV,
			header: []string{
				"key_id", "from_table", "target_table", "description", "utype",
			},
			rows: keyRows(bundle.Keys),
		},
		{
			name:   KeyColumnsCSV,
			header: []string{"key_id", "from_column", "target_column", "ordinal"},
			rows:   keyColumnRows(bundle.KeyColumns),
		},
	}

	for _, set := range sets {
		if err := writeCSVFile(filepath.Join(dir, set.name), set.header, set.rows); err != nil {
			return err
		}
	}

	return nil
}

func writeCSVFile(path string, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, errors.ErrTypeIO, "creating csv file").WithPath(path)
	}

	w := csv.NewWriter(f)

	if err := w.Write(header); err != nil {
		f.Close()
		return errors.Wrap(err, errors.ErrTypeIO, "writing csv header").WithPath(path)
	}

	if err := w.WriteAll(rows); err != nil {
		f.Close()
		return errors.Wrap(err, errors.ErrTypeIO, "writing csv rows").WithPath(path)
	}

	w.Flush()

	if err := w.Error(); err != nil {
		f.Close()
		return errors.Wrap(err, errors.ErrTypeIO, "flushing csv").WithPath(path)
	}

	if err := f.Close(); err != nil {
		return errors.Wrap(err, errors.ErrTypeIO, "closing csv file").WithPath(path)
	}

	return nil
}

func schemaRows(records []tapschema.SchemaRecord) [][]string {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{r.SchemaName, r.Description, r.Utype})
	}

	return rows
}

func tableRows(records []tapschema.TableRecord) [][]string {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			r.SchemaName, r.TableName, r.TableType,
			r.Description, r.Utype, strconv.Itoa(r.TableIndex),
		})
	}

	return rows
}

func columnRows(records []tapschema.ColumnRecord) [][]string {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		size := ""
		if r.Size != nil {
			size = strconv.Itoa(*r.Size)
		}

		rows = append(rows, []string{
			r.SchemaName, r.TableName, r.ColumnName, r.Description,
			r.Unit, r.UCD, r.Utype, r.Datatype, size,
			strconv.Itoa(r.Principal), strconv.Itoa(r.Indexed),
			strconv.Itoa(r.Std), strconv.Itoa(r.ColumnIndex),
		})
	}

	return rows
}

func keyRows(records []tapschema.KeyRecord) [][]string {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			r.KeyID, r.FromTable, r.TargetTable, r.Description, r.Utype,
		})
	}

	return rows
}

func keyColumnRows(records []tapschema.KeyColumnRecord) [][]string {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			r.KeyID, r.FromColumn, r.TargetColumn, strconv.Itoa(r.Ordinal),
		})
	}

	return rows
}
