package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/astro-datalab/dlfelis/internal/errors"
)

const demoDocument = `name: demo
"@id": "#demo"
description: Demo catalog
tables:
  - name: target
    "@id": "#demo.target"
    description: Observed targets
    primaryKey: "#demo.target.target_id"
    columns:
      - name: target_id
        "@id": "#demo.target.target_id"
        datatype: long
        description: Target identifier
      - name: ra
        "@id": "#demo.target.ra"
        datatype: double
        ivoa:unit: deg
        ivoa:ucd: pos.eq.ra
      - name: label
        "@id": "#demo.target.label"
        datatype: string
        length: 16
`

// isolateConfig points the config loader at an empty temp location so
// tests run against defaults regardless of the host environment.
func isolateConfig(t *testing.T) {
	t.Helper()
	t.Setenv("DLFELIS_CONFIG", filepath.Join(t.TempDir(), "config.json"))
}

func writeDemoDocument(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "demo.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write document: %v", err)
	}

	return path
}

func TestRunConvert(t *testing.T) {
	t.Run("JSONToStdout", func(t *testing.T) {
		isolateConfig(t)
		docPath := writeDemoDocument(t, demoDocument)

		oldStdout := os.Stdout
		r, w, _ := os.Pipe()
		os.Stdout = w

		err := runConvert(rootCmd, docPath)

		w.Close()
		os.Stdout = oldStdout

		var buf bytes.Buffer
		_, _ = buf.ReadFrom(r)

		if err != nil {
			t.Fatalf("runConvert() error = %v", err)
		}

		var doc struct {
			Schemas []struct {
				SchemaName string `json:"schema_name"`
			} `json:"schemas"`
			Tables []struct {
				TableName  string `json:"table_name"`
				TableIndex int    `json:"table_index"`
			} `json:"tables"`
			Columns []struct {
				ColumnName string `json:"column_name"`
				Datatype   string `json:"datatype"`
				Size       *int   `json:"size"`
			} `json:"columns"`
			Keys []struct {
				KeyID string `json:"key_id"`
			} `json:"keys"`
		}
		if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
			t.Fatalf("Output is not valid JSON: %v\nOutput: %s", err, buf.String())
		}

		if len(doc.Schemas) != 1 || doc.Schemas[0].SchemaName != "demo" {
			t.Errorf("Schemas = %+v, want one record named demo", doc.Schemas)
		}

		if len(doc.Tables) != 1 || doc.Tables[0].TableName != "target" || doc.Tables[0].TableIndex != 1 {
			t.Errorf("Tables = %+v, want target with table_index 1", doc.Tables)
		}

		if len(doc.Columns) != 3 {
			t.Fatalf("Columns = %d, want 3", len(doc.Columns))
		}

		label := doc.Columns[2]
		if label.Datatype != "varchar" || label.Size == nil || *label.Size != 16 {
			t.Errorf("label column = %+v, want varchar with size 16", label)
		}

		if len(doc.Keys) != 1 || doc.Keys[0].KeyID != "demo_target_pkey" {
			t.Errorf("Keys = %+v, want the primary key record", doc.Keys)
		}
	})

	t.Run("ConfigFileDrivesSQLOutput", func(t *testing.T) {
		tmpDir := t.TempDir()
		outPath := filepath.Join(tmpDir, "out.sql")
		configPath := filepath.Join(tmpDir, "config.json")

		configJSON := `{"output": {"format": "sql", "path": ` + jsonString(outPath) + `}}`
		if err := os.WriteFile(configPath, []byte(configJSON), 0o644); err != nil {
			t.Fatalf("Failed to write config: %v", err)
		}

		t.Setenv("DLFELIS_CONFIG", configPath)

		docPath := writeDemoDocument(t, demoDocument)

		if err := runConvert(rootCmd, docPath); err != nil {
			t.Fatalf("runConvert() error = %v", err)
		}

		data, err := os.ReadFile(outPath)
		if err != nil {
			t.Fatalf("Expected SQL output file: %v", err)
		}

		script := string(data)
		for _, want := range []string{
			"BEGIN;",
			"INSERT INTO tap_schema.schemas",
			"INSERT INTO tap_schema.columns",
			"'demo_target_pkey'",
			"COMMIT;",
		} {
			if !strings.Contains(script, want) {
				t.Errorf("SQL script does not contain %q", want)
			}
		}
	})

	t.Run("MissingInputFile", func(t *testing.T) {
		isolateConfig(t)

		err := runConvert(rootCmd, filepath.Join(t.TempDir(), "missing.yaml"))
		if err == nil {
			t.Fatal("runConvert() expected error for missing input")
		}

		if !errors.IsType(err, errors.ErrTypeIO) {
			t.Errorf("runConvert() error type = %v, want io", errors.GetType(err))
		}
	})
}

func TestConvertDocument(t *testing.T) {
	t.Run("PlainDescriptions", func(t *testing.T) {
		doc := strings.Replace(demoDocument,
			"description: Target identifier",
			`description: "The <b>unique</b> identifier"`, 1)
		docPath := writeDemoDocument(t, doc)

		bundle, err := convertDocument(docPath, true)
		if err != nil {
			t.Fatalf("convertDocument() error = %v", err)
		}

		got := bundle.Columns[0].Description
		if strings.Contains(got, "<b>") {
			t.Errorf("Description = %q, markup should be stripped", got)
		}

		if !strings.Contains(got, "unique") {
			t.Errorf("Description = %q, text should survive stripping", got)
		}
	})

	t.Run("MarkupKeptByDefault", func(t *testing.T) {
		doc := strings.Replace(demoDocument,
			"description: Target identifier",
			`description: "The <b>unique</b> identifier"`, 1)
		docPath := writeDemoDocument(t, doc)

		bundle, err := convertDocument(docPath, false)
		if err != nil {
			t.Fatalf("convertDocument() error = %v", err)
		}

		if got := bundle.Columns[0].Description; !strings.Contains(got, "<b>") {
			t.Errorf("Description = %q, markup should be preserved without the option", got)
		}
	})

	t.Run("UnsupportedDatatype", func(t *testing.T) {
		doc := strings.Replace(demoDocument, "datatype: double", "datatype: complex", 1)
		docPath := writeDemoDocument(t, doc)

		_, err := convertDocument(docPath, false)
		if err == nil {
			t.Fatal("convertDocument() expected error for unsupported datatype")
		}

		if !errors.IsType(err, errors.ErrTypeUnsupportedType) {
			t.Errorf("error type = %v, want unsupported_type", errors.GetType(err))
		}

		if path := errors.PathOf(err); path != "demo.target.ra" {
			t.Errorf("error path = %q, want demo.target.ra", path)
		}
	})
}

// jsonString quotes a string for embedding in hand-built JSON fixtures,
// escaping Windows-style path separators.
func jsonString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
