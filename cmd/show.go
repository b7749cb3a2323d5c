package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/astro-datalab/dlfelis/internal/storage"
	"github.com/astro-datalab/dlfelis/internal/tapschema"
)

const notAvailable = "N/A"

var showCmd = &cobra.Command{
	Use:   "show [schema]",
	Short: "Display loaded schemas",
	Long: `Show the tables, columns, and keys of a schema previously published
into the local database with the load command. Without an argument, show
lists the loaded schemas.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return runShow(cmd, "")
		}

		return runShow(cmd, args[0])
	},
}

func runShow(cmd *cobra.Command, schemaName string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	store, err := initializeStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	if schemaName == "" {
		return runShowAllWithStore(ctx, store)
	}

	return runShowWithStore(ctx, schemaName, store)
}

func runShowAllWithStore(ctx context.Context, store storage.Store) error {
	schemas, err := store.ListSchemas(ctx)
	if err != nil {
		return err
	}

	if len(schemas) == 0 {
		fmt.Println("No schemas loaded.")
		return nil
	}

	for _, schema := range schemas {
		fmt.Printf("%-24s %s\n", schema.SchemaName, getStringOrNA(schema.Description))
	}

	return nil
}

func runShowWithStore(ctx context.Context, schemaName string, store storage.Store) error {
	schema, err := store.GetSchema(ctx, schemaName)
	if err != nil {
		return err
	}

	fmt.Printf("Schema: %s\n", schema.SchemaName)
	fmt.Printf("Description: %s\n", getStringOrNA(schema.Description))

	if schema.Utype != "" {
		fmt.Printf("Utype: %s\n", schema.Utype)
	}

	tables, err := store.ListTables(ctx, schemaName)
	if err != nil {
		return fmt.Errorf("failed to list tables: %w", err)
	}

	for _, table := range tables {
		fmt.Printf("\n%s: %s\n", table.TableName, getStringOrNA(table.Description))

		columns, err := store.ListColumns(ctx, schemaName, table.TableName)
		if err != nil {
			return fmt.Errorf("failed to list columns: %w", err)
		}

		for i := range columns {
			fmt.Printf("  %s\n", formatColumn(&columns[i]))
		}
	}

	keys, err := store.ListKeys(ctx, schemaName)
	if err != nil {
		return fmt.Errorf("failed to list keys: %w", err)
	}

	if len(keys) > 0 {
		fmt.Printf("\nKeys:\n")

		for i := range keys {
			line, err := formatKey(ctx, store, &keys[i])
			if err != nil {
				return err
			}

			fmt.Printf("  %s\n", line)
		}
	}

	return nil
}

// formatColumn renders one column as "name datatype(size) unit [flags]".
func formatColumn(col *tapschema.ColumnRecord) string {
	datatype := col.Datatype
	if col.Size != nil {
		datatype = fmt.Sprintf("%s(%d)", datatype, *col.Size)
	}

	parts := []string{fmt.Sprintf("%-24s %s", col.ColumnName, datatype)}

	if col.Unit != "" {
		parts = append(parts, col.Unit)
	}

	var flags []string
	if col.Principal != 0 {
		flags = append(flags, "principal")
	}

	if col.Indexed != 0 {
		flags = append(flags, "indexed")
	}

	if len(flags) > 0 {
		parts = append(parts, "["+strings.Join(flags, " ")+"]")
	}

	return strings.Join(parts, " ")
}

// formatKey renders one key as "id: from(cols) -> target(cols)".
func formatKey(ctx context.Context, store storage.Store, key *tapschema.KeyRecord) (string, error) {
	keyColumns, err := store.ListKeyColumns(ctx, key.KeyID)
	if err != nil {
		return "", fmt.Errorf("failed to list key columns: %w", err)
	}

	fromCols := make([]string, 0, len(keyColumns))
	targetCols := make([]string, 0, len(keyColumns))

	for _, kc := range keyColumns {
		fromCols = append(fromCols, kc.FromColumn)
		targetCols = append(targetCols, kc.TargetColumn)
	}

	return fmt.Sprintf("%s: %s(%s) -> %s(%s)",
		key.KeyID,
		key.FromTable, strings.Join(fromCols, ", "),
		key.TargetTable, strings.Join(targetCols, ", ")), nil
}

func getStringOrNA(s string) string {
	if s == "" {
		return notAvailable
	}

	return s
}
