package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/astro-datalab/dlfelis/internal/storage"
	"github.com/astro-datalab/dlfelis/internal/tapschema"
)

var dbPath string

var loadCmd = &cobra.Command{
	Use:   "load <input-felis-file>",
	Short: "Convert a Felis document and publish it into the local database",
	Long: `Convert a Felis document and load the resulting record sets into the
TAP_SCHEMA mirror tables of the local DuckDB database. Loading replaces
any previously loaded version of the same schema in one transaction and
appends a row to the load history.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLoad(cmd, args[0])
	},
}

func init() {
	loadCmd.Flags().StringVar(&dbPath, "db", "", "Database file (default from configuration)")
}

func runLoad(cmd *cobra.Command, inputPath string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	bundle, err := convertDocument(inputPath, cfg.Convert.PlainDescriptions)
	if err != nil {
		return err
	}

	store, err := initializeStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := publishBundle(ctx, store, bundle); err != nil {
		return err
	}

	fmt.Printf("Loaded schema %s into %s\n", bundle.Schemas[0].SchemaName, cfg.Database.Path)
	fmt.Printf("  tables:      %d\n", len(bundle.Tables))
	fmt.Printf("  columns:     %d\n", len(bundle.Columns))
	fmt.Printf("  keys:        %d\n", len(bundle.Keys))

	return nil
}

// publishBundle loads the bundle with spinner feedback when stderr is a
// terminal. The spinner writes to stderr so scripted callers capturing
// stdout see only the summary.
func publishBundle(ctx context.Context, store storage.Store, bundle *tapschema.Bundle) error {
	if !isatty.IsTerminal(os.Stderr.Fd()) {
		return store.LoadBundle(ctx, bundle)
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	s.Suffix = fmt.Sprintf(" loading %s...", bundle.Schemas[0].SchemaName)
	s.Start()

	err := store.LoadBundle(ctx, bundle)
	s.Stop()

	return err
}
