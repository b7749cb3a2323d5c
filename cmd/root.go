package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/astro-datalab/dlfelis/internal/emit"
	"github.com/astro-datalab/dlfelis/internal/felis"
	"github.com/astro-datalab/dlfelis/internal/logging"
	"github.com/astro-datalab/dlfelis/internal/tapschema"
)

var (
	outputPath        string
	outputFormat      string
	plainDescriptions bool
	logLevel          string
	logFormat         string
)

var rootCmd = &cobra.Command{
	Use:   "convert_tap_schema <input-felis-file>",
	Short: "Convert Felis schema documents into TAP_SCHEMA record sets",
	Long: `convert_tap_schema reads an astronomical catalog described in the Felis
YAML format and converts it into the five record sets a TAP service
publishes through its TAP_SCHEMA tables: schemas, tables, columns, keys,
and key_columns.

The converted records are written to stdout as a single JSON document by
default. The csv format writes one file per record set into the -o
directory, and the sql format writes a load script for the TAP_SCHEMA
tables of a relational backend.`,
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runConvert(cmd, args[0])
	},
}

// Execute runs the command tree. Cobra's own error printing is silenced;
// the caller prints the returned error so diagnostics appear exactly once.
func Execute() error {
	ctx := context.Background()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format (text, json)")

	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output path (default stdout; a directory for csv)")
	rootCmd.Flags().StringVar(&outputFormat, "format", "", "Output format: json, csv, or sql")
	rootCmd.Flags().BoolVar(&plainDescriptions, "plain-descriptions", false, "Rewrite HTML markup in descriptions as plain text")

	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(loadCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(clearCmd)
	rootCmd.AddCommand(versionCmd)
}

func runConvert(cmd *cobra.Command, inputPath string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger := logging.GetLogger()
	logger.WithField("input", inputPath).Debug("converting felis document")

	bundle, err := convertDocument(inputPath, cfg.Convert.PlainDescriptions)
	if err != nil {
		return err
	}

	format, err := emit.ParseFormat(cfg.Output.Format)
	if err != nil {
		return err
	}

	if err := emit.Write(cfg.Output.Path, format, bundle); err != nil {
		return err
	}

	logger.WithFields(map[string]interface{}{
		"schema":  bundle.Schemas[0].SchemaName,
		"tables":  len(bundle.Tables),
		"columns": len(bundle.Columns),
		"keys":    len(bundle.Keys),
	}).Debug("conversion complete")

	return nil
}

// convertDocument is the parse and convert core shared by the root,
// validate, and load commands.
func convertDocument(path string, plain bool) (*tapschema.Bundle, error) {
	var opts []felis.Option
	if plain {
		opts = append(opts, felis.WithPlainDescriptions())
	}

	schema, err := felis.Load(path, opts...)
	if err != nil {
		return nil, err
	}

	return tapschema.Convert(schema)
}
