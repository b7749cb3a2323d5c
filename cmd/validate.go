package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <input-felis-file>",
	Short: "Check that a Felis document converts cleanly",
	Long: `Parse and convert a Felis document without writing any output. The full
conversion runs, including the referential integrity checks over the
produced record sets, so a document that validates here will also convert
and load without errors.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runValidate(cmd, args[0])
	},
}

func runValidate(cmd *cobra.Command, inputPath string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	bundle, err := convertDocument(inputPath, cfg.Convert.PlainDescriptions)
	if err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("✗ %s", inputPath))
		return err
	}

	fmt.Printf("%s %s\n", color.GreenString("✓"), inputPath)
	fmt.Printf("  schema:      %s\n", bundle.Schemas[0].SchemaName)
	fmt.Printf("  tables:      %d\n", len(bundle.Tables))
	fmt.Printf("  columns:     %d\n", len(bundle.Columns))
	fmt.Printf("  keys:        %d\n", len(bundle.Keys))
	fmt.Printf("  key columns: %d\n", len(bundle.KeyColumns))

	return nil
}
