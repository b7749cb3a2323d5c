package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/astro-datalab/dlfelis/internal/storage"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent loads into the local database",
	Long:  `Display the load history, most recent first.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		return runHistory(cmd, limit)
	},
}

func init() {
	historyCmd.Flags().IntP("limit", "l", 20, "Maximum number of loads to display")
}

func runHistory(cmd *cobra.Command, limit int) error {
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

	return runHistoryWithStore(ctx, limit, store)
}

func runHistoryWithStore(ctx context.Context, limit int, store storage.Store) error {
	records, err := store.History(ctx, limit)
	if err != nil {
		return fmt.Errorf("failed to read load history: %w", err)
	}

	if len(records) == 0 {
		fmt.Println("No loads recorded.")
		return nil
	}

	fmt.Printf("%-20s %-24s %7s %8s %6s\n", "LOADED", "SCHEMA", "TABLES", "COLUMNS", "KEYS")

	for _, rec := range records {
		fmt.Printf("%-20s %-24s %7d %8d %6d\n",
			rec.LoadedAt.Format("2006-01-02 15:04:05"),
			rec.SchemaName, rec.Tables, rec.Columns, rec.Keys)
	}

	return nil
}
