package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/astro-datalab/dlfelis/internal/storage"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Display statistics for the local database",
	Long:  `Show record counts, database size, and the time of the last load.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runStats(cmd)
	},
}

func runStats(cmd *cobra.Command) error {
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

	return runStatsWithStore(ctx, store)
}

func runStatsWithStore(ctx context.Context, store storage.Store) error {
	stats, err := store.GetStats(ctx)
	if err != nil {
		return fmt.Errorf("failed to get statistics: %w", err)
	}

	fmt.Printf("Database Statistics\n")
	fmt.Printf("==================\n\n")

	fmt.Printf("Schemas: %d\n", stats.Schemas)
	fmt.Printf("Tables: %d\n", stats.Tables)
	fmt.Printf("Columns: %d\n", stats.Columns)
	fmt.Printf("Keys: %d\n", stats.Keys)
	fmt.Printf("Database Size: %.2f MB\n", stats.DatabaseSizeMB)

	if !stats.LastLoadTime.IsZero() {
		fmt.Printf("Last Load: %s\n", stats.LastLoadTime.Format("2006-01-02 15:04:05"))
	} else {
		fmt.Printf("Last Load: Never\n")
	}

	return nil
}
