package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/astro-datalab/dlfelis/internal/storage"
)

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear the local database",
	Long:  `Remove all loaded schemas and the load history. This action requires confirmation.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		force, _ := cmd.Flags().GetBool("force")
		return runClear(cmd, force)
	},
}

func init() {
	clearCmd.Flags().BoolP("force", "f", false, "Skip confirmation prompt")
}

func runClear(cmd *cobra.Command, force bool) error {
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

	return runClearWithStore(ctx, force, store)
}

func runClearWithStore(ctx context.Context, force bool, store storage.Store) error {
	// Get current stats to show what will be deleted
	stats, err := store.GetStats(ctx)
	if err != nil {
		return fmt.Errorf("failed to get statistics: %w", err)
	}

	if stats.Schemas == 0 {
		fmt.Println("Database is already empty.")
		return nil
	}

	// Show what will be deleted
	fmt.Printf("This will delete:\n")
	fmt.Printf("  • %d schemas\n", stats.Schemas)
	fmt.Printf("  • %d tables\n", stats.Tables)
	fmt.Printf("  • %d columns\n", stats.Columns)
	fmt.Printf("  • %d keys\n", stats.Keys)

	// Confirmation prompt (unless force flag is used)
	if !force {
		fmt.Printf("\nAre you sure you want to clear all data? This action cannot be undone.\n")
		fmt.Printf("Type 'yes' to confirm: ")

		reader := bufio.NewReader(os.Stdin)
		response, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}

		response = strings.TrimSpace(strings.ToLower(response))
		if response != "yes" {
			fmt.Println("Operation cancelled.")
			return nil
		}
	}

	// Clear the database
	if err := store.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear database: %w", err)
	}

	fmt.Println("Database cleared successfully.")
	return nil
}
