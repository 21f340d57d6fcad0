package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/linkdeck/linkdeck/internal/scheduler"
)

var dedupCmd = &cobra.Command{
	Use:   "dedup",
	Short: "Run a single duplicate-retirement pass over all users",
	RunE:  runDedup,
}

func init() {
	rootCmd.AddCommand(dedupCmd)
}

func runDedup(cmd *cobra.Command, args []string) error {
	store, log, err := openStore()
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() { _ = store.Close() }()

	sweeper := scheduler.NewDedupSweeper(store, log, 0)
	retired, err := sweeper.Sweep(cmd.Context())
	if err != nil {
		return fmt.Errorf("dedup sweep: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Retired %d duplicate system records\n", retired)
	return nil
}
