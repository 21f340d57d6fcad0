package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/linkdeck/linkdeck/internal/catalog"
	"github.com/linkdeck/linkdeck/internal/domain"
	"github.com/linkdeck/linkdeck/internal/sources/seed"
)

var publishFile string

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Publish a new catalog version from a seed YAML file",
	RunE:  runPublish,
}

func init() {
	publishCmd.Flags().StringVar(&publishFile, "file", "", "Path to the seed YAML file (required)")
	_ = publishCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(publishCmd)
}

func runPublish(cmd *cobra.Command, args []string) error {
	store, log, err := openStore()
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() { _ = store.Close() }()

	file, err := seed.NewLoader(publishFile).Load()
	if err != nil {
		return fmt.Errorf("loading seed file: %w", err)
	}
	entries, err := seed.NewMapper().MapEntries(file)
	if err != nil {
		return fmt.Errorf("mapping seed entries: %w", err)
	}

	cat := catalog.New(store, nil, log)
	ctx := cmd.Context()

	var baseVersion int64
	if active, err := cat.Active(ctx); err == nil {
		baseVersion = active.Version
	} else if !errors.Is(err, domain.ErrNoActiveCatalog) {
		return fmt.Errorf("reading active catalog: %w", err)
	}

	snap, err := cat.Publish(ctx, baseVersion, entries)
	if err != nil {
		return fmt.Errorf("publishing catalog: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Published catalog version %d (%d entries)\n", snap.Version, len(snap.Entries))
	return nil
}
