// linkdeckctl is a maintenance CLI that talks to the database directly,
// bypassing the HTTP API. It covers operator tasks: publishing a catalog
// from a seed file, running a dedup pass, and CSV import/export.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/linkdeck/linkdeck/internal/logger"
	"github.com/linkdeck/linkdeck/internal/store/sqlite"
)

var dbDSN string

var rootCmd = &cobra.Command{
	Use:           "linkdeckctl",
	Short:         "Maintenance tooling for the linkdeck catalog and records",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbDSN, "db", envOr("LINKDECK_DATABASE_URL", "file:linkdeck.db"), "sqlite DSN")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func openStore() (*sqlite.Store, logger.Logger, error) {
	log := logger.New(envOr("LINKDECK_LOG_LEVEL", "info"), true)
	store, err := sqlite.New(dbDSN)
	if err != nil {
		return nil, nil, err
	}
	return store, log, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
