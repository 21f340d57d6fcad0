package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/linkdeck/linkdeck/internal/transfer"
)

var (
	exportUser string
	exportOut  string

	importUser string
	importFile string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a user's active records as CSV",
	RunE:  runExport,
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import personal records for a user from a CSV file",
	RunE:  runImport,
}

func init() {
	exportCmd.Flags().StringVar(&exportUser, "user", "", "User ID to export (required)")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "Output file (default: stdout)")
	_ = exportCmd.MarkFlagRequired("user")
	rootCmd.AddCommand(exportCmd)

	importCmd.Flags().StringVar(&importUser, "user", "", "User ID to import into (required)")
	importCmd.Flags().StringVar(&importFile, "file", "", "CSV file to import (required)")
	_ = importCmd.MarkFlagRequired("user")
	_ = importCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(importCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	store, log, err := openStore()
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() { _ = store.Close() }()

	out := cmd.OutOrStdout()
	if exportOut != "" {
		f, err := os.Create(exportOut)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer func() { _ = f.Close() }()
		out = f
	}

	svc := transfer.New(store, log)
	if err := svc.Export(cmd.Context(), exportUser, out); err != nil {
		return fmt.Errorf("exporting records: %w", err)
	}
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	store, log, err := openStore()
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() { _ = store.Close() }()

	f, err := os.Open(importFile)
	if err != nil {
		return fmt.Errorf("opening csv file: %w", err)
	}
	defer func() { _ = f.Close() }()

	svc := transfer.New(store, log)
	summary, err := svc.Import(cmd.Context(), importUser, f)
	if err != nil {
		return fmt.Errorf("importing records: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Import %s: %d created, %d updated, %d rows rejected\n",
		summary.JobID, summary.Created, summary.Updated, len(summary.Errors))
	return nil
}
