package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cldixon/moodjournal/internal/config"
	"github.com/cldixon/moodjournal/internal/export"
	"github.com/cldixon/moodjournal/internal/store"
)

var exportOutFlag string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the journal as an RTF document",
	Long: `Write every entry, oldest first, to an RTF document. Use --out - to
write to stdout.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		db, err := store.Open(ctx, cfg, cliLogger())
		if err != nil {
			return fmt.Errorf("failed to open %s store: %w", cfg.Storage.Backend, err)
		}
		defer db.Close()

		entries, err := db.All(ctx)
		if err != nil {
			return fmt.Errorf("failed to load entries: %w", err)
		}

		if exportOutFlag == "-" {
			return export.WriteRTF(os.Stdout, entries)
		}

		if err := os.WriteFile(exportOutFlag, export.RTF(entries), 0644); err != nil {
			return fmt.Errorf("failed to write export: %w", err)
		}
		fmt.Printf("Exported %d %s to %s\n", len(entries), pluralize(len(entries), "entry", "entries"), exportOutFlag)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&exportOutFlag, "out", "o", export.Filename, "Output file, or - for stdout")
}
