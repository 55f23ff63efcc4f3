package cmd

import (
	"context"
	"fmt"

	"github.com/cldixon/moodjournal/internal/config"
	"github.com/cldixon/moodjournal/internal/store"
	"github.com/cldixon/moodjournal/internal/tui"
	"github.com/spf13/cobra"
)

var openCmd = &cobra.Command{
	Use:   "open",
	Short: "Open the interactive journal viewer",
	Long: `Opens your journal in an interactive terminal UI to browse entries and
their reflections. Press m to cycle the mood filter.`,
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

		return tui.Run(entries)
	},
}

func init() {
	rootCmd.AddCommand(openCmd)
}
