package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cldixon/moodjournal/internal/config"
	"github.com/cldixon/moodjournal/internal/history"
	"github.com/cldixon/moodjournal/internal/mood"
	"github.com/cldixon/moodjournal/internal/store"
)

var (
	listMoodFlag   string
	listByDateFlag bool
	listLimitFlag  int
	listFullFlag   bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List past entries, newest first",
	Long: `List past entries, newest first. Filter by mood with --mood, or group
entries under their calendar date with --by-date.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		filter, err := mood.ParseFilter(listMoodFlag)
		if err != nil {
			return err
		}

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

		if len(history.Newest(entries, filter)) == 0 {
			fmt.Println("No entries found. Write one with 'moodjournal new'")
			return nil
		}

		if listByDateFlag {
			shown := 0
			for _, g := range history.ByDate(entries, filter) {
				if listLimitFlag > 0 && shown >= listLimitFlag {
					break
				}
				fmt.Printf("%s (%d %s)\n", g.Title(), len(g.Entries), pluralize(len(g.Entries), "entry", "entries"))
				for _, e := range g.Entries {
					if listLimitFlag > 0 && shown >= listLimitFlag {
						break
					}
					printEntry(e, "  ", "15:04")
					shown++
				}
				fmt.Println()
			}
			return nil
		}

		for i, e := range history.Newest(entries, filter) {
			if listLimitFlag > 0 && i >= listLimitFlag {
				break
			}
			printEntry(e, "", "2006-01-02 15:04:05")
		}
		return nil
	},
}

func printEntry(e *store.Entry, indent, layout string) {
	if !listFullFlag {
		fmt.Printf("%s#%d %s | %s | %s\n", indent, e.ID, e.Timestamp.Local().Format(layout), e.Mood, truncate(e.Text, 60))
		return
	}

	fmt.Printf("%s#%d %s | %s\n", indent, e.ID, e.Timestamp.Local().Format(layout), e.Mood)
	fmt.Printf("%s%s\n", indent, e.Text)
	if e.Reflection != "" {
		fmt.Printf("%s💬 %s\n", indent, e.Reflection)
	}
	fmt.Println()
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().StringVar(&listMoodFlag, "mood", "", "Only show entries with this mood (default All)")
	listCmd.Flags().BoolVar(&listByDateFlag, "by-date", false, "Group entries by calendar date")
	listCmd.Flags().IntVarP(&listLimitFlag, "limit", "n", 10, "Maximum entries to show (0 for all)")
	listCmd.Flags().BoolVar(&listFullFlag, "full", false, "Show full text and reflections")
}
