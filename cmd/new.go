package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/cldixon/moodjournal/internal/config"
	"github.com/cldixon/moodjournal/internal/entry"
	"github.com/cldixon/moodjournal/internal/mood"
)

var (
	moodFlag string
	textFlag string
)

var newCmd = &cobra.Command{
	Use:   "new",
	Short: "Write a new journal entry",
	Long: `Write a journal entry, get a reflection on it and save both.

The entry text comes from --text, or from stdin when --text is omitted:

  moodjournal new --mood sad --text "Rough day."
  echo "Slept well." | moodjournal new --mood happy`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		m, err := mood.Parse(moodFlag)
		if err != nil {
			return err
		}

		text := textFlag
		if !cmd.Flags().Changed("text") {
			data, err := io.ReadAll(os.Stdin)
			if err != nil {
				return fmt.Errorf("failed to read entry from stdin: %w", err)
			}
			text = string(data)
		}

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		journal, db, err := openJournal(ctx, cfg, cliLogger())
		if err != nil {
			return err
		}
		defer db.Close()

		fmt.Println("Saving entry and asking for a reflection...")

		res, err := journal.Submit(ctx, m, text)
		if errors.Is(err, entry.ErrEmptyText) {
			return fmt.Errorf("please write something before saving")
		}
		if err != nil {
			return err
		}

		if res.ReflectionErr != nil {
			fmt.Fprintf(os.Stderr, "AI reflection failed: %v\n", res.ReflectionErr)
		}

		fmt.Println()
		fmt.Println("---")
		fmt.Println(res.Entry.Reflection)
		fmt.Println("---")
		fmt.Printf("\nSaved as entry #%d (%s)\n", res.Entry.ID, res.Entry.Mood)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(newCmd)
	newCmd.Flags().StringVarP(&moodFlag, "mood", "m", "", "Mood: "+fmt.Sprint(mood.Labels()))
	newCmd.Flags().StringVarP(&textFlag, "text", "t", "", "Entry text (reads stdin when omitted)")
	newCmd.MarkFlagRequired("mood")
}
