package cmd

import (
	"fmt"
	"os"

	"github.com/cldixon/moodjournal/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "moodjournal",
	Short: "A journal that reflects back",
	Long: `moodjournal keeps a journal of how you feel. Write an entry, pick a mood,
and get a short AI reflection on what you wrote.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Init(); err != nil {
			return err
		}
		return config.LoadSecrets()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
