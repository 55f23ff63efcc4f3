package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cldixon/moodjournal/internal/companion"
	"github.com/cldixon/moodjournal/internal/config"
)

var companionCmd = &cobra.Command{
	Use:   "companion",
	Short: "Manage reflection companions",
	Long: `Create, list, and delete companions. A companion sets the voice used for
reflections. Pick one with 'companion:' in config.yaml.`,
}

var companionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available companions",
	RunE: func(cmd *cobra.Command, args []string) error {
		names, err := companion.List()
		if err != nil {
			return fmt.Errorf("failed to list companions: %w", err)
		}

		if len(names) == 0 {
			fmt.Println("No companions found.")
			fmt.Println("Create one with 'moodjournal companion create <name>'")
			return nil
		}

		active := ""
		if cfg, err := config.Load(); err == nil {
			active = cfg.Companion
		}

		fmt.Println("Available companions:")
		for _, name := range names {
			marker := " "
			if name == active {
				marker = "*"
			}
			c, err := companion.Get(name)
			if err != nil {
				fmt.Printf(" %s %s\n", marker, name)
				continue
			}
			fmt.Printf(" %s %s - %s\n", marker, name, truncate(c.Description, 50))
		}
		return nil
	},
}

var companionCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a new companion",
	Long:  `Create a new companion file from a template for you to edit.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := companion.Create(args[0])
		if err != nil {
			return err
		}

		fmt.Printf("Created companion file: %s\n", path)
		fmt.Println("Edit this file to describe the companion's voice.")
		return nil
	},
}

var companionDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a companion",
	Long:  `Delete a companion file. Journal entries are never deleted.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]

		if _, err := companion.Get(name); err != nil {
			return err
		}

		fmt.Printf("This will delete companion '%s'.\n", name)
		if cfg, err := config.Load(); err == nil && cfg.Companion == name {
			fmt.Println("It is the active companion; reflections will use the plain prompt until you pick another.")
		}
		fmt.Print("Type 'yes' to confirm: ")

		reader := bufio.NewReader(os.Stdin)
		input, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
		if strings.TrimSpace(strings.ToLower(input)) != "yes" {
			fmt.Println("Aborted.")
			return nil
		}

		if err := companion.Delete(name); err != nil {
			return err
		}
		fmt.Printf("Deleted companion '%s'.\n", name)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(companionCmd)
	companionCmd.AddCommand(companionListCmd)
	companionCmd.AddCommand(companionCreateCmd)
	companionCmd.AddCommand(companionDeleteCmd)
}
