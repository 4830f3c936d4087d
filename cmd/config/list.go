// SPDX-License-Identifier: Apache-2.0
package config

import (
	"fmt"

	"github.com/Work-Fort/Foundry/pkg/config"
	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List all configuration values",
		Long: `List all configuration values with their sources.

Shows all configuration keys currently set, along with their values
and where they come from (ENV, repo config, user config, or default).

Output format: key = value (source)`,
		Example: `  # List all configuration
  foundry config list

  # Example output:
  # branding-title = Forge Installer (from ./foundry.yaml)
  # defaults.hostname = forge (from ./foundry.yaml)
  # install.accept-flake-config = true (default)
  # log-level = debug (default)
  # theme = nord (from ~/.config/foundry/config.yaml)
  # use-tui = false (from ENV: FOUNDRY_USE_TUI)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Call business logic
			values, err := config.ListConfigValues()
			if err != nil {
				return err
			}

			if len(values) == 0 {
				fmt.Println("No configuration set")
				return nil
			}

			// Display each key with its source
			for _, cv := range values {
				fmt.Printf("%s = %v (%s)\n", cv.Key, cv.Value, cv.Source)
			}

			// Show configuration precedence info
			fmt.Println("\n" + config.CurrentTheme.SubtleStyle().Render("Configuration precedence: ENV > repo config > user config > system config > defaults"))

			return nil
		},
	}

	return cmd
}
