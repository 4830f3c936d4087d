// SPDX-License-Identifier: Apache-2.0
package config

import (
	"fmt"

	"github.com/Work-Fort/Foundry/pkg/config"
	"github.com/spf13/cobra"
)

func newGetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get [key]",
		Short: "Get configuration value",
		Long: `Get a configuration value and show its source.

The source indicates where the value comes from in precedence order:
  - ENV: Environment variable (FOUNDRY_*)
  - Repo: Repo config file (./foundry.yaml)
  - User: User config file (~/.config/foundry/config.yaml)
  - Default: Built-in default value`,
		Args: cobra.ExactArgs(1),
		Example: `  # Get a configuration value
  foundry config get theme

  # Get nested value
  foundry config get defaults.hostname

  # Output shows value and source:
  # use-tui = true (from ENV: FOUNDRY_USE_TUI)
  # branding-title = Forge Installer (from ./foundry.yaml)
  # theme = nord (from ~/.config/foundry/config.yaml)
  # log-level = debug (default)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]

			// Call business logic
			configValue, err := config.GetConfigValue(key)
			if err != nil {
				return err
			}

			// Display value with source
			fmt.Printf("%s = %v (%s)\n", configValue.Key, configValue.Value, configValue.Source)

			return nil
		},
	}

	return cmd
}
