// SPDX-License-Identifier: Apache-2.0
package config

import (
	"github.com/spf13/cobra"
)

var (
	// globalFlag determines whether to operate on user config vs repo config
	globalFlag bool
)

// NewConfigCmd creates the config command and its subcommands
func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage foundry configuration",
		Long: `Manage foundry configuration settings.

Configuration precedence (highest to lowest):
  1. Environment variables (FOUNDRY_*)
  2. Repo config (./foundry.yaml)
  3. User config (~/.config/foundry/config.yaml)
  4. System config (/etc/foundry/config.yaml)
  5. Defaults

By default, config commands operate on repo config (./foundry.yaml).
Use --global to operate on user config instead.`,
		Example: `  # Set repo config (committed with the dotfiles)
  foundry config set branding-title "Forge Installer"
  foundry config set hm-base-modules shell,git

  # Set global config (user preferences)
  foundry config set --global theme nord
  foundry config set --global use-tui false

  # Get configuration value
  foundry config get theme

  # Remove configuration value
  foundry config unset branding-title
  foundry config unset --global theme

  # List all configuration
  foundry config list`,
	}

	// Add subcommands
	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newUnsetCmd())
	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newSchemaCmd())
	cmd.AddCommand(newInitCmd())

	return cmd
}

// addGlobalFlag adds the --global flag to a command
func addGlobalFlag(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&globalFlag, "global", false, "Operate on user config instead of repo config")
}
