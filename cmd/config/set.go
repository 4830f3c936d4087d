// SPDX-License-Identifier: Apache-2.0
package config

import (
	"fmt"

	"github.com/Work-Fort/Foundry/pkg/config"
	"github.com/spf13/cobra"
)

func newSetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set [key] [value]",
		Short: "Set configuration value",
		Long: `Set a configuration key to a value.

Keys use dot notation for nested values (e.g., defaults.hostname).
List keys (hm-base-modules, hooks.*) take comma-separated values.

Boolean values support natural language:
  - true:  true, yes, on, enable, enabled
  - false: false, no, off, disable, disabled

Numeric values are automatically detected and typed.

Some keys are restricted by scope: repo.url and repo.verify-key can
only be set in user config, since a cloned repo must not choose its
own origin or vouch for its own signature.`,
		Args: cobra.ExactArgs(2),
		Example: `  # Set boolean values (multiple formats supported)
  foundry config set install.accept-flake-config true
  foundry config set --global use-tui off

  # Set string values
  foundry config set branding-title "Forge Installer"
  foundry config set defaults.hostname forge

  # Set list values (comma-separated)
  foundry config set hm-base-modules shell,git,editors

  # Set nested values with dot notation
  foundry config set defaults.swap-size 8

  # Set in user config instead of repo
  foundry config set --global repo.url https://github.com/you/nixos-dotfiles.git`,
		RunE: func(cmd *cobra.Command, args []string) error {
			key, value := args[0], args[1]

			// Determine scope
			scope := config.ScopeRepo
			if globalFlag {
				scope = config.ScopeUser
			}

			// Call business logic
			if err := config.SetConfigValue(key, value, scope); err != nil {
				return err
			}

			// Show success message
			scopeName := "repo"
			configFile := config.LocalConfigFile + config.DefaultConfigExt
			if globalFlag {
				scopeName = "global"
				configFile = "~/.config/foundry/" + config.ConfigFileName + config.DefaultConfigExt
			}
			fmt.Printf("Set %s = %s (%s: %s)\n", key, value, scopeName, configFile)

			return nil
		},
	}

	addGlobalFlag(cmd)
	return cmd
}
