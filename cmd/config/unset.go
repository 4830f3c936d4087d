// SPDX-License-Identifier: Apache-2.0
package config

import (
	"fmt"

	"github.com/Work-Fort/Foundry/pkg/config"
	"github.com/spf13/cobra"
)

func newUnsetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "unset [key]",
		Short: "Remove configuration value",
		Long: `Remove a configuration key from a config file.

Keys use dot notation for nested values (e.g., defaults.hostname).

**Note:**
  - Removing a parent key removes all nested values (e.g., unsetting 'defaults' removes 'defaults.hostname' and all other children)
  - Environment variables and defaults will still apply after removal`,
		Args: cobra.ExactArgs(1),
		Example: `  # Remove from repo config
  foundry config unset branding-title
  foundry config unset hm-base-modules

  # Remove from user config
  foundry config unset --global repo.url

  # Remove nested value
  foundry config unset defaults.hostname

  # Remove parent (removes all children)
  foundry config unset defaults`,
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]

			// Determine scope
			scope := config.ScopeRepo
			if globalFlag {
				scope = config.ScopeUser
			}

			// Call business logic
			if err := config.UnsetConfigValue(key, scope); err != nil {
				return err
			}

			// Show success message
			scopeName := "repo"
			configFile := config.LocalConfigFile + config.DefaultConfigExt
			if globalFlag {
				scopeName = "global"
				configFile = "~/.config/foundry/" + config.ConfigFileName + config.DefaultConfigExt
			}
			fmt.Printf("Removed %s from %s config (%s)\n", key, scopeName, configFile)

			return nil
		},
	}

	addGlobalFlag(cmd)
	return cmd
}
