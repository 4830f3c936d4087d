// SPDX-License-Identifier: Apache-2.0
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Work-Fort/Foundry/cmd/cmdutil"
	"github.com/Work-Fort/Foundry/pkg/config"
	"github.com/Work-Fort/Foundry/pkg/ui"
	"github.com/spf13/cobra"
)

func newInitCmd() *cobra.Command {
	var systemFlag bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a commented starter config file",
		Long: `Write a starter config file with every available key documented
and commented out.

By default the file goes to the user config path
(~/.config/foundry/config.yaml). With --system it goes to
/etc/foundry/config.yaml instead, which is useful for baking a
configuration into a live installer ISO.

An existing file is only replaced after confirmation.`,
		Args: cobra.NoArgs,
		Example: `  # Create a personal starter config
  foundry config init

  # Create the system config for an installer ISO
  sudo foundry config init --system`,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := filepath.Join(config.GlobalPaths.ConfigDir, config.ConfigFileName+config.DefaultConfigExt)
			if systemFlag {
				path = filepath.Join(config.SystemConfigDir, config.ConfigFileName+config.DefaultConfigExt)
			}

			err := config.InitConfigFile(path)
			if errors.Is(err, os.ErrExist) && cmdutil.IsInteractive() {
				confirmed, cerr := ui.Confirm(fmt.Sprintf("Config file already exists at %s. Overwrite it?", path))
				if cerr != nil {
					return cerr
				}
				if !confirmed {
					return fmt.Errorf("operation cancelled")
				}
				err = config.WriteDefaultConfig(path)
			}
			if err != nil {
				return err
			}

			theme := config.CurrentTheme
			fmt.Println(theme.SuccessMessage(fmt.Sprintf("Created config at %s", path)))
			fmt.Println()
			fmt.Println("Edit this file to set your repository URL, theme, and other options.")

			return nil
		},
	}

	cmd.Flags().BoolVar(&systemFlag, "system", false, "Write to /etc/foundry instead of the user config directory")

	return cmd
}
