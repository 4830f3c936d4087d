// SPDX-License-Identifier: Apache-2.0
package clean

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/Work-Fort/Foundry/pkg/config"
	"github.com/Work-Fort/Foundry/pkg/ui"
	"github.com/spf13/cobra"
)

// NewCleanCmd creates the clean command and its subcommands
func NewCleanCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Clean foundry data",
		Long: `Remove cached repository clones and log files.

The cache holds the dotfiles clone fetched by the install wizard; the
logs are the JSON debug log and the persistent install log. Everything
removed here is recreated on the next run.`,
	}

	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Remove cached repository clones",
		Long: `Remove everything under the cache directory, including the dotfiles
clone the installer fetched. The next install clones afresh.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cleanCache()
		},
	}

	logsCmd := &cobra.Command{
		Use:   "logs",
		Short: "Remove debug and install logs",
		Long: `Remove the JSON debug log from the data directory and the
persistent install log from /tmp.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cleanLogs()
		},
	}

	allCmd := &cobra.Command{
		Use:   "all",
		Short: "Remove cached clones and all logs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cleanAll(force)
		},
	}
	allCmd.Flags().BoolVarP(&force, "force", "f", false, "Skip confirmation prompt")

	cmd.AddCommand(cacheCmd)
	cmd.AddCommand(logsCmd)
	cmd.AddCommand(allCmd)

	return cmd
}

func cleanCache() error {
	log.Debug("Cleaning cache directory")

	theme := config.CurrentTheme
	subtleStyle := theme.SubtleStyle()
	itemStyle := theme.ErrorStyle()

	if _, err := os.Stat(config.GlobalPaths.CacheDir); os.IsNotExist(err) {
		fmt.Println()
		fmt.Println(theme.InfoMessage("Cache directory doesn't exist"))
		return nil
	}

	entries, err := os.ReadDir(config.GlobalPaths.CacheDir)
	if err != nil {
		return fmt.Errorf("failed to read cache directory: %w", err)
	}

	var removedItems []string
	for _, entry := range entries {
		path := filepath.Join(config.GlobalPaths.CacheDir, entry.Name())
		log.Debugf("Removing %s", entry.Name())
		if err := os.RemoveAll(path); err != nil {
			return fmt.Errorf("failed to remove %s: %w", path, err)
		}
		removedItems = append(removedItems, entry.Name())
	}

	fmt.Println()

	if len(removedItems) == 0 {
		fmt.Println(theme.SuccessMessage("Cache empty"))
	} else {
		fmt.Println(theme.SuccessMessage("Cache cleaned"))
		fmt.Println()
		for _, item := range removedItems {
			fmt.Println(subtleStyle.Render("  • ") + itemStyle.Render(item))
		}
	}

	return nil
}

func cleanLogs() error {
	log.Debug("Cleaning log files")

	theme := config.CurrentTheme
	subtleStyle := theme.SubtleStyle()
	itemStyle := theme.ErrorStyle()

	logFiles := []string{
		filepath.Join(config.GlobalPaths.DataDir, "debug.log"),
		config.InstallLogFile,
	}

	var removedItems []string
	for _, path := range logFiles {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}
		log.Debugf("Removing %s", path)
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("failed to remove %s: %w", path, err)
		}
		removedItems = append(removedItems, path)
	}

	fmt.Println()

	if len(removedItems) == 0 {
		fmt.Println(theme.InfoMessage("No log files found"))
	} else {
		fmt.Println(theme.SuccessMessage("Logs removed"))
		fmt.Println()
		for _, item := range removedItems {
			fmt.Println(subtleStyle.Render("  • ") + itemStyle.Render(item))
		}
	}

	return nil
}

func cleanAll(skipConfirm bool) error {
	theme := config.CurrentTheme
	if !skipConfirm {
		prompt := theme.WarningIndicator() + `  This will remove ALL foundry data

This includes:
  • Cached repository clones
  • Debug and install logs

Type 'DELETE' to confirm:`

		confirmed, err := ui.TypedConfirm(prompt, "DELETE")
		if err != nil {
			return err
		}

		if !confirmed {
			return fmt.Errorf("operation cancelled")
		}
	}

	if err := cleanCache(); err != nil {
		return err
	}

	return cleanLogs()
}
