// SPDX-License-Identifier: Apache-2.0
package install

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Work-Fort/Foundry/cmd/cmdutil"
	"github.com/Work-Fort/Foundry/pkg/config"
	"github.com/Work-Fort/Foundry/pkg/gitrepo"
	"github.com/Work-Fort/Foundry/pkg/installer"
	"github.com/Work-Fort/Foundry/pkg/ui"
	"github.com/spf13/cobra"
)

// DefaultRepoURL is cloned when no local checkout is found and no URL is
// configured via flag, environment, or config file.
const DefaultRepoURL = "https://github.com/Work-Fort/nixos-dotfiles.git"

// NewInstallCmd creates the install command
func NewInstallCmd() *cobra.Command {
	var repoURL string

	cmd := &cobra.Command{
		Use:   "install [path]",
		Short: "Run the NixOS installation wizard",
		Long: `Run the interactive NixOS installation wizard.

The wizard needs a flake-based configuration repository to work against.
It is located in this order:

  1. Explicit [path] argument pointing at a local checkout
  2. A checkout found by walking up from the current directory
     (a directory holding flake.nix and modules/)
  3. A checkout found next to the foundry executable
  4. A fresh clone of --repo, FOUNDRY_REPO_URL, or the configured repo.url

The wizard then walks through host selection, users, disk layout, and
drives nixos-install to completion. Requires an interactive terminal.`,
		Args: cobra.MaximumNArgs(1),
		Example: `  # Use the checkout in the current directory
  foundry install

  # Use an explicit checkout
  foundry install /path/to/nixos-config

  # Clone a specific repository first
  foundry install --repo https://github.com/you/nixos-dotfiles.git`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmdutil.IsInteractive() {
				return fmt.Errorf("the install wizard requires an interactive terminal and use-tui enabled")
			}

			opts, err := resolveSource(args, repoURL)
			if err != nil {
				return err
			}

			w := installer.New(opts)
			err = ui.RunInstallWizard(w)

			// Print the log location after the TUI exits so the user can review
			if _, statErr := os.Stat(config.InstallLogFile); statErr == nil {
				fmt.Fprintf(os.Stderr, "Installation log saved to: %s\n", config.InstallLogFile)
			}

			if err == ui.ErrUserCancelled {
				return nil
			}
			return err
		},
	}

	cmd.Flags().StringVar(&repoURL, "repo", "", "Repository URL to clone when no local checkout is found")

	return cmd
}

// resolveSource decides where the wizard's repository comes from: an
// explicit local path, a checkout discovered near the process, or a URL
// to clone into the cache.
func resolveSource(args []string, repoFlag string) (installer.Options, error) {
	if len(args) > 0 {
		path, err := filepath.Abs(args[0])
		if err != nil {
			return installer.Options{}, fmt.Errorf("invalid repository path: %w", err)
		}
		info, err := os.Stat(path)
		if err != nil {
			return installer.Options{}, fmt.Errorf("repository path does not exist: %s", path)
		}
		if !info.IsDir() {
			return installer.Options{}, fmt.Errorf("repository path is not a directory: %s", path)
		}
		return installer.Options{BasePath: path}, nil
	}

	if cwd, err := os.Getwd(); err == nil {
		if root, ok := gitrepo.FindRepoRoot(cwd); ok {
			return installer.Options{BasePath: root}, nil
		}
	}
	if exe, err := os.Executable(); err == nil {
		if root, ok := gitrepo.FindRepoRoot(filepath.Dir(exe)); ok {
			return installer.Options{BasePath: root}, nil
		}
	}

	url := repoFlag
	if url == "" {
		url = config.GetRepoURL()
	}
	if url == "" {
		url = DefaultRepoURL
	}
	return installer.Options{RepoURL: url}, nil
}
