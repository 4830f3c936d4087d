// SPDX-License-Identifier: Apache-2.0
package bundle

import (
	"fmt"
	"os"

	"github.com/Work-Fort/Foundry/pkg/config"
	"github.com/Work-Fort/Foundry/pkg/diag"
	"github.com/Work-Fort/Foundry/pkg/gitrepo"
	"github.com/spf13/cobra"
)

// NewBundleCmd creates the bundle command
func NewBundleCmd() *cobra.Command {
	var hostName string

	cmd := &cobra.Command{
		Use:   "bundle [path]",
		Short: "Write a diagnostics bundle",
		Long: `Collect the install log and the generated host configuration into a
tar.xz archive for attaching to a bug report.

The wizard offers the same bundle when an installation fails; this
command produces it on demand afterwards. [path] points at the
configuration repository; when omitted, a checkout is searched for
above the current directory. --host selects which generated host
directory to include.`,
		Args: cobra.MaximumNArgs(1),
		Example: `  # Bundle just the install log
  foundry bundle

  # Bundle the log plus the generated host config
  foundry bundle --host forge /path/to/nixos-config`,
		RunE: func(cmd *cobra.Command, args []string) error {
			basePath := ""
			if len(args) > 0 {
				basePath = args[0]
			} else if cwd, err := os.Getwd(); err == nil {
				if root, ok := gitrepo.FindRepoRoot(cwd); ok {
					basePath = root
				}
			}

			dest, err := diag.WriteBundle(hostName, basePath)
			if err != nil {
				return err
			}

			theme := config.CurrentTheme
			fmt.Println(theme.SuccessMessage(fmt.Sprintf("Diagnostics bundle written to %s", dest)))
			return nil
		},
	}

	cmd.Flags().StringVar(&hostName, "host", "", "Host whose generated configuration to include")

	return cmd
}
