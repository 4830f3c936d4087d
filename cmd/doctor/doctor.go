// SPDX-License-Identifier: Apache-2.0
package doctor

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/Work-Fort/Foundry/pkg/config"
	"github.com/hashicorp/go-version"
	"github.com/spf13/cobra"
)

// minGitVersion is the oldest git whose clone --progress output the
// wizard's percentage parser understands.
const minGitVersion = "2.20"

var minGit = version.Must(version.NewVersion(minGitVersion))

type toolCheck struct {
	name   string
	reason string
}

var requiredTools = []toolCheck{
	{"git", "clones the configuration repository"},
	{"lsblk", "discovers target disks"},
	{"wipefs", "clears old filesystem signatures"},
	{"parted", "writes the GPT partition table"},
	{"mkfs.fat", "formats the EFI system partition"},
	{"mkfs.ext4", "formats ext4 partitions"},
	{"mkfs.btrfs", "formats btrfs partitions"},
	{"mkswap", "initializes swap partitions"},
	{"swapon", "activates swap during install"},
	{"mount", "mounts the target filesystems"},
	{"nixos-generate-config", "detects hardware configuration"},
	{"nixos-install", "builds and installs the system"},
	{"nixos-enter", "sets passwords in the installed system"},
}

var optionalTools = []toolCheck{
	{"fd", "speeds up module discovery, find is the fallback"},
	{"mkpasswd", "pre-hashes passwords in custom hook scripts"},
}

// NewDoctorCmd creates the doctor command
func NewDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check that the environment can run an installation",
		Long: `Check that every external tool the installation pipeline shells out
to is available before committing to an install.

Required tools cover cloning, partitioning, formatting, mounting, and
the nixos-* toolchain. Optional tools improve the experience but have
fallbacks. The command exits nonzero when any required tool is missing,
so it can gate scripted installer images.`,
		Args: cobra.NoArgs,
		Example: `  # Preflight the current environment
  foundry doctor

  # Gate an install script on the result
  foundry doctor && foundry install`,
		RunE: func(cmd *cobra.Command, args []string) error {
			theme := config.CurrentTheme
			subtle := theme.SubtleStyle()

			fmt.Println()
			fmt.Println("Required tools:")
			missing := 0
			for _, tool := range requiredTools {
				if _, err := exec.LookPath(tool.name); err != nil {
					fmt.Printf("  %s %s %s\n", theme.ErrorIndicator(), tool.name, subtle.Render("- "+tool.reason))
					missing++
					continue
				}
				if tool.name == "git" {
					ver, err := gitVersion()
					if err != nil {
						fmt.Printf("  %s %v\n", theme.ErrorIndicator(), err)
						missing++
						continue
					}
					fmt.Printf("  %s git %s\n", theme.CompleteIndicator(), ver)
					continue
				}
				fmt.Printf("  %s %s\n", theme.CompleteIndicator(), tool.name)
			}

			fmt.Println()
			fmt.Println("Optional tools:")
			for _, tool := range optionalTools {
				if _, err := exec.LookPath(tool.name); err != nil {
					fmt.Printf("  %s %s %s\n", theme.PendingIndicator(), tool.name, subtle.Render("- "+tool.reason))
					continue
				}
				fmt.Printf("  %s %s\n", theme.CompleteIndicator(), tool.name)
			}

			fmt.Println()
			if os.Geteuid() != 0 {
				fmt.Println(theme.WarningMessage("Not running as root. The install itself must run as root."))
				fmt.Println()
			}

			if missing > 0 {
				return fmt.Errorf("%d required tool(s) missing or unusable", missing)
			}

			fmt.Println(theme.SuccessMessage("Environment looks ready"))
			return nil
		},
	}
}

func gitVersion() (string, error) {
	out, err := exec.Command("git", "--version").Output()
	if err != nil {
		return "", fmt.Errorf("git --version failed: %w", err)
	}
	return parseGitVersion(string(out))
}

// parseGitVersion extracts the release number from `git --version`
// output and rejects anything older than minGitVersion.
func parseGitVersion(raw string) (string, error) {
	fields := strings.Fields(raw)
	if len(fields) < 3 {
		return "", fmt.Errorf("unrecognized git version output: %q", strings.TrimSpace(raw))
	}

	v, err := version.NewVersion(fields[2])
	if err != nil {
		return "", fmt.Errorf("unrecognized git version %q", fields[2])
	}
	if v.LessThan(minGit) {
		return "", fmt.Errorf("git %s is too old (need at least %s)", fields[2], minGitVersion)
	}

	return fields[2], nil
}
