// SPDX-License-Identifier: Apache-2.0

// Package nixos wraps the NixOS toolchain the installer drives against
// the mounted target: nixos-generate-config, nixos-install, and
// nixos-enter.
package nixos

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Install runs nixos-install for flakeRef, streaming each non-empty
// stderr line into logLine as it appears. Nix writes all build output to
// stderr; stdout is discarded. Root password handling is skipped here and
// applied afterwards via chpasswd.
func Install(flakeRef string, acceptFlakeConfig bool, logLine func(string)) error {
	cmd := exec.Command("nixos-install", "--flake", flakeRef, "--no-root-passwd")
	if acceptFlakeConfig {
		cmd.Env = append(os.Environ(), "NIX_CONFIG=accept-flake-config = true")
	}

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("failed to run nixos-install: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to run nixos-install: %w", err)
	}

	scanner := bufio.NewScanner(stderr)
	// Nix trace lines can get very long.
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			logLine(line)
		}
	}

	if err := cmd.Wait(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return fmt.Errorf("nixos-install failed with exit code %d", exitErr.ExitCode())
		}
		return fmt.Errorf("failed to wait for nixos-install: %w", err)
	}
	return nil
}
