// SPDX-License-Identifier: Apache-2.0
package nixos

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// GenerateHardwareConfig asks nixos-generate-config for the hardware
// configuration of the target mounted at /mnt without writing any files,
// so the content can be committed into the host directory instead.
func GenerateHardwareConfig() (string, error) {
	cmd := exec.Command("nixos-generate-config", "--root", "/mnt", "--show-hardware-config")
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", fmt.Errorf("nixos-generate-config failed (exit %d):\n%s",
				exitErr.ExitCode(), strings.TrimSpace(stderr.String()))
		}
		return "", fmt.Errorf("failed to run nixos-generate-config: %w", err)
	}
	return stdout.String(), nil
}
