// SPDX-License-Identifier: Apache-2.0
package nixos

import (
	"fmt"
	"os/exec"
)

// Reboot restarts the machine into the freshly installed system.
func Reboot() error {
	if err := exec.Command("reboot").Run(); err != nil {
		return fmt.Errorf("failed to run reboot: %w", err)
	}
	return nil
}
