// SPDX-License-Identifier: Apache-2.0
package nixos

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// chpasswdInTarget pipes one name:password line to chpasswd running
// inside the installed target. Going through stdin keeps the password out
// of /proc/<pid>/cmdline.
func chpasswdInTarget(entry string) error {
	cmd := exec.Command("nixos-enter", "--root", "/mnt", "--", "chpasswd")
	cmd.Stdin = strings.NewReader(entry + "\n")

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return errors.New("chpasswd failed in target")
		}
		return fmt.Errorf("failed to run nixos-enter: %w", err)
	}
	return nil
}

// SetRootPassword sets the root password in the installed target.
func SetRootPassword(password string) error {
	return chpasswdInTarget("root:" + password)
}

// SetUserPassword sets one user's password in the installed target.
func SetUserPassword(username, password string) error {
	return chpasswdInTarget(username + ":" + password)
}
