// SPDX-License-Identifier: Apache-2.0
package pipeline

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// RunHook executes one pre- or post-install hook script with the installer
// context exposed through environment variables:
//
//	INSTALLER_HOST_NAME   host being installed
//	INSTALLER_BASE_PATH   repository root the flake builds from
//	INSTALLER_DISK        target disk device path
//	INSTALLER_MOUNT_ROOT  always /mnt
//
// It returns the hook's combined output, stdout first then stderr. A
// nonzero exit is an error carrying that combined output, so the operator
// sees what the hook printed before it died.
func RunHook(hook, hostName, basePath, diskPath string) (string, error) {
	cmd := exec.Command(hook)
	cmd.Env = append(os.Environ(),
		"INSTALLER_HOST_NAME="+hostName,
		"INSTALLER_BASE_PATH="+basePath,
		"INSTALLER_DISK="+diskPath,
		"INSTALLER_MOUNT_ROOT=/mnt",
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	combined := stdout.String() + stderr.String()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", fmt.Errorf("hook '%s' failed with exit code %d\n%s",
				hook, exitErr.ExitCode(), strings.TrimSpace(combined))
		}
		return "", fmt.Errorf("failed to run hook '%s': %w", hook, err)
	}
	return combined, nil
}
