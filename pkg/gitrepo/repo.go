// SPDX-License-Identifier: Apache-2.0

// Package gitrepo locates the configuration repository the installer
// works against and moves it around: staging generated files and copying
// the tree into the installed system.
package gitrepo

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// FindRepoRoot walks up from start looking for a directory holding a
// flake.nix and a modules/ subdirectory. It reports false when the walk
// reaches the filesystem root without a hit.
func FindRepoRoot(start string) (string, bool) {
	current := filepath.Clean(start)
	for {
		flake := filepath.Join(current, "flake.nix")
		modules := filepath.Join(current, "modules")
		if fileExists(flake) && isDir(modules) {
			return current, true
		}
		parent := filepath.Dir(current)
		if parent == current {
			return "", false
		}
		current = parent
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// GitAddAll stages every new and modified file in the repository so the
// flake evaluation sees freshly generated configs.
func GitAddAll(basePath string) error {
	cmd := exec.Command("git", "add", "-A")
	cmd.Dir = basePath
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return fmt.Errorf("git add failed: %s", strings.TrimSpace(stderr.String()))
		}
		return fmt.Errorf("failed to run 'git add': %w", err)
	}
	return nil
}

// CopyToTarget copies the repository contents (including .git) into the
// installed system at /mnt/etc/nixos/ so the machine can keep editing and
// pushing its own configuration after reboot.
func CopyToTarget(basePath string) error {
	if err := runCmd("mkdir", "-p", "/mnt/etc/nixos"); err != nil {
		return err
	}
	return runCmd("cp", "-a", basePath+"/.", "/mnt/etc/nixos/")
}

func runCmd(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if _, ok := err.(*exec.ExitError); !ok {
			return fmt.Errorf("failed to run '%s': %w", name, err)
		}
		msg := fmt.Sprintf("command '%s' failed with exit code %d", name, cmd.ProcessState.ExitCode())
		if s := strings.TrimSpace(stderr.String()); s != "" {
			msg += "\n--- stderr ---\n" + s
		}
		if s := strings.TrimSpace(stdout.String()); s != "" {
			msg += "\n--- stdout ---\n" + s
		}
		return errors.New(msg)
	}
	return nil
}
