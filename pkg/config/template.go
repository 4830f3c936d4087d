// SPDX-License-Identifier: Apache-2.0
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// GenerateDefaultConfig returns a fully commented starter config file.
// Every key is present but commented out, so the file documents the
// available settings without changing any behavior until edited.
func GenerateDefaultConfig() string {
	available := strings.Join(ThemeNames(), ", ")
	return fmt.Sprintf(`# Foundry NixOS installer configuration
# Generated by 'foundry config init'

# Git repository URL for the NixOS dotfiles/flake to install from.
# If not set, the built-in default is used.
# repo:
#   url: "https://github.com/you/nixos-dotfiles.git"
#
#   Armored public key file used to verify the repo's foundry.yaml
#   signature after cloning. Verification is skipped when unset.
#   verify-key: "/etc/foundry/repo-signing.pub"

# Color theme for the installer TUI.
# Available themes: %s
# theme: "catppuccin-mocha"

# Custom title displayed in the installer header.
# branding-title: "MyOrg NixOS Installer"

# Home Manager base modules that are always included for every user
# (never shown in the selection screen).
# hm-base-modules:
#   - home

# ---- Defaults ----
# Pre-fill wizard fields with these values. The user can still change them.

# defaults:
#   hostname: "nixos-desktop"
#   username: "admin"
#   swap-size: "4"

# ---- Install hooks ----
# Scripts run at specific points during installation. Each entry is a
# path to an executable script. The scripts receive environment variables:
#   INSTALLER_HOST_NAME    the configured hostname
#   INSTALLER_BASE_PATH    path to the cloned/local repo
#   INSTALLER_DISK         selected disk path (e.g. /dev/sda)
#   INSTALLER_MOUNT_ROOT   mount root (/mnt)

# hooks:
#   pre-install:
#     - /etc/foundry/hooks/pre-install.sh
#   post-install:
#     - /etc/foundry/hooks/post-install.sh

# ---- Install behavior ----

# install:
#   Pass accept-flake-config to nix during nixos-install, so flakes
#   that set extra nix.conf options build without prompting.
#   accept-flake-config: true
`, available)
}

// InitConfigFile writes the commented starter config to path, creating
// parent directories as needed. An existing file is reported as
// os.ErrExist so callers can decide whether to overwrite.
func InitConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%w: %s", os.ErrExist, path)
	}
	return WriteDefaultConfig(path)
}

// WriteDefaultConfig writes the starter config unconditionally.
func WriteDefaultConfig(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", filepath.Dir(path), err)
	}

	if err := os.WriteFile(path, []byte(GenerateDefaultConfig()), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	return nil
}
