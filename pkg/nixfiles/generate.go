// SPDX-License-Identifier: Apache-2.0
package nixfiles

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Generated files keep every discovered module visible: unselected ones
// are written as commented imports instead of being omitted, so enabling
// one later is a matter of removing the comment marker.

const hostConfigTemplate = `{ inputs, self, ... }:
{
  flake.nixosConfigurations.%s = inputs.nixpkgs.lib.nixosSystem {
    specialArgs = { inherit inputs self; };
    modules = [
%s
    ];
  };
}
`

const userConfigTemplate = `{ ... }:
{
  flake.nixosModules.%s =
    {
      pkgs,
      self,
      inputs,
      ...
    }:
    {
      users.users.%s = {
        isNormalUser = true;
        extraGroups = [ "wheel" ];
      };
      home-manager.users.%s.imports = [
%s
      ];
    };
}
`

func modLine(name string, selected bool) string {
	if selected {
		return "      self.nixosModules." + name
	}
	return "      # self.nixosModules." + name
}

func userImportLine(name string, selected bool) string {
	if selected {
		return "        self.homeManagerModules." + name
	}
	return "        # self.homeManagerModules." + name
}

// GenerateHostConfig renders the configuration.nix for a new custom host.
// Each user contributes a <host>-user-<user> module import, and the
// home-manager glue module is loaded once when any users exist.
func GenerateHostConfig(hostName string, systemModules, packageModules []Module, users []string) string {
	lines := []string{"      ./_hardware-configuration.nix"}

	if len(systemModules) > 0 {
		lines = append(lines, "")
	}
	for _, m := range systemModules {
		lines = append(lines, modLine(m.Name, m.Selected))
	}

	if len(packageModules) > 0 {
		lines = append(lines, "")
	}
	for _, m := range packageModules {
		lines = append(lines, modLine(m.Name, m.Selected))
	}

	if len(users) > 0 {
		lines = append(lines, "", "      self.nixosModules.home-manager")
		for _, user := range users {
			lines = append(lines, fmt.Sprintf("      self.nixosModules.%s-user-%s", hostName, user))
		}
	}

	lines = append(lines,
		"      {",
		fmt.Sprintf("        networking.hostName = %q;", hostName),
		"      }",
	)

	return fmt.Sprintf(hostConfigTemplate, hostName, strings.Join(lines, "\n"))
}

// GenerateUserConfig renders a user-<username>.nix defining both the
// system account and its Home Manager imports in a single nixosModule
// named <host>-user-<user>.
//
// The home module is always imported first (it sets home.stateVersion),
// followed by any configured base modules, then the per-user selections.
// Passwords are never embedded here; they are applied to the installed
// target via chpasswd.
func GenerateUserConfig(hostName, username string, userModules, packageModules []Module, baseModules []string) string {
	imports := []string{userImportLine("home", true)}

	for _, base := range baseModules {
		if base != "home" {
			imports = append(imports, userImportLine(base, true))
		}
	}
	for _, m := range userModules {
		imports = append(imports, userImportLine(m.Name, m.Selected))
	}
	for _, m := range packageModules {
		imports = append(imports, userImportLine(m.Name, m.Selected))
	}

	moduleName := fmt.Sprintf("%s-user-%s", hostName, username)
	return fmt.Sprintf(userConfigTemplate, moduleName, username, username, strings.Join(imports, "\n"))
}

func ensureHostDir(basePath, hostName string) (string, error) {
	hostDir := filepath.Join(basePath, "modules", "hosts", hostName)
	if err := os.MkdirAll(hostDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create host directory: %w", err)
	}
	return hostDir, nil
}

// WriteHostConfig writes configuration.nix into the host directory,
// creating the directory if needed.
func WriteHostConfig(basePath, hostName, content string) error {
	hostDir, err := ensureHostDir(basePath, hostName)
	if err != nil {
		return err
	}
	path := filepath.Join(hostDir, "configuration.nix")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write configuration.nix: %w", err)
	}
	return nil
}

// WriteUserConfig writes user-<username>.nix into the host directory.
func WriteUserConfig(basePath, hostName, username, content string) error {
	hostDir, err := ensureHostDir(basePath, hostName)
	if err != nil {
		return err
	}
	path := filepath.Join(hostDir, "user-"+username+".nix")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write user config: %w", err)
	}
	return nil
}

// WriteHardwareConfig writes _hardware-configuration.nix into the host
// directory.
func WriteHardwareConfig(basePath, hostName, content string) error {
	hostDir, err := ensureHostDir(basePath, hostName)
	if err != nil {
		return err
	}
	path := filepath.Join(hostDir, "_hardware-configuration.nix")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write hardware config: %w", err)
	}
	return nil
}
