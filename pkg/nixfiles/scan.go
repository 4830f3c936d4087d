// SPDX-License-Identifier: Apache-2.0

// Package nixfiles discovers the modules a flake-based configuration
// repository exposes and generates the per-host Nix files the installer
// writes back into it.
package nixfiles

import (
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
)

// Module is a discovered, selectable Nix module.
type Module struct {
	Name     string
	Selected bool
}

// ScanSystemModules lists the modules under modules/nixosModules/.
// Host-internal modules (home-* glue, wsl) are not selectable.
func ScanSystemModules(basePath string) []Module {
	dir := filepath.Join(basePath, "modules", "nixosModules")
	return scanModulesInDir(dir, skipSystemModule)
}

// ScanUserModules lists the modules under modules/homeManagerModules/.
func ScanUserModules(basePath string) []Module {
	dir := filepath.Join(basePath, "modules", "homeManagerModules")
	return scanModulesInDir(dir, skipUserModule)
}

// ScanPackageModules lists the package sets under modules/packages/.
// The flake registers these as packages-<name>, so the prefix is added
// here and kept for the rest of the run.
func ScanPackageModules(basePath string) []Module {
	dir := filepath.Join(basePath, "modules", "packages")

	var modules []Module
	for _, name := range discoverNixFiles(dir) {
		if strings.Contains(strings.ToLower(name), "wsl") {
			continue
		}
		modules = append(modules, Module{Name: "packages-" + name})
	}
	sortModules(modules)
	return modules
}

func skipSystemModule(name string) bool {
	return strings.HasPrefix(name, "home-") || name == "wsl"
}

func skipUserModule(name string) bool {
	return name == "home" || name == "home-wsl" || strings.HasPrefix(name, "packages-")
}

func scanModulesInDir(dir string, skip func(string) bool) []Module {
	var modules []Module
	for _, name := range discoverNixFiles(dir) {
		if skip(name) {
			continue
		}
		modules = append(modules, Module{Name: name})
	}
	sortModules(modules)
	return modules
}

func sortModules(modules []Module) {
	sort.Slice(modules, func(i, j int) bool { return modules[i].Name < modules[j].Name })
}

// discoverNixFiles returns the module names of every .nix file under dir.
// A default.nix stands for its directory, so it contributes the directory
// name instead of "default". Duplicate names keep the first occurrence.
//
// fd is tried first; if it is not on PATH the always-available find is
// used instead. A nix-shell fallback used to fetch fd on demand, but the
// download could stall the UI for over a minute.
func discoverNixFiles(dir string) []string {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil
	}

	out, err := exec.Command("fd", "--type", "f", "--extension", "nix",
		"--no-ignore", "--absolute-path", ".", dir).Output()
	if err != nil {
		out, err = exec.Command("find", dir, "-type", "f", "-name", "*.nix").Output()
		if err != nil {
			log.Debugf("Module discovery failed under %s: %v", dir, err)
			return nil
		}
	}

	seen := make(map[string]bool)
	var names []string
	for _, line := range strings.Split(string(out), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		name := strings.TrimSuffix(filepath.Base(line), ".nix")
		if name == "default" {
			name = filepath.Base(filepath.Dir(line))
		}
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}

// UserConfigExists reports whether host hostName already carries a
// user-<username>.nix definition.
func UserConfigExists(basePath, hostName, username string) bool {
	file := filepath.Join(basePath, "modules", "hosts", hostName, "user-"+username+".nix")
	_, err := os.Stat(file)
	return err == nil
}
