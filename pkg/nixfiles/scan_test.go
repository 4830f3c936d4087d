// SPDX-License-Identifier: Apache-2.0
package nixfiles

import (
	"os"
	"path/filepath"
	"testing"
)

func writeNixFile(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte("{ }\n"), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func moduleNames(modules []Module) []string {
	names := make([]string, len(modules))
	for i, m := range modules {
		names[i] = m.Name
	}
	return names
}

func TestScanHostPresets(t *testing.T) {
	base := t.TempDir()
	hostsDir := filepath.Join(base, "modules", "hosts")
	for _, h := range []string{"desktop", "laptop-wsl", "server"} {
		if err := os.MkdirAll(filepath.Join(hostsDir, h), 0755); err != nil {
			t.Fatalf("failed to create host dir: %v", err)
		}
	}
	writeNixFile(t, filepath.Join(hostsDir, "desktop", "_hardware-configuration.nix"))
	if err := os.WriteFile(filepath.Join(hostsDir, "notes.md"), []byte("x"), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	presets := ScanHostPresets(base)

	if len(presets) != 2 {
		t.Fatalf("len(presets) = %d, want 2 (wsl host and plain file skipped)", len(presets))
	}
	if presets[0].Name != "desktop" || presets[1].Name != "server" {
		t.Errorf("preset names = %v, want [desktop server]", []string{presets[0].Name, presets[1].Name})
	}
	if !presets[0].HasHardwareConfig {
		t.Error("desktop preset should report an existing hardware config")
	}
	if presets[1].HasHardwareConfig {
		t.Error("server preset should not report a hardware config")
	}
}

func TestScanHostPresetsMissingDir(t *testing.T) {
	if presets := ScanHostPresets(t.TempDir()); len(presets) != 0 {
		t.Errorf("presets = %v, want none for empty base path", presets)
	}
}

func TestScanSystemModules(t *testing.T) {
	base := t.TempDir()
	dir := filepath.Join(base, "modules", "nixosModules")
	writeNixFile(t, filepath.Join(dir, "desktop.nix"))
	writeNixFile(t, filepath.Join(dir, "gaming.nix"))
	writeNixFile(t, filepath.Join(dir, "home-desktop.nix"))
	writeNixFile(t, filepath.Join(dir, "wsl.nix"))
	writeNixFile(t, filepath.Join(dir, "audio", "default.nix"))

	got := moduleNames(ScanSystemModules(base))
	want := []string{"audio", "desktop", "gaming"}

	if len(got) != len(want) {
		t.Fatalf("modules = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("modules[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	for _, m := range ScanSystemModules(base) {
		if m.Selected {
			t.Errorf("module %q starts selected, want unselected", m.Name)
		}
	}
}

func TestScanUserModules(t *testing.T) {
	base := t.TempDir()
	dir := filepath.Join(base, "modules", "homeManagerModules")
	writeNixFile(t, filepath.Join(dir, "home.nix"))
	writeNixFile(t, filepath.Join(dir, "home-wsl.nix"))
	writeNixFile(t, filepath.Join(dir, "packages-extra.nix"))
	writeNixFile(t, filepath.Join(dir, "shell.nix"))
	writeNixFile(t, filepath.Join(dir, "neovim.nix"))

	got := moduleNames(ScanUserModules(base))
	want := []string{"neovim", "shell"}

	if len(got) != len(want) {
		t.Fatalf("modules = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("modules[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestScanPackageModules(t *testing.T) {
	base := t.TempDir()
	dir := filepath.Join(base, "modules", "packages")
	writeNixFile(t, filepath.Join(dir, "dev.nix"))
	writeNixFile(t, filepath.Join(dir, "cli.nix"))
	writeNixFile(t, filepath.Join(dir, "wsl-tools.nix"))

	got := moduleNames(ScanPackageModules(base))
	want := []string{"packages-cli", "packages-dev"}

	if len(got) != len(want) {
		t.Fatalf("modules = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("modules[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestScanModulesMissingDir(t *testing.T) {
	if got := ScanSystemModules(t.TempDir()); len(got) != 0 {
		t.Errorf("modules = %v, want none for missing directory", got)
	}
}

func TestModuleSkipFilters(t *testing.T) {
	systemCases := map[string]bool{
		"desktop":      false,
		"home-desktop": true,
		"wsl":          true,
		"wsl-extra":    false,
	}
	for name, want := range systemCases {
		if got := skipSystemModule(name); got != want {
			t.Errorf("skipSystemModule(%q) = %v, want %v", name, got, want)
		}
	}

	userCases := map[string]bool{
		"home":          true,
		"home-wsl":      true,
		"packages-full": true,
		"shell":         false,
	}
	for name, want := range userCases {
		if got := skipUserModule(name); got != want {
			t.Errorf("skipUserModule(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestUserConfigExists(t *testing.T) {
	base := t.TempDir()
	writeNixFile(t, filepath.Join(base, "modules", "hosts", "forge", "user-alice.nix"))

	if !UserConfigExists(base, "forge", "alice") {
		t.Error("UserConfigExists = false for existing user file, want true")
	}
	if UserConfigExists(base, "forge", "bob") {
		t.Error("UserConfigExists = true for missing user file, want false")
	}
	if UserConfigExists(base, "other", "alice") {
		t.Error("UserConfigExists = true for wrong host, want false")
	}
}

func TestValidateLayout(t *testing.T) {
	base := t.TempDir()

	warnings := ValidateLayout(base)
	if len(warnings) != 1 {
		t.Fatalf("warnings = %v, want a single missing-modules warning", warnings)
	}

	for _, subdir := range []string{"nixosModules", "homeManagerModules", "packages", "hosts"} {
		if err := os.MkdirAll(filepath.Join(base, "modules", subdir), 0755); err != nil {
			t.Fatalf("failed to create %s: %v", subdir, err)
		}
	}
	if warnings := ValidateLayout(base); len(warnings) != 0 {
		t.Errorf("warnings = %v, want none for complete layout", warnings)
	}
}

func TestValidateLayoutPartial(t *testing.T) {
	base := t.TempDir()
	if err := os.MkdirAll(filepath.Join(base, "modules", "nixosModules"), 0755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}

	warnings := ValidateLayout(base)
	if len(warnings) != 3 {
		t.Errorf("warnings = %v, want 3 (homeManagerModules, packages, hosts)", warnings)
	}
}

func TestWriteHostConfigRoundTrip(t *testing.T) {
	base := t.TempDir()
	content := GenerateHostConfig("forge", nil, nil, nil)

	if err := WriteHostConfig(base, "forge", content); err != nil {
		t.Fatalf("WriteHostConfig: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(base, "modules", "hosts", "forge", "configuration.nix"))
	if err != nil {
		t.Fatalf("failed to read generated file: %v", err)
	}
	if string(data) != content {
		t.Errorf("written config differs from generated content")
	}
}

func TestWriteUserConfigCreatesHostDir(t *testing.T) {
	base := t.TempDir()

	if err := WriteUserConfig(base, "forge", "alice", "{ }\n"); err != nil {
		t.Fatalf("WriteUserConfig: %v", err)
	}
	if !UserConfigExists(base, "forge", "alice") {
		t.Error("user config not found after WriteUserConfig")
	}

	if err := WriteHardwareConfig(base, "forge", "{ }\n"); err != nil {
		t.Fatalf("WriteHardwareConfig: %v", err)
	}
	if _, err := os.Stat(filepath.Join(base, "modules", "hosts", "forge", "_hardware-configuration.nix")); err != nil {
		t.Errorf("hardware config not found: %v", err)
	}
}
