// SPDX-License-Identifier: Apache-2.0
package nixfiles

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
)

// HostPreset is an existing host directory under modules/hosts/.
type HostPreset struct {
	Name              string
	Path              string
	HasHardwareConfig bool
}

// ScanHostPresets lists the host presets in the repository, sorted by
// name. WSL hosts are not installable and are skipped.
func ScanHostPresets(basePath string) []HostPreset {
	hostsDir := filepath.Join(basePath, "modules", "hosts")

	entries, err := os.ReadDir(hostsDir)
	if err != nil {
		// The picker shows its own "none found" message.
		log.Debugf("No host presets under %s: %v", hostsDir, err)
		return nil
	}

	var presets []HostPreset
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.Contains(strings.ToLower(name), "wsl") {
			continue
		}
		path := filepath.Join(hostsDir, name)
		_, hwErr := os.Stat(filepath.Join(path, "_hardware-configuration.nix"))
		presets = append(presets, HostPreset{
			Name:              name,
			Path:              path,
			HasHardwareConfig: hwErr == nil,
		})
	}

	sort.Slice(presets, func(i, j int) bool { return presets[i].Name < presets[j].Name })
	return presets
}
