// SPDX-License-Identifier: Apache-2.0
package nixfiles

import (
	"fmt"
	"os"
	"path/filepath"
)

// ValidateLayout checks that basePath looks like a configuration repo the
// installer can work with. It returns a warning per missing directory;
// warnings are advisory and never stop the wizard.
func ValidateLayout(basePath string) []string {
	var warnings []string
	modulesDir := filepath.Join(basePath, "modules")

	if !isDir(modulesDir) {
		warnings = append(warnings, fmt.Sprintf(
			"modules/ directory not found at '%s'. Module scanning will not work.", basePath))
		return warnings
	}

	for _, subdir := range []string{"nixosModules", "homeManagerModules", "packages", "hosts"} {
		dir := filepath.Join(modulesDir, subdir)
		if !isDir(dir) {
			warnings = append(warnings, fmt.Sprintf(
				"modules/%s directory not found at '%s'", subdir, dir))
		}
	}

	return warnings
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
