// SPDX-License-Identifier: Apache-2.0
package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// GitHub repository
	GitHubRepo = "Work-Fort/Foundry"

	// Configuration
	EnvPrefix        = "FOUNDRY" // Environment variable prefix for Viper
	ConfigFileName   = "config"  // Config file name for XDG config dir (without extension)
	LocalConfigFile  = "foundry" // Config file name for repo root / current directory (without extension)
	ConfigType       = "yaml"    // Config file type
	DefaultConfigExt = ".yaml"   // Default config file extension

	// SystemConfigDir is checked before the XDG config dir so a live
	// installer ISO can ship a baked-in configuration.
	SystemConfigDir = "/etc/foundry"

	// InstallLogFile is the persistent install log. It is truncated at the
	// start of each install run and survives the installer exiting.
	InstallLogFile = "/tmp/foundry-install.log"
)

// Paths holds all XDG-compliant directory paths
type Paths struct {
	DataDir   string
	CacheDir  string
	ConfigDir string

	// Subdirectories
	CloneDir string // Default destination for cloned dotfiles repos (in cache)
}

var (
	// GlobalPaths is the global paths instance
	GlobalPaths *Paths
)

func init() {
	GlobalPaths = GetPaths()
}

// GetPaths returns XDG-compliant directory paths
func GetPaths() *Paths {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to get home directory: %v\n", err)
			os.Exit(1)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	cacheHome := os.Getenv("XDG_CACHE_HOME")
	if cacheHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to get home directory: %v\n", err)
			os.Exit(1)
		}
		cacheHome = filepath.Join(home, ".cache")
	}

	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to get home directory: %v\n", err)
			os.Exit(1)
		}
		configHome = filepath.Join(home, ".config")
	}

	dataDir := filepath.Join(dataHome, "foundry")
	cacheDir := filepath.Join(cacheHome, "foundry")
	configDir := filepath.Join(configHome, "foundry")

	return &Paths{
		DataDir:   dataDir,
		CacheDir:  cacheDir,
		ConfigDir: configDir,
		CloneDir:  filepath.Join(cacheDir, "dotfiles"),
	}
}

// IsRepoMode returns true when a foundry.yaml exists in the current
// working directory, meaning the CLI is operating within a managed
// dotfiles repository checkout.
func IsRepoMode() bool {
	_, err := os.Stat(filepath.Join(".", LocalConfigFile+DefaultConfigExt))
	return err == nil
}

// InitDirs creates all necessary directories
func InitDirs() error {
	dirs := []string{
		GlobalPaths.ConfigDir,
		GlobalPaths.DataDir,
		GlobalPaths.CacheDir,
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}
