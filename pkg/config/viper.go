// SPDX-License-Identifier: Apache-2.0
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// InitViper initializes Viper configuration with defaults and search paths
// Precedence order: ENV > dir-conf > user-conf > system-conf > defaults
func InitViper() {
	// Set config type
	viper.SetConfigType(ConfigType)

	// Set defaults (lowest precedence)
	viper.SetDefault("use-tui", true)
	viper.SetDefault("log-level", "debug")
	viper.SetDefault("theme", "catppuccin-mocha")
	viper.SetDefault("branding-title", "Foundry NixOS Installer")
	viper.SetDefault("repo.url", "")
	viper.SetDefault("repo.verify-key", "") // No default for trust anchors
	viper.SetDefault("defaults.hostname", "")
	viper.SetDefault("defaults.username", "")
	viper.SetDefault("defaults.swap-size", "")
	viper.SetDefault("hm-base-modules", []string{})
	viper.SetDefault("hooks.pre-install", []string{})
	viper.SetDefault("hooks.post-install", []string{})
	viper.SetDefault("install.accept-flake-config", true)

	// Enable environment variable support (highest precedence)
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

// LoadConfig reads config files in precedence order
// Precedence: ENV > ./foundry.yaml > ~/.config/foundry/config.yaml > /etc/foundry/config.yaml > defaults
func LoadConfig() error {
	// First, read the system config if present. Installer ISOs bake
	// site-wide settings into /etc/foundry.
	systemPath := filepath.Join(SystemConfigDir, ConfigFileName+DefaultConfigExt)
	if _, err := os.Stat(systemPath); err == nil {
		viper.SetConfigFile(systemPath)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read system config file: %w", err)
		}
	}

	// Then, merge the user config from the XDG config directory
	userPath := filepath.Join(GlobalPaths.ConfigDir, ConfigFileName+DefaultConfigExt)
	if _, err := os.Stat(userPath); err == nil {
		viper.SetConfigFile(userPath)
		if err := viper.MergeInConfig(); err != nil {
			return fmt.Errorf("failed to read user config file: %w", err)
		}
		// Warn about misplaced keys in user config
		warnMisplacedKeys(userPath, "user")
	}

	// Finally, merge in local directory config (overrides user config)
	localPath := filepath.Join(".", LocalConfigFile+DefaultConfigExt)
	if _, err := os.Stat(localPath); err == nil {
		// Validate repo config doesn't contain forbidden keys
		if err := validateConfigFile(localPath, ScopeRepo); err != nil {
			return err
		}
		viper.SetConfigFile(localPath)
		if err := viper.MergeInConfig(); err != nil {
			return fmt.Errorf("failed to read local config file: %w", err)
		}
		// Warn about misplaced keys in repo config
		warnMisplacedKeys(localPath, "repo")
	}

	return nil
}

// MergeRepoConfig layers a cloned repository's foundry.yaml on top of the
// current configuration. Called after the clone stage so a dotfiles repo can
// ship its own presets, hooks and branding. Forbidden keys are rejected
// before anything is merged.
func MergeRepoConfig(repoRoot string) error {
	configPath := filepath.Join(repoRoot, LocalConfigFile+DefaultConfigExt)
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		// Repos without a foundry.yaml are fine
		return nil
	}

	if err := validateConfigFile(configPath, ScopeRepo); err != nil {
		return err
	}

	viper.SetConfigFile(configPath)
	if err := viper.MergeInConfig(); err != nil {
		return fmt.Errorf("failed to merge repo config: %w", err)
	}

	warnMisplacedKeys(configPath, "repo")
	log.Debugf("Merged repo config from %s", configPath)
	return nil
}

// GetUseTUI returns the use-tui configuration value
func GetUseTUI() bool {
	return viper.GetBool("use-tui")
}

// GetLogLevel returns the log-level configuration value
func GetLogLevel() string {
	return viper.GetString("log-level")
}

// GetTheme returns the theme configuration value
func GetTheme() string {
	return viper.GetString("theme")
}

// GetBrandingTitle returns the branding-title configuration value
func GetBrandingTitle() string {
	return viper.GetString("branding-title")
}

// GetRepoURL returns the repo.url configuration value
func GetRepoURL() string {
	return viper.GetString("repo.url")
}

// GetVerifyKey returns the repo.verify-key configuration value.
// The key is forbidden in repo scope, so the value always originates from
// the system or user layer and can be trusted to check repo signatures.
func GetVerifyKey() string {
	return viper.GetString("repo.verify-key")
}

// GetDefaultHostname returns the defaults.hostname configuration value
func GetDefaultHostname() string {
	return viper.GetString("defaults.hostname")
}

// GetDefaultUsername returns the defaults.username configuration value
func GetDefaultUsername() string {
	return viper.GetString("defaults.username")
}

// GetDefaultSwapSize returns the defaults.swap-size configuration value
func GetDefaultSwapSize() string {
	return viper.GetString("defaults.swap-size")
}

// GetHMBaseModules returns the hm-base-modules configuration value
func GetHMBaseModules() []string {
	return viper.GetStringSlice("hm-base-modules")
}

// GetPreInstallHooks returns the hooks.pre-install configuration value
func GetPreInstallHooks() []string {
	return viper.GetStringSlice("hooks.pre-install")
}

// GetPostInstallHooks returns the hooks.post-install configuration value
func GetPostInstallHooks() []string {
	return viper.GetStringSlice("hooks.post-install")
}

// GetAcceptFlakeConfig returns the install.accept-flake-config configuration value
func GetAcceptFlakeConfig() bool {
	return viper.GetBool("install.accept-flake-config")
}

// validateConfigFile validates that a config file doesn't contain forbidden
// keys or invalid values for the given scope
func validateConfigFile(configPath string, scope ConfigScope) error {
	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil // No config file, nothing to validate
	}

	// Create a temporary Viper instance to read just this config file
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType(ConfigType)

	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file for validation: %w", err)
	}

	// Get all settings from this config file
	settings := v.AllSettings()
	if len(settings) == 0 {
		return nil
	}

	// Flatten keys and validate each one
	keys := flattenKeys(settings, "")
	for _, key := range keys {
		// Validate scope
		if err := ValidateKeyScope(key, scope); err != nil {
			return fmt.Errorf("invalid key in config file %s: %w", configPath, err)
		}

		// Validate value
		value := v.Get(key)
		if err := ValidateValue(key, value, scope); err != nil {
			return fmt.Errorf("invalid value in config file %s: %w", configPath, err)
		}
	}

	return nil
}

// warnMisplacedKeys provides informational messages about unconventional key placement
// Note: All keys can be set in any scope (precedence handles conflicts), but some
// placements are unconventional. This logs at debug level to inform without blocking.
func warnMisplacedKeys(configPath, scopeName string) {
	// Determine the scope this file represents
	var recommendedScope ConfigScope
	if scopeName == "user" {
		recommendedScope = ScopeUser
	} else {
		recommendedScope = ScopeRepo
	}

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return // No config file, nothing to check
	}

	// Create a temporary Viper instance to read just this config file
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType(ConfigType)

	if err := v.ReadInConfig(); err != nil {
		return // Can't read config, skip informational messages
	}

	// Get all settings from this config file
	settings := v.AllSettings()
	if len(settings) == 0 {
		return
	}

	// Flatten keys and check each one
	keys := flattenKeys(settings, "")
	for _, key := range keys {
		def := GetKeyDefinition(key)
		if def == nil {
			continue // Unknown key, skip
		}

		// Determine recommended scope based on constraints
		// If forbidden in one scope, the other is recommended
		var hasRecommendedScope bool
		var recommendedScopeForKey ConfigScope

		if def.RepoConstraints != nil && def.RepoConstraints.Forbidden {
			hasRecommendedScope = true
			recommendedScopeForKey = ScopeUser
		} else if def.UserConstraints != nil && def.UserConstraints.Forbidden {
			hasRecommendedScope = true
			recommendedScopeForKey = ScopeRepo
		}

		// Provide info if key is in unconventional location and has a recommendation
		if hasRecommendedScope && recommendedScopeForKey != recommendedScope {
			var typicalLocation string
			if recommendedScopeForKey == ScopeUser {
				typicalLocation = "~/.config/foundry/" + ConfigFileName + DefaultConfigExt
			} else {
				typicalLocation = "./" + LocalConfigFile + DefaultConfigExt
			}

			log.Debugf("Key '%s' in %s config (typically in %s config: %s)",
				key, scopeName, getScopeName(recommendedScopeForKey), typicalLocation)
		}
	}
}

// BindFlags binds all relevant cobra flags to Viper
func BindFlags(flags *pflag.FlagSet) error {
	flagsToBind := []string{
		"use-tui",
		"log-level",
	}

	for _, flagName := range flagsToBind {
		if err := viper.BindPFlag(flagName, flags.Lookup(flagName)); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", flagName, err)
		}
	}

	return nil
}
