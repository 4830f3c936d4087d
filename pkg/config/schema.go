// SPDX-License-Identifier: Apache-2.0
package config

import (
	"fmt"
	"regexp"
)

// ScopeConstraints defines per-scope validation rules for a configuration key
type ScopeConstraints struct {
	Forbidden  bool     // If true, this key cannot be set in this scope
	EnumValues []string // Valid enum values for this scope (overrides global EnumValues if set)
	Pattern    string   // Regex pattern for this scope (overrides global Pattern if set)
}

// ConfigKeyDefinition defines metadata for a configuration key
type ConfigKeyDefinition struct {
	Key         string      // Configuration key (dot notation)
	Type        string      // "string", "bool", "enum", "int", "stringSlice"
	Default     interface{} // Default value
	Description string      // Help text

	// Global constraints (apply unless overridden by scope-specific constraints)
	EnumValues []string // Valid values for enum type (if Type="enum")
	Pattern    string   // Regex pattern for validation (if Type="string")

	// Per-scope constraints (optional - if nil, key is allowed in scope with global constraints)
	UserConstraints *ScopeConstraints // Constraints when setting in user config
	RepoConstraints *ScopeConstraints // Constraints when setting in repo config
}

// ConfigRegistry holds all known configuration keys with per-scope constraints.
//
// Constraint System:
//   - No constraints: Key can be set in any scope with same validation rules
//   - Forbidden constraint: Key cannot be set in the specified scope
//   - Scope-specific EnumValues: Different allowed values per scope
//   - Scope-specific Pattern: Different regex validation per scope
var ConfigRegistry = map[string]ConfigKeyDefinition{
	"use-tui": {
		Key:         "use-tui",
		Type:        "bool",
		Default:     true,
		Description: "Use TUI for interactive prompts",
	},

	"log-level": {
		Key:         "log-level",
		Type:        "enum",
		Default:     "debug",
		Description: "Log verbosity level",
		EnumValues:  []string{"disabled", "debug", "info", "warn", "error"},
	},

	"theme": {
		Key:         "theme",
		Type:        "enum",
		Default:     "catppuccin-mocha",
		Description: "Installer color theme",
		EnumValues:  []string{"catppuccin-mocha", "nord", "dracula", "tokyo-night", "gruvbox"},
	},

	"branding-title": {
		Key:         "branding-title",
		Type:        "string",
		Default:     "Foundry NixOS Installer",
		Description: "Title shown in the wizard header (repos may rebrand)",
	},

	"repo.url": {
		Key:         "repo.url",
		Type:        "string",
		Default:     "",
		Description: "Dotfiles repository URL cloned when no local checkout is found",
		RepoConstraints: &ScopeConstraints{
			Forbidden: true, // a checked-out repo configuring its own origin is circular
		},
	},

	"repo.verify-key": {
		Key:         "repo.verify-key",
		Type:        "string",
		Default:     "",
		Description: "Armored public key file used to verify the repo config signature",
		RepoConstraints: &ScopeConstraints{
			Forbidden: true, // the repo must not vouch for itself
		},
	},

	"defaults.hostname": {
		Key:         "defaults.hostname",
		Type:        "string",
		Default:     "",
		Description: "Prefill for the host name input in custom mode",
	},

	"defaults.username": {
		Key:         "defaults.username",
		Type:        "string",
		Default:     "",
		Description: "Prefill for the first username input",
		Pattern:     "^$|^[a-z_][a-z0-9_-]*$",
	},

	"defaults.swap-size": {
		Key:         "defaults.swap-size",
		Type:        "string",
		Default:     "",
		Description: "Prefill for the swap size input (GiB, empty = no swap)",
		Pattern:     "^[0-9]*$",
	},

	"hm-base-modules": {
		Key:         "hm-base-modules",
		Type:        "stringSlice",
		Default:     []string{},
		Description: "Home-manager modules imported for every generated user",
	},

	"hooks.pre-install": {
		Key:         "hooks.pre-install",
		Type:        "stringSlice",
		Default:     []string{},
		Description: "Scripts run after staging and before nixos-install",
	},

	"hooks.post-install": {
		Key:         "hooks.post-install",
		Type:        "stringSlice",
		Default:     []string{},
		Description: "Scripts run after the repo is copied into the target",
	},

	"install.accept-flake-config": {
		Key:         "install.accept-flake-config",
		Type:        "bool",
		Default:     true,
		Description: "Pass accept-flake-config to nix during nixos-install",
	},
}

// GetKeyDefinition returns the definition for a key, or nil if not found
func GetKeyDefinition(key string) *ConfigKeyDefinition {
	if def, ok := ConfigRegistry[key]; ok {
		return &def
	}
	return nil
}

// ValidateKeyScope checks if a key can be set in the given scope
// Returns an error if the key is forbidden in the specified scope
func ValidateKeyScope(key string, scope ConfigScope) error {
	def := GetKeyDefinition(key)
	if def == nil {
		return fmt.Errorf("unknown configuration key: %s", key)
	}

	// Get constraints for the target scope
	var constraints *ScopeConstraints
	switch scope {
	case ScopeUser:
		constraints = def.UserConstraints
	case ScopeRepo:
		constraints = def.RepoConstraints
	}

	// Check if key is forbidden in this scope
	if constraints != nil && constraints.Forbidden {
		switch scope {
		case ScopeUser:
			return fmt.Errorf(
				"key '%s' cannot be set in user config\n\n"+
					"Hint: Remove --global flag:\n"+
					"  foundry config set %s <value>\n\n"+
					"This key must be set in repo config: ./foundry.yaml",
				key,
				key,
			)
		case ScopeRepo:
			return fmt.Errorf(
				"key '%s' cannot be set in repo config\n\n"+
					"Hint: Use --global flag:\n"+
					"  foundry config set --global %s <value>\n\n"+
					"User config: ~/.config/foundry/config.yaml\n"+
					"This setting is resolved before the repo is trusted.",
				key,
				key,
			)
		}
	}

	return nil
}

// ValidateValue checks if a value is valid for the given key in the specified scope
// Applies per-scope constraints if defined, otherwise uses global constraints
func ValidateValue(key string, value interface{}, scope ConfigScope) error {
	def := GetKeyDefinition(key)
	if def == nil {
		return fmt.Errorf("unknown configuration key: %s", key)
	}

	// Get scope-specific constraints
	var constraints *ScopeConstraints
	switch scope {
	case ScopeUser:
		constraints = def.UserConstraints
	case ScopeRepo:
		constraints = def.RepoConstraints
	}

	// Type validation
	switch def.Type {
	case "bool":
		if _, ok := value.(bool); !ok {
			return fmt.Errorf("key '%s' must be a boolean", key)
		}

	case "int":
		if _, ok := value.(int); !ok {
			return fmt.Errorf("key '%s' must be an integer", key)
		}

	case "string":
		str, ok := value.(string)
		if !ok {
			return fmt.Errorf("key '%s' must be a string", key)
		}

		// Pattern validation - use scope-specific pattern if available
		pattern := def.Pattern
		if constraints != nil && constraints.Pattern != "" {
			pattern = constraints.Pattern
		}

		if pattern != "" {
			matched, err := regexp.MatchString(pattern, str)
			if err != nil {
				return fmt.Errorf("pattern validation error: %w", err)
			}
			if !matched {
				scopeName := getScopeName(scope)
				return fmt.Errorf(
					"key '%s' value '%s' does not match required format for %s scope",
					key,
					str,
					scopeName,
				)
			}
		}

	case "enum":
		str, ok := value.(string)
		if !ok {
			return fmt.Errorf("key '%s' must be a string", key)
		}

		// Enum validation - use scope-specific enum if available
		enumValues := def.EnumValues
		if constraints != nil && constraints.EnumValues != nil {
			enumValues = constraints.EnumValues
		}

		// Validate against enum
		valid := false
		for _, enumVal := range enumValues {
			if str == enumVal {
				valid = true
				break
			}
		}
		if !valid {
			scopeName := getScopeName(scope)
			return fmt.Errorf(
				"key '%s' must be one of %v in %s scope (got '%s')",
				key,
				enumValues,
				scopeName,
				str,
			)
		}

	case "stringSlice":
		switch v := value.(type) {
		case []string:
			_ = v
		case []interface{}:
			for _, item := range v {
				if _, ok := item.(string); !ok {
					return fmt.Errorf("key '%s' must be a list of strings", key)
				}
			}
		default:
			return fmt.Errorf("key '%s' must be a list of strings", key)
		}
	}

	return nil
}
