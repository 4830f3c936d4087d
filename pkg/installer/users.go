// SPDX-License-Identifier: Apache-2.0
package installer

import (
	"errors"
	"regexp"

	"github.com/Work-Fort/Foundry/pkg/nixfiles"
)

// UserEntry is one account the wizard will create on the target system.
type UserEntry struct {
	Username       string
	Password       string
	UserModules    []nixfiles.Module
	PackageModules []nixfiles.Module

	// NeedsModuleSelection is set when the chosen host has no existing
	// user-<name>.nix, so the wizard must ask which modules to enable.
	NeedsModuleSelection bool
}

// Same shape useradd accepts: lowercase start, then lowercase, digits,
// hyphens and underscores.
var usernameRE = regexp.MustCompile(`^[a-z_][a-z0-9_-]*$`)

// ValidateUsername checks a proposed username against the useradd rules
// and the users already committed in this run. The messages are shown
// verbatim in the status line.
func ValidateUsername(name string, existing []UserEntry) error {
	if name == "" {
		return errors.New("Username cannot be empty")
	}
	if !usernameRE.MatchString(name) {
		return errors.New("Username must start with a lowercase letter or underscore")
	}
	for _, u := range existing {
		if u.Username == name {
			return errors.New("User already exists")
		}
	}
	return nil
}
