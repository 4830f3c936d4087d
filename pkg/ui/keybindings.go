// SPDX-License-Identifier: Apache-2.0
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// KeyBinding represents a single key action
type KeyBinding struct {
	Key         string   // Display name: "ENTER", "SPACE", "Q"
	Keys        []string // Actual keys to match: ["enter"], [" "], ["q"]
	Description string   // What it does
}

// KeyBindingSet is a collection of related key bindings
type KeyBindingSet struct {
	Bindings []KeyBinding
}

// Contains checks if a key press matches any binding in the set
func (kbs KeyBindingSet) Contains(key string) *KeyBinding {
	for i := range kbs.Bindings {
		for _, k := range kbs.Bindings[i].Keys {
			if k == key {
				return &kbs.Bindings[i]
			}
		}
	}
	return nil
}

// Render formats key bindings for display
// Format: "[KEY] Action  •  [KEY] Action"
func (kbs KeyBindingSet) Render(style lipgloss.Style) string {
	if len(kbs.Bindings) == 0 {
		return ""
	}

	parts := make([]string, len(kbs.Bindings))
	for i, binding := range kbs.Bindings {
		parts[i] = fmt.Sprintf("[%s] %s", binding.Key, binding.Description)
	}

	return style.Render(strings.Join(parts, "  •  "))
}

// RenderInline formats key bindings for inline display (more compact)
// Format: "Key: action | Key: action"
func (kbs KeyBindingSet) RenderInline(style lipgloss.Style) string {
	if len(kbs.Bindings) == 0 {
		return ""
	}

	parts := make([]string, len(kbs.Bindings))
	caser := cases.Title(language.Und, cases.NoLower)
	for i, binding := range kbs.Bindings {
		// Use first key alias for display (e.g., "enter" instead of showing all)
		keyName := caser.String(binding.Keys[0])
		parts[i] = fmt.Sprintf("%s: %s", keyName, strings.ToLower(binding.Description))
	}

	return style.Render(strings.Join(parts, " | "))
}

// Footer key binding sets for the install wizard, one per screen family.

// ListNavKeyBindings covers the single-select pickers (presets, disks).
func ListNavKeyBindings() KeyBindingSet {
	return KeyBindingSet{
		Bindings: []KeyBinding{
			{Key: "↑/↓", Keys: []string{"up", "k", "down", "j"}, Description: "Navigate"},
			{Key: "ENTER", Keys: []string{"enter"}, Description: "Select"},
			{Key: "Q", Keys: []string{"q"}, Description: "Quit"},
		},
	}
}

// ChecklistKeyBindings covers the multi-select module and package lists.
func ChecklistKeyBindings() KeyBindingSet {
	return KeyBindingSet{
		Bindings: []KeyBinding{
			{Key: "↑/↓", Keys: []string{"up", "k", "down", "j"}, Description: "Navigate"},
			{Key: "SPACE", Keys: []string{" "}, Description: "Toggle"},
			{Key: "ENTER", Keys: []string{"enter"}, Description: "Confirm"},
			{Key: "ESC", Keys: []string{"esc"}, Description: "Back"},
			{Key: "Q", Keys: []string{"q"}, Description: "Quit"},
		},
	}
}

// PartitionModeKeyBindings covers the two-row partition mode picker.
func PartitionModeKeyBindings() KeyBindingSet {
	return KeyBindingSet{
		Bindings: []KeyBinding{
			{Key: "↑/↓", Keys: []string{"up", "k", "down", "j"}, Description: "Navigate"},
			{Key: "ENTER", Keys: []string{"enter"}, Description: "Select"},
			{Key: "ESC", Keys: []string{"esc"}, Description: "Back"},
		},
	}
}

// TextInputKeyBindings covers all free-text entry screens.
func TextInputKeyBindings() KeyBindingSet {
	return KeyBindingSet{
		Bindings: []KeyBinding{
			{Key: "TYPE", Keys: []string{"type"}, Description: "Enter Text"},
			{Key: "ENTER", Keys: []string{"enter"}, Description: "Confirm"},
			{Key: "ESC", Keys: []string{"esc"}, Description: "Back"},
		},
	}
}

// ChoiceKeyBindings covers the Yes/No and Reboot/Exit button screens.
func ChoiceKeyBindings() KeyBindingSet {
	return KeyBindingSet{
		Bindings: []KeyBinding{
			{Key: "←/→", Keys: []string{"left", "h", "right", "l"}, Description: "Choose"},
			{Key: "ENTER", Keys: []string{"enter"}, Description: "Confirm"},
		},
	}
}

// ConfirmKeyBindings covers the installation summary screen, where space
// flips the accept-flake-config switch.
func ConfirmKeyBindings() KeyBindingSet {
	return KeyBindingSet{
		Bindings: []KeyBinding{
			{Key: "←/→", Keys: []string{"left", "h", "right", "l"}, Description: "Choose"},
			{Key: "SPACE", Keys: []string{" "}, Description: "Toggle"},
			{Key: "ENTER", Keys: []string{"enter"}, Description: "Confirm"},
		},
	}
}

// LogErrorKeyBindings covers the clone and install screens once their
// background job has failed. withBundle adds the diagnostics bundle key,
// which only the install screen offers.
func LogErrorKeyBindings(withBundle bool) KeyBindingSet {
	bindings := []KeyBinding{
		{Key: "↑/↓", Keys: []string{"up", "k", "down", "j"}, Description: "Scroll Log"},
	}
	if withBundle {
		bindings = append(bindings, KeyBinding{Key: "B", Keys: []string{"b"}, Description: "Save Diagnostics"})
	}
	bindings = append(bindings, KeyBinding{Key: "ENTER", Keys: []string{"enter"}, Description: "Quit"})
	return KeyBindingSet{Bindings: bindings}
}
