// SPDX-License-Identifier: Apache-2.0
package config

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme holds the application color scheme
type Theme struct {
	Name      string // Canonical theme name
	Primary   string // Accent color for highlights and selection
	Secondary string // Body text color
	Muted     string // Dimmed text color
	Surface   string // Panel/surface background
	Success   string // Success/affirmative color
	Info      string // Info/neutral color
	Warning   string // Warning color
	Error     string // Error/destructive color
}

// builtinThemes maps canonical theme names to their palettes
var builtinThemes = map[string]Theme{
	"catppuccin-mocha": {
		Name:      "catppuccin-mocha",
		Primary:   "#89B4FA", // Blue
		Secondary: "#CDD6F4", // Text
		Muted:     "#9399B2", // Overlay1
		Surface:   "#313244", // Surface0
		Success:   "#A6E3A1", // Green
		Info:      "#89B4FA", // Same as primary for consistency
		Warning:   "#F9E2AF", // Yellow
		Error:     "#F38BA8", // Red
	},
	"nord": {
		Name:      "nord",
		Primary:   "#88C0D0", // Nord8 (frost)
		Secondary: "#ECEFF4", // Nord6
		Muted:     "#D8DEE9", // Nord4
		Surface:   "#3B4252", // Nord1
		Success:   "#A3BE8C", // Nord14
		Info:      "#88C0D0", // Same as primary for consistency
		Warning:   "#EBCB8B", // Nord13
		Error:     "#BF616A", // Nord11
	},
	"dracula": {
		Name:      "dracula",
		Primary:   "#BD93F9", // Purple
		Secondary: "#F8F8F2", // Foreground
		Muted:     "#6272A4", // Comment
		Surface:   "#44475A", // Current line
		Success:   "#50FA7B", // Green
		Info:      "#BD93F9", // Same as primary for consistency
		Warning:   "#F1FA8C", // Yellow
		Error:     "#FF5555", // Red
	},
	"tokyo-night": {
		Name:      "tokyo-night",
		Primary:   "#7AA2F7", // Blue
		Secondary: "#C0CAF5", // fg
		Muted:     "#565F89", // dark5
		Surface:   "#24283B", // bg_highlight
		Success:   "#9ECE6A", // green
		Info:      "#7AA2F7", // Same as primary for consistency
		Warning:   "#E0AF68", // yellow
		Error:     "#F7768E", // red
	},
	"gruvbox": {
		Name:      "gruvbox",
		Primary:   "#83A598", // aqua
		Secondary: "#EBDBB2", // fg
		Muted:     "#A89984", // gray
		Surface:   "#3C3836", // bg1
		Success:   "#B8BB26", // green
		Info:      "#83A598", // Same as primary for consistency
		Warning:   "#FABD2F", // yellow
		Error:     "#FB4934", // red
	},
}

// CurrentTheme is the active theme used throughout the application
var CurrentTheme = builtinThemes["catppuccin-mocha"]

// normalizeThemeName maps loose spellings to canonical theme names
func normalizeThemeName(name string) string {
	switch strings.ReplaceAll(strings.ToLower(name), "_", "-") {
	case "catppuccin-mocha", "catppuccin", "mocha":
		return "catppuccin-mocha"
	case "tokyo-night", "tokyonight":
		return "tokyo-night"
	default:
		return strings.ReplaceAll(strings.ToLower(name), "_", "-")
	}
}

// SetTheme switches the active theme by name. Accepts loose spellings
// ("catppuccin", "tokyonight"). Returns false when the name is unknown,
// leaving the current theme in place.
func SetTheme(name string) bool {
	theme, ok := builtinThemes[normalizeThemeName(name)]
	if !ok {
		return false
	}
	CurrentTheme = theme
	return true
}

// ThemeNames lists all available theme names for help text
func ThemeNames() []string {
	return []string{
		"catppuccin-mocha",
		"nord",
		"dracula",
		"tokyo-night",
		"gruvbox",
	}
}

// Color getters return lipgloss.Color for easy styling

func (t Theme) GetPrimaryColor() lipgloss.Color {
	return lipgloss.Color(t.Primary)
}

func (t Theme) GetSecondaryColor() lipgloss.Color {
	return lipgloss.Color(t.Secondary)
}

func (t Theme) GetMutedColor() lipgloss.Color {
	return lipgloss.Color(t.Muted)
}

func (t Theme) GetSurfaceColor() lipgloss.Color {
	return lipgloss.Color(t.Surface)
}

func (t Theme) GetSuccessColor() lipgloss.Color {
	return lipgloss.Color(t.Success)
}

func (t Theme) GetInfoColor() lipgloss.Color {
	return lipgloss.Color(t.Info)
}

func (t Theme) GetWarningColor() lipgloss.Color {
	return lipgloss.Color(t.Warning)
}

func (t Theme) GetErrorColor() lipgloss.Color {
	return lipgloss.Color(t.Error)
}

// Common style builders for consistent UI

func (t Theme) SuccessStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.GetSuccessColor()).Bold(true)
}

func (t Theme) InfoStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.GetInfoColor())
}

func (t Theme) WarningStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.GetWarningColor())
}

func (t Theme) ErrorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.GetErrorColor())
}

func (t Theme) SubtleStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.GetMutedColor())
}

// Message formatters with theme-appropriate icons

func (t Theme) SuccessMessage(text string) string {
	return t.SuccessStyle().Render("✓ " + text)
}

func (t Theme) InfoMessage(text string) string {
	return t.InfoStyle().Render("ℹ " + text)
}

func (t Theme) WarningMessage(text string) string {
	return t.WarningStyle().Render("⚠ " + text)
}

func (t Theme) ErrorMessage(text string) string {
	return t.ErrorStyle().Render("✗ " + text)
}

// Indicator helpers for consistent symbols across UI

// ActiveIndicator returns a solid dot for active states
func (t Theme) ActiveIndicator() string {
	return t.SuccessStyle().Render("●")
}

// PendingIndicator returns an empty circle for pending states
func (t Theme) PendingIndicator() string {
	return t.SubtleStyle().Render("○")
}

// CompleteIndicator returns a checkmark for completed states
func (t Theme) CompleteIndicator() string {
	return t.SuccessStyle().Render("✓")
}

// ErrorIndicator returns an X for error states
func (t Theme) ErrorIndicator() string {
	return t.ErrorStyle().Render("✗")
}

// WarningIndicator returns a warning symbol for warning states
func (t Theme) WarningIndicator() string {
	return t.WarningStyle().Render("⚠")
}

// InfoIndicator returns an info symbol for informational states
func (t Theme) InfoIndicator() string {
	return t.InfoStyle().Render("ℹ")
}

// PaneStyleConfig holds configuration for styled panes
type PaneStyleConfig struct {
	Border      lipgloss.Border
	BorderColor lipgloss.Color
	Width       int
	Height      int
	Padding     [2]int // [vertical, horizontal]
}

// PaneStyle creates a styled border for panes
func (t Theme) PaneStyle(config PaneStyleConfig) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(config.Border).
		BorderForeground(config.BorderColor).
		Width(config.Width).
		Height(config.Height).
		Padding(config.Padding[0], config.Padding[1])
}

// ActivePaneStyle returns styling for the active pane
func (t Theme) ActivePaneStyle(width, height int, accentColor lipgloss.Color) lipgloss.Style {
	return t.PaneStyle(PaneStyleConfig{
		Border:      lipgloss.ThickBorder(),
		BorderColor: accentColor,
		Width:       width,
		Height:      height,
		Padding:     [2]int{0, 1},
	})
}

// InactivePaneStyle returns styling for inactive panes
func (t Theme) InactivePaneStyle(width, height int) lipgloss.Style {
	return t.PaneStyle(PaneStyleConfig{
		Border:      lipgloss.NormalBorder(),
		BorderColor: t.GetMutedColor(),
		Width:       width,
		Height:      height,
		Padding:     [2]int{0, 1},
	})
}

// RenderHeader renders a consistent header banner across all TUIs
// Format: "  FOUNDRY  ▸  SECTION  ▸  [CONTEXT]  "
func (t Theme) RenderHeader(width int, section, context string) string {
	headerText := fmt.Sprintf("  FOUNDRY  ▸  %s  ▸  [%s]  ", section, context)
	return lipgloss.NewStyle().
		Foreground(t.GetSecondaryColor()).
		Bold(true).
		Width(width).
		Align(lipgloss.Center).
		Render(headerText)
}

// RenderFooter renders a consistent footer with box characters
// Format: "╰─ [content] ─╯"
func (t Theme) RenderFooter(width int, content string) string {
	footerText := "╰─ " + content + " ─╯"
	return lipgloss.NewStyle().
		Foreground(t.GetMutedColor()).
		Width(width).
		Align(lipgloss.Center).
		Render(footerText)
}

// TODO: Support per-color theme overrides from repo config so a dotfiles
// repo can ship an exact brand palette instead of picking a builtin name.
