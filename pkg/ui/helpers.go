// SPDX-License-Identifier: Apache-2.0
package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// RenderCenteredModal renders a modal overlay centered in the terminal
// Used for notices, confirmations, etc.
func RenderCenteredModal(content string, width, height int, borderColor lipgloss.Color, modalWidth int) string {
	modal := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Padding(1, 2).
		Width(modalWidth).
		Render(content)

	return lipgloss.Place(
		width, height,
		lipgloss.Center, lipgloss.Center,
		modal,
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color("0")),
	)
}

// FillTerminal uses lipgloss.Place to fill terminal dimensions and eliminate gaps
func FillTerminal(content string, width, height int) string {
	return lipgloss.Place(width, height, lipgloss.Left, lipgloss.Top, content)
}
