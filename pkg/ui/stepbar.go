// SPDX-License-Identifier: Apache-2.0
package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Work-Fort/Foundry/pkg/config"
)

// RenderStepBar draws one indicator per wizard phase: a checkmark for
// phases already passed, a solid dot for the current one and an empty
// circle for the rest. The wizard has more internal steps than phases,
// so several steps share an indicator.
func RenderStepBar(current, total, width int) string {
	theme := config.CurrentTheme

	var b strings.Builder
	for i := 1; i <= total; i++ {
		switch {
		case i < current:
			b.WriteString(theme.CompleteIndicator())
		case i == current:
			b.WriteString(theme.ActiveIndicator())
		default:
			b.WriteString(theme.PendingIndicator())
		}
		if i < total {
			b.WriteString(" ")
		}
	}

	return lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Render(b.String())
}
