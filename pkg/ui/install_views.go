// SPDX-License-Identifier: Apache-2.0
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Work-Fort/Foundry/pkg/config"
	"github.com/Work-Fort/Foundry/pkg/installer"
	"github.com/Work-Fort/Foundry/pkg/nixfiles"
	"github.com/Work-Fort/Foundry/pkg/partition"
)

const noticeModalWidth = 60

func (m *InstallWizard) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Initializing..."
	}
	theme := config.CurrentTheme

	header := theme.RenderHeader(m.width, "INSTALL WIZARD",
		fmt.Sprintf("STEP %d/%d", m.w.Step.Number(), installer.TotalSteps))
	title := lipgloss.NewStyle().
		Foreground(theme.GetPrimaryColor()).
		Bold(true).
		Width(m.width).
		Align(lipgloss.Center).
		Render(fmt.Sprintf("%s - %s", m.w.BrandingTitle, m.w.StepTitle()))
	stepBar := RenderStepBar(m.w.Step.Number(), installer.TotalSteps, m.width)
	gauge := m.centered(m.prog.ViewAs(float64(m.w.Step.Number()) / float64(installer.TotalSteps)))

	body := lipgloss.Place(m.width, m.bodyHeight(), lipgloss.Left, lipgloss.Top, m.stepBody(theme))
	footer := theme.RenderFooter(m.width, m.footerHints(theme))

	view := lipgloss.JoinVertical(lipgloss.Left, header, title, stepBar, gauge, "", body, footer)

	// A pending notice replaces the whole frame until acknowledged.
	if m.w.StatusMessage != "" {
		return m.noticeView(theme)
	}
	return FillTerminal(view, m.width, m.height)
}

func (m *InstallWizard) noticeView(theme config.Theme) string {
	content := lipgloss.JoinVertical(lipgloss.Left,
		theme.WarningStyle().Bold(true).Render("Notice"),
		"",
		m.w.StatusMessage,
		"",
		theme.SubtleStyle().Render("Press any key to continue"),
	)
	return RenderCenteredModal(content, m.width, m.height, theme.GetWarningColor(), noticeModalWidth)
}

func (m *InstallWizard) stepBody(theme config.Theme) string {
	switch m.w.Step {
	case installer.StepCloningRepo:
		return m.cloneView(theme)
	case installer.StepSelectPreset:
		return m.presetView(theme)
	case installer.StepHostName:
		return m.inputView(theme, "Host Name")
	case installer.StepSelectSystemModules:
		return m.checklistView(theme, "Select NixOS Modules (Space to toggle)",
			m.w.SystemModules, m.w.SystemModuleCursor)
	case installer.StepSelectSystemPackages:
		return m.checklistView(theme, "Select System Packages (Space to toggle)",
			m.w.SystemPackages, m.w.SystemPackageCursor)
	case installer.StepCreateUser:
		return m.inputView(theme, "Username")
	case installer.StepUserPassword:
		return m.inputView(theme, "Password")
	case installer.StepUserPasswordConfirm:
		return m.inputView(theme, "Confirm Password")
	case installer.StepAddAnotherUser:
		return m.choiceView(theme, "Add another user?", "  Yes  ", "  No  ", m.w.AnotherUserCursor)
	case installer.StepSelectUserModules:
		return m.checklistView(theme,
			fmt.Sprintf("HM Modules for '%s' (Space to toggle)", m.currentModuleUser()),
			m.w.UserModules, m.w.UserModuleCursor)
	case installer.StepSelectUserPackages:
		return m.checklistView(theme,
			fmt.Sprintf("Packages for '%s' (Space to toggle)", m.currentModuleUser()),
			m.w.UserPackages, m.w.UserPackageCursor)
	case installer.StepSelectDisk:
		return m.diskView(theme)
	case installer.StepPartitionMode:
		return m.partitionModeView(theme)
	case installer.StepSwapSize:
		return m.inputView(theme, "Swap Size (GiB)")
	case installer.StepPartitionMount:
		return m.inputView(theme, "Mount Point (e.g. /, /boot, swap)")
	case installer.StepPartitionSize:
		return m.inputView(theme, "Size in GiB (leave empty for remaining space)")
	case installer.StepPartitionFilesystem:
		return m.filesystemView(theme)
	case installer.StepPartitionAnother:
		return m.choiceView(theme, "Add another partition?", "  Yes  ", "  No  ", m.w.AnotherPartitionCursor)
	case installer.StepConfirm:
		return m.confirmView(theme)
	case installer.StepInstalling:
		return m.installView(theme)
	case installer.StepRootPassword:
		return m.inputView(theme, "Root Password")
	case installer.StepRootPasswordConfirm:
		return m.inputView(theme, "Confirm Root Password")
	case installer.StepComplete:
		return m.completeView(theme)
	}
	return ""
}

// currentModuleUser names the user whose module selection is on screen.
func (m *InstallWizard) currentModuleUser() string {
	if m.w.UserModuleIndex < len(m.w.Users) {
		return m.w.Users[m.w.UserModuleIndex].Username
	}
	return ""
}

func (m *InstallWizard) centered(s string) string {
	return lipgloss.NewStyle().Width(m.width).Align(lipgloss.Center).Render(s)
}

// framed renders a titled, bordered pane spanning the body width.
func (m *InstallWizard) framed(theme config.Theme, title, content string, border lipgloss.Color, titleStyle lipgloss.Style) string {
	titleLine := titleStyle.Render(" " + title + " ")
	pane := theme.PaneStyle(config.PaneStyleConfig{
		Border:      lipgloss.RoundedBorder(),
		BorderColor: border,
		Width:       m.width - 4,
		Padding:     [2]int{0, 1},
	}).Render(content)
	return lipgloss.JoinVertical(lipgloss.Left, titleLine, pane)
}

func (m *InstallWizard) listPane(theme config.Theme, title, content string) string {
	return m.framed(theme, title, content,
		theme.GetMutedColor(),
		lipgloss.NewStyle().Foreground(theme.GetPrimaryColor()).Bold(true))
}

// listRow styles a picker row. The row under the cursor is inverted,
// highlighted rows (like the synthetic Custom entry) render in the
// warning color.
func (m *InstallWizard) listRow(theme config.Theme, label string, active, highlight bool) string {
	if active {
		return lipgloss.NewStyle().
			Foreground(theme.GetSurfaceColor()).
			Background(theme.GetPrimaryColor()).
			Bold(true).
			Render(label)
	}
	if highlight {
		return theme.WarningStyle().Render(label)
	}
	return lipgloss.NewStyle().Foreground(theme.GetSecondaryColor()).Render(label)
}

func (m *InstallWizard) presetView(theme config.Theme) string {
	items := m.w.PresetDisplayItems()
	rows := make([]string, len(items))
	for i, item := range items {
		custom := i == len(items)-1
		label := "  " + item
		if custom {
			label = "+ " + item
		}
		rows[i] = m.listRow(theme, label, i == m.w.PresetCursor, custom)
	}
	return m.listPane(theme, "Select a host preset", strings.Join(rows, "\n"))
}

func (m *InstallWizard) checklistView(theme config.Theme, title string, modules []nixfiles.Module, cursor int) string {
	if len(modules) == 0 {
		return m.emptyChecklistView(theme, title)
	}

	rows := make([]string, len(modules))
	for i, mod := range modules {
		mark := "[ ]"
		if mod.Selected {
			mark = "[x]"
		}
		label := fmt.Sprintf(" %s %s", mark, mod.Name)
		switch {
		case i == cursor:
			rows[i] = lipgloss.NewStyle().
				Foreground(theme.GetSurfaceColor()).
				Background(theme.GetPrimaryColor()).
				Bold(true).
				Render(label)
		case mod.Selected:
			rows[i] = lipgloss.NewStyle().Foreground(theme.GetSuccessColor()).Render(label)
		default:
			rows[i] = lipgloss.NewStyle().Foreground(theme.GetSecondaryColor()).Render(label)
		}
	}
	return m.listPane(theme, title, strings.Join(rows, "\n"))
}

func (m *InstallWizard) emptyChecklistView(theme config.Theme, title string) string {
	content := lipgloss.JoinVertical(lipgloss.Left,
		theme.ErrorStyle().Render("No modules found."),
		"",
		"The module directory could not be read.",
		"Make sure the installer runs from the repository root,",
		"or pass the repository path on the command line:",
		"",
		theme.SubtleStyle().Render("    foundry install /path/to/nixos-config"),
		"",
		theme.WarningStyle().Render("Press Enter to continue without selecting modules."),
	)
	return m.listPane(theme, title, content)
}

func (m *InstallWizard) diskView(theme config.Theme) string {
	if len(m.w.Disks) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			theme.ErrorStyle().Render("No disks found."),
			"",
			"Make sure you are running as root and have",
			"physical disks attached to the system.",
			"",
			theme.SubtleStyle().Render("Press Esc to quit."),
		)
		return m.framed(theme, "Error", content,
			theme.GetErrorColor(), theme.ErrorStyle().Bold(true))
	}

	rows := make([]string, len(m.w.Disks))
	for i, d := range m.w.Disks {
		label := fmt.Sprintf("  %s - %s [%s]", d.Path, d.SizeHuman, d.Model)
		rows[i] = m.listRow(theme, label, i == m.w.DiskCursor, false)
	}
	return m.listPane(theme, "Select Installation Disk", strings.Join(rows, "\n"))
}

func (m *InstallWizard) partitionModeView(theme config.Theme) string {
	options := [][2]string{
		{"Use Full Disk", "Automatic EFI + swap + root partitioning"},
		{"Custom Partitions", "Manually define mount points, sizes, and filesystems"},
	}

	rows := make([]string, 0, 2*len(options))
	for i, opt := range options {
		rows = append(rows, m.listRow(theme, " "+opt[0], i == m.w.PartitionModeCursor, false))
		rows = append(rows, theme.SubtleStyle().Render("   "+opt[1]))
	}
	return m.listPane(theme, "Partition Mode", strings.Join(rows, "\n"))
}

func (m *InstallWizard) filesystemView(theme config.Theme) string {
	rows := make([]string, len(partition.Filesystems))
	for i, fs := range partition.Filesystems {
		rows[i] = m.listRow(theme, " "+fs.DisplayName(), i == m.w.FilesystemCursor, false)
	}
	title := fmt.Sprintf("Filesystem for '%s'", m.w.MountInput)
	return m.listPane(theme, title, strings.Join(rows, "\n"))
}

// inputView renders the centered text entry box shared by all free-text
// steps, with the mismatch warning under it on password screens.
func (m *InstallWizard) inputView(theme config.Theme, label string) string {
	title := lipgloss.NewStyle().Foreground(theme.GetPrimaryColor()).Bold(true).Render(label)

	boxWidth := m.width * 3 / 5
	if boxWidth < 30 {
		boxWidth = 30
	}
	box := theme.PaneStyle(config.PaneStyleConfig{
		Border:      lipgloss.RoundedBorder(),
		BorderColor: theme.GetPrimaryColor(),
		Width:       boxWidth,
		Padding:     [2]int{0, 1},
	}).Render(m.input.View())

	parts := []string{title, box}
	if m.passwordMismatchShown() {
		parts = append(parts, theme.ErrorStyle().Render("Passwords did not match. Please try again."))
	}

	content := lipgloss.JoinVertical(lipgloss.Left, parts...)
	return lipgloss.Place(m.width, m.bodyHeight(), lipgloss.Center, lipgloss.Center, content)
}

func (m *InstallWizard) passwordMismatchShown() bool {
	switch m.w.Step {
	case installer.StepUserPassword, installer.StepUserPasswordConfirm:
		return m.w.PasswordMismatch
	case installer.StepRootPassword, installer.StepRootPasswordConfirm:
		return m.w.RootPasswordMismatch
	}
	return false
}

// choiceView renders a centered two-button question box.
func (m *InstallWizard) choiceView(theme config.Theme, question, yesLabel, noLabel string, cursor int) string {
	content := lipgloss.JoinVertical(lipgloss.Center,
		lipgloss.NewStyle().Foreground(theme.GetSecondaryColor()).Bold(true).Render(question),
		"",
		m.buttonRow(theme, yesLabel, noLabel, cursor),
	)
	box := theme.PaneStyle(config.PaneStyleConfig{
		Border:      lipgloss.RoundedBorder(),
		BorderColor: theme.GetPrimaryColor(),
		Width:       40,
		Padding:     [2]int{1, 2},
	}).Render(content)
	return lipgloss.Place(m.width, m.bodyHeight(), lipgloss.Center, lipgloss.Center, box)
}

// buttonRow renders an affirmative/destructive button pair with the
// selected one inverted.
func (m *InstallWizard) buttonRow(theme config.Theme, yesLabel, noLabel string, cursor int) string {
	yes := lipgloss.NewStyle().Foreground(theme.GetSuccessColor())
	no := lipgloss.NewStyle().Foreground(theme.GetErrorColor())
	if cursor == 0 {
		yes = lipgloss.NewStyle().
			Foreground(theme.GetSurfaceColor()).
			Background(theme.GetSuccessColor()).
			Bold(true)
	} else {
		no = lipgloss.NewStyle().
			Foreground(theme.GetSurfaceColor()).
			Background(theme.GetErrorColor()).
			Bold(true)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, yes.Render(yesLabel), "   ", no.Render(noLabel))
}

func (m *InstallWizard) confirmView(theme config.Theme) string {
	accent := lipgloss.NewStyle().Foreground(theme.GetPrimaryColor()).Bold(true)
	section := theme.WarningStyle().Bold(true)

	var lines []string
	lines = append(lines, accent.Render(fmt.Sprintf("  Host: %s", m.w.HostName)))
	mode := "Preset"
	if m.w.IsCustom {
		mode = "Custom"
	}
	lines = append(lines, fmt.Sprintf("  Mode: %s", mode))
	if m.w.SelectedDisk != nil {
		lines = append(lines, fmt.Sprintf("  Disk: %s (%s)", m.w.SelectedDisk.Path, m.w.SelectedDisk.SizeHuman))
	}

	lines = append(lines, "", section.Render("  Partitions:"))
	for _, p := range m.w.Partitions {
		size := "remaining"
		if p.SizeMiB > 0 {
			size = fmt.Sprintf("%.1f GiB", float64(p.SizeMiB)/1024.0)
		}
		lines = append(lines, fmt.Sprintf("    %s -> %s (%s) [%s]", p.Label, p.MountPoint, size, p.Filesystem))
	}

	lines = append(lines, "", section.Render("  Users:"))
	for _, u := range m.w.Users {
		lines = append(lines, fmt.Sprintf("    %s (%d HM modules, %d packages)",
			u.Username, countSelected(u.UserModules), countSelected(u.PackageModules)))
	}

	if m.w.IsCustom {
		lines = append(lines, "", fmt.Sprintf("  NixOS Modules: %d selected, System Packages: %d selected",
			countSelected(m.w.SystemModules), countSelected(m.w.SystemPackages)))
	}

	flake := "[ ]"
	flakeStyle := theme.SubtleStyle()
	if m.w.AcceptFlakeConfig {
		flake = "[x]"
		flakeStyle = lipgloss.NewStyle().Foreground(theme.GetSuccessColor())
	}
	lines = append(lines, "",
		flakeStyle.Render(fmt.Sprintf("  %s accept-flake-config  (Space to toggle)", flake)))

	lines = append(lines, "",
		theme.ErrorStyle().Bold(true).Render("  WARNING: This will ERASE all data on the selected disk!"),
		"",
		"  "+m.buttonRow(theme, "  Install  ", "  Go Back  ", m.w.ConfirmCursor))

	return m.listPane(theme, "Installation Summary", strings.Join(lines, "\n"))
}

func countSelected(modules []nixfiles.Module) int {
	n := 0
	for _, mod := range modules {
		if mod.Selected {
			n++
		}
	}
	return n
}

func (m *InstallWizard) cloneView(theme config.Theme) string {
	var label string
	switch {
	case m.w.CloneError != "":
		label = theme.ErrorStyle().Bold(true).Render("Clone FAILED - see log below")
	case m.w.CloneDone:
		label = theme.SuccessStyle().Render("Clone complete!")
	default:
		label = m.spin.View() + " " + theme.InfoStyle().Render(m.clonePhase())
	}

	bar := m.centered(m.prog.ViewAs(float64(m.w.ClonePercent) / 100.0))

	logTitle := "Log"
	border := theme.GetMutedColor()
	titleStyle := lipgloss.NewStyle().Foreground(theme.GetPrimaryColor()).Bold(true)
	if m.w.CloneError != "" {
		logTitle = "Log (Up/Down to scroll | Enter to quit)"
		border = theme.GetErrorColor()
		titleStyle = theme.ErrorStyle().Bold(true)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.centered(label),
		bar,
		"",
		m.framed(theme, logTitle, m.logView.View(), border, titleStyle),
	)
}

// clonePhase is the human readable line above the clone gauge: the most
// recent git progress line once output starts flowing.
func (m *InstallWizard) clonePhase() string {
	if len(m.w.CloneLog) <= 1 {
		return "Starting clone..."
	}
	return m.w.CloneLog[len(m.w.CloneLog)-1]
}

func (m *InstallWizard) installView(theme config.Theme) string {
	var label string
	switch {
	case m.w.InstallError != "":
		label = theme.ErrorStyle().Bold(true).Render(
			fmt.Sprintf("FAILED at step %d/%d - see log below", m.w.InstallProgress, m.w.InstallTotal))
	case m.w.InstallDone:
		label = theme.SuccessStyle().Render("Complete!")
	default:
		label = m.spin.View() + " " + theme.InfoStyle().Render(
			fmt.Sprintf("%d/%d", m.w.InstallProgress, m.w.InstallTotal))
	}

	ratio := 0.0
	if m.w.InstallTotal > 0 {
		ratio = float64(m.w.InstallProgress) / float64(m.w.InstallTotal)
	}
	bar := m.centered(m.prog.ViewAs(ratio))

	logTitle := "Log"
	border := theme.GetMutedColor()
	titleStyle := lipgloss.NewStyle().Foreground(theme.GetPrimaryColor()).Bold(true)
	if m.w.InstallError != "" {
		logTitle = fmt.Sprintf("Log (Up/Down to scroll) | Full log: %s", config.InstallLogFile)
		border = theme.GetErrorColor()
		titleStyle = theme.ErrorStyle().Bold(true)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.centered(label),
		bar,
		"",
		m.framed(theme, logTitle, m.logView.View(), border, titleStyle),
	)
}

func (m *InstallWizard) completeView(theme config.Theme) string {
	usernames := make([]string, len(m.w.Users))
	for i, u := range m.w.Users {
		usernames[i] = u.Username
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		theme.SuccessStyle().Render("NixOS installation completed successfully!"),
		"",
		fmt.Sprintf("Host: %s", m.w.HostName),
		fmt.Sprintf("Users: %s", strings.Join(usernames, ", ")),
		"",
		"Would you like to reboot now?",
		"",
		m.buttonRow(theme, "  Reboot  ", "  Exit  ", m.w.RebootCursor),
	)
	box := theme.PaneStyle(config.PaneStyleConfig{
		Border:      lipgloss.RoundedBorder(),
		BorderColor: theme.GetSuccessColor(),
		Width:       52,
		Padding:     [2]int{1, 2},
	}).Render(content)
	return lipgloss.Place(m.width, m.bodyHeight(), lipgloss.Center, lipgloss.Center, box)
}

// cloneLogLine colors a clone log line: git errors red, milestones
// green, everything else dimmed.
func cloneLogLine(theme config.Theme, line string) string {
	switch {
	case strings.HasPrefix(line, "ERROR"),
		strings.Contains(line, "fatal"),
		strings.Contains(line, "error"):
		return theme.ErrorStyle().Render("  " + line)
	case strings.Contains(line, "complete"),
		strings.Contains(line, "Complete"),
		strings.Contains(line, "done"):
		return lipgloss.NewStyle().Foreground(theme.GetSuccessColor()).Render("  " + line)
	default:
		return theme.SubtleStyle().Render("  " + line)
	}
}

// installLogLine colors an install log line.
func installLogLine(theme config.Theme, line string) string {
	switch {
	case strings.HasPrefix(line, "ERROR"), strings.HasPrefix(line, "Warning"):
		return theme.ErrorStyle().Render("  " + line)
	case strings.Contains(line, "complete"), strings.Contains(line, "Complete"):
		return lipgloss.NewStyle().Foreground(theme.GetSuccessColor()).Render("  " + line)
	default:
		return theme.SubtleStyle().Render("  " + line)
	}
}

func (m *InstallWizard) footerHints(theme config.Theme) string {
	style := lipgloss.NewStyle().Foreground(theme.GetMutedColor())

	switch m.w.Step {
	case installer.StepCloningRepo:
		if m.w.CloneError != "" {
			return LogErrorKeyBindings(false).Render(style)
		}
		return theme.WarningStyle().Render("Cloning repository, please wait...")
	case installer.StepSelectPreset, installer.StepSelectDisk:
		return ListNavKeyBindings().Render(style)
	case installer.StepPartitionMode, installer.StepPartitionFilesystem:
		return PartitionModeKeyBindings().Render(style)
	case installer.StepSelectSystemModules, installer.StepSelectSystemPackages,
		installer.StepSelectUserModules, installer.StepSelectUserPackages:
		return ChecklistKeyBindings().Render(style)
	case installer.StepAddAnotherUser, installer.StepPartitionAnother, installer.StepComplete:
		return ChoiceKeyBindings().Render(style)
	case installer.StepConfirm:
		return ConfirmKeyBindings().Render(style)
	case installer.StepInstalling:
		switch {
		case m.w.InstallError != "":
			return LogErrorKeyBindings(true).Render(style)
		case m.w.InstallDone:
			return KeyBindingSet{Bindings: []KeyBinding{
				{Key: "ENTER", Keys: []string{"enter"}, Description: "Continue"},
			}}.Render(style)
		default:
			return theme.WarningStyle().Render("Please wait...")
		}
	}
	return TextInputKeyBindings().RenderInline(style)
}
