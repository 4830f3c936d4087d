// SPDX-License-Identifier: Apache-2.0
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/Work-Fort/Foundry/pkg/config"
	"github.com/Work-Fort/Foundry/pkg/diag"
	"github.com/Work-Fort/Foundry/pkg/installer"
	"github.com/Work-Fort/Foundry/pkg/partition"
)

// Layout constants to avoid magic numbers in dimension math.
const (
	headerLines  = 1
	titleLines   = 1
	stepBarLines = 1
	gaugeLines   = 1
	blankLines   = 1
	footerLines  = 1

	minBodyHeight = 5
	minLogHeight  = 3

	// Overhead inside the clone and install screens: job gauge label and
	// bar, a blank separator, the pane title and the pane border rows.
	logChromeLines = 7
	// Pane border and padding columns around the log viewport.
	logPaneOverhead = 6

	gaugePadding = 4
)

// pollInterval is how often the TUI copies background job progress into
// the wizard. The clone and install jobs only ever touch their shared
// state under a lock, so polling is race-free.
const pollInterval = 50 * time.Millisecond

type tickMsg time.Time

func tickCmd() tea.Cmd {
	return tea.Tick(pollInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// InstallWizard is the Bubble Tea model for the interactive installer.
// All decision state lives in the wrapped installer.Wizard; this type
// owns the rendering widgets and the poll loop that feeds job progress
// into the wizard between frames.
type InstallWizard struct {
	w *installer.Wizard

	width  int
	height int
	ready  bool

	input   textinput.Model
	spin    spinner.Model
	prog    progress.Model
	logView viewport.Model

	// writeBundle produces the diagnostics archive offered on a failed
	// install. Swapped in tests.
	writeBundle func(hostName, basePath string) (string, error)

	quitting bool
}

// NewInstallWizard wraps a wizard in a renderable model.
func NewInstallWizard(w *installer.Wizard) *InstallWizard {
	theme := config.CurrentTheme

	ti := textinput.New()
	ti.Prompt = ""
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.GetPrimaryColor())

	m := &InstallWizard{
		w:           w,
		input:       ti,
		spin:        sp,
		prog:        progress.New(progress.WithGradient(theme.Secondary, theme.Primary)),
		logView:     viewport.New(0, 0),
		writeBundle: diag.WriteBundle,
	}
	m.seedInput()
	return m
}

func (m *InstallWizard) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, textinput.Blink, tickCmd())
}

func (m *InstallWizard) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		log.Debugf("Installer TUI resized to %dx%d", m.width, m.height)
		return m, nil

	case tickMsg:
		m.syncBackground()
		return m, tickCmd()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	// Everything else (cursor blinks) belongs to the text input.
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// layout recomputes widget dimensions after a terminal resize.
func (m *InstallWizard) layout() {
	inputWidth := m.width*3/5 - 8
	if inputWidth < 20 {
		inputWidth = 20
	}
	m.input.Width = inputWidth

	barWidth := m.width - 2*gaugePadding
	if barWidth < 10 {
		barWidth = 10
	}
	m.prog.Width = barWidth

	logHeight := m.bodyHeight() - logChromeLines
	if logHeight < minLogHeight {
		logHeight = minLogHeight
	}
	m.logView.Width = m.width - logPaneOverhead
	m.logView.Height = logHeight

	m.ready = true
}

// bodyHeight is the vertical space left between the header block and
// the footer.
func (m *InstallWizard) bodyHeight() int {
	chrome := headerLines + titleLines + stepBarLines + gaugeLines + blankLines + footerLines
	h := m.height - chrome
	if h < minBodyHeight {
		h = minBodyHeight
	}
	return h
}

// syncBackground copies clone or install job progress into the wizard
// and lets it auto-advance when a job finishes. Called every poll tick.
func (m *InstallWizard) syncBackground() {
	switch m.w.Step {
	case installer.StepCloningRepo:
		m.w.SyncCloneState()
		m.setLogContent(m.w.CloneLog, cloneLogLine)
		m.w.MaybeFinishClone()
		if m.w.Step != installer.StepCloningRepo {
			m.seedInput()
		}
	case installer.StepInstalling:
		m.w.SyncInstallState()
		m.setLogContent(m.w.InstallLog, installLogLine)
		m.w.MaybeFinishInstall()
		if m.w.Step != installer.StepInstalling {
			m.seedInput()
		}
	}
}

// setLogContent refreshes the log viewport and keeps it pinned to the
// newest line while auto-scroll is on.
func (m *InstallWizard) setLogContent(lines []string, render func(config.Theme, string) string) {
	theme := config.CurrentTheme
	styled := make([]string, len(lines))
	for i, l := range lines {
		styled[i] = render(theme, l)
	}
	m.logView.SetContent(strings.Join(styled, "\n"))
	if m.w.AutoScroll {
		m.logView.GotoBottom()
	}
}

// seedInput loads the current step's text buffer into the input widget
// and switches echo mode for password steps. Must be called after every
// transition, since confirm handlers clear or keep buffers themselves.
func (m *InstallWizard) seedInput() {
	ref := m.w.InputRef()
	if ref == nil {
		m.input.SetValue("")
		return
	}

	switch m.w.Step {
	case installer.StepUserPassword, installer.StepUserPasswordConfirm,
		installer.StepRootPassword, installer.StepRootPasswordConfirm:
		m.input.EchoMode = textinput.EchoPassword
		m.input.EchoCharacter = '*'
	default:
		m.input.EchoMode = textinput.EchoNormal
	}

	m.input.SetValue(*ref)
	m.input.CursorEnd()
}

func (m *InstallWizard) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	// Ctrl+C always quits, even mid-install.
	if key == "ctrl+c" {
		m.quitting = true
		return m, tea.Quit
	}

	// A pending notice swallows the next key press.
	if m.w.StatusMessage != "" {
		m.w.StatusMessage = ""
		return m, nil
	}

	if key == "esc" {
		switch m.w.Step {
		case installer.StepCloningRepo, installer.StepInstalling, installer.StepComplete:
			// No way out of a running or finished job via Esc.
			return m, nil
		default:
			return m.goBack()
		}
	}

	if key == "q" && quitStep(m.w.Step) {
		m.quitting = true
		return m, tea.Quit
	}

	switch m.w.Step {
	case installer.StepCloningRepo:
		switch key {
		case "up", "k":
			m.w.AutoScroll = false
			m.logView.LineUp(1)
		case "down", "j":
			m.logView.LineDown(1)
			if m.logView.AtBottom() {
				m.w.AutoScroll = true
			}
		case "enter":
			if m.w.CloneError != "" {
				m.quitting = true
				return m, tea.Quit
			}
		}
		return m, nil

	case installer.StepSelectPreset:
		return m.handleListKey(key, len(m.w.PresetDisplayItems()), &m.w.PresetCursor)

	case installer.StepSelectSystemModules:
		return m.handleChecklistKey(key, len(m.w.SystemModules), &m.w.SystemModuleCursor)
	case installer.StepSelectSystemPackages:
		return m.handleChecklistKey(key, len(m.w.SystemPackages), &m.w.SystemPackageCursor)
	case installer.StepSelectUserModules:
		return m.handleChecklistKey(key, len(m.w.UserModules), &m.w.UserModuleCursor)
	case installer.StepSelectUserPackages:
		return m.handleChecklistKey(key, len(m.w.UserPackages), &m.w.UserPackageCursor)

	case installer.StepSelectDisk:
		return m.handleListKey(key, len(m.w.Disks), &m.w.DiskCursor)
	case installer.StepPartitionMode:
		return m.handleListKey(key, 2, &m.w.PartitionModeCursor)
	case installer.StepPartitionFilesystem:
		return m.handleListKey(key, len(partition.Filesystems), &m.w.FilesystemCursor)

	case installer.StepAddAnotherUser:
		return m.handleChoiceKey(key, &m.w.AnotherUserCursor)
	case installer.StepPartitionAnother:
		return m.handleChoiceKey(key, &m.w.AnotherPartitionCursor)
	case installer.StepComplete:
		return m.handleChoiceKey(key, &m.w.RebootCursor)

	case installer.StepConfirm:
		switch key {
		case "left", "h":
			m.w.ConfirmCursor = 0
		case "right", "l":
			m.w.ConfirmCursor = 1
		case " ":
			m.w.ToggleCurrent()
		case "enter":
			return m.confirmStep()
		}
		return m, nil

	case installer.StepInstalling:
		switch key {
		case "up", "k":
			m.w.AutoScroll = false
			m.logView.LineUp(1)
		case "down", "j":
			m.logView.LineDown(1)
			if m.logView.AtBottom() {
				m.w.AutoScroll = true
			}
		case "b":
			if m.w.InstallError != "" {
				m.saveDiagnostics()
			}
		case "enter":
			if m.w.InstallDone {
				m.w.MaybeFinishInstall()
				m.seedInput()
			} else if m.w.InstallError != "" {
				m.quitting = true
				return m, tea.Quit
			}
		}
		return m, nil
	}

	// Free-text steps: enter confirms, everything else edits the buffer.
	if m.w.InputRef() == nil {
		return m, nil
	}
	if key == "enter" {
		return m.confirmStep()
	}
	if msg.Type == tea.KeyRunes {
		msg.Runes = filterInputRunes(m.w.Step, msg.Runes)
		if len(msg.Runes) == 0 {
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if ref := m.w.InputRef(); ref != nil {
		*ref = m.input.Value()
	}
	return m, cmd
}

func (m *InstallWizard) handleListKey(key string, length int, cursor *int) (tea.Model, tea.Cmd) {
	switch key {
	case "up", "k":
		installer.ListPrev(length, cursor)
	case "down", "j":
		installer.ListNext(length, cursor)
	case "enter":
		return m.confirmStep()
	}
	return m, nil
}

func (m *InstallWizard) handleChecklistKey(key string, length int, cursor *int) (tea.Model, tea.Cmd) {
	if key == " " {
		m.w.ToggleCurrent()
		return m, nil
	}
	return m.handleListKey(key, length, cursor)
}

func (m *InstallWizard) handleChoiceKey(key string, cursor *int) (tea.Model, tea.Cmd) {
	switch key {
	case "left", "h":
		*cursor = 0
	case "right", "l":
		*cursor = 1
	case "enter":
		return m.confirmStep()
	}
	return m, nil
}

// confirmStep runs the wizard's confirm action for the current step and
// re-seeds the input widget for whatever step comes next.
func (m *InstallWizard) confirmStep() (tea.Model, tea.Cmd) {
	m.w.Confirm()
	m.seedInput()
	if m.w.ShouldQuit {
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

// goBack walks one step back. Steps with no way back treat Esc as quit.
func (m *InstallWizard) goBack() (tea.Model, tea.Cmd) {
	if !m.w.Back() {
		m.quitting = true
		return m, tea.Quit
	}
	m.seedInput()
	return m, nil
}

// saveDiagnostics writes the failure bundle and reports the path (or
// the failure to write it) through the status notice.
func (m *InstallWizard) saveDiagnostics() {
	dest, err := m.writeBundle(m.w.HostName, m.w.BasePath)
	if err != nil {
		m.w.StatusMessage = fmt.Sprintf("Failed to write diagnostics bundle: %v", err)
		return
	}
	log.Debugf("Diagnostics bundle written to %s", dest)
	m.w.StatusMessage = fmt.Sprintf("Diagnostics bundle written to %s", dest)
}

// quitStep reports whether q quits from the given step. Only full-screen
// pickers support it; on text inputs q is just a character.
func quitStep(s installer.Step) bool {
	switch s {
	case installer.StepSelectPreset, installer.StepSelectDisk,
		installer.StepSelectSystemModules, installer.StepSelectSystemPackages,
		installer.StepSelectUserModules, installer.StepSelectUserPackages:
		return true
	}
	return false
}

// filterInputRunes drops characters the numeric entry steps reject.
func filterInputRunes(step installer.Step, runes []rune) []rune {
	switch step {
	case installer.StepSwapSize:
		return keepRunes(runes, func(r rune) bool {
			return r >= '0' && r <= '9'
		})
	case installer.StepPartitionSize:
		return keepRunes(runes, func(r rune) bool {
			return (r >= '0' && r <= '9') || r == '.'
		})
	}
	return runes
}

func keepRunes(runes []rune, keep func(rune) bool) []rune {
	out := make([]rune, 0, len(runes))
	for _, r := range runes {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

// ErrUserCancelled is returned when the user quits the wizard before the
// installation started
var ErrUserCancelled = fmt.Errorf("cancelled by user")

// RunInstallWizard runs the installation wizard over the given wizard state
// This handles the ENTIRE flow: clone + configuration + install + progress
func RunInstallWizard(w *installer.Wizard) error {
	m := NewInstallWizard(w)
	p := tea.NewProgram(m, tea.WithAltScreen())

	finalModel, err := p.Run()
	if err != nil {
		return err
	}

	if wizard, ok := finalModel.(*InstallWizard); ok {
		if wizard.w.CloneError != "" {
			return fmt.Errorf("repository clone failed: %s", wizard.w.CloneError)
		}
		if wizard.w.InstallError != "" {
			return fmt.Errorf("installation failed, see %s", config.InstallLogFile)
		}
		if wizard.w.Step != installer.StepComplete {
			return ErrUserCancelled
		}
		return nil
	}

	return fmt.Errorf("unexpected model type")
}
