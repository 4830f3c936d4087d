// SPDX-License-Identifier: Apache-2.0
package ui

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/viper"

	"github.com/Work-Fort/Foundry/pkg/config"
	"github.com/Work-Fort/Foundry/pkg/installer"
	"github.com/Work-Fort/Foundry/pkg/partition"
)

// newTestRepo lays out a minimal configuration repo so the wizard scans
// real directories instead of warning about a broken layout.
func newTestRepo(t *testing.T) string {
	t.Helper()
	base := t.TempDir()

	for _, dir := range []string{
		"modules/nixosModules",
		"modules/homeManagerModules",
		"modules/packages",
		"modules/hosts/anvil",
	} {
		if err := os.MkdirAll(filepath.Join(base, dir), 0755); err != nil {
			t.Fatalf("MkdirAll(%s) failed: %v", dir, err)
		}
	}

	files := map[string]string{
		"flake.nix":                          "{ }\n",
		"modules/nixosModules/desktop.nix":   "{ }\n",
		"modules/homeManagerModules/git.nix": "{ }\n",
		"modules/packages/devel.nix":         "{ }\n",
		"modules/hosts/anvil/default.nix":    "{ }\n",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(base, name), []byte(content), 0644); err != nil {
			t.Fatalf("WriteFile(%s) failed: %v", name, err)
		}
	}
	return base
}

func newTestModel(t *testing.T) (*InstallWizard, *installer.Wizard) {
	t.Helper()
	viper.Reset()
	config.InitViper()
	t.Cleanup(viper.Reset)

	w := installer.New(installer.Options{BasePath: newTestRepo(t)})
	m := NewInstallWizard(w)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return m, w
}

func keyMsg(key string) tea.KeyMsg {
	switch key {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
}

// press feeds a sequence of keys through Update and returns the last
// command, which is non-nil when the model wants to quit.
func press(m *InstallWizard, keys ...string) tea.Cmd {
	var cmd tea.Cmd
	for _, k := range keys {
		_, cmd = m.Update(keyMsg(k))
	}
	return cmd
}

func tick(m *InstallWizard) {
	m.Update(tickMsg(time.Now()))
}

func TestTypingFlowsIntoHostName(t *testing.T) {
	m, w := newTestModel(t)

	// Preset list is [anvil, Custom]; pick Custom.
	press(m, "down", "enter")
	if w.Step != installer.StepHostName {
		t.Fatalf("Step = %v, want %v", w.Step, installer.StepHostName)
	}

	press(m, "forge")
	if w.HostNameInput != "forge" {
		t.Errorf("HostNameInput = %q, want %q", w.HostNameInput, "forge")
	}

	press(m, "enter")
	if w.Step != installer.StepSelectSystemModules {
		t.Errorf("Step = %v, want %v", w.Step, installer.StepSelectSystemModules)
	}
	if w.HostName != "forge" {
		t.Errorf("HostName = %q, want %q", w.HostName, "forge")
	}
}

func TestBackspaceEditsInput(t *testing.T) {
	m, w := newTestModel(t)

	press(m, "down", "enter", "abc", "backspace")
	if w.HostNameInput != "ab" {
		t.Errorf("HostNameInput = %q, want %q", w.HostNameInput, "ab")
	}
}

func TestStatusNoticeSwallowsNextKey(t *testing.T) {
	m, w := newTestModel(t)

	w.StatusMessage = "heads up"
	press(m, "enter")

	if w.StatusMessage != "" {
		t.Errorf("StatusMessage = %q, want cleared", w.StatusMessage)
	}
	if w.Step != installer.StepSelectPreset {
		t.Errorf("Step = %v, the acknowledged key should not also select", w.Step)
	}
}

func TestCtrlCQuitsAnywhere(t *testing.T) {
	m, w := newTestModel(t)
	w.Step = installer.StepInstalling

	cmd := press(m, "ctrl+c")
	if cmd == nil {
		t.Fatal("ctrl+c should produce a quit command")
	}
	if !m.quitting {
		t.Error("quitting flag not set")
	}
}

func TestEscQuitsWhereBackIsRefused(t *testing.T) {
	m, _ := newTestModel(t)

	cmd := press(m, "esc")
	if cmd == nil {
		t.Fatal("esc on the first screen should quit")
	}
	if !m.quitting {
		t.Error("quitting flag not set")
	}
}

func TestEscWalksBackFromHostName(t *testing.T) {
	m, w := newTestModel(t)

	press(m, "down", "enter")
	cmd := press(m, "esc")
	if cmd != nil {
		t.Fatal("esc with a back target should not quit")
	}
	if w.Step != installer.StepSelectPreset {
		t.Errorf("Step = %v, want %v", w.Step, installer.StepSelectPreset)
	}
}

func TestEscIgnoredDuringInstall(t *testing.T) {
	m, w := newTestModel(t)
	w.Step = installer.StepInstalling

	cmd := press(m, "esc")
	if cmd != nil || m.quitting {
		t.Error("esc must be ignored while the install job runs")
	}
	if w.Step != installer.StepInstalling {
		t.Errorf("Step = %v, want %v", w.Step, installer.StepInstalling)
	}
}

func TestQQuitsFromPickers(t *testing.T) {
	m, _ := newTestModel(t)

	cmd := press(m, "q")
	if cmd == nil || !m.quitting {
		t.Error("q should quit from the preset picker")
	}
}

func TestQIsJustTextOnInputSteps(t *testing.T) {
	m, w := newTestModel(t)

	press(m, "down", "enter", "q")
	if m.quitting {
		t.Fatal("q must not quit while typing a host name")
	}
	if w.HostNameInput != "q" {
		t.Errorf("HostNameInput = %q, want %q", w.HostNameInput, "q")
	}
}

func TestSpaceTogglesChecklist(t *testing.T) {
	m, w := newTestModel(t)
	w.Step = installer.StepSelectSystemModules

	press(m, " ")
	if !w.SystemModules[0].Selected {
		t.Error("space should select the module under the cursor")
	}
	press(m, " ")
	if w.SystemModules[0].Selected {
		t.Error("space should toggle the module off again")
	}
}

func TestSwapSizeAcceptsOnlyDigits(t *testing.T) {
	m, w := newTestModel(t)
	w.Step = installer.StepSwapSize
	m.seedInput()

	press(m, "a")
	if w.SwapSizeInput != "4" {
		t.Errorf("SwapSizeInput = %q, letters should be dropped", w.SwapSizeInput)
	}
	press(m, "2")
	if w.SwapSizeInput != "42" {
		t.Errorf("SwapSizeInput = %q, want %q", w.SwapSizeInput, "42")
	}
}

func TestPartitionSizeAcceptsDecimalPoint(t *testing.T) {
	m, w := newTestModel(t)
	w.Step = installer.StepPartitionSize
	m.seedInput()

	press(m, "1", ".", "5", "x")
	if w.SizeInput != "1.5" {
		t.Errorf("SizeInput = %q, want %q", w.SizeInput, "1.5")
	}
}

func TestPartitionModeNavigation(t *testing.T) {
	m, w := newTestModel(t)
	w.Step = installer.StepPartitionMode

	press(m, "down")
	if w.PartitionModeCursor != 1 {
		t.Fatalf("PartitionModeCursor = %d, want 1", w.PartitionModeCursor)
	}
	press(m, "enter")
	if w.PartitionMode != partition.Custom {
		t.Errorf("PartitionMode = %v, want %v", w.PartitionMode, partition.Custom)
	}
	if w.Step != installer.StepPartitionMount {
		t.Errorf("Step = %v, want %v", w.Step, installer.StepPartitionMount)
	}
}

func TestCloneScrollTogglesAutoScroll(t *testing.T) {
	m, w := newTestModel(t)
	w.Step = installer.StepCloningRepo

	press(m, "up")
	if w.AutoScroll {
		t.Error("scrolling up should disable auto-scroll")
	}
	press(m, "down")
	if !w.AutoScroll {
		t.Error("scrolling back to the bottom should re-enable auto-scroll")
	}
}

func TestCloneAutoAdvanceOnTick(t *testing.T) {
	m, w := newTestModel(t)
	w.Step = installer.StepCloningRepo
	w.CloneDone = true

	tick(m)
	if w.Step != installer.StepSelectPreset {
		t.Errorf("Step = %v, want %v after a finished clone", w.Step, installer.StepSelectPreset)
	}
}

func TestCloneErrorEnterQuits(t *testing.T) {
	m, w := newTestModel(t)
	w.Step = installer.StepCloningRepo
	w.CloneError = "fatal: repository not found"

	cmd := press(m, "enter")
	if cmd == nil || !m.quitting {
		t.Error("enter on a failed clone should quit")
	}
}

func TestInstallAutoAdvanceOnTick(t *testing.T) {
	m, w := newTestModel(t)
	w.Step = installer.StepInstalling
	w.InstallDone = true

	tick(m)
	if w.Step != installer.StepRootPassword {
		t.Errorf("Step = %v, want %v after a finished install", w.Step, installer.StepRootPassword)
	}
	if m.input.EchoMode != textinput.EchoPassword {
		t.Error("root password entry should mask input")
	}
}

func TestInstallDoneEnterAdvances(t *testing.T) {
	m, w := newTestModel(t)
	w.Step = installer.StepInstalling
	w.InstallDone = true

	press(m, "enter")
	if w.Step != installer.StepRootPassword {
		t.Errorf("Step = %v, want %v", w.Step, installer.StepRootPassword)
	}
}

func TestInstallErrorEnterQuits(t *testing.T) {
	m, w := newTestModel(t)
	w.Step = installer.StepInstalling
	w.InstallError = "mkfs exploded"

	cmd := press(m, "enter")
	if cmd == nil || !m.quitting {
		t.Error("enter on a failed install should quit")
	}
}

func TestInstallFailureOffersDiagnosticsBundle(t *testing.T) {
	m, w := newTestModel(t)
	w.Step = installer.StepInstalling
	w.InstallError = "mkfs exploded"
	w.HostName = "anvil"

	var gotHost, gotBase string
	m.writeBundle = func(hostName, basePath string) (string, error) {
		gotHost, gotBase = hostName, basePath
		return "/tmp/foundry-diag-anvil.tar.xz", nil
	}

	press(m, "b")
	if gotHost != "anvil" {
		t.Errorf("bundle host = %q, want %q", gotHost, "anvil")
	}
	if gotBase != w.BasePath {
		t.Errorf("bundle base path = %q, want %q", gotBase, w.BasePath)
	}
	if !strings.Contains(w.StatusMessage, "/tmp/foundry-diag-anvil.tar.xz") {
		t.Errorf("StatusMessage = %q, want the bundle path", w.StatusMessage)
	}

	// The notice swallows the next key.
	press(m, "x")
	if w.StatusMessage != "" {
		t.Errorf("StatusMessage = %q, want cleared", w.StatusMessage)
	}
}

func TestDiagnosticsBundleWriteFailure(t *testing.T) {
	m, w := newTestModel(t)
	w.Step = installer.StepInstalling
	w.InstallError = "mkfs exploded"

	m.writeBundle = func(hostName, basePath string) (string, error) {
		return "", errors.New("disk full")
	}

	press(m, "b")
	if !strings.Contains(w.StatusMessage, "Failed to write diagnostics bundle") {
		t.Errorf("StatusMessage = %q, want a write failure notice", w.StatusMessage)
	}
}

func TestDiagnosticsBundleNeedsFailure(t *testing.T) {
	m, w := newTestModel(t)
	w.Step = installer.StepInstalling

	called := false
	m.writeBundle = func(hostName, basePath string) (string, error) {
		called = true
		return "", nil
	}

	press(m, "b")
	if called {
		t.Error("bundle must only be offered after a failure")
	}
	if w.StatusMessage != "" {
		t.Errorf("StatusMessage = %q, want empty", w.StatusMessage)
	}
}

func TestCompleteExitWithoutReboot(t *testing.T) {
	m, w := newTestModel(t)
	w.Step = installer.StepComplete
	w.HostName = "anvil"

	press(m, "right")
	if w.RebootCursor != 1 {
		t.Fatalf("RebootCursor = %d, want 1", w.RebootCursor)
	}
	cmd := press(m, "enter")
	if cmd == nil || !m.quitting {
		t.Error("choosing Exit should quit the program")
	}
}

func TestClonePhaseLabel(t *testing.T) {
	m, w := newTestModel(t)

	if got := m.clonePhase(); got != "Starting clone..." {
		t.Errorf("clonePhase() = %q, want %q", got, "Starting clone...")
	}

	w.CloneLog = []string{"Cloning into '/tmp/x'...", "Receiving objects:  42%"}
	if got := m.clonePhase(); got != "Receiving objects:  42%" {
		t.Errorf("clonePhase() = %q, want the newest log line", got)
	}
}

func TestPresetViewListsEntries(t *testing.T) {
	m, _ := newTestModel(t)

	view := m.View()
	for _, want := range []string{"FOUNDRY", "Select a host preset", "anvil", "Custom"} {
		if !strings.Contains(view, want) {
			t.Errorf("preset view missing %q", want)
		}
	}
}

func TestEmptyChecklistShowsHint(t *testing.T) {
	m, w := newTestModel(t)
	w.Step = installer.StepSelectUserModules

	view := m.View()
	for _, want := range []string{"No modules found.", "Press Enter to continue without selecting modules."} {
		if !strings.Contains(view, want) {
			t.Errorf("empty checklist view missing %q", want)
		}
	}
}

func TestConfirmViewSummarizesPlan(t *testing.T) {
	m, w := newTestModel(t)
	w.Step = installer.StepConfirm
	w.HostName = "anvil"
	w.IsCustom = false
	w.Users = []installer.UserEntry{{Username: "alice"}}
	w.Partitions = partition.FullDiskPlan(4)
	w.SelectedDisk = &partition.BlockDevice{
		Name: "vda", Path: "/dev/vda", SizeHuman: "50.0 GiB", Model: "TestDisk",
	}

	view := m.View()
	wants := []string{
		"Host: anvil",
		"Disk: /dev/vda (50.0 GiB)",
		"swap -> swap (4.0 GiB) [swap]",
		"root -> / (remaining) [ext4]",
		"alice (0 HM modules, 0 packages)",
		"accept-flake-config",
		"WARNING: This will ERASE all data on the selected disk!",
	}
	for _, want := range wants {
		if !strings.Contains(view, want) {
			t.Errorf("confirm view missing %q", want)
		}
	}
}

func TestInstallViewShowsFailure(t *testing.T) {
	m, w := newTestModel(t)
	w.Step = installer.StepInstalling
	w.InstallError = "mkfs exploded"
	w.InstallProgress = 3
	w.InstallTotal = 9

	view := m.View()
	for _, want := range []string{"FAILED at step 3/9", "Full log:", "Save Diagnostics"} {
		if !strings.Contains(view, want) {
			t.Errorf("install failure view missing %q", want)
		}
	}
}

func TestNoticeReplacesFrame(t *testing.T) {
	m, w := newTestModel(t)
	w.StatusMessage = "something to know"

	view := m.View()
	if !strings.Contains(view, "something to know") {
		t.Error("notice text missing from view")
	}
	if !strings.Contains(view, "Press any key to continue") {
		t.Error("notice hint missing from view")
	}
	if strings.Contains(view, "Select a host preset") {
		t.Error("notice should replace the step body entirely")
	}
}

func TestStepBarMarksProgress(t *testing.T) {
	bar := RenderStepBar(3, installer.TotalSteps, 60)

	if got := strings.Count(bar, "✓"); got != 2 {
		t.Errorf("complete indicators = %d, want 2", got)
	}
	if got := strings.Count(bar, "●"); got != 1 {
		t.Errorf("active indicators = %d, want 1", got)
	}
	if got := strings.Count(bar, "○"); got != installer.TotalSteps-3 {
		t.Errorf("pending indicators = %d, want %d", got, installer.TotalSteps-3)
	}
}
