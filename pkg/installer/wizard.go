// SPDX-License-Identifier: Apache-2.0

// Package installer implements the wizard state machine behind the
// foundry install TUI. A Wizard walks the operator through host setup,
// user accounts, disk partitioning and final confirmation, then hands
// off to the pipeline package for the background clone and install
// jobs. The type holds every piece of state the front end renders and
// knows nothing about drawing.
package installer

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/Work-Fort/Foundry/pkg/config"
	"github.com/Work-Fort/Foundry/pkg/gitrepo"
	"github.com/Work-Fort/Foundry/pkg/nixfiles"
	"github.com/Work-Fort/Foundry/pkg/nixos"
	"github.com/Work-Fort/Foundry/pkg/partition"
	"github.com/Work-Fort/Foundry/pkg/pipeline"
)

// Options selects where the wizard gets its configuration repo from.
type Options struct {
	// BasePath points at an existing local checkout. When set, the
	// clone step is skipped entirely.
	BasePath string
	// RepoURL is cloned into the cache when no BasePath is given.
	RepoURL string
}

// settings is the slice of configuration the wizard acts on, captured
// as plain values so a repo-config merge refreshes them at one defined
// point instead of every read seeing a different layer.
type settings struct {
	brandingTitle     string
	defaultHostname   string
	defaultUsername   string
	defaultSwapSize   string
	verifyKey         string
	hmBaseModules     []string
	preInstallHooks   []string
	postInstallHooks  []string
	acceptFlakeConfig bool
}

func loadSettings() settings {
	return settings{
		brandingTitle:     config.GetBrandingTitle(),
		defaultHostname:   config.GetDefaultHostname(),
		defaultUsername:   config.GetDefaultUsername(),
		defaultSwapSize:   config.GetDefaultSwapSize(),
		verifyKey:         config.GetVerifyKey(),
		hmBaseModules:     config.GetHMBaseModules(),
		preInstallHooks:   config.GetPreInstallHooks(),
		postInstallHooks:  config.GetPostInstallHooks(),
		acceptFlakeConfig: config.GetAcceptFlakeConfig(),
	}
}

// Wizard is the full state of one installer run. Exported fields are
// read (and for inputs, written) by the UI layer; everything below the
// collaborator block is swapped out in tests.
type Wizard struct {
	Step       Step
	ShouldQuit bool

	BasePath string
	RepoURL  string

	BrandingTitle string

	// Clone progress, copied from the background job each frame.
	CloneLog       []string
	ClonePercent   int
	CloneError     string
	CloneDone      bool
	CloneLogScroll int

	Presets      []nixfiles.HostPreset
	PresetCursor int
	IsCustom     bool

	HostName      string
	HostNameInput string

	SystemModules      []nixfiles.Module
	SystemModuleCursor int

	SystemPackages      []nixfiles.Module
	SystemPackageCursor int

	Users                []UserEntry
	UsernameInput        string
	PasswordInput        string
	PasswordConfirmInput string
	PasswordMismatch     bool

	// Index of the user whose modules are being picked, and the working
	// copies the selection steps edit before saving back.
	UserModuleIndex   int
	UserModules       []nixfiles.Module
	UserModuleCursor  int
	UserPackages      []nixfiles.Module
	UserPackageCursor int

	Disks        []partition.BlockDevice
	DiskCursor   int
	SelectedDisk *partition.BlockDevice

	PartitionMode       partition.Mode
	PartitionModeCursor int
	SwapSizeInput       string
	Partitions          []partition.Plan

	MountInput       string
	SizeInput        string
	FilesystemCursor int

	ConfirmCursor     int
	AcceptFlakeConfig bool

	RootPasswordInput        string
	RootPasswordConfirmInput string
	RootPasswordMismatch     bool

	// Index of the user whose password is being collected.
	PasswordUserIndex int

	AnotherUserCursor      int
	AnotherPartitionCursor int

	// Install progress, copied from the background job each frame.
	InstallLog      []string
	InstallProgress int
	InstallTotal    int
	InstallError    string
	InstallDone     bool
	LogScroll       int
	AutoScroll      bool

	RebootCursor int

	StatusMessage string

	cfg           settings
	cloneFinished bool

	sharedClone   *pipeline.ProgressState
	sharedInstall *pipeline.ProgressState

	// Collaborators. Production wiring happens in New; tests replace
	// individual fields to keep the machine off the real system.
	scanPresets        func(basePath string) []nixfiles.HostPreset
	scanSystemModules  func(basePath string) []nixfiles.Module
	scanUserModules    func(basePath string) []nixfiles.Module
	scanPackageModules func(basePath string) []nixfiles.Module
	userConfigExists   func(basePath, hostName, username string) bool
	validateLayout     func(basePath string) []string
	mergeRepoConfig    func(repoRoot string) error
	verifyRepo         func(repoRoot, keyPath string) error
	listDisks          func() ([]partition.BlockDevice, error)
	setRootPassword    func(password string) error
	setUserPassword    func(username, password string) error
	runClone           func(url, dest string) *pipeline.ProgressState
	runInstall         func(opts pipeline.InstallOptions) *pipeline.ProgressState
	reboot             func() error
}

// New builds a Wizard from the loaded configuration. With a BasePath it
// scans the checkout and starts at preset selection; otherwise it kicks
// off a background clone and starts on the clone screen.
func New(opts Options) *Wizard {
	w := &Wizard{
		InstallTotal: 8,
		AutoScroll:   true,

		scanPresets:        nixfiles.ScanHostPresets,
		scanSystemModules:  nixfiles.ScanSystemModules,
		scanUserModules:    nixfiles.ScanUserModules,
		scanPackageModules: nixfiles.ScanPackageModules,
		userConfigExists:   nixfiles.UserConfigExists,
		validateLayout:     nixfiles.ValidateLayout,
		mergeRepoConfig:    config.MergeRepoConfig,
		verifyRepo:         gitrepo.VerifyRepoConfig,
		listDisks:          partition.ListBlockDevices,
		setRootPassword:    nixos.SetRootPassword,
		setUserPassword:    nixos.SetUserPassword,
		runClone:           pipeline.RunClone,
		runInstall:         pipeline.RunInstall,
		reboot:             nixos.Reboot,
	}

	// The verify key is captured before any repo config merge, so the
	// trust anchor always predates the repository it checks.
	w.cfg = loadSettings()

	needsClone := opts.BasePath == ""
	if needsClone {
		w.BasePath = config.GlobalPaths.CloneDir
		w.RepoURL = opts.RepoURL
		w.Step = StepCloningRepo
	} else {
		w.BasePath = opts.BasePath
		if warnings := w.validateLayout(w.BasePath); len(warnings) > 0 {
			w.StatusMessage = strings.Join(warnings, "\n")
		}
		if err := w.mergeRepoConfig(w.BasePath); err != nil {
			w.addStatus(fmt.Sprintf("Repo config rejected: %v", err))
		}
		w.cfg = loadSettings()

		w.Presets = w.scanPresets(w.BasePath)
		w.SystemModules = w.scanSystemModules(w.BasePath)
		w.SystemPackages = w.scanPackageModules(w.BasePath)
		w.Step = StepSelectPreset
	}

	w.HostNameInput = w.cfg.defaultHostname
	w.SwapSizeInput = w.cfg.defaultSwapSize
	if w.SwapSizeInput == "" {
		w.SwapSizeInput = "4"
	}
	w.BrandingTitle = w.cfg.brandingTitle
	if w.BrandingTitle == "" {
		w.BrandingTitle = "Foundry NixOS Installer"
	}
	w.AcceptFlakeConfig = w.cfg.acceptFlakeConfig

	if needsClone {
		w.startClone()
	}
	return w
}

// PresetDisplayItems returns the preset picker rows, with the synthetic
// "Custom" entry always last.
func (w *Wizard) PresetDisplayItems() []string {
	items := make([]string, 0, len(w.Presets)+1)
	for _, p := range w.Presets {
		items = append(items, p.Name)
	}
	return append(items, "Custom")
}

// ListNext advances a picker cursor, wrapping at the end.
func ListNext(length int, cursor *int) {
	if length == 0 {
		return
	}
	*cursor = (*cursor + 1) % length
}

// ListPrev moves a picker cursor up, wrapping at the top.
func ListPrev(length int, cursor *int) {
	if length == 0 {
		return
	}
	if *cursor == 0 {
		*cursor = length - 1
	} else {
		*cursor--
	}
}

// ToggleCurrent flips the selection under the cursor on multi-select
// steps. On the confirm screen it toggles the flake-config switch.
func (w *Wizard) ToggleCurrent() {
	switch w.Step {
	case StepSelectSystemModules:
		toggleAt(w.SystemModules, w.SystemModuleCursor)
	case StepSelectSystemPackages:
		toggleAt(w.SystemPackages, w.SystemPackageCursor)
	case StepSelectUserModules:
		toggleAt(w.UserModules, w.UserModuleCursor)
	case StepSelectUserPackages:
		toggleAt(w.UserPackages, w.UserPackageCursor)
	case StepConfirm:
		w.AcceptFlakeConfig = !w.AcceptFlakeConfig
	}
}

func toggleAt(modules []nixfiles.Module, i int) {
	if i >= 0 && i < len(modules) {
		modules[i].Selected = !modules[i].Selected
	}
}

// startClone wipes any stale checkout at the destination and launches
// the background clone job.
func (w *Wizard) startClone() {
	_ = os.RemoveAll(w.BasePath)
	log.Debugf("Cloning %s into %s", w.RepoURL, w.BasePath)
	w.sharedClone = w.runClone(w.RepoURL, w.BasePath)
}

// SyncCloneState copies the background clone job's state into the
// wizard. Once the clone has been finalized the copy stops, so an
// error raised during finalization is not overwritten by a later poll.
func (w *Wizard) SyncCloneState() {
	if w.sharedClone == nil || w.cloneFinished {
		return
	}
	s := w.sharedClone.Snapshot()
	w.CloneLog = s.Log
	w.ClonePercent = s.Progress
	w.CloneError = s.Err
	w.CloneDone = s.Done

	if w.AutoScroll && len(w.CloneLog) > 0 {
		w.CloneLogScroll = len(w.CloneLog) - 1
	}
}

// MaybeFinishClone finalizes a successful clone exactly once: verify,
// merge repo config, scan the checkout and advance to preset selection.
// A clone that ended in an error stays parked on the clone screen.
func (w *Wizard) MaybeFinishClone() {
	if w.Step != StepCloningRepo || w.cloneFinished {
		return
	}
	if !w.CloneDone || w.CloneError != "" {
		return
	}
	w.cloneFinished = true
	w.finishClone()
}

func (w *Wizard) finishClone() {
	if w.cfg.verifyKey != "" {
		if err := w.verifyRepo(w.BasePath, w.cfg.verifyKey); err != nil {
			w.CloneError = fmt.Sprintf("Repository verification failed: %v", err)
			return
		}
	}

	if warnings := w.validateLayout(w.BasePath); len(warnings) > 0 {
		w.StatusMessage = strings.Join(warnings, "\n")
	}
	if err := w.mergeRepoConfig(w.BasePath); err != nil {
		w.addStatus(fmt.Sprintf("Repo config rejected: %v", err))
	}
	w.cfg = loadSettings()

	w.Presets = w.scanPresets(w.BasePath)
	w.SystemModules = w.scanSystemModules(w.BasePath)
	w.SystemPackages = w.scanPackageModules(w.BasePath)

	// Repo-level defaults that were not known at startup.
	if w.HostNameInput == "" {
		w.HostNameInput = w.cfg.defaultHostname
	}
	if w.cfg.defaultSwapSize != "" {
		w.SwapSizeInput = w.cfg.defaultSwapSize
	}
	if w.cfg.brandingTitle != "" {
		w.BrandingTitle = w.cfg.brandingTitle
	}

	log.Debugf("Clone finished: %d presets, %d system modules",
		len(w.Presets), len(w.SystemModules))
	w.Step = StepSelectPreset
}

// SyncInstallState copies the background install job's state into the
// wizard and keeps the log pinned to the bottom while auto-scroll is on.
func (w *Wizard) SyncInstallState() {
	if w.sharedInstall == nil {
		return
	}
	s := w.sharedInstall.Snapshot()
	w.InstallLog = s.Log
	w.InstallProgress = s.Progress
	w.InstallTotal = s.Total
	w.InstallError = s.Err
	w.InstallDone = s.Done

	if w.AutoScroll && len(w.InstallLog) > 0 {
		w.LogScroll = len(w.InstallLog) - 1
	}
}

// MaybeFinishInstall advances to root password entry once the install
// job reports done. A failed install never reports done, so it stays on
// the install screen with the error visible.
func (w *Wizard) MaybeFinishInstall() {
	if w.Step == StepInstalling && w.InstallDone {
		w.Step = StepRootPassword
	}
}

// StartInstallation launches the background install job with everything
// collected so far.
func (w *Wizard) StartInstallation() {
	opts := pipeline.InstallOptions{
		Partitions:        w.Partitions,
		BasePath:          w.BasePath,
		HostName:          w.HostName,
		Custom:            w.IsCustom,
		SystemModules:     w.SystemModules,
		PackageModules:    w.SystemPackages,
		Users:             installUsers(w.Users),
		AcceptFlakeConfig: w.AcceptFlakeConfig,
		HMBaseModules:     w.cfg.hmBaseModules,
		PreInstallHooks:   w.cfg.preInstallHooks,
		PostInstallHooks:  w.cfg.postInstallHooks,
	}

	if w.SelectedDisk == nil {
		// Should be unreachable through the wizard; park a failed state
		// so the install screen shows the problem instead of spawning.
		state := pipeline.NewProgressState(pipeline.InstallTotal(opts))
		state.AppendLog("ERROR: No disk selected")
		state.Fail("No disk selected")
		w.sharedInstall = state
		return
	}
	opts.DiskPath = w.SelectedDisk.Path

	log.Debugf("Starting installation of %s on %s", w.HostName, opts.DiskPath)
	w.sharedInstall = w.runInstall(opts)
}

func installUsers(users []UserEntry) []pipeline.InstallUser {
	out := make([]pipeline.InstallUser, len(users))
	for i, u := range users {
		out[i] = pipeline.InstallUser{
			Username:       u.Username,
			UserModules:    u.UserModules,
			PackageModules: u.PackageModules,
		}
	}
	return out
}

// logInstall records a post-install action in the visible log and the
// persistent log file. The background job owns the log while it runs;
// this is only for steps taken after it finished.
func (w *Wizard) logInstall(msg string) {
	w.InstallLog = append(w.InstallLog, msg)
	pipeline.AppendLogLine(msg)
}

// prefillUsername seeds the username input from configuration, but only
// for the first user and only when nothing was typed yet.
func (w *Wizard) prefillUsername() {
	if len(w.Users) == 0 && w.UsernameInput == "" {
		w.UsernameInput = w.cfg.defaultUsername
	}
}

// addStatus appends to the status line without clobbering what is
// already there.
func (w *Wizard) addStatus(msg string) {
	if w.StatusMessage == "" {
		w.StatusMessage = msg
		return
	}
	w.StatusMessage += "\n" + msg
}

// StepTitle returns the header title for the current step.
func (w *Wizard) StepTitle() string {
	switch w.Step {
	case StepCloningRepo:
		return "Cloning Repository"
	case StepSelectPreset:
		return "Select Host Preset"
	case StepHostName:
		return "Enter Host Name"
	case StepSelectSystemModules:
		return "Select NixOS Modules"
	case StepSelectSystemPackages:
		return "Select System Packages"
	case StepCreateUser:
		return fmt.Sprintf("Create User #%d", len(w.Users)+1)
	case StepUserPassword:
		if w.PasswordUserIndex < len(w.Users) {
			return fmt.Sprintf("Set Password for '%s'", w.Users[w.PasswordUserIndex].Username)
		}
		return "Set User Password"
	case StepUserPasswordConfirm:
		if w.PasswordUserIndex < len(w.Users) {
			return fmt.Sprintf("Confirm Password for '%s'", w.Users[w.PasswordUserIndex].Username)
		}
		return "Confirm User Password"
	case StepAddAnotherUser:
		return "Add Another User?"
	case StepSelectUserModules:
		return "Select Home Manager Modules"
	case StepSelectUserPackages:
		return "Select User Packages"
	case StepSelectDisk:
		return "Select Installation Disk"
	case StepPartitionMode:
		return "Partition Mode"
	case StepSwapSize:
		return "Swap Size"
	case StepPartitionMount:
		return "Partition Mount Point"
	case StepPartitionSize:
		return "Partition Size"
	case StepPartitionFilesystem:
		return "Partition Filesystem"
	case StepPartitionAnother:
		return "Add Another Partition?"
	case StepConfirm:
		return "Confirm Installation"
	case StepInstalling:
		return "Installing NixOS"
	case StepRootPassword:
		return "Set Root Password"
	case StepRootPasswordConfirm:
		return "Confirm Root Password"
	case StepComplete:
		return "Installation Complete"
	}
	return ""
}

// InputRef returns the text buffer the current step edits, or nil when
// the step has no free-text input. The UI both reads and writes through
// the pointer.
func (w *Wizard) InputRef() *string {
	switch w.Step {
	case StepHostName:
		return &w.HostNameInput
	case StepCreateUser:
		return &w.UsernameInput
	case StepUserPassword:
		return &w.PasswordInput
	case StepUserPasswordConfirm:
		return &w.PasswordConfirmInput
	case StepSwapSize:
		return &w.SwapSizeInput
	case StepPartitionMount:
		return &w.MountInput
	case StepPartitionSize:
		return &w.SizeInput
	case StepRootPassword:
		return &w.RootPasswordInput
	case StepRootPasswordConfirm:
		return &w.RootPasswordConfirmInput
	}
	return nil
}
