// SPDX-License-Identifier: Apache-2.0
package pipeline

import (
	"fmt"
	"strings"

	"github.com/Work-Fort/Foundry/pkg/gitrepo"
	"github.com/Work-Fort/Foundry/pkg/nixfiles"
	"github.com/Work-Fort/Foundry/pkg/nixos"
	"github.com/Work-Fort/Foundry/pkg/partition"
)

// InstallUser is one account to create on the target, together with the
// Home Manager modules and package sets chosen for it.
type InstallUser struct {
	Username       string
	UserModules    []nixfiles.Module
	PackageModules []nixfiles.Module
}

// InstallOptions is everything the install worker needs, captured by value
// at spawn. The worker never reads wizard state after that.
type InstallOptions struct {
	DiskPath   string
	Partitions []partition.Plan
	BasePath   string
	HostName   string

	// Custom is set when the operator built the host from scratch rather
	// than picking a preset; only then is a configuration.nix generated.
	Custom         bool
	SystemModules  []nixfiles.Module
	PackageModules []nixfiles.Module
	Users          []InstallUser

	AcceptFlakeConfig bool
	HMBaseModules     []string
	PreInstallHooks   []string
	PostInstallHooks  []string
}

// installBaseStages counts the fixed stages of an install: partition,
// format/mount, generate hardware config, write hardware config, write
// host/user configs, git add, nixos-install, copy repo, complete.
const installBaseStages = 9

// InstallTotal returns the progress denominator for an install request:
// the fixed stages plus one per configured hook.
func InstallTotal(opts InstallOptions) int {
	return installBaseStages + len(opts.PreInstallHooks) + len(opts.PostInstallHooks)
}

// installDeps are the external operations the install worker drives,
// injectable so the stage sequence is testable without a disk.
type installDeps struct {
	partitionDisk    func(disk string, plans []partition.Plan) error
	formatAndMount   func(disk string, plans []partition.Plan) error
	generateHardware func() (string, error)
	writeHardware    func(basePath, hostName, content string) error
	writeHostConfig  func(basePath, hostName, content string) error
	writeUserConfig  func(basePath, hostName, username, content string) error
	gitAddAll        func(basePath string) error
	runHook          func(hook, hostName, basePath, diskPath string) (string, error)
	installNixOS     func(flakeRef string, acceptFlakeConfig bool, logLine func(string)) error
	copyToTarget     func(basePath string) error
}

func defaultInstallDeps() installDeps {
	return installDeps{
		partitionDisk:    partition.PartitionDisk,
		formatAndMount:   partition.FormatAndMount,
		generateHardware: nixos.GenerateHardwareConfig,
		writeHardware:    nixfiles.WriteHardwareConfig,
		writeHostConfig:  nixfiles.WriteHostConfig,
		writeUserConfig:  nixfiles.WriteUserConfig,
		gitAddAll:        gitrepo.GitAddAll,
		runHook:          RunHook,
		installNixOS:     nixos.Install,
		copyToTarget:     gitrepo.CopyToTarget,
	}
}

// RunInstall starts the installation on a background goroutine and returns
// the progress state the caller should poll. A panicking worker is
// surfaced as a terminal error with done left unset.
func RunInstall(opts InstallOptions) *ProgressState {
	return spawnInstall(opts, defaultInstallDeps())
}

func spawnInstall(opts InstallOptions, deps installDeps) *ProgressState {
	state := NewProgressState(InstallTotal(opts))
	go func() {
		defer func() {
			if r := recover(); r != nil {
				state.crash("Installation worker crashed unexpectedly", false)
			}
		}()
		runInstall(opts, state, deps)
	}()
	return state
}

// runInstall executes the install stages in order. Every stage logs a
// start message before doing its work; the first failure writes the
// terminal error and stops the sequence.
func runInstall(opts InstallOptions, state *ProgressState, deps installDeps) {
	logLine := func(msg string) {
		state.AppendLog(msg)
		AppendLogLine(msg)
	}
	// Multiline errors land in the shared log one prefixed line at a time
	// so the viewport stays line-oriented; the log file gets the whole
	// message as one record.
	logError := func(msg string) {
		for _, line := range strings.Split(msg, "\n") {
			state.AppendLog("ERROR: " + line)
		}
		AppendLogLine("ERROR: " + msg)
	}
	fail := func(msg string) {
		logError(msg)
		state.Fail(msg)
	}

	TruncateLogFile()

	logLine(fmt.Sprintf("Partitioning %s...", opts.DiskPath))
	state.SetProgress(1)
	if err := deps.partitionDisk(opts.DiskPath, opts.Partitions); err != nil {
		fail(fmt.Sprintf("Partitioning failed: %v", err))
		return
	}

	logLine("Formatting and mounting partitions...")
	state.SetProgress(2)
	if err := deps.formatAndMount(opts.DiskPath, opts.Partitions); err != nil {
		fail(fmt.Sprintf("Format/mount failed: %v", err))
		return
	}

	logLine("Generating hardware configuration...")
	state.SetProgress(3)
	hwConfig, err := deps.generateHardware()
	if err != nil {
		fail(fmt.Sprintf("Hardware config generation failed: %v", err))
		return
	}

	logLine("Writing hardware configuration...")
	state.SetProgress(4)
	if err := deps.writeHardware(opts.BasePath, opts.HostName, hwConfig); err != nil {
		fail(fmt.Sprintf("Failed to write hardware config: %v", err))
		return
	}

	state.SetProgress(5)
	if opts.Custom {
		logLine("Writing host configuration...")
		usernames := make([]string, 0, len(opts.Users))
		for _, u := range opts.Users {
			usernames = append(usernames, u.Username)
		}
		content := nixfiles.GenerateHostConfig(opts.HostName, opts.SystemModules, opts.PackageModules, usernames)
		if err := deps.writeHostConfig(opts.BasePath, opts.HostName, content); err != nil {
			fail(fmt.Sprintf("Failed to write configuration: %v", err))
			return
		}
	}

	for _, user := range opts.Users {
		logLine(fmt.Sprintf("Writing user-%s.nix...", user.Username))
		content := nixfiles.GenerateUserConfig(opts.HostName, user.Username, user.UserModules, user.PackageModules, opts.HMBaseModules)
		if err := deps.writeUserConfig(opts.BasePath, opts.HostName, user.Username, content); err != nil {
			fail(fmt.Sprintf("Failed to write user config: %v", err))
			return
		}
	}

	// Untracked files are invisible to flake evaluation, so the generated
	// configs must be staged before nixos-install runs.
	logLine("Staging generated files (git add)...")
	state.SetProgress(6)
	if err := deps.gitAddAll(opts.BasePath); err != nil {
		fail(fmt.Sprintf("git add failed: %v", err))
		return
	}

	counter := 7
	for _, hook := range opts.PreInstallHooks {
		logLine(fmt.Sprintf("Running pre-install hook: %s...", hook))
		state.SetProgress(counter)
		output, err := deps.runHook(hook, opts.HostName, opts.BasePath, opts.DiskPath)
		if err != nil {
			fail(fmt.Sprintf("Pre-install hook failed: %v", err))
			return
		}
		logHookOutput(logLine, output)
		counter++
	}

	logLine("Running nixos-install (this may take a while)...")
	state.SetProgress(counter)
	counter++
	flakeRef := fmt.Sprintf("%s#%s", opts.BasePath, opts.HostName)
	if err := deps.installNixOS(flakeRef, opts.AcceptFlakeConfig, logLine); err != nil {
		fail(err.Error())
		return
	}

	state.SetProgress(counter)
	counter++
	logLine("Copying repository to /mnt/etc/nixos/...")
	if err := deps.copyToTarget(opts.BasePath); err != nil {
		fail(fmt.Sprintf("Failed to copy repo to target: %v", err))
		return
	}

	for _, hook := range opts.PostInstallHooks {
		logLine(fmt.Sprintf("Running post-install hook: %s...", hook))
		state.SetProgress(counter)
		output, err := deps.runHook(hook, opts.HostName, opts.BasePath, opts.DiskPath)
		if err != nil {
			fail(fmt.Sprintf("Post-install hook failed: %v", err))
			return
		}
		logHookOutput(logLine, output)
		counter++
	}

	state.SetProgress(counter)
	logLine("Installation complete!")
	state.MarkDone()
}

func logHookOutput(logLine func(string), output string) {
	for _, line := range strings.Split(output, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed != "" {
			logLine("  [hook] " + trimmed)
		}
	}
}
