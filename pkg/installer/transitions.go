// SPDX-License-Identifier: Apache-2.0
package installer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Work-Fort/Foundry/pkg/nixfiles"
	"github.com/Work-Fort/Foundry/pkg/partition"
)

// rule binds a step to its Enter action and its Esc target. A nil back
// means Esc cannot leave the step; the UI then treats Esc as quit.
type rule struct {
	confirm func(*Wizard)
	back    func(*Wizard) bool
}

func backTo(step Step) func(*Wizard) bool {
	return func(w *Wizard) bool {
		w.Step = step
		return true
	}
}

var transitions = map[Step]rule{
	StepCloningRepo:  {},
	StepSelectPreset: {confirm: (*Wizard).confirmPreset},
	StepHostName: {
		confirm: (*Wizard).confirmHostName,
		back:    backTo(StepSelectPreset),
	},
	StepSelectSystemModules: {
		confirm: (*Wizard).confirmSystemModules,
		back:    backTo(StepHostName),
	},
	StepSelectSystemPackages: {
		confirm: (*Wizard).confirmSystemPackages,
		back:    backTo(StepSelectSystemModules),
	},
	StepCreateUser: {
		confirm: (*Wizard).confirmUsername,
		back: func(w *Wizard) bool {
			if w.IsCustom {
				w.Step = StepSelectSystemPackages
			} else {
				w.Step = StepSelectPreset
			}
			return true
		},
	},
	StepUserPassword:        {confirm: (*Wizard).confirmUserPassword},
	StepUserPasswordConfirm: {confirm: (*Wizard).confirmUserPasswordConfirm},

	// A committed user cannot be un-pushed, so none of the steps after
	// the user list go back to it.
	StepAddAnotherUser:     {confirm: (*Wizard).confirmAnotherUser},
	StepSelectUserModules:  {confirm: (*Wizard).confirmUserModules},
	StepSelectUserPackages: {confirm: (*Wizard).confirmUserPackages},
	StepSelectDisk:         {confirm: (*Wizard).confirmDisk},
	StepPartitionMode: {
		confirm: (*Wizard).confirmPartitionMode,
		back:    backTo(StepSelectDisk),
	},
	StepSwapSize: {
		confirm: (*Wizard).confirmSwapSize,
		back:    backTo(StepPartitionMode),
	},
	StepPartitionMount: {
		confirm: (*Wizard).confirmMount,
		back: func(w *Wizard) bool {
			// The first partition goes back to mode selection; later
			// ones undo the "add another" answer instead.
			if len(w.Partitions) == 0 {
				w.Step = StepPartitionMode
			} else {
				w.Step = StepPartitionAnother
			}
			return true
		},
	},
	StepPartitionSize: {
		confirm: (*Wizard).confirmSize,
		back:    backTo(StepPartitionMount),
	},
	StepPartitionFilesystem: {
		confirm: (*Wizard).confirmFilesystem,
		back:    backTo(StepPartitionSize),
	},
	StepPartitionAnother: {confirm: (*Wizard).confirmAnotherPartition},
	StepConfirm: {
		confirm: (*Wizard).confirmInstall,
		back:    backTo(StepPartitionMode),
	},
	StepInstalling:          {},
	StepRootPassword:        {confirm: (*Wizard).confirmRootPassword},
	StepRootPasswordConfirm: {confirm: (*Wizard).confirmRootPasswordConfirm},
	StepComplete:            {confirm: (*Wizard).confirmReboot},
}

// Confirm runs the Enter action for the current step, if it has one.
// The clone and install screens handle Enter in the UI because it only
// means something once the background job has settled.
func (w *Wizard) Confirm() {
	if r, ok := transitions[w.Step]; ok && r.confirm != nil {
		r.confirm(w)
	}
}

// Back moves to the previous step when the current one allows it and
// reports whether Esc was consumed.
func (w *Wizard) Back() bool {
	r, ok := transitions[w.Step]
	if !ok || r.back == nil {
		return false
	}
	return r.back(w)
}

func (w *Wizard) confirmPreset() {
	items := w.PresetDisplayItems()
	if w.PresetCursor >= len(items) {
		return
	}
	if w.PresetCursor == len(items)-1 {
		// The synthetic "Custom" entry: build a host from scratch.
		w.IsCustom = true
		w.Step = StepHostName
		return
	}
	w.IsCustom = false
	w.HostName = w.Presets[w.PresetCursor].Name
	w.prefillUsername()
	w.Step = StepCreateUser
}

func (w *Wizard) confirmHostName() {
	name := strings.TrimSpace(w.HostNameInput)
	if name == "" {
		w.StatusMessage = "Host name cannot be empty"
		return
	}
	w.HostName = name
	w.Step = StepSelectSystemModules
	w.StatusMessage = ""
}

func (w *Wizard) confirmSystemModules() {
	w.Step = StepSelectSystemPackages
}

func (w *Wizard) confirmSystemPackages() {
	w.prefillUsername()
	w.Step = StepCreateUser
}

func (w *Wizard) confirmUsername() {
	name := strings.TrimSpace(w.UsernameInput)
	if err := ValidateUsername(name, w.Users); err != nil {
		w.StatusMessage = err.Error()
		return
	}
	w.StatusMessage = ""

	w.Users = append(w.Users, UserEntry{
		Username:             name,
		NeedsModuleSelection: !w.userConfigExists(w.BasePath, w.HostName, name),
	})
	w.UsernameInput = ""
	w.Step = StepAddAnotherUser
}

func (w *Wizard) confirmUserPassword() {
	if w.PasswordInput == "" {
		w.StatusMessage = "Password cannot be empty"
		return
	}
	w.StatusMessage = ""
	w.Step = StepUserPasswordConfirm
}

func (w *Wizard) confirmUserPasswordConfirm() {
	if w.PasswordInput != w.PasswordConfirmInput {
		w.PasswordMismatch = true
		w.PasswordInput = ""
		w.PasswordConfirmInput = ""
		w.Step = StepUserPassword
		return
	}
	w.PasswordMismatch = false

	username := w.Users[w.PasswordUserIndex].Username
	w.logInstall(fmt.Sprintf("Setting password for user '%s'...", username))
	if err := w.setUserPassword(username, w.PasswordInput); err != nil {
		w.StatusMessage = fmt.Sprintf(
			"Failed to set password for '%s': %v. Press any key to retry.", username, err)
		w.PasswordInput = ""
		w.PasswordConfirmInput = ""
		w.Step = StepUserPassword
		return
	}

	w.Users[w.PasswordUserIndex].Password = w.PasswordInput
	w.PasswordInput = ""
	w.PasswordConfirmInput = ""

	w.PasswordUserIndex++
	w.advanceToNextPassword()
}

// beginPasswordCollection walks the users once the root password is set.
func (w *Wizard) beginPasswordCollection() {
	w.PasswordUserIndex = 0
	w.advanceToNextPassword()
}

func (w *Wizard) advanceToNextPassword() {
	if w.PasswordUserIndex < len(w.Users) {
		w.PasswordInput = ""
		w.PasswordConfirmInput = ""
		w.PasswordMismatch = false
		w.Step = StepUserPassword
	} else {
		w.Step = StepComplete
	}
}

func (w *Wizard) confirmAnotherUser() {
	if w.AnotherUserCursor == 0 {
		w.Step = StepCreateUser
	} else {
		w.beginUserModuleSelection()
	}
	w.AnotherUserCursor = 0
}

func (w *Wizard) beginUserModuleSelection() {
	w.UserModuleIndex = 0
	w.advanceToNextModuleUser()
}

// advanceToNextModuleUser finds the next user whose host has no
// user-<name>.nix yet, scans fresh module lists for them and enters the
// selection steps. When nobody is left it moves on to disk selection.
func (w *Wizard) advanceToNextModuleUser() {
	for w.UserModuleIndex < len(w.Users) {
		u := &w.Users[w.UserModuleIndex]
		if u.NeedsModuleSelection {
			u.UserModules = w.scanUserModules(w.BasePath)
			u.PackageModules = w.scanPackageModules(w.BasePath)
			w.UserModules = append([]nixfiles.Module(nil), u.UserModules...)
			w.UserModuleCursor = 0
			w.Step = StepSelectUserModules
			return
		}
		w.UserModuleIndex++
	}
	w.goToDiskSelection()
}

func (w *Wizard) goToDiskSelection() {
	disks, err := w.listDisks()
	if err != nil {
		w.Disks = nil
		w.StatusMessage = fmt.Sprintf("Failed to list disks: %v", err)
	} else {
		w.Disks = disks
	}
	w.DiskCursor = 0
	w.Step = StepSelectDisk
}

func (w *Wizard) confirmUserModules() {
	w.Users[w.UserModuleIndex].UserModules = append([]nixfiles.Module(nil), w.UserModules...)
	w.UserPackages = append([]nixfiles.Module(nil), w.Users[w.UserModuleIndex].PackageModules...)
	w.UserPackageCursor = 0
	w.Step = StepSelectUserPackages
}

func (w *Wizard) confirmUserPackages() {
	w.Users[w.UserModuleIndex].PackageModules = append([]nixfiles.Module(nil), w.UserPackages...)
	w.UserModuleIndex++
	w.advanceToNextModuleUser()
}

func (w *Wizard) confirmDisk() {
	if len(w.Disks) == 0 {
		w.StatusMessage = "No disks available"
		return
	}
	d := w.Disks[w.DiskCursor]
	w.SelectedDisk = &d
	w.StatusMessage = ""
	w.Step = StepPartitionMode
}

func (w *Wizard) confirmPartitionMode() {
	if w.PartitionModeCursor == 0 {
		w.PartitionMode = partition.FullDisk
		w.Step = StepSwapSize
	} else {
		w.PartitionMode = partition.Custom
		w.Partitions = nil
		w.Step = StepPartitionMount
	}
}

func (w *Wizard) confirmSwapSize() {
	input := strings.TrimSpace(w.SwapSizeInput)
	var swapGiB uint64
	if input != "" {
		v, err := strconv.ParseUint(input, 10, 64)
		if err != nil {
			w.StatusMessage = "Invalid swap size. Enter a whole number in GiB (e.g. 4) or leave empty for no swap."
			return
		}
		swapGiB = v
	}
	w.Partitions = partition.FullDiskPlan(swapGiB)
	w.Step = StepConfirm
}

func (w *Wizard) confirmMount() {
	mount := strings.TrimSpace(w.MountInput)
	if mount == "" {
		w.StatusMessage = "Mount point cannot be empty"
		return
	}
	if mount != "swap" && !strings.HasPrefix(mount, "/") {
		w.StatusMessage = "Mount point must start with '/' or be 'swap'"
		return
	}
	w.StatusMessage = ""
	w.Step = StepPartitionSize
}

func (w *Wizard) confirmSize() {
	w.StatusMessage = ""
	w.Step = StepPartitionFilesystem
}

func (w *Wizard) confirmFilesystem() {
	fs := partition.Filesystems[w.FilesystemCursor]

	mount := strings.TrimSpace(w.MountInput)
	// An empty size means "use the remaining space"; an explicit zero
	// is rejected.
	var sizeMiB uint64
	if s := strings.TrimSpace(w.SizeInput); s != "" {
		v, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			w.StatusMessage = "Invalid size. Enter a whole number in GiB or leave empty for remaining space."
			return
		}
		if v == 0 {
			w.StatusMessage = "Size must be greater than 0."
			return
		}
		sizeMiB = v * 1024
	}

	w.Partitions = append(w.Partitions, partition.Plan{
		Label:      partition.DeriveLabel(mount),
		MountPoint: mount,
		SizeMiB:    sizeMiB,
		Filesystem: fs,
	})

	w.MountInput = ""
	w.SizeInput = ""
	w.FilesystemCursor = 0
	w.Step = StepPartitionAnother
}

func (w *Wizard) confirmAnotherPartition() {
	if w.AnotherPartitionCursor == 0 {
		w.Step = StepPartitionMount
	} else {
		w.Step = StepConfirm
	}
	w.AnotherPartitionCursor = 0
}

func (w *Wizard) confirmInstall() {
	if w.ConfirmCursor == 0 {
		if !partition.HasRoot(w.Partitions) {
			w.StatusMessage = "No root (/) partition defined. Please go back and add one."
			return
		}
		w.Step = StepInstalling
		w.StartInstallation()
	} else {
		w.Step = StepPartitionMode
	}
}

func (w *Wizard) confirmRootPassword() {
	if w.RootPasswordInput == "" {
		w.StatusMessage = "Root password cannot be empty"
		return
	}
	w.StatusMessage = ""
	w.Step = StepRootPasswordConfirm
}

func (w *Wizard) confirmRootPasswordConfirm() {
	if w.RootPasswordInput != w.RootPasswordConfirmInput {
		w.RootPasswordMismatch = true
		w.RootPasswordInput = ""
		w.RootPasswordConfirmInput = ""
		w.Step = StepRootPassword
		return
	}
	w.RootPasswordMismatch = false

	w.logInstall("Setting root password...")
	if err := w.setRootPassword(w.RootPasswordInput); err != nil {
		w.StatusMessage = fmt.Sprintf(
			"Failed to set root password: %v. Press any key to retry.", err)
		w.RootPasswordInput = ""
		w.RootPasswordConfirmInput = ""
		w.Step = StepRootPassword
		return
	}

	w.beginPasswordCollection()
}

func (w *Wizard) confirmReboot() {
	if w.RebootCursor == 0 {
		_ = w.reboot()
	}
	w.ShouldQuit = true
}
