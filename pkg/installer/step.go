// SPDX-License-Identifier: Apache-2.0
package installer

// Step identifies where the wizard currently is. Steps are declared in
// rough walk order, but the actual routing lives in the transition table
// and the advance helpers.
type Step int

const (
	StepCloningRepo Step = iota
	StepSelectPreset
	StepHostName
	StepSelectSystemModules
	StepSelectSystemPackages
	StepCreateUser
	StepUserPassword
	StepUserPasswordConfirm
	StepAddAnotherUser
	StepSelectUserModules
	StepSelectUserPackages
	StepSelectDisk
	StepPartitionMode
	StepSwapSize
	StepPartitionMount
	StepPartitionSize
	StepPartitionFilesystem
	StepPartitionAnother
	StepConfirm
	StepInstalling
	StepRootPassword
	StepRootPasswordConfirm
	StepComplete
)

// TotalSteps is the number of groups shown in the header progress bar.
// Several wizard steps share a group, e.g. all partition steps are one.
const TotalSteps = 12

var stepNames = [...]string{
	StepCloningRepo:          "CloningRepo",
	StepSelectPreset:         "SelectPreset",
	StepHostName:             "HostName",
	StepSelectSystemModules:  "SelectSystemModules",
	StepSelectSystemPackages: "SelectSystemPackages",
	StepCreateUser:           "CreateUser",
	StepUserPassword:         "UserPassword",
	StepUserPasswordConfirm:  "UserPasswordConfirm",
	StepAddAnotherUser:       "AddAnotherUser",
	StepSelectUserModules:    "SelectUserModules",
	StepSelectUserPackages:   "SelectUserPackages",
	StepSelectDisk:           "SelectDisk",
	StepPartitionMode:        "PartitionMode",
	StepSwapSize:             "SwapSize",
	StepPartitionMount:       "PartitionMount",
	StepPartitionSize:        "PartitionSize",
	StepPartitionFilesystem:  "PartitionFilesystem",
	StepPartitionAnother:     "PartitionAnother",
	StepConfirm:              "Confirm",
	StepInstalling:           "Installing",
	StepRootPassword:         "RootPassword",
	StepRootPasswordConfirm:  "RootPasswordConfirm",
	StepComplete:             "Complete",
}

func (s Step) String() string {
	if s < 0 || int(s) >= len(stepNames) {
		return "Unknown"
	}
	return stepNames[s]
}

// Number returns the 1-indexed progress-bar group for the step.
func (s Step) Number() int {
	switch s {
	case StepCloningRepo:
		return 1
	case StepSelectPreset:
		return 2
	case StepHostName, StepSelectSystemModules, StepSelectSystemPackages:
		return 3
	case StepCreateUser, StepAddAnotherUser:
		return 4
	case StepSelectUserModules, StepSelectUserPackages:
		return 5
	case StepSelectDisk:
		return 6
	case StepPartitionMode, StepSwapSize, StepPartitionMount,
		StepPartitionSize, StepPartitionFilesystem, StepPartitionAnother:
		return 7
	case StepConfirm:
		return 8
	case StepInstalling:
		return 9
	case StepRootPassword, StepRootPasswordConfirm:
		return 10
	case StepUserPassword, StepUserPasswordConfirm:
		return 11
	case StepComplete:
		return 12
	}
	return 1
}
