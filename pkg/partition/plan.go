// SPDX-License-Identifier: Apache-2.0

// Package partition plans GPT disk layouts and applies them with the
// standard Linux partitioning and filesystem tools.
package partition

import "strings"

// Filesystem identifies what a planned partition is formatted as.
type Filesystem int

const (
	Fat32 Filesystem = iota
	Ext4
	Btrfs
	Swap
)

// Filesystems lists every selectable filesystem in picker order.
var Filesystems = []Filesystem{Fat32, Ext4, Btrfs, Swap}

// String returns the short filesystem name as the mount tools know it.
func (f Filesystem) String() string {
	switch f {
	case Fat32:
		return "vfat"
	case Ext4:
		return "ext4"
	case Btrfs:
		return "btrfs"
	case Swap:
		return "swap"
	}
	return "unknown"
}

// DisplayName returns the label shown in the filesystem picker.
func (f Filesystem) DisplayName() string {
	switch f {
	case Fat32:
		return "FAT32 (EFI)"
	case Ext4:
		return "ext4"
	case Btrfs:
		return "Btrfs"
	case Swap:
		return "swap"
	}
	return "unknown"
}

// partedType returns the filesystem flag parted expects in mkpart.
func (f Filesystem) partedType() string {
	switch f {
	case Fat32:
		return "fat32"
	case Btrfs:
		return "btrfs"
	case Swap:
		return "linux-swap"
	default:
		return "ext4"
	}
}

// Mode selects how a partition plan is produced.
type Mode int

const (
	// FullDisk derives the whole plan from a single swap-size answer.
	FullDisk Mode = iota
	// Custom accumulates operator-entered partitions one at a time.
	Custom
)

// Plan describes one partition to create on the target disk. Plans are
// applied in order and partition numbers follow plan order, so the entry
// with SizeMiB 0 must come last.
type Plan struct {
	Label      string // GPT partition name, e.g. "EFI", "root"
	MountPoint string // "/", "/boot", "swap", or another absolute path
	SizeMiB    uint64 // 0 means fill the remaining space
	Filesystem Filesystem
}

// FullDiskPlan builds the fixed full-disk layout: a 512 MiB EFI system
// partition at /boot, an optional swap partition of swapGiB, and a root
// partition taking whatever is left.
func FullDiskPlan(swapGiB uint64) []Plan {
	plans := []Plan{{
		Label:      "EFI",
		MountPoint: "/boot",
		SizeMiB:    512,
		Filesystem: Fat32,
	}}
	if swapGiB > 0 {
		plans = append(plans, Plan{
			Label:      "swap",
			MountPoint: "swap",
			SizeMiB:    swapGiB * 1024,
			Filesystem: Swap,
		})
	}
	return append(plans, Plan{
		Label:      "root",
		MountPoint: "/",
		Filesystem: Ext4,
	})
}

// DeriveLabel maps a mount point to a GPT partition label.
func DeriveLabel(mountPoint string) string {
	switch mountPoint {
	case "/":
		return "root"
	case "/boot":
		return "EFI"
	case "swap":
		return "swap"
	default:
		return strings.ReplaceAll(strings.TrimLeft(mountPoint, "/"), "/", "-")
	}
}

// HasRoot reports whether the plan mounts something at /.
func HasRoot(plans []Plan) bool {
	for _, p := range plans {
		if p.MountPoint == "/" {
			return true
		}
	}
	return false
}
