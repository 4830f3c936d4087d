// SPDX-License-Identifier: Apache-2.0
package partition

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// PartitionDisk wipes the disk, writes a fresh GPT label, and creates the
// planned partitions in order. The first partition starts at 1 MiB for
// alignment.
func PartitionDisk(disk string, plans []Plan) error {
	if err := runCmd("wipefs", "-a", "-f", disk); err != nil {
		return err
	}
	if err := runCmd("parted", "-s", disk, "mklabel", "gpt"); err != nil {
		return err
	}

	startMiB := uint64(1)
	for i, p := range plans {
		end := "100%"
		if p.SizeMiB > 0 {
			end = fmt.Sprintf("%dMiB", startMiB+p.SizeMiB)
		}
		err := runCmd("parted", "-s", disk, "mkpart", p.Label, p.Filesystem.partedType(),
			fmt.Sprintf("%dMiB", startMiB), end)
		if err != nil {
			return err
		}

		// The bootloader needs the esp flag on the EFI system partition.
		if p.Filesystem == Fat32 && p.MountPoint == "/boot" {
			if err := runCmd("parted", "-s", disk, "set", strconv.Itoa(i+1), "esp", "on"); err != nil {
				return err
			}
		}

		startMiB += p.SizeMiB
	}
	return nil
}

// FormatAndMount formats every planned partition and mounts the results
// under /mnt. Root is mounted in the first pass so the other mount points
// have somewhere to nest; swap is activated but never mounted.
func FormatAndMount(disk string, plans []Plan) error {
	for i, p := range plans {
		dev := partitionDevice(disk, i+1)

		switch p.Filesystem {
		case Fat32:
			if err := runCmd("mkfs.fat", "-F", "32", dev); err != nil {
				return err
			}
		case Ext4:
			if err := runCmd("mkfs.ext4", "-F", dev); err != nil {
				return err
			}
		case Btrfs:
			if err := runCmd("mkfs.btrfs", "-f", dev); err != nil {
				return err
			}
		case Swap:
			if err := runCmd("mkswap", dev); err != nil {
				return err
			}
			if err := runCmd("swapon", dev); err != nil {
				return err
			}
			continue
		}

		if p.MountPoint == "/" {
			if err := runCmd("mount", dev, "/mnt"); err != nil {
				return err
			}
		}
	}

	// Second pass: everything else needs /mnt mounted first.
	for i, p := range plans {
		if p.Filesystem == Swap || p.MountPoint == "/" {
			continue
		}
		dev := partitionDevice(disk, i+1)
		target := "/mnt" + p.MountPoint
		if err := runCmd("mkdir", "-p", target); err != nil {
			return err
		}
		if err := runCmd("mount", dev, target); err != nil {
			return err
		}
	}
	return nil
}

// partitionDevice returns the device path of the nth partition on disk.
// NVMe and MMC devices separate the partition number with a "p".
func partitionDevice(disk string, n int) string {
	if strings.Contains(disk, "nvme") || strings.Contains(disk, "mmcblk") {
		return fmt.Sprintf("%sp%d", disk, n)
	}
	return fmt.Sprintf("%s%d", disk, n)
}

// runCmd runs a command to completion and turns a nonzero exit into an
// error carrying the captured output.
func runCmd(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if _, ok := err.(*exec.ExitError); !ok {
			return fmt.Errorf("failed to run '%s': %w", name, err)
		}
		msg := fmt.Sprintf("command '%s' failed with exit code %d", name, cmd.ProcessState.ExitCode())
		if s := strings.TrimSpace(stderr.String()); s != "" {
			msg += "\n--- stderr ---\n" + s
		}
		if s := strings.TrimSpace(stdout.String()); s != "" {
			msg += "\n--- stdout ---\n" + s
		}
		return errors.New(msg)
	}
	return nil
}
