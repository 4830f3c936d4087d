// SPDX-License-Identifier: Apache-2.0
package partition

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// BlockDevice is a whole disk discovered on the running system.
type BlockDevice struct {
	Name      string // kernel name, e.g. "sda", "nvme0n1"
	Path      string // device path, e.g. "/dev/sda"
	SizeBytes uint64
	SizeHuman string // e.g. "476.9 GiB"
	Model     string
}

type lsblkReport struct {
	BlockDevices []lsblkDevice `json:"blockdevices"`
}

// Recent lsblk emits sizes as JSON numbers; older releases quote them.
type lsblkDevice struct {
	Name  string          `json:"name"`
	Size  json.RawMessage `json:"size"`
	Model *string         `json:"model"`
}

// ListBlockDevices enumerates whole disks via lsblk, skipping partitions,
// loop/ram/zram devices, and anything smaller than 1 GB.
func ListBlockDevices() ([]BlockDevice, error) {
	cmd := exec.Command("lsblk", "-d", "-n", "-b", "-o", "NAME,SIZE,MODEL", "--json")
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if _, ok := err.(*exec.ExitError); ok {
			return nil, fmt.Errorf("lsblk failed (exit %d): %s",
				cmd.ProcessState.ExitCode(), strings.TrimSpace(stderr.String()))
		}
		return nil, fmt.Errorf("failed to run lsblk: %w", err)
	}

	var report lsblkReport
	if err := json.Unmarshal(stdout.Bytes(), &report); err != nil {
		return nil, fmt.Errorf("failed to parse lsblk output: %w", err)
	}

	var devices []BlockDevice
	for _, dev := range report.BlockDevices {
		size := parseLsblkSize(dev.Size)
		if size < 1_000_000_000 {
			continue
		}
		if strings.HasPrefix(dev.Name, "loop") ||
			strings.HasPrefix(dev.Name, "ram") ||
			strings.HasPrefix(dev.Name, "zram") {
			continue
		}

		model := "Unknown"
		if dev.Model != nil {
			model = strings.TrimSpace(*dev.Model)
		}

		devices = append(devices, BlockDevice{
			Name:      dev.Name,
			Path:      "/dev/" + dev.Name,
			SizeBytes: size,
			SizeHuman: FormatBytes(size),
			Model:     model,
		})
	}
	return devices, nil
}

func parseLsblkSize(raw json.RawMessage) uint64 {
	s := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// FormatBytes renders a byte count as a one-decimal GiB or TiB figure.
func FormatBytes(bytes uint64) string {
	const gib = uint64(1) << 30
	const tib = gib * 1024
	if bytes >= tib {
		return fmt.Sprintf("%.1f TiB", float64(bytes)/float64(tib))
	}
	return fmt.Sprintf("%.1f GiB", float64(bytes)/float64(gib))
}
