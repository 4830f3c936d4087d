// SPDX-License-Identifier: Apache-2.0
package pipeline

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/Work-Fort/Foundry/pkg/partition"
)

// redirectLogFile points the persistent install log at a temp file for the
// duration of one test.
func redirectLogFile(t *testing.T) string {
	t.Helper()
	orig := logFilePath
	path := filepath.Join(t.TempDir(), "install.log")
	logFilePath = path
	t.Cleanup(func() { logFilePath = orig })
	return path
}

// testInstallDeps returns deps where every operation succeeds and records
// its invocation into calls.
func testInstallDeps(calls *[]string) installDeps {
	record := func(name string) { *calls = append(*calls, name) }
	return installDeps{
		partitionDisk: func(disk string, plans []partition.Plan) error {
			record("partition")
			return nil
		},
		formatAndMount: func(disk string, plans []partition.Plan) error {
			record("format")
			return nil
		},
		generateHardware: func() (string, error) {
			record("hwgen")
			return "# hardware\n", nil
		},
		writeHardware: func(basePath, hostName, content string) error {
			record("writehw")
			return nil
		},
		writeHostConfig: func(basePath, hostName, content string) error {
			record("writehost")
			return nil
		},
		writeUserConfig: func(basePath, hostName, username, content string) error {
			record("writeuser:" + username)
			return nil
		},
		gitAddAll: func(basePath string) error {
			record("gitadd")
			return nil
		},
		runHook: func(hook, hostName, basePath, diskPath string) (string, error) {
			record("hook:" + hook)
			return "hook says hi\n", nil
		},
		installNixOS: func(flakeRef string, acceptFlakeConfig bool, logLine func(string)) error {
			record("nixos-install:" + flakeRef)
			logLine("building the system configuration...")
			return nil
		},
		copyToTarget: func(basePath string) error {
			record("copy")
			return nil
		},
	}
}

func TestInstallStageOrder(t *testing.T) {
	redirectLogFile(t)
	var calls []string
	deps := testInstallDeps(&calls)

	opts := InstallOptions{
		DiskPath:         "/dev/vda",
		Partitions:       partition.FullDiskPlan(0),
		BasePath:         "/repo",
		HostName:         "forge",
		Custom:           true,
		Users:            []InstallUser{{Username: "alice"}},
		PreInstallHooks:  []string{"hooks/pre.sh"},
		PostInstallHooks: []string{"hooks/post.sh"},
	}
	state := NewProgressState(InstallTotal(opts))
	runInstall(opts, state, deps)

	snap := state.Snapshot()
	if snap.Err != "" {
		t.Fatalf("install failed: %s", snap.Err)
	}
	if !snap.Done {
		t.Error("Done = false after successful install")
	}
	if snap.Progress != snap.Total || snap.Total != 11 {
		t.Errorf("progress/total = %d/%d, want 11/11", snap.Progress, snap.Total)
	}

	wantCalls := []string{
		"partition",
		"format",
		"hwgen",
		"writehw",
		"writehost",
		"writeuser:alice",
		"gitadd",
		"hook:hooks/pre.sh",
		"nixos-install:/repo#forge",
		"copy",
		"hook:hooks/post.sh",
	}
	if !reflect.DeepEqual(calls, wantCalls) {
		t.Errorf("call order = %v, want %v", calls, wantCalls)
	}

	wantLog := []string{
		"Partitioning /dev/vda...",
		"Formatting and mounting partitions...",
		"Generating hardware configuration...",
		"Writing hardware configuration...",
		"Writing host configuration...",
		"Writing user-alice.nix...",
		"Staging generated files (git add)...",
		"Running pre-install hook: hooks/pre.sh...",
		"  [hook] hook says hi",
		"Running nixos-install (this may take a while)...",
		"building the system configuration...",
		"Copying repository to /mnt/etc/nixos/...",
		"Running post-install hook: hooks/post.sh...",
		"  [hook] hook says hi",
		"Installation complete!",
	}
	if !reflect.DeepEqual(snap.Log, wantLog) {
		t.Errorf("log = %#v, want %#v", snap.Log, wantLog)
	}
}

func TestInstallHardwareStageFailureStopsPipeline(t *testing.T) {
	logPath := redirectLogFile(t)
	var calls []string
	deps := testInstallDeps(&calls)
	deps.generateHardware = func() (string, error) {
		calls = append(calls, "hwgen")
		return "", errors.New("nixos-generate-config failed (exit 1):\nno /mnt")
	}

	opts := InstallOptions{
		DiskPath:   "/dev/vda",
		Partitions: partition.FullDiskPlan(0),
		BasePath:   "/repo",
		HostName:   "forge",
		Users:      []InstallUser{{Username: "alice"}},
	}
	state := NewProgressState(InstallTotal(opts))
	runInstall(opts, state, deps)

	snap := state.Snapshot()
	if snap.Progress != 3 {
		t.Errorf("progress = %d, want 3 (the failed stage)", snap.Progress)
	}
	if snap.Err == "" || !strings.HasPrefix(snap.Err, "Hardware config generation failed: ") {
		t.Errorf("Err = %q, want a hardware generation failure", snap.Err)
	}
	if snap.Done {
		t.Error("Done = true after a failed install")
	}

	// Nothing after the failed stage may have started.
	for _, line := range snap.Log {
		if line == "Writing hardware configuration..." {
			t.Error("stage after the failure logged a start message")
		}
	}
	wantCalls := []string{"partition", "format", "hwgen"}
	if !reflect.DeepEqual(calls, wantCalls) {
		t.Errorf("calls = %v, want %v", calls, wantCalls)
	}

	// The shared log splits a multiline error into prefixed lines; the log
	// file keeps it as a single record.
	var errLines []string
	for _, line := range snap.Log {
		if strings.HasPrefix(line, "ERROR: ") {
			errLines = append(errLines, line)
		}
	}
	wantErrLines := []string{
		"ERROR: Hardware config generation failed: nixos-generate-config failed (exit 1):",
		"ERROR: no /mnt",
	}
	if !reflect.DeepEqual(errLines, wantErrLines) {
		t.Errorf("log error lines = %v, want %v", errLines, wantErrLines)
	}

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if got := strings.Count(string(data), "ERROR: "); got != 1 {
		t.Errorf("log file has %d ERROR records, want 1", got)
	}
	if !strings.Contains(string(data), "ERROR: Hardware config generation failed: nixos-generate-config failed (exit 1):\nno /mnt\n") {
		t.Error("log file is missing the full multiline error record")
	}
}

func TestInstallPresetSkipsHostConfig(t *testing.T) {
	redirectLogFile(t)
	var calls []string
	deps := testInstallDeps(&calls)

	opts := InstallOptions{
		DiskPath:   "/dev/vda",
		Partitions: partition.FullDiskPlan(4),
		BasePath:   "/repo",
		HostName:   "desktop",
		Custom:     false,
		Users:      []InstallUser{{Username: "alice"}, {Username: "bob"}},
	}
	state := NewProgressState(InstallTotal(opts))
	runInstall(opts, state, deps)

	snap := state.Snapshot()
	if snap.Err != "" {
		t.Fatalf("install failed: %s", snap.Err)
	}
	for _, line := range snap.Log {
		if line == "Writing host configuration..." {
			t.Error("preset install generated a host configuration")
		}
	}
	for _, call := range calls {
		if call == "writehost" {
			t.Error("preset install called the host config writer")
		}
	}
	// User files are written regardless of preset vs custom.
	var users []string
	for _, call := range calls {
		if strings.HasPrefix(call, "writeuser:") {
			users = append(users, strings.TrimPrefix(call, "writeuser:"))
		}
	}
	if !reflect.DeepEqual(users, []string{"alice", "bob"}) {
		t.Errorf("users written = %v, want [alice bob]", users)
	}
}

func TestInstallPreHookFailureAborts(t *testing.T) {
	redirectLogFile(t)
	var calls []string
	deps := testInstallDeps(&calls)
	deps.runHook = func(hook, hostName, basePath, diskPath string) (string, error) {
		return "", errors.New("hook 'hooks/pre.sh' failed with exit code 2\nboom")
	}

	opts := InstallOptions{
		DiskPath:        "/dev/vda",
		Partitions:      partition.FullDiskPlan(0),
		BasePath:        "/repo",
		HostName:        "forge",
		PreInstallHooks: []string{"hooks/pre.sh"},
	}
	state := NewProgressState(InstallTotal(opts))
	runInstall(opts, state, deps)

	snap := state.Snapshot()
	if !strings.HasPrefix(snap.Err, "Pre-install hook failed: ") {
		t.Errorf("Err = %q, want a pre-install hook failure", snap.Err)
	}
	if snap.Progress != 7 {
		t.Errorf("progress = %d, want 7 (the first hook slot)", snap.Progress)
	}
	for _, call := range calls {
		if strings.HasPrefix(call, "nixos-install:") {
			t.Error("nixos-install ran after a failed pre-install hook")
		}
	}
}

func TestInstallTotal(t *testing.T) {
	tests := []struct {
		pre, post int
		want      int
	}{
		{0, 0, 9},
		{1, 0, 10},
		{2, 3, 14},
	}
	for _, tt := range tests {
		opts := InstallOptions{
			PreInstallHooks:  make([]string, tt.pre),
			PostInstallHooks: make([]string, tt.post),
		}
		if got := InstallTotal(opts); got != tt.want {
			t.Errorf("InstallTotal(%d pre, %d post) = %d, want %d", tt.pre, tt.post, got, tt.want)
		}
	}
}

func TestSpawnInstallRecoversFromPanic(t *testing.T) {
	redirectLogFile(t)
	var calls []string
	deps := testInstallDeps(&calls)
	deps.partitionDisk = func(disk string, plans []partition.Plan) error {
		panic("wild pointer")
	}

	state := spawnInstall(InstallOptions{DiskPath: "/dev/vda"}, deps)

	deadline := time.Now().Add(5 * time.Second)
	for {
		snap := state.Snapshot()
		if snap.Err != "" {
			if snap.Err != "Installation worker crashed unexpectedly" {
				t.Errorf("Err = %q, want the crash message", snap.Err)
			}
			if snap.Done {
				t.Error("Done = true after a worker crash")
			}
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for the crash to surface")
		}
		time.Sleep(5 * time.Millisecond)
	}
}
