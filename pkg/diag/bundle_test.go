// SPDX-License-Identifier: Apache-2.0
package diag

import (
	"archive/tar"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ulikunitz/xz"
)

func stageLog(t *testing.T, content string) {
	t.Helper()
	orig := logPath
	logPath = filepath.Join(t.TempDir(), "foundry-install.log")
	t.Cleanup(func() { logPath = orig })
	if content != "" {
		if err := os.WriteFile(logPath, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

// readBundle extracts the archive into a name -> content map.
func readBundle(t *testing.T, path string) map[string]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	xzReader, err := xz.NewReader(f)
	if err != nil {
		t.Fatal(err)
	}
	tr := tar.NewReader(xzReader)

	got := map[string]string{}
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatal(err)
		}
		data, err := io.ReadAll(tr)
		if err != nil {
			t.Fatal(err)
		}
		got[hdr.Name] = string(data)
	}
	return got
}

func TestWriteBundle(t *testing.T) {
	t.Setenv("TMPDIR", t.TempDir())
	stageLog(t, "Partitioning /dev/vda...\nERROR: mkfs exploded\n")

	base := t.TempDir()
	hostDir := filepath.Join(base, "modules", "hosts", "anvil")
	if err := os.MkdirAll(hostDir, 0755); err != nil {
		t.Fatal(err)
	}
	files := map[string]string{
		"default.nix":                 "{ }\n",
		"_hardware-configuration.nix": "# generated\n",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(hostDir, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}

	dest, err := WriteBundle("anvil", base)
	if err != nil {
		t.Fatalf("WriteBundle() error = %v", err)
	}
	if dest != BundlePath("anvil") {
		t.Errorf("dest = %q, want %q", dest, BundlePath("anvil"))
	}

	got := readBundle(t, dest)
	if len(got) != 3 {
		t.Fatalf("bundle has %d entries, want 3: %v", len(got), got)
	}
	if !strings.Contains(got["foundry-install.log"], "mkfs exploded") {
		t.Errorf("install log entry = %q", got["foundry-install.log"])
	}
	if got["hosts/anvil/default.nix"] != "{ }\n" {
		t.Errorf("default.nix entry = %q", got["hosts/anvil/default.nix"])
	}
	if got["hosts/anvil/_hardware-configuration.nix"] != "# generated\n" {
		t.Errorf("hardware config entry = %q", got["hosts/anvil/_hardware-configuration.nix"])
	}
}

func TestWriteBundleLogOnly(t *testing.T) {
	t.Setenv("TMPDIR", t.TempDir())
	stageLog(t, "some log\n")

	dest, err := WriteBundle("", "")
	if err != nil {
		t.Fatalf("WriteBundle() error = %v", err)
	}
	got := readBundle(t, dest)
	if len(got) != 1 {
		t.Fatalf("bundle has %d entries, want just the log: %v", len(got), got)
	}
}

func TestWriteBundleMissingHostDir(t *testing.T) {
	t.Setenv("TMPDIR", t.TempDir())
	stageLog(t, "some log\n")

	// The host directory does not exist; the log alone still bundles.
	dest, err := WriteBundle("anvil", t.TempDir())
	if err != nil {
		t.Fatalf("WriteBundle() error = %v", err)
	}
	got := readBundle(t, dest)
	if len(got) != 1 {
		t.Errorf("bundle has %d entries, want 1", len(got))
	}
}

func TestWriteBundleNothingToBundle(t *testing.T) {
	t.Setenv("TMPDIR", t.TempDir())
	stageLog(t, "")

	_, err := WriteBundle("", "")
	if err == nil || !strings.Contains(err.Error(), "nothing to bundle") {
		t.Errorf("WriteBundle() error = %v, want nothing-to-bundle", err)
	}
}

func TestBundlePath(t *testing.T) {
	t.Setenv("TMPDIR", "/tmp")
	if got := BundlePath("anvil"); got != "/tmp/foundry-diag-anvil.tar.xz" {
		t.Errorf("BundlePath(anvil) = %q", got)
	}
	if got := BundlePath(""); got != "/tmp/foundry-diag.tar.xz" {
		t.Errorf("BundlePath(\"\") = %q", got)
	}
}
