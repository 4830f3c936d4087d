// SPDX-License-Identifier: Apache-2.0

// Package diag assembles diagnostics bundles for failed installations.
package diag

import (
	"archive/tar"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/ulikunitz/xz"

	"github.com/Work-Fort/Foundry/pkg/config"
)

// logPath is a var so tests can stage an install log without touching
// the real one under /tmp.
var logPath = config.InstallLogFile

// BundlePath returns where WriteBundle places the archive for a host.
func BundlePath(hostName string) string {
	name := "foundry-diag.tar.xz"
	if hostName != "" {
		name = fmt.Sprintf("foundry-diag-%s.tar.xz", hostName)
	}
	return filepath.Join(os.TempDir(), name)
}

// WriteBundle archives the install log and the generated host directory
// into a tar.xz and returns the archive path. Either part may be
// missing; an entirely empty bundle is an error.
func WriteBundle(hostName, basePath string) (string, error) {
	type entry struct {
		name string // name inside the archive
		path string // path on disk
	}
	var entries []entry

	if _, err := os.Stat(logPath); err == nil {
		entries = append(entries, entry{filepath.Base(logPath), logPath})
	}

	if hostName != "" && basePath != "" {
		hostDir := filepath.Join(basePath, "modules", "hosts", hostName)
		err := filepath.WalkDir(hostDir, func(path string, d fs.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return err
			}
			rel, err := filepath.Rel(hostDir, path)
			if err != nil {
				return err
			}
			entries = append(entries, entry{filepath.Join("hosts", hostName, rel), path})
			return nil
		})
		if err != nil && !os.IsNotExist(err) {
			return "", fmt.Errorf("failed to walk host directory: %w", err)
		}
	}

	if len(entries) == 0 {
		return "", fmt.Errorf("nothing to bundle: no install log at %s and no host directory", logPath)
	}

	dest := BundlePath(hostName)
	log.Debugf("Writing diagnostics bundle to %s", dest)

	f, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("failed to create bundle: %w", err)
	}
	defer f.Close()

	xzWriter, err := xz.NewWriter(f)
	if err != nil {
		return "", fmt.Errorf("failed to create xz writer: %w", err)
	}
	tw := tar.NewWriter(xzWriter)

	for _, e := range entries {
		if err := addFile(tw, e.name, e.path); err != nil {
			return "", err
		}
	}

	if err := tw.Close(); err != nil {
		return "", fmt.Errorf("failed to finish archive: %w", err)
	}
	if err := xzWriter.Close(); err != nil {
		return "", fmt.Errorf("failed to flush compressed data: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close bundle: %w", err)
	}

	log.Debugf("Diagnostics bundle written: %s", dest)
	return dest, nil
}

func addFile(tw *tar.Writer, name, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}
	hdr, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return fmt.Errorf("failed to build tar header for %s: %w", path, err)
	}
	hdr.Name = name

	if err := tw.WriteHeader(hdr); err != nil {
		return fmt.Errorf("failed to write tar header for %s: %w", name, err)
	}
	src, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer src.Close()
	if _, err := io.Copy(tw, src); err != nil {
		return fmt.Errorf("failed to archive %s: %w", name, err)
	}
	return nil
}
