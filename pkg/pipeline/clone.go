// SPDX-License-Identifier: Apache-2.0
package pipeline

import (
	"errors"
	"fmt"
	"io"
	"os/exec"
)

// RunClone starts cloning url into dest on a background goroutine and
// returns the progress state the caller should poll. The total is 100:
// progress carries the percentage parsed from git's own progress output.
//
// The caller is responsible for clearing a stale checkout at dest first.
func RunClone(url, dest string) *ProgressState {
	state := NewProgressState(100)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				state.crash("Clone worker crashed unexpectedly", true)
			}
		}()
		cloneRepo(url, dest, state)
	}()
	return state
}

// cloneRepo runs git clone --progress and feeds its stderr through a
// LineScanner. git writes all progress to stderr; stdout is discarded.
func cloneRepo(url, dest string, state *ProgressState) {
	state.AppendLog(fmt.Sprintf("Cloning %s...", url))

	cmd := exec.Command("git", "clone", "--progress", url, dest)
	stderr, err := cmd.StderrPipe()
	if err == nil {
		err = cmd.Start()
	}
	if err != nil {
		msg := fmt.Sprintf("Failed to run git clone: %v", err)
		state.AppendLog(msg)
		state.Fail(msg)
		return
	}

	scanner := NewLineScanner(cloneEmit(state))
	_, _ = io.Copy(scanner, stderr)
	if rest := scanner.Flush(); rest != "" {
		state.AppendLog(rest)
	}

	if err := cmd.Wait(); err != nil {
		var exitErr *exec.ExitError
		var msg string
		if errors.As(err, &exitErr) {
			msg = fmt.Sprintf("git clone failed with exit code %d", exitErr.ExitCode())
		} else {
			msg = fmt.Sprintf("Failed to wait for git clone: %v", err)
		}
		state.AppendLog(msg)
		state.Fail(msg)
		return
	}

	state.AppendLog("Clone completed successfully.")
	state.SetProgress(100)
	state.MarkDone()
}

// cloneEmit handles one completed git progress line: log it, and if it
// carries a percentage, advance the counter. Completion is never inferred
// from a 100% line; only a clean process exit marks the clone done.
func cloneEmit(state *ProgressState) func(string) {
	return func(line string) {
		state.AppendLog(line)
		if pct, ok := ExtractPercent(line); ok {
			state.SetProgress(pct)
		}
	}
}
