// SPDX-License-Identifier: Apache-2.0

// Package pipeline runs the two long-lived background jobs of an install
// session: cloning the configuration repository and performing the actual
// NixOS installation. Each job runs on a single goroutine and reports
// through a shared ProgressState that the UI polls.
package pipeline

import "sync"

// ProgressState is the mutex-guarded record a background worker writes and
// the UI reads. Both the clone and the install worker use the same shape:
// the clone worker counts percent against a total of 100, the install
// worker counts completed stages against its stage total.
//
// The log only ever grows, progress only ever rises, and once Done or an
// error is set the worker runs no further stage.
type ProgressState struct {
	mu       sync.Mutex
	log      []string
	progress int
	total    int
	err      string
	done     bool
}

// NewProgressState returns an empty state with a fixed total.
func NewProgressState(total int) *ProgressState {
	return &ProgressState{total: total}
}

// AppendLog adds one line to the shared log.
func (s *ProgressState) AppendLog(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.log = append(s.log, line)
}

// SetProgress updates the progress counter.
func (s *ProgressState) SetProgress(p int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progress = p
}

// Fail records the terminal error. The worker returns right after calling
// this, so at most one error is ever set.
func (s *ProgressState) Fail(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = msg
}

// MarkDone flags successful completion.
func (s *ProgressState) MarkDone() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.done = true
}

// crash records that the worker goroutine panicked. markDone additionally
// terminates the job from the UI's point of view; the clone flow wants
// that (a dead clone can never finish), the install flow leaves done unset
// so the operator sees the failure rather than a false success.
func (s *ProgressState) crash(msg string, markDone bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = msg
	if markDone {
		s.done = true
	}
}

// Snapshot is a point-in-time copy of a ProgressState, safe to keep and
// render after the lock is released.
type Snapshot struct {
	Log      []string
	Progress int
	Total    int
	Err      string
	Done     bool
}

// Snapshot copies the current state under the lock.
func (s *ProgressState) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	logCopy := make([]string, len(s.log))
	copy(logCopy, s.log)
	return Snapshot{
		Log:      logCopy,
		Progress: s.progress,
		Total:    s.total,
		Err:      s.err,
		Done:     s.done,
	}
}
