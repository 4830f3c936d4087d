// SPDX-License-Identifier: Apache-2.0
package pipeline

import (
	"io"
	"reflect"
	"testing"
)

func collectScanner() (*LineScanner, *[]string) {
	var lines []string
	sc := NewLineScanner(func(line string) {
		lines = append(lines, line)
	})
	return sc, &lines
}

func TestLineScannerSplitsOnCarriageReturn(t *testing.T) {
	sc, lines := collectScanner()

	input := "Receiving objects:  10% (1/10)\rReceiving objects:  42% (123/456)\rResolving deltas: 100% (5/5), done.\n"
	if _, err := io.WriteString(sc, input); err != nil {
		t.Fatalf("Write returned error: %v", err)
	}

	want := []string{
		"Receiving objects:  10% (1/10)",
		"Receiving objects:  42% (123/456)",
		"Resolving deltas: 100% (5/5), done.",
	}
	if !reflect.DeepEqual(*lines, want) {
		t.Errorf("emitted lines = %v, want %v", *lines, want)
	}
}

func TestLineScannerSkipsBlankLines(t *testing.T) {
	sc, lines := collectScanner()

	io.WriteString(sc, "one\n\n\r  \ntwo\n")

	want := []string{"one", "two"}
	if !reflect.DeepEqual(*lines, want) {
		t.Errorf("emitted lines = %v, want %v", *lines, want)
	}
}

func TestLineScannerHandlesChunkBoundaries(t *testing.T) {
	sc, lines := collectScanner()

	// A line arriving split across writes must still come out whole.
	io.WriteString(sc, "Receiving obj")
	io.WriteString(sc, "ects:  42% (123/456)\rCounting")
	io.WriteString(sc, " objects: 7\n")

	want := []string{
		"Receiving objects:  42% (123/456)",
		"Counting objects: 7",
	}
	if !reflect.DeepEqual(*lines, want) {
		t.Errorf("emitted lines = %v, want %v", *lines, want)
	}
}

func TestLineScannerFlushReturnsTrailingFragment(t *testing.T) {
	sc, lines := collectScanner()

	io.WriteString(sc, "complete line\npartial 50% fragm")

	if got := sc.Flush(); got != "partial 50% fragm" {
		t.Errorf("Flush() = %q, want %q", got, "partial 50% fragm")
	}
	// The fragment is returned, never emitted.
	want := []string{"complete line"}
	if !reflect.DeepEqual(*lines, want) {
		t.Errorf("emitted lines = %v, want %v", *lines, want)
	}
	if got := sc.Flush(); got != "" {
		t.Errorf("second Flush() = %q, want empty", got)
	}
}

func TestExtractPercent(t *testing.T) {
	tests := []struct {
		line string
		pct  int
		ok   bool
	}{
		{"Receiving objects:  42% (123/456), 1.2 MiB | 5.0 MiB/s", 42, true},
		{"Resolving deltas:  80% (12/15)", 80, true},
		{"Receiving objects: 100% (456/456), done.", 100, true},
		{"remote: Counting objects: 7, done.", 0, false},
		{"Enumerating objects: 100, done.", 0, false},
		{"0%", 0, true},
		{"no digits before %", 0, false},
		{"%", 0, false},
		{"", 0, false},
		// Values past 255 are rejected outright, not clamped.
		{"weird 999% line", 0, false},
	}
	for _, tt := range tests {
		pct, ok := ExtractPercent(tt.line)
		if pct != tt.pct || ok != tt.ok {
			t.Errorf("ExtractPercent(%q) = (%d, %v), want (%d, %v)", tt.line, pct, ok, tt.pct, tt.ok)
		}
	}
}

func TestCloneEmitDrivesProgress(t *testing.T) {
	state := NewProgressState(100)
	sc := NewLineScanner(cloneEmit(state))

	io.WriteString(sc, "Receiving objects:  42% (123/456)\r")
	snap := state.Snapshot()
	if snap.Progress != 42 {
		t.Errorf("progress after 42%% line = %d, want 42", snap.Progress)
	}

	io.WriteString(sc, "Receiving objects: 100% (456/456), done.\n")
	snap = state.Snapshot()
	if snap.Progress != 100 {
		t.Errorf("progress after 100%% line = %d, want 100", snap.Progress)
	}
	// A 100% progress line does not finish the clone; only process exit does.
	if snap.Done {
		t.Error("done = true before the clone process exited")
	}
	if len(snap.Log) != 2 {
		t.Errorf("log length = %d, want 2", len(snap.Log))
	}
}
