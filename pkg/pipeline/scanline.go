// SPDX-License-Identifier: Apache-2.0
package pipeline

import (
	"strconv"
	"strings"
)

// LineScanner splits a byte stream on CR or LF and hands each trimmed,
// non-empty line to emit. git clone --progress redraws its progress lines
// in place with bare carriage returns, so a plain line reader would sit on
// one giant "line" until the phase changes; splitting on both terminators
// surfaces every redraw as it happens.
//
// LineScanner implements io.Writer so it can sit directly on the far end
// of an io.Copy from the process's stderr pipe.
type LineScanner struct {
	buf  []byte
	emit func(line string)
}

// NewLineScanner returns a scanner that calls emit for each completed line.
func NewLineScanner(emit func(string)) *LineScanner {
	return &LineScanner{emit: emit}
}

// Write consumes a chunk of stream bytes. It never returns an error.
func (s *LineScanner) Write(p []byte) (int, error) {
	for _, b := range p {
		if b == '\r' || b == '\n' {
			line := strings.TrimSpace(string(s.buf))
			s.buf = s.buf[:0]
			if line != "" {
				s.emit(line)
			}
		} else {
			s.buf = append(s.buf, b)
		}
	}
	return len(p), nil
}

// Flush returns the trailing partial line left in the buffer after the
// stream ends, trimmed, or "" if there is none. The fragment is returned
// rather than emitted: a cut-off progress line must not drive the percent
// counter.
func (s *LineScanner) Flush() string {
	line := strings.TrimSpace(string(s.buf))
	s.buf = s.buf[:0]
	return line
}

// ExtractPercent reads a progress percentage out of a git progress line
// such as "Receiving objects:  42% (123/456), 1.2 MiB | 5.0 MiB/s". It
// finds the first '%' and takes the run of ASCII digits immediately before
// it; values above 255 are rejected rather than clamped.
func ExtractPercent(line string) (int, bool) {
	pos := strings.IndexByte(line, '%')
	if pos < 0 {
		return 0, false
	}
	start := pos
	for start > 0 && line[start-1] >= '0' && line[start-1] <= '9' {
		start--
	}
	if start == pos {
		return 0, false
	}
	pct, err := strconv.ParseUint(line[start:pos], 10, 8)
	if err != nil {
		return 0, false
	}
	return int(pct), true
}
