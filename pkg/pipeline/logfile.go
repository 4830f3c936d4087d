// SPDX-License-Identifier: Apache-2.0
package pipeline

import (
	"fmt"
	"os"

	"github.com/Work-Fort/Foundry/pkg/config"
)

const logFileHeader = "=== Foundry Install Log ==="

// logFilePath is a var so tests can point the install log at a temp dir.
var logFilePath = config.InstallLogFile

// TruncateLogFile resets the persistent install log at the start of a run.
// The file is best-effort: a read-only /tmp must not stop an install, so
// failures are swallowed here and in AppendLogLine.
func TruncateLogFile() {
	f, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return
	}
	defer f.Close()
	fmt.Fprintf(f, "%s\n\n", logFileHeader)
}

// AppendLogLine appends one line to the persistent install log.
func AppendLogLine(line string) {
	f, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return
	}
	defer f.Close()
	fmt.Fprintln(f, line)
}
