// Package joblog appends batch job outcome lines to plain text log files.
// These files are the operational record of each job run and are separate
// from the structured application log.
package joblog

import (
	"fmt"
	"os"
	"sync"
)

const (
	// TimestampLayout is the prefix layout used by most job log lines.
	TimestampLayout = "2006-01-02 15:04:05"
	// HeartbeatLayout is the compact layout used by the heartbeat log.
	HeartbeatLayout = "02/01/2006-15:04:05"
)

// Appender writes lines to a single log file, creating it on first use.
// Each line is written with its own open/close so concurrent processes
// appending to the same file interleave whole lines.
type Appender struct {
	mu   sync.Mutex
	path string
}

func NewAppender(path string) *Appender {
	return &Appender{path: path}
}

func (a *Appender) Path() string {
	return a.path
}

// AppendLine writes line followed by a newline to the log file.
func (a *Appender) AppendLine(line string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	f, err := os.OpenFile(a.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open job log %s: %w", a.path, err)
	}
	defer f.Close()

	if _, err := fmt.Fprintln(f, line); err != nil {
		return fmt.Errorf("append to job log %s: %w", a.path, err)
	}
	return nil
}

// Appendf formats according to format and writes the result as one line.
func (a *Appender) Appendf(format string, args ...any) error {
	return a.AppendLine(fmt.Sprintf(format, args...))
}
