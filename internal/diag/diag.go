// Package diag is a thin wrapper over the standard logger used for the
// tool's diagnostic stream (§7's "recoverable oddities... skipped with a
// warning to the diagnostic stream"). It exists so call sites name the
// severity of a message rather than formatting ad hoc prefixes.
package diag

import (
	"io"
	"log"
	"os"
)

// Logger writes timestamped diagnostic lines to an underlying writer,
// gated by a verbosity flag for Info-level messages.
type Logger struct {
	l       *log.Logger
	verbose bool
}

// New returns a Logger writing to w (os.Stderr if w is nil).
func New(w io.Writer, verbose bool) *Logger {
	if w == nil {
		w = os.Stderr
	}
	return &Logger{l: log.New(w, "", log.LstdFlags), verbose: verbose}
}

// Info logs a message only when verbose output was requested.
func (d *Logger) Info(format string, args ...interface{}) {
	if d.verbose {
		d.l.Printf("info: "+format, args...)
	}
}

// Warn logs a recoverable oddity: processing continues.
func (d *Logger) Warn(format string, args ...interface{}) {
	d.l.Printf("warn: "+format, args...)
}

// Fatal logs a fatal error and exits the process with status 1, matching
// §7's "no error carries a structured result outward; the process
// terminates on any fatal error."
func (d *Logger) Fatal(format string, args ...interface{}) {
	d.l.Fatalf("fatal: "+format, args...)
}
