// Package logging builds the charmbracelet/log logger used for progress and
// diagnostics. Reports go to stdout; log lines go to stderr.
package logging

import (
	"io"

	"github.com/charmbracelet/log"
)

// New creates a logger writing to w at the given level.
func New(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Prefix:          "skillpack",
		ReportTimestamp: false,
		Level:           level,
	})
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return New(io.Discard, log.FatalLevel)
}

// LevelFor maps the quiet/verbose switches to a log level. Quiet wins.
func LevelFor(quiet, verbose bool) log.Level {
	switch {
	case quiet:
		return log.ErrorLevel
	case verbose:
		return log.DebugLevel
	default:
		return log.InfoLevel
	}
}
