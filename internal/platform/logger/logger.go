package logger

import (
	"log/slog"
	"os"
)

// New returns the process logger. Output goes to stderr so the audit log and
// any piped stdout stay clean; verbose switches on debug records.
func New(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
