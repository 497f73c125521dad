package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

// DebugEnabled returns true if debug mode is enabled via TT_DEBUG environment variable
func DebugEnabled() bool {
	return os.Getenv("TT_DEBUG") != ""
}

// Debugf prints a formatted debug message only if debug mode is enabled
func Debugf(format string, args ...interface{}) {
	if DebugEnabled() {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}

// Debugln prints a debug message followed by a newline only if debug mode is enabled
func Debugln(args ...interface{}) {
	if DebugEnabled() {
		fmt.Fprintln(os.Stderr, args...)
	}
}

// New returns a text logger writing to w. The level is Debug when TT_DEBUG is
// set or verbose is true, Warn otherwise so normal command output stays clean.
func New(w io.Writer, verbose bool) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: Level(verbose)}))
}

// Level resolves the log level from TT_DEBUG and the verbose flag.
func Level(verbose bool) slog.Level {
	if verbose || DebugEnabled() {
		return slog.LevelDebug
	}
	return slog.LevelWarn
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// OrDiscard returns logger, or a discarding logger when it is nil.
func OrDiscard(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return Discard()
	}
	return logger
}
