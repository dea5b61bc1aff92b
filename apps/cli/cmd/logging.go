package cmd

import (
	"io"
	"log/slog"
)

// newLogger returns the diagnostics logger: debug level with --debug,
// warnings only otherwise.
func newLogger(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
