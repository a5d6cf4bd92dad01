package logging

import (
	"io"
	"log/slog"
	"os"
)

// Options controls the structured logger.
type Options struct {
	Verbose bool
	JSON    bool
	Output  io.Writer
}

// New returns a structured logger writing to stderr unless Output is set.
// Debug records are emitted when Verbose is set or TT_DEBUG is present.
func New(opts Options) *slog.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	level := slog.LevelInfo
	if opts.Verbose || DebugEnabled() {
		level = slog.LevelDebug
	}

	handlerOpts := &slog.HandlerOptions{Level: level}
	if opts.JSON {
		return slog.New(slog.NewJSONHandler(out, handlerOpts))
	}
	return slog.New(slog.NewTextHandler(out, handlerOpts))
}

// Discard is a logger that drops every record. Used as the zero value by
// components that accept an optional logger.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// OrDiscard returns l, or Discard when l is nil.
func OrDiscard(l *slog.Logger) *slog.Logger {
	if l == nil {
		return Discard()
	}
	return l
}
