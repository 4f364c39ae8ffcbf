// Package logging sets up the process-wide slog logger.
package logging

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// FileName is the log file inside the log directory.
const FileName = "roadmap.log"

// Logger is the global slog instance for the application.
var Logger = slog.New(slog.NewTextHandler(io.Discard, nil))

// Options control Init.
type Options struct {
	// Dir holds the log file. Empty means DefaultDir().
	Dir string
	// Verbose adds a debug-level handler writing to Stderr.
	Verbose bool
	Stderr  io.Writer
}

// DefaultDir returns <user config dir>/roadmap/logs.
func DefaultDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "roadmap", "logs"), nil
}

// Init points Logger, and slog's default, at the log file and, when
// verbose, at stderr too. The returned close function releases the file.
// If the log file cannot be opened, logging falls back to stderr only
// (verbose) or nothing, and the error is returned for the caller to
// mention; it never has to be fatal.
func Init(opts Options) (func() error, error) {
	noop := func() error { return nil }

	var handlers []slog.Handler
	if opts.Verbose {
		w := opts.Stderr
		if w == nil {
			w = os.Stderr
		}
		handlers = append(handlers, slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	file, openErr := openLogFile(opts.Dir)
	closer := noop
	if openErr == nil {
		handlers = append(handlers, slog.NewTextHandler(file, &slog.HandlerOptions{Level: slog.LevelInfo}))
		closer = file.Close
	}

	switch len(handlers) {
	case 0:
		Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	case 1:
		Logger = slog.New(handlers[0])
	default:
		Logger = slog.New(fanout(handlers))
	}
	slog.SetDefault(Logger)

	return closer, openErr
}

func openLogFile(dir string) (*os.File, error) {
	if dir == "" {
		d, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return os.OpenFile(filepath.Join(dir, FileName), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
}

// fanout sends each record to every handler that accepts its level.
type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range f {
		if h.Enabled(ctx, r.Level) {
			if err := h.Handle(ctx, r.Clone()); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (f fanout) WithGroup(name string) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithGroup(name)
	}
	return out
}
