// Package logging builds the process logger. Records are structured; the
// server writes JSON, the CLI may prefer text on a terminal.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// Options selects what New builds. Zero values mean info level, JSON, no file.
type Options struct {
	Level  string
	Format string
	// File, when set, receives a copy of every record in addition to stderr.
	File string
}

// New creates the logger described by opts and installs it as the slog
// default. The returned cleanup func closes the log file, if any; callers
// must defer it.
func New(opts Options) (*slog.Logger, func(), error) {
	format, err := ParseFormat(opts.Format)
	if err != nil {
		return nil, nil, err
	}

	var w io.Writer = os.Stderr
	cleanup := func() {}
	if opts.File != "" {
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		w = io.MultiWriter(os.Stderr, f)
		cleanup = func() { _ = f.Close() }
	}

	logger := newLogger(w, ParseLevel(opts.Level), format)
	slog.SetDefault(logger)
	return logger, cleanup, nil
}

func newLogger(w io.Writer, lvl slog.Level, format Format) *slog.Logger {
	handlerOpts := &slog.HandlerOptions{Level: lvl}
	var handler slog.Handler
	if format == FormatText {
		handler = slog.NewTextHandler(w, handlerOpts)
	} else {
		handler = slog.NewJSONHandler(w, handlerOpts)
	}
	return slog.New(handler).With("app", "kitchzone")
}

// ParseLevel maps a LOG_LEVEL value to a slog level; unknown values mean info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ParseFormat accepts "json", "text" or empty (json).
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case "", FormatJSON:
		return FormatJSON, nil
	case FormatText:
		return FormatText, nil
	}
	return "", fmt.Errorf("unknown log format %q", s)
}
