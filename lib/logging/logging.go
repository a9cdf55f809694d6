// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package logging builds the diagnostic slog.Logger for herald
// binaries. Diagnostics are separate from relayed events: they describe
// the relay itself (remote state changes, send failures, ingestion
// errors) and always go to stderr or a file, never to Matrix.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/term"
)

// Options configures New.
type Options struct {
	// Output receives log records. Default: os.Stderr.
	Output io.Writer

	// Level is debug, info, warn, or error. Default: info.
	Level string

	// Format is text, json, or auto. Auto picks text when Output is a
	// terminal and JSON otherwise.
	Format string
}

// New builds a logger. When Output is a terminal and Format is auto,
// records are human-readable text; when piped or redirected they are
// JSON, matching what log collectors expect.
func New(options Options) (*slog.Logger, error) {
	output := options.Output
	if output == nil {
		output = os.Stderr
	}
	level, err := ParseLevel(options.Level)
	if err != nil {
		return nil, err
	}

	handlerOptions := &slog.HandlerOptions{Level: level}
	switch format := strings.ToLower(options.Format); format {
	case "text":
		return slog.New(slog.NewTextHandler(output, handlerOptions)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(output, handlerOptions)), nil
	case "", "auto":
		if isTerminal(output) {
			return slog.New(slog.NewTextHandler(output, handlerOptions)), nil
		}
		return slog.New(slog.NewJSONHandler(output, handlerOptions)), nil
	default:
		return nil, fmt.Errorf("unknown log format %q (want auto, text, or json)", options.Format)
	}
}

// ParseLevel parses a level name. Empty means info.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", name)
	}
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	return ok && term.IsTerminal(int(file.Fd()))
}
