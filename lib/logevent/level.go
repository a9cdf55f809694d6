// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package logevent

import (
	"fmt"
	"strings"
)

// Level controls decoration and the remote rendering strategy.
type Level int

const (
	Info Level = iota
	Warn
	Error
	Debug
	Success
)

var levelNames = [...]string{
	Info:    "info",
	Warn:    "warn",
	Error:   "error",
	Debug:   "debug",
	Success: "success",
}

// String returns the lowercase level name.
func (l Level) String() string {
	if l < 0 || int(l) >= len(levelNames) {
		return fmt.Sprintf("level(%d)", int(l))
	}
	return levelNames[l]
}

// Valid reports whether l is one of the defined levels.
func (l Level) Valid() bool {
	return l >= 0 && int(l) < len(levelNames)
}

// ParseLevel parses a level name, case-insensitively. "warning" is
// accepted as an alias for warn.
func ParseLevel(name string) (Level, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	if normalized == "warning" {
		return Warn, nil
	}
	for index, candidate := range levelNames {
		if candidate == normalized {
			return Level(index), nil
		}
	}
	return Info, fmt.Errorf("unknown log level %q (want one of %s)", name, strings.Join(levelNames[:], ", "))
}

// MarshalText implements encoding.TextMarshaler.
func (l Level) MarshalText() ([]byte, error) {
	if !l.Valid() {
		return nil, fmt.Errorf("invalid log level %d", int(l))
	}
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *Level) UnmarshalText(text []byte) error {
	parsed, err := ParseLevel(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// Decoration is the visual treatment shared by the local and remote
// renderers.
type Decoration struct {
	// Color is a hex RGB string such as "#ED4245".
	Color string
	Emoji string
}

// DefaultColor is the accent used for info events, which have no
// level color of their own.
const DefaultColor = "#5865F2"

var decorations = [...]Decoration{
	Info:    {Color: DefaultColor, Emoji: "ℹ️"},
	Warn:    {Color: "#FFA500", Emoji: "⚠️"},
	Error:   {Color: "#ED4245", Emoji: "❌"},
	Debug:   {Color: "#95A5A6", Emoji: "🔍"},
	Success: {Color: "#57F287", Emoji: "✅"},
}

// Decoration returns the fixed decoration for l. Unknown levels get
// the info decoration.
func (l Level) Decoration() Decoration {
	if !l.Valid() {
		return decorations[Info]
	}
	return decorations[l]
}
