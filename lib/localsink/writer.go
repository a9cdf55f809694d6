// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package localsink is herald's always-available output: rendered log
// lines written synchronously to a terminal or file. A Writer never
// buffers and never reports failure to its caller; the local line is
// the last line of defense and must not cascade.
package localsink

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"

	"github.com/bureau-foundation/herald/lib/render"
)

// ColorMode selects whether local output is colored.
type ColorMode string

const (
	// ColorAuto colors output only when it is a terminal, honoring
	// NO_COLOR and CLICOLOR_FORCE.
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// ParseColorMode validates a color mode name. The empty string means
// ColorAuto.
func ParseColorMode(name string) (ColorMode, error) {
	switch mode := ColorMode(strings.ToLower(name)); mode {
	case "":
		return ColorAuto, nil
	case ColorAuto, ColorAlways, ColorNever:
		return mode, nil
	default:
		return "", fmt.Errorf("unknown color mode %q (want auto, always, or never)", name)
	}
}

// detailIndent prefixes each line of details printed under an event.
const detailIndent = "    "

// Options configures a Writer.
type Options struct {
	// Output receives rendered lines. Required.
	Output io.Writer

	// Color selects colored output. Empty means ColorAuto.
	Color ColorMode
}

// Writer writes rendered lines. It is safe for concurrent use; each
// Write call lands as one contiguous block.
type Writer struct {
	mu      sync.Mutex
	output  io.Writer
	profile termenv.Profile
}

// New creates a Writer and resolves its color profile.
func New(options Options) *Writer {
	return &Writer{
		output:  options.Output,
		profile: detectProfile(options.Output, options.Color),
	}
}

func detectProfile(output io.Writer, mode ColorMode) termenv.Profile {
	if output == nil {
		return termenv.Ascii
	}
	switch mode {
	case ColorNever:
		return termenv.Ascii
	case ColorAlways:
		return termenv.ANSI256
	}
	return termenv.NewOutput(output).EnvColorProfile()
}

// Profile returns the color profile the Writer renders for. Pass it to
// render.Options so line colors match the output.
func (w *Writer) Profile() termenv.Profile {
	return w.profile
}

// Write emits text followed by a newline and, when details is
// non-empty, the serialized details indented beneath it. Errors from
// the underlying output are discarded.
func (w *Writer) Write(text string, details any) {
	var block bytes.Buffer
	block.WriteString(text)
	block.WriteByte('\n')
	if serialized := render.SerializeDetails(details); serialized != "" {
		highlighted := w.profile != termenv.Ascii && render.IsStructured(details)
		if highlighted {
			serialized = w.highlight(serialized)
		}
		lines := detailLines(serialized)
		for index, line := range lines {
			block.WriteString(detailIndent)
			block.WriteString(line)
			if highlighted && index == len(lines)-1 {
				block.WriteString(termenv.CSI + termenv.ResetSeq + "m")
			}
			block.WriteByte('\n')
		}
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.output == nil {
		return
	}
	_, _ = w.output.Write(block.Bytes())
}

// detailLines splits serialized details into lines, dropping trailing
// lines that hold nothing but whitespace or escape sequences.
func detailLines(serialized string) []string {
	lines := strings.Split(serialized, "\n")
	for len(lines) > 0 && strings.TrimSpace(ansi.Strip(lines[len(lines)-1])) == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// highlight syntax-colors serialized YAML details. On any highlighter
// failure the text is returned uncolored.
func (w *Writer) highlight(source string) string {
	var highlighted bytes.Buffer
	if err := quick.Highlight(&highlighted, source, "yaml", chromaFormatter(w.profile), "monokai"); err != nil {
		return source
	}
	return highlighted.String()
}

func chromaFormatter(profile termenv.Profile) string {
	switch profile {
	case termenv.TrueColor:
		return "terminal16m"
	case termenv.ANSI256:
		return "terminal256"
	default:
		return "terminal"
	}
}
