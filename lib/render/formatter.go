// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package render

import (
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/bureau-foundation/herald/lib/logevent"
)

// clockLayout is the wall-clock format used by both renderers.
const clockLayout = "15:04:05"

// DetailFieldName labels the detail field of a RichUnit.
const DetailFieldName = "Details"

// Options configures a Formatter.
type Options struct {
	// Profile is the terminal color profile for local rendering.
	// termenv.Ascii disables color. The zero value is termenv.TrueColor,
	// so callers that want plain text must say so.
	Profile termenv.Profile

	// Location is the time zone for wall-clock times. Nil means
	// time.Local.
	Location *time.Location
}

// Formatter renders events. It is immutable after construction.
type Formatter struct {
	location *time.Location
	colored  bool
	styles   map[logevent.Level]lipgloss.Style
	faint    lipgloss.Style
}

// NewFormatter creates a Formatter.
func NewFormatter(options Options) *Formatter {
	location := options.Location
	if location == nil {
		location = time.Local
	}

	// The renderer never writes; it only needs a fixed profile.
	// SetColorProfile stops lipgloss from re-detecting the profile
	// from the environment.
	renderer := lipgloss.NewRenderer(io.Discard, termenv.WithProfile(options.Profile))
	renderer.SetColorProfile(options.Profile)

	styles := make(map[logevent.Level]lipgloss.Style)
	for _, level := range []logevent.Level{logevent.Warn, logevent.Error, logevent.Debug, logevent.Success} {
		styles[level] = renderer.NewStyle().Foreground(lipgloss.Color(level.Decoration().Color))
	}
	styles[logevent.Info] = renderer.NewStyle()

	return &Formatter{
		location: location,
		colored:  options.Profile != termenv.Ascii,
		styles:   styles,
		faint:    renderer.NewStyle().Faint(true),
	}
}

// RenderLocal renders an event as "[HH:MM:SS] <emoji> [source] message"
// for the local sink. The source tag is omitted when the event has no
// source. Local output is never truncated.
func (f *Formatter) RenderLocal(event logevent.Event) string {
	decoration := event.Level.Decoration()

	var body strings.Builder
	body.WriteString(decoration.Emoji)
	body.WriteByte(' ')
	if event.Source != "" {
		body.WriteString("[" + event.Source + "] ")
	}
	body.WriteString(event.Message)

	clock := "[" + event.Timestamp.In(f.location).Format(clockLayout) + "]"
	if !f.colored {
		return clock + " " + body.String()
	}

	// Styles pad multi-line input to a common width, so each line is
	// styled on its own.
	style := f.styles[event.Level]
	lines := strings.Split(body.String(), "\n")
	for index, line := range lines {
		lines[index] = style.Render(line)
	}
	return f.faint.Render(clock) + " " + strings.Join(lines, "\n")
}

// IsRich reports whether an event renders remotely as a RichUnit:
// error and success events, and any event with details.
func IsRich(event logevent.Event) bool {
	return event.Level == logevent.Error || event.Level == logevent.Success || event.HasDetails()
}

// RenderRemote renders an event for the remote channel, already
// limited to the channel's size caps.
func (f *Formatter) RenderRemote(event logevent.Event) Unit {
	decoration := event.Level.Decoration()

	if !IsRich(event) {
		var text strings.Builder
		text.WriteString(decoration.Emoji)
		text.WriteString(" [" + event.Timestamp.In(f.location).Format(clockLayout) + "] ")
		if event.Source != "" {
			text.WriteString("[" + event.Source + "] ")
		}
		text.WriteString(event.Message)
		return PlainUnit{Text: text.String()}.Limit()
	}

	unit := RichUnit{
		Title:       decoration.Emoji + " " + strings.ToUpper(event.Level.String()),
		Description: event.Message,
		Author:      event.Source,
		Color:       decoration.Color,
		Timestamp:   event.Timestamp,
	}
	if event.HasDetails() {
		unit.DetailName = DetailFieldName
		unit.Detail = SerializeDetails(event.Details)
		unit.DetailStructured = IsStructured(event.Details)
	}
	return unit.Limit()
}
