// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package render

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"

	"github.com/bureau-foundation/herald/lib/logevent"
)

var timestamp = time.Date(2026, 2, 3, 14, 5, 6, 0, time.UTC)

func plainFormatter() *Formatter {
	return NewFormatter(Options{Profile: termenv.Ascii, Location: time.UTC})
}

func TestRenderLocalPlain(t *testing.T) {
	formatter := plainFormatter()

	got := formatter.RenderLocal(logevent.Event{
		Level:     logevent.Warn,
		Message:   "disk 91% full",
		Source:    "monitor",
		Timestamp: timestamp,
	})
	if want := "[14:05:06] ⚠️ [monitor] disk 91% full"; got != want {
		t.Fatalf("RenderLocal() = %q, want %q", got, want)
	}

	got = formatter.RenderLocal(logevent.Event{Level: logevent.Info, Message: "hello", Timestamp: timestamp})
	if want := "[14:05:06] ℹ️ hello"; got != want {
		t.Fatalf("RenderLocal() without source = %q, want %q", got, want)
	}
}

func TestRenderLocalColored(t *testing.T) {
	colored := NewFormatter(Options{Profile: termenv.TrueColor, Location: time.UTC})
	event := logevent.Event{
		Level:     logevent.Error,
		Message:   "first line\nsecond line",
		Timestamp: timestamp,
	}

	got := colored.RenderLocal(event)
	if !strings.Contains(got, "\x1b[") {
		t.Fatalf("colored output has no escape sequences: %q", got)
	}
	if stripped, plain := ansi.Strip(got), plainFormatter().RenderLocal(event); stripped != plain {
		t.Fatalf("stripped colored output = %q, want %q", stripped, plain)
	}
}

func TestRenderRemoteClassification(t *testing.T) {
	formatter := plainFormatter()
	tests := []struct {
		name    string
		level   logevent.Level
		details any
		rich    bool
	}{
		{"error without details", logevent.Error, nil, true},
		{"success without details", logevent.Success, nil, true},
		{"info with details", logevent.Info, map[string]any{"k": "v"}, true},
		{"warn with text details", logevent.Warn, "trace", true},
		{"debug without details", logevent.Debug, nil, false},
		{"info without details", logevent.Info, nil, false},
		{"warn with empty text details", logevent.Warn, "", false},
		{"warn with empty byte details", logevent.Warn, []byte{}, false},
		{"warn with unencodable details", logevent.Warn, map[string]any{"retry": func() {}}, true},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			unit := formatter.RenderRemote(logevent.Event{
				Level:     test.level,
				Message:   "m",
				Details:   test.details,
				Timestamp: timestamp,
			})
			_, rich := unit.(RichUnit)
			if rich != test.rich {
				t.Fatalf("RenderRemote() = %T, want rich=%v", unit, test.rich)
			}
		})
	}
}

func TestRenderRemoteRichFields(t *testing.T) {
	unit := plainFormatter().RenderRemote(logevent.Event{
		Level:     logevent.Error,
		Message:   "payment failed",
		Source:    "billing",
		Details:   map[string]any{"order": 17},
		Timestamp: timestamp,
	})
	rich, ok := unit.(RichUnit)
	if !ok {
		t.Fatalf("RenderRemote() = %T, want RichUnit", unit)
	}
	want := RichUnit{
		Title:            "❌ ERROR",
		Description:      "payment failed",
		Author:           "billing",
		Color:            "#ED4245",
		DetailName:       DetailFieldName,
		Detail:           "order: 17",
		DetailStructured: true,
		Timestamp:        timestamp,
	}
	if rich != want {
		t.Fatalf("RichUnit = %+v, want %+v", rich, want)
	}
}

func TestRenderRemotePlainText(t *testing.T) {
	unit := plainFormatter().RenderRemote(logevent.Event{
		Level:     logevent.Debug,
		Message:   "cache miss",
		Source:    "api",
		Timestamp: timestamp,
	})
	plain, ok := unit.(PlainUnit)
	if !ok {
		t.Fatalf("RenderRemote() = %T, want PlainUnit", unit)
	}
	if want := "🔍 [14:05:06] [api] cache miss"; plain.Text != want {
		t.Fatalf("Text = %q, want %q", plain.Text, want)
	}
}

func TestRenderRemotePlainTruncation(t *testing.T) {
	unit := plainFormatter().RenderRemote(logevent.Event{
		Level:     logevent.Info,
		Message:   strings.Repeat("x", 2100),
		Timestamp: timestamp,
	})
	plain := unit.(PlainUnit)
	if count := utf8.RuneCountInString(plain.Text); count != PlainLimit {
		t.Fatalf("plain text is %d characters, want %d", count, PlainLimit)
	}
	if !strings.HasSuffix(plain.Text, Ellipsis) {
		t.Fatalf("plain text does not end with %q", Ellipsis)
	}
	if kept := strings.TrimSuffix(plain.Text, Ellipsis); utf8.RuneCountInString(kept) != PlainLimit-3 {
		t.Fatalf("kept %d characters before the ellipsis, want %d", utf8.RuneCountInString(kept), PlainLimit-3)
	}
}

func TestRenderRemoteRichTruncation(t *testing.T) {
	unit := plainFormatter().RenderRemote(logevent.Event{
		Level:     logevent.Error,
		Message:   strings.Repeat("d", 3000),
		Details:   strings.Repeat("t", 1500),
		Timestamp: timestamp,
	})
	rich := unit.(RichUnit)
	if count := utf8.RuneCountInString(rich.Description); count != DescriptionLimit {
		t.Fatalf("description is %d characters, want %d", count, DescriptionLimit)
	}
	if count := utf8.RuneCountInString(rich.Detail); count != DetailLimit {
		t.Fatalf("detail is %d characters, want %d", count, DetailLimit)
	}
	if again := rich.Limit(); again != Unit(rich) {
		t.Fatal("limiting an already limited RichUnit changed it")
	}
}

func TestPlainUnitLimitIdempotent(t *testing.T) {
	unit := PlainUnit{Text: strings.Repeat("é", 2500)}.Limit()
	if again := unit.Limit(); again != unit {
		t.Fatal("limiting an already limited PlainUnit changed it")
	}
}
