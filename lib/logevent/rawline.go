// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package logevent

import (
	"regexp"
	"strings"
	"time"

	"github.com/charmbracelet/x/ansi"
)

// RawLineOptions controls ParseRawLine.
type RawLineOptions struct {
	// Producer is the fixed process name that prefixes each line as
	// "<producer> | ". When empty, any single leading token followed
	// by " | " is treated as the producer prefix.
	Producer string

	// Now supplies the timestamp when the line carries none.
	Now time.Time
}

// levelKeywords is checked in order; the first match wins.
var levelKeywords = []struct {
	level    Level
	keywords []string
}{
	{Error, []string{"error"}},
	{Warn, []string{"warn"}},
	{Debug, []string{"debug"}},
	{Success, []string{"success", "ready"}},
}

var (
	isoTimestampPrefix = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2}[T ]\d{2}:\d{2}:\d{2}(?:\.\d+)?(?:Z|[+-]\d{2}:?\d{2})?)(?:\s*:)?\s*`)
	anyProducerPrefix  = regexp.MustCompile(`^\S+\s+\|\s?`)
)

// ParseRawLine normalizes one unstructured line from an external
// process. It strips ANSI escape sequences, a leading ISO-8601
// timestamp, and the producer prefix, then detects the level from
// keywords in the remaining text. The result has Source set to
// ExternalSource. ok is false for lines that are blank after
// normalization.
func ParseRawLine(line string, options RawLineOptions) (event Event, ok bool) {
	text := strings.TrimSpace(ansi.Strip(line))

	timestamp := options.Now
	if match := isoTimestampPrefix.FindStringSubmatch(text); match != nil {
		if parsed, found := parseTimestamp(match[1]); found {
			timestamp = parsed
		}
		text = text[len(match[0]):]
	}

	text = stripProducer(text, options.Producer)
	text = strings.TrimSpace(text)
	if text == "" {
		return Event{}, false
	}

	return Event{
		Level:     DetectLevel(text),
		Message:   text,
		Timestamp: timestamp,
		Source:    ExternalSource,
	}, true
}

// DetectLevel returns the level implied by keywords in text, or Info
// when no keyword matches.
func DetectLevel(text string) Level {
	lowered := strings.ToLower(text)
	for _, candidate := range levelKeywords {
		for _, keyword := range candidate.keywords {
			if strings.Contains(lowered, keyword) {
				return candidate.level
			}
		}
	}
	return Info
}

func stripProducer(text, producer string) string {
	if producer == "" {
		if match := anyProducerPrefix.FindString(text); match != "" {
			return text[len(match):]
		}
		return text
	}
	rest, found := strings.CutPrefix(text, producer)
	if !found {
		return text
	}
	trimmed := strings.TrimLeft(rest, " \t")
	if after, found := strings.CutPrefix(trimmed, "|"); found {
		return after
	}
	return text
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999Z0700",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999Z0700",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

func parseTimestamp(value string) (time.Time, bool) {
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}
