// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package logevent

import (
	"errors"
	"testing"
	"time"
)

func TestHasDetails(t *testing.T) {
	tests := []struct {
		name    string
		details any
		want    bool
	}{
		{"nil", nil, false},
		{"empty string", "", false},
		{"text", "stack trace", true},
		{"map", map[string]any{"disk": "/dev/sda"}, true},
		{"error", errors.New("boom"), true},
		{"empty bytes", []byte{}, false},
		{"nil bytes", []byte(nil), false},
		{"bytes", []byte("panic: boom"), true},
		{"nil pointer", (*struct{ Host string })(nil), false},
		{"nil map", map[string]any(nil), false},
		{"empty map", map[string]any{}, true},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			event := Event{Details: test.details}
			if got := event.HasDetails(); got != test.want {
				t.Fatalf("HasDetails() = %v, want %v", got, test.want)
			}
		})
	}
}

func TestWithTimestamp(t *testing.T) {
	now := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	earlier := now.Add(-time.Hour)

	resolved := Event{Message: "a"}.WithTimestamp(now)
	if !resolved.Timestamp.Equal(now) {
		t.Fatalf("zero timestamp resolved to %v, want %v", resolved.Timestamp, now)
	}

	supplied := Event{Message: "b", Timestamp: earlier}.WithTimestamp(now)
	if !supplied.Timestamp.Equal(earlier) {
		t.Fatalf("supplied timestamp replaced: got %v, want %v", supplied.Timestamp, earlier)
	}
}
