// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package render

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		limit int
		want  string
	}{
		{"short", "hello", 10, "hello"},
		{"exact", "hello", 5, "hello"},
		{"over", "hello world", 8, "hello..."},
		{"multibyte", "ééééééé", 5, "éé..."},
		{"tiny limit", "hello", 2, ".."},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := Truncate(test.text, test.limit); got != test.want {
				t.Fatalf("Truncate(%q, %d) = %q, want %q", test.text, test.limit, got, test.want)
			}
		})
	}
}

func TestTruncateIdempotent(t *testing.T) {
	for _, limit := range []int{PlainLimit, DescriptionLimit, DetailLimit} {
		once := Truncate(strings.Repeat("ab🔍", limit), limit)
		if count := utf8.RuneCountInString(once); count != limit {
			t.Fatalf("truncated to %d characters, want %d", count, limit)
		}
		if twice := Truncate(once, limit); twice != once {
			t.Fatalf("second Truncate at limit %d changed the text", limit)
		}
	}
}
