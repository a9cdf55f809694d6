// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package render

import "unicode/utf8"

// Size limits of the remote channel, in characters.
const (
	DescriptionLimit = 2048
	DetailLimit      = 1024
	PlainLimit       = 2000
)

// Ellipsis marks truncated text.
const Ellipsis = "..."

// Truncate caps text at limit characters (Unicode code points). Longer
// text keeps its first limit-3 characters followed by Ellipsis, so the
// result is exactly limit characters long. Text within the limit is
// returned unchanged, which makes Truncate idempotent.
func Truncate(text string, limit int) string {
	if utf8.RuneCountInString(text) <= limit {
		return text
	}
	keep := limit - utf8.RuneCountInString(Ellipsis)
	if keep <= 0 {
		return string([]rune(Ellipsis)[:max(limit, 0)])
	}

	count := 0
	for index := range text {
		if count == keep {
			return text[:index] + Ellipsis
		}
		count++
	}
	return text
}
