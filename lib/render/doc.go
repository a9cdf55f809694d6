// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package render turns log events into the two shapes herald emits:
// a colored single line for the local sink, and a [Unit] for the
// remote notification channel.
//
// Remote units come in two forms. A [RichUnit] carries a title,
// description, author and a detail field; events at error or success
// level, and any event with details, render this way. Everything else
// becomes a [PlainUnit], one line of text. Both are truncated to the
// remote channel's size limits with [Truncate], and truncation is
// idempotent: rendering an already truncated unit changes nothing.
//
// The functions here are pure. A [Formatter] holds only immutable
// configuration and is safe for concurrent use.
package render
