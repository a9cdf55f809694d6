// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package matrixsink delivers rendered events to a Matrix room.
//
// [Sink] implements delivery.RemoteSink over a messaging.Session. A
// destination id beginning with '#' is a room alias and is resolved
// through the room directory; one beginning with '!' is a room ID.
// Anything else, such as a user ID, is not a valid destination. The
// room must be one the session's user has joined.
//
// Plain units are sent as m.text. Rich units are sent as m.notice with
// an HTML formatted_body: the title in the level color, the description
// rendered from Markdown by goldmark, and details in a code block.
package matrixsink
