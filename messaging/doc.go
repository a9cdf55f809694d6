// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package messaging is a small client for the Matrix client-server API,
// covering what a notification relay needs: validate a token, resolve a
// room alias, list joined rooms, and send message events.
//
// [Client] holds the homeserver URL and HTTP transport. [DirectSession]
// adds an access token held in a [secret.Buffer] (mmap-backed, locked
// against swap, excluded from core dumps); callers must Close it to
// release that memory. [Session] is the subset of DirectSession that
// delivery code depends on, so tests can substitute a fake.
//
// API failures are returned as [*MatrixError] carrying the Matrix error
// code and HTTP status. Rate-limited responses (M_LIMIT_EXCEEDED) carry
// the server's requested delay, available through
// [MatrixError.RetryAfter]. Request URLs are built by string
// concatenation with url.PathEscape on each segment so room aliases
// containing reserved characters are encoded exactly once.
//
// Sends use PUT with a client transaction ID so a retried request is
// deduplicated by the homeserver. Transaction IDs are BLAKE3 digests of
// a per-session nonce, a counter, and the event content.
package messaging
