// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// herald-relay turns a process's output into log events. Each line the
// child writes to stdout or stderr is parsed as a raw log line (an
// optional timestamp, an optional "<producer> |" prefix, a level
// detected from the text), rendered to the relay's own stdout, and
// queued for delivery to a Matrix room.
//
//	herald-relay [flags] [--] <command> [args...]
//	some-command | herald-relay [flags]
//
// Without a command the relay reads stdin until EOF. SIGINT and SIGTERM
// are forwarded to the child, and the relay exits with the child's
// exit status once pending events have been flushed (bounded at five
// seconds) and the shutdown notice has been sent.
//
// Remote delivery is configured in the file named by --config or
// $HERALD_CONFIG. With no homeserver configured, or when the room
// cannot be reached at startup, the relay renders locally only. The
// access token may be stored age-sealed; matrix.identity_file names
// the key that opens it.
//
// --listen (or ingest.listen) also starts an HTTP server accepting
// structured events and raw lines from other processes, and exposing
// delivery stats and Prometheus metrics.
package main
