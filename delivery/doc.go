// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package delivery is herald's asynchronous log delivery core.
//
// A [Dispatcher] accepts events from any number of producer
// goroutines. Every event is rendered to the local sink immediately.
// Events are also appended to a FIFO [Queue] destined for a remote,
// rate-limited notification channel reached through the [RemoteSink]
// capability. Producers never block on the remote path and never see
// its failures.
//
// # Drain passes
//
// After each enqueue the dispatcher starts a drain pass unless one is
// already running. A pass resolves the destination (once per process),
// takes up to [BatchSize] events from the head of the queue, and sends
// them in order with [PacingInterval] between sends. If events remain
// when the pass ends, another pass is scheduled [BackoffDelay] later
// through the injected clock. The drain state machine has two states,
// idle and draining; the idle→draining transition is a check-and-set
// under the dispatcher mutex, so at most one pass runs at a time and
// FIFO order holds across passes.
//
// # Remote state
//
// Remote delivery starts pending: events queue until Initialize binds
// a RemoteSink. A destination resolution failure disables remote
// delivery for the rest of the process; queued events are discarded
// and later events are rendered locally only. A failure to send one
// event is logged and counted, and the batch continues.
package delivery
