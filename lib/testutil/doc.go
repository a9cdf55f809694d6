// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers.
//
// [RequireReceive] and [RequireClosed] bound a channel wait with a
// wall-clock safety valve so a broken test fails instead of hanging.
// They are the only place tests use real timeouts; everything else
// runs on the fake clock in lib/clock. [RequireNoReceive] asserts that nothing
// is ready on a channel right now, without waiting.
//
// Helpers call t.Fatalf on failure rather than returning errors.
package testutil
