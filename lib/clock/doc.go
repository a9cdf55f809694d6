// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time source so that code which
// paces, schedules, or backs off can be tested without wall-clock
// waits.
//
// Production code holds a [Clock] and calls it instead of time.Now,
// time.After, time.AfterFunc, or time.Sleep. Real() delegates to the
// time package. Fake() returns a [FakeClock] whose time moves only
// when the test calls Advance.
//
// # Synchronizing with a FakeClock
//
// A goroutine that calls After, Sleep, or AfterFunc on a FakeClock
// registers a pending timer. Tests call WaitForTimers to block until
// the expected number of timers exist, then Advance to fire them:
//
//	fake := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	go worker(fake)
//	fake.WaitForTimers(1)
//	fake.Advance(time.Second)
//
// This removes the race between a goroutine registering its timer and
// the test moving time forward.
package clock
