// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"testing"
	"time"
)

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func TestFakeClockNowAdvances(t *testing.T) {
	fake := Fake(epoch)
	if got := fake.Now(); !got.Equal(epoch) {
		t.Fatalf("Now() = %v, want %v", got, epoch)
	}
	fake.Advance(1500 * time.Millisecond)
	if got, want := fake.Now(), epoch.Add(1500*time.Millisecond); !got.Equal(want) {
		t.Fatalf("Now() after Advance = %v, want %v", got, want)
	}
}

func TestFakeClockAfter(t *testing.T) {
	fake := Fake(epoch)
	channel := fake.After(100 * time.Millisecond)

	fake.Advance(99 * time.Millisecond)
	select {
	case <-channel:
		t.Fatal("After fired before its deadline")
	default:
	}

	fake.Advance(time.Millisecond)
	select {
	case fired := <-channel:
		if want := epoch.Add(100 * time.Millisecond); !fired.Equal(want) {
			t.Fatalf("fired at %v, want %v", fired, want)
		}
	default:
		t.Fatal("After did not fire at its deadline")
	}
	if pending := fake.PendingTimers(); pending != 0 {
		t.Fatalf("PendingTimers() = %d after firing, want 0", pending)
	}
}

func TestFakeClockAfterNonPositive(t *testing.T) {
	fake := Fake(epoch)
	for _, duration := range []time.Duration{0, -time.Second} {
		select {
		case <-fake.After(duration):
		default:
			t.Fatalf("After(%v) should be ready immediately", duration)
		}
	}
	if pending := fake.PendingTimers(); pending != 0 {
		t.Fatalf("PendingTimers() = %d, want 0", pending)
	}
}

func TestFakeClockAfterFuncOrder(t *testing.T) {
	fake := Fake(epoch)
	var order []string
	fake.AfterFunc(2*time.Second, func() { order = append(order, "second") })
	fake.AfterFunc(time.Second, func() { order = append(order, "first") })

	fake.Advance(5 * time.Second)

	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Fatalf("callbacks ran in order %v, want [first second]", order)
	}
}

func TestFakeClockAfterFuncStop(t *testing.T) {
	fake := Fake(epoch)
	called := false
	timer := fake.AfterFunc(time.Second, func() { called = true })

	if !timer.Stop() {
		t.Fatal("Stop() on a pending timer returned false")
	}
	if timer.Stop() {
		t.Fatal("second Stop() returned true")
	}
	fake.Advance(2 * time.Second)
	if called {
		t.Fatal("stopped AfterFunc callback ran")
	}
}

func TestFakeClockAfterFuncRescheduleFromCallback(t *testing.T) {
	fake := Fake(epoch)
	runs := 0
	var reschedule func()
	reschedule = func() {
		runs++
		fake.AfterFunc(time.Second, reschedule)
	}
	fake.AfterFunc(time.Second, reschedule)

	// A timer registered by a callback is relative to the advanced
	// time, so it does not fire within the same Advance.
	fake.Advance(10 * time.Second)
	if runs != 1 {
		t.Fatalf("callback ran %d times after first Advance, want 1", runs)
	}
	fake.Advance(time.Second)
	if runs != 2 {
		t.Fatalf("callback ran %d times after second Advance, want 2", runs)
	}
}

func TestFakeClockWaitForTimers(t *testing.T) {
	fake := Fake(epoch)
	done := make(chan struct{})
	go func() {
		fake.Sleep(time.Minute)
		close(done)
	}()

	fake.WaitForTimers(1)
	fake.Advance(time.Minute)

	select {
	case <-done:
	case <-time.After(5 * time.Second): //nolint:realclock test hang prevention
		t.Fatal("Sleep did not return after Advance")
	}
}

func TestTimerStopNil(t *testing.T) {
	var timer *Timer
	if timer.Stop() {
		t.Fatal("Stop() on nil timer returned true")
	}
}
