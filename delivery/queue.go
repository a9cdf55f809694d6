// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package delivery

import "github.com/bureau-foundation/herald/lib/logevent"

// Queue is a FIFO of events awaiting remote delivery. It is not safe
// for concurrent use; the Dispatcher guards it with its mutex.
type Queue struct {
	events []logevent.Event
}

// Push appends an event at the tail.
func (q *Queue) Push(event logevent.Event) {
	q.events = append(q.events, event)
}

// Take removes and returns up to n events from the head, oldest first.
func (q *Queue) Take(n int) []logevent.Event {
	if n > len(q.events) {
		n = len(q.events)
	}
	if n <= 0 {
		return nil
	}
	batch := make([]logevent.Event, n)
	copy(batch, q.events[:n])
	clear(q.events[:n])
	q.events = q.events[n:]
	if len(q.events) == 0 {
		q.events = nil
	}
	return batch
}

// Len returns the number of queued events.
func (q *Queue) Len() int {
	return len(q.events)
}

// Clear discards every queued event and returns how many there were.
func (q *Queue) Clear() int {
	count := len(q.events)
	q.events = nil
	return count
}
