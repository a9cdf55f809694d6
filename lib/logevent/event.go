// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package logevent

import (
	"reflect"
	"time"
)

// ExternalSource is the source tag given to events that came from a
// raw line of an external process rather than a typed producer call.
const ExternalSource = "external"

// Event is one log event.
//
// Events are passed by value. Details is not deep-copied: a producer
// must not mutate a details value after handing it to a logger.
type Event struct {
	Level   Level
	Message string

	// Timestamp is when the event happened. The zero value means the
	// producer did not supply one; ingestion fills it in.
	Timestamp time.Time

	// Source is an optional short label naming the producing
	// subsystem.
	Source string

	// Details is optional diagnostic context: free text or any value
	// that can be serialized to YAML.
	Details any
}

// HasDetails reports whether the event carries diagnostic details.
// Empty text (a string or byte slice) and typed nil pointers, maps,
// slices and interfaces count as no details.
func (e Event) HasDetails() bool {
	switch value := e.Details.(type) {
	case nil:
		return false
	case string:
		return value != ""
	case []byte:
		return len(value) > 0
	}
	switch reflected := reflect.ValueOf(e.Details); reflected.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return !reflected.IsNil()
	}
	return true
}

// WithTimestamp returns a copy of e whose Timestamp is now if e has
// none.
func (e Event) WithTimestamp(now time.Time) Event {
	if e.Timestamp.IsZero() {
		e.Timestamp = now
	}
	return e
}
