// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package delivery

import (
	"time"

	"github.com/bureau-foundation/herald/lib/logevent"
)

// Option sets an optional field of an event logged through one of the
// level methods.
type Option func(*logevent.Event)

// WithSource labels the event with the producing subsystem.
func WithSource(source string) Option {
	return func(event *logevent.Event) { event.Source = source }
}

// WithDetails attaches diagnostic details: text or any value that
// serializes to YAML. The value must not be mutated afterwards.
func WithDetails(details any) Option {
	return func(event *logevent.Event) { event.Details = details }
}

// WithTime sets the event timestamp instead of the current time.
func WithTime(timestamp time.Time) Option {
	return func(event *logevent.Event) { event.Timestamp = timestamp }
}

// Info logs an info event.
func (d *Dispatcher) Info(message string, options ...Option) {
	d.logLevel(logevent.Info, message, options)
}

// Warn logs a warning.
func (d *Dispatcher) Warn(message string, options ...Option) {
	d.logLevel(logevent.Warn, message, options)
}

// Error logs an error. Errors always reach the remote channel as rich
// notifications.
func (d *Dispatcher) Error(message string, options ...Option) {
	d.logLevel(logevent.Error, message, options)
}

// Debug logs a debug event.
func (d *Dispatcher) Debug(message string, options ...Option) {
	d.logLevel(logevent.Debug, message, options)
}

// Success logs a success event.
func (d *Dispatcher) Success(message string, options ...Option) {
	d.logLevel(logevent.Success, message, options)
}

func (d *Dispatcher) logLevel(level logevent.Level, message string, options []Option) {
	event := logevent.Event{Level: level, Message: message}
	for _, option := range options {
		option(&event)
	}
	d.Log(event)
}

// IngestRawLine normalizes an unstructured line from an external
// process and logs it. Blank lines are ignored.
func (d *Dispatcher) IngestRawLine(line string) {
	event, ok := logevent.ParseRawLine(line, logevent.RawLineOptions{
		Producer: d.producer,
		Now:      d.clock.Now(),
	})
	if !ok {
		return
	}
	d.Log(event)
}

// Log renders an event locally and, unless remote delivery is
// disabled, queues it for the remote channel. A missing timestamp is
// set to the current time. Log never blocks on the remote path and
// never fails.
func (d *Dispatcher) Log(event logevent.Event) {
	event = event.WithTimestamp(d.clock.Now())
	d.writeLocal(event)
	d.enqueue(event)
}

// writeLocal renders to the local sink. A panicking sink is contained
// here so that it cannot take the producer down with it.
func (d *Dispatcher) writeLocal(event logevent.Event) {
	if d.local == nil {
		return
	}
	defer func() {
		if recovered := recover(); recovered != nil {
			d.logger.Debug("local sink panicked", "panic", recovered)
		}
	}()
	d.local.Write(d.formatter.RenderLocal(event), event.Details)
}

// enqueue appends the event unless remote delivery is disabled, then
// triggers a drain pass.
func (d *Dispatcher) enqueue(event logevent.Event) {
	d.mu.Lock()
	if d.remoteState == RemoteDisabled {
		d.mu.Unlock()
		return
	}
	d.queue.Push(event)
	d.counters.enqueued++
	depth := d.queue.Len()
	d.mu.Unlock()

	d.metrics.Enqueued(depth)
	d.triggerDrain()
}
