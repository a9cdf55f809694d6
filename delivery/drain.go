// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package delivery

import (
	"context"
	"fmt"

	"github.com/bureau-foundation/herald/lib/logevent"
	"github.com/bureau-foundation/herald/lib/render"
)

// triggerDrain starts a drain pass on its own goroutine if none is
// running, the queue is non-empty, and remote delivery is enabled.
//
// A pass takes whatever is queued when it reaches Take. Once the
// destination is memoized that happens almost immediately, so a pass
// started by the first event of a concurrent burst may take fewer than
// BatchSize events; the rest wait for the backoff pass.
func (d *Dispatcher) triggerDrain() {
	d.mu.Lock()
	if d.drain == drainDraining || d.queue.Len() == 0 || d.remoteState != RemoteEnabled || d.stopped {
		d.mu.Unlock()
		return
	}
	d.drain = drainDraining
	d.counters.drainPasses++
	d.passes.Add(1)
	d.notifyLocked()
	d.mu.Unlock()

	go d.drainPass()
}

// drainPass runs one pass: resolve, take a batch, send each event with
// pacing, then return to idle and schedule a backoff pass if events
// remain. The mutex is never held across a remote call or a wait.
func (d *Dispatcher) drainPass() {
	defer d.passes.Done()

	destination, failure := d.resolve()
	if failure != nil {
		if d.baseContext.Err() != nil {
			// Stopped mid-resolution; the destination was never judged.
			d.finishPass()
			return
		}
		d.disable("destination resolution failed", failure)
		return
	}

	d.mu.Lock()
	batch := d.queue.Take(BatchSize)
	remaining := d.queue.Len()
	d.mu.Unlock()
	d.metrics.DrainPass(remaining)

	for index, event := range batch {
		if (index > 0 && !d.pace()) || d.baseContext.Err() != nil {
			d.abandon(len(batch)-index, "dispatcher stopped")
			break
		}
		if !d.remoteEnabled() {
			d.abandon(len(batch)-index, "remote delivery disabled")
			return
		}

		failure := d.send(destination, event)
		if failure == nil {
			continue
		}
		switch failure.Kind {
		case FailureDestinationResolution:
			d.abandon(len(batch)-index-1, "destination lost")
			d.disable("destination rejected a send", failure)
			return
		default:
			d.logger.Warn("remote send failed",
				"error", failure,
				"level", event.Level.String(),
				"source", event.Source,
			)
		}
	}

	d.finishPass()
}

// pace waits PacingInterval. It returns false if the dispatcher was
// stopped during the wait.
func (d *Dispatcher) pace() bool {
	select {
	case <-d.clock.After(PacingInterval):
		return true
	case <-d.baseContext.Done():
		return false
	}
}

// finishPass moves the state machine back to idle and schedules a
// backoff pass when events are still queued.
func (d *Dispatcher) finishPass() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.remoteState == RemoteDisabled {
		return
	}
	d.drain = drainIdle
	if d.queue.Len() > 0 && d.remoteState == RemoteEnabled && !d.stopped && d.backoff == nil {
		d.passes.Add(1)
		d.backoff = d.clock.AfterFunc(BackoffDelay, d.backoffFired)
	}
	d.notifyLocked()
}

func (d *Dispatcher) backoffFired() {
	defer d.passes.Done()
	d.mu.Lock()
	d.backoff = nil
	d.mu.Unlock()
	d.triggerDrain()
}

// abandon counts events taken for a pass that will not be sent.
func (d *Dispatcher) abandon(count int, reason string) {
	if count <= 0 {
		return
	}
	d.mu.Lock()
	d.counters.dropped += uint64(count)
	d.mu.Unlock()
	d.metrics.Dropped(count)
	d.logger.Warn("abandoning batch remainder", "reason", reason, "dropped", count)
}

// resolve returns the destination, resolving it on first use.
func (d *Dispatcher) resolve() (Destination, *DeliveryError) {
	d.mu.Lock()
	destination, remote := d.destination, d.remote
	d.mu.Unlock()
	if destination != nil {
		return destination, nil
	}

	ctx, cancel := context.WithTimeout(d.baseContext, d.sendTimeout)
	defer cancel()
	destination, err := remote.ResolveDestination(ctx, d.destinationID)
	if err == nil && destination == nil {
		err = ErrInvalidDestination
	}
	if err != nil {
		return nil, classify(err, FailureDestinationResolution, d.destinationID)
	}

	d.mu.Lock()
	if d.destination == nil {
		d.destination = destination
	}
	destination = d.destination
	d.mu.Unlock()
	return destination, nil
}

// renderRemote renders event for the remote channel. A panic while
// rendering becomes an error so that one bad event cannot end the pass.
func (d *Dispatcher) renderRemote(event logevent.Event) (unit render.Unit, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			unit, err = nil, fmt.Errorf("rendering event: %v", recovered)
		}
	}()
	return d.formatter.RenderRemote(event), nil
}

// send renders and delivers one event and records the outcome. A
// rendering failure is a transient failure of that event.
func (d *Dispatcher) send(destination Destination, event logevent.Event) *DeliveryError {
	d.mu.Lock()
	remote := d.remote
	d.mu.Unlock()

	unit, err := d.renderRemote(event)
	if err != nil {
		d.mu.Lock()
		d.counters.failed++
		d.mu.Unlock()
		d.metrics.Failed(FailureTransientSend.String(), 0)
		return &DeliveryError{Kind: FailureTransientSend, Destination: destination.String(), Err: err}
	}

	ctx, cancel := context.WithTimeout(d.baseContext, d.sendTimeout)
	defer cancel()

	started := d.clock.Now()
	err = remote.Send(ctx, destination, unit)
	elapsed := d.clock.Now().Sub(started)
	if err == nil {
		d.mu.Lock()
		d.counters.delivered++
		d.mu.Unlock()
		d.metrics.Delivered(elapsed)
		return nil
	}

	failure := classify(err, FailureTransientSend, destination.String())
	d.mu.Lock()
	d.counters.failed++
	d.mu.Unlock()
	d.metrics.Failed(failure.Kind.String(), elapsed)
	return failure
}
