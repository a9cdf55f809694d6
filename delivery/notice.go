// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package delivery

import (
	"context"
	"fmt"

	"github.com/bureau-foundation/herald/lib/logevent"
	"github.com/bureau-foundation/herald/lib/render"
)

// SendStartupNotice sends a success-colored "<name> started" notice
// straight to the remote channel, bypassing the queue. It does nothing
// unless remote delivery is enabled. Failures are logged and returned;
// callers normally ignore them.
func (d *Dispatcher) SendStartupNotice(ctx context.Context) error {
	return d.sendNotice(ctx, logevent.Success, d.name+" started")
}

// SendShutdownNotice sends a warning-colored "<name> stopping" notice,
// then waits ShutdownGrace (or until ctx ends) so the notice leaves
// the process before exit. The wait is skipped when remote delivery is
// not enabled.
func (d *Dispatcher) SendShutdownNotice(ctx context.Context) error {
	if !d.remoteEnabled() {
		return nil
	}
	err := d.sendNotice(ctx, logevent.Warn, d.name+" stopping")
	select {
	case <-d.clock.After(ShutdownGrace):
	case <-ctx.Done():
	}
	return err
}

func (d *Dispatcher) remoteEnabled() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.remoteState == RemoteEnabled
}

func (d *Dispatcher) sendNotice(ctx context.Context, level logevent.Level, title string) error {
	d.mu.Lock()
	enabled, remote := d.remoteState == RemoteEnabled, d.remote
	d.mu.Unlock()
	if !enabled {
		return nil
	}

	destination, failure := d.resolve()
	if failure != nil {
		d.logger.Warn("notice not sent", "notice", title, "error", failure)
		return failure
	}

	decoration := level.Decoration()
	unit := render.RichUnit{
		Title:       decoration.Emoji + " " + title,
		Description: title,
		Color:       decoration.Color,
		Timestamp:   d.clock.Now(),
	}
	if d.runID != "" {
		unit.DetailName = "Run"
		unit.Detail = fmt.Sprintf("run_id: %s", d.runID)
		unit.DetailStructured = true
	}

	sendContext, cancel := context.WithTimeout(ctx, d.sendTimeout)
	defer cancel()
	if err := remote.Send(sendContext, destination, unit.Limit()); err != nil {
		failure := classify(err, FailureTransientSend, destination.String())
		d.logger.Warn("notice not sent", "notice", title, "error", failure)
		return failure
	}
	return nil
}
