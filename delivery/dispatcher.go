// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package delivery

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/muesli/termenv"

	"github.com/bureau-foundation/herald/lib/clock"
	"github.com/bureau-foundation/herald/lib/metrics"
	"github.com/bureau-foundation/herald/lib/render"
)

// Delivery policy. These are fixed, not tunable per dispatcher.
const (
	// BatchSize is the most events one drain pass removes.
	BatchSize = 5

	// PacingInterval separates consecutive sends within a pass.
	PacingInterval = 100 * time.Millisecond

	// BackoffDelay is how long after a pass ends with events still
	// queued the next pass starts.
	BackoffDelay = time.Second

	// ShutdownGrace is how long SendShutdownNotice waits after
	// sending, so the notice can leave the process before exit.
	ShutdownGrace = time.Second
)

// DefaultSendTimeout bounds each resolve and send call when
// Config.SendTimeout is zero.
const DefaultSendTimeout = 10 * time.Second

// RemoteState is the lifecycle state of remote delivery.
type RemoteState int

const (
	// RemotePending: no remote bound yet. Events queue.
	RemotePending RemoteState = iota
	// RemoteEnabled: a remote is bound and drain passes run.
	RemoteEnabled
	// RemoteDisabled: remote delivery is off for the rest of the
	// process. Events are rendered locally only.
	RemoteDisabled
)

func (s RemoteState) String() string {
	switch s {
	case RemotePending:
		return "pending"
	case RemoteEnabled:
		return "enabled"
	case RemoteDisabled:
		return "disabled"
	default:
		return fmt.Sprintf("remote_state(%d)", int(s))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s RemoteState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

type drainState int

const (
	drainIdle drainState = iota
	drainDraining
)

// Config configures a Dispatcher.
type Config struct {
	// DestinationID names the remote target, passed to
	// RemoteSink.ResolveDestination.
	DestinationID string

	// Name identifies this service in startup and shutdown notices.
	// Default: "herald".
	Name string

	// RunID, when set, is attached to startup and shutdown notices so
	// the pair can be correlated.
	RunID string

	// Producer is the process-name prefix stripped from raw lines
	// passed to IngestRawLine.
	Producer string

	// Formatter renders events. Default: an uncolored formatter in
	// the local time zone.
	Formatter *render.Formatter

	// Local receives every rendered event. Nil discards local output.
	Local LocalSink

	// Clock paces sends and schedules backoff passes. Default:
	// clock.Real().
	Clock clock.Clock

	// Logger receives diagnostics about the remote path. Default:
	// slog.Default().
	Logger *slog.Logger

	// Metrics, when set, receives delivery counters.
	Metrics *metrics.Delivery

	// SendTimeout bounds each resolve and send call. Default:
	// DefaultSendTimeout.
	SendTimeout time.Duration
}

// Dispatcher owns the delivery queue, the remote binding, and the
// drain state machine. Create one with New and share it with every
// producer. All methods are safe for concurrent use.
type Dispatcher struct {
	destinationID string
	name          string
	runID         string
	producer      string
	formatter     *render.Formatter
	local         LocalSink
	clock         clock.Clock
	logger        *slog.Logger
	metrics       *metrics.Delivery
	sendTimeout   time.Duration

	// baseContext parents every remote call. Stop cancels it.
	baseContext context.Context
	cancel      context.CancelFunc

	mu          sync.Mutex
	queue       Queue
	remoteState RemoteState
	remote      RemoteSink
	destination Destination
	drain       drainState
	backoff     *clock.Timer
	stopped     bool

	// passes counts running drain passes and scheduled backoff
	// callbacks. Stop waits for it to reach zero.
	passes sync.WaitGroup

	counters    counters

	// changed is closed and replaced whenever the drain or remote
	// state changes. Flush waits on it.
	changed chan struct{}
}

type counters struct {
	enqueued    uint64
	delivered   uint64
	failed      uint64
	dropped     uint64
	drainPasses uint64
}

// New creates a Dispatcher with remote delivery pending.
func New(config Config) *Dispatcher {
	name := config.Name
	if name == "" {
		name = "herald"
	}
	formatter := config.Formatter
	if formatter == nil {
		formatter = render.NewFormatter(render.Options{Profile: termenv.Ascii})
	}
	clk := config.Clock
	if clk == nil {
		clk = clock.Real()
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	sendTimeout := config.SendTimeout
	if sendTimeout <= 0 {
		sendTimeout = DefaultSendTimeout
	}

	baseContext, cancel := context.WithCancel(context.Background())
	return &Dispatcher{
		destinationID: config.DestinationID,
		name:          name,
		runID:         config.RunID,
		producer:      config.Producer,
		formatter:     formatter,
		local:         config.Local,
		clock:         clk,
		logger:        logger,
		metrics:       config.Metrics,
		sendTimeout:   sendTimeout,
		baseContext:   baseContext,
		cancel:        cancel,
		changed:       make(chan struct{}),
	}
}

// Initialize binds the remote sink and enables remote delivery, then
// starts a drain pass over anything queued before initialization.
// Calls after the first, and calls after remote delivery was
// disabled, are ignored.
func (d *Dispatcher) Initialize(remote RemoteSink) {
	d.mu.Lock()
	if d.remoteState != RemotePending || d.stopped || remote == nil {
		d.mu.Unlock()
		return
	}
	d.remote = remote
	d.remoteState = RemoteEnabled
	d.notifyLocked()
	d.mu.Unlock()

	d.metrics.RemoteEnabled(true)
	d.logger.Info("remote delivery enabled", "destination", d.destinationID)
	d.triggerDrain()
}

// Disable turns remote delivery off for the rest of the process and
// discards queued events. Used when no remote is configured, and by
// the drainer on a destination resolution failure.
func (d *Dispatcher) Disable(reason string) {
	d.disable(reason, nil)
}

func (d *Dispatcher) disable(reason string, cause error) {
	d.mu.Lock()
	if d.remoteState == RemoteDisabled {
		d.mu.Unlock()
		return
	}
	d.remoteState = RemoteDisabled
	dropped := d.queue.Clear()
	d.counters.dropped += uint64(dropped)
	d.drain = drainIdle
	d.cancelBackoffLocked()
	d.notifyLocked()
	d.mu.Unlock()

	d.metrics.RemoteEnabled(false)
	d.metrics.Dropped(dropped)
	d.metrics.QueueDepth(0)

	attributes := []any{"reason", reason, "destination", d.destinationID, "dropped", dropped}
	if cause != nil {
		d.logger.Error("remote delivery disabled", append(attributes, "error", cause)...)
		return
	}
	d.logger.Info("remote delivery disabled", attributes...)
}

// Stop cancels any pending backoff pass and in-flight remote calls,
// prevents further drain passes, and waits for a running pass to
// return. After Stop returns the dispatcher makes no further calls on
// its RemoteSink, so the sink's resources may be released. Events
// logged after Stop are still rendered locally. Stop is idempotent.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		d.passes.Wait()
		return
	}
	d.stopped = true
	d.cancelBackoffLocked()
	d.notifyLocked()
	d.mu.Unlock()

	d.cancel()
	d.passes.Wait()
}

// cancelBackoffLocked stops a scheduled backoff pass. A callback that
// already fired keeps its claim on d.passes and releases it itself.
// Callers hold d.mu.
func (d *Dispatcher) cancelBackoffLocked() {
	if d.backoff.Stop() {
		d.passes.Done()
	}
	d.backoff = nil
}

// Flush blocks until the queue is empty and no drain pass is running,
// remote delivery is disabled, or the dispatcher is stopped. It
// returns ctx.Err() if ctx ends first. A pending dispatcher never
// drains on its own, so Flush before Initialize waits for ctx.
func (d *Dispatcher) Flush(ctx context.Context) error {
	for {
		d.mu.Lock()
		settled := d.stopped ||
			d.remoteState == RemoteDisabled ||
			(d.queue.Len() == 0 && d.drain == drainIdle)
		changed := d.changed
		d.mu.Unlock()

		if settled {
			return nil
		}
		select {
		case <-changed:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// notifyLocked wakes Flush waiters. Callers hold d.mu.
func (d *Dispatcher) notifyLocked() {
	close(d.changed)
	d.changed = make(chan struct{})
}

// Stats is a point-in-time snapshot of dispatcher counters.
type Stats struct {
	RemoteState RemoteState `json:"remote_state"`
	Draining    bool        `json:"draining"`
	Pending     int         `json:"pending"`
	Enqueued    uint64      `json:"enqueued"`
	Delivered   uint64      `json:"delivered"`
	Failed      uint64      `json:"failed"`
	Dropped     uint64      `json:"dropped"`
	DrainPasses uint64      `json:"drain_passes"`
}

// Stats returns a snapshot of the dispatcher's state and counters.
func (d *Dispatcher) Stats() Stats {
	d.mu.Lock()
	defer d.mu.Unlock()
	return Stats{
		RemoteState: d.remoteState,
		Draining:    d.drain == drainDraining,
		Pending:     d.queue.Len(),
		Enqueued:    d.counters.enqueued,
		Delivered:   d.counters.delivered,
		Failed:      d.counters.failed,
		Dropped:     d.counters.dropped,
		DrainPasses: d.counters.drainPasses,
	}
}
