// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package metrics exposes herald's delivery counters as Prometheus
// metrics. Every method on *Delivery accepts a nil receiver, so
// components can report unconditionally and callers opt in by
// constructing one.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "herald"

// Delivery holds the instruments for one dispatcher, registered on a
// dedicated registry.
type Delivery struct {
	registry *prometheus.Registry

	enqueued     prometheus.Counter
	delivered    prometheus.Counter
	failed       *prometheus.CounterVec
	dropped      prometheus.Counter
	drainPasses  prometheus.Counter
	queueDepth   prometheus.Gauge
	remoteUp     prometheus.Gauge
	sendDuration prometheus.Histogram
}

// NewDelivery creates and registers the delivery instruments.
func NewDelivery() *Delivery {
	delivery := &Delivery{
		registry: prometheus.NewRegistry(),
		enqueued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_enqueued_total",
			Help:      "Events accepted onto the remote delivery queue.",
		}),
		delivered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_delivered_total",
			Help:      "Events sent to the remote channel.",
		}),
		failed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_failed_total",
			Help:      "Remote sends that failed, by failure kind.",
		}, []string{"kind"}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_dropped_total",
			Help:      "Queued events discarded without a send attempt.",
		}),
		drainPasses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "drain_passes_total",
			Help:      "Drain passes started.",
		}),
		queueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "queue_depth",
			Help:      "Events waiting for remote delivery.",
		}),
		remoteUp: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "remote_enabled",
			Help:      "1 while remote delivery is enabled, 0 otherwise.",
		}),
		sendDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "send_duration_seconds",
			Help:      "Latency of individual remote sends.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 10),
		}),
	}
	delivery.registry.MustRegister(
		delivery.enqueued,
		delivery.delivered,
		delivery.failed,
		delivery.dropped,
		delivery.drainPasses,
		delivery.queueDepth,
		delivery.remoteUp,
		delivery.sendDuration,
	)
	return delivery
}

// Registry returns the registry the instruments are registered on.
func (d *Delivery) Registry() *prometheus.Registry {
	if d == nil {
		return nil
	}
	return d.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (d *Delivery) Handler() http.Handler {
	if d == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(d.registry, promhttp.HandlerOpts{})
}

// Enqueued records one event accepted onto the queue.
func (d *Delivery) Enqueued(depth int) {
	if d == nil {
		return
	}
	d.enqueued.Inc()
	d.queueDepth.Set(float64(depth))
}

// Delivered records one successful send.
func (d *Delivery) Delivered(elapsed time.Duration) {
	if d == nil {
		return
	}
	d.delivered.Inc()
	d.sendDuration.Observe(elapsed.Seconds())
}

// Failed records one failed send of the given kind.
func (d *Delivery) Failed(kind string, elapsed time.Duration) {
	if d == nil {
		return
	}
	d.failed.WithLabelValues(kind).Inc()
	d.sendDuration.Observe(elapsed.Seconds())
}

// Dropped records count events discarded without a send attempt.
func (d *Delivery) Dropped(count int) {
	if d == nil || count <= 0 {
		return
	}
	d.dropped.Add(float64(count))
}

// DrainPass records the start of a drain pass and the queue depth
// after its batch was taken.
func (d *Delivery) DrainPass(depth int) {
	if d == nil {
		return
	}
	d.drainPasses.Inc()
	d.queueDepth.Set(float64(depth))
}

// QueueDepth sets the current queue depth.
func (d *Delivery) QueueDepth(depth int) {
	if d == nil {
		return
	}
	d.queueDepth.Set(float64(depth))
}

// RemoteEnabled sets the remote_enabled gauge.
func (d *Delivery) RemoteEnabled(enabled bool) {
	if d == nil {
		return
	}
	if enabled {
		d.remoteUp.Set(1)
	} else {
		d.remoteUp.Set(0)
	}
}
