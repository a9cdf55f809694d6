// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestNilDeliveryIsSafe(t *testing.T) {
	var delivery *Delivery
	delivery.Enqueued(1)
	delivery.Delivered(time.Millisecond)
	delivery.Failed("transient_send", time.Millisecond)
	delivery.Dropped(3)
	delivery.DrainPass(0)
	delivery.QueueDepth(2)
	delivery.RemoteEnabled(true)
	if delivery.Registry() != nil {
		t.Fatal("nil Delivery returned a registry")
	}

	recorder := httptest.NewRecorder()
	delivery.Handler().ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if recorder.Code != http.StatusNotFound {
		t.Fatalf("nil Delivery handler status = %d, want 404", recorder.Code)
	}
}

func TestDeliveryExposition(t *testing.T) {
	delivery := NewDelivery()
	delivery.Enqueued(1)
	delivery.Enqueued(2)
	delivery.Delivered(20 * time.Millisecond)
	delivery.Failed("transient_send", 5*time.Millisecond)
	delivery.Dropped(4)
	delivery.DrainPass(1)
	delivery.RemoteEnabled(true)

	server := httptest.NewServer(delivery.Handler())
	defer server.Close()

	response, err := http.Get(server.URL)
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer response.Body.Close()
	body, err := io.ReadAll(response.Body)
	if err != nil {
		t.Fatalf("reading body: %v", err)
	}

	for _, want := range []string{
		"herald_events_enqueued_total 2",
		"herald_events_delivered_total 1",
		`herald_events_failed_total{kind="transient_send"} 1`,
		"herald_events_dropped_total 4",
		"herald_drain_passes_total 1",
		"herald_queue_depth 1",
		"herald_remote_enabled 1",
		"herald_send_duration_seconds_count 2",
	} {
		if !strings.Contains(string(body), want) {
			t.Errorf("exposition missing %q", want)
		}
	}
}
