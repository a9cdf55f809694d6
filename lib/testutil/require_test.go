// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"fmt"
	"testing"
	"time"
)

type recordingT struct {
	failed  bool
	message string
}

func (r *recordingT) Helper() {}

func (r *recordingT) Fatalf(format string, args ...any) {
	r.failed = true
	r.message = fmt.Sprintf(format, args...)
}

func TestRequireReceive(t *testing.T) {
	ch := make(chan int, 1)
	ch <- 7
	if got := RequireReceive(t, ch, time.Second, "value"); got != 7 {
		t.Errorf("RequireReceive = %d, want 7", got)
	}
}

func TestRequireNoReceive(t *testing.T) {
	ch := make(chan int, 1)
	RequireNoReceive(t, ch, "empty channel")

	ch <- 3
	recorder := &recordingT{}
	RequireNoReceive(recorder, ch, "value %d", 3)
	if !recorder.failed {
		t.Fatal("RequireNoReceive did not fail on a ready value")
	}
	if recorder.message != "unexpected value 3: value 3" {
		t.Errorf("message = %q", recorder.message)
	}
}

func TestRequireClosed(t *testing.T) {
	ch := make(chan struct{})
	close(ch)
	RequireClosed(t, ch, time.Second, "closed")
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		args []any
		want string
	}{
		{nil, "(no message)"},
		{[]any{"plain"}, "plain"},
		{[]any{42}, "42"},
		{[]any{"send %d of %d", 2, 5}, "send 2 of 5"},
	}
	for _, test := range tests {
		if got := describe(test.args); got != test.want {
			t.Errorf("describe(%v) = %q, want %q", test.args, got, test.want)
		}
	}
}
