// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package delivery

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/muesli/termenv"

	"github.com/bureau-foundation/herald/lib/clock"
	"github.com/bureau-foundation/herald/lib/render"
)

const waitTimeout = 5 * time.Second

var epoch = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

type room string

func (r room) String() string { return string(r) }

// fakeRemote records every call. ResolveDestination blocks on hold
// when it is non-nil, which lets a test pile events into the queue
// while a pass is stuck in resolution. Send blocks until its context
// ends when blockSends is set.
type fakeRemote struct {
	resolveCalled chan string
	sent          chan render.Unit

	mu           sync.Mutex
	hold         chan struct{}
	resolveErr   error
	sendErr      func(render.Unit) error
	blockSends   bool
	resolves     int
	sendsRunning int
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		resolveCalled: make(chan string, 16),
		sent:          make(chan render.Unit, 64),
	}
}

func (f *fakeRemote) ResolveDestination(ctx context.Context, id string) (Destination, error) {
	f.mu.Lock()
	f.resolves++
	hold, err := f.hold, f.resolveErr
	f.mu.Unlock()

	f.resolveCalled <- id
	if hold != nil {
		select {
		case <-hold:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	return room("!resolved:" + id), nil
}

func (f *fakeRemote) Send(ctx context.Context, destination Destination, unit render.Unit) error {
	f.mu.Lock()
	sendErr, block := f.sendErr, f.blockSends
	f.sendsRunning++
	f.mu.Unlock()
	defer func() {
		f.mu.Lock()
		f.sendsRunning--
		f.mu.Unlock()
	}()

	select {
	case f.sent <- unit:
	case <-ctx.Done():
		return ctx.Err()
	}
	if block {
		<-ctx.Done()
		return ctx.Err()
	}
	if sendErr != nil {
		return sendErr(unit)
	}
	return nil
}

func (f *fakeRemote) runningSends() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sendsRunning
}

func (f *fakeRemote) resolveCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.resolves
}

type localLine struct {
	text    string
	details any
}

type fakeLocal struct {
	mu    sync.Mutex
	lines []localLine
}

func (f *fakeLocal) Write(text string, details any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lines = append(f.lines, localLine{text: text, details: details})
}

func (f *fakeLocal) snapshot() []localLine {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]localLine(nil), f.lines...)
}

type harness struct {
	dispatcher *Dispatcher
	clock      *clock.FakeClock
	remote     *fakeRemote
	local      *fakeLocal
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	fake := clock.Fake(epoch)
	local := &fakeLocal{}
	dispatcher := New(Config{
		DestinationID: "#ops:example.org",
		Name:          "herald-test",
		Formatter:     render.NewFormatter(render.Options{Profile: termenv.Ascii, Location: time.UTC}),
		Local:         local,
		Clock:         fake,
		Logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	t.Cleanup(dispatcher.Stop)
	return &harness{
		dispatcher: dispatcher,
		clock:      fake,
		remote:     newFakeRemote(),
		local:      local,
	}
}

// plainText returns the text of a PlainUnit or fails.
func plainText(t *testing.T, unit render.Unit) string {
	t.Helper()
	plain, ok := unit.(render.PlainUnit)
	if !ok {
		t.Fatalf("unit is %T, want PlainUnit", unit)
	}
	return plain.Text
}
