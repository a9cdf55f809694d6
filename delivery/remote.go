// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package delivery

import (
	"context"
	"errors"
	"fmt"

	"github.com/bureau-foundation/herald/lib/render"
)

// Destination is a resolved remote delivery target. It is opaque to
// the dispatcher beyond being passed back to Send.
type Destination interface {
	String() string
}

// RemoteSink is the capability over a quota-limited remote channel.
// Implementations live outside this package (see lib/matrixsink).
type RemoteSink interface {
	// ResolveDestination turns a configured destination id into a
	// target. It returns an error wrapping ErrInvalidDestination when
	// the id resolves to something that cannot receive messages.
	ResolveDestination(ctx context.Context, id string) (Destination, error)

	// Send delivers one rendered unit.
	Send(ctx context.Context, destination Destination, unit render.Unit) error
}

// LocalSink receives every rendered event synchronously. Write must
// not block for long and must not fail visibly.
type LocalSink interface {
	Write(text string, details any)
}

// ErrInvalidDestination reports a destination that resolved to the
// wrong kind of target.
var ErrInvalidDestination = errors.New("destination is not a valid delivery target")

// FailureKind classifies remote-path failures.
type FailureKind int

const (
	// FailureTransientSend is a failure to deliver one event. The
	// batch continues and delivery state is unchanged.
	FailureTransientSend FailureKind = iota + 1

	// FailureDestinationResolution means the destination cannot be
	// found or cannot receive messages. Remote delivery is disabled
	// for the rest of the process.
	FailureDestinationResolution
)

// String returns a metric-friendly name for the kind.
func (k FailureKind) String() string {
	switch k {
	case FailureTransientSend:
		return "transient_send"
	case FailureDestinationResolution:
		return "destination_resolution"
	default:
		return fmt.Sprintf("failure_kind(%d)", int(k))
	}
}

// DeliveryError is a classified remote-path failure. RemoteSink
// implementations may return one to choose the classification
// explicitly; other errors are classified by the operation that
// produced them.
type DeliveryError struct {
	Kind        FailureKind
	Destination string
	Err         error
}

func (e *DeliveryError) Error() string {
	switch e.Kind {
	case FailureDestinationResolution:
		return fmt.Sprintf("resolving destination %q: %v", e.Destination, e.Err)
	default:
		return fmt.Sprintf("sending to %q: %v", e.Destination, e.Err)
	}
}

func (e *DeliveryError) Unwrap() error { return e.Err }

// classify wraps err as a DeliveryError. An error that already is one
// keeps its kind; ErrInvalidDestination always means resolution
// failure; anything else gets fallback.
func classify(err error, fallback FailureKind, destination string) *DeliveryError {
	var deliveryErr *DeliveryError
	if errors.As(err, &deliveryErr) {
		classified := *deliveryErr
		if classified.Destination == "" {
			classified.Destination = destination
		}
		return &classified
	}
	kind := fallback
	if errors.Is(err, ErrInvalidDestination) {
		kind = FailureDestinationResolution
	}
	return &DeliveryError{Kind: kind, Destination: destination, Err: err}
}
