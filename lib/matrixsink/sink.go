// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package matrixsink

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/bureau-foundation/herald/delivery"
	"github.com/bureau-foundation/herald/lib/render"
	"github.com/bureau-foundation/herald/messaging"
)

// Room is a resolved Matrix room.
type Room struct {
	ID string
	// Alias is the alias the room was resolved from, if any.
	Alias string
}

// String returns the alias when there is one, else the room ID.
func (r Room) String() string {
	if r.Alias != "" {
		return r.Alias
	}
	return r.ID
}

// RateLimitedError reports a send the homeserver refused with
// M_LIMIT_EXCEEDED.
type RateLimitedError struct {
	RetryAfter time.Duration
	Err        error
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limited (retry after %v): %v", e.RetryAfter, e.Err)
}

func (e *RateLimitedError) Unwrap() error { return e.Err }

// Sink sends units to a Matrix room.
type Sink struct {
	session messaging.Session
	logger  *slog.Logger
}

var _ delivery.RemoteSink = (*Sink)(nil)

// New creates a Sink over session. A nil logger means slog.Default().
func New(session messaging.Session, logger *slog.Logger) *Sink {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sink{session: session, logger: logger}
}

// ResolveDestination resolves a room alias or checks a room ID, then
// confirms the session's user has joined the room.
func (s *Sink) ResolveDestination(ctx context.Context, id string) (delivery.Destination, error) {
	var room Room
	switch {
	case strings.HasPrefix(id, "#"):
		roomID, err := s.session.ResolveAlias(ctx, id)
		if err != nil {
			if messaging.IsMatrixError(err, messaging.ErrCodeNotFound) {
				return nil, fmt.Errorf("room alias %q does not exist: %w", id, delivery.ErrInvalidDestination)
			}
			return nil, err
		}
		room = Room{ID: roomID, Alias: id}
	case strings.HasPrefix(id, "!"):
		room = Room{ID: id}
	default:
		return nil, fmt.Errorf("%q is not a room alias or room ID: %w", id, delivery.ErrInvalidDestination)
	}

	joined, err := s.session.JoinedRooms(ctx)
	if err != nil {
		return nil, err
	}
	if !slices.Contains(joined, room.ID) {
		return nil, fmt.Errorf("%s has not joined %s: %w", s.session.UserID(), room, delivery.ErrInvalidDestination)
	}

	s.logger.Debug("matrix destination resolved", "room", room.String(), "room_id", room.ID)
	return room, nil
}

// Send delivers one unit. A rate-limited send returns a transient
// *delivery.DeliveryError wrapping *RateLimitedError; a send refused
// because the user is no longer allowed in the room returns a
// destination-resolution failure.
func (s *Sink) Send(ctx context.Context, destination delivery.Destination, unit render.Unit) error {
	room, ok := destination.(Room)
	if !ok {
		return &delivery.DeliveryError{
			Kind:        delivery.FailureDestinationResolution,
			Destination: destination.String(),
			Err:         fmt.Errorf("destination %T is not a Matrix room", destination),
		}
	}

	content, err := Content(unit)
	if err != nil {
		return err
	}
	if _, err := s.session.SendMessage(ctx, room.ID, content); err != nil {
		return classifySendError(err, room)
	}
	return nil
}

func classifySendError(err error, room Room) error {
	var matrixErr *messaging.MatrixError
	if !errors.As(err, &matrixErr) {
		return err
	}
	switch matrixErr.Code {
	case messaging.ErrCodeLimitExceeded:
		return &delivery.DeliveryError{
			Kind:        delivery.FailureTransientSend,
			Destination: room.String(),
			Err:         &RateLimitedError{RetryAfter: matrixErr.RetryAfter(), Err: err},
		}
	case messaging.ErrCodeForbidden:
		return &delivery.DeliveryError{
			Kind:        delivery.FailureDestinationResolution,
			Destination: room.String(),
			Err:         err,
		}
	default:
		return err
	}
}
