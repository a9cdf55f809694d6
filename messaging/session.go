// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package messaging

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync/atomic"

	"github.com/zeebo/blake3"

	"github.com/bureau-foundation/herald/lib/secret"
)

// Session is the subset of Matrix operations the relay's remote sink
// needs. *DirectSession implements it.
type Session interface {
	// UserID returns the fully-qualified Matrix user ID.
	UserID() string

	// ResolveAlias resolves a room alias to a room ID.
	ResolveAlias(ctx context.Context, alias string) (string, error)

	// JoinedRooms returns the IDs of rooms the user has joined.
	JoinedRooms(ctx context.Context) ([]string, error)

	// SendMessage sends an m.room.message event. Returns the event ID.
	SendMessage(ctx context.Context, roomID string, content MessageContent) (string, error)

	// Close releases resources held by the session. Idempotent.
	Close() error
}

// DirectSession is an authenticated Matrix session holding an access
// token. It is safe for concurrent use.
type DirectSession struct {
	client      *Client
	accessToken *secret.Buffer
	userID      string

	// nonce distinguishes transaction IDs across sessions and process
	// restarts; counter distinguishes them within a session.
	nonce   [16]byte
	counter atomic.Uint64
}

var _ Session = (*DirectSession)(nil)

func newSessionNonce() ([16]byte, error) {
	var nonce [16]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return nonce, fmt.Errorf("messaging: generating session nonce: %w", err)
	}
	return nonce, nil
}

// UserID returns the user ID given at construction or learned by WhoAmI.
func (s *DirectSession) UserID() string {
	return s.userID
}

// Close releases the access token memory. Idempotent.
func (s *DirectSession) Close() error {
	return s.accessToken.Close()
}

// WhoAmI validates the access token and returns the user ID it
// belongs to. If the session was created without a user ID, it adopts
// the returned one.
func (s *DirectSession) WhoAmI(ctx context.Context) (string, error) {
	body, err := s.client.doRequest(ctx, http.MethodGet, "/_matrix/client/v3/account/whoami", s.accessToken, nil)
	if err != nil {
		return "", fmt.Errorf("messaging: whoami failed: %w", err)
	}

	var response WhoAmIResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return "", fmt.Errorf("messaging: failed to parse whoami response: %w", err)
	}
	if s.userID == "" {
		s.userID = response.UserID
	}
	return response.UserID, nil
}

// ResolveAlias resolves a room alias (e.g., "#ops:example.org") to a room ID.
func (s *DirectSession) ResolveAlias(ctx context.Context, alias string) (string, error) {
	path := "/_matrix/client/v3/directory/room/" + url.PathEscape(alias)
	body, err := s.client.doRequest(ctx, http.MethodGet, path, s.accessToken, nil)
	if err != nil {
		return "", fmt.Errorf("messaging: resolve alias %q failed: %w", alias, err)
	}

	var response ResolveAliasResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return "", fmt.Errorf("messaging: failed to parse resolve alias response: %w", err)
	}
	if response.RoomID == "" {
		return "", fmt.Errorf("messaging: resolve alias %q returned no room ID", alias)
	}
	return response.RoomID, nil
}

// JoinedRooms returns the IDs of rooms the user has joined.
func (s *DirectSession) JoinedRooms(ctx context.Context) ([]string, error) {
	body, err := s.client.doRequest(ctx, http.MethodGet, "/_matrix/client/v3/joined_rooms", s.accessToken, nil)
	if err != nil {
		return nil, fmt.Errorf("messaging: joined rooms failed: %w", err)
	}

	var response JoinedRoomsResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("messaging: failed to parse joined rooms response: %w", err)
	}
	return response.JoinedRooms, nil
}

// SendMessage sends an m.room.message event. Returns the event ID.
func (s *DirectSession) SendMessage(ctx context.Context, roomID string, content MessageContent) (string, error) {
	return s.SendEvent(ctx, roomID, EventTypeMessage, content)
}

// SendEvent sends an event of any type to a room using an idempotent
// PUT. Returns the event ID.
func (s *DirectSession) SendEvent(ctx context.Context, roomID, eventType string, content any) (string, error) {
	encoded, err := json.Marshal(content)
	if err != nil {
		return "", fmt.Errorf("messaging: failed to encode event content: %w", err)
	}

	path := fmt.Sprintf("/_matrix/client/v3/rooms/%s/send/%s/%s",
		url.PathEscape(roomID),
		url.PathEscape(eventType),
		url.PathEscape(s.transactionID(encoded)),
	)
	body, err := s.client.doRequest(ctx, http.MethodPut, path, s.accessToken, encoded)
	if err != nil {
		return "", fmt.Errorf("messaging: send event to %q failed: %w", roomID, err)
	}

	var response SendEventResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return "", fmt.Errorf("messaging: failed to parse send response: %w", err)
	}
	return response.EventID, nil
}

// transactionID derives a transaction ID from the session nonce, the
// next counter value, and the encoded content.
func (s *DirectSession) transactionID(content []byte) string {
	var counter [8]byte
	binary.BigEndian.PutUint64(counter[:], s.counter.Add(1))

	hasher := blake3.New()
	hasher.Write(s.nonce[:])
	hasher.Write(counter[:])
	hasher.Write(content)
	return "herald-" + hex.EncodeToString(hasher.Sum(nil)[:16])
}
