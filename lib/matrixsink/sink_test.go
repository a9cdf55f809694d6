// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package matrixsink

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/bureau-foundation/herald/delivery"
	"github.com/bureau-foundation/herald/lib/render"
	"github.com/bureau-foundation/herald/messaging"
)

type sentMessage struct {
	roomID  string
	content messaging.MessageContent
}

type fakeSession struct {
	aliases    map[string]string
	aliasErr   error
	joined     []string
	joinedErr  error
	sendErr    error
	sent       []sentMessage
	aliasCalls int
}

func (f *fakeSession) UserID() string { return "@herald:example.org" }

func (f *fakeSession) ResolveAlias(ctx context.Context, alias string) (string, error) {
	f.aliasCalls++
	if f.aliasErr != nil {
		return "", f.aliasErr
	}
	roomID, ok := f.aliases[alias]
	if !ok {
		return "", &messaging.MatrixError{Code: messaging.ErrCodeNotFound, StatusCode: 404}
	}
	return roomID, nil
}

func (f *fakeSession) JoinedRooms(ctx context.Context) ([]string, error) {
	return f.joined, f.joinedErr
}

func (f *fakeSession) SendMessage(ctx context.Context, roomID string, content messaging.MessageContent) (string, error) {
	if f.sendErr != nil {
		return "", f.sendErr
	}
	f.sent = append(f.sent, sentMessage{roomID: roomID, content: content})
	return "$event", nil
}

func (f *fakeSession) Close() error { return nil }

func newSession() *fakeSession {
	return &fakeSession{
		aliases: map[string]string{"#ops:example.org": "!ops:example.org"},
		joined:  []string{"!ops:example.org", "!other:example.org"},
	}
}

func TestResolveDestination(t *testing.T) {
	tests := []struct {
		name        string
		id          string
		wantRoom    Room
		wantInvalid bool
	}{
		{"alias", "#ops:example.org", Room{ID: "!ops:example.org", Alias: "#ops:example.org"}, false},
		{"room id", "!other:example.org", Room{ID: "!other:example.org"}, false},
		{"unknown alias", "#nope:example.org", Room{}, true},
		{"user id", "@someone:example.org", Room{}, true},
		{"not joined", "!elsewhere:example.org", Room{}, true},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			sink := New(newSession(), nil)
			destination, err := sink.ResolveDestination(context.Background(), test.id)
			if test.wantInvalid {
				if !errors.Is(err, delivery.ErrInvalidDestination) {
					t.Fatalf("ResolveDestination(%q) = %v, want ErrInvalidDestination", test.id, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ResolveDestination(%q): %v", test.id, err)
			}
			if destination != test.wantRoom {
				t.Errorf("destination = %#v, want %#v", destination, test.wantRoom)
			}
		})
	}
}

func TestResolveDestinationTransportError(t *testing.T) {
	session := newSession()
	session.aliasErr = errors.New("connection refused")
	sink := New(session, nil)

	_, err := sink.ResolveDestination(context.Background(), "#ops:example.org")
	if err == nil || errors.Is(err, delivery.ErrInvalidDestination) {
		t.Fatalf("error = %v, want plain transport error", err)
	}
}

func TestRoomString(t *testing.T) {
	if got := (Room{ID: "!a:x", Alias: "#a:x"}).String(); got != "#a:x" {
		t.Errorf("String() = %q", got)
	}
	if got := (Room{ID: "!a:x"}).String(); got != "!a:x" {
		t.Errorf("String() = %q", got)
	}
}

func TestSendPlainUnit(t *testing.T) {
	session := newSession()
	sink := New(session, nil)

	err := sink.Send(context.Background(), Room{ID: "!ops:example.org"}, render.PlainUnit{Text: "ℹ️ [10:00:00] hello"})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if len(session.sent) != 1 {
		t.Fatalf("sent %d messages", len(session.sent))
	}
	message := session.sent[0]
	if message.roomID != "!ops:example.org" || message.content.MsgType != messaging.MsgTypeText {
		t.Errorf("message = %+v", message)
	}
	if message.content.Body != "ℹ️ [10:00:00] hello" || message.content.FormattedBody != "" {
		t.Errorf("content = %+v", message.content)
	}
}

func TestSendRichUnit(t *testing.T) {
	session := newSession()
	sink := New(session, nil)

	unit := render.RichUnit{
		Title:            "❌ ERROR",
		Description:      "payment **failed**\n<script>alert(1)</script>",
		Author:           "billing",
		Color:            "#ED4245",
		DetailName:       "Details",
		Detail:           "order: 42\nreason: <declined>",
		DetailStructured: true,
		Timestamp:        time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := sink.Send(context.Background(), Room{ID: "!ops:example.org"}, unit); err != nil {
		t.Fatalf("Send: %v", err)
	}

	content := session.sent[0].content
	if content.MsgType != messaging.MsgTypeNotice || content.Format != messaging.FormatHTML {
		t.Errorf("content type = %s/%s", content.MsgType, content.Format)
	}
	for _, want := range []string{
		`<font data-mx-color="#ED4245"><strong>❌ ERROR</strong></font>`,
		"<em>billing</em>",
		"<strong>failed</strong>",
		`<pre><code class="language-yaml">order: 42`,
		"reason: &lt;declined&gt;",
	} {
		if !strings.Contains(content.FormattedBody, want) {
			t.Errorf("formatted body missing %q:\n%s", want, content.FormattedBody)
		}
	}
	if strings.Contains(content.FormattedBody, "<script>") {
		t.Errorf("raw HTML passed through:\n%s", content.FormattedBody)
	}
	if !strings.HasPrefix(content.Body, "❌ ERROR [billing]\npayment **failed**") ||
		!strings.Contains(content.Body, "Details:\norder: 42") {
		t.Errorf("plain body = %q", content.Body)
	}
}

func TestSendRateLimited(t *testing.T) {
	session := newSession()
	session.sendErr = &messaging.MatrixError{Code: messaging.ErrCodeLimitExceeded, StatusCode: 429, RetryAfterMS: 1500}
	sink := New(session, nil)

	err := sink.Send(context.Background(), Room{ID: "!ops:example.org"}, render.PlainUnit{Text: "x"})
	var deliveryErr *delivery.DeliveryError
	if !errors.As(err, &deliveryErr) || deliveryErr.Kind != delivery.FailureTransientSend {
		t.Fatalf("error = %v, want transient DeliveryError", err)
	}
	var limited *RateLimitedError
	if !errors.As(err, &limited) || limited.RetryAfter != 1500*time.Millisecond {
		t.Fatalf("error = %v, want RateLimitedError with 1.5s", err)
	}
}

func TestSendForbiddenLosesDestination(t *testing.T) {
	session := newSession()
	session.sendErr = &messaging.MatrixError{Code: messaging.ErrCodeForbidden, StatusCode: 403}
	sink := New(session, nil)

	err := sink.Send(context.Background(), Room{ID: "!ops:example.org"}, render.PlainUnit{Text: "x"})
	var deliveryErr *delivery.DeliveryError
	if !errors.As(err, &deliveryErr) || deliveryErr.Kind != delivery.FailureDestinationResolution {
		t.Fatalf("error = %v, want destination-resolution DeliveryError", err)
	}
}

func TestSendOtherErrorsPassThrough(t *testing.T) {
	session := newSession()
	cause := errors.New("EOF")
	session.sendErr = cause
	sink := New(session, nil)

	err := sink.Send(context.Background(), Room{ID: "!ops:example.org"}, render.PlainUnit{Text: "x"})
	if !errors.Is(err, cause) {
		t.Fatalf("error = %v, want %v", err, cause)
	}
}

type foreignDestination struct{}

func (foreignDestination) String() string { return "elsewhere" }

func TestSendRejectsForeignDestination(t *testing.T) {
	sink := New(newSession(), nil)
	err := sink.Send(context.Background(), foreignDestination{}, render.PlainUnit{Text: "x"})
	var deliveryErr *delivery.DeliveryError
	if !errors.As(err, &deliveryErr) || deliveryErr.Kind != delivery.FailureDestinationResolution {
		t.Fatalf("error = %v", err)
	}
}
