// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package messaging

// Message types for m.room.message events.
const (
	MsgTypeText   = "m.text"
	MsgTypeNotice = "m.notice"
)

// FormatHTML is the only formatted_body format defined by Matrix.
const FormatHTML = "org.matrix.custom.html"

// EventTypeMessage is the event type of room messages.
const EventTypeMessage = "m.room.message"

// MessageContent is the content of an m.room.message event. Body is
// always the plain-text rendering; FormattedBody, when set, is an HTML
// rendering clients prefer to display.
type MessageContent struct {
	MsgType       string `json:"msgtype"`
	Body          string `json:"body"`
	Format        string `json:"format,omitempty"`
	FormattedBody string `json:"formatted_body,omitempty"`
}

// NewTextMessage creates a plain m.text message.
func NewTextMessage(body string) MessageContent {
	return MessageContent{MsgType: MsgTypeText, Body: body}
}

// NewNoticeMessage creates a plain m.notice message. Notices are meant
// for automated output; well-behaved bots never respond to them.
func NewNoticeMessage(body string) MessageContent {
	return MessageContent{MsgType: MsgTypeNotice, Body: body}
}

// NewHTMLNotice creates an m.notice with an HTML formatted_body. body
// is the fallback shown by clients that do not render HTML.
func NewHTMLNotice(body, html string) MessageContent {
	return MessageContent{
		MsgType:       MsgTypeNotice,
		Body:          body,
		Format:        FormatHTML,
		FormattedBody: html,
	}
}

// SendEventResponse is returned by SendMessage and SendEvent.
type SendEventResponse struct {
	EventID string `json:"event_id"`
}

// WhoAmIResponse is returned by WhoAmI.
type WhoAmIResponse struct {
	UserID   string `json:"user_id"`
	DeviceID string `json:"device_id,omitempty"`
}

// ResolveAliasResponse is returned by ResolveAlias.
type ResolveAliasResponse struct {
	RoomID  string   `json:"room_id"`
	Servers []string `json:"servers"`
}

// JoinedRoomsResponse is returned by JoinedRooms.
type JoinedRoomsResponse struct {
	JoinedRooms []string `json:"joined_rooms"`
}

// ServerVersionsResponse is returned by Client.ServerVersions.
type ServerVersionsResponse struct {
	Versions         []string        `json:"versions"`
	UnstableFeatures map[string]bool `json:"unstable_features,omitempty"`
}
