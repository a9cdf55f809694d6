// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package render

import "time"

// Unit is a remote rendering of an event: either a RichUnit or a
// PlainUnit.
type Unit interface {
	// Limit returns a copy of the unit with every field capped at the
	// remote channel's size limits.
	Limit() Unit

	unit()
}

// RichUnit is a structured notification.
type RichUnit struct {
	Title       string
	Description string

	// Author names the producing subsystem. Empty when the event had
	// no source.
	Author string

	// Color is a hex RGB accent such as "#ED4245".
	Color string

	// DetailName labels Detail. Empty when Detail is empty.
	DetailName string
	Detail     string

	// DetailStructured is true when Detail is serialized YAML rather
	// than producer-supplied text.
	DetailStructured bool

	Timestamp time.Time
}

// Limit caps Description at DescriptionLimit and Detail at
// DetailLimit.
func (u RichUnit) Limit() Unit {
	u.Description = Truncate(u.Description, DescriptionLimit)
	u.Detail = Truncate(u.Detail, DetailLimit)
	return u
}

func (RichUnit) unit() {}

// PlainUnit is a single line of text.
type PlainUnit struct {
	Text string
}

// Limit caps Text at PlainLimit.
func (u PlainUnit) Limit() Unit {
	u.Text = Truncate(u.Text, PlainLimit)
	return u
}

func (PlainUnit) unit() {}
