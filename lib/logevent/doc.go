// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package logevent defines the unit of work for herald: a leveled log
// event with an optional source label and diagnostic details.
//
// Each [Level] maps to a fixed [Decoration] (a color and an emoji)
// that every renderer shares. [ParseRawLine] normalizes an
// unstructured line from an external process into an [Event] tagged
// with [ExternalSource].
package logevent
