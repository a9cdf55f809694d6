// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package render

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// SerializeDetails renders an event's details as human-readable text.
// Strings pass through unchanged, errors and fmt.Stringers render via
// their own methods, and any other value is encoded as YAML. A value
// YAML cannot encode falls back to %+v.
func SerializeDetails(details any) string {
	switch value := details.(type) {
	case nil:
		return ""
	case string:
		return value
	case []byte:
		return string(value)
	case error:
		return value.Error()
	case fmt.Stringer:
		return value.String()
	}

	encoded, err := marshalYAML(details)
	if err != nil {
		return fmt.Sprintf("%+v", details)
	}
	return strings.TrimRight(string(encoded), "\n")
}

// marshalYAML is yaml.Marshal with its panics on unencodable values
// (funcs, channels) turned into errors.
func marshalYAML(value any) (encoded []byte, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			encoded, err = nil, fmt.Errorf("render: encoding details: %v", recovered)
		}
	}()
	return yaml.Marshal(value)
}

// IsStructured reports whether details serialize through YAML rather
// than passing through as text.
func IsStructured(details any) bool {
	switch details.(type) {
	case nil, string, []byte, error, fmt.Stringer:
		return false
	}
	return true
}
