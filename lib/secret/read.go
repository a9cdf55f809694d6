// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package secret

import (
	"bytes"
	"fmt"
	"io"
	"os"
)

// maxFileSize bounds secret files. Tokens and age identities are well
// under a kilobyte; sealed files add armor overhead.
const maxFileSize = 64 << 10

// ReadFile reads a secret from path, or from stdin if path is "-",
// trimming surrounding whitespace. An empty secret is an error.
func ReadFile(path string) (*Buffer, error) {
	var source io.Reader = os.Stdin
	if path != "-" {
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("secret: %w", err)
		}
		defer file.Close()
		source = file
	}
	return Read(source)
}

// Read reads a secret from r, trimming surrounding whitespace.
func Read(r io.Reader) (*Buffer, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxFileSize+1))
	defer Zero(data)
	if err != nil {
		return nil, fmt.Errorf("secret: reading: %w", err)
	}
	if len(data) > maxFileSize {
		return nil, fmt.Errorf("secret: larger than %d bytes", maxFileSize)
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("secret: empty")
	}
	return NewFromBytes(trimmed)
}
