// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ingest

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// errUnsupportedEncoding answers 415.
var errUnsupportedEncoding = errors.New("unsupported Content-Encoding")

// requestBody returns the request body decoded per its
// Content-Encoding (identity, zstd, or lz4 frames). Both the encoded
// and decoded streams are capped at MaxBodySize; reading past either
// cap fails with *http.MaxBytesError. The returned close function
// releases the decoder.
func requestBody(w http.ResponseWriter, r *http.Request) (io.Reader, func(), error) {
	encoded := http.MaxBytesReader(w, r.Body, MaxBodySize)

	switch encoding := strings.ToLower(strings.TrimSpace(r.Header.Get("Content-Encoding"))); encoding {
	case "", "identity":
		return encoded, func() {}, nil

	case "zstd":
		decoder, err := zstd.NewReader(encoded,
			zstd.WithDecoderConcurrency(1),
			zstd.WithDecoderMaxMemory(4*MaxBodySize),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("zstd: %w", err)
		}
		return http.MaxBytesReader(w, io.NopCloser(decoder), MaxBodySize), decoder.Close, nil

	case "lz4":
		return http.MaxBytesReader(w, io.NopCloser(lz4.NewReader(encoded)), MaxBodySize), func() {}, nil

	default:
		return nil, nil, fmt.Errorf("%w %q (want identity, zstd, or lz4)", errUnsupportedEncoding, encoding)
	}
}

// bodyErrorStatus maps a body read error to a response status.
func bodyErrorStatus(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, errUnsupportedEncoding):
		return http.StatusUnsupportedMediaType
	default:
		return http.StatusBadRequest
	}
}
