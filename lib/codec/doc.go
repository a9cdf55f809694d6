// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec is herald's CBOR configuration. The ingestion server
// accepts application/cbor bodies alongside JSON and can answer stats
// requests in CBOR, so producers on constrained links can skip JSON.
//
// Types carry json struct tags only; fxamacker/cbor reads them as a
// fallback, so one tag set names the fields in both formats.
//
// The encoder uses Core Deterministic Encoding (RFC 8949 §4.2). The
// decoder produces map[string]any for untyped maps, matching what
// encoding/json yields, so event details look the same whichever
// format they arrived in.
package codec
