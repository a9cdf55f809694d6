// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package ingest accepts log events over HTTP and hands them to a
// delivery.Dispatcher.
//
// Routes (gorilla/mux):
//
//	POST /v1/events   one event or an array of them (JSON or CBOR); 202
//	POST /v1/raw      plain text, one raw line per line; 202
//	GET  /v1/stats    dispatcher Stats as JSON or CBOR
//	GET  /metrics     Prometheus exposition
//	GET  /healthz     "ok"
//
// A JSON event is {"level","message","source","details","timestamp"}.
// Bodies sent as application/cbor carry the same fields, and stats are
// answered in CBOR when the request accepts application/cbor. Request
// bodies may be compressed with Content-Encoding zstd or lz4.
// level defaults to info, timestamp (RFC 3339) to the time of receipt.
// A batch is validated as a whole before any event in it is logged, so
// a 400 response means nothing from the request was accepted.
package ingest
