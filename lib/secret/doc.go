// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package secret holds access tokens and private keys outside the Go
// heap.
//
// [Buffer] memory comes from an anonymous mmap, is excluded from core
// dumps, and is locked into RAM when the process is allowed to lock
// memory. Close zeros and unmaps it. [ReadFile] loads a token file
// into a Buffer, trimming surrounding whitespace and zeroing the heap
// copy it read through.
package secret
