// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package process holds binary entrypoint helpers: reporting a fatal
// error before or after the structured logger exists, and exiting
// with a status that mirrors a supervised child process.
package process
