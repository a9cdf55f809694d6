// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package version reports build version information for herald
// binaries.
//
// [GitCommit], [BuildTime], and [Version] are injected at build time
// with -ldflags -X. When GitCommit is not injected, the VCS revision
// recorded by the Go toolchain in the binary's build info is used.
package version
