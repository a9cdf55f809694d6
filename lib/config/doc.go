// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads the relay's configuration file.
//
// Configuration comes from a single file named by either the
// HERALD_CONFIG environment variable (via [Load]) or a --config flag
// (via [LoadFile]). There is no discovery and no fallback file, so the
// configuration in effect is always the one named.
//
// Files are YAML. A file ending in .jsonc or .json is first reduced to
// plain JSON by tidwall/jsonc (comments and trailing commas removed)
// and then decoded by the same YAML decoder, which accepts JSON.
//
// Environment sections (development, staging, production) override
// base values when [Config].Environment matches. After overrides,
// ${VAR} and ${VAR:-default} patterns in path fields are expanded.
// No environment variable overrides a configured value directly.
//
// Remote delivery is configured by the matrix section; an empty
// homeserver_url means local output only.
package config
