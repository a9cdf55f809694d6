// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package sealed encrypts and decrypts access-token files with age.
//
// A sealed token file is age ciphertext, ASCII-armored by [Seal] so it
// can be pasted into configuration management. [Open] accepts armored
// or binary ciphertext. Identities are read with age.ParseIdentities,
// so an age-keygen output file (with its comment lines) works as is.
// Plaintext and private keys are returned in [secret.Buffer] values.
package sealed
