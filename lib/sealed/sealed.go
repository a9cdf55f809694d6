// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package sealed

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"filippo.io/age"
	"filippo.io/age/armor"

	"github.com/bureau-foundation/herald/lib/secret"
)

// maxPlaintext bounds decrypted token files.
const maxPlaintext = 64 << 10

// Identity is an age X25519 keypair.
type Identity struct {
	// Private is the AGE-SECRET-KEY-1... encoding.
	Private *secret.Buffer
	// Recipient is the matching age1... public key.
	Recipient string
}

// Close releases the private key memory.
func (i *Identity) Close() error {
	return i.Private.Close()
}

// GenerateIdentity creates a new X25519 identity.
func GenerateIdentity() (*Identity, error) {
	identity, err := age.GenerateX25519Identity()
	if err != nil {
		return nil, fmt.Errorf("sealed: generating identity: %w", err)
	}
	private, err := secret.NewFromBytes([]byte(identity.String()))
	if err != nil {
		return nil, fmt.Errorf("sealed: protecting identity: %w", err)
	}
	return &Identity{Private: private, Recipient: identity.Recipient().String()}, nil
}

// Seal encrypts plaintext to each recipient (age1... keys) and returns
// armored ciphertext.
func Seal(plaintext []byte, recipientKeys []string) ([]byte, error) {
	if len(recipientKeys) == 0 {
		return nil, errors.New("sealed: at least one recipient is required")
	}
	recipients := make([]age.Recipient, 0, len(recipientKeys))
	for _, key := range recipientKeys {
		recipient, err := age.ParseX25519Recipient(strings.TrimSpace(key))
		if err != nil {
			return nil, fmt.Errorf("sealed: parsing recipient %q: %w", key, err)
		}
		recipients = append(recipients, recipient)
	}

	var output bytes.Buffer
	armored := armor.NewWriter(&output)
	writer, err := age.Encrypt(armored, recipients...)
	if err != nil {
		return nil, fmt.Errorf("sealed: creating encryptor: %w", err)
	}
	if _, err := writer.Write(plaintext); err != nil {
		return nil, fmt.Errorf("sealed: encrypting: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("sealed: finalizing: %w", err)
	}
	if err := armored.Close(); err != nil {
		return nil, fmt.Errorf("sealed: closing armor: %w", err)
	}
	return output.Bytes(), nil
}

// Open decrypts armored or binary ciphertext with the identities in
// identityFile (the contents of an age identity file). Surrounding
// whitespace in the plaintext is trimmed, as for plain token files.
func Open(ciphertext []byte, identityFile *secret.Buffer) (*secret.Buffer, error) {
	identities, err := age.ParseIdentities(bytes.NewReader(identityFile.Bytes()))
	if err != nil {
		return nil, fmt.Errorf("sealed: parsing identity: %w", err)
	}

	var source io.Reader = bytes.NewReader(ciphertext)
	if bytes.HasPrefix(bytes.TrimSpace(ciphertext), []byte(armor.Header)) {
		source = armor.NewReader(bytes.NewReader(bytes.TrimSpace(ciphertext)))
	}
	reader, err := age.Decrypt(source, identities...)
	if err != nil {
		return nil, fmt.Errorf("sealed: decrypting: %w", err)
	}
	plaintext, err := secret.Read(io.LimitReader(reader, maxPlaintext))
	if err != nil {
		return nil, fmt.Errorf("sealed: reading plaintext: %w", err)
	}
	return plaintext, nil
}

// OpenFile reads the sealed file at path and decrypts it with the age
// identity file at identityPath.
func OpenFile(path, identityPath string) (*secret.Buffer, error) {
	identity, err := secret.ReadFile(identityPath)
	if err != nil {
		return nil, fmt.Errorf("sealed: reading identity: %w", err)
	}
	defer identity.Close()

	ciphertext, err := readCiphertext(path)
	if err != nil {
		return nil, err
	}
	return Open(ciphertext, identity)
}

// readCiphertext reads path unmodified. Ciphertext is not secret, and
// trimming would corrupt binary age files.
func readCiphertext(path string) ([]byte, error) {
	ciphertext, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("sealed: %w", err)
	}
	return ciphertext, nil
}
