// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/hkdf"
)

// hkdfInfo domain-separates record keys from any other use of the same salt.
const hkdfInfo = "go-vault-store-record-key-v1"

// keySize is the length of every derived key (256 bits).
const keySize = 32

// ErrEmptySalt is returned by key derivation when no salt/identity is set.
var ErrEmptySalt = errors.New("salt must not be empty")

// KDFParams holds the Argon2id tuning parameters. Stored separately so they
// can be adjusted per deployment target (e.g. tests vs. desktop).
type KDFParams struct {
	Time    uint32
	Memory  uint32
	Threads uint8
}

// DefaultKDFParams returns the Argon2id parameters recommended by OWASP (2024):
//   - time cost:   1 iteration
//   - memory cost: 64 MiB
//   - parallelism: 4 threads
func DefaultKDFParams() KDFParams {
	return KDFParams{
		Time:    1,
		Memory:  64 * 1024, // 64 MiB
		Threads: 4,
	}
}

// deriveArgon2Key derives a 256-bit key from salt (the secret identity) and
// namespace using Argon2id. The namespace is hashed into the 16-byte Argon2
// salt so two stores with the same secret but different tags get different
// keys.
func deriveArgon2Key(salt, namespace string, p KDFParams) ([]byte, error) {
	if salt == "" {
		return nil, ErrEmptySalt
	}
	if p.Time == 0 || p.Memory == 0 || p.Threads == 0 {
		return nil, fmt.Errorf("invalid argon2 parameters: %+v", p)
	}

	nsHash := sha256.Sum256([]byte("go-vault-store:" + namespace))
	return argon2.IDKey([]byte(salt), nsHash[:16], p.Time, p.Memory, p.Threads, keySize), nil
}

// deriveHKDFKey derives a 256-bit key from salt and namespace with
// HKDF-SHA256.
func deriveHKDFKey(salt, namespace string) ([]byte, error) {
	if salt == "" {
		return nil, ErrEmptySalt
	}

	r := hkdf.New(sha256.New, []byte(salt), []byte(namespace), []byte(hkdfInfo))
	out := make([]byte, keySize)
	if _, err := io.ReadFull(r, out); err != nil {
		return nil, fmt.Errorf("derive hkdf-sha256 output: %w", err)
	}
	return out, nil
}
