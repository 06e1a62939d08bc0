// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"sync"

	"golang.org/x/crypto/chacha20poly1305"

	"github.com/MKhiriev/go-vault-store/models"
)

// Algorithm is the one-byte tag that prefixes every sealed payload.
type Algorithm byte

const (
	AlgorithmNone      Algorithm = 0x00
	AlgorithmAESGCM    Algorithm = 0x01
	AlgorithmXChaCha20 Algorithm = 0x02
)

// ErrNotInitialized is returned when Encrypt/Decrypt run before Initialize.
var ErrNotInitialized = errors.New("cipher is not initialized")

// aeadCipher is the shared implementation of the AEAD-backed ciphers.
// The blob layout is: tag (1 byte) || nonce || sealed ciphertext.
type aeadCipher struct {
	name      string
	algorithm Algorithm
	derive    func() ([]byte, error)
	construct func(key []byte) (cipher.AEAD, error)

	mu   sync.RWMutex
	aead cipher.AEAD
}

// NewAESGCMCipher constructs an AES-256-GCM [Cipher] whose key is derived
// from salt and namespace with Argon2id. Initialize fails if salt is empty.
func NewAESGCMCipher(salt, namespace string, params KDFParams) Cipher {
	return &aeadCipher{
		name:      "aes-gcm",
		algorithm: AlgorithmAESGCM,
		derive: func() ([]byte, error) {
			return deriveArgon2Key(salt, namespace, params)
		},
		construct: func(key []byte) (cipher.AEAD, error) {
			block, err := aes.NewCipher(key)
			if err != nil {
				return nil, fmt.Errorf("create cipher: %w", err)
			}
			gcm, err := cipher.NewGCM(block)
			if err != nil {
				return nil, fmt.Errorf("create gcm: %w", err)
			}
			return gcm, nil
		},
	}
}

// NewXChaCha20Cipher constructs an XChaCha20-Poly1305 [Cipher] whose key is
// derived from salt and namespace with HKDF-SHA256. It is cheaper to
// initialize than the AES-GCM cipher because no memory-hard KDF runs.
func NewXChaCha20Cipher(salt, namespace string) Cipher {
	return &aeadCipher{
		name:      "xchacha20-poly1305",
		algorithm: AlgorithmXChaCha20,
		derive: func() ([]byte, error) {
			return deriveHKDFKey(salt, namespace)
		},
		construct: func(key []byte) (cipher.AEAD, error) {
			aead, err := chacha20poly1305.NewX(key)
			if err != nil {
				return nil, fmt.Errorf("construct xchacha20-poly1305: %w", err)
			}
			return aead, nil
		},
	}
}

func (c *aeadCipher) Name() string { return c.name }

// Initialize implements [Cipher]. It derives the key and builds the AEAD.
func (c *aeadCipher) Initialize() error {
	key, err := c.derive()
	if err != nil {
		return fmt.Errorf("%s: derive key: %w", c.name, err)
	}

	aead, err := c.construct(key)
	if err != nil {
		return fmt.Errorf("%s: %w", c.name, err)
	}

	c.mu.Lock()
	c.aead = aead
	c.mu.Unlock()
	return nil
}

func (c *aeadCipher) current() (cipher.AEAD, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.aead == nil {
		return nil, fmt.Errorf("%s: %w", c.name, ErrNotInitialized)
	}
	return c.aead, nil
}

// Encrypt implements [Cipher]. A random nonce is generated per call and
// stored right after the algorithm tag.
func (c *aeadCipher) Encrypt(plaintext []byte) ([]byte, error) {
	aead, err := c.current()
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}

	blob := make([]byte, 0, 1+len(nonce)+len(plaintext)+aead.Overhead())
	blob = append(blob, byte(c.algorithm))
	blob = append(blob, nonce...)
	return aead.Seal(blob, nonce, plaintext, nil), nil
}

// Decrypt implements [Cipher]. The tag must match this cipher's algorithm
// and the authentication tag must verify under the derived key.
func (c *aeadCipher) Decrypt(data []byte) ([]byte, error) {
	aead, err := c.current()
	if err != nil {
		return nil, &models.DecryptionError{Cipher: c.name, Err: err}
	}

	if err := checkTag(data, c.algorithm); err != nil {
		return nil, &models.DecryptionError{Cipher: c.name, Err: err}
	}

	body := data[1:]
	nonceSize := aead.NonceSize()
	if len(body) < nonceSize+aead.Overhead() {
		return nil, &models.DecryptionError{Cipher: c.name, Err: errors.New("ciphertext too short")}
	}

	nonce, sealed := body[:nonceSize], body[nonceSize:]
	// An error here almost always means a different salt or namespace
	// produced a different key.
	plaintext, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, &models.DecryptionError{Cipher: c.name, Err: err}
	}
	return plaintext, nil
}

func checkTag(data []byte, want Algorithm) error {
	if len(data) == 0 {
		return errors.New("empty payload")
	}
	if got := Algorithm(data[0]); got != want {
		return fmt.Errorf("payload sealed with algorithm 0x%02x, want 0x%02x", byte(got), byte(want))
	}
	return nil
}
