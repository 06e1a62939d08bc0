// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"errors"
	"fmt"
)

// Sentinel errors for the persistence pipeline. Every classified error below
// matches exactly one of these via [errors.Is].
var (
	// ErrSerialization is returned when a value cannot be converted to or from
	// its text representation.
	ErrSerialization = errors.New("serialization failed")

	// ErrDecryption is returned when ciphertext cannot be opened by the
	// configured cipher (wrong salt, wrong algorithm, tampered bytes).
	ErrDecryption = errors.New("decryption failed")

	// ErrTypeResolution is returned when a persisted type name has no
	// registered Go type.
	ErrTypeResolution = errors.New("type resolution failed")

	// ErrPartitionIntegrity is returned when a partition set is missing
	// members, carries a foreign generation, or could not be fully written.
	ErrPartitionIntegrity = errors.New("partition set integrity violated")

	// ErrBackend is returned when the underlying storage backend fails.
	ErrBackend = errors.New("storage backend failure")
)

var (
	// ErrKeyNotFound is returned by read paths when the key is absent.
	// It is not a failure and is never logged at error level.
	ErrKeyNotFound = errors.New("key not found")

	// ErrInvalidKey is returned for empty keys and keys containing the
	// reserved partition delimiter.
	ErrInvalidKey = errors.New("invalid key")

	// ErrPayloadTooLarge is returned by the parser when serialized text
	// exceeds the configured limit.
	ErrPayloadTooLarge = errors.New("payload exceeds maximum size")
)

// SerializationError describes a value<->text conversion failure.
type SerializationError struct {
	Type string
	Err  error
}

func (e *SerializationError) Error() string {
	if e.Type == "" {
		return fmt.Sprintf("serialization: %v", e.Err)
	}
	return fmt.Sprintf("serialization of %q: %v", e.Type, e.Err)
}

func (e *SerializationError) Unwrap() error        { return e.Err }
func (e *SerializationError) Is(target error) bool { return target == ErrSerialization }

// DecryptionError describes ciphertext that the current cipher cannot open.
type DecryptionError struct {
	Cipher string
	Err    error
}

func (e *DecryptionError) Error() string {
	return fmt.Sprintf("decryption with %s: %v", e.Cipher, e.Err)
}

func (e *DecryptionError) Unwrap() error        { return e.Err }
func (e *DecryptionError) Is(target error) bool { return target == ErrDecryption }

// TypeResolutionError describes a type name that could not be resolved, or a
// Go type that has no registered name.
type TypeResolutionError struct {
	Name string
	Err  error
}

func (e *TypeResolutionError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("type %q is not registered", e.Name)
	}
	return fmt.Sprintf("type %q: %v", e.Name, e.Err)
}

func (e *TypeResolutionError) Unwrap() error        { return e.Err }
func (e *TypeResolutionError) Is(target error) bool { return target == ErrTypeResolution }

// PartitionIntegrityError describes a broken partition set for Key.
// Index is -1 when the failure is not tied to a single partition.
type PartitionIntegrityError struct {
	Key   string
	Index int
	Err   error
}

func (e *PartitionIntegrityError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("partition set %q: %v", e.Key, e.Err)
	}
	return fmt.Sprintf("partition %d of %q: %v", e.Index, e.Key, e.Err)
}

func (e *PartitionIntegrityError) Unwrap() error        { return e.Err }
func (e *PartitionIntegrityError) Is(target error) bool { return target == ErrPartitionIntegrity }

// BackendError describes a failed storage operation.
type BackendError struct {
	Op  string
	Key string
	Err error
}

func (e *BackendError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("backend %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("backend %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *BackendError) Unwrap() error        { return e.Err }
func (e *BackendError) Is(target error) bool { return target == ErrBackend }
