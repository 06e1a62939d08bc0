// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"time"
)

// StructuredConfig is the top-level configuration container for vaultkv.
// It aggregates all sub-configurations and is populated by merging values
// from environment variables, command-line flags, a JSON file and defaults.
//
// Struct tags:
//   - envPrefix: prefix applied to all nested env tag lookups (caarlos0/env).
//   - env: direct environment variable name for scalar fields.
type StructuredConfig struct {
	// App holds the persistence engine settings: namespace, salt, cipher
	// selection and record size limits.
	App App `envPrefix:"APP_"`

	// Storage selects and configures the storage backend.
	Storage Storage `envPrefix:"STORAGE_"`

	// Workers holds configuration for background maintenance workers.
	Workers Workers `envPrefix:"WORKERS_"`

	// Metrics holds Prometheus settings.
	Metrics Metrics `envPrefix:"METRICS_"`

	// Log holds logger output settings.
	Log Log `envPrefix:"LOG_"`

	// JSONFilePath is the optional path to a JSON configuration file.
	// Populated via the CONFIG environment variable or the -c / --config flag.
	JSONFilePath string `env:"CONFIG"`
}

// App holds the settings that shape the persistence pipeline.
type App struct {
	// StorageTag namespaces the store. It is mixed into key derivation, so
	// two stores with different tags can not read each other's records.
	// Env: APP_STORAGE_TAG
	StorageTag string `env:"STORAGE_TAG"`

	// Salt is the secret identity the cipher key is derived from.
	// Defaults to StorageTag when empty.
	// Env: APP_SALT
	Salt string `env:"SALT"`

	// Cipher is one of "aes-gcm", "xchacha20" or "none".
	// Env: APP_CIPHER
	Cipher string `env:"CIPHER"`

	// CipherPolicy is "fallback" (substitute the no-op cipher when
	// initialization fails) or "strict" (fail the build).
	// Env: APP_CIPHER_POLICY
	CipherPolicy string `env:"CIPHER_POLICY"`

	// MaxRecordSize is the largest encoded record written under one backend
	// key. Larger records are split into chunks.
	// Env: APP_MAX_RECORD_SIZE
	MaxRecordSize int `env:"MAX_RECORD_SIZE"`

	// MaxPayloadSize bounds the serialized text of a single value.
	// Env: APP_MAX_PAYLOAD_SIZE
	MaxPayloadSize int `env:"MAX_PAYLOAD_SIZE"`

	// ParallelPartitions writes and reads partitions concurrently for every
	// partitioned value, not only those that ask for it.
	// Env: APP_PARALLEL_PARTITIONS
	ParallelPartitions bool `env:"PARALLEL_PARTITIONS"`
}

// Storage selects the backend and holds the settings of each driver.
type Storage struct {
	// Driver is one of "memory", "sqlite" or "badger".
	// Env: STORAGE_DRIVER
	Driver string `env:"DRIVER"`

	// DB holds the SQLite connection settings.
	DB DB `envPrefix:"DB_"`

	// Memory holds the in-memory backend settings.
	Memory Memory `envPrefix:"MEMORY_"`

	// Badger holds the embedded Badger settings.
	Badger Badger `envPrefix:"BADGER_"`
}

// DB holds connection settings for the SQLite backend.
type DB struct {
	// DSN is the SQLite database file path or URI
	// (e.g. "file:vault.db?_busy_timeout=5000").
	// Env: STORAGE_DB_DSN
	DSN string `env:"DSN"`
}

// Memory holds settings for the in-memory backend.
type Memory struct {
	// Path is an optional JSON file the map is loaded from and flushed to
	// after every write. Empty keeps everything in memory.
	// Env: STORAGE_MEMORY_PATH
	Path string `env:"PATH"`
}

// Badger holds settings for the embedded Badger backend.
type Badger struct {
	// Dir is the database directory. Required unless InMemory is set.
	// Env: STORAGE_BADGER_DIR
	Dir string `env:"DIR"`

	// InMemory runs Badger without touching disk.
	// Env: STORAGE_BADGER_IN_MEMORY
	InMemory bool `env:"IN_MEMORY"`
}

// Workers holds configuration for background worker processes.
type Workers struct {
	// GCInterval is how often the Badger value-log GC runs. Zero disables it.
	// Env: WORKERS_GC_INTERVAL
	GCInterval time.Duration `env:"GC_INTERVAL"`

	// GCDiscardRatio is passed to Badger's RunValueLogGC.
	// Env: WORKERS_GC_DISCARD_RATIO
	GCDiscardRatio float64 `env:"GC_DISCARD_RATIO"`
}

// Metrics holds Prometheus settings.
type Metrics struct {
	// Namespace prefixes every metric name.
	// Env: METRICS_NAMESPACE
	Namespace string `env:"NAMESPACE"`
}

// Log holds logger output settings.
type Log struct {
	// File appends logs to this path instead of stdout.
	// Env: LOG_FILE
	File string `env:"FILE"`
}

// Default values applied after every other source.
const (
	DefaultStorageTag     = "Data"
	DefaultCipher         = "aes-gcm"
	DefaultCipherPolicy   = "fallback"
	DefaultDriver         = "memory"
	DefaultMaxRecordSize  = 100_000
	DefaultMaxPayloadSize = 50 * 1024 * 1024
	DefaultMetricsNS      = "vaultkv"
	DefaultGCInterval     = 5 * time.Minute
	DefaultGCDiscardRatio = 0.5
)

// Defaults returns the configuration used for every field no other source
// sets.
func Defaults() *StructuredConfig {
	return &StructuredConfig{
		App: App{
			StorageTag:     DefaultStorageTag,
			Cipher:         DefaultCipher,
			CipherPolicy:   DefaultCipherPolicy,
			MaxRecordSize:  DefaultMaxRecordSize,
			MaxPayloadSize: DefaultMaxPayloadSize,
		},
		Storage: Storage{
			Driver: DefaultDriver,
		},
		Workers: Workers{
			GCInterval:     DefaultGCInterval,
			GCDiscardRatio: DefaultGCDiscardRatio,
		},
		Metrics: Metrics{
			Namespace: DefaultMetricsNS,
		},
	}
}

// GetStructuredConfig loads, merges, and validates the configuration from
// all available sources. For each field the first source that sets a
// non-zero value wins, in this order:
//  1. Environment variables
//  2. Command-line flags (flags may be nil)
//  3. JSON file (path resolved from sources 1 and 2)
//  4. Defaults
//
// Returns a fully populated *StructuredConfig or an error if any source
// fails to load or the final config fails validation.
func GetStructuredConfig(flags *StructuredConfig) (*StructuredConfig, error) {
	return newConfigBuilder().
		withEnv().
		withFlags(flags).
		withJSON().
		withDefaults().
		build()
}
