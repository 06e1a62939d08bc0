// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"fmt"
	"strings"
)

// MinRecordSize is the smallest accepted App.MaxRecordSize. Below this a
// chunk record would hold almost nothing but metadata.
const MinRecordSize = 512

var (
	drivers  = []string{"memory", "sqlite", "badger"}
	ciphers  = []string{"aes-gcm", "xchacha20", "none"}
	policies = []string{"fallback", "strict"}
)

// validate checks that the final merged [StructuredConfig] satisfies all
// invariants before it is used at startup.
func (cfg *StructuredConfig) validate() error {
	if err := cfg.Storage.validate(); err != nil {
		return err
	}
	if err := cfg.App.validate(); err != nil {
		return err
	}
	if cfg.Workers.GCInterval < 0 || cfg.Workers.GCDiscardRatio < 0 || cfg.Workers.GCDiscardRatio >= 1 {
		return fmt.Errorf("%w: gc interval %s, discard ratio %v",
			ErrInvalidWorkerConfigs, cfg.Workers.GCInterval, cfg.Workers.GCDiscardRatio)
	}
	return nil
}

func (s Storage) validate() error {
	if !oneOf(s.Driver, drivers) {
		return fmt.Errorf("%w: unknown driver %q", ErrInvalidStorageConfigs, s.Driver)
	}

	switch s.Driver {
	case "sqlite":
		if s.DB.DSN == "" {
			return fmt.Errorf("%w: sqlite driver needs a DSN", ErrInvalidStorageConfigs)
		}
	case "badger":
		if s.Badger.Dir == "" && !s.Badger.InMemory {
			return fmt.Errorf("%w: badger driver needs a directory or in-memory mode", ErrInvalidStorageConfigs)
		}
	}
	return nil
}

func (a App) validate() error {
	if a.StorageTag == "" {
		return fmt.Errorf("%w: empty storage tag", ErrInvalidAppConfigs)
	}
	if !oneOf(a.Cipher, ciphers) {
		return fmt.Errorf("%w: unknown cipher %q", ErrInvalidAppConfigs, a.Cipher)
	}
	if !oneOf(a.CipherPolicy, policies) {
		return fmt.Errorf("%w: unknown cipher policy %q", ErrInvalidAppConfigs, a.CipherPolicy)
	}
	if a.MaxRecordSize < MinRecordSize {
		return fmt.Errorf("%w: max record size %d is below %d", ErrInvalidAppConfigs, a.MaxRecordSize, MinRecordSize)
	}
	if a.MaxPayloadSize < 0 {
		return fmt.Errorf("%w: negative max payload size", ErrInvalidAppConfigs)
	}
	return nil
}

func oneOf(v string, allowed []string) bool {
	v = strings.ToLower(v)
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}
