// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v3"

	"github.com/MKhiriev/go-vault-store/internal/config"
	"github.com/MKhiriev/go-vault-store/internal/logger"
	"github.com/MKhiriev/go-vault-store/models"
)

// BadgerBackend is a Backend over an embedded Badger database.
type BadgerBackend struct {
	db       *badger.DB
	inMemory bool
	logger   *logger.Logger
}

// NewBadgerBackend opens the Badger database described by cfg.
func NewBadgerBackend(cfg config.Badger, log *logger.Logger) (*BadgerBackend, error) {
	if cfg.Dir == "" && !cfg.InMemory {
		return nil, errors.New("badger: dir is required")
	}

	log = log.WithComponent("store.badger")

	opts := badger.DefaultOptions(cfg.Dir)
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts = opts.WithLogger(&badgerLogger{logger: log})

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("badger: open db: %w", err)
	}

	log.Info().
		Str("dir", cfg.Dir).
		Bool("in_memory", cfg.InMemory).
		Msg("badger backend opened")

	return &BadgerBackend{db: db, inMemory: cfg.InMemory, logger: log}, nil
}

func (b *BadgerBackend) Get(_ context.Context, key string) (string, bool, error) {
	var value []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, b.fail("get", key, err)
	}
	return string(value), true, nil
}

func (b *BadgerBackend) Put(_ context.Context, key, value string) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), []byte(value))
	})
	if err != nil {
		return b.fail("put", key, err)
	}
	return nil
}

func (b *BadgerBackend) Delete(_ context.Context, key string) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	if err != nil {
		return b.fail("delete", key, err)
	}
	return nil
}

func (b *BadgerBackend) DeleteAll(_ context.Context) error {
	if err := b.db.DropAll(); err != nil {
		return b.fail("delete_all", "", err)
	}
	return nil
}

// DeleteWithPrefix counts the matching keys with a key-only scan and then
// drops them with Badger's DropPrefix.
func (b *BadgerBackend) DeleteWithPrefix(ctx context.Context, prefix string) (int, error) {
	keys, err := b.scan(ctx, []byte(prefix))
	if err != nil {
		return 0, b.fail("delete_prefix", prefix, err)
	}
	if len(keys) == 0 {
		return 0, nil
	}

	if prefix == "" {
		err = b.db.DropAll()
	} else {
		err = b.db.DropPrefix([]byte(prefix))
	}
	if err != nil {
		return 0, b.fail("delete_prefix", prefix, err)
	}
	return len(keys), nil
}

func (b *BadgerBackend) Keys(ctx context.Context) ([]string, error) {
	keys, err := b.scan(ctx, nil)
	if err != nil {
		return nil, b.fail("keys", "", err)
	}
	return keys, nil
}

func (b *BadgerBackend) scan(ctx context.Context, prefix []byte) ([]string, error) {
	var keys []string
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			keys = append(keys, string(it.Item().KeyCopy(nil)))
		}
		return nil
	})
	return keys, err
}

// RunGC runs value-log garbage collection until Badger reports nothing left
// to rewrite. It is a no-op for in-memory databases.
func (b *BadgerBackend) RunGC(discardRatio float64) (int, error) {
	if b.inMemory {
		return 0, nil
	}

	cycles := 0
	for {
		err := b.db.RunValueLogGC(discardRatio)
		if errors.Is(err, badger.ErrNoRewrite) {
			return cycles, nil
		}
		if err != nil {
			return cycles, fmt.Errorf("badger gc: %w", err)
		}
		cycles++
	}
}

func (b *BadgerBackend) Close() error {
	return b.db.Close()
}

func (b *BadgerBackend) fail(op, key string, err error) error {
	b.logger.Err(err).
		Str("func", "BadgerBackend."+op).
		Str("key", key).
		Msg("badger operation failed")
	return &models.BackendError{Op: op, Key: key, Err: err}
}

// badgerLogger routes Badger's internal logging into zerolog.
type badgerLogger struct {
	logger *logger.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error().Msgf(format, args...)
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn().Msgf(format, args...)
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Info().Msgf(format, args...)
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug().Msgf(format, args...)
}
