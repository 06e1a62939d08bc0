// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package persistence

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/MKhiriev/go-vault-store/internal/codec"
	"github.com/MKhiriev/go-vault-store/internal/crypto"
	"github.com/MKhiriev/go-vault-store/internal/logger"
	"github.com/MKhiriev/go-vault-store/internal/metrics"
	"github.com/MKhiriev/go-vault-store/internal/partition"
	"github.com/MKhiriev/go-vault-store/internal/store"
	"github.com/MKhiriev/go-vault-store/models"
)

// Facade is the typed, encrypted key-value store. It is built by [Builder]
// and immutable afterwards; to change its configuration build a new one and
// swap it in through a [Handle].
//
// Operations on distinct keys run concurrently. Operations on the same key
// are serialized, and a reader never observes a half-written partition set.
// DeleteAll and DeleteKeysWithPrefix exclude every other operation.
//
// Put, Delete and the bulk deletes report failure as false and log the
// cause; Get returns nil and logs. GetE hands the classified error back.
// Absent keys are not failures and are only logged at debug level.
type Facade struct {
	tag         string
	backend     store.Backend
	codec       codec.Codec
	cipher      crypto.Cipher
	fellBack    bool
	partitioner *partition.Partitioner
	logger      *logger.Logger
	metrics     *metrics.Metrics

	bulk  sync.RWMutex
	locks *keyLocks
}

// Put stores value under key and reports whether it succeeded. A nil value
// deletes the key.
func (f *Facade) Put(ctx context.Context, key string, value any) bool {
	if value == nil {
		return f.Delete(ctx, key)
	}

	start := time.Now()
	layout, err := f.put(ctx, key, value)
	if err != nil {
		f.fail("put", key, start, err)
		return false
	}

	f.metrics.RecordWrite(layout)
	f.succeed("put", key, start, metrics.ResultOK)
	return true
}

func (f *Facade) put(ctx context.Context, key string, value any) (string, error) {
	if err := partition.ValidateKey(key); err != nil {
		return "", err
	}

	f.bulk.RLock()
	defer f.bulk.RUnlock()
	defer f.locks.lock(key)()

	if pv, ok := f.partitioner.SupportsPartitioning(value); ok {
		return metrics.LayoutPartitioned, f.partitioner.Write(ctx, key, pv)
	}

	rec, err := f.codec.ToRecord(value)
	if err != nil {
		return "", err
	}
	encoded, err := models.EncodeRecord(rec)
	if err != nil {
		return "", err
	}

	if f.partitioner.NeedsChunking(encoded) {
		return metrics.LayoutChunked, f.partitioner.WriteChunks(ctx, key, rec)
	}

	previous, err := f.manifestAt(ctx, key)
	if err != nil {
		return "", err
	}
	if err := f.backend.Put(ctx, key, encoded); err != nil {
		return "", err
	}
	if previous != nil {
		f.dropMembers(ctx, key, previous)
	}
	return metrics.LayoutSingle, nil
}

// Get returns the value stored under key, or nil when the key is absent or
// can not be read.
func (f *Facade) Get(ctx context.Context, key string) any {
	v, _ := f.GetE(ctx, key)
	return v
}

// GetE is Get with the failure reported to the caller. An absent key yields
// [models.ErrKeyNotFound]; every other error is classified by the
// [models] sentinels.
func (f *Facade) GetE(ctx context.Context, key string) (any, error) {
	start := time.Now()
	v, err := f.get(ctx, key)
	switch {
	case errors.Is(err, models.ErrKeyNotFound):
		f.succeed("get", key, start, metrics.ResultAbsent)
		return nil, err
	case err != nil:
		f.fail("get", key, start, err)
		return nil, err
	}
	f.succeed("get", key, start, metrics.ResultOK)
	return v, nil
}

func (f *Facade) get(ctx context.Context, key string) (any, error) {
	if err := partition.ValidateKey(key); err != nil {
		return nil, err
	}

	f.bulk.RLock()
	defer f.bulk.RUnlock()
	defer f.locks.rlock(key)()

	raw, ok, err := f.backend.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, models.ErrKeyNotFound
	}

	rec, err := models.DecodeRecord(raw)
	if err != nil {
		return nil, err
	}
	if !rec.IsManifest() {
		return f.codec.FromRecord(rec)
	}

	m, err := f.codec.DecodeManifest(rec)
	if err != nil {
		return nil, err
	}
	if !m.Chunked() {
		return f.partitioner.Read(ctx, key, m)
	}

	inner, err := f.partitioner.ReadChunks(ctx, key, m)
	if err != nil {
		return nil, err
	}
	return f.codec.FromRecord(inner)
}

// Contains reports whether key holds a value. It does not decode it.
func (f *Facade) Contains(ctx context.Context, key string) bool {
	if err := partition.ValidateKey(key); err != nil {
		return false
	}

	f.bulk.RLock()
	defer f.bulk.RUnlock()
	defer f.locks.rlock(key)()

	_, ok, err := f.backend.Get(ctx, key)
	if err != nil {
		f.logger.Err(err).Str("func", "Facade.Contains").Str("key", key).Msg("backend lookup failed")
		return false
	}
	return ok
}

// Delete removes key together with every partition or chunk of it. Deleting
// an absent key succeeds.
func (f *Facade) Delete(ctx context.Context, key string) bool {
	start := time.Now()
	if err := f.delete(ctx, key); err != nil {
		f.fail("delete", key, start, err)
		return false
	}
	f.succeed("delete", key, start, metrics.ResultOK)
	return true
}

func (f *Facade) delete(ctx context.Context, key string) error {
	if err := partition.ValidateKey(key); err != nil {
		return err
	}

	f.bulk.RLock()
	defer f.bulk.RUnlock()
	defer f.locks.lock(key)()

	raw, ok, err := f.backend.Get(ctx, key)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	// Members go first so a failure leaves the manifest in place and the
	// delete can be retried. A corrupt base record may have been a
	// manifest, so its members are looked up by name.
	rec, err := models.DecodeRecord(raw)
	switch {
	case err != nil:
		if err := f.partitioner.RemoveByScan(ctx, key); err != nil {
			return err
		}
	case rec.IsManifest():
		if err := f.removeMembers(ctx, key, rec); err != nil {
			return err
		}
	}
	return f.backend.Delete(ctx, key)
}

// DeleteAll removes every key of the backend.
func (f *Facade) DeleteAll(ctx context.Context) bool {
	start := time.Now()

	f.bulk.Lock()
	err := f.backend.DeleteAll(ctx)
	f.bulk.Unlock()

	if err != nil {
		f.fail("delete_all", "", start, err)
		return false
	}
	f.succeed("delete_all", "", start, metrics.ResultOK)
	return true
}

// DeleteKeysWithPrefix removes every key that starts with prefix, byte for
// byte, together with its partitions. Backends without native prefix
// deletion are scanned key by key, so the cost grows with the total number
// of stored records.
func (f *Facade) DeleteKeysWithPrefix(ctx context.Context, prefix string) bool {
	start := time.Now()
	n, err := f.deleteWithPrefix(ctx, prefix)
	if err != nil {
		f.fail("delete_prefix", prefix, start, err)
		return false
	}

	f.logger.Debug().
		Str("func", "Facade.DeleteKeysWithPrefix").
		Str("prefix", prefix).
		Int("records", n).
		Msg("records deleted")
	f.metrics.ObserveOperation("delete_prefix", metrics.ResultOK, time.Since(start))
	return true
}

func (f *Facade) deleteWithPrefix(ctx context.Context, prefix string) (int, error) {
	if strings.Contains(prefix, partition.Delimiter) {
		return 0, fmt.Errorf("%w: prefix %q contains reserved delimiter %q", models.ErrInvalidKey, prefix, partition.Delimiter)
	}

	f.bulk.Lock()
	defer f.bulk.Unlock()

	// Member keys extend their base key, so a prefix matching a base key
	// matches all of its members too.
	if pd, ok := f.backend.(store.PrefixDeleter); ok {
		return pd.DeleteWithPrefix(ctx, prefix)
	}

	keys, err := f.backend.Keys(ctx)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, k := range keys {
		if !strings.HasPrefix(k, prefix) {
			continue
		}
		if err := f.backend.Delete(ctx, k); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// Keys returns the stored logical keys in ascending order. Partition and
// chunk records are not listed.
func (f *Facade) Keys(ctx context.Context) ([]string, error) {
	f.bulk.RLock()
	defer f.bulk.RUnlock()

	all, err := f.backend.Keys(ctx)
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(all))
	for _, k := range all {
		if !partition.IsMemberKey(k) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Count returns the number of logical keys, or -1 when the backend can not
// be enumerated.
func (f *Facade) Count(ctx context.Context) int {
	keys, err := f.Keys(ctx)
	if err != nil {
		f.logger.Err(err).Str("func", "Facade.Count").Msg("backend enumeration failed")
		return -1
	}
	return len(keys)
}

// UsesFallbackCipher reports whether the configured cipher failed to
// initialize and values are stored unencrypted.
func (f *Facade) UsesFallbackCipher() bool { return f.fellBack }

// CipherName returns the name of the cipher in use.
func (f *Facade) CipherName() string { return f.cipher.Name() }

// Tag returns the storage tag the facade was built for.
func (f *Facade) Tag() string { return f.tag }

// Registry returns the type registry of the facade's codec.
func (f *Facade) Registry() *codec.Registry { return f.codec.Registry() }

// Close closes the backend.
func (f *Facade) Close() error {
	f.bulk.Lock()
	defer f.bulk.Unlock()
	return f.backend.Close()
}

// manifestAt returns the record at key when it is a manifest, nil otherwise.
func (f *Facade) manifestAt(ctx context.Context, key string) (*models.Record, error) {
	raw, ok, err := f.backend.Get(ctx, key)
	if err != nil || !ok {
		return nil, err
	}
	rec, err := models.DecodeRecord(raw)
	if err != nil || !rec.IsManifest() {
		return nil, nil
	}
	return &rec, nil
}

func (f *Facade) removeMembers(ctx context.Context, key string, rec models.Record) error {
	m, err := f.codec.DecodeManifest(rec)
	if err != nil {
		// Sealed under another key; find the members by name.
		return f.partitioner.RemoveByScan(ctx, key)
	}
	return f.partitioner.Remove(ctx, key, m.Count)
}

// dropMembers removes the members of a manifest that a single record has
// just replaced. They are unreachable already, so failures are only logged.
func (f *Facade) dropMembers(ctx context.Context, key string, manifest *models.Record) {
	if err := f.removeMembers(ctx, key, *manifest); err != nil {
		f.logger.Warn().Err(err).Str("func", "Facade.dropMembers").Str("key", key).Msg("stale members not removed")
	}
}

func (f *Facade) succeed(op, key string, start time.Time, result string) {
	f.logger.Debug().
		Str("func", "Facade."+op).
		Str("key", key).
		Str("result", result).
		Msg("operation done")
	f.metrics.ObserveOperation(op, result, time.Since(start))
}

func (f *Facade) fail(op, key string, start time.Time, err error) {
	f.logger.Err(err).
		Str("func", "Facade."+op).
		Str("key", key).
		Str("class", classify(err)).
		Msg("operation failed")
	f.metrics.ObserveOperation(op, metrics.ResultError, time.Since(start))
}

// classify names the error class for logs.
func classify(err error) string {
	switch {
	case errors.Is(err, models.ErrInvalidKey):
		return "invalid_key"
	case errors.Is(err, models.ErrPartitionIntegrity):
		return "partition_integrity"
	case errors.Is(err, models.ErrDecryption):
		return "decryption"
	case errors.Is(err, models.ErrTypeResolution):
		return "type_resolution"
	case errors.Is(err, models.ErrSerialization):
		return "serialization"
	case errors.Is(err, models.ErrBackend):
		return "backend"
	}
	return "unknown"
}
