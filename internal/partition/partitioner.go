// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package partition

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"golang.org/x/sync/errgroup"

	"github.com/MKhiriev/go-vault-store/internal/codec"
	"github.com/MKhiriev/go-vault-store/internal/logger"
	"github.com/MKhiriev/go-vault-store/internal/store"
	"github.com/MKhiriev/go-vault-store/internal/utils"
	"github.com/MKhiriev/go-vault-store/models"
)

const (
	// DefaultMaxRecordSize is the encoded record length above which a plain
	// value is chunked.
	DefaultMaxRecordSize = 100_000

	// recordOverhead approximates the JSON envelope around a chunk's
	// base64 ciphertext.
	recordOverhead = 128
	minChunkBytes  = 64
)

// Partitioner writes and reads multi-record values. It does no locking;
// callers serialize access per base key.
type Partitioner struct {
	codec         codec.Codec
	backend       store.Backend
	ids           utils.IDGenerator
	parallel      bool
	maxRecordSize int
	logger        *logger.Logger
}

type Option func(*Partitioner)

// WithParallel makes every partition set be written and read concurrently,
// not only those of values implementing [models.ParallelPartitioned].
func WithParallel(parallel bool) Option {
	return func(p *Partitioner) { p.parallel = parallel }
}

// WithMaxRecordSize sets the chunking threshold. Values <= 0 keep the default.
func WithMaxRecordSize(n int) Option {
	return func(p *Partitioner) {
		if n > 0 {
			p.maxRecordSize = n
		}
	}
}

func WithIDGenerator(g utils.IDGenerator) Option {
	return func(p *Partitioner) { p.ids = g }
}

func WithLogger(l *logger.Logger) Option {
	return func(p *Partitioner) { p.logger = l }
}

func New(c codec.Codec, b store.Backend, opts ...Option) *Partitioner {
	p := &Partitioner{
		codec:         c,
		backend:       b,
		ids:           utils.NewUUIDGenerator(),
		maxRecordSize: DefaultMaxRecordSize,
		logger:        logger.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

var partitionedType = reflect.TypeFor[models.Partitioned]()

// SupportsPartitioning reports whether value is stored as a partition set.
// A T whose pointer implements [models.Partitioned] qualifies too; it is
// copied into a fresh *T.
func (p *Partitioner) SupportsPartitioning(value any) (models.Partitioned, bool) {
	pv, ok := value.(models.Partitioned)
	if !ok {
		if pv, ok = addressable(value); !ok {
			return nil, false
		}
	}
	if t, ok := pv.(models.PartitionToggle); ok && !t.PartitioningEnabled() {
		return nil, false
	}
	return pv, true
}

func addressable(value any) (models.Partitioned, bool) {
	if value == nil {
		return nil, false
	}
	t := reflect.TypeOf(value)
	if t.Kind() == reflect.Pointer || !reflect.PointerTo(t).Implements(partitionedType) {
		return nil, false
	}
	ptr := reflect.New(t)
	ptr.Elem().Set(reflect.ValueOf(value))
	return ptr.Interface().(models.Partitioned), true
}

// PartitionCount returns the member count recorded in the manifest at key.
// It fails with [models.ErrKeyNotFound] when key is absent and with a
// [models.PartitionIntegrityError] when key does not hold a manifest.
func (p *Partitioner) PartitionCount(ctx context.Context, key string) (int, error) {
	m, err := p.ReadManifest(ctx, key)
	if err != nil {
		return 0, err
	}
	return m.Count, nil
}

// ReadManifest loads and opens the manifest stored at key.
func (p *Partitioner) ReadManifest(ctx context.Context, key string) (models.Manifest, error) {
	raw, ok, err := p.backend.Get(ctx, key)
	if err != nil {
		return models.Manifest{}, err
	}
	if !ok {
		return models.Manifest{}, models.ErrKeyNotFound
	}
	rec, err := models.DecodeRecord(raw)
	if err != nil {
		return models.Manifest{}, err
	}
	if !rec.IsManifest() {
		return models.Manifest{}, &models.PartitionIntegrityError{Key: key, Index: -1, Err: errors.New("base record is not a manifest")}
	}
	return p.codec.DecodeManifest(rec)
}

// WritePartition encodes data and stores it as member i of key's set.
func (p *Partitioner) WritePartition(ctx context.Context, key, generation string, i int, data any) error {
	rec, err := p.codec.ToRecord(data)
	if err != nil {
		return err
	}
	rec.Generation = generation
	encoded, err := models.EncodeRecord(rec)
	if err != nil {
		return err
	}
	return p.backend.Put(ctx, Key(key, i), encoded)
}

// ReadPartition loads member i of key's set and decodes it. A missing
// member or one from another generation is a [models.PartitionIntegrityError].
func (p *Partitioner) ReadPartition(ctx context.Context, key, generation string, i int) (any, error) {
	rec, err := p.readMember(ctx, key, generation, i)
	if err != nil {
		return nil, err
	}
	return p.codec.FromRecord(rec)
}

// Write stores value as a partition set under key. Members are written
// first and the manifest last, so a reader either sees the new manifest with
// all members present or the key is absent. Any failure rolls the whole set
// back, including the base key.
func (p *Partitioner) Write(ctx context.Context, key string, value models.Partitioned) error {
	kind, err := p.kindOf(value)
	if err != nil {
		return err
	}

	count := value.PartitionCount()
	if count < 0 {
		return &models.PartitionIntegrityError{Key: key, Index: -1, Err: fmt.Errorf("negative partition count %d", count)}
	}

	data := make([]any, count)
	for i := range data {
		data[i] = value.Partition(i)
	}

	previous := p.previousCount(ctx, key)
	generation := p.ids.Generate()

	err = p.forEach(ctx, count, p.parallelFor(value), func(ctx context.Context, i int) error {
		if err := p.WritePartition(ctx, key, generation, i, data[i]); err != nil {
			return &models.PartitionIntegrityError{Key: key, Index: i, Err: err}
		}
		return nil
	})
	if err == nil {
		err = p.commit(ctx, key, models.Manifest{Kind: kind, Count: count, Generation: generation})
	}
	if err != nil {
		p.rollback(ctx, key, max(count, previous))
		return err
	}

	p.removeStale(ctx, key, count, previous)
	return nil
}

// Read rebuilds the partitioned value described by m. The result is the
// value (not a pointer) of the registered kind.
func (p *Partitioner) Read(ctx context.Context, key string, m models.Manifest) (any, error) {
	t, err := p.codec.Registry().Resolve(m.Kind)
	if err != nil {
		return nil, err
	}

	ptr := reflect.New(t)
	target, ok := ptr.Interface().(models.Partitioned)
	if !ok {
		return nil, &models.TypeResolutionError{Name: m.Kind, Err: errors.New("kind does not implement partitioning")}
	}

	parts := make([]any, m.Count)
	err = p.forEach(ctx, m.Count, p.parallelFor(target), func(ctx context.Context, i int) error {
		data, err := p.ReadPartition(ctx, key, m.Generation, i)
		if err != nil {
			return err
		}
		parts[i] = data
		return nil
	})
	if err != nil {
		return nil, err
	}

	for i, data := range parts {
		if err := target.SetPartition(i, data); err != nil {
			return nil, &models.PartitionIntegrityError{Key: key, Index: i, Err: err}
		}
	}
	return ptr.Elem().Interface(), nil
}

// Remove deletes members 0..count-1 of key. The base key is left alone.
func (p *Partitioner) Remove(ctx context.Context, key string, count int) error {
	for i := range count {
		if err := p.backend.Delete(ctx, Key(key, i)); err != nil {
			return err
		}
	}
	return nil
}

// RemoveByScan deletes every member key of key found in the backend. It is
// used when the manifest can not be opened and the count is unknown.
func (p *Partitioner) RemoveByScan(ctx context.Context, key string) error {
	keys, err := p.backend.Keys(ctx)
	if err != nil {
		return err
	}
	for _, k := range keys {
		if base, _, ok := ParseMemberKey(k); ok && base == key {
			if err := p.backend.Delete(ctx, k); err != nil {
				return err
			}
		}
	}
	return nil
}

func (p *Partitioner) kindOf(value any) (string, error) {
	t := reflect.TypeOf(value)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	kind, err := p.codec.Registry().NameOf(t)
	if err != nil {
		return "", err
	}
	if _, ok := reflect.New(t).Interface().(models.Partitioned); !ok {
		return "", &models.TypeResolutionError{Name: kind, Err: errors.New("SetPartition must be defined on the pointer receiver")}
	}
	return kind, nil
}

func (p *Partitioner) parallelFor(value any) bool {
	if pp, ok := value.(models.ParallelPartitioned); ok && pp.PartitionsParallel() {
		return true
	}
	return p.parallel
}

// forEach runs fn for 0..n-1, concurrently when parallel is set, and
// returns the first error.
func (p *Partitioner) forEach(ctx context.Context, n int, parallel bool, fn func(ctx context.Context, i int) error) error {
	if !parallel {
		for i := range n {
			if err := fn(ctx, i); err != nil {
				return err
			}
		}
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	for i := range n {
		g.Go(func() error { return fn(gctx, i) })
	}
	return g.Wait()
}

func (p *Partitioner) readMember(ctx context.Context, key, generation string, i int) (models.Record, error) {
	raw, ok, err := p.backend.Get(ctx, Key(key, i))
	if err != nil {
		return models.Record{}, &models.PartitionIntegrityError{Key: key, Index: i, Err: err}
	}
	if !ok {
		return models.Record{}, &models.PartitionIntegrityError{Key: key, Index: i, Err: models.ErrKeyNotFound}
	}
	rec, err := models.DecodeRecord(raw)
	if err != nil {
		return models.Record{}, &models.PartitionIntegrityError{Key: key, Index: i, Err: err}
	}
	if rec.Generation != generation {
		return models.Record{}, &models.PartitionIntegrityError{
			Key:   key,
			Index: i,
			Err:   fmt.Errorf("generation %q does not match manifest %q", rec.Generation, generation),
		}
	}
	return rec, nil
}

func (p *Partitioner) commit(ctx context.Context, key string, m models.Manifest) error {
	rec, err := p.codec.EncodeManifest(m)
	if err != nil {
		return &models.PartitionIntegrityError{Key: key, Index: -1, Err: err}
	}
	encoded, err := models.EncodeRecord(rec)
	if err != nil {
		return &models.PartitionIntegrityError{Key: key, Index: -1, Err: err}
	}
	if err := p.backend.Put(ctx, key, encoded); err != nil {
		return &models.PartitionIntegrityError{Key: key, Index: -1, Err: err}
	}
	return nil
}

// previousCount returns the member count of the manifest currently at key,
// or 0 when there is none or it can not be opened.
func (p *Partitioner) previousCount(ctx context.Context, key string) int {
	m, err := p.ReadManifest(ctx, key)
	if err != nil {
		return 0
	}
	return m.Count
}

// rollback deletes members 0..n-1 and the base key. It ignores ctx
// cancellation so a cancelled write still cleans up.
func (p *Partitioner) rollback(ctx context.Context, key string, n int) {
	ctx = context.WithoutCancel(ctx)
	for i := range n {
		if err := p.backend.Delete(ctx, Key(key, i)); err != nil {
			p.logger.Err(err).Str("func", "Partitioner.rollback").Str("key", Key(key, i)).Msg("rollback left a member behind")
		}
	}
	if err := p.backend.Delete(ctx, key); err != nil {
		p.logger.Err(err).Str("func", "Partitioner.rollback").Str("key", key).Msg("rollback left the base key behind")
	}
}

// removeStale deletes members from..to-1 left by a larger previous set.
// Failures only leave unreachable records and are logged.
func (p *Partitioner) removeStale(ctx context.Context, key string, from, to int) {
	for i := from; i < to; i++ {
		if err := p.backend.Delete(ctx, Key(key, i)); err != nil {
			p.logger.Warn().Err(err).Str("func", "Partitioner.removeStale").Str("key", Key(key, i)).Msg("stale member not removed")
		}
	}
}
