package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-vault-store/internal/config"
	"github.com/MKhiriev/go-vault-store/internal/logger"
)

func newTestBadger(t *testing.T, cfg config.Badger) *BadgerBackend {
	t.Helper()
	b, err := NewBadgerBackend(cfg, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func TestBadgerBackend_RequiresDir(t *testing.T) {
	_, err := NewBadgerBackend(config.Badger{}, logger.Nop())
	assert.Error(t, err)
}

func TestBadgerBackend_OnDisk(t *testing.T) {
	ctx := testContext()
	dir := t.TempDir()

	b, err := NewBadgerBackend(config.Badger{Dir: dir}, logger.Nop())
	require.NoError(t, err)
	require.NoError(t, b.Put(ctx, "k", "v"))

	cycles, err := b.RunGC(0.5)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, cycles, 0)
	require.NoError(t, b.Close())

	reopened := newTestBadger(t, config.Badger{Dir: dir})
	v, ok, err := reopened.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", v)
}

func TestBadgerBackend_EmptyPrefixDropsAll(t *testing.T) {
	ctx := testContext()
	b := newTestBadger(t, config.Badger{InMemory: true})

	require.NoError(t, b.Put(ctx, "a", "1"))
	require.NoError(t, b.Put(ctx, "b", "2"))

	n, err := b.DeleteWithPrefix(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	keys, err := b.Keys(ctx)
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestBadgerBackend_GCInMemoryIsNoop(t *testing.T) {
	b := newTestBadger(t, config.Badger{InMemory: true})

	cycles, err := b.RunGC(0.5)
	require.NoError(t, err)
	assert.Zero(t, cycles)
}
