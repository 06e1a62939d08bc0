package persistence

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandle_SwapAndRebuild(t *testing.T) {
	ctx := context.Background()
	backend := newMemoryBackend(t)

	first, err := testBuilder(backend, "salt-A", nil).Build()
	require.NoError(t, err)
	h := NewHandle(first)

	require.True(t, h.Put(ctx, "k", "v"))
	assert.Equal(t, "v", h.Get(ctx, "k"))
	assert.True(t, h.Contains(ctx, "k"))
	assert.Equal(t, 1, h.Count(ctx))

	second, err := testBuilder(backend, "salt-B", nil).Build()
	require.NoError(t, err)
	old, err := h.Swap(second)
	require.NoError(t, err)
	assert.Same(t, first, old)
	assert.Same(t, second, h.Current())

	// The new key can not open values of the old one.
	assert.Nil(t, h.Get(ctx, "k"))

	require.NoError(t, h.Rebuild(testBuilder(backend, "salt-A", nil)))
	got, ok := Get[string](ctx, h, "k")
	require.True(t, ok)
	assert.Equal(t, "v", got)

	_, err = h.Swap(nil)
	assert.ErrorIs(t, err, ErrNilFacade)
}

func TestHandle_FailedRebuildKeepsFacade(t *testing.T) {
	f, _, _ := newTestFacade(t)
	h := NewHandle(f)

	err := h.Rebuild(NewBuilder(nil, "Data"))
	assert.ErrorIs(t, err, ErrNilBackend)
	assert.Same(t, f, h.Current())
}

func TestHandle_SwapDuringOperations(t *testing.T) {
	ctx := context.Background()
	backend := newMemoryBackend(t)

	f, err := testBuilder(backend, "secret", nil).Build()
	require.NoError(t, err)
	h := NewHandle(f)

	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 50 {
				assert.True(t, h.Put(ctx, "k", "v"))
				assert.Equal(t, "v", h.Get(ctx, "k"))
			}
		}()
	}
	for range 10 {
		require.NoError(t, h.Rebuild(testBuilder(backend, "secret", nil)))
	}
	wg.Wait()

	h.With(func(f *Facade) {
		assert.Equal(t, "v", f.Get(ctx, "k"))
	})
	assert.True(t, h.Delete(ctx, "k"))
	assert.True(t, h.DeleteKeysWithPrefix(ctx, ""))
	assert.True(t, h.DeleteAll(ctx))
	assert.NoError(t, h.Close())
}
