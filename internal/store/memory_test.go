package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-vault-store/models"
)

func TestMemoryBackend_PersistsToFile(t *testing.T) {
	ctx := testContext()
	path := filepath.Join(t.TempDir(), "nested", "vault.json")

	b, err := NewMemoryBackend(path)
	require.NoError(t, err)
	require.NoError(t, b.Put(ctx, "a", "1"))
	require.NoError(t, b.Put(ctx, "b", "2"))
	require.NoError(t, b.Delete(ctx, "b"))
	require.NoError(t, b.Close())

	reopened, err := NewMemoryBackend(path)
	require.NoError(t, err)

	v, ok, err := reopened.Get(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "1", v)

	_, ok, err = reopened.Get(ctx, "b")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryBackend_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vault.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := NewMemoryBackend(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode memory storage file")
}

func TestMemoryBackend_WriteFailureRollsBack(t *testing.T) {
	ctx := testContext()
	dir := t.TempDir()
	path := filepath.Join(dir, "vault.json")

	b, err := NewMemoryBackend(path)
	require.NoError(t, err)
	require.NoError(t, b.Put(ctx, "a", "1"))

	// a directory in place of the temp file makes the next write fail
	require.NoError(t, os.Mkdir(path+".tmp", 0o755))

	err = b.Put(ctx, "b", "2")
	assert.ErrorIs(t, err, models.ErrBackend)

	_, ok, err := b.Get(ctx, "b")
	require.NoError(t, err)
	assert.False(t, ok)

	err = b.Delete(ctx, "a")
	assert.ErrorIs(t, err, models.ErrBackend)
	_, ok, err = b.Get(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemoryBackend_Closed(t *testing.T) {
	ctx := testContext()
	b, err := NewMemoryBackend("")
	require.NoError(t, err)
	require.NoError(t, b.Close())

	_, _, err = b.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrBackendClosed)
	_, err = b.Keys(ctx)
	assert.ErrorIs(t, err, ErrBackendClosed)
	assert.ErrorIs(t, b.DeleteAll(ctx), ErrBackendClosed)
	_, err = b.(PrefixDeleter).DeleteWithPrefix(ctx, "k")
	assert.ErrorIs(t, err, ErrBackendClosed)
}
