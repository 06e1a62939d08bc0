package partition

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MKhiriev/go-vault-store/internal/codec"
	"github.com/MKhiriev/go-vault-store/internal/crypto"
	"github.com/MKhiriev/go-vault-store/internal/mock"
	"github.com/MKhiriev/go-vault-store/internal/parser"
	"github.com/MKhiriev/go-vault-store/internal/store"
	"github.com/MKhiriev/go-vault-store/internal/utils"
	"github.com/MKhiriev/go-vault-store/models"
)

// album spreads its fields over four partitions of different shapes.
type album struct {
	Title   string
	Tracks  []string
	Ratings map[string]int
	Tags    map[string]struct{}
}

func (a album) PartitionCount() int { return 4 }

func (a album) Partition(i int) any {
	switch i {
	case 0:
		return a.Title
	case 1:
		return a.Tracks
	case 2:
		return a.Ratings
	case 3:
		return a.Tags
	}
	return nil
}

func (a *album) SetPartition(i int, data any) error {
	var ok bool
	switch i {
	case 0:
		a.Title, ok = data.(string)
	case 1:
		a.Tracks, ok = data.([]string)
	case 2:
		a.Ratings, ok = data.(map[string]int)
	case 3:
		a.Tags, ok = data.(map[string]struct{})
	}
	if !ok {
		return fmt.Errorf("partition %d: unexpected %T", i, data)
	}
	return nil
}

// pages has one partition per page.
type pages struct {
	Items    []string
	Parallel bool
	Disabled bool
}

func (p pages) PartitionCount() int       { return len(p.Items) }
func (p pages) Partition(i int) any       { return p.Items[i] }
func (p pages) PartitionsParallel() bool  { return p.Parallel }
func (p pages) PartitioningEnabled() bool { return !p.Disabled }

func (p *pages) SetPartition(i int, data any) error {
	s, ok := data.(string)
	if !ok {
		return fmt.Errorf("unexpected %T", data)
	}
	p.Items = append(p.Items, s)
	return nil
}

type unregistered struct{ pages }

var errBoom = errors.New("disk full")

func newTestCodec(t *testing.T) codec.Codec {
	t.Helper()
	reg := codec.NewRegistry()
	codec.MustRegister[album](reg, "album")
	codec.MustRegister[pages](reg, "pages")
	return codec.New(parser.NewJSONParser(), crypto.NewNoopCipher(), reg)
}

func newTestPartitioner(t *testing.T, opts ...Option) (*Partitioner, store.Backend) {
	t.Helper()
	b, err := store.NewMemoryBackend("")
	require.NoError(t, err)
	return New(newTestCodec(t), b, opts...), b
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "user#3", Key("user", 3))

	assert.NoError(t, ValidateKey("user.1"))
	assert.ErrorIs(t, ValidateKey(""), models.ErrInvalidKey)
	assert.ErrorIs(t, ValidateKey("a#b"), models.ErrInvalidKey)

	assert.True(t, IsMemberKey("a#0"))
	assert.False(t, IsMemberKey("a"))

	tests := []struct {
		key   string
		base  string
		index int
		ok    bool
	}{
		{"a#0", "a", 0, true},
		{"user.1#12", "user.1", 12, true},
		{"a#x", "", 0, false},
		{"a#-1", "", 0, false},
		{"#1", "", 0, false},
		{"plain", "", 0, false},
	}
	for _, tt := range tests {
		base, index, ok := ParseMemberKey(tt.key)
		assert.Equal(t, tt.ok, ok, tt.key)
		assert.Equal(t, tt.base, base, tt.key)
		assert.Equal(t, tt.index, index, tt.key)
	}
}

func TestPartitioner_WriteRead(t *testing.T) {
	value := album{
		Title:   "Blue",
		Tracks:  []string{"All I Want", "My Old Man"},
		Ratings: map[string]int{"critic": 5, "fan": 4},
		Tags:    map[string]struct{}{"folk": {}, "1971": {}},
	}

	for _, parallel := range []bool{false, true} {
		t.Run(fmt.Sprintf("parallel=%v", parallel), func(t *testing.T) {
			ctx := context.Background()
			p, b := newTestPartitioner(t, WithParallel(parallel))

			pv, ok := p.SupportsPartitioning(value)
			require.True(t, ok)
			require.NoError(t, p.Write(ctx, "a", pv))

			keys, err := b.Keys(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"a", "a#0", "a#1", "a#2", "a#3"}, keys)

			count, err := p.PartitionCount(ctx, "a")
			require.NoError(t, err)
			assert.Equal(t, 4, count)

			m, err := p.ReadManifest(ctx, "a")
			require.NoError(t, err)
			assert.Equal(t, "album", m.Kind)
			assert.False(t, m.Chunked())

			got, err := p.Read(ctx, "a", m)
			require.NoError(t, err)
			assert.Equal(t, value, got)
		})
	}
}

func TestPartitioner_ValueOptsIntoParallel(t *testing.T) {
	ctx := context.Background()
	p, _ := newTestPartitioner(t)

	value := &pages{Items: []string{"a", "b", "c", "d", "e", "f"}, Parallel: true}
	require.NoError(t, p.Write(ctx, "book", value))

	m, err := p.ReadManifest(ctx, "book")
	require.NoError(t, err)
	got, err := p.Read(ctx, "book", m)
	require.NoError(t, err)
	assert.Equal(t, value.Items, got.(pages).Items)
}

func TestPartitioner_SupportsPartitioning(t *testing.T) {
	p, _ := newTestPartitioner(t)

	_, ok := p.SupportsPartitioning(pages{Items: []string{"a"}})
	assert.True(t, ok)
	_, ok = p.SupportsPartitioning(&pages{})
	assert.True(t, ok)
	_, ok = p.SupportsPartitioning(pages{Disabled: true})
	assert.False(t, ok)
	_, ok = p.SupportsPartitioning("plain")
	assert.False(t, ok)
	_, ok = p.SupportsPartitioning(nil)
	assert.False(t, ok)
}

func TestPartitioner_SupportsPartitioningCopiesValues(t *testing.T) {
	p, _ := newTestPartitioner(t)

	value := pages{Items: []string{"a", "b"}}
	pv, ok := p.SupportsPartitioning(value)
	require.True(t, ok)

	ptr, ok := pv.(*pages)
	require.True(t, ok)
	assert.Equal(t, value, *ptr)

	assert.NotSame(t, &value, ptr)

	same := &pages{Items: []string{"x"}}
	pv, ok = p.SupportsPartitioning(same)
	require.True(t, ok)
	assert.Same(t, same, pv)
}

func TestPartitioner_WriteValue(t *testing.T) {
	ctx := context.Background()
	p, b := newTestPartitioner(t)

	pv, ok := p.SupportsPartitioning(pages{Items: []string{"1", "2", "3"}})
	require.True(t, ok)
	require.NoError(t, p.Write(ctx, "book", pv))

	keys, err := b.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"book", "book#0", "book#1", "book#2"}, keys)

	m, err := p.ReadManifest(ctx, "book")
	require.NoError(t, err)
	got, err := p.Read(ctx, "book", m)
	require.NoError(t, err)
	assert.Equal(t, pages{Items: []string{"1", "2", "3"}}, got)
}

func TestPartitioner_WriteRemovesStaleMembers(t *testing.T) {
	ctx := context.Background()
	p, b := newTestPartitioner(t)

	require.NoError(t, p.Write(ctx, "book", &pages{Items: []string{"1", "2", "3", "4", "5"}}))
	require.NoError(t, p.Write(ctx, "book", &pages{Items: []string{"x", "y"}}))

	keys, err := b.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"book", "book#0", "book#1"}, keys)

	m, err := p.ReadManifest(ctx, "book")
	require.NoError(t, err)
	got, err := p.Read(ctx, "book", m)
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, got.(pages).Items)
}

func TestPartitioner_WriteUnregisteredKind(t *testing.T) {
	p, _ := newTestPartitioner(t)

	err := p.Write(context.Background(), "k", &unregistered{pages{Items: []string{"a"}}})
	assert.ErrorIs(t, err, models.ErrTypeResolution)
}

func TestPartitioner_WriteRollsBackOnMemberFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	b := mock.NewMockBackend(ctrl)
	p := New(newTestCodec(t), b, WithIDGenerator(utils.NewSequenceGenerator("g1")))

	gomock.InOrder(
		b.EXPECT().Get(gomock.Any(), "k").Return("", false, nil),
		b.EXPECT().Put(gomock.Any(), "k#0", gomock.Any()).Return(nil),
		b.EXPECT().Put(gomock.Any(), "k#1", gomock.Any()).Return(errBoom),
		b.EXPECT().Delete(gomock.Any(), "k#0").Return(nil),
		b.EXPECT().Delete(gomock.Any(), "k#1").Return(nil),
		b.EXPECT().Delete(gomock.Any(), "k#2").Return(nil),
		b.EXPECT().Delete(gomock.Any(), "k").Return(nil),
	)

	err := p.Write(context.Background(), "k", &pages{Items: []string{"a", "b", "c"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrPartitionIntegrity)
	assert.ErrorIs(t, err, errBoom)

	var pie *models.PartitionIntegrityError
	require.ErrorAs(t, err, &pie)
	assert.Equal(t, 1, pie.Index)
}

func TestPartitioner_WriteRollsBackOnManifestFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	b := mock.NewMockBackend(ctrl)
	p := New(newTestCodec(t), b)

	gomock.InOrder(
		b.EXPECT().Get(gomock.Any(), "k").Return("", false, nil),
		b.EXPECT().Put(gomock.Any(), "k#0", gomock.Any()).Return(nil),
		b.EXPECT().Put(gomock.Any(), "k", gomock.Any()).Return(errBoom),
		b.EXPECT().Delete(gomock.Any(), "k#0").Return(nil),
		b.EXPECT().Delete(gomock.Any(), "k").Return(nil),
	)

	err := p.Write(context.Background(), "k", &pages{Items: []string{"a"}})
	assert.ErrorIs(t, err, models.ErrPartitionIntegrity)

	var pie *models.PartitionIntegrityError
	require.ErrorAs(t, err, &pie)
	assert.Equal(t, -1, pie.Index)
}

func TestPartitioner_ReadMissingMember(t *testing.T) {
	ctx := context.Background()
	p, b := newTestPartitioner(t)

	require.NoError(t, p.Write(ctx, "book", &pages{Items: []string{"1", "2", "3"}}))
	require.NoError(t, b.Delete(ctx, "book#1"))

	m, err := p.ReadManifest(ctx, "book")
	require.NoError(t, err)
	_, err = p.Read(ctx, "book", m)
	assert.ErrorIs(t, err, models.ErrPartitionIntegrity)
	assert.ErrorIs(t, err, models.ErrKeyNotFound)
}

func TestPartitioner_ReadForeignGeneration(t *testing.T) {
	ctx := context.Background()
	p, b := newTestPartitioner(t, WithIDGenerator(utils.NewSequenceGenerator("g1", "g2")))

	require.NoError(t, p.Write(ctx, "book", &pages{Items: []string{"1", "2"}}))
	old, ok, err := b.Get(ctx, "book#1")
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, p.Write(ctx, "book", &pages{Items: []string{"3", "4"}}))
	require.NoError(t, b.Put(ctx, "book#1", old))

	m, err := p.ReadManifest(ctx, "book")
	require.NoError(t, err)
	assert.Equal(t, "g2", m.Generation)

	_, err = p.ReadPartition(ctx, "book", m.Generation, 1)
	assert.ErrorIs(t, err, models.ErrPartitionIntegrity)

	var pie *models.PartitionIntegrityError
	require.ErrorAs(t, err, &pie)
	assert.Equal(t, 1, pie.Index)
}

func TestPartitioner_PartitionCount(t *testing.T) {
	ctx := context.Background()
	p, b := newTestPartitioner(t)

	_, err := p.PartitionCount(ctx, "missing")
	assert.ErrorIs(t, err, models.ErrKeyNotFound)

	rec, err := newTestCodec(t).ToRecord("plain")
	require.NoError(t, err)
	encoded, err := models.EncodeRecord(rec)
	require.NoError(t, err)
	require.NoError(t, b.Put(ctx, "plain", encoded))

	_, err = p.PartitionCount(ctx, "plain")
	assert.ErrorIs(t, err, models.ErrPartitionIntegrity)
}

func TestPartitioner_Chunks(t *testing.T) {
	ctx := context.Background()
	p, b := newTestPartitioner(t, WithMaxRecordSize(512))
	c := newTestCodec(t)

	value := strings.Repeat("0123456789", 500)
	rec, err := c.ToRecord(value)
	require.NoError(t, err)
	encoded, err := models.EncodeRecord(rec)
	require.NoError(t, err)
	require.True(t, p.NeedsChunking(encoded))
	assert.Equal(t, 288, p.ChunkSize())

	require.NoError(t, p.WriteChunks(ctx, "big", rec))

	keys, err := b.Keys(ctx)
	require.NoError(t, err)
	for _, k := range keys {
		v, _, err := b.Get(ctx, k)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(v), 512, k)
	}

	m, err := p.ReadManifest(ctx, "big")
	require.NoError(t, err)
	assert.True(t, m.Chunked())
	assert.Equal(t, len(keys)-1, m.Count)

	got, err := p.ReadChunks(ctx, "big", m)
	require.NoError(t, err)
	decoded, err := c.FromRecord(got)
	require.NoError(t, err)
	assert.Equal(t, value, decoded)
}

func TestPartitioner_ReadChunksRejectsPartitionManifest(t *testing.T) {
	p, _ := newTestPartitioner(t)

	_, err := p.ReadChunks(context.Background(), "k", models.Manifest{Kind: "pages", Count: 1, Generation: "g"})
	assert.ErrorIs(t, err, models.ErrPartitionIntegrity)
}

func TestPartitioner_RemoveByScan(t *testing.T) {
	ctx := context.Background()
	p, b := newTestPartitioner(t)

	for _, k := range []string{"a", "a#0", "a#1", "ab#0", "a.b"} {
		require.NoError(t, b.Put(ctx, k, "x"))
	}

	require.NoError(t, p.RemoveByScan(ctx, "a"))

	keys, err := b.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "a.b", "ab#0"}, keys)
}

func TestPartitioner_Remove(t *testing.T) {
	ctx := context.Background()
	p, b := newTestPartitioner(t)

	require.NoError(t, p.Write(ctx, "book", &pages{Items: []string{"1", "2"}}))
	require.NoError(t, p.Remove(ctx, "book", 2))

	keys, err := b.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"book"}, keys)
}
