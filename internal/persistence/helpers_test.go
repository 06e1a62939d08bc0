package persistence

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-vault-store/internal/codec"
	"github.com/MKhiriev/go-vault-store/internal/logger"
	"github.com/MKhiriev/go-vault-store/internal/store"
)

type profile struct {
	ID    int      `json:"id"`
	Email string   `json:"email"`
	Roles []string `json:"roles"`
}

// notebook stores one page per partition.
type notebook struct {
	Pages []string
}

func (n notebook) PartitionCount() int { return len(n.Pages) }
func (n notebook) Partition(i int) any { return n.Pages[i] }

func (n *notebook) SetPartition(i int, data any) error {
	s, ok := data.(string)
	if !ok {
		return fmt.Errorf("page %d: unexpected %T", i, data)
	}
	n.Pages = append(n.Pages, s)
	return nil
}

// syncBuffer collects log output from concurrent writers.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

// levels returns the number of log lines per level.
func (b *syncBuffer) levels(t *testing.T) map[string]int {
	t.Helper()
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make(map[string]int)
	for _, line := range strings.Split(strings.TrimSpace(b.buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry), line)
		level, _ := entry["level"].(string)
		out[level]++
	}
	return out
}

func (b *syncBuffer) reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf.Reset()
}

func newTestLogger() (*logger.Logger, *syncBuffer) {
	buf := &syncBuffer{}
	return &logger.Logger{Logger: zerolog.New(buf).Level(zerolog.DebugLevel)}, buf
}

func newTestRegistry() *codec.Registry {
	reg := codec.NewRegistry()
	codec.MustRegister[profile](reg, "profile")
	codec.MustRegister[notebook](reg, "notebook")
	return reg
}

func newMemoryBackend(t *testing.T) store.Backend {
	t.Helper()
	b, err := store.NewMemoryBackend("")
	require.NoError(t, err)
	return b
}

// testBuilder returns a builder with a fast cipher and the test kinds.
func testBuilder(backend store.Backend, salt string, log *logger.Logger) *Builder {
	return NewBuilder(backend, "Data").
		WithSalt(salt).
		WithCipherName("xchacha20").
		WithRegistry(newTestRegistry()).
		WithLogger(log)
}

func newTestFacade(t *testing.T) (*Facade, store.Backend, *syncBuffer) {
	t.Helper()
	backend := newMemoryBackend(t)
	log, buf := newTestLogger()
	f, err := testBuilder(backend, "secret", log).Build()
	require.NoError(t, err)
	buf.reset()
	return f, backend, buf
}

// plainBackend hides the PrefixDeleter implementation of the wrapped backend.
type plainBackend struct {
	store.Backend
}
