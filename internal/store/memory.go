package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/MKhiriev/go-vault-store/models"
)

type memoryBackend struct {
	path     string
	inMemory bool

	mu     sync.RWMutex
	items  map[string]string
	closed bool
}

type memoryPersistedState struct {
	Items map[string]string `json:"items"`
}

// NewMemoryBackend returns a map-backed Backend. When path is non-empty the
// map is loaded from that JSON file and rewritten after every mutation.
func NewMemoryBackend(path string) (Backend, error) {
	s := &memoryBackend{
		path:     path,
		inMemory: path == "" || path == ":memory:",
		items:    make(map[string]string),
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *memoryBackend) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return "", false, &models.BackendError{Op: "get", Key: key, Err: ErrBackendClosed}
	}
	v, ok := s.items[key]
	return v, ok, nil
}

func (s *memoryBackend) Put(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return &models.BackendError{Op: "put", Key: key, Err: ErrBackendClosed}
	}
	prev, had := s.items[key]
	s.items[key] = value
	if err := s.persist(); err != nil {
		if had {
			s.items[key] = prev
		} else {
			delete(s.items, key)
		}
		return &models.BackendError{Op: "put", Key: key, Err: err}
	}
	return nil
}

func (s *memoryBackend) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return &models.BackendError{Op: "delete", Key: key, Err: ErrBackendClosed}
	}
	prev, had := s.items[key]
	if !had {
		return nil
	}
	delete(s.items, key)
	if err := s.persist(); err != nil {
		s.items[key] = prev
		return &models.BackendError{Op: "delete", Key: key, Err: err}
	}
	return nil
}

func (s *memoryBackend) DeleteAll(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return &models.BackendError{Op: "delete_all", Err: ErrBackendClosed}
	}
	prev := s.items
	s.items = make(map[string]string)
	if err := s.persist(); err != nil {
		s.items = prev
		return &models.BackendError{Op: "delete_all", Err: err}
	}
	return nil
}

func (s *memoryBackend) DeleteWithPrefix(_ context.Context, prefix string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, &models.BackendError{Op: "delete_prefix", Key: prefix, Err: ErrBackendClosed}
	}
	removed := make(map[string]string)
	for k, v := range s.items {
		if strings.HasPrefix(k, prefix) {
			removed[k] = v
			delete(s.items, k)
		}
	}
	if len(removed) == 0 {
		return 0, nil
	}
	if err := s.persist(); err != nil {
		for k, v := range removed {
			s.items[k] = v
		}
		return 0, &models.BackendError{Op: "delete_prefix", Key: prefix, Err: err}
	}
	return len(removed), nil
}

func (s *memoryBackend) Keys(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, &models.BackendError{Op: "keys", Err: ErrBackendClosed}
	}
	keys := make([]string, 0, len(s.items))
	for k := range s.items {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *memoryBackend) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	return nil
}

func (s *memoryBackend) load() error {
	if s.inMemory {
		return nil
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read memory storage file: %w", err)
	}

	var st memoryPersistedState
	if err = json.Unmarshal(data, &st); err != nil {
		return fmt.Errorf("decode memory storage file: %w", err)
	}

	if st.Items != nil {
		s.items = st.Items
	}
	return nil
}

// persist must be called with s.mu held for writing.
func (s *memoryBackend) persist() error {
	if s.inMemory {
		return nil
	}

	dir := filepath.Dir(s.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create memory storage dir: %w", err)
		}
	}

	payload, err := json.MarshalIndent(memoryPersistedState{Items: s.items}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode memory storage: %w", err)
	}

	// write-then-rename keeps the previous file intact if the write fails
	tmp := s.path + ".tmp"
	if err = os.WriteFile(tmp, payload, 0o600); err != nil {
		return fmt.Errorf("write memory storage file: %w", err)
	}
	if err = os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace memory storage file: %w", err)
	}

	return nil
}
