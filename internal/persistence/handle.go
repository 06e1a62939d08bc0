package persistence

import (
	"context"
	"errors"
	"sync"
)

var ErrNilFacade = errors.New("facade must not be nil")

// Handle owns the active [Facade] and lets it be replaced while in use.
// Operations hold the read lock for their whole duration; Swap and Rebuild
// take the write lock, so a swap waits for in-flight operations and no
// operation ever sees two configurations.
type Handle struct {
	mu     sync.RWMutex
	facade *Facade
}

func NewHandle(f *Facade) *Handle {
	return &Handle{facade: f}
}

// With runs fn against the active facade under the read lock. fn must not
// call Swap or Rebuild on the same handle.
func (h *Handle) With(fn func(f *Facade)) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	fn(h.facade)
}

// Current returns the active facade. Callers holding on to it across a swap
// keep using the old configuration.
func (h *Handle) Current() *Facade {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.facade
}

// Swap installs f and returns the previous facade. The previous facade is
// not closed since both usually share one backend.
func (h *Handle) Swap(f *Facade) (*Facade, error) {
	if f == nil {
		return nil, ErrNilFacade
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	old := h.facade
	h.facade = f
	return old, nil
}

// Rebuild builds a facade from b and swaps it in. On a build error the
// active facade stays in place.
func (h *Handle) Rebuild(b *Builder) error {
	f, err := b.Build()
	if err != nil {
		return err
	}
	_, err = h.Swap(f)
	return err
}

func (h *Handle) Put(ctx context.Context, key string, value any) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.facade.Put(ctx, key, value)
}

func (h *Handle) Get(ctx context.Context, key string) any {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.facade.Get(ctx, key)
}

func (h *Handle) GetE(ctx context.Context, key string) (any, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.facade.GetE(ctx, key)
}

func (h *Handle) Contains(ctx context.Context, key string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.facade.Contains(ctx, key)
}

func (h *Handle) Delete(ctx context.Context, key string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.facade.Delete(ctx, key)
}

func (h *Handle) DeleteAll(ctx context.Context) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.facade.DeleteAll(ctx)
}

func (h *Handle) DeleteKeysWithPrefix(ctx context.Context, prefix string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.facade.DeleteKeysWithPrefix(ctx, prefix)
}

func (h *Handle) Count(ctx context.Context) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.facade.Count(ctx)
}

// Close closes the active facade.
func (h *Handle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.facade.Close()
}
