package persistence

import "sync"

// keyLocks hands out one RWMutex per key and frees it when the last holder
// is done, so the map only holds keys with in-flight operations.
type keyLocks struct {
	mu    sync.Mutex
	locks map[string]*keyLock
}

type keyLock struct {
	sync.RWMutex
	refs int
}

func newKeyLocks() *keyLocks {
	return &keyLocks{locks: make(map[string]*keyLock)}
}

func (l *keyLocks) acquire(key string) *keyLock {
	l.mu.Lock()
	defer l.mu.Unlock()

	kl, ok := l.locks[key]
	if !ok {
		kl = &keyLock{}
		l.locks[key] = kl
	}
	kl.refs++
	return kl
}

func (l *keyLocks) release(key string, kl *keyLock) {
	l.mu.Lock()
	defer l.mu.Unlock()

	kl.refs--
	if kl.refs == 0 {
		delete(l.locks, key)
	}
}

// lock takes the exclusive lock of key and returns its unlock func.
func (l *keyLocks) lock(key string) func() {
	kl := l.acquire(key)
	kl.Lock()
	return func() {
		kl.Unlock()
		l.release(key, kl)
	}
}

// rlock takes the shared lock of key and returns its unlock func.
func (l *keyLocks) rlock(key string) func() {
	kl := l.acquire(key)
	kl.RLock()
	return func() {
		kl.RUnlock()
		l.release(key, kl)
	}
}

func (l *keyLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
