// Package workers runs background maintenance for the store, such as value
// log garbage collection of the Badger backend.
//
// A Worker is started with a context and runs until the context is cancelled
// or Stop is called. Workers groups several of them so the CLI can start and
// stop maintenance in one call.
package workers

import "context"

// Worker is the interface implemented by background workers.
//
// Start must return promptly and do the work in its own goroutine. Stop
// blocks until that goroutine has exited and is safe to call on a worker
// that is not running.
type Worker interface {
	Start(ctx context.Context)
	Stop()
}

// GarbageCollector is implemented by backends that reclaim space in the
// background.
type GarbageCollector interface {
	RunGC(discardRatio float64) (int, error)
}
