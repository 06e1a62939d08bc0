package workers

import (
	"context"

	"github.com/MKhiriev/go-vault-store/internal/config"
	"github.com/MKhiriev/go-vault-store/internal/logger"
)

type Workers struct {
	workers []Worker
}

func NewWorkers(ws ...Worker) *Workers {
	return &Workers{workers: ws}
}

// ForBackend returns the workers the backend needs. Backends without
// background maintenance get none.
func ForBackend(backend any, cfg config.Workers, log *logger.Logger) *Workers {
	w := &Workers{}
	if gc, ok := backend.(GarbageCollector); ok && cfg.GCInterval > 0 {
		w.workers = append(w.workers, NewGCWorker(gc, cfg.GCInterval, cfg.GCDiscardRatio, log))
	}
	return w
}

func (w *Workers) Len() int {
	return len(w.workers)
}

// Start starts every worker in order.
func (w *Workers) Start(ctx context.Context) {
	for _, worker := range w.workers {
		worker.Start(ctx)
	}
}

// Stop stops the workers in reverse start order.
func (w *Workers) Stop() {
	for i := len(w.workers) - 1; i >= 0; i-- {
		w.workers[i].Stop()
	}
}
