// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package workers

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MKhiriev/go-vault-store/internal/logger"
)

const defaultGCInterval = 5 * time.Minute

type gcWorker struct {
	gc           GarbageCollector
	interval     time.Duration
	discardRatio float64
	logger       *logger.Logger

	runs atomic.Int64

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewGCWorker creates a Worker that calls gc.RunGC on a ticker. If interval
// is zero or negative it defaults to 5 minutes.
func NewGCWorker(gc GarbageCollector, interval time.Duration, discardRatio float64, log *logger.Logger) Worker {
	if interval <= 0 {
		interval = defaultGCInterval
	}
	return &gcWorker{
		gc:           gc,
		interval:     interval,
		discardRatio: discardRatio,
		logger:       log.WithComponent("workers.gc"),
	}
}

// Start stops any previously running loop, then launches a goroutine that
// collects every interval until ctx is cancelled or Stop is called.
func (w *gcWorker) Start(ctx context.Context) {
	w.Stop()

	w.mu.Lock()
	jobCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.wg.Add(1)
	w.mu.Unlock()

	go func() {
		defer w.wg.Done()
		t := time.NewTicker(w.interval)
		defer t.Stop()

		for {
			select {
			case <-jobCtx.Done():
				return
			case <-t.C:
				w.collect()
			}
		}
	}()
}

func (w *gcWorker) collect() {
	start := time.Now()
	cycles, err := w.gc.RunGC(w.discardRatio)
	w.runs.Add(1)
	if err != nil {
		w.logger.Err(err).Str("func", "gcWorker.collect").Msg("value log gc failed")
		return
	}
	w.logger.Debug().
		Str("func", "gcWorker.collect").
		Int("cycles", cycles).
		Dur("took", time.Since(start)).
		Msg("value log gc done")
}

// Stop cancels the loop and waits for it to exit.
func (w *gcWorker) Stop() {
	w.mu.Lock()
	cancel := w.cancel
	w.cancel = nil
	w.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	w.wg.Wait()
}
