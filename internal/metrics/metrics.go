// Package metrics exposes Prometheus instrumentation for the persistence
// facade. A nil *Metrics is valid and records nothing.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Operation results.
const (
	ResultOK     = "ok"
	ResultAbsent = "absent"
	ResultError  = "error"
)

// Record layouts.
const (
	LayoutSingle      = "single"
	LayoutPartitioned = "partitioned"
	LayoutChunked     = "chunked"
)

// Metrics holds the facade's collectors.
type Metrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	writes     *prometheus.CounterVec
	fallback   prometheus.Gauge
}

// NewMetrics creates the collectors under namespace and registers them with
// reg. Collectors already registered by an earlier call with the same
// namespace are reused, so several facades can share one registry.
func NewMetrics(reg prometheus.Registerer, namespace string) (*Metrics, error) {
	if reg == nil {
		return nil, nil
	}

	m := &Metrics{
		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "operations_total",
				Help:      "Total number of persistence operations by result",
			},
			[]string{"op", "result"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "operation_duration_seconds",
				Help:      "Duration of persistence operations",
				Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0},
			},
			[]string{"op"},
		),
		writes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "writes_total",
				Help:      "Total number of successful writes by record layout",
			},
			[]string{"layout"},
		),
		fallback: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "cipher_fallback",
				Help:      "1 when the store fell back to the no-op cipher",
			},
		),
	}

	var err error
	if m.operations, err = register(reg, m.operations); err != nil {
		return nil, err
	}
	if m.duration, err = register(reg, m.duration); err != nil {
		return nil, err
	}
	if m.writes, err = register(reg, m.writes); err != nil {
		return nil, err
	}
	if m.fallback, err = register(reg, m.fallback); err != nil {
		return nil, err
	}
	return m, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// ObserveOperation records one operation and its duration.
func (m *Metrics) ObserveOperation(op, result string, d time.Duration) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(op, result).Inc()
	m.duration.WithLabelValues(op).Observe(d.Seconds())
}

// RecordWrite counts a successful write in the given layout.
func (m *Metrics) RecordWrite(layout string) {
	if m == nil {
		return
	}
	m.writes.WithLabelValues(layout).Inc()
}

// SetCipherFallback reports whether the active store runs on the fallback
// cipher.
func (m *Metrics) SetCipherFallback(fellBack bool) {
	if m == nil {
		return
	}
	if fellBack {
		m.fallback.Set(1)
		return
	}
	m.fallback.Set(0)
}
