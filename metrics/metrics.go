// Package metrics exports Prometheus metrics for container lookups.
package metrics

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/xraph/crate"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

var _ crate.Middleware = (*Middleware)(nil)

// Middleware records lookup counts, durations and lookups in flight.
// Install it with crate.WithMiddleware.
type Middleware struct {
	resolveTotal    *prometheus.CounterVec
	resolveDuration *prometheus.HistogramVec
	inFlight        prometheus.Gauge

	started map[string][]time.Time
	mu      sync.Mutex
}

// New creates the middleware and registers its collectors on reg.
func New(reg prometheus.Registerer) *Middleware {
	factory := promauto.With(reg)

	return &Middleware{
		resolveTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crate_resolve_total",
				Help: "Total number of service lookups",
			},
			[]string{"service", "status"},
		),

		resolveDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "crate_resolve_duration_seconds",
				Help:    "Service lookup duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"service"},
		),

		inFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "crate_resolve_in_flight",
				Help: "Number of service lookups currently running",
			},
		),

		started: make(map[string][]time.Time),
	}
}

// BeforeResolve implements crate.Middleware.
func (m *Middleware) BeforeResolve(_ context.Context, name string) error {
	m.mu.Lock()
	m.started[name] = append(m.started[name], time.Now())
	m.mu.Unlock()

	m.inFlight.Inc()

	return nil
}

// AfterResolve implements crate.Middleware.
func (m *Middleware) AfterResolve(_ context.Context, name string, _ any, err error) error {
	m.inFlight.Dec()

	status := statusSuccess
	if err != nil {
		status = statusError
	}
	m.resolveTotal.WithLabelValues(name, status).Inc()

	if start, ok := m.pop(name); ok {
		m.resolveDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	}

	return nil
}

func (m *Middleware) pop(name string) (time.Time, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	starts := m.started[name]
	if len(starts) == 0 {
		return time.Time{}, false
	}

	start := starts[len(starts)-1]
	if len(starts) == 1 {
		delete(m.started, name)
	} else {
		m.started[name] = starts[:len(starts)-1]
	}

	return start, true
}
