// Package metrics records ledger operation counts and latencies.
//
// Recorder is the only interface the service depends on. Prometheus exports
// through its own registry so independent instances (tests, multiple
// servers in one process) never collide on registration.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "stakeledger"

// Result labels.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// Recorder observes one completed operation.
type Recorder interface {
	Observe(op, result string, elapsed time.Duration)
}

// Noop discards all observations.
type Noop struct{}

// Observe implements Recorder.
func (Noop) Observe(string, string, time.Duration) {}

// Prometheus is a Recorder backed by a private Prometheus registry.
type Prometheus struct {
	registry *prometheus.Registry
	ops      *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

// NewPrometheus creates and registers the ledger collectors plus the
// standard Go and process collectors.
func NewPrometheus() *Prometheus {
	p := &Prometheus{
		registry: prometheus.NewRegistry(),
		ops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Ledger operations by operation and result.",
		}, []string{"op", "result"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_seconds",
			Help:      "Ledger operation latency including the store commit.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
		}, []string{"op"}),
	}
	p.registry.MustRegister(
		p.ops,
		p.latency,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return p
}

// Observe implements Recorder.
func (p *Prometheus) Observe(op, result string, elapsed time.Duration) {
	p.ops.WithLabelValues(op, result).Inc()
	p.latency.WithLabelValues(op).Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{Registry: p.registry})
}
