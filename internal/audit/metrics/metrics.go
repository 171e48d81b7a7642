package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for the audit pipeline.
type Metrics struct {
	Emitted      prometheus.Counter
	Dropped      prometheus.Counter
	SinkFailures prometheus.Counter
}

// New creates a Metrics instance with audit pipeline metrics registered.
func New() *Metrics {
	return &Metrics{
		Emitted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "aegis_audit_events_emitted_total",
			Help: "Total number of security events handed to the audit pipeline",
		}),
		Dropped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "aegis_audit_events_dropped_total",
			Help: "Total number of security events dropped because the buffer was full",
		}),
		SinkFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "aegis_audit_sink_failures_total",
			Help: "Total number of security event batches the sink rejected",
		}),
	}
}

// IncEmitted increments the emitted counter.
func (m *Metrics) IncEmitted() {
	m.Emitted.Inc()
}

// IncDropped increments the dropped counter.
func (m *Metrics) IncDropped() {
	m.Dropped.Inc()
}

// IncSinkFailures increments the sink failure counter.
func (m *Metrics) IncSinkFailures() {
	m.SinkFailures.Inc()
}
