package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for authorization decisions.
type Metrics struct {
	Granted prometheus.Counter
	Denied  *prometheus.CounterVec
}

// New creates a Metrics instance with decision metrics registered.
func New() *Metrics {
	return &Metrics{
		Granted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "aegis_authz_decisions_granted_total",
			Help: "Total number of authorization decisions that granted access",
		}),
		Denied: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "aegis_authz_decisions_denied_total",
			Help: "Total number of authorization decisions that denied access, by reason",
		}, []string{"reason"}),
	}
}

// IncGranted increments the granted counter.
func (m *Metrics) IncGranted() {
	m.Granted.Inc()
}

// IncDenied increments the denied counter for the given reason.
func (m *Metrics) IncDenied(reason string) {
	m.Denied.WithLabelValues(reason).Inc()
}
