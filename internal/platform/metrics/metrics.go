package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds process-level Prometheus metrics shared by the transport
// layer. Domain packages register their own metrics next to their code.
type Metrics struct {
	TokenVerifyFailures *prometheus.CounterVec
	UnauthorizedRequests prometheus.Counter
}

// New creates and registers process-level Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		TokenVerifyFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "aegis_token_verify_failures_total",
			Help: "Total number of bearer token verification failures, by kind",
		}, []string{"kind"}),
		UnauthorizedRequests: promauto.NewCounter(prometheus.CounterOpts{
			Name: "aegis_http_unauthorized_requests_total",
			Help: "Total number of requests rejected by the auth middleware",
		}),
	}
}

// IncTokenVerifyFailure increments the verification failure counter for kind.
func (m *Metrics) IncTokenVerifyFailure(kind string) {
	m.TokenVerifyFailures.WithLabelValues(kind).Inc()
}

// IncUnauthorizedRequests increments the rejected request counter.
func (m *Metrics) IncUnauthorizedRequests() {
	m.UnauthorizedRequests.Inc()
}
