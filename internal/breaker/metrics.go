package breaker

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics exposes per-breaker execution and state-change counters.
type Metrics struct {
	executions   *prometheus.CounterVec
	stateChanges *prometheus.CounterVec
	latency      *prometheus.HistogramVec
}

// NewMetrics registers the breaker metric family against reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		executions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tradepipe_breaker_executions_total",
			Help: "Executions routed through a circuit breaker, by name and outcome.",
		}, []string{"name", "outcome"}),
		stateChanges: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tradepipe_breaker_state_changes_total",
			Help: "Circuit breaker state transitions, by name and resulting state.",
		}, []string{"name", "state"}),
		latency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tradepipe_breaker_execution_seconds",
			Help:    "Latency of calls routed through a circuit breaker.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
		}, []string{"name"}),
	}
}

func (m *Metrics) RecordExecution(name string, success bool, d time.Duration) {
	outcome := "failure"
	if success {
		outcome = "success"
	}
	m.executions.WithLabelValues(name, outcome).Inc()
	m.latency.WithLabelValues(name).Observe(d.Seconds())
}

func (m *Metrics) RecordStateChange(name, state string) {
	m.stateChanges.WithLabelValues(name, state).Inc()
}
