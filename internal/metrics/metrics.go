// Package metrics provides the process-wide Prometheus registry and
// heartbeat every service exposes over /metrics, grounded in the teacher's
// MetricsCollector pattern and the original services' periodic
// send_heartbeat task.
package metrics

import (
	"context"
	"encoding/json"
	"time"

	"github.com/novaex/tradepipe/internal/bus"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// Registry is the registerer every component's promauto metrics attach to.
type Registry struct {
	*prometheus.Registry
}

// NewRegistry returns an empty registry for one process.
func NewRegistry() *Registry {
	return &Registry{Registry: prometheus.NewRegistry()}
}

// ComponentName identifies the running service in its heartbeat payload,
// e.g. "gateway" or "matching". Each cmd/ binary supplies its own.
type ComponentName string

// heartbeatMessage is the system.heartbeats payload every service publishes.
type heartbeatMessage struct {
	Timestamp time.Time `json:"timestamp"`
	Status    string    `json:"status"`
	Component string    `json:"component"`
}

// Heartbeat increments a liveness counter and publishes a heartbeat record
// to system.heartbeats on a fixed interval, independent of whatever request
// traffic the process sees.
type Heartbeat struct {
	logger    *zap.Logger
	bus       bus.Bus
	component ComponentName
	counter   prometheus.Counter
	interval  time.Duration
}

// NewHeartbeat registers the heartbeat counter against reg and wires b for
// publishing to system.heartbeats.
func NewHeartbeat(reg *Registry, logger *zap.Logger, b bus.Bus, component ComponentName, interval time.Duration) *Heartbeat {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	counter := promauto.With(reg).NewCounter(prometheus.CounterOpts{
		Name: "tradepipe_heartbeat_total",
		Help: "Incremented on a fixed interval for as long as the process is alive.",
	})
	return &Heartbeat{
		logger:    logger.Named("heartbeat"),
		bus:       b,
		component: component,
		counter:   counter,
		interval:  interval,
	}
}

// Run ticks until ctx is cancelled. Callers run it in its own goroutine.
func (h *Heartbeat) Run(ctx context.Context) {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.counter.Inc()
			h.beat(ctx)
		}
	}
}

func (h *Heartbeat) beat(ctx context.Context) {
	msg := heartbeatMessage{
		Timestamp: time.Now(),
		Status:    "alive",
		Component: string(h.component),
	}
	body, err := json.Marshal(msg)
	if err != nil {
		h.logger.Warn("failed to encode heartbeat", zap.Error(err))
		return
	}
	if err := h.bus.Publish(ctx, bus.TopicSystemHeartbeats, body); err != nil {
		h.logger.Warn("failed to publish heartbeat", zap.Error(err))
		return
	}
	h.logger.Debug("heartbeat")
}
