// Package breaker provides named circuit breakers protecting the gateway,
// the risk gate, and each execution venue from cascading into a failing
// downstream dependency.
package breaker

import (
	"sync"
	"time"

	"github.com/novaex/tradepipe/internal/pipeerr"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// Factory creates and caches named breakers, each configured with the same
// threshold/cooldown shape: trip once TotalFailures reaches Threshold
// within the current interval, stay open for Cooldown, then allow a single
// half-open trial.
type Factory struct {
	logger   *zap.Logger
	metrics  *Metrics
	mu       sync.RWMutex
	breakers map[string]*gobreaker.CircuitBreaker
}

// NewFactory builds a Factory reporting state changes through metrics.
func NewFactory(logger *zap.Logger, metrics *Metrics) *Factory {
	return &Factory{
		logger:   logger.Named("breaker"),
		metrics:  metrics,
		breakers: make(map[string]*gobreaker.CircuitBreaker),
	}
}

// Get returns the named breaker, creating it with the given threshold and
// cooldown on first use. Subsequent calls with the same name ignore the
// threshold/cooldown arguments and return the existing breaker.
func (f *Factory) Get(name string, threshold uint32, cooldown time.Duration) *gobreaker.CircuitBreaker {
	f.mu.RLock()
	cb, ok := f.breakers[name]
	f.mu.RUnlock()
	if ok {
		return cb
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if cb, ok = f.breakers[name]; ok {
		return cb
	}

	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    0, // counts never reset on a timer; only a trip+cooldown clears them
		Timeout:     cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.TotalFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			f.logger.Info("circuit breaker state changed",
				zap.String("name", name), zap.String("from", from.String()), zap.String("to", to.String()))
			if f.metrics != nil {
				f.metrics.RecordStateChange(name, to.String())
			}
		},
	}
	cb = gobreaker.NewCircuitBreaker(settings)
	f.breakers[name] = cb
	return cb
}

// Execute runs fn through the named breaker, translating gobreaker's
// ErrOpenState into a pipeerr.Error so callers can branch on Code without
// importing gobreaker themselves.
func (f *Factory) Execute(name string, threshold uint32, cooldown time.Duration, fn func() error) error {
	cb := f.Get(name, threshold, cooldown)
	start := time.Now()
	_, err := cb.Execute(func() (interface{}, error) {
		return nil, fn()
	})
	if f.metrics != nil {
		f.metrics.RecordExecution(name, err == nil, time.Since(start))
	}
	if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
		return pipeerr.New(pipeerr.ErrServiceUnavailable, "circuit breaker open for "+name).WithCause(err)
	}
	return err
}
