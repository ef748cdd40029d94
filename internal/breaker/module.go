package breaker

import (
	"github.com/novaex/tradepipe/internal/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Module provides a Factory with its metrics registered against the
// shared Prometheus registry.
var Module = fx.Module("breaker",
	fx.Provide(func(reg *metrics.Registry, logger *zap.Logger) *Factory {
		return NewFactory(logger, NewMetrics(reg))
	}),
)
