package execution

import (
	"context"

	"github.com/novaex/tradepipe/internal/breaker"
	"github.com/novaex/tradepipe/internal/bus"
	"github.com/novaex/tradepipe/internal/config"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Module provides a started Engine to the fx graph for the execution
// service, one SimulatedConnector per configured venue and a Router built
// from the configured symbol-to-venue table.
var Module = fx.Module("execution",
	fx.Provide(func(cfg *config.Config) *Router {
		routes := make([]Route, 0, len(cfg.Execution.Routes))
		for _, r := range cfg.Execution.Routes {
			routes = append(routes, Route{Symbol: r.Symbol, VenueID: r.VenueID})
		}
		return NewRouter(routes)
	}),
	fx.Provide(func(cfg *config.Config) []VenueConnector {
		fallback := map[string]decimal.Decimal{}
		for _, r := range cfg.Execution.Routes {
			fallback[r.Symbol] = decimal.Zero
		}
		connectors := make([]VenueConnector, 0, len(cfg.Execution.Venues))
		for _, v := range cfg.Execution.Venues {
			connectors = append(connectors, NewSimulatedConnector(v.VenueID, fallback))
		}
		return connectors
	}),
	fx.Provide(func(
		cfg *config.Config,
		logger *zap.Logger,
		b bus.Bus,
		breakers *breaker.Factory,
		router *Router,
		connectors []VenueConnector,
	) (*Engine, error) {
		return NewEngine(
			logger, b, breakers, router, connectors,
			cfg.Execution.WorkerPoolSize,
			cfg.Execution.MaxRetries,
			cfg.Execution.RetryDelay,
			cfg.Execution.VenuesPerSecond,
			cfg.Execution.BreakerThreshold,
			cfg.Execution.BreakerCooldown,
		)
	}),
	fx.Invoke(func(lc fx.Lifecycle, e *Engine) {
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				return e.Start(ctx)
			},
			OnStop: func(ctx context.Context) error {
				e.Close()
				return nil
			},
		})
	}),
)
