// Command execution runs the execution engine: routes matched orders to
// simulated venues, retries through a per-venue circuit breaker, and
// publishes fills.
package main

import (
	"flag"

	"github.com/novaex/tradepipe/internal/breaker"
	"github.com/novaex/tradepipe/internal/bus"
	"github.com/novaex/tradepipe/internal/config"
	"github.com/novaex/tradepipe/internal/execution"
	"github.com/novaex/tradepipe/internal/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "", "path to the pipeline YAML config file")
	flag.Parse()

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	app := fx.New(
		fx.Supply(logger),
		fx.Supply(config.ConfigPath(*configPath)),
		fx.Supply(metrics.ComponentName("execution")),
		config.Module,
		metrics.Module,
		bus.Module,
		breaker.Module,
		execution.Module,
		fx.Invoke(func(e *execution.Engine) {
			logger.Info("execution engine started")
		}),
	)
	app.Run()
}
