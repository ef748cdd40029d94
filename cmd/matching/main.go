// Command matching runs the price-time-priority matching engine: one book
// per symbol, consuming orders.risk-approved and publishing trades.executed.
package main

import (
	"flag"

	"github.com/novaex/tradepipe/internal/bus"
	"github.com/novaex/tradepipe/internal/config"
	"github.com/novaex/tradepipe/internal/matching"
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
		fx.Supply(metrics.ComponentName("matching")),
		config.Module,
		metrics.Module,
		bus.Module,
		matching.Module,
		fx.Invoke(func(s *matching.Service) {
			logger.Info("matching engine started")
		}),
	)
	app.Run()
}
