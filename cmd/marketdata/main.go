// Command marketdata runs the market data normalizer: per-venue websocket
// feeds publishing raw ticks, normalized into the canonical schema and
// republished on marketdata.normalized.
package main

import (
	"flag"

	"github.com/novaex/tradepipe/internal/bus"
	"github.com/novaex/tradepipe/internal/config"
	"github.com/novaex/tradepipe/internal/marketdata"
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
		fx.Supply(metrics.ComponentName("marketdata")),
		config.Module,
		metrics.Module,
		bus.Module,
		marketdata.Module,
		fx.Invoke(func(n *marketdata.Normalizer) {
			logger.Info("market data normalizer started")
		}),
	)
	app.Run()
}
