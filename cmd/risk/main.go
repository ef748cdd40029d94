// Command risk runs the risk gate: position, exposure, and rule-based
// checks over orders.incoming, splitting into orders.risk-approved and
// orders.rejected.
package main

import (
	"flag"

	"github.com/novaex/tradepipe/internal/breaker"
	"github.com/novaex/tradepipe/internal/bus"
	"github.com/novaex/tradepipe/internal/config"
	"github.com/novaex/tradepipe/internal/metrics"
	"github.com/novaex/tradepipe/internal/risk"
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
		fx.Supply(metrics.ComponentName("risk")),
		config.Module,
		metrics.Module,
		bus.Module,
		breaker.Module,
		risk.Module,
		fx.Invoke(func(g *risk.Gate) {
			logger.Info("risk gate started")
		}),
	)
	app.Run()
}
