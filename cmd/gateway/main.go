// Command gateway runs the order ingress service: HTTP submission and
// cancellation of orders, authenticated, rate-limited, and circuit-broken,
// publishing onto orders.incoming.
package main

import (
	"flag"

	"github.com/novaex/tradepipe/internal/breaker"
	"github.com/novaex/tradepipe/internal/bus"
	"github.com/novaex/tradepipe/internal/config"
	"github.com/novaex/tradepipe/internal/gateway"
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
		fx.Supply(metrics.ComponentName("gateway")),
		config.Module,
		metrics.Module,
		bus.Module,
		breaker.Module,
		gateway.Module,
		fx.Invoke(func(s *gateway.Server) {
			logger.Info("order gateway started")
		}),
	)
	app.Run()
}
