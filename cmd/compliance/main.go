// Command compliance runs the AML/compliance evaluator: screens every
// risk-approved order against AML rules, KYC, sanctions, and a weighted
// risk score, and exposes the HTTP query surface over its persisted
// alerts, KYC records, and risk profiles.
package main

import (
	"flag"

	"github.com/novaex/tradepipe/internal/bus"
	"github.com/novaex/tradepipe/internal/compliance"
	"github.com/novaex/tradepipe/internal/config"
	"github.com/novaex/tradepipe/internal/metrics"
	"github.com/novaex/tradepipe/internal/store"
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
		fx.Supply(metrics.ComponentName("compliance")),
		config.Module,
		metrics.Module,
		bus.Module,
		store.Module,
		compliance.Module,
		fx.Invoke(func(e *compliance.Evaluator) {
			logger.Info("compliance evaluator started")
		}),
	)
	app.Run()
}
