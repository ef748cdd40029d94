package metrics

import (
	"context"
	"net/http"

	"github.com/novaex/tradepipe/internal/bus"
	"github.com/novaex/tradepipe/internal/config"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Module provides the registry and starts the /metrics server plus the
// heartbeat loop for every service that includes it. Each cmd/ binary must
// fx.Supply a metrics.ComponentName identifying itself in heartbeat records.
var Module = fx.Module("metrics",
	fx.Provide(NewRegistry),
	fx.Provide(func(cfg *config.Config, logger *zap.Logger, reg *Registry, b bus.Bus, component ComponentName) *Heartbeat {
		return NewHeartbeat(reg, logger, b, component, cfg.Metrics.HeartbeatInterval)
	}),
	fx.Invoke(func(lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger, reg *Registry, hb *Heartbeat) {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg.Registry, promhttp.HandlerOpts{}))
		srv := &http.Server{Addr: cfg.Metrics.ListenAddr, Handler: mux}

		ctx, cancel := context.WithCancel(context.Background())
		lc.Append(fx.Hook{
			OnStart: func(context.Context) error {
				go hb.Run(ctx)
				go func() {
					if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
						logger.Named("metrics").Error("metrics server stopped", zap.Error(err))
					}
				}()
				return nil
			},
			OnStop: func(stopCtx context.Context) error {
				cancel()
				return srv.Shutdown(stopCtx)
			},
		})
	}),
)
