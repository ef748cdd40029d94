package gateway

import (
	"context"
	"net/http"

	"github.com/novaex/tradepipe/internal/breaker"
	"github.com/novaex/tradepipe/internal/bus"
	"github.com/novaex/tradepipe/internal/config"
	"github.com/novaex/tradepipe/internal/ratelimit"
	"github.com/ulule/limiter/v3"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Module provides a running order-gateway HTTP server to the fx graph.
var Module = fx.Module("gateway",
	fx.Provide(func(cfg *config.Config) *ratelimit.Limiter {
		rate := limiter.Rate{Period: cfg.Gateway.RateLimitPeriod, Limit: cfg.Gateway.RateLimitCount}
		return ratelimit.New(rate)
	}),
	fx.Provide(func(cfg *config.Config, logger *zap.Logger, b bus.Bus, limiter *ratelimit.Limiter, breakers *breaker.Factory) *Server {
		return NewServer(cfg.Gateway, logger, b, limiter, breakers)
	}),
	fx.Invoke(func(lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger, s *Server) {
		srv := &http.Server{Addr: cfg.Gateway.ListenAddr, Handler: s.Engine()}
		lc.Append(fx.Hook{
			OnStart: func(context.Context) error {
				go func() {
					if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
						logger.Named("gateway").Error("http server stopped", zap.Error(err))
					}
				}()
				return nil
			},
			OnStop: func(ctx context.Context) error {
				return srv.Shutdown(ctx)
			},
		})
	}),
)
