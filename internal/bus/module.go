package bus

import (
	"context"

	"github.com/novaex/tradepipe/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Module provides a started Bus to the fx graph, wired to the application
// lifecycle so Start/Close happen at the right points automatically.
var Module = fx.Module("bus",
	fx.Provide(func(cfg *config.Config, logger *zap.Logger) (Bus, error) {
		return New(Config{
			Backend:     cfg.Bus.Backend,
			NATSURL:     cfg.Bus.NATSURL,
			TopicPrefix: cfg.Bus.TopicPrefix,
		}, logger)
	}),
	fx.Invoke(func(lc fx.Lifecycle, b Bus) {
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				go func() {
					_ = b.Start(context.Background())
				}()
				return nil
			},
			OnStop: func(ctx context.Context) error {
				return b.Close()
			},
		})
	}),
)
