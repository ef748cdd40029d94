package marketdata

import (
	"context"
	"time"

	"github.com/novaex/tradepipe/internal/bus"
	"github.com/novaex/tradepipe/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Module provides a started Normalizer and one reconnecting Feed per
// configured venue/symbol subscription to the fx graph.
var Module = fx.Module("marketdata",
	fx.Provide(NewNormalizer),
	fx.Invoke(func(lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger, b bus.Bus, n *Normalizer) {
		ctx, cancel := context.WithCancel(context.Background())
		lc.Append(fx.Hook{
			OnStart: func(startCtx context.Context) error {
				if err := n.Start(startCtx); err != nil {
					return err
				}
				for _, venue := range cfg.MarketData.Venues {
					for _, symbol := range venue.Symbols {
						feed := NewFeed(logger, b, venue.VenueID, symbol, venue.WebSocketURL, cfg.MarketData.CompressSnapshotBytes)
						go feed.reconnectLoop(ctx, 2*time.Second)
					}
				}
				return nil
			},
			OnStop: func(context.Context) error {
				cancel()
				return nil
			},
		})
	}),
)
