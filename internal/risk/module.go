package risk

import (
	"context"

	"github.com/novaex/tradepipe/internal/breaker"
	"github.com/novaex/tradepipe/internal/bus"
	"github.com/novaex/tradepipe/internal/config"
	"github.com/novaex/tradepipe/internal/types"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Module provides a started Gate to the fx graph for the risk service.
var Module = fx.Module("risk",
	fx.Provide(NewLedger),
	fx.Provide(func(cfg *config.Config, logger *zap.Logger, b bus.Bus, ledger *Ledger, breakers *breaker.Factory) (*Gate, error) {
		limits := make([]types.PositionLimit, 0, len(cfg.Risk.PositionLimits))
		for _, pl := range cfg.Risk.PositionLimits {
			limit, err := decodePositionLimit(pl)
			if err != nil {
				return nil, err
			}
			limits = append(limits, limit)
		}

		tracker := NewVolatilityTracker(50)
		gate := NewGate(
			logger,
			b,
			ledger,
			breakers,
			tracker,
			limits,
			DefaultRiskRules(tracker, 0.2),
			DefaultComplianceRules(),
			cfg.Risk.BreakerThreshold,
			cfg.Risk.BreakerCooldown,
		)
		return gate, nil
	}),
	fx.Invoke(func(lc fx.Lifecycle, g *Gate) {
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				return g.Start(ctx)
			},
		})
	}),
)

func decodePositionLimit(pl config.PositionLimitConfig) (types.PositionLimit, error) {
	maxLong, err := decimal.NewFromString(pl.MaxLong)
	if err != nil {
		return types.PositionLimit{}, err
	}
	maxShort, err := decimal.NewFromString(pl.MaxShort)
	if err != nil {
		return types.PositionLimit{}, err
	}
	maxExposure, err := decimal.NewFromString(pl.MaxExposure)
	if err != nil {
		return types.PositionLimit{}, err
	}
	maxDailyPnL, err := decimal.NewFromString(pl.MaxDailyPnL)
	if err != nil {
		return types.PositionLimit{}, err
	}
	maxDrawdown, err := decimal.NewFromString(pl.MaxDrawdown)
	if err != nil {
		return types.PositionLimit{}, err
	}
	return types.PositionLimit{
		Symbol:      pl.Symbol,
		MaxLong:     maxLong,
		MaxShort:    maxShort,
		MaxExposure: maxExposure,
		MaxDailyPnL: maxDailyPnL,
		MaxDrawdown: maxDrawdown,
	}, nil
}
