package compliance

import (
	"context"
	"net/http"

	"github.com/novaex/tradepipe/internal/bus"
	"github.com/novaex/tradepipe/internal/config"
	"github.com/novaex/tradepipe/internal/store"
	"github.com/novaex/tradepipe/internal/types"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Module provides a started Evaluator and its HTTP query Server to the fx
// graph for the compliance service.
var Module = fx.Module("compliance",
	fx.Provide(func(cfg *config.Config, s store.Store) *kycCache {
		return newKYCCache(s, cfg.Compliance.KYCCacheTTL)
	}),
	fx.Provide(func(cfg *config.Config, logger *zap.Logger, b bus.Bus, s store.Store, kyc *kycCache) (*Evaluator, error) {
		rules := make([]types.AMLRule, 0, len(cfg.Compliance.AMLRules))
		for _, rc := range cfg.Compliance.AMLRules {
			rules = append(rules, types.AMLRule{
				RuleID:      rc.RuleID,
				Name:        rc.Name,
				Description: rc.Description,
				RuleType:    types.AMLRuleType(rc.RuleType),
				Parameters:  rc.Parameters,
				Enabled:     rc.Enabled,
			})
		}
		thresholds, err := decodeRiskThresholds(cfg.Compliance.RiskThresholds)
		if err != nil {
			return nil, err
		}
		return NewEvaluator(
			logger, b, s, kyc,
			cfg.Compliance.HistoryWindowCap,
			rules,
			thresholds,
			cfg.Compliance.SanctionedAddresses,
		), nil
	}),
	fx.Provide(func(logger *zap.Logger, evaluator *Evaluator, s store.Store) *Server {
		return NewServer(logger, evaluator, s)
	}),
	fx.Invoke(func(lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger, evaluator *Evaluator, srv *Server) {
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				if err := evaluator.Start(ctx); err != nil {
					return err
				}
				go func() {
					if err := srv.Run(cfg.Compliance.ListenAddr); err != nil && err != http.ErrServerClosed {
						logger.Named("compliance-http").Error("http server stopped", zap.Error(err))
					}
				}()
				return nil
			},
		})
	}),
)

func decodeRiskThresholds(rc config.RiskThresholdsConfig) (types.RiskThresholds, error) {
	high, err := decimal.NewFromString(rc.TransactionAmountHigh)
	if err != nil {
		return types.RiskThresholds{}, err
	}
	critical, err := decimal.NewFromString(rc.TransactionAmountCritical)
	if err != nil {
		return types.RiskThresholds{}, err
	}
	dailyLimit, err := decimal.NewFromString(rc.DailyVolumeLimit)
	if err != nil {
		return types.RiskThresholds{}, err
	}
	return types.RiskThresholds{
		TransactionAmountHigh:     high,
		TransactionAmountCritical: critical,
		DailyVolumeLimit:          dailyLimit,
		RiskScoreThreshold:        rc.RiskScoreThreshold,
		VelocityThreshold:         rc.VelocityThreshold,
	}, nil
}
