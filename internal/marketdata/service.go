package marketdata

import (
	"context"
	"encoding/json"
	"time"

	"github.com/novaex/tradepipe/internal/bus"
	"github.com/novaex/tradepipe/internal/pipeerr"
	"go.uber.org/zap"
)

const consumerGroup = "marketdata-normalizer"

// Normalizer consumes market_data.raw and republishes each tick in the
// canonical MarketDataMessage schema on marketdata.normalized. A decode or
// normalize failure rejects that single message and continues, per the
// input-error handling policy shared across the pipeline.
type Normalizer struct {
	logger *zap.Logger
	bus    bus.Bus
}

// NewNormalizer builds a Normalizer wired to b.
func NewNormalizer(logger *zap.Logger, b bus.Bus) *Normalizer {
	return &Normalizer{logger: logger.Named("marketdata"), bus: b}
}

// Start subscribes the normalizer to market_data.raw.
func (n *Normalizer) Start(ctx context.Context) error {
	return n.bus.Subscribe(ctx, bus.TopicMarketDataRaw, consumerGroup, n.handleRaw)
}

func (n *Normalizer) handleRaw(ctx context.Context, payload []byte) error {
	var env rawEnvelope
	if err := json.Unmarshal(payload, &env); err != nil {
		n.logger.Warn("dropping undecodable raw envelope", zap.Error(err))
		return nil
	}

	msg, err := normalize(env, time.Now())
	if err != nil {
		n.logger.Warn("dropping tick with no normalizer",
			zap.String("venue", env.VenueID), zap.String("symbol", env.Symbol), zap.Error(err))
		return nil
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return pipeerr.Wrap(err, pipeerr.ErrInternal, "encoding normalized tick")
	}
	return n.bus.Publish(ctx, bus.TopicMarketDataNormalized, body)
}
