// Package marketdata normalizes raw, venue-specific ticks into the
// canonical MarketDataMessage schema. Grounded on the original market-data
// handler service's per-venue tick parsers, generalized to a per-venue
// decode function registered against venue_id the way the execution
// engine's Router dispatches on symbol.
package marketdata

import (
	"encoding/json"
	"time"

	"github.com/novaex/tradepipe/internal/pipeerr"
	"github.com/novaex/tradepipe/internal/types"
	"github.com/shopspring/decimal"
)

// rawEnvelope is what the feed subscriber publishes on market_data.raw: the
// originating venue and symbol, plus that venue's unmodified wire payload.
// The spec's schema table lists market_data.raw as "venue-specific JSON";
// the venue/symbol fields here are ingestion metadata, not part of any
// venue's own payload.
type rawEnvelope struct {
	VenueID string          `json:"venue_id"`
	Symbol  string          `json:"symbol"`
	Payload json.RawMessage `json:"payload"`
}

// binanceTick mirrors a Binance-style book ticker event.
type binanceTick struct {
	BidPrice string `json:"b"`
	BidQty   string `json:"B"`
	AskPrice string `json:"a"`
	AskQty   string `json:"A"`
	LastQty  string `json:"q"`
	Price    string `json:"p"`
}

// coinbaseTick mirrors a Coinbase-style ticker channel message.
type coinbaseTick struct {
	BestBid string `json:"best_bid"`
	BestBidSize string `json:"best_bid_size"`
	BestAsk string `json:"best_ask"`
	BestAskSize string `json:"best_ask_size"`
	Price   string `json:"price"`
	LastSize string `json:"last_size"`
}

// normalize decodes a raw venue envelope into the canonical
// MarketDataMessage. Unknown venues are a hard error: the gateway/engine
// services treat a configuration gap as a startup failure, but a
// mid-stream unknown venue is an input error per the spec's taxonomy — the
// message is rejected, not the whole feed.
func normalize(env rawEnvelope, now time.Time) (*types.MarketDataMessage, error) {
	switch env.VenueID {
	case "binance":
		return normalizeBinance(env, now)
	case "coinbase":
		return normalizeCoinbase(env, now)
	default:
		return nil, pipeerr.Newf(pipeerr.ErrSymbolNotFound, "no normalizer registered for venue %q", env.VenueID)
	}
}

func normalizeBinance(env rawEnvelope, now time.Time) (*types.MarketDataMessage, error) {
	var tick binanceTick
	if err := json.Unmarshal(env.Payload, &tick); err != nil {
		return nil, pipeerr.Wrap(err, pipeerr.ErrInvalidOrder, "decoding binance tick")
	}
	bid, _ := decimal.NewFromString(orDefault(tick.BidPrice, "0"))
	bidSize, _ := decimal.NewFromString(orDefault(tick.BidQty, "0"))
	ask, _ := decimal.NewFromString(orDefault(tick.AskPrice, "0"))
	askSize, _ := decimal.NewFromString(orDefault(tick.AskQty, "0"))
	last, _ := decimal.NewFromString(orDefault(tick.Price, "0"))
	lastSize, _ := decimal.NewFromString(orDefault(tick.LastQty, "0"))

	return &types.MarketDataMessage{
		Symbol: env.Symbol, Venue: env.VenueID,
		BidPrice: bid, BidSize: bidSize,
		AskPrice: ask, AskSize: askSize,
		LastPrice: last, LastSize: lastSize,
		Timestamp: now,
	}, nil
}

func normalizeCoinbase(env rawEnvelope, now time.Time) (*types.MarketDataMessage, error) {
	var tick coinbaseTick
	if err := json.Unmarshal(env.Payload, &tick); err != nil {
		return nil, pipeerr.Wrap(err, pipeerr.ErrInvalidOrder, "decoding coinbase tick")
	}
	bid, _ := decimal.NewFromString(orDefault(tick.BestBid, "0"))
	bidSize, _ := decimal.NewFromString(orDefault(tick.BestBidSize, "0"))
	ask, _ := decimal.NewFromString(orDefault(tick.BestAsk, "0"))
	askSize, _ := decimal.NewFromString(orDefault(tick.BestAskSize, "0"))
	last, _ := decimal.NewFromString(orDefault(tick.Price, "0"))
	lastSize, _ := decimal.NewFromString(orDefault(tick.LastSize, "0"))

	return &types.MarketDataMessage{
		Symbol: env.Symbol, Venue: env.VenueID,
		BidPrice: bid, BidSize: bidSize,
		AskPrice: ask, AskSize: askSize,
		LastPrice: last, LastSize: lastSize,
		Timestamp: now,
	}, nil
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
