package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// MarketDataMessage is the canonical schema every venue's raw tick is
// normalized to before being republished on marketdata.normalized.
type MarketDataMessage struct {
	Symbol    string          `json:"symbol"`
	Venue     string          `json:"venue"`
	BidPrice  decimal.Decimal `json:"bid_price"`
	BidSize   decimal.Decimal `json:"bid_size"`
	AskPrice  decimal.Decimal `json:"ask_price"`
	AskSize   decimal.Decimal `json:"ask_size"`
	LastPrice decimal.Decimal `json:"last_price"`
	LastSize  decimal.Decimal `json:"last_size"`
	Timestamp time.Time       `json:"timestamp"`
}
