package marketdata

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_Binance(t *testing.T) {
	env := rawEnvelope{
		VenueID: "binance",
		Symbol:  "BTC/USD",
		Payload: []byte(`{"b":"100.5","B":"2","a":"101.5","A":"3","p":"101","q":"0.5"}`),
	}
	msg, err := normalize(env, time.Now())
	require.NoError(t, err)
	assert.Equal(t, "BTC/USD", msg.Symbol)
	assert.Equal(t, "binance", msg.Venue)
	assert.True(t, msg.BidPrice.Equal(decimal.RequireFromString("100.5")))
	assert.True(t, msg.AskPrice.Equal(decimal.RequireFromString("101.5")))
	assert.True(t, msg.LastPrice.Equal(decimal.RequireFromString("101")))
}

func TestNormalize_Coinbase(t *testing.T) {
	env := rawEnvelope{
		VenueID: "coinbase",
		Symbol:  "ETH/USD",
		Payload: []byte(`{"best_bid":"200","best_bid_size":"1","best_ask":"201","best_ask_size":"1","price":"200.5","last_size":"0.1"}`),
	}
	msg, err := normalize(env, time.Now())
	require.NoError(t, err)
	assert.Equal(t, "ETH/USD", msg.Symbol)
	assert.True(t, msg.BidPrice.Equal(decimal.RequireFromString("200")))
	assert.True(t, msg.LastPrice.Equal(decimal.RequireFromString("200.5")))
}

func TestNormalize_UnknownVenueRejected(t *testing.T) {
	env := rawEnvelope{VenueID: "unknown-venue", Symbol: "BTC/USD", Payload: []byte(`{}`)}
	_, err := normalize(env, time.Now())
	assert.Error(t, err)
}

