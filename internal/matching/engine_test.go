package matching

import (
	"testing"
	"time"

	"github.com/novaex/tradepipe/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func limitOrder(side types.Side, price, qty string) *types.Order {
	return &types.Order{
		ClientOrderID: "c-" + string(side),
		Symbol:        "BTC/USD",
		Side:          side,
		OrderType:     types.OrderTypeLimit,
		TimeInForce:   types.TIFGoodTilCancel,
		Price:         decimal.RequireFromString(price),
		Quantity:      decimal.RequireFromString(qty),
	}
}

func TestEngine_CrossingLimitOrdersProduceTrade(t *testing.T) {
	e := NewEngine(zaptest.NewLogger(t))

	ask := limitOrder(types.SideSell, "100", "5")
	_, err := e.Process(ask)
	require.NoError(t, err)

	bid := limitOrder(types.SideBuy, "101", "3")
	trades, err := e.Process(bid)
	require.NoError(t, err)
	require.Len(t, trades, 1)

	assert.True(t, trades[0].Price.Equal(decimal.RequireFromString("100")))
	assert.True(t, trades[0].Quantity.Equal(decimal.RequireFromString("3")))
	assert.Equal(t, types.OrderStatusFilled, bid.Status)
	assert.Equal(t, types.OrderStatusPartiallyFilled, ask.Status)
}

func TestEngine_FIFOAtSamePrice(t *testing.T) {
	e := NewEngine(zaptest.NewLogger(t))

	first := limitOrder(types.SideSell, "100", "2")
	_, err := e.Process(first)
	require.NoError(t, err)
	time.Sleep(time.Millisecond)
	second := limitOrder(types.SideSell, "100", "2")
	_, err = e.Process(second)
	require.NoError(t, err)

	taker := limitOrder(types.SideBuy, "100", "2")
	trades, err := e.Process(taker)
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, first.OrderID, trades[0].MakerOrderID, "earlier resting order at the same price should fill first")
}

func TestEngine_IOCDiscardsRemainder(t *testing.T) {
	e := NewEngine(zaptest.NewLogger(t))

	ask := limitOrder(types.SideSell, "100", "1")
	_, err := e.Process(ask)
	require.NoError(t, err)

	ioc := limitOrder(types.SideBuy, "100", "5")
	ioc.TimeInForce = types.TIFImmediateOrCancel
	trades, err := e.Process(ioc)
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, types.OrderStatusPartiallyFilled, ioc.Status)

	snap, err := e.Snapshot("BTC/USD", 10)
	require.NoError(t, err)
	assert.Empty(t, snap.Bids, "IOC remainder must not rest on the book")
}

func TestEngine_FOKCancelsWhenNotFullyFillable(t *testing.T) {
	e := NewEngine(zaptest.NewLogger(t))

	ask := limitOrder(types.SideSell, "100", "1")
	_, err := e.Process(ask)
	require.NoError(t, err)

	fok := limitOrder(types.SideBuy, "100", "5")
	fok.TimeInForce = types.TIFFillOrKill
	trades, err := e.Process(fok)
	require.NoError(t, err)
	assert.Empty(t, trades, "FOK must not partially fill")
	assert.Equal(t, types.OrderStatusCancelled, fok.Status)

	// the resting ask must be untouched
	snap, err := e.Snapshot("BTC/USD", 10)
	require.NoError(t, err)
	require.Len(t, snap.Asks, 1)
	assert.Equal(t, "1", snap.Asks[0].Quantity)
}

func TestEngine_StopOrderRestsUntilTriggered(t *testing.T) {
	e := NewEngine(zaptest.NewLogger(t))

	// Seed a last price of 100 via a crossing trade.
	_, err := e.Process(limitOrder(types.SideSell, "100", "1"))
	require.NoError(t, err)
	_, err = e.Process(limitOrder(types.SideBuy, "100", "1"))
	require.NoError(t, err)

	stop := &types.Order{
		ClientOrderID: "c-stop",
		Symbol:        "BTC/USD",
		Side:          types.SideBuy,
		OrderType:     types.OrderTypeStop,
		TimeInForce:   types.TIFGoodTilCancel,
		StopPrice:     decimal.RequireFromString("105"),
		Quantity:      decimal.RequireFromString("1"),
	}
	trades, err := e.Process(stop)
	require.NoError(t, err)
	assert.Empty(t, trades, "stop above last price must not trigger immediately")
	assert.Equal(t, types.OrderStatusResting, stop.Status)

	// A trade at 106 should promote the stop and match it against a fresh ask.
	_, err = e.Process(limitOrder(types.SideSell, "106", "2"))
	require.NoError(t, err)
	trades, err = e.Process(limitOrder(types.SideBuy, "106", "1"))
	require.NoError(t, err)
	assert.NotEmpty(t, trades)
}

func TestEngine_CancelRemovesRestingOrder(t *testing.T) {
	e := NewEngine(zaptest.NewLogger(t))
	order := limitOrder(types.SideBuy, "99", "1")
	_, err := e.Process(order)
	require.NoError(t, err)

	require.NoError(t, e.Cancel(order.Symbol, order.OrderID))
	assert.Equal(t, types.OrderStatusCancelled, order.Status)

	snap, err := e.Snapshot(order.Symbol, 10)
	require.NoError(t, err)
	assert.Empty(t, snap.Bids)
}
