package risk

import (
	"testing"
	"time"

	"github.com/novaex/tradepipe/internal/breaker"
	"github.com/novaex/tradepipe/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestGate(t *testing.T, limits []types.PositionLimit, riskRules []types.RiskRule) *Gate {
	t.Helper()
	logger := zaptest.NewLogger(t)
	return NewGate(logger, nil, NewLedger(), breaker.NewFactory(logger, nil), NewVolatilityTracker(0), limits, riskRules, nil, 100, time.Minute)
}

func btcLimit() types.PositionLimit {
	return types.PositionLimit{
		Symbol:      "BTC/USD",
		MaxLong:     decimal.RequireFromString("10"),
		MaxShort:    decimal.RequireFromString("10"),
		MaxExposure: decimal.RequireFromString("100000"),
		MaxDailyPnL: decimal.RequireFromString("50000"),
		MaxDrawdown: decimal.RequireFromString("20000"),
	}
}

func TestGate_ApprovesWithinLimits(t *testing.T) {
	g := newTestGate(t, []types.PositionLimit{btcLimit()}, nil)
	order := &types.Order{
		OrderID: "o-1", UserID: "u-1", Symbol: "BTC/USD", Side: types.SideBuy,
		OrderType: types.OrderTypeLimit, Price: decimal.RequireFromString("100"),
		Quantity: decimal.RequireFromString("2"),
	}

	result, err := g.Evaluate(order)
	require.NoError(t, err)
	assert.True(t, result.Approved)
	assert.Empty(t, result.Violations)
}

func TestGate_RejectsOverPositionLimit(t *testing.T) {
	g := newTestGate(t, []types.PositionLimit{btcLimit()}, nil)
	order := &types.Order{
		OrderID: "o-2", UserID: "u-2", Symbol: "BTC/USD", Side: types.SideBuy,
		OrderType: types.OrderTypeLimit, Price: decimal.RequireFromString("100"),
		Quantity: decimal.RequireFromString("20"),
	}

	result, err := g.Evaluate(order)
	assert.Error(t, err)
	assert.False(t, result.Approved)
	assert.NotEmpty(t, result.Violations)
}

func TestGate_ReserveThenReleaseRestoresExposure(t *testing.T) {
	g := newTestGate(t, []types.PositionLimit{btcLimit()}, nil)
	order := &types.Order{
		OrderID: "o-3", UserID: "u-3", Symbol: "BTC/USD", Side: types.SideBuy,
		OrderType: types.OrderTypeLimit, Price: decimal.RequireFromString("100"),
		Quantity: decimal.RequireFromString("1"),
	}

	result, err := g.Evaluate(order)
	require.NoError(t, err)
	require.True(t, result.Approved)

	g.reserve(order)
	state := g.ledger.Get(order.UserID, order.Symbol)
	assert.True(t, state.Reserved.Equal(decimal.RequireFromString("100")))

	g.mu.Lock()
	p := g.pending[order.OrderID]
	g.mu.Unlock()
	require.NotNil(t, p)
	g.ledger.Release(p.UserID, p.Symbol, p.Side, p.Notional)

	state = g.ledger.Get(order.UserID, order.Symbol)
	assert.True(t, state.Reserved.IsZero())
}

func TestGate_SecondInFlightOrderRespectsFirstsReservation(t *testing.T) {
	g := newTestGate(t, []types.PositionLimit{btcLimit()}, nil)

	first := &types.Order{
		OrderID: "o-5a", UserID: "u-5", Symbol: "BTC/USD", Side: types.SideBuy,
		OrderType: types.OrderTypeLimit, Price: decimal.RequireFromString("100"),
		Quantity: decimal.RequireFromString("6"),
	}
	result, err := g.Evaluate(first)
	require.NoError(t, err)
	require.True(t, result.Approved)
	g.reserve(first)

	// first is still unfilled and uncancelled: its reservation must be
	// visible to the very next check for the same user/symbol, or two
	// individually-compliant orders can together blow through max_long.
	second := &types.Order{
		OrderID: "o-5b", UserID: "u-5", Symbol: "BTC/USD", Side: types.SideBuy,
		OrderType: types.OrderTypeLimit, Price: decimal.RequireFromString("100"),
		Quantity: decimal.RequireFromString("5"),
	}
	result, err = g.Evaluate(second)
	assert.Error(t, err)
	assert.False(t, result.Approved)
	require.NotEmpty(t, result.Violations)
	assert.Contains(t, result.Violations[0], "max_long")
}

func TestGate_CustomRiskRuleRejects(t *testing.T) {
	blockEverything := types.RiskRule{
		Name: "AlwaysBlock",
		Condition: func(order *types.Order, state types.RiskState) (bool, string) {
			return true, "blocked for test"
		},
	}
	g := newTestGate(t, []types.PositionLimit{btcLimit()}, []types.RiskRule{blockEverything})
	order := &types.Order{
		OrderID: "o-4", UserID: "u-4", Symbol: "BTC/USD", Side: types.SideBuy,
		OrderType: types.OrderTypeLimit, Price: decimal.RequireFromString("100"),
		Quantity: decimal.RequireFromString("1"),
	}

	result, err := g.Evaluate(order)
	assert.Error(t, err)
	assert.False(t, result.Approved)
	require.Len(t, result.Violations, 1)
	assert.Contains(t, result.Violations[0], "AlwaysBlock")
}
