package matching

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/novaex/tradepipe/internal/bus"
	"github.com/novaex/tradepipe/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// fakeBus is a minimal bus.Bus recording every publish, enough for testing
// Service without spinning up a real transport.
type fakeBus struct {
	mu        sync.Mutex
	published map[string][][]byte
}

func newFakeBus() *fakeBus { return &fakeBus{published: make(map[string][][]byte)} }

func (b *fakeBus) Publish(ctx context.Context, topic string, payload []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.published[topic] = append(b.published[topic], payload)
	return nil
}
func (b *fakeBus) Subscribe(ctx context.Context, topic, group string, handler bus.Handler) error {
	return nil
}
func (b *fakeBus) Start(ctx context.Context) error { return nil }
func (b *fakeBus) Close() error                    { return nil }

func (b *fakeBus) count(topic string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.published[topic])
}

func publishOrder(t *testing.T, s *Service, order *types.Order) {
	t.Helper()
	body, err := json.Marshal(order)
	require.NoError(t, err)
	require.NoError(t, s.handleApproved(context.Background(), body))
}

// A resting GTC limit order that never crosses must not be republished on
// orders.matched — the execution engine would otherwise route it to a
// venue and produce a phantom Fill for quantity the book hasn't traded.
func TestService_RestingGTCOrderDoesNotPublishMatched(t *testing.T) {
	e := NewEngine(zaptest.NewLogger(t))
	b := newFakeBus()
	s := NewService(zaptest.NewLogger(t), b, e)

	publishOrder(t, s, &types.Order{
		ClientOrderID: "c-1", Symbol: "BTC/USD", Side: types.SideBuy,
		OrderType: types.OrderTypeLimit, TimeInForce: types.TIFGoodTilCancel,
		Price: decimal.RequireFromString("100"), Quantity: decimal.RequireFromString("1"),
	})

	assert.Equal(t, 0, b.count(bus.TopicTradesExecuted))
	assert.Equal(t, 0, b.count(bus.TopicOrdersMatched))
}

// A GTC order that partially crosses still rests with its remainder, so it
// must not be republished on orders.matched either — only the crossed
// quantity (already published on trades.executed) has actually executed.
func TestService_PartiallyFilledGTCOrderStillRestingDoesNotPublishMatched(t *testing.T) {
	e := NewEngine(zaptest.NewLogger(t))
	b := newFakeBus()
	s := NewService(zaptest.NewLogger(t), b, e)

	publishOrder(t, s, &types.Order{
		ClientOrderID: "c-ask", Symbol: "BTC/USD", Side: types.SideSell,
		OrderType: types.OrderTypeLimit, TimeInForce: types.TIFGoodTilCancel,
		Price: decimal.RequireFromString("100"), Quantity: decimal.RequireFromString("1"),
	})
	publishOrder(t, s, &types.Order{
		ClientOrderID: "c-bid", Symbol: "BTC/USD", Side: types.SideBuy,
		OrderType: types.OrderTypeLimit, TimeInForce: types.TIFGoodTilCancel,
		Price: decimal.RequireFromString("100"), Quantity: decimal.RequireFromString("5"),
	})

	assert.Equal(t, 1, b.count(bus.TopicTradesExecuted))
	assert.Equal(t, 0, b.count(bus.TopicOrdersMatched), "remainder is still resting, not routed externally")
}

// An IOC order whose unmatched remainder is discarded (rather than left
// resting) has nowhere else to settle it but an external venue.
func TestService_IOCDiscardedRemainderPublishesMatched(t *testing.T) {
	e := NewEngine(zaptest.NewLogger(t))
	b := newFakeBus()
	s := NewService(zaptest.NewLogger(t), b, e)

	publishOrder(t, s, &types.Order{
		ClientOrderID: "c-ask", Symbol: "BTC/USD", Side: types.SideSell,
		OrderType: types.OrderTypeLimit, TimeInForce: types.TIFGoodTilCancel,
		Price: decimal.RequireFromString("100"), Quantity: decimal.RequireFromString("1"),
	})
	publishOrder(t, s, &types.Order{
		ClientOrderID: "c-ioc", Symbol: "BTC/USD", Side: types.SideBuy,
		OrderType: types.OrderTypeLimit, TimeInForce: types.TIFImmediateOrCancel,
		Price: decimal.RequireFromString("100"), Quantity: decimal.RequireFromString("5"),
	})

	assert.Equal(t, 1, b.count(bus.TopicTradesExecuted))
	assert.Equal(t, 1, b.count(bus.TopicOrdersMatched))
}

// A market order with no resting liquidity to match against has its entire
// quantity discarded internally and must be routed externally.
func TestService_UnmatchedMarketOrderPublishesMatched(t *testing.T) {
	e := NewEngine(zaptest.NewLogger(t))
	b := newFakeBus()
	s := NewService(zaptest.NewLogger(t), b, e)

	publishOrder(t, s, &types.Order{
		ClientOrderID: "c-mkt", Symbol: "BTC/USD", Side: types.SideBuy,
		OrderType: types.OrderTypeMarket, TimeInForce: types.TIFGoodTilCancel,
		Quantity: decimal.RequireFromString("1"),
	})

	assert.Equal(t, 0, b.count(bus.TopicTradesExecuted))
	assert.Equal(t, 1, b.count(bus.TopicOrdersMatched))
}
