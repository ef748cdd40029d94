package execution

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/novaex/tradepipe/internal/breaker"
	"github.com/novaex/tradepipe/internal/bus"
	"github.com/novaex/tradepipe/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// fakeBus is a minimal bus.Bus recording every publish and subscribed
// topic, enough for testing Engine without a real transport.
type fakeBus struct {
	mu           sync.Mutex
	published    map[string][][]byte
	subscribedTo []string
}

func newFakeBus() *fakeBus { return &fakeBus{published: make(map[string][][]byte)} }

func (b *fakeBus) Publish(ctx context.Context, topic string, payload []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.published[topic] = append(b.published[topic], payload)
	return nil
}
func (b *fakeBus) Subscribe(ctx context.Context, topic, group string, handler bus.Handler) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribedTo = append(b.subscribedTo, topic)
	return nil
}
func (b *fakeBus) Start(ctx context.Context) error { return nil }
func (b *fakeBus) Close() error                    { return nil }

func (b *fakeBus) count(topic string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.published[topic])
}

func newTestEngine(t *testing.T, b *fakeBus) *Engine {
	t.Helper()
	logger := zaptest.NewLogger(t)
	router := NewRouter([]Route{{Symbol: "BTC/USD", VenueID: "sim-1"}})
	connectors := []VenueConnector{NewSimulatedConnector("sim-1", nil)}
	e, err := NewEngine(logger, b, breaker.NewFactory(logger, nil), router, connectors, 4, 0, time.Millisecond, 100, 100, time.Minute)
	require.NoError(t, err)
	return e
}

// Start must subscribe only to orders.matched, never orders.risk-approved —
// the latter carries every accepted order, including GTC orders that rest
// on the book without crossing.
func TestEngine_StartSubscribesOnlyToOrdersMatched(t *testing.T) {
	b := newFakeBus()
	e := newTestEngine(t, b)
	require.NoError(t, e.Start(context.Background()))

	assert.Equal(t, []string{bus.TopicOrdersMatched}, b.subscribedTo)
}

func TestEngine_ExecuteEmitsFillAndReport(t *testing.T) {
	b := newFakeBus()
	e := newTestEngine(t, b)

	order := &types.Order{
		OrderID: "o-1", ClientOrderID: "c-1", Symbol: "BTC/USD",
		Side: types.SideBuy, OrderType: types.OrderTypeLimit,
		Price: decimal.RequireFromString("100"), Quantity: decimal.RequireFromString("2"),
	}
	e.execute(context.Background(), order)

	require.Equal(t, 1, b.count(bus.TopicFills))
	var fill types.Fill
	require.NoError(t, json.Unmarshal(b.published[bus.TopicFills][0], &fill))
	assert.Equal(t, "o-1", fill.OrderID)
	assert.True(t, fill.Quantity.Equal(decimal.RequireFromString("2")))

	require.Equal(t, 1, b.count(bus.TopicOrdersExecutionReports))
	var report types.ExecutionReport
	require.NoError(t, json.Unmarshal(b.published[bus.TopicOrdersExecutionReports][0], &report))
	assert.Equal(t, types.OrderStatusFilled, report.Status)
}
