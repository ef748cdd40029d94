package metrics

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/novaex/tradepipe/internal/bus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// fakeBus is a minimal bus.Bus recording every publish, enough for testing
// the heartbeat without spinning up a real transport.
type fakeBus struct {
	mu        sync.Mutex
	published [][]byte
}

func (b *fakeBus) Publish(ctx context.Context, topic string, payload []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if topic == bus.TopicSystemHeartbeats {
		b.published = append(b.published, payload)
	}
	return nil
}
func (b *fakeBus) Subscribe(context.Context, string, string, bus.Handler) error { return nil }
func (b *fakeBus) Start(context.Context) error                                 { return nil }
func (b *fakeBus) Close() error                                                { return nil }

func (b *fakeBus) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.published)
}

func (b *fakeBus) last() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.published[len(b.published)-1]
}

func TestHeartbeat_PublishesComponentAndStatus(t *testing.T) {
	reg := NewRegistry()
	b := &fakeBus{}
	hb := NewHeartbeat(reg, zaptest.NewLogger(t), b, ComponentName("gateway"), 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		hb.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return b.count() > 0 }, time.Second, time.Millisecond)
	cancel()
	<-done

	var msg heartbeatMessage
	require.NoError(t, json.Unmarshal(b.last(), &msg))
	assert.Equal(t, "gateway", msg.Component)
	assert.Equal(t, "alive", msg.Status)
	assert.False(t, msg.Timestamp.IsZero())
}

func TestHeartbeat_DefaultsInterval(t *testing.T) {
	reg := NewRegistry()
	hb := NewHeartbeat(reg, zaptest.NewLogger(t), &fakeBus{}, ComponentName("risk"), 0)
	assert.Equal(t, 10*time.Second, hb.interval)
}
