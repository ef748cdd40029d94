package bus

import (
	"context"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	wnats "github.com/ThreeDotsLabs/watermill-nats/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"go.uber.org/zap"
)

// WatermillBus adapts watermill's Publisher/Subscriber pair to the Bus
// interface, running a message.Router so every Subscribe call becomes a
// routed handler instead of a raw channel consumer.
type WatermillBus struct {
	publisher   message.Publisher
	subscriber  message.Subscriber
	router      *message.Router
	topicPrefix string
	logger      *zap.Logger

	mu      sync.Mutex
	started bool
}

// Config selects and configures the transport.
type Config struct {
	// Backend is "memory" or "nats".
	Backend     string
	NATSURL     string
	TopicPrefix string
	BufferSize  int
}

// New builds a WatermillBus on the configured backend.
func New(cfg Config, logger *zap.Logger) (*WatermillBus, error) {
	wmLogger := watermill.NewStdLogger(false, false)

	var pub message.Publisher
	var sub message.Subscriber

	switch cfg.Backend {
	case "", "memory":
		gc := gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer: int64(bufferOrDefault(cfg.BufferSize)),
			Persistent:          true,
		}, wmLogger)
		pub, sub = gc, gc
	case "nats":
		marshaler := &wnats.GobMarshaler{}
		publisher, err := wnats.NewPublisher(wnats.PublisherConfig{
			URL:         cfg.NATSURL,
			Marshaler:   marshaler,
			NatsOptions: nil,
		}, wmLogger)
		if err != nil {
			return nil, fmt.Errorf("bus: connecting nats publisher: %w", err)
		}
		subscriber, err := wnats.NewSubscriber(wnats.SubscriberConfig{
			URL:            cfg.NATSURL,
			Unmarshaler:    marshaler,
			SubscribersCount: 1,
			QueueGroupPrefix: "tradepipe",
		}, wmLogger)
		if err != nil {
			return nil, fmt.Errorf("bus: connecting nats subscriber: %w", err)
		}
		pub, sub = publisher, subscriber
	default:
		return nil, fmt.Errorf("bus: unknown backend %q", cfg.Backend)
	}

	router, err := message.NewRouter(message.RouterConfig{}, wmLogger)
	if err != nil {
		return nil, fmt.Errorf("bus: building router: %w", err)
	}

	return &WatermillBus{
		publisher:   pub,
		subscriber:  sub,
		router:      router,
		topicPrefix: cfg.TopicPrefix,
		logger:      logger.Named("bus"),
	}, nil
}

func bufferOrDefault(n int) int {
	if n <= 0 {
		return 1000
	}
	return n
}

func (b *WatermillBus) Publish(ctx context.Context, topic string, payload []byte) error {
	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)
	return b.publisher.Publish(b.topicPrefix+topic, msg)
}

func (b *WatermillBus) Subscribe(ctx context.Context, topic, group string, handler Handler) error {
	handlerName := fmt.Sprintf("%s.%s", group, topic)
	b.router.AddNoPublisherHandler(handlerName, b.topicPrefix+topic, b.subscriber, func(msg *message.Message) error {
		if err := handler(msg.Context(), msg.Payload); err != nil {
			b.logger.Error("handler failed, message will be redelivered",
				zap.String("topic", topic), zap.String("group", group), zap.Error(err))
			return err
		}
		return nil
	})
	return nil
}

func (b *WatermillBus) Start(ctx context.Context) error {
	b.mu.Lock()
	if b.started {
		b.mu.Unlock()
		return nil
	}
	b.started = true
	b.mu.Unlock()

	go func() {
		if err := b.router.Run(ctx); err != nil {
			b.logger.Error("router stopped", zap.Error(err))
		}
	}()
	<-b.router.Running()
	return nil
}

func (b *WatermillBus) Close() error {
	if err := b.router.Close(); err != nil {
		return err
	}
	_ = b.publisher.Close()
	_ = b.subscriber.Close()
	return nil
}
