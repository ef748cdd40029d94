package matching

import (
	"context"
	"encoding/json"
	"time"

	"github.com/novaex/tradepipe/internal/bus"
	"github.com/novaex/tradepipe/internal/pipeerr"
	"github.com/novaex/tradepipe/internal/types"
	"go.uber.org/zap"
)

const consumerGroup = "matching-engine"

// cancelRequest mirrors the gateway's wire shape for orders.cancel.requested.
type cancelRequest struct {
	OrderID   string    `json:"order_id"`
	Symbol    string    `json:"symbol"`
	UserID    string    `json:"user_id"`
	Timestamp time.Time `json:"timestamp"`
}

// Service subscribes an Engine to the bus: every risk-approved order is
// submitted to its symbol's book and any resulting Trades are published on
// trades.executed. An order is additionally republished on orders.matched
// when it has a remainder that will not rest on the book — an IOC/FOK
// remainder that gets discarded, or whatever a market order could not match
// internally — so the execution engine only ever sees quantity that needs
// somewhere else to go, never a GTC order still quietly resting. A cancel
// request that the book applies is acknowledged on orders.cancelled so the
// risk gate can release its reservation; one that cannot be applied is
// logged and not acknowledged.
type Service struct {
	logger *zap.Logger
	bus    bus.Bus
	engine *Engine
}

// NewService wires engine to b.
func NewService(logger *zap.Logger, b bus.Bus, engine *Engine) *Service {
	return &Service{logger: logger.Named("matching-service"), bus: b, engine: engine}
}

// Start subscribes to orders.risk-approved and orders.cancel.requested.
func (s *Service) Start(ctx context.Context) error {
	if err := s.bus.Subscribe(ctx, bus.TopicOrdersRiskApproved, consumerGroup, s.handleApproved); err != nil {
		return err
	}
	return s.bus.Subscribe(ctx, bus.TopicOrdersCancelRequested, consumerGroup, s.handleCancelRequested)
}

func (s *Service) handleApproved(ctx context.Context, payload []byte) error {
	var order types.Order
	if err := json.Unmarshal(payload, &order); err != nil {
		return pipeerr.Wrap(err, pipeerr.ErrInvalidOrder, "decoding risk-approved order")
	}

	trades, err := s.engine.Process(&order)
	if err != nil {
		s.logger.Warn("order rejected by matching engine",
			zap.String("order_id", order.OrderID), zap.Error(err))
		return nil
	}

	for _, trade := range trades {
		body, err := json.Marshal(trade)
		if err != nil {
			return pipeerr.Wrap(err, pipeerr.ErrInternal, "encoding trade")
		}
		if err := s.bus.Publish(ctx, bus.TopicTradesExecuted, body); err != nil {
			return err
		}
	}

	if needsExternalRouting(&order) {
		matched, err := json.Marshal(order)
		if err != nil {
			return pipeerr.Wrap(err, pipeerr.ErrInternal, "encoding matched order")
		}
		if err := s.bus.Publish(ctx, bus.TopicOrdersMatched, matched); err != nil {
			return err
		}
	}
	return nil
}

// needsExternalRouting reports whether order has a remainder the execution
// engine should route to a venue: a GTC limit order with quantity left over
// simply rests on the book for a future match and must not also be routed
// externally, or the same quantity would be filled twice.
func needsExternalRouting(order *types.Order) bool {
	if !order.Remaining().IsPositive() {
		return false
	}
	restsOnBook := order.TimeInForce == types.TIFGoodTilCancel && order.OrderType != types.OrderTypeMarket
	return !restsOnBook
}

func (s *Service) handleCancelRequested(ctx context.Context, payload []byte) error {
	var req cancelRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return pipeerr.Wrap(err, pipeerr.ErrInvalidOrder, "decoding cancel request")
	}

	if err := s.engine.Cancel(req.Symbol, req.OrderID); err != nil {
		s.logger.Info("cancel request could not be applied",
			zap.String("order_id", req.OrderID), zap.Error(err))
		return nil
	}

	body, err := json.Marshal(req)
	if err != nil {
		return pipeerr.Wrap(err, pipeerr.ErrInternal, "encoding cancellation")
	}
	return s.bus.Publish(ctx, bus.TopicOrdersCancelled, body)
}
