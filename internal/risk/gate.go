package risk

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/novaex/tradepipe/internal/breaker"
	"github.com/novaex/tradepipe/internal/bus"
	"github.com/novaex/tradepipe/internal/pipeerr"
	"github.com/novaex/tradepipe/internal/types"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const consumerGroup = "risk-gate"

// pendingReservation tracks the reservation booked against an approved
// order until it is fully filled, cancelled, or TIF-expired. The gate keeps
// this locally because neither Fill nor the cancellation event carries the
// user ID the Ledger is keyed by.
type pendingReservation struct {
	UserID   string
	Symbol   string
	Side     types.Side
	Notional decimal.Decimal
}

// Gate is the risk/compliance checkpoint every incoming order passes
// through before reaching the matching engine. It runs an ordered chain of
// checks — circuit breaker, position limits, risk rules, compliance rules —
// and books a reservation against the submitter's open exposure on
// approval.
type Gate struct {
	logger   *zap.Logger
	bus      bus.Bus
	ledger   *Ledger
	breakers *breaker.Factory
	tracker  *VolatilityTracker

	breakerName      string
	breakerThreshold uint32
	breakerCooldown  time.Duration

	positionLimits map[string]types.PositionLimit
	riskRules      []types.RiskRule
	complianceRules []types.ComplianceRule

	mu      sync.Mutex
	pending map[string]*pendingReservation
}

// NewGate builds a Gate wired to ledger for reservation bookkeeping, b for
// consuming incoming orders and publishing risk decisions, and tracker for
// feeding the default ExcessiveVolatility rule with real trade prices.
func NewGate(
	logger *zap.Logger,
	b bus.Bus,
	ledger *Ledger,
	breakers *breaker.Factory,
	tracker *VolatilityTracker,
	positionLimits []types.PositionLimit,
	riskRules []types.RiskRule,
	complianceRules []types.ComplianceRule,
	breakerThreshold uint32,
	breakerCooldown time.Duration,
) *Gate {
	limits := make(map[string]types.PositionLimit, len(positionLimits))
	for _, l := range positionLimits {
		limits[l.Symbol] = l
	}
	return &Gate{
		logger:           logger.Named("risk"),
		bus:              b,
		ledger:           ledger,
		breakers:         breakers,
		tracker:          tracker,
		breakerName:      "risk-gate",
		breakerThreshold: breakerThreshold,
		breakerCooldown:  breakerCooldown,
		positionLimits:   limits,
		riskRules:        riskRules,
		complianceRules:  complianceRules,
		pending:          make(map[string]*pendingReservation),
	}
}

// Start subscribes the gate to orders.incoming, fills, cancellations, and
// executed trades (the last one feeds the volatility tracker — matched
// prices are the only authoritative price feed this core has — and settles
// the reservations of internally matched orders).
func (g *Gate) Start(ctx context.Context) error {
	if err := g.bus.Subscribe(ctx, bus.TopicOrdersIncoming, consumerGroup, g.handleIncoming); err != nil {
		return err
	}
	if err := g.bus.Subscribe(ctx, bus.TopicFills, consumerGroup, g.handleFill); err != nil {
		return err
	}
	if err := g.bus.Subscribe(ctx, bus.TopicOrdersCancelled, consumerGroup, g.handleCancelled); err != nil {
		return err
	}
	if err := g.bus.Subscribe(ctx, bus.TopicTradesExecuted, consumerGroup, g.handleTrade); err != nil {
		return err
	}
	return nil
}

func (g *Gate) handleTrade(ctx context.Context, payload []byte) error {
	var trade types.Trade
	if err := json.Unmarshal(payload, &trade); err != nil {
		return pipeerr.Wrap(err, pipeerr.ErrInvalidOrder, "decoding executed trade")
	}
	if g.tracker != nil {
		g.tracker.Record(trade.Symbol, trade.Price)
	}
	for _, orderID := range []string{trade.BuyOrderID, trade.SellOrderID} {
		g.mu.Lock()
		p, ok := g.pending[orderID]
		g.mu.Unlock()
		if !ok {
			continue
		}
		g.ledger.ApplyFill(p.UserID, p.Symbol, p.Side, trade.Quantity, trade.Price)
		g.mu.Lock()
		p.Notional = p.Notional.Sub(trade.Quantity.Mul(trade.Price))
		if p.Notional.LessThanOrEqual(decimal.Zero) {
			delete(g.pending, orderID)
		}
		g.mu.Unlock()
	}
	return nil
}

func (g *Gate) handleIncoming(ctx context.Context, payload []byte) error {
	var order types.Order
	if err := json.Unmarshal(payload, &order); err != nil {
		return pipeerr.Wrap(err, pipeerr.ErrInvalidOrder, "decoding incoming order")
	}

	result, evalErr := g.Evaluate(&order)
	if result.Approved {
		g.reserve(&order)
		approved, err := json.Marshal(order)
		if err != nil {
			return pipeerr.Wrap(err, pipeerr.ErrInternal, "encoding risk-approved order")
		}
		return g.bus.Publish(ctx, bus.TopicOrdersRiskApproved, approved)
	}

	g.logger.Info("order rejected by risk gate",
		zap.String("order_id", order.OrderID),
		zap.Strings("violations", result.Violations))

	resp := types.OrderResponse{
		OrderID:       order.OrderID,
		ClientOrderID: order.ClientOrderID,
		Status:        "rejected",
		Reason:        rejectionReason(result.Violations, evalErr),
		Timestamp:     time.Now(),
	}
	body, err := json.Marshal(resp)
	if err != nil {
		return pipeerr.Wrap(err, pipeerr.ErrInternal, "encoding rejection response")
	}
	return g.bus.Publish(ctx, bus.TopicOrdersRejected, body)
}

func rejectionReason(violations []string, err error) string {
	if pipeerr.CodeOf(err) == pipeerr.ErrServiceUnavailable {
		return "circuit_breaker_open"
	}
	if len(violations) > 0 {
		return violations[0]
	}
	return "risk_check_failed"
}

func (g *Gate) handleFill(ctx context.Context, payload []byte) error {
	var fill types.Fill
	if err := json.Unmarshal(payload, &fill); err != nil {
		return pipeerr.Wrap(err, pipeerr.ErrInvalidOrder, "decoding fill")
	}

	g.mu.Lock()
	p, ok := g.pending[fill.OrderID]
	g.mu.Unlock()
	if !ok {
		return nil
	}

	g.ledger.ApplyFill(p.UserID, p.Symbol, p.Side, fill.Quantity, fill.Price)

	filledNotional := fill.Quantity.Mul(fill.Price)
	g.mu.Lock()
	p.Notional = p.Notional.Sub(filledNotional)
	if p.Notional.LessThanOrEqual(decimal.Zero) {
		delete(g.pending, fill.OrderID)
	}
	g.mu.Unlock()
	return nil
}

func (g *Gate) handleCancelled(ctx context.Context, payload []byte) error {
	var cancelled struct {
		OrderID string `json:"order_id"`
	}
	if err := json.Unmarshal(payload, &cancelled); err != nil {
		return pipeerr.Wrap(err, pipeerr.ErrInvalidOrder, "decoding cancelled order")
	}

	g.mu.Lock()
	p, ok := g.pending[cancelled.OrderID]
	if ok {
		delete(g.pending, cancelled.OrderID)
	}
	g.mu.Unlock()
	if !ok {
		return nil
	}

	g.ledger.Release(p.UserID, p.Symbol, p.Side, p.Notional)
	return nil
}

func (g *Gate) reserve(order *types.Order) {
	state := g.ledger.Get(order.UserID, order.Symbol)
	referencePrice := state.Exposure
	if !state.Position.IsZero() {
		referencePrice = state.Exposure.Div(state.Position.Abs())
	}
	notional := order.Notional(referencePrice)
	g.ledger.Reserve(order.UserID, order.Symbol, order.Side, notional)

	g.mu.Lock()
	g.pending[order.OrderID] = &pendingReservation{
		UserID:   order.UserID,
		Symbol:   order.Symbol,
		Side:     order.Side,
		Notional: notional,
	}
	g.mu.Unlock()
}

// Evaluate runs the ordered check chain against order and returns whether it
// is approved. All four check stages execute and their violations
// accumulate, mirroring the original risk engine's "collect every
// violation, then decide" behavior rather than stopping at the first
// failure.
func (g *Gate) Evaluate(order *types.Order) (*types.RiskCheckResult, error) {
	result := &types.RiskCheckResult{OrderID: order.OrderID, Timestamp: time.Now()}

	err := g.breakers.Execute(g.breakerName, g.breakerThreshold, g.breakerCooldown, func() error {
		result.Violations = g.checkOrder(order)
		if len(result.Violations) > 0 {
			return pipeerr.New(pipeerr.ErrRiskLimitExceeded, "order failed risk/compliance checks").
				WithDetail("violations", result.Violations)
		}
		return nil
	})

	if err != nil {
		if pipeerr.CodeOf(err) == pipeerr.ErrServiceUnavailable {
			result.Violations = append(result.Violations, "circuit_breaker_open")
		}
		result.Approved = false
		return result, err
	}

	result.Approved = true
	return result, nil
}

func (g *Gate) checkOrder(order *types.Order) []string {
	var violations []string
	state := g.ledger.Get(order.UserID, order.Symbol)

	if limit, ok := g.positionLimits[order.Symbol]; ok {
		if violated, detail := checkPositionLimit(order, state, limit); violated {
			violations = append(violations, detail)
		}
	}

	for _, rule := range g.riskRules {
		if violated, detail := rule.Condition(order, state); violated {
			violations = append(violations, fmt.Sprintf("%s: %s", rule.Name, detail))
		}
	}

	for _, rule := range g.complianceRules {
		if violated, detail := rule.Condition(order, state); violated {
			violations = append(violations, fmt.Sprintf("%s: %s", rule.Name, detail))
		}
	}

	return violations
}

// checkPositionLimit projects the user's position after order fills
// completely and compares it, and its notional exposure, against the
// symbol's configured PositionLimit. The projection starts from
// state.Position plus state.Reserved — the notional of this user's other
// risk-approved, not-yet-settled orders in this symbol — converted back to
// position units at the reference price, so a second in-flight order is
// checked against what the first one already committed, not just what has
// actually settled.
func checkPositionLimit(order *types.Order, state types.RiskState, limit types.PositionLimit) (bool, string) {
	referencePrice := order.Price
	if order.OrderType == types.OrderTypeMarket {
		referencePrice = state.Exposure
		if !state.Position.IsZero() {
			referencePrice = state.Exposure.Div(state.Position.Abs())
		}
	}

	projected := state.Position
	if !referencePrice.IsZero() {
		projected = projected.Add(state.Reserved.Div(referencePrice))
	}
	if order.Side == types.SideBuy {
		projected = projected.Add(order.Quantity)
	} else {
		projected = projected.Sub(order.Quantity)
	}

	if order.Side == types.SideBuy && projected.GreaterThan(limit.MaxLong) {
		return true, fmt.Sprintf("projected long position %s exceeds max_long %s", projected, limit.MaxLong)
	}
	if order.Side == types.SideSell && projected.Neg().GreaterThan(limit.MaxShort) {
		return true, fmt.Sprintf("projected short position %s exceeds max_short %s", projected.Neg(), limit.MaxShort)
	}

	if referencePrice.IsZero() {
		return false, ""
	}

	exposure := projected.Abs().Mul(referencePrice)
	if exposure.GreaterThan(limit.MaxExposure) {
		return true, fmt.Sprintf("projected exposure %s exceeds max_exposure %s", exposure, limit.MaxExposure)
	}
	return false, ""
}
