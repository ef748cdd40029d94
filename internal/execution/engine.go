package execution

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/novaex/tradepipe/internal/breaker"
	"github.com/novaex/tradepipe/internal/bus"
	"github.com/novaex/tradepipe/internal/pipeerr"
	"github.com/novaex/tradepipe/internal/types"
	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const consumerGroup = "execution"

// Engine consumes orders the matching engine has flagged as needing
// external routing — an IOC/FOK remainder discarded for lack of internal
// liquidity, or whatever a market order couldn't match internally — and
// routes each to a venue connector, emitting Fills and ExecutionReports.
// Concurrent venue calls run through a bounded ants pool rather than one
// goroutine per order.
type Engine struct {
	logger     *zap.Logger
	bus        bus.Bus
	breakers   *breaker.Factory
	router     *Router
	connectors map[string]VenueConnector
	pool       *ants.Pool

	maxRetries       int
	retryDelay       time.Duration
	venuesPerSecond  float64
	breakerThreshold uint32
	breakerCooldown  time.Duration

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	reports  map[string]*types.ExecutionReport
}

// NewEngine builds an Engine with a bounded worker pool of size poolSize.
func NewEngine(
	logger *zap.Logger,
	b bus.Bus,
	breakers *breaker.Factory,
	router *Router,
	connectors []VenueConnector,
	poolSize, maxRetries int,
	retryDelay time.Duration,
	venuesPerSecond float64,
	breakerThreshold uint32,
	breakerCooldown time.Duration,
) (*Engine, error) {
	if poolSize <= 0 {
		poolSize = 64
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, pipeerr.Wrap(err, pipeerr.ErrInternal, "creating execution worker pool")
	}

	byVenue := make(map[string]VenueConnector, len(connectors))
	for _, c := range connectors {
		byVenue[c.VenueID()] = c
	}

	return &Engine{
		logger:           logger.Named("execution"),
		bus:              b,
		breakers:         breakers,
		router:           router,
		connectors:       byVenue,
		pool:             pool,
		maxRetries:       maxRetries,
		retryDelay:       retryDelay,
		venuesPerSecond:  venuesPerSecond,
		breakerThreshold: breakerThreshold,
		breakerCooldown:  breakerCooldown,
		limiters:         make(map[string]*rate.Limiter),
		reports:          make(map[string]*types.ExecutionReport),
	}, nil
}

// Start subscribes to orders.matched. It deliberately does not subscribe to
// orders.risk-approved: that topic carries every accepted order, including
// GTC limit orders that simply rest on the book without crossing, and a
// venue connector would otherwise "execute" those in full before the
// matching engine ever touches them.
func (e *Engine) Start(ctx context.Context) error {
	return e.bus.Subscribe(ctx, bus.TopicOrdersMatched, consumerGroup, e.handleMatched)
}

// Close releases the worker pool.
func (e *Engine) Close() {
	e.pool.Release()
}

// handleMatched hands the order to the bounded pool and returns
// immediately; per-order failures are logged and reflected in a rejected
// ExecutionReport rather than causing bus redelivery of the whole batch.
func (e *Engine) handleMatched(ctx context.Context, payload []byte) error {
	var order types.Order
	if err := json.Unmarshal(payload, &order); err != nil {
		return pipeerr.Wrap(err, pipeerr.ErrInvalidOrder, "decoding matched order")
	}

	return e.pool.Submit(func() {
		e.execute(context.Background(), &order)
	})
}

func (e *Engine) execute(ctx context.Context, order *types.Order) {
	venueID, err := e.router.RouteFor(order.Symbol)
	if err != nil {
		e.reject(order, err)
		return
	}

	connector, ok := e.connectors[venueID]
	if !ok {
		e.reject(order, pipeerr.New(pipeerr.ErrVenueUnavailable, "no connector registered for venue "+venueID))
		return
	}

	limiter := e.limiterFor(venueID)
	var fill types.Fill
	var execErr error

	for attempt := 0; attempt <= e.maxRetries; attempt++ {
		if err := limiter.Wait(ctx); err != nil {
			execErr = pipeerr.Wrap(err, pipeerr.ErrExecutionTimeout, "venue rate limiter wait")
			break
		}

		execErr = e.breakers.Execute(venueID, e.breakerThreshold, e.breakerCooldown, func() error {
			f, err := connector.Execute(ctx, order)
			if err != nil {
				return err
			}
			fill = f
			return nil
		})
		if execErr == nil {
			break
		}
		if !pipeerr.IsRetryable(execErr) {
			break
		}
		time.Sleep(e.retryDelay)
	}

	if execErr != nil {
		e.reject(order, pipeerr.Wrap(execErr, pipeerr.ErrExecutionRetries, "execution failed after retries"))
		return
	}

	e.emitFill(ctx, order, fill)
}

func (e *Engine) limiterFor(venueID string) *rate.Limiter {
	e.mu.Lock()
	defer e.mu.Unlock()
	l, ok := e.limiters[venueID]
	if !ok {
		burst := int(e.venuesPerSecond)
		if burst < 1 {
			burst = 1
		}
		l = rate.NewLimiter(rate.Limit(e.venuesPerSecond), burst)
		e.limiters[venueID] = l
	}
	return l
}

func (e *Engine) emitFill(ctx context.Context, order *types.Order, fill types.Fill) {
	body, err := json.Marshal(fill)
	if err != nil {
		e.logger.Error("encoding fill", zap.Error(err))
		return
	}
	if err := e.bus.Publish(ctx, bus.TopicFills, body); err != nil {
		e.logger.Error("publishing fill", zap.Error(err))
		return
	}

	report := e.reportFor(order)
	report.ApplyFill(fill, order.Quantity)
	e.publishReport(ctx, report)
}

func (e *Engine) reject(order *types.Order, err error) {
	e.logger.Warn("execution rejected",
		zap.String("order_id", order.OrderID), zap.String("symbol", order.Symbol), zap.Error(err))

	report := e.reportFor(order)
	report.Status = types.OrderStatusRejected
	report.Timestamp = time.Now()
	e.publishReport(context.Background(), report)
}

func (e *Engine) reportFor(order *types.Order) *types.ExecutionReport {
	e.mu.Lock()
	defer e.mu.Unlock()
	r, ok := e.reports[order.OrderID]
	if !ok {
		r = &types.ExecutionReport{
			OrderID:           order.OrderID,
			ClientOrderID:     order.ClientOrderID,
			Symbol:            order.Symbol,
			RemainingQuantity: order.Quantity,
		}
		e.reports[order.OrderID] = r
	}
	return r
}

func (e *Engine) publishReport(ctx context.Context, report *types.ExecutionReport) {
	body, err := json.Marshal(report)
	if err != nil {
		e.logger.Error("encoding execution report", zap.Error(err))
		return
	}
	if err := e.bus.Publish(ctx, bus.TopicOrdersExecutionReports, body); err != nil {
		e.logger.Error("publishing execution report", zap.Error(err))
	}
}
