package matching

import (
	"container/heap"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/novaex/tradepipe/internal/pipeerr"
	"github.com/novaex/tradepipe/internal/types"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Engine owns one OrderBook per symbol and is safe for concurrent use
// across symbols; each symbol's book serializes its own order flow.
type Engine struct {
	books  map[string]*OrderBook
	logger *zap.Logger
	mu     sync.RWMutex
}

// NewEngine creates an empty Engine.
func NewEngine(logger *zap.Logger) *Engine {
	return &Engine{
		books:  make(map[string]*OrderBook),
		logger: logger.Named("matching"),
	}
}

func (e *Engine) bookFor(symbol string) *OrderBook {
	e.mu.RLock()
	ob, ok := e.books[symbol]
	e.mu.RUnlock()
	if ok {
		return ob
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if ob, ok = e.books[symbol]; ok {
		return ob
	}
	ob = NewOrderBook(symbol, e.logger)
	e.books[symbol] = ob
	return ob
}

// Process submits order to its symbol's book and returns the trades it
// produced. It is the one entry point the risk gate's downstream consumer
// calls for every risk-approved order.
func (e *Engine) Process(order *types.Order) ([]types.Trade, error) {
	if order.OrderID == "" {
		order.OrderID = uuid.New().String()
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now()
	}
	order.UpdatedAt = time.Now()

	if order.IsStop() {
		if order.StopPrice.IsZero() || order.StopPrice.IsNegative() {
			return nil, pipeerr.New(pipeerr.ErrInvalidOrder, "stop orders require a positive stop_price")
		}
	}

	ob := e.bookFor(order.Symbol)
	return ob.submit(order)
}

// Cancel removes a resting order from its book, if still resting.
func (e *Engine) Cancel(symbol, orderID string) error {
	e.mu.RLock()
	ob, ok := e.books[symbol]
	e.mu.RUnlock()
	if !ok {
		return pipeerr.New(pipeerr.ErrOrderNotFound, "no order book for symbol "+symbol)
	}
	return ob.cancel(orderID)
}

// Snapshot returns a depth-limited view of symbol's book.
func (e *Engine) Snapshot(symbol string, depth int) (*Snapshot, error) {
	e.mu.RLock()
	ob, ok := e.books[symbol]
	e.mu.RUnlock()
	if !ok {
		return nil, pipeerr.New(pipeerr.ErrSymbolNotFound, "no order book for symbol "+symbol)
	}
	return ob.snapshot(depth), nil
}

// submit is the core matching algorithm: it handles stop promotion, then
// dispatches to the market/limit crossing loop, then applies the order's
// TimeInForce to whatever remains.
func (ob *OrderBook) submit(order *types.Order) ([]types.Trade, error) {
	ob.mu.Lock()
	defer ob.mu.Unlock()

	ob.Orders[order.OrderID] = order

	if order.IsStop() {
		triggered := ob.stopTriggered(order)
		if !triggered {
			order.Status = types.OrderStatusResting
			if order.Side == types.SideBuy {
				heap.Push(ob.StopBids, order)
			} else {
				heap.Push(ob.StopAsks, order)
			}
			return nil, nil
		}
		// Stop triggers immediately: treat as its underlying live type.
		if order.OrderType == types.OrderTypeStop {
			order.OrderType = types.OrderTypeMarket
		} else {
			order.OrderType = types.OrderTypeLimit
		}
	}

	trades, err := ob.match(order)
	if err != nil {
		return nil, err
	}

	if len(trades) > 0 {
		ob.LastPrice = trades[len(trades)-1].Price
	}

	ob.settleTimeInForce(order)
	ob.promoteStops()

	return trades, nil
}

func (ob *OrderBook) stopTriggered(order *types.Order) bool {
	if ob.LastPrice.IsZero() {
		return false
	}
	if order.Side == types.SideBuy {
		return ob.LastPrice.GreaterThanOrEqual(order.StopPrice)
	}
	return ob.LastPrice.LessThanOrEqual(order.StopPrice)
}

// match crosses order against the opposite side of the book until it is
// filled, the book runs dry, or (for limit orders) prices no longer cross.
// FOK is pre-checked for full fillability before any trade is recorded, so
// a kill never leaves a partial trade behind.
func (ob *OrderBook) match(order *types.Order) ([]types.Trade, error) {
	opposite := ob.Asks
	if order.Side == types.SideSell {
		opposite = ob.Bids
	}

	if order.TimeInForce == types.TIFFillOrKill && !ob.fullyFillable(order, opposite) {
		order.Status = types.OrderStatusCancelled
		return nil, nil
	}

	var trades []types.Trade
	for opposite.Len() > 0 && order.Remaining().IsPositive() {
		resting := opposite.Peek()
		if !ob.crosses(order, resting) {
			break
		}

		trade := matchOrders(order, resting)
		trades = append(trades, trade)

		if resting.Remaining().IsZero() {
			resting.Status = types.OrderStatusFilled
			heap.Pop(opposite)
			delete(ob.Orders, resting.OrderID)
		} else {
			resting.Status = types.OrderStatusPartiallyFilled
		}
	}

	if order.FilledQuantity.IsPositive() {
		if order.Remaining().IsZero() {
			order.Status = types.OrderStatusFilled
		} else {
			order.Status = types.OrderStatusPartiallyFilled
		}
	}

	return trades, nil
}

// crosses reports whether the incoming order may trade against resting at
// resting's price.
func (ob *OrderBook) crosses(order, resting *types.Order) bool {
	if order.OrderType == types.OrderTypeMarket {
		return true
	}
	if order.Side == types.SideBuy {
		return resting.Price.LessThanOrEqual(order.Price)
	}
	return resting.Price.GreaterThanOrEqual(order.Price)
}

// fullyFillable reports whether order's entire quantity could cross the
// opposite side right now, without mutating any state.
func (ob *OrderBook) fullyFillable(order *types.Order, opposite *OrderHeap) bool {
	remaining := order.Remaining()
	for _, resting := range opposite.Orders {
		if remaining.LessThanOrEqual(decimal.Zero) {
			break
		}
		if !ob.crosses(order, resting) {
			continue
		}
		avail := resting.Remaining()
		if avail.GreaterThanOrEqual(remaining) {
			remaining = decimal.Zero
			break
		}
		remaining = remaining.Sub(avail)
	}
	return remaining.LessThanOrEqual(decimal.Zero)
}

// settleTimeInForce handles what happens to an order's unfilled remainder
// once matching stops: GTC rests on the book, IOC discards the remainder,
// and a FOK order only reaches here with a remainder when its pre-check
// killed it before any fill, so it is cancelled and removed.
func (ob *OrderBook) settleTimeInForce(order *types.Order) {
	if order.Remaining().IsZero() {
		return
	}

	switch order.TimeInForce {
	case types.TIFImmediateOrCancel, types.TIFFillOrKill:
		if order.FilledQuantity.IsPositive() {
			order.Status = types.OrderStatusPartiallyFilled
		} else {
			order.Status = types.OrderStatusCancelled
		}
		delete(ob.Orders, order.OrderID)
	default: // GTC
		if order.OrderType == types.OrderTypeMarket {
			// Market orders never rest; an unfilled remainder is discarded.
			order.Status = types.OrderStatusPartiallyFilled
			delete(ob.Orders, order.OrderID)
			return
		}
		order.Status = types.OrderStatusResting
		if order.FilledQuantity.IsPositive() {
			order.Status = types.OrderStatusPartiallyFilled
		}
		if order.Side == types.SideBuy {
			heap.Push(ob.Bids, order)
		} else {
			heap.Push(ob.Asks, order)
		}
	}
}

// promoteStops moves any resting stop order whose trigger has now been
// crossed by LastPrice onto the live book, re-running match for each.
func (ob *OrderBook) promoteStops() {
	for {
		promoted := false

		for ob.StopBids.Len() > 0 {
			top := ob.StopBids.Peek()
			if ob.LastPrice.IsZero() || ob.LastPrice.LessThan(top.StopPrice) {
				break
			}
			heap.Pop(ob.StopBids)
			if top.OrderType == types.OrderTypeStop {
				top.OrderType = types.OrderTypeMarket
			} else {
				top.OrderType = types.OrderTypeLimit
			}
			trades, _ := ob.match(top)
			if len(trades) > 0 {
				ob.LastPrice = trades[len(trades)-1].Price
			}
			ob.settleTimeInForce(top)
			promoted = true
		}

		for ob.StopAsks.Len() > 0 {
			top := ob.StopAsks.Peek()
			if ob.LastPrice.IsZero() || ob.LastPrice.GreaterThan(top.StopPrice) {
				break
			}
			heap.Pop(ob.StopAsks)
			if top.OrderType == types.OrderTypeStop {
				top.OrderType = types.OrderTypeMarket
			} else {
				top.OrderType = types.OrderTypeLimit
			}
			trades, _ := ob.match(top)
			if len(trades) > 0 {
				ob.LastPrice = trades[len(trades)-1].Price
			}
			ob.settleTimeInForce(top)
			promoted = true
		}

		if !promoted {
			return
		}
	}
}

// matchOrders records one trade between taker and a resting maker, at the
// maker's price, for the minimum of their remaining quantities.
func matchOrders(taker, maker *types.Order) types.Trade {
	quantity := taker.Remaining()
	if maker.Remaining().LessThan(quantity) {
		quantity = maker.Remaining()
	}

	taker.FilledQuantity = taker.FilledQuantity.Add(quantity)
	maker.FilledQuantity = maker.FilledQuantity.Add(quantity)

	trade := types.Trade{
		TradeID:      uuid.New().String(),
		Symbol:       maker.Symbol,
		Price:        maker.Price,
		Quantity:     quantity,
		TakerOrderID: taker.OrderID,
		MakerOrderID: maker.OrderID,
		TakerSide:    taker.Side,
		MakerSide:    maker.Side,
		Timestamp:    time.Now(),
	}
	if taker.Side == types.SideBuy {
		trade.BuyOrderID, trade.SellOrderID = taker.OrderID, maker.OrderID
	} else {
		trade.BuyOrderID, trade.SellOrderID = maker.OrderID, taker.OrderID
	}
	return trade
}

func (ob *OrderBook) cancel(orderID string) error {
	ob.mu.Lock()
	defer ob.mu.Unlock()

	order, ok := ob.Orders[orderID]
	if !ok {
		return pipeerr.New(pipeerr.ErrOrderNotFound, "order not found: "+orderID)
	}

	switch {
	case order.IsStop() && order.Side == types.SideBuy:
		ob.removeFromHeap(ob.StopBids, orderID)
	case order.IsStop():
		ob.removeFromHeap(ob.StopAsks, orderID)
	case order.Side == types.SideBuy:
		ob.removeFromHeap(ob.Bids, orderID)
	default:
		ob.removeFromHeap(ob.Asks, orderID)
	}

	delete(ob.Orders, orderID)
	order.Status = types.OrderStatusCancelled
	order.UpdatedAt = time.Now()
	return nil
}

func (ob *OrderBook) snapshot(depth int) *Snapshot {
	ob.mu.RLock()
	defer ob.mu.RUnlock()

	s := &Snapshot{Symbol: ob.Symbol, LastPrice: ob.LastPrice.String()}
	s.Bids = aggregateLevels(ob.Bids.Orders, depth)
	s.Asks = aggregateLevels(ob.Asks.Orders, depth)
	return s
}

func aggregateLevels(orders []*types.Order, depth int) []PriceLevel {
	byPrice := make(map[string]*PriceLevel)
	var order []string
	for _, o := range orders {
		key := o.Price.String()
		level, ok := byPrice[key]
		if !ok {
			level = &PriceLevel{Price: key}
			byPrice[key] = level
			order = append(order, key)
		}
		level.Quantity = decimal.RequireFromString(orDefault(level.Quantity, "0")).Add(o.Remaining()).String()
		level.Orders++
	}
	levels := make([]PriceLevel, 0, len(order))
	for _, key := range order {
		levels = append(levels, *byPrice[key])
	}
	if depth > 0 && len(levels) > depth {
		levels = levels[:depth]
	}
	return levels
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
