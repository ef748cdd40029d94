// Package matching implements price-time-priority order matching, one
// OrderBook per symbol, shared by a single Engine.
package matching

import (
	"container/heap"
	"sync"

	"github.com/novaex/tradepipe/internal/types"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PriceLevel aggregates resting quantity at one price, for snapshots.
type PriceLevel struct {
	Price    string
	Quantity string
	Orders   int
}

// Snapshot is a depth-limited view of both sides of the book plus the last
// traded price.
type Snapshot struct {
	Symbol    string
	LastPrice string
	Bids      []PriceLevel
	Asks      []PriceLevel
}

// OrderHeap is a container/heap.Interface over resting orders on one side
// of the book. Ordering is price priority first, then arrival-time FIFO
// among equal prices — the same invariant the book exposes as "two sorted
// price levels, FIFO within a level," implemented as a single heap whose
// Less function breaks price ties by CreatedAt.
type OrderHeap struct {
	Orders []*types.Order
	Side   types.Side
}

func (h OrderHeap) Len() int { return len(h.Orders) }

func (h OrderHeap) Less(i, j int) bool {
	a, b := h.Orders[i], h.Orders[j]
	if a.Price.Equal(b.Price) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	if h.Side == types.SideBuy {
		return a.Price.GreaterThan(b.Price)
	}
	return a.Price.LessThan(b.Price)
}

func (h OrderHeap) Swap(i, j int) {
	h.Orders[i], h.Orders[j] = h.Orders[j], h.Orders[i]
}

func (h *OrderHeap) Push(x interface{}) {
	h.Orders = append(h.Orders, x.(*types.Order))
}

func (h *OrderHeap) Pop() interface{} {
	old := h.Orders
	n := len(old)
	order := old[n-1]
	old[n-1] = nil
	h.Orders = old[:n-1]
	return order
}

// Peek returns the top of the heap without removing it.
func (h *OrderHeap) Peek() *types.Order {
	if len(h.Orders) == 0 {
		return nil
	}
	return h.Orders[0]
}

// OrderBook holds resting orders for a single symbol.
type OrderBook struct {
	Symbol    string
	Bids      *OrderHeap
	Asks      *OrderHeap
	StopBids  *OrderHeap
	StopAsks  *OrderHeap
	Orders    map[string]*types.Order
	LastPrice decimal.Decimal

	logger *zap.Logger
	mu     sync.RWMutex
}

// NewOrderBook creates an empty book for symbol.
func NewOrderBook(symbol string, logger *zap.Logger) *OrderBook {
	bids := &OrderHeap{Side: types.SideBuy}
	asks := &OrderHeap{Side: types.SideSell}
	stopBids := &OrderHeap{Side: types.SideBuy}
	stopAsks := &OrderHeap{Side: types.SideSell}
	heap.Init(bids)
	heap.Init(asks)
	heap.Init(stopBids)
	heap.Init(stopAsks)

	return &OrderBook{
		Symbol:   symbol,
		Bids:     bids,
		Asks:     asks,
		StopBids: stopBids,
		StopAsks: stopAsks,
		Orders:   make(map[string]*types.Order),
		logger:   logger,
	}
}

func (ob *OrderBook) removeFromHeap(h *OrderHeap, orderID string) {
	for i, o := range h.Orders {
		if o.OrderID == orderID {
			heap.Remove(h, i)
			return
		}
	}
}
