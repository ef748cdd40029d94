package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Trade is a single match between a resting (maker) and incoming (taker)
// order, produced by the matching engine.
type Trade struct {
	TradeID     string
	Symbol      string
	Price       decimal.Decimal
	Quantity    decimal.Decimal
	TakerOrderID string
	MakerOrderID string
	BuyOrderID  string
	SellOrderID string
	TakerSide   Side
	MakerSide   Side
	Timestamp   time.Time
}

// Fill is one atomic execution of an order against a venue, emitted by the
// execution engine. Several Fills may exist for a single order.
type Fill struct {
	FillID        string
	OrderID       string
	ClientOrderID string
	Symbol        string
	Price         decimal.Decimal
	Quantity      decimal.Decimal
	Side          Side
	VenueID       string
	Timestamp     time.Time
}

// ExecutionReport is the per-order rollup of all Fills recorded against it.
// Unlike Fill, there is at most one live ExecutionReport per order; it is
// republished whenever a new Fill changes its totals.
type ExecutionReport struct {
	OrderID           string
	ClientOrderID     string
	Symbol            string
	Status            OrderStatus
	FilledQuantity    decimal.Decimal
	RemainingQuantity decimal.Decimal
	AvgPrice          decimal.Decimal
	Timestamp         time.Time
}

// ApplyFill folds a new Fill into the report's running totals, recomputing
// the volume-weighted average price.
func (r *ExecutionReport) ApplyFill(f Fill, orderQuantity decimal.Decimal) {
	prevNotional := r.AvgPrice.Mul(r.FilledQuantity)
	r.FilledQuantity = r.FilledQuantity.Add(f.Quantity)
	if r.FilledQuantity.IsPositive() {
		r.AvgPrice = prevNotional.Add(f.Price.Mul(f.Quantity)).Div(r.FilledQuantity)
	}
	r.RemainingQuantity = orderQuantity.Sub(r.FilledQuantity)
	if r.RemainingQuantity.IsZero() {
		r.Status = OrderStatusFilled
	} else {
		r.Status = OrderStatusPartiallyFilled
	}
	r.Timestamp = f.Timestamp
}
