// Package types defines the data model shared by every pipeline service:
// orders, trades, fills, risk state, and compliance records. It has no
// dependency on any other internal package.
package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Side is the direction of an order.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// OrderType enumerates the order lifecycles the matching engine understands.
type OrderType string

const (
	OrderTypeLimit      OrderType = "limit"
	OrderTypeMarket     OrderType = "market"
	OrderTypeStop       OrderType = "stop"
	OrderTypeStopLimit  OrderType = "stop_limit"
)

// TimeInForce controls what happens to an order's unfilled remainder.
type TimeInForce string

const (
	TIFGoodTilCancel TimeInForce = "GTC"
	TIFImmediateOrCancel TimeInForce = "IOC"
	TIFFillOrKill    TimeInForce = "FOK"
)

// OrderStatus tracks an order across its lifecycle.
type OrderStatus string

const (
	OrderStatusNew             OrderStatus = "new"
	OrderStatusAccepted        OrderStatus = "accepted"
	OrderStatusRejected        OrderStatus = "rejected"
	OrderStatusResting         OrderStatus = "resting"
	OrderStatusPartiallyFilled OrderStatus = "partially_filled"
	OrderStatusFilled          OrderStatus = "filled"
	OrderStatusCancelled       OrderStatus = "cancelled"
	OrderStatusExpired         OrderStatus = "expired"
)

// Order is the canonical representation of a client order as it flows
// through the gateway, risk gate, and matching engine.
type Order struct {
	OrderID       string
	ClientOrderID string
	UserID        string
	Symbol        string
	Side          Side
	OrderType     OrderType
	TimeInForce   TimeInForce

	// Price is required for Limit and StopLimit orders, ignored for Market.
	Price decimal.Decimal
	// StopPrice is required for Stop and StopLimit orders.
	StopPrice decimal.Decimal

	Quantity        decimal.Decimal
	FilledQuantity  decimal.Decimal

	Status    OrderStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Remaining returns the quantity still unfilled.
func (o *Order) Remaining() decimal.Decimal {
	return o.Quantity.Sub(o.FilledQuantity)
}

// IsStop reports whether this order only becomes live once its stop price
// has been crossed by the last traded price.
func (o *Order) IsStop() bool {
	return o.OrderType == OrderTypeStop || o.OrderType == OrderTypeStopLimit
}

// Notional returns quantity*price for limit-style orders; callers must
// supply a reference price for market orders since Price may be zero.
func (o *Order) Notional(referencePrice decimal.Decimal) decimal.Decimal {
	p := o.Price
	if o.OrderType == OrderTypeMarket {
		p = referencePrice
	}
	return o.Quantity.Mul(p)
}

// OrderResponse is what the gateway returns synchronously to a submitter.
type OrderResponse struct {
	OrderID       string    `json:"order_id"`
	ClientOrderID string    `json:"client_order_id"`
	Status        string    `json:"status"`
	Reason        string    `json:"reason"`
	Timestamp     time.Time `json:"timestamp"`
}
