package gateway

import (
	"github.com/novaex/tradepipe/internal/pipeerr"
	"github.com/novaex/tradepipe/internal/types"
	"github.com/shopspring/decimal"
)

// CreateOrderRequest is the wire shape of POST /orders. Price/StopPrice are
// optional depending on order_type; Quantity is always required.
type CreateOrderRequest struct {
	ClientOrderID string          `json:"client_order_id" binding:"required"`
	Symbol        string          `json:"symbol" binding:"required"`
	Side          string          `json:"side" binding:"required"`
	OrderType     string          `json:"order_type" binding:"required"`
	TimeInForce   string          `json:"time_in_force"`
	Price         decimal.Decimal `json:"price"`
	StopPrice     decimal.Decimal `json:"stop_price"`
	Quantity      decimal.Decimal `json:"quantity" binding:"required"`
}

// validateOrder enforces the rule order the gateway has always used:
// price, then quantity, then symbol, then side, then order_type, then
// stop_price. The order matters for which error a caller sees first when
// several fields are wrong at once.
func validateOrder(req *CreateOrderRequest) error {
	orderType := types.OrderType(req.OrderType)

	if orderType != types.OrderTypeMarket && !req.Price.IsPositive() {
		return pipeerr.New(pipeerr.ErrInvalidOrder, "price must be greater than zero for non-market orders")
	}
	if !req.Quantity.IsPositive() {
		return pipeerr.New(pipeerr.ErrInvalidOrder, "quantity must be greater than zero")
	}
	if req.Symbol == "" {
		return pipeerr.New(pipeerr.ErrInvalidOrder, "symbol is required")
	}

	side := types.Side(req.Side)
	if side != types.SideBuy && side != types.SideSell {
		return pipeerr.New(pipeerr.ErrInvalidOrder, "side must be buy or sell")
	}

	switch orderType {
	case types.OrderTypeLimit, types.OrderTypeMarket, types.OrderTypeStop, types.OrderTypeStopLimit:
	default:
		return pipeerr.New(pipeerr.ErrInvalidOrder, "unsupported order_type")
	}

	if (orderType == types.OrderTypeStop || orderType == types.OrderTypeStopLimit) && !req.StopPrice.IsPositive() {
		return pipeerr.New(pipeerr.ErrInvalidOrder, "stop_price is required and must be greater than zero for stop/stop_limit orders")
	}

	return nil
}
