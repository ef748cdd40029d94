package gateway

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func validRequest() *CreateOrderRequest {
	return &CreateOrderRequest{
		ClientOrderID: "c-1",
		Symbol:        "BTC/USD",
		Side:          "buy",
		OrderType:     "limit",
		Price:         decimal.RequireFromString("100"),
		Quantity:      decimal.RequireFromString("1"),
	}
}

func TestValidateOrder_AcceptsValidLimitOrder(t *testing.T) {
	assert.NoError(t, validateOrder(validRequest()))
}

func TestValidateOrder_RejectsZeroPriceForLimit(t *testing.T) {
	req := validRequest()
	req.Price = decimal.Zero
	assert.Error(t, validateOrder(req))
}

func TestValidateOrder_MarketOrderSkipsPriceCheck(t *testing.T) {
	req := validRequest()
	req.OrderType = "market"
	req.Price = decimal.Zero
	assert.NoError(t, validateOrder(req))
}

func TestValidateOrder_RejectsZeroQuantity(t *testing.T) {
	req := validRequest()
	req.Quantity = decimal.Zero
	assert.Error(t, validateOrder(req))
}

func TestValidateOrder_RejectsMissingSymbol(t *testing.T) {
	req := validRequest()
	req.Symbol = ""
	assert.Error(t, validateOrder(req))
}

func TestValidateOrder_RejectsUnknownSide(t *testing.T) {
	req := validRequest()
	req.Side = "long"
	assert.Error(t, validateOrder(req))
}

func TestValidateOrder_RejectsUnknownOrderType(t *testing.T) {
	req := validRequest()
	req.OrderType = "trailing_stop"
	assert.Error(t, validateOrder(req))
}

func TestValidateOrder_RequiresStopPriceForStopOrders(t *testing.T) {
	req := validRequest()
	req.OrderType = "stop"
	req.StopPrice = decimal.Zero
	assert.Error(t, validateOrder(req))

	req.StopPrice = decimal.RequireFromString("95")
	assert.NoError(t, validateOrder(req))
}

func TestValidateOrder_RequiresStopPriceForStopLimitOrders(t *testing.T) {
	req := validRequest()
	req.OrderType = "stop_limit"
	req.StopPrice = decimal.Zero
	assert.Error(t, validateOrder(req))
}
