package execution

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/novaex/tradepipe/internal/types"
	"github.com/shopspring/decimal"
)

// SimulatedConnector fills an order immediately at its own price, falling
// back to a configured reference price for market orders that carry no
// price. It stands in for the outbound venue API call a production
// connector (Binance, Coinbase, ...) would make.
type SimulatedConnector struct {
	venueID  string
	fallback map[string]decimal.Decimal
}

// NewSimulatedConnector builds a connector identified as venueID, using
// fallback reference prices for market orders.
func NewSimulatedConnector(venueID string, fallback map[string]decimal.Decimal) *SimulatedConnector {
	if fallback == nil {
		fallback = map[string]decimal.Decimal{}
	}
	return &SimulatedConnector{venueID: venueID, fallback: fallback}
}

func (c *SimulatedConnector) VenueID() string { return c.venueID }

func (c *SimulatedConnector) Execute(ctx context.Context, order *types.Order) (types.Fill, error) {
	price := order.Price
	if price.IsZero() {
		price = c.fallback[order.Symbol]
	}
	return types.Fill{
		FillID:        uuid.NewString(),
		OrderID:       order.OrderID,
		ClientOrderID: order.ClientOrderID,
		Symbol:        order.Symbol,
		Price:         price,
		Quantity:      order.Remaining(),
		Side:          order.Side,
		VenueID:       c.venueID,
		Timestamp:     time.Now(),
	}, nil
}
