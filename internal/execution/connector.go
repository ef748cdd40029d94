// Package execution routes matched orders to venue connectors, retrying
// through a per-venue circuit breaker and rate limiter, and emits Fills and
// ExecutionReports back onto the bus.
package execution

import (
	"context"

	"github.com/novaex/tradepipe/internal/types"
)

// VenueConnector executes one order against a specific trading venue. One
// implementation exists per venue type, mirroring the original execution
// engine's ExchangeConnector.
type VenueConnector interface {
	VenueID() string
	Execute(ctx context.Context, order *types.Order) (types.Fill, error)
}
