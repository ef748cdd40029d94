package risk

import (
	"fmt"
	"sync"

	"github.com/novaex/tradepipe/internal/types"
	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/stat"
)

// VolatilityTracker keeps a bounded rolling window of traded prices per
// symbol, feeding the default excessive-volatility risk rule. It is
// intentionally separate from the matching engine's own last-price state:
// the risk gate only needs a statistical summary, not the book itself.
type VolatilityTracker struct {
	mu     sync.Mutex
	window int
	prices map[string][]float64
}

// NewVolatilityTracker returns a tracker keeping at most window samples per
// symbol.
func NewVolatilityTracker(window int) *VolatilityTracker {
	if window <= 1 {
		window = 20
	}
	return &VolatilityTracker{window: window, prices: make(map[string][]float64)}
}

// Record appends a newly observed trade price for symbol, dropping the
// oldest sample once the window is full.
func (t *VolatilityTracker) Record(symbol string, price decimal.Decimal) {
	t.mu.Lock()
	defer t.mu.Unlock()
	p, _ := price.Float64()
	series := append(t.prices[symbol], p)
	if len(series) > t.window {
		series = series[len(series)-t.window:]
	}
	t.prices[symbol] = series
}

// coefficientOfVariation returns stddev/mean for symbol's current window, or
// zero if too few samples exist to estimate it.
func (t *VolatilityTracker) coefficientOfVariation(symbol string) float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	series := t.prices[symbol]
	if len(series) < 2 {
		return 0
	}
	mean, std := stat.MeanStdDev(series, nil)
	if mean == 0 {
		return 0
	}
	return std / mean
}

// DefaultRiskRules returns the small set of pluggable risk rules the gate
// ships with. Operators may register additional RiskRules at startup
// without touching the gate itself.
func DefaultRiskRules(tracker *VolatilityTracker, maxCoefficientOfVariation float64) []types.RiskRule {
	if maxCoefficientOfVariation <= 0 {
		maxCoefficientOfVariation = 0.2
	}
	return []types.RiskRule{
		{
			Name: "ExcessiveVolatility",
			Condition: func(order *types.Order, state types.RiskState) (bool, string) {
				cv := tracker.coefficientOfVariation(order.Symbol)
				if cv > maxCoefficientOfVariation {
					return true, fmt.Sprintf("price coefficient of variation %.4f exceeds %.4f for %s", cv, maxCoefficientOfVariation, order.Symbol)
				}
				return false, ""
			},
		},
	}
}

// DefaultComplianceRules returns the gate's built-in compliance rules. The
// set is deliberately empty: regulatory rules (trading-halt windows,
// restricted jurisdictions) are operator-configured and registered the same
// way as RiskRules, never hardcoded here.
func DefaultComplianceRules() []types.ComplianceRule {
	return nil
}
