package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// PositionLimit bounds one user's position and exposure in a single symbol,
// enforced by the risk gate before an order is forwarded to matching.
type PositionLimit struct {
	Symbol        string
	MaxLong       decimal.Decimal
	MaxShort      decimal.Decimal
	MaxExposure   decimal.Decimal
	MaxDailyPnL   decimal.Decimal
	MaxDrawdown   decimal.Decimal
}

// RiskState tracks one user's position and open exposure in one symbol.
// Reserved is the notional value of orders that have been risk-approved but
// not yet filled, cancelled, or expired; it is what keeps the position
// check honest about exposure the matching engine hasn't settled yet.
type RiskState struct {
	UserID         string
	Symbol         string
	Position       decimal.Decimal
	Reserved       decimal.Decimal
	Exposure       decimal.Decimal
	RealizedPnL    decimal.Decimal
	UnrealizedPnL  decimal.Decimal
	UpdatedAt      time.Time
}

// RiskCheckResult is returned by the risk gate for every order it evaluates.
type RiskCheckResult struct {
	OrderID    string
	Approved   bool
	Violations []string
	Timestamp  time.Time
}

// RiskRule is a named, pluggable predicate evaluated against an order and
// the submitter's current risk state. Rules beyond position-limit checking
// are deliberately open-ended: the pipeline ships a small default set and
// lets operators register more without changing the risk gate itself.
type RiskRule struct {
	Name      string
	Condition func(order *Order, state RiskState) (violated bool, detail string)
}

// ComplianceRule has the same shape as RiskRule but represents regulatory
// rather than financial-risk checks (e.g. trading-halt windows). Kept as a
// distinct type because the two are governed, audited, and configured
// independently even though they execute identically.
type ComplianceRule struct {
	Name      string
	Condition func(order *Order, state RiskState) (violated bool, detail string)
}

// CircuitState is the breaker's current mode.
type CircuitState string

const (
	CircuitClosed   CircuitState = "closed"
	CircuitOpen     CircuitState = "open"
	CircuitHalfOpen CircuitState = "half_open"
)

// CircuitBreakerState is a snapshot of a named breaker, used for
// introspection endpoints and logging.
type CircuitBreakerState struct {
	Name          string
	State         CircuitState
	ErrorCount    uint32
	CooldownUntil time.Time
}
