// Package risk implements the ordered risk/compliance gate every incoming
// order passes through before reaching the matching engine,
// plus the reservation ledger that keeps open-order exposure visible
// before a fill ever lands.
package risk

import (
	"sync"
	"time"

	"github.com/novaex/tradepipe/internal/types"
	"github.com/shopspring/decimal"
)

// Ledger tracks per-user, per-symbol RiskState, including reserved
// exposure for orders that have been approved but not yet settled.
type Ledger struct {
	mu     sync.RWMutex
	states map[string]*types.RiskState // key: userID + "|" + symbol
}

// NewLedger returns an empty Ledger.
func NewLedger() *Ledger {
	return &Ledger{states: make(map[string]*types.RiskState)}
}

func key(userID, symbol string) string { return userID + "|" + symbol }

// Get returns a copy of a user's state in symbol, creating a zeroed entry
// if none exists yet.
func (l *Ledger) Get(userID, symbol string) types.RiskState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return *l.stateLocked(userID, symbol)
}

func (l *Ledger) stateLocked(userID, symbol string) *types.RiskState {
	k := key(userID, symbol)
	s, ok := l.states[k]
	if !ok {
		s = &types.RiskState{UserID: userID, Symbol: symbol}
		l.states[k] = s
	}
	return s
}

// Reserve books notional exposure for a just-approved order against the
// user's Reserved balance, signed by side (buy increases long reservation,
// sell increases short reservation represented as a negative delta).
func (l *Ledger) Reserve(userID, symbol string, side types.Side, notional decimal.Decimal) {
	l.mu.Lock()
	defer l.mu.Unlock()
	s := l.stateLocked(userID, symbol)
	if side == types.SideSell {
		notional = notional.Neg()
	}
	s.Reserved = s.Reserved.Add(notional)
	s.UpdatedAt = time.Now()
}

// Release credits back a reservation once the matching/execution pipeline
// reports the order filled, cancelled, or TIF-expired. For a partial
// release (a partial fill), callers pass only the delta still outstanding.
func (l *Ledger) Release(userID, symbol string, side types.Side, notional decimal.Decimal) {
	l.mu.Lock()
	defer l.mu.Unlock()
	s := l.stateLocked(userID, symbol)
	if side == types.SideSell {
		notional = notional.Neg()
	}
	s.Reserved = s.Reserved.Sub(notional)
	s.UpdatedAt = time.Now()
}

// ApplyFill moves filled notional from Reserved into Position once a trade
// settles, keeping the two balances consistent: Reserved only ever reflects
// the portion of an approved order that hasn't settled yet.
func (l *Ledger) ApplyFill(userID, symbol string, side types.Side, quantity, price decimal.Decimal) {
	l.mu.Lock()
	defer l.mu.Unlock()
	s := l.stateLocked(userID, symbol)

	signedQty := quantity
	if side == types.SideSell {
		signedQty = signedQty.Neg()
	}
	s.Position = s.Position.Add(signedQty)

	notional := quantity.Mul(price)
	if side == types.SideSell {
		notional = notional.Neg()
	}
	s.Reserved = s.Reserved.Sub(notional)
	s.Exposure = s.Position.Abs().Mul(price)
	s.UpdatedAt = time.Now()
}
