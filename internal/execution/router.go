package execution

import "github.com/novaex/tradepipe/internal/pipeerr"

// Route pairs a symbol with the venue that executes it.
type Route struct {
	Symbol  string
	VenueID string
}

// Router is a static symbol-to-venue lookup table, mirroring the original
// execution engine's find_exchange_for_symbol.
type Router struct {
	bySymbol map[string]string
}

// NewRouter builds a Router from a fixed route table.
func NewRouter(routes []Route) *Router {
	m := make(map[string]string, len(routes))
	for _, r := range routes {
		m[r.Symbol] = r.VenueID
	}
	return &Router{bySymbol: m}
}

// RouteFor returns the venue ID configured for symbol.
func (r *Router) RouteFor(symbol string) (string, error) {
	venueID, ok := r.bySymbol[symbol]
	if !ok {
		return "", pipeerr.New(pipeerr.ErrSymbolNotFound, "no venue configured for symbol "+symbol)
	}
	return venueID, nil
}
