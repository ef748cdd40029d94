// Package ratelimit provides the fixed-window per-client limiter the order
// gateway applies after validation and before accepting an order. Each key
// has a counter that starts with its first request and resets when the
// period ends; it is not a sliding window, so up to twice the limit can be
// admitted across a window boundary.
package ratelimit

import (
	"context"

	"github.com/novaex/tradepipe/internal/pipeerr"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// Limiter wraps ulule/limiter with a fixed rate, keyed per caller (API key
// or user ID).
type Limiter struct {
	underlying *limiter.Limiter
}

// New builds a Limiter allowing `count` requests per `period`.
func New(period limiter.Rate) *Limiter {
	store := memory.NewStore()
	return &Limiter{underlying: limiter.New(store, period)}
}

// Allowed reports whether key (the caller identity) may proceed, and if not
// returns a pipeerr.ErrRateLimited error carrying the reset time as detail.
func (l *Limiter) Allowed(ctx context.Context, key string) (bool, error) {
	ctxLimit, err := l.underlying.Get(ctx, key)
	if err != nil {
		return false, pipeerr.Wrap(err, pipeerr.ErrInternal, "rate limiter store unavailable")
	}
	if ctxLimit.Reached {
		return false, pipeerr.New(pipeerr.ErrRateLimited, "rate limit exceeded").
			WithDetail("limit", ctxLimit.Limit).
			WithDetail("reset", ctxLimit.Reset)
	}
	return true, nil
}
