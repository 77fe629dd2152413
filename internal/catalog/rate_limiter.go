package catalog

import (
	"context"

	"golang.org/x/time/rate"
)

type RateLimiter struct {
	limiter *rate.Limiter
}

func NewRateLimiter(requestsPerSecond int) *RateLimiter {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 1
	}
	return &RateLimiter{limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), 1)}
}

// WaitTurn blocks until the next request may go out or ctx is done.
func (r *RateLimiter) WaitTurn(ctx context.Context) error {
	return r.limiter.Wait(ctx)
}
