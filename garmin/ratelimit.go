package garmin

import (
	"context"
	"sync/atomic"

	"golang.org/x/time/rate"
)

// rateLimiter encapsulates the local token-bucket rate limiting. The
// Connect API is undocumented and publishes no limits; 60 requests per
// minute keeps the client well under what the web frontend generates
// during normal browsing.
type rateLimiter struct {
	limiter        *rate.Limiter
	isAutoLimiting atomic.Bool
}

// newRateLimiter initializes a rate limiter configured for 60 requests
// per minute. The burst matches the limit so short scripted sessions
// never wait.
func newRateLimiter() *rateLimiter {
	rl := &rateLimiter{
		limiter: rate.NewLimiter(rate.Limit(1), 60),
	}
	rl.isAutoLimiting.Store(true) // Default to honoring local rate limits
	return rl
}

// Wait blocks until a token is available or the context is canceled.
func (rl *rateLimiter) Wait(ctx context.Context) error {
	if !rl.isAutoLimiting.Load() {
		return nil
	}
	return rl.limiter.Wait(ctx)
}

// SetAutoLimiting enables or disables the rate limiter.
func (rl *rateLimiter) SetAutoLimiting(enabled bool) {
	rl.isAutoLimiting.Store(enabled)
}
