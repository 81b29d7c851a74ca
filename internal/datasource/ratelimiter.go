package datasource

import (
	"context"
	"sync"
	"time"
)

// RateLimiter is a token bucket shared by every request to one source
type RateLimiter struct {
	tokens         int
	maxTokens      int
	refillRate     time.Duration
	lastRefillTime time.Time
	mu             sync.Mutex
}

// NewRateLimiter creates a limiter that allows bursts of maxTokens and then
// one request per refillRate.
func NewRateLimiter(maxTokens int, refillRate time.Duration) *RateLimiter {
	if maxTokens < 1 {
		maxTokens = 1
	}
	return &RateLimiter{
		tokens:         maxTokens,
		maxTokens:      maxTokens,
		refillRate:     refillRate,
		lastRefillTime: time.Now(),
	}
}

// PerSecond builds a limiter from a requests-per-second budget. A
// non-positive rate disables limiting and returns nil.
func PerSecond(rps float64, burst int) *RateLimiter {
	if rps <= 0 {
		return nil
	}
	return NewRateLimiter(burst, time.Duration(float64(time.Second)/rps))
}

// Wait blocks until a token is available or ctx is done
func (rl *RateLimiter) Wait(ctx context.Context) error {
	if rl == nil {
		return nil
	}
	for {
		wait := rl.reserve()
		if wait == 0 {
			return nil
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// reserve takes a token and returns 0, or returns how long until the next refill.
func (rl *RateLimiter) reserve() time.Duration {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	if rl.refillRate <= 0 {
		return 0
	}

	elapsed := now.Sub(rl.lastRefillTime)
	if added := int(elapsed / rl.refillRate); added > 0 {
		rl.tokens += added
		if rl.tokens > rl.maxTokens {
			rl.tokens = rl.maxTokens
		}
		rl.lastRefillTime = rl.lastRefillTime.Add(time.Duration(added) * rl.refillRate)
	}

	if rl.tokens > 0 {
		rl.tokens--
		return 0
	}
	return rl.refillRate - now.Sub(rl.lastRefillTime)
}

// WithRateLimit waits for a token, then runs fn
func WithRateLimit(ctx context.Context, limiter *RateLimiter, fn func() error) error {
	if err := limiter.Wait(ctx); err != nil {
		return err
	}
	return fn()
}
