package provider

import (
	"context"
	"sync"
	"time"
)

// RateLimiter is a token bucket used to stay under the public API quotas.
// Tokens refill one per interval; bursts up to capacity are allowed.
type RateLimiter struct {
	mu       sync.Mutex
	tokens   int
	capacity int
	interval time.Duration
	last     time.Time
	now      func() time.Time
}

// NewRateLimiter creates a limiter allowing capacity calls per interval.
func NewRateLimiter(capacity int, interval time.Duration) *RateLimiter {
	return &RateLimiter{
		tokens:   capacity,
		capacity: capacity,
		interval: interval,
		last:     time.Now(),
		now:      time.Now,
	}
}

// Wait blocks until a token is available or ctx is cancelled.
func (r *RateLimiter) Wait(ctx context.Context) error {
	for {
		if r.take() {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(r.interval):
		}
	}
}

func (r *RateLimiter) take() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	elapsed := r.now().Sub(r.last)
	if refilled := int(elapsed / r.interval); refilled > 0 {
		r.tokens += refilled
		if r.tokens > r.capacity {
			r.tokens = r.capacity
		}
		r.last = r.last.Add(time.Duration(refilled) * r.interval)
	}

	if r.tokens == 0 {
		return false
	}
	r.tokens--
	return true
}
