// Package ratelimit throttles requests per client key with token buckets.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per key.
type RateLimiter struct {
	limit rate.Limit
	burst int
	ttl   time.Duration
	now   func() time.Time

	mu      sync.Mutex
	buckets map[string]*bucket
}

type Option func(*RateLimiter)

func WithClock(now func() time.Time) Option {
	return func(rl *RateLimiter) {
		rl.now = now
	}
}

// NewRateLimiter allows burst requests at once per key, refilled at
// perSecond. Buckets idle for longer than ttl are dropped by Cleanup.
func NewRateLimiter(burst int, perSecond float64, ttl time.Duration, opts ...Option) *RateLimiter {
	rl := &RateLimiter{
		limit:   rate.Limit(perSecond),
		burst:   burst,
		ttl:     ttl,
		now:     time.Now,
		buckets: make(map[string]*bucket),
	}
	for _, opt := range opts {
		opt(rl)
	}
	return rl
}

// Allow takes a token for key. When none is available it returns false and
// the wait until the next token.
func (rl *RateLimiter) Allow(key string) (bool, time.Duration) {
	now := rl.now()

	rl.mu.Lock()
	b, ok := rl.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.buckets[key] = b
	}
	b.lastSeen = now
	rl.mu.Unlock()

	res := b.limiter.ReserveN(now, 1)
	if !res.OK() {
		return false, rl.ttl
	}
	if delay := res.DelayFrom(now); delay > 0 {
		res.CancelAt(now)
		return false, delay
	}
	return true, 0
}

func (rl *RateLimiter) Reset(key string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	delete(rl.buckets, key)
}

// Cleanup drops buckets not used within the ttl.
func (rl *RateLimiter) Cleanup() int {
	now := rl.now()
	rl.mu.Lock()
	defer rl.mu.Unlock()

	removed := 0
	for key, b := range rl.buckets {
		if now.Sub(b.lastSeen) > rl.ttl {
			delete(rl.buckets, key)
			removed++
		}
	}
	return removed
}

// StartCleanup runs Cleanup every ttl until ctx is done.
func (rl *RateLimiter) StartCleanup(ctx context.Context) {
	if rl.ttl <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(rl.ttl)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				rl.Cleanup()
			}
		}
	}()
}

func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.buckets)
}
