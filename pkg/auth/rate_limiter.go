package auth

import (
	"context"
	"sync"
	"time"
)

// RateLimiter answers whether the caller identified by key may proceed.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// SlidingWindowLimiter tracks request timestamps per key in memory. State is
// per process, so limits apply per instance; deployments that need shared
// limits use the DynamoDB-backed limiter instead.
type SlidingWindowLimiter struct {
	mu       sync.Mutex
	requests map[string][]time.Time
	limit    int
	window   time.Duration
	prefix   string
	now      func() time.Time
}

// NewIPRateLimiter limits requests per source IP to requestsPerMinute.
func NewIPRateLimiter(requestsPerMinute int) *SlidingWindowLimiter {
	return newSlidingWindowLimiter(requestsPerMinute, time.Minute, "ip")
}

// NewUserRateLimiter limits requests per authenticated identity to
// requestsPerMinute.
func NewUserRateLimiter(requestsPerMinute int) *SlidingWindowLimiter {
	return newSlidingWindowLimiter(requestsPerMinute, time.Minute, "user")
}

func newSlidingWindowLimiter(limit int, window time.Duration, prefix string) *SlidingWindowLimiter {
	return &SlidingWindowLimiter{
		requests: make(map[string][]time.Time),
		limit:    limit,
		window:   window,
		prefix:   prefix,
		now:      time.Now,
	}
}

func (l *SlidingWindowLimiter) Allow(_ context.Context, key string) (bool, error) {
	key = l.prefix + ":" + key
	now := l.now()
	windowStart := now.Add(-l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	kept := l.requests[key][:0]
	for _, at := range l.requests[key] {
		if at.After(windowStart) {
			kept = append(kept, at)
		}
	}

	if len(kept) >= l.limit {
		l.requests[key] = kept
		return false, nil
	}
	l.requests[key] = append(kept, now)

	// Keys whose window emptied would otherwise accumulate forever.
	if len(kept) == 0 && len(l.requests) > 1 {
		l.sweepLocked(windowStart)
	}
	return true, nil
}

// Reset clears the window for a key.
func (l *SlidingWindowLimiter) Reset(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.requests, l.prefix+":"+key)
	return nil
}

func (l *SlidingWindowLimiter) sweepLocked(windowStart time.Time) {
	for key, times := range l.requests {
		if len(times) == 0 || !times[len(times)-1].After(windowStart) {
			delete(l.requests, key)
		}
	}
}
