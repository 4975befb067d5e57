package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func limiterAt(limit int, clock *time.Time) *SlidingWindowLimiter {
	l := newSlidingWindowLimiter(limit, time.Minute, "ip")
	l.now = func() time.Time { return *clock }
	return l
}

func TestSlidingWindowEnforcesLimit(t *testing.T) {
	clock := time.Date(2024, 6, 3, 12, 0, 0, 0, time.UTC)
	l := limiterAt(3, &clock)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := l.Allow(ctx, "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, ok, "request %d", i)
	}

	ok, err := l.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSlidingWindowExpiry(t *testing.T) {
	clock := time.Date(2024, 6, 3, 12, 0, 0, 0, time.UTC)
	l := limiterAt(2, &clock)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ok, _ := l.Allow(ctx, "10.0.0.1")
		require.True(t, ok)
	}
	ok, _ := l.Allow(ctx, "10.0.0.1")
	require.False(t, ok)

	clock = clock.Add(61 * time.Second)
	ok, err := l.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSlidingWindowKeysIsolated(t *testing.T) {
	clock := time.Date(2024, 6, 3, 12, 0, 0, 0, time.UTC)
	l := limiterAt(1, &clock)
	ctx := context.Background()

	ok, _ := l.Allow(ctx, "10.0.0.1")
	require.True(t, ok)
	ok, _ = l.Allow(ctx, "10.0.0.1")
	require.False(t, ok)

	ok, _ = l.Allow(ctx, "10.0.0.2")
	assert.True(t, ok)
}

func TestLimiterPrefixesIsolated(t *testing.T) {
	clock := time.Date(2024, 6, 3, 12, 0, 0, 0, time.UTC)
	ip := limiterAt(1, &clock)
	user := newSlidingWindowLimiter(1, time.Minute, "user")
	user.now = func() time.Time { return clock }
	ctx := context.Background()

	ok, _ := ip.Allow(ctx, "alice")
	require.True(t, ok)

	// Same key through a different limiter starts a fresh window.
	ok, _ = user.Allow(ctx, "alice")
	assert.True(t, ok)
}

func TestReset(t *testing.T) {
	clock := time.Date(2024, 6, 3, 12, 0, 0, 0, time.UTC)
	l := limiterAt(1, &clock)
	ctx := context.Background()

	ok, _ := l.Allow(ctx, "10.0.0.1")
	require.True(t, ok)
	ok, _ = l.Allow(ctx, "10.0.0.1")
	require.False(t, ok)

	require.NoError(t, l.Reset(ctx, "10.0.0.1"))
	ok, _ = l.Allow(ctx, "10.0.0.1")
	assert.True(t, ok)
}

func TestIdleKeysSwept(t *testing.T) {
	clock := time.Date(2024, 6, 3, 12, 0, 0, 0, time.UTC)
	l := limiterAt(5, &clock)
	ctx := context.Background()

	for i := 0; i < 50; i++ {
		_, _ = l.Allow(ctx, string(rune('a'+i%26)))
	}

	clock = clock.Add(2 * time.Minute)
	_, _ = l.Allow(ctx, "fresh")

	l.mu.Lock()
	defer l.mu.Unlock()
	assert.LessOrEqual(t, len(l.requests), 2)
}
