package config

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefaultRateLimiterPacesPerExchange(t *testing.T) {
	t.Parallel()
	cfg := Defaults()
	cfg.RateLimitCleanupIntervalMS = 0
	rl := NewDefaultRateLimiter(1000, cfg)
	defer rl.Close()

	ctx := context.Background()
	require.NoError(t, rl.Wait(ctx, "binance"))
	require.NoError(t, rl.Wait(ctx, "okx"))
}

func TestDefaultRateLimiterWaitRespectsContextCancellation(t *testing.T) {
	t.Parallel()
	cfg := Defaults()
	cfg.RateLimitCleanupIntervalMS = 0
	rl := NewDefaultRateLimiter(1, cfg)
	defer rl.Close()

	ctx := context.Background()
	require.NoError(t, rl.Wait(ctx, "binance"))

	cancelled, cancel := context.WithTimeout(ctx, time.Millisecond)
	defer cancel()
	err := rl.Wait(cancelled, "binance")
	require.Error(t, err)
}

func TestDefaultRateLimiterSweepDropsIdleBuckets(t *testing.T) {
	t.Parallel()
	cfg := Config{
		RateLimitCleanupIntervalMS: 5,
		RateLimitMaxAgeMS:          1,
	}
	rl := NewDefaultRateLimiter(100, cfg)
	defer rl.Close()

	require.NoError(t, rl.Wait(context.Background(), "binance"))
	rl.mu.Lock()
	_, ok := rl.buckets["binance"]
	rl.mu.Unlock()
	require.True(t, ok)

	require.Eventually(t, func() bool {
		rl.mu.Lock()
		defer rl.mu.Unlock()
		_, stillThere := rl.buckets["binance"]
		return !stillThere
	}, time.Second, 10*time.Millisecond)
}
