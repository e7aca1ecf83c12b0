package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultsMatchSpecDefaults(t *testing.T) {
	t.Parallel()
	d := Defaults()
	require.Equal(t, RetrySafeTransient, d.RetryPolicy)
	require.False(t, d.Debug)
	require.Empty(t, d.BrokerID)
	require.True(t, d.CircuitBreaker.Enabled)
}

func TestLoadWithNoFileReturnsDefaults(t *testing.T) {
	t.Parallel()
	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, Defaults(), cfg)
}

func TestLoadMergesConfigFile(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer os.Chdir(wd)

	contents := []byte("recv_window_ms: 5000\nretry_policy: \"false\"\nbroker_id: \"x-ccxtgo\"\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ccxtgo.yaml"), contents, 0o644))

	cfg, err := Load("ccxtgo")
	require.NoError(t, err)
	require.Equal(t, 5000, cfg.RecvWindowMS)
	require.Equal(t, RetryNone, cfg.RetryPolicy)
	require.Equal(t, "x-ccxtgo", cfg.BrokerID)
	require.Equal(t, Defaults().RequestTimeoutMS, cfg.RequestTimeoutMS)
}

func TestLoadUnknownFileNameFallsBackToDefaults(t *testing.T) {
	t.Parallel()
	cfg, err := Load("does-not-exist-anywhere")
	require.NoError(t, err)
	require.Equal(t, Defaults(), cfg)
}

func TestDurationHelpers(t *testing.T) {
	t.Parallel()
	cfg := Config{
		RecvWindowMS:               1000,
		RequestTimeoutMS:           2000,
		RateLimitCleanupIntervalMS: 3000,
		RateLimitMaxAgeMS:          4000,
		CircuitBreaker:             CircuitBreaker{WindowMS: 5000, ResetMS: 6000},
	}
	require.Equal(t, int64(1_000_000_000), cfg.RecvWindow().Nanoseconds())
	require.Equal(t, int64(2_000_000_000), cfg.RequestTimeout().Nanoseconds())
	require.Equal(t, int64(3_000_000_000), cfg.RateLimitCleanupInterval().Nanoseconds())
	require.Equal(t, int64(4_000_000_000), cfg.RateLimitMaxAge().Nanoseconds())
	require.Equal(t, int64(5_000_000_000), cfg.CircuitBreaker.Window().Nanoseconds())
	require.Equal(t, int64(6_000_000_000), cfg.CircuitBreaker.Reset().Nanoseconds())
}
