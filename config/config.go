// Package config is a reusable loader for the process-scoped knobs of §6:
// recv window, HTTP timeout, rate-limit bookkeeping, retry policy, debug
// logging, broker id and circuit-breaker tuning. It mirrors the teacher's
// config-loading idiom (viper.Unmarshal into a typed struct, with explicit
// defaults set before any file/env source is read) rather than reaching for
// a bespoke flag parser.
package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// RetryPolicy is the closed set of §6's retry_policy values.
type RetryPolicy string

const (
	RetrySafeTransient RetryPolicy = "safe_transient"
	RetryTransient      RetryPolicy = "transient"
	RetryNone           RetryPolicy = "false"
)

// CircuitBreaker holds the circuit_breaker.* tuning knobs.
type CircuitBreaker struct {
	Enabled     bool `mapstructure:"enabled"`
	MaxFailures int  `mapstructure:"max_failures"`
	WindowMS    int  `mapstructure:"window_ms"`
	ResetMS     int  `mapstructure:"reset_ms"`
}

// Config is the recognised-keys table of §6, unmarshalled by viper. Any key
// not listed here is ignored: this module never reads arbitrary config.
type Config struct {
	RecvWindowMS               int            `mapstructure:"recv_window_ms"`
	RequestTimeoutMS            int            `mapstructure:"request_timeout_ms"`
	RateLimitCleanupIntervalMS int            `mapstructure:"rate_limit_cleanup_interval_ms"`
	RateLimitMaxAgeMS           int            `mapstructure:"rate_limit_max_age_ms"`
	RetryPolicy                 RetryPolicy    `mapstructure:"retry_policy"`
	Debug                        bool           `mapstructure:"debug"`
	BrokerID                     string         `mapstructure:"broker_id"`
	CircuitBreaker               CircuitBreaker `mapstructure:"circuit_breaker"`
}

// RequestTimeout returns RequestTimeoutMS as a time.Duration.
func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutMS) * time.Millisecond
}

// RecvWindow returns RecvWindowMS as a time.Duration.
func (c Config) RecvWindow() time.Duration {
	return time.Duration(c.RecvWindowMS) * time.Millisecond
}

// RateLimitCleanupInterval returns RateLimitCleanupIntervalMS as a
// time.Duration.
func (c Config) RateLimitCleanupInterval() time.Duration {
	return time.Duration(c.RateLimitCleanupIntervalMS) * time.Millisecond
}

// RateLimitMaxAge returns RateLimitMaxAgeMS as a time.Duration.
func (c Config) RateLimitMaxAge() time.Duration {
	return time.Duration(c.RateLimitMaxAgeMS) * time.Millisecond
}

// Window returns WindowMS as a time.Duration.
func (c CircuitBreaker) Window() time.Duration {
	return time.Duration(c.WindowMS) * time.Millisecond
}

// Reset returns ResetMS as a time.Duration.
func (c CircuitBreaker) Reset() time.Duration {
	return time.Duration(c.ResetMS) * time.Millisecond
}

// Defaults is §6's default configuration: safe_transient retries, a 5s
// timeout, a 10s recv window, no broker id, and an enabled circuit breaker
// with conservative tuning. Tests conventionally set RetryPolicy to
// RetryNone per §6's note.
func Defaults() Config {
	return Config{
		RecvWindowMS:                10_000,
		RequestTimeoutMS:            5_000,
		RateLimitCleanupIntervalMS:  60_000,
		RateLimitMaxAgeMS:           120_000,
		RetryPolicy:                 RetrySafeTransient,
		Debug:                       false,
		BrokerID:                    "",
		CircuitBreaker: CircuitBreaker{
			Enabled:     true,
			MaxFailures: 5,
			WindowMS:    30_000,
			ResetMS:     60_000,
		},
	}
}

// Load builds a viper instance seeded with Defaults, merges an optional
// config file (name without extension; searched under "." and "./config"),
// then layers environment variables prefixed CCXTGO_ (nested keys use "_"
// in place of "."), and unmarshals the result. An empty name skips the file
// read entirely and returns defaults overridden only by the environment.
func Load(name string) (Config, error) {
	v := viper.New()
	setDefaults(v, Defaults())

	v.SetEnvPrefix("CCXTGO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if name != "" {
		v.SetConfigName(name)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		if err := v.ReadInConfig(); err != nil {
			if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
				return Config{}, err
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("recv_window_ms", d.RecvWindowMS)
	v.SetDefault("request_timeout_ms", d.RequestTimeoutMS)
	v.SetDefault("rate_limit_cleanup_interval_ms", d.RateLimitCleanupIntervalMS)
	v.SetDefault("rate_limit_max_age_ms", d.RateLimitMaxAgeMS)
	v.SetDefault("retry_policy", string(d.RetryPolicy))
	v.SetDefault("debug", d.Debug)
	v.SetDefault("broker_id", d.BrokerID)
	v.SetDefault("circuit_breaker.enabled", d.CircuitBreaker.Enabled)
	v.SetDefault("circuit_breaker.max_failures", d.CircuitBreaker.MaxFailures)
	v.SetDefault("circuit_breaker.window_ms", d.CircuitBreaker.WindowMS)
	v.SetDefault("circuit_breaker.reset_ms", d.CircuitBreaker.ResetMS)
}
