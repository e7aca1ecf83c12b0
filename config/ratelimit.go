package config

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter is the external collaborator §5 describes: the core never
// signs a request before it holds a permit, so a timestamp-bearing
// signature stays fresh. Wait blocks (respecting ctx) until exchangeID may
// proceed.
type RateLimiter interface {
	Wait(ctx context.Context, exchangeID string) error
}

// DefaultRateLimiter is a per-exchange keyed token bucket built on
// golang.org/x/time/rate, with a background sweep that drops buckets idle
// longer than MaxAge (rate_limit_max_age_ms) every CleanupInterval
// (rate_limit_cleanup_interval_ms). It is the default, swappable per §5;
// callers with an existing exchange-specific limiter inject their own
// RateLimiter instead.
type DefaultRateLimiter struct {
	rps   rate.Limit
	burst int

	mu       sync.Mutex
	buckets  map[string]*bucket
	maxAge   time.Duration
	interval time.Duration

	stop chan struct{}
	once sync.Once
}

type bucket struct {
	limiter  *rate.Limiter
	lastUsed time.Time
}

// NewDefaultRateLimiter builds a limiter allowing rps requests per second
// per exchange (burst equal to rps, minimum 1), sweeping idle buckets per
// cfg's cleanup/max-age settings. The sweep goroutine runs until Close.
func NewDefaultRateLimiter(rps float64, cfg Config) *DefaultRateLimiter {
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}
	d := &DefaultRateLimiter{
		rps:      rate.Limit(rps),
		burst:    burst,
		buckets:  make(map[string]*bucket),
		maxAge:   cfg.RateLimitMaxAge(),
		interval: cfg.RateLimitCleanupInterval(),
		stop:     make(chan struct{}),
	}
	if d.interval > 0 {
		go d.sweepLoop()
	}
	return d
}

// Wait blocks until exchangeID's bucket grants a token or ctx is done.
func (d *DefaultRateLimiter) Wait(ctx context.Context, exchangeID string) error {
	return d.bucketFor(exchangeID).Wait(ctx)
}

func (d *DefaultRateLimiter) bucketFor(exchangeID string) *rate.Limiter {
	d.mu.Lock()
	defer d.mu.Unlock()
	b, ok := d.buckets[exchangeID]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(d.rps, d.burst)}
		d.buckets[exchangeID] = b
	}
	b.lastUsed = time.Now()
	return b.limiter
}

func (d *DefaultRateLimiter) sweepLoop() {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			d.sweep()
		case <-d.stop:
			return
		}
	}
}

func (d *DefaultRateLimiter) sweep() {
	d.mu.Lock()
	defer d.mu.Unlock()
	cutoff := time.Now().Add(-d.maxAge)
	for id, b := range d.buckets {
		if b.lastUsed.Before(cutoff) {
			delete(d.buckets, id)
		}
	}
}

// Close stops the background sweep goroutine. Safe to call more than once.
func (d *DefaultRateLimiter) Close() {
	d.once.Do(func() { close(d.stop) })
}
