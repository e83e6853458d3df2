// Package ratelimit meters API requests per tenant with a token bucket
// per tenant id, so one tenant hammering the upload endpoint cannot
// starve the others.
package ratelimit

import (
	"sync"
	"time"
)

// Config sizes every tenant's bucket. Zero values fall back to the
// defaults: 2 requests/second sustained with a burst of 10.
type Config struct {
	RequestsPerSecond float64
	Burst             int
}

// TenantLimiter hands out permits keyed by tenant id. Buckets are
// created lazily on a tenant's first request and live for the process
// lifetime; tenant cardinality is bounded by the configured API keys.
type TenantLimiter struct {
	cfg   Config
	clock Clock

	mu      sync.Mutex
	buckets map[string]*tokenBucket
}

// NewTenantLimiter builds a limiter with the given per-tenant budget.
func NewTenantLimiter(cfg Config) *TenantLimiter {
	return newTenantLimiterWithClock(cfg, realClock{})
}

func newTenantLimiterWithClock(cfg Config, clock Clock) *TenantLimiter {
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 2
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 10
	}
	return &TenantLimiter{
		cfg:     cfg,
		clock:   clock,
		buckets: make(map[string]*tokenBucket),
	}
}

// Allow consumes one permit for tenantID. When denied, retryAfter is
// how long the tenant must wait for its next permit.
func (l *TenantLimiter) Allow(tenantID string) (retryAfter time.Duration, ok bool) {
	now := l.clock.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	b := l.buckets[tenantID]
	if b == nil {
		b = newTokenBucket(float64(l.cfg.Burst), l.cfg.RequestsPerSecond, now)
		l.buckets[tenantID] = b
	}
	return b.take(now)
}
