// Package ratelimit implements the in-process, per-API-key token-bucket
// rate limiter referenced by spec.md §6 ("rate-limit thresholds
// (reads/writes/admin)") but not designed there; SPEC_FULL.md supplements
// it as reads/writes/admin buckets keyed by auth.Principal.RateLimitKey.
//
// No pack example ships a token-bucket library (golang.org/x/time/rate is
// not in the teacher's go.mod), so this is a small hand-rolled bucket —
// justified in DESIGN.md.
package ratelimit

import (
	"sync"
	"time"

	"github.com/tessera-contracts/tessera/internal/domain"
)

// Config sets the per-minute ceiling for each bucket kind.
type Config struct {
	ReadsPerMinute  int
	WritesPerMinute int
	AdminPerMinute  int
}

// bucket is a simple token bucket refilled continuously at rate-per-second,
// capped at its per-minute allowance.
type bucket struct {
	mu         sync.Mutex
	tokens     float64
	capacity   float64
	refillRate float64 // tokens per second
	updatedAt  time.Time
}

func newBucket(perMinute int, now time.Time) *bucket {
	cap := float64(perMinute)
	return &bucket{tokens: cap, capacity: cap, refillRate: cap / 60.0, updatedAt: now}
}

func (b *bucket) allow(now time.Time) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	elapsed := now.Sub(b.updatedAt).Seconds()
	if elapsed > 0 {
		b.tokens += elapsed * b.refillRate
		if b.tokens > b.capacity {
			b.tokens = b.capacity
		}
		b.updatedAt = now
	}

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// Limiter tracks one bucket set per rate-limit key (per spec.md §6's
// "rate-limit thresholds (reads/writes/admin)").
type Limiter struct {
	cfg Config
	now func() time.Time

	mu      sync.Mutex
	reads   map[string]*bucket
	writes  map[string]*bucket
	admin   map[string]*bucket
}

// New builds a Limiter from the configured per-minute ceilings.
func New(cfg Config) *Limiter {
	return &Limiter{
		cfg:    cfg,
		now:    time.Now,
		reads:  make(map[string]*bucket),
		writes: make(map[string]*bucket),
		admin:  make(map[string]*bucket),
	}
}

// Allow reports whether a request of the given scope for key may proceed,
// consuming one token if so. Scopes other than admin and write count
// against the reads bucket. A bucket whose ceiling is zero or negative
// always allows (a misconfigured ceiling must never block traffic it
// wasn't meant to limit).
func (l *Limiter) Allow(key string, scope domain.Scope) bool {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	switch scope {
	case domain.ScopeAdmin:
		return allowFrom(l.admin, key, l.cfg.AdminPerMinute, now)
	case domain.ScopeWrite:
		return allowFrom(l.writes, key, l.cfg.WritesPerMinute, now)
	default:
		return allowFrom(l.reads, key, l.cfg.ReadsPerMinute, now)
	}
}

func allowFrom(buckets map[string]*bucket, key string, perMinute int, now time.Time) bool {
	if perMinute <= 0 {
		return true
	}
	b, ok := buckets[key]
	if !ok {
		b = newBucket(perMinute, now)
		buckets[key] = b
	}
	return b.allow(now)
}
