package service

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// DefaultMaxLimiterKeys bounds the number of tracked keys.
const DefaultMaxLimiterKeys = 10000

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiterRegistry manages one token bucket per client key.
//
// An entry idle long enough to refill its bucket is indistinguishable from
// a new one and is swept. When the registry is full of active keys, the
// least recently seen key is evicted.
type RateLimiterRegistry struct {
	mu       sync.Mutex
	limiters map[string]*limiterEntry
	limit    rate.Limit
	burst    int

	maxKeys   int
	idleAfter time.Duration
	lastSweep time.Time
	now       func() time.Time
}

// RateLimiterOption configures a RateLimiterRegistry.
type RateLimiterOption func(*RateLimiterRegistry)

// WithMaxKeys sets the maximum number of tracked keys.
func WithMaxKeys(n int) RateLimiterOption {
	return func(r *RateLimiterRegistry) {
		if n > 0 {
			r.maxKeys = n
		}
	}
}

// NewRateLimiterRegistry creates a registry allowing perSecond events per
// key with a burst of the same size. perSecond must be positive.
func NewRateLimiterRegistry(perSecond int, opts ...RateLimiterOption) *RateLimiterRegistry {
	r := &RateLimiterRegistry{
		limiters: make(map[string]*limiterEntry),
		limit:    rate.Limit(perSecond),
		burst:    perSecond,
		maxKeys:  DefaultMaxLimiterKeys,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}

	// Time for an empty bucket to fill up again.
	r.idleAfter = time.Duration(float64(r.burst) / float64(r.limit) * float64(time.Second))
	if r.idleAfter < time.Second {
		r.idleAfter = time.Second
	}
	r.lastSweep = r.now()
	return r
}

// Allow reports whether an event for key may happen now.
func (r *RateLimiterRegistry) Allow(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if now.Sub(r.lastSweep) >= r.idleAfter {
		r.sweep(now)
	}

	e, ok := r.limiters[key]
	if !ok {
		if len(r.limiters) >= r.maxKeys {
			r.sweep(now)
		}
		if len(r.limiters) >= r.maxKeys {
			r.evictOldest()
		}
		e = &limiterEntry{limiter: rate.NewLimiter(r.limit, r.burst)}
		r.limiters[key] = e
	}
	e.lastSeen = now

	return e.limiter.AllowN(now, 1)
}

// sweep drops entries whose buckets have refilled. Callers hold r.mu.
func (r *RateLimiterRegistry) sweep(now time.Time) {
	for key, e := range r.limiters {
		if now.Sub(e.lastSeen) >= r.idleAfter {
			delete(r.limiters, key)
		}
	}
	r.lastSweep = now
}

// evictOldest drops the least recently seen entry. Callers hold r.mu.
func (r *RateLimiterRegistry) evictOldest() {
	var (
		oldestKey string
		oldest    time.Time
		found     bool
	)
	for key, e := range r.limiters {
		if !found || e.lastSeen.Before(oldest) {
			oldestKey, oldest, found = key, e.lastSeen, true
		}
	}
	if found {
		delete(r.limiters, oldestKey)
	}
}

// Len returns the number of tracked keys.
func (r *RateLimiterRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.limiters)
}
