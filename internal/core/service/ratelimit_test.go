package service

import (
	"strconv"
	"testing"
	"time"
)

// fakeClock returns a registry clock that only moves when advanced.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newClockedLimiter(perSecond int, opts ...RateLimiterOption) (*RateLimiterRegistry, *fakeClock) {
	clock := &fakeClock{t: time.Unix(1700000000, 0)}
	r := NewRateLimiterRegistry(perSecond, opts...)
	r.now = clock.now
	r.lastSweep = clock.t
	return r, clock
}

func TestRateLimiterRegistry_Allow(t *testing.T) {
	r, _ := newClockedLimiter(2)

	if !r.Allow("10.0.0.1") || !r.Allow("10.0.0.1") {
		t.Fatal("burst of 2 should be allowed")
	}
	if r.Allow("10.0.0.1") {
		t.Error("third immediate event should be denied")
	}

	// Other keys have their own bucket.
	if !r.Allow("10.0.0.2") {
		t.Error("different key should be allowed")
	}
	if r.Len() != 2 {
		t.Errorf("Len() = %d, want 2", r.Len())
	}
}

func TestRateLimiterRegistry_Refill(t *testing.T) {
	r, clock := newClockedLimiter(1)

	if !r.Allow("a") {
		t.Fatal("first event should be allowed")
	}
	if r.Allow("a") {
		t.Fatal("second immediate event should be denied")
	}

	clock.advance(time.Second)
	if !r.Allow("a") {
		t.Error("event after refill should be allowed")
	}
}

func TestRateLimiterRegistry_SweepsIdleKeys(t *testing.T) {
	r, clock := newClockedLimiter(1)

	for i := 0; i < 100; i++ {
		r.Allow("10.0.0." + strconv.Itoa(i))
	}
	if r.Len() != 100 {
		t.Fatalf("Len() = %d, want 100", r.Len())
	}

	clock.advance(2 * time.Second)
	r.Allow("10.0.1.1")

	if r.Len() != 1 {
		t.Errorf("Len() after idle sweep = %d, want 1", r.Len())
	}
}

func TestRateLimiterRegistry_MaxKeys(t *testing.T) {
	r, clock := newClockedLimiter(1, WithMaxKeys(3))

	for _, key := range []string{"a", "b", "c"} {
		r.Allow(key)
		clock.advance(10 * time.Millisecond)
	}
	r.Allow("d")

	if r.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", r.Len())
	}

	// "a" was the least recently seen.
	r.mu.Lock()
	_, hasA := r.limiters["a"]
	_, hasD := r.limiters["d"]
	r.mu.Unlock()
	if hasA || !hasD {
		t.Errorf("after eviction: has a=%v d=%v, want a=false d=true", hasA, hasD)
	}
}
