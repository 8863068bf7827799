package http

import (
	"sync"
	"time"
)

const (
	staleBucketAge  = 1 * time.Hour
	cleanupInterval = 30 * time.Minute
)

type bucket struct {
	tokens     int
	lastRefill time.Time
}

// RateLimiter is a token bucket per client key (authenticated user id, or
// remote IP for anonymous routes). Buckets refill in full every refillDur.
type RateLimiter struct {
	mu        sync.Mutex
	capacity  int
	refillDur time.Duration
	buckets   map[string]*bucket
	stop      chan struct{}
}

func NewRateLimiter(capacity int, refillDur time.Duration) *RateLimiter {
	rl := &RateLimiter{
		capacity:  capacity,
		refillDur: refillDur,
		buckets:   make(map[string]*bucket),
		stop:      make(chan struct{}),
	}
	go rl.cleanupLoop()
	return rl
}

func (r *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.dropStale()
		case <-r.stop:
			return
		}
	}
}

func (r *RateLimiter) dropStale() {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	for key, b := range r.buckets {
		if now.Sub(b.lastRefill) > staleBucketAge {
			delete(r.buckets, key)
		}
	}
}

func (r *RateLimiter) Stop() {
	close(r.stop)
}

func (r *RateLimiter) Allow(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	b, exists := r.buckets[key]
	if !exists {
		r.buckets[key] = &bucket{tokens: r.capacity - 1, lastRefill: now}
		return true
	}

	if now.Sub(b.lastRefill) >= r.refillDur {
		b.tokens = r.capacity
		b.lastRefill = now
	}
	if b.tokens <= 0 {
		return false
	}
	b.tokens--
	return true
}
