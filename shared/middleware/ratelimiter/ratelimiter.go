// Package ratelimiter provides a token bucket limiter keyed by client
// identity. Uploads are the expensive path (disk and object-store writes),
// so mutating routes get throttled per user while reads stay unlimited.
package ratelimiter

import (
	"sync"
	"time"
)

type bucket struct {
	mu         sync.Mutex
	tokens     float64
	lastRefill time.Time

	key    string
	expiry *time.Timer
	parent *KeyedLimiter
}

// take refills by elapsed time, then spends one token if available.
func (b *bucket) take(rate, burst float64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	b.tokens += now.Sub(b.lastRefill).Seconds() * rate
	if b.tokens > burst {
		b.tokens = burst
	}
	b.lastRefill = now

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// resetExpiry postpones eviction while the client stays active.
func (b *bucket) resetExpiry(idleTTL time.Duration) {
	if b.expiry != nil {
		b.expiry.Stop()
	}
	b.expiry = time.AfterFunc(idleTTL, func() {
		b.parent.evict(b.key)
	})
}

// KeyedLimiter hands out one token bucket per identity. Buckets refill at
// rate tokens per second up to burst, and idle buckets are evicted after
// idleTTL so the map does not grow with every client ever seen.
type KeyedLimiter struct {
	mu      sync.RWMutex
	buckets map[string]*bucket

	rate    float64
	burst   float64
	idleTTL time.Duration
}

func New(rate, burst float64, idleTTL time.Duration) *KeyedLimiter {
	return &KeyedLimiter{
		buckets: make(map[string]*bucket),
		rate:    rate,
		burst:   burst,
		idleTTL: idleTTL,
	}
}

// Allow reports whether the client identified by key may proceed.
func (l *KeyedLimiter) Allow(key string) bool {
	return l.get(key).take(l.rate, l.burst)
}

func (l *KeyedLimiter) get(key string) *bucket {
	l.mu.RLock()
	b, ok := l.buckets[key]
	l.mu.RUnlock()
	if ok {
		b.resetExpiry(l.idleTTL)
		return b
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// Re-check after acquiring the write lock
	if b, ok = l.buckets[key]; ok {
		b.resetExpiry(l.idleTTL)
		return b
	}

	b = &bucket{
		tokens:     l.burst,
		lastRefill: time.Now(),
		key:        key,
		parent:     l,
	}
	l.buckets[key] = b
	b.resetExpiry(l.idleTTL)
	return b
}

func (l *KeyedLimiter) evict(key string) {
	l.mu.Lock()
	delete(l.buckets, key)
	l.mu.Unlock()
}

// Len returns the number of live buckets.
func (l *KeyedLimiter) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.buckets)
}

// Stop cancels all eviction timers.
func (l *KeyedLimiter) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, b := range l.buckets {
		if b.expiry != nil {
			b.expiry.Stop()
		}
	}
}
