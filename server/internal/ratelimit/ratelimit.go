// Package ratelimit provides keyed rate limiting, used to bound how fast
// any single user can trigger content generation.
package ratelimit

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// KeyedLimiter maintains one token bucket per key.
type KeyedLimiter struct {
	mu     sync.Mutex
	limits map[string]*rate.Limiter

	limit rate.Limit
	burst int
}

// NewKeyedLimiter creates a limiter granting limit events per second with
// the given burst per key.
func NewKeyedLimiter(limit rate.Limit, burst int) *KeyedLimiter {
	return &KeyedLimiter{
		limits: make(map[string]*rate.Limiter),
		limit:  limit,
		burst:  burst,
	}
}

func (kl *KeyedLimiter) getLimiter(key string) *rate.Limiter {
	kl.mu.Lock()
	defer kl.mu.Unlock()

	if limiter, ok := kl.limits[key]; ok {
		return limiter
	}
	limiter := rate.NewLimiter(kl.limit, kl.burst)
	kl.limits[key] = limiter
	return limiter
}

// Allow reports whether an event may happen now for the given key.
func (kl *KeyedLimiter) Allow(key string) bool {
	return kl.getLimiter(key).Allow()
}

// Wait blocks until an event is allowed for the given key or the context
// is cancelled.
func (kl *KeyedLimiter) Wait(ctx context.Context, key string) error {
	return kl.getLimiter(key).Wait(ctx)
}
