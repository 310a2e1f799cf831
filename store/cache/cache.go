package cache

import (
	"context"
	"sync"
	"time"
)

// Config holds the configuration for a Cache.
type Config struct {
	DefaultTTL      time.Duration // TTL applied by Set (default: 10 minutes)
	CleanupInterval time.Duration // Interval for expired entry cleanup (default: 5 minutes)
	MaxItems        int           // Maximum number of entries (default: 1000)
	OnEviction      func(key string, value any)
}

type entry struct {
	value     any
	expiresAt time.Time
	storedAt  time.Time
}

// Cache is a thread-safe in-memory TTL cache with a size bound.
// When full, the entry closest to expiry is evicted first.
type Cache struct {
	mu      sync.RWMutex
	items   map[string]entry
	config  Config
	done    chan struct{}
	closed  sync.Once
	cleanup *time.Ticker
}

// New creates a new Cache and starts its background cleanup loop.
func New(config Config) *Cache {
	if config.DefaultTTL <= 0 {
		config.DefaultTTL = 10 * time.Minute
	}
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = 5 * time.Minute
	}
	if config.MaxItems <= 0 {
		config.MaxItems = 1000
	}

	c := &Cache{
		items:   make(map[string]entry),
		config:  config,
		done:    make(chan struct{}),
		cleanup: time.NewTicker(config.CleanupInterval),
	}
	go c.cleanupLoop()
	return c
}

// Get retrieves a value from the cache.
func (c *Cache) Get(_ context.Context, key string) (any, bool) {
	c.mu.RLock()
	e, ok := c.items[key]
	c.mu.RUnlock()
	if !ok || time.Now().After(e.expiresAt) {
		return nil, false
	}
	return e.value, true
}

// Set stores a value with the default TTL.
func (c *Cache) Set(ctx context.Context, key string, value any) {
	c.SetWithTTL(ctx, key, value, c.config.DefaultTTL)
}

// SetWithTTL stores a value with an explicit TTL.
func (c *Cache) SetWithTTL(_ context.Context, key string, value any, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.config.DefaultTTL
	}
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.items[key]; !exists && len(c.items) >= c.config.MaxItems {
		c.evictOneLocked()
	}
	c.items[key] = entry{value: value, expiresAt: now.Add(ttl), storedAt: now}
}

// Delete removes a key from the cache.
func (c *Cache) Delete(_ context.Context, key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.items[key]; ok {
		delete(c.items, key)
		if c.config.OnEviction != nil {
			c.config.OnEviction(key, e.value)
		}
	}
}

// Clear removes all entries from the cache.
func (c *Cache) Clear(_ context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]entry)
}

// Size returns the number of entries in the cache, including entries that
// have expired but have not been cleaned up yet.
func (c *Cache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Close stops the background cleanup goroutine.
func (c *Cache) Close() {
	c.closed.Do(func() {
		c.cleanup.Stop()
		close(c.done)
	})
}

// evictOneLocked removes the entry closest to expiry. Caller holds mu.
func (c *Cache) evictOneLocked() {
	var victim string
	var victimExpiry time.Time
	for key, e := range c.items {
		if victim == "" || e.expiresAt.Before(victimExpiry) {
			victim = key
			victimExpiry = e.expiresAt
		}
	}
	if victim != "" {
		e := c.items[victim]
		delete(c.items, victim)
		if c.config.OnEviction != nil {
			c.config.OnEviction(victim, e.value)
		}
	}
}

func (c *Cache) cleanupLoop() {
	for {
		select {
		case <-c.done:
			return
		case <-c.cleanup.C:
			now := time.Now()
			c.mu.Lock()
			for key, e := range c.items {
				if now.After(e.expiresAt) {
					delete(c.items, key)
					if c.config.OnEviction != nil {
						c.config.OnEviction(key, e.value)
					}
				}
			}
			c.mu.Unlock()
		}
	}
}
