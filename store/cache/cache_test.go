package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCacheBasicOperations(t *testing.T) {
	c := New(Config{DefaultTTL: time.Minute, CleanupInterval: time.Minute, MaxItems: 100})
	defer c.Close()
	ctx := context.Background()

	t.Run("SetAndGet", func(t *testing.T) {
		c.Set(ctx, "key1", "value1")

		val, ok := c.Get(ctx, "key1")
		assert.True(t, ok)
		assert.Equal(t, "value1", val)
	})

	t.Run("GetNonExistent", func(t *testing.T) {
		val, ok := c.Get(ctx, "nonexistent")
		assert.False(t, ok)
		assert.Nil(t, val)
	})

	t.Run("Delete", func(t *testing.T) {
		c.Set(ctx, "key2", "value2")
		c.Delete(ctx, "key2")

		_, ok := c.Get(ctx, "key2")
		assert.False(t, ok)
	})
}

func TestCacheExpiration(t *testing.T) {
	c := New(Config{DefaultTTL: time.Minute, CleanupInterval: time.Minute, MaxItems: 100})
	defer c.Close()
	ctx := context.Background()

	c.SetWithTTL(ctx, "expiring", "value", 30*time.Millisecond)

	val, ok := c.Get(ctx, "expiring")
	assert.True(t, ok)
	assert.Equal(t, "value", val)

	time.Sleep(40 * time.Millisecond)

	_, ok = c.Get(ctx, "expiring")
	assert.False(t, ok)
}

func TestCacheEviction(t *testing.T) {
	evicted := map[string]bool{}
	c := New(Config{
		DefaultTTL:      time.Minute,
		CleanupInterval: time.Minute,
		MaxItems:        2,
		OnEviction:      func(key string, _ any) { evicted[key] = true },
	})
	defer c.Close()
	ctx := context.Background()

	// key1 expires soonest, so it is the eviction victim.
	c.SetWithTTL(ctx, "key1", "1", 10*time.Second)
	c.SetWithTTL(ctx, "key2", "2", time.Minute)
	c.Set(ctx, "key3", "3")

	assert.Equal(t, 2, c.Size())
	assert.True(t, evicted["key1"])

	_, ok := c.Get(ctx, "key2")
	assert.True(t, ok)
	_, ok = c.Get(ctx, "key3")
	assert.True(t, ok)
}
