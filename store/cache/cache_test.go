package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheBasicOperations(t *testing.T) {
	ctx := context.Background()
	c := New(Config{DefaultTTL: time.Minute})
	defer c.Close()

	t.Run("SetAndGet", func(t *testing.T) {
		c.Set(ctx, "user:1", "alice")

		val, ok := c.Get(ctx, "user:1")
		assert.True(t, ok)
		assert.Equal(t, "alice", val)
	})

	t.Run("GetNonExistent", func(t *testing.T) {
		val, ok := c.Get(ctx, "nonexistent")
		assert.False(t, ok)
		assert.Nil(t, val)
	})

	t.Run("UpdateExisting", func(t *testing.T) {
		c.Set(ctx, "user:2", "original")
		c.Set(ctx, "user:2", "updated")

		val, ok := c.Get(ctx, "user:2")
		assert.True(t, ok)
		assert.Equal(t, "updated", val)
	})

	t.Run("Delete", func(t *testing.T) {
		c.Set(ctx, "user:3", "carol")
		c.Delete(ctx, "user:3")

		_, ok := c.Get(ctx, "user:3")
		assert.False(t, ok)
	})
}

func TestCacheExpiration(t *testing.T) {
	ctx := context.Background()
	c := New(Config{DefaultTTL: time.Minute})
	defer c.Close()

	c.SetWithTTL(ctx, "expiring", "value", 50*time.Millisecond)

	val, ok := c.Get(ctx, "expiring")
	require.True(t, ok)
	require.Equal(t, "value", val)

	time.Sleep(60 * time.Millisecond)

	_, ok = c.Get(ctx, "expiring")
	assert.False(t, ok)
}

func TestCacheCapacityEviction(t *testing.T) {
	ctx := context.Background()

	var (
		mu      sync.Mutex
		evicted []string
	)
	c := New(Config{
		DefaultTTL: time.Minute,
		MaxItems:   3,
		OnEviction: func(key string, _ any) {
			mu.Lock()
			evicted = append(evicted, key)
			mu.Unlock()
		},
	})
	defer c.Close()

	// key1 expires first, so it goes when the cache is full.
	c.SetWithTTL(ctx, "key1", "1", time.Second)
	c.SetWithTTL(ctx, "key2", "2", time.Minute)
	c.SetWithTTL(ctx, "key3", "3", time.Hour)
	require.Equal(t, 3, c.Size())

	c.Set(ctx, "key4", "4")
	assert.Equal(t, 3, c.Size())

	_, ok := c.Get(ctx, "key1")
	assert.False(t, ok)
	_, ok = c.Get(ctx, "key4")
	assert.True(t, ok)

	mu.Lock()
	assert.Equal(t, []string{"key1"}, evicted)
	mu.Unlock()

	// Overwriting an existing key does not evict anyone.
	c.Set(ctx, "key4", "4b")
	assert.Equal(t, 3, c.Size())
	mu.Lock()
	assert.Len(t, evicted, 1)
	mu.Unlock()
}

func TestCacheSweep(t *testing.T) {
	ctx := context.Background()

	var (
		mu      sync.Mutex
		evicted []string
	)
	c := New(Config{
		DefaultTTL:      time.Minute,
		CleanupInterval: 20 * time.Millisecond,
		OnEviction: func(key string, _ any) {
			mu.Lock()
			evicted = append(evicted, key)
			mu.Unlock()
		},
	})
	defer c.Close()

	c.SetWithTTL(ctx, "shortlived", "value", 10*time.Millisecond)
	c.Set(ctx, "longlived", "value")

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(evicted) == 1 && evicted[0] == "shortlived"
	}, time.Second, 10*time.Millisecond)

	assert.Equal(t, 1, c.Size())
	_, ok := c.Get(ctx, "longlived")
	assert.True(t, ok)
}

func TestCachePurge(t *testing.T) {
	ctx := context.Background()
	c := New(Config{DefaultTTL: time.Minute})
	defer c.Close()

	c.Set(ctx, "key1", "1")
	c.Set(ctx, "key2", "2")
	require.Equal(t, 2, c.Size())

	c.Purge(ctx)
	assert.Zero(t, c.Size())
	_, ok := c.Get(ctx, "key1")
	assert.False(t, ok)
}

func TestCacheClose(t *testing.T) {
	ctx := context.Background()
	c := New(Config{DefaultTTL: time.Minute})

	c.Close()
	c.Close()

	// The cache stays usable after Close.
	c.Set(ctx, "key", "value")
	_, ok := c.Get(ctx, "key")
	assert.True(t, ok)
}
