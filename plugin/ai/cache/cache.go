// Package cache provides an LRU cache for embedding vectors. Identical fan
// messages recur constantly (regenerations, common openers), and the vector
// for a given model and text never changes, so a hit saves a paid API call.
package cache

import (
	"container/list"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"
)

// EmbeddingCache is a thread-safe LRU cache of embedding vectors with TTL
// expiry. Expired entries are dropped lazily on Get; the capacity bound is
// what keeps memory in check.
type EmbeddingCache struct {
	capacity   int
	defaultTTL time.Duration

	mu    sync.Mutex
	cache map[string]*entry
	order *list.List
}

type entry struct {
	key       string
	vector    []float32
	expiresAt time.Time
	element   *list.Element
}

// NewEmbeddingCache creates a cache holding up to capacity vectors, each
// valid for ttl after it was stored.
func NewEmbeddingCache(capacity int, ttl time.Duration) *EmbeddingCache {
	if capacity <= 0 {
		capacity = 1024
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &EmbeddingCache{
		capacity:   capacity,
		defaultTTL: ttl,
		cache:      make(map[string]*entry),
		order:      list.New(),
	}
}

// Key derives the cache key for a text embedded under a model. The text is
// hashed so arbitrarily long messages produce fixed-size keys.
func Key(model, text string) string {
	sum := sha256.Sum256([]byte(text))
	return model + ":" + hex.EncodeToString(sum[:])
}

// Get returns the cached vector for key, refreshing its recency.
func (c *EmbeddingCache) Get(key string) ([]float32, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.cache[key]
	if !ok {
		return nil, false
	}
	if time.Now().After(e.expiresAt) {
		c.removeEntry(e)
		return nil, false
	}

	c.order.MoveToFront(e.element)
	return e.vector, true
}

// Set stores a vector under key, evicting the least recently used entries
// when the cache is full.
func (c *EmbeddingCache) Set(key string, vector []float32) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.cache[key]; ok {
		e.vector = vector
		e.expiresAt = time.Now().Add(c.defaultTTL)
		c.order.MoveToFront(e.element)
		return
	}

	for len(c.cache) >= c.capacity {
		oldest := c.order.Back()
		if oldest == nil {
			break
		}
		c.removeEntry(oldest.Value.(*entry))
	}

	e := &entry{
		key:       key,
		vector:    vector,
		expiresAt: time.Now().Add(c.defaultTTL),
	}
	e.element = c.order.PushFront(e)
	c.cache[key] = e
}

// Size returns the number of entries, including not-yet-dropped expired ones.
func (c *EmbeddingCache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.cache)
}

// removeEntry drops an entry. Caller holds mu.
func (c *EmbeddingCache) removeEntry(e *entry) {
	c.order.Remove(e.element)
	delete(c.cache, e.key)
}
