// Package cache holds recently extracted per-variant results in memory so a
// repeated scan of the same page within the caller's max-age window skips the
// browser session entirely. Nothing is persisted; price history is out of
// scope by design.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"github.com/magicprice/magicprice/models"
)

// hardTTL is the absolute ceiling after which entries are evicted regardless
// of the caller's max-age. Hotel prices move; an hour-old price is stale.
const hardTTL = time.Hour

// entry holds a cached result with its creation timestamp.
type entry struct {
	result    *models.ExtractionResult
	createdAt time.Time
}

// Cache is a simple in-memory cache for variant extraction results.
// It is safe for concurrent use.
type Cache struct {
	mu         sync.RWMutex
	store      map[string]*entry
	maxEntries int
}

// New creates a new Cache with the given maximum number of entries.
// A background goroutine runs every 5 minutes to evict entries older
// than the hard TTL.
func New(maxEntries int) *Cache {
	c := &Cache{
		store:      make(map[string]*entry),
		maxEntries: maxEntries,
	}
	go c.cleanupLoop()
	return c
}

// Key generates a cache key from the fully derived variant URL and the
// effective currency. The URL already carries the CID, so two variants never
// collide.
func Key(variantURL, currency string) string {
	h := sha256.New()
	h.Write([]byte(variantURL))
	h.Write([]byte("|"))
	h.Write([]byte(currency))
	return hex.EncodeToString(h.Sum(nil))
}

// Get retrieves a cached result if it exists and is younger than maxAge.
// maxAge is in milliseconds. If maxAge <= 0, no cache lookup is performed.
// Returns the result and whether it was a cache hit.
func (c *Cache) Get(key string, maxAgeMs int) (*models.ExtractionResult, bool) {
	if maxAgeMs <= 0 {
		return nil, false
	}

	c.mu.RLock()
	e, ok := c.store[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}

	maxAge := time.Duration(maxAgeMs) * time.Millisecond
	if maxAge > hardTTL {
		maxAge = hardTTL
	}
	if time.Since(e.createdAt) > maxAge {
		return nil, false
	}
	return e.result, true
}

// Set stores a result. When the cache is full, the oldest entry is evicted
// to make room.
func (c *Cache) Set(key string, result *models.ExtractionResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.store) >= c.maxEntries {
		c.evictOldestLocked()
	}
	c.store[key] = &entry{result: result, createdAt: time.Now()}
}

// evictOldestLocked removes the entry with the earliest creation time.
// Caller must hold c.mu.
func (c *Cache) evictOldestLocked() {
	var oldestKey string
	var oldestAt time.Time
	for k, e := range c.store {
		if oldestKey == "" || e.createdAt.Before(oldestAt) {
			oldestKey = k
			oldestAt = e.createdAt
		}
	}
	if oldestKey != "" {
		delete(c.store, oldestKey)
	}
}

// cleanupLoop evicts entries older than the hard TTL every 5 minutes.
func (c *Cache) cleanupLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		cutoff := time.Now().Add(-hardTTL)
		c.mu.Lock()
		for k, e := range c.store {
			if e.createdAt.Before(cutoff) {
				delete(c.store, k)
			}
		}
		c.mu.Unlock()
	}
}
