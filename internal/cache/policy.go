package cache

import "sync"

// PricingContextKey is the single slot the billing answerer caches under.
// Every pricing answer overwrites it: only the most recent pricing answer
// is ever cached, process-wide and shared across threads.
const PricingContextKey = "pricing_context"

// PolicyCache holds the most recent pricing-related billing answer so the
// billing answerer can serve it even when retrieval and generation are down.
// Empty at startup, never expired or invalidated; last writer wins across
// concurrent requests. The lookup is pure in-memory and cannot fail.
type PolicyCache struct {
	mu      sync.RWMutex
	entries map[string]string
}

func NewPolicyCache() *PolicyCache {
	return &PolicyCache{entries: make(map[string]string)}
}

// Get returns the cached value for key. The second return reports whether
// an entry exists; a miss is an expected condition, not an error.
func (c *PolicyCache) Get(key string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	value, ok := c.entries[key]
	return value, ok
}

// Put stores value under key, unconditionally overwriting any prior value.
func (c *PolicyCache) Put(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
}
