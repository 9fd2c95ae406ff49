package cache

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// MemoryCache implements TagCache in process memory. It is used when no
// Redis address is configured, and in tests. The clock is injectable so
// expiry can be tested without sleeping.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryCache creates an in-process tag cache
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// GetOrCompute returns the cached value for a tag, computing it on a miss
// or after expiry. Concurrent callers may compute the same tag; the last
// write wins, which is harmless because computes are deterministic between
// invalidations.
func (c *MemoryCache) GetOrCompute(ctx context.Context, tag string, ttl time.Duration, compute ComputeFunc) ([]byte, error) {
	c.mu.Lock()
	entry, ok := c.entries[tag]
	if ok && c.now().Before(entry.expiresAt) {
		c.mu.Unlock()
		return entry.data, nil
	}
	c.mu.Unlock()

	data, err := compute(ctx)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[tag] = memoryEntry{data: data, expiresAt: c.now().Add(ttl)}
	c.mu.Unlock()

	return data, nil
}

// Invalidate drops a tag; invalidating an absent tag is a no-op
func (c *MemoryCache) Invalidate(ctx context.Context, tag string) error {
	c.mu.Lock()
	delete(c.entries, tag)
	c.mu.Unlock()
	return nil
}
