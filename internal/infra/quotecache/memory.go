package quotecache

import (
	"context"
	"sync"
	"time"

	"github.com/yanqian/trip-planner/internal/infra/serpapi"
)

type entry struct {
	payload   []byte
	expiresAt time.Time
}

// MemoryCache keeps provider responses in process memory.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time
}

// NewMemoryCache constructs an empty cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// Get implements serpapi.Cache.
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.RLock()
	item, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if c.hasExpired(item.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false, nil
	}
	out := make([]byte, len(item.payload))
	copy(out, item.payload)
	return out, true, nil
}

// Set stores value with an optional TTL; zero keeps it until process exit.
func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	exp := time.Time{}
	if ttl > 0 {
		exp = c.now().Add(ttl)
	}
	stored := make([]byte, len(value))
	copy(stored, value)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{payload: stored, expiresAt: exp}
	return nil
}

func (c *MemoryCache) hasExpired(ts time.Time) bool {
	if ts.IsZero() {
		return false
	}
	return !c.now().Before(ts)
}

var _ serpapi.Cache = (*MemoryCache)(nil)
