package cache

import (
	"context"
	"sync"
	"time"
)

type memItem struct {
	data     []byte
	storedAt time.Time
}

// MemoryCache is a process-local Cache used by tests and dry runs.
type MemoryCache struct {
	mu   sync.RWMutex
	data map[string]memItem
	ttl  time.Duration
	now  func() time.Time
}

func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{data: make(map[string]memItem), ttl: ttl, now: time.Now}
}

func (c *MemoryCache) Get(_ context.Context, key string) (Entry, bool, error) {
	c.mu.RLock()
	item, ok := c.data[key]
	c.mu.RUnlock()
	if !ok {
		return Entry{}, false, nil
	}
	return Entry{
		Data:     append([]byte(nil), item.data...),
		StoredAt: item.storedAt,
		Fresh:    fresh(item.storedAt, c.now(), c.ttl),
	}, true, nil
}

func (c *MemoryCache) Put(_ context.Context, key string, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = memItem{data: append([]byte(nil), data...), storedAt: c.now()}
	return nil
}

// Len returns the number of stored entries.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}
