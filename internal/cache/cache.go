// Package cache stores downloaded and flattened source data keyed by a hash
// of the request parameters.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// Entry is one cached payload. Stale entries are still returned so callers
// can fall back to them when a refresh fails.
type Entry struct {
	Data     []byte
	StoredAt time.Time
	Fresh    bool
}

// Cache is implemented by FileCache, MemoryCache and RedisCache.
type Cache interface {
	// Get reports ok=false on a miss. A read failure is an error, not a miss.
	Get(ctx context.Context, key string) (Entry, bool, error)
	Put(ctx context.Context, key string, data []byte) error
}

// Key derives a content address from request parameters.
func Key(params ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(params, "\x1f")))
	return hex.EncodeToString(sum[:])
}

func fresh(storedAt, now time.Time, ttl time.Duration) bool {
	if ttl <= 0 {
		return true
	}
	return now.Sub(storedAt) < ttl
}
