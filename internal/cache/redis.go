package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Checker-Finance/refdata/internal/metrics"
)

// RedisCache shares lookup results between ingest workers and processes.
// Each entry is a hash {data, stored_at}; Redis expires it after Retention.
type RedisCache struct {
	rdb       *redis.Client
	prefix    string
	ttl       time.Duration
	retention time.Duration
	now       func() time.Time
	logger    *zap.Logger
}

type RedisOptions struct {
	Prefix string
	// TTL is the freshness window.
	TTL time.Duration
	// Retention is how long Redis keeps the entry. Defaults to 4×TTL.
	Retention time.Duration
}

func NewRedisCache(rdb *redis.Client, opts RedisOptions, logger *zap.Logger) *RedisCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Prefix == "" {
		opts.Prefix = "refdata:cache:"
	}
	if opts.Retention <= 0 {
		opts.Retention = 4 * opts.TTL
	}
	return &RedisCache{
		rdb:       rdb,
		prefix:    opts.Prefix,
		ttl:       opts.TTL,
		retention: opts.Retention,
		now:       time.Now,
		logger:    logger,
	}
}

func (c *RedisCache) Get(ctx context.Context, key string) (Entry, bool, error) {
	vals, err := c.rdb.HGetAll(ctx, c.prefix+key).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return Entry{}, false, fmt.Errorf("redis cache get: %w", err)
	}
	data, ok := vals["data"]
	if !ok {
		metrics.IncCache("redis", "miss")
		return Entry{}, false, nil
	}

	var storedAt time.Time
	if ns, err := strconv.ParseInt(vals["stored_at"], 10, 64); err == nil {
		storedAt = time.Unix(0, ns)
	} else {
		c.logger.Warn("cache.redis.bad_timestamp", zap.String("key", key), zap.Error(err))
	}

	e := Entry{Data: []byte(data), StoredAt: storedAt, Fresh: fresh(storedAt, c.now(), c.ttl)}
	if e.Fresh {
		metrics.IncCache("redis", "hit")
	} else {
		metrics.IncCache("redis", "stale")
	}
	return e, true, nil
}

func (c *RedisCache) Put(ctx context.Context, key string, data []byte) error {
	k := c.prefix + key
	_, err := c.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, k, "data", data, "stored_at", strconv.FormatInt(c.now().UnixNano(), 10))
		if c.retention > 0 {
			p.Expire(ctx, k, c.retention)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis cache put: %w", err)
	}
	return nil
}

// HealthCheck pings the server.
func (c *RedisCache) HealthCheck(ctx context.Context) error {
	if c.rdb == nil {
		return fmt.Errorf("redis not initialized")
	}
	if err := c.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}
