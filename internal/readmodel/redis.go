package readmodel

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache shares read models between dashboard instances. Each scope carries a
// generation counter; invalidating bumps it so older keys are never read again and
// age out through their TTL.
type RedisCache struct {
	client *redis.Client
	prefix string
}

func NewRedisCache(client *redis.Client, prefix string) *RedisCache {
	if prefix == "" {
		prefix = "battle:readmodel"
	}
	return &RedisCache{client: client, prefix: prefix}
}

func (c *RedisCache) Get(ctx context.Context, scope, key string) ([]byte, bool, error) {
	gen, err := c.generation(ctx, scope)
	if err != nil {
		return nil, false, err
	}
	data, err := c.client.Get(ctx, c.dataKey(scope, gen, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading %s cache: %w", scope, err)
	}
	return data, true, nil
}

func (c *RedisCache) Set(ctx context.Context, scope, key string, data []byte, ttl time.Duration) error {
	gen, err := c.generation(ctx, scope)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, c.dataKey(scope, gen, key), data, ttl).Err(); err != nil {
		return fmt.Errorf("writing %s cache: %w", scope, err)
	}
	return nil
}

func (c *RedisCache) Invalidate(ctx context.Context, scope string) error {
	if err := c.client.Incr(ctx, c.generationKey(scope)).Err(); err != nil {
		return fmt.Errorf("invalidating %s cache: %w", scope, err)
	}
	return nil
}

func (c *RedisCache) generation(ctx context.Context, scope string) (int64, error) {
	gen, err := c.client.Get(ctx, c.generationKey(scope)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("reading %s generation: %w", scope, err)
	}
	return gen, nil
}

func (c *RedisCache) generationKey(scope string) string {
	return fmt.Sprintf("%s:%s:gen", c.prefix, scope)
}

func (c *RedisCache) dataKey(scope string, gen int64, key string) string {
	return fmt.Sprintf("%s:%s:%d:%s", c.prefix, scope, gen, key)
}
