package dedup

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/project-tktt/p24-scraper/internal/domain"
)

// RedisRegistry is a Registry backed by Redis SETNX, for runs where several
// scraper instances share dedup state. Keys carry a run-scoped prefix and a
// TTL so state from one run never bleeds into the next.
type RedisRegistry struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisRegistry creates a Redis-backed registry. An empty prefix gets a
// fresh run-scoped one; a zero TTL defaults to 24 hours.
func NewRedisRegistry(client *redis.Client, prefix string, ttl time.Duration) *RedisRegistry {
	if prefix == "" {
		prefix = fmt.Sprintf("p24:run:%d", time.Now().UnixNano())
	}
	if ttl == 0 {
		ttl = 24 * time.Hour
	}
	return &RedisRegistry{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (r *RedisRegistry) TryReserveURL(ctx context.Context, url string) (bool, error) {
	ok, err := r.client.SetNX(ctx, r.prefix+":url:"+url, 1, r.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx: %w", err)
	}
	return ok, nil
}

func (r *RedisRegistry) TryReserveListingNo(ctx context.Context, listingNo string) (bool, error) {
	if listingNo == "" || listingNo == domain.ValueUnset {
		return true, nil
	}
	ok, err := r.client.SetNX(ctx, r.prefix+":no:"+listingNo, 1, r.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx: %w", err)
	}
	return ok, nil
}
