package worker

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisDeduper marks event ids with SET NX so a redelivered event alerts once.
type RedisDeduper struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisDeduper(rdb *redis.Client, ttl time.Duration) *RedisDeduper {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisDeduper{rdb: rdb, prefix: "alert:seen:", ttl: ttl}
}

func (d *RedisDeduper) First(ctx context.Context, id string) (bool, error) {
	return d.rdb.SetNX(ctx, d.prefix+id, 1, d.ttl).Result()
}
