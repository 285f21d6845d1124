package db

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
)

// Check is a named readiness probe used by /healthz.
type Check struct {
	Name  string
	Probe func(ctx context.Context) error
}

func MySQLCheck(db *sqlx.DB) Check {
	return Check{Name: "mysql", Probe: db.PingContext}
}

func RedisCheck(rdb *redis.Client) Check {
	return Check{Name: "redis", Probe: func(ctx context.Context) error { return rdb.Ping(ctx).Err() }}
}
