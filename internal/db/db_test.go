package db

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/urocare/clinic/internal/config"
)

func TestOptsFromConfig(t *testing.T) {
	m := MySQLOptsFrom(config.DatabaseConfig{MaxOpenConns: 10, PingTimeout: 2 * time.Second})
	assert.Equal(t, 10, m.MaxOpenConns)
	assert.Equal(t, 2*time.Second, m.PingTimeout)

	r := RedisOptsFrom(config.RedisConfig{Addr: "127.0.0.1:6379", DB: 1})
	assert.Equal(t, "127.0.0.1:6379", r.Addr)
	assert.Equal(t, 1, r.DB)
}

func TestConstructorsRejectEmptyTargets(t *testing.T) {
	_, err := NewMySQLConnection("", MySQLOpts{})
	assert.ErrorContains(t, err, "empty MySQL DSN")

	_, err = NewRedisClient(RedisOpts{})
	assert.ErrorContains(t, err, "empty redis addr")
}

func TestPingTimeoutDefault(t *testing.T) {
	assert.Equal(t, 5*time.Second, pingTimeout(0))
	assert.Equal(t, time.Second, pingTimeout(time.Second))
}
