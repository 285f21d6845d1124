package middleware

import (
	"net/http"
	"strconv"
	"time"

	echo "github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/urocare/clinic/internal/logger"
	"go.uber.org/zap"
)

// RateLimitConfig config for Redis-based RPS limiter.
type RateLimitConfig struct {
	Redis          *redis.Client
	RPS            int                         // max requests per window per key
	KeyPrefix      string                      // e.g. "rl:intake:"
	Window         time.Duration               // usually 1s
	RetryAfterHint bool                        // set Retry-After header when limited
	KeyFunc        func(c echo.Context) string // default: client IP
}

// RateLimitMiddleware applies a fixed-window limit per client. Without redis
// or with a non-positive RPS every request passes.
func RateLimitMiddleware(cfg RateLimitConfig) echo.MiddlewareFunc {
	if cfg.Window <= 0 {
		cfg.Window = time.Second
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = "rl:intake:"
	}
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = func(c echo.Context) string { return c.RealIP() }
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if cfg.RPS <= 0 || cfg.Redis == nil {
				return next(c)
			}
			id := cfg.KeyFunc(c)
			if id == "" {
				return next(c)
			}

			// fixed-window key: rl:intake:{ip}:{window index}
			now := time.Now()
			win := now.UnixNano() / int64(cfg.Window)
			key := cfg.KeyPrefix + id + ":" + strconv.FormatInt(win, 10)

			ctx := c.Request().Context()
			pipe := cfg.Redis.Pipeline()
			cnt := pipe.Incr(ctx, key)
			pipe.Expire(ctx, key, cfg.Window*2)
			if _, err := pipe.Exec(ctx); err != nil {
				// fail open
				logger.Log.Warn("rate limit check failed", zap.Error(err))
				return next(c)
			}

			if cnt.Val() > int64(cfg.RPS) {
				if cfg.RetryAfterHint {
					remain := cfg.Window - time.Duration(now.UnixNano()%int64(cfg.Window))
					secs := int((remain + time.Second - 1) / time.Second)
					c.Response().Header().Set("Retry-After", strconv.Itoa(secs))
				}
				return c.JSON(http.StatusTooManyRequests, map[string]string{"error": "rate limited"})
			}
			return next(c)
		}
	}
}
