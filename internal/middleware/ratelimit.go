// Package middleware holds the Redis-backed response cache and token-bucket
// rate limiter used in front of the catalog API.
package middleware

import (
	"cmp"
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/MilenaMkrtumyan/movie-recommendation-and-booking-system/internal/config"
)

// bucketScript refills the bucket continuously, at ARGV[3] tokens every
// ARGV[4] ms, then tries to take one token. It returns
// {taken, whole_tokens_left, wait_ms}.
var bucketScript = redis.NewScript(`
local now      = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local rate     = tonumber(ARGV[3]) / tonumber(ARGV[4])

local level = tonumber(redis.call('HGET', KEYS[1], 'level')) or capacity
local seen  = tonumber(redis.call('HGET', KEYS[1], 'seen')) or now
if now > seen then
	level = math.min(capacity, level + (now - seen) * rate)
end

local taken, wait = 0, 0
if level >= 1 then
	taken = 1
	level = level - 1
else
	wait = math.ceil((1 - level) / rate)
end

redis.call('HSET', KEYS[1], 'level', tostring(level), 'seen', math.max(now, seen))
redis.call('PEXPIRE', KEYS[1], ARGV[5])
return {taken, math.floor(level), wait}
`)

// bucketState is the outcome of one take.
type bucketState struct {
	Allowed   bool
	Remaining int64
	Wait      time.Duration
}

func takeToken(ctx context.Context, rdb *redis.Client, cfg config.RateLimitConfig, key string) (bucketState, error) {
	res, err := bucketScript.Run(ctx, rdb, []string{key},
		time.Now().UnixMilli(),
		cfg.Capacity,
		cfg.RefillTokens,
		max(cfg.RefillInterval.Milliseconds(), 1),
		max(cfg.TTL.Milliseconds(), 1),
	).Int64Slice()
	if err != nil {
		return bucketState{}, err
	}
	return parseBucket(res)
}

func parseBucket(res []int64) (bucketState, error) {
	if len(res) != 3 {
		return bucketState{}, fmt.Errorf("bucket script returned %d values, want 3", len(res))
	}
	return bucketState{
		Allowed:   res[0] == 1,
		Remaining: max(res[1], 0),
		Wait:      time.Duration(res[2]) * time.Millisecond,
	}, nil
}

// retryAfter is the Retry-After value in whole seconds, never below one.
func (s bucketState) retryAfter() int {
	return max(int((s.Wait+time.Second-1)/time.Second), 1)
}

// NewTokenBucket limits requests per key. Redis errors let the request
// through. With the limiter disabled or no client it passes requests
// through.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return passthrough
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := rateKey(cfg, c)
			state, err := takeToken(c.Request().Context(), rdb, cfg, key)
			if err != nil {
				if cfg.Debug {
					c.Logger().Warnf("rate limit bypassed for %s: %v", key, err)
				}
				return next(c)
			}
			return limit(c, cfg, key, state, next)
		}
	}
}

// limit answers a request given the bucket state taken for it.
func limit(c echo.Context, cfg config.RateLimitConfig, key string, state bucketState, next echo.HandlerFunc) error {
	h := c.Response().Header()
	h.Set("X-RateLimit-Limit", strconv.Itoa(cfg.Capacity))
	h.Set("X-RateLimit-Remaining", strconv.FormatInt(state.Remaining, 10))
	if cfg.Debug {
		h.Set("X-RateLimit-Key", key)
	}
	if state.Allowed {
		return next(c)
	}
	secs := state.retryAfter()
	h.Set("Retry-After", strconv.Itoa(secs))
	return c.JSON(http.StatusTooManyRequests, echo.Map{
		"error":       "too_many_requests",
		"message":     "rate limit exceeded",
		"retry_after": secs,
	})
}

// rateKey derives the bucket key. The catalog is anonymous, so only client
// address and route take part.
func rateKey(cfg config.RateLimitConfig, c echo.Context) string {
	ip := cmp.Or(c.RealIP(), "unknown")
	route := c.Request().Method + " " + c.Path()
	switch strings.ToLower(cfg.KeyStrategy) {
	case "ip":
		return cfg.Prefix + ":ip:" + ip
	case "route":
		return cfg.Prefix + ":route:" + route
	}
	return cfg.Prefix + ":ip:" + ip + ":route:" + route
}
