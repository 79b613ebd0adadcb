package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MilenaMkrtumyan/movie-recommendation-and-booking-system/internal/config"
)

func newContext(e *echo.Echo, target string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.RemoteAddr = "10.0.0.7:4242"
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func okHandler(c echo.Context) error { return c.String(http.StatusOK, "catalog") }

// unreachableRedis fails every command quickly.
func unreachableRedis() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 200 * time.Millisecond,
		MaxRetries:  -1,
	})
}

func TestPassthroughWithoutRedis(t *testing.T) {
	e := echo.New()
	for name, mw := range map[string]echo.MiddlewareFunc{
		"cache":     NewRedisCache(config.CacheConfig{Enabled: true}, nil),
		"ratelimit": NewTokenBucket(config.RateLimitConfig{Enabled: true}, nil),
		"disabled":  NewRedisCache(config.CacheConfig{Enabled: false}, unreachableRedis()),
	} {
		c, rec := newContext(e, "/v1/movies")
		require.NoError(t, mw(okHandler)(c), name)
		assert.Equal(t, "catalog", rec.Body.String(), name)
		assert.Empty(t, rec.Header().Get("X-Cache"), name)
	}
}

func TestRedisFailuresDoNotBlockRequests(t *testing.T) {
	e := echo.New()
	rdb := unreachableRedis()
	defer rdb.Close()

	c, rec := newContext(e, "/v1/movies?q=dune")
	rl := NewTokenBucket(config.RateLimitConfig{Enabled: true, Capacity: 1, RefillTokens: 1, RefillInterval: time.Second, TTL: time.Minute}, rdb)
	require.NoError(t, rl(okHandler)(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	c, rec = newContext(e, "/v1/movies?q=dune")
	cache := NewRedisCache(config.CacheConfig{Enabled: true, Methods: map[string]bool{"GET": true}, TTL: time.Second}, rdb)
	require.NoError(t, cache(okHandler)(c))
	assert.Equal(t, "catalog", rec.Body.String())
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
}

func TestCacheKey(t *testing.T) {
	e := echo.New()
	at := func(target string) echo.Context {
		c, _ := newContext(e, target)
		c.SetPath("/v1/movies/:id")
		return c
	}
	cfg := config.CacheConfig{Prefix: "catalog", KeyStrategy: "route_query"}

	assert.Equal(t, "catalog:/v1/movies/M0001", cacheKey(cfg, at("/v1/movies/M0001")))
	assert.NotEqual(t, cacheKey(cfg, at("/v1/movies/M0001")), cacheKey(cfg, at("/v1/movies/M0002")))
	assert.Regexp(t, `^catalog:/v1/movies\?[0-9a-f]{16}$`, cacheKey(cfg, at("/v1/movies?q=dune&page=2")))
	assert.Equal(t, cacheKey(cfg, at("/v1/movies?q=dune&page=2")), cacheKey(cfg, at("/v1/movies?page=2&q=dune")),
		"query order does not matter")

	cfg.KeyStrategy = "method_route"
	assert.Equal(t, "catalog:GET:/v1/movies", cacheKey(cfg, at("/v1/movies?q=dune")))
}

func TestCachedResponseReplay(t *testing.T) {
	raw, err := json.Marshal(cachedResponse{
		Status: http.StatusOK,
		Header: http.Header{"Content-Type": {"application/json"}, "Content-Length": {"12"}},
		Body:   []byte(`{"items":[]}`),
	})
	require.NoError(t, err)

	var entry cachedResponse
	require.NoError(t, json.Unmarshal(raw, &entry))
	c, rec := newContext(echo.New(), "/v1/movies")
	require.NoError(t, entry.replay(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Empty(t, rec.Header().Get("Content-Length"))
	assert.Equal(t, "HIT", rec.Header().Get("X-Cache"))
	assert.Equal(t, `{"items":[]}`, rec.Body.String())
}

func TestTeeWriterOverflow(t *testing.T) {
	rec := httptest.NewRecorder()
	w := &teeWriter{ResponseWriter: rec, max: 4}
	_, _ = w.Write([]byte("abc"))
	assert.False(t, w.overflow)
	_, _ = w.Write([]byte("defg"))
	assert.True(t, w.overflow)
	assert.Zero(t, w.copied.Len())
	assert.Equal(t, "abcdefg", rec.Body.String())

	all := &teeWriter{ResponseWriter: httptest.NewRecorder()}
	_, _ = all.Write([]byte("abcdefg"))
	assert.Equal(t, "abcdefg", all.copied.String())
}

func TestRateKey(t *testing.T) {
	e := echo.New()
	c, _ := newContext(e, "/v1/movies")
	c.SetPath("/v1/movies")

	assert.Equal(t, "rl:ip:10.0.0.7", rateKey(config.RateLimitConfig{Prefix: "rl", KeyStrategy: "ip"}, c))
	assert.Equal(t, "rl:route:GET /v1/movies", rateKey(config.RateLimitConfig{Prefix: "rl", KeyStrategy: "route"}, c))
	assert.Equal(t, "rl:ip:10.0.0.7:route:GET /v1/movies", rateKey(config.RateLimitConfig{Prefix: "rl"}, c))
}

func TestParseBucket(t *testing.T) {
	s, err := parseBucket([]int64{0, 0, 1500})
	require.NoError(t, err)
	assert.False(t, s.Allowed)
	assert.Equal(t, 1500*time.Millisecond, s.Wait)
	assert.Equal(t, 2, s.retryAfter())

	s, err = parseBucket([]int64{1, 4, 0})
	require.NoError(t, err)
	assert.True(t, s.Allowed)
	assert.EqualValues(t, 4, s.Remaining)
	assert.Equal(t, 1, s.retryAfter())

	_, err = parseBucket([]int64{1})
	assert.Error(t, err)
}

func TestLimit(t *testing.T) {
	e := echo.New()
	cfg := config.RateLimitConfig{Capacity: 5}

	c, rec := newContext(e, "/v1/movies")
	require.NoError(t, limit(c, cfg, "rl:k", bucketState{Allowed: true, Remaining: 4}, okHandler))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "5", rec.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "4", rec.Header().Get("X-RateLimit-Remaining"))
	assert.Empty(t, rec.Header().Get("Retry-After"))

	c, rec = newContext(e, "/v1/movies")
	require.NoError(t, limit(c, cfg, "rl:k", bucketState{Wait: 300 * time.Millisecond}, okHandler))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), `"too_many_requests"`)
}

// TestTokenBucketAgainstRedis runs the bucket script on a live server when
// REDIS_TEST_ADDR is set.
func TestTokenBucketAgainstRedis(t *testing.T) {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	defer rdb.Close()

	ctx := context.Background()
	key := fmt.Sprintf("rl-test:%d", time.Now().UnixNano())
	defer rdb.Del(ctx, key)
	cfg := config.RateLimitConfig{Capacity: 2, RefillTokens: 1, RefillInterval: time.Hour, TTL: time.Minute}

	for want := int64(1); want >= 0; want-- {
		s, err := takeToken(ctx, rdb, cfg, key)
		require.NoError(t, err)
		assert.True(t, s.Allowed)
		assert.Equal(t, want, s.Remaining)
	}
	s, err := takeToken(ctx, rdb, cfg, key)
	require.NoError(t, err)
	assert.False(t, s.Allowed)
	assert.Greater(t, s.Wait, 59*time.Minute)
}
