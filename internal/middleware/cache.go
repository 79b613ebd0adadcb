package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/MilenaMkrtumyan/movie-recommendation-and-booking-system/internal/config"
)

// cachedResponse is the Redis value for one catalog response.
type cachedResponse struct {
	Status int         `json:"status"`
	Header http.Header `json:"header"`
	Body   []byte      `json:"body"`
}

// replay writes r to c, marking it as served from cache.
func (r cachedResponse) replay(c echo.Context) error {
	h := c.Response().Header()
	for k, vals := range r.Header {
		if http.CanonicalHeaderKey(k) == echo.HeaderContentLength {
			continue
		}
		h[http.CanonicalHeaderKey(k)] = append([]string(nil), vals...)
	}
	h.Set("X-Cache", "HIT")
	c.Response().WriteHeader(r.Status)
	_, err := c.Response().Write(r.Body)
	return err
}

// teeWriter forwards everything to the client and keeps a copy of the
// first max bytes of the body. A max of zero keeps the whole body.
type teeWriter struct {
	http.ResponseWriter
	status   int
	copied   bytes.Buffer
	max      int
	overflow bool
}

func (w *teeWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *teeWriter) Write(b []byte) (int, error) {
	if !w.overflow {
		if w.max > 0 && w.copied.Len()+len(b) > w.max {
			w.overflow = true
			w.copied.Reset()
		} else {
			w.copied.Write(b)
		}
	}
	return w.ResponseWriter.Write(b)
}

// cacheKey names the entry for a request. Every strategy includes the
// resolved path; the method_ strategies add the method and the _query ones
// a digest of the sorted query string.
func cacheKey(cfg config.CacheConfig, c echo.Context) string {
	r := c.Request()
	strategy := strings.ToLower(cfg.KeyStrategy)

	key := cfg.Prefix + ":"
	if strings.HasPrefix(strategy, "method_") {
		key += r.Method + ":"
	}
	key += r.URL.Path
	if strategy != "route" && strategy != "method_route" {
		if q := r.URL.Query().Encode(); q != "" {
			sum := sha256.Sum256([]byte(q))
			key += "?" + hex.EncodeToString(sum[:8])
		}
	}
	return key
}

// NewRedisCache caches successful catalog responses, headers included, in
// Redis. With caching disabled or no client it passes requests through.
func NewRedisCache(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return passthrough
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 30 * time.Second
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !cfg.Methods[strings.ToUpper(c.Request().Method)] {
				return next(c)
			}
			ctx := c.Request().Context()
			key := cacheKey(cfg, c)

			if raw, err := rdb.Get(ctx, key).Bytes(); err == nil {
				var hit cachedResponse
				if json.Unmarshal(raw, &hit) == nil && hit.Status != 0 {
					return hit.replay(c)
				}
			}

			w := &teeWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK, max: cfg.MaxBodyBytes}
			c.Response().Writer = w
			c.Response().Header().Set("X-Cache", "MISS")
			if err := next(c); err != nil {
				return err
			}
			if w.status != http.StatusOK || w.overflow {
				return nil
			}
			entry := cachedResponse{Status: w.status, Header: c.Response().Header().Clone(), Body: w.copied.Bytes()}
			entry.Header.Del("X-Cache")
			if raw, err := json.Marshal(entry); err == nil {
				_ = rdb.Set(context.WithoutCancel(ctx), key, raw, ttl).Err()
			}
			return nil
		}
	}
}

func passthrough(next echo.HandlerFunc) echo.HandlerFunc { return next }
