package middleware

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/movie-ticketing/internal/config"
)

// cachedResponse is the JSON envelope stored in Redis for one cacheable
// response: status, content type and body.
type cachedResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// bodyRecorder tees the response body into a buffer up to limit bytes
// while still writing through to the client.
type bodyRecorder struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
	limit  int
}

func (br *bodyRecorder) WriteHeader(code int) {
	br.status = code
	br.ResponseWriter.WriteHeader(code)
}

func (br *bodyRecorder) Write(b []byte) (int, error) {
	if br.limit <= 0 || br.buf.Len()+len(b) <= br.limit {
		br.buf.Write(b)
	} else {
		br.buf.Reset() // over budget, do not cache a truncated body
		br.limit = -1
	}
	return br.ResponseWriter.Write(b)
}

// pathGroup truncates a request path to its first two segments, the unit
// at which writes invalidate cached reads ("/v1/movies/Dune" becomes
// "/v1/movies").
func pathGroup(p string) string {
	parts := strings.SplitN(strings.TrimPrefix(p, "/"), "/", 3)
	if len(parts) >= 2 {
		return "/" + parts[0] + "/" + parts[1]
	}
	return p
}

// cacheKey derives a stable Redis key from the concrete request path and
// raw query, so parameterized routes (one movie per title) cache per entry
// rather than per route pattern.  The path group stays readable in the key
// so invalidation can address a whole group with one SCAN pattern.
func cacheKey(prefix string, c echo.Context) string {
	r := c.Request()
	sum := sha1.Sum([]byte(r.Method + ":" + r.URL.Path + "?" + r.URL.RawQuery))
	return fmt.Sprintf("%s:%s:%x", prefix, pathGroup(r.URL.Path), sum[:])
}

// NewRedisCache caches successful responses for the configured methods in
// Redis.  Hits are served without touching the handler and marked with an
// X-Cache header.  A nil client or disabled config yields a pass-through.
func NewRedisCache(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
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
			key := cacheKey(cfg.Prefix, c)

			if raw, err := rdb.Get(ctx, key).Bytes(); err == nil {
				var cached cachedResponse
				if json.Unmarshal(raw, &cached) == nil {
					c.Response().Header().Set(echo.HeaderContentType, cached.ContentType)
					c.Response().Header().Set("X-Cache", "HIT")
					c.Response().WriteHeader(cached.Status)
					_, _ = c.Response().Write(cached.Body)
					return nil
				}
			}

			rec := &bodyRecorder{ResponseWriter: c.Response().Writer, status: http.StatusOK, limit: cfg.MaxBodyBytes}
			c.Response().Writer = rec
			c.Response().Header().Set("X-Cache", "MISS")

			if err := next(c); err != nil {
				return err
			}

			if rec.status == http.StatusOK && rec.buf.Len() > 0 {
				payload, err := json.Marshal(cachedResponse{
					Status:      rec.status,
					ContentType: c.Response().Header().Get(echo.HeaderContentType),
					Body:        rec.buf.Bytes(),
				})
				if err == nil {
					_ = rdb.SetEx(context.Background(), key, payload, ttl).Err()
				}
			}
			return nil
		}
	}
}

// NewCacheInvalidator drops every cached response under the given path
// groups once a mutating request succeeds, so reads after a catalog or
// showing write never serve entries older than that write.  A nil client
// or disabled config yields a pass-through; scan failures are ignored and
// any surviving entry still expires with its TTL.
func NewCacheInvalidator(cfg config.CacheConfig, rdb *redis.Client, groups ...string) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if err := next(c); err != nil {
				return err
			}
			if c.Response().Status >= http.StatusBadRequest {
				return nil
			}
			ctx := c.Request().Context()
			for _, g := range groups {
				iter := rdb.Scan(ctx, 0, cfg.Prefix+":"+g+":*", 0).Iterator()
				for iter.Next(ctx) {
					_ = rdb.Del(ctx, iter.Val()).Err()
				}
			}
			return nil
		}
	}
}
