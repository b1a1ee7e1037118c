package middleware

import (
    "bytes"
    "context"
    "crypto/sha1"
    "encoding/hex"
    "encoding/json"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/iliyamo/visitor-register/internal/config"
)

// cachedResponse is what a cache entry holds.  Handlers behind the cache
// answer with JSON envelopes, so status, content type and body are enough
// to replay them.
type cachedResponse struct {
    Status      int    `json:"s"`
    ContentType string `json:"ct"`
    Body        []byte `json:"b"`
}

// teeWriter forwards to the client and keeps a copy of up to limit bytes.
// overflow is set once the body outgrows the limit.
type teeWriter struct {
    http.ResponseWriter
    status   int
    buf      bytes.Buffer
    limit    int
    overflow bool
}

func (w *teeWriter) WriteHeader(code int) {
    w.status = code
    w.ResponseWriter.WriteHeader(code)
}

func (w *teeWriter) Write(b []byte) (int, error) {
    if !w.overflow {
        if w.limit > 0 && w.buf.Len()+len(b) > w.limit {
            w.overflow = true
            w.buf.Reset()
        } else {
            w.buf.Write(b)
        }
    }
    return w.ResponseWriter.Write(b)
}

// cacheKeyFrom derives the entry key.  route_query_user also folds in the
// member so a response rendered for one member is never replayed to
// another.
func cacheKeyFrom(cfg config.CacheConfig, c echo.Context) string {
    parts := []string{c.Request().Method, c.Path(), c.Request().URL.RawQuery}
    if strings.EqualFold(cfg.KeyStrategy, "route_query_user") {
        parts = append(parts, memberKey(c))
    }
    sum := sha1.Sum([]byte(strings.Join(parts, "|")))
    return cfg.Prefix + ":" + hex.EncodeToString(sum[:])
}

// NewRedisCache replays 200 responses from Redis for cfg.TTL.  Failure
// envelopes carry a non-200 status and are never stored.  Without Redis
// the middleware is a no-op.
func NewRedisCache(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
    }
    ttl := cfg.TTL
    if ttl <= 0 {
        ttl = 15 * time.Second
    }

    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if !cfg.Methods[c.Request().Method] {
                return next(c)
            }
            key := cacheKeyFrom(cfg, c)

            if raw, err := rdb.Get(c.Request().Context(), key).Bytes(); err == nil {
                var hit cachedResponse
                if json.Unmarshal(raw, &hit) == nil && hit.Status != 0 {
                    c.Response().Header().Set("X-Cache", "HIT")
                    return c.Blob(hit.Status, hit.ContentType, hit.Body)
                }
            }

            tw := &teeWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK, limit: cfg.MaxBodyBytes}
            c.Response().Writer = tw
            c.Response().Header().Set("X-Cache", "MISS")
            if err := next(c); err != nil {
                return err
            }
            if tw.status != http.StatusOK || tw.overflow {
                return nil
            }
            entry, err := json.Marshal(cachedResponse{
                Status:      tw.status,
                ContentType: c.Response().Header().Get(echo.HeaderContentType),
                Body:        tw.buf.Bytes(),
            })
            if err == nil {
                // the request context may already be cancelled once the client has its answer
                _ = rdb.Set(context.WithoutCancel(c.Request().Context()), key, entry, ttl).Err()
            }
            return nil
        }
    }
}
