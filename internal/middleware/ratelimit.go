package middleware

import (
    "math"
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/iliyamo/visitor-register/internal/config"
    "github.com/iliyamo/visitor-register/internal/visitor"
)

// takeToken refills the bucket for whole elapsed intervals, then tries to
// take one token.  Returns {allowed, remaining, retry_after_ms}.
var takeToken = redis.NewScript(`
local capacity = tonumber(ARGV[2])
local refill = tonumber(ARGV[3])
local interval = tonumber(ARGV[4])
local now = tonumber(ARGV[1])

local tokens = tonumber(redis.call('HGET', KEYS[1], 'tokens'))
local last = tonumber(redis.call('HGET', KEYS[1], 'last'))
if tokens == nil or last == nil then
    tokens, last = capacity, now
end

local steps = math.floor(math.max(0, now - last) / interval)
if steps > 0 then
    tokens = math.min(capacity, tokens + steps * refill)
    last = last + steps * interval
end

local allowed, wait = 0, 0
if tokens >= 1 then
    allowed, tokens = 1, tokens - 1
else
    wait = math.max(0, interval - (now - last))
end

redis.call('HSET', KEYS[1], 'tokens', tokens, 'last', last)
redis.call('EXPIRE', KEYS[1], ARGV[5])
return {allowed, tokens, wait}
`)

// NewTokenBucket limits requests per key with a token bucket kept in
// Redis.  Redis errors let the request through.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
    }
    limit := strconv.Itoa(cfg.Capacity)

    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            key := buildRateKey(cfg, c)
            res, err := takeToken.Run(c.Request().Context(), rdb, []string{key},
                time.Now().UnixMilli(),
                cfg.Capacity,
                cfg.RefillTokens,
                cfg.RefillInterval.Milliseconds(),
                int64(cfg.TTL/time.Second),
            ).Int64Slice()
            if err != nil || len(res) != 3 {
                if cfg.Debug {
                    c.Logger().Warnf("ratelimit: key=%s result=%v err=%v", key, res, err)
                }
                return next(c)
            }

            h := c.Response().Header()
            h.Set("X-RateLimit-Limit", limit)
            h.Set("X-RateLimit-Remaining", strconv.FormatInt(res[1], 10))
            if res[0] == 1 {
                return next(c)
            }

            secs := int(math.Ceil(float64(res[2]) / 1000))
            h.Set("Retry-After", strconv.Itoa(secs))
            return c.JSON(http.StatusTooManyRequests, echo.Map{
                "status":   int(visitor.CodeGenericError),
                "message":  "Too many requests, please retry later.",
                "response": echo.Map{"retry_after": secs},
            })
        }
    }
}

// buildRateKey joins the parts selected by cfg.KeyStrategy: ip, member,
// member_route, or ip_member_route (the default).
func buildRateKey(cfg config.RateLimitConfig, c echo.Context) string {
    ip := c.RealIP()
    if ip == "" {
        ip = "unknown"
    }
    route := c.Request().Method + " " + c.Path()

    parts := []string{cfg.Prefix}
    switch strings.ToLower(cfg.KeyStrategy) {
    case "ip":
        parts = append(parts, "ip", ip)
    case "member":
        parts = append(parts, "m", memberKey(c))
    case "member_route":
        parts = append(parts, "m", memberKey(c), "r", route)
    default:
        parts = append(parts, "ip", ip, "m", memberKey(c), "r", route)
    }
    return strings.Join(parts, ":")
}
