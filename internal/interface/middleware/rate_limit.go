package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-jwt-identity/pkg/response"
)

// ipFromCtx prefers the address RealIP stored over gin's ClientIP.
func ipFromCtx(c *gin.Context) string {
	if ip := c.GetString("real_ip"); ip != "" {
		return ip
	}
	if ip := c.ClientIP(); ip != "" {
		return ip
	}
	return "unknown"
}

func routePath(c *gin.Context) string {
	if fp := c.FullPath(); fp != "" {
		return fp
	}
	return c.Request.URL.Path
}

// KeyFunc builds the counter key for a request.
type KeyFunc func(c *gin.Context) string

// KeyByIP counts per client address.
func KeyByIP() KeyFunc {
	return func(c *gin.Context) string {
		return "rl:ip:" + ipFromCtx(c)
	}
}

// KeyByIPAndPath counts per client address and route, so register and token
// have separate budgets.
func KeyByIPAndPath() KeyFunc {
	return func(c *gin.Context) string {
		return "rl:path:" + routePath(c) + ":ip:" + ipFromCtx(c)
	}
}

// KeyByUserID counts per authenticated user; it needs Bearer to run first.
func KeyByUserID() KeyFunc {
	return func(c *gin.Context) string {
		if uid := c.GetString(CtxUserIDKey); uid != "" {
			return "rl:user:" + uid
		}
		return "rl:user:anon:ip:" + ipFromCtx(c)
	}
}

// AllowFunc returns true for requests that bypass the limit.
type AllowFunc func(*gin.Context) bool

// INCR and set the window on first hit, atomically.
var incrExpireScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return current
`)

// Limit describes one fixed-window budget.
type Limit struct {
	Max    int
	Window time.Duration
	Key    KeyFunc
	Allow  AllowFunc
}

// RateLimit enforces l with a Redis counter and sets the X-RateLimit-* headers.
// A nil client or an empty limit disables it; Redis errors fail open.
func RateLimit(rdb *redis.Client, l Limit, logger *logrus.Logger) gin.HandlerFunc {
	if rdb == nil || l.Max <= 0 || l.Window <= 0 || l.Key == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		if l.Allow != nil && l.Allow(c) {
			c.Next()
			return
		}
		if strings.EqualFold(c.Request.Method, http.MethodOptions) {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		key := l.Key(c)

		count, err := incrExpireScript.Run(ctx, rdb, []string{key}, l.Window.Milliseconds()).Int()
		if err != nil {
			if logger != nil {
				logger.WithError(err).WithField("key", key).Warn("rate limit check failed; allowing request")
			}
			c.Next()
			return
		}

		resetSec := 0
		if ttl, err := rdb.PTTL(ctx, key).Result(); err == nil && ttl > 0 {
			resetSec = int((ttl + time.Second - 1) / time.Second)
		}
		remaining := l.Max - count
		if remaining < 0 {
			remaining = 0
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(l.Max))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.Itoa(resetSec))

		if count > l.Max {
			if resetSec > 0 {
				c.Header("Retry-After", strconv.Itoa(resetSec))
			}
			response.Abort(c, http.StatusTooManyRequests, "rate limit exceeded", nil)
			return
		}
		c.Next()
	}
}
