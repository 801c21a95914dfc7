package router

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/thinkfashz/osart/internal/http/response"
	"github.com/thinkfashz/osart/internal/i18n"
	"github.com/thinkfashz/osart/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RateLimitKeyFunc 从请求中取限流主体
type RateLimitKeyFunc func(*gin.Context) string

// RateLimitRule 固定窗口限流规则
type RateLimitRule struct {
	Prefix        string
	WindowSeconds int
	MaxRequests   int
	MessageKey    string
}

func (r RateLimitRule) active() bool {
	return r.WindowSeconds > 0 && r.MaxRequests > 0
}

func (r RateLimitRule) key(subject string) string {
	if r.Prefix == "" {
		return subject
	}
	return r.Prefix + ":" + subject
}

// windowHit 一次计数后的窗口状态
type windowHit struct {
	Count      int64
	TTLSeconds int64
}

// KEYS[1] 计数 key，ARGV[1] 窗口秒数；首个请求设置过期
var fixedWindowScript = redis.NewScript(`
local n = redis.call("INCR", KEYS[1])
if n == 1 then
	redis.call("EXPIRE", KEYS[1], ARGV[1])
end
return {n, redis.call("TTL", KEYS[1])}
`)

func hitWindow(ctx context.Context, client *redis.Client, key string, windowSeconds int) (windowHit, error) {
	values, err := fixedWindowScript.Run(ctx, client, []string{key}, windowSeconds).Int64Slice()
	if err != nil {
		return windowHit{}, err
	}
	if len(values) != 2 {
		return windowHit{}, fmt.Errorf("rate limit script returned %d values", len(values))
	}
	return windowHit{Count: values[0], TTLSeconds: values[1]}, nil
}

// retryAfter 超限后需要等待的秒数，至少 1 秒
func (h windowHit) retryAfter(windowSeconds int) int {
	if h.TTLSeconds > 0 {
		return int(h.TTLSeconds)
	}
	return max(windowSeconds, 1)
}

// RateLimitMiddleware Redis 固定窗口限流。
// client 为空或规则未配置时放行；Redis 出错时拒绝请求。
func RateLimitMiddleware(client *redis.Client, rule RateLimitRule, keyFunc RateLimitKeyFunc) gin.HandlerFunc {
	msgKey := strings.TrimSpace(rule.MessageKey)
	if msgKey == "" {
		msgKey = "error.rate_limited"
	}
	return func(c *gin.Context) {
		if client == nil || !rule.active() {
			c.Next()
			return
		}

		subject := ""
		if keyFunc != nil {
			subject = strings.TrimSpace(keyFunc(c))
		}
		if subject == "" {
			subject = c.ClientIP()
		}
		key := rule.key(subject)

		hit, err := hitWindow(c.Request.Context(), client, key, rule.WindowSeconds)
		if err != nil {
			logger.Warnw("rate_limit_script_failed", "key", key, "request_id", getRequestID(c), "error", err)
			locale := i18n.ResolveLocale(c)
			response.Error(c, response.CodeInternal, i18n.T(locale, "error.rate_limit_unavailable"))
			c.Abort()
			return
		}

		limit := int64(rule.MaxRequests)
		c.Header("X-RateLimit-Limit", strconv.FormatInt(limit, 10))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(max(limit-hit.Count, 0), 10))
		if hit.Count <= limit {
			c.Next()
			return
		}

		wait := hit.retryAfter(rule.WindowSeconds)
		c.Header("Retry-After", strconv.Itoa(wait))
		response.Error(c, response.CodeTooManyRequests, i18n.Sprintf(i18n.ResolveLocale(c), msgKey, wait))
		c.Abort()
	}
}

// KeyByIP 按客户端 IP 限流
func KeyByIP(c *gin.Context) string {
	return c.ClientIP()
}

// KeyByIPAndParam 按路径参数加客户端 IP 限流，参数为空时退化为 IP
func KeyByIPAndParam(param string) RateLimitKeyFunc {
	return func(c *gin.Context) string {
		value := strings.TrimSpace(c.Param(param))
		if value == "" {
			return c.ClientIP()
		}
		return value + "|" + c.ClientIP()
	}
}
