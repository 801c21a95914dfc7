package router

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/thinkfashz/osart/internal/config"
	"github.com/thinkfashz/osart/internal/constants"
	"github.com/thinkfashz/osart/internal/http/response"
	"github.com/thinkfashz/osart/internal/i18n"
	"github.com/thinkfashz/osart/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const requestIDKey = constants.ContextKeyRequestID
const requestIDHeader = "X-Request-ID"

var (
	defaultCORSMethods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}
	defaultCORSHeaders = []string{
		"Content-Type", "Content-Length", "Accept-Encoding", "Accept-Language",
		"Authorization", "X-Locale", requestIDHeader,
	}
)

// CORSMiddleware 跨域中间件，预检请求直接返回 204
func CORSMiddleware(cfg config.CORSConfig) gin.HandlerFunc {
	policy := newOriginPolicy(cfg.AllowedOrigins, cfg.AllowCredentials)
	fixed := map[string]string{
		"Access-Control-Allow-Methods": strings.Join(orDefaults(cfg.AllowedMethods, defaultCORSMethods), ", "),
		"Access-Control-Allow-Headers": strings.Join(orDefaults(cfg.AllowedHeaders, defaultCORSHeaders), ", "),
	}
	if cfg.AllowCredentials {
		fixed["Access-Control-Allow-Credentials"] = "true"
	}
	if cfg.MaxAge > 0 {
		fixed["Access-Control-Max-Age"] = strconv.Itoa(cfg.MaxAge)
	}

	return func(c *gin.Context) {
		header := c.Writer.Header()
		if allowed := policy.resolve(c.GetHeader("Origin")); allowed != "" {
			header.Set("Access-Control-Allow-Origin", allowed)
			if allowed != "*" {
				header.Add("Vary", "Origin")
			}
		}
		for name, value := range fixed {
			header.Set(name, value)
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// originPolicy 来源白名单；未配置时放行全部来源
type originPolicy struct {
	wildcard    bool
	credentials bool
	origins     map[string]struct{}
}

func newOriginPolicy(allowed []string, credentials bool) originPolicy {
	p := originPolicy{credentials: credentials, origins: make(map[string]struct{}, len(allowed))}
	if len(allowed) == 0 {
		p.wildcard = true
	}
	for _, origin := range allowed {
		origin = strings.ToLower(strings.TrimSpace(origin))
		if origin == "*" {
			p.wildcard = true
			continue
		}
		if origin != "" {
			p.origins[origin] = struct{}{}
		}
	}
	return p
}

// resolve 返回 Access-Control-Allow-Origin 的取值，空串表示不下发。
// 携带凭证时浏览器不接受 *，改为回显来源。
func (p originPolicy) resolve(origin string) string {
	if p.wildcard {
		if p.credentials && origin != "" {
			return origin
		}
		return "*"
	}
	if _, ok := p.origins[strings.ToLower(origin)]; ok && origin != "" {
		return origin
	}
	return ""
}

func orDefaults(values, fallback []string) []string {
	if len(values) == 0 {
		return fallback
	}
	return values
}

// RequestIDMiddleware 请求 ID 中间件
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(requestIDKey, requestID)
		c.Writer.Header().Set(requestIDHeader, requestID)
		c.Next()
	}
}

// LoggerMiddleware 结构化请求日志中间件
func LoggerMiddleware(log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = logger.Z()
	}
	sugar := log.Sugar()
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := sugar.With(
			"request_id", getRequestID(c),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		)
		if len(c.Errors) > 0 {
			entry.Errorw("request", "errors", c.Errors.String())
			return
		}
		entry.Infow("request")
	}
}

func getRequestID(c *gin.Context) string {
	value, ok := c.Get(requestIDKey)
	if !ok {
		return ""
	}
	if requestID, ok := value.(string); ok {
		return requestID
	}
	return ""
}

// AdminTokenMiddleware 校验管理端 Bearer 令牌（HS256，sub 必填）
// 令牌签发不在本服务内。
func AdminTokenMiddleware(secretKey, issuer string) gin.HandlerFunc {
	secretKey = strings.TrimSpace(secretKey)
	issuer = strings.TrimSpace(issuer)
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if issuer != "" {
		options = append(options, jwt.WithIssuer(issuer))
	}
	parser := jwt.NewParser(options...)

	return func(c *gin.Context) {
		if secretKey == "" {
			abortUnauthorized(c, "error.jwt_secret_missing")
			return
		}
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "error.auth_header_missing")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer") {
			abortUnauthorized(c, "error.auth_header_invalid")
			return
		}

		claims := &jwt.RegisteredClaims{}
		token, err := parser.ParseWithClaims(strings.TrimSpace(parts[1]), claims, func(token *jwt.Token) (interface{}, error) {
			return []byte(secretKey), nil
		})
		if err != nil || !token.Valid || strings.TrimSpace(claims.Subject) == "" {
			logger.Warnw("admin_token_rejected",
				"request_id", getRequestID(c),
				"path", c.Request.URL.Path,
				"error", err,
			)
			abortUnauthorized(c, "error.token_invalid")
			return
		}

		c.Set(constants.ContextKeyAdminSubject, claims.Subject)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, key string) {
	msg := i18n.T(i18n.ResolveLocale(c), key)
	response.Unauthorized(c, msg)
	c.Abort()
}
