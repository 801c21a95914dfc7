package shared

import (
	"errors"

	"github.com/thinkfashz/osart/internal/constants"
	"github.com/thinkfashz/osart/internal/http/response"
	"github.com/thinkfashz/osart/internal/i18n"
	"github.com/thinkfashz/osart/internal/logger"
	"github.com/thinkfashz/osart/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestLog 提供携带 request_id 的日志实例。
func RequestLog(c *gin.Context) *zap.SugaredLogger {
	if c == nil {
		return logger.S()
	}
	if requestID, ok := c.Get(constants.ContextKeyRequestID); ok {
		if id, ok := requestID.(string); ok && id != "" {
			return logger.SW("request_id", id)
		}
	}
	return logger.S()
}

// RespondError 返回国际化错误响应，并在有原始错误时记录日志。
func RespondError(c *gin.Context, code int, key string, err error) {
	RespondAppError(c, response.NewAppError(code, key, err))
}

// RespondAppError 按 AppError 返回错误，Err 只写日志不下发。
func RespondAppError(c *gin.Context, appErr *response.AppError) {
	if appErr == nil {
		appErr = response.NewAppError(response.CodeInternal, "error.internal", nil)
	}
	msg := i18n.T(i18n.ResolveLocale(c), appErr.Key)
	if appErr.Err != nil {
		RequestLog(c).Errorw("handler_error",
			"code", appErr.Code,
			"key", appErr.Key,
			"error", appErr.Err,
		)
	}
	response.Error(c, appErr.Code, msg)
}

// MappedHandlerError 定义业务错误到接口错误响应的映射关系。
type MappedHandlerError struct {
	Target error
	Code   int
	Key    string
}

// RespondWithMappedError 按映射表返回错误；未命中时按定价错误类别兜底，诊断信息只写日志。
func RespondWithMappedError(c *gin.Context, err error, rules []MappedHandlerError, fallbackKey string) {
	for _, rule := range rules {
		if errors.Is(err, rule.Target) {
			logDiagnostic(c, rule.Code, err)
			RespondError(c, rule.Code, rule.Key, nil)
			return
		}
	}
	switch service.KindOf(err) {
	case service.ErrorKindNotFound:
		logDiagnostic(c, response.CodeNotFound, err)
		RespondError(c, response.CodeNotFound, fallbackKey, nil)
	case service.ErrorKindInvalid:
		logDiagnostic(c, response.CodeBadRequest, err)
		RespondError(c, response.CodeBadRequest, fallbackKey, nil)
	default:
		RespondError(c, response.CodeInternal, fallbackKey, err)
	}
}

// logDiagnostic 业务类错误只记 warn，避免刷屏 error 日志
func logDiagnostic(c *gin.Context, code int, err error) {
	if err == nil {
		return
	}
	RequestLog(c).Warnw("handler_error",
		"code", code,
		"kind", string(service.KindOf(err)),
		"error", err,
	)
}
