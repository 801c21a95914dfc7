package shared

import (
	"strconv"
	"strings"

	"github.com/thinkfashz/osart/internal/http/response"

	"github.com/gin-gonic/gin"
)

// ParseUintParam 解析路径中的正整数 ID，失败时直接写入错误响应。
func ParseUintParam(c *gin.Context, name string) (uint, bool) {
	raw := strings.TrimSpace(c.Param(name))
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		RespondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return 0, false
	}
	return uint(id), true
}

// ParseOptionalUintQuery 解析可选的正整数 query 参数。
func ParseOptionalUintQuery(c *gin.Context, name string) (*uint, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, true
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		RespondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return nil, false
	}
	value := uint(id)
	return &value, true
}

// ParseOptionalBoolQuery 解析可选的布尔 query 参数。
func ParseOptionalBoolQuery(c *gin.Context, name string) (*bool, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, true
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		RespondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return nil, false
	}
	return &value, true
}
