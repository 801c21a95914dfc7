// Package i18n 提供接口错误提示的多语言文案。
package i18n

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/text/language"
)

// 支持的语言
const (
	LocaleEN = "en-US"
	LocaleZH = "zh-CN"
)

// DefaultLocale 默认语言
const DefaultLocale = LocaleEN

var matcher = language.NewMatcher([]language.Tag{
	language.AmericanEnglish,
	language.SimplifiedChinese,
})

var messages = map[string]map[string]string{
	LocaleEN: {
		"error.bad_request":                "Invalid request parameters",
		"error.unauthorized":               "Unauthorized",
		"error.forbidden":                  "Forbidden",
		"error.too_many_requests":          "Too many requests, please try again later",
		"error.rate_limited":               "Too many requests, please retry in %d seconds",
		"error.rate_limit_unavailable":     "Rate limiting is temporarily unavailable",
		"error.jwt_secret_missing":         "Admin authentication is not configured",
		"error.auth_header_missing":        "Authorization header is missing",
		"error.auth_header_invalid":        "Authorization header must be a Bearer token",
		"error.token_invalid":              "Invalid or expired token",
		"error.internal":                   "Internal server error",
		"error.product_not_found":          "Product not found",
		"error.variant_not_found":          "Product variant not found",
		"error.price_calculate_failed":     "Failed to calculate price",
		"error.pricing_rule_invalid":       "Invalid pricing rule",
		"error.pricing_rule_not_found":     "Pricing rule not found",
		"error.pricing_rule_fetch_failed":  "Failed to load pricing rules",
		"error.pricing_rule_create_failed": "Failed to create pricing rule",
		"error.pricing_rule_update_failed": "Failed to update pricing rule",
		"error.pricing_rule_delete_failed": "Failed to delete pricing rule",
		"error.promotion_invalid":          "Invalid promotion",
		"error.promotion_target_invalid":   "Invalid promotion target",
		"error.promotion_not_found":        "Promotion not found",
		"error.promotion_fetch_failed":     "Failed to load promotions",
		"error.promotion_create_failed":    "Failed to create promotion",
		"error.promotion_targets_failed":   "Failed to save promotion targets, nothing was created",
		"error.promotion_update_failed":    "Failed to update promotion",
		"error.promotion_delete_failed":    "Failed to delete promotion",
	},
	LocaleZH: {
		"error.bad_request":                "请求参数错误",
		"error.unauthorized":               "未授权",
		"error.forbidden":                  "无权限",
		"error.too_many_requests":          "请求过于频繁，请稍后再试",
		"error.rate_limited":               "请求过于频繁，请在 %d 秒后重试",
		"error.rate_limit_unavailable":     "限流服务暂不可用",
		"error.jwt_secret_missing":         "管理端鉴权未配置",
		"error.auth_header_missing":        "缺少 Authorization 请求头",
		"error.auth_header_invalid":        "Authorization 请求头格式错误",
		"error.token_invalid":              "令牌无效或已过期",
		"error.internal":                   "服务器内部错误",
		"error.product_not_found":          "商品不存在",
		"error.variant_not_found":          "商品规格不存在",
		"error.price_calculate_failed":     "价格计算失败",
		"error.pricing_rule_invalid":       "定价规则不合法",
		"error.pricing_rule_not_found":     "定价规则不存在",
		"error.pricing_rule_fetch_failed":  "获取定价规则失败",
		"error.pricing_rule_create_failed": "创建定价规则失败",
		"error.pricing_rule_update_failed": "更新定价规则失败",
		"error.pricing_rule_delete_failed": "删除定价规则失败",
		"error.promotion_invalid":          "活动参数不合法",
		"error.promotion_target_invalid":   "活动适用对象不合法",
		"error.promotion_not_found":        "活动不存在",
		"error.promotion_fetch_failed":     "获取活动失败",
		"error.promotion_create_failed":    "创建活动失败",
		"error.promotion_targets_failed":   "保存活动适用对象失败，活动未创建",
		"error.promotion_update_failed":    "更新活动失败",
		"error.promotion_delete_failed":    "删除活动失败",
	},
}

// T 获取文案，缺失时回退默认语言，再回退为 key 本身
func T(locale, key string) string {
	if table, ok := messages[NormalizeLocale(locale)]; ok {
		if msg, ok := table[key]; ok {
			return msg
		}
	}
	if msg, ok := messages[DefaultLocale][key]; ok {
		return msg
	}
	return key
}

// Sprintf 获取文案并格式化
func Sprintf(locale, key string, args ...interface{}) string {
	return fmt.Sprintf(T(locale, key), args...)
}

// NormalizeLocale 将任意语言标记归一到支持的语言
func NormalizeLocale(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultLocale
	}
	tags, _, err := language.ParseAcceptLanguage(raw)
	if err != nil || len(tags) == 0 {
		return DefaultLocale
	}
	_, idx, confidence := matcher.Match(tags...)
	if confidence == language.No {
		return DefaultLocale
	}
	if idx == 1 {
		return LocaleZH
	}
	return LocaleEN
}

// ResolveLocale 从请求解析语言：query lang > X-Locale > Accept-Language
func ResolveLocale(c *gin.Context) string {
	if c == nil || c.Request == nil {
		return DefaultLocale
	}
	if lang := strings.TrimSpace(c.Query("lang")); lang != "" {
		return NormalizeLocale(lang)
	}
	if locale := strings.TrimSpace(c.GetHeader("X-Locale")); locale != "" {
		return NormalizeLocale(locale)
	}
	return NormalizeLocale(c.GetHeader("Accept-Language"))
}
