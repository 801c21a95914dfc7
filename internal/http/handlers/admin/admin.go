package admin

import (
	"github.com/thinkfashz/osart/internal/constants"
	"github.com/thinkfashz/osart/internal/provider"
	"github.com/thinkfashz/osart/internal/service"

	"github.com/gin-gonic/gin"
)

// Handler 管理端定价规则与促销活动接口
type Handler struct {
	rules      *service.PricingRuleAdminService
	promotions *service.PromotionAdminService
}

// New 从容器取出管理端所需服务
func New(c *provider.Container) *Handler {
	return &Handler{
		rules:      c.PricingRuleAdminService,
		promotions: c.PromotionAdminService,
	}
}

// getAdminSubject 令牌中的 sub，由 AdminTokenMiddleware 写入
func getAdminSubject(c *gin.Context) string {
	subject, _ := c.Get(constants.ContextKeyAdminSubject)
	value, _ := subject.(string)
	return value
}
