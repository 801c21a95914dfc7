package admin

import (
	"encoding/json"
	"strings"

	handlershared "github.com/thinkfashz/osart/internal/http/handlers/shared"
	"github.com/thinkfashz/osart/internal/http/response"
	"github.com/thinkfashz/osart/internal/repository"
	"github.com/thinkfashz/osart/internal/service"

	"github.com/gin-gonic/gin"
)

// CreatePricingRuleRequest 创建定价规则请求
type CreatePricingRuleRequest struct {
	Name     string          `json:"name" binding:"required"`
	RuleType string          `json:"rule_type" binding:"required"`
	Config   json.RawMessage `json:"config"`
	Priority int             `json:"priority"`
	IsActive *bool           `json:"is_active"`
}

// UpdateStatusRequest 启用状态切换请求
type UpdateStatusRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

// GetPricingRules 定价规则列表
func (h *Handler) GetPricingRules(c *gin.Context) {
	isActive, ok := handlershared.ParseOptionalBoolQuery(c, "is_active")
	if !ok {
		return
	}
	rules, err := h.rules.List(c.Request.Context(), repository.PricingRuleListFilter{
		RuleType: strings.TrimSpace(c.Query("rule_type")),
		IsActive: isActive,
	})
	if err != nil {
		respondWithMappedError(c, err, pricingRuleErrorRules, "error.pricing_rule_fetch_failed")
		return
	}
	response.Success(c, rules)
}

// CreatePricingRule 创建定价规则
func (h *Handler) CreatePricingRule(c *gin.Context) {
	var req CreatePricingRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	rule, err := h.rules.Create(c.Request.Context(), service.CreatePricingRuleInput{
		Name:     req.Name,
		RuleType: req.RuleType,
		Config:   req.Config,
		Priority: req.Priority,
		IsActive: req.IsActive,
	})
	if err != nil {
		respondWithMappedError(c, err, pricingRuleErrorRules, "error.pricing_rule_create_failed")
		return
	}
	requestLog(c).Infow("pricing_rule_created", "rule_id", rule.ID, "admin", getAdminSubject(c))
	response.Success(c, rule)
}

// UpdatePricingRuleStatus 切换定价规则启用状态
func (h *Handler) UpdatePricingRuleStatus(c *gin.Context) {
	id, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		return
	}
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	rule, err := h.rules.Toggle(c.Request.Context(), id, *req.IsActive)
	if err != nil {
		respondWithMappedError(c, err, pricingRuleErrorRules, "error.pricing_rule_update_failed")
		return
	}
	requestLog(c).Infow("pricing_rule_toggled", "rule_id", id, "is_active", *req.IsActive, "admin", getAdminSubject(c))
	response.Success(c, rule)
}

// DeletePricingRule 删除定价规则
func (h *Handler) DeletePricingRule(c *gin.Context) {
	id, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		return
	}
	if err := h.rules.Delete(c.Request.Context(), id); err != nil {
		respondWithMappedError(c, err, pricingRuleErrorRules, "error.pricing_rule_delete_failed")
		return
	}
	requestLog(c).Infow("pricing_rule_deleted", "rule_id", id, "admin", getAdminSubject(c))
	response.Success(c, nil)
}
