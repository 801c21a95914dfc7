package admin

import (
	"strings"
	"time"

	handlershared "github.com/thinkfashz/osart/internal/http/handlers/shared"
	"github.com/thinkfashz/osart/internal/http/response"
	"github.com/thinkfashz/osart/internal/models"
	"github.com/thinkfashz/osart/internal/repository"
	"github.com/thinkfashz/osart/internal/service"

	"github.com/gin-gonic/gin"
)

// PromotionTargetRequest 活动适用对象
type PromotionTargetRequest struct {
	TargetType string `json:"target_type" binding:"required"`
	TargetID   uint   `json:"target_id" binding:"required"`
}

// CreatePromotionRequest 创建活动请求
type CreatePromotionRequest struct {
	Name      string                   `json:"name" binding:"required"`
	Type      string                   `json:"type" binding:"required"`
	Value     models.Money             `json:"value"`
	StartDate string                   `json:"start_date" binding:"required"`
	EndDate   string                   `json:"end_date" binding:"required"`
	IsActive  *bool                    `json:"is_active"`
	Code      string                   `json:"code"`
	Targets   []PromotionTargetRequest `json:"targets"`
}

// GetPromotions 活动列表（含适用对象）
func (h *Handler) GetPromotions(c *gin.Context) {
	page, pageSize := handlershared.PaginationFromQuery(c)
	isActive, ok := handlershared.ParseOptionalBoolQuery(c, "is_active")
	if !ok {
		return
	}

	promotions, total, err := h.promotions.List(c.Request.Context(), repository.PromotionListFilter{
		Page:     page,
		PageSize: pageSize,
		Keyword:  strings.TrimSpace(c.Query("keyword")),
		Code:     strings.TrimSpace(c.Query("code")),
		IsActive: isActive,
	})
	if err != nil {
		respondWithMappedError(c, err, promotionErrorRules, "error.promotion_fetch_failed")
		return
	}

	pagination := response.BuildPagination(page, pageSize, total)
	response.SuccessWithPage(c, promotions, pagination)
}

// GetActivePromotions 当前生效的活动
func (h *Handler) GetActivePromotions(c *gin.Context) {
	promotions, err := h.promotions.ListActive(c.Request.Context())
	if err != nil {
		respondWithMappedError(c, err, promotionErrorRules, "error.promotion_fetch_failed")
		return
	}
	response.Success(c, promotions)
}

// CreatePromotion 创建活动及其适用对象
func (h *Handler) CreatePromotion(c *gin.Context) {
	var req CreatePromotionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	startDate, err := time.Parse(time.RFC3339, strings.TrimSpace(req.StartDate))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	endDate, err := time.Parse(time.RFC3339, strings.TrimSpace(req.EndDate))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	targets := make([]service.PromotionTargetInput, 0, len(req.Targets))
	for _, target := range req.Targets {
		targets = append(targets, service.PromotionTargetInput{
			TargetType: target.TargetType,
			TargetID:   target.TargetID,
		})
	}

	promotion, err := h.promotions.Create(c.Request.Context(), service.CreatePromotionInput{
		Name:      req.Name,
		Type:      req.Type,
		Value:     req.Value,
		StartDate: startDate,
		EndDate:   endDate,
		IsActive:  req.IsActive,
		Code:      req.Code,
	}, targets)
	if err != nil {
		if service.KindOf(err) == service.ErrorKindPartialFailure {
			respondError(c, response.CodeInternal, "error.promotion_targets_failed", err)
			return
		}
		respondWithMappedError(c, err, promotionErrorRules, "error.promotion_create_failed")
		return
	}
	requestLog(c).Infow("promotion_created", "promotion_id", promotion.ID, "targets", len(promotion.Targets), "admin", getAdminSubject(c))
	response.Success(c, promotion)
}

// UpdatePromotionStatus 切换活动启用状态
func (h *Handler) UpdatePromotionStatus(c *gin.Context) {
	id, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		return
	}
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	promotion, err := h.promotions.Toggle(c.Request.Context(), id, *req.IsActive)
	if err != nil {
		respondWithMappedError(c, err, promotionErrorRules, "error.promotion_update_failed")
		return
	}
	requestLog(c).Infow("promotion_toggled", "promotion_id", id, "is_active", *req.IsActive, "admin", getAdminSubject(c))
	response.Success(c, promotion)
}

// DeletePromotion 删除活动
func (h *Handler) DeletePromotion(c *gin.Context) {
	id, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		return
	}
	if err := h.promotions.Delete(c.Request.Context(), id); err != nil {
		respondWithMappedError(c, err, promotionErrorRules, "error.promotion_delete_failed")
		return
	}
	requestLog(c).Infow("promotion_deleted", "promotion_id", id, "admin", getAdminSubject(c))
	response.Success(c, nil)
}
