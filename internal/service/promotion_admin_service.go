package service

import (
	"context"
	"strings"
	"time"

	"github.com/thinkfashz/osart/internal/clock"
	"github.com/thinkfashz/osart/internal/constants"
	"github.com/thinkfashz/osart/internal/logger"
	"github.com/thinkfashz/osart/internal/models"
	"github.com/thinkfashz/osart/internal/queue"
	"github.com/thinkfashz/osart/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PromotionAdminService 营销活动管理服务
type PromotionAdminService struct {
	repo         repository.PromotionRepository
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	queueClient  *queue.Client
	clock        clock.Clock
}

// NewPromotionAdminService 创建营销活动管理服务
func NewPromotionAdminService(
	repo repository.PromotionRepository,
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	queueClient *queue.Client,
	clk clock.Clock,
) *PromotionAdminService {
	if clk == nil {
		clk = clock.NewRealClock()
	}
	return &PromotionAdminService{
		repo:         repo,
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		queueClient:  queueClient,
		clock:        clk,
	}
}

// CreatePromotionInput 创建活动输入
type CreatePromotionInput struct {
	Name      string
	Type      string
	Value     models.Money
	StartDate time.Time
	EndDate   time.Time
	IsActive  *bool
	Code      string
}

// PromotionTargetInput 活动适用对象输入
type PromotionTargetInput struct {
	TargetType string
	TargetID   uint
}

// List 获取活动列表（含适用对象）
func (s *PromotionAdminService) List(ctx context.Context, filter repository.PromotionListFilter) ([]models.Promotion, int64, error) {
	promotions, total, err := s.repo.WithContext(ctx).List(filter)
	if err != nil {
		return nil, 0, persistenceError("failed to load promotions", err)
	}
	return promotions, total, nil
}

// ListActive 获取当前生效的活动
func (s *PromotionAdminService) ListActive(ctx context.Context) ([]models.Promotion, error) {
	promotions, err := s.repo.WithContext(ctx).ListActiveAt(s.clock.Now())
	if err != nil {
		return nil, persistenceError("failed to load active promotions", err)
	}
	return promotions, nil
}

// Create 创建活动及其适用对象，全部写入在同一事务内完成
func (s *PromotionAdminService) Create(ctx context.Context, input CreatePromotionInput, targets []PromotionTargetInput) (*models.Promotion, error) {
	promotion, err := s.buildPromotion(input)
	if err != nil {
		return nil, err
	}
	normalizedTargets, err := s.validateTargets(ctx, targets)
	if err != nil {
		return nil, err
	}

	var stage string
	err = s.repo.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		stage = "promotion"
		if err := txRepo.Create(promotion); err != nil {
			return err
		}
		stage = "targets"
		for i := range normalizedTargets {
			normalizedTargets[i].PromotionID = promotion.ID
			if err := txRepo.CreateTarget(&normalizedTargets[i]); err != nil {
				return err
			}
		}
		if input.IsActive != nil && !*input.IsActive {
			stage = "status"
			if _, err := txRepo.UpdateStatus(promotion.ID, false); err != nil {
				return err
			}
			promotion.IsActive = false
		}
		return nil
	})
	if err != nil {
		if stage == "promotion" {
			return nil, persistenceError("failed to create promotion", err)
		}
		return nil, newPricingError(ErrorKindPartialFailure, "failed to create promotion targets", err)
	}
	promotion.Targets = normalizedTargets

	s.scheduleExpiry(promotion)
	return promotion, nil
}

func (s *PromotionAdminService) buildPromotion(input CreatePromotionInput) (*models.Promotion, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, invalidError("promotion name is required", ErrPromotionInvalid)
	}
	promotionType := strings.ToLower(strings.TrimSpace(input.Type))
	if promotionType != constants.PromotionTypePercentage && promotionType != constants.PromotionTypeFixedAmount {
		return nil, invalidError("promotion type is invalid", ErrPromotionInvalid)
	}
	if input.Value.Decimal.LessThanOrEqual(decimal.Zero) {
		return nil, invalidError("promotion value must be positive", ErrPromotionInvalid)
	}
	if promotionType == constants.PromotionTypePercentage && input.Value.Decimal.GreaterThan(hundred) {
		return nil, invalidError("percentage promotion value must not exceed 100", ErrPromotionInvalid)
	}
	if input.StartDate.IsZero() || input.EndDate.IsZero() {
		return nil, invalidError("promotion start_date and end_date are required", ErrPromotionInvalid)
	}
	if input.EndDate.Before(input.StartDate) {
		return nil, invalidError("promotion end_date must not be before start_date", ErrPromotionInvalid)
	}

	promotion := &models.Promotion{
		Name:      name,
		Type:      promotionType,
		Value:     models.NewMoneyFromDecimal(input.Value.Decimal),
		StartDate: input.StartDate.UTC(),
		EndDate:   input.EndDate.UTC(),
		IsActive:  true,
	}
	if code := strings.TrimSpace(input.Code); code != "" {
		promotion.Code = &code
	}
	return promotion, nil
}

func (s *PromotionAdminService) validateTargets(ctx context.Context, targets []PromotionTargetInput) ([]models.PromotionTarget, error) {
	result := make([]models.PromotionTarget, 0, len(targets))
	seen := make(map[models.PromotionTarget]struct{}, len(targets))
	for _, target := range targets {
		targetType := strings.ToLower(strings.TrimSpace(target.TargetType))
		if target.TargetID == 0 {
			return nil, invalidError("promotion target id is required", ErrPromotionTargetInvalid)
		}
		key := models.PromotionTarget{TargetType: targetType, TargetID: target.TargetID}
		if _, dup := seen[key]; dup {
			return nil, invalidError("promotion target is duplicated", ErrPromotionTargetInvalid)
		}
		seen[key] = struct{}{}
		switch targetType {
		case constants.PromotionTargetProduct:
			if s.productRepo != nil {
				exists, err := s.productRepo.WithContext(ctx).Exists(target.TargetID)
				if err != nil {
					return nil, persistenceError("failed to create promotion", err)
				}
				if !exists {
					return nil, invalidError("promotion target product does not exist", ErrPromotionTargetInvalid)
				}
			}
		case constants.PromotionTargetCategory:
			if s.categoryRepo != nil {
				category, err := s.categoryRepo.WithContext(ctx).GetByID(target.TargetID)
				if err != nil {
					return nil, persistenceError("failed to create promotion", err)
				}
				if category == nil {
					return nil, invalidError("promotion target category does not exist", ErrPromotionTargetInvalid)
				}
			}
		default:
			return nil, invalidError("promotion target type is invalid", ErrPromotionTargetInvalid)
		}
		result = append(result, key)
	}
	return result, nil
}

// scheduleExpiry 推送到期停用任务，失败仅记录日志
func (s *PromotionAdminService) scheduleExpiry(promotion *models.Promotion) {
	if !s.queueClient.Enabled() || promotion == nil || !promotion.IsActive {
		return
	}
	delay := promotion.EndDate.Sub(s.clock.Now())
	if err := s.queueClient.EnqueuePromotionExpire(queue.PromotionExpirePayload{
		PromotionID: promotion.ID,
	}, delay); err != nil {
		logger.Warnw("promotion_expire_enqueue_failed", "promotion_id", promotion.ID, "error", err)
	}
}

// Toggle 切换活动启用状态
func (s *PromotionAdminService) Toggle(ctx context.Context, id uint, isActive bool) (*models.Promotion, error) {
	if id == 0 {
		return nil, invalidError("promotion id is required", ErrPromotionInvalid)
	}
	repo := s.repo.WithContext(ctx)
	affected, err := repo.UpdateStatus(id, isActive)
	if err != nil {
		return nil, persistenceError("failed to update promotion", err)
	}
	if affected == 0 {
		return nil, notFoundError("promotion not found", ErrPromotionNotFound)
	}
	promotion, err := repo.GetByID(id)
	if err != nil {
		return nil, persistenceError("failed to update promotion", err)
	}
	if promotion == nil {
		return nil, notFoundError("promotion not found", ErrPromotionNotFound)
	}
	if promotion.IsActive {
		s.scheduleExpiry(promotion)
	}
	return promotion, nil
}

// Delete 删除活动及其适用对象
func (s *PromotionAdminService) Delete(ctx context.Context, id uint) error {
	if id == 0 {
		return invalidError("promotion id is required", ErrPromotionInvalid)
	}
	affected, err := s.repo.WithContext(ctx).Delete(id)
	if err != nil {
		return persistenceError("failed to delete promotion", err)
	}
	if affected == 0 {
		return notFoundError("promotion not found", ErrPromotionNotFound)
	}
	return nil
}

// ExpirePromotion 停用已到期的活动，返回是否发生停用
func (s *PromotionAdminService) ExpirePromotion(ctx context.Context, id uint) (bool, error) {
	repo := s.repo.WithContext(ctx)
	promotion, err := repo.GetByID(id)
	if err != nil {
		return false, persistenceError("failed to expire promotion", err)
	}
	if promotion == nil || !promotion.IsActive {
		return false, nil
	}
	if !s.clock.Now().After(promotion.EndDate) {
		return false, nil
	}
	if _, err := repo.UpdateStatus(id, false); err != nil {
		return false, persistenceError("failed to expire promotion", err)
	}
	return true, nil
}

// DeactivateExpired 批量停用已过期活动
func (s *PromotionAdminService) DeactivateExpired(ctx context.Context) (int64, error) {
	affected, err := s.repo.WithContext(ctx).DeactivateExpired(s.clock.Now())
	if err != nil {
		return 0, persistenceError("failed to deactivate expired promotions", err)
	}
	return affected, nil
}
