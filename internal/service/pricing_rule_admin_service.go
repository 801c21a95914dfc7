package service

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/thinkfashz/osart/internal/constants"
	"github.com/thinkfashz/osart/internal/models"
	"github.com/thinkfashz/osart/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// PricingRuleAdminService 定价规则管理服务
type PricingRuleAdminService struct {
	repo repository.PricingRuleRepository
}

// NewPricingRuleAdminService 创建定价规则管理服务
func NewPricingRuleAdminService(repo repository.PricingRuleRepository) *PricingRuleAdminService {
	return &PricingRuleAdminService{repo: repo}
}

// CreatePricingRuleInput 创建定价规则输入
type CreatePricingRuleInput struct {
	Name     string
	RuleType string
	Config   json.RawMessage
	Priority int
	IsActive *bool
}

// List 获取规则列表（优先级降序）
func (s *PricingRuleAdminService) List(ctx context.Context, filter repository.PricingRuleListFilter) ([]models.PricingRule, error) {
	rules, err := s.repo.WithContext(ctx).List(filter)
	if err != nil {
		return nil, persistenceError("failed to load pricing rules", err)
	}
	return rules, nil
}

// Create 创建规则
func (s *PricingRuleAdminService) Create(ctx context.Context, input CreatePricingRuleInput) (*models.PricingRule, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, invalidError("pricing rule name is required", ErrPricingRuleInvalid)
	}
	ruleType := strings.ToLower(strings.TrimSpace(input.RuleType))
	switch ruleType {
	case constants.PricingRuleTypeBulk, constants.PricingRuleTypeMarkup, constants.PricingRuleTypeDiscount:
	default:
		return nil, invalidError("pricing rule type is invalid", ErrPricingRuleInvalid)
	}
	if input.Priority < 0 {
		return nil, invalidError("pricing rule priority must not be negative", ErrPricingRuleInvalid)
	}

	config := datatypes.JSON(input.Config)
	if len(config) == 0 {
		config = datatypes.JSON("{}")
	}
	if !json.Valid(config) {
		return nil, invalidError("pricing rule config must be valid json", ErrPricingRuleInvalid)
	}

	rule := &models.PricingRule{
		Name:     name,
		RuleType: ruleType,
		Config:   config,
		Priority: input.Priority,
		IsActive: input.IsActive == nil || *input.IsActive,
	}
	if ruleType == constants.PricingRuleTypeBulk {
		cfg, err := rule.BulkConfig()
		if err != nil {
			return nil, invalidError("bulk rule config is invalid", ErrPricingRuleInvalid)
		}
		if err := validateBulkConfig(cfg); err != nil {
			return nil, err
		}
	}

	if err := s.repo.WithContext(ctx).Create(rule); err != nil {
		return nil, persistenceError("failed to create pricing rule", err)
	}
	return rule, nil
}

func validateBulkConfig(cfg models.BulkRuleConfig) error {
	if cfg.MinQuantity < 1 {
		return invalidError("bulk rule min_quantity must be at least 1", ErrPricingRuleInvalid)
	}
	if cfg.DiscountPercentage.LessThanOrEqual(decimal.Zero) || cfg.DiscountPercentage.GreaterThan(hundred) {
		return invalidError("bulk rule discount_percentage must be within (0, 100]", ErrPricingRuleInvalid)
	}
	return nil
}

// Toggle 切换启用状态
func (s *PricingRuleAdminService) Toggle(ctx context.Context, id uint, isActive bool) (*models.PricingRule, error) {
	if id == 0 {
		return nil, invalidError("pricing rule id is required", ErrPricingRuleInvalid)
	}
	repo := s.repo.WithContext(ctx)
	affected, err := repo.UpdateStatus(id, isActive)
	if err != nil {
		return nil, persistenceError("failed to update pricing rule", err)
	}
	if affected == 0 {
		return nil, notFoundError("pricing rule not found", ErrPricingRuleNotFound)
	}
	rule, err := repo.GetByID(id)
	if err != nil {
		return nil, persistenceError("failed to update pricing rule", err)
	}
	if rule == nil {
		return nil, notFoundError("pricing rule not found", ErrPricingRuleNotFound)
	}
	return rule, nil
}

// Delete 删除规则
func (s *PricingRuleAdminService) Delete(ctx context.Context, id uint) error {
	if id == 0 {
		return invalidError("pricing rule id is required", ErrPricingRuleInvalid)
	}
	affected, err := s.repo.WithContext(ctx).Delete(id)
	if err != nil {
		return persistenceError("failed to delete pricing rule", err)
	}
	if affected == 0 {
		return notFoundError("pricing rule not found", ErrPricingRuleNotFound)
	}
	return nil
}
