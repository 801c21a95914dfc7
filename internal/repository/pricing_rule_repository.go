package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/thinkfashz/osart/internal/models"

	"gorm.io/gorm"
)

// PricingRuleRepository 定价规则数据访问接口
type PricingRuleRepository interface {
	ListActive() ([]models.PricingRule, error)
	List(filter PricingRuleListFilter) ([]models.PricingRule, error)
	GetByID(id uint) (*models.PricingRule, error)
	Create(rule *models.PricingRule) error
	UpdateStatus(id uint, isActive bool) (int64, error)
	Delete(id uint) (int64, error)
	WithContext(ctx context.Context) PricingRuleRepository
}

// GormPricingRuleRepository GORM 实现
type GormPricingRuleRepository struct {
	db *gorm.DB
}

// NewPricingRuleRepository 创建定价规则仓库
func NewPricingRuleRepository(db *gorm.DB) *GormPricingRuleRepository {
	return &GormPricingRuleRepository{db: db}
}

// WithTx 绑定事务
func (r *GormPricingRuleRepository) WithTx(tx *gorm.DB) *GormPricingRuleRepository {
	if tx == nil {
		return r
	}
	return &GormPricingRuleRepository{db: tx}
}

// WithContext 绑定请求上下文
func (r *GormPricingRuleRepository) WithContext(ctx context.Context) PricingRuleRepository {
	if ctx == nil {
		return r
	}
	return &GormPricingRuleRepository{db: r.db.WithContext(ctx)}
}

// ListActive 获取启用的规则，优先级高者在前，同优先级按 ID 升序
func (r *GormPricingRuleRepository) ListActive() ([]models.PricingRule, error) {
	var rules []models.PricingRule
	if err := r.db.Where("is_active = ?", true).
		Order("priority DESC, id ASC").
		Find(&rules).Error; err != nil {
		return nil, err
	}
	return rules, nil
}

// List 获取规则列表（后台）
func (r *GormPricingRuleRepository) List(filter PricingRuleListFilter) ([]models.PricingRule, error) {
	query := r.db.Model(&models.PricingRule{})
	if ruleType := strings.TrimSpace(filter.RuleType); ruleType != "" {
		query = query.Where("rule_type = ?", ruleType)
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}
	var rules []models.PricingRule
	if err := query.Order("priority DESC, id ASC").Find(&rules).Error; err != nil {
		return nil, err
	}
	return rules, nil
}

// GetByID 根据 ID 获取规则
func (r *GormPricingRuleRepository) GetByID(id uint) (*models.PricingRule, error) {
	var rule models.PricingRule
	if err := r.db.First(&rule, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rule, nil
}

// Create 创建规则。is_active 列带 default:true，零值会被 GORM 省略，
// 停用状态与插入在同一事务内写入。
func (r *GormPricingRuleRepository) Create(rule *models.PricingRule) error {
	active := rule.IsActive
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(rule).Error; err != nil {
			return err
		}
		if active {
			return nil
		}
		if err := tx.Model(&models.PricingRule{}).Where("id = ?", rule.ID).Update("is_active", false).Error; err != nil {
			return err
		}
		rule.IsActive = false
		return nil
	})
}

// UpdateStatus 更新启用状态，返回受影响行数
func (r *GormPricingRuleRepository) UpdateStatus(id uint, isActive bool) (int64, error) {
	result := r.db.Model(&models.PricingRule{}).Where("id = ?", id).Update("is_active", isActive)
	return result.RowsAffected, result.Error
}

// Delete 删除规则，返回受影响行数
func (r *GormPricingRuleRepository) Delete(id uint) (int64, error) {
	result := r.db.Delete(&models.PricingRule{}, id)
	return result.RowsAffected, result.Error
}
