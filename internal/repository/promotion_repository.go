package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/thinkfashz/osart/internal/models"

	"gorm.io/gorm"
)

// PromotionRepository 营销活动数据访问接口
type PromotionRepository interface {
	GetByID(id uint) (*models.Promotion, error)
	ListActiveAt(now time.Time) ([]models.Promotion, error)
	List(filter PromotionListFilter) ([]models.Promotion, int64, error)
	Create(promotion *models.Promotion) error
	CreateTarget(target *models.PromotionTarget) error
	UpdateStatus(id uint, isActive bool) (int64, error)
	Delete(id uint) (int64, error)
	DeactivateExpired(now time.Time) (int64, error)
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) *GormPromotionRepository
	WithContext(ctx context.Context) PromotionRepository
}

// GormPromotionRepository GORM 实现
type GormPromotionRepository struct {
	db *gorm.DB
}

// NewPromotionRepository 创建活动仓库
func NewPromotionRepository(db *gorm.DB) *GormPromotionRepository {
	return &GormPromotionRepository{db: db}
}

// WithTx 绑定事务
func (r *GormPromotionRepository) WithTx(tx *gorm.DB) *GormPromotionRepository {
	if tx == nil {
		return r
	}
	return &GormPromotionRepository{db: tx}
}

// WithContext 绑定请求上下文
func (r *GormPromotionRepository) WithContext(ctx context.Context) PromotionRepository {
	if ctx == nil {
		return r
	}
	return &GormPromotionRepository{db: r.db.WithContext(ctx)}
}

// Transaction 在事务中执行
func (r *GormPromotionRepository) Transaction(fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(fn)
}

// GetByID 根据 ID 获取活动（含适用对象）
func (r *GormPromotionRepository) GetByID(id uint) (*models.Promotion, error) {
	var promotion models.Promotion
	if err := r.db.Preload("Targets").First(&promotion, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &promotion, nil
}

// ListActiveAt 获取在指定时间生效的活动，按开始时间、ID 升序
func (r *GormPromotionRepository) ListActiveAt(now time.Time) ([]models.Promotion, error) {
	now = now.UTC()
	var promotions []models.Promotion
	err := r.db.Preload("Targets").
		Where("is_active = ?", true).
		Where("start_date <= ? AND end_date >= ?", now, now).
		Order("start_date ASC, id ASC").
		Find(&promotions).Error
	if err != nil {
		return nil, err
	}
	return promotions, nil
}

// List 获取活动列表（后台）
func (r *GormPromotionRepository) List(filter PromotionListFilter) ([]models.Promotion, int64, error) {
	query := r.db.Model(&models.Promotion{})

	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}
	if code := strings.TrimSpace(filter.Code); code != "" {
		query = query.Where("code = ?", code)
	}
	if keyword := strings.TrimSpace(filter.Keyword); keyword != "" {
		if condition, args := keywordCondition(dbDialectName(r.db), []string{"name", "code"}, keyword); condition != "" {
			query = query.Where(condition, args...)
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = filter.paginate(query)

	var promotions []models.Promotion
	if err := query.Preload("Targets").Order("created_at DESC, id DESC").Find(&promotions).Error; err != nil {
		return nil, 0, err
	}
	return promotions, total, nil
}

// Create 创建活动（不含适用对象）
func (r *GormPromotionRepository) Create(promotion *models.Promotion) error {
	return r.db.Omit("Targets").Create(promotion).Error
}

// CreateTarget 创建活动适用对象
func (r *GormPromotionRepository) CreateTarget(target *models.PromotionTarget) error {
	return r.db.Create(target).Error
}

// UpdateStatus 更新启用状态，返回受影响行数
func (r *GormPromotionRepository) UpdateStatus(id uint, isActive bool) (int64, error) {
	result := r.db.Model(&models.Promotion{}).Where("id = ?", id).Update("is_active", isActive)
	return result.RowsAffected, result.Error
}

// Delete 删除活动及其适用对象，返回活动受影响行数
func (r *GormPromotionRepository) Delete(id uint) (int64, error) {
	var affected int64
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("promotion_id = ?", id).Delete(&models.PromotionTarget{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Promotion{}, id)
		if result.Error != nil {
			return result.Error
		}
		affected = result.RowsAffected
		return nil
	})
	if err != nil {
		return 0, err
	}
	return affected, nil
}

// DeactivateExpired 停用已过结束时间的活动，返回停用数量
func (r *GormPromotionRepository) DeactivateExpired(now time.Time) (int64, error) {
	result := r.db.Model(&models.Promotion{}).
		Where("is_active = ? AND end_date < ?", true, now.UTC()).
		Update("is_active", false)
	return result.RowsAffected, result.Error
}
