package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/thinkfashz/osart/internal/models"

	"gorm.io/gorm"
)

// CategoryRepository 分类查询，活动目标校验和种子数据使用
type CategoryRepository interface {
	GetByID(id uint) (*models.Category, error)
	GetBySlug(slug string) (*models.Category, error)
	Create(category *models.Category) error
	WithContext(ctx context.Context) CategoryRepository
}

// GormCategoryRepository GORM 实现
type GormCategoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository 创建分类仓库
func NewCategoryRepository(db *gorm.DB) *GormCategoryRepository {
	return &GormCategoryRepository{db: db}
}

// WithContext 绑定请求上下文
func (r *GormCategoryRepository) WithContext(ctx context.Context) CategoryRepository {
	if ctx == nil {
		return r
	}
	return &GormCategoryRepository{db: r.db.WithContext(ctx)}
}

// GetByID 不存在时返回 nil, nil
func (r *GormCategoryRepository) GetByID(id uint) (*models.Category, error) {
	if id == 0 {
		return nil, nil
	}
	return r.first(r.db.Where("id = ?", id))
}

// GetBySlug 按唯一标识查询，不存在时返回 nil, nil
func (r *GormCategoryRepository) GetBySlug(slug string) (*models.Category, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, nil
	}
	return r.first(r.db.Where("slug = ?", slug))
}

// Create 创建分类
func (r *GormCategoryRepository) Create(category *models.Category) error {
	return r.db.Create(category).Error
}

func (r *GormCategoryRepository) first(query *gorm.DB) (*models.Category, error) {
	var category models.Category
	err := query.Take(&category).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &category, nil
}
