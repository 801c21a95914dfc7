package repository

import (
	"context"
	"errors"

	"github.com/thinkfashz/osart/internal/models"

	"gorm.io/gorm"
)

// ProductRepository 商品数据访问接口（定价只读）
type ProductRepository interface {
	GetWithVariants(id uint) (*models.Product, error)
	Exists(id uint) (bool, error)
	Create(product *models.Product) error
	CreateVariant(variant *models.ProductVariant) error
	WithContext(ctx context.Context) ProductRepository
}

// GormProductRepository GORM 实现
type GormProductRepository struct {
	db *gorm.DB
}

// NewProductRepository 创建商品仓库
func NewProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// WithContext 绑定请求上下文
func (r *GormProductRepository) WithContext(ctx context.Context) ProductRepository {
	if ctx == nil {
		return r
	}
	return &GormProductRepository{db: r.db.WithContext(ctx)}
}

// GetWithVariants 获取商品及其全部规格
func (r *GormProductRepository) GetWithVariants(id uint) (*models.Product, error) {
	if id == 0 {
		return nil, nil
	}
	var product models.Product
	err := r.db.Preload("Variants", func(db *gorm.DB) *gorm.DB {
		return db.Order("id ASC")
	}).First(&product, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

// Exists 判断商品是否存在
func (r *GormProductRepository) Exists(id uint) (bool, error) {
	var count int64
	if err := r.db.Model(&models.Product{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create 创建商品
func (r *GormProductRepository) Create(product *models.Product) error {
	return r.db.Create(product).Error
}

// CreateVariant 创建规格
func (r *GormProductRepository) CreateVariant(variant *models.ProductVariant) error {
	return r.db.Create(variant).Error
}
