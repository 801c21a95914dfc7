package models

import (
	"time"

	"gorm.io/gorm"
)

// ProductVariant 商品规格表（价格覆盖 + 库存）
type ProductVariant struct {
	ID            uint           `gorm:"primarykey" json:"id"`                                                                           // 主键
	ProductID     uint           `gorm:"not null;index;uniqueIndex:idx_product_variant_code" json:"product_id"`                          // 商品ID
	SKUCode       string         `gorm:"column:sku_code;type:varchar(64);not null;uniqueIndex:idx_product_variant_code" json:"sku_code"` // 规格编码（同商品内唯一）
	PriceOverride *Money         `gorm:"type:decimal(20,2)" json:"price_override"`                                                       // 覆盖价格（为空时使用商品价格）
	Stock         int            `gorm:"not null;default:0" json:"stock"`                                                                // 库存
	IsActive      bool           `gorm:"default:true;index" json:"is_active"`                                                            // 是否启用
	CreatedAt     time.Time      `gorm:"index" json:"created_at"`                                                                        // 创建时间
	UpdatedAt     time.Time      `json:"updated_at"`                                                                                     // 更新时间
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`                                                                                 // 软删除时间
}

// TableName 指定表名
func (ProductVariant) TableName() string {
	return "product_variants"
}

// ResolvePrice 解析规格基础价：有覆盖价取覆盖价，否则取商品价格
func (v *ProductVariant) ResolvePrice(productPrice Money) Money {
	if v == nil || v.PriceOverride == nil {
		return productPrice
	}
	return *v.PriceOverride
}
