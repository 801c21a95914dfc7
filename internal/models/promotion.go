package models

import (
	"time"

	"gorm.io/gorm"
)

// Promotion 营销活动（限时折扣）
type Promotion struct {
	ID        uint           `gorm:"primarykey" json:"id"`                         // 主键
	Name      string         `gorm:"type:varchar(120);not null" json:"name"`       // 名称
	Type      string         `gorm:"type:varchar(20);not null" json:"type"`        // 类型（percentage/fixed_amount）
	Value     Money          `gorm:"type:decimal(20,2);not null" json:"value"`     // 数值（百分比/固定金额）
	StartDate time.Time      `gorm:"index;not null" json:"start_date"`             // 开始时间（含）
	EndDate   time.Time      `gorm:"index;not null" json:"end_date"`               // 结束时间（含）
	IsActive  bool           `gorm:"not null;default:true;index" json:"is_active"` // 是否启用
	Code      *string        `gorm:"type:varchar(64);index" json:"code"`           // 活动码（可选）
	CreatedAt time.Time      `gorm:"index" json:"created_at"`                      // 创建时间
	UpdatedAt time.Time      `json:"updated_at"`                                   // 更新时间
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`                               // 软删除时间

	Targets []PromotionTarget `gorm:"foreignKey:PromotionID" json:"targets"` // 适用对象
}

// TableName 指定表名
func (Promotion) TableName() string {
	return "promotions"
}

// InWindow 判断时间是否落在活动区间内（首尾均包含）
func (p *Promotion) InWindow(now time.Time) bool {
	if p == nil {
		return false
	}
	return !now.Before(p.StartDate) && !now.After(p.EndDate)
}

// PromotionTarget 活动适用对象（商品或分类）
type PromotionTarget struct {
	ID          uint   `gorm:"primarykey" json:"id"`                                                          // 主键
	PromotionID uint   `gorm:"not null;index;uniqueIndex:idx_promotion_target" json:"promotion_id"`           // 活动ID
	TargetType  string `gorm:"type:varchar(20);not null;uniqueIndex:idx_promotion_target" json:"target_type"` // 对象类型（product/category）
	TargetID    uint   `gorm:"not null;index;uniqueIndex:idx_promotion_target" json:"target_id"`              // 对象ID
}

// TableName 指定表名
func (PromotionTarget) TableName() string {
	return "promotion_targets"
}
