package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// PricingRule 定价规则（引擎级）
type PricingRule struct {
	ID        uint           `gorm:"primarykey" json:"id"`                             // 主键
	Name      string         `gorm:"type:varchar(120);not null" json:"name"`           // 名称
	RuleType  string         `gorm:"type:varchar(20);not null;index" json:"rule_type"` // 类型（markup/discount/bulk）
	Config    datatypes.JSON `gorm:"type:json" json:"config"`                          // 规则配置
	Priority  int            `gorm:"not null;default:0;index" json:"priority"`         // 优先级（越大越先执行）
	IsActive  bool           `gorm:"not null;default:true;index" json:"is_active"`     // 是否启用
	CreatedAt time.Time      `gorm:"index" json:"created_at"`                          // 创建时间
	UpdatedAt time.Time      `json:"updated_at"`                                       // 更新时间
}

// TableName 指定表名
func (PricingRule) TableName() string {
	return "pricing_rules"
}

// BulkRuleConfig 阶梯批量折扣配置
type BulkRuleConfig struct {
	MinQuantity        int             `json:"min_quantity"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage"`
}

// BulkConfig 解析批量折扣配置
func (r *PricingRule) BulkConfig() (BulkRuleConfig, error) {
	var cfg BulkRuleConfig
	if r == nil || len(r.Config) == 0 {
		return cfg, nil
	}
	if err := json.Unmarshal(r.Config, &cfg); err != nil {
		return BulkRuleConfig{}, err
	}
	return cfg, nil
}
