package repository

import "gorm.io/gorm"

// PricingRuleListFilter 查询定价规则列表的过滤条件
type PricingRuleListFilter struct {
	RuleType string
	IsActive *bool
}

// PromotionListFilter 查询活动列表的过滤条件，PageSize<=0 表示不分页
type PromotionListFilter struct {
	Page     int
	PageSize int
	Keyword  string
	Code     string
	IsActive *bool
}

func (f PromotionListFilter) paginate(query *gorm.DB) *gorm.DB {
	if query == nil || f.PageSize <= 0 {
		return query
	}
	page := max(f.Page, 1)
	return query.Limit(f.PageSize).Offset((page - 1) * f.PageSize)
}
