package constants

// 定价规则类型常量
const (
	PricingRuleTypeMarkup   = "markup"
	PricingRuleTypeDiscount = "discount"
	PricingRuleTypeBulk     = "bulk"
)

// 活动类型常量
const (
	PromotionTypePercentage  = "percentage"
	PromotionTypeFixedAmount = "fixed_amount"
)

// 活动适用对象类型常量
const (
	PromotionTargetProduct  = "product"
	PromotionTargetCategory = "category"
)

// 折扣明细来源常量
const (
	DiscountSourceRule      = "rule"
	DiscountSourcePromotion = "promotion"
)

// 队列名称常量
const (
	QueueDefault  = "default"
	QueueCritical = "critical"
)

// 异步任务类型常量
const (
	TaskPromotionExpire = "promotion:expire"
)

// 服务运行模式
const (
	ServerModeDebug   = "debug"
	ServerModeRelease = "release"
)

// gin 上下文键
const (
	ContextKeyRequestID    = "request_id"
	ContextKeyAdminSubject = "admin_subject"
)
