package service

import (
	"context"
	"strings"

	"github.com/thinkfashz/osart/internal/clock"
	"github.com/thinkfashz/osart/internal/constants"
	"github.com/thinkfashz/osart/internal/logger"
	"github.com/thinkfashz/osart/internal/models"
	"github.com/thinkfashz/osart/internal/repository"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// PriceQuoteInput 报价输入
type PriceQuoteInput struct {
	ProductID uint
	VariantID *uint
	Quantity  int
}

// AppliedDiscount 单条折扣明细
type AppliedDiscount struct {
	Name   string       `json:"name"`
	Amount models.Money `json:"amount"`
	Type   string       `json:"type"`
}

// PriceQuote 报价结果
type PriceQuote struct {
	OriginalPrice    models.Money      `json:"original_price"`
	FinalPrice       models.Money      `json:"final_price"`
	DiscountsApplied []AppliedDiscount `json:"discounts_applied"`
}

// PriceCalculator 报价能力抽象
type PriceCalculator interface {
	CalculateFinalPrice(ctx context.Context, input PriceQuoteInput) (*PriceQuote, error)
}

// PricingService 动态定价引擎，无状态，可并发使用
type PricingService struct {
	productRepo   repository.ProductRepository
	ruleRepo      repository.PricingRuleRepository
	promotionRepo repository.PromotionRepository
	clock         clock.Clock
}

// NewPricingService 创建定价服务
func NewPricingService(
	productRepo repository.ProductRepository,
	ruleRepo repository.PricingRuleRepository,
	promotionRepo repository.PromotionRepository,
	clk clock.Clock,
) *PricingService {
	if clk == nil {
		clk = clock.NewRealClock()
	}
	return &PricingService{
		productRepo:   productRepo,
		ruleRepo:      ruleRepo,
		promotionRepo: promotionRepo,
		clock:         clk,
	}
}

const calculateFailedMessage = "failed to calculate price"

// CalculateFinalPrice 计算最终价格：基础价 → 批量规则（优先级降序）→ 命中的活动，结果不低于 0
func (s *PricingService) CalculateFinalPrice(ctx context.Context, input PriceQuoteInput) (*PriceQuote, error) {
	if input.ProductID == 0 {
		return nil, notFoundError("product not found", ErrProductNotFound)
	}
	quantity := input.Quantity
	if quantity <= 0 {
		quantity = 1
	}

	product, err := s.productRepo.WithContext(ctx).GetWithVariants(input.ProductID)
	if err != nil {
		return nil, persistenceError(calculateFailedMessage, err)
	}
	if product == nil {
		return nil, notFoundError("product not found", ErrProductNotFound)
	}

	basePrice := product.PriceAmount
	if input.VariantID != nil {
		variant := product.FindVariant(*input.VariantID)
		if variant == nil {
			return nil, notFoundError("variant not found", ErrVariantNotFound)
		}
		basePrice = variant.ResolvePrice(product.PriceAmount)
	}

	finalPrice := basePrice.Decimal
	discounts := make([]AppliedDiscount, 0)

	rules, err := s.ruleRepo.WithContext(ctx).ListActive()
	if err != nil {
		return nil, persistenceError(calculateFailedMessage, err)
	}
	for i := range rules {
		rule := &rules[i]
		if rule.RuleType != constants.PricingRuleTypeBulk {
			logger.Debugw("pricing_rule_skipped", "rule_id", rule.ID, "rule_type", rule.RuleType)
			continue
		}
		cfg, err := rule.BulkConfig()
		if err != nil {
			logger.Warnw("pricing_rule_config_invalid", "rule_id", rule.ID, "error", err)
			continue
		}
		if quantity < cfg.MinQuantity {
			continue
		}
		discount := finalPrice.Mul(cfg.DiscountPercentage).Div(hundred).Round(2)
		finalPrice = finalPrice.Sub(discount)
		discounts = append(discounts, AppliedDiscount{
			Name:   rule.Name,
			Amount: models.NewMoneyFromDecimal(discount),
			Type:   constants.DiscountSourceRule,
		})
	}

	now := s.clock.Now().UTC()
	promotions, err := s.promotionRepo.WithContext(ctx).ListActiveAt(now)
	if err != nil {
		return nil, persistenceError(calculateFailedMessage, err)
	}
	for i := range promotions {
		promotion := &promotions[i]
		if !promotion.IsActive || !promotion.InWindow(now) {
			continue
		}
		if !promotionApplies(promotion, product) {
			continue
		}
		var discount decimal.Decimal
		switch strings.ToLower(strings.TrimSpace(promotion.Type)) {
		case constants.PromotionTypePercentage:
			discount = finalPrice.Mul(promotion.Value.Decimal).Div(hundred).Round(2)
		case constants.PromotionTypeFixedAmount:
			discount = promotion.Value.Decimal
		default:
			logger.Warnw("promotion_type_unknown", "promotion_id", promotion.ID, "type", promotion.Type)
			continue
		}
		finalPrice = finalPrice.Sub(discount)
		discounts = append(discounts, AppliedDiscount{
			Name:   promotion.Name,
			Amount: models.NewMoneyFromDecimal(discount),
			Type:   constants.DiscountSourcePromotion,
		})
	}

	return &PriceQuote{
		OriginalPrice:    basePrice,
		FinalPrice:       models.NewMoneyFromDecimal(finalPrice).FloorZero(),
		DiscountsApplied: discounts,
	}, nil
}

// promotionApplies 活动是否命中商品（直接指定商品或商品所属分类）
func promotionApplies(promotion *models.Promotion, product *models.Product) bool {
	for _, target := range promotion.Targets {
		switch target.TargetType {
		case constants.PromotionTargetProduct:
			if target.TargetID == product.ID {
				return true
			}
		case constants.PromotionTargetCategory:
			if target.TargetID == product.CategoryID {
				return true
			}
		}
	}
	return false
}
