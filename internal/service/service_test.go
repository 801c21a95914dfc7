package service

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/thinkfashz/osart/internal/clock"
	"github.com/thinkfashz/osart/internal/constants"
	"github.com/thinkfashz/osart/internal/models"
	"github.com/thinkfashz/osart/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var testNow = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

type pricingFixture struct {
	db            *gorm.DB
	clock         *clock.MockClock
	productRepo   *repository.GormProductRepository
	categoryRepo  *repository.GormCategoryRepository
	ruleRepo      *repository.GormPricingRuleRepository
	promotionRepo *repository.GormPromotionRepository
	pricing       *PricingService
	ruleAdmin     *PricingRuleAdminService
	promoAdmin    *PromotionAdminService
}

func newPricingFixture(t *testing.T) *pricingFixture {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, models.AutoMigrate(db))

	f := &pricingFixture{
		db:            db,
		clock:         clock.NewMockClock(testNow),
		productRepo:   repository.NewProductRepository(db),
		categoryRepo:  repository.NewCategoryRepository(db),
		ruleRepo:      repository.NewPricingRuleRepository(db),
		promotionRepo: repository.NewPromotionRepository(db),
	}
	f.pricing = NewPricingService(f.productRepo, f.ruleRepo, f.promotionRepo, f.clock)
	f.ruleAdmin = NewPricingRuleAdminService(f.ruleRepo)
	f.promoAdmin = NewPromotionAdminService(f.promotionRepo, f.productRepo, f.categoryRepo, nil, f.clock)
	return f
}

func (f *pricingFixture) category(t *testing.T, slug string) *models.Category {
	t.Helper()
	category := &models.Category{Slug: slug, Name: slug}
	require.NoError(t, f.categoryRepo.Create(category))
	return category
}

func (f *pricingFixture) product(t *testing.T, categoryID uint, slug string, price string) *models.Product {
	t.Helper()
	product := &models.Product{
		CategoryID:  categoryID,
		Slug:        slug,
		Title:       slug,
		PriceAmount: models.MustMoney(price),
		IsActive:    true,
	}
	require.NoError(t, f.productRepo.Create(product))
	return product
}

func (f *pricingFixture) variant(t *testing.T, productID uint, code string, override *string) *models.ProductVariant {
	t.Helper()
	variant := &models.ProductVariant{ProductID: productID, SKUCode: code, IsActive: true}
	if override != nil {
		money := models.MustMoney(*override)
		variant.PriceOverride = &money
	}
	require.NoError(t, f.productRepo.CreateVariant(variant))
	return variant
}

func (f *pricingFixture) bulkRule(t *testing.T, name string, minQuantity int, pct string, priority int) *models.PricingRule {
	t.Helper()
	rule := &models.PricingRule{
		Name:     name,
		RuleType: constants.PricingRuleTypeBulk,
		Config:   datatypes.JSON(fmt.Sprintf(`{"min_quantity":%d,"discount_percentage":%s}`, minQuantity, pct)),
		Priority: priority,
		IsActive: true,
	}
	require.NoError(t, f.ruleRepo.Create(rule))
	return rule
}

func (f *pricingFixture) promotion(t *testing.T, name, promotionType, value string, start, end time.Time, targets ...models.PromotionTarget) *models.Promotion {
	t.Helper()
	promotion := &models.Promotion{
		Name:      name,
		Type:      promotionType,
		Value:     models.MustMoney(value),
		StartDate: start.UTC(),
		EndDate:   end.UTC(),
		IsActive:  true,
	}
	require.NoError(t, f.promotionRepo.Create(promotion))
	for i := range targets {
		targets[i].PromotionID = promotion.ID
		require.NoError(t, f.promotionRepo.CreateTarget(&targets[i]))
	}
	return promotion
}

func productTarget(id uint) models.PromotionTarget {
	return models.PromotionTarget{TargetType: constants.PromotionTargetProduct, TargetID: id}
}

func categoryTarget(id uint) models.PromotionTarget {
	return models.PromotionTarget{TargetType: constants.PromotionTargetCategory, TargetID: id}
}
