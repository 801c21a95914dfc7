package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/thinkfashz/osart/internal/config"
	"github.com/thinkfashz/osart/internal/constants"
	"github.com/thinkfashz/osart/internal/logger"
	"github.com/thinkfashz/osart/internal/models"
	"github.com/thinkfashz/osart/internal/provider"
	"github.com/thinkfashz/osart/internal/repository"
	"github.com/thinkfashz/osart/internal/service"

	"gorm.io/gorm"
)

type seedVariant struct {
	SKUCode       string
	PriceOverride string
	Stock         int
}

type seedProduct struct {
	CategorySlug string
	Slug         string
	Title        string
	Price        string
	Variants     []seedVariant
}

func main() {
	if _, err := config.LoadEnvFiles(); err != nil {
		fmt.Fprintf(os.Stderr, "加载 .env 失败: %v\n", err)
	}

	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	defer logger.Sync()
	stdLog := logger.StdLogger()
	db, err := models.OpenDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}, false)
	if err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}
	defer func() { _ = models.CloseDB(db) }()

	// 自动迁移
	if err := models.AutoMigrate(db); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	// 种子数据不推送到期任务
	cfg.Queue.Enabled = false
	container := provider.NewContainer(cfg, db)
	defer container.Close()
	ctx := context.Background()

	categoryIDs := seedCategories(ctx, repository.NewCategoryRepository(db))
	productIDs := seedProducts(db, categoryIDs)
	seedPricingRules(ctx, db, container.PricingRuleAdminService)
	seedPromotions(ctx, db, container.PromotionAdminService, categoryIDs, productIDs)

	stdLog.Printf("Seed completed: %d categories, %d products", len(categoryIDs), len(productIDs))
}

func seedCategories(ctx context.Context, repo repository.CategoryRepository) map[string]uint {
	categories := []models.Category{
		{Slug: "lighting", Name: "Lighting", SortOrder: 30},
		{Slug: "furniture", Name: "Furniture", SortOrder: 20},
		{Slug: "textiles", Name: "Textiles", SortOrder: 10},
	}

	repo = repo.WithContext(ctx)
	ids := make(map[string]uint, len(categories))
	for _, cat := range categories {
		existing, err := repo.GetBySlug(cat.Slug)
		if err != nil {
			logger.Warnw("seed_category_lookup_failed", "slug", cat.Slug, "error", err)
			continue
		}
		if existing != nil {
			logger.Infow("seed_category_exists", "slug", cat.Slug)
			ids[cat.Slug] = existing.ID
			continue
		}
		item := cat
		if err := repo.Create(&item); err != nil {
			logger.Warnw("seed_category_create_failed", "slug", cat.Slug, "error", err)
			continue
		}
		logger.Infow("seed_category_created", "slug", cat.Slug, "id", item.ID)
		ids[cat.Slug] = item.ID
	}
	return ids
}

func seedProducts(db *gorm.DB, categoryIDs map[string]uint) map[string]uint {
	products := []seedProduct{
		{
			CategorySlug: "lighting",
			Slug:         "arc-floor-lamp",
			Title:        "Arc Floor Lamp",
			Price:        "100.00",
			Variants: []seedVariant{
				{SKUCode: "ARC-BLK", Stock: 40},
				{SKUCode: "ARC-BRS", PriceOverride: "120.00", Stock: 12},
			},
		},
		{
			CategorySlug: "lighting",
			Slug:         "desk-lamp",
			Title:        "Desk Lamp",
			Price:        "35.50",
		},
		{
			CategorySlug: "furniture",
			Slug:         "oak-side-table",
			Title:        "Oak Side Table",
			Price:        "249.00",
			Variants: []seedVariant{
				{SKUCode: "OAK-S", PriceOverride: "199.00", Stock: 8},
				{SKUCode: "OAK-L", Stock: 5},
			},
		},
		{
			CategorySlug: "textiles",
			Slug:         "linen-throw",
			Title:        "Linen Throw",
			Price:        "59.90",
		},
	}

	ids := make(map[string]uint, len(products))
	for _, item := range products {
		categoryID, ok := categoryIDs[item.CategorySlug]
		if !ok {
			logger.Warnw("seed_product_category_missing", "slug", item.Slug, "category", item.CategorySlug)
			continue
		}
		var existing models.Product
		err := db.Where("slug = ?", item.Slug).First(&existing).Error
		if err == nil {
			logger.Infow("seed_product_exists", "slug", item.Slug)
			ids[item.Slug] = existing.ID
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warnw("seed_product_lookup_failed", "slug", item.Slug, "error", err)
			continue
		}

		product := models.Product{
			CategoryID:  categoryID,
			Slug:        item.Slug,
			Title:       item.Title,
			PriceAmount: models.MustMoney(item.Price),
			IsActive:    true,
		}
		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Omit("Variants").Create(&product).Error; err != nil {
				return err
			}
			for _, v := range item.Variants {
				variant := models.ProductVariant{
					ProductID: product.ID,
					SKUCode:   v.SKUCode,
					Stock:     v.Stock,
					IsActive:  true,
				}
				if v.PriceOverride != "" {
					override := models.MustMoney(v.PriceOverride)
					variant.PriceOverride = &override
				}
				if err := tx.Create(&variant).Error; err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			logger.Warnw("seed_product_create_failed", "slug", item.Slug, "error", err)
			continue
		}
		logger.Infow("seed_product_created", "slug", item.Slug, "id", product.ID, "variants", len(item.Variants))
		ids[item.Slug] = product.ID
	}
	return ids
}

func seedPricingRules(ctx context.Context, db *gorm.DB, svc *service.PricingRuleAdminService) {
	rules := []service.CreatePricingRuleInput{
		{
			Name:     "Bulk 10+ save 5%",
			RuleType: constants.PricingRuleTypeBulk,
			Config:   []byte(`{"min_quantity":10,"discount_percentage":5}`),
			Priority: 20,
		},
		{
			Name:     "Bulk 5+ save 10%",
			RuleType: constants.PricingRuleTypeBulk,
			Config:   []byte(`{"min_quantity":5,"discount_percentage":10}`),
			Priority: 10,
		},
	}
	for _, input := range rules {
		var count int64
		if err := db.Model(&models.PricingRule{}).Where("name = ?", input.Name).Count(&count).Error; err != nil {
			logger.Warnw("seed_pricing_rule_lookup_failed", "name", input.Name, "error", err)
			continue
		}
		if count > 0 {
			logger.Infow("seed_pricing_rule_exists", "name", input.Name)
			continue
		}
		rule, err := svc.Create(ctx, input)
		if err != nil {
			logger.Warnw("seed_pricing_rule_create_failed", "name", input.Name, "error", err)
			continue
		}
		logger.Infow("seed_pricing_rule_created", "name", rule.Name, "id", rule.ID)
	}
}

func seedPromotions(ctx context.Context, db *gorm.DB, svc *service.PromotionAdminService, categoryIDs, productIDs map[string]uint) {
	now := time.Now().UTC()
	type seedPromotion struct {
		input   service.CreatePromotionInput
		targets []service.PromotionTargetInput
	}
	promotions := []seedPromotion{
		{
			input: service.CreatePromotionInput{
				Name:      "Lighting week",
				Type:      constants.PromotionTypePercentage,
				Value:     models.NewMoneyFromInt(20),
				StartDate: now.Add(-24 * time.Hour),
				EndDate:   now.Add(7 * 24 * time.Hour),
				Code:      "LIGHT20",
			},
			targets: []service.PromotionTargetInput{
				{TargetType: constants.PromotionTargetCategory, TargetID: categoryIDs["lighting"]},
			},
		},
		{
			input: service.CreatePromotionInput{
				Name:      "Side table flash sale",
				Type:      constants.PromotionTypeFixedAmount,
				Value:     models.NewMoneyFromInt(30),
				StartDate: now,
				EndDate:   now.Add(48 * time.Hour),
				Code:      "OAK30",
			},
			targets: []service.PromotionTargetInput{
				{TargetType: constants.PromotionTargetProduct, TargetID: productIDs["oak-side-table"]},
			},
		},
	}

	for _, item := range promotions {
		var count int64
		if err := db.Model(&models.Promotion{}).Where("code = ?", item.input.Code).Count(&count).Error; err != nil {
			logger.Warnw("seed_promotion_lookup_failed", "code", item.input.Code, "error", err)
			continue
		}
		if count > 0 {
			logger.Infow("seed_promotion_exists", "code", item.input.Code)
			continue
		}
		promotion, err := svc.Create(ctx, item.input, item.targets)
		if err != nil {
			logger.Warnw("seed_promotion_create_failed", "code", item.input.Code, "error", err)
			continue
		}
		logger.Infow("seed_promotion_created", "code", item.input.Code, "id", promotion.ID, "targets", len(item.targets))
	}
}
