package provider

import (
	"github.com/thinkfashz/osart/internal/cache"
	"github.com/thinkfashz/osart/internal/clock"
	"github.com/thinkfashz/osart/internal/config"
	"github.com/thinkfashz/osart/internal/logger"
	"github.com/thinkfashz/osart/internal/queue"
	"github.com/thinkfashz/osart/internal/repository"
	"github.com/thinkfashz/osart/internal/service"

	"gorm.io/gorm"
)

// Container 依赖注入容器，持有的连接由 Close 统一释放
type Container struct {
	Config      *config.Config
	DB          *gorm.DB
	Cache       *cache.Store
	QueueClient *queue.Client
	Clock       clock.Clock

	// Repositories
	ProductRepo     repository.ProductRepository
	CategoryRepo    repository.CategoryRepository
	PricingRuleRepo repository.PricingRuleRepository
	PromotionRepo   repository.PromotionRepository

	// Services
	PricingService          *service.PricingService
	PricingRuleAdminService *service.PricingRuleAdminService
	PromotionAdminService   *service.PromotionAdminService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config, db *gorm.DB) *Container {
	queueClient, err := queue.NewClient(&cfg.Queue)
	if err != nil {
		logger.Errorw("provider_init_queue_client_failed", "error", err)
		queueClient = nil
	}

	c := &Container{
		Config:      cfg,
		DB:          db,
		Cache:       cache.NewStore(&cfg.Redis),
		QueueClient: queueClient,
		Clock:       clock.NewRealClock(),
	}

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	c.ProductRepo = repository.NewProductRepository(c.DB)
	c.CategoryRepo = repository.NewCategoryRepository(c.DB)
	c.PricingRuleRepo = repository.NewPricingRuleRepository(c.DB)
	c.PromotionRepo = repository.NewPromotionRepository(c.DB)
}

func (c *Container) initServices() {
	c.PricingService = service.NewPricingService(c.ProductRepo, c.PricingRuleRepo, c.PromotionRepo, c.Clock)
	c.PricingRuleAdminService = service.NewPricingRuleAdminService(c.PricingRuleRepo)
	c.PromotionAdminService = service.NewPromotionAdminService(c.PromotionRepo, c.ProductRepo, c.CategoryRepo, c.QueueClient, c.Clock)
}

// Close 释放队列与缓存连接，数据库由打开方关闭
func (c *Container) Close() {
	if c == nil {
		return
	}
	if err := c.QueueClient.Close(); err != nil {
		logger.Warnw("provider_close_queue_client_failed", "error", err)
	}
	if err := c.Cache.Close(); err != nil {
		logger.Warnw("provider_close_cache_failed", "error", err)
	}
}
