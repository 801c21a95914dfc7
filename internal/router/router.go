package router

import (
	"context"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/thinkfashz/osart/internal/config"
	adminhandlers "github.com/thinkfashz/osart/internal/http/handlers/admin"
	publichandlers "github.com/thinkfashz/osart/internal/http/handlers/public"
	"github.com/thinkfashz/osart/internal/http/response"
	"github.com/thinkfashz/osart/internal/logger"
	"github.com/thinkfashz/osart/internal/provider"

	"github.com/gin-gonic/gin"
)

const adminRoutePrefix = "/api/v1/admin/"

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	// 初始化 Handler（按前台/后台分组）
	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)
	priceRule := RateLimitRule{
		Prefix:        c.Cache.Key("rate", "price"),
		WindowSeconds: cfg.Security.PriceRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.PriceRateLimit.MaxRequests,
		MessageKey:    "error.rate_limited",
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	apiV1 := r.Group("/api/v1")
	{
		// 公开接口
		public := apiV1.Group("/public")
		{
			public.GET("/products/:id/price", RateLimitMiddleware(c.Cache.Client(), priceRule, KeyByIP), publicHandler.GetProductPrice)
		}

		// 管理员接口（需 Bearer 令牌）
		admin := apiV1.Group("/admin")
		admin.Use(AdminTokenMiddleware(cfg.AdminAuth.Secret, cfg.AdminAuth.Issuer))
		{
			// 定价规则
			admin.GET("/pricing-rules", adminHandler.GetPricingRules)
			admin.POST("/pricing-rules", adminHandler.CreatePricingRule)
			admin.PUT("/pricing-rules/:id/status", adminHandler.UpdatePricingRuleStatus)
			admin.DELETE("/pricing-rules/:id", adminHandler.DeletePricingRule)

			// 促销活动
			admin.GET("/promotions", adminHandler.GetPromotions)
			admin.GET("/promotions/active", adminHandler.GetActivePromotions)
			admin.POST("/promotions", adminHandler.CreatePromotion)
			admin.PUT("/promotions/:id/status", adminHandler.UpdatePromotionStatus)
			admin.DELETE("/promotions/:id", adminHandler.DeletePromotion)

			admin.GET("/routes", func(ctx *gin.Context) {
				response.Success(ctx, buildAdminRouteCatalog(r))
			})
		}
	}

	// 健康检查
	r.GET("/health", func(ctx *gin.Context) {
		status := gin.H{"status": "ok", "redis": "disabled"}
		if c.Cache.Enabled() {
			pingCtx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
			defer cancel()
			if err := c.Cache.Ping(pingCtx); err != nil {
				status["status"] = "degraded"
				status["redis"] = "unreachable"
			} else {
				status["redis"] = "ok"
			}
		}
		ctx.JSON(http.StatusOK, status)
	})

	return r
}

type adminRouteCatalogItem struct {
	Module string `json:"module"`
	Method string `json:"method"`
	Path   string `json:"path"`
}

func buildAdminRouteCatalog(engine *gin.Engine) []adminRouteCatalogItem {
	if engine == nil {
		return []adminRouteCatalogItem{}
	}

	routes := engine.Routes()
	seen := make(map[string]struct{}, len(routes))
	items := make([]adminRouteCatalogItem, 0, len(routes))

	for _, item := range routes {
		method := strings.ToUpper(strings.TrimSpace(item.Method))
		if method == "" || method == "OPTIONS" || method == "HEAD" {
			continue
		}
		if !strings.HasPrefix(item.Path, adminRoutePrefix) {
			continue
		}
		key := method + ":" + item.Path
		if _, exists := seen[key]; exists {
			continue
		}
		seen[key] = struct{}{}
		items = append(items, adminRouteCatalogItem{
			Module: deriveAdminRouteModule(item.Path),
			Method: method,
			Path:   item.Path,
		})
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Module == items[j].Module {
			if items[i].Path == items[j].Path {
				return items[i].Method < items[j].Method
			}
			return items[i].Path < items[j].Path
		}
		return items[i].Module < items[j].Module
	})

	return items
}

func deriveAdminRouteModule(path string) string {
	normalized := strings.TrimPrefix(strings.TrimSpace(path), adminRoutePrefix)
	if normalized == "" {
		return "system"
	}
	return strings.Split(normalized, "/")[0]
}
