package router

import (
	"fmt"
	"strings"

	"github.com/omniorder/internal/cache"
	"github.com/omniorder/internal/config"
	adminhandlers "github.com/omniorder/internal/http/handlers/admin"
	webhookhandlers "github.com/omniorder/internal/http/handlers/webhook"
	"github.com/omniorder/internal/logger"
	"github.com/omniorder/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	adminHandler := adminhandlers.New(c)
	webhookHandler := webhookhandlers.New(c)

	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "oo"
	}
	redisClient := cache.Client()
	webhookRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:webhook", redisPrefix),
		WindowSeconds: cfg.Server.WebhookRateLimit.WindowSeconds,
		MaxRequests:   cfg.Server.WebhookRateLimit.MaxRequests,
		Message:       "too many webhook requests",
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	// 渠道回调入口（HMAC 签名校验在 handler 内完成）
	r.POST("/webhooks/:channel_id/orders", RateLimitMiddleware(redisClient, webhookRule, KeyByIP), webhookHandler.ReceiveOrder)

	// API 路由组
	apiV1 := r.Group("/api/v1")
	{
		admin := apiV1.Group("/admin")
		admin.Use(ServiceAuthMiddleware(cfg.JWT.SecretKey))
		{
			// 渠道管理
			admin.GET("/channels", adminHandler.GetChannels)
			admin.GET("/channels/:id", adminHandler.GetChannel)
			admin.POST("/channels", adminHandler.CreateChannel)
			admin.PUT("/channels/:id", adminHandler.UpdateChannel)
			admin.DELETE("/channels/:id", adminHandler.DeactivateChannel)
			admin.POST("/channels/:id/test", adminHandler.TestChannelConnection)
			admin.POST("/channels/:id/sync", adminHandler.TriggerChannelSync)

			// 仓库管理
			admin.GET("/warehouses", adminHandler.GetWarehouses)
			admin.GET("/warehouses/:id", adminHandler.GetWarehouse)
			admin.POST("/warehouses", adminHandler.CreateWarehouse)
			admin.PUT("/warehouses/:id", adminHandler.UpdateWarehouse)

			// 商品管理
			admin.GET("/products", adminHandler.GetProducts)
			admin.GET("/products/:id", adminHandler.GetProduct)
			admin.POST("/products", adminHandler.CreateProduct)
			admin.PUT("/products/:id", adminHandler.UpdateProduct)

			// SKU 映射管理
			admin.GET("/mappings", adminHandler.GetMappings)
			admin.POST("/mappings", adminHandler.CreateMapping)
			admin.PUT("/mappings/:id", adminHandler.UpdateMapping)
			admin.DELETE("/mappings/:id", adminHandler.DeleteMapping)

			// 组合商品管理
			admin.GET("/bundles", adminHandler.GetBundles)
			admin.GET("/bundles/:id", adminHandler.GetBundle)
			admin.POST("/bundles", adminHandler.CreateBundle)
			admin.PUT("/bundles/:id", adminHandler.UpdateBundle)

			// 订单管理
			admin.GET("/orders", adminHandler.GetOrders)
			admin.GET("/orders/:id", adminHandler.GetOrder)
			admin.PATCH("/orders/:id/status", adminHandler.UpdateOrderStatus)
			admin.POST("/orders/:id/cancel", adminHandler.CancelOrder)
			admin.POST("/orders/:id/items/:item_id/allocate", adminHandler.AllocateOrderItem)
			admin.POST("/orders/:id/items/:item_id/pick", adminHandler.PickOrderItem)
			admin.POST("/orders/:id/items/:item_id/pack", adminHandler.PackOrderItem)
			admin.POST("/orders/:id/items/:item_id/ship", adminHandler.ShipOrderItem)
			admin.POST("/orders/import", adminHandler.BulkImportOrders)

			// 库存管理
			admin.GET("/stock/levels", adminHandler.GetStockLevels)
			admin.POST("/stock/adjust", adminHandler.AdjustStock)
			admin.POST("/stock/in", adminHandler.StockIn)
			admin.GET("/stock/movements", adminHandler.GetStockMovements)

			// 预占管理
			admin.GET("/reservations", adminHandler.GetReservations)
			admin.GET("/reservations/:id", adminHandler.GetReservation)
			admin.POST("/reservations/:id/release", adminHandler.ReleaseReservation)

			// 自动化规则
			admin.GET("/rules", adminHandler.GetRules)
			admin.GET("/rules/:id", adminHandler.GetRule)
			admin.POST("/rules", adminHandler.CreateRule)
			admin.PUT("/rules/:id", adminHandler.UpdateRule)
			admin.DELETE("/rules/:id", adminHandler.DeleteRule)

			// 同步日志
			admin.GET("/sync-logs", adminHandler.GetSyncLogs)
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
