package provider

import (
	"time"

	"github.com/omniorder/internal/cache"
	"github.com/omniorder/internal/channel"
	"github.com/omniorder/internal/config"
	"github.com/omniorder/internal/logger"
	"github.com/omniorder/internal/models"
	"github.com/omniorder/internal/queue"
	"github.com/omniorder/internal/repository"
	"github.com/omniorder/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client
	Registry    *channel.Registry

	// Repositories
	ChannelRepo     repository.ChannelRepository
	WarehouseRepo   repository.WarehouseRepository
	ProductRepo     repository.ProductRepository
	MappingRepo     repository.SKUMappingRepository
	BundleRepo      repository.BundleRepository
	OrderRepo       repository.OrderRepository
	StockLevelRepo  repository.StockLevelRepository
	ReservationRepo repository.StockReservationRepository
	MovementRepo    repository.StockMovementRepository
	RuleRepo        repository.AutomationRuleRepository
	SyncLogRepo     repository.SyncLogRepository

	// Services
	LedgerService       *service.StockLedgerService
	ReservationService  *service.ReservationService
	Resolver            *service.SKUResolver
	BundleService       *service.BundleService
	AutomationService   *service.AutomationService
	ImportService       *service.ImportService
	SyncService         *service.SyncService
	OrderService        *service.OrderService
	WarehouseService    *service.WarehouseService
	ChannelService      *service.ChannelService
	ProductService      *service.ProductService
	MappingService      *service.MappingService
	NotificationService *service.NotificationService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
		Registry:    channel.NewDefaultRegistry(time.Duration(cfg.Sync.PushTimeoutSeconds) * time.Second),
	}

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.ChannelRepo = repository.NewChannelRepository(db)
	c.WarehouseRepo = repository.NewWarehouseRepository(db)
	c.ProductRepo = repository.NewProductRepository(db)
	c.MappingRepo = repository.NewSKUMappingRepository(db)
	c.BundleRepo = repository.NewBundleRepository(db)
	c.OrderRepo = repository.NewOrderRepository(db)
	c.StockLevelRepo = repository.NewStockLevelRepository(db)
	c.ReservationRepo = repository.NewStockReservationRepository(db)
	c.MovementRepo = repository.NewStockMovementRepository(db)
	c.RuleRepo = repository.NewAutomationRuleRepository(db)
	c.SyncLogRepo = repository.NewSyncLogRepository(db)
}

func (c *Container) initServices() {
	cfg := c.Config

	c.LedgerService = service.NewStockLedgerService(c.StockLevelRepo, c.MovementRepo)
	c.ReservationService = service.NewReservationService(
		c.ReservationRepo,
		c.StockLevelRepo,
		c.WarehouseRepo,
		c.OrderRepo,
		c.LedgerService,
		cfg.Reservation.TTLHours,
	)
	c.Resolver = service.NewSKUResolver(c.MappingRepo, c.ProductRepo, c.BundleRepo)
	c.BundleService = service.NewBundleService(c.BundleRepo, c.ReservationRepo, c.ReservationService, c.LedgerService)
	c.AutomationService = service.NewAutomationService(c.RuleRepo, c.OrderRepo, c.WarehouseRepo, c.QueueClient)
	c.ImportService = service.NewImportService(
		c.OrderRepo,
		c.ChannelRepo,
		c.SyncLogRepo,
		c.Resolver,
		c.ReservationService,
		c.BundleService,
		c.AutomationService,
		c.Registry,
		c.QueueClient,
	)
	c.SyncService = service.NewSyncService(
		c.ChannelRepo,
		c.MappingRepo,
		c.StockLevelRepo,
		c.BundleRepo,
		c.SyncLogRepo,
		c.Registry,
		cfg.Sync.MaxRetries,
	)
	c.OrderService = service.NewOrderService(c.OrderRepo, c.ReservationService, c.LedgerService)
	c.WarehouseService = service.NewWarehouseService(c.WarehouseRepo)
	c.ChannelService = service.NewChannelService(c.ChannelRepo, c.WarehouseRepo, c.Registry)
	c.ProductService = service.NewProductService(c.ProductRepo)
	c.MappingService = service.NewMappingService(c.MappingRepo, c.ChannelRepo, c.ProductRepo, c.BundleRepo)
	c.NotificationService = service.NewNotificationService(
		c.OrderRepo,
		cfg.Notification.WebhookURL,
		time.Duration(cfg.Notification.TimeoutSeconds)*time.Second,
	)
}
