package service

import (
	"context"
	"time"

	"github.com/omniorder/internal/cache"
	"github.com/omniorder/internal/channel"
	"github.com/omniorder/internal/constants"
	"github.com/omniorder/internal/logger"
	"github.com/omniorder/internal/models"
	"github.com/omniorder/internal/repository"
)

// SyncService 渠道库存同步：把可售数量推回各渠道并记录同步日志
type SyncService struct {
	channelRepo    repository.ChannelRepository
	mappingRepo    repository.SKUMappingRepository
	stockLevelRepo repository.StockLevelRepository
	bundleRepo     repository.BundleRepository
	syncLogRepo    repository.SyncLogRepository
	registry       *channel.Registry
	maxRetries     int
	retryBackoff   time.Duration
}

// NewSyncService 创建渠道同步服务
func NewSyncService(
	channelRepo repository.ChannelRepository,
	mappingRepo repository.SKUMappingRepository,
	stockLevelRepo repository.StockLevelRepository,
	bundleRepo repository.BundleRepository,
	syncLogRepo repository.SyncLogRepository,
	registry *channel.Registry,
	maxRetries int,
) *SyncService {
	if maxRetries <= 0 {
		maxRetries = 3
	}
	return &SyncService{
		channelRepo:    channelRepo,
		mappingRepo:    mappingRepo,
		stockLevelRepo: stockLevelRepo,
		bundleRepo:     bundleRepo,
		syncLogRepo:    syncLogRepo,
		registry:       registry,
		maxRetries:     maxRetries,
		retryBackoff:   time.Second,
	}
}

// SyncReport 单次同步结果
type SyncReport struct {
	ChannelID uint              `json:"channel_id"`
	Processed int               `json:"processed"`
	Succeeded int               `json:"succeeded"`
	Failed    int               `json:"failed"`
	Skipped   int               `json:"skipped"`
	Errors    map[string]string `json:"errors,omitempty"`
}

// SyncStockToChannel 推送渠道全部启用映射的可售数量。
// 单个 SKU 失败不中断其余推送，汇总写入同步日志并更新渠道状态。
func (s *SyncService) SyncStockToChannel(ctx context.Context, channelID uint) (*SyncReport, error) {
	ch, err := s.channelRepo.GetByID(channelID)
	if err != nil {
		return nil, err
	}
	if ch == nil {
		return nil, ErrChannelNotFound
	}
	if !ch.IsActive {
		return nil, ErrChannelDisabled
	}
	adapter, err := s.registry.Get(ch.ChannelType)
	if err != nil {
		return nil, ErrUnsupportedChannel
	}

	now := time.Now()
	if err := s.channelRepo.UpdateSyncStatus(ch.ID, constants.ChannelSyncStatusSyncing, "", nil); err != nil {
		logger.Warnw("channel_sync_status_update_failed", "channel_id", ch.ID, "error", err)
	}

	mappings, err := s.mappingRepo.ListActiveByChannel(ch.ID)
	if err != nil {
		s.finishSync(ch, constants.ChannelSyncStatusError, err.Error())
		return nil, err
	}

	snapshot, err := cache.GetChannelStockSnapshot(ctx, ch.ID)
	if err != nil {
		// 快照不可用时退化为全量推送
		logger.Warnw("channel_sync_snapshot_read_failed", "channel_id", ch.ID, "error", err)
		snapshot = nil
	}
	nextSnapshot := &cache.ChannelStockSnapshot{
		ChannelID:  ch.ID,
		Quantities: make(map[string]int, len(mappings)),
	}

	report := &SyncReport{ChannelID: ch.ID, Errors: make(map[string]string)}
	startedAt := time.Now()

	for i := range mappings {
		mapping := &mappings[i]
		quantity, err := s.sellableQuantity(ch, mapping)
		if err != nil {
			report.Processed++
			report.Failed++
			report.Errors[mapping.ChannelSKU] = err.Error()
			continue
		}

		if snapshot != nil {
			if prev, ok := snapshot.Quantities[mapping.ChannelSKU]; ok && prev == quantity {
				report.Skipped++
				nextSnapshot.Quantities[mapping.ChannelSKU] = quantity
				continue
			}
		}

		report.Processed++
		if err := s.pushWithRetry(ctx, adapter, ch, mapping.ChannelSKU, quantity); err != nil {
			report.Failed++
			report.Errors[mapping.ChannelSKU] = err.Error()
			logger.Warnw("channel_stock_push_failed",
				"channel_id", ch.ID,
				"channel_sku", mapping.ChannelSKU,
				"quantity", quantity,
				"error", err,
			)
			continue
		}
		report.Succeeded++
		nextSnapshot.Quantities[mapping.ChannelSKU] = quantity
	}

	if err := cache.SaveChannelStockSnapshot(ctx, nextSnapshot); err != nil {
		logger.Warnw("channel_sync_snapshot_write_failed", "channel_id", ch.ID, "error", err)
	}

	status := constants.SyncLogStatusSuccess
	syncStatus := constants.ChannelSyncStatusConnected
	message := ""
	if report.Failed > 0 && report.Succeeded > 0 {
		status = constants.SyncLogStatusPartial
		message = firstError(report.Errors)
	} else if report.Failed > 0 {
		status = constants.SyncLogStatusFailed
		syncStatus = constants.ChannelSyncStatusError
		message = firstError(report.Errors)
	}

	entry := &models.ChannelSyncLog{
		TenantID:         ch.TenantID,
		ChannelID:        ch.ID,
		SyncType:         constants.SyncTypeStockPush,
		Status:           status,
		RecordsProcessed: report.Processed,
		RecordsSucceeded: report.Succeeded,
		RecordsFailed:    report.Failed,
		Message:          message,
		DetailsJSON:      syncErrorDetails(report),
		StartedAt:        startedAt,
		DurationMS:       time.Since(startedAt).Milliseconds(),
	}
	if err := s.syncLogRepo.Create(entry); err != nil {
		logger.Warnw("channel_sync_log_write_failed", "channel_id", ch.ID, "error", err)
	}

	if err := s.channelRepo.UpdateSyncStatus(ch.ID, syncStatus, message, &now); err != nil {
		logger.Warnw("channel_sync_status_update_failed", "channel_id", ch.ID, "error", err)
	}

	logger.Infow("channel_stock_sync_done",
		"channel_id", ch.ID,
		"processed", report.Processed,
		"succeeded", report.Succeeded,
		"failed", report.Failed,
		"skipped", report.Skipped,
	)
	return report, nil
}

// SyncAllChannels 推送所有启用渠道，单渠道失败不影响其余渠道
func (s *SyncService) SyncAllChannels(ctx context.Context) error {
	channels, err := s.channelRepo.ListActive()
	if err != nil {
		return err
	}
	for i := range channels {
		if _, err := s.SyncStockToChannel(ctx, channels[i].ID); err != nil {
			logger.Errorw("channel_stock_sync_failed", "channel_id", channels[i].ID, "error", err)
		}
	}
	return nil
}

// sellableQuantity 计算映射的渠道可售数量。
// 覆盖值优先；商品映射取租户全部仓库的可用量之和；
// 套装映射取各必选组件能组出的最小套数。
func (s *SyncService) sellableQuantity(ch *models.Channel, mapping *models.SKUMapping) (int, error) {
	if mapping.StockOverride != nil {
		return *mapping.StockOverride, nil
	}
	if mapping.ProductID != nil {
		return s.stockLevelRepo.SumAvailableByTenant(*mapping.ProductID, ch.TenantID)
	}
	if mapping.BundleID != nil {
		return s.bundleSellable(*mapping.BundleID, ch.TenantID)
	}
	return 0, ErrProductNotFound
}

func (s *SyncService) bundleSellable(bundleID, tenantID uint) (int, error) {
	bundle, err := s.bundleRepo.GetByID(bundleID)
	if err != nil {
		return 0, err
	}
	if bundle == nil {
		return 0, ErrBundleNotFound
	}
	sellable := -1
	for _, component := range bundle.Components {
		if component.IsOptional {
			continue
		}
		perSet := component.Quantity
		if perSet <= 0 {
			perSet = 1
		}
		available, err := s.stockLevelRepo.SumAvailableByTenant(component.ProductID, tenantID)
		if err != nil {
			return 0, err
		}
		sets := available / perSet
		if sellable < 0 || sets < sellable {
			sellable = sets
		}
	}
	if sellable < 0 {
		return 0, nil
	}
	return sellable, nil
}

// pushWithRetry 有界重试，指数退避
func (s *SyncService) pushWithRetry(ctx context.Context, adapter channel.Adapter, ch *models.Channel, channelSKU string, quantity int) error {
	var lastErr error
	backoff := s.retryBackoff
	for attempt := 1; attempt <= s.maxRetries; attempt++ {
		lastErr = adapter.PushStock(ctx, ch, channelSKU, quantity)
		if lastErr == nil {
			return nil
		}
		if attempt < s.maxRetries {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}
	}
	return lastErr
}

func (s *SyncService) finishSync(ch *models.Channel, status, message string) {
	if err := s.channelRepo.UpdateSyncStatus(ch.ID, status, message, nil); err != nil {
		logger.Warnw("channel_sync_status_update_failed", "channel_id", ch.ID, "error", err)
	}
}

func firstError(errors map[string]string) string {
	for sku, msg := range errors {
		return sku + ": " + msg
	}
	return ""
}

func syncErrorDetails(report *SyncReport) models.JSON {
	if len(report.Errors) == 0 {
		return nil
	}
	details := make(models.JSON, len(report.Errors))
	for sku, msg := range report.Errors {
		details[sku] = msg
	}
	return details
}
