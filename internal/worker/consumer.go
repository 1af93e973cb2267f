package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/omniorder/internal/logger"
	"github.com/omniorder/internal/provider"
	"github.com/omniorder/internal/queue"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskOrderImport, c.handleOrderImport)
	mux.HandleFunc(queue.TaskChannelStockSync, c.handleChannelStockSync)
	mux.HandleFunc(queue.TaskReservationExpire, c.handleReservationExpire)
	mux.HandleFunc(queue.TaskNotificationDispatch, c.handleNotificationDispatch)
}

func (c *Consumer) handleOrderImport(_ context.Context, task *asynq.Task) error {
	var payload queue.OrderImportPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_order_import_unmarshal_failed", "error", err)
		return err
	}
	if payload.ChannelID == 0 || len(payload.RawOrder) == 0 {
		logger.Debugw("worker_order_import_skip_invalid_payload", "channel_id", payload.ChannelID)
		return nil
	}
	result, err := c.ImportService.ImportRaw(payload.ChannelID, payload.RawOrder)
	if err != nil {
		logger.Warnw("worker_order_import_failed", "channel_id", payload.ChannelID, "error", err)
		return err
	}
	logger.Infow("worker_order_import_done",
		"channel_id", payload.ChannelID,
		"order_no", result.Order.OrderNo,
		"created", result.Created,
	)
	return nil
}

func (c *Consumer) handleChannelStockSync(ctx context.Context, task *asynq.Task) error {
	var payload queue.ChannelStockSyncPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_channel_stock_sync_unmarshal_failed", "error", err)
		return err
	}
	if payload.ChannelID == 0 {
		logger.Debugw("worker_channel_stock_sync_skip_invalid_payload")
		return nil
	}
	if _, err := c.SyncService.SyncStockToChannel(ctx, payload.ChannelID); err != nil {
		logger.Warnw("worker_channel_stock_sync_failed", "channel_id", payload.ChannelID, "error", err)
		return err
	}
	return nil
}

func (c *Consumer) handleReservationExpire(_ context.Context, task *asynq.Task) error {
	var payload queue.ReservationExpirePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_reservation_expire_unmarshal_failed", "error", err)
		return err
	}
	limit := payload.BatchLimit
	if limit <= 0 {
		limit = c.Config.Reservation.SweepBatchLimit
	}
	expired, err := c.ReservationService.ExpireStale(time.Now(), limit)
	if err != nil {
		logger.Warnw("worker_reservation_expire_failed", "error", err)
		return err
	}
	if expired > 0 {
		logger.Infow("worker_reservation_expire_done", "expired", expired)
	}
	return nil
}

func (c *Consumer) handleNotificationDispatch(ctx context.Context, task *asynq.Task) error {
	var payload queue.NotificationDispatchPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_notification_unmarshal_failed", "error", err)
		return err
	}
	if payload.OrderID == 0 {
		logger.Debugw("worker_notification_skip_invalid_payload")
		return nil
	}
	if err := c.NotificationService.Dispatch(ctx, payload.OrderID, payload.RuleID, payload.Message); err != nil {
		logger.Warnw("worker_notification_dispatch_failed", "order_id", payload.OrderID, "error", err)
		return err
	}
	return nil
}
