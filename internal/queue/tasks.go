package queue

import (
	"encoding/json"

	"github.com/omniorder/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskChannelStockSync 渠道库存推送任务
	TaskChannelStockSync = constants.TaskChannelStockSync
	// TaskReservationExpire 预留过期清扫任务
	TaskReservationExpire = constants.TaskReservationExpire
	// TaskNotificationDispatch 通知分发任务
	TaskNotificationDispatch = constants.TaskNotificationDispatch
	// TaskOrderImport 渠道订单导入任务
	TaskOrderImport = constants.TaskOrderImport
)

// ChannelStockSyncPayload 渠道库存推送任务载荷
type ChannelStockSyncPayload struct {
	ChannelID uint `json:"channel_id"`
}

// ReservationExpirePayload 预留过期清扫任务载荷
type ReservationExpirePayload struct {
	BatchLimit int `json:"batch_limit"`
}

// NotificationDispatchPayload 通知分发任务载荷
type NotificationDispatchPayload struct {
	OrderID uint   `json:"order_id"`
	RuleID  uint   `json:"rule_id"`
	Message string `json:"message"`
}

// OrderImportPayload 渠道订单导入任务载荷（webhook 异步重放）
type OrderImportPayload struct {
	ChannelID uint   `json:"channel_id"`
	RawOrder  []byte `json:"raw_order"`
}

// NewChannelStockSyncTask 创建渠道库存推送任务
func NewChannelStockSyncTask(payload ChannelStockSyncPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskChannelStockSync, body), nil
}

// NewReservationExpireTask 创建预留过期清扫任务
func NewReservationExpireTask(payload ReservationExpirePayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReservationExpire, body), nil
}

// NewNotificationDispatchTask 创建通知分发任务
func NewNotificationDispatchTask(payload NotificationDispatchPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskNotificationDispatch, body), nil
}

// NewOrderImportTask 创建订单导入任务
func NewOrderImportTask(payload OrderImportPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOrderImport, body), nil
}
