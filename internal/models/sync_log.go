package models

import (
	"time"
)

// ChannelSyncLog 渠道同步日志表（每次导入/推送必写一条）
type ChannelSyncLog struct {
	ID               uint      `gorm:"primarykey" json:"id"`                              // 主键
	TenantID         uint      `gorm:"index;not null" json:"tenant_id"`                   // 租户ID
	ChannelID        uint      `gorm:"index;not null" json:"channel_id"`                  // 渠道ID
	SyncType         string    `gorm:"type:varchar(30);index;not null" json:"sync_type"`  // 同步类型（order_import/stock_push/order_status）
	Status           string    `gorm:"type:varchar(20);index;not null" json:"status"`     // 结果状态（success/partial/failed/warning）
	RecordsProcessed int       `gorm:"default:0" json:"records_processed"`                // 处理条数
	RecordsSucceeded int       `gorm:"default:0" json:"records_succeeded"`                // 成功条数
	RecordsFailed    int       `gorm:"default:0" json:"records_failed"`                   // 失败条数
	Message          string    `gorm:"type:varchar(1000)" json:"message,omitempty"`       // 摘要信息
	DetailsJSON      JSON      `gorm:"type:json" json:"details"`                          // 明细（逐条错误等）
	Reference        string    `gorm:"type:varchar(100);index" json:"reference,omitempty"` // 关联引用（订单号/批次号）
	DurationMS       int64     `gorm:"default:0" json:"duration_ms"`                      // 耗时（毫秒）
	StartedAt        time.Time `gorm:"index" json:"started_at"`                           // 开始时间
	CreatedAt        time.Time `gorm:"index" json:"created_at"`                           // 创建时间

	// 关联
	Channel *Channel `gorm:"foreignKey:ChannelID" json:"channel,omitempty"` // 渠道信息
}

// TableName 指定表名
func (ChannelSyncLog) TableName() string {
	return "channel_sync_logs"
}
