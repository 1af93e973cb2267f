package models

import (
	"time"

	"gorm.io/gorm"
)

// Channel 销售渠道表
type Channel struct {
	ID                 uint           `gorm:"primarykey" json:"id"`                                        // 主键
	TenantID           uint           `gorm:"index;not null" json:"tenant_id"`                             // 租户ID
	Name               string         `gorm:"type:varchar(100);not null" json:"name"`                      // 渠道名称
	ChannelType        string         `gorm:"type:varchar(20);index;not null" json:"channel_type"`         // 渠道类型（shopify/amazon/ebay/woocommerce/pos/manual）
	IsActive           bool           `gorm:"default:true;index" json:"is_active"`                         // 是否启用
	CredentialsJSON    JSON           `gorm:"type:json" json:"-"`                                          // 接入凭据（api_key/webhook_secret 等）
	SettingsJSON       JSON           `gorm:"type:json" json:"settings"`                                   // 同步设置（sync_frequency_minutes 等）
	DefaultWarehouseID *uint          `gorm:"index" json:"default_warehouse_id,omitempty"`                 // 默认仓库ID
	SyncStatus         string         `gorm:"type:varchar(20);default:'disconnected'" json:"sync_status"`  // 同步状态
	SyncError          string         `gorm:"type:varchar(500)" json:"sync_error,omitempty"`               // 最近同步错误
	LastSyncAt         *time.Time     `gorm:"index" json:"last_sync_at"`                                   // 最近同步时间
	CreatedAt          time.Time      `gorm:"index" json:"created_at"`                                     // 创建时间
	UpdatedAt          time.Time      `json:"updated_at"`                                                  // 更新时间
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`                                              // 软删除时间

	// 关联
	DefaultWarehouse *Warehouse   `gorm:"foreignKey:DefaultWarehouseID" json:"default_warehouse,omitempty"` // 默认仓库
	Mappings         []SKUMapping `gorm:"foreignKey:ChannelID" json:"mappings,omitempty"`                   // SKU 映射列表
}

// TableName 指定表名
func (Channel) TableName() string {
	return "channels"
}

// WebhookSecret 返回渠道配置的回调签名密钥（未配置时为空串）
func (c *Channel) WebhookSecret() string {
	if c.CredentialsJSON == nil {
		return ""
	}
	if s, ok := c.CredentialsJSON["webhook_secret"].(string); ok {
		return s
	}
	return ""
}

// SyncFrequencyMinutes 返回渠道库存同步间隔（分钟），未配置时返回 0
func (c *Channel) SyncFrequencyMinutes() int {
	if c.SettingsJSON == nil {
		return 0
	}
	if v, ok := c.SettingsJSON["sync_frequency_minutes"].(float64); ok {
		return int(v)
	}
	return 0
}
