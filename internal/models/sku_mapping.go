package models

import (
	"time"

	"gorm.io/gorm"
)

// SKUMapping 渠道 SKU 映射表
type SKUMapping struct {
	ID            uint           `gorm:"primarykey" json:"id"`                                                     // 主键
	ChannelID     uint           `gorm:"uniqueIndex:uk_channel_sku;not null" json:"channel_id"`                    // 渠道ID
	ChannelSKU    string         `gorm:"type:varchar(100);uniqueIndex:uk_channel_sku;not null" json:"channel_sku"` // 渠道侧 SKU
	ProductID     *uint          `gorm:"index" json:"product_id,omitempty"`                                        // 商品ID（与 BundleID 互斥）
	BundleID      *uint          `gorm:"index" json:"bundle_id,omitempty"`                                         // 套装ID（与 ProductID 互斥）
	ChannelTitle  string         `gorm:"type:varchar(200)" json:"channel_title,omitempty"`                         // 渠道侧商品标题
	PriceOverride *Money         `gorm:"type:decimal(20,2)" json:"price_override,omitempty"`                       // 渠道价格覆盖
	StockOverride *int           `json:"stock_override,omitempty"`                                                 // 渠道库存覆盖（同步时优先于计算值）
	IsActive      bool           `gorm:"default:true;index" json:"is_active"`                                      // 是否启用
	CreatedAt     time.Time      `gorm:"index" json:"created_at"`                                                  // 创建时间
	UpdatedAt     time.Time      `json:"updated_at"`                                                               // 更新时间
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`                                                           // 软删除时间

	// 关联
	Channel *Channel       `gorm:"foreignKey:ChannelID" json:"channel,omitempty"` // 渠道信息
	Product *Product       `gorm:"foreignKey:ProductID" json:"product,omitempty"` // 商品信息
	Bundle  *ProductBundle `gorm:"foreignKey:BundleID" json:"bundle,omitempty"`   // 套装信息
}

// TableName 指定表名
func (SKUMapping) TableName() string {
	return "sku_mappings"
}
