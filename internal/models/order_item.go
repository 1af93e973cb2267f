package models

import (
	"time"

	"gorm.io/gorm"
)

// OrderItem 订单行表
type OrderItem struct {
	ID            uint           `gorm:"primarykey" json:"id"`                                     // 主键
	OrderID       uint           `gorm:"index;not null" json:"order_id"`                           // 订单ID
	ProductID     *uint          `gorm:"index" json:"product_id,omitempty"`                        // 商品ID（解析成功时）
	BundleID      *uint          `gorm:"index" json:"bundle_id,omitempty"`                         // 套装ID（解析为套装时）
	ChannelSKU    string         `gorm:"type:varchar(100);index" json:"channel_sku"`               // 渠道侧 SKU 原文
	Title         string         `gorm:"type:varchar(200)" json:"title"`                           // 渠道侧商品标题快照
	Quantity      int            `gorm:"not null" json:"quantity"`                                 // 数量
	UnitPrice     Money          `gorm:"type:decimal(20,2);not null;default:0" json:"unit_price"`  // 单价
	TotalPrice    Money          `gorm:"type:decimal(20,2);not null;default:0" json:"total_price"` // 小计
	Status        string         `gorm:"type:varchar(20);index;not null" json:"status"`            // 行状态（reserved/backorder/unmapped/...）
	ReservationID *uint          `gorm:"index" json:"reservation_id,omitempty"`                    // 主预留ID（单品行）
	CreatedAt     time.Time      `gorm:"index" json:"created_at"`                                  // 创建时间
	UpdatedAt     time.Time      `json:"updated_at"`                                               // 更新时间
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`                                           // 软删除时间

	// 关联
	Product     *Product          `gorm:"foreignKey:ProductID" json:"product,omitempty"`         // 商品信息
	Bundle      *ProductBundle    `gorm:"foreignKey:BundleID" json:"bundle,omitempty"`           // 套装信息
	Reservation *StockReservation `gorm:"foreignKey:ReservationID" json:"reservation,omitempty"` // 主预留
}

// TableName 指定表名
func (OrderItem) TableName() string {
	return "order_items"
}
