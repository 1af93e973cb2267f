package models

import (
	"time"

	"gorm.io/gorm"
)

// StockReservation 库存预留表
type StockReservation struct {
	ID          uint           `gorm:"primarykey" json:"id"`                                 // 主键
	ProductID   uint           `gorm:"index;not null" json:"product_id"`                     // 商品ID
	WarehouseID uint           `gorm:"index;not null" json:"warehouse_id"`                   // 仓库ID
	OrderItemID *uint          `gorm:"index" json:"order_item_id,omitempty"`                 // 订单行ID
	Quantity    int            `gorm:"not null" json:"quantity"`                             // 预留数量
	Status      string         `gorm:"type:varchar(20);index;not null" json:"status"`       // 预留状态（active/fulfilled/cancelled/expired）
	Reference   string         `gorm:"type:varchar(100);index" json:"reference,omitempty"`  // 业务引用（订单号等）
	ExpiresAt   time.Time      `gorm:"index;not null" json:"expires_at"`                     // 过期时间
	ReleasedAt  *time.Time     `json:"released_at,omitempty"`                                // 释放时间
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`                              // 创建时间
	UpdatedAt   time.Time      `json:"updated_at"`                                           // 更新时间
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`                                       // 软删除时间

	// 关联
	Product   *Product   `gorm:"foreignKey:ProductID" json:"product,omitempty"`     // 商品信息
	Warehouse *Warehouse `gorm:"foreignKey:WarehouseID" json:"warehouse,omitempty"` // 仓库信息
}

// TableName 指定表名
func (StockReservation) TableName() string {
	return "stock_reservations"
}

// IsTerminal 判断预留是否处于终态
func (r *StockReservation) IsTerminal() bool {
	return r.Status != "active"
}
