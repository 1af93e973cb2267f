package models

import (
	"time"
)

// StockLevel 分仓库存表（五个库存桶）
type StockLevel struct {
	ID           uint      `gorm:"primarykey" json:"id"`                                          // 主键
	ProductID    uint      `gorm:"uniqueIndex:uk_product_warehouse;not null" json:"product_id"`   // 商品ID
	WarehouseID  uint      `gorm:"uniqueIndex:uk_product_warehouse;not null" json:"warehouse_id"` // 仓库ID
	Available    int       `gorm:"not null;default:0" json:"available"`                           // 可售数量
	Reserved     int       `gorm:"not null;default:0" json:"reserved"`                            // 预留数量
	Allocated    int       `gorm:"not null;default:0" json:"allocated"`                           // 已分配数量
	Damaged      int       `gorm:"not null;default:0" json:"damaged"`                             // 损坏数量
	OnOrder      int       `gorm:"not null;default:0" json:"on_order"`                            // 在途数量
	ReorderPoint int       `gorm:"not null;default:0" json:"reorder_point"`                       // 补货阈值
	CreatedAt    time.Time `gorm:"index" json:"created_at"`                                       // 创建时间
	UpdatedAt    time.Time `json:"updated_at"`                                                    // 更新时间

	// 关联
	Product   *Product   `gorm:"foreignKey:ProductID" json:"product,omitempty"`     // 商品信息
	Warehouse *Warehouse `gorm:"foreignKey:WarehouseID" json:"warehouse,omitempty"` // 仓库信息
}

// TableName 指定表名
func (StockLevel) TableName() string {
	return "stock_levels"
}

// Total 返回库存总量（全部桶之和）
func (s *StockLevel) Total() int {
	return s.Available + s.Reserved + s.Allocated + s.Damaged + s.OnOrder
}

// Sellable 返回对外可售数量
func (s *StockLevel) Sellable() int {
	return s.Available
}

// BucketSnapshot 返回各桶数量快照，用于流水记录
func (s *StockLevel) BucketSnapshot() JSON {
	return JSON{
		"available": s.Available,
		"reserved":  s.Reserved,
		"allocated": s.Allocated,
		"damaged":   s.Damaged,
		"on_order":  s.OnOrder,
	}
}
