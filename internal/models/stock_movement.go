package models

import (
	"time"
)

// StockMovement 库存流水表（只追加，不可变）
type StockMovement struct {
	ID             uint      `gorm:"primarykey" json:"id"`                                // 主键
	ProductID      uint      `gorm:"index;not null" json:"product_id"`                    // 商品ID
	WarehouseID    uint      `gorm:"index;not null" json:"warehouse_id"`                  // 仓库ID
	MovementType   string    `gorm:"type:varchar(20);index;not null" json:"movement_type"` // 流水类型
	Quantity       int       `gorm:"not null" json:"quantity"`                            // 变动数量（绝对值）
	DeltasJSON     JSON      `gorm:"type:json" json:"deltas"`                             // 各桶变动明细
	PreviousJSON   JSON      `gorm:"type:json" json:"previous"`                           // 变动前各桶快照
	CurrentJSON    JSON      `gorm:"type:json" json:"current"`                            // 变动后各桶快照
	Reason         string    `gorm:"type:varchar(200)" json:"reason,omitempty"`           // 变动原因
	Reference      string    `gorm:"type:varchar(100);index" json:"reference,omitempty"`  // 业务引用（订单号/预留ID 等）
	Notes          string    `gorm:"type:varchar(500)" json:"notes,omitempty"`            // 备注
	CreatedAt      time.Time `gorm:"index" json:"created_at"`                             // 创建时间

	// 关联
	Product   *Product   `gorm:"foreignKey:ProductID" json:"product,omitempty"`     // 商品信息
	Warehouse *Warehouse `gorm:"foreignKey:WarehouseID" json:"warehouse,omitempty"` // 仓库信息
}

// TableName 指定表名
func (StockMovement) TableName() string {
	return "stock_movements"
}
