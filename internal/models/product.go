package models

import (
	"time"

	"gorm.io/gorm"
)

// Product 商品主数据表（内部 SKU 目录）
type Product struct {
	ID           uint           `gorm:"primarykey" json:"id"`                                       // 主键
	TenantID     uint           `gorm:"index;not null" json:"tenant_id"`                            // 租户ID
	Name         string         `gorm:"type:varchar(200);not null" json:"name"`                     // 商品名称
	SKU          string         `gorm:"type:varchar(100);index;not null" json:"sku"`                // 内部 SKU
	Barcode      string         `gorm:"type:varchar(100);index" json:"barcode,omitempty"`           // 条码
	Description  string         `gorm:"type:text" json:"description,omitempty"`                     // 描述
	CostPrice    Money          `gorm:"type:decimal(20,2);not null;default:0" json:"cost_price"`    // 成本价
	SellingPrice Money          `gorm:"type:decimal(20,2);not null;default:0" json:"selling_price"` // 售价
	IsActive     bool           `gorm:"default:true;index" json:"is_active"`                        // 是否启用
	CreatedAt    time.Time      `gorm:"index" json:"created_at"`                                    // 创建时间
	UpdatedAt    time.Time      `json:"updated_at"`                                                 // 更新时间
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`                                             // 软删除时间

	// 关联
	StockLevels []StockLevel `gorm:"foreignKey:ProductID" json:"stock_levels,omitempty"` // 各仓库库存
}

// TableName 指定表名
func (Product) TableName() string {
	return "products"
}
