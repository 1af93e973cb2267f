package models

import (
	"time"

	"gorm.io/gorm"
)

// ProductBundle 商品套装表
type ProductBundle struct {
	ID          uint           `gorm:"primarykey" json:"id"`                                     // 主键
	TenantID    uint           `gorm:"index;not null" json:"tenant_id"`                          // 租户ID
	Name        string         `gorm:"type:varchar(200);not null" json:"name"`                   // 套装名称
	SKU         string         `gorm:"type:varchar(100);index;not null" json:"sku"`              // 套装 SKU
	Description string         `gorm:"type:text" json:"description,omitempty"`                   // 描述
	Price       Money          `gorm:"type:decimal(20,2);not null;default:0" json:"price"`       // 套装售价
	IsActive    bool           `gorm:"default:true;index" json:"is_active"`                      // 是否启用
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`                                  // 创建时间
	UpdatedAt   time.Time      `json:"updated_at"`                                               // 更新时间
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`                                           // 软删除时间

	// 关联
	Components []BundleComponent `gorm:"foreignKey:BundleID" json:"components,omitempty"` // 组件列表
}

// TableName 指定表名
func (ProductBundle) TableName() string {
	return "product_bundles"
}

// BundleComponent 套装组件表
type BundleComponent struct {
	ID         uint      `gorm:"primarykey" json:"id"`                                    // 主键
	BundleID   uint      `gorm:"uniqueIndex:uk_bundle_product;not null" json:"bundle_id"` // 套装ID
	ProductID  uint      `gorm:"uniqueIndex:uk_bundle_product;not null" json:"product_id"` // 商品ID
	Quantity   int       `gorm:"not null;default:1" json:"quantity"`                      // 每套数量
	IsOptional bool      `gorm:"default:false" json:"is_optional"`                        // 是否可选组件（缺货时不阻断整单）
	CreatedAt  time.Time `json:"created_at"`                                              // 创建时间

	// 关联
	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"` // 商品信息
}

// TableName 指定表名
func (BundleComponent) TableName() string {
	return "bundle_components"
}
