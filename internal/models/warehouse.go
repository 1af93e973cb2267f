package models

import (
	"time"

	"gorm.io/gorm"
)

// Warehouse 仓库表
type Warehouse struct {
	ID        uint           `gorm:"primarykey" json:"id"`                       // 主键
	TenantID  uint           `gorm:"index;not null" json:"tenant_id"`            // 租户ID
	Name      string         `gorm:"type:varchar(100);not null" json:"name"`     // 仓库名称
	Code      string         `gorm:"type:varchar(50);index;not null" json:"code"` // 仓库编码
	Address   string         `gorm:"type:varchar(500)" json:"address,omitempty"` // 仓库地址
	IsDefault bool           `gorm:"default:false;index" json:"is_default"`      // 是否为租户默认仓库（每租户至多一个）
	IsActive  bool           `gorm:"default:true;index" json:"is_active"`        // 是否启用
	CreatedAt time.Time      `gorm:"index" json:"created_at"`                    // 创建时间
	UpdatedAt time.Time      `json:"updated_at"`                                 // 更新时间
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`                             // 软删除时间
}

// TableName 指定表名
func (Warehouse) TableName() string {
	return "warehouses"
}
