package models

import (
	"time"

	"gorm.io/gorm"
)

// AutomationRule 自动化规则表
type AutomationRule struct {
	ID             uint           `gorm:"primarykey" json:"id"`                                  // 主键
	TenantID       uint           `gorm:"index;not null" json:"tenant_id"`                       // 租户ID
	Name           string         `gorm:"type:varchar(200);not null" json:"name"`                // 规则名称
	Description    string         `gorm:"type:varchar(500)" json:"description,omitempty"`        // 描述
	TriggerEvent   string         `gorm:"type:varchar(50);index;not null" json:"trigger_event"`  // 触发事件（order_placed）
	ConditionsJSON JSON           `gorm:"type:json" json:"conditions"`                           // 条件（全部满足才触发）
	ActionsJSON    JSON           `gorm:"type:json" json:"actions"`                              // 动作（按声明顺序执行）
	Priority       int            `gorm:"default:0;index" json:"priority"`                       // 优先级（大者先执行）
	IsActive       bool           `gorm:"default:true;index" json:"is_active"`                   // 是否启用
	LastTriggered  *time.Time     `json:"last_triggered,omitempty"`                              // 最近触发时间
	TriggerCount   int            `gorm:"default:0" json:"trigger_count"`                        // 累计触发次数
	CreatedAt      time.Time      `gorm:"index" json:"created_at"`                               // 创建时间
	UpdatedAt      time.Time      `json:"updated_at"`                                            // 更新时间
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`                                        // 软删除时间
}

// TableName 指定表名
func (AutomationRule) TableName() string {
	return "automation_rules"
}
