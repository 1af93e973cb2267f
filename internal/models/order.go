package models

import (
	"time"

	"gorm.io/gorm"
)

// Order 订单表（多渠道统一订单）
type Order struct {
	ID                  uint           `gorm:"primarykey" json:"id"`                                          // 主键
	TenantID            uint           `gorm:"index;not null" json:"tenant_id"`                               // 租户ID
	OrderNo             string         `gorm:"uniqueIndex;not null" json:"order_no"`                          // 内部订单编号
	ChannelID           uint           `gorm:"uniqueIndex:uk_channel_external;not null" json:"channel_id"`    // 渠道ID
	ExternalID          *string        `gorm:"type:varchar(100);uniqueIndex:uk_channel_external" json:"external_id,omitempty"` // 渠道侧订单ID（幂等键）
	Status              string         `gorm:"type:varchar(20);index;not null" json:"status"`                 // 订单状态
	PaymentStatus       string         `gorm:"type:varchar(20);index;not null;default:'pending'" json:"payment_status"` // 支付状态
	Currency            string         `gorm:"type:varchar(10);not null;default:'USD'" json:"currency"`       // 币种
	Subtotal            Money          `gorm:"type:decimal(20,2);not null;default:0" json:"subtotal"`         // 商品小计
	ShippingAmount      Money          `gorm:"type:decimal(20,2);not null;default:0" json:"shipping_amount"`  // 运费
	TaxAmount           Money          `gorm:"type:decimal(20,2);not null;default:0" json:"tax_amount"`       // 税费
	DiscountAmount      Money          `gorm:"type:decimal(20,2);not null;default:0" json:"discount_amount"`  // 优惠金额
	TotalAmount         Money          `gorm:"type:decimal(20,2);not null;default:0" json:"total_amount"`     // 订单总额
	CustomerName        string         `gorm:"type:varchar(200)" json:"customer_name,omitempty"`              // 客户姓名
	CustomerEmail       string         `gorm:"type:varchar(200);index" json:"customer_email,omitempty"`       // 客户邮箱
	CustomerPhone       string         `gorm:"type:varchar(50)" json:"customer_phone,omitempty"`              // 客户电话
	ShippingAddressJSON JSON           `gorm:"type:json" json:"shipping_address"`                             // 收货地址
	Priority            int            `gorm:"default:0;index" json:"priority"`                               // 处理优先级（自动化规则可写）
	Tags                StringArray    `gorm:"type:json" json:"tags"`                                         // 标签（自动化规则可写）
	AssignedWarehouseID *uint          `gorm:"index" json:"assigned_warehouse_id,omitempty"`                  // 指派仓库ID（自动化规则可写）
	AppliedRuleIDs      UintArray      `gorm:"type:json" json:"applied_rule_ids"`                             // 已应用的自动化规则ID
	RawPayloadJSON      JSON           `gorm:"type:json" json:"-"`                                            // 渠道原始载荷
	Notes               string         `gorm:"type:varchar(1000)" json:"notes,omitempty"`                     // 备注
	OrderedAt           *time.Time     `gorm:"index" json:"ordered_at"`                                       // 渠道下单时间
	ShippedAt           *time.Time     `gorm:"index" json:"shipped_at"`                                       // 发货时间
	CanceledAt          *time.Time     `gorm:"index" json:"canceled_at"`                                      // 取消时间
	CreatedAt           time.Time      `gorm:"index" json:"created_at"`                                       // 创建时间（导入时间）
	UpdatedAt           time.Time      `gorm:"index" json:"updated_at"`                                       // 更新时间
	DeletedAt           gorm.DeletedAt `gorm:"index" json:"-"`                                                // 软删除时间

	// 关联
	Channel           *Channel    `gorm:"foreignKey:ChannelID" json:"channel,omitempty"`                      // 渠道信息
	AssignedWarehouse *Warehouse  `gorm:"foreignKey:AssignedWarehouseID" json:"assigned_warehouse,omitempty"` // 指派仓库
	Items             []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"`                          // 订单行
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}
