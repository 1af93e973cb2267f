package repository

import "time"

// ChannelListFilter 查询渠道列表的过滤条件
type ChannelListFilter struct {
	Page        int
	PageSize    int
	TenantID    uint
	ChannelType string
	Search      string
	OnlyActive  bool
}

// WarehouseListFilter 查询仓库列表的过滤条件
type WarehouseListFilter struct {
	Page       int
	PageSize   int
	TenantID   uint
	Search     string
	OnlyActive bool
}

// ProductListFilter 查询商品列表的过滤条件
type ProductListFilter struct {
	Page       int
	PageSize   int
	TenantID   uint
	Search     string
	OnlyActive bool
}

// SKUMappingListFilter 查询 SKU 映射列表的过滤条件
type SKUMappingListFilter struct {
	Page       int
	PageSize   int
	ChannelID  uint
	ProductID  uint
	Search     string
	OnlyActive bool
}

// BundleListFilter 查询套装列表的过滤条件
type BundleListFilter struct {
	Page       int
	PageSize   int
	TenantID   uint
	Search     string
	OnlyActive bool
}

// OrderListFilter 查询订单列表的过滤条件
type OrderListFilter struct {
	Page          int
	PageSize      int
	TenantID      uint
	ChannelID     uint
	Status        string
	PaymentStatus string
	OrderNo       string
	CustomerEmail string
	CreatedFrom   *time.Time
	CreatedTo     *time.Time
}

// StockLevelListFilter 查询库存列表的过滤条件
type StockLevelListFilter struct {
	Page         int
	PageSize     int
	ProductID    uint
	WarehouseID  uint
	TenantID     uint
	BelowReorder bool
}

// ReservationListFilter 查询预留列表的过滤条件
type ReservationListFilter struct {
	Page        int
	PageSize    int
	ProductID   uint
	WarehouseID uint
	Status      string
	Reference   string
}

// MovementListFilter 查询库存流水列表的过滤条件
type MovementListFilter struct {
	Page         int
	PageSize     int
	ProductID    uint
	WarehouseID  uint
	MovementType string
	Reference    string
	CreatedFrom  *time.Time
	CreatedTo    *time.Time
}

// RuleListFilter 查询自动化规则列表的过滤条件
type RuleListFilter struct {
	Page         int
	PageSize     int
	TenantID     uint
	TriggerEvent string
	OnlyActive   bool
}

// SyncLogListFilter 查询同步日志列表的过滤条件
type SyncLogListFilter struct {
	Page        int
	PageSize    int
	ChannelID   uint
	SyncType    string
	Status      string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}
