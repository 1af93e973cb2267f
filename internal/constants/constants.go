package constants

// 渠道类型常量
const (
	ChannelTypeShopify     = "shopify"
	ChannelTypeAmazon      = "amazon"
	ChannelTypeEbay        = "ebay"
	ChannelTypeWooCommerce = "woocommerce"
	ChannelTypePOS         = "pos"
	ChannelTypeManual      = "manual"
)

// 渠道同步状态常量
const (
	ChannelSyncStatusConnected    = "connected"
	ChannelSyncStatusError        = "error"
	ChannelSyncStatusDisconnected = "disconnected"
	ChannelSyncStatusSyncing      = "syncing"
)

// 订单状态常量
const (
	OrderStatusPending    = "pending"
	OrderStatusConfirmed  = "confirmed"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusReturned   = "returned"
	OrderStatusCanceled   = "canceled"
)

// 订单支付状态常量
const (
	PaymentStatusPending  = "pending"
	PaymentStatusPaid     = "paid"
	PaymentStatusRefunded = "refunded"
	PaymentStatusFailed   = "failed"
)

// 订单行状态常量
const (
	ItemStatusPending   = "pending"
	ItemStatusReserved  = "reserved"
	ItemStatusAllocated = "allocated"
	ItemStatusPicked    = "picked"
	ItemStatusPacked    = "packed"
	ItemStatusShipped   = "shipped"
	ItemStatusBackorder = "backorder"
	ItemStatusUnmapped  = "unmapped"
	ItemStatusCanceled  = "canceled"
)

// 预留状态常量
const (
	ReservationStatusActive    = "active"
	ReservationStatusFulfilled = "fulfilled"
	ReservationStatusCanceled  = "cancelled"
	ReservationStatusExpired   = "expired"
)

// 库存桶名称常量
const (
	StockBucketAvailable = "available"
	StockBucketReserved  = "reserved"
	StockBucketAllocated = "allocated"
	StockBucketDamaged   = "damaged"
	StockBucketOnOrder   = "on_order"
)

// 库存流水类型常量
const (
	MovementTypeIn         = "in"
	MovementTypeOut        = "out"
	MovementTypeAdjustment = "adjustment"
	MovementTypeReserve    = "reserve"
	MovementTypeRelease    = "release"
	MovementTypeAllocate   = "allocate"
	MovementTypeExpired    = "expired"
	MovementTypeDamaged    = "damaged"
	MovementTypeReturned   = "returned"
	MovementTypeTransfer   = "transfer"
)

// SKU 映射解析结果类型常量
const (
	ResolutionProduct    = "product"
	ResolutionBundle     = "bundle"
	ResolutionUnresolved = "unresolved"
)

// 自动化规则触发事件常量
const (
	RuleTriggerOrderPlaced = "order_placed"
)

// 自动化规则动作常量
const (
	RuleActionAssignWarehouse  = "assign_warehouse"
	RuleActionSetPriority      = "set_priority"
	RuleActionAddTags          = "add_tags"
	RuleActionSendNotification = "send_notification"
)

// 同步日志类型常量
const (
	SyncTypeOrderImport = "order_import"
	SyncTypeStockPush   = "stock_push"
	SyncTypeOrderStatus = "order_status"
)

// 同步日志状态常量
const (
	SyncLogStatusSuccess = "success"
	SyncLogStatusPartial = "partial"
	SyncLogStatusFailed  = "failed"
	SyncLogStatusWarning = "warning"
)

// 队列常量
const (
	QueueDefault             = "default"
	TaskChannelStockSync     = "channel:stock_sync"
	TaskReservationExpire    = "reservation:expire_sweep"
	TaskNotificationDispatch = "notification:dispatch"
	TaskOrderImport          = "order:import"
)

// 缓存默认配置常量
const (
	RedisPrefixDefault = "oo"
)
