package service

import "errors"

// 业务错误定义，处理器按 errors.Is 映射响应码
var (
	ErrChannelNotFound      = errors.New("channel not found")
	ErrChannelDisabled      = errors.New("channel disabled")
	ErrWarehouseNotFound    = errors.New("warehouse not found")
	ErrNoWarehouseAvailable = errors.New("no warehouse available for reservation")
	ErrProductNotFound      = errors.New("product not found")
	ErrBundleNotFound       = errors.New("bundle not found")
	ErrOrderNotFound        = errors.New("order not found")
	ErrOrderItemNotFound    = errors.New("order item not found")
	ErrReservationNotFound  = errors.New("reservation not found")
	ErrStockLevelNotFound   = errors.New("stock level not found")
	ErrInsufficientStock    = errors.New("insufficient stock")
	ErrReservationTerminal  = errors.New("reservation already in terminal state")
	ErrInvalidQuantity      = errors.New("invalid quantity")
	ErrInvalidStockDeltas   = errors.New("stock deltas must be zero-sum for transfer reasons")
	ErrInvalidOrderStatus   = errors.New("invalid order status transition")
	ErrInvalidItemStatus    = errors.New("invalid order item status transition")
	ErrMappingNotFound      = errors.New("sku mapping not found")
	ErrInvalidMappingTarget = errors.New("mapping must target exactly one product or bundle")
	ErrMappingConflict      = errors.New("sku mapping conflict")
	ErrRuleNotFound         = errors.New("automation rule not found")
	ErrEmptyOrder           = errors.New("order has no line items")
	ErrInvalidSignature     = errors.New("invalid webhook signature")
	ErrUnsupportedChannel   = errors.New("unsupported channel type")
	ErrQueueUnavailable     = errors.New("queue unavailable")
)
