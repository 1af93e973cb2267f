package admin

import (
	"strconv"
	"time"

	"github.com/omniorder/internal/channel"
	"github.com/omniorder/internal/http/handlers/shared"
	"github.com/omniorder/internal/http/response"
	"github.com/omniorder/internal/models"
	"github.com/omniorder/internal/repository"

	"github.com/gin-gonic/gin"
)

// OrderStatusRequest 订单状态流转请求
type OrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// OrderCancelRequest 订单取消请求
type OrderCancelRequest struct {
	Reason string `json:"reason"`
}

// BulkImportRequest 批量导入标准化订单请求
type BulkImportRequest struct {
	ChannelID uint                     `json:"channel_id" binding:"required"`
	Orders    []channel.CanonicalOrder `json:"orders" binding:"required"`
}

// GetOrders 订单列表
func (h *Handler) GetOrders(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	filter := repository.OrderListFilter{
		Page:          page,
		PageSize:      pageSize,
		TenantID:      shared.QueryUint(c, "tenant_id"),
		ChannelID:     shared.QueryUint(c, "channel_id"),
		Status:        c.Query("status"),
		PaymentStatus: c.Query("payment_status"),
		OrderNo:       c.Query("order_no"),
		CustomerEmail: c.Query("customer_email"),
	}
	if raw := c.Query("created_from"); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			filter.CreatedFrom = &t
		}
	}
	if raw := c.Query("created_to"); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			filter.CreatedTo = &t
		}
	}

	orders, total, err := h.OrderService.List(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "order list failed", err)
		return
	}
	response.SuccessWithPage(c, orders, buildPagination(page, pageSize, total))
}

// GetOrder 订单详情
func (h *Handler) GetOrder(c *gin.Context) {
	id, ok := shared.ParseUintParam(c, "id")
	if !ok {
		return
	}
	order, err := h.OrderService.GetByID(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, order)
}

// UpdateOrderStatus 订单状态流转
func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	id, ok := shared.ParseUintParam(c, "id")
	if !ok {
		return
	}
	var req OrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	order, err := h.OrderService.UpdateStatus(id, req.Status)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, order)
}

// CancelOrder 取消订单并释放预留
func (h *Handler) CancelOrder(c *gin.Context) {
	id, ok := shared.ParseUintParam(c, "id")
	if !ok {
		return
	}
	var req OrderCancelRequest
	_ = c.ShouldBindJSON(&req)
	order, err := h.OrderService.CancelOrder(id, req.Reason)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, order)
}

// AllocateOrderItem 订单行分配
func (h *Handler) AllocateOrderItem(c *gin.Context) {
	h.transitionOrderItem(c, h.OrderService.AllocateItem)
}

// PickOrderItem 订单行拣货
func (h *Handler) PickOrderItem(c *gin.Context) {
	h.transitionOrderItem(c, h.OrderService.PickItem)
}

// PackOrderItem 订单行打包
func (h *Handler) PackOrderItem(c *gin.Context) {
	h.transitionOrderItem(c, h.OrderService.PackItem)
}

// ShipOrderItem 订单行发货（库存出库）
func (h *Handler) ShipOrderItem(c *gin.Context) {
	h.transitionOrderItem(c, h.OrderService.ShipItem)
}

// BulkImportOrders 批量导入标准化订单
func (h *Handler) BulkImportOrders(c *gin.Context) {
	var req BulkImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	report, err := h.ImportService.BatchImport(req.ChannelID, req.Orders)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, report)
}

func (h *Handler) transitionOrderItem(c *gin.Context, fn func(uint) (*models.OrderItem, error)) {
	itemID, ok := shared.ParseUintParam(c, "item_id")
	if !ok {
		return
	}
	item, err := fn(itemID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, item)
}
