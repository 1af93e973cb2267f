package admin

import (
	"strconv"

	"github.com/omniorder/internal/http/handlers/shared"
	"github.com/omniorder/internal/http/response"
	"github.com/omniorder/internal/models"
	"github.com/omniorder/internal/queue"
	"github.com/omniorder/internal/repository"
	"github.com/omniorder/internal/service"

	"github.com/gin-gonic/gin"
)

// ChannelUpsertRequest 渠道创建/更新请求
type ChannelUpsertRequest struct {
	TenantID           uint        `json:"tenant_id"`
	Name               string      `json:"name"`
	ChannelType        string      `json:"channel_type"`
	Credentials        models.JSON `json:"credentials"`
	Settings           models.JSON `json:"settings"`
	DefaultWarehouseID *uint       `json:"default_warehouse_id"`
	IsActive           *bool       `json:"is_active"`
}

// GetChannels 渠道列表
func (h *Handler) GetChannels(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	channels, total, err := h.ChannelService.List(repository.ChannelListFilter{
		Page:        page,
		PageSize:    pageSize,
		TenantID:    shared.QueryUint(c, "tenant_id"),
		ChannelType: c.Query("channel_type"),
		Search:      c.Query("search"),
		OnlyActive:  c.Query("only_active") == "true",
	})
	if err != nil {
		respondError(c, response.CodeInternal, "channel list failed", err)
		return
	}
	response.SuccessWithPage(c, channels, buildPagination(page, pageSize, total))
}

// GetChannel 渠道详情
func (h *Handler) GetChannel(c *gin.Context) {
	id, ok := shared.ParseUintParam(c, "id")
	if !ok {
		return
	}
	ch, err := h.ChannelService.GetByID(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, ch)
}

// CreateChannel 创建渠道
func (h *Handler) CreateChannel(c *gin.Context) {
	var req ChannelUpsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	ch, err := h.ChannelService.Create(service.ChannelInput{
		TenantID:           req.TenantID,
		Name:               req.Name,
		ChannelType:        req.ChannelType,
		Credentials:        req.Credentials,
		Settings:           req.Settings,
		DefaultWarehouseID: req.DefaultWarehouseID,
		IsActive:           req.IsActive,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, ch)
}

// UpdateChannel 更新渠道
func (h *Handler) UpdateChannel(c *gin.Context) {
	id, ok := shared.ParseUintParam(c, "id")
	if !ok {
		return
	}
	var req ChannelUpsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	ch, err := h.ChannelService.Update(id, service.ChannelInput{
		Name:               req.Name,
		Credentials:        req.Credentials,
		Settings:           req.Settings,
		DefaultWarehouseID: req.DefaultWarehouseID,
		IsActive:           req.IsActive,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, ch)
}

// DeactivateChannel 停用渠道
func (h *Handler) DeactivateChannel(c *gin.Context) {
	id, ok := shared.ParseUintParam(c, "id")
	if !ok {
		return
	}
	if err := h.ChannelService.Deactivate(id); err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, nil)
}

// TestChannelConnection 渠道连通性检测
func (h *Handler) TestChannelConnection(c *gin.Context) {
	id, ok := shared.ParseUintParam(c, "id")
	if !ok {
		return
	}
	ch, err := h.ChannelService.TestConnection(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, ch)
}

// TriggerChannelSync 手动触发渠道库存同步
func (h *Handler) TriggerChannelSync(c *gin.Context) {
	id, ok := shared.ParseUintParam(c, "id")
	if !ok {
		return
	}
	if _, err := h.ChannelService.GetByID(id); err != nil {
		respondServiceError(c, err)
		return
	}
	if h.QueueClient != nil && h.QueueClient.Enabled() {
		if err := h.QueueClient.EnqueueChannelStockSync(queue.ChannelStockSyncPayload{ChannelID: id}); err != nil {
			respondError(c, response.CodeInternal, "sync enqueue failed", err)
			return
		}
		response.SuccessWithMsg(c, "sync scheduled", nil)
		return
	}
	// 队列未启用时同步执行
	report, err := h.SyncService.SyncStockToChannel(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, report)
}
