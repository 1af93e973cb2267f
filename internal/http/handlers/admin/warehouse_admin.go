package admin

import (
	"strconv"

	"github.com/omniorder/internal/http/handlers/shared"
	"github.com/omniorder/internal/http/response"
	"github.com/omniorder/internal/repository"
	"github.com/omniorder/internal/service"

	"github.com/gin-gonic/gin"
)

// WarehouseUpsertRequest 仓库创建/更新请求
type WarehouseUpsertRequest struct {
	TenantID  uint   `json:"tenant_id"`
	Name      string `json:"name"`
	Code      string `json:"code"`
	Address   string `json:"address"`
	IsDefault bool   `json:"is_default"`
	IsActive  *bool  `json:"is_active"`
}

// GetWarehouses 仓库列表
func (h *Handler) GetWarehouses(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	warehouses, total, err := h.WarehouseService.List(repository.WarehouseListFilter{
		Page:       page,
		PageSize:   pageSize,
		TenantID:   shared.QueryUint(c, "tenant_id"),
		Search:     c.Query("search"),
		OnlyActive: c.Query("only_active") == "true",
	})
	if err != nil {
		respondError(c, response.CodeInternal, "warehouse list failed", err)
		return
	}
	response.SuccessWithPage(c, warehouses, buildPagination(page, pageSize, total))
}

// GetWarehouse 仓库详情
func (h *Handler) GetWarehouse(c *gin.Context) {
	id, ok := shared.ParseUintParam(c, "id")
	if !ok {
		return
	}
	warehouse, err := h.WarehouseService.GetByID(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, warehouse)
}

// CreateWarehouse 创建仓库
func (h *Handler) CreateWarehouse(c *gin.Context) {
	var req WarehouseUpsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	warehouse, err := h.WarehouseService.Create(service.WarehouseInput(req))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, warehouse)
}

// UpdateWarehouse 更新仓库
func (h *Handler) UpdateWarehouse(c *gin.Context) {
	id, ok := shared.ParseUintParam(c, "id")
	if !ok {
		return
	}
	var req WarehouseUpsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	warehouse, err := h.WarehouseService.Update(id, service.WarehouseInput(req))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, warehouse)
}
