package admin

import (
	"strconv"

	"github.com/omniorder/internal/http/handlers/shared"
	"github.com/omniorder/internal/http/response"
	"github.com/omniorder/internal/models"
	"github.com/omniorder/internal/repository"
	"github.com/omniorder/internal/service"

	"github.com/gin-gonic/gin"
)

// MappingUpsertRequest SKU 映射创建/更新请求
type MappingUpsertRequest struct {
	ChannelID     uint          `json:"channel_id"`
	ChannelSKU    string        `json:"channel_sku"`
	ProductID     *uint         `json:"product_id"`
	BundleID      *uint         `json:"bundle_id"`
	PriceOverride *models.Money `json:"price_override"`
	StockOverride *int          `json:"stock_override"`
	IsActive      *bool         `json:"is_active"`
}

// GetMappings 映射列表
func (h *Handler) GetMappings(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	mappings, total, err := h.MappingService.List(repository.SKUMappingListFilter{
		Page:       page,
		PageSize:   pageSize,
		ChannelID:  shared.QueryUint(c, "channel_id"),
		ProductID:  shared.QueryUint(c, "product_id"),
		Search:     c.Query("search"),
		OnlyActive: c.Query("only_active") == "true",
	})
	if err != nil {
		respondError(c, response.CodeInternal, "mapping list failed", err)
		return
	}
	response.SuccessWithPage(c, mappings, buildPagination(page, pageSize, total))
}

// CreateMapping 创建映射
func (h *Handler) CreateMapping(c *gin.Context) {
	var req MappingUpsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	mapping, err := h.MappingService.Create(service.MappingInput(req))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, mapping)
}

// UpdateMapping 更新映射
func (h *Handler) UpdateMapping(c *gin.Context) {
	id, ok := shared.ParseUintParam(c, "id")
	if !ok {
		return
	}
	var req MappingUpsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	mapping, err := h.MappingService.Update(id, service.MappingInput(req))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, mapping)
}

// DeleteMapping 删除映射
func (h *Handler) DeleteMapping(c *gin.Context) {
	id, ok := shared.ParseUintParam(c, "id")
	if !ok {
		return
	}
	if err := h.MappingService.Delete(id); err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, nil)
}
