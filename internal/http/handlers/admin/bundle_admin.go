package admin

import (
	"strconv"
	"strings"

	"github.com/omniorder/internal/http/handlers/shared"
	"github.com/omniorder/internal/http/response"
	"github.com/omniorder/internal/models"
	"github.com/omniorder/internal/repository"

	"github.com/gin-gonic/gin"
)

// BundleComponentRequest 套装组件
type BundleComponentRequest struct {
	ProductID  uint `json:"product_id" binding:"required"`
	Quantity   int  `json:"quantity"`
	IsOptional bool `json:"is_optional"`
}

// BundleUpsertRequest 套装创建/更新请求
type BundleUpsertRequest struct {
	TenantID    uint                     `json:"tenant_id"`
	Name        string                   `json:"name"`
	SKU         string                   `json:"sku"`
	Description string                   `json:"description"`
	IsActive    *bool                    `json:"is_active"`
	Components  []BundleComponentRequest `json:"components"`
}

// GetBundles 套装列表
func (h *Handler) GetBundles(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	bundles, total, err := h.BundleService.List(repository.BundleListFilter{
		Page:       page,
		PageSize:   pageSize,
		TenantID:   shared.QueryUint(c, "tenant_id"),
		Search:     c.Query("search"),
		OnlyActive: c.Query("only_active") == "true",
	})
	if err != nil {
		respondError(c, response.CodeInternal, "bundle list failed", err)
		return
	}
	response.SuccessWithPage(c, bundles, buildPagination(page, pageSize, total))
}

// GetBundle 套装详情
func (h *Handler) GetBundle(c *gin.Context) {
	id, ok := shared.ParseUintParam(c, "id")
	if !ok {
		return
	}
	bundle, err := h.BundleService.GetByID(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, bundle)
}

// CreateBundle 创建套装
func (h *Handler) CreateBundle(c *gin.Context) {
	var req BundleUpsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	if len(req.Components) == 0 {
		respondError(c, response.CodeBadRequest, "bundle needs at least one component", nil)
		return
	}

	bundle := &models.ProductBundle{
		TenantID:    req.TenantID,
		Name:        strings.TrimSpace(req.Name),
		SKU:         strings.TrimSpace(req.SKU),
		Description: req.Description,
		IsActive:    true,
	}
	if req.IsActive != nil {
		bundle.IsActive = *req.IsActive
	}
	if err := h.BundleService.Create(bundle, buildComponents(req.Components)); err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, bundle)
}

// UpdateBundle 更新套装与组件
func (h *Handler) UpdateBundle(c *gin.Context) {
	id, ok := shared.ParseUintParam(c, "id")
	if !ok {
		return
	}
	var req BundleUpsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	bundle, err := h.BundleService.GetByID(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if name := strings.TrimSpace(req.Name); name != "" {
		bundle.Name = name
	}
	if req.Description != "" {
		bundle.Description = req.Description
	}
	if req.IsActive != nil {
		bundle.IsActive = *req.IsActive
	}
	var components []models.BundleComponent
	if req.Components != nil {
		components = buildComponents(req.Components)
	}
	if err := h.BundleService.Update(bundle, components); err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, bundle)
}

func buildComponents(reqs []BundleComponentRequest) []models.BundleComponent {
	components := make([]models.BundleComponent, 0, len(reqs))
	for _, r := range reqs {
		quantity := r.Quantity
		if quantity <= 0 {
			quantity = 1
		}
		components = append(components, models.BundleComponent{
			ProductID:  r.ProductID,
			Quantity:   quantity,
			IsOptional: r.IsOptional,
		})
	}
	return components
}
