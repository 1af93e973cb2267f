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

// RuleUpsertRequest 自动化规则创建/更新请求
type RuleUpsertRequest struct {
	TenantID     uint        `json:"tenant_id"`
	Name         string      `json:"name"`
	Description  string      `json:"description"`
	TriggerEvent string      `json:"trigger_event"`
	Conditions   models.JSON `json:"conditions"`
	Actions      models.JSON `json:"actions"`
	Priority     *int        `json:"priority"`
	IsActive     *bool       `json:"is_active"`
}

// GetRules 规则列表
func (h *Handler) GetRules(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	rules, total, err := h.AutomationService.ListRules(repository.RuleListFilter{
		Page:         page,
		PageSize:     pageSize,
		TenantID:     shared.QueryUint(c, "tenant_id"),
		TriggerEvent: c.Query("trigger_event"),
		OnlyActive:   c.Query("only_active") == "true",
	})
	if err != nil {
		respondError(c, response.CodeInternal, "rule list failed", err)
		return
	}
	response.SuccessWithPage(c, rules, buildPagination(page, pageSize, total))
}

// GetRule 规则详情
func (h *Handler) GetRule(c *gin.Context) {
	id, ok := shared.ParseUintParam(c, "id")
	if !ok {
		return
	}
	rule, err := h.AutomationService.GetRule(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, rule)
}

// CreateRule 创建规则
func (h *Handler) CreateRule(c *gin.Context) {
	var req RuleUpsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	rule, err := h.AutomationService.CreateRule(service.RuleInput(req))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, rule)
}

// UpdateRule 更新规则
func (h *Handler) UpdateRule(c *gin.Context) {
	id, ok := shared.ParseUintParam(c, "id")
	if !ok {
		return
	}
	var req RuleUpsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	rule, err := h.AutomationService.UpdateRule(id, service.RuleInput(req))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, rule)
}

// DeleteRule 删除规则
func (h *Handler) DeleteRule(c *gin.Context) {
	id, ok := shared.ParseUintParam(c, "id")
	if !ok {
		return
	}
	if err := h.AutomationService.DeleteRule(id); err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, nil)
}
