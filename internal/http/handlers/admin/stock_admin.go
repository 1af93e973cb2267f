package admin

import (
	"strconv"

	"github.com/omniorder/internal/constants"
	"github.com/omniorder/internal/http/handlers/shared"
	"github.com/omniorder/internal/http/response"
	"github.com/omniorder/internal/repository"
	"github.com/omniorder/internal/service"

	"github.com/gin-gonic/gin"
)

// StockAdjustRow 单条库存调整
type StockAdjustRow struct {
	ProductID   uint   `json:"product_id" binding:"required"`
	WarehouseID uint   `json:"warehouse_id" binding:"required"`
	Available   int    `json:"available"`
	Damaged     int    `json:"damaged"`
	OnOrder     int    `json:"on_order"`
	Reason      string `json:"reason"`
	Notes       string `json:"notes"`
}

// StockAdjustRequest 批量库存调整请求
type StockAdjustRequest struct {
	Rows []StockAdjustRow `json:"rows" binding:"required"`
}

// StockAdjustResult 单条调整结果
type StockAdjustResult struct {
	ProductID   uint   `json:"product_id"`
	WarehouseID uint   `json:"warehouse_id"`
	OK          bool   `json:"ok"`
	Error       string `json:"error,omitempty"`
}

// StockInRequest 入库请求
type StockInRequest struct {
	ProductID   uint   `json:"product_id" binding:"required"`
	WarehouseID uint   `json:"warehouse_id" binding:"required"`
	Quantity    int    `json:"quantity" binding:"required"`
	Reference   string `json:"reference"`
	Notes       string `json:"notes"`
}

// GetStockLevels 库存水平列表
func (h *Handler) GetStockLevels(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	levels, total, err := h.LedgerService.ListStockLevels(repository.StockLevelListFilter{
		Page:         page,
		PageSize:     pageSize,
		ProductID:    shared.QueryUint(c, "product_id"),
		WarehouseID:  shared.QueryUint(c, "warehouse_id"),
		TenantID:     shared.QueryUint(c, "tenant_id"),
		BelowReorder: c.Query("below_reorder") == "true",
	})
	if err != nil {
		respondError(c, response.CodeInternal, "stock level list failed", err)
		return
	}
	response.SuccessWithPage(c, levels, buildPagination(page, pageSize, total))
}

// AdjustStock 批量手工调整库存，逐条处理并汇总结果
func (h *Handler) AdjustStock(c *gin.Context) {
	var req StockAdjustRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	if len(req.Rows) == 0 {
		respondError(c, response.CodeBadRequest, "no rows", nil)
		return
	}

	results := make([]StockAdjustResult, 0, len(req.Rows))
	for _, row := range req.Rows {
		result := StockAdjustResult{ProductID: row.ProductID, WarehouseID: row.WarehouseID, OK: true}
		reason := row.Reason
		if reason == "" {
			reason = "manual adjustment"
		}
		_, err := h.LedgerService.Adjust(service.AdjustStockInput{
			ProductID:   row.ProductID,
			WarehouseID: row.WarehouseID,
			Deltas: repository.StockDeltas{
				Available: row.Available,
				Damaged:   row.Damaged,
				OnOrder:   row.OnOrder,
			},
			MovementType: constants.MovementTypeAdjustment,
			Reason:       reason,
			Notes:        row.Notes,
		})
		if err != nil {
			result.OK = false
			result.Error = err.Error()
		}
		results = append(results, result)
	}
	response.Success(c, results)
}

// StockIn 采购入库
func (h *Handler) StockIn(c *gin.Context) {
	var req StockInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	movement, err := h.LedgerService.StockIn(req.ProductID, req.WarehouseID, req.Quantity, req.Reference, req.Notes)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, movement)
}

// GetStockMovements 库存流水列表
func (h *Handler) GetStockMovements(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	movements, total, err := h.LedgerService.ListMovements(repository.MovementListFilter{
		Page:         page,
		PageSize:     pageSize,
		ProductID:    shared.QueryUint(c, "product_id"),
		WarehouseID:  shared.QueryUint(c, "warehouse_id"),
		MovementType: c.Query("movement_type"),
		Reference:    c.Query("reference"),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "movement list failed", err)
		return
	}
	response.SuccessWithPage(c, movements, buildPagination(page, pageSize, total))
}
