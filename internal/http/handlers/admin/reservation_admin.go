package admin

import (
	"strconv"

	"github.com/omniorder/internal/http/handlers/shared"
	"github.com/omniorder/internal/http/response"
	"github.com/omniorder/internal/repository"

	"github.com/gin-gonic/gin"
)

// ReservationReleaseRequest 手动释放预留请求
type ReservationReleaseRequest struct {
	Reason string `json:"reason"`
}

// GetReservations 预留列表
func (h *Handler) GetReservations(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	reservations, total, err := h.ReservationService.List(repository.ReservationListFilter{
		Page:        page,
		PageSize:    pageSize,
		ProductID:   shared.QueryUint(c, "product_id"),
		WarehouseID: shared.QueryUint(c, "warehouse_id"),
		Status:      c.Query("status"),
		Reference:   c.Query("reference"),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "reservation list failed", err)
		return
	}
	response.SuccessWithPage(c, reservations, buildPagination(page, pageSize, total))
}

// GetReservation 预留详情
func (h *Handler) GetReservation(c *gin.Context) {
	id, ok := shared.ParseUintParam(c, "id")
	if !ok {
		return
	}
	reservation, err := h.ReservationService.GetByID(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, reservation)
}

// ReleaseReservation 手动释放预留，库存回到可售
func (h *Handler) ReleaseReservation(c *gin.Context) {
	id, ok := shared.ParseUintParam(c, "id")
	if !ok {
		return
	}
	var req ReservationReleaseRequest
	_ = c.ShouldBindJSON(&req)
	if err := h.ReservationService.Release(id, req.Reason); err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, nil)
}
