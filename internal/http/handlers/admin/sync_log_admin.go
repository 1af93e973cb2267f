package admin

import (
	"strconv"
	"time"

	"github.com/omniorder/internal/http/handlers/shared"
	"github.com/omniorder/internal/http/response"
	"github.com/omniorder/internal/repository"

	"github.com/gin-gonic/gin"
)

// GetSyncLogs 同步日志列表
func (h *Handler) GetSyncLogs(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	filter := repository.SyncLogListFilter{
		Page:      page,
		PageSize:  pageSize,
		ChannelID: shared.QueryUint(c, "channel_id"),
		SyncType:  c.Query("sync_type"),
		Status:    c.Query("status"),
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

	logs, total, err := h.SyncLogRepo.List(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "sync log list failed", err)
		return
	}
	response.SuccessWithPage(c, logs, buildPagination(page, pageSize, total))
}
