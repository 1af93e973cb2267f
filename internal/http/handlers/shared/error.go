package shared

import (
	"errors"

	"github.com/omniorder/internal/http/response"
	"github.com/omniorder/internal/logger"
	"github.com/omniorder/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestLog 提供携带 request_id 的日志实例。
func RequestLog(c *gin.Context) *zap.SugaredLogger {
	if c == nil {
		return logger.S()
	}
	if requestID, ok := c.Get("request_id"); ok {
		if id, ok := requestID.(string); ok && id != "" {
			return logger.SW("request_id", id)
		}
	}
	return logger.S()
}

// RespondError 返回错误响应，并在有原始错误时记录日志。
func RespondError(c *gin.Context, code int, msg string, err error) {
	appErr := response.WrapError(code, msg, err)
	if err != nil {
		RequestLog(c).Errorw("handler_error",
			"code", appErr.Code,
			"message", appErr.Message,
			"error", err,
		)
	}
	response.Error(c, appErr.Code, appErr.Message)
}

// RespondServiceError 按业务错误映射响应码。
func RespondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrChannelNotFound),
		errors.Is(err, service.ErrWarehouseNotFound),
		errors.Is(err, service.ErrProductNotFound),
		errors.Is(err, service.ErrBundleNotFound),
		errors.Is(err, service.ErrOrderNotFound),
		errors.Is(err, service.ErrOrderItemNotFound),
		errors.Is(err, service.ErrReservationNotFound),
		errors.Is(err, service.ErrStockLevelNotFound),
		errors.Is(err, service.ErrMappingNotFound),
		errors.Is(err, service.ErrRuleNotFound):
		RespondError(c, response.CodeNotFound, err.Error(), nil)
	case errors.Is(err, service.ErrMappingConflict):
		RespondError(c, response.CodeConflict, err.Error(), nil)
	case errors.Is(err, service.ErrInvalidSignature):
		RespondError(c, response.CodeUnauthorized, err.Error(), nil)
	case errors.Is(err, service.ErrChannelDisabled),
		errors.Is(err, service.ErrNoWarehouseAvailable),
		errors.Is(err, service.ErrInsufficientStock),
		errors.Is(err, service.ErrReservationTerminal),
		errors.Is(err, service.ErrInvalidQuantity),
		errors.Is(err, service.ErrInvalidStockDeltas),
		errors.Is(err, service.ErrInvalidOrderStatus),
		errors.Is(err, service.ErrInvalidItemStatus),
		errors.Is(err, service.ErrInvalidMappingTarget),
		errors.Is(err, service.ErrEmptyOrder),
		errors.Is(err, service.ErrUnsupportedChannel):
		RespondError(c, response.CodeBadRequest, err.Error(), nil)
	default:
		RespondError(c, response.CodeInternal, "internal error", err)
	}
}
