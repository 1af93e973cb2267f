package webhook

import (
	"io"

	"github.com/omniorder/internal/channel"
	"github.com/omniorder/internal/http/handlers/shared"
	"github.com/omniorder/internal/http/response"
	"github.com/omniorder/internal/provider"
	"github.com/omniorder/internal/queue"

	"github.com/gin-gonic/gin"
)

// Handler 渠道回调处理器：验签后接收渠道订单推送
type Handler struct {
	*provider.Container
}

// New 创建回调处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}

// ReceiveOrder 接收渠道订单回调。
// 配置了回调密钥的渠道必须通过 HMAC 验签，未配置密钥的渠道跳过验签。
// 队列可用时异步导入并立即应答，避免渠道侧超时重发。
func (h *Handler) ReceiveOrder(c *gin.Context) {
	channelID, ok := shared.ParseUintParam(c, "channel_id")
	if !ok {
		return
	}
	ch, err := h.ChannelService.GetByID(channelID)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	if !ch.IsActive {
		shared.RespondError(c, response.CodeBadRequest, "channel disabled", nil)
		return
	}
	adapter, err := h.Registry.Get(ch.ChannelType)
	if err != nil {
		shared.RespondError(c, response.CodeBadRequest, "unsupported channel type", nil)
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil || len(body) == 0 {
		shared.RespondError(c, response.CodeBadRequest, "empty body", err)
		return
	}

	signature := c.GetHeader(adapter.SignatureHeader())
	if !channel.VerifyHMAC(ch.WebhookSecret(), signature, body) {
		shared.RequestLog(c).Warnw("webhook_signature_rejected",
			"channel_id", ch.ID,
			"channel_type", ch.ChannelType,
		)
		shared.RespondError(c, response.CodeUnauthorized, "invalid signature", nil)
		return
	}

	if h.QueueClient != nil && h.QueueClient.Enabled() {
		err := h.QueueClient.EnqueueOrderImport(queue.OrderImportPayload{
			ChannelID: ch.ID,
			RawOrder:  body,
		})
		if err == nil {
			response.SuccessWithMsg(c, "accepted", nil)
			return
		}
		shared.RequestLog(c).Warnw("webhook_enqueue_failed", "channel_id", ch.ID, "error", err)
	}

	// 队列不可用时降级为同步导入
	result, err := h.ImportService.ImportRaw(ch.ID, body)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, gin.H{
		"order_no": result.Order.OrderNo,
		"created":  result.Created,
	})
}
