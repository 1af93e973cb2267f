package channel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/omniorder/internal/models"
)

// StockPusher 库存推送传输层，渠道 API 调用的外部协作边界
type StockPusher interface {
	Push(ctx context.Context, ch *models.Channel, channelSKU string, quantity int) error
}

// HTTPPusher 基于 HTTP 的库存推送实现
type HTTPPusher struct {
	client *http.Client
}

// NewHTTPPusher 创建推送客户端
func NewHTTPPusher(timeout time.Duration) *HTTPPusher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPPusher{
		client: &http.Client{Timeout: timeout},
	}
}

// Push 将库存数量推送到渠道配置的库存接口
func (p *HTTPPusher) Push(ctx context.Context, ch *models.Channel, channelSKU string, quantity int) error {
	if ch == nil {
		return ErrUnknownChannelType
	}
	endpoint := ""
	apiKey := ""
	if ch.CredentialsJSON != nil {
		if v, ok := ch.CredentialsJSON["stock_endpoint"].(string); ok {
			endpoint = v
		}
		if v, ok := ch.CredentialsJSON["api_key"].(string); ok {
			apiKey = v
		}
	}
	if endpoint == "" {
		return ErrEndpointUnconfigured
	}

	payload, err := json.Marshal(map[string]interface{}{
		"sku":      channelSKU,
		"quantity": quantity,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("stock push rejected: status %d", resp.StatusCode)
	}
	return nil
}
