package channel

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/omniorder/internal/models"

	"github.com/shopspring/decimal"
)

// 适配器层错误定义
var (
	ErrMalformedPayload     = errors.New("malformed channel payload")
	ErrUnknownChannelType   = errors.New("unknown channel type")
	ErrEndpointUnconfigured = errors.New("channel stock endpoint not configured")
)

// CanonicalItem 规范化订单行
type CanonicalItem struct {
	SKU       string       `json:"sku"`
	Title     string       `json:"title"`
	Quantity  int          `json:"quantity"`
	UnitPrice models.Money `json:"unit_price"`
}

// CanonicalOrder 规范化订单，导入服务的统一输入
type CanonicalOrder struct {
	ExternalID      string          `json:"external_id"`
	OrderNumber     string          `json:"order_number"`
	Currency        string          `json:"currency"`
	CustomerName    string          `json:"customer_name"`
	CustomerEmail   string          `json:"customer_email"`
	CustomerPhone   string          `json:"customer_phone"`
	ShippingAddress models.JSON     `json:"shipping_address"`
	TotalAmount     models.Money    `json:"total_amount"`
	OrderedAt       *time.Time      `json:"ordered_at"`
	Items           []CanonicalItem `json:"items"`
	Raw             models.JSON     `json:"-"`
}

// Adapter 渠道适配器：订单标准化与库存推送
type Adapter interface {
	// Type 返回渠道类型标识
	Type() string
	// SignatureHeader 返回该渠道回调签名所在的请求头
	SignatureHeader() string
	// NormalizeOrder 将渠道原始载荷规范化为统一订单
	NormalizeOrder(raw []byte) (*CanonicalOrder, error)
	// PushStock 将可售数量推送到渠道侧
	PushStock(ctx context.Context, ch *models.Channel, channelSKU string, quantity int) error
}

// parseMoney 解析渠道载荷中的金额（字符串或数字）
func parseMoney(value interface{}) models.Money {
	switch v := value.(type) {
	case string:
		d, err := decimal.NewFromString(v)
		if err != nil {
			return models.Money{}
		}
		return models.NewMoneyFromDecimal(d)
	case float64:
		return models.NewMoneyFromDecimal(decimal.NewFromFloat(v))
	case int:
		return models.NewMoneyFromDecimal(decimal.NewFromInt(int64(v)))
	default:
		return models.Money{}
	}
}

// parseInt 解析渠道载荷中的整数（字符串或数字），默认 1
func parseInt(value interface{}, fallback int) int {
	switch v := value.(type) {
	case float64:
		return int(v)
	case int:
		return v
	case string:
		var n int
		if _, err := fmt.Sscanf(v, "%d", &n); err == nil {
			return n
		}
	}
	return fallback
}

// parseTime 解析 RFC3339 时间串
func parseTime(value interface{}) *time.Time {
	s, ok := value.(string)
	if !ok || s == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

// getString 从载荷取字符串字段
func getString(data map[string]interface{}, key string) string {
	if v, ok := data[key].(string); ok {
		return v
	}
	if v, ok := data[key].(float64); ok {
		return fmt.Sprintf("%.0f", v)
	}
	return ""
}

// getMap 从载荷取嵌套对象
func getMap(data map[string]interface{}, key string) map[string]interface{} {
	if v, ok := data[key].(map[string]interface{}); ok {
		return v
	}
	return map[string]interface{}{}
}

// getSlice 从载荷取数组
func getSlice(data map[string]interface{}, key string) []interface{} {
	if v, ok := data[key].([]interface{}); ok {
		return v
	}
	return nil
}
