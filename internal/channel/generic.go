package channel

import (
	"context"
	"encoding/json"

	"github.com/omniorder/internal/models"
)

// GenericAdapter 通用适配器，POS/手工渠道以内部规范格式直传
type GenericAdapter struct {
	channelType string
	pusher      StockPusher
}

// NewGenericAdapter 创建通用适配器
func NewGenericAdapter(channelType string, pusher StockPusher) *GenericAdapter {
	return &GenericAdapter{channelType: channelType, pusher: pusher}
}

// Type 渠道类型
func (a *GenericAdapter) Type() string {
	return a.channelType
}

// SignatureHeader 回调签名请求头
func (a *GenericAdapter) SignatureHeader() string {
	return "X-Webhook-Signature"
}

// NormalizeOrder 规范化通用订单载荷
func (a *GenericAdapter) NormalizeOrder(raw []byte) (*CanonicalOrder, error) {
	var data map[string]interface{}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, ErrMalformedPayload
	}

	order := &CanonicalOrder{
		ExternalID:      getString(data, "id"),
		OrderNumber:     getString(data, "order_number"),
		Currency:        getString(data, "currency"),
		CustomerName:    getString(data, "customer_name"),
		CustomerEmail:   getString(data, "customer_email"),
		CustomerPhone:   getString(data, "customer_phone"),
		ShippingAddress: models.JSON(getMap(data, "shipping_address")),
		TotalAmount:     parseMoney(data["total_amount"]),
		OrderedAt:       parseTime(data["placed_at"]),
		Raw:             models.JSON(data),
	}
	if order.OrderNumber == "" {
		order.OrderNumber = order.ExternalID
	}
	if order.Currency == "" {
		order.Currency = "USD"
	}

	for _, entry := range getSlice(data, "items") {
		item, ok := entry.(map[string]interface{})
		if !ok {
			continue
		}
		order.Items = append(order.Items, CanonicalItem{
			SKU:       getString(item, "sku"),
			Title:     getString(item, "name"),
			Quantity:  parseInt(item["quantity"], 1),
			UnitPrice: parseMoney(item["price"]),
		})
	}
	return order, nil
}

// PushStock 推送库存
func (a *GenericAdapter) PushStock(ctx context.Context, ch *models.Channel, channelSKU string, quantity int) error {
	return a.pusher.Push(ctx, ch, channelSKU, quantity)
}
