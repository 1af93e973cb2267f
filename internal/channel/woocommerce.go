package channel

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/omniorder/internal/constants"
	"github.com/omniorder/internal/models"
)

// WooCommerceAdapter WooCommerce 渠道适配器
type WooCommerceAdapter struct {
	pusher StockPusher
}

// NewWooCommerceAdapter 创建 WooCommerce 适配器
func NewWooCommerceAdapter(pusher StockPusher) *WooCommerceAdapter {
	return &WooCommerceAdapter{pusher: pusher}
}

// Type 渠道类型
func (a *WooCommerceAdapter) Type() string {
	return constants.ChannelTypeWooCommerce
}

// SignatureHeader 回调签名请求头
func (a *WooCommerceAdapter) SignatureHeader() string {
	return "X-WC-Webhook-Signature"
}

// NormalizeOrder 规范化 WooCommerce 订单载荷
func (a *WooCommerceAdapter) NormalizeOrder(raw []byte) (*CanonicalOrder, error) {
	var data map[string]interface{}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, ErrMalformedPayload
	}

	billing := getMap(data, "billing")
	name := strings.TrimSpace(getString(billing, "first_name") + " " + getString(billing, "last_name"))

	order := &CanonicalOrder{
		ExternalID:      getString(data, "id"),
		OrderNumber:     getString(data, "number"),
		Currency:        getString(data, "currency"),
		CustomerName:    name,
		CustomerEmail:   getString(billing, "email"),
		CustomerPhone:   getString(billing, "phone"),
		ShippingAddress: models.JSON(getMap(data, "shipping")),
		TotalAmount:     parseMoney(data["total"]),
		OrderedAt:       parseTime(data["date_created"]),
		Raw:             models.JSON(data),
	}
	if order.Currency == "" {
		order.Currency = "USD"
	}

	for _, entry := range getSlice(data, "line_items") {
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
func (a *WooCommerceAdapter) PushStock(ctx context.Context, ch *models.Channel, channelSKU string, quantity int) error {
	return a.pusher.Push(ctx, ch, channelSKU, quantity)
}
