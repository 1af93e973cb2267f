package channel

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/omniorder/internal/constants"
	"github.com/omniorder/internal/models"
)

// ShopifyAdapter Shopify 渠道适配器
type ShopifyAdapter struct {
	pusher StockPusher
}

// NewShopifyAdapter 创建 Shopify 适配器
func NewShopifyAdapter(pusher StockPusher) *ShopifyAdapter {
	return &ShopifyAdapter{pusher: pusher}
}

// Type 渠道类型
func (a *ShopifyAdapter) Type() string {
	return constants.ChannelTypeShopify
}

// SignatureHeader 回调签名请求头
func (a *ShopifyAdapter) SignatureHeader() string {
	return "X-Shopify-Hmac-Sha256"
}

// NormalizeOrder 规范化 Shopify 订单载荷
func (a *ShopifyAdapter) NormalizeOrder(raw []byte) (*CanonicalOrder, error) {
	var data map[string]interface{}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, ErrMalformedPayload
	}

	customer := getMap(data, "customer")
	name := strings.TrimSpace(getString(customer, "first_name") + " " + getString(customer, "last_name"))

	order := &CanonicalOrder{
		ExternalID:      getString(data, "id"),
		OrderNumber:     getString(data, "order_number"),
		Currency:        getString(data, "currency"),
		CustomerName:    name,
		CustomerEmail:   getString(customer, "email"),
		CustomerPhone:   getString(customer, "phone"),
		ShippingAddress: models.JSON(getMap(data, "shipping_address")),
		TotalAmount:     parseMoney(data["total_price"]),
		OrderedAt:       parseTime(data["created_at"]),
		Raw:             models.JSON(data),
	}
	if order.OrderNumber == "" {
		order.OrderNumber = getString(data, "name")
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
func (a *ShopifyAdapter) PushStock(ctx context.Context, ch *models.Channel, channelSKU string, quantity int) error {
	return a.pusher.Push(ctx, ch, channelSKU, quantity)
}
