package channel

import (
	"context"
	"encoding/json"

	"github.com/omniorder/internal/constants"
	"github.com/omniorder/internal/models"
)

// EbayAdapter eBay 渠道适配器
type EbayAdapter struct {
	pusher StockPusher
}

// NewEbayAdapter 创建 eBay 适配器
func NewEbayAdapter(pusher StockPusher) *EbayAdapter {
	return &EbayAdapter{pusher: pusher}
}

// Type 渠道类型
func (a *EbayAdapter) Type() string {
	return constants.ChannelTypeEbay
}

// SignatureHeader 回调签名请求头
func (a *EbayAdapter) SignatureHeader() string {
	return "X-Ebay-Signature"
}

// NormalizeOrder 规范化 eBay 订单载荷。订单接口不提供买家邮箱。
func (a *EbayAdapter) NormalizeOrder(raw []byte) (*CanonicalOrder, error) {
	var data map[string]interface{}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, ErrMalformedPayload
	}

	total := getMap(getMap(data, "pricingSummary"), "total")
	order := &CanonicalOrder{
		ExternalID:   getString(data, "orderId"),
		OrderNumber:  getString(data, "orderId"),
		Currency:     getString(total, "currency"),
		CustomerName: getString(getMap(data, "buyer"), "username"),
		TotalAmount:  parseMoney(total["value"]),
		OrderedAt:    parseTime(data["creationDate"]),
		Raw:          models.JSON(data),
	}
	if order.Currency == "" {
		order.Currency = "USD"
	}

	if instructions := getSlice(data, "fulfillmentStartInstructions"); len(instructions) > 0 {
		if first, ok := instructions[0].(map[string]interface{}); ok {
			order.ShippingAddress = models.JSON(getMap(getMap(first, "shippingStep"), "shipTo"))
		}
	}

	for _, entry := range getSlice(data, "lineItems") {
		item, ok := entry.(map[string]interface{})
		if !ok {
			continue
		}
		order.Items = append(order.Items, CanonicalItem{
			SKU:       getString(item, "sku"),
			Title:     getString(item, "title"),
			Quantity:  parseInt(item["quantity"], 1),
			UnitPrice: parseMoney(getMap(item, "lineItemCost")["value"]),
		})
	}
	return order, nil
}

// PushStock 推送库存
func (a *EbayAdapter) PushStock(ctx context.Context, ch *models.Channel, channelSKU string, quantity int) error {
	return a.pusher.Push(ctx, ch, channelSKU, quantity)
}
