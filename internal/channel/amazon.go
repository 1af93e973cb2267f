package channel

import (
	"context"
	"encoding/json"

	"github.com/omniorder/internal/constants"
	"github.com/omniorder/internal/models"
)

// AmazonAdapter Amazon 渠道适配器
type AmazonAdapter struct {
	pusher StockPusher
}

// NewAmazonAdapter 创建 Amazon 适配器
func NewAmazonAdapter(pusher StockPusher) *AmazonAdapter {
	return &AmazonAdapter{pusher: pusher}
}

// Type 渠道类型
func (a *AmazonAdapter) Type() string {
	return constants.ChannelTypeAmazon
}

// SignatureHeader 回调签名请求头
func (a *AmazonAdapter) SignatureHeader() string {
	return "X-Amz-Signature"
}

// NormalizeOrder 规范化 Amazon 订单载荷。
// 订单接口不附带买家姓名；OrderItems 缺席时产出零行订单，由导入侧记告警日志。
func (a *AmazonAdapter) NormalizeOrder(raw []byte) (*CanonicalOrder, error) {
	var data map[string]interface{}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, ErrMalformedPayload
	}

	total := getMap(data, "OrderTotal")
	order := &CanonicalOrder{
		ExternalID:      getString(data, "AmazonOrderId"),
		OrderNumber:     getString(data, "AmazonOrderId"),
		Currency:        getString(total, "CurrencyCode"),
		CustomerName:    "Amazon Customer",
		CustomerEmail:   getString(data, "BuyerEmail"),
		ShippingAddress: models.JSON(getMap(data, "ShippingAddress")),
		TotalAmount:     parseMoney(total["Amount"]),
		OrderedAt:       parseTime(data["PurchaseDate"]),
		Raw:             models.JSON(data),
	}
	if order.Currency == "" {
		order.Currency = "USD"
	}

	for _, entry := range getSlice(data, "OrderItems") {
		item, ok := entry.(map[string]interface{})
		if !ok {
			continue
		}
		order.Items = append(order.Items, CanonicalItem{
			SKU:       getString(item, "SellerSKU"),
			Title:     getString(item, "Title"),
			Quantity:  parseInt(item["QuantityOrdered"], 1),
			UnitPrice: parseMoney(getMap(item, "ItemPrice")["Amount"]),
		})
	}
	return order, nil
}

// PushStock 推送库存
func (a *AmazonAdapter) PushStock(ctx context.Context, ch *models.Channel, channelSKU string, quantity int) error {
	return a.pusher.Push(ctx, ch, channelSKU, quantity)
}
