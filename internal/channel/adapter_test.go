package channel

import (
	"context"
	"errors"
	"testing"

	"github.com/omniorder/internal/constants"
	"github.com/omniorder/internal/models"

	"github.com/shopspring/decimal"
)

type nopPusher struct{}

func (nopPusher) Push(ctx context.Context, ch *models.Channel, channelSKU string, quantity int) error {
	return nil
}

func TestShopifyNormalizeOrder(t *testing.T) {
	raw := []byte(`{
		"id": 450789469,
		"order_number": 1001,
		"currency": "EUR",
		"total_price": "409.94",
		"created_at": "2026-08-12T10:15:00Z",
		"customer": {"first_name": "Ada", "last_name": "Lovelace", "email": "ada@example.com", "phone": "+44 20 7000"},
		"shipping_address": {"city": "London", "country": "GB"},
		"line_items": [
			{"sku": "shopify-earbud-black", "name": "Wireless Earbuds", "quantity": 2, "price": "99.99"},
			{"sku": "shopify-watch-44", "name": "Smart Watch", "quantity": 1, "price": "199.99"}
		]
	}`)

	adapter := NewShopifyAdapter(nopPusher{})
	order, err := adapter.NormalizeOrder(raw)
	if err != nil {
		t.Fatalf("NormalizeOrder error: %v", err)
	}
	if order.ExternalID != "450789469" {
		t.Fatalf("external id want 450789469 got %s", order.ExternalID)
	}
	if order.OrderNumber != "1001" {
		t.Fatalf("order number want 1001 got %s", order.OrderNumber)
	}
	if order.Currency != "EUR" {
		t.Fatalf("currency want EUR got %s", order.Currency)
	}
	if order.CustomerName != "Ada Lovelace" || order.CustomerEmail != "ada@example.com" {
		t.Fatalf("unexpected customer: %s / %s", order.CustomerName, order.CustomerEmail)
	}
	if !order.TotalAmount.Decimal.Equal(decimal.RequireFromString("409.94")) {
		t.Fatalf("total want 409.94 got %s", order.TotalAmount.Decimal)
	}
	if order.OrderedAt == nil {
		t.Fatalf("ordered_at should be parsed")
	}
	if len(order.Items) != 2 {
		t.Fatalf("items want 2 got %d", len(order.Items))
	}
	if order.Items[0].SKU != "shopify-earbud-black" || order.Items[0].Quantity != 2 {
		t.Fatalf("unexpected first item: %+v", order.Items[0])
	}
	if !order.Items[1].UnitPrice.Decimal.Equal(decimal.RequireFromString("199.99")) {
		t.Fatalf("unit price want 199.99 got %s", order.Items[1].UnitPrice.Decimal)
	}
}

func TestShopifyNormalizeOrderMalformed(t *testing.T) {
	adapter := NewShopifyAdapter(nopPusher{})
	if _, err := adapter.NormalizeOrder([]byte("not-json")); !errors.Is(err, ErrMalformedPayload) {
		t.Fatalf("want ErrMalformedPayload got %v", err)
	}
}

func TestGenericNormalizeOrderDefaults(t *testing.T) {
	raw := []byte(`{
		"id": "pos-778",
		"items": [{"sku": "pos-earbud", "quantity": 1, "price": 99.99}]
	}`)

	adapter := NewGenericAdapter(constants.ChannelTypePOS, nopPusher{})
	order, err := adapter.NormalizeOrder(raw)
	if err != nil {
		t.Fatalf("NormalizeOrder error: %v", err)
	}
	if order.OrderNumber != "pos-778" {
		t.Fatalf("order number should fall back to external id, got %s", order.OrderNumber)
	}
	if order.Currency != "USD" {
		t.Fatalf("currency should default to USD, got %s", order.Currency)
	}
	if len(order.Items) != 1 || order.Items[0].Quantity != 1 {
		t.Fatalf("unexpected items: %+v", order.Items)
	}
}

func TestRegistryDispatch(t *testing.T) {
	registry := NewDefaultRegistry(0)

	for _, channelType := range []string{
		constants.ChannelTypeShopify,
		constants.ChannelTypeAmazon,
		constants.ChannelTypeEbay,
		constants.ChannelTypeWooCommerce,
		constants.ChannelTypePOS,
		constants.ChannelTypeManual,
	} {
		adapter, err := registry.Get(channelType)
		if err != nil {
			t.Fatalf("Get(%s) error: %v", channelType, err)
		}
		if adapter.Type() != channelType {
			t.Fatalf("adapter type want %s got %s", channelType, adapter.Type())
		}
	}

	if _, err := registry.Get("magento"); !errors.Is(err, ErrUnknownChannelType) {
		t.Fatalf("want ErrUnknownChannelType got %v", err)
	}
}
