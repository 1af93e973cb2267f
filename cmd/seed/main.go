package main

import (
	"fmt"

	"github.com/omniorder/internal/config"
	"github.com/omniorder/internal/logger"
	"github.com/omniorder/internal/models"

	"github.com/shopspring/decimal"
)

const demoTenantID uint = 1

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	// 添加仓库
	warehouses := []models.Warehouse{
		{TenantID: demoTenantID, Name: "华东主仓", Code: "WH-EAST", Address: "上海市青浦区华新镇", IsDefault: true, IsActive: true},
		{TenantID: demoTenantID, Name: "华南备仓", Code: "WH-SOUTH", Address: "广东省东莞市虎门镇", IsActive: true},
	}
	warehouseIDs := map[string]uint{}
	for _, wh := range warehouses {
		var existing models.Warehouse
		if err := models.DB.Where("tenant_id = ? AND code = ?", wh.TenantID, wh.Code).First(&existing).Error; err != nil {
			if err := models.DB.Create(&wh).Error; err != nil {
				stdLog.Printf("Failed to create warehouse %s: %v", wh.Code, err)
				continue
			}
			stdLog.Printf("Created warehouse: %s", wh.Code)
			warehouseIDs[wh.Code] = wh.ID
		} else {
			stdLog.Printf("Warehouse already exists: %s", existing.Code)
			warehouseIDs[existing.Code] = existing.ID
		}
	}
	mainWarehouseID := warehouseIDs["WH-EAST"]
	backupWarehouseID := warehouseIDs["WH-SOUTH"]

	// 添加商品与初始库存
	productPlans := []struct {
		Product models.Product
		Stocks  map[uint]int
	}{
		{
			Product: models.Product{
				TenantID:     demoTenantID,
				Name:         "无线蓝牙耳机",
				SKU:          "SKU-EARBUD-01",
				Barcode:      "6901234500011",
				Description:  "蓝牙 5.0，主动降噪，续航 24 小时",
				CostPrice:    models.NewMoneyFromDecimal(decimal.NewFromFloat(42.00)),
				SellingPrice: models.NewMoneyFromDecimal(decimal.NewFromFloat(99.99)),
				IsActive:     true,
			},
			Stocks: map[uint]int{mainWarehouseID: 120, backupWarehouseID: 40},
		},
		{
			Product: models.Product{
				TenantID:     demoTenantID,
				Name:         "智能手表",
				SKU:          "SKU-WATCH-01",
				Barcode:      "6901234500028",
				Description:  "心率监测，多运动模式，防水",
				CostPrice:    models.NewMoneyFromDecimal(decimal.NewFromFloat(88.00)),
				SellingPrice: models.NewMoneyFromDecimal(decimal.NewFromFloat(199.99)),
				IsActive:     true,
			},
			Stocks: map[uint]int{mainWarehouseID: 60},
		},
		{
			Product: models.Product{
				TenantID:     demoTenantID,
				Name:         "便携充电宝",
				SKU:          "SKU-PWRBANK-01",
				Barcode:      "6901234500035",
				Description:  "20000mAh，双口快充",
				CostPrice:    models.NewMoneyFromDecimal(decimal.NewFromFloat(18.50)),
				SellingPrice: models.NewMoneyFromDecimal(decimal.NewFromFloat(49.99)),
				IsActive:     true,
			},
			Stocks: map[uint]int{mainWarehouseID: 200, backupWarehouseID: 80},
		},
		{
			Product: models.Product{
				TenantID:     demoTenantID,
				Name:         "收纳硬壳包",
				SKU:          "SKU-CASE-01",
				Barcode:      "6901234500042",
				Description:  "耳机手表配件收纳，防泼水",
				CostPrice:    models.NewMoneyFromDecimal(decimal.NewFromFloat(3.20)),
				SellingPrice: models.NewMoneyFromDecimal(decimal.NewFromFloat(12.99)),
				IsActive:     true,
			},
			Stocks: map[uint]int{mainWarehouseID: 500},
		},
	}
	productIDs := map[string]uint{}
	for _, plan := range productPlans {
		prod := plan.Product
		var existing models.Product
		if err := models.DB.Where("tenant_id = ? AND sku = ?", prod.TenantID, prod.SKU).First(&existing).Error; err != nil {
			if err := models.DB.Create(&prod).Error; err != nil {
				stdLog.Printf("Failed to create product %s: %v", prod.SKU, err)
				continue
			}
			stdLog.Printf("Created product: %s", prod.SKU)
			productIDs[prod.SKU] = prod.ID
		} else {
			stdLog.Printf("Product already exists: %s", existing.SKU)
			productIDs[existing.SKU] = existing.ID
		}

		productID := productIDs[prod.SKU]
		for warehouseID, qty := range plan.Stocks {
			if warehouseID == 0 {
				continue
			}
			var level models.StockLevel
			if err := models.DB.Where("product_id = ? AND warehouse_id = ?", productID, warehouseID).First(&level).Error; err != nil {
				level = models.StockLevel{
					ProductID:    productID,
					WarehouseID:  warehouseID,
					Available:    qty,
					ReorderPoint: 10,
				}
				if err := models.DB.Create(&level).Error; err != nil {
					stdLog.Printf("Failed to create stock level for %s: %v", prod.SKU, err)
				}
			}
		}
	}

	// 添加套装（耳机 + 充电宝，收纳包为可选组件）
	bundleSKU := "SKU-TRAVEL-KIT"
	var bundle models.ProductBundle
	if err := models.DB.Where("tenant_id = ? AND sku = ?", demoTenantID, bundleSKU).First(&bundle).Error; err != nil {
		bundle = models.ProductBundle{
			TenantID:    demoTenantID,
			Name:        "出行套装",
			SKU:         bundleSKU,
			Description: "耳机与充电宝组合，附赠收纳包",
			Price:       models.NewMoneyFromDecimal(decimal.NewFromFloat(129.99)),
			IsActive:    true,
		}
		if err := models.DB.Create(&bundle).Error; err != nil {
			stdLog.Printf("Failed to create bundle %s: %v", bundleSKU, err)
		} else {
			components := []models.BundleComponent{
				{BundleID: bundle.ID, ProductID: productIDs["SKU-EARBUD-01"], Quantity: 1},
				{BundleID: bundle.ID, ProductID: productIDs["SKU-PWRBANK-01"], Quantity: 1},
				{BundleID: bundle.ID, ProductID: productIDs["SKU-CASE-01"], Quantity: 1, IsOptional: true},
			}
			for _, comp := range components {
				if comp.ProductID == 0 {
					continue
				}
				if err := models.DB.Create(&comp).Error; err != nil {
					stdLog.Printf("Failed to create bundle component: %v", err)
				}
			}
			stdLog.Printf("Created bundle: %s", bundleSKU)
		}
	} else {
		stdLog.Printf("Bundle already exists: %s", bundleSKU)
	}

	// 添加渠道
	channels := []models.Channel{
		{
			TenantID:    demoTenantID,
			Name:        "Shopify 旗舰店",
			ChannelType: "shopify",
			IsActive:    true,
			CredentialsJSON: models.JSON{
				"api_key":        "demo-shopify-key",
				"webhook_secret": "demo-shopify-webhook-secret",
			},
			SettingsJSON: models.JSON{
				"sync_frequency_minutes": float64(15),
			},
			DefaultWarehouseID: &mainWarehouseID,
			SyncStatus:         "disconnected",
		},
		{
			TenantID:           demoTenantID,
			Name:               "线下门店",
			ChannelType:        "pos",
			IsActive:           true,
			SettingsJSON:       models.JSON{},
			DefaultWarehouseID: &backupWarehouseID,
			SyncStatus:         "disconnected",
		},
	}
	channelIDs := map[string]uint{}
	for _, ch := range channels {
		var existing models.Channel
		if err := models.DB.Where("tenant_id = ? AND name = ?", ch.TenantID, ch.Name).First(&existing).Error; err != nil {
			if err := models.DB.Create(&ch).Error; err != nil {
				stdLog.Printf("Failed to create channel %s: %v", ch.Name, err)
				continue
			}
			stdLog.Printf("Created channel: %s", ch.Name)
			channelIDs[ch.ChannelType] = ch.ID
		} else {
			stdLog.Printf("Channel already exists: %s", existing.Name)
			channelIDs[existing.ChannelType] = existing.ID
		}
	}
	shopifyID := channelIDs["shopify"]
	posID := channelIDs["pos"]

	// 添加 SKU 映射
	earbudID := productIDs["SKU-EARBUD-01"]
	watchID := productIDs["SKU-WATCH-01"]
	lowStock := 5
	mappings := []models.SKUMapping{
		{ChannelID: shopifyID, ChannelSKU: "shopify-earbud-black", ProductID: &earbudID, ChannelTitle: "Wireless Earbuds (Black)", IsActive: true},
		{ChannelID: shopifyID, ChannelSKU: "shopify-watch-44", ProductID: &watchID, ChannelTitle: "Smart Watch 44mm", StockOverride: &lowStock, IsActive: true},
		{ChannelID: posID, ChannelSKU: "pos-earbud", ProductID: &earbudID, IsActive: true},
	}
	if bundle.ID != 0 {
		bundleID := bundle.ID
		mappings = append(mappings, models.SKUMapping{
			ChannelID: shopifyID, ChannelSKU: "shopify-travel-kit", BundleID: &bundleID,
			ChannelTitle: "Travel Kit Bundle", IsActive: true,
		})
	}
	for _, m := range mappings {
		if m.ChannelID == 0 {
			continue
		}
		var existing models.SKUMapping
		if err := models.DB.Where("channel_id = ? AND channel_sku = ?", m.ChannelID, m.ChannelSKU).First(&existing).Error; err != nil {
			if err := models.DB.Create(&m).Error; err != nil {
				stdLog.Printf("Failed to create mapping %s: %v", m.ChannelSKU, err)
			} else {
				stdLog.Printf("Created mapping: %s", m.ChannelSKU)
			}
		} else {
			stdLog.Printf("Mapping already exists: %s", existing.ChannelSKU)
		}
	}

	// 添加自动化规则
	rules := []models.AutomationRule{
		{
			TenantID:     demoTenantID,
			Name:         "大额订单走主仓",
			Description:  "订单金额超过 100 时固定从华东主仓发货并标记加急",
			TriggerEvent: "order_placed",
			ConditionsJSON: models.JSON{
				"min_order_value": float64(100),
			},
			ActionsJSON: models.JSON{
				"assign_warehouse": float64(mainWarehouseID),
				"set_priority":     float64(10),
				"add_tags":         []interface{}{"high-value"},
			},
			Priority: 10,
			IsActive: true,
		},
		{
			TenantID:     demoTenantID,
			Name:         "线下订单打标",
			Description:  "POS 渠道订单统一打上门店标签",
			TriggerEvent: "order_placed",
			ConditionsJSON: models.JSON{
				"channel_types": []interface{}{"pos"},
			},
			ActionsJSON: models.JSON{
				"add_tags": []interface{}{"walk-in"},
			},
			Priority: 5,
			IsActive: true,
		},
	}
	for _, rule := range rules {
		var existing models.AutomationRule
		if err := models.DB.Where("tenant_id = ? AND name = ?", rule.TenantID, rule.Name).First(&existing).Error; err != nil {
			if err := models.DB.Create(&rule).Error; err != nil {
				stdLog.Printf("Failed to create rule %s: %v", rule.Name, err)
			} else {
				stdLog.Printf("Created rule: %s", rule.Name)
			}
		} else {
			stdLog.Printf("Rule already exists: %s", existing.Name)
		}
	}

	fmt.Println("\n✅ Seed data created successfully!")
	fmt.Println("Summary:")
	fmt.Println("- 2 Warehouses (WH-EAST default, WH-SOUTH)")
	fmt.Println("- 4 Products with stock levels")
	fmt.Println("- 1 Bundle (travel kit, optional case component)")
	fmt.Println("- 2 Channels (shopify, pos)")
	fmt.Println("- 4 SKU mappings (one with stock override)")
	fmt.Println("- 2 Automation rules")
}
