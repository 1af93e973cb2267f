package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/omniorder/internal/channel"
	"github.com/omniorder/internal/constants"
	"github.com/omniorder/internal/models"
	"github.com/omniorder/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupImportTest(t *testing.T) (*ImportService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:import_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Channel{},
		&models.Warehouse{},
		&models.Product{},
		&models.ProductBundle{},
		&models.BundleComponent{},
		&models.SKUMapping{},
		&models.StockLevel{},
		&models.StockMovement{},
		&models.StockReservation{},
		&models.Order{},
		&models.OrderItem{},
		&models.ChannelSyncLog{},
		&models.AutomationRule{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db

	ledger := NewStockLedgerService(repository.NewStockLevelRepository(db), repository.NewStockMovementRepository(db))
	reservations := NewReservationService(
		repository.NewStockReservationRepository(db),
		repository.NewStockLevelRepository(db),
		repository.NewWarehouseRepository(db),
		repository.NewOrderRepository(db),
		ledger,
		24,
	)
	resolver := NewSKUResolver(
		repository.NewSKUMappingRepository(db),
		repository.NewProductRepository(db),
		repository.NewBundleRepository(db),
	)
	bundles := NewBundleService(repository.NewBundleRepository(db), repository.NewStockReservationRepository(db), reservations, ledger)
	automation := NewAutomationService(
		repository.NewAutomationRuleRepository(db),
		repository.NewOrderRepository(db),
		repository.NewWarehouseRepository(db),
		nil,
	)
	svc := NewImportService(
		repository.NewOrderRepository(db),
		repository.NewChannelRepository(db),
		repository.NewSyncLogRepository(db),
		resolver,
		reservations,
		bundles,
		automation,
		channel.NewDefaultRegistry(0),
		nil,
	)
	return svc, db
}

func seedImportChannel(t *testing.T, db *gorm.DB, channelType string) *models.Channel {
	t.Helper()
	ch := models.Channel{TenantID: 1, Name: "test channel", ChannelType: channelType, IsActive: true}
	if err := db.Create(&ch).Error; err != nil {
		t.Fatalf("seed channel failed: %v", err)
	}
	return &ch
}

func seedImportProduct(t *testing.T, db *gorm.DB, sku string) uint {
	t.Helper()
	product := models.Product{TenantID: 1, Name: sku, SKU: sku, IsActive: true}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("seed product failed: %v", err)
	}
	return product.ID
}

func moneyFromInt(n int64) models.Money {
	return models.NewMoneyFromDecimal(decimal.NewFromInt(n))
}

func findItemBySKU(t *testing.T, items []models.OrderItem, sku string) *models.OrderItem {
	t.Helper()
	for i := range items {
		if items[i].ChannelSKU == sku {
			return &items[i]
		}
	}
	t.Fatalf("order item %s not found", sku)
	return nil
}

func TestImportCanonicalMixedItems(t *testing.T) {
	svc, db := setupImportTest(t)
	warehouseID := seedWarehouse(t, db, 1, "WH-MAIN", true)
	productA := seedImportProduct(t, db, "SKU-A")
	productB := seedImportProduct(t, db, "SKU-B")
	seedStockLevel(t, db, productA, warehouseID, 10)
	seedStockLevel(t, db, productB, warehouseID, 1)
	ch := seedImportChannel(t, db, constants.ChannelTypeShopify)

	result, err := svc.ImportCanonical(ch.ID, &channel.CanonicalOrder{
		ExternalID: "EXT-100",
		Currency:   "USD",
		Items: []channel.CanonicalItem{
			{SKU: "SKU-A", Title: "item a", Quantity: 2, UnitPrice: moneyFromInt(10)},
			{SKU: "SKU-B", Title: "item b", Quantity: 5, UnitPrice: moneyFromInt(5)},
			{SKU: "SKU-GHOST", Title: "unknown", Quantity: 1, UnitPrice: moneyFromInt(2)},
		},
	})
	if err != nil {
		t.Fatalf("ImportCanonical error: %v", err)
	}
	if !result.Created {
		t.Fatalf("order should be created")
	}
	if result.Reserved != 1 || result.Backorder != 1 || result.Unmapped != 1 {
		t.Fatalf("counts want 1/1/1 got %d/%d/%d", result.Reserved, result.Backorder, result.Unmapped)
	}

	itemA := findItemBySKU(t, result.Order.Items, "SKU-A")
	if itemA.Status != constants.ItemStatusReserved || itemA.ReservationID == nil {
		t.Fatalf("item a should be reserved, got %s", itemA.Status)
	}
	if itemA.ProductID == nil || *itemA.ProductID != productA {
		t.Fatalf("item a should resolve to product %d", productA)
	}
	itemB := findItemBySKU(t, result.Order.Items, "SKU-B")
	if itemB.Status != constants.ItemStatusBackorder || itemB.ReservationID != nil {
		t.Fatalf("item b should be backorder, got %s", itemB.Status)
	}
	ghost := findItemBySKU(t, result.Order.Items, "SKU-GHOST")
	if ghost.Status != constants.ItemStatusUnmapped {
		t.Fatalf("unknown sku should stay unmapped, got %s", ghost.Status)
	}

	// 只有可预留的行动库存
	levelA := loadStockLevel(t, db, productA, warehouseID)
	if levelA.Available != 8 || levelA.Reserved != 2 {
		t.Fatalf("product a buckets want 8/2 got %d/%d", levelA.Available, levelA.Reserved)
	}
	levelB := loadStockLevel(t, db, productB, warehouseID)
	if levelB.Available != 1 || levelB.Reserved != 0 {
		t.Fatalf("backorder must not touch stock, got %d/%d", levelB.Available, levelB.Reserved)
	}

	// 小计 = 2*10 + 5*5 + 1*2
	if !result.Order.Subtotal.Decimal.Equal(decimal.NewFromInt(47)) {
		t.Fatalf("subtotal want 47 got %s", result.Order.Subtotal.Decimal)
	}

	var logs []models.ChannelSyncLog
	if err := db.Where("channel_id = ?", ch.ID).Find(&logs).Error; err != nil {
		t.Fatalf("load sync logs failed: %v", err)
	}
	if len(logs) != 1 {
		t.Fatalf("sync log rows want 1 got %d", len(logs))
	}
	if logs[0].SyncType != constants.SyncTypeOrderImport || logs[0].Status != constants.SyncLogStatusPartial {
		t.Fatalf("sync log want partial order_import got %s/%s", logs[0].SyncType, logs[0].Status)
	}
	if logs[0].TenantID != ch.TenantID {
		t.Fatalf("sync log tenant want %d got %d", ch.TenantID, logs[0].TenantID)
	}
	if logs[0].RecordsProcessed != 3 || logs[0].RecordsSucceeded != 1 || logs[0].RecordsFailed != 2 {
		t.Fatalf("sync log counts want 3/1/2 got %d/%d/%d",
			logs[0].RecordsProcessed, logs[0].RecordsSucceeded, logs[0].RecordsFailed)
	}
}

func TestImportCanonicalIdempotent(t *testing.T) {
	svc, db := setupImportTest(t)
	warehouseID := seedWarehouse(t, db, 1, "WH-MAIN", true)
	productID := seedImportProduct(t, db, "SKU-A")
	seedStockLevel(t, db, productID, warehouseID, 10)
	ch := seedImportChannel(t, db, constants.ChannelTypeShopify)

	canonical := &channel.CanonicalOrder{
		ExternalID: "EXT-200",
		Items:      []channel.CanonicalItem{{SKU: "SKU-A", Quantity: 3, UnitPrice: moneyFromInt(10)}},
	}
	first, err := svc.ImportCanonical(ch.ID, canonical)
	if err != nil {
		t.Fatalf("first import error: %v", err)
	}
	second, err := svc.ImportCanonical(ch.ID, canonical)
	if err != nil {
		t.Fatalf("second import error: %v", err)
	}
	if second.Created {
		t.Fatalf("duplicate import must not create a new order")
	}
	if second.Order.ID != first.Order.ID {
		t.Fatalf("duplicate import should return the existing order")
	}

	level := loadStockLevel(t, db, productID, warehouseID)
	if level.Available != 7 || level.Reserved != 3 {
		t.Fatalf("duplicate import must not touch stock, got %d/%d", level.Available, level.Reserved)
	}

	var orderCount int64
	if err := db.Model(&models.Order{}).Count(&orderCount).Error; err != nil {
		t.Fatalf("count orders failed: %v", err)
	}
	if orderCount != 1 {
		t.Fatalf("orders want 1 got %d", orderCount)
	}

	// 重复导入直接短路，不再追加同步日志
	var logCount int64
	if err := db.Model(&models.ChannelSyncLog{}).Count(&logCount).Error; err != nil {
		t.Fatalf("count sync logs failed: %v", err)
	}
	if logCount != 1 {
		t.Fatalf("sync logs want 1 got %d", logCount)
	}
}

func TestImportCanonicalBundleItem(t *testing.T) {
	svc, db := setupImportTest(t)
	warehouseID := seedWarehouse(t, db, 1, "WH-MAIN", true)
	productID := seedImportProduct(t, db, "SKU-PART")
	seedStockLevel(t, db, productID, warehouseID, 10)
	bundleID := seedBundle(t, db, []models.BundleComponent{{ProductID: productID, Quantity: 2}})
	ch := seedImportChannel(t, db, constants.ChannelTypeShopify)

	result, err := svc.ImportCanonical(ch.ID, &channel.CanonicalOrder{
		ExternalID: "EXT-300",
		Items:      []channel.CanonicalItem{{SKU: "SKU-KIT", Quantity: 1, UnitPrice: moneyFromInt(30)}},
	})
	if err != nil {
		t.Fatalf("ImportCanonical error: %v", err)
	}
	if result.Reserved != 1 {
		t.Fatalf("bundle item should be reserved, got %+v", result)
	}
	item := findItemBySKU(t, result.Order.Items, "SKU-KIT")
	if item.Status != constants.ItemStatusReserved {
		t.Fatalf("item status want reserved got %s", item.Status)
	}
	if item.BundleID == nil || *item.BundleID != bundleID {
		t.Fatalf("item should resolve to bundle %d", bundleID)
	}

	level := loadStockLevel(t, db, productID, warehouseID)
	if level.Reserved != 2 {
		t.Fatalf("component reserved want 2 got %d", level.Reserved)
	}
}

func TestImportCanonicalChannelGuards(t *testing.T) {
	svc, db := setupImportTest(t)
	ch := seedImportChannel(t, db, constants.ChannelTypeShopify)

	if _, err := svc.ImportCanonical(ch.ID, nil); !errors.Is(err, ErrEmptyOrder) {
		t.Fatalf("nil order want ErrEmptyOrder got %v", err)
	}
	if _, err := svc.ImportCanonical(9999, &channel.CanonicalOrder{ExternalID: "x"}); !errors.Is(err, ErrChannelNotFound) {
		t.Fatalf("missing channel want ErrChannelNotFound got %v", err)
	}

	if err := db.Model(&models.Channel{}).Where("id = ?", ch.ID).Update("is_active", false).Error; err != nil {
		t.Fatalf("deactivate channel failed: %v", err)
	}
	_, err := svc.ImportCanonical(ch.ID, &channel.CanonicalOrder{ExternalID: "EXT-400"})
	if !errors.Is(err, ErrChannelDisabled) {
		t.Fatalf("disabled channel want ErrChannelDisabled got %v", err)
	}
}

func TestImportCanonicalAppliesAutomation(t *testing.T) {
	svc, db := setupImportTest(t)
	warehouseID := seedWarehouse(t, db, 1, "WH-MAIN", true)
	productID := seedImportProduct(t, db, "SKU-A")
	seedStockLevel(t, db, productID, warehouseID, 10)
	ch := seedImportChannel(t, db, constants.ChannelTypeShopify)
	ruleID := seedRule(t, db, "flag big orders", 1,
		models.JSON{"min_order_value": float64(20)},
		models.JSON{"set_priority": float64(7), "add_tags": []interface{}{"high-value"}},
	)

	result, err := svc.ImportCanonical(ch.ID, &channel.CanonicalOrder{
		ExternalID: "EXT-500",
		Items:      []channel.CanonicalItem{{SKU: "SKU-A", Quantity: 3, UnitPrice: moneyFromInt(10)}},
	})
	if err != nil {
		t.Fatalf("ImportCanonical error: %v", err)
	}

	var order models.Order
	if err := db.First(&order, result.Order.ID).Error; err != nil {
		t.Fatalf("reload order failed: %v", err)
	}
	if order.Priority != 7 {
		t.Fatalf("priority want 7 got %d", order.Priority)
	}
	if len(order.Tags) != 1 || order.Tags[0] != "high-value" {
		t.Fatalf("tags want [high-value] got %v", order.Tags)
	}
	if len(order.AppliedRuleIDs) != 1 || order.AppliedRuleIDs[0] != ruleID {
		t.Fatalf("applied rule ids want [%d] got %v", ruleID, order.AppliedRuleIDs)
	}
}

// 导入订单直接带渠道关联，渠道类型条件的规则要能命中
func TestImportCanonicalChannelTypeRuleApplies(t *testing.T) {
	svc, db := setupImportTest(t)
	warehouseID := seedWarehouse(t, db, 1, "WH-MAIN", true)
	productID := seedImportProduct(t, db, "SKU-A")
	seedStockLevel(t, db, productID, warehouseID, 10)
	ch := seedImportChannel(t, db, constants.ChannelTypeShopify)
	ruleID := seedRule(t, db, "prioritize shopify orders", 1,
		models.JSON{"channel_types": []interface{}{constants.ChannelTypeShopify}},
		models.JSON{"set_priority": float64(9)},
	)

	result, err := svc.ImportCanonical(ch.ID, &channel.CanonicalOrder{
		ExternalID: "EXT-700",
		Items:      []channel.CanonicalItem{{SKU: "SKU-A", Quantity: 1, UnitPrice: moneyFromInt(10)}},
	})
	if err != nil {
		t.Fatalf("ImportCanonical error: %v", err)
	}

	var order models.Order
	if err := db.First(&order, result.Order.ID).Error; err != nil {
		t.Fatalf("reload order failed: %v", err)
	}
	if order.Priority != 9 {
		t.Fatalf("priority want 9 got %d", order.Priority)
	}
	if len(order.AppliedRuleIDs) != 1 || order.AppliedRuleIDs[0] != ruleID {
		t.Fatalf("applied rule ids want [%d] got %v", ruleID, order.AppliedRuleIDs)
	}
}

func TestBatchImportCountsDuplicates(t *testing.T) {
	svc, db := setupImportTest(t)
	warehouseID := seedWarehouse(t, db, 1, "WH-MAIN", true)
	productID := seedImportProduct(t, db, "SKU-A")
	seedStockLevel(t, db, productID, warehouseID, 20)
	ch := seedImportChannel(t, db, constants.ChannelTypeShopify)

	if _, err := svc.ImportCanonical(ch.ID, &channel.CanonicalOrder{
		ExternalID: "EXT-600",
		Items:      []channel.CanonicalItem{{SKU: "SKU-A", Quantity: 1, UnitPrice: moneyFromInt(10)}},
	}); err != nil {
		t.Fatalf("seed import error: %v", err)
	}

	report, err := svc.BatchImport(ch.ID, []channel.CanonicalOrder{
		{ExternalID: "EXT-600", Items: []channel.CanonicalItem{{SKU: "SKU-A", Quantity: 1, UnitPrice: moneyFromInt(10)}}},
		{ExternalID: "EXT-601", Items: []channel.CanonicalItem{{SKU: "SKU-A", Quantity: 2, UnitPrice: moneyFromInt(10)}}},
	})
	if err != nil {
		t.Fatalf("BatchImport error: %v", err)
	}
	if report.Total != 2 || report.Created != 1 || report.Duplicates != 1 || report.Failed != 0 {
		t.Fatalf("report want 2/1/1/0 got %+v", report)
	}

	level := loadStockLevel(t, db, productID, warehouseID)
	if level.Reserved != 3 {
		t.Fatalf("reserved want 3 got %d", level.Reserved)
	}
}
