package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/omniorder/internal/channel"
	"github.com/omniorder/internal/constants"
	"github.com/omniorder/internal/models"
	"github.com/omniorder/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

// fakeAdapter 可编排失败次数的测试适配器
type fakeAdapter struct {
	failTimes map[string]int
	attempts  map[string]int
	pushed    map[string]int
}

func newFakeAdapter() *fakeAdapter {
	return &fakeAdapter{
		failTimes: make(map[string]int),
		attempts:  make(map[string]int),
		pushed:    make(map[string]int),
	}
}

func (a *fakeAdapter) Type() string            { return "fake" }
func (a *fakeAdapter) SignatureHeader() string { return "X-Fake-Signature" }

func (a *fakeAdapter) NormalizeOrder(raw []byte) (*channel.CanonicalOrder, error) {
	return nil, channel.ErrMalformedPayload
}

func (a *fakeAdapter) PushStock(_ context.Context, _ *models.Channel, channelSKU string, quantity int) error {
	a.attempts[channelSKU]++
	if a.attempts[channelSKU] <= a.failTimes[channelSKU] {
		return fmt.Errorf("push %s rejected", channelSKU)
	}
	a.pushed[channelSKU] = quantity
	return nil
}

func setupSyncTest(t *testing.T) (*SyncService, *fakeAdapter, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:sync_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
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
		&models.ChannelSyncLog{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db

	adapter := newFakeAdapter()
	registry := channel.NewRegistry()
	registry.Register(adapter)

	svc := NewSyncService(
		repository.NewChannelRepository(db),
		repository.NewSKUMappingRepository(db),
		repository.NewStockLevelRepository(db),
		repository.NewBundleRepository(db),
		repository.NewSyncLogRepository(db),
		registry,
		1,
	)
	svc.retryBackoff = time.Millisecond
	return svc, adapter, db
}

func seedSyncChannel(t *testing.T, db *gorm.DB) *models.Channel {
	t.Helper()
	ch := models.Channel{TenantID: 1, Name: "fake store", ChannelType: "fake", IsActive: true}
	if err := db.Create(&ch).Error; err != nil {
		t.Fatalf("seed channel failed: %v", err)
	}
	return &ch
}

func seedSyncMapping(t *testing.T, db *gorm.DB, channelID uint, channelSKU string, productID, bundleID *uint, stockOverride *int) {
	t.Helper()
	mapping := models.SKUMapping{
		ChannelID:     channelID,
		ChannelSKU:    channelSKU,
		ProductID:     productID,
		BundleID:      bundleID,
		StockOverride: stockOverride,
		IsActive:      true,
	}
	if err := db.Create(&mapping).Error; err != nil {
		t.Fatalf("seed mapping failed: %v", err)
	}
}

func uintPtr(v uint) *uint { return &v }
func intPtr(v int) *int    { return &v }

func TestSyncStockToChannelPartialFailure(t *testing.T) {
	svc, adapter, db := setupSyncTest(t)
	whA := seedWarehouse(t, db, 1, "WH-A", true)
	whB := seedWarehouse(t, db, 1, "WH-B", false)
	seedStockLevel(t, db, 1, whA, 5)
	seedStockLevel(t, db, 1, whB, 2)
	seedStockLevel(t, db, 2, whA, 4)
	ch := seedSyncChannel(t, db)
	seedSyncMapping(t, db, ch.ID, "sku-ok", uintPtr(1), nil, nil)
	seedSyncMapping(t, db, ch.ID, "sku-bad", uintPtr(2), nil, nil)
	adapter.failTimes["sku-bad"] = 100

	report, err := svc.SyncStockToChannel(context.Background(), ch.ID)
	if err != nil {
		t.Fatalf("SyncStockToChannel error: %v", err)
	}
	if report.Processed != 2 || report.Succeeded != 1 || report.Failed != 1 {
		t.Fatalf("report want 2/1/1 got %d/%d/%d", report.Processed, report.Succeeded, report.Failed)
	}
	// 可售量为租户全部仓库之和
	if adapter.pushed["sku-ok"] != 7 {
		t.Fatalf("pushed quantity want 7 got %d", adapter.pushed["sku-ok"])
	}
	if _, ok := report.Errors["sku-bad"]; !ok {
		t.Fatalf("failed sku should be reported: %v", report.Errors)
	}

	var entry models.ChannelSyncLog
	if err := db.Where("channel_id = ? AND sync_type = ?", ch.ID, constants.SyncTypeStockPush).First(&entry).Error; err != nil {
		t.Fatalf("sync log not written: %v", err)
	}
	if entry.Status != constants.SyncLogStatusPartial {
		t.Fatalf("log status want partial got %s", entry.Status)
	}
	if entry.RecordsProcessed != 2 || entry.RecordsSucceeded != 1 || entry.RecordsFailed != 1 {
		t.Fatalf("log counts want 2/1/1 got %d/%d/%d", entry.RecordsProcessed, entry.RecordsSucceeded, entry.RecordsFailed)
	}
	if entry.DetailsJSON == nil {
		t.Fatalf("per-sku errors should be recorded in details")
	}

	var reloaded models.Channel
	if err := db.First(&reloaded, ch.ID).Error; err != nil {
		t.Fatalf("reload channel failed: %v", err)
	}
	if reloaded.SyncStatus != constants.ChannelSyncStatusConnected || reloaded.LastSyncAt == nil {
		t.Fatalf("channel should stay connected after partial sync, got %s", reloaded.SyncStatus)
	}
}

func TestSyncStockOverrideWins(t *testing.T) {
	svc, adapter, db := setupSyncTest(t)
	whA := seedWarehouse(t, db, 1, "WH-A", true)
	seedStockLevel(t, db, 1, whA, 5)
	ch := seedSyncChannel(t, db)
	seedSyncMapping(t, db, ch.ID, "sku-fixed", uintPtr(1), nil, intPtr(99))

	report, err := svc.SyncStockToChannel(context.Background(), ch.ID)
	if err != nil {
		t.Fatalf("SyncStockToChannel error: %v", err)
	}
	if report.Succeeded != 1 {
		t.Fatalf("report want 1 succeeded got %+v", report)
	}
	if adapter.pushed["sku-fixed"] != 99 {
		t.Fatalf("override quantity want 99 got %d", adapter.pushed["sku-fixed"])
	}
}

func TestSyncBundleSellableQuantity(t *testing.T) {
	svc, adapter, db := setupSyncTest(t)
	whA := seedWarehouse(t, db, 1, "WH-A", true)
	seedStockLevel(t, db, 1, whA, 10)
	seedStockLevel(t, db, 2, whA, 3)
	bundleID := seedBundle(t, db, []models.BundleComponent{
		{ProductID: 1, Quantity: 2},
		{ProductID: 2, Quantity: 1},
		{ProductID: 3, Quantity: 1, IsOptional: true},
	})
	ch := seedSyncChannel(t, db)
	seedSyncMapping(t, db, ch.ID, "sku-kit", nil, uintPtr(bundleID), nil)

	report, err := svc.SyncStockToChannel(context.Background(), ch.ID)
	if err != nil {
		t.Fatalf("SyncStockToChannel error: %v", err)
	}
	if report.Succeeded != 1 {
		t.Fatalf("report want 1 succeeded got %+v", report)
	}
	// 组件一 10/2=5 套，组件二 3/1=3 套，可选组件不参与
	if adapter.pushed["sku-kit"] != 3 {
		t.Fatalf("bundle sellable want 3 got %d", adapter.pushed["sku-kit"])
	}
}

func TestSyncAllFailedMarksChannelError(t *testing.T) {
	svc, adapter, db := setupSyncTest(t)
	whA := seedWarehouse(t, db, 1, "WH-A", true)
	seedStockLevel(t, db, 1, whA, 5)
	ch := seedSyncChannel(t, db)
	seedSyncMapping(t, db, ch.ID, "sku-bad", uintPtr(1), nil, nil)
	adapter.failTimes["sku-bad"] = 100

	report, err := svc.SyncStockToChannel(context.Background(), ch.ID)
	if err != nil {
		t.Fatalf("SyncStockToChannel error: %v", err)
	}
	if report.Failed != 1 || report.Succeeded != 0 {
		t.Fatalf("report want all failed got %+v", report)
	}

	var reloaded models.Channel
	if err := db.First(&reloaded, ch.ID).Error; err != nil {
		t.Fatalf("reload channel failed: %v", err)
	}
	if reloaded.SyncStatus != constants.ChannelSyncStatusError || reloaded.SyncError == "" {
		t.Fatalf("channel should record sync error, got %s/%q", reloaded.SyncStatus, reloaded.SyncError)
	}

	var entry models.ChannelSyncLog
	if err := db.Where("channel_id = ?", ch.ID).First(&entry).Error; err != nil {
		t.Fatalf("sync log not written: %v", err)
	}
	if entry.Status != constants.SyncLogStatusFailed {
		t.Fatalf("log status want failed got %s", entry.Status)
	}
}

func TestSyncPushRetriesTransientFailure(t *testing.T) {
	svc, adapter, db := setupSyncTest(t)
	svc.maxRetries = 3
	whA := seedWarehouse(t, db, 1, "WH-A", true)
	seedStockLevel(t, db, 1, whA, 5)
	ch := seedSyncChannel(t, db)
	seedSyncMapping(t, db, ch.ID, "sku-flaky", uintPtr(1), nil, nil)
	adapter.failTimes["sku-flaky"] = 2

	report, err := svc.SyncStockToChannel(context.Background(), ch.ID)
	if err != nil {
		t.Fatalf("SyncStockToChannel error: %v", err)
	}
	if report.Succeeded != 1 || report.Failed != 0 {
		t.Fatalf("transient failure should be retried, got %+v", report)
	}
	if adapter.attempts["sku-flaky"] != 3 {
		t.Fatalf("attempts want 3 got %d", adapter.attempts["sku-flaky"])
	}
}

func TestSyncChannelGuards(t *testing.T) {
	svc, _, db := setupSyncTest(t)

	if _, err := svc.SyncStockToChannel(context.Background(), 9999); !errors.Is(err, ErrChannelNotFound) {
		t.Fatalf("missing channel want ErrChannelNotFound got %v", err)
	}

	ch := seedSyncChannel(t, db)
	if err := db.Model(&models.Channel{}).Where("id = ?", ch.ID).Update("is_active", false).Error; err != nil {
		t.Fatalf("deactivate channel failed: %v", err)
	}
	if _, err := svc.SyncStockToChannel(context.Background(), ch.ID); !errors.Is(err, ErrChannelDisabled) {
		t.Fatalf("disabled channel want ErrChannelDisabled got %v", err)
	}

	other := models.Channel{TenantID: 1, Name: "shopify store", ChannelType: constants.ChannelTypeShopify, IsActive: true}
	if err := db.Create(&other).Error; err != nil {
		t.Fatalf("seed channel failed: %v", err)
	}
	if _, err := svc.SyncStockToChannel(context.Background(), other.ID); !errors.Is(err, ErrUnsupportedChannel) {
		t.Fatalf("unregistered adapter want ErrUnsupportedChannel got %v", err)
	}
}
