package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/omniorder/internal/constants"
	"github.com/omniorder/internal/models"
	"github.com/omniorder/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupReservationTest(t *testing.T) (*ReservationService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:reservation_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Warehouse{},
		&models.Product{},
		&models.StockLevel{},
		&models.StockMovement{},
		&models.StockReservation{},
		&models.Order{},
		&models.OrderItem{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db

	ledger := NewStockLedgerService(repository.NewStockLevelRepository(db), repository.NewStockMovementRepository(db))
	svc := NewReservationService(
		repository.NewStockReservationRepository(db),
		repository.NewStockLevelRepository(db),
		repository.NewWarehouseRepository(db),
		repository.NewOrderRepository(db),
		ledger,
		24,
	)
	return svc, db
}

func seedWarehouse(t *testing.T, db *gorm.DB, tenantID uint, code string, isDefault bool) uint {
	t.Helper()
	wh := models.Warehouse{TenantID: tenantID, Name: code, Code: code, IsDefault: isDefault, IsActive: true}
	if err := db.Create(&wh).Error; err != nil {
		t.Fatalf("seed warehouse failed: %v", err)
	}
	return wh.ID
}

func TestReserveThenBackorderThenRelease(t *testing.T) {
	svc, db := setupReservationTest(t)
	warehouseID := seedWarehouse(t, db, 1, "WH-A", true)
	seedStockLevel(t, db, 1, warehouseID, 10)

	outcome, err := svc.Reserve(ReserveInput{ProductID: 1, Quantity: 4, TenantID: 1, Reference: "OO-1"})
	if err != nil {
		t.Fatalf("Reserve error: %v", err)
	}
	if outcome.Backorder || outcome.Reservation == nil {
		t.Fatalf("unexpected outcome: %+v", outcome)
	}
	if outcome.Reservation.Status != constants.ReservationStatusActive {
		t.Fatalf("reservation status want active got %s", outcome.Reservation.Status)
	}
	if outcome.Reservation.WarehouseID != warehouseID {
		t.Fatalf("reservation should land in default warehouse")
	}

	level := loadStockLevel(t, db, 1, warehouseID)
	if level.Available != 6 || level.Reserved != 4 {
		t.Fatalf("buckets want 6/4 got %d/%d", level.Available, level.Reserved)
	}

	// 剩余 6 件，再要 7 件转缺货而非报错
	short, err := svc.Reserve(ReserveInput{ProductID: 1, Quantity: 7, TenantID: 1, Reference: "OO-2"})
	if err != nil {
		t.Fatalf("Reserve shortfall error: %v", err)
	}
	if !short.Backorder || short.Reservation != nil {
		t.Fatalf("expected backorder outcome, got %+v", short)
	}
	level = loadStockLevel(t, db, 1, warehouseID)
	if level.Available != 6 || level.Reserved != 4 {
		t.Fatalf("backorder must not change buckets, got %d/%d", level.Available, level.Reserved)
	}

	if err := svc.Release(outcome.Reservation.ID, "order canceled"); err != nil {
		t.Fatalf("Release error: %v", err)
	}
	level = loadStockLevel(t, db, 1, warehouseID)
	if level.Available != 10 || level.Reserved != 0 {
		t.Fatalf("release must restore buckets, got %d/%d", level.Available, level.Reserved)
	}

	// 重复释放幂等
	if err := svc.Release(outcome.Reservation.ID, "again"); err != nil {
		t.Fatalf("second Release should be idempotent, got %v", err)
	}
}

func TestReserveWarehousePriority(t *testing.T) {
	svc, db := setupReservationTest(t)
	defaultID := seedWarehouse(t, db, 1, "WH-DEFAULT", true)
	channelID := seedWarehouse(t, db, 1, "WH-CHANNEL", false)
	preferredID := seedWarehouse(t, db, 1, "WH-PREF", false)
	seedStockLevel(t, db, 1, defaultID, 10)
	seedStockLevel(t, db, 1, channelID, 10)
	seedStockLevel(t, db, 1, preferredID, 10)

	outcome, err := svc.Reserve(ReserveInput{
		ProductID:          1,
		Quantity:           1,
		TenantID:           1,
		PreferredWarehouse: &preferredID,
		ChannelDefault:     &channelID,
	})
	if err != nil {
		t.Fatalf("Reserve error: %v", err)
	}
	if outcome.Reservation.WarehouseID != preferredID {
		t.Fatalf("preferred warehouse should win, got %d", outcome.Reservation.WarehouseID)
	}

	outcome, err = svc.Reserve(ReserveInput{
		ProductID:      1,
		Quantity:       1,
		TenantID:       1,
		ChannelDefault: &channelID,
	})
	if err != nil {
		t.Fatalf("Reserve error: %v", err)
	}
	if outcome.Reservation.WarehouseID != channelID {
		t.Fatalf("channel default should win over tenant default, got %d", outcome.Reservation.WarehouseID)
	}

	_, err = svc.Reserve(ReserveInput{ProductID: 1, Quantity: 1})
	if !errors.Is(err, ErrNoWarehouseAvailable) {
		t.Fatalf("want ErrNoWarehouseAvailable got %v", err)
	}
}

func TestReserveFallsThroughWhenPreferredShort(t *testing.T) {
	svc, db := setupReservationTest(t)
	preferredID := seedWarehouse(t, db, 1, "WH-PREF", false)
	channelID := seedWarehouse(t, db, 1, "WH-CHANNEL", false)
	seedStockLevel(t, db, 1, preferredID, 1)
	seedStockLevel(t, db, 1, channelID, 10)

	// 指定仓只剩 1 件，5 件的预留应落到渠道默认仓而不是直接缺货
	outcome, err := svc.Reserve(ReserveInput{
		ProductID:          1,
		Quantity:           5,
		TenantID:           1,
		PreferredWarehouse: &preferredID,
		ChannelDefault:     &channelID,
		Reference:          "OO-40",
	})
	if err != nil {
		t.Fatalf("Reserve error: %v", err)
	}
	if outcome.Backorder || outcome.Reservation == nil {
		t.Fatalf("shortfall at preferred warehouse must fall through, got %+v", outcome)
	}
	if outcome.Reservation.WarehouseID != channelID {
		t.Fatalf("reservation should land in channel default, got %d", outcome.Reservation.WarehouseID)
	}

	level := loadStockLevel(t, db, 1, preferredID)
	if level.Available != 1 || level.Reserved != 0 {
		t.Fatalf("preferred warehouse must stay untouched, got %d/%d", level.Available, level.Reserved)
	}
	level = loadStockLevel(t, db, 1, channelID)
	if level.Available != 5 || level.Reserved != 5 {
		t.Fatalf("channel warehouse buckets want 5/5 got %d/%d", level.Available, level.Reserved)
	}

	// 所有候选仓都不足才转缺货
	short, err := svc.Reserve(ReserveInput{
		ProductID:          1,
		Quantity:           50,
		TenantID:           1,
		PreferredWarehouse: &preferredID,
		ChannelDefault:     &channelID,
		Reference:          "OO-41",
	})
	if err != nil {
		t.Fatalf("Reserve shortfall error: %v", err)
	}
	if !short.Backorder {
		t.Fatalf("expected backorder when every candidate is short, got %+v", short)
	}
}

func TestFulfillMovesReservedToAllocated(t *testing.T) {
	svc, db := setupReservationTest(t)
	warehouseID := seedWarehouse(t, db, 1, "WH-A", true)
	seedStockLevel(t, db, 1, warehouseID, 10)

	order := models.Order{TenantID: 1, ChannelID: 1, OrderNo: "OO-10", Status: constants.OrderStatusPending}
	if err := db.Create(&order).Error; err != nil {
		t.Fatalf("seed order failed: %v", err)
	}
	item := models.OrderItem{OrderID: order.ID, ChannelSKU: "x", Quantity: 3, Status: constants.ItemStatusReserved}
	if err := db.Create(&item).Error; err != nil {
		t.Fatalf("seed item failed: %v", err)
	}

	outcome, err := svc.Reserve(ReserveInput{ProductID: 1, Quantity: 3, TenantID: 1, OrderItemID: &item.ID, Reference: order.OrderNo})
	if err != nil {
		t.Fatalf("Reserve error: %v", err)
	}

	if err := svc.Fulfill(outcome.Reservation.ID); err != nil {
		t.Fatalf("Fulfill error: %v", err)
	}

	level := loadStockLevel(t, db, 1, warehouseID)
	if level.Reserved != 0 || level.Allocated != 3 {
		t.Fatalf("fulfill buckets want 0/3 got %d/%d", level.Reserved, level.Allocated)
	}

	var updated models.OrderItem
	if err := db.First(&updated, item.ID).Error; err != nil {
		t.Fatalf("load item failed: %v", err)
	}
	if updated.Status != constants.ItemStatusAllocated {
		t.Fatalf("item status want allocated got %s", updated.Status)
	}

	// 已履约的预留不可再释放
	if err := svc.Release(outcome.Reservation.ID, "late cancel"); !errors.Is(err, ErrReservationTerminal) {
		t.Fatalf("want ErrReservationTerminal got %v", err)
	}
	if err := svc.Fulfill(outcome.Reservation.ID); !errors.Is(err, ErrReservationTerminal) {
		t.Fatalf("second fulfill want ErrReservationTerminal got %v", err)
	}
}

func TestExpireStaleSweep(t *testing.T) {
	svc, db := setupReservationTest(t)
	warehouseID := seedWarehouse(t, db, 1, "WH-A", true)
	seedStockLevel(t, db, 1, warehouseID, 10)

	order := models.Order{TenantID: 1, ChannelID: 1, OrderNo: "OO-20", Status: constants.OrderStatusPending}
	if err := db.Create(&order).Error; err != nil {
		t.Fatalf("seed order failed: %v", err)
	}
	item := models.OrderItem{OrderID: order.ID, ChannelSKU: "x", Quantity: 2, Status: constants.ItemStatusReserved}
	if err := db.Create(&item).Error; err != nil {
		t.Fatalf("seed item failed: %v", err)
	}

	outcome, err := svc.Reserve(ReserveInput{ProductID: 1, Quantity: 2, TenantID: 1, OrderItemID: &item.ID, Reference: order.OrderNo})
	if err != nil {
		t.Fatalf("Reserve error: %v", err)
	}

	// 把预留时间拨回过去
	past := time.Now().Add(-25 * time.Hour)
	if err := db.Model(&models.StockReservation{}).Where("id = ?", outcome.Reservation.ID).Update("expires_at", past).Error; err != nil {
		t.Fatalf("backdate reservation failed: %v", err)
	}

	expired, err := svc.ExpireStale(time.Now(), 100)
	if err != nil {
		t.Fatalf("ExpireStale error: %v", err)
	}
	if expired != 1 {
		t.Fatalf("expired want 1 got %d", expired)
	}

	level := loadStockLevel(t, db, 1, warehouseID)
	if level.Available != 10 || level.Reserved != 0 {
		t.Fatalf("expiry must restore buckets, got %d/%d", level.Available, level.Reserved)
	}

	var reservation models.StockReservation
	if err := db.First(&reservation, outcome.Reservation.ID).Error; err != nil {
		t.Fatalf("load reservation failed: %v", err)
	}
	if reservation.Status != constants.ReservationStatusExpired {
		t.Fatalf("reservation status want expired got %s", reservation.Status)
	}

	var updated models.OrderItem
	if err := db.First(&updated, item.ID).Error; err != nil {
		t.Fatalf("load item failed: %v", err)
	}
	if updated.Status != constants.ItemStatusBackorder {
		t.Fatalf("item status want backorder got %s", updated.Status)
	}

	// 再次清扫无事可做
	expired, err = svc.ExpireStale(time.Now(), 100)
	if err != nil {
		t.Fatalf("second ExpireStale error: %v", err)
	}
	if expired != 0 {
		t.Fatalf("second sweep want 0 got %d", expired)
	}
}

func TestReleaseByReference(t *testing.T) {
	svc, db := setupReservationTest(t)
	warehouseID := seedWarehouse(t, db, 1, "WH-A", true)
	seedStockLevel(t, db, 1, warehouseID, 10)
	seedStockLevel(t, db, 2, warehouseID, 10)

	if _, err := svc.Reserve(ReserveInput{ProductID: 1, Quantity: 2, TenantID: 1, Reference: "OO-30"}); err != nil {
		t.Fatalf("Reserve error: %v", err)
	}
	if _, err := svc.Reserve(ReserveInput{ProductID: 2, Quantity: 3, TenantID: 1, Reference: "OO-30"}); err != nil {
		t.Fatalf("Reserve error: %v", err)
	}
	if _, err := svc.Reserve(ReserveInput{ProductID: 1, Quantity: 1, TenantID: 1, Reference: "OO-31"}); err != nil {
		t.Fatalf("Reserve error: %v", err)
	}

	released, err := svc.ReleaseByReference("OO-30", "order canceled")
	if err != nil {
		t.Fatalf("ReleaseByReference error: %v", err)
	}
	if released != 2 {
		t.Fatalf("released want 2 got %d", released)
	}

	level := loadStockLevel(t, db, 1, warehouseID)
	if level.Available != 9 || level.Reserved != 1 {
		t.Fatalf("other reference must stay reserved, got %d/%d", level.Available, level.Reserved)
	}
}
