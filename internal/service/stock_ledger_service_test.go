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

func setupLedgerTest(t *testing.T) (*StockLedgerService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:ledger_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Warehouse{},
		&models.Product{},
		&models.StockLevel{},
		&models.StockMovement{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db
	ledger := NewStockLedgerService(repository.NewStockLevelRepository(db), repository.NewStockMovementRepository(db))
	return ledger, db
}

func seedStockLevel(t *testing.T, db *gorm.DB, productID, warehouseID uint, available int) {
	t.Helper()
	level := models.StockLevel{ProductID: productID, WarehouseID: warehouseID, Available: available}
	if err := db.Create(&level).Error; err != nil {
		t.Fatalf("seed stock level failed: %v", err)
	}
}

func loadStockLevel(t *testing.T, db *gorm.DB, productID, warehouseID uint) models.StockLevel {
	t.Helper()
	var level models.StockLevel
	if err := db.Where("product_id = ? AND warehouse_id = ?", productID, warehouseID).First(&level).Error; err != nil {
		t.Fatalf("load stock level failed: %v", err)
	}
	return level
}

func TestLedgerStockInCreatesLevelAndMovement(t *testing.T) {
	ledger, db := setupLedgerTest(t)

	movement, err := ledger.StockIn(1, 1, 50, "PO-1001", "")
	if err != nil {
		t.Fatalf("StockIn error: %v", err)
	}
	if movement.MovementType != constants.MovementTypeIn || movement.Quantity != 50 {
		t.Fatalf("unexpected movement: %+v", movement)
	}

	level := loadStockLevel(t, db, 1, 1)
	if level.Available != 50 {
		t.Fatalf("available want 50 got %d", level.Available)
	}
	if movement.CurrentJSON == nil {
		t.Fatalf("movement should record current bucket snapshot")
	}
}

func TestLedgerTransferConservesTotal(t *testing.T) {
	ledger, db := setupLedgerTest(t)
	seedStockLevel(t, db, 1, 1, 10)

	_, err := ledger.Adjust(AdjustStockInput{
		ProductID:    1,
		WarehouseID:  1,
		Deltas:       repository.StockDeltas{Available: -4, Reserved: 4},
		MovementType: constants.MovementTypeReserve,
		Reason:       "order reservation",
	})
	if err != nil {
		t.Fatalf("Adjust error: %v", err)
	}

	level := loadStockLevel(t, db, 1, 1)
	if level.Available != 6 || level.Reserved != 4 {
		t.Fatalf("buckets want 6/4 got %d/%d", level.Available, level.Reserved)
	}
	if level.Total() != 10 {
		t.Fatalf("transfer must conserve total, got %d", level.Total())
	}
}

func TestLedgerTransferRejectsUnbalancedDeltas(t *testing.T) {
	ledger, db := setupLedgerTest(t)
	seedStockLevel(t, db, 1, 1, 10)

	_, err := ledger.Adjust(AdjustStockInput{
		ProductID:    1,
		WarehouseID:  1,
		Deltas:       repository.StockDeltas{Available: -4, Reserved: 3},
		MovementType: constants.MovementTypeReserve,
	})
	if !errors.Is(err, ErrInvalidStockDeltas) {
		t.Fatalf("want ErrInvalidStockDeltas got %v", err)
	}
}

func TestLedgerGuardRejectsOverdraw(t *testing.T) {
	ledger, db := setupLedgerTest(t)
	seedStockLevel(t, db, 1, 1, 3)

	_, err := ledger.Adjust(AdjustStockInput{
		ProductID:    1,
		WarehouseID:  1,
		Deltas:       repository.StockDeltas{Available: -5, Reserved: 5},
		MovementType: constants.MovementTypeReserve,
	})
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("want ErrInsufficientStock got %v", err)
	}

	level := loadStockLevel(t, db, 1, 1)
	if level.Available != 3 || level.Reserved != 0 {
		t.Fatalf("rejected adjust must not change buckets, got %d/%d", level.Available, level.Reserved)
	}

	var count int64
	if err := db.Model(&models.StockMovement{}).Count(&count).Error; err != nil {
		t.Fatalf("count movements failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("rejected adjust must not append movement, got %d", count)
	}
}

func TestLedgerMarkDamaged(t *testing.T) {
	ledger, db := setupLedgerTest(t)
	seedStockLevel(t, db, 1, 1, 10)

	movement, err := ledger.MarkDamaged(1, 1, 2, "QC-7", "water damage")
	if err != nil {
		t.Fatalf("MarkDamaged error: %v", err)
	}
	if movement.Quantity != 2 {
		t.Fatalf("transfer quantity want 2 got %d", movement.Quantity)
	}

	level := loadStockLevel(t, db, 1, 1)
	if level.Available != 8 || level.Damaged != 2 {
		t.Fatalf("buckets want 8 available / 2 damaged, got %d/%d", level.Available, level.Damaged)
	}
}

func TestLedgerZeroDeltasRejected(t *testing.T) {
	ledger, _ := setupLedgerTest(t)

	_, err := ledger.Adjust(AdjustStockInput{ProductID: 1, WarehouseID: 1})
	if !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("want ErrInvalidQuantity got %v", err)
	}
}
