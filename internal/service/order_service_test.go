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

func setupOrderTest(t *testing.T) (*OrderService, *ReservationService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:order_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
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

	orderRepo := repository.NewOrderRepository(db)
	ledger := NewStockLedgerService(repository.NewStockLevelRepository(db), repository.NewStockMovementRepository(db))
	reservations := NewReservationService(
		repository.NewStockReservationRepository(db),
		repository.NewStockLevelRepository(db),
		repository.NewWarehouseRepository(db),
		orderRepo,
		ledger,
		24,
	)
	svc := NewOrderService(orderRepo, reservations, ledger)
	return svc, reservations, db
}

func seedFulfillmentOrder(t *testing.T, db *gorm.DB, orderNo string) *models.Order {
	t.Helper()
	order := models.Order{
		TenantID:      1,
		OrderNo:       orderNo,
		ChannelID:     1,
		Status:        constants.OrderStatusPending,
		PaymentStatus: constants.PaymentStatusPending,
		Currency:      "USD",
	}
	if err := db.Create(&order).Error; err != nil {
		t.Fatalf("seed order failed: %v", err)
	}
	return &order
}

// seedReservedItem 创建订单行并完成预留，返回带 ReservationID 的订单行
func seedReservedItem(t *testing.T, db *gorm.DB, reservations *ReservationService, order *models.Order, productID uint, quantity int) *models.OrderItem {
	t.Helper()
	item := models.OrderItem{
		OrderID:    order.ID,
		ProductID:  &productID,
		ChannelSKU: fmt.Sprintf("SKU-%d", productID),
		Quantity:   quantity,
		Status:     constants.ItemStatusPending,
	}
	if err := db.Create(&item).Error; err != nil {
		t.Fatalf("seed order item failed: %v", err)
	}

	outcome, err := reservations.Reserve(ReserveInput{
		ProductID:   productID,
		Quantity:    quantity,
		TenantID:    order.TenantID,
		OrderItemID: &item.ID,
		Reference:   order.OrderNo,
	})
	if err != nil {
		t.Fatalf("Reserve error: %v", err)
	}
	if outcome.Backorder {
		t.Fatalf("unexpected backorder while seeding")
	}
	item.Status = constants.ItemStatusReserved
	item.ReservationID = &outcome.Reservation.ID
	if err := db.Save(&item).Error; err != nil {
		t.Fatalf("save order item failed: %v", err)
	}
	return &item
}

func TestOrderTransitionRules(t *testing.T) {
	cases := []struct {
		from    string
		to      string
		allowed bool
	}{
		{constants.OrderStatusPending, constants.OrderStatusConfirmed, true},
		{constants.OrderStatusPending, constants.OrderStatusShipped, false},
		{constants.OrderStatusConfirmed, constants.OrderStatusProcessing, true},
		{constants.OrderStatusProcessing, constants.OrderStatusShipped, true},
		{constants.OrderStatusShipped, constants.OrderStatusDelivered, true},
		{constants.OrderStatusShipped, constants.OrderStatusCanceled, false},
		{constants.OrderStatusCanceled, constants.OrderStatusPending, false},
		{constants.OrderStatusShipped, constants.OrderStatusShipped, true},
	}
	for _, c := range cases {
		if got := isOrderTransitionAllowed(c.from, c.to); got != c.allowed {
			t.Errorf("isOrderTransitionAllowed(%s, %s) want %v got %v", c.from, c.to, c.allowed, got)
		}
	}

	itemCases := []struct {
		from    string
		to      string
		allowed bool
	}{
		{constants.ItemStatusReserved, constants.ItemStatusAllocated, true},
		{constants.ItemStatusReserved, constants.ItemStatusShipped, false},
		{constants.ItemStatusAllocated, constants.ItemStatusPicked, true},
		{constants.ItemStatusPicked, constants.ItemStatusPacked, true},
		{constants.ItemStatusPacked, constants.ItemStatusShipped, true},
		{constants.ItemStatusShipped, constants.ItemStatusCanceled, false},
		{constants.ItemStatusBackorder, constants.ItemStatusReserved, true},
	}
	for _, c := range itemCases {
		if got := isItemTransitionAllowed(c.from, c.to); got != c.allowed {
			t.Errorf("isItemTransitionAllowed(%s, %s) want %v got %v", c.from, c.to, c.allowed, got)
		}
	}
}

func TestUpdateStatusRejectsInvalidTransition(t *testing.T) {
	svc, _, db := setupOrderTest(t)
	order := seedFulfillmentOrder(t, db, "OO-T1")

	if _, err := svc.UpdateStatus(order.ID, constants.OrderStatusDelivered); !errors.Is(err, ErrInvalidOrderStatus) {
		t.Fatalf("pending to delivered want ErrInvalidOrderStatus got %v", err)
	}

	updated, err := svc.UpdateStatus(order.ID, constants.OrderStatusConfirmed)
	if err != nil {
		t.Fatalf("UpdateStatus error: %v", err)
	}
	if updated.Status != constants.OrderStatusConfirmed {
		t.Fatalf("status want confirmed got %s", updated.Status)
	}
}

func TestMarkPaidAdvancesPendingOrder(t *testing.T) {
	svc, _, db := setupOrderTest(t)
	order := seedFulfillmentOrder(t, db, "OO-P1")

	paid, err := svc.MarkPaid(order.ID)
	if err != nil {
		t.Fatalf("MarkPaid error: %v", err)
	}
	if paid.PaymentStatus != constants.PaymentStatusPaid {
		t.Fatalf("payment status want paid got %s", paid.PaymentStatus)
	}
	if paid.Status != constants.OrderStatusConfirmed {
		t.Fatalf("pending order should advance to confirmed, got %s", paid.Status)
	}

	again, err := svc.MarkPaid(order.ID)
	if err != nil {
		t.Fatalf("repeat MarkPaid error: %v", err)
	}
	if again.Status != constants.OrderStatusConfirmed {
		t.Fatalf("repeat MarkPaid should be a no-op, got %s", again.Status)
	}
}

func TestCancelOrderReleasesReservations(t *testing.T) {
	svc, reservations, db := setupOrderTest(t)
	warehouseID := seedWarehouse(t, db, 1, "WH-A", true)
	seedStockLevel(t, db, 1, warehouseID, 10)
	order := seedFulfillmentOrder(t, db, "OO-C1")
	item := seedReservedItem(t, db, reservations, order, 1, 4)

	canceled, err := svc.CancelOrder(order.ID, "customer request")
	if err != nil {
		t.Fatalf("CancelOrder error: %v", err)
	}
	if canceled.Status != constants.OrderStatusCanceled || canceled.CanceledAt == nil {
		t.Fatalf("order should be canceled with timestamp, got %s", canceled.Status)
	}

	level := loadStockLevel(t, db, 1, warehouseID)
	if level.Available != 10 || level.Reserved != 0 {
		t.Fatalf("stock should be restored, got %d/%d", level.Available, level.Reserved)
	}

	var reservation models.StockReservation
	if err := db.First(&reservation, *item.ReservationID).Error; err != nil {
		t.Fatalf("reload reservation failed: %v", err)
	}
	if reservation.Status != constants.ReservationStatusCanceled {
		t.Fatalf("reservation status want cancelled got %s", reservation.Status)
	}

	var reloaded models.OrderItem
	if err := db.First(&reloaded, item.ID).Error; err != nil {
		t.Fatalf("reload item failed: %v", err)
	}
	if reloaded.Status != constants.ItemStatusCanceled {
		t.Fatalf("item status want canceled got %s", reloaded.Status)
	}

	// 重复取消幂等
	again, err := svc.CancelOrder(order.ID, "")
	if err != nil {
		t.Fatalf("repeat CancelOrder error: %v", err)
	}
	if again.Status != constants.OrderStatusCanceled {
		t.Fatalf("repeat cancel should keep order canceled")
	}
}

func TestItemFulfillmentFlow(t *testing.T) {
	svc, reservations, db := setupOrderTest(t)
	warehouseID := seedWarehouse(t, db, 1, "WH-A", true)
	seedStockLevel(t, db, 1, warehouseID, 10)
	order := seedFulfillmentOrder(t, db, "OO-F1")
	item := seedReservedItem(t, db, reservations, order, 1, 3)

	if _, err := svc.UpdateStatus(order.ID, constants.OrderStatusProcessing); err != nil {
		t.Fatalf("advance order to processing failed: %v", err)
	}

	allocated, err := svc.AllocateItem(item.ID)
	if err != nil {
		t.Fatalf("AllocateItem error: %v", err)
	}
	if allocated.Status != constants.ItemStatusAllocated {
		t.Fatalf("item status want allocated got %s", allocated.Status)
	}
	level := loadStockLevel(t, db, 1, warehouseID)
	if level.Reserved != 0 || level.Allocated != 3 {
		t.Fatalf("buckets want reserved 0 allocated 3 got %d/%d", level.Reserved, level.Allocated)
	}

	// 发货前必须先拣货打包
	if _, err := svc.ShipItem(item.ID); !errors.Is(err, ErrInvalidItemStatus) {
		t.Fatalf("ship from allocated want ErrInvalidItemStatus got %v", err)
	}

	if _, err := svc.PickItem(item.ID); err != nil {
		t.Fatalf("PickItem error: %v", err)
	}
	if _, err := svc.PackItem(item.ID); err != nil {
		t.Fatalf("PackItem error: %v", err)
	}
	shipped, err := svc.ShipItem(item.ID)
	if err != nil {
		t.Fatalf("ShipItem error: %v", err)
	}
	if shipped.Status != constants.ItemStatusShipped {
		t.Fatalf("item status want shipped got %s", shipped.Status)
	}

	level = loadStockLevel(t, db, 1, warehouseID)
	if level.Allocated != 0 || level.Total() != 7 {
		t.Fatalf("shipment should deduct allocated stock, got allocated %d total %d", level.Allocated, level.Total())
	}

	var movement models.StockMovement
	if err := db.Where("movement_type = ? AND reference = ?", constants.MovementTypeOut, order.OrderNo).First(&movement).Error; err != nil {
		t.Fatalf("outbound movement not recorded: %v", err)
	}

	// 唯一订单行发货后订单自动推进
	finalOrder, err := svc.GetByID(order.ID)
	if err != nil {
		t.Fatalf("reload order failed: %v", err)
	}
	if finalOrder.Status != constants.OrderStatusShipped || finalOrder.ShippedAt == nil {
		t.Fatalf("order should auto-advance to shipped, got %s", finalOrder.Status)
	}
}

// 套装行没有行级 ReservationID，分配与发货按订单行名下的组件预留执行
func TestBundleItemFulfillmentFlow(t *testing.T) {
	svc, reservations, db := setupOrderTest(t)
	warehouseID := seedWarehouse(t, db, 1, "WH-A", true)
	seedStockLevel(t, db, 1, warehouseID, 10)
	seedStockLevel(t, db, 2, warehouseID, 10)
	order := seedFulfillmentOrder(t, db, "OO-B1")

	item := models.OrderItem{
		OrderID:    order.ID,
		ChannelSKU: "SKU-KIT",
		Quantity:   2,
		Status:     constants.ItemStatusPending,
	}
	if err := db.Create(&item).Error; err != nil {
		t.Fatalf("seed order item failed: %v", err)
	}
	for _, component := range []struct {
		productID uint
		quantity  int
	}{{1, 4}, {2, 2}} {
		outcome, err := reservations.Reserve(ReserveInput{
			ProductID:   component.productID,
			Quantity:    component.quantity,
			TenantID:    1,
			OrderItemID: &item.ID,
			Reference:   order.OrderNo,
		})
		if err != nil {
			t.Fatalf("Reserve component error: %v", err)
		}
		if outcome.Backorder {
			t.Fatalf("unexpected backorder while seeding component %d", component.productID)
		}
	}
	if err := db.Model(&item).Update("status", constants.ItemStatusReserved).Error; err != nil {
		t.Fatalf("mark item reserved failed: %v", err)
	}

	if _, err := svc.UpdateStatus(order.ID, constants.OrderStatusProcessing); err != nil {
		t.Fatalf("advance order to processing failed: %v", err)
	}

	allocated, err := svc.AllocateItem(item.ID)
	if err != nil {
		t.Fatalf("AllocateItem error: %v", err)
	}
	if allocated.Status != constants.ItemStatusAllocated {
		t.Fatalf("item status want allocated got %s", allocated.Status)
	}
	levelA := loadStockLevel(t, db, 1, warehouseID)
	if levelA.Reserved != 0 || levelA.Allocated != 4 {
		t.Fatalf("component 1 buckets want reserved 0 allocated 4 got %d/%d", levelA.Reserved, levelA.Allocated)
	}
	levelB := loadStockLevel(t, db, 2, warehouseID)
	if levelB.Reserved != 0 || levelB.Allocated != 2 {
		t.Fatalf("component 2 buckets want reserved 0 allocated 2 got %d/%d", levelB.Reserved, levelB.Allocated)
	}

	if _, err := svc.PickItem(item.ID); err != nil {
		t.Fatalf("PickItem error: %v", err)
	}
	if _, err := svc.PackItem(item.ID); err != nil {
		t.Fatalf("PackItem error: %v", err)
	}
	shipped, err := svc.ShipItem(item.ID)
	if err != nil {
		t.Fatalf("ShipItem error: %v", err)
	}
	if shipped.Status != constants.ItemStatusShipped {
		t.Fatalf("item status want shipped got %s", shipped.Status)
	}

	levelA = loadStockLevel(t, db, 1, warehouseID)
	if levelA.Allocated != 0 || levelA.Total() != 6 {
		t.Fatalf("component 1 shipment mismatch, allocated %d total %d", levelA.Allocated, levelA.Total())
	}
	levelB = loadStockLevel(t, db, 2, warehouseID)
	if levelB.Allocated != 0 || levelB.Total() != 8 {
		t.Fatalf("component 2 shipment mismatch, allocated %d total %d", levelB.Allocated, levelB.Total())
	}

	var outbound int64
	if err := db.Model(&models.StockMovement{}).
		Where("movement_type = ? AND reference = ?", constants.MovementTypeOut, order.OrderNo).
		Count(&outbound).Error; err != nil {
		t.Fatalf("count outbound movements failed: %v", err)
	}
	if outbound != 2 {
		t.Fatalf("outbound movements want 2 got %d", outbound)
	}

	finalOrder, err := svc.GetByID(order.ID)
	if err != nil {
		t.Fatalf("reload order failed: %v", err)
	}
	if finalOrder.Status != constants.OrderStatusShipped {
		t.Fatalf("order should auto-advance to shipped, got %s", finalOrder.Status)
	}
}
