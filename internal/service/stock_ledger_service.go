package service

import (
	"strings"
	"time"

	"github.com/omniorder/internal/constants"
	"github.com/omniorder/internal/logger"
	"github.com/omniorder/internal/models"
	"github.com/omniorder/internal/repository"

	"gorm.io/gorm"
)

// StockLedgerService 库存账本服务，所有库存桶变动的唯一入口
type StockLedgerService struct {
	stockLevelRepo repository.StockLevelRepository
	movementRepo   repository.StockMovementRepository
}

// NewStockLedgerService 创建库存账本服务
func NewStockLedgerService(stockLevelRepo repository.StockLevelRepository, movementRepo repository.StockMovementRepository) *StockLedgerService {
	return &StockLedgerService{
		stockLevelRepo: stockLevelRepo,
		movementRepo:   movementRepo,
	}
}

// AdjustStockInput 库存变动输入
type AdjustStockInput struct {
	ProductID    uint
	WarehouseID  uint
	Deltas       repository.StockDeltas
	MovementType string
	Reason       string
	Reference    string
	Notes        string
}

// 转移类流水类型：桶间转移，总量必须守恒
var transferMovementTypes = map[string]bool{
	constants.MovementTypeReserve:  true,
	constants.MovementTypeRelease:  true,
	constants.MovementTypeAllocate: true,
	constants.MovementTypeTransfer: true,
	constants.MovementTypeExpired:  true,
}

// Adjust 原子应用一次库存变动并追加流水
func (s *StockLedgerService) Adjust(input AdjustStockInput) (*models.StockMovement, error) {
	if input.ProductID == 0 || input.WarehouseID == 0 {
		return nil, ErrStockLevelNotFound
	}
	if input.Deltas.IsZero() {
		return nil, ErrInvalidQuantity
	}
	movementType := strings.TrimSpace(input.MovementType)
	if movementType == "" {
		movementType = constants.MovementTypeAdjustment
	}
	if transferMovementTypes[movementType] && input.Deltas.Sum() != 0 {
		return nil, ErrInvalidStockDeltas
	}

	var movement *models.StockMovement
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		return s.adjustInTx(tx, input, movementType, &movement)
	})
	if err != nil {
		return nil, err
	}
	return movement, nil
}

// AdjustInTx 在外部事务内应用库存变动，供导入等组合流程复用
func (s *StockLedgerService) AdjustInTx(tx *gorm.DB, input AdjustStockInput) (*models.StockMovement, error) {
	movementType := strings.TrimSpace(input.MovementType)
	if movementType == "" {
		movementType = constants.MovementTypeAdjustment
	}
	if transferMovementTypes[movementType] && input.Deltas.Sum() != 0 {
		return nil, ErrInvalidStockDeltas
	}
	var movement *models.StockMovement
	if err := s.adjustInTx(tx, input, movementType, &movement); err != nil {
		return nil, err
	}
	return movement, nil
}

func (s *StockLedgerService) adjustInTx(tx *gorm.DB, input AdjustStockInput, movementType string, out **models.StockMovement) error {
	stockLevelRepo := s.stockLevelRepo.WithTx(tx)
	movementRepo := s.movementRepo.WithTx(tx)

	before, err := stockLevelRepo.GetOrCreate(input.ProductID, input.WarehouseID)
	if err != nil {
		return err
	}
	previous := before.BucketSnapshot()

	affected, err := stockLevelRepo.ApplyDeltas(input.ProductID, input.WarehouseID, input.Deltas)
	if err != nil {
		return err
	}
	if affected == 0 {
		// 行存在但守卫条件不满足，说明数量不足
		logger.Warnw("stock_adjust_guard_rejected",
			"product_id", input.ProductID,
			"warehouse_id", input.WarehouseID,
			"movement_type", movementType,
			"reference", input.Reference,
		)
		return ErrInsufficientStock
	}

	after, err := stockLevelRepo.GetByProductAndWarehouse(input.ProductID, input.WarehouseID)
	if err != nil {
		return err
	}
	if after == nil {
		return ErrStockLevelNotFound
	}

	quantity := input.Deltas.Sum()
	if quantity < 0 {
		quantity = -quantity
	}
	if quantity == 0 {
		// 转移类变动记录转移量
		quantity = transferQuantity(input.Deltas)
	}

	movement := &models.StockMovement{
		ProductID:    input.ProductID,
		WarehouseID:  input.WarehouseID,
		MovementType: movementType,
		Quantity:     quantity,
		DeltasJSON: models.JSON{
			"available": input.Deltas.Available,
			"reserved":  input.Deltas.Reserved,
			"allocated": input.Deltas.Allocated,
			"damaged":   input.Deltas.Damaged,
			"on_order":  input.Deltas.OnOrder,
		},
		PreviousJSON: previous,
		CurrentJSON:  after.BucketSnapshot(),
		Reason:       strings.TrimSpace(input.Reason),
		Reference:    strings.TrimSpace(input.Reference),
		Notes:        strings.TrimSpace(input.Notes),
		CreatedAt:    time.Now(),
	}
	if err := movementRepo.Create(movement); err != nil {
		return err
	}
	*out = movement
	return nil
}

// transferQuantity 返回转移类变动的转移量（正向变动之和）
func transferQuantity(deltas repository.StockDeltas) int {
	total := 0
	for _, delta := range []int{deltas.Available, deltas.Reserved, deltas.Allocated, deltas.Damaged, deltas.OnOrder} {
		if delta > 0 {
			total += delta
		}
	}
	return total
}

// StockIn 入库（采购到货等），增加可售数量
func (s *StockLedgerService) StockIn(productID, warehouseID uint, quantity int, reference, notes string) (*models.StockMovement, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	return s.Adjust(AdjustStockInput{
		ProductID:    productID,
		WarehouseID:  warehouseID,
		Deltas:       repository.StockDeltas{Available: quantity},
		MovementType: constants.MovementTypeIn,
		Reason:       "stock in",
		Reference:    reference,
		Notes:        notes,
	})
}

// MarkDamaged 可售转损坏
func (s *StockLedgerService) MarkDamaged(productID, warehouseID uint, quantity int, reference, notes string) (*models.StockMovement, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	return s.Adjust(AdjustStockInput{
		ProductID:    productID,
		WarehouseID:  warehouseID,
		Deltas:       repository.StockDeltas{Available: -quantity, Damaged: quantity},
		MovementType: constants.MovementTypeTransfer,
		Reason:       "mark damaged",
		Reference:    reference,
		Notes:        notes,
	})
}

// ListMovements 查询库存流水
func (s *StockLedgerService) ListMovements(filter repository.MovementListFilter) ([]models.StockMovement, int64, error) {
	return s.movementRepo.List(filter)
}

// ListStockLevels 查询库存列表
func (s *StockLedgerService) ListStockLevels(filter repository.StockLevelListFilter) ([]models.StockLevel, int64, error) {
	return s.stockLevelRepo.List(filter)
}
