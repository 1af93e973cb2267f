package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/omniorder/internal/constants"
	"github.com/omniorder/internal/logger"
	"github.com/omniorder/internal/models"
	"github.com/omniorder/internal/repository"

	"gorm.io/gorm"
)

// ReservationService 库存预留服务
type ReservationService struct {
	reservationRepo repository.StockReservationRepository
	stockLevelRepo  repository.StockLevelRepository
	warehouseRepo   repository.WarehouseRepository
	orderRepo       repository.OrderRepository
	ledger          *StockLedgerService
	ttl             time.Duration
}

// NewReservationService 创建预留服务
func NewReservationService(reservationRepo repository.StockReservationRepository, stockLevelRepo repository.StockLevelRepository, warehouseRepo repository.WarehouseRepository, orderRepo repository.OrderRepository, ledger *StockLedgerService, ttlHours int) *ReservationService {
	if ttlHours <= 0 {
		ttlHours = 24
	}
	return &ReservationService{
		reservationRepo: reservationRepo,
		stockLevelRepo:  stockLevelRepo,
		warehouseRepo:   warehouseRepo,
		orderRepo:       orderRepo,
		ledger:          ledger,
		ttl:             time.Duration(ttlHours) * time.Hour,
	}
}

// ReserveInput 预留输入
type ReserveInput struct {
	ProductID          uint
	Quantity           int
	TenantID           uint
	PreferredWarehouse *uint
	ChannelDefault     *uint
	OrderItemID        *uint
	Reference          string
}

// ReserveOutcome 预留结果，Backorder 表示库存不足转缺货
type ReserveOutcome struct {
	Reservation *models.StockReservation
	Backorder   bool
}

// Reserve 尝试为商品创建库存预留，库存不足时返回缺货结果而非错误
func (s *ReservationService) Reserve(input ReserveInput) (*ReserveOutcome, error) {
	var outcome *ReserveOutcome
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		var txErr error
		outcome, txErr = s.ReserveInTx(tx, input)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	return outcome, nil
}

// ReserveInTx 在外部事务内执行预留，导入流程整单原子时复用。
// 按候选仓顺序逐仓尝试，当前仓库存不足时落到下一个候选仓，全部不足才转缺货。
func (s *ReservationService) ReserveInTx(tx *gorm.DB, input ReserveInput) (*ReserveOutcome, error) {
	if input.ProductID == 0 {
		return nil, ErrProductNotFound
	}
	if input.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	candidates, err := s.candidateWarehouses(tx, input)
	if err != nil {
		return nil, err
	}

	for _, warehouseID := range candidates {
		_, err := s.ledger.AdjustInTx(tx, AdjustStockInput{
			ProductID:    input.ProductID,
			WarehouseID:  warehouseID,
			Deltas:       repository.StockDeltas{Available: -input.Quantity, Reserved: input.Quantity},
			MovementType: constants.MovementTypeReserve,
			Reason:       "order reservation",
			Reference:    input.Reference,
		})
		if err != nil {
			if errors.Is(err, ErrInsufficientStock) {
				// 本仓不足，尝试下一个候选仓
				continue
			}
			return nil, err
		}

		reservation := &models.StockReservation{
			ProductID:   input.ProductID,
			WarehouseID: warehouseID,
			OrderItemID: input.OrderItemID,
			Quantity:    input.Quantity,
			Status:      constants.ReservationStatusActive,
			Reference:   input.Reference,
			ExpiresAt:   time.Now().Add(s.ttl),
		}
		if err := s.reservationRepo.WithTx(tx).Create(reservation); err != nil {
			return nil, err
		}
		return &ReserveOutcome{Reservation: reservation}, nil
	}

	// 所有候选仓都不足是预期结果，行转缺货
	return &ReserveOutcome{Backorder: true}, nil
}

// candidateWarehouses 候选仓顺序：指定仓库 > 渠道默认仓库 > 租户默认仓库，去重后返回
func (s *ReservationService) candidateWarehouses(tx *gorm.DB, input ReserveInput) ([]uint, error) {
	warehouseRepo := s.warehouseRepo.WithTx(tx)
	var candidates []uint
	seen := map[uint]bool{}
	for _, id := range []*uint{input.PreferredWarehouse, input.ChannelDefault} {
		if id == nil || *id == 0 || seen[*id] {
			continue
		}
		warehouse, err := warehouseRepo.GetByID(*id)
		if err != nil {
			return nil, err
		}
		if warehouse != nil && warehouse.IsActive {
			seen[warehouse.ID] = true
			candidates = append(candidates, warehouse.ID)
		}
	}
	if input.TenantID > 0 {
		warehouse, err := warehouseRepo.GetDefaultByTenant(input.TenantID)
		if err != nil {
			return nil, err
		}
		if warehouse != nil && !seen[warehouse.ID] {
			candidates = append(candidates, warehouse.ID)
		}
	}
	if len(candidates) == 0 {
		return nil, ErrNoWarehouseAvailable
	}
	return candidates, nil
}

// Release 释放预留，预留量退回可售。对已释放的预留幂等返回成功。
func (s *ReservationService) Release(reservationID uint, reason string) error {
	return s.release(reservationID, reason, constants.ReservationStatusCanceled)
}

func (s *ReservationService) release(reservationID uint, reason, terminalStatus string) error {
	reservation, err := s.reservationRepo.GetByID(reservationID)
	if err != nil {
		return err
	}
	if reservation == nil {
		return ErrReservationNotFound
	}
	if reservation.Status == constants.ReservationStatusCanceled || reservation.Status == constants.ReservationStatusExpired {
		// 重复释放幂等
		return nil
	}
	if reservation.Status == constants.ReservationStatusFulfilled {
		return ErrReservationTerminal
	}

	return models.DB.Transaction(func(tx *gorm.DB) error {
		affected, err := s.reservationRepo.WithTx(tx).TransitionStatus(reservation.ID, constants.ReservationStatusActive, terminalStatus)
		if err != nil {
			return err
		}
		if affected == 0 {
			// 状态竞争：其他路径已结束该预留，回读判定
			current, err := s.reservationRepo.WithTx(tx).GetByID(reservation.ID)
			if err != nil {
				return err
			}
			if current != nil && (current.Status == constants.ReservationStatusCanceled || current.Status == constants.ReservationStatusExpired) {
				return nil
			}
			return ErrReservationTerminal
		}

		movementType := constants.MovementTypeRelease
		if terminalStatus == constants.ReservationStatusExpired {
			movementType = constants.MovementTypeExpired
		}
		_, err = s.ledger.AdjustInTx(tx, AdjustStockInput{
			ProductID:    reservation.ProductID,
			WarehouseID:  reservation.WarehouseID,
			Deltas:       repository.StockDeltas{Available: reservation.Quantity, Reserved: -reservation.Quantity},
			MovementType: movementType,
			Reason:       reason,
			Reference:    reservation.Reference,
		})
		return err
	})
}

// Fulfill 履约预留，预留量转已分配，订单行状态同步推进
func (s *ReservationService) Fulfill(reservationID uint) error {
	reservation, err := s.reservationRepo.GetByID(reservationID)
	if err != nil {
		return err
	}
	if reservation == nil {
		return ErrReservationNotFound
	}
	if reservation.Status != constants.ReservationStatusActive {
		return ErrReservationTerminal
	}

	return models.DB.Transaction(func(tx *gorm.DB) error {
		affected, err := s.reservationRepo.WithTx(tx).TransitionStatus(reservation.ID, constants.ReservationStatusActive, constants.ReservationStatusFulfilled)
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrReservationTerminal
		}

		_, err = s.ledger.AdjustInTx(tx, AdjustStockInput{
			ProductID:    reservation.ProductID,
			WarehouseID:  reservation.WarehouseID,
			Deltas:       repository.StockDeltas{Reserved: -reservation.Quantity, Allocated: reservation.Quantity},
			MovementType: constants.MovementTypeAllocate,
			Reason:       "reservation fulfilled",
			Reference:    reservation.Reference,
		})
		if err != nil {
			return err
		}

		if reservation.OrderItemID != nil {
			if err := s.orderRepo.WithTx(tx).UpdateItemStatus(*reservation.OrderItemID, constants.ItemStatusAllocated); err != nil {
				return err
			}
		}
		return nil
	})
}

// ExpireStale 批量过期超时预留，可与任何其他转移并发执行
func (s *ReservationService) ExpireStale(now time.Time, limit int) (int, error) {
	stale, err := s.reservationRepo.ListExpired(now, limit)
	if err != nil {
		return 0, err
	}
	expired := 0
	for _, reservation := range stale {
		if err := s.release(reservation.ID, "reservation expired", constants.ReservationStatusExpired); err != nil {
			if errors.Is(err, ErrReservationTerminal) {
				continue
			}
			logger.Errorw("reservation_expire_failed",
				"reservation_id", reservation.ID,
				"error", err,
			)
			continue
		}
		expired++
		if reservation.OrderItemID != nil {
			if err := s.orderRepo.UpdateItemStatus(*reservation.OrderItemID, constants.ItemStatusBackorder); err != nil {
				logger.Warnw("reservation_expire_item_update_failed",
					"reservation_id", reservation.ID,
					"order_item_id", *reservation.OrderItemID,
					"error", err,
				)
			}
		}
	}
	if expired > 0 {
		logger.Infow("reservation_expire_sweep_done", "expired", expired, "scanned", len(stale))
	}
	return expired, nil
}

// ReleaseByReference 释放业务引用下全部活跃预留（订单取消）
func (s *ReservationService) ReleaseByReference(reference, reason string) (int, error) {
	reservations, err := s.reservationRepo.ListActiveByReference(reference)
	if err != nil {
		return 0, err
	}
	released := 0
	for _, reservation := range reservations {
		if err := s.Release(reservation.ID, reason); err != nil {
			if errors.Is(err, ErrReservationTerminal) {
				continue
			}
			return released, fmt.Errorf("release reservation %d: %w", reservation.ID, err)
		}
		released++
	}
	return released, nil
}

// ListByOrderItem 查询订单行名下的预留，status 为空不过滤状态
func (s *ReservationService) ListByOrderItem(orderItemID uint, status string) ([]models.StockReservation, error) {
	return s.reservationRepo.ListByOrderItem(orderItemID, status)
}

// GetByID 获取预留详情
func (s *ReservationService) GetByID(id uint) (*models.StockReservation, error) {
	reservation, err := s.reservationRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if reservation == nil {
		return nil, ErrReservationNotFound
	}
	return reservation, nil
}

// List 查询预留列表
func (s *ReservationService) List(filter repository.ReservationListFilter) ([]models.StockReservation, int64, error) {
	return s.reservationRepo.List(filter)
}
