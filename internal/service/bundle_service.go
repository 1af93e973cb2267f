package service

import (
	"github.com/omniorder/internal/constants"
	"github.com/omniorder/internal/logger"
	"github.com/omniorder/internal/models"
	"github.com/omniorder/internal/repository"

	"gorm.io/gorm"
)

// BundleService 套装履约协调服务
type BundleService struct {
	bundleRepo      repository.BundleRepository
	reservationRepo repository.StockReservationRepository
	reservations    *ReservationService
	ledger          *StockLedgerService
}

// NewBundleService 创建套装服务
func NewBundleService(bundleRepo repository.BundleRepository, reservationRepo repository.StockReservationRepository, reservations *ReservationService, ledger *StockLedgerService) *BundleService {
	return &BundleService{
		bundleRepo:      bundleRepo,
		reservationRepo: reservationRepo,
		reservations:    reservations,
		ledger:          ledger,
	}
}

// BundleReserveOutcome 套装预留结果
type BundleReserveOutcome struct {
	Reservations     []*models.StockReservation
	Backorder        bool
	ShortProductID   uint
	OptionalShortIDs []uint
}

// ReserveBundleInput 套装预留输入
type ReserveBundleInput struct {
	BundleID           uint
	Quantity           int
	TenantID           uint
	PreferredWarehouse *uint
	ChannelDefault     *uint
	OrderItemID        *uint
	Reference          string
}

// ReserveBundle 为套装订单行预留全部组件。必选组件全有或全无：
// 任一必选组件不足时，按创建相反顺序释放已建预留并返回缺货结果。
// 可选组件尽力而为，短缺只记录不回滚。
func (s *BundleService) ReserveBundle(input ReserveBundleInput) (*BundleReserveOutcome, error) {
	var outcome *BundleReserveOutcome
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		var txErr error
		outcome, txErr = s.ReserveBundleInTx(tx, input)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	return outcome, nil
}

// ReserveBundleInTx 在外部事务内执行套装预留
func (s *BundleService) ReserveBundleInTx(tx *gorm.DB, input ReserveBundleInput) (*BundleReserveOutcome, error) {
	if input.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	bundle, err := s.bundleRepo.WithTx(tx).GetByID(input.BundleID)
	if err != nil {
		return nil, err
	}
	if bundle == nil {
		return nil, ErrBundleNotFound
	}

	outcome := &BundleReserveOutcome{}
	var undo []*models.StockReservation

	// 组件按 ID 升序处理，保证并发导入时加锁顺序一致
	for _, component := range bundle.Components {
		needed := component.Quantity * input.Quantity
		result, err := s.reservations.ReserveInTx(tx, ReserveInput{
			ProductID:          component.ProductID,
			Quantity:           needed,
			TenantID:           input.TenantID,
			PreferredWarehouse: input.PreferredWarehouse,
			ChannelDefault:     input.ChannelDefault,
			OrderItemID:        input.OrderItemID,
			Reference:          input.Reference,
		})
		if err != nil {
			if rbErr := s.rollback(tx, undo); rbErr != nil {
				return nil, rbErr
			}
			return nil, err
		}
		if result.Backorder {
			if component.IsOptional {
				outcome.OptionalShortIDs = append(outcome.OptionalShortIDs, component.ProductID)
				continue
			}
			// 必选组件不足：逆序释放全部已建预留
			if rbErr := s.rollback(tx, undo); rbErr != nil {
				return nil, rbErr
			}
			return &BundleReserveOutcome{Backorder: true, ShortProductID: component.ProductID}, nil
		}
		undo = append(undo, result.Reservation)
		outcome.Reservations = append(outcome.Reservations, result.Reservation)
	}
	return outcome, nil
}

// rollback 逆序释放补偿，任何一步失败都让外层事务整体回滚
func (s *BundleService) rollback(tx *gorm.DB, reservations []*models.StockReservation) error {
	for i := len(reservations) - 1; i >= 0; i-- {
		reservation := reservations[i]
		affected, err := s.reservationRepo.WithTx(tx).TransitionStatus(reservation.ID, constants.ReservationStatusActive, constants.ReservationStatusCanceled)
		if err != nil {
			return err
		}
		if affected == 0 {
			logger.Warnw("bundle_rollback_reservation_already_terminal", "reservation_id", reservation.ID)
			continue
		}
		_, err = s.ledger.AdjustInTx(tx, AdjustStockInput{
			ProductID:    reservation.ProductID,
			WarehouseID:  reservation.WarehouseID,
			Deltas:       repository.StockDeltas{Available: reservation.Quantity, Reserved: -reservation.Quantity},
			MovementType: constants.MovementTypeRelease,
			Reason:       "bundle component rollback",
			Reference:    reservation.Reference,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// GetByID 获取套装详情
func (s *BundleService) GetByID(id uint) (*models.ProductBundle, error) {
	bundle, err := s.bundleRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if bundle == nil {
		return nil, ErrBundleNotFound
	}
	return bundle, nil
}

// Create 创建套装
func (s *BundleService) Create(bundle *models.ProductBundle, components []models.BundleComponent) error {
	return s.bundleRepo.Create(bundle, components)
}

// Update 更新套装与组件
func (s *BundleService) Update(bundle *models.ProductBundle, components []models.BundleComponent) error {
	if err := s.bundleRepo.Update(bundle); err != nil {
		return err
	}
	if components != nil {
		return s.bundleRepo.ReplaceComponents(bundle.ID, components)
	}
	return nil
}

// List 查询套装列表
func (s *BundleService) List(filter repository.BundleListFilter) ([]models.ProductBundle, int64, error) {
	return s.bundleRepo.List(filter)
}
