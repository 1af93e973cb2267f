package repository

import (
	"errors"
	"time"

	"github.com/omniorder/internal/constants"
	"github.com/omniorder/internal/models"

	"gorm.io/gorm"
)

// StockReservationRepository 库存预留数据访问接口
type StockReservationRepository interface {
	Create(reservation *models.StockReservation) error
	GetByID(id uint) (*models.StockReservation, error)
	List(filter ReservationListFilter) ([]models.StockReservation, int64, error)
	ListActiveByReference(reference string) ([]models.StockReservation, error)
	ListByOrderItem(orderItemID uint, status string) ([]models.StockReservation, error)
	ListExpired(now time.Time, limit int) ([]models.StockReservation, error)
	TransitionStatus(id uint, from, to string) (int64, error)
	WithTx(tx *gorm.DB) StockReservationRepository
}

// GormStockReservationRepository GORM 实现
type GormStockReservationRepository struct {
	db *gorm.DB
}

// NewStockReservationRepository 创建预留仓库
func NewStockReservationRepository(db *gorm.DB) *GormStockReservationRepository {
	return &GormStockReservationRepository{db: db}
}

// WithTx 绑定事务
func (r *GormStockReservationRepository) WithTx(tx *gorm.DB) StockReservationRepository {
	if tx == nil {
		return r
	}
	return &GormStockReservationRepository{db: tx}
}

// Create 创建预留
func (r *GormStockReservationRepository) Create(reservation *models.StockReservation) error {
	if reservation == nil {
		return errors.New("reservation is nil")
	}
	return r.db.Create(reservation).Error
}

// GetByID 根据 ID 获取预留
func (r *GormStockReservationRepository) GetByID(id uint) (*models.StockReservation, error) {
	if id == 0 {
		return nil, errors.New("invalid reservation id")
	}
	var reservation models.StockReservation
	if err := r.db.First(&reservation, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &reservation, nil
}

// List 分页查询预留列表
func (r *GormStockReservationRepository) List(filter ReservationListFilter) ([]models.StockReservation, int64, error) {
	query := r.db.Model(&models.StockReservation{})
	if filter.ProductID > 0 {
		query = query.Where("product_id = ?", filter.ProductID)
	}
	if filter.WarehouseID > 0 {
		query = query.Where("warehouse_id = ?", filter.WarehouseID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Reference != "" {
		query = query.Where("reference = ?", filter.Reference)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var reservations []models.StockReservation
	query = query.Order("id DESC")
	if err := applyPagination(query, filter.Page, filter.PageSize).Find(&reservations).Error; err != nil {
		return nil, 0, err
	}
	return reservations, total, nil
}

// ListActiveByReference 获取业务引用下的全部活跃预留
func (r *GormStockReservationRepository) ListActiveByReference(reference string) ([]models.StockReservation, error) {
	if reference == "" {
		return nil, errors.New("invalid reference")
	}
	var reservations []models.StockReservation
	err := r.db.
		Where("reference = ? AND status = ?", reference, constants.ReservationStatusActive).
		Order("id ASC").
		Find(&reservations).Error
	if err != nil {
		return nil, err
	}
	return reservations, nil
}

// ListByOrderItem 获取订单行名下的预留，status 为空不过滤状态
func (r *GormStockReservationRepository) ListByOrderItem(orderItemID uint, status string) ([]models.StockReservation, error) {
	if orderItemID == 0 {
		return nil, errors.New("invalid order item id")
	}
	query := r.db.Where("order_item_id = ?", orderItemID)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var reservations []models.StockReservation
	if err := query.Order("id ASC").Find(&reservations).Error; err != nil {
		return nil, err
	}
	return reservations, nil
}

// ListExpired 获取已过期但仍活跃的预留
func (r *GormStockReservationRepository) ListExpired(now time.Time, limit int) ([]models.StockReservation, error) {
	query := r.db.
		Where("status = ? AND expires_at <= ?", constants.ReservationStatusActive, now).
		Order("expires_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var reservations []models.StockReservation
	if err := query.Find(&reservations).Error; err != nil {
		return nil, err
	}
	return reservations, nil
}

// TransitionStatus 条件更新预留状态，终态竞争时返回 0 行
func (r *GormStockReservationRepository) TransitionStatus(id uint, from, to string) (int64, error) {
	if id == 0 || from == "" || to == "" {
		return 0, errors.New("invalid transition params")
	}
	now := time.Now()
	updates := map[string]interface{}{
		"status":     to,
		"updated_at": now,
	}
	if to != constants.ReservationStatusActive {
		updates["released_at"] = now
	}
	result := r.db.Model(&models.StockReservation{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
