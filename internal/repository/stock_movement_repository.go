package repository

import (
	"errors"

	"github.com/omniorder/internal/models"

	"gorm.io/gorm"
)

// StockMovementRepository 库存流水数据访问接口（只追加）
type StockMovementRepository interface {
	Create(movement *models.StockMovement) error
	List(filter MovementListFilter) ([]models.StockMovement, int64, error)
	WithTx(tx *gorm.DB) StockMovementRepository
}

// GormStockMovementRepository GORM 实现
type GormStockMovementRepository struct {
	db *gorm.DB
}

// NewStockMovementRepository 创建流水仓库
func NewStockMovementRepository(db *gorm.DB) *GormStockMovementRepository {
	return &GormStockMovementRepository{db: db}
}

// WithTx 绑定事务
func (r *GormStockMovementRepository) WithTx(tx *gorm.DB) StockMovementRepository {
	if tx == nil {
		return r
	}
	return &GormStockMovementRepository{db: tx}
}

// Create 追加一条流水
func (r *GormStockMovementRepository) Create(movement *models.StockMovement) error {
	if movement == nil {
		return errors.New("movement is nil")
	}
	return r.db.Create(movement).Error
}

// List 分页查询流水列表
func (r *GormStockMovementRepository) List(filter MovementListFilter) ([]models.StockMovement, int64, error) {
	query := r.db.Model(&models.StockMovement{})
	if filter.ProductID > 0 {
		query = query.Where("product_id = ?", filter.ProductID)
	}
	if filter.WarehouseID > 0 {
		query = query.Where("warehouse_id = ?", filter.WarehouseID)
	}
	if filter.MovementType != "" {
		query = query.Where("movement_type = ?", filter.MovementType)
	}
	if filter.Reference != "" {
		query = query.Where("reference = ?", filter.Reference)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var movements []models.StockMovement
	query = query.Order("id DESC")
	if err := applyPagination(query, filter.Page, filter.PageSize).Find(&movements).Error; err != nil {
		return nil, 0, err
	}
	return movements, total, nil
}
