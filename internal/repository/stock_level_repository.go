package repository

import (
	"errors"

	"github.com/omniorder/internal/models"

	"gorm.io/gorm"
)

// StockDeltas 一次库存变动中各桶的增减量
type StockDeltas struct {
	Available int
	Reserved  int
	Allocated int
	Damaged   int
	OnOrder   int
}

// IsZero 判断是否无任何变动
func (d StockDeltas) IsZero() bool {
	return d.Available == 0 && d.Reserved == 0 && d.Allocated == 0 && d.Damaged == 0 && d.OnOrder == 0
}

// Sum 返回各桶变动量之和（转移类变动应为 0）
func (d StockDeltas) Sum() int {
	return d.Available + d.Reserved + d.Allocated + d.Damaged + d.OnOrder
}

// StockLevelRepository 分仓库存数据访问接口
type StockLevelRepository interface {
	GetByProductAndWarehouse(productID, warehouseID uint) (*models.StockLevel, error)
	GetOrCreate(productID, warehouseID uint) (*models.StockLevel, error)
	ListByProduct(productID uint) ([]models.StockLevel, error)
	List(filter StockLevelListFilter) ([]models.StockLevel, int64, error)
	SumAvailableByTenant(productID, tenantID uint) (int, error)
	ApplyDeltas(productID, warehouseID uint, deltas StockDeltas) (int64, error)
	WithTx(tx *gorm.DB) StockLevelRepository
}

// GormStockLevelRepository GORM 实现
type GormStockLevelRepository struct {
	db *gorm.DB
}

// NewStockLevelRepository 创建库存仓库
func NewStockLevelRepository(db *gorm.DB) *GormStockLevelRepository {
	return &GormStockLevelRepository{db: db}
}

// WithTx 绑定事务
func (r *GormStockLevelRepository) WithTx(tx *gorm.DB) StockLevelRepository {
	if tx == nil {
		return r
	}
	return &GormStockLevelRepository{db: tx}
}

// GetByProductAndWarehouse 按商品和仓库获取库存行
func (r *GormStockLevelRepository) GetByProductAndWarehouse(productID, warehouseID uint) (*models.StockLevel, error) {
	if productID == 0 || warehouseID == 0 {
		return nil, errors.New("invalid stock level key")
	}
	var level models.StockLevel
	if err := r.db.Where("product_id = ? AND warehouse_id = ?", productID, warehouseID).First(&level).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &level, nil
}

// GetOrCreate 获取库存行，不存在时创建全零行
func (r *GormStockLevelRepository) GetOrCreate(productID, warehouseID uint) (*models.StockLevel, error) {
	level, err := r.GetByProductAndWarehouse(productID, warehouseID)
	if err != nil {
		return nil, err
	}
	if level != nil {
		return level, nil
	}
	created := models.StockLevel{ProductID: productID, WarehouseID: warehouseID}
	if err := r.db.Create(&created).Error; err != nil {
		// 并发创建时回读已有行
		existing, getErr := r.GetByProductAndWarehouse(productID, warehouseID)
		if getErr == nil && existing != nil {
			return existing, nil
		}
		return nil, err
	}
	return &created, nil
}

// ListByProduct 获取商品在各仓库的库存
func (r *GormStockLevelRepository) ListByProduct(productID uint) ([]models.StockLevel, error) {
	if productID == 0 {
		return nil, errors.New("invalid product id")
	}
	var levels []models.StockLevel
	if err := r.db.Where("product_id = ?", productID).Order("warehouse_id ASC").Find(&levels).Error; err != nil {
		return nil, err
	}
	return levels, nil
}

// List 分页查询库存列表
func (r *GormStockLevelRepository) List(filter StockLevelListFilter) ([]models.StockLevel, int64, error) {
	query := r.db.Model(&models.StockLevel{})
	if filter.ProductID > 0 {
		query = query.Where("product_id = ?", filter.ProductID)
	}
	if filter.WarehouseID > 0 {
		query = query.Where("warehouse_id = ?", filter.WarehouseID)
	}
	if filter.TenantID > 0 {
		query = query.Where("warehouse_id IN (?)", r.db.Model(&models.Warehouse{}).Select("id").Where("tenant_id = ?", filter.TenantID))
	}
	if filter.BelowReorder {
		query = query.Where("available <= reorder_point")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var levels []models.StockLevel
	query = query.Preload("Product").Preload("Warehouse").Order("id ASC")
	if err := applyPagination(query, filter.Page, filter.PageSize).Find(&levels).Error; err != nil {
		return nil, 0, err
	}
	return levels, total, nil
}

// SumAvailableByTenant 汇总商品在租户所有仓库的可售数量
func (r *GormStockLevelRepository) SumAvailableByTenant(productID, tenantID uint) (int, error) {
	if productID == 0 || tenantID == 0 {
		return 0, errors.New("invalid sum params")
	}
	var total int64
	err := r.db.Model(&models.StockLevel{}).
		Select("COALESCE(SUM(stock_levels.available), 0)").
		Joins("JOIN warehouses ON warehouses.id = stock_levels.warehouse_id").
		Where("stock_levels.product_id = ? AND warehouses.tenant_id = ? AND warehouses.deleted_at IS NULL", productID, tenantID).
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return int(total), nil
}

// ApplyDeltas 原子应用各桶变动，负向变动带守卫条件，失败返回 0 行
func (r *GormStockLevelRepository) ApplyDeltas(productID, warehouseID uint, deltas StockDeltas) (int64, error) {
	if productID == 0 || warehouseID == 0 {
		return 0, errors.New("invalid stock level key")
	}
	if deltas.IsZero() {
		return 0, errors.New("empty stock deltas")
	}

	query := r.db.Model(&models.StockLevel{}).
		Where("product_id = ? AND warehouse_id = ?", productID, warehouseID)
	updates := map[string]interface{}{}

	type bucket struct {
		column string
		delta  int
	}
	buckets := []bucket{
		{"available", deltas.Available},
		{"reserved", deltas.Reserved},
		{"allocated", deltas.Allocated},
		{"damaged", deltas.Damaged},
		{"on_order", deltas.OnOrder},
	}
	for _, b := range buckets {
		if b.delta == 0 {
			continue
		}
		if b.delta < 0 {
			query = query.Where(b.column+" >= ?", -b.delta)
		}
		updates[b.column] = gorm.Expr(b.column+" + ?", b.delta)
	}

	result := query.Updates(updates)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
