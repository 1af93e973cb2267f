package repository

import (
	"errors"
	"strings"

	"github.com/omniorder/internal/models"

	"gorm.io/gorm"
)

// WarehouseRepository 仓库数据访问接口
type WarehouseRepository interface {
	Create(warehouse *models.Warehouse) error
	Update(warehouse *models.Warehouse) error
	GetByID(id uint) (*models.Warehouse, error)
	GetDefaultByTenant(tenantID uint) (*models.Warehouse, error)
	List(filter WarehouseListFilter) ([]models.Warehouse, int64, error)
	ClearDefault(tenantID uint, exceptID uint) error
	WithTx(tx *gorm.DB) WarehouseRepository
}

// GormWarehouseRepository GORM 实现
type GormWarehouseRepository struct {
	db *gorm.DB
}

// NewWarehouseRepository 创建仓库数据访问
func NewWarehouseRepository(db *gorm.DB) *GormWarehouseRepository {
	return &GormWarehouseRepository{db: db}
}

// WithTx 绑定事务
func (r *GormWarehouseRepository) WithTx(tx *gorm.DB) WarehouseRepository {
	if tx == nil {
		return r
	}
	return &GormWarehouseRepository{db: tx}
}

// Create 创建仓库
func (r *GormWarehouseRepository) Create(warehouse *models.Warehouse) error {
	if warehouse == nil {
		return errors.New("warehouse is nil")
	}
	return r.db.Create(warehouse).Error
}

// Update 更新仓库
func (r *GormWarehouseRepository) Update(warehouse *models.Warehouse) error {
	if warehouse == nil || warehouse.ID == 0 {
		return errors.New("invalid warehouse")
	}
	return r.db.Save(warehouse).Error
}

// GetByID 根据 ID 获取仓库
func (r *GormWarehouseRepository) GetByID(id uint) (*models.Warehouse, error) {
	if id == 0 {
		return nil, errors.New("invalid warehouse id")
	}
	var warehouse models.Warehouse
	if err := r.db.First(&warehouse, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &warehouse, nil
}

// GetDefaultByTenant 获取租户默认仓库
func (r *GormWarehouseRepository) GetDefaultByTenant(tenantID uint) (*models.Warehouse, error) {
	if tenantID == 0 {
		return nil, errors.New("invalid tenant id")
	}
	var warehouse models.Warehouse
	err := r.db.Where("tenant_id = ? AND is_default = ? AND is_active = ?", tenantID, true, true).First(&warehouse).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &warehouse, nil
}

// List 分页查询仓库列表
func (r *GormWarehouseRepository) List(filter WarehouseListFilter) ([]models.Warehouse, int64, error) {
	query := r.db.Model(&models.Warehouse{})
	if filter.TenantID > 0 {
		query = query.Where("tenant_id = ?", filter.TenantID)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + search + "%"
		op := likeOperatorByDialect(dbDialectName(r.db))
		query = query.Where("name "+op+" ? OR code "+op+" ?", like, like)
	}
	if filter.OnlyActive {
		query = query.Where("is_active = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var warehouses []models.Warehouse
	query = query.Order("id ASC")
	if err := applyPagination(query, filter.Page, filter.PageSize).Find(&warehouses).Error; err != nil {
		return nil, 0, err
	}
	return warehouses, total, nil
}

// ClearDefault 取消租户下除指定仓库外的默认标记
func (r *GormWarehouseRepository) ClearDefault(tenantID uint, exceptID uint) error {
	if tenantID == 0 {
		return errors.New("invalid tenant id")
	}
	query := r.db.Model(&models.Warehouse{}).Where("tenant_id = ? AND is_default = ?", tenantID, true)
	if exceptID > 0 {
		query = query.Where("id <> ?", exceptID)
	}
	return query.Update("is_default", false).Error
}
