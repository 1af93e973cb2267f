package repository

import (
	"errors"
	"strings"

	"github.com/omniorder/internal/models"

	"gorm.io/gorm"
)

// BundleRepository 商品套装数据访问接口
type BundleRepository interface {
	Create(bundle *models.ProductBundle, components []models.BundleComponent) error
	Update(bundle *models.ProductBundle) error
	ReplaceComponents(bundleID uint, components []models.BundleComponent) error
	GetByID(id uint) (*models.ProductBundle, error)
	GetByTenantAndSKU(tenantID uint, sku string) (*models.ProductBundle, error)
	List(filter BundleListFilter) ([]models.ProductBundle, int64, error)
	WithTx(tx *gorm.DB) BundleRepository
}

// GormBundleRepository GORM 实现
type GormBundleRepository struct {
	db *gorm.DB
}

// NewBundleRepository 创建套装仓库
func NewBundleRepository(db *gorm.DB) *GormBundleRepository {
	return &GormBundleRepository{db: db}
}

// WithTx 绑定事务
func (r *GormBundleRepository) WithTx(tx *gorm.DB) BundleRepository {
	if tx == nil {
		return r
	}
	return &GormBundleRepository{db: tx}
}

// Create 创建套装与组件
func (r *GormBundleRepository) Create(bundle *models.ProductBundle, components []models.BundleComponent) error {
	if bundle == nil {
		return errors.New("bundle is nil")
	}
	if err := r.db.Create(bundle).Error; err != nil {
		return err
	}
	for i := range components {
		components[i].BundleID = bundle.ID
	}
	if len(components) > 0 {
		if err := r.db.Create(&components).Error; err != nil {
			return err
		}
	}
	return nil
}

// Update 更新套装
func (r *GormBundleRepository) Update(bundle *models.ProductBundle) error {
	if bundle == nil || bundle.ID == 0 {
		return errors.New("invalid bundle")
	}
	return r.db.Save(bundle).Error
}

// ReplaceComponents 全量替换套装组件
func (r *GormBundleRepository) ReplaceComponents(bundleID uint, components []models.BundleComponent) error {
	if bundleID == 0 {
		return errors.New("invalid bundle id")
	}
	if err := r.db.Where("bundle_id = ?", bundleID).Delete(&models.BundleComponent{}).Error; err != nil {
		return err
	}
	for i := range components {
		components[i].BundleID = bundleID
	}
	if len(components) > 0 {
		return r.db.Create(&components).Error
	}
	return nil
}

// GetByID 根据 ID 获取套装（含组件，按组件 ID 升序）
func (r *GormBundleRepository) GetByID(id uint) (*models.ProductBundle, error) {
	if id == 0 {
		return nil, errors.New("invalid bundle id")
	}
	var bundle models.ProductBundle
	err := r.db.
		Preload("Components", func(db *gorm.DB) *gorm.DB {
			return db.Order("bundle_components.id ASC")
		}).
		Preload("Components.Product").
		First(&bundle, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &bundle, nil
}

// GetByTenantAndSKU 在租户范围内按套装 SKU 查找
func (r *GormBundleRepository) GetByTenantAndSKU(tenantID uint, sku string) (*models.ProductBundle, error) {
	trimmed := strings.TrimSpace(sku)
	if tenantID == 0 || trimmed == "" {
		return nil, errors.New("invalid bundle lookup params")
	}
	var bundle models.ProductBundle
	err := r.db.
		Preload("Components", func(db *gorm.DB) *gorm.DB {
			return db.Order("bundle_components.id ASC")
		}).
		Where("tenant_id = ? AND sku = ? AND is_active = ?", tenantID, trimmed, true).
		First(&bundle).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &bundle, nil
}

// List 分页查询套装列表
func (r *GormBundleRepository) List(filter BundleListFilter) ([]models.ProductBundle, int64, error) {
	query := r.db.Model(&models.ProductBundle{})
	if filter.TenantID > 0 {
		query = query.Where("tenant_id = ?", filter.TenantID)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		cond, argCount := buildLikeCondition(r.db, []string{"name", "sku"})
		query = query.Where(cond, repeatLikeArgs("%"+search+"%", argCount)...)
	}
	if filter.OnlyActive {
		query = query.Where("is_active = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var bundles []models.ProductBundle
	query = query.Preload("Components").Order("id ASC")
	if err := applyPagination(query, filter.Page, filter.PageSize).Find(&bundles).Error; err != nil {
		return nil, 0, err
	}
	return bundles, total, nil
}
