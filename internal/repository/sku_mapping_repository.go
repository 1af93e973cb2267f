package repository

import (
	"errors"
	"strings"

	"github.com/omniorder/internal/models"

	"gorm.io/gorm"
)

// SKUMappingRepository 渠道 SKU 映射数据访问接口
type SKUMappingRepository interface {
	Create(mapping *models.SKUMapping) error
	Update(mapping *models.SKUMapping) error
	Delete(id uint) error
	GetByID(id uint) (*models.SKUMapping, error)
	GetByChannelAndSKU(channelID uint, channelSKU string) (*models.SKUMapping, error)
	ListActiveByChannel(channelID uint) ([]models.SKUMapping, error)
	List(filter SKUMappingListFilter) ([]models.SKUMapping, int64, error)
	WithTx(tx *gorm.DB) SKUMappingRepository
}

// GormSKUMappingRepository GORM 实现
type GormSKUMappingRepository struct {
	db *gorm.DB
}

// NewSKUMappingRepository 创建映射仓库
func NewSKUMappingRepository(db *gorm.DB) *GormSKUMappingRepository {
	return &GormSKUMappingRepository{db: db}
}

// WithTx 绑定事务
func (r *GormSKUMappingRepository) WithTx(tx *gorm.DB) SKUMappingRepository {
	if tx == nil {
		return r
	}
	return &GormSKUMappingRepository{db: tx}
}

// Create 创建映射
func (r *GormSKUMappingRepository) Create(mapping *models.SKUMapping) error {
	if mapping == nil {
		return errors.New("mapping is nil")
	}
	if mapping.ProductID == nil && mapping.BundleID == nil {
		return errors.New("mapping must target a product or a bundle")
	}
	if mapping.ProductID != nil && mapping.BundleID != nil {
		return errors.New("mapping cannot target both product and bundle")
	}
	return r.db.Create(mapping).Error
}

// Update 更新映射
func (r *GormSKUMappingRepository) Update(mapping *models.SKUMapping) error {
	if mapping == nil || mapping.ID == 0 {
		return errors.New("invalid mapping")
	}
	return r.db.Save(mapping).Error
}

// Delete 删除映射
func (r *GormSKUMappingRepository) Delete(id uint) error {
	if id == 0 {
		return errors.New("invalid mapping id")
	}
	return r.db.Delete(&models.SKUMapping{}, id).Error
}

// GetByID 根据 ID 获取映射
func (r *GormSKUMappingRepository) GetByID(id uint) (*models.SKUMapping, error) {
	if id == 0 {
		return nil, errors.New("invalid mapping id")
	}
	var mapping models.SKUMapping
	if err := r.db.Preload("Product").Preload("Bundle").First(&mapping, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &mapping, nil
}

// GetByChannelAndSKU 按渠道与渠道 SKU 精确查找映射
func (r *GormSKUMappingRepository) GetByChannelAndSKU(channelID uint, channelSKU string) (*models.SKUMapping, error) {
	sku := strings.TrimSpace(channelSKU)
	if channelID == 0 || sku == "" {
		return nil, errors.New("invalid mapping lookup params")
	}
	var mapping models.SKUMapping
	err := r.db.
		Preload("Product").
		Preload("Bundle").
		Where("channel_id = ? AND channel_sku = ? AND is_active = ?", channelID, sku, true).
		First(&mapping).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &mapping, nil
}

// ListActiveByChannel 获取渠道下全部启用映射
func (r *GormSKUMappingRepository) ListActiveByChannel(channelID uint) ([]models.SKUMapping, error) {
	if channelID == 0 {
		return nil, errors.New("invalid channel id")
	}
	var mappings []models.SKUMapping
	err := r.db.
		Preload("Product").
		Where("channel_id = ? AND is_active = ?", channelID, true).
		Order("id ASC").
		Find(&mappings).Error
	if err != nil {
		return nil, err
	}
	return mappings, nil
}

// List 分页查询映射列表
func (r *GormSKUMappingRepository) List(filter SKUMappingListFilter) ([]models.SKUMapping, int64, error) {
	query := r.db.Model(&models.SKUMapping{})
	if filter.ChannelID > 0 {
		query = query.Where("channel_id = ?", filter.ChannelID)
	}
	if filter.ProductID > 0 {
		query = query.Where("product_id = ?", filter.ProductID)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		cond, argCount := buildLikeCondition(r.db, []string{"channel_sku", "channel_title"})
		query = query.Where(cond, repeatLikeArgs("%"+search+"%", argCount)...)
	}
	if filter.OnlyActive {
		query = query.Where("is_active = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var mappings []models.SKUMapping
	query = query.Preload("Product").Preload("Bundle").Order("id ASC")
	if err := applyPagination(query, filter.Page, filter.PageSize).Find(&mappings).Error; err != nil {
		return nil, 0, err
	}
	return mappings, total, nil
}
