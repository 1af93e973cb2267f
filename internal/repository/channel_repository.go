package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/omniorder/internal/models"

	"gorm.io/gorm"
)

// ChannelRepository 渠道数据访问接口
type ChannelRepository interface {
	Create(channel *models.Channel) error
	Update(channel *models.Channel) error
	GetByID(id uint) (*models.Channel, error)
	List(filter ChannelListFilter) ([]models.Channel, int64, error)
	ListActive() ([]models.Channel, error)
	UpdateSyncStatus(id uint, status, syncError string, lastSyncAt *time.Time) error
	Deactivate(id uint) error
	WithTx(tx *gorm.DB) ChannelRepository
}

// GormChannelRepository GORM 实现
type GormChannelRepository struct {
	db *gorm.DB
}

// NewChannelRepository 创建渠道仓库
func NewChannelRepository(db *gorm.DB) *GormChannelRepository {
	return &GormChannelRepository{db: db}
}

// WithTx 绑定事务
func (r *GormChannelRepository) WithTx(tx *gorm.DB) ChannelRepository {
	if tx == nil {
		return r
	}
	return &GormChannelRepository{db: tx}
}

// Create 创建渠道
func (r *GormChannelRepository) Create(channel *models.Channel) error {
	if channel == nil {
		return errors.New("channel is nil")
	}
	return r.db.Create(channel).Error
}

// Update 更新渠道
func (r *GormChannelRepository) Update(channel *models.Channel) error {
	if channel == nil || channel.ID == 0 {
		return errors.New("invalid channel")
	}
	return r.db.Save(channel).Error
}

// GetByID 根据 ID 获取渠道
func (r *GormChannelRepository) GetByID(id uint) (*models.Channel, error) {
	if id == 0 {
		return nil, errors.New("invalid channel id")
	}
	var channel models.Channel
	if err := r.db.Preload("DefaultWarehouse").First(&channel, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &channel, nil
}

// List 分页查询渠道列表
func (r *GormChannelRepository) List(filter ChannelListFilter) ([]models.Channel, int64, error) {
	query := r.db.Model(&models.Channel{})
	if filter.TenantID > 0 {
		query = query.Where("tenant_id = ?", filter.TenantID)
	}
	if filter.ChannelType != "" {
		query = query.Where("channel_type = ?", filter.ChannelType)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		query = query.Where("name "+likeOperatorByDialect(dbDialectName(r.db))+" ?", "%"+search+"%")
	}
	if filter.OnlyActive {
		query = query.Where("is_active = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var channels []models.Channel
	query = query.Order("id ASC")
	if err := applyPagination(query, filter.Page, filter.PageSize).Find(&channels).Error; err != nil {
		return nil, 0, err
	}
	return channels, total, nil
}

// ListActive 获取全部启用渠道
func (r *GormChannelRepository) ListActive() ([]models.Channel, error) {
	var channels []models.Channel
	if err := r.db.Where("is_active = ?", true).Order("id ASC").Find(&channels).Error; err != nil {
		return nil, err
	}
	return channels, nil
}

// UpdateSyncStatus 更新渠道同步状态与最近同步时间
func (r *GormChannelRepository) UpdateSyncStatus(id uint, status, syncError string, lastSyncAt *time.Time) error {
	if id == 0 {
		return errors.New("invalid channel id")
	}
	updates := map[string]interface{}{
		"sync_status": status,
		"sync_error":  syncError,
	}
	if lastSyncAt != nil {
		updates["last_sync_at"] = lastSyncAt
	}
	return r.db.Model(&models.Channel{}).Where("id = ?", id).Updates(updates).Error
}

// Deactivate 停用渠道（不物理删除，历史订单仍引用）
func (r *GormChannelRepository) Deactivate(id uint) error {
	if id == 0 {
		return errors.New("invalid channel id")
	}
	return r.db.Model(&models.Channel{}).Where("id = ?", id).Update("is_active", false).Error
}
