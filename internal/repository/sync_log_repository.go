package repository

import (
	"errors"

	"github.com/omniorder/internal/models"

	"gorm.io/gorm"
)

// SyncLogRepository 渠道同步日志数据访问接口（只追加）
type SyncLogRepository interface {
	Create(log *models.ChannelSyncLog) error
	List(filter SyncLogListFilter) ([]models.ChannelSyncLog, int64, error)
	WithTx(tx *gorm.DB) SyncLogRepository
}

// GormSyncLogRepository GORM 实现
type GormSyncLogRepository struct {
	db *gorm.DB
}

// NewSyncLogRepository 创建同步日志仓库
func NewSyncLogRepository(db *gorm.DB) *GormSyncLogRepository {
	return &GormSyncLogRepository{db: db}
}

// WithTx 绑定事务
func (r *GormSyncLogRepository) WithTx(tx *gorm.DB) SyncLogRepository {
	if tx == nil {
		return r
	}
	return &GormSyncLogRepository{db: tx}
}

// Create 追加一条同步日志
func (r *GormSyncLogRepository) Create(log *models.ChannelSyncLog) error {
	if log == nil {
		return errors.New("sync log is nil")
	}
	return r.db.Create(log).Error
}

// List 分页查询同步日志列表
func (r *GormSyncLogRepository) List(filter SyncLogListFilter) ([]models.ChannelSyncLog, int64, error) {
	query := r.db.Model(&models.ChannelSyncLog{})
	if filter.ChannelID > 0 {
		query = query.Where("channel_id = ?", filter.ChannelID)
	}
	if filter.SyncType != "" {
		query = query.Where("sync_type = ?", filter.SyncType)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
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

	var logs []models.ChannelSyncLog
	query = query.Order("id DESC")
	if err := applyPagination(query, filter.Page, filter.PageSize).Find(&logs).Error; err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}
