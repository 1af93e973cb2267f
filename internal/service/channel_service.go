package service

import (
	"strings"
	"time"

	"github.com/omniorder/internal/channel"
	"github.com/omniorder/internal/constants"
	"github.com/omniorder/internal/logger"
	"github.com/omniorder/internal/models"
	"github.com/omniorder/internal/repository"
)

// ChannelService 渠道管理：增改、停用、连通性检测
type ChannelService struct {
	channelRepo   repository.ChannelRepository
	warehouseRepo repository.WarehouseRepository
	registry      *channel.Registry
}

// NewChannelService 创建渠道服务
func NewChannelService(channelRepo repository.ChannelRepository, warehouseRepo repository.WarehouseRepository, registry *channel.Registry) *ChannelService {
	return &ChannelService{
		channelRepo:   channelRepo,
		warehouseRepo: warehouseRepo,
		registry:      registry,
	}
}

// ChannelInput 渠道创建/更新输入
type ChannelInput struct {
	TenantID           uint        `json:"tenant_id"`
	Name               string      `json:"name"`
	ChannelType        string      `json:"channel_type"`
	Credentials        models.JSON `json:"credentials"`
	Settings           models.JSON `json:"settings"`
	DefaultWarehouseID *uint       `json:"default_warehouse_id"`
	IsActive           *bool       `json:"is_active"`
}

// Create 创建渠道，渠道类型必须有已注册的适配器
func (s *ChannelService) Create(input ChannelInput) (*models.Channel, error) {
	channelType := strings.ToLower(strings.TrimSpace(input.ChannelType))
	if _, err := s.registry.Get(channelType); err != nil {
		return nil, ErrUnsupportedChannel
	}
	if input.DefaultWarehouseID != nil {
		if err := s.checkWarehouse(*input.DefaultWarehouseID); err != nil {
			return nil, err
		}
	}

	ch := &models.Channel{
		TenantID:           input.TenantID,
		Name:               strings.TrimSpace(input.Name),
		ChannelType:        channelType,
		CredentialsJSON:    input.Credentials,
		SettingsJSON:       input.Settings,
		DefaultWarehouseID: input.DefaultWarehouseID,
		SyncStatus:         constants.ChannelSyncStatusDisconnected,
		IsActive:           true,
	}
	if input.IsActive != nil {
		ch.IsActive = *input.IsActive
	}
	if err := s.channelRepo.Create(ch); err != nil {
		return nil, err
	}
	logger.Infow("channel_created", "channel_id", ch.ID, "channel_type", ch.ChannelType)
	return ch, nil
}

// Update 更新渠道配置
func (s *ChannelService) Update(id uint, input ChannelInput) (*models.Channel, error) {
	ch, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(input.Name); name != "" {
		ch.Name = name
	}
	if input.Credentials != nil {
		ch.CredentialsJSON = input.Credentials
	}
	if input.Settings != nil {
		ch.SettingsJSON = input.Settings
	}
	if input.DefaultWarehouseID != nil {
		if err := s.checkWarehouse(*input.DefaultWarehouseID); err != nil {
			return nil, err
		}
		ch.DefaultWarehouseID = input.DefaultWarehouseID
	}
	if input.IsActive != nil {
		ch.IsActive = *input.IsActive
	}
	if err := s.channelRepo.Update(ch); err != nil {
		return nil, err
	}
	return ch, nil
}

// Deactivate 停用渠道（软停用，保留历史订单与映射）
func (s *ChannelService) Deactivate(id uint) error {
	ch, err := s.GetByID(id)
	if err != nil {
		return err
	}
	if err := s.channelRepo.Deactivate(ch.ID); err != nil {
		return err
	}
	logger.Infow("channel_deactivated", "channel_id", ch.ID)
	return nil
}

// TestConnection 连通性检测：校验适配器注册与凭据完整性并刷新同步状态
func (s *ChannelService) TestConnection(id uint) (*models.Channel, error) {
	ch, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if _, err := s.registry.Get(ch.ChannelType); err != nil {
		return nil, ErrUnsupportedChannel
	}

	now := time.Now()
	status := constants.ChannelSyncStatusConnected
	message := ""
	if len(ch.CredentialsJSON) == 0 {
		status = constants.ChannelSyncStatusError
		message = "credentials not configured"
	}
	if err := s.channelRepo.UpdateSyncStatus(ch.ID, status, message, &now); err != nil {
		return nil, err
	}
	return s.GetByID(id)
}

// GetByID 查询渠道
func (s *ChannelService) GetByID(id uint) (*models.Channel, error) {
	ch, err := s.channelRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if ch == nil {
		return nil, ErrChannelNotFound
	}
	return ch, nil
}

// List 渠道列表
func (s *ChannelService) List(filter repository.ChannelListFilter) ([]models.Channel, int64, error) {
	return s.channelRepo.List(filter)
}

func (s *ChannelService) checkWarehouse(id uint) error {
	warehouse, err := s.warehouseRepo.GetByID(id)
	if err != nil {
		return err
	}
	if warehouse == nil || !warehouse.IsActive {
		return ErrWarehouseNotFound
	}
	return nil
}
