package service

import (
	"context"
	"strings"

	"github.com/omniorder/internal/cache"
	"github.com/omniorder/internal/logger"
	"github.com/omniorder/internal/models"
	"github.com/omniorder/internal/repository"
)

// MappingService SKU 映射管理
type MappingService struct {
	mappingRepo repository.SKUMappingRepository
	channelRepo repository.ChannelRepository
	productRepo repository.ProductRepository
	bundleRepo  repository.BundleRepository
}

// NewMappingService 创建映射服务
func NewMappingService(
	mappingRepo repository.SKUMappingRepository,
	channelRepo repository.ChannelRepository,
	productRepo repository.ProductRepository,
	bundleRepo repository.BundleRepository,
) *MappingService {
	return &MappingService{
		mappingRepo: mappingRepo,
		channelRepo: channelRepo,
		productRepo: productRepo,
		bundleRepo:  bundleRepo,
	}
}

// MappingInput SKU 映射创建/更新输入
type MappingInput struct {
	ChannelID     uint          `json:"channel_id"`
	ChannelSKU    string        `json:"channel_sku"`
	ProductID     *uint         `json:"product_id"`
	BundleID      *uint         `json:"bundle_id"`
	PriceOverride *models.Money `json:"price_override"`
	StockOverride *int          `json:"stock_override"`
	IsActive      *bool         `json:"is_active"`
}

// Create 创建映射。目标必须恰好指向一个商品或套装，
// 同渠道同 SKU 已有映射时拒绝。
func (s *MappingService) Create(input MappingInput) (*models.SKUMapping, error) {
	channelSKU := strings.TrimSpace(input.ChannelSKU)
	if channelSKU == "" {
		return nil, ErrInvalidMappingTarget
	}
	if err := s.validateTarget(input.ProductID, input.BundleID); err != nil {
		return nil, err
	}
	ch, err := s.channelRepo.GetByID(input.ChannelID)
	if err != nil {
		return nil, err
	}
	if ch == nil {
		return nil, ErrChannelNotFound
	}
	existing, err := s.mappingRepo.GetByChannelAndSKU(input.ChannelID, channelSKU)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrMappingConflict
	}

	mapping := &models.SKUMapping{
		ChannelID:     input.ChannelID,
		ChannelSKU:    channelSKU,
		ProductID:     input.ProductID,
		BundleID:      input.BundleID,
		PriceOverride: input.PriceOverride,
		StockOverride: input.StockOverride,
		IsActive:      true,
	}
	if input.IsActive != nil {
		mapping.IsActive = *input.IsActive
	}
	if err := s.mappingRepo.Create(mapping); err != nil {
		return nil, err
	}
	s.dropSnapshot(input.ChannelID)
	logger.Infow("sku_mapping_created", "channel_id", input.ChannelID, "channel_sku", channelSKU)
	return mapping, nil
}

// Update 更新映射，目标变更后同样要求恰好一个目标
func (s *MappingService) Update(id uint, input MappingInput) (*models.SKUMapping, error) {
	mapping, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}

	if input.ProductID != nil || input.BundleID != nil {
		if err := s.validateTarget(input.ProductID, input.BundleID); err != nil {
			return nil, err
		}
		mapping.ProductID = input.ProductID
		mapping.BundleID = input.BundleID
	}
	if input.PriceOverride != nil {
		mapping.PriceOverride = input.PriceOverride
	}
	mapping.StockOverride = input.StockOverride
	if input.IsActive != nil {
		mapping.IsActive = *input.IsActive
	}
	if err := s.mappingRepo.Update(mapping); err != nil {
		return nil, err
	}
	s.dropSnapshot(mapping.ChannelID)
	return mapping, nil
}

// Delete 删除映射
func (s *MappingService) Delete(id uint) error {
	mapping, err := s.GetByID(id)
	if err != nil {
		return err
	}
	if err := s.mappingRepo.Delete(mapping.ID); err != nil {
		return err
	}
	s.dropSnapshot(mapping.ChannelID)
	return nil
}

// GetByID 查询映射
func (s *MappingService) GetByID(id uint) (*models.SKUMapping, error) {
	mapping, err := s.mappingRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if mapping == nil {
		return nil, ErrMappingNotFound
	}
	return mapping, nil
}

// List 映射列表
func (s *MappingService) List(filter repository.SKUMappingListFilter) ([]models.SKUMapping, int64, error) {
	return s.mappingRepo.List(filter)
}

// validateTarget 商品与套装二选一
func (s *MappingService) validateTarget(productID, bundleID *uint) error {
	if (productID == nil) == (bundleID == nil) {
		return ErrInvalidMappingTarget
	}
	if productID != nil {
		product, err := s.productRepo.GetByID(*productID)
		if err != nil {
			return err
		}
		if product == nil {
			return ErrProductNotFound
		}
		return nil
	}
	bundle, err := s.bundleRepo.GetByID(*bundleID)
	if err != nil {
		return err
	}
	if bundle == nil {
		return ErrBundleNotFound
	}
	return nil
}

// dropSnapshot 映射变更后清掉同步快照，下次同步全量推送
func (s *MappingService) dropSnapshot(channelID uint) {
	if err := cache.DropChannelStockSnapshot(context.Background(), channelID); err != nil {
		logger.Warnw("sync_snapshot_drop_failed", "channel_id", channelID, "error", err)
	}
}
