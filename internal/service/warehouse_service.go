package service

import (
	"strings"

	"github.com/omniorder/internal/logger"
	"github.com/omniorder/internal/models"
	"github.com/omniorder/internal/repository"

	"gorm.io/gorm"
)

// WarehouseService 仓库管理
type WarehouseService struct {
	warehouseRepo repository.WarehouseRepository
}

// NewWarehouseService 创建仓库服务
func NewWarehouseService(warehouseRepo repository.WarehouseRepository) *WarehouseService {
	return &WarehouseService{warehouseRepo: warehouseRepo}
}

// WarehouseInput 仓库创建/更新输入
type WarehouseInput struct {
	TenantID  uint   `json:"tenant_id"`
	Name      string `json:"name"`
	Code      string `json:"code"`
	Address   string `json:"address"`
	IsDefault bool   `json:"is_default"`
	IsActive  *bool  `json:"is_active"`
}

// Create 创建仓库。设为默认时清除租户其他默认仓库，保证默认仓库唯一。
func (s *WarehouseService) Create(input WarehouseInput) (*models.Warehouse, error) {
	warehouse := &models.Warehouse{
		TenantID:  input.TenantID,
		Name:      strings.TrimSpace(input.Name),
		Code:      strings.TrimSpace(input.Code),
		Address:   input.Address,
		IsDefault: input.IsDefault,
		IsActive:  true,
	}
	if input.IsActive != nil {
		warehouse.IsActive = *input.IsActive
	}
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		repo := s.warehouseRepo.WithTx(tx)
		if err := repo.Create(warehouse); err != nil {
			return err
		}
		if warehouse.IsDefault {
			return repo.ClearDefault(warehouse.TenantID, warehouse.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.Infow("warehouse_created", "warehouse_id", warehouse.ID, "code", warehouse.Code, "is_default", warehouse.IsDefault)
	return warehouse, nil
}

// Update 更新仓库，维持单默认仓库约束
func (s *WarehouseService) Update(id uint, input WarehouseInput) (*models.Warehouse, error) {
	warehouse, err := s.warehouseRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if warehouse == nil {
		return nil, ErrWarehouseNotFound
	}

	if name := strings.TrimSpace(input.Name); name != "" {
		warehouse.Name = name
	}
	if code := strings.TrimSpace(input.Code); code != "" {
		warehouse.Code = code
	}
	if input.Address != "" {
		warehouse.Address = input.Address
	}
	if input.IsActive != nil {
		warehouse.IsActive = *input.IsActive
	}
	warehouse.IsDefault = input.IsDefault

	err = models.DB.Transaction(func(tx *gorm.DB) error {
		repo := s.warehouseRepo.WithTx(tx)
		if err := repo.Update(warehouse); err != nil {
			return err
		}
		if warehouse.IsDefault {
			return repo.ClearDefault(warehouse.TenantID, warehouse.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return warehouse, nil
}

// GetByID 查询仓库
func (s *WarehouseService) GetByID(id uint) (*models.Warehouse, error) {
	warehouse, err := s.warehouseRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if warehouse == nil {
		return nil, ErrWarehouseNotFound
	}
	return warehouse, nil
}

// List 仓库列表
func (s *WarehouseService) List(filter repository.WarehouseListFilter) ([]models.Warehouse, int64, error) {
	return s.warehouseRepo.List(filter)
}
