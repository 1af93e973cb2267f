package service

import (
	"strings"

	"github.com/omniorder/internal/models"
	"github.com/omniorder/internal/repository"
)

// ProductService 商品主数据管理
type ProductService struct {
	productRepo repository.ProductRepository
}

// NewProductService 创建商品服务
func NewProductService(productRepo repository.ProductRepository) *ProductService {
	return &ProductService{productRepo: productRepo}
}

// ProductInput 商品创建/更新输入
type ProductInput struct {
	TenantID     uint          `json:"tenant_id"`
	Name         string        `json:"name"`
	SKU          string        `json:"sku"`
	Barcode      string        `json:"barcode"`
	Description  string        `json:"description"`
	CostPrice    *models.Money `json:"cost_price"`
	SellingPrice *models.Money `json:"selling_price"`
	IsActive     *bool         `json:"is_active"`
}

// Create 创建商品，内部 SKU 在租户内必须唯一
func (s *ProductService) Create(input ProductInput) (*models.Product, error) {
	sku := strings.TrimSpace(input.SKU)
	if sku == "" {
		return nil, ErrProductNotFound
	}
	existing, err := s.productRepo.GetBySKUOrBarcode(input.TenantID, sku)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrMappingConflict
	}

	product := &models.Product{
		TenantID:    input.TenantID,
		Name:        strings.TrimSpace(input.Name),
		SKU:         sku,
		Barcode:     strings.TrimSpace(input.Barcode),
		Description: input.Description,
		IsActive:    true,
	}
	if input.CostPrice != nil {
		product.CostPrice = *input.CostPrice
	}
	if input.SellingPrice != nil {
		product.SellingPrice = *input.SellingPrice
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}
	if err := s.productRepo.Create(product); err != nil {
		return nil, err
	}
	return product, nil
}

// Update 更新商品
func (s *ProductService) Update(id uint, input ProductInput) (*models.Product, error) {
	product, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if name := strings.TrimSpace(input.Name); name != "" {
		product.Name = name
	}
	if barcode := strings.TrimSpace(input.Barcode); barcode != "" {
		product.Barcode = barcode
	}
	if input.Description != "" {
		product.Description = input.Description
	}
	if input.CostPrice != nil {
		product.CostPrice = *input.CostPrice
	}
	if input.SellingPrice != nil {
		product.SellingPrice = *input.SellingPrice
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}
	if err := s.productRepo.Update(product); err != nil {
		return nil, err
	}
	return product, nil
}

// GetByID 查询商品
func (s *ProductService) GetByID(id uint) (*models.Product, error) {
	product, err := s.productRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	return product, nil
}

// List 商品列表
func (s *ProductService) List(filter repository.ProductListFilter) ([]models.Product, int64, error) {
	return s.productRepo.List(filter)
}
