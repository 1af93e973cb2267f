package service

import (
	"strings"

	"github.com/omniorder/internal/constants"
	"github.com/omniorder/internal/models"
	"github.com/omniorder/internal/repository"

	"gorm.io/gorm"
)

// SKUResolver 渠道 SKU 解析服务
type SKUResolver struct {
	mappingRepo repository.SKUMappingRepository
	productRepo repository.ProductRepository
	bundleRepo  repository.BundleRepository
}

// NewSKUResolver 创建解析服务
func NewSKUResolver(mappingRepo repository.SKUMappingRepository, productRepo repository.ProductRepository, bundleRepo repository.BundleRepository) *SKUResolver {
	return &SKUResolver{
		mappingRepo: mappingRepo,
		productRepo: productRepo,
		bundleRepo:  bundleRepo,
	}
}

// ResolvedTarget 解析结果。Type 为 unresolved 时 Product 与 Bundle 均为空，
// 调用方须将订单行标记为 unmapped 而不是让导入失败。
type ResolvedTarget struct {
	Type    string
	Product *models.Product
	Bundle  *models.ProductBundle
	Mapping *models.SKUMapping
}

// IsResolved 判断是否解析成功
func (t *ResolvedTarget) IsResolved() bool {
	return t.Type != constants.ResolutionUnresolved
}

// Resolve 解析渠道 SKU：映射 > 租户内部 SKU/条码 > 租户套装 SKU > 未解析
func (r *SKUResolver) Resolve(channel *models.Channel, externalSKU string) (*ResolvedTarget, error) {
	return r.ResolveInTx(nil, channel, externalSKU)
}

// ResolveInTx 在外部事务内解析
func (r *SKUResolver) ResolveInTx(tx *gorm.DB, channel *models.Channel, externalSKU string) (*ResolvedTarget, error) {
	unresolved := &ResolvedTarget{Type: constants.ResolutionUnresolved}
	if channel == nil {
		return nil, ErrChannelNotFound
	}
	sku := strings.TrimSpace(externalSKU)
	if sku == "" {
		return unresolved, nil
	}

	mappingRepo := r.mappingRepo.WithTx(tx)
	productRepo := r.productRepo.WithTx(tx)
	bundleRepo := r.bundleRepo.WithTx(tx)

	mapping, err := mappingRepo.GetByChannelAndSKU(channel.ID, sku)
	if err != nil {
		return nil, err
	}
	if mapping != nil {
		if mapping.ProductID != nil {
			product := mapping.Product
			if product == nil {
				product, err = productRepo.GetByID(*mapping.ProductID)
				if err != nil {
					return nil, err
				}
			}
			if product != nil {
				return &ResolvedTarget{Type: constants.ResolutionProduct, Product: product, Mapping: mapping}, nil
			}
		}
		if mapping.BundleID != nil {
			bundle := mapping.Bundle
			if bundle == nil || len(bundle.Components) == 0 {
				bundle, err = bundleRepo.GetByID(*mapping.BundleID)
				if err != nil {
					return nil, err
				}
			}
			if bundle != nil {
				return &ResolvedTarget{Type: constants.ResolutionBundle, Bundle: bundle, Mapping: mapping}, nil
			}
		}
		// 映射指向的目标已消失，按未解析处理
		return unresolved, nil
	}

	product, err := productRepo.GetBySKUOrBarcode(channel.TenantID, sku)
	if err != nil {
		return nil, err
	}
	if product != nil {
		return &ResolvedTarget{Type: constants.ResolutionProduct, Product: product}, nil
	}

	bundle, err := bundleRepo.GetByTenantAndSKU(channel.TenantID, sku)
	if err != nil {
		return nil, err
	}
	if bundle != nil {
		return &ResolvedTarget{Type: constants.ResolutionBundle, Bundle: bundle}, nil
	}

	return unresolved, nil
}
