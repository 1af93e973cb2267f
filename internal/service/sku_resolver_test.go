package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/omniorder/internal/constants"
	"github.com/omniorder/internal/models"
	"github.com/omniorder/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupResolverTest(t *testing.T) (*SKUResolver, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:sku_resolver_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Channel{},
		&models.Product{},
		&models.ProductBundle{},
		&models.BundleComponent{},
		&models.SKUMapping{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db
	resolver := NewSKUResolver(
		repository.NewSKUMappingRepository(db),
		repository.NewProductRepository(db),
		repository.NewBundleRepository(db),
	)
	return resolver, db
}

func TestResolvePrefersMapping(t *testing.T) {
	resolver, db := setupResolverTest(t)

	ch := models.Channel{TenantID: 1, Name: "shop", ChannelType: "shopify", IsActive: true}
	if err := db.Create(&ch).Error; err != nil {
		t.Fatalf("seed channel failed: %v", err)
	}
	mapped := models.Product{TenantID: 1, Name: "Mapped", SKU: "INTERNAL-1", IsActive: true}
	decoy := models.Product{TenantID: 1, Name: "Decoy", SKU: "shop-sku-1", IsActive: true}
	if err := db.Create(&mapped).Error; err != nil {
		t.Fatalf("seed product failed: %v", err)
	}
	if err := db.Create(&decoy).Error; err != nil {
		t.Fatalf("seed product failed: %v", err)
	}
	mapping := models.SKUMapping{ChannelID: ch.ID, ChannelSKU: "shop-sku-1", ProductID: &mapped.ID, IsActive: true}
	if err := db.Create(&mapping).Error; err != nil {
		t.Fatalf("seed mapping failed: %v", err)
	}

	target, err := resolver.Resolve(&ch, "shop-sku-1")
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if target.Type != constants.ResolutionProduct {
		t.Fatalf("type want product got %s", target.Type)
	}
	// 显式映射优先于同名内部 SKU
	if target.Product == nil || target.Product.ID != mapped.ID {
		t.Fatalf("mapping must win over direct sku match")
	}
	if target.Mapping == nil {
		t.Fatalf("mapping should be attached to the result")
	}
}

func TestResolveFallsBackToInternalSKUAndBarcode(t *testing.T) {
	resolver, db := setupResolverTest(t)

	ch := models.Channel{TenantID: 1, Name: "pos", ChannelType: "pos", IsActive: true}
	if err := db.Create(&ch).Error; err != nil {
		t.Fatalf("seed channel failed: %v", err)
	}
	product := models.Product{TenantID: 1, Name: "Earbuds", SKU: "SKU-EARBUD-01", Barcode: "6901234500011", IsActive: true}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("seed product failed: %v", err)
	}
	other := models.Product{TenantID: 2, Name: "OtherTenant", SKU: "SKU-FOREIGN", IsActive: true}
	if err := db.Create(&other).Error; err != nil {
		t.Fatalf("seed product failed: %v", err)
	}

	target, err := resolver.Resolve(&ch, "SKU-EARBUD-01")
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if target.Type != constants.ResolutionProduct || target.Product.ID != product.ID {
		t.Fatalf("internal sku fallback failed: %+v", target)
	}

	target, err = resolver.Resolve(&ch, "6901234500011")
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if target.Type != constants.ResolutionProduct || target.Product.ID != product.ID {
		t.Fatalf("barcode fallback failed: %+v", target)
	}

	// 其他租户的 SKU 不可见
	target, err = resolver.Resolve(&ch, "SKU-FOREIGN")
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if target.IsResolved() {
		t.Fatalf("cross tenant sku must stay unresolved")
	}
}

func TestResolveBundleSKU(t *testing.T) {
	resolver, db := setupResolverTest(t)

	ch := models.Channel{TenantID: 1, Name: "shop", ChannelType: "shopify", IsActive: true}
	if err := db.Create(&ch).Error; err != nil {
		t.Fatalf("seed channel failed: %v", err)
	}
	bundle := models.ProductBundle{TenantID: 1, Name: "Kit", SKU: "SKU-KIT", IsActive: true}
	if err := db.Create(&bundle).Error; err != nil {
		t.Fatalf("seed bundle failed: %v", err)
	}

	target, err := resolver.Resolve(&ch, "SKU-KIT")
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if target.Type != constants.ResolutionBundle || target.Bundle == nil || target.Bundle.ID != bundle.ID {
		t.Fatalf("bundle resolution failed: %+v", target)
	}
}

func TestResolveUnknownAndBlank(t *testing.T) {
	resolver, db := setupResolverTest(t)

	ch := models.Channel{TenantID: 1, Name: "shop", ChannelType: "shopify", IsActive: true}
	if err := db.Create(&ch).Error; err != nil {
		t.Fatalf("seed channel failed: %v", err)
	}

	target, err := resolver.Resolve(&ch, "ghost-sku")
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if target.IsResolved() {
		t.Fatalf("unknown sku must be unresolved, got %s", target.Type)
	}

	target, err = resolver.Resolve(&ch, "   ")
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if target.IsResolved() {
		t.Fatalf("blank sku must be unresolved")
	}
}

func TestResolveMappingWithMissingTarget(t *testing.T) {
	resolver, db := setupResolverTest(t)

	ch := models.Channel{TenantID: 1, Name: "shop", ChannelType: "shopify", IsActive: true}
	if err := db.Create(&ch).Error; err != nil {
		t.Fatalf("seed channel failed: %v", err)
	}
	ghostID := uint(4040)
	mapping := models.SKUMapping{ChannelID: ch.ID, ChannelSKU: "dangling", ProductID: &ghostID, IsActive: true}
	if err := db.Create(&mapping).Error; err != nil {
		t.Fatalf("seed mapping failed: %v", err)
	}

	target, err := resolver.Resolve(&ch, "dangling")
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if target.IsResolved() {
		t.Fatalf("mapping to missing product must be unresolved")
	}
}
