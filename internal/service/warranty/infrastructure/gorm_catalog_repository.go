// internal/service/warranty/infrastructure/gorm_catalog_repository.go
package infrastructure

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"veritag/internal/service/warranty/domain"
)

// GormProductRepository 是 ProductRepository 的 GORM 实现
type GormProductRepository struct {
	db *gorm.DB
}

func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

func (r *GormProductRepository) Create(ctx context.Context, p *domain.Product) error {
	model := toProductModel(p)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}
	p.ID = model.ID
	return nil
}

func (r *GormProductRepository) Update(ctx context.Context, p *domain.Product) error {
	return r.db.WithContext(ctx).Model(&ProductModel{}).
		Where("id = ?", p.ID).
		Updates(map[string]interface{}{
			"product_name":      p.ProductName,
			"manufacturer":      p.Manufacturer,
			"category":          p.Category,
			"image_url":         p.ImageURL,
			"warranty_duration": p.WarrantyDuration,
		}).Error
}

func (r *GormProductRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&ProductModel{}).Error
}

func (r *GormProductRepository) FindByProductID(ctx context.Context, productID string) (*domain.Product, error) {
	var model ProductModel
	err := r.db.WithContext(ctx).Where("product_id = ?", productID).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrProductNotFound
		}
		return nil, err
	}
	return toDomainProduct(&model), nil
}

func (r *GormProductRepository) FindByID(ctx context.Context, id uint) (*domain.Product, error) {
	var model ProductModel
	err := r.db.WithContext(ctx).First(&model, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrProductNotFound
		}
		return nil, err
	}
	return toDomainProduct(&model), nil
}

func (r *GormProductRepository) FindByProductIDs(ctx context.Context, productIDs []string) ([]*domain.Product, error) {
	var models []ProductModel
	if err := r.db.WithContext(ctx).Where("product_id IN ?", productIDs).Find(&models).Error; err != nil {
		return nil, err
	}
	products := make([]*domain.Product, len(models))
	for i := range models {
		products[i] = toDomainProduct(&models[i])
	}
	return products, nil
}

func (r *GormProductRepository) FindAll(ctx context.Context) ([]*domain.Product, error) {
	var models []ProductModel
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, err
	}
	products := make([]*domain.Product, len(models))
	for i := range models {
		products[i] = toDomainProduct(&models[i])
	}
	return products, nil
}

func (r *GormProductRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&ProductModel{}).Count(&count).Error
	return count, err
}

// GormShopRepository 是 ShopRepository 的 GORM 实现
type GormShopRepository struct {
	db *gorm.DB
}

func NewGormShopRepository(db *gorm.DB) *GormShopRepository {
	return &GormShopRepository{db: db}
}

func (r *GormShopRepository) Create(ctx context.Context, s *domain.Shop) error {
	model := toShopModel(s)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}
	s.ID = model.ID
	return nil
}

func (r *GormShopRepository) Update(ctx context.Context, s *domain.Shop) error {
	return r.db.WithContext(ctx).Model(&ShopModel{}).
		Where("id = ?", s.ID).
		Updates(map[string]interface{}{
			"shop_name":    s.ShopName,
			"owner_name":   s.OwnerName,
			"phone_number": s.PhoneNumber,
			"password":     s.Password,
			"is_active":    s.IsActive,
		}).Error
}

func (r *GormShopRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&ShopModel{}).Error
}

func (r *GormShopRepository) FindByShopID(ctx context.Context, shopID string) (*domain.Shop, error) {
	var model ShopModel
	err := r.db.WithContext(ctx).Where("shop_id = ?", shopID).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrShopNotFound
		}
		return nil, err
	}
	return toDomainShop(&model), nil
}

func (r *GormShopRepository) FindByID(ctx context.Context, id uint) (*domain.Shop, error) {
	var model ShopModel
	err := r.db.WithContext(ctx).First(&model, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrShopNotFound
		}
		return nil, err
	}
	return toDomainShop(&model), nil
}

func (r *GormShopRepository) FindByName(ctx context.Context, shopName string) (*domain.Shop, error) {
	var model ShopModel
	err := r.db.WithContext(ctx).Where("shop_name = ?", shopName).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrShopNotFound
		}
		return nil, err
	}
	return toDomainShop(&model), nil
}

func (r *GormShopRepository) FindAll(ctx context.Context) ([]*domain.Shop, error) {
	var models []ShopModel
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, err
	}
	shops := make([]*domain.Shop, len(models))
	for i := range models {
		shops[i] = toDomainShop(&models[i])
	}
	return shops, nil
}

func (r *GormShopRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&ShopModel{}).Count(&count).Error
	return count, err
}

// GormCategoryRepository 是 CategoryRepository 的 GORM 实现
type GormCategoryRepository struct {
	db *gorm.DB
}

func NewGormCategoryRepository(db *gorm.DB) *GormCategoryRepository {
	return &GormCategoryRepository{db: db}
}

func (r *GormCategoryRepository) Create(ctx context.Context, c *domain.Category) error {
	model := toCategoryModel(c)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}
	c.ID = model.ID
	return nil
}

func (r *GormCategoryRepository) Update(ctx context.Context, c *domain.Category) error {
	return r.db.WithContext(ctx).Model(&CategoryModel{}).
		Where("id = ?", c.ID).
		Updates(map[string]interface{}{
			"name":        c.Name,
			"description": c.Description,
		}).Error
}

func (r *GormCategoryRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&CategoryModel{}).Error
}

func (r *GormCategoryRepository) FindByID(ctx context.Context, id uint) (*domain.Category, error) {
	var model CategoryModel
	err := r.db.WithContext(ctx).First(&model, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrCategoryNotFound
		}
		return nil, err
	}
	return toDomainCategory(&model), nil
}

func (r *GormCategoryRepository) FindByName(ctx context.Context, name string) (*domain.Category, error) {
	var model CategoryModel
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrCategoryNotFound
		}
		return nil, err
	}
	return toDomainCategory(&model), nil
}

func (r *GormCategoryRepository) FindAll(ctx context.Context) ([]*domain.Category, error) {
	var models []CategoryModel
	if err := r.db.WithContext(ctx).Order("name").Find(&models).Error; err != nil {
		return nil, err
	}
	categories := make([]*domain.Category, len(models))
	for i := range models {
		categories[i] = toDomainCategory(&models[i])
	}
	return categories, nil
}
