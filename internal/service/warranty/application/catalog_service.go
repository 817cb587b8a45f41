// internal/service/warranty/application/catalog_service.go
package application

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/trace"
	"golang.org/x/crypto/bcrypt"

	"veritag/internal/service/warranty/domain"
)

// CatalogService 承载管理端的参照数据维护：商品、门店、分类，
// 以及跨实体的仪表盘统计。
type CatalogService struct {
	productRepo  domain.ProductRepository
	shopRepo     domain.ShopRepository
	categoryRepo domain.CategoryRepository
	qrRepo       domain.QRCodeRepository
	tracer       trace.Tracer

	defaultWarrantyDays int
}

func NewCatalogService(
	productRepo domain.ProductRepository,
	shopRepo domain.ShopRepository,
	categoryRepo domain.CategoryRepository,
	qrRepo domain.QRCodeRepository,
	tracer trace.Tracer,
	defaultWarrantyDays int,
) *CatalogService {
	return &CatalogService{
		productRepo:         productRepo,
		shopRepo:            shopRepo,
		categoryRepo:        categoryRepo,
		qrRepo:              qrRepo,
		tracer:              tracer,
		defaultWarrantyDays: defaultWarrantyDays,
	}
}

// --- 商品 ---

// CreateProductRequest 商品图片以 URL 形式传入，二进制上传属于外部资产服务。
type CreateProductRequest struct {
	ProductName      string `json:"productName"`
	Manufacturer     string `json:"manufacturer"`
	Category         string `json:"category"`
	ImageURL         string `json:"imageUrl"`
	WarrantyDuration int    `json:"warrantyDuration"`
}

func (s *CatalogService) CreateProduct(ctx context.Context, req *CreateProductRequest) (*ProductView, error) {
	if req.ProductName == "" || req.Manufacturer == "" {
		return nil, domain.ErrInvalidInput
	}
	duration := req.WarrantyDuration
	if duration <= 0 {
		duration = s.defaultWarrantyDays
	}
	product := &domain.Product{
		ProductID:        domain.MintProductID(),
		ProductName:      req.ProductName,
		Manufacturer:     req.Manufacturer,
		Category:         req.Category,
		ImageURL:         req.ImageURL,
		WarrantyDuration: duration,
	}
	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}
	return toProductView(product), nil
}

func (s *CatalogService) UpdateProduct(ctx context.Context, id uint, req *CreateProductRequest) (*ProductView, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	product.ProductName = req.ProductName
	product.Manufacturer = req.Manufacturer
	product.Category = req.Category
	if req.ImageURL != "" {
		product.ImageURL = req.ImageURL
	}
	if req.WarrantyDuration > 0 {
		product.WarrantyDuration = req.WarrantyDuration
	} else {
		product.WarrantyDuration = s.defaultWarrantyDays
	}
	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}
	return toProductView(product), nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id uint) error {
	return s.productRepo.Delete(ctx, id)
}

func (s *CatalogService) ListProducts(ctx context.Context) ([]*ProductView, error) {
	products, err := s.productRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]*ProductView, len(products))
	for i, p := range products {
		views[i] = toProductView(p)
	}
	return views, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, productID string) (*ProductView, error) {
	product, err := s.productRepo.FindByProductID(ctx, productID)
	if err != nil {
		return nil, err
	}
	return toProductView(product), nil
}

// --- 门店 ---

type CreateShopRequest struct {
	ShopName    string `json:"shopName"`
	OwnerName   string `json:"ownerName"`
	PhoneNumber string `json:"phoneNumber"`
	Password    string `json:"password"`
}

func (s *CatalogService) CreateShop(ctx context.Context, req *CreateShopRequest) (*ShopView, error) {
	if req.ShopName == "" || req.OwnerName == "" || req.PhoneNumber == "" || req.Password == "" {
		return nil, domain.ErrInvalidInput
	}
	// 门店名唯一
	if existing, err := s.shopRepo.FindByName(ctx, req.ShopName); err == nil && existing != nil {
		return nil, domain.ErrNameTaken
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	shop := &domain.Shop{
		ShopID:      domain.MintShopID(),
		ShopName:    req.ShopName,
		OwnerName:   req.OwnerName,
		PhoneNumber: req.PhoneNumber,
		Password:    string(hashed),
		IsActive:    true,
	}
	if err := s.shopRepo.Create(ctx, shop); err != nil {
		return nil, err
	}
	return toShopView(shop), nil
}

func (s *CatalogService) UpdateShop(ctx context.Context, id uint, req *CreateShopRequest) (*ShopView, error) {
	shop, err := s.shopRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	shop.ShopName = req.ShopName
	shop.OwnerName = req.OwnerName
	shop.PhoneNumber = req.PhoneNumber
	if req.Password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		shop.Password = string(hashed)
	}
	if err := s.shopRepo.Update(ctx, shop); err != nil {
		return nil, err
	}
	return toShopView(shop), nil
}

func (s *CatalogService) DeleteShop(ctx context.Context, id uint) error {
	return s.shopRepo.Delete(ctx, id)
}

func (s *CatalogService) ListShops(ctx context.Context) ([]*ShopView, error) {
	shops, err := s.shopRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]*ShopView, len(shops))
	for i, shop := range shops {
		views[i] = toShopView(shop)
	}
	return views, nil
}

// VerifyShopCredentials 校验门店登录凭证，任何失败都返回同一个错误，
// 不暴露"门店不存在"和"密码错误"的区别。
func (s *CatalogService) VerifyShopCredentials(ctx context.Context, shopID, password string) (*ShopView, error) {
	shop, err := s.shopRepo.FindByShopID(ctx, shopID)
	if err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(shop.Password), []byte(password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	return toShopView(shop), nil
}

// --- 分类 ---

type CategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (s *CatalogService) CreateCategory(ctx context.Context, req *CategoryRequest) (*domain.Category, error) {
	if req.Name == "" {
		return nil, domain.ErrInvalidInput
	}
	if existing, err := s.categoryRepo.FindByName(ctx, req.Name); err == nil && existing != nil {
		return nil, domain.ErrNameTaken
	}
	category := &domain.Category{Name: req.Name, Description: req.Description}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *CatalogService) UpdateCategory(ctx context.Context, id uint, req *CategoryRequest) (*domain.Category, error) {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	category.Name = req.Name
	category.Description = req.Description
	if err := s.categoryRepo.Update(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *CatalogService) DeleteCategory(ctx context.Context, id uint) error {
	return s.categoryRepo.Delete(ctx, id)
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	return s.categoryRepo.FindAll(ctx)
}

// --- 仪表盘 ---

// Dashboard 聚合管理端首页需要的全部统计。
func (s *CatalogService) Dashboard(ctx context.Context, now time.Time) (*DashboardStats, error) {
	ctx, span := s.tracer.Start(ctx, "service.Dashboard")
	defer span.End()

	stats := &DashboardStats{}

	var err error
	if stats.TotalShops, err = s.shopRepo.Count(ctx); err != nil {
		return nil, err
	}
	if stats.TotalProducts, err = s.productRepo.Count(ctx); err != nil {
		return nil, err
	}
	if stats.TotalQRCodes, err = s.qrRepo.Count(ctx); err != nil {
		return nil, err
	}
	if stats.ActivatedQRCodes, err = s.qrRepo.CountActivated(ctx); err != nil {
		return nil, err
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if stats.TodayActivations, err = s.qrRepo.CountActivatedBetween(ctx, today, today.AddDate(0, 0, 1)); err != nil {
		return nil, err
	}

	top, err := s.qrRepo.TopActivatedProducts(ctx, 5)
	if err != nil {
		return nil, err
	}
	stats.TopProducts = make([]TopProduct, 0, len(top))
	for _, row := range top {
		entry := TopProduct{ActivationCount: row.Count}
		if product, err := s.productRepo.FindByProductID(ctx, row.ProductID); err == nil {
			entry.ProductName = product.ProductName
			entry.ImageURL = product.ImageURL
		}
		stats.TopProducts = append(stats.TopProducts, entry)
	}

	// 最近 7 天的按天激活趋势
	stats.WeeklyActivations = make([]DailyActivations, 0, 7)
	for i := 6; i >= 0; i-- {
		day := today.AddDate(0, 0, -i)
		count, err := s.qrRepo.CountActivatedBetween(ctx, day, day.AddDate(0, 0, 1))
		if err != nil {
			return nil, err
		}
		stats.WeeklyActivations = append(stats.WeeklyActivations, DailyActivations{Date: day, Count: count})
	}

	return stats, nil
}
