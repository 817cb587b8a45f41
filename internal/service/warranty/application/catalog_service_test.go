package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/crypto/bcrypt"

	"veritag/internal/service/warranty/domain"
)

func newTestCatalog(productRepo *fakeProductRepo, shopRepo *fakeShopRepo, qrRepo *fakeQRRepo) *CatalogService {
	return NewCatalogService(productRepo, shopRepo, newFakeCategoryRepo(), qrRepo,
		noop.NewTracerProvider().Tracer("test"), 365)
}

func TestCreateShop(t *testing.T) {
	t.Run("密码落库前经过哈希", func(t *testing.T) {
		shopRepo := newFakeShopRepo()
		svc := newTestCatalog(newFakeProductRepo(), shopRepo, newFakeQRRepo())

		view, err := svc.CreateShop(context.Background(), &CreateShopRequest{
			ShopName: "旗舰店", OwnerName: "老板", PhoneNumber: "13800000000", Password: "secret",
		})
		require.NoError(t, err)
		assert.Regexp(t, `^SHOP[A-Z0-9]{6}$`, view.ShopID)

		stored, err := shopRepo.FindByShopID(context.Background(), view.ShopID)
		require.NoError(t, err)
		assert.NotEqual(t, "secret", stored.Password)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("secret")))
	})

	t.Run("门店名重复报冲突", func(t *testing.T) {
		svc := newTestCatalog(newFakeProductRepo(), newFakeShopRepo(testShop()), newFakeQRRepo())

		_, err := svc.CreateShop(context.Background(), &CreateShopRequest{
			ShopName: "旗舰店", OwnerName: "老板", PhoneNumber: "13800000000", Password: "secret",
		})
		assert.ErrorIs(t, err, domain.ErrNameTaken)
	})

	t.Run("必填字段缺失", func(t *testing.T) {
		svc := newTestCatalog(newFakeProductRepo(), newFakeShopRepo(), newFakeQRRepo())
		_, err := svc.CreateShop(context.Background(), &CreateShopRequest{ShopName: "旗舰店"})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestVerifyShopCredentials(t *testing.T) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	require.NoError(t, err)
	shopRepo := newFakeShopRepo(&domain.Shop{ShopID: "SHOPAAAAAA", ShopName: "旗舰店", Password: string(hashed)})
	svc := newTestCatalog(newFakeProductRepo(), shopRepo, newFakeQRRepo())

	t.Run("凭证正确", func(t *testing.T) {
		view, err := svc.VerifyShopCredentials(context.Background(), "SHOPAAAAAA", "secret")
		require.NoError(t, err)
		assert.Equal(t, "SHOPAAAAAA", view.ShopID)
	})

	t.Run("密码错误和门店不存在返回同一个错误", func(t *testing.T) {
		_, badPass := svc.VerifyShopCredentials(context.Background(), "SHOPAAAAAA", "wrong")
		_, noShop := svc.VerifyShopCredentials(context.Background(), "SHOPMISSING", "secret")

		assert.ErrorIs(t, badPass, domain.ErrInvalidCredentials)
		assert.ErrorIs(t, noShop, domain.ErrInvalidCredentials)
	})
}

func TestCreateProduct(t *testing.T) {
	t.Run("缺省质保天数来自配置", func(t *testing.T) {
		svc := newTestCatalog(newFakeProductRepo(), newFakeShopRepo(), newFakeQRRepo())

		view, err := svc.CreateProduct(context.Background(), &CreateProductRequest{
			ProductName: "净水器", Manufacturer: "厂商",
		})
		require.NoError(t, err)
		assert.Regexp(t, `^PROD[A-Z0-9]{6}$`, view.ProductID)
		assert.Equal(t, 365, view.WarrantyDuration)
	})

	t.Run("显式质保天数生效", func(t *testing.T) {
		svc := newTestCatalog(newFakeProductRepo(), newFakeShopRepo(), newFakeQRRepo())

		view, err := svc.CreateProduct(context.Background(), &CreateProductRequest{
			ProductName: "净水器", Manufacturer: "厂商", WarrantyDuration: 730,
		})
		require.NoError(t, err)
		assert.Equal(t, 730, view.WarrantyDuration)
	})
}

func TestCategories(t *testing.T) {
	svc := newTestCatalog(newFakeProductRepo(), newFakeShopRepo(), newFakeQRRepo())

	category, err := svc.CreateCategory(context.Background(), &CategoryRequest{Name: "家电", Description: "大小家电"})
	require.NoError(t, err)
	assert.NotZero(t, category.ID)

	_, err = svc.CreateCategory(context.Background(), &CategoryRequest{Name: "家电"})
	assert.ErrorIs(t, err, domain.ErrNameTaken)

	_, err = svc.CreateCategory(context.Background(), &CategoryRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestDashboard(t *testing.T) {
	qrRepo := newFakeQRRepo()
	productRepo := newFakeProductRepo(testProduct())
	shopRepo := newFakeShopRepo(testShop())
	svc := newTestCatalog(productRepo, shopRepo, qrRepo)

	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	require.NoError(t, qrRepo.CreateBatch(context.Background(), []*domain.QRCode{
		{SerialNumber: "AAAA0001", ProductID: "PRODAAAAAA", BatchID: "BATCH_1_X", AssignedShopID: "SHOPAAAAAA",
			Activation: &domain.Activation{ActivatedAt: now.Add(-2 * time.Hour)}},
		{SerialNumber: "AAAA0002", ProductID: "PRODAAAAAA", BatchID: "BATCH_1_X", AssignedShopID: "SHOPAAAAAA",
			Activation: &domain.Activation{ActivatedAt: now.AddDate(0, 0, -3)}},
		{SerialNumber: "AAAA0003", ProductID: "PRODAAAAAA", BatchID: "BATCH_1_X"},
	}))

	stats, err := svc.Dashboard(context.Background(), now)
	require.NoError(t, err)

	assert.Equal(t, int64(1), stats.TotalShops)
	assert.Equal(t, int64(1), stats.TotalProducts)
	assert.Equal(t, int64(3), stats.TotalQRCodes)
	assert.Equal(t, int64(2), stats.ActivatedQRCodes)
	assert.Equal(t, int64(1), stats.TodayActivations)

	require.Len(t, stats.TopProducts, 1)
	assert.Equal(t, "空气净化器", stats.TopProducts[0].ProductName)
	assert.Equal(t, int64(2), stats.TopProducts[0].ActivationCount)

	require.Len(t, stats.WeeklyActivations, 7)
	var weeklyTotal int64
	for _, day := range stats.WeeklyActivations {
		weeklyTotal += day.Count
	}
	assert.Equal(t, int64(2), weeklyTotal)
}
