// internal/service/warranty/domain/repository.go
package domain

import (
	"context"
	"time"
)

// ProductActivationCount 是仪表盘"激活量 Top 商品"的统计行。
type ProductActivationCount struct {
	ProductID string
	Count     int64
}

// QRCodeRepository 定义了标识注册表的持久化接口。
// 位于领域层，由基础设施层实现。
type QRCodeRepository interface {
	// CreateBatch 一次性落库一个批次的全部新码。
	CreateBatch(ctx context.Context, codes []*QRCode) error

	FindBySerial(ctx context.Context, serial string) (*QRCode, error)
	FindByIDs(ctx context.Context, ids []uint) ([]*QRCode, error)
	FindByProduct(ctx context.Context, productID string) ([]*QRCode, error)
	FindByBatch(ctx context.Context, batchID string) ([]*QRCode, error)
	FindByShop(ctx context.Context, shopID string) ([]*QRCode, error)
	FindAll(ctx context.Context) ([]*QRCode, error)

	// AssignShop 无条件覆盖指定码的分配门店，重复执行幂等。
	AssignShop(ctx context.Context, ids []uint, shopID string) error

	// Activate 必须以条件写的方式实现"恰好一次"：
	// 存在性、未激活、门店匹配三项检查和状态写入对并发调用不可分割。
	// 返回更新后的完整记录；失败时返回 ErrQRCodeNotFound /
	// ErrAlreadyActivated / ErrNotAssignedShop 之一。
	Activate(ctx context.Context, serial, actingShopID string, act Activation) (*QRCode, error)

	// DeleteByIDs / DeleteByBatch 无条件删除，返回删除条数，零匹配不报错。
	DeleteByIDs(ctx context.Context, ids []uint) (int64, error)
	DeleteByBatch(ctx context.Context, batchID string) (int64, error)

	// FindMissingBatch 找出所有没有批次号的遗留码。
	FindMissingBatch(ctx context.Context) ([]*QRCode, error)

	// BackfillBatch 回填批次号，条件是批次号仍为空。
	// 该前置条件保证了重复/并发回填不会二次改写同一条记录。
	BackfillBatch(ctx context.Context, ids []uint, batchID string) (int64, error)

	// AggregateBatches 按批次聚合计数，按创建时间倒序返回。
	AggregateBatches(ctx context.Context) ([]BatchSummary, error)

	// 仪表盘统计
	Count(ctx context.Context) (int64, error)
	CountActivated(ctx context.Context) (int64, error)
	CountActivatedBetween(ctx context.Context, from, to time.Time) (int64, error)
	TopActivatedProducts(ctx context.Context, limit int) ([]ProductActivationCount, error)
}

// ProductRepository 商品只读参照数据 + 管理端 CRUD。
type ProductRepository interface {
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id uint) error
	FindByProductID(ctx context.Context, productID string) (*Product, error)
	FindByID(ctx context.Context, id uint) (*Product, error)
	FindByProductIDs(ctx context.Context, productIDs []string) ([]*Product, error)
	FindAll(ctx context.Context) ([]*Product, error)
	Count(ctx context.Context) (int64, error)
}

// ShopRepository 门店参照数据 + 管理端 CRUD。
type ShopRepository interface {
	Create(ctx context.Context, s *Shop) error
	Update(ctx context.Context, s *Shop) error
	Delete(ctx context.Context, id uint) error
	FindByShopID(ctx context.Context, shopID string) (*Shop, error)
	FindByID(ctx context.Context, id uint) (*Shop, error)
	FindByName(ctx context.Context, shopName string) (*Shop, error)
	FindAll(ctx context.Context) ([]*Shop, error)
	Count(ctx context.Context) (int64, error)
}

// CategoryRepository 商品分类 CRUD，名称唯一。
type CategoryRepository interface {
	Create(ctx context.Context, c *Category) error
	Update(ctx context.Context, c *Category) error
	Delete(ctx context.Context, id uint) error
	FindByID(ctx context.Context, id uint) (*Category, error)
	FindByName(ctx context.Context, name string) (*Category, error)
	FindAll(ctx context.Context) ([]*Category, error)
}

// ActivationEventPublisher 把激活事件发布给下游。发布失败不回滚激活本身。
type ActivationEventPublisher interface {
	PublishActivated(ctx context.Context, event *QRCodeActivated) error
}

// BatchSummaryCache 是批次聚合视图的物化缓存。
// 任何标识变更都必须使其失效，以免计数和事实漂移。
type BatchSummaryCache interface {
	Get(ctx context.Context) ([]BatchSummary, bool, error)
	Set(ctx context.Context, batches []BatchSummary) error
	Invalidate(ctx context.Context) error
}
