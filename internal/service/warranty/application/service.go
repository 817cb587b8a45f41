// internal/service/warranty/application/service.go
package application

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"veritag/internal/pkg/logger"
	"veritag/internal/service/warranty/domain"
)

// WarrantyService 承载标识生命周期的全部业务用例：
// 批次生成、门店分配、激活、遗留批次回填、批次聚合、扫码展示和删除。
type WarrantyService struct {
	qrRepo      domain.QRCodeRepository
	productRepo domain.ProductRepository
	shopRepo    domain.ShopRepository
	cache       domain.BatchSummaryCache
	publisher   domain.ActivationEventPublisher // 可以为 nil：没有消息通道时激活照常工作
	tracer      trace.Tracer

	defaultWarrantyDays int
}

func NewWarrantyService(
	qrRepo domain.QRCodeRepository,
	productRepo domain.ProductRepository,
	shopRepo domain.ShopRepository,
	cache domain.BatchSummaryCache,
	publisher domain.ActivationEventPublisher,
	tracer trace.Tracer,
	defaultWarrantyDays int,
) *WarrantyService {
	return &WarrantyService{
		qrRepo:              qrRepo,
		productRepo:         productRepo,
		shopRepo:            shopRepo,
		cache:               cache,
		publisher:           publisher,
		tracer:              tracer,
		defaultWarrantyDays: defaultWarrantyDays,
	}
}

// GenerateBatch 为指定商品生成 quantity 枚新码，共享一个新铸的批次号。
func (s *WarrantyService) GenerateBatch(ctx context.Context, req *GenerateBatchRequest) (*GenerateBatchResponse, error) {
	ctx, span := s.tracer.Start(ctx, "service.GenerateBatch")
	defer span.End()

	span.SetAttributes(
		attribute.String("product.id", req.ProductID),
		attribute.Int("batch.quantity", req.Quantity),
	)

	if req.Quantity < 1 {
		return nil, domain.ErrInvalidInput
	}

	product, err := s.productRepo.FindByProductID(ctx, req.ProductID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	now := time.Now()
	batchID := domain.MintBatchID(now)

	codes := make([]*domain.QRCode, req.Quantity)
	for i := range codes {
		codes[i] = &domain.QRCode{
			SerialNumber: domain.NewSerialNumber(),
			ProductID:    product.ProductID,
			BatchID:      batchID,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
	}

	if err := s.qrRepo.CreateBatch(ctx, codes); err != nil {
		span.RecordError(err)
		return nil, err
	}
	s.invalidateBatchCache(ctx)

	logger.Ctx(ctx).Info().
		Str("batch_id", batchID).
		Str("product_id", product.ProductID).
		Int("quantity", req.Quantity).
		Msg("qr code batch generated")

	return &GenerateBatchResponse{
		QRCodes: toQRCodeViews(codes),
		BatchID: batchID,
		BatchInfo: BatchInfo{
			BatchID:     batchID,
			ProductName: product.ProductName,
			Quantity:    req.Quantity,
			GeneratedAt: now,
		},
	}, nil
}

// AssignShop 把一组码覆盖式地分配给门店。重复执行同样输入是幂等的。
func (s *WarrantyService) AssignShop(ctx context.Context, req *AssignShopRequest) error {
	ctx, span := s.tracer.Start(ctx, "service.AssignShop")
	defer span.End()

	if len(req.QRIDs) == 0 {
		return domain.ErrInvalidInput
	}
	if _, err := s.shopRepo.FindByShopID(ctx, req.ShopID); err != nil {
		span.RecordError(err)
		return err
	}

	if err := s.qrRepo.AssignShop(ctx, req.QRIDs, req.ShopID); err != nil {
		span.RecordError(err)
		return err
	}
	s.invalidateBatchCache(ctx)
	return nil
}

// Activate 激活一枚码。存在性、未激活、门店匹配三项检查和状态写入
// 由仓储层以条件写的方式原子完成；并发的重复激活恰好一个成功，
// 其余得到 ErrAlreadyActivated。
func (s *WarrantyService) Activate(ctx context.Context, serial, actingShopID string, req *ActivateRequest) (*QRCodeView, error) {
	ctx, span := s.tracer.Start(ctx, "service.Activate")
	defer span.End()

	span.SetAttributes(
		attribute.String("qrcode.serial", serial),
		attribute.String("shop.id", actingShopID),
	)

	act := domain.Activation{
		ActivatedAt:     time.Now(),
		CustomerName:    req.CustomerName,
		CustomerAddress: req.CustomerAddress,
		CustomerPhone:   req.CustomerPhone,
	}

	code, err := s.qrRepo.Activate(ctx, serial, actingShopID, act)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	s.invalidateBatchCache(ctx)

	// 事件发布是尽力而为：失败只记日志，绝不回滚已经提交的激活
	if s.publisher != nil {
		if err := s.publisher.PublishActivated(ctx, domain.NewQRCodeActivated(code)); err != nil {
			logger.Ctx(ctx).Error().Err(err).
				Str("serial", serial).
				Msg("failed to publish activation event")
		}
	}

	logger.Ctx(ctx).Info().
		Str("serial", serial).
		Str("shop_id", actingShopID).
		Msg("qr code activated")

	return toQRCodeView(code), nil
}

// LookupForDisplay 公开的扫码展示：未激活时返回引导信息，
// 已激活时附带质保到期日和剩余天数。
func (s *WarrantyService) LookupForDisplay(ctx context.Context, serial string) (*DisplayResponse, error) {
	ctx, span := s.tracer.Start(ctx, "service.LookupForDisplay")
	defer span.End()

	code, err := s.qrRepo.FindBySerial(ctx, serial)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	product, err := s.productRepo.FindByProductID(ctx, code.ProductID)
	if err != nil {
		// 商品被删除后留下的孤码仍然可以展示自身信息
		product = nil
	}

	var shop *domain.Shop
	if code.IsAssigned() {
		if found, err := s.shopRepo.FindByShopID(ctx, code.AssignedShopID); err == nil {
			shop = found
		}
	}

	resp := &DisplayResponse{
		QRCode:  toQRCodeView(code),
		Product: toProductView(product),
		Shop:    toShopView(shop),
	}

	if !code.IsActivated() {
		resp.Status = StatusNeedsActivation
		return resp, nil
	}

	resp.Status = StatusActivated
	warranty := domain.ComputeWarranty(code.Activation.ActivatedAt, s.warrantyDays(product), time.Now())
	resp.ExpiresAt = &warranty.ExpiresAt
	resp.RemainingDays = &warranty.RemainingDays
	return resp, nil
}

func (s *WarrantyService) warrantyDays(product *domain.Product) int {
	if product != nil && product.WarrantyDuration > 0 {
		return product.WarrantyDuration
	}
	return s.defaultWarrantyDays
}

// Lookup 按序列号返回一枚码的完整记录。
func (s *WarrantyService) Lookup(ctx context.Context, serial string) (*QRCodeView, error) {
	code, err := s.qrRepo.FindBySerial(ctx, serial)
	if err != nil {
		return nil, err
	}
	return toQRCodeView(code), nil
}

// ListQRCodes 返回全部码。
func (s *WarrantyService) ListQRCodes(ctx context.Context) ([]*QRCodeView, error) {
	codes, err := s.qrRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return toQRCodeViews(codes), nil
}

// ListBatchCodes 返回一个批次的全部码。
func (s *WarrantyService) ListBatchCodes(ctx context.Context, batchID string) ([]*QRCodeView, error) {
	codes, err := s.qrRepo.FindByBatch(ctx, batchID)
	if err != nil {
		return nil, err
	}
	return toQRCodeViews(codes), nil
}

// ListShopCodes 返回分配给某门店的全部码，并附带商品信息。
func (s *WarrantyService) ListShopCodes(ctx context.Context, shopID string) ([]*QRCodeWithProduct, error) {
	codes, err := s.qrRepo.FindByShop(ctx, shopID)
	if err != nil {
		return nil, err
	}

	productIDs := make([]string, 0, len(codes))
	seen := make(map[string]bool)
	for _, code := range codes {
		if !seen[code.ProductID] {
			seen[code.ProductID] = true
			productIDs = append(productIDs, code.ProductID)
		}
	}
	products, err := s.productRepo.FindByProductIDs(ctx, productIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*domain.Product, len(products))
	for _, p := range products {
		byID[p.ProductID] = p
	}

	rows := make([]*QRCodeWithProduct, len(codes))
	for i, code := range codes {
		rows[i] = &QRCodeWithProduct{
			QRCodeView: *toQRCodeView(code),
			Product:    toProductView(byID[code.ProductID]),
		}
	}
	return rows, nil
}

// ListBatches 返回批次聚合视图（最新批次在前）。
// 先回填遗留数据，再优先走物化缓存。
func (s *WarrantyService) ListBatches(ctx context.Context) ([]domain.BatchSummary, error) {
	ctx, span := s.tracer.Start(ctx, "service.ListBatches")
	defer span.End()

	reconciled, err := s.ReconcileLegacy(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if reconciled > 0 {
		s.invalidateBatchCache(ctx)
	}

	if s.cache != nil {
		if batches, ok, err := s.cache.Get(ctx); err == nil && ok {
			span.SetAttributes(attribute.Bool("cache.hit", true))
			return batches, nil
		}
	}

	batches, err := s.qrRepo.AggregateBatches(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, batches); err != nil {
			logger.Ctx(ctx).Warn().Err(err).Msg("failed to populate batch summary cache")
		}
	}
	return batches, nil
}

// ReconcileLegacy 把没有批次号的遗留码按商品分组回填。
// 分组键只有商品，不看创建时间的邻近程度。
// 回填以"批次号仍为空"为条件，重复或并发执行不会二次改写，天然幂等。
func (s *WarrantyService) ReconcileLegacy(ctx context.Context) (int64, error) {
	ctx, span := s.tracer.Start(ctx, "service.ReconcileLegacy")
	defer span.End()

	orphans, err := s.qrRepo.FindMissingBatch(ctx)
	if err != nil {
		span.RecordError(err)
		return 0, err
	}
	if len(orphans) == 0 {
		return 0, nil
	}

	byProduct := make(map[string][]uint)
	for _, code := range orphans {
		byProduct[code.ProductID] = append(byProduct[code.ProductID], code.ID)
	}

	var total int64
	now := time.Now()
	for productID, ids := range byProduct {
		batchID := domain.MintLegacyBatchID(now)
		n, err := s.qrRepo.BackfillBatch(ctx, ids, batchID)
		if err != nil {
			span.RecordError(err)
			return total, err
		}
		total += n
		logger.Ctx(ctx).Info().
			Str("batch_id", batchID).
			Str("product_id", productID).
			Int64("count", n).
			Msg("legacy qr codes reconciled into batch")
	}
	return total, nil
}

// DeleteByIDs 无条件删除选中的码，返回删除条数。
func (s *WarrantyService) DeleteByIDs(ctx context.Context, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, domain.ErrInvalidInput
	}
	n, err := s.qrRepo.DeleteByIDs(ctx, ids)
	if err != nil {
		return 0, err
	}
	s.invalidateBatchCache(ctx)
	return n, nil
}

// DeleteBatch 无条件删除整个批次，返回删除条数。零匹配不报错。
func (s *WarrantyService) DeleteBatch(ctx context.Context, batchID string) (int64, error) {
	n, err := s.qrRepo.DeleteByBatch(ctx, batchID)
	if err != nil {
		return 0, err
	}
	s.invalidateBatchCache(ctx)
	return n, nil
}

func (s *WarrantyService) invalidateBatchCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		logger.Ctx(ctx).Warn().Err(err).Msg("failed to invalidate batch summary cache")
	}
}
