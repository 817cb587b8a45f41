// internal/service/warranty/application/sheet_service.go
package application

import (
	"context"

	"go.opentelemetry.io/otel/trace"

	"veritag/internal/pkg/bootstrap"
	"veritag/internal/pkg/logger"
	"veritag/internal/service/warranty/domain"
	"veritag/internal/service/warranty/sticker"
)

// 自定义大幅面贴纸页：13 x 19 英寸，1 英寸 = 72pt。
const (
	customSheetWidth  = 13 * 72.0
	customSheetHeight = 19 * 72.0
)

// SheetResult 一次贴纸页渲染的产物：有序指令流，外加用于生成
// 下载文件名的上下文信息。
type SheetResult struct {
	Instructions []sticker.Instruction
	Spec         sticker.PageSpec
	Product      *ProductView
	CodeCount    int
}

// SheetService 是贴纸页排版+渲染的唯一入口。
// 按商品、按勾选、自定义幅面三个入口共用同一套排版引擎，
// 只在"选哪些码、用哪张纸"上有差异。
type SheetService struct {
	qrRepo      domain.QRCodeRepository
	productRepo domain.ProductRepository
	renderer    *sticker.Renderer
	tracer      trace.Tracer
	defaults    bootstrap.StickerConfig
}

func NewSheetService(
	qrRepo domain.QRCodeRepository,
	productRepo domain.ProductRepository,
	renderer *sticker.Renderer,
	tracer trace.Tracer,
	defaults bootstrap.StickerConfig,
) *SheetService {
	return &SheetService{
		qrRepo:      qrRepo,
		productRepo: productRepo,
		renderer:    renderer,
		tracer:      tracer,
		defaults:    defaults,
	}
}

func (s *SheetService) defaultSpec() sticker.PageSpec {
	return sticker.PageSpec{
		Width:             s.defaults.PageWidth,
		Height:            s.defaults.PageHeight,
		Margin:            s.defaults.Margin,
		StickerSize:       s.defaults.StickerSize,
		BorderWidth:       s.defaults.BorderWidth,
		VerticalSpacing:   s.defaults.VerticalSpacing,
		HorizontalSpacing: s.defaults.HorizontalSpacing,
	}
}

// RenderProductSheet 渲染某个商品名下全部码的贴纸页。
// 同一序列号只出现一次，即使历史数据里有重复记录。
func (s *SheetService) RenderProductSheet(ctx context.Context, productID string, duplicate bool) (*SheetResult, error) {
	ctx, span := s.tracer.Start(ctx, "service.RenderProductSheet")
	defer span.End()

	product, err := s.productRepo.FindByProductID(ctx, productID)
	if err != nil {
		return nil, err
	}

	codes, err := s.qrRepo.FindByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if len(codes) == 0 {
		return nil, domain.ErrQRCodeNotFound
	}

	serials := dedupeSerials(codes)
	result, err := s.render(ctx, s.defaultSpec(), duplicate, serials)
	if err != nil {
		return nil, err
	}
	result.Product = toProductView(product)
	return result, nil
}

// RenderSelectedSheet 渲染管理端勾选的一组码。
func (s *SheetService) RenderSelectedSheet(ctx context.Context, ids []uint, duplicate bool) (*SheetResult, error) {
	ctx, span := s.tracer.Start(ctx, "service.RenderSelectedSheet")
	defer span.End()

	if len(ids) == 0 {
		return nil, domain.ErrInvalidInput
	}
	codes, err := s.qrRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(codes) == 0 {
		return nil, domain.ErrQRCodeNotFound
	}

	return s.render(ctx, s.defaultSpec(), duplicate, dedupeSerials(codes))
}

// RenderCustomSheet 在 13x19 英寸大幅面上渲染勾选的码，
// 间距由调用方以英寸传入。
func (s *SheetService) RenderCustomSheet(ctx context.Context, ids []uint, vSpacingInches, hSpacingInches float64, duplicate bool) (*SheetResult, error) {
	ctx, span := s.tracer.Start(ctx, "service.RenderCustomSheet")
	defer span.End()

	if len(ids) == 0 {
		return nil, domain.ErrInvalidInput
	}
	codes, err := s.qrRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(codes) == 0 {
		return nil, domain.ErrQRCodeNotFound
	}

	spec := s.defaultSpec()
	spec.Width = customSheetWidth
	spec.Height = customSheetHeight
	spec.VerticalSpacing = vSpacingInches * 72
	spec.HorizontalSpacing = hSpacingInches * 72

	return s.render(ctx, spec, duplicate, dedupeSerials(codes))
}

func (s *SheetService) render(ctx context.Context, spec sticker.PageSpec, duplicate bool, serials []string) (*SheetResult, error) {
	placements, err := sticker.Layout(spec, duplicate, serials)
	if err != nil {
		return nil, err
	}

	instructions := s.renderer.Render(ctx, spec, placements)
	logger.Ctx(ctx).Info().
		Int("codes", len(serials)).
		Int("placements", len(placements)).
		Bool("duplicate", duplicate).
		Msg("贴纸页渲染完成")

	return &SheetResult{
		Instructions: instructions,
		Spec:         spec,
		CodeCount:    len(serials),
	}, nil
}

// dedupeSerials 保序去重。
func dedupeSerials(codes []*domain.QRCode) []string {
	seen := make(map[string]bool, len(codes))
	serials := make([]string, 0, len(codes))
	for _, code := range codes {
		if !seen[code.SerialNumber] {
			seen[code.SerialNumber] = true
			serials = append(serials, code.SerialNumber)
		}
	}
	return serials
}
