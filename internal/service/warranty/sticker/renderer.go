// internal/service/warranty/sticker/renderer.go
package sticker

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// 贴纸内部几何，单位 point。二维码尺寸由贴纸边长推导，最小 20pt。
const (
	codePadding      = 4.0
	serialStripH     = 12.0
	codeTopMargin    = 6.0
	serialGap        = 2.0
	minCodeSize      = 20.0
	serialFontSize   = 7.0
	fallbackFontSize = 6.0

	colorBlack      = "#000000"
	colorGrayBorder = "#cccccc"
	colorGrayText   = "#666666"

	fallbackMarker = "QR Error"

	// 并发渲染二维码图片的上限
	renderConcurrency = 8
)

// Op 是绘制指令的种类。
type Op int

const (
	OpNewPage Op = iota
	OpBorderRect
	OpImage
	OpText
)

// Instruction 单条绘制指令。文本始终在 [X, X+W] 区间内水平居中。
// 指令序列与 Placement 顺序一致，页与页之间恰好有一条 OpNewPage。
type Instruction struct {
	Op        Op
	X, Y      float64
	W, H      float64
	LineWidth float64
	Color     string
	FontSize  float64
	Text      string
	Image     []byte
}

// CodeRenderer 是"从 URL 渲染一张可扫描二维码图片"的外部能力。
// 返回图片字节或失败；失败会被隔离到单个贴纸，绝不中断整张贴纸页。
type CodeRenderer interface {
	RenderCode(url string, sizePx int) ([]byte, error)
}

// Renderer 把落位结果转换为一条有序的绘制指令流。
type Renderer struct {
	codes   CodeRenderer
	baseURL string
}

func NewRenderer(codes CodeRenderer, baseURL string) *Renderer {
	return &Renderer{codes: codes, baseURL: baseURL}
}

// ScanURL 构造一枚序列号的扫码落地 URL。
func (r *Renderer) ScanURL(serial string) string {
	return fmt.Sprintf("%s/qr/%s", r.baseURL, serial)
}

// Render 为一组落位生成绘制指令。
//
// 每个序列号的二维码图片只渲染一次（成对的两张贴纸共享同一张图），
// 图片渲染可以并发，但指令流严格按 Placement 顺序组装，
// 因此输出与渲染完成顺序无关，是确定性的。
func (r *Renderer) Render(ctx context.Context, spec PageSpec, placements []Placement) []Instruction {
	images := r.renderImages(ctx, placements)

	codeSize := spec.StickerSize - 2*codePadding - serialStripH
	if codeSize < minCodeSize {
		codeSize = minCodeSize
	}

	instructions := make([]Instruction, 0, len(placements)*3)
	currentPage := 0
	for _, p := range placements {
		for p.Page > currentPage {
			instructions = append(instructions, Instruction{Op: OpNewPage})
			currentPage++
		}

		if img, ok := images[p.SerialNumber]; ok {
			instructions = append(instructions, r.stickerInstructions(spec, p, codeSize, img)...)
		} else {
			instructions = append(instructions, r.fallbackInstructions(spec, p, codeSize)...)
		}
	}
	return instructions
}

// renderImages 并发渲染去重后的二维码图片，失败的序列号不出现在结果里。
func (r *Renderer) renderImages(ctx context.Context, placements []Placement) map[string][]byte {
	serials := make([]string, 0, len(placements))
	seen := make(map[string]bool, len(placements))
	for _, p := range placements {
		if !seen[p.SerialNumber] {
			seen[p.SerialNumber] = true
			serials = append(serials, p.SerialNumber)
		}
	}

	type result struct {
		serial string
		img    []byte
	}
	results := make([]result, len(serials))

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(renderConcurrency)
	for i, serial := range serials {
		g.Go(func() error {
			img, err := r.codes.RenderCode(r.ScanURL(serial), 256)
			if err != nil {
				// 单码渲染失败是局部可恢复的：该贴纸降级，其余不受影响
				return nil
			}
			results[i] = result{serial: serial, img: img}
			return nil
		})
	}
	_ = g.Wait()

	images := make(map[string][]byte, len(serials))
	for _, res := range results {
		if res.serial != "" {
			images[res.serial] = res.img
		}
	}
	return images
}

// stickerInstructions 正常贴纸：黑色边框、居中的二维码、码下方的序列号。
func (r *Renderer) stickerInstructions(spec PageSpec, p Placement, codeSize float64, img []byte) []Instruction {
	codeX := p.X + (spec.StickerSize-codeSize)/2
	codeY := p.Y + codeTopMargin
	return []Instruction{
		{Op: OpBorderRect, X: p.X, Y: p.Y, W: spec.StickerSize, H: spec.StickerSize, LineWidth: spec.BorderWidth, Color: colorBlack},
		{Op: OpImage, X: codeX, Y: codeY, W: codeSize, H: codeSize, Image: img},
		{Op: OpText, X: p.X, Y: codeY + codeSize + serialGap, W: spec.StickerSize, FontSize: serialFontSize, Color: colorBlack, Text: p.SerialNumber},
	}
}

// fallbackInstructions 降级贴纸：灰色边框、错误标记、底部的序列号。
// 序列号仍然打印出来，贴纸不至于完全不可用。
func (r *Renderer) fallbackInstructions(spec PageSpec, p Placement, codeSize float64) []Instruction {
	codeX := p.X + codePadding
	codeY := p.Y + codePadding
	return []Instruction{
		{Op: OpBorderRect, X: p.X, Y: p.Y, W: spec.StickerSize, H: spec.StickerSize, LineWidth: spec.BorderWidth, Color: colorGrayBorder},
		{Op: OpText, X: codeX, Y: codeY + codeSize/2 - 3, W: codeSize, FontSize: fallbackFontSize, Color: colorGrayText, Text: fallbackMarker},
		{Op: OpText, X: p.X, Y: p.Y + spec.StickerSize - serialStripH - 2, W: spec.StickerSize, FontSize: fallbackFontSize, Color: colorBlack, Text: p.SerialNumber},
	}
}
