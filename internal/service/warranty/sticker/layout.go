// internal/service/warranty/sticker/layout.go
package sticker

import (
	"github.com/pkg/errors"

	"veritag/internal/service/warranty/domain"
)

// PageSpec 描述一次排版的页面几何，单位是 PDF point。
// BorderWidth 只影响绘制，不参与排版计算。
type PageSpec struct {
	Width             float64
	Height            float64
	Margin            float64
	StickerSize       float64
	BorderWidth       float64
	VerticalSpacing   float64
	HorizontalSpacing float64
}

// Placement 是一张贴纸实例的落位结果：页号从 0 开始，坐标是贴纸左上角。
// 成对模式下每个序列号产出 StickerIndex 为 0 和 1 的两条记录。
// Placement 每次请求都重新计算，从不持久化。
type Placement struct {
	SerialNumber string
	StickerIndex int
	Page         int
	X            float64
	Y            float64
}

// Layout 把一列有序的序列号确定性地排进一页或多页的网格里。
//
// 单元格尺寸取决于是否成对：成对时一格横向并排放两张贴纸并带间距，
// 否则一格就是一张贴纸。格子按行优先（左→右，上→下）依次填充，
// 填满一页后换页并把游标重置到 (0,0)。
//
// 同样的输入永远产生同样的输出，没有任何隐藏随机性。
func Layout(spec PageSpec, pairMode bool, serials []string) ([]Placement, error) {
	cellWidth := spec.StickerSize
	cellHeight := spec.StickerSize
	if pairMode {
		cellWidth = spec.StickerSize*2 + spec.HorizontalSpacing
		cellHeight = spec.StickerSize + spec.VerticalSpacing
	}

	columnsPerPage := int((spec.Width - 2*spec.Margin) / cellWidth)
	rowsPerPage := int((spec.Height - 2*spec.Margin) / cellHeight)
	if columnsPerPage < 1 || rowsPerPage < 1 {
		// 一整页连一个格子都放不下，这是配置错误而不是空结果
		return nil, errors.Wrapf(domain.ErrInvalidInput,
			"page %.2fx%.2f with margin %.2f cannot fit any %.2fpt sticker cell",
			spec.Width, spec.Height, spec.Margin, spec.StickerSize)
	}
	cellsPerPage := columnsPerPage * rowsPerPage

	stickersPerCell := 1
	if pairMode {
		stickersPerCell = 2
	}

	placements := make([]Placement, 0, len(serials)*stickersPerCell)
	for i, serial := range serials {
		page := i / cellsPerPage
		cellIndex := i % cellsPerPage
		row := cellIndex / columnsPerPage
		col := cellIndex % columnsPerPage

		cellOriginX := spec.Margin + float64(col)*cellWidth
		cellOriginY := spec.Margin + float64(row)*cellHeight

		for stickerIndex := 0; stickerIndex < stickersPerCell; stickerIndex++ {
			placements = append(placements, Placement{
				SerialNumber: serial,
				StickerIndex: stickerIndex,
				Page:         page,
				X:            cellOriginX + float64(stickerIndex)*spec.StickerSize,
				Y:            cellOriginY,
			})
		}
	}

	return placements, nil
}
