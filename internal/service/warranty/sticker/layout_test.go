package sticker

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"veritag/internal/service/warranty/domain"
)

// 3 列 x 2 行 = 每页 6 格的小页面，便于观察翻页边界。
func smallPage() PageSpec {
	return PageSpec{
		Width:       260, // (260-2*20)/72 = 3 列
		Height:      200, // (200-2*20)/72 = 2 行
		Margin:      20,
		StickerSize: 72,
		BorderWidth: 0.5,
	}
}

func serials(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("SERIAL%02d", i)
	}
	return out
}

func TestLayout_RowMajorOrder(t *testing.T) {
	placements, err := Layout(smallPage(), false, serials(4))
	require.NoError(t, err)
	require.Len(t, placements, 4)

	// 第一行从左到右
	assert.Equal(t, 20.0, placements[0].X)
	assert.Equal(t, 20.0, placements[0].Y)
	assert.Equal(t, 92.0, placements[1].X)
	assert.Equal(t, 20.0, placements[1].Y)
	assert.Equal(t, 164.0, placements[2].X)

	// 第四张落到第二行行首
	assert.Equal(t, 20.0, placements[3].X)
	assert.Equal(t, 92.0, placements[3].Y)
	assert.Equal(t, 0, placements[3].Page)
}

func TestLayout_Pagination(t *testing.T) {
	// 每页 6 格，13 个序列号占满两页外加第三页 1 格
	placements, err := Layout(smallPage(), false, serials(13))
	require.NoError(t, err)
	require.Len(t, placements, 13)

	// 第 7 张（下标 6）是第二页的第一格，游标回到页首
	assert.Equal(t, 1, placements[6].Page)
	assert.Equal(t, 20.0, placements[6].X)
	assert.Equal(t, 20.0, placements[6].Y)

	// 第 13 张（下标 12）独占第三页
	assert.Equal(t, 2, placements[12].Page)
	assert.Equal(t, 20.0, placements[12].X)
	assert.Equal(t, 20.0, placements[12].Y)
}

func TestLayout_PairMode(t *testing.T) {
	spec := smallPage()
	spec.Width = 400 // (400-40)/(2*72+10) = 2 列
	spec.HorizontalSpacing = 10
	spec.VerticalSpacing = 4

	placements, err := Layout(spec, true, serials(2))
	require.NoError(t, err)
	require.Len(t, placements, 4)

	// 每个序列号产出同格的两张贴纸，第二张紧贴第一张右侧
	assert.Equal(t, placements[0].SerialNumber, placements[1].SerialNumber)
	assert.Equal(t, 0, placements[0].StickerIndex)
	assert.Equal(t, 1, placements[1].StickerIndex)
	assert.Equal(t, placements[0].X+spec.StickerSize, placements[1].X)
	assert.Equal(t, placements[0].Y, placements[1].Y)

	// 第二个序列号的格子偏移一个带间距的格宽
	cellWidth := spec.StickerSize*2 + spec.HorizontalSpacing
	assert.Equal(t, placements[0].X+cellWidth, placements[2].X)
}

func TestLayout_Deterministic(t *testing.T) {
	a, err := Layout(smallPage(), true, serials(9))
	require.NoError(t, err)
	b, err := Layout(smallPage(), true, serials(9))
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestLayout_PageTooSmall(t *testing.T) {
	spec := smallPage()
	spec.Margin = 120 // 可用区域放不下任何一格

	_, err := Layout(spec, false, serials(1))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestLayout_A4Defaults(t *testing.T) {
	spec := PageSpec{
		Width:       595.28,
		Height:      841.89,
		Margin:      40,
		StickerSize: 72,
	}

	// A4 默认幅面下 7 列 x 10 行
	placements, err := Layout(spec, false, serials(71))
	require.NoError(t, err)
	assert.Equal(t, 0, placements[69].Page)
	assert.Equal(t, 1, placements[70].Page)
}
