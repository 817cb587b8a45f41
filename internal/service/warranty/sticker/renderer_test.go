package sticker

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCodeRenderer 记录调用并按序列号选择性失败。
type fakeCodeRenderer struct {
	mu      sync.Mutex
	calls   []string
	failFor map[string]bool
}

func (f *fakeCodeRenderer) RenderCode(url string, sizePx int) ([]byte, error) {
	f.mu.Lock()
	f.calls = append(f.calls, url)
	f.mu.Unlock()

	for serial := range f.failFor {
		if strings.HasSuffix(url, "/"+serial) {
			return nil, errors.New("encoder exploded")
		}
	}
	return []byte("png:" + url), nil
}

func TestRenderer_ScanURL(t *testing.T) {
	r := NewRenderer(&fakeCodeRenderer{}, "https://warranty.example.com")
	assert.Equal(t, "https://warranty.example.com/qr/AAAA1111", r.ScanURL("AAAA1111"))
}

func TestRenderer_FailureIsolation(t *testing.T) {
	fake := &fakeCodeRenderer{failFor: map[string]bool{"SERIAL03": true}}
	r := NewRenderer(fake, "http://localhost:3000")

	placements, err := Layout(smallPage(), false, serials(10))
	require.NoError(t, err)

	instructions := r.Render(context.Background(), smallPage(), placements)

	var images, fallbacks int
	for _, ins := range instructions {
		switch {
		case ins.Op == OpImage:
			images++
		case ins.Op == OpText && ins.Text == "QR Error":
			fallbacks++
		}
	}

	// 第 4 张（SERIAL03）降级，其余 9 张正常带图
	assert.Equal(t, 9, images)
	assert.Equal(t, 1, fallbacks)

	// 降级贴纸仍然打印序列号
	var fallbackSerialPrinted bool
	for _, ins := range instructions {
		if ins.Op == OpText && ins.Text == "SERIAL03" {
			fallbackSerialPrinted = true
		}
	}
	assert.True(t, fallbackSerialPrinted)
}

func TestRenderer_FallbackUsesGrayBorder(t *testing.T) {
	fake := &fakeCodeRenderer{failFor: map[string]bool{"SERIAL00": true}}
	r := NewRenderer(fake, "http://localhost:3000")

	placements, err := Layout(smallPage(), false, serials(1))
	require.NoError(t, err)

	instructions := r.Render(context.Background(), smallPage(), placements)
	require.NotEmpty(t, instructions)

	assert.Equal(t, OpBorderRect, instructions[0].Op)
	assert.Equal(t, "#cccccc", instructions[0].Color)
}

func TestRenderer_PageBreaks(t *testing.T) {
	r := NewRenderer(&fakeCodeRenderer{}, "http://localhost:3000")

	// 每页 6 格，13 张贴纸 → 第 1→2 页和第 2→3 页各一次换页
	placements, err := Layout(smallPage(), false, serials(13))
	require.NoError(t, err)

	instructions := r.Render(context.Background(), smallPage(), placements)

	var pageBreaks int
	for _, ins := range instructions {
		if ins.Op == OpNewPage {
			pageBreaks++
		}
	}
	assert.Equal(t, 2, pageBreaks)
}

func TestRenderer_PairModeRendersImageOnce(t *testing.T) {
	fake := &fakeCodeRenderer{}
	r := NewRenderer(fake, "http://localhost:3000")

	spec := smallPage()
	spec.Width = 400
	spec.HorizontalSpacing = 10
	placements, err := Layout(spec, true, serials(3))
	require.NoError(t, err)

	instructions := r.Render(context.Background(), spec, placements)

	// 成对的两张贴纸共享一次编码调用
	assert.Len(t, fake.calls, 3)

	var images int
	for _, ins := range instructions {
		if ins.Op == OpImage {
			images++
		}
	}
	assert.Equal(t, 6, images)
}

func TestApply_OpensFirstPage(t *testing.T) {
	r := NewRenderer(&fakeCodeRenderer{}, "http://localhost:3000")
	placements, err := Layout(smallPage(), false, serials(7))
	require.NoError(t, err)
	instructions := r.Render(context.Background(), smallPage(), placements)

	canvas := &recordingCanvas{}
	Apply(canvas, instructions)

	// 第一页由 Apply 开启，加上一次翻页共 2 页
	assert.Equal(t, 2, canvas.pages)
}

type recordingCanvas struct {
	pages int
}

func (c *recordingCanvas) AddPage()                                    { c.pages++ }
func (c *recordingCanvas) Rect(_, _, _, _, _ float64, _ string)        {}
func (c *recordingCanvas) Image(_ []byte, _, _, _, _ float64)          {}
func (c *recordingCanvas) Text(_ string, _, _, _, _ float64, _ string) {}
