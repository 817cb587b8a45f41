// internal/service/warranty/sticker/canvas.go
package sticker

// Canvas 是页面画布的外部协作方接口：本包只负责算出精确的坐标、
// 尺寸和绘制顺序，真正的绘制调用由实现方（PDF 写入器等）完成。
type Canvas interface {
	// AddPage 开启一个新页面
	AddPage()
	// Rect 以给定线宽和颜色描边一个矩形
	Rect(x, y, w, h, lineWidth float64, hexColor string)
	// Image 把一张 PNG 图片绘制到给定位置和尺寸
	Image(png []byte, x, y, w, h float64)
	// Text 在 [x, x+w] 区间内水平居中绘制一行文本
	Text(text string, x, y, w, fontSize float64, hexColor string)
}

// Apply 把指令流回放到画布上。第一页由 Apply 负责开启，
// 之后每遇到一条 OpNewPage 指令换一页。
func Apply(c Canvas, instructions []Instruction) {
	c.AddPage()
	for _, ins := range instructions {
		switch ins.Op {
		case OpNewPage:
			c.AddPage()
		case OpBorderRect:
			c.Rect(ins.X, ins.Y, ins.W, ins.H, ins.LineWidth, ins.Color)
		case OpImage:
			c.Image(ins.Image, ins.X, ins.Y, ins.W, ins.H)
		case OpText:
			c.Text(ins.Text, ins.X, ins.Y, ins.W, ins.FontSize, ins.Color)
		}
	}
}
