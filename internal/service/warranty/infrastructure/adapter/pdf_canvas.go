package adapter

import (
	"bytes"
	"fmt"
	"io"
	"strconv"

	"github.com/jung-kurt/gofpdf"
)

// PDFCanvas 实现了 sticker.Canvas 接口，把绘制指令落到 gofpdf 文档上。
// 坐标单位与排版引擎一致，都是 PDF point。
type PDFCanvas struct {
	pdf        *gofpdf.Fpdf
	imageIndex int
}

// NewPDFCanvas 按给定页面尺寸创建 PDF 画布。
func NewPDFCanvas(pageWidth, pageHeight float64) *PDFCanvas {
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: pageWidth, Ht: pageHeight},
	})
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetFont("Helvetica", "", 7)
	return &PDFCanvas{pdf: pdf}
}

func (c *PDFCanvas) AddPage() {
	c.pdf.AddPage()
}

func (c *PDFCanvas) Rect(x, y, w, h, lineWidth float64, hexColor string) {
	r, g, b := parseHexColor(hexColor)
	c.pdf.SetDrawColor(r, g, b)
	c.pdf.SetLineWidth(lineWidth)
	c.pdf.Rect(x, y, w, h, "D")
}

func (c *PDFCanvas) Image(png []byte, x, y, w, h float64) {
	// gofpdf 以名字缓存图片，每张图起一个唯一名字避免互相覆盖
	c.imageIndex++
	name := fmt.Sprintf("qr%d", c.imageIndex)
	c.pdf.RegisterImageOptionsReader(name, gofpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(png))
	c.pdf.ImageOptions(name, x, y, w, h, false, gofpdf.ImageOptions{ImageType: "PNG"}, 0, "")
}

func (c *PDFCanvas) Text(text string, x, y, w, fontSize float64, hexColor string) {
	r, g, b := parseHexColor(hexColor)
	c.pdf.SetTextColor(r, g, b)
	c.pdf.SetFontSize(fontSize)
	textWidth := c.pdf.GetStringWidth(text)
	// y 是文本上缘，gofpdf 的 Text 以基线定位
	c.pdf.Text(x+(w-textWidth)/2, y+fontSize, text)
}

// Output 把生成的 PDF 写出并关闭文档。
func (c *PDFCanvas) Output(w io.Writer) error {
	return c.pdf.Output(w)
}

func parseHexColor(hex string) (int, int, int) {
	if len(hex) != 7 || hex[0] != '#' {
		return 0, 0, 0
	}
	r, _ := strconv.ParseInt(hex[1:3], 16, 0)
	g, _ := strconv.ParseInt(hex[3:5], 16, 0)
	b, _ := strconv.ParseInt(hex[5:7], 16, 0)
	return int(r), int(g), int(b)
}
