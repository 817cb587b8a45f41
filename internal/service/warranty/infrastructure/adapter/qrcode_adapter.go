package adapter

import (
	"github.com/pkg/errors"
	qrcode "github.com/skip2/go-qrcode"
)

// QRCodeImageAdapter 实现了 sticker.CodeRenderer 接口，
// 把扫码 URL 编码成 PNG 图片字节。
type QRCodeImageAdapter struct{}

func NewQRCodeImageAdapter() *QRCodeImageAdapter {
	return &QRCodeImageAdapter{}
}

func (a *QRCodeImageAdapter) RenderCode(url string, sizePx int) ([]byte, error) {
	png, err := qrcode.Encode(url, qrcode.Medium, sizePx)
	if err != nil {
		return nil, errors.Wrapf(err, "encode qrcode for %s", url)
	}
	return png, nil
}
