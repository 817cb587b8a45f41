// internal/service/warranty/domain/events.go
package domain

import (
	"time"

	"github.com/google/uuid"
)

// QRCodeActivated 是激活成功后对外发布的领域事件，
// 下游（通知服务等）据此触发后续动作。
type QRCodeActivated struct {
	EventID      string    `json:"event_id"`
	SerialNumber string    `json:"serial_number"`
	ProductID    string    `json:"product_id"`
	ShopID       string    `json:"shop_id"`
	CustomerName string    `json:"customer_name"`
	ActivatedAt  time.Time `json:"activated_at"`
}

// NewQRCodeActivated 从一枚已激活的码构造事件。
func NewQRCodeActivated(code *QRCode) *QRCodeActivated {
	return &QRCodeActivated{
		EventID:      uuid.NewString(),
		SerialNumber: code.SerialNumber,
		ProductID:    code.ProductID,
		ShopID:       code.AssignedShopID,
		CustomerName: code.Activation.CustomerName,
		ActivatedAt:  code.Activation.ActivatedAt,
	}
}
