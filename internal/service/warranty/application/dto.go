// internal/service/warranty/application/dto.go
package application

import (
	"time"

	"veritag/internal/service/warranty/domain"
)

// GenerateBatchRequest 生成一批新码。
type GenerateBatchRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// BatchInfo 随生成结果返回的批次摘要。
type BatchInfo struct {
	BatchID     string    `json:"batchId"`
	ProductName string    `json:"productName"`
	Quantity    int       `json:"quantity"`
	GeneratedAt time.Time `json:"generatedAt"`
}

// GenerateBatchResponse 生成结果：新码列表 + 批次号。
type GenerateBatchResponse struct {
	QRCodes   []*QRCodeView `json:"qrcodes"`
	BatchID   string        `json:"batchId"`
	BatchInfo BatchInfo     `json:"batchInfo"`
}

// AssignShopRequest 把一组码分配给门店。
type AssignShopRequest struct {
	QRIDs  []uint `json:"qrIds"`
	ShopID string `json:"shopId"`
}

// ActivateRequest 门店代客户激活一枚码。
type ActivateRequest struct {
	CustomerName    string `json:"customerName"`
	CustomerAddress string `json:"customerAddress"`
	CustomerPhone   string `json:"customerPhone"`
}

// QRCodeView 是码记录的对外视图。
type QRCodeView struct {
	ID             uint       `json:"id"`
	SerialNumber   string     `json:"serialNumber"`
	ProductID      string     `json:"productId"`
	BatchID        string     `json:"batchId"`
	AssignedShopID string     `json:"assignedShopId,omitempty"`
	IsActivated    bool       `json:"isActivated"`
	ActivationDate *time.Time `json:"activationDate,omitempty"`
	CustomerName   string     `json:"customerName,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
}

// QRCodeWithProduct 门店视角的码列表行，附带商品信息。
type QRCodeWithProduct struct {
	QRCodeView
	Product *ProductView `json:"product"`
}

// ProductView 商品对外视图。
type ProductView struct {
	ID               uint   `json:"id"`
	ProductID        string `json:"productId"`
	ProductName      string `json:"productName"`
	Manufacturer     string `json:"manufacturer"`
	Category         string `json:"category"`
	ImageURL         string `json:"imageUrl"`
	WarrantyDuration int    `json:"warrantyDuration"`
}

// ShopView 门店对外视图，永远不包含密码哈希。
type ShopView struct {
	ID          uint   `json:"id"`
	ShopID      string `json:"shopId"`
	ShopName    string `json:"shopName"`
	OwnerName   string `json:"ownerName"`
	PhoneNumber string `json:"phoneNumber"`
	IsActive    bool   `json:"isActive"`
}

// DisplayStatus 扫码展示的两种状态。
type DisplayStatus string

const (
	StatusNeedsActivation DisplayStatus = "needs_activation"
	StatusActivated       DisplayStatus = "activated"
)

// DisplayResponse 是公开扫码接口的响应：
// 未激活时引导激活，已激活时展示质保信息。
type DisplayResponse struct {
	Status        DisplayStatus `json:"status"`
	QRCode        *QRCodeView   `json:"qrcode"`
	Product       *ProductView  `json:"product"`
	Shop          *ShopView     `json:"shop,omitempty"`
	ExpiresAt     *time.Time    `json:"warrantyEndDate,omitempty"`
	RemainingDays *int          `json:"remainingDays,omitempty"`
}

// DailyActivations 仪表盘按天统计行。
type DailyActivations struct {
	Date  time.Time `json:"date"`
	Count int64     `json:"count"`
}

// TopProduct 仪表盘激活量 Top 商品。
type TopProduct struct {
	ProductName     string `json:"productName"`
	ImageURL        string `json:"imageUrl"`
	ActivationCount int64  `json:"activationCount"`
}

// DashboardStats 管理端仪表盘。
type DashboardStats struct {
	TotalShops        int64              `json:"totalShops"`
	TotalProducts     int64              `json:"totalProducts"`
	TotalQRCodes      int64              `json:"totalQRCodes"`
	ActivatedQRCodes  int64              `json:"activatedQRCodes"`
	TodayActivations  int64              `json:"todayActivations"`
	TopProducts       []TopProduct       `json:"topProducts"`
	WeeklyActivations []DailyActivations `json:"weeklyActivations"`
}

// toQRCodeView 把领域实体映射为对外视图。
func toQRCodeView(code *domain.QRCode) *QRCodeView {
	view := &QRCodeView{
		ID:             code.ID,
		SerialNumber:   code.SerialNumber,
		ProductID:      code.ProductID,
		BatchID:        code.BatchID,
		AssignedShopID: code.AssignedShopID,
		IsActivated:    code.IsActivated(),
		CreatedAt:      code.CreatedAt,
	}
	if code.Activation != nil {
		t := code.Activation.ActivatedAt
		view.ActivationDate = &t
		view.CustomerName = code.Activation.CustomerName
	}
	return view
}

func toQRCodeViews(codes []*domain.QRCode) []*QRCodeView {
	views := make([]*QRCodeView, len(codes))
	for i, code := range codes {
		views[i] = toQRCodeView(code)
	}
	return views
}

func toProductView(p *domain.Product) *ProductView {
	if p == nil {
		return nil
	}
	return &ProductView{
		ID:               p.ID,
		ProductID:        p.ProductID,
		ProductName:      p.ProductName,
		Manufacturer:     p.Manufacturer,
		Category:         p.Category,
		ImageURL:         p.ImageURL,
		WarrantyDuration: p.WarrantyDuration,
	}
}

func toShopView(s *domain.Shop) *ShopView {
	if s == nil {
		return nil
	}
	return &ShopView{
		ID:          s.ID,
		ShopID:      s.ShopID,
		ShopName:    s.ShopName,
		OwnerName:   s.OwnerName,
		PhoneNumber: s.PhoneNumber,
		IsActive:    s.IsActive,
	}
}
