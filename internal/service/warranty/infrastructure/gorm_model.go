// internal/service/warranty/infrastructure/gorm_model.go
package infrastructure

import (
	"database/sql"
	"time"

	"veritag/internal/service/warranty/domain"
)

// QRCodeModel 对应数据库中的 qr_code 表。
// 激活相关字段以 Null* 类型存储，整体有值或整体为空。
type QRCodeModel struct {
	ID           uint   `gorm:"primaryKey"`
	SerialNumber string `gorm:"uniqueIndex;size:32"`
	ProductID    string `gorm:"index;size:32"`
	BatchID      string `gorm:"index;size:64"`
	ShopID       sql.NullString
	IsActivated  bool `gorm:"default:false;index"`

	ActivatedAt     sql.NullTime
	CustomerName    sql.NullString
	CustomerAddress sql.NullString
	CustomerPhone   sql.NullString

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName 指定 GORM 应该使用的表名
func (QRCodeModel) TableName() string {
	return "qr_code"
}

// ProductModel 对应数据库中的 product 表
type ProductModel struct {
	ID               uint   `gorm:"primaryKey"`
	ProductID        string `gorm:"uniqueIndex;size:32"`
	ProductName      string `gorm:"size:255"`
	Manufacturer     string `gorm:"size:255"`
	Category         string `gorm:"size:128"`
	ImageURL         string `gorm:"type:text"`
	WarrantyDuration int
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (ProductModel) TableName() string {
	return "product"
}

// ShopModel 对应数据库中的 shop 表
type ShopModel struct {
	ID          uint   `gorm:"primaryKey"`
	ShopID      string `gorm:"uniqueIndex;size:32"`
	ShopName    string `gorm:"uniqueIndex;size:255"`
	OwnerName   string `gorm:"size:255"`
	PhoneNumber string `gorm:"size:32"`
	Password    string `gorm:"size:128"`
	IsActive    bool   `gorm:"default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (ShopModel) TableName() string {
	return "shop"
}

// CategoryModel 对应数据库中的 category 表
type CategoryModel struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"uniqueIndex;size:128"`
	Description string `gorm:"type:text"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (CategoryModel) TableName() string {
	return "category"
}

// --- Mapper：数据库模型 <-> 领域模型 ---

func toDomainQRCode(m *QRCodeModel) *domain.QRCode {
	code := &domain.QRCode{
		ID:           m.ID,
		SerialNumber: m.SerialNumber,
		ProductID:    m.ProductID,
		BatchID:      m.BatchID,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
	if m.ShopID.Valid {
		code.AssignedShopID = m.ShopID.String
	}
	if m.IsActivated && m.ActivatedAt.Valid {
		code.Activation = &domain.Activation{
			ActivatedAt:     m.ActivatedAt.Time,
			CustomerName:    m.CustomerName.String,
			CustomerAddress: m.CustomerAddress.String,
			CustomerPhone:   m.CustomerPhone.String,
		}
	}
	return code
}

func toDomainQRCodes(models []QRCodeModel) []*domain.QRCode {
	codes := make([]*domain.QRCode, len(models))
	for i := range models {
		codes[i] = toDomainQRCode(&models[i])
	}
	return codes
}

func toQRCodeModel(code *domain.QRCode) *QRCodeModel {
	m := &QRCodeModel{
		ID:           code.ID,
		SerialNumber: code.SerialNumber,
		ProductID:    code.ProductID,
		BatchID:      code.BatchID,
		CreatedAt:    code.CreatedAt,
		UpdatedAt:    code.UpdatedAt,
	}
	if code.AssignedShopID != "" {
		m.ShopID = sql.NullString{String: code.AssignedShopID, Valid: true}
	}
	if act := code.Activation; act != nil {
		m.IsActivated = true
		m.ActivatedAt = sql.NullTime{Time: act.ActivatedAt, Valid: true}
		m.CustomerName = sql.NullString{String: act.CustomerName, Valid: true}
		m.CustomerAddress = sql.NullString{String: act.CustomerAddress, Valid: true}
		m.CustomerPhone = sql.NullString{String: act.CustomerPhone, Valid: true}
	}
	return m
}

func toDomainProduct(m *ProductModel) *domain.Product {
	return &domain.Product{
		ID:               m.ID,
		ProductID:        m.ProductID,
		ProductName:      m.ProductName,
		Manufacturer:     m.Manufacturer,
		Category:         m.Category,
		ImageURL:         m.ImageURL,
		WarrantyDuration: m.WarrantyDuration,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

func toProductModel(p *domain.Product) *ProductModel {
	return &ProductModel{
		ID:               p.ID,
		ProductID:        p.ProductID,
		ProductName:      p.ProductName,
		Manufacturer:     p.Manufacturer,
		Category:         p.Category,
		ImageURL:         p.ImageURL,
		WarrantyDuration: p.WarrantyDuration,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

func toDomainShop(m *ShopModel) *domain.Shop {
	return &domain.Shop{
		ID:          m.ID,
		ShopID:      m.ShopID,
		ShopName:    m.ShopName,
		OwnerName:   m.OwnerName,
		PhoneNumber: m.PhoneNumber,
		Password:    m.Password,
		IsActive:    m.IsActive,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func toShopModel(s *domain.Shop) *ShopModel {
	return &ShopModel{
		ID:          s.ID,
		ShopID:      s.ShopID,
		ShopName:    s.ShopName,
		OwnerName:   s.OwnerName,
		PhoneNumber: s.PhoneNumber,
		Password:    s.Password,
		IsActive:    s.IsActive,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

func toDomainCategory(m *CategoryModel) *domain.Category {
	return &domain.Category{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func toCategoryModel(c *domain.Category) *CategoryModel {
	return &CategoryModel{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}
