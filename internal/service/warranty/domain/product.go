// internal/service/warranty/domain/product.go
package domain

import (
	"fmt"
	"time"
)

// MintProductID 生成形如 PRODXXXXXX 的商品编号。
func MintProductID() string {
	return fmt.Sprintf("PROD%s", randAlnum(6))
}

// MintShopID 生成形如 SHOPXXXXXX 的门店编号。
func MintShopID() string {
	return fmt.Sprintf("SHOP%s", randAlnum(6))
}

// Product 是只读的参照数据：质保计算和贴纸渲染只消费它，不拥有它的生命周期。
type Product struct {
	ID           uint
	ProductID    string
	ProductName  string
	Manufacturer string
	Category     string
	ImageURL     string
	// WarrantyDuration 质保天数，<= 0 时使用配置的默认值
	WarrantyDuration int
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Shop 是只读的参照数据：激活校验只关心 ShopID 是否匹配。
type Shop struct {
	ID          uint
	ShopID      string
	ShopName    string
	OwnerName   string
	PhoneNumber string
	// Password 是 bcrypt 哈希，绝不出现在对外响应里
	Password  string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Category 商品分类，名称唯一。
type Category struct {
	ID          uint
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
