// internal/service/warranty/domain/errors.go
package domain

import "errors"

// 领域错误以哨兵值的形式定义，接口层用 errors.Is 将其映射为 HTTP 状态码。
var (
	ErrProductNotFound  = errors.New("product not found")
	ErrShopNotFound     = errors.New("shop not found")
	ErrQRCodeNotFound   = errors.New("qr code not found")
	ErrCategoryNotFound = errors.New("category not found")

	// ErrAlreadyActivated 二次激活，属于非法的状态迁移
	ErrAlreadyActivated = errors.New("qr code already activated")

	// ErrNotAssignedShop 激活方不是被分配的门店（包括完全未分配的情况）
	ErrNotAssignedShop = errors.New("qr code is not assigned to this shop")

	// ErrInvalidInput 入参不合法：数量 <= 0、空选择集、排版尺寸放不下任何贴纸等
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidCredentials 登录凭证错误
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrNameTaken 名称唯一性冲突（门店名、分类名）
	ErrNameTaken = errors.New("name already taken")
)
