// internal/service/warranty/domain/qrcode.go
package domain

import "time"

// Activation 记录一次激活的全部事实。要么整体存在，要么整体不存在，
// 不允许出现只填了一半客户信息的中间态。
type Activation struct {
	ActivatedAt     time.Time
	CustomerName    string
	CustomerAddress string
	CustomerPhone   string
}

// QRCode 是聚合根：一枚已印刷的、可扫描的唯一标识。
// 生命周期: Generated → Assigned → Activated（终态）。
// Assigned 不是强制的独立迁移，而是激活前置条件的字段检查。
type QRCode struct {
	ID           uint
	SerialNumber string // 创建后不可变
	ProductID    string // 创建后不可变
	BatchID      string // 生成时分配；遗留数据允许被回填一次，之后不可变

	// AssignedShopID 为空串表示尚未分配。
	// 未激活前允许被覆盖式地重新分配，这是刻意保留的宽松行为。
	AssignedShopID string

	Activation *Activation // 非 nil 当且仅当处于 Activated 状态

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActivated 返回该码是否已处于终态。
func (q *QRCode) IsActivated() bool {
	return q.Activation != nil
}

// IsAssigned 返回该码是否已分配到门店。
func (q *QRCode) IsAssigned() bool {
	return q.AssignedShopID != ""
}

// Activate 执行激活状态迁移。校验顺序与对外的错误语义一一对应：
// 已激活 → ErrAlreadyActivated；未分配或分配的不是 actingShop → ErrNotAssignedShop。
// 成功时一次性写入全部激活事实。
func (q *QRCode) Activate(actingShopID string, act Activation) error {
	if q.IsActivated() {
		return ErrAlreadyActivated
	}
	if q.AssignedShopID == "" || q.AssignedShopID != actingShopID {
		return ErrNotAssignedShop
	}
	q.Activation = &act
	q.UpdatedAt = act.ActivatedAt
	return nil
}

// AssignShop 覆盖式地设置分配门店。重复执行同样输入是幂等的。
func (q *QRCode) AssignShop(shopID string) {
	q.AssignedShopID = shopID
	q.UpdatedAt = time.Now()
}
