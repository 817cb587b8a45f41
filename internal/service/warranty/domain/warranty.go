// internal/service/warranty/domain/warranty.go
package domain

import (
	"math"
	"time"
)

// Warranty 是质保计算的结果。
type Warranty struct {
	ExpiresAt     time.Time `json:"warrantyEndDate"`
	RemainingDays int       `json:"remainingDays"`
}

// ComputeWarranty 根据激活时间和质保天数计算到期日与剩余天数。
// 到期日是日历日加法（AddDate），天数不受激活时刻的时分秒影响；
// 剩余天数按精确天数差向上取整，过期后恒为 0，永不为负。
func ComputeWarranty(activatedAt time.Time, durationDays int, now time.Time) Warranty {
	expiresAt := activatedAt.AddDate(0, 0, durationDays)

	remaining := int(math.Ceil(expiresAt.Sub(now).Hours() / 24))
	if remaining < 0 {
		remaining = 0
	}

	return Warranty{
		ExpiresAt:     expiresAt,
		RemainingDays: remaining,
	}
}
