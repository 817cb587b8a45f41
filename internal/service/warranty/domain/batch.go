// internal/service/warranty/domain/batch.go
package domain

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"
)

const (
	batchPrefix       = "BATCH"
	legacyBatchPrefix = "BATCH_LEGACY"

	serialLength      = 8
	batchSuffixLength = 6
)

const alnumAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// MintBatchID 生成一个新的批次号：前缀 + 毫秒时间戳 + 6 位随机后缀。
// 唯一性依赖极低的碰撞概率，而不是去重重试。
func MintBatchID(now time.Time) string {
	return fmt.Sprintf("%s_%d_%s", batchPrefix, now.UnixMilli(), randAlnum(batchSuffixLength))
}

// MintLegacyBatchID 生成遗留数据回填用的批次号，带独立前缀以便区分来源。
func MintLegacyBatchID(now time.Time) string {
	return fmt.Sprintf("%s_%d_%s", legacyBatchPrefix, now.UnixMilli(), randAlnum(batchSuffixLength))
}

// NewSerialNumber 生成一个 8 位大写字母数字序列号。
func NewSerialNumber() string {
	return randAlnum(serialLength)
}

func randAlnum(n int) string {
	var b strings.Builder
	b.Grow(n)
	for i := 0; i < n; i++ {
		b.WriteByte(alnumAlphabet[rand.IntN(len(alnumAlphabet))])
	}
	return b.String()
}

// BatchSummary 是批次的聚合视图。批次不是独立存储的行，
// 而是对 QRCode 按 batch_id 分组计算出来的投影，数量字段永远不会和事实漂移。
type BatchSummary struct {
	BatchID        string    `json:"batchId"`
	ProductID      string    `json:"productId"`
	Count          int64     `json:"count"`
	ActivatedCount int64     `json:"activatedCount"`
	AssignedCount  int64     `json:"assignedCount"`
	CreatedAt      time.Time `json:"createdAt"` // 批内任一成员的创建时间
}
