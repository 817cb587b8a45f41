package domain

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQRCode_Activate(t *testing.T) {
	act := Activation{
		ActivatedAt:  time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC),
		CustomerName: "张三",
	}

	t.Run("未分配的码不能激活", func(t *testing.T) {
		code := &QRCode{SerialNumber: "AAAA1111"}
		err := code.Activate("SHOP01", act)
		assert.ErrorIs(t, err, ErrNotAssignedShop)
		assert.False(t, code.IsActivated())
	})

	t.Run("分配给别的门店不能激活", func(t *testing.T) {
		code := &QRCode{SerialNumber: "AAAA1111", AssignedShopID: "SHOP02"}
		err := code.Activate("SHOP01", act)
		assert.ErrorIs(t, err, ErrNotAssignedShop)
	})

	t.Run("分配的门店激活成功，事实一次性写入", func(t *testing.T) {
		code := &QRCode{SerialNumber: "AAAA1111", AssignedShopID: "SHOP01"}
		require.NoError(t, code.Activate("SHOP01", act))

		assert.True(t, code.IsActivated())
		assert.Equal(t, act.ActivatedAt, code.Activation.ActivatedAt)
		assert.Equal(t, "张三", code.Activation.CustomerName)
		assert.Equal(t, act.ActivatedAt, code.UpdatedAt)
	})

	t.Run("重复激活报冲突", func(t *testing.T) {
		code := &QRCode{SerialNumber: "AAAA1111", AssignedShopID: "SHOP01"}
		require.NoError(t, code.Activate("SHOP01", act))

		err := code.Activate("SHOP01", act)
		assert.ErrorIs(t, err, ErrAlreadyActivated)
	})
}

func TestQRCode_AssignShop(t *testing.T) {
	code := &QRCode{SerialNumber: "AAAA1111"}

	code.AssignShop("SHOP01")
	assert.Equal(t, "SHOP01", code.AssignedShopID)
	assert.True(t, code.IsAssigned())

	// 未激活前允许覆盖式重新分配
	code.AssignShop("SHOP02")
	assert.Equal(t, "SHOP02", code.AssignedShopID)
}

func TestMintBatchID(t *testing.T) {
	now := time.UnixMilli(1700000000000)

	t.Run("常规批次号格式", func(t *testing.T) {
		id := MintBatchID(now)
		assert.Regexp(t, regexp.MustCompile(`^BATCH_1700000000000_[A-Z0-9]{6}$`), id)
	})

	t.Run("遗留批次号带独立前缀", func(t *testing.T) {
		id := MintLegacyBatchID(now)
		assert.Regexp(t, regexp.MustCompile(`^BATCH_LEGACY_1700000000000_[A-Z0-9]{6}$`), id)
	})
}

func TestNewSerialNumber(t *testing.T) {
	pattern := regexp.MustCompile(`^[A-Z0-9]{8}$`)

	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		serial := NewSerialNumber()
		assert.Regexp(t, pattern, serial)
		seen[serial] = true
	}
	// 碰撞概率极低，1000 次生成几乎不可能撞出重复
	assert.Greater(t, len(seen), 990)
}
