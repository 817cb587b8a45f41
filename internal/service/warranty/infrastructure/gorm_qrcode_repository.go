// internal/service/warranty/infrastructure/gorm_qrcode_repository.go
package infrastructure

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"veritag/internal/service/warranty/domain"
)

// GormQRCodeRepository 是 QRCodeRepository 的 GORM 实现
type GormQRCodeRepository struct {
	db *gorm.DB
}

// NewGormQRCodeRepository 创建一个新的 GORM 仓储实例
func NewGormQRCodeRepository(db *gorm.DB) *GormQRCodeRepository {
	return &GormQRCodeRepository{db: db}
}

func (r *GormQRCodeRepository) CreateBatch(ctx context.Context, codes []*domain.QRCode) error {
	models := make([]*QRCodeModel, len(codes))
	for i, code := range codes {
		models[i] = toQRCodeModel(code)
	}
	if err := r.db.WithContext(ctx).Create(&models).Error; err != nil {
		return err
	}
	// 回填数据库分配的自增主键
	for i, m := range models {
		codes[i].ID = m.ID
	}
	return nil
}

func (r *GormQRCodeRepository) FindBySerial(ctx context.Context, serial string) (*domain.QRCode, error) {
	var model QRCodeModel
	err := r.db.WithContext(ctx).Where("serial_number = ?", serial).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrQRCodeNotFound
		}
		return nil, err
	}
	return toDomainQRCode(&model), nil
}

func (r *GormQRCodeRepository) FindByIDs(ctx context.Context, ids []uint) ([]*domain.QRCode, error) {
	var models []QRCodeModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("id").Find(&models).Error; err != nil {
		return nil, err
	}
	return toDomainQRCodes(models), nil
}

func (r *GormQRCodeRepository) FindByProduct(ctx context.Context, productID string) ([]*domain.QRCode, error) {
	var models []QRCodeModel
	if err := r.db.WithContext(ctx).Where("product_id = ?", productID).Order("id").Find(&models).Error; err != nil {
		return nil, err
	}
	return toDomainQRCodes(models), nil
}

func (r *GormQRCodeRepository) FindByBatch(ctx context.Context, batchID string) ([]*domain.QRCode, error) {
	var models []QRCodeModel
	if err := r.db.WithContext(ctx).Where("batch_id = ?", batchID).Order("id").Find(&models).Error; err != nil {
		return nil, err
	}
	return toDomainQRCodes(models), nil
}

func (r *GormQRCodeRepository) FindByShop(ctx context.Context, shopID string) ([]*domain.QRCode, error) {
	var models []QRCodeModel
	if err := r.db.WithContext(ctx).Where("shop_id = ?", shopID).Order("id").Find(&models).Error; err != nil {
		return nil, err
	}
	return toDomainQRCodes(models), nil
}

func (r *GormQRCodeRepository) FindAll(ctx context.Context) ([]*domain.QRCode, error) {
	var models []QRCodeModel
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, err
	}
	return toDomainQRCodes(models), nil
}

func (r *GormQRCodeRepository) AssignShop(ctx context.Context, ids []uint, shopID string) error {
	return r.db.WithContext(ctx).Model(&QRCodeModel{}).
		Where("id IN ?", ids).
		Updates(map[string]interface{}{"shop_id": shopID, "updated_at": time.Now()}).Error
}

// Activate 用条件 UPDATE 保证"恰好一次"：状态检查和状态写入在同一条
// SQL 里完成，并发激活同一枚码时只有一个事务能命中 is_activated = 0。
// 影响行数为 0 时再回查一次，把失败归类到对应的领域错误。
func (r *GormQRCodeRepository) Activate(ctx context.Context, serial, actingShopID string, act domain.Activation) (*domain.QRCode, error) {
	result := r.db.WithContext(ctx).Model(&QRCodeModel{}).
		Where("serial_number = ? AND is_activated = ? AND shop_id = ?", serial, false, actingShopID).
		Updates(map[string]interface{}{
			"is_activated":     true,
			"activated_at":     act.ActivatedAt,
			"customer_name":    act.CustomerName,
			"customer_address": act.CustomerAddress,
			"customer_phone":   act.CustomerPhone,
			"updated_at":       act.ActivatedAt,
		})
	if result.Error != nil {
		return nil, result.Error
	}

	if result.RowsAffected == 0 {
		// 条件写未命中，回查判断是哪一类失败
		code, err := r.FindBySerial(ctx, serial)
		if err != nil {
			return nil, err
		}
		if code.IsActivated() {
			return nil, domain.ErrAlreadyActivated
		}
		return nil, domain.ErrNotAssignedShop
	}

	return r.FindBySerial(ctx, serial)
}

func (r *GormQRCodeRepository) DeleteByIDs(ctx context.Context, ids []uint) (int64, error) {
	result := r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&QRCodeModel{})
	return result.RowsAffected, result.Error
}

func (r *GormQRCodeRepository) DeleteByBatch(ctx context.Context, batchID string) (int64, error) {
	result := r.db.WithContext(ctx).Where("batch_id = ?", batchID).Delete(&QRCodeModel{})
	return result.RowsAffected, result.Error
}

func (r *GormQRCodeRepository) FindMissingBatch(ctx context.Context) ([]*domain.QRCode, error) {
	var models []QRCodeModel
	err := r.db.WithContext(ctx).
		Where("batch_id IS NULL OR batch_id = ''").
		Order("id").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return toDomainQRCodes(models), nil
}

// BackfillBatch 只回填批次号仍为空的记录，重复执行不会二次改写。
func (r *GormQRCodeRepository) BackfillBatch(ctx context.Context, ids []uint, batchID string) (int64, error) {
	result := r.db.WithContext(ctx).Model(&QRCodeModel{}).
		Where("id IN ? AND (batch_id IS NULL OR batch_id = '')", ids).
		Update("batch_id", batchID)
	return result.RowsAffected, result.Error
}

// AggregateBatches 在数据库侧按批次聚合，避免把全表拉到内存里数数。
func (r *GormQRCodeRepository) AggregateBatches(ctx context.Context) ([]domain.BatchSummary, error) {
	var rows []struct {
		BatchID        string
		ProductID      string
		Count          int64
		ActivatedCount int64
		AssignedCount  int64
		CreatedAt      time.Time
	}
	err := r.db.WithContext(ctx).Model(&QRCodeModel{}).
		Select(`batch_id,
			MIN(product_id) AS product_id,
			COUNT(*) AS count,
			SUM(CASE WHEN is_activated THEN 1 ELSE 0 END) AS activated_count,
			SUM(CASE WHEN shop_id IS NOT NULL AND shop_id != '' THEN 1 ELSE 0 END) AS assigned_count,
			MIN(created_at) AS created_at`).
		Where("batch_id != ''").
		Group("batch_id").
		Order("created_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	batches := make([]domain.BatchSummary, len(rows))
	for i, row := range rows {
		batches[i] = domain.BatchSummary{
			BatchID:        row.BatchID,
			ProductID:      row.ProductID,
			Count:          row.Count,
			ActivatedCount: row.ActivatedCount,
			AssignedCount:  row.AssignedCount,
			CreatedAt:      row.CreatedAt,
		}
	}
	return batches, nil
}

func (r *GormQRCodeRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&QRCodeModel{}).Count(&count).Error
	return count, err
}

func (r *GormQRCodeRepository) CountActivated(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&QRCodeModel{}).Where("is_activated = ?", true).Count(&count).Error
	return count, err
}

func (r *GormQRCodeRepository) CountActivatedBetween(ctx context.Context, from, to time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&QRCodeModel{}).
		Where("is_activated = ? AND activated_at >= ? AND activated_at < ?", true, from, to).
		Count(&count).Error
	return count, err
}

func (r *GormQRCodeRepository) TopActivatedProducts(ctx context.Context, limit int) ([]domain.ProductActivationCount, error) {
	var rows []struct {
		ProductID string
		Count     int64
	}
	err := r.db.WithContext(ctx).Model(&QRCodeModel{}).
		Select("product_id, COUNT(*) AS count").
		Where("is_activated = ?", true).
		Group("product_id").
		Order("count DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	top := make([]domain.ProductActivationCount, len(rows))
	for i, row := range rows {
		top[i] = domain.ProductActivationCount{ProductID: row.ProductID, Count: row.Count}
	}
	return top, nil
}
