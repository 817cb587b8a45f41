// internal/service/warranty/infrastructure/db.go
package infrastructure

import (
	"time"

	"github.com/pkg/errors"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"veritag/internal/pkg/logger"
)

// NewDB 打开 MySQL 连接并完成建表。
func NewDB(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		PrepareStmt: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "连接 MySQL 失败")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "获取底层连接池失败")
	}
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(
		&QRCodeModel{},
		&ProductModel{},
		&ShopModel{},
		&CategoryModel{},
	); err != nil {
		return nil, errors.Wrap(err, "自动建表失败")
	}

	logger.Logger.Info().Msg("✅ MySQL 连接就绪")
	return db, nil
}
