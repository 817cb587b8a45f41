// cmd/warranty-service/main.go
package main

import (
	"context"

	"go.opentelemetry.io/otel"

	"veritag/internal/pkg/bootstrap"
	"veritag/internal/pkg/logger"
	"veritag/internal/pkg/mq"
	"veritag/internal/pkg/redis"
	"veritag/internal/service/warranty/application"
	"veritag/internal/service/warranty/domain"
	"veritag/internal/service/warranty/infrastructure"
	"veritag/internal/service/warranty/infrastructure/adapter"
	"veritag/internal/service/warranty/interfaces"
	"veritag/internal/service/warranty/sticker"
)

const serviceName = "warranty-service"

// main 函数是应用的"组装根" (Composition Root)
// 它的核心职责是：创建并组装所有依赖项，然后启动应用。
func main() {
	bootstrap.Init(serviceName)
	cfg := bootstrap.GetCurrentConfig()

	// 持久化
	db, err := infrastructure.NewDB(cfg.Infra.Mysql.DSN)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("failed to initialize database")
	}
	qrRepo := infrastructure.NewGormQRCodeRepository(db)
	productRepo := infrastructure.NewGormProductRepository(db)
	shopRepo := infrastructure.NewGormShopRepository(db)
	categoryRepo := infrastructure.NewGormCategoryRepository(db)

	// 批次聚合缓存
	redisClient, err := redis.NewClient(cfg.Infra.Redis.Addr, cfg.Infra.Redis.Password, cfg.Infra.Redis.DB)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("failed to initialize redis client")
	}
	batchCache := infrastructure.NewRedisBatchSummaryCache(redisClient)

	// 激活事件：没有配置 broker 时跳过，激活本身不依赖消息通道
	var publisher domain.ActivationEventPublisher
	var kafkaAdapter *adapter.ActivationKafkaAdapter
	if cfg.Infra.Kafka.Brokers != "" {
		writer := mq.NewWriter(cfg.Infra.Kafka.Brokers, cfg.Infra.Kafka.ActivationTopic)
		kafkaAdapter = adapter.NewActivationKafkaAdapter(writer)
		publisher = kafkaAdapter
	}

	tracer := otel.Tracer(serviceName)

	warrantySvc := application.NewWarrantyService(
		qrRepo, productRepo, shopRepo, batchCache, publisher, tracer,
		cfg.App.DefaultWarrantyDays,
	)
	catalogSvc := application.NewCatalogService(
		productRepo, shopRepo, categoryRepo, qrRepo, tracer,
		cfg.App.DefaultWarrantyDays,
	)
	renderer := sticker.NewRenderer(adapter.NewQRCodeImageAdapter(), cfg.App.FrontendBaseURL)
	sheetSvc := application.NewSheetService(qrRepo, productRepo, renderer, tracer, cfg.App.Sticker)

	auth := interfaces.NewAuth(cfg.App.JWTSecret)
	handler := interfaces.NewWarrantyHandler(
		warrantySvc, catalogSvc, sheetSvc, auth,
		func(w, h float64) interfaces.PDFWriter { return adapter.NewPDFCanvas(w, h) },
		cfg.App.AdminUsername, cfg.App.AdminPassword,
	)

	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName: serviceName,
		Port:        cfg.App.Port,
		RegisterHandlers: func(appCtx bootstrap.AppCtx) {
			handler.RegisterRoutes(appCtx.Router)
		},
		OnShutdown: func(ctx context.Context) {
			if kafkaAdapter != nil {
				if err := kafkaAdapter.Close(); err != nil {
					logger.Logger.Error().Err(err).Msg("Error closing kafka writer")
				}
			}
			if err := redisClient.Close(); err != nil {
				logger.Logger.Error().Err(err).Msg("Error closing redis client")
			}
		},
	})
}
