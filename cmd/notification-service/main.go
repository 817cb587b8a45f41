// cmd/notification-service/main.go
package main

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"veritag/internal/pkg/bootstrap"
	"veritag/internal/pkg/logger"
	"veritag/internal/pkg/mq"
	"veritag/internal/pkg/tracing"
	"veritag/internal/service/warranty/domain"
)

const (
	serviceName     = "notification-service"
	consumerGroupID = "notification-group"
)

var tracer = otel.Tracer(serviceName)

// 消费激活事件并触发客户通知。目前通知渠道就是结构化日志，
// 接入短信/邮件网关时替换 processActivation 的发送部分即可。
func main() {
	bootstrap.Init(serviceName)
	cfg := bootstrap.GetCurrentConfig()

	tp, err := tracing.InitTracerProvider(serviceName, cfg.Infra.Jaeger.Endpoint)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("failed to initialize tracer provider")
	}
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			logger.Logger.Error().Err(err).Msg("Error shutting down tracer provider")
		}
	}()

	reader := mq.NewReader(cfg.Infra.Kafka.Brokers, consumerGroupID, cfg.Infra.Kafka.ActivationTopic)
	defer reader.Close()

	logger.Logger.Info().
		Str("topic", cfg.Infra.Kafka.ActivationTopic).
		Msg("notification service started as a kafka consumer")

	for {
		msg, err := reader.ReadMessage(context.Background())
		if err != nil {
			logger.Logger.Error().Err(err).Msg("could not read message")
			continue
		}
		go processActivation(msg)
	}
}

// processActivation 处理单条激活事件。
func processActivation(msg kafka.Message) {
	// 从消息头恢复追踪上下文，把消费链接到激活请求的链路上
	ctx := mq.ExtractContext(context.Background(), msg)

	ctx, span := tracer.Start(ctx, "notification-service.ProcessActivation",
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			attribute.String("messaging.system", "kafka"),
			attribute.String("messaging.destination", msg.Topic),
			attribute.Int("messaging.kafka.partition", msg.Partition),
			attribute.Int64("messaging.kafka.message.offset", msg.Offset),
		),
	)
	defer span.End()

	var event domain.QRCodeActivated
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		logger.Ctx(ctx).Error().Err(err).Msg("failed to unmarshal activation event")
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return
	}

	span.SetAttributes(
		attribute.String("qrcode.serial", event.SerialNumber),
		attribute.String("shop.id", event.ShopID),
	)

	logger.Ctx(ctx).Info().
		Str("serial", event.SerialNumber).
		Str("product_id", event.ProductID).
		Str("shop_id", event.ShopID).
		Str("customer", event.CustomerName).
		Time("activated_at", event.ActivatedAt).
		Msg("✅ 质保激活，通知客户")

	span.AddEvent("Notification sent successfully")
}
