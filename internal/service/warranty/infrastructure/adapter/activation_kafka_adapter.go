package adapter

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"veritag/internal/pkg/mq"
	"veritag/internal/service/warranty/domain"
)

// ActivationKafkaAdapter 实现了 domain.ActivationEventPublisher 接口。
// 以序列号作为分区键，同一枚码的事件保持有序。
type ActivationKafkaAdapter struct {
	writer *kafka.Writer
}

// NewActivationKafkaAdapter 创建一个新的激活事件生产者适配器。
func NewActivationKafkaAdapter(writer *kafka.Writer) *ActivationKafkaAdapter {
	return &ActivationKafkaAdapter{writer: writer}
}

// PublishActivated 把激活事件发到下游。调用方负责把发布失败
// 降级为日志，而不是回滚已经完成的激活。
func (a *ActivationKafkaAdapter) PublishActivated(ctx context.Context, event *domain.QRCodeActivated) error {
	eventBytes, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal activation event: %w", err)
	}

	// 调用通用的 mq.ProduceMessage，它会自动处理追踪上下文注入
	return mq.ProduceMessage(ctx, a.writer, []byte(event.SerialNumber), eventBytes)
}

// Close 关闭底层的Kafka writer。
func (a *ActivationKafkaAdapter) Close() error {
	return a.writer.Close()
}
