package infrastructure

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"

	"ticketing/internal/pkg/mq"
	"ticketing/internal/service/inventory/domain"
)

// TicketEventKafkaAdapter 实现了 port.EventPublisher，按活动 Key 分区
type TicketEventKafkaAdapter struct {
	writer mq.MessageWriter
	topic  string
}

func NewTicketEventKafkaAdapter(writer mq.MessageWriter, topic string) *TicketEventKafkaAdapter {
	return &TicketEventKafkaAdapter{writer: writer, topic: topic}
}

func (p *TicketEventKafkaAdapter) PublishTicketEvent(ctx context.Context, event *domain.TicketEvent) error {
	eventBytes, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, "marshal ticket event")
	}
	// 调用通用的 mq.ProduceMessageTo，它会自动处理追踪上下文注入
	if err := mq.ProduceMessageTo(ctx, p.writer, p.topic, []byte(event.ActivityKey), eventBytes); err != nil {
		return errors.Wrapf(err, "produce ticket event to %s", p.topic)
	}
	return nil
}

// NoopEventPublisher 在关闭事件发布时使用
type NoopEventPublisher struct{}

func (NoopEventPublisher) PublishTicketEvent(context.Context, *domain.TicketEvent) error { return nil }
