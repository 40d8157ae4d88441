// internal/service/notification/interfaces/ticket_event_consumer.go
package interfaces

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"ticketing/internal/pkg/logger"
	"ticketing/internal/pkg/mq"
	"ticketing/internal/service/notification/domain"
)

// MessageReader 是 *kafka.Reader 的最小子集
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
}

// DeadLetterHandler 处理无法消费的消息
type DeadLetterHandler interface {
	Handle(ctx context.Context, msg kafka.Message, cause error) error
}

// TicketEventHandler 是消费者驱动的应用服务
type TicketEventHandler interface {
	HandleTicketEvent(ctx context.Context, event *domain.TicketEvent) error
}

// TicketEventConsumer 是一个驱动适配器，它监听 Kafka 消息并驱动应用服务。
type TicketEventConsumer struct {
	reader         MessageReader
	topic          string
	handler        TicketEventHandler
	failureHandler DeadLetterHandler
	tracer         trace.Tracer
	retryBackoff   time.Duration
}

func NewTicketEventConsumer(reader MessageReader, topic string, handler TicketEventHandler, failureHandler DeadLetterHandler, tracer trace.Tracer) *TicketEventConsumer {
	return &TicketEventConsumer{
		reader:         reader,
		topic:          topic,
		handler:        handler,
		failureHandler: failureHandler,
		tracer:         tracer,
		retryBackoff:   time.Second,
	}
}

// Run 持续消费直到 ctx 结束。处理失败的消息转投死信后照常提交 offset
func (c *TicketEventConsumer) Run(ctx context.Context) error {
	logger.Ctx(ctx).Info().Str("topic", c.topic).Msg("✅ Ticket event consumer started.")
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				logger.Ctx(ctx).Info().Msg("🛑 Ticket event consumer shutting down.")
				return nil
			}
			logger.Ctx(ctx).Error().Err(err).Msg("could not fetch message, retrying")
			select {
			case <-time.After(c.retryBackoff):
			case <-ctx.Done():
				return nil
			}
			continue
		}

		c.consume(ctx, msg)

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			logger.Ctx(ctx).Error().Err(err).Int64("offset", msg.Offset).Msg("Failed to commit messages")
		}
	}
}

func (c *TicketEventConsumer) consume(parent context.Context, msg kafka.Message) {
	ctx := mq.ExtractTraceContext(parent, msg.Headers)
	ctx, span := c.tracer.Start(ctx, "notification-service.ConsumeTicketEvent",
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			attribute.String("messaging.system", "kafka"),
			attribute.String("messaging.destination", msg.Topic),
			attribute.Int("messaging.kafka.partition", msg.Partition),
			attribute.Int64("messaging.kafka.message.offset", msg.Offset),
			attribute.String("messaging.kafka.message.key", string(msg.Key)),
		),
	)
	defer span.End()

	if err := c.process(ctx, msg); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if dltErr := c.failureHandler.Handle(ctx, msg, err); dltErr != nil {
			logger.Ctx(ctx).Error().Err(dltErr).Msg("dead letter publish failed, message dropped")
		}
	}
}

func (c *TicketEventConsumer) process(ctx context.Context, msg kafka.Message) error {
	var event domain.TicketEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return errors.Wrap(domain.ErrUndecodableEvent, err.Error())
	}
	return c.handler.HandleTicketEvent(ctx, &event)
}
