package mq

import (
	"context"
	"fmt"
	"strconv"

	"github.com/segmentio/kafka-go"

	"ticketing/internal/pkg/logger"
)

// 死信消息头
const (
	HeaderOriginalTopic     = "x-original-topic"
	HeaderOriginalPartition = "x-original-partition"
	HeaderOriginalOffset    = "x-original-offset"
	HeaderExceptionFqcn     = "x-exception-fqcn"
	HeaderExceptionMessage  = "x-exception-message"
)

// FailureHandler 把处理失败的消息转投到死信主题。
type FailureHandler struct {
	dltWriter MessageWriter
	dltTopic  string
}

func NewFailureHandler(dltWriter MessageWriter, dltTopic string) *FailureHandler {
	return &FailureHandler{dltWriter: dltWriter, dltTopic: dltTopic}
}

// Handle 原样转投消息体，并附加来源与异常信息。
// 转投失败只记录日志，调用方照常提交 offset。
func (h *FailureHandler) Handle(ctx context.Context, msg kafka.Message, cause error) error {
	headers := make([]kafka.Header, 0, len(msg.Headers)+5)
	for _, hd := range msg.Headers {
		switch hd.Key {
		case HeaderOriginalTopic, HeaderOriginalPartition, HeaderOriginalOffset,
			HeaderExceptionFqcn, HeaderExceptionMessage:
			continue
		}
		headers = append(headers, hd)
	}
	headers = append(headers,
		kafka.Header{Key: HeaderOriginalTopic, Value: []byte(msg.Topic)},
		kafka.Header{Key: HeaderOriginalPartition, Value: []byte(strconv.Itoa(msg.Partition))},
		kafka.Header{Key: HeaderOriginalOffset, Value: []byte(strconv.FormatInt(msg.Offset, 10))},
		kafka.Header{Key: HeaderExceptionFqcn, Value: []byte(fmt.Sprintf("%T", cause))},
		kafka.Header{Key: HeaderExceptionMessage, Value: []byte(cause.Error())},
	)

	dlq := kafka.Message{Key: msg.Key, Value: msg.Value, Headers: headers}
	if err := h.dltWriter.WriteMessages(ctx, dlq); err != nil {
		logger.Ctx(ctx).Error().Err(err).
			Str("dlt_topic", h.dltTopic).
			Str("original_topic", msg.Topic).
			Int64("original_offset", msg.Offset).
			Msg("Failed to publish message to DLT")
		return err
	}

	logger.Ctx(ctx).Warn().
		Err(cause).
		Str("dlt_topic", h.dltTopic).
		Str("original_topic", msg.Topic).
		Int64("original_offset", msg.Offset).
		Msg("Message moved to DLT")
	return nil
}
