package mq

import (
	"context"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

type recordingWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func headerMap(hs []kafka.Header) map[string]string {
	m := make(map[string]string, len(hs))
	for _, h := range hs {
		m[h.Key] = string(h.Value)
	}
	return m
}

func TestKafkaHeaderCarrier(t *testing.T) {
	var c KafkaHeaderCarrier
	c.Set("a", "1")
	c.Set("b", "2")
	c.Set("a", "3")

	assert.Equal(t, "3", c.Get("a"))
	assert.Equal(t, "2", c.Get("b"))
	assert.Equal(t, "", c.Get("missing"))
	assert.ElementsMatch(t, []string{"a", "b"}, c.Keys())
}

func TestTraceContextRoundTrip(t *testing.T) {
	otel.SetTextMapPropagator(propagation.TraceContext{})

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	var headers []kafka.Header
	InjectTraceContext(ctx, &headers)
	require.NotEmpty(t, headers)

	got := trace.SpanContextFromContext(ExtractTraceContext(context.Background(), headers))
	assert.Equal(t, traceID, got.TraceID())
	assert.Equal(t, spanID, got.SpanID())
}

func TestProduceMessageTo(t *testing.T) {
	w := &recordingWriter{}
	require.NoError(t, ProduceMessageTo(context.Background(), w, "ticket-events", []byte("padel"), []byte(`{}`)))
	require.Len(t, w.msgs, 1)
	assert.Equal(t, "padel", string(w.msgs[0].Key))

	w.err = errors.New("broker down")
	assert.Error(t, ProduceMessageTo(context.Background(), w, "ticket-events", []byte("padel"), []byte(`{}`)))
}

func TestFailureHandlerAddsDeadLetterHeaders(t *testing.T) {
	w := &recordingWriter{}
	h := NewFailureHandler(w, "ticket-events-dlt")

	msg := kafka.Message{
		Topic:     "ticket-events",
		Partition: 2,
		Offset:    42,
		Key:       []byte("padel"),
		Value:     []byte("not json"),
		Headers: []kafka.Header{
			{Key: "traceparent", Value: []byte("x")},
			{Key: HeaderExceptionMessage, Value: []byte("stale")},
		},
	}
	require.NoError(t, h.Handle(context.Background(), msg, errors.New("bad payload")))
	require.Len(t, w.msgs, 1)

	out := w.msgs[0]
	assert.Equal(t, msg.Value, out.Value)
	assert.Equal(t, msg.Key, out.Key)

	hs := headerMap(out.Headers)
	assert.Equal(t, "ticket-events", hs[HeaderOriginalTopic])
	assert.Equal(t, "2", hs[HeaderOriginalPartition])
	assert.Equal(t, "42", hs[HeaderOriginalOffset])
	assert.Equal(t, "bad payload", hs[HeaderExceptionMessage])
	assert.Equal(t, "x", hs["traceparent"])

	n := 0
	for _, hd := range out.Headers {
		if hd.Key == HeaderExceptionMessage {
			n++
		}
	}
	assert.Equal(t, 1, n)
}

func TestFailureHandlerWriterError(t *testing.T) {
	w := &recordingWriter{err: errors.New("dlt down")}
	h := NewFailureHandler(w, "dlt")
	assert.Error(t, h.Handle(context.Background(), kafka.Message{Topic: "t"}, errors.New("boom")))
}
