package interfaces

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	"ticketing/internal/service/notification/domain"
)

// scriptedReader 依次返回预置消息，耗尽后取消 ctx
type scriptedReader struct {
	mu        sync.Mutex
	msgs      []kafka.Message
	committed []int64
	cancel    context.CancelFunc
}

func (r *scriptedReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.msgs) == 0 {
		r.cancel()
		return kafka.Message{}, ctx.Err()
	}
	m := r.msgs[0]
	r.msgs = r.msgs[1:]
	return m, nil
}

func (r *scriptedReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

type recordingHandler struct {
	events []*domain.TicketEvent
	failOn string
}

func (h *recordingHandler) HandleTicketEvent(_ context.Context, e *domain.TicketEvent) error {
	if e.EventID == h.failOn {
		return errors.New("notifier rejected")
	}
	h.events = append(h.events, e)
	return nil
}

type recordingDLT struct {
	causes  []error
	offsets []int64
}

func (d *recordingDLT) Handle(_ context.Context, msg kafka.Message, cause error) error {
	d.causes = append(d.causes, cause)
	d.offsets = append(d.offsets, msg.Offset)
	return nil
}

func eventMessage(t *testing.T, offset int64, id string) kafka.Message {
	t.Helper()
	raw, err := json.Marshal(domain.TicketEvent{EventID: id, Type: domain.EventTicketsPurchased})
	require.NoError(t, err)
	return kafka.Message{Topic: "ticket-events", Offset: offset, Key: []byte("padel"), Value: raw}
}

func TestTicketEventConsumer(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reader := &scriptedReader{
		cancel: cancel,
		msgs: []kafka.Message{
			eventMessage(t, 1, "ok-1"),
			{Topic: "ticket-events", Offset: 2, Value: []byte("{broken")},
			eventMessage(t, 3, "fail-me"),
			eventMessage(t, 4, "ok-2"),
		},
	}
	handler := &recordingHandler{failOn: "fail-me"}
	dlt := &recordingDLT{}

	c := NewTicketEventConsumer(reader, "ticket-events", handler, dlt, noop.NewTracerProvider().Tracer("test"))
	require.NoError(t, c.Run(ctx))

	require.Len(t, handler.events, 2)
	assert.Equal(t, "ok-1", handler.events[0].EventID)
	assert.Equal(t, "ok-2", handler.events[1].EventID)

	assert.Equal(t, []int64{2, 3}, dlt.offsets)
	assert.ErrorIs(t, dlt.causes[0], domain.ErrUndecodableEvent)

	// 所有消息都被提交，包括转投死信的
	assert.Equal(t, []int64{1, 2, 3, 4}, reader.committed)
}

func TestDltConsumerCommits(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reader := &scriptedReader{
		cancel: cancel,
		msgs:   []kafka.Message{{Topic: "ticket-events-dlt", Offset: 7, Value: []byte("x")}},
	}
	require.NoError(t, NewDltConsumer(reader, "ticket-events-dlt").Run(ctx))
	assert.Equal(t, []int64{7}, reader.committed)
}
