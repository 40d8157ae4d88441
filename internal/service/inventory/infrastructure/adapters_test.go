package infrastructure

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ticketing/internal/service/inventory/domain"
)

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

type fakeHub struct{ msgs [][]byte }

func (h *fakeHub) Broadcast(msg []byte) { h.msgs = append(h.msgs, msg) }

func TestTicketEventKafkaAdapter(t *testing.T) {
	w := &fakeWriter{}
	p := NewTicketEventKafkaAdapter(w, "ticket-events")

	ev := &domain.TicketEvent{EventID: "e1", Type: domain.EventTicketsPurchased, ActivityKey: "padel", Quantity: 2}
	require.NoError(t, p.PublishTicketEvent(context.Background(), ev))
	require.Len(t, w.msgs, 1)
	assert.Equal(t, "padel", string(w.msgs[0].Key))

	var decoded domain.TicketEvent
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &decoded))
	assert.Equal(t, "e1", decoded.EventID)
	assert.Equal(t, domain.EventTicketsPurchased, decoded.Type)

	w.err = errors.New("broker down")
	assert.Error(t, p.PublishTicketEvent(context.Background(), ev))
}

func TestAvailabilityPushAdapter(t *testing.T) {
	hub := &fakeHub{}
	b := NewAvailabilityPushAdapter(hub)

	a, err := domain.NewActivity("padel", "Padel", 200, 2)
	require.NoError(t, err)
	require.NoError(t, a.Reserve(2))
	b.BroadcastAvailability(a)

	require.Len(t, hub.msgs, 1)
	var snap AvailabilitySnapshot
	require.NoError(t, json.Unmarshal(hub.msgs[0], &snap))
	assert.Equal(t, "padel", snap.ActivityKey)
	assert.Equal(t, 0, snap.Remaining)
	assert.True(t, snap.IsSoldOut)
	assert.False(t, snap.IsAvailable)
}
