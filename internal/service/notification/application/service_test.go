package application

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	"ticketing/internal/service/notification/domain"
)

type captureNotifier struct {
	sent []*domain.Confirmation
	err  error
}

func (n *captureNotifier) Send(_ context.Context, c *domain.Confirmation) error {
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, c)
	return nil
}

func newService(n domain.Notifier) *ConfirmationService {
	return NewConfirmationService(n, EventInfo{
		Sender:       "noreply@alldays.club",
		Name:         "Alldays Event",
		Location:     "Alldays Club",
		SupportEmail: "support@alldays.club",
	}, noop.NewTracerProvider().Tracer("test"))
}

func purchaseEvent() *domain.TicketEvent {
	return &domain.TicketEvent{
		EventID:      "e1",
		Type:         domain.EventTicketsPurchased,
		ActivityKey:  "padel",
		ActivityName: "Padel",
		Quantity:     2,
		TotalPrice:   400,
		Registrant: &domain.Registrant{
			FirstName: "ana maria",
			LastName:  "LOPEZ",
			Email:     "ana@example.com",
			BookingID: "AB12CD34",
		},
	}
}

func TestHandleTicketEventSendsConfirmation(t *testing.T) {
	n := &captureNotifier{}
	require.NoError(t, newService(n).HandleTicketEvent(context.Background(), purchaseEvent()))
	require.Len(t, n.sent, 1)

	c := n.sent[0]
	assert.Equal(t, "ana@example.com", c.To)
	assert.Equal(t, "noreply@alldays.club", c.From)
	assert.Equal(t, "Registration Confirmed - Alldays Event (Booking ID: AB12CD34)", c.Subject)
	assert.Contains(t, c.HTMLBody, "Hi Ana Maria Lopez,")
	assert.Contains(t, c.HTMLBody, "Booking ID: AB12CD34")
	assert.Contains(t, c.HTMLBody, "Alldays Club")
	assert.NotContains(t, c.HTMLBody, "Event Date:")
	assert.Contains(t, c.TextBody, "Activity: Padel x 2")
}

func TestHandleTicketEventEscapesHTML(t *testing.T) {
	ev := purchaseEvent()
	ev.ActivityName = "<script>alert(1)</script>"

	c, err := newService(&captureNotifier{}).BuildConfirmation(ev)
	require.NoError(t, err)
	assert.NotContains(t, c.HTMLBody, "<script>")
	assert.Contains(t, c.HTMLBody, "&lt;script&gt;")
}

func TestHandleTicketEventSkipsOtherEvents(t *testing.T) {
	n := &captureNotifier{}
	svc := newService(n)

	refund := purchaseEvent()
	refund.Type = "tickets.refunded"
	require.NoError(t, svc.HandleTicketEvent(context.Background(), refund))

	anonymous := purchaseEvent()
	anonymous.Registrant = nil
	require.NoError(t, svc.HandleTicketEvent(context.Background(), anonymous))

	assert.Empty(t, n.sent)
}

func TestHandleTicketEventNotifierError(t *testing.T) {
	n := &captureNotifier{err: errors.New("smtp down")}
	err := newService(n).HandleTicketEvent(context.Background(), purchaseEvent())
	assert.ErrorContains(t, err, "smtp down")
}

func TestTitleCase(t *testing.T) {
	assert.Equal(t, "Ana Maria", titleCase("  ana   MARIA "))
	assert.Equal(t, "", titleCase(""))
}
