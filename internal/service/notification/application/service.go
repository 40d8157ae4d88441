// internal/service/notification/application/service.go
package application

import (
	"bytes"
	"context"
	"fmt"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"ticketing/internal/pkg/logger"
	"ticketing/internal/service/notification/domain"
)

// EventInfo 是确认邮件里的活动信息
type EventInfo struct {
	Sender       string
	Name         string
	Date         string
	Location     string
	SupportEmail string
}

// ConfirmationService 把购票事件转换为预订确认并交给 Notifier
type ConfirmationService struct {
	notifier domain.Notifier
	info     EventInfo
	tracer   trace.Tracer
}

func NewConfirmationService(notifier domain.Notifier, info EventInfo, tracer trace.Tracer) *ConfirmationService {
	return &ConfirmationService{notifier: notifier, info: info, tracer: tracer}
}

// HandleTicketEvent 处理一条库存事件。与确认无关的事件直接忽略
func (s *ConfirmationService) HandleTicketEvent(ctx context.Context, event *domain.TicketEvent) error {
	ctx, span := s.tracer.Start(ctx, "notification.HandleTicketEvent",
		trace.WithAttributes(
			attribute.String("event.id", event.EventID),
			attribute.String("event.type", event.Type),
			attribute.String("activity.key", event.ActivityKey),
		))
	defer span.End()

	if event.Type != domain.EventTicketsPurchased || event.Registrant == nil || event.Registrant.Email == "" {
		logger.Ctx(ctx).Debug().Str("event_id", event.EventID).Str("type", event.Type).Msg("no confirmation needed")
		return nil
	}

	c, err := s.BuildConfirmation(event)
	if err != nil {
		return err
	}
	if err := s.notifier.Send(ctx, c); err != nil {
		return errors.Wrapf(err, "send confirmation %s", c.BookingID)
	}
	span.AddEvent("confirmation sent")
	return nil
}

// BuildConfirmation 渲染确认邮件
func (s *ConfirmationService) BuildConfirmation(event *domain.TicketEvent) (*domain.Confirmation, error) {
	r := event.Registrant
	view := confirmationView{
		FirstName:     r.FirstName,
		LastName:      r.LastName,
		Email:         r.Email,
		BookingID:     r.BookingID,
		ActivityName:  event.ActivityName,
		Quantity:      event.Quantity,
		TotalPrice:    event.TotalPrice,
		EventName:     s.info.Name,
		EventDate:     s.info.Date,
		EventLocation: s.info.Location,
		SupportEmail:  s.info.SupportEmail,
	}

	var html, text bytes.Buffer
	if err := confirmationHTML.Execute(&html, view); err != nil {
		return nil, errors.Wrap(err, "render html confirmation")
	}
	if err := confirmationText.Execute(&text, view); err != nil {
		return nil, errors.Wrap(err, "render text confirmation")
	}

	return &domain.Confirmation{
		From:      s.info.Sender,
		To:        r.Email,
		Subject:   fmt.Sprintf("Registration Confirmed - %s (Booking ID: %s)", s.info.Name, r.BookingID),
		HTMLBody:  html.String(),
		TextBody:  text.String(),
		BookingID: r.BookingID,
	}, nil
}
