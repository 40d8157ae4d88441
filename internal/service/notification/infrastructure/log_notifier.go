package infrastructure

import (
	"context"

	"ticketing/internal/pkg/logger"
	"ticketing/internal/service/notification/domain"
)

// LogNotifier 把确认信息写入日志，代替真实的邮件发送
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier { return &LogNotifier{} }

func (n *LogNotifier) Send(ctx context.Context, c *domain.Confirmation) error {
	logger.Ctx(ctx).Info().
		Str("from", c.From).
		Str("to", c.To).
		Str("subject", c.Subject).
		Str("booking_id", c.BookingID).
		Int("html_bytes", len(c.HTMLBody)).
		Msg("📧 Booking confirmation sent")
	return nil
}
