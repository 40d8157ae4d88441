// internal/service/notification/domain/notification.go
package domain

import (
	"context"
	"errors"
	"time"
)

// 通知服务只关心购票事件
const EventTicketsPurchased = "tickets.purchased"

var ErrUndecodableEvent = errors.New("undecodable ticket event")

// Registrant 是事件中携带的报名人信息
type Registrant struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	BookingID string `json:"booking_id,omitempty"`
}

// TicketEvent 是 inventory-service 发布的库存事件在消费侧的视图
type TicketEvent struct {
	EventID      string      `json:"event_id"`
	Type         string      `json:"type"`
	ActivityKey  string      `json:"activity_key"`
	ActivityName string      `json:"activity_name"`
	Quantity     int         `json:"quantity"`
	TotalPrice   int         `json:"total_price"`
	Registrant   *Registrant `json:"registrant,omitempty"`
	OccurredAt   time.Time   `json:"occurred_at"`
}

// Confirmation 是一封待发送的预订确认
type Confirmation struct {
	From      string
	To        string
	Subject   string
	HTMLBody  string
	TextBody  string
	BookingID string
}

// Notifier 是发送确认消息的出站端口
type Notifier interface {
	Send(ctx context.Context, c *Confirmation) error
}
