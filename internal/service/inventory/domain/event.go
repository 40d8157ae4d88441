// internal/service/inventory/domain/event.go
package domain

import "time"

// TicketEventType 标识库存变更事件的种类。
type TicketEventType string

const (
	EventTicketsPurchased TicketEventType = "tickets.purchased"
	EventTicketsRefunded  TicketEventType = "tickets.refunded"
	EventCountReset       TicketEventType = "inventory.reset"
	EventCapacityUpdated  TicketEventType = "inventory.capacity_updated"
)

// Registrant 是随购票请求一起传入的报名人信息，仅用于下游通知。
type Registrant struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	BookingID string `json:"booking_id,omitempty"`
}

// TicketEvent 在库存变更提交之后发布。
type TicketEvent struct {
	EventID       string          `json:"event_id"`
	Type          TicketEventType `json:"type"`
	ActivityKey   string          `json:"activity_key"`
	ActivityName  string          `json:"activity_name"`
	Quantity      int             `json:"quantity,omitempty"`
	ReservedCount int             `json:"reserved_count"`
	Capacity      int             `json:"capacity"`
	Remaining     int             `json:"remaining"`
	IsSoldOut     bool            `json:"is_sold_out"`
	TotalPrice    int             `json:"total_price,omitempty"`
	Registrant    *Registrant     `json:"registrant,omitempty"`
	TraceID       string          `json:"trace_id,omitempty"`
	OccurredAt    time.Time       `json:"occurred_at"`
}
