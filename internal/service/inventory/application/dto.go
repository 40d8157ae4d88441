package application

import (
	"time"

	"ticketing/internal/service/inventory/domain"
)

// CreateActivityRequest 是新建活动的请求体
type CreateActivityRequest struct {
	ActivityKey string `json:"activity_key"`
	DisplayName string `json:"display_name"`
	Description string `json:"description"`
	Timing      string `json:"timing"`
	UnitPrice   int    `json:"unit_price"`
	Capacity    int    `json:"capacity"`
}

// PurchaseRequest 是购票请求体
type PurchaseRequest struct {
	Quantity   int                `json:"quantity"`
	Registrant *domain.Registrant `json:"registrant,omitempty"`
}

// RefundRequest 是退票请求体
type RefundRequest struct {
	Quantity int `json:"quantity"`
}

// CapacityRequest 是调整容量的请求体
type CapacityRequest struct {
	Capacity int `json:"capacity"`
}

// SetActiveRequest 是开关预订的请求体
type SetActiveRequest struct {
	IsActive *bool `json:"is_active"`
}

// UpdateDetailsRequest 是修改展示信息的请求体，缺省字段不修改
type UpdateDetailsRequest struct {
	DisplayName *string `json:"display_name"`
	Description *string `json:"description"`
	UnitPrice   *int    `json:"unit_price"`
	Timing      *string `json:"timing"`
}

func (r UpdateDetailsRequest) patch() domain.DetailsPatch {
	return domain.DetailsPatch{
		Name:        r.DisplayName,
		Description: r.Description,
		UnitPrice:   r.UnitPrice,
		Timing:      r.Timing,
	}
}

// ActivityView 是对外暴露的库存记录，包含派生字段
type ActivityView struct {
	ActivityKey   string    `json:"activity_key"`
	DisplayName   string    `json:"display_name"`
	Description   string    `json:"description,omitempty"`
	Timing        string    `json:"timing,omitempty"`
	UnitPrice     int       `json:"unit_price"`
	Capacity      int       `json:"capacity"`
	ReservedCount int       `json:"reserved_count"`
	Remaining     int       `json:"remaining"`
	IsActive      bool      `json:"is_active"`
	IsSoldOut     bool      `json:"is_sold_out"`
	IsAvailable   bool      `json:"is_available"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func NewActivityView(a *domain.Activity) *ActivityView {
	if a == nil {
		return nil
	}
	return &ActivityView{
		ActivityKey:   a.Key,
		DisplayName:   a.Name,
		Description:   a.Description,
		Timing:        a.Timing,
		UnitPrice:     a.UnitPrice,
		Capacity:      a.Capacity,
		ReservedCount: a.Reserved,
		Remaining:     a.Remaining(),
		IsActive:      a.IsActive,
		IsSoldOut:     a.IsSoldOut,
		IsAvailable:   a.IsAvailable(),
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
}

// Result 是账本操作的三态结果：成功标志、消息、记录 (可能为空)
type Result struct {
	Success    bool
	Outcome    domain.Outcome
	Message    string
	Activity   *domain.Activity
	Quantity   int
	TotalPrice int
	BookingID  string
}

// OperationResponse 是账本操作的响应体
type OperationResponse struct {
	Success    bool          `json:"success"`
	Outcome    string        `json:"outcome"`
	Message    string        `json:"message"`
	Activity   *ActivityView `json:"activity,omitempty"`
	Quantity   int           `json:"quantity,omitempty"`
	TotalPrice int           `json:"total_price,omitempty"`
	BookingID  string        `json:"booking_id,omitempty"`
}

func NewOperationResponse(r *Result) *OperationResponse {
	return &OperationResponse{
		Success:    r.Success,
		Outcome:    string(r.Outcome),
		Message:    r.Message,
		Activity:   NewActivityView(r.Activity),
		Quantity:   r.Quantity,
		TotalPrice: r.TotalPrice,
		BookingID:  r.BookingID,
	}
}

// ListResponse 是列表查询的响应体
type ListResponse struct {
	Filter     string          `json:"filter"`
	Count      int             `json:"count"`
	Activities []*ActivityView `json:"activities"`
}

// Summary 是全部活动的汇总
type Summary struct {
	TotalActivities     int `json:"total_activities"`
	AvailableActivities int `json:"available_activities"`
	SoldOutActivities   int `json:"sold_out_activities"`
	TotalTicketsSold    int `json:"total_tickets_sold"`
	TotalCapacity       int `json:"total_capacity"`
}
