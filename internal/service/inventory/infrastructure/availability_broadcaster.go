package infrastructure

import (
	"encoding/json"
	"time"

	"ticketing/internal/pkg/logger"
	"ticketing/internal/service/inventory/domain"
)

// Broadcaster 是推送 hub 的最小接口
type Broadcaster interface {
	Broadcast(msg []byte)
}

// AvailabilitySnapshot 是推送给订阅方的可售状态
type AvailabilitySnapshot struct {
	ActivityKey string    `json:"activity_key"`
	Remaining   int       `json:"remaining"`
	IsAvailable bool      `json:"is_available"`
	IsSoldOut   bool      `json:"is_sold_out"`
	At          time.Time `json:"at"`
}

// AvailabilityPushAdapter 实现了 port.AvailabilityBroadcaster
type AvailabilityPushAdapter struct {
	hub Broadcaster
}

func NewAvailabilityPushAdapter(hub Broadcaster) *AvailabilityPushAdapter {
	return &AvailabilityPushAdapter{hub: hub}
}

func (b *AvailabilityPushAdapter) BroadcastAvailability(a *domain.Activity) {
	msg, err := json.Marshal(AvailabilitySnapshot{
		ActivityKey: a.Key,
		Remaining:   a.Remaining(),
		IsAvailable: a.IsAvailable(),
		IsSoldOut:   a.IsSoldOut,
		At:          time.Now().UTC(),
	})
	if err != nil {
		logger.Logger.Error().Err(err).Str("activity_key", a.Key).Msg("failed to encode availability snapshot")
		return
	}
	b.hub.Broadcast(msg)
}
