package port

import (
	"context"

	"ticketing/internal/service/inventory/domain"
)

// EventPublisher 是库存事件的出站端口，只在变更提交后调用。
type EventPublisher interface {
	PublishTicketEvent(ctx context.Context, event *domain.TicketEvent) error
}

// KeyLocker 按活动 Key 串行化变更，用于降低多实例下的写冲突。
// 存储层自身的原子性仍然是正确性的最终保证。
type KeyLocker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// AvailabilityBroadcaster 把最新的可售状态推送给订阅方。
type AvailabilityBroadcaster interface {
	BroadcastAvailability(a *domain.Activity)
}
