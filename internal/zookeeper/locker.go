package zookeeper

import (
	"context"

	"ticketing/internal/pkg/logger"
)

// KeyLocker 为每个活动 Key 提供一把跨实例的分布式锁。
type KeyLocker struct {
	conn   *Conn
	prefix string
}

func NewKeyLocker(conn *Conn, prefix string) *KeyLocker {
	return &KeyLocker{conn: conn, prefix: prefix}
}

// Lock 阻塞直到获得 key 对应的锁。
func (k *KeyLocker) Lock(ctx context.Context, key string) (func(), error) {
	l, err := NewDistributedLock(k.conn, k.prefix+key)
	if err != nil {
		return nil, err
	}
	if err := l.Lock(ctx); err != nil {
		return nil, err
	}
	return func() {
		if err := l.Unlock(); err != nil {
			logger.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("failed to release zookeeper lock")
		}
	}, nil
}
