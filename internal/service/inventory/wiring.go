// internal/service/inventory/wiring.go
package inventory

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"ticketing/internal/pkg/bootstrap"
	"ticketing/internal/pkg/logger"
	redispkg "ticketing/internal/pkg/redis"
	"ticketing/internal/service/inventory/domain"
	"ticketing/internal/service/inventory/domain/port"
	"ticketing/internal/service/inventory/infrastructure"
	"ticketing/internal/zookeeper"
)

const zookeeperLockPrefix = "activity-"

// NewRepository 按 app.inventory.store 创建仓储，返回的 closer 释放底层连接
func NewRepository(ctx context.Context, cfg *bootstrap.Config) (domain.ActivityRepository, func(), error) {
	switch cfg.App.Inventory.Store {
	case "mysql":
		db, err := infrastructure.OpenMySQL(ctx, cfg.Infra.MySQL.DSN, cfg.Infra.MySQL.MaxOpenConns)
		if err != nil {
			return nil, nil, err
		}
		if cfg.Infra.MySQL.AutoMigrate {
			if err := infrastructure.AutoMigrate(db); err != nil {
				return nil, nil, err
			}
		}
		closer := func() {
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
		}
		return infrastructure.NewGormActivityRepository(db), closer, nil

	case "redis":
		r := cfg.Infra.Redis
		client, err := redispkg.Connect(ctx, r.Addr, r.Password, r.DB)
		if err != nil {
			return nil, nil, err
		}
		return infrastructure.NewRedisActivityRepository(client, cfg.App.Inventory.CASRetries), func() { _ = client.Close() }, nil

	case "memory", "":
		logger.Logger.Warn().Msg("using in-memory activity store, data is lost on restart")
		return infrastructure.NewMemoryActivityRepository(), func() {}, nil

	default:
		return nil, nil, errors.Errorf("unknown inventory store %q", cfg.App.Inventory.Store)
	}
}

// NewLocker 按 app.inventory.lock 创建按 Key 的锁；none 返回 nil
func NewLocker(cfg *bootstrap.Config) (port.KeyLocker, func(), error) {
	switch cfg.App.Inventory.Lock {
	case "none", "":
		return nil, func() {}, nil
	case "local":
		return infrastructure.NewLocalKeyLocker(), func() {}, nil
	case "zookeeper":
		zk := cfg.Infra.Zookeeper
		conn, err := zookeeper.Connect(zk.Servers, time.Duration(zk.SessionTimeout)*time.Second)
		if err != nil {
			return nil, nil, err
		}
		return zookeeper.NewKeyLocker(conn, zookeeperLockPrefix), conn.Close, nil
	default:
		return nil, nil, errors.Errorf("unknown inventory lock %q", cfg.App.Inventory.Lock)
	}
}
