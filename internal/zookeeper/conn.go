// internal/zookeeper/conn.go
package zookeeper

import (
	"time"

	"github.com/go-zookeeper/zk"
	"github.com/pkg/errors"

	"ticketing/internal/pkg/logger"
)

// Conn 包装 zk.Conn，统一连接参数与日志。
type Conn struct {
	*zk.Conn
}

// Connect 连接 ZooKeeper 集群，并等待会话建立。
func Connect(servers []string, sessionTimeout time.Duration) (*Conn, error) {
	if len(servers) == 0 {
		return nil, errors.New("zookeeper: no servers configured")
	}
	c, events, err := zk.Connect(servers, sessionTimeout, zk.WithLogInfo(false))
	if err != nil {
		return nil, errors.Wrap(err, "zookeeper: connect")
	}

	deadline := time.After(sessionTimeout)
	for {
		select {
		case ev := <-events:
			if ev.State == zk.StateHasSession {
				logger.Logger.Info().Strs("servers", servers).Msg("✅ Connected to ZooKeeper")
				return &Conn{Conn: c}, nil
			}
		case <-deadline:
			c.Close()
			return nil, errors.Errorf("zookeeper: no session within %s", sessionTimeout)
		}
	}
}
