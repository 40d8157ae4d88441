package inventory

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ticketing/internal/pkg/bootstrap"
	"ticketing/internal/service/inventory/infrastructure"
)

func TestNewRepository(t *testing.T) {
	cfg := bootstrap.DefaultConfig()

	repo, closer, err := NewRepository(context.Background(), &cfg)
	require.NoError(t, err)
	defer closer()
	assert.IsType(t, &infrastructure.MemoryActivityRepository{}, repo)

	mr := miniredis.RunT(t)
	cfg.App.Inventory.Store = "redis"
	cfg.Infra.Redis.Addr = mr.Addr()
	repo, closer, err = NewRepository(context.Background(), &cfg)
	require.NoError(t, err)
	defer closer()
	assert.IsType(t, &infrastructure.RedisActivityRepository{}, repo)

	cfg.App.Inventory.Store = "cassandra"
	_, _, err = NewRepository(context.Background(), &cfg)
	assert.Error(t, err)
}

func TestNewLocker(t *testing.T) {
	cfg := bootstrap.DefaultConfig()

	l, _, err := NewLocker(&cfg)
	require.NoError(t, err)
	assert.IsType(t, &infrastructure.LocalKeyLocker{}, l)

	cfg.App.Inventory.Lock = "none"
	l, _, err = NewLocker(&cfg)
	require.NoError(t, err)
	assert.Nil(t, l)

	cfg.App.Inventory.Lock = "etcd"
	_, _, err = NewLocker(&cfg)
	assert.Error(t, err)
}
