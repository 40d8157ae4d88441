package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	"ticketing/internal/service/inventory/application"
	"ticketing/internal/service/inventory/domain"
	"ticketing/internal/service/inventory/infrastructure"
)

func TestSeedIsIdempotent(t *testing.T) {
	ctx := context.Background()
	ledger := application.NewLedgerService(infrastructure.NewMemoryActivityRepository(), noop.NewTracerProvider().Tracer("test"))

	require.NoError(t, seed(ctx, ledger))
	require.NoError(t, seed(ctx, ledger))

	list, err := ledger.List(ctx, domain.FilterAll)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "padel", list[0].Key)
	assert.Equal(t, 500, list[0].Capacity)
	assert.Equal(t, 200, list[0].UnitPrice)
}

func TestResizeOne(t *testing.T) {
	ctx := context.Background()
	ledger := application.NewLedgerService(infrastructure.NewMemoryActivityRepository(), noop.NewTracerProvider().Tracer("test"))
	require.NoError(t, seed(ctx, ledger))

	require.NoError(t, resizeOne(ctx, ledger, "padel=300"))
	res, err := ledger.Lookup(ctx, "padel")
	require.NoError(t, err)
	assert.Equal(t, 300, res.Activity.Capacity)

	assert.Error(t, resizeOne(ctx, ledger, "padel"))
	assert.Error(t, resizeOne(ctx, ledger, "padel=lots"))
	assert.Error(t, resizeOne(ctx, ledger, "padel=0"))
	assert.Error(t, resizeOne(ctx, ledger, "ghost=10"))
}
