package rule

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ticketing/internal/service/inventory/domain"
)

func TestDefaultPurchaseRule(t *testing.T) {
	p, err := NewCELPurchasePolicy("")
	require.NoError(t, err)
	assert.Equal(t, DefaultPurchaseRule, p.Expression())

	for q, want := range map[int]bool{0: false, 1: true, 10: true, 11: false} {
		ok, err := p.Allow(context.Background(), domain.PurchaseFacts{Quantity: q, ActivityKey: "padel", Remaining: 50})
		require.NoError(t, err)
		assert.Equal(t, want, ok, "quantity=%d", q)
	}
}

func TestCustomPurchaseRule(t *testing.T) {
	p, err := NewCELPurchasePolicy(`activity_key != "padel" || quantity * unit_price <= 1000`)
	require.NoError(t, err)

	ok, err := p.Allow(context.Background(), domain.PurchaseFacts{Quantity: 5, ActivityKey: "padel", UnitPrice: 200})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = p.Allow(context.Background(), domain.PurchaseFacts{Quantity: 6, ActivityKey: "padel", UnitPrice: 200})
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = p.Allow(context.Background(), domain.PurchaseFacts{Quantity: 6, ActivityKey: "yoga", UnitPrice: 200})
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestInvalidPurchaseRule(t *testing.T) {
	_, err := NewCELPurchasePolicy("quantity >")
	assert.Error(t, err)

	_, err = NewCELPurchasePolicy("quantity + 1")
	assert.Error(t, err)

	_, err = NewCELPurchasePolicy("unknown_var > 1")
	assert.Error(t, err)
}
