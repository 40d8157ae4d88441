package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestActivity(t *testing.T, capacity int) *Activity {
	t.Helper()
	a, err := NewActivity("  Padel ", "Padel", 200, capacity)
	require.NoError(t, err)
	return a
}

func requireOutcome(t *testing.T, err error, want Outcome) {
	t.Helper()
	rej, ok := AsRejection(err)
	require.True(t, ok, "expected a rejection, got %v", err)
	assert.Equal(t, want, rej.Outcome)
}

func assertDerived(t *testing.T, a *Activity) {
	t.Helper()
	assert.Equal(t, a.Reserved >= a.Capacity, a.IsSoldOut)
	if a.IsSoldOut {
		assert.False(t, a.IsActive)
	}
}

func TestNewActivity(t *testing.T) {
	a := newTestActivity(t, 500)
	assert.Equal(t, "padel", a.Key)
	assert.Equal(t, 0, a.Reserved)
	assert.True(t, a.IsActive)
	assert.False(t, a.IsSoldOut)
	assert.Equal(t, 500, a.Remaining())

	cases := []struct {
		name          string
		key, dispName string
		price, cap    int
	}{
		{"empty key", "  ", "Padel", 0, 10},
		{"empty name", "padel", " ", 0, 10},
		{"negative price", "padel", "Padel", -1, 10},
		{"zero capacity", "padel", "Padel", 0, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewActivity(tc.key, tc.dispName, tc.price, tc.cap)
			assert.ErrorIs(t, err, ErrInvalidActivity)
		})
	}
}

func TestCapacityScenario(t *testing.T) {
	a := newTestActivity(t, 10)

	require.NoError(t, a.Reserve(7))
	assert.Equal(t, 7, a.Reserved)
	assert.Equal(t, 3, a.Remaining())
	assert.False(t, a.IsSoldOut)

	err := a.Reserve(5)
	requireOutcome(t, err, OutcomeInsufficientCapacity)
	assert.Contains(t, err.Error(), "Only 3 tickets remaining")
	assert.Equal(t, 7, a.Reserved)

	require.NoError(t, a.Reserve(3))
	assert.Equal(t, 10, a.Reserved)
	assert.True(t, a.IsSoldOut)
	assert.False(t, a.IsActive)

	require.NoError(t, a.Release(4))
	assert.Equal(t, 6, a.Reserved)
	assert.False(t, a.IsSoldOut)
	assert.True(t, a.IsActive)
}

func TestReserveRejections(t *testing.T) {
	a := newTestActivity(t, 2)
	requireOutcome(t, a.Reserve(0), OutcomeInvalidQuantity)
	requireOutcome(t, a.Reserve(-3), OutcomeInvalidQuantity)

	require.NoError(t, a.SetActive(false))
	requireOutcome(t, a.Reserve(1), OutcomeInactive)

	// 已售罄同时也是关闭状态，先命中 Inactive
	b := newTestActivity(t, 1)
	require.NoError(t, b.Reserve(1))
	requireOutcome(t, b.Reserve(1), OutcomeInactive)

	// 标志位不一致时仍然拒绝
	c := newTestActivity(t, 5)
	c.IsSoldOut = true
	requireOutcome(t, c.Reserve(1), OutcomeSoldOut)
}

func TestReleaseIgnoresActiveFlag(t *testing.T) {
	a := newTestActivity(t, 10)
	require.NoError(t, a.Reserve(4))
	require.NoError(t, a.SetActive(false))

	require.NoError(t, a.Release(2))
	assert.Equal(t, 2, a.Reserved)
	assert.False(t, a.IsActive)

	err := a.Release(3)
	requireOutcome(t, err, OutcomeCannotRelease)
	assert.Equal(t, "Cannot refund 3 tickets. Only 2 tickets sold", err.Error())
	assert.Equal(t, 2, a.Reserved)

	requireOutcome(t, a.Release(0), OutcomeInvalidQuantity)
}

func TestResetSoldOut(t *testing.T) {
	a := newTestActivity(t, 3)
	require.NoError(t, a.Reserve(3))
	require.True(t, a.IsSoldOut)

	a.Reset()
	assert.Equal(t, 0, a.Reserved)
	assert.False(t, a.IsSoldOut)
	assert.True(t, a.IsActive)
	assert.Equal(t, 3, a.Capacity)
}

func TestResize(t *testing.T) {
	a := newTestActivity(t, 10)
	require.NoError(t, a.Reserve(6))

	require.NoError(t, a.Resize(6))
	assert.True(t, a.IsSoldOut)
	assert.False(t, a.IsActive)
	assertDerived(t, a)

	require.NoError(t, a.Resize(4))
	assert.True(t, a.IsSoldOut)
	assert.Equal(t, 0, a.Remaining())

	require.NoError(t, a.Resize(20))
	assert.False(t, a.IsSoldOut)
	assert.True(t, a.IsActive)
	assert.Equal(t, 14, a.Remaining())

	err := a.Resize(0)
	requireOutcome(t, err, OutcomeInvalidCapacity)
	assert.Equal(t, 20, a.Capacity)
}

func TestSetActive(t *testing.T) {
	a := newTestActivity(t, 1)
	require.NoError(t, a.SetActive(false))
	assert.False(t, a.IsAvailable())
	require.NoError(t, a.SetActive(true))
	assert.True(t, a.IsAvailable())

	require.NoError(t, a.Reserve(1))
	requireOutcome(t, a.SetActive(true), OutcomeSoldOut)
	assert.False(t, a.IsActive)
	require.NoError(t, a.SetActive(false))
}

func TestApplyDetails(t *testing.T) {
	a := newTestActivity(t, 10)
	require.NoError(t, a.Reserve(2))

	name, desc, price := "Padel Doubles", "Bring a racket", 250
	require.NoError(t, a.ApplyDetails(DetailsPatch{Name: &name, Description: &desc, UnitPrice: &price}))
	assert.Equal(t, "Padel Doubles", a.Name)
	assert.Equal(t, 250, a.UnitPrice)
	assert.Equal(t, 2, a.Reserved)

	empty := " "
	requireOutcome(t, a.ApplyDetails(DetailsPatch{Name: &empty}), OutcomeInvalidDetails)
	neg := -5
	requireOutcome(t, a.ApplyDetails(DetailsPatch{UnitPrice: &neg}), OutcomeInvalidDetails)
}

func TestCounterInvariantOverSequence(t *testing.T) {
	a := newTestActivity(t, 5)
	ops := []struct {
		reserve bool
		q       int
	}{
		{true, 2}, {true, 4}, {true, 3}, {false, 1}, {false, 9}, {true, 1}, {false, 5}, {true, 5}, {true, 1},
	}
	for _, op := range ops {
		if op.reserve {
			_ = a.Reserve(op.q)
		} else {
			_ = a.Release(op.q)
		}
		assert.GreaterOrEqual(t, a.Reserved, 0)
		assert.LessOrEqual(t, a.Reserved, a.Capacity)
		assertDerived(t, a)
	}
}

func TestListFilterMatches(t *testing.T) {
	open := newTestActivity(t, 2)
	sold := newTestActivity(t, 1)
	require.NoError(t, sold.Reserve(1))
	closed := newTestActivity(t, 2)
	require.NoError(t, closed.SetActive(false))

	assert.True(t, FilterAll.Matches(sold))
	assert.True(t, FilterAvailable.Matches(open))
	assert.False(t, FilterAvailable.Matches(sold))
	assert.False(t, FilterAvailable.Matches(closed))
	assert.True(t, FilterSoldOut.Matches(sold))
	assert.False(t, FilterSoldOut.Matches(closed))
}

func TestReserveHugeQuantityKeepsCounterInRange(t *testing.T) {
	a := newTestActivity(t, 10)
	require.NoError(t, a.Reserve(5))

	for _, q := range []int{math.MaxInt, math.MaxInt - 2, math.MaxInt - 4} {
		err := a.Reserve(q)
		requireOutcome(t, err, OutcomeInsufficientCapacity)
		assert.Equal(t, 5, a.Reserved)
		assert.Equal(t, 5, a.Remaining())
		assert.True(t, a.IsActive)
		assert.False(t, a.IsSoldOut)
	}

	require.NoError(t, a.Reserve(5))
	requireOutcome(t, a.Reserve(math.MaxInt), OutcomeSoldOut)
	assert.Equal(t, 10, a.Reserved)
}

func TestPriceFor(t *testing.T) {
	a := newTestActivity(t, 10)
	assert.Equal(t, 600, a.PriceFor(3))
	assert.Equal(t, 0, a.PriceFor(0))
	assert.Equal(t, math.MaxInt, a.PriceFor(math.MaxInt))

	a.UnitPrice = 0
	assert.Equal(t, 0, a.PriceFor(math.MaxInt))
}
