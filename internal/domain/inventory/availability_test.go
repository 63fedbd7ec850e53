package inventory

import (
	"testing"
	"time"

	"github.com/erp/salesengine/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDecimal(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestAggregateDemand(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	demands := AggregateDemand([]DemandLine{
		{Line: 1, PoolID: a, Quantity: 60},
		{Line: 2, PoolID: b, Quantity: 5},
		{Line: 3, PoolID: a, Quantity: 50},
	})

	require.Len(t, demands, 2)
	assert.Equal(t, a, demands[0].PoolID)
	assert.Equal(t, int64(110), demands[0].Quantity)
	assert.Equal(t, []int{1, 3}, demands[0].Lines)
	assert.Equal(t, b, demands[1].PoolID)
	assert.Equal(t, int64(5), demands[1].Quantity)
}

func TestPoolIDs_SortedAndDistinct(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	ids := PoolIDs(AggregateDemand([]DemandLine{
		{Line: 1, PoolID: a, Quantity: 1},
		{Line: 2, PoolID: b, Quantity: 1},
		{Line: 3, PoolID: a, Quantity: 1},
	}))
	require.Len(t, ids, 2)
	assert.True(t, ids[0].String() < ids[1].String())
}

func TestAvailabilityChecker_Check(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	checker := NewAvailabilityCheckerWithClock(func() time.Time { return now })

	t.Run("cumulative demand within stock", func(t *testing.T) {
		p := newTestPool(t, 100)
		err := checker.Check([]DemandLine{
			{Line: 1, PoolID: p.ID, Quantity: 60},
			{Line: 2, PoolID: p.ID, Quantity: 40},
		}, map[uuid.UUID]*Pool{p.ID: p})
		assert.NoError(t, err)
	})

	t.Run("cumulative demand exceeding stock rejects the batch", func(t *testing.T) {
		p := newTestPool(t, 100)
		err := checker.Check([]DemandLine{
			{Line: 1, PoolID: p.ID, Quantity: 60},
			{Line: 2, PoolID: p.ID, Quantity: 50},
		}, map[uuid.UUID]*Pool{p.ID: p})
		require.Error(t, err)
		assert.True(t, shared.IsKind(err, shared.KindInsufficientStock))
		assert.Contains(t, err.Error(), "lines 1, 2")
		assert.Equal(t, int64(100), p.CurrentQuantity)
	})

	t.Run("missing pool names the line", func(t *testing.T) {
		p := newTestPool(t, 100)
		err := checker.Check([]DemandLine{
			{Line: 1, PoolID: p.ID, Quantity: 1},
			{Line: 2, PoolID: uuid.New(), Quantity: 1},
		}, map[uuid.UUID]*Pool{p.ID: p})
		require.Error(t, err)
		assert.True(t, shared.IsKind(err, shared.KindReferenceNotFound))
		assert.Contains(t, err.Error(), "line 2:")
	})

	t.Run("expired batch", func(t *testing.T) {
		p := newTestPool(t, 100)
		expired := now.AddDate(0, -1, 0)
		p.ExpiryDate = &expired
		err := checker.Check([]DemandLine{{Line: 1, PoolID: p.ID, Quantity: 1}}, map[uuid.UUID]*Pool{p.ID: p})
		assert.True(t, shared.IsKind(err, shared.KindInsufficientStock))
	})
}
