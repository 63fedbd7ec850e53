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

func newTestPool(t *testing.T, qty int64) *Pool {
	t.Helper()
	p, err := NewPool(uuid.New(), "B-001", qty, decimal.RequireFromString("6.50"), decimal.RequireFromString("10.00"), nil)
	require.NoError(t, err)
	return p
}

func TestNewPool(t *testing.T) {
	t.Run("creates active pool at full quantity", func(t *testing.T) {
		p := newTestPool(t, 100)
		assert.Equal(t, PoolStatusActive, p.Status)
		assert.Equal(t, int64(100), p.CurrentQuantity)
		assert.Equal(t, int64(100), p.InitialQuantity)
		assert.NotEqual(t, uuid.Nil, p.BatchID)
		assert.Equal(t, 1, p.Version)
	})

	t.Run("rejects empty product", func(t *testing.T) {
		_, err := NewPool(uuid.Nil, "B-001", 1, decimal.Zero, decimal.Zero, nil)
		assert.Error(t, err)
		assert.Equal(t, shared.KindValidation, shared.KindOf(err))
	})

	t.Run("rejects negative prices", func(t *testing.T) {
		_, err := NewPool(uuid.New(), "B-001", 1, decimal.NewFromInt(-1), decimal.Zero, nil)
		assert.Error(t, err)
	})
}

func TestPool_IsExpired(t *testing.T) {
	now := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)
	p := newTestPool(t, 10)

	assert.False(t, p.IsExpired(now), "no expiry date never expires")

	sameDay := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	p.ExpiryDate = &sameDay
	assert.False(t, p.IsExpired(now), "sellable on the expiry date")

	yesterday := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	p.ExpiryDate = &yesterday
	assert.True(t, p.IsExpired(now))
}

func TestPool_CheckSupply(t *testing.T) {
	now := time.Now()

	t.Run("enough stock", func(t *testing.T) {
		p := newTestPool(t, 100)
		assert.NoError(t, p.CheckSupply(100, now))
	})

	t.Run("insufficient stock", func(t *testing.T) {
		p := newTestPool(t, 100)
		err := p.CheckSupply(101, now)
		assert.True(t, shared.IsKind(err, shared.KindInsufficientStock))
		assert.Contains(t, err.Error(), "requested 101, available 100")
	})

	t.Run("inactive pool", func(t *testing.T) {
		p := newTestPool(t, 100)
		require.NoError(t, p.ChangeStatus(PoolStatusDamaged))
		err := p.CheckSupply(1, now)
		assert.True(t, shared.IsKind(err, shared.KindReferenceNotFound))
	})

	t.Run("expired batch", func(t *testing.T) {
		p := newTestPool(t, 100)
		past := now.AddDate(0, 0, -2)
		p.ExpiryDate = &past
		err := p.CheckSupply(1, now)
		assert.True(t, shared.IsKind(err, shared.KindInsufficientStock))
		assert.Contains(t, err.Error(), "expired")
	})
}

func TestPool_DeductAndRestock(t *testing.T) {
	p := newTestPool(t, 100)

	prev, next, err := p.Deduct(20)
	require.NoError(t, err)
	assert.Equal(t, int64(100), prev)
	assert.Equal(t, int64(80), next)

	_, _, err = p.Deduct(81)
	assert.True(t, shared.IsKind(err, shared.KindInsufficientStock))
	assert.Equal(t, int64(80), p.CurrentQuantity)

	prev, next, err = p.Restock(5)
	require.NoError(t, err)
	assert.Equal(t, int64(80), prev)
	assert.Equal(t, int64(85), next)

	_, _, err = p.Restock(16)
	assert.True(t, shared.IsKind(err, shared.KindInvariantViolation))
	assert.Equal(t, int64(85), p.CurrentQuantity)

	_, _, err = p.Deduct(0)
	assert.True(t, shared.IsKind(err, shared.KindValidation))
}

func TestPool_ChangeStatus(t *testing.T) {
	p := newTestPool(t, 1)
	assert.Error(t, p.ChangeStatus("BROKEN"))
	require.NoError(t, p.ChangeStatus(PoolStatusExpired))
	assert.False(t, p.IsActive())
}
