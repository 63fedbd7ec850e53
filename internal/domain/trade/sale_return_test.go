package trade

import (
	"testing"

	"github.com/erp/salesengine/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReturnStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from   ReturnStatus
		to     ReturnStatus
		expect bool
	}{
		{ReturnStatusPending, ReturnStatusApproved, true},
		{ReturnStatusPending, ReturnStatusRejected, true},
		{ReturnStatusPending, ReturnStatusCancelled, true},
		{ReturnStatusPending, ReturnStatusProcessed, false},
		{ReturnStatusPending, ReturnStatusPending, false},
		{ReturnStatusApproved, ReturnStatusProcessed, true},
		{ReturnStatusApproved, ReturnStatusRejected, true},
		{ReturnStatusApproved, ReturnStatusCancelled, true},
		{ReturnStatusApproved, ReturnStatusPending, false},
		{ReturnStatusProcessed, ReturnStatusCancelled, false},
		{ReturnStatusProcessed, ReturnStatusApproved, false},
		{ReturnStatusRejected, ReturnStatusApproved, false},
		{ReturnStatusCancelled, ReturnStatusPending, false},
		{ReturnStatusCancelled, ReturnStatusProcessed, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.expect, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestReturnStatus_Flags(t *testing.T) {
	assert.True(t, ReturnStatusProcessed.IsTerminal())
	assert.True(t, ReturnStatusRejected.IsTerminal())
	assert.True(t, ReturnStatusCancelled.IsTerminal())
	assert.False(t, ReturnStatusApproved.IsTerminal())

	assert.True(t, ReturnStatusPending.CountsTowardsReturned())
	assert.True(t, ReturnStatusProcessed.CountsTowardsReturned())
	assert.False(t, ReturnStatusRejected.CountsTowardsReturned())
	assert.False(t, ReturnStatusCancelled.CountsTowardsReturned())
}

func TestNewSaleReturn(t *testing.T) {
	sale := newTestSale(t, 20)
	actor := uuid.New()

	t.Run("derives price and refund from the sale", func(t *testing.T) {
		r, err := NewSaleReturn("RET-000001", sale, 5, 0, "damaged box", "", true, actor)
		require.NoError(t, err)
		assert.Equal(t, ReturnStatusPending, r.Status)
		assert.True(t, r.ReturnPrice.Equal(sale.UnitRetailPrice))
		assert.True(t, r.RefundAmount.Equal(dec("50.00")))
		assert.Equal(t, sale.PoolID, r.PoolID)
		assert.Equal(t, sale.ReferenceCode, r.SaleReferenceCode)
		assert.True(t, r.Restockable)
	})

	t.Run("cannot exceed remaining quantity", func(t *testing.T) {
		_, err := NewSaleReturn("RET-000002", sale, 6, 15, "wrong item", "", true, actor)
		require.Error(t, err)
		assert.True(t, shared.IsKind(err, shared.KindInvariantViolation))

		_, err = NewSaleReturn("RET-000002", sale, 5, 15, "wrong item", "", true, actor)
		assert.NoError(t, err)
	})

	t.Run("requires reason and positive quantity", func(t *testing.T) {
		_, err := NewSaleReturn("RET-000003", sale, 1, 0, "  ", "", false, actor)
		assert.True(t, shared.IsKind(err, shared.KindValidation))

		_, err = NewSaleReturn("RET-000003", sale, 0, 0, "reason", "", false, actor)
		assert.True(t, shared.IsKind(err, shared.KindValidation))
	})
}

func TestSaleReturn_TransitionTo(t *testing.T) {
	sale := newTestSale(t, 20)
	actor := uuid.New()

	t.Run("happy path", func(t *testing.T) {
		r, err := NewSaleReturn("RET-000001", sale, 5, 0, "damaged", "", true, actor)
		require.NoError(t, err)

		require.NoError(t, r.TransitionTo(ReturnStatusApproved, actor, "ok"))
		assert.NotNil(t, r.ApprovedAt)
		require.NoError(t, r.TransitionTo(ReturnStatusProcessed, actor, ""))
		assert.NotNil(t, r.ProcessedAt)
		assert.Equal(t, 3, r.Version)
		assert.Equal(t, &actor, r.StatusChangedBy)
	})

	t.Run("terminal states refuse transitions", func(t *testing.T) {
		for _, terminal := range []ReturnStatus{ReturnStatusProcessed, ReturnStatusCancelled, ReturnStatusRejected} {
			r, err := NewSaleReturn("RET-000002", sale, 1, 0, "x", "", true, actor)
			require.NoError(t, err)
			r.Status = terminal

			for _, target := range []ReturnStatus{ReturnStatusApproved, ReturnStatusProcessed, ReturnStatusCancelled, "DONE", ""} {
				err := r.TransitionTo(target, actor, "")
				require.Error(t, err)
				assert.True(t, shared.IsKind(err, shared.KindStateTransition), "%s -> %q", terminal, target)
			}
			assert.Equal(t, terminal, r.Status)
			assert.Equal(t, 1, r.Version)
		}
	})

	t.Run("unknown status", func(t *testing.T) {
		r, err := NewSaleReturn("RET-000003", sale, 1, 0, "x", "", true, actor)
		require.NoError(t, err)
		err = r.TransitionTo("ARCHIVED", actor, "")
		assert.True(t, shared.IsKind(err, shared.KindValidation))
	})
}
