package services_test

import (
	"testing"

	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/stock"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderStateMachine_Transition_Sale(t *testing.T) {
	sm := services.NewOrderStateMachine()

	t.Run("should record one sale movement per line on first payment state", func(t *testing.T) {
		v := newVariant(t, 5, true)
		o := newArrangingPaymentOrder(t, v, 3)
		pay(t, o, order.PaymentStateSettled, o.Total())

		affected := sm.StockAffected(o, order.PaymentSettled)
		movements, err := sm.Transition(o, order.PaymentSettled, adminActor, variantsOf(v))

		require.NoError(t, err)
		require.Len(t, affected, 1)
		assert.True(t, affected[0].IsEqual(v.ID()))
		require.Len(t, movements, 1)
		assert.Equal(t, stock.Sale, movements[0].Type())
		assert.Equal(t, -3, movements[0].Quantity())
		assert.True(t, movements[0].OrderRef().IsEqual(o.ID()))
		assert.Equal(t, 2, v.StockOnHand())
		assert.Equal(t, order.PaymentSettled, o.State())
		assert.True(t, o.SaleRecorded())
	})

	t.Run("should not sell twice when settling an authorized order", func(t *testing.T) {
		v := newVariant(t, 5, true)
		o := newArrangingPaymentOrder(t, v, 1)
		pay(t, o, order.PaymentStateAuthorized, o.Total())

		first, err := sm.Transition(o, order.PaymentAuthorized, adminActor, variantsOf(v))
		require.NoError(t, err)
		require.Len(t, first, 1)

		assert.Empty(t, sm.StockAffected(o, order.PaymentSettled))
		assert.Equal(t, 4, v.StockOnHand())
		assert.Len(t, v.UncommittedMovements(), 1)
	})

	t.Run("should leave untracked stock unchanged but audit the sale", func(t *testing.T) {
		v := newVariant(t, 5, false)
		o := newArrangingPaymentOrder(t, v, 2)
		pay(t, o, order.PaymentStateSettled, o.Total())

		movements, err := sm.Transition(o, order.PaymentSettled, adminActor, variantsOf(v))

		require.NoError(t, err)
		require.Len(t, movements, 1)
		assert.Equal(t, 5, v.StockOnHand())
		assert.Equal(t, order.PaymentSettled, o.State())
	})

	t.Run("should fail without touching stock when the guard fails", func(t *testing.T) {
		v := newVariant(t, 5, true)
		o := newArrangingPaymentOrder(t, v, 1)

		movements, err := sm.Transition(o, order.PaymentAuthorized, adminActor, variantsOf(v))

		require.ErrorIs(t, err, errs.ErrInvalidTransition)
		assert.Nil(t, movements)
		assert.Equal(t, 5, v.StockOnHand())
		assert.Empty(t, v.UncommittedMovements())
		assert.Equal(t, order.ArrangingPayment, o.State())
		assert.False(t, o.SaleRecorded())
	})

	t.Run("should fail before transitioning when a variant is missing", func(t *testing.T) {
		v := newVariant(t, 5, true)
		o := newArrangingPaymentOrder(t, v, 1)
		pay(t, o, order.PaymentStateSettled, o.Total())

		_, err := sm.Transition(o, order.PaymentSettled, adminActor, nil)

		require.ErrorIs(t, err, errs.ErrObjectNotFound)
		assert.Equal(t, order.ArrangingPayment, o.State())
	})
}

func TestOrderStateMachine_Cancellation(t *testing.T) {
	sm := services.NewOrderStateMachine()

	paidOrder := func(t *testing.T, v *stock.Variant, quantity int) *order.Order {
		t.Helper()
		o := newArrangingPaymentOrder(t, v, quantity)
		pay(t, o, order.PaymentStateSettled, o.Total())
		_, err := sm.Transition(o, order.PaymentSettled, adminActor, variantsOf(v))
		require.NoError(t, err)
		return o
	}

	t.Run("should restock cancelled items after the sale", func(t *testing.T) {
		v := newVariant(t, 5, true)
		o := paidOrder(t, v, 3)

		movements, err := sm.CancelItems(o, itemIDs(o)[:2], variantsOf(v))

		require.NoError(t, err)
		require.Len(t, movements, 1)
		assert.Equal(t, stock.Cancellation, movements[0].Type())
		assert.Equal(t, 2, movements[0].Quantity())
		assert.Equal(t, 4, v.StockOnHand())
	})

	t.Run("should not restock items cancelled before the sale", func(t *testing.T) {
		v := newVariant(t, 5, true)
		o := newArrangingPaymentOrder(t, v, 2)

		assert.Empty(t, sm.StockAffectedByCancellation(o))
		movements, err := sm.CancelOrder(o, adminActor, nil)

		require.NoError(t, err)
		assert.Empty(t, movements)
		assert.Equal(t, order.Cancelled, o.State())
		assert.Equal(t, 5, v.StockOnHand())
	})

	t.Run("should restore remaining stock exactly once on cancel", func(t *testing.T) {
		v := newVariant(t, 5, true)
		o := paidOrder(t, v, 3)
		_, err := sm.CancelItems(o, itemIDs(o)[:1], variantsOf(v))
		require.NoError(t, err)

		movements, err := sm.CancelOrder(o, adminActor, variantsOf(v))

		require.NoError(t, err)
		require.Len(t, movements, 1)
		assert.Equal(t, 2, movements[0].Quantity())
		assert.Equal(t, 5, v.StockOnHand())
		assert.Equal(t, order.Cancelled, o.State())

		sum := 0
		for _, m := range v.UncommittedMovements() {
			sum += m.Quantity()
		}
		assert.Equal(t, 0, sum, "sale and cancellations cancel out")
	})

	t.Run("should cancel orders with fulfilled items and restock only the rest", func(t *testing.T) {
		v := newVariant(t, 5, true)
		o := paidOrder(t, v, 2)
		_, err := o.CreateFulfillment(itemIDs(o)[:1], "courier", "")
		require.NoError(t, err)

		movements, err := sm.CancelOrder(o, adminActor, variantsOf(v))

		require.NoError(t, err)
		assert.Equal(t, order.Cancelled, o.State())
		for _, it := range o.Lines()[0].Items() {
			assert.True(t, it.IsCancelled())
		}
		require.Len(t, movements, 1)
		assert.Equal(t, stock.Cancellation, movements[0].Type())
		assert.Equal(t, 1, movements[0].Quantity())
		assert.Equal(t, 4, v.StockOnHand())
	})

	t.Run("should cancel shipped orders without restocking", func(t *testing.T) {
		v := newVariant(t, 5, true)
		o := paidOrder(t, v, 2)
		f, err := o.CreateFulfillment(itemIDs(o), "courier", "")
		require.NoError(t, err)
		_, err = sm.AdvanceAfterFulfillment(o)
		require.NoError(t, err)
		require.NoError(t, o.TransitionFulfillment(f.ID(), order.FulfillmentShipped))
		_, err = sm.AdvanceAfterFulfillment(o)
		require.NoError(t, err)
		require.Equal(t, order.Shipped, o.State())

		movements, err := sm.CancelOrder(o, adminActor, variantsOf(v))

		require.NoError(t, err)
		assert.Empty(t, movements)
		assert.Equal(t, order.Cancelled, o.State())
		assert.Equal(t, 3, v.StockOnHand())
	})

	t.Run("should deny cancellation without permission", func(t *testing.T) {
		v := newVariant(t, 5, true)
		o := paidOrder(t, v, 1)

		_, err := sm.CancelOrder(o, customerActor, variantsOf(v))

		kind, ok := errs.KindOf(err)
		require.True(t, ok)
		assert.Equal(t, errs.KindPermissionDenied, kind)
		assert.False(t, o.Lines()[0].Items()[0].IsCancelled())
	})
}

func TestOrderStateMachine_AdvanceAfterPayment(t *testing.T) {
	sm := services.NewOrderStateMachine()

	tests := []struct {
		name     string
		payments []order.PaymentState
		want     order.State
		advanced bool
	}{
		{"settled payment", []order.PaymentState{order.PaymentStateSettled}, order.PaymentSettled, true},
		{"authorized payment", []order.PaymentState{order.PaymentStateAuthorized}, order.PaymentAuthorized, true},
		{"declined payment", []order.PaymentState{order.PaymentStateDeclined}, order.ArrangingPayment, false},
	}
	for _, tt := range tests {
		t.Run("should handle "+tt.name, func(t *testing.T) {
			v := newVariant(t, 5, true)
			o := newArrangingPaymentOrder(t, v, 1)
			for _, s := range tt.payments {
				pay(t, o, s, o.Total())
			}

			_, advanced, err := sm.AdvanceAfterPayment(o, variantsOf(v))

			require.NoError(t, err)
			assert.Equal(t, tt.advanced, advanced)
			assert.Equal(t, tt.want, o.State())
		})
	}

	t.Run("should not advance a partially covered order", func(t *testing.T) {
		v := newVariant(t, 5, true)
		o := newArrangingPaymentOrder(t, v, 1)
		pay(t, o, order.PaymentStateSettled, o.Total()-1)

		_, advanced, err := sm.AdvanceAfterPayment(o, variantsOf(v))

		require.NoError(t, err)
		assert.False(t, advanced)
	})
}

func TestOrderStateMachine_AdvanceAfterFulfillment(t *testing.T) {
	sm := services.NewOrderStateMachine()
	v := newVariant(t, 5, true)
	o := newArrangingPaymentOrder(t, v, 2)
	pay(t, o, order.PaymentStateSettled, o.Total())
	_, err := sm.Transition(o, order.PaymentSettled, adminActor, variantsOf(v))
	require.NoError(t, err)
	ids := itemIDs(o)

	f, err := o.CreateFulfillment(ids[:1], "courier", "T1")
	require.NoError(t, err)
	advanced, err := sm.AdvanceAfterFulfillment(o)
	require.NoError(t, err)
	assert.True(t, advanced)
	assert.Equal(t, order.PartiallyFulfilled, o.State())

	require.NoError(t, o.TransitionFulfillment(f.ID(), order.FulfillmentShipped))
	_, err = sm.AdvanceAfterFulfillment(o)
	require.NoError(t, err)
	assert.Equal(t, order.PartiallyShipped, o.State())

	g, err := o.CreateFulfillment(ids[1:], "courier", "T2")
	require.NoError(t, err)
	advanced, err = sm.AdvanceAfterFulfillment(o)
	require.NoError(t, err)
	assert.False(t, advanced, "coverage still matches PartiallyShipped")

	require.NoError(t, o.TransitionFulfillment(g.ID(), order.FulfillmentDelivered))
	require.NoError(t, o.TransitionFulfillment(f.ID(), order.FulfillmentDelivered))
	_, err = sm.AdvanceAfterFulfillment(o)
	require.NoError(t, err)
	assert.Equal(t, order.Delivered, o.State())
	assert.True(t, o.State().IsTerminal())
	assert.Equal(t, "system", o.UncommittedTransitions()[len(o.UncommittedTransitions())-1].ActorID)
}
