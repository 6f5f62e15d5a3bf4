package order_test

import (
	"fmt"
	"testing"

	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestState_Validate(t *testing.T) {
	for s := order.AddingItems; s <= order.Cancelled; s++ {
		t.Run(fmt.Sprintf("should validate %s state", s), func(t *testing.T) {
			require.NoError(t, s.Validate())
		})
	}

	t.Run("should reject Unknown state", func(t *testing.T) {
		err := order.Unknown.Validate()

		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
		assert.Contains(t, err.Error(), "0 is not a valid state")
	})

	t.Run("should reject out of range state", func(t *testing.T) {
		require.Error(t, order.State(99).Validate())
		assert.Equal(t, "Unknown", order.State(99).String())
	})
}

func TestParseState(t *testing.T) {
	t.Run("should round trip every state name", func(t *testing.T) {
		for s := order.AddingItems; s <= order.Cancelled; s++ {
			parsed, err := order.ParseState(s.String())
			require.NoError(t, err)
			assert.Equal(t, s, parsed)
		}
	})

	t.Run("should reject unknown names", func(t *testing.T) {
		for _, name := range []string{"Unknown", "", "paymentSettled"} {
			_, err := order.ParseState(name)
			require.Error(t, err, name)
		}
	})
}

func TestState_IsTerminal(t *testing.T) {
	assert.True(t, order.Delivered.IsTerminal())
	assert.True(t, order.Cancelled.IsTerminal())
	assert.False(t, order.Shipped.IsTerminal())
	assert.Empty(t, order.NextStates(order.Delivered))
	assert.Empty(t, order.NextStates(order.Cancelled))
}

func TestNextStates(t *testing.T) {
	assert.Equal(t,
		[]order.State{order.ArrangingPayment, order.Cancelled},
		order.NextStates(order.AddingItems))
	assert.Equal(t,
		[]order.State{order.AddingItems, order.PaymentAuthorized, order.PaymentSettled, order.Cancelled},
		order.NextStates(order.ArrangingPayment))
	assert.True(t, order.HasEdge(order.PaymentAuthorized, order.PaymentSettled))
	assert.False(t, order.HasEdge(order.AddingItems, order.PaymentSettled))
	assert.True(t, order.HasEdge(order.Fulfilled, order.Cancelled))
	assert.True(t, order.HasEdge(order.Shipped, order.Cancelled))
	assert.True(t, order.HasEdge(order.PartiallyDelivered, order.Cancelled))
	assert.False(t, order.HasEdge(order.Delivered, order.Cancelled))
}
