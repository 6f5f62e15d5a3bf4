package services_test

import (
	"testing"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/stock"
	"fulfillment/internal/core/domain/services"

	"github.com/stretchr/testify/require"
)

var (
	customerActor = kernel.NewActor("customer-1", kernel.PermissionOwner)
	adminActor    = kernel.NewActor("admin-1", kernel.PermissionUpdateOrder)
)

func newVariant(t *testing.T, onHand int, track bool) *stock.Variant {
	t.Helper()
	v, err := stock.RestoreVariant(kernel.NewUUID(), "SKU-"+kernel.NewUUID().String()[:8], 4530, "USD", onHand, track)
	require.NoError(t, err)
	return v
}

// newArrangingPaymentOrder returns an order for quantity units of v waiting for payment.
func newArrangingPaymentOrder(t *testing.T, v *stock.Variant, quantity int) *order.Order {
	t.Helper()
	o, err := order.NewOrder(kernel.NewUUID(), v.Currency())
	require.NoError(t, err)
	_, err = o.AddItem(v.ID(), v.Price(), quantity)
	require.NoError(t, err)
	require.NoError(t, o.SetCustomer(kernel.NewUUID()))
	address, err := order.NewAddress("Jane Doe", "1 Main St", "", "Springfield", "12345", "US")
	require.NoError(t, err)
	require.NoError(t, o.SetShippingAddress(address))
	method, err := order.NewShippingMethod("standard", 500)
	require.NoError(t, err)
	require.NoError(t, o.SetShippingMethod(method))
	require.NoError(t, o.TransitionTo(order.ArrangingPayment, customerActor))
	return o
}

func pay(t *testing.T, o *order.Order, state order.PaymentState, amount int64) {
	t.Helper()
	p, err := order.NewPayment("test-method", amount, state, "", "", nil)
	require.NoError(t, err)
	require.NoError(t, o.AddPayment(p))
}

func itemIDs(o *order.Order) []kernel.UUID {
	var ids []kernel.UUID
	for _, l := range o.Lines() {
		for _, it := range l.Items() {
			ids = append(ids, it.ID())
		}
	}
	return ids
}

func variantsOf(vs ...*stock.Variant) services.Variants {
	out := services.Variants{}
	for _, v := range vs {
		out[v.ID()] = v
	}
	return out
}
