package order_test

import (
	"testing"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"

	"github.com/stretchr/testify/require"
)

var (
	customerActor = kernel.NewActor("customer-1", kernel.PermissionOwner)
	adminActor    = kernel.NewActor("admin-1", kernel.PermissionUpdateOrder)
	anonymous     = kernel.NewActor("anonymous")
)

func newAddress(t *testing.T) order.Address {
	t.Helper()
	a, err := order.NewAddress("Jane Doe", "1 Main St", "", "Springfield", "12345", "us")
	require.NoError(t, err)
	return a
}

func newShippingMethod(t *testing.T, price int64) order.ShippingMethod {
	t.Helper()
	m, err := order.NewShippingMethod("standard", price)
	require.NoError(t, err)
	return m
}

// newCartOrder returns an order in AddingItems with one line and checkout data set.
func newCartOrder(t *testing.T, unitPrice int64, quantity int) *order.Order {
	t.Helper()
	o, err := order.NewOrder(kernel.NewUUID(), "USD")
	require.NoError(t, err)
	_, err = o.AddItem(kernel.NewUUID(), unitPrice, quantity)
	require.NoError(t, err)
	require.NoError(t, o.SetCustomer(kernel.NewUUID()))
	require.NoError(t, o.SetShippingAddress(newAddress(t)))
	require.NoError(t, o.SetShippingMethod(newShippingMethod(t, 500)))
	return o
}

// newArrangingPaymentOrder returns an order waiting for payment.
func newArrangingPaymentOrder(t *testing.T, unitPrice int64, quantity int) *order.Order {
	t.Helper()
	o := newCartOrder(t, unitPrice, quantity)
	require.NoError(t, o.TransitionTo(order.ArrangingPayment, customerActor))
	return o
}

func addPayment(t *testing.T, o *order.Order, state order.PaymentState, amount int64) *order.Payment {
	t.Helper()
	p, err := order.NewPayment("test-method", amount, state, "", "", nil)
	require.NoError(t, err)
	require.NoError(t, o.AddPayment(p))
	return p
}

// newPaidOrder returns an order in PaymentSettled with its sale recorded.
func newPaidOrder(t *testing.T, unitPrice int64, quantity int) *order.Order {
	t.Helper()
	o := newArrangingPaymentOrder(t, unitPrice, quantity)
	addPayment(t, o, order.PaymentStateSettled, o.Total())
	require.NoError(t, o.TransitionTo(order.PaymentSettled, kernel.SystemActor()))
	o.MarkSaleRecorded()
	return o
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
