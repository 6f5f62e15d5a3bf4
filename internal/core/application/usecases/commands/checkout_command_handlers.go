package commands

import (
	"context"

	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/ports"
)

// CheckoutCommandHandler handles the checkout setters: customer, shipping
// address and shipping method. Each is only accepted while the order is in
// AddingItems.
type CheckoutCommandHandler struct {
	uowFactory OrderUoWFactory
	locker     ports.AggregateLocker
}

func NewCheckoutCommandHandler(uowFactory OrderUoWFactory, locker ports.AggregateLocker) CheckoutCommandHandler {
	return CheckoutCommandHandler{uowFactory: uowFactory, locker: locker}
}

func (h CheckoutCommandHandler) HandleSetCustomer(ctx context.Context, command SetCustomerCommand) (_ *order.Order, err error) {
	if err = command.Validate(); err != nil {
		return nil, err
	}
	ctx, span := tracer.Start(ctx, "SetCustomer")
	defer func() { endSpan(span, err) }()

	return updateOrder(ctx, h.uowFactory, h.locker, command.OrderID(), func(o *order.Order) error {
		return o.SetCustomer(command.CustomerRef())
	})
}

func (h CheckoutCommandHandler) HandleSetShippingAddress(
	ctx context.Context,
	command SetShippingAddressCommand,
) (_ *order.Order, err error) {
	if err = command.Validate(); err != nil {
		return nil, err
	}
	ctx, span := tracer.Start(ctx, "SetShippingAddress")
	defer func() { endSpan(span, err) }()

	return updateOrder(ctx, h.uowFactory, h.locker, command.OrderID(), func(o *order.Order) error {
		return o.SetShippingAddress(command.Address())
	})
}

func (h CheckoutCommandHandler) HandleSetShippingMethod(
	ctx context.Context,
	command SetShippingMethodCommand,
) (_ *order.Order, err error) {
	if err = command.Validate(); err != nil {
		return nil, err
	}
	ctx, span := tracer.Start(ctx, "SetShippingMethod")
	defer func() { endSpan(span, err) }()

	return updateOrder(ctx, h.uowFactory, h.locker, command.OrderID(), func(o *order.Order) error {
		return o.SetShippingMethod(command.ShippingMethod())
	})
}
