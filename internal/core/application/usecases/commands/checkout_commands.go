package commands

import (
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/guard"
)

var (
	ErrSetCustomerCommandIsNotConstructed = errors.New(
		"SetCustomerCommand must be created via NewSetCustomerCommand constructor",
	)
	ErrSetShippingAddressCommandIsNotConstructed = errors.New(
		"SetShippingAddressCommand must be created via NewSetShippingAddressCommand constructor",
	)
	ErrSetShippingMethodCommandIsNotConstructed = errors.New(
		"SetShippingMethodCommand must be created via NewSetShippingMethodCommand constructor",
	)
)

// SetCustomerCommand attaches the customer to an order in AddingItems.
type SetCustomerCommand struct {
	orderID     kernel.UUID
	customerRef kernel.UUID

	guard guard.ConstructorGuard
}

func NewSetCustomerCommand(orderID, customerRef kernel.UUID) (SetCustomerCommand, error) {
	if err := errors.Join(orderID.Validate(), customerRef.Validate()); err != nil {
		return SetCustomerCommand{}, err
	}
	return SetCustomerCommand{orderID: orderID, customerRef: customerRef, guard: guard.NewConstructorGuard()}, nil
}

func (c SetCustomerCommand) OrderID() kernel.UUID     { return c.orderID }
func (c SetCustomerCommand) CustomerRef() kernel.UUID { return c.customerRef }

func (c SetCustomerCommand) Validate() error {
	return c.guard.Validate(ErrSetCustomerCommandIsNotConstructed)
}

// SetShippingAddressCommand sets the shipping destination of an order.
type SetShippingAddressCommand struct {
	orderID kernel.UUID
	address order.Address

	guard guard.ConstructorGuard
}

func NewSetShippingAddressCommand(orderID kernel.UUID, address order.Address) (SetShippingAddressCommand, error) {
	if err := errors.Join(orderID.Validate(), address.Validate()); err != nil {
		return SetShippingAddressCommand{}, err
	}
	return SetShippingAddressCommand{orderID: orderID, address: address, guard: guard.NewConstructorGuard()}, nil
}

func (c SetShippingAddressCommand) OrderID() kernel.UUID   { return c.orderID }
func (c SetShippingAddressCommand) Address() order.Address { return c.address }

func (c SetShippingAddressCommand) Validate() error {
	return c.guard.Validate(ErrSetShippingAddressCommandIsNotConstructed)
}

// SetShippingMethodCommand applies a shipping quote chosen by the customer.
type SetShippingMethodCommand struct {
	orderID kernel.UUID
	method  order.ShippingMethod

	guard guard.ConstructorGuard
}

func NewSetShippingMethodCommand(orderID kernel.UUID, method order.ShippingMethod) (SetShippingMethodCommand, error) {
	if err := errors.Join(orderID.Validate(), method.Validate()); err != nil {
		return SetShippingMethodCommand{}, err
	}
	return SetShippingMethodCommand{orderID: orderID, method: method, guard: guard.NewConstructorGuard()}, nil
}

func (c SetShippingMethodCommand) OrderID() kernel.UUID                 { return c.orderID }
func (c SetShippingMethodCommand) ShippingMethod() order.ShippingMethod { return c.method }

func (c SetShippingMethodCommand) Validate() error {
	return c.guard.Validate(ErrSetShippingMethodCommandIsNotConstructed)
}
