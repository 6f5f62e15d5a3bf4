package commands

import (
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var (
	ErrCreateFulfillmentCommandIsNotConstructed = errors.New(
		"CreateFulfillmentCommand must be created via NewCreateFulfillmentCommand constructor",
	)
	ErrTransitionFulfillmentCommandIsNotConstructed = errors.New(
		"TransitionFulfillmentCommand must be created via NewTransitionFulfillmentCommand constructor",
	)
)

// CreateFulfillmentCommand groups order items into a shipment.
type CreateFulfillmentCommand struct {
	orderID      kernel.UUID
	itemIDs      []kernel.UUID
	method       string
	trackingCode string

	guard guard.ConstructorGuard
}

func NewCreateFulfillmentCommand(
	orderID kernel.UUID,
	itemIDs []kernel.UUID,
	method, trackingCode string,
) (CreateFulfillmentCommand, error) {
	err := orderID.Validate()
	if len(itemIDs) == 0 {
		err = errors.Join(err, errs.NewValueIsRequiredError("itemIds"))
	}
	if method == "" {
		err = errors.Join(err, errs.NewValueIsRequiredError("method"))
	}
	if err != nil {
		return CreateFulfillmentCommand{}, err
	}

	return CreateFulfillmentCommand{
		orderID:      orderID,
		itemIDs:      append([]kernel.UUID(nil), itemIDs...),
		method:       method,
		trackingCode: trackingCode,
		guard:        guard.NewConstructorGuard(),
	}, nil
}

func (c CreateFulfillmentCommand) OrderID() kernel.UUID { return c.orderID }
func (c CreateFulfillmentCommand) Method() string       { return c.method }
func (c CreateFulfillmentCommand) TrackingCode() string { return c.trackingCode }

func (c CreateFulfillmentCommand) ItemIDs() []kernel.UUID {
	return append([]kernel.UUID(nil), c.itemIDs...)
}

func (c CreateFulfillmentCommand) Validate() error {
	return c.guard.Validate(ErrCreateFulfillmentCommandIsNotConstructed)
}

// TransitionFulfillmentCommand moves a fulfillment to Shipped or Delivered.
type TransitionFulfillmentCommand struct {
	orderID       kernel.UUID
	fulfillmentID kernel.UUID
	target        order.FulfillmentState

	guard guard.ConstructorGuard
}

func NewTransitionFulfillmentCommand(
	orderID, fulfillmentID kernel.UUID,
	target order.FulfillmentState,
) (TransitionFulfillmentCommand, error) {
	err := errors.Join(orderID.Validate(), fulfillmentID.Validate())
	if target != order.FulfillmentShipped && target != order.FulfillmentDelivered {
		err = errors.Join(err, errs.NewValueIsInvalidError("fulfillment state"))
	}
	if err != nil {
		return TransitionFulfillmentCommand{}, err
	}

	return TransitionFulfillmentCommand{
		orderID:       orderID,
		fulfillmentID: fulfillmentID,
		target:        target,
		guard:         guard.NewConstructorGuard(),
	}, nil
}

func (c TransitionFulfillmentCommand) OrderID() kernel.UUID           { return c.orderID }
func (c TransitionFulfillmentCommand) FulfillmentID() kernel.UUID     { return c.fulfillmentID }
func (c TransitionFulfillmentCommand) Target() order.FulfillmentState { return c.target }

func (c TransitionFulfillmentCommand) Validate() error {
	return c.guard.Validate(ErrTransitionFulfillmentCommandIsNotConstructed)
}
