package commands

import (
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var ErrTransitionOrderCommandIsNotConstructed = errors.New(
	"TransitionOrderCommand must be created via NewTransitionOrderCommand constructor",
)

// TransitionOrderCommand requests that an order move to a target state on behalf
// of an actor.
//
// Example:
//
//	cmd, err := NewTransitionOrderCommand(orderID, order.ArrangingPayment, actor)
//	if err != nil {
//	    return err
//	}
//	o, err := handler.Handle(ctx, cmd)
type TransitionOrderCommand struct {
	orderID kernel.UUID
	target  order.State
	actor   kernel.Actor

	guard guard.ConstructorGuard
}

func NewTransitionOrderCommand(orderID kernel.UUID, target order.State, actor kernel.Actor) (TransitionOrderCommand, error) {
	var err error
	if vErr := orderID.Validate(); vErr != nil {
		err = errors.Join(err, vErr)
	}
	if vErr := target.Validate(); vErr != nil {
		err = errors.Join(err, vErr)
	}
	if actor == nil {
		err = errors.Join(err, errs.NewValueIsRequiredError("actor"))
	}
	if err != nil {
		return TransitionOrderCommand{}, err
	}

	return TransitionOrderCommand{
		orderID: orderID,
		target:  target,
		actor:   actor,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

func (c TransitionOrderCommand) OrderID() kernel.UUID { return c.orderID }
func (c TransitionOrderCommand) Target() order.State  { return c.target }
func (c TransitionOrderCommand) Actor() kernel.Actor  { return c.actor }

// Validate ensures the command was created through the constructor.
func (c TransitionOrderCommand) Validate() error {
	return c.guard.Validate(ErrTransitionOrderCommandIsNotConstructed)
}
