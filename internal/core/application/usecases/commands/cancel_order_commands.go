package commands

import (
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var (
	ErrCancelOrderItemsCommandIsNotConstructed = errors.New(
		"CancelOrderItemsCommand must be created via NewCancelOrderItemsCommand constructor",
	)
	ErrCancelOrderCommandIsNotConstructed = errors.New(
		"CancelOrderCommand must be created via NewCancelOrderCommand constructor",
	)
)

// CancelOrderItemsCommand cancels individual order items. The order state does
// not change.
type CancelOrderItemsCommand struct {
	orderID kernel.UUID
	itemIDs []kernel.UUID

	guard guard.ConstructorGuard
}

func NewCancelOrderItemsCommand(orderID kernel.UUID, itemIDs []kernel.UUID) (CancelOrderItemsCommand, error) {
	err := orderID.Validate()
	if len(itemIDs) == 0 {
		err = errors.Join(err, errs.NewValueIsRequiredError("itemIds"))
	}
	for _, id := range itemIDs {
		if vErr := id.Validate(); vErr != nil {
			err = errors.Join(err, vErr)
		}
	}
	if err != nil {
		return CancelOrderItemsCommand{}, err
	}

	return CancelOrderItemsCommand{
		orderID: orderID,
		itemIDs: append([]kernel.UUID(nil), itemIDs...),
		guard:   guard.NewConstructorGuard(),
	}, nil
}

func (c CancelOrderItemsCommand) OrderID() kernel.UUID { return c.orderID }

func (c CancelOrderItemsCommand) ItemIDs() []kernel.UUID {
	return append([]kernel.UUID(nil), c.itemIDs...)
}

func (c CancelOrderItemsCommand) Validate() error {
	return c.guard.Validate(ErrCancelOrderItemsCommandIsNotConstructed)
}

// CancelOrderCommand cancels every remaining item and moves the order to
// Cancelled.
type CancelOrderCommand struct {
	orderID kernel.UUID
	actor   kernel.Actor

	guard guard.ConstructorGuard
}

func NewCancelOrderCommand(orderID kernel.UUID, actor kernel.Actor) (CancelOrderCommand, error) {
	err := orderID.Validate()
	if actor == nil {
		err = errors.Join(err, errs.NewValueIsRequiredError("actor"))
	}
	if err != nil {
		return CancelOrderCommand{}, err
	}
	return CancelOrderCommand{orderID: orderID, actor: actor, guard: guard.NewConstructorGuard()}, nil
}

func (c CancelOrderCommand) OrderID() kernel.UUID { return c.orderID }
func (c CancelOrderCommand) Actor() kernel.Actor  { return c.actor }

func (c CancelOrderCommand) Validate() error {
	return c.guard.Validate(ErrCancelOrderCommandIsNotConstructed)
}
