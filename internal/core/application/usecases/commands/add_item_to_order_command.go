package commands

import (
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var ErrAddItemToOrderCommandIsNotConstructed = errors.New(
	"AddItemToOrderCommand must be created via NewAddItemToOrderCommand constructor",
)

// AddItemToOrderCommand adds units of a variant to an order, creating the order
// when the id is not known yet.
type AddItemToOrderCommand struct {
	orderID   kernel.UUID
	variantID kernel.UUID
	quantity  int

	guard guard.ConstructorGuard
}

func NewAddItemToOrderCommand(orderID, variantID kernel.UUID, quantity int) (AddItemToOrderCommand, error) {
	err := errors.Join(orderID.Validate(), variantID.Validate())
	if quantity <= 0 {
		err = errors.Join(err, errs.NewValueIsOutOfRangeError("quantity", quantity, 1, "+inf"))
	}
	if err != nil {
		return AddItemToOrderCommand{}, err
	}

	return AddItemToOrderCommand{
		orderID:   orderID,
		variantID: variantID,
		quantity:  quantity,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

func (c AddItemToOrderCommand) OrderID() kernel.UUID   { return c.orderID }
func (c AddItemToOrderCommand) VariantID() kernel.UUID { return c.variantID }
func (c AddItemToOrderCommand) Quantity() int          { return c.quantity }

func (c AddItemToOrderCommand) Validate() error {
	return c.guard.Validate(ErrAddItemToOrderCommandIsNotConstructed)
}
