package commands

import (
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/stock"
	"fulfillment/internal/pkg/guard"
)

var ErrRecordStockMovementCommandIsNotConstructed = errors.New(
	"RecordStockMovementCommand must be created via NewRecordStockMovementCommand constructor",
)

// RecordStockMovementCommand appends a movement to a variant's ledger directly,
// e.g. a RETURN received at the warehouse. Sales are recorded by order
// transitions only and are rejected here.
type RecordStockMovementCommand struct {
	variantID    kernel.UUID
	movementType stock.MovementType
	quantity     int
	orderRef     *kernel.UUID

	guard guard.ConstructorGuard
}

var ErrSaleMovementsAreRecordedByOrders = errors.New("SALE movements are recorded by order transitions only")

func NewRecordStockMovementCommand(
	variantID kernel.UUID,
	movementType stock.MovementType,
	quantity int,
	orderRef *kernel.UUID,
) (RecordStockMovementCommand, error) {
	var err error
	if vErr := variantID.Validate(); vErr != nil {
		err = errors.Join(err, vErr)
	}
	if vErr := movementType.Validate(); vErr != nil {
		err = errors.Join(err, vErr)
	}
	if movementType == stock.Sale {
		err = errors.Join(err, ErrSaleMovementsAreRecordedByOrders)
	}
	if err != nil {
		return RecordStockMovementCommand{}, err
	}

	return RecordStockMovementCommand{
		variantID:    variantID,
		movementType: movementType,
		quantity:     quantity,
		orderRef:     orderRef,
		guard:        guard.NewConstructorGuard(),
	}, nil
}

func (c RecordStockMovementCommand) VariantID() kernel.UUID           { return c.variantID }
func (c RecordStockMovementCommand) MovementType() stock.MovementType { return c.movementType }
func (c RecordStockMovementCommand) Quantity() int                    { return c.quantity }
func (c RecordStockMovementCommand) OrderRef() *kernel.UUID           { return c.orderRef }

func (c RecordStockMovementCommand) Validate() error {
	return c.guard.Validate(ErrRecordStockMovementCommandIsNotConstructed)
}
