package commands

import (
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/guard"
)

var ErrAdjustStockOnHandCommandIsNotConstructed = errors.New(
	"AdjustStockOnHandCommand must be created via NewAdjustStockOnHandCommand constructor",
)

// AdjustStockOnHandCommand sets a variant's stock on hand to an absolute value.
// Negative values are rejected by the variant, not here, so the caller gets the
// NegativeStockRejected kind.
type AdjustStockOnHandCommand struct {
	variantID kernel.UUID
	newValue  int

	guard guard.ConstructorGuard
}

func NewAdjustStockOnHandCommand(variantID kernel.UUID, newValue int) (AdjustStockOnHandCommand, error) {
	if err := variantID.Validate(); err != nil {
		return AdjustStockOnHandCommand{}, err
	}
	return AdjustStockOnHandCommand{
		variantID: variantID,
		newValue:  newValue,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

func (c AdjustStockOnHandCommand) VariantID() kernel.UUID { return c.variantID }
func (c AdjustStockOnHandCommand) NewValue() int          { return c.newValue }

func (c AdjustStockOnHandCommand) Validate() error {
	return c.guard.Validate(ErrAdjustStockOnHandCommandIsNotConstructed)
}
