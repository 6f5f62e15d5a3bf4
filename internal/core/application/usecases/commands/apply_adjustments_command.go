package commands

import (
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/guard"
)

var ErrApplyAdjustmentsCommandIsNotConstructed = errors.New(
	"ApplyAdjustmentsCommand must be created via NewApplyAdjustmentsCommand constructor",
)

// ApplyAdjustmentsCommand replaces an order's adjustments with the list produced
// by the promotion and shipping evaluators. An empty list clears them.
type ApplyAdjustmentsCommand struct {
	orderID     kernel.UUID
	adjustments []order.Adjustment

	guard guard.ConstructorGuard
}

func NewApplyAdjustmentsCommand(orderID kernel.UUID, adjustments []order.Adjustment) (ApplyAdjustmentsCommand, error) {
	err := orderID.Validate()
	for _, a := range adjustments {
		if vErr := a.Validate(); vErr != nil {
			err = errors.Join(err, vErr)
		}
	}
	if err != nil {
		return ApplyAdjustmentsCommand{}, err
	}

	return ApplyAdjustmentsCommand{
		orderID:     orderID,
		adjustments: append([]order.Adjustment(nil), adjustments...),
		guard:       guard.NewConstructorGuard(),
	}, nil
}

func (c ApplyAdjustmentsCommand) OrderID() kernel.UUID { return c.orderID }

func (c ApplyAdjustmentsCommand) Adjustments() []order.Adjustment {
	return append([]order.Adjustment(nil), c.adjustments...)
}

func (c ApplyAdjustmentsCommand) Validate() error {
	return c.guard.Validate(ErrApplyAdjustmentsCommandIsNotConstructed)
}
