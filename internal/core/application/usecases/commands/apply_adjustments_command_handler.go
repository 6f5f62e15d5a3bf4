package commands

import (
	"context"

	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/core/ports"
)

// ApplyAdjustmentsCommandHandler applies adjustments through the AdjustmentApplier.
type ApplyAdjustmentsCommandHandler struct {
	uowFactory OrderUoWFactory
	locker     ports.AggregateLocker
	applier    services.AdjustmentApplier
}

func NewApplyAdjustmentsCommandHandler(uowFactory OrderUoWFactory, locker ports.AggregateLocker) ApplyAdjustmentsCommandHandler {
	return ApplyAdjustmentsCommandHandler{
		uowFactory: uowFactory,
		locker:     locker,
		applier:    services.NewAdjustmentApplier(),
	}
}

// Handle returns the order with recomputed totals.
func (h ApplyAdjustmentsCommandHandler) Handle(ctx context.Context, command ApplyAdjustmentsCommand) (_ *order.Order, err error) {
	if err = command.Validate(); err != nil {
		return nil, err
	}

	ctx, span := tracer.Start(ctx, "ApplyAdjustments")
	defer func() { endSpan(span, err) }()

	return updateOrder(ctx, h.uowFactory, h.locker, command.OrderID(), func(o *order.Order) error {
		return h.applier.Apply(o, command.Adjustments())
	})
}
