package commands

import (
	"context"

	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/core/ports"
)

type CreateFulfillmentResult struct {
	Order       *order.Order
	Fulfillment *order.Fulfillment
}

// FulfillmentCommandHandler records shipments and their progress. After each
// change the order follows its fulfillment coverage when the matching edge
// exists, on behalf of the system actor.
type FulfillmentCommandHandler struct {
	uowFactory OrderUoWFactory
	locker     ports.AggregateLocker
}

func NewFulfillmentCommandHandler(uowFactory OrderUoWFactory, locker ports.AggregateLocker) FulfillmentCommandHandler {
	return FulfillmentCommandHandler{uowFactory: uowFactory, locker: locker}
}

func (h FulfillmentCommandHandler) HandleCreate(
	ctx context.Context,
	command CreateFulfillmentCommand,
) (_ CreateFulfillmentResult, err error) {
	if err = command.Validate(); err != nil {
		return CreateFulfillmentResult{}, err
	}

	ctx, span := tracer.Start(ctx, "CreateFulfillment")
	defer func() { endSpan(span, err) }()

	var f *order.Fulfillment
	o, err := updateOrder(ctx, h.uowFactory, h.locker, command.OrderID(), func(o *order.Order) error {
		var cErr error
		if f, cErr = o.CreateFulfillment(command.ItemIDs(), command.Method(), command.TrackingCode()); cErr != nil {
			return cErr
		}
		_, cErr = services.NewOrderStateMachine().AdvanceAfterFulfillment(o)
		return cErr
	})
	if err != nil {
		return CreateFulfillmentResult{}, err
	}
	return CreateFulfillmentResult{Order: o, Fulfillment: f}, nil
}

func (h FulfillmentCommandHandler) HandleTransition(
	ctx context.Context,
	command TransitionFulfillmentCommand,
) (_ *order.Order, err error) {
	if err = command.Validate(); err != nil {
		return nil, err
	}

	ctx, span := tracer.Start(ctx, "TransitionFulfillment")
	defer func() { endSpan(span, err) }()

	return updateOrder(ctx, h.uowFactory, h.locker, command.OrderID(), func(o *order.Order) error {
		if tErr := o.TransitionFulfillment(command.FulfillmentID(), command.Target()); tErr != nil {
			return tErr
		}
		_, tErr := services.NewOrderStateMachine().AdvanceAfterFulfillment(o)
		return tErr
	})
}
