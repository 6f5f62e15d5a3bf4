package commands

import (
	"context"
	"errors"
	"fmt"

	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
)

// AddItemToOrderCommandHandler snapshots the variant price into an order line.
// An unknown order id starts a new order in AddingItems, priced in the
// variant's currency.
type AddItemToOrderCommandHandler struct {
	uowFactory UoWFactory
	locker     ports.AggregateLocker
}

func NewAddItemToOrderCommandHandler(uowFactory UoWFactory, locker ports.AggregateLocker) AddItemToOrderCommandHandler {
	return AddItemToOrderCommandHandler{uowFactory: uowFactory, locker: locker}
}

func (h AddItemToOrderCommandHandler) Handle(ctx context.Context, command AddItemToOrderCommand) (_ *order.Order, err error) {
	if err = command.Validate(); err != nil {
		return nil, err
	}

	ctx, span := tracer.Start(ctx, "AddItemToOrder")
	defer func() { endSpan(span, err) }()

	unlock, err := lockOrder(ctx, h.locker, command.OrderID())
	if err != nil {
		return nil, err
	}
	defer unlock()

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	v, err := uow.VariantRepository().Get(ctx, command.VariantID())
	if err != nil {
		return nil, err
	}

	orderRepo := uow.OrderRepository()
	isNew := false
	o, err := orderRepo.GetForUpdate(ctx, command.OrderID())
	switch {
	case errors.Is(err, errs.ErrObjectNotFound):
		if o, err = order.NewOrder(command.OrderID(), v.Currency()); err != nil {
			return nil, err
		}
		isNew = true
	case err != nil:
		return nil, err
	}

	if o.Currency() != v.Currency() {
		return nil, errs.NewValueIsInvalidErrorWithCause("currency",
			fmt.Errorf("variant is priced in %s, the order in %s", v.Currency(), o.Currency()))
	}
	if _, err = o.AddItem(v.ID(), v.Price(), command.Quantity()); err != nil {
		return nil, err
	}

	if isNew {
		err = orderRepo.Add(ctx, o)
	} else {
		err = orderRepo.Update(ctx, o)
	}
	if err != nil {
		return nil, err
	}
	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	return o, nil
}
