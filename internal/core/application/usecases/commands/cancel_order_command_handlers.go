package commands

import (
	"context"
	"log/slog"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/stock"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/core/ports"
)

// CancelOrderCommandHandler cancels items or whole orders. Items sold before the
// cancellation are returned to stock in the same transaction.
type CancelOrderCommandHandler struct {
	uowFactory UoWFactory
	locker     ports.AggregateLocker
	logger     *slog.Logger
}

func NewCancelOrderCommandHandler(uowFactory UoWFactory, locker ports.AggregateLocker, logger *slog.Logger) CancelOrderCommandHandler {
	return CancelOrderCommandHandler{
		uowFactory: uowFactory,
		locker:     locker,
		logger:     logger.With("component", "CancelOrderCommandHandler"),
	}
}

func (h CancelOrderCommandHandler) HandleCancelItems(
	ctx context.Context,
	command CancelOrderItemsCommand,
) (_ *order.Order, err error) {
	if err = command.Validate(); err != nil {
		return nil, err
	}

	ctx, span := tracer.Start(ctx, "CancelOrderItems")
	defer func() { endSpan(span, err) }()

	return h.cancel(ctx, command.OrderID(), func(o *order.Order, variants services.Variants) ([]*stock.Movement, error) {
		return services.NewOrderStateMachine().CancelItems(o, command.ItemIDs(), variants)
	})
}

func (h CancelOrderCommandHandler) HandleCancelOrder(ctx context.Context, command CancelOrderCommand) (_ *order.Order, err error) {
	if err = command.Validate(); err != nil {
		return nil, err
	}

	ctx, span := tracer.Start(ctx, "CancelOrder")
	defer func() { endSpan(span, err) }()

	return h.cancel(ctx, command.OrderID(), func(o *order.Order, variants services.Variants) ([]*stock.Movement, error) {
		return services.NewOrderStateMachine().CancelOrder(o, command.Actor(), variants)
	})
}

func (h CancelOrderCommandHandler) cancel(
	ctx context.Context,
	orderID kernel.UUID,
	apply func(o *order.Order, variants services.Variants) ([]*stock.Movement, error),
) (*order.Order, error) {
	unlock, err := lockOrder(ctx, h.locker, orderID)
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

	orderRepo := uow.OrderRepository()
	variantRepo := uow.VariantRepository()

	o, err := orderRepo.GetForUpdate(ctx, orderID)
	if err != nil {
		return nil, err
	}

	ids := services.NewOrderStateMachine().StockAffectedByCancellation(o)
	unlockVariants, err := lockVariants(ctx, h.locker, ids)
	if err != nil {
		return nil, err
	}
	defer unlockVariants()

	variants, err := loadVariants(ctx, variantRepo, ids)
	if err != nil {
		return nil, err
	}

	if _, err = apply(o, variants); err != nil {
		return nil, err
	}

	if err = saveVariants(ctx, variantRepo, variants); err != nil {
		return nil, err
	}
	if err = orderRepo.Update(ctx, o); err != nil {
		return nil, err
	}
	if err = uow.Commit(ctx); err != nil {
		h.logger.ErrorContext(ctx, "failed to commit cancellation", "orderId", orderID.String(), "error", err)
		return nil, err
	}
	return o, nil
}
