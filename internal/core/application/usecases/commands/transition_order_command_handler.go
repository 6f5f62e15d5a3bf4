package commands

import (
	"context"
	"log/slog"

	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/core/ports"

	"go.opentelemetry.io/otel/attribute"
)

// TransitionOrderCommandHandler executes an order transition and the stock
// movements it causes in one transaction.
//
// The order lock is taken first, then the locks of the variants whose stock the
// transition moves. Guard, edge and permission failures are returned before
// anything is written.
type TransitionOrderCommandHandler struct {
	uowFactory UoWFactory
	locker     ports.AggregateLocker
	logger     *slog.Logger
}

func NewTransitionOrderCommandHandler(
	uowFactory UoWFactory,
	locker ports.AggregateLocker,
	logger *slog.Logger,
) TransitionOrderCommandHandler {
	return TransitionOrderCommandHandler{
		uowFactory: uowFactory,
		locker:     locker,
		logger:     logger.With("component", "TransitionOrderCommandHandler"),
	}
}

// Handle returns the order in its new state.
func (h TransitionOrderCommandHandler) Handle(ctx context.Context, command TransitionOrderCommand) (_ *order.Order, err error) {
	if err = command.Validate(); err != nil {
		return nil, err
	}

	ctx, span := tracer.Start(ctx, "TransitionOrder")
	span.SetAttributes(
		attribute.String("order.id", command.OrderID().String()),
		attribute.String("order.target_state", command.Target().String()),
	)
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

	orderRepo := uow.OrderRepository()
	variantRepo := uow.VariantRepository()

	o, err := orderRepo.GetForUpdate(ctx, command.OrderID())
	if err != nil {
		return nil, err
	}

	sm := services.NewOrderStateMachine()
	if err = o.ValidateTransition(command.Target(), command.Actor()); err != nil {
		return nil, err
	}

	ids := sm.StockAffected(o, command.Target())
	unlockVariants, err := lockVariants(ctx, h.locker, ids)
	if err != nil {
		return nil, err
	}
	defer unlockVariants()

	variants, err := loadVariants(ctx, variantRepo, ids)
	if err != nil {
		return nil, err
	}

	movements, err := sm.Transition(o, command.Target(), command.Actor(), variants)
	if err != nil {
		return nil, err
	}

	if err = saveVariants(ctx, variantRepo, variants); err != nil {
		return nil, err
	}
	if err = orderRepo.Update(ctx, o); err != nil {
		return nil, err
	}
	if err = uow.Commit(ctx); err != nil {
		h.logger.ErrorContext(ctx, "failed to commit order transition",
			"orderId", o.ID().String(), "target", command.Target().String(), "error", err)
		return nil, err
	}

	warnOversold(ctx, h.logger, o.ID(), movements, variants)
	return o, nil
}
