package commands

import (
	"context"

	"fulfillment/internal/core/domain/model/stock"
	"fulfillment/internal/core/ports"

	"go.opentelemetry.io/otel/attribute"
)

// RecordStockMovementResult is the movement that was appended and the counter
// after applying it.
type RecordStockMovementResult struct {
	StockOnHand int
	Movement    *stock.Movement
}

// RecordStockMovementCommandHandler appends administrative ledger movements.
type RecordStockMovementCommandHandler struct {
	uowFactory VariantUoWFactory
	locker     ports.AggregateLocker
}

func NewRecordStockMovementCommandHandler(
	uowFactory VariantUoWFactory,
	locker ports.AggregateLocker,
) RecordStockMovementCommandHandler {
	return RecordStockMovementCommandHandler{uowFactory: uowFactory, locker: locker}
}

func (h RecordStockMovementCommandHandler) Handle(
	ctx context.Context,
	command RecordStockMovementCommand,
) (_ RecordStockMovementResult, err error) {
	if err = command.Validate(); err != nil {
		return RecordStockMovementResult{}, err
	}

	ctx, span := tracer.Start(ctx, "RecordStockMovement")
	span.SetAttributes(
		attribute.String("variant.id", command.VariantID().String()),
		attribute.String("movement.type", command.MovementType().String()),
		attribute.Int("movement.quantity", command.Quantity()),
	)
	defer func() { endSpan(span, err) }()

	unlock, err := h.locker.Lock(ctx, ports.VariantLockKey(command.VariantID().String()))
	if err != nil {
		return RecordStockMovementResult{}, err
	}
	defer unlock()

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return RecordStockMovementResult{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	repo := uow.VariantRepository()
	variants, err := repo.GetForUpdate(ctx, command.VariantID())
	if err != nil {
		return RecordStockMovementResult{}, err
	}
	v := variants[0]

	movement, err := v.RecordMovement(command.MovementType(), command.Quantity(), command.OrderRef())
	if err != nil {
		return RecordStockMovementResult{}, err
	}

	if err = repo.Update(ctx, v); err != nil {
		return RecordStockMovementResult{}, err
	}
	if err = uow.Commit(ctx); err != nil {
		return RecordStockMovementResult{}, err
	}

	return RecordStockMovementResult{StockOnHand: v.StockOnHand(), Movement: movement}, nil
}
