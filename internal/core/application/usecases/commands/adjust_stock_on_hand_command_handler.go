package commands

import (
	"context"
	"log/slog"

	"fulfillment/internal/core/ports"

	"go.opentelemetry.io/otel/attribute"
)

// AdjustStockOnHandResult reports the counter after the adjustment and how many
// movements were recorded: 0 when the value was already current, else 1.
type AdjustStockOnHandResult struct {
	StockOnHand      int
	MovementsCreated int
}

// AdjustStockOnHandCommandHandler applies administrative stock corrections.
type AdjustStockOnHandCommandHandler struct {
	uowFactory VariantUoWFactory
	locker     ports.AggregateLocker
	logger     *slog.Logger
}

func NewAdjustStockOnHandCommandHandler(
	uowFactory VariantUoWFactory,
	locker ports.AggregateLocker,
	logger *slog.Logger,
) AdjustStockOnHandCommandHandler {
	return AdjustStockOnHandCommandHandler{
		uowFactory: uowFactory,
		locker:     locker,
		logger:     logger.With("component", "AdjustStockOnHandCommandHandler"),
	}
}

func (h AdjustStockOnHandCommandHandler) Handle(
	ctx context.Context,
	command AdjustStockOnHandCommand,
) (_ AdjustStockOnHandResult, err error) {
	if err = command.Validate(); err != nil {
		return AdjustStockOnHandResult{}, err
	}

	ctx, span := tracer.Start(ctx, "AdjustStockOnHand")
	span.SetAttributes(attribute.String("variant.id", command.VariantID().String()))
	defer func() { endSpan(span, err) }()

	unlock, err := h.locker.Lock(ctx, ports.VariantLockKey(command.VariantID().String()))
	if err != nil {
		return AdjustStockOnHandResult{}, err
	}
	defer unlock()

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return AdjustStockOnHandResult{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	repo := uow.VariantRepository()
	variants, err := repo.GetForUpdate(ctx, command.VariantID())
	if err != nil {
		return AdjustStockOnHandResult{}, err
	}
	v := variants[0]

	movement, err := v.SetStockOnHand(command.NewValue())
	if err != nil {
		return AdjustStockOnHandResult{}, err
	}
	if movement == nil {
		return AdjustStockOnHandResult{StockOnHand: v.StockOnHand()}, nil
	}

	if err = repo.Update(ctx, v); err != nil {
		return AdjustStockOnHandResult{}, err
	}
	if err = uow.Commit(ctx); err != nil {
		h.logger.ErrorContext(ctx, "failed to commit stock adjustment",
			"variantId", v.ID().String(), "error", err)
		return AdjustStockOnHandResult{}, err
	}

	return AdjustStockOnHandResult{StockOnHand: v.StockOnHand(), MovementsCreated: 1}, nil
}
