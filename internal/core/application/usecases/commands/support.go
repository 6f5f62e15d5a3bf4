package commands

import (
	"context"
	"log/slog"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/stock"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/core/ports"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("fulfillment/commands")

// endSpan records err on span and ends it.
func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func lockOrder(ctx context.Context, locker ports.AggregateLocker, id kernel.UUID) (func(), error) {
	return locker.Lock(ctx, ports.OrderLockKey(id.String()))
}

func lockVariants(ctx context.Context, locker ports.AggregateLocker, ids []kernel.UUID) (func(), error) {
	if len(ids) == 0 {
		return func() {}, nil
	}
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, ports.VariantLockKey(id.String()))
	}
	return locker.Lock(ctx, keys...)
}

// loadVariants reads and row-locks the variants inside the current transaction.
func loadVariants(ctx context.Context, repo ports.VariantRepository, ids []kernel.UUID) (services.Variants, error) {
	variants := services.Variants{}
	if len(ids) == 0 {
		return variants, nil
	}
	loaded, err := repo.GetForUpdate(ctx, ids...)
	if err != nil {
		return nil, err
	}
	for _, v := range loaded {
		variants[v.ID()] = v
	}
	return variants, nil
}

// saveVariants stores the variants that recorded movements.
func saveVariants(ctx context.Context, repo ports.VariantRepository, variants services.Variants) error {
	for _, v := range variants {
		if len(v.UncommittedMovements()) == 0 {
			continue
		}
		if err := repo.Update(ctx, v); err != nil {
			return err
		}
	}
	return nil
}

// warnOversold logs tracked variants that a sale drove below zero. Overselling is
// allowed; the warning is the backorder signal.
func warnOversold(ctx context.Context, logger *slog.Logger, orderID kernel.UUID, movements []*stock.Movement, variants services.Variants) {
	for _, m := range movements {
		if m.Type() != stock.Sale {
			continue
		}
		v := variants[m.VariantID()]
		if v != nil && v.TracksInventory() && v.StockOnHand() < 0 {
			logger.WarnContext(ctx, "variant oversold",
				"orderId", orderID.String(),
				"variantId", v.ID().String(),
				"sku", v.SKU(),
				"stockOnHand", v.StockOnHand())
		}
	}
}

// updateOrder runs mutate on the locked order inside a transaction and stores the
// result. Used by commands that change an order without moving stock.
func updateOrder(
	ctx context.Context,
	uowFactory OrderUoWFactory,
	locker ports.AggregateLocker,
	orderID kernel.UUID,
	mutate func(o *order.Order) error,
) (*order.Order, error) {
	unlock, err := lockOrder(ctx, locker, orderID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	uow := uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	repo := uow.OrderRepository()
	o, err := repo.GetForUpdate(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err = mutate(o); err != nil {
		return nil, err
	}
	if err = repo.Update(ctx, o); err != nil {
		return nil, err
	}
	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}
	return o, nil
}
