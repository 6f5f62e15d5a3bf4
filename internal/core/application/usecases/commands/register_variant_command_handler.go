package commands

import (
	"context"

	"fulfillment/internal/core/domain/model/stock"
)

// RegisterVariantCommandHandler stores a new variant with its opening stock.
type RegisterVariantCommandHandler struct {
	uowFactory VariantUoWFactory
}

func NewRegisterVariantCommandHandler(uowFactory VariantUoWFactory) RegisterVariantCommandHandler {
	return RegisterVariantCommandHandler{uowFactory: uowFactory}
}

func (h RegisterVariantCommandHandler) Handle(ctx context.Context, command RegisterVariantCommand) (_ *stock.Variant, err error) {
	if err = command.Validate(); err != nil {
		return nil, err
	}

	ctx, span := tracer.Start(ctx, "RegisterVariant")
	defer func() { endSpan(span, err) }()

	v, err := stock.NewVariant(
		command.VariantID(),
		command.SKU(),
		command.Price(),
		command.Currency(),
		command.TrackInventory(),
	)
	if err != nil {
		return nil, err
	}
	if _, err = v.SetStockOnHand(command.InitialStock()); err != nil {
		return nil, err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err = uow.VariantRepository().Add(ctx, v); err != nil {
		return nil, err
	}
	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	return v, nil
}
