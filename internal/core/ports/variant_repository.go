package ports

import (
	"context"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/stock"
)

// VariantRepository persists variants together with their stock ledger.
//
// The ledger is append-only: Add and Update insert the variant's uncommitted
// movements in the same transaction as the counter and never change or remove
// stored movements.
type VariantRepository interface {
	Add(ctx context.Context, aggregate *stock.Variant) error
	Update(ctx context.Context, aggregate *stock.Variant) error

	// Get retrieves a variant by id. Returns errs.ObjectNotFoundError if it does not exist.
	Get(ctx context.Context, id kernel.UUID) (*stock.Variant, error)

	// GetForUpdate retrieves and locks the given variants, in id order. It fails
	// with errs.ObjectNotFoundError if any of them does not exist.
	GetForUpdate(ctx context.Context, ids ...kernel.UUID) ([]*stock.Variant, error)
}
