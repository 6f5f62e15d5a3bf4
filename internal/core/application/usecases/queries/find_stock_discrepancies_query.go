package queries

import (
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/guard"
)

var ErrFindStockDiscrepanciesQueryIsNotConstructed = errors.New(
	"FindStockDiscrepanciesQuery must be created via NewFindStockDiscrepanciesQuery constructor",
)

// FindStockDiscrepanciesQuery compares each tracked variant's stockOnHand with
// the sum of its ledger. The two only drift apart if rows were edited outside
// the application.
type FindStockDiscrepanciesQuery struct {
	guard guard.ConstructorGuard
}

func NewFindStockDiscrepanciesQuery() FindStockDiscrepanciesQuery {
	return FindStockDiscrepanciesQuery{guard: guard.NewConstructorGuard()}
}

func (q FindStockDiscrepanciesQuery) Validate() error {
	return q.guard.Validate(ErrFindStockDiscrepanciesQueryIsNotConstructed)
}

type FindStockDiscrepanciesQueryResponse struct {
	VariantID   kernel.UUID
	SKU         string
	StockOnHand int
	LedgerSum   int
}
