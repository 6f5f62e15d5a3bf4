package queries

import (
	"errors"
	"math"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/stock"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

const (
	DefaultPageSize = 50
	MaxPageSize     = 500
)

var ErrListStockMovementsQueryIsNotConstructed = errors.New(
	"ListStockMovementsQuery must be created via NewListStockMovementsQuery constructor",
)

// ListStockMovementsQuery pages through a variant's ledger in recording order.
// Types, when given, restricts the page to those movement types; no other
// filtering or reordering is applied.
type ListStockMovementsQuery struct {
	variantID kernel.UUID
	page      int
	pageSize  int
	types     []stock.MovementType

	guard guard.ConstructorGuard
}

// NewListStockMovementsQuery builds the query. page is 1-based; a pageSize of 0
// selects DefaultPageSize.
func NewListStockMovementsQuery(
	variantID kernel.UUID,
	page, pageSize int,
	types ...stock.MovementType,
) (ListStockMovementsQuery, error) {
	if pageSize == 0 {
		pageSize = DefaultPageSize
	}

	var err error
	if vErr := variantID.Validate(); vErr != nil {
		err = errors.Join(err, vErr)
	}
	if page < 1 {
		err = errors.Join(err, errs.NewValueIsOutOfRangeError("page", page, 1, math.MaxInt))
	}
	if pageSize < 1 || pageSize > MaxPageSize {
		err = errors.Join(err, errs.NewValueIsOutOfRangeError("pageSize", pageSize, 1, MaxPageSize))
	}
	for _, t := range types {
		if vErr := t.Validate(); vErr != nil {
			err = errors.Join(err, vErr)
		}
	}
	if err != nil {
		return ListStockMovementsQuery{}, err
	}

	return ListStockMovementsQuery{
		variantID: variantID,
		page:      page,
		pageSize:  pageSize,
		types:     append([]stock.MovementType(nil), types...),
		guard:     guard.NewConstructorGuard(),
	}, nil
}

func (q ListStockMovementsQuery) VariantID() kernel.UUID { return q.variantID }
func (q ListStockMovementsQuery) Page() int              { return q.page }
func (q ListStockMovementsQuery) PageSize() int          { return q.pageSize }

func (q ListStockMovementsQuery) Types() []stock.MovementType {
	return append([]stock.MovementType(nil), q.types...)
}

func (q ListStockMovementsQuery) Validate() error {
	return q.guard.Validate(ErrListStockMovementsQueryIsNotConstructed)
}

// ListStockMovementsQueryResponse is one page of the ledger.
type ListStockMovementsQueryResponse struct {
	Items      []StockMovementView
	TotalItems int64
	Page       int
	PageSize   int
}

type StockMovementView struct {
	ID        kernel.UUID
	Sequence  int64
	Type      string
	Quantity  int
	OrderRef  *kernel.UUID
	CreatedAt time.Time
}
