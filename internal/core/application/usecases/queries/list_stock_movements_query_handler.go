package queries

import (
	"context"

	"fulfillment/internal/adapters/out/postgres/stockrepo"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

type ListStockMovementsQueryHandler struct {
	db *gorm.DB
}

func NewListStockMovementsQueryHandler(db *gorm.DB) ListStockMovementsQueryHandler {
	return ListStockMovementsQueryHandler{db: db}
}

// Handle returns the requested page ordered by sequence, ties broken by id. A
// page past the end is empty, with TotalItems still set.
func (h ListStockMovementsQueryHandler) Handle(
	ctx context.Context,
	query ListStockMovementsQuery,
) (*ListStockMovementsQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	types := make([]string, 0, len(query.Types()))
	for _, t := range query.Types() {
		types = append(types, t.String())
	}
	filter := pq.Array(types)

	db := h.db.WithContext(ctx)

	var total int64
	err := db.Raw(`
		SELECT count(*)
		FROM stock_movements
		WHERE variant_id = ?
		  AND (cardinality(?::text[]) = 0 OR type = ANY(?::text[]))
	`, query.VariantID().Bytes(), filter, filter).Scan(&total).Error
	if err != nil {
		return nil, err
	}

	var rows []stockrepo.StockMovementDTO
	err = db.Raw(`
		SELECT id, sequence, variant_id, type, quantity, order_ref, idempotency_key, created_at
		FROM stock_movements
		WHERE variant_id = ?
		  AND (cardinality(?::text[]) = 0 OR type = ANY(?::text[]))
		ORDER BY sequence, id
		LIMIT ? OFFSET ?
	`, query.VariantID().Bytes(), filter, filter,
		query.PageSize(), (query.Page()-1)*query.PageSize()).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	resp := &ListStockMovementsQueryResponse{
		Items:      make([]StockMovementView, 0, len(rows)),
		TotalItems: total,
		Page:       query.Page(),
		PageSize:   query.PageSize(),
	}
	for _, row := range rows {
		m, mErr := stockrepo.MovementToDomain(row)
		if mErr != nil {
			return nil, mErr
		}
		resp.Items = append(resp.Items, StockMovementView{
			ID:        m.ID(),
			Sequence:  m.Sequence(),
			Type:      m.Type().String(),
			Quantity:  m.Quantity(),
			OrderRef:  m.OrderRef(),
			CreatedAt: m.CreatedAt(),
		})
	}

	return resp, nil
}
