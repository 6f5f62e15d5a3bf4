package queries

import (
	"context"

	"fulfillment/internal/core/domain/model/kernel"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FindStockDiscrepanciesQueryHandler struct {
	db *gorm.DB
}

func NewFindStockDiscrepanciesQueryHandler(db *gorm.DB) FindStockDiscrepanciesQueryHandler {
	return FindStockDiscrepanciesQueryHandler{db: db}
}

// Handle returns the mismatching tracked variants ordered by SKU. Untracked
// variants are skipped: their counter ignores sales and cancellations.
func (h FindStockDiscrepanciesQueryHandler) Handle(
	ctx context.Context,
	query FindStockDiscrepanciesQuery,
) ([]FindStockDiscrepanciesQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	result := make([]FindStockDiscrepanciesQueryResponse, 0)

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			v.id,
			v.sku,
			v.stock_on_hand,
			COALESCE(SUM(m.quantity), 0) AS ledger_sum
		FROM variants v
		LEFT JOIN stock_movements m ON m.variant_id = v.id
		WHERE v.track_inventory
		GROUP BY v.id, v.sku, v.stock_on_hand
		HAVING v.stock_on_hand <> COALESCE(SUM(m.quantity), 0)
		ORDER BY v.sku
	`).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var d FindStockDiscrepanciesQueryResponse
		var id uuid.UUID

		if err = rows.Scan(&id, &d.SKU, &d.StockOnHand, &d.LedgerSum); err != nil {
			return nil, err
		}

		variantID, idErr := kernel.UUIDFromBytes(id[:])
		if idErr != nil {
			return nil, idErr
		}
		d.VariantID = variantID
		result = append(result, d)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}
