package services

import (
	"fulfillment/internal/core/domain/model/order"
)

// AdjustmentApplier folds externally computed promotion and shipping adjustments
// into an order. It does not evaluate promotions; it only applies their result.
//
// Apply must run again whenever order contents change and before any transition
// guarded by payment coverage, so guards never see a stale total.
type AdjustmentApplier struct{}

func NewAdjustmentApplier() AdjustmentApplier {
	return AdjustmentApplier{}
}

// Apply replaces the adjustment set of o with adjustments and recomputes
// adjustmentTotal and total. The order is unchanged on error.
func (a AdjustmentApplier) Apply(o *order.Order, adjustments []order.Adjustment) error {
	if err := o.Validate(); err != nil {
		return err
	}
	return o.ReplaceAdjustments(adjustments)
}
