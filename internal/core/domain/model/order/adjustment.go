package order

import (
	"errors"
	"strings"

	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var ErrAdjustmentIsNotConstructed = errors.New("Adjustment must be created via NewAdjustment")

// Adjustment is a monetary delta on the order total produced by a promotion or
// shipping evaluator. Discounts are negative amounts.
type Adjustment struct {
	sourceID    string
	description string
	amount      int64

	guard guard.ConstructorGuard
}

// NewAdjustment creates an Adjustment. sourceID identifies the promotion or rule
// that produced it, e.g. "promotion:12".
func NewAdjustment(sourceID, description string, amount int64) (Adjustment, error) {
	sourceID = strings.TrimSpace(sourceID)
	if sourceID == "" {
		return Adjustment{}, errs.NewValueIsRequiredError("adjustment sourceId")
	}
	return Adjustment{
		sourceID:    sourceID,
		description: description,
		amount:      amount,
		guard:       guard.NewConstructorGuard(),
	}, nil
}

func (a Adjustment) Validate() error {
	return a.guard.Validate(ErrAdjustmentIsNotConstructed)
}

func (a Adjustment) SourceID() string    { return a.sourceID }
func (a Adjustment) Description() string { return a.description }
func (a Adjustment) Amount() int64       { return a.amount }
