package stock

import (
	"fmt"

	"fulfillment/internal/pkg/errs"
)

// MovementType classifies a ledger entry.
type MovementType int

const (
	UnknownMovement MovementType = iota
	Adjustment
	Sale
	Cancellation
	Return
)

func getMovementTypeStrings() map[MovementType]string {
	return map[MovementType]string{
		Adjustment:   "ADJUSTMENT",
		Sale:         "SALE",
		Cancellation: "CANCELLATION",
		Return:       "RETURN",
	}
}

func (t MovementType) String() string {
	if s, ok := getMovementTypeStrings()[t]; ok {
		return s
	}
	return "UNKNOWN"
}

func (t MovementType) Validate() error {
	if _, ok := getMovementTypeStrings()[t]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("movement type", fmt.Errorf("%d is not a valid movement type", t))
	}
	return nil
}

// ParseMovementType maps "SALE", "RETURN", ... to a MovementType.
func ParseMovementType(s string) (MovementType, error) {
	for t, name := range getMovementTypeStrings() {
		if name == s {
			return t, nil
		}
	}
	return UnknownMovement, errs.NewValueIsInvalidErrorWithCause("movement type", fmt.Errorf("%q is not a valid movement type", s))
}

// validateQuantity enforces the sign convention of each type.
func (t MovementType) validateQuantity(quantity int) error {
	switch t {
	case Sale:
		if quantity >= 0 {
			return errs.NewValueIsOutOfRangeError("quantity", quantity, "-inf", -1)
		}
	case Cancellation, Return:
		if quantity <= 0 {
			return errs.NewValueIsOutOfRangeError("quantity", quantity, 1, "+inf")
		}
	case Adjustment:
		if quantity == 0 {
			return errs.NewValueIsInvalidErrorWithCause("quantity", fmt.Errorf("adjustment of 0 records nothing"))
		}
	case UnknownMovement:
		return t.Validate()
	}
	return nil
}

// requiresOrder reports whether movements of this type must reference an order.
func (t MovementType) requiresOrder() bool {
	return t == Sale || t == Cancellation || t == Return
}
