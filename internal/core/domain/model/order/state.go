package order

import (
	"fmt"

	"fulfillment/internal/pkg/errs"
)

// State is the lifecycle state of an order.
//
// Main path:
//
//	AddingItems ──> ArrangingPayment ──> PaymentAuthorized ──┬──> PartiallyFulfilled ──> Fulfilled
//	     ^                 │         └─> PaymentSettled ─────┤
//	     └─────────────────┘                                  └──> PartiallyShipped ──> Shipped
//	                                                                     └──> PartiallyDelivered ──> Delivered
//
// Cancelled is reachable from most non-terminal states. Delivered and Cancelled
// are terminal. The full edge set lives in transitions.go.
type State int

const (
	// Unknown represents an invalid or undefined state.
	// This value (0) helps catch uninitialized State values.
	Unknown State = iota

	// AddingItems is the initial state of an order created by its first item add.
	AddingItems

	// ArrangingPayment means checkout is complete and payments may be added.
	ArrangingPayment

	// PaymentAuthorized means authorized or settled payments cover the total.
	PaymentAuthorized

	// PaymentSettled means settled payments alone cover the total.
	PaymentSettled

	PartiallyFulfilled
	Fulfilled
	PartiallyShipped
	Shipped
	PartiallyDelivered

	// Delivered is terminal.
	Delivered

	// Cancelled is terminal.
	Cancelled
)

func getStateStrings() map[State]string {
	return map[State]string{
		Unknown:            "Unknown",
		AddingItems:        "AddingItems",
		ArrangingPayment:   "ArrangingPayment",
		PaymentAuthorized:  "PaymentAuthorized",
		PaymentSettled:     "PaymentSettled",
		PartiallyFulfilled: "PartiallyFulfilled",
		Fulfilled:          "Fulfilled",
		PartiallyShipped:   "PartiallyShipped",
		Shipped:            "Shipped",
		PartiallyDelivered: "PartiallyDelivered",
		Delivered:          "Delivered",
		Cancelled:          "Cancelled",
	}
}

// Validate checks if the State value is one of the declared states.
// Unknown (0) and any other values are invalid.
func (s State) Validate() error {
	if _, ok := getStateStrings()[s]; !ok || s == Unknown {
		return errs.NewValueIsInvalidErrorWithCause("state", fmt.Errorf("%d is not a valid state", s))
	}
	return nil
}

// String returns the state name as used in messages and persistence.
func (s State) String() string {
	if str, ok := getStateStrings()[s]; ok {
		return str
	}
	return "Unknown"
}

// ParseState maps a state name such as "PaymentSettled" to its State.
func ParseState(name string) (State, error) {
	for s, str := range getStateStrings() {
		if s != Unknown && str == name {
			return s, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("state", fmt.Errorf("%q is not a valid state", name))
}

// IsTerminal reports whether no transition leaves s.
func (s State) IsTerminal() bool {
	return s == Delivered || s == Cancelled
}

// isPaymentState reports whether entering s is a sale point.
func (s State) isPaymentState() bool {
	return s == PaymentAuthorized || s == PaymentSettled
}
