package order

import (
	"fmt"
	"slices"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
)

// edge is one declared transition. Any of permissions lets an actor take it;
// guard returns the unmet precondition, or "" when the edge may be taken.
type edge struct {
	permissions []kernel.Permission
	guard       func(o *Order, to State) string
}

var (
	customer = []kernel.Permission{kernel.PermissionOwner, kernel.PermissionUpdateOrder}
	admin    = []kernel.Permission{kernel.PermissionUpdateOrder}
)

// transitions is the static edge table. A target missing from a state's row is
// unreachable from that state, whatever the guards say.
var transitions = map[State]map[State]edge{
	AddingItems: {
		ArrangingPayment: {customer, checkoutComplete},
		Cancelled:        {customer, allItemsCancelled},
	},
	ArrangingPayment: {
		PaymentAuthorized: {admin, coveredBy(PaymentStateAuthorized, PaymentStateSettled)},
		PaymentSettled:    {admin, coveredBy(PaymentStateSettled)},
		AddingItems:       {customer, nil},
		Cancelled:         {admin, allItemsCancelled},
	},
	PaymentAuthorized: {
		PaymentSettled:     {admin, coveredBy(PaymentStateSettled)},
		PartiallyFulfilled: {admin, someItemsReached(FulfillmentPending, "fulfilled")},
		Fulfilled:          {admin, allItemsReached(FulfillmentPending, "fulfilled")},
		PartiallyShipped:   {admin, someItemsReached(FulfillmentShipped, "shipped")},
		Shipped:            {admin, allItemsReached(FulfillmentShipped, "shipped")},
		Cancelled:          {admin, allItemsCancelled},
	},
	PaymentSettled: {
		PartiallyFulfilled: {admin, someItemsReached(FulfillmentPending, "fulfilled")},
		Fulfilled:          {admin, allItemsReached(FulfillmentPending, "fulfilled")},
		PartiallyShipped:   {admin, someItemsReached(FulfillmentShipped, "shipped")},
		Shipped:            {admin, allItemsReached(FulfillmentShipped, "shipped")},
		Cancelled:          {admin, allItemsCancelled},
	},
	PartiallyFulfilled: {
		Fulfilled:        {admin, allItemsReached(FulfillmentPending, "fulfilled")},
		PartiallyShipped: {admin, someItemsReached(FulfillmentShipped, "shipped")},
		Shipped:          {admin, allItemsReached(FulfillmentShipped, "shipped")},
		Cancelled:        {admin, allItemsCancelled},
	},
	Fulfilled: {
		PartiallyShipped: {admin, someItemsReached(FulfillmentShipped, "shipped")},
		Shipped:          {admin, allItemsReached(FulfillmentShipped, "shipped")},
		Cancelled:        {admin, allItemsCancelled},
	},
	PartiallyShipped: {
		Shipped:            {admin, allItemsReached(FulfillmentShipped, "shipped")},
		PartiallyDelivered: {admin, someItemsReached(FulfillmentDelivered, "delivered")},
		Delivered:          {admin, allItemsReached(FulfillmentDelivered, "delivered")},
		Cancelled:          {admin, allItemsCancelled},
	},
	Shipped: {
		PartiallyDelivered: {admin, someItemsReached(FulfillmentDelivered, "delivered")},
		Delivered:          {admin, allItemsReached(FulfillmentDelivered, "delivered")},
		Cancelled:          {admin, allItemsCancelled},
	},
	PartiallyDelivered: {
		Delivered: {admin, allItemsReached(FulfillmentDelivered, "delivered")},
		Cancelled: {admin, allItemsCancelled},
	},
}

// HasEdge reports whether a transition from -> to is declared.
func HasEdge(from, to State) bool {
	_, ok := transitions[from][to]
	return ok
}

// NextStates lists the states declared as reachable from s, in enum order.
func NextStates(s State) []State {
	out := make([]State, 0, len(transitions[s]))
	for to := range transitions[s] {
		out = append(out, to)
	}
	slices.Sort(out)
	return out
}

// ValidateTransition checks, without changing the order, whether actor may move
// it to target. Checks run in a fixed order and the first failure is returned:
//
//   - no declared edge: *errs.IllegalStateTransitionError (NoSuchEdge)
//   - actor lacks the edge permission: *errs.PermissionDeniedError (PermissionDenied)
//   - guard does not hold: *errs.InvalidTransitionError (GuardFailed)
func (o *Order) ValidateTransition(target State, actor kernel.Actor) error {
	if err := o.Validate(); err != nil {
		return err
	}
	if actor == nil {
		return errs.NewValueIsRequiredError("actor")
	}

	e, ok := transitions[o.state][target]
	if !ok {
		return errs.NewIllegalStateTransitionError(o.state.String(), target.String())
	}

	if !slices.ContainsFunc(e.permissions, actor.HasPermission) {
		return errs.NewPermissionDeniedError(string(e.permissions[0]))
	}

	if e.guard != nil {
		if msg := e.guard(o, target); msg != "" {
			return errs.NewInvalidTransitionError(o.state.String(), target.String(), msg)
		}
	}
	return nil
}

// TransitionTo validates and applies a transition, recording it in the order's
// history. The order is unchanged when an error is returned.
//
// Stock side effects of a transition are not applied here; OrderStateMachine
// coordinates them with the ledger.
func (o *Order) TransitionTo(target State, actor kernel.Actor) error {
	if err := o.ValidateTransition(target, actor); err != nil {
		return err
	}

	changed := OrderStateChanged{
		OrderID: o.id,
		From:    o.state,
		To:      target,
		ActorID: actor.ID(),
		At:      time.Now().UTC(),
	}
	o.state = target
	o.uncommittedTransitions = append(o.uncommittedTransitions, changed)
	o.Record(changed)
	o.touch()
	return nil
}

func guardMessage(to State, condition string) string {
	return fmt.Sprintf("Cannot transition Order to the %q state %s", to.String(), condition)
}

func checkoutComplete(o *Order, to State) string {
	switch {
	case o.ActiveItemCount() == 0:
		return guardMessage(to, "when it is empty")
	case o.shippingAddress == nil:
		return guardMessage(to, "without a shipping address")
	case o.shippingMethod == nil:
		return guardMessage(to, "without a ShippingMethod")
	}
	return ""
}

func allItemsCancelled(o *Order, to State) string {
	for _, l := range o.lines {
		for _, it := range l.items {
			if !it.cancelled {
				return guardMessage(to, "unless all OrderItems are cancelled")
			}
		}
	}
	return ""
}

func coveredBy(states ...PaymentState) func(*Order, State) string {
	label := "authorized"
	if len(states) == 1 && states[0] == PaymentStateSettled {
		label = "settled"
	}
	return func(o *Order, to State) string {
		if o.CoveredAmount(states...) < o.total {
			return guardMessage(to, fmt.Sprintf("when the total is not covered by %s Payments", label))
		}
		return ""
	}
}

func someItemsReached(stage FulfillmentState, label string) func(*Order, State) string {
	return func(o *Order, to State) string {
		matched, active := o.coverage(stage)
		if matched == 0 || matched == active {
			return guardMessage(to, fmt.Sprintf("unless some OrderItems are %s", label))
		}
		return ""
	}
}

func allItemsReached(stage FulfillmentState, label string) func(*Order, State) string {
	return func(o *Order, to State) string {
		matched, active := o.coverage(stage)
		if active == 0 || matched < active {
			return guardMessage(to, fmt.Sprintf("unless all OrderItems are %s", label))
		}
		return ""
	}
}
