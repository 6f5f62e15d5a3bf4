package services

import (
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/stock"
	"fulfillment/internal/pkg/errs"
)

// Variants holds the loaded variants an operation may move stock for, keyed by id.
type Variants map[kernel.UUID]*stock.Variant

// OrderStateMachine is a domain service that executes order transitions together
// with the stock movements they cause.
//
// Key responsibilities:
//   - Validating a transition before anything is mutated
//   - Recording one SALE per line when the order first enters a payment state
//   - Recording CANCELLATION movements for sold items that are cancelled before fulfillment
//   - Advancing orders automatically when payments or fulfillments cover them
//
// The service only mutates the aggregates it is given. Persisting the order and
// the variants in one transaction is the caller's job, so that the state write
// and its movements commit together or not at all.
//
// Example usage:
//
//	sm := NewOrderStateMachine()
//	ids := sm.StockAffected(o, order.PaymentSettled)
//	// lock and load the variants for ids
//	movements, err := sm.Transition(o, order.PaymentSettled, actor, variants)
type OrderStateMachine struct{}

func NewOrderStateMachine() OrderStateMachine {
	return OrderStateMachine{}
}

// StockAffected returns the ids of the variants whose stock changes when o moves
// to target. The caller must lock and load them before calling Transition.
func (m OrderStateMachine) StockAffected(o *order.Order, target order.State) []kernel.UUID {
	return variantIDs(m.stockLines(o, target))
}

// StockAffectedByCancellation returns the variants CancelItems may restock.
func (m OrderStateMachine) StockAffectedByCancellation(o *order.Order) []kernel.UUID {
	if !o.SaleRecorded() {
		return nil
	}
	ids := make([]kernel.UUID, 0, len(o.Lines()))
	for _, l := range o.Lines() {
		ids = append(ids, l.VariantID())
	}
	return ids
}

// Transition moves o to target on behalf of actor and applies the stock side
// effects of the move to variants.
//
// Parameters:
//   - o: the order, loaded under its lock
//   - target: the requested state
//   - actor: whoever requested the transition
//   - variants: the variants named by StockAffected
//
// Returns:
//   - []*stock.Movement: movements recorded on the variants, to be persisted with the order
//   - error: a NoSuchEdge, PermissionDenied or GuardFailed error before anything changes,
//     or ObjectNotFound if a needed variant was not supplied
func (m OrderStateMachine) Transition(
	o *order.Order,
	target order.State,
	actor kernel.Actor,
	variants Variants,
) ([]*stock.Movement, error) {
	if err := o.ValidateTransition(target, actor); err != nil {
		return nil, err
	}

	sale := o.IsSalePoint(target)
	lines := m.stockLines(o, target)
	if err := requireVariants(lines, variants); err != nil {
		return nil, err
	}

	if err := o.TransitionTo(target, actor); err != nil {
		return nil, err
	}

	orderID := o.ID()
	var movements []*stock.Movement
	for _, l := range lines {
		movementType, quantity := stock.Cancellation, l.Quantity
		if sale {
			movementType, quantity = stock.Sale, -l.Quantity
		}
		mv, err := variants[l.VariantID].RecordMovement(movementType, quantity, &orderID)
		if err != nil {
			return nil, err
		}
		movements = append(movements, mv)
	}

	switch {
	case sale:
		o.MarkSaleRecorded()
	case target == order.Cancelled:
		o.MarkRestocked()
	}
	return movements, nil
}

// CancelItems cancels items of o. Once the order is past the sale point the
// cancelled items go straight back to stock.
func (m OrderStateMachine) CancelItems(o *order.Order, itemIDs []kernel.UUID, variants Variants) ([]*stock.Movement, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}
	if o.SaleRecorded() {
		if err := requireVariants(lineVariants(o), variants); err != nil {
			return nil, err
		}
	}
	if err := o.CancelItems(itemIDs); err != nil {
		return nil, err
	}
	return m.restock(o, variants)
}

// CancelOrder cancels every remaining item and moves the order to Cancelled.
// Only sold items that were never fulfilled go back to stock.
func (m OrderStateMachine) CancelOrder(o *order.Order, actor kernel.Actor, variants Variants) ([]*stock.Movement, error) {
	// Items are not cancelled yet, so only a failing guard is expected here.
	guardErr := o.ValidateTransition(order.Cancelled, actor)
	var invalid *errs.InvalidTransitionError
	if guardErr != nil && !errors.As(guardErr, &invalid) {
		return nil, guardErr
	}

	var ids []kernel.UUID
	for _, l := range o.Lines() {
		for _, it := range l.Items() {
			if !it.IsCancelled() {
				ids = append(ids, it.ID())
			}
		}
	}

	var movements []*stock.Movement
	if len(ids) > 0 {
		cancelled, err := m.CancelItems(o, ids, variants)
		if err != nil {
			return nil, err
		}
		movements = cancelled
	}

	transitioned, err := m.Transition(o, order.Cancelled, actor, variants)
	if err != nil {
		return nil, err
	}
	return append(movements, transitioned...), nil
}

// AdvanceAfterPayment moves an order in ArrangingPayment to PaymentSettled when
// settled payments cover the total, or else to PaymentAuthorized when authorized
// and settled payments do. It reports whether a transition happened.
func (m OrderStateMachine) AdvanceAfterPayment(o *order.Order, variants Variants) ([]*stock.Movement, bool, error) {
	if o.State() != order.ArrangingPayment {
		return nil, false, nil
	}

	var target order.State
	switch {
	case o.CoveredAmount(order.PaymentStateSettled) >= o.Total():
		target = order.PaymentSettled
	case o.CoveredAmount(order.PaymentStateAuthorized, order.PaymentStateSettled) >= o.Total():
		target = order.PaymentAuthorized
	default:
		return nil, false, nil
	}

	movements, err := m.Transition(o, target, kernel.SystemActor(), variants)
	if err != nil {
		return nil, false, err
	}
	return movements, true, nil
}

// AdvanceAfterFulfillment moves the order to the state matching its fulfillment
// coverage when an edge to it exists. It reports whether a transition happened.
func (m OrderStateMachine) AdvanceAfterFulfillment(o *order.Order) (bool, error) {
	target, ok := o.FulfillmentTarget()
	if !ok || target == o.State() || !order.HasEdge(o.State(), target) {
		return false, nil
	}
	if _, err := m.Transition(o, target, kernel.SystemActor(), nil); err != nil {
		return false, err
	}
	return true, nil
}

func (m OrderStateMachine) stockLines(o *order.Order, target order.State) []order.StockLine {
	switch {
	case o.IsSalePoint(target):
		return o.SaleQuantities()
	case target == order.Cancelled:
		return o.RestockQuantities()
	}
	return nil
}

func (m OrderStateMachine) restock(o *order.Order, variants Variants) ([]*stock.Movement, error) {
	lines := o.RestockQuantities()
	if len(lines) == 0 {
		return nil, nil
	}
	if err := requireVariants(lines, variants); err != nil {
		return nil, err
	}

	orderID := o.ID()
	movements := make([]*stock.Movement, 0, len(lines))
	for _, l := range lines {
		mv, err := variants[l.VariantID].RecordMovement(stock.Cancellation, l.Quantity, &orderID)
		if err != nil {
			return nil, err
		}
		movements = append(movements, mv)
	}
	o.MarkRestocked()
	return movements, nil
}

func requireVariants(lines []order.StockLine, variants Variants) error {
	for _, l := range lines {
		if err := variants[l.VariantID].Validate(); err != nil {
			return errs.NewObjectNotFoundErrorWithCause("variant", l.VariantID, err)
		}
	}
	return nil
}

func lineVariants(o *order.Order) []order.StockLine {
	lines := make([]order.StockLine, 0, len(o.Lines()))
	for _, l := range o.Lines() {
		lines = append(lines, order.StockLine{VariantID: l.VariantID(), Quantity: l.Quantity()})
	}
	return lines
}

func variantIDs(lines []order.StockLine) []kernel.UUID {
	ids := make([]kernel.UUID, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.VariantID)
	}
	return ids
}
