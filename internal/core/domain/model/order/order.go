package order

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var (
	// ErrOrderIsNotConstructed is returned when an Order instance was not created through
	// NewOrder or RestoreOrder.
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder or RestoreOrder")
)

// Order is a customer's purchase. It is the aggregate root for its lines, items,
// payments, adjustments and fulfillments.
//
// Order follows these invariants:
//   - total == subTotal + shippingTotal + adjustmentTotal after every mutation
//   - the four totals are derived and are never set directly
//   - state only changes through TransitionTo, along a declared edge whose guard holds
//   - payments are append-only
//   - every line has quantity == len(items)
//
// Monetary values are int64 minor units of the order currency.
type Order struct {
	id              kernel.UUID
	state           State
	currency        kernel.CurrencyCode
	customerRef     *kernel.UUID
	shippingAddress *Address
	shippingMethod  *ShippingMethod

	lines        []*Line
	payments     []*Payment
	adjustments  []Adjustment
	fulfillments []*Fulfillment

	subTotal        int64
	shippingTotal   int64
	adjustmentTotal int64
	total           int64

	// saleRecorded is set once SALE movements were recorded for the order.
	saleRecorded bool

	createdAt time.Time
	updatedAt time.Time

	uncommittedTransitions []OrderStateChanged

	kernel.EventRecorder
	guard guard.ConstructorGuard
}

// Snapshot is the persisted form of an Order, used by RestoreOrder.
type Snapshot struct {
	ID              kernel.UUID
	State           State
	Currency        kernel.CurrencyCode
	CustomerRef     *kernel.UUID
	ShippingAddress *Address
	ShippingMethod  *ShippingMethod
	Lines           []*Line
	Payments        []*Payment
	Adjustments     []Adjustment
	Fulfillments    []*Fulfillment
	SaleRecorded    bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// StockLine is a quantity of one variant the ledger has to move for an order.
type StockLine struct {
	VariantID kernel.UUID
	Quantity  int
}

// NewOrder creates an empty order in AddingItems. Orders are created implicitly
// by the first item add.
//
// Parameters:
//   - id: unique identifier for the order
//   - currency: currency of every amount in the order, taken from the first variant added
//
// Returns:
//   - *Order: the created order if all validations pass
//   - error: validation error if any parameter is invalid
func NewOrder(id kernel.UUID, currency kernel.CurrencyCode) (*Order, error) {
	now := time.Now().UTC()
	return RestoreOrder(Snapshot{
		ID:        id,
		State:     AddingItems,
		Currency:  currency,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

// RestoreOrder rehydrates an order from storage. Totals are recomputed from the
// restored lines, shipping method and adjustments.
func RestoreOrder(s Snapshot) (*Order, error) {
	var err error
	for _, vErr := range []error{s.ID.Validate(), s.State.Validate(), s.Currency.Validate()} {
		if vErr != nil {
			err = errors.Join(err, vErr)
		}
	}
	if s.CustomerRef != nil {
		if vErr := s.CustomerRef.Validate(); vErr != nil {
			err = errors.Join(err, vErr)
		}
	}
	for _, l := range s.Lines {
		if vErr := l.Validate(); vErr != nil {
			err = errors.Join(err, vErr)
		}
	}
	for _, p := range s.Payments {
		if vErr := p.Validate(); vErr != nil {
			err = errors.Join(err, vErr)
		}
	}
	for _, f := range s.Fulfillments {
		if vErr := f.Validate(); vErr != nil {
			err = errors.Join(err, vErr)
		}
	}
	if err != nil {
		return nil, err
	}

	o := &Order{
		id:              s.ID,
		state:           s.State,
		currency:        s.Currency,
		customerRef:     s.CustomerRef,
		shippingAddress: s.ShippingAddress,
		shippingMethod:  s.ShippingMethod,
		lines:           append([]*Line(nil), s.Lines...),
		payments:        append([]*Payment(nil), s.Payments...),
		adjustments:     append([]Adjustment(nil), s.Adjustments...),
		fulfillments:    append([]*Fulfillment(nil), s.Fulfillments...),
		saleRecorded:    s.SaleRecorded,
		createdAt:       s.CreatedAt,
		updatedAt:       s.UpdatedAt,
		guard:           guard.NewConstructorGuard(),
	}
	o.recalculate()
	return o, nil
}

// Validate ensures the Order instance was properly constructed.
func (o *Order) Validate() error {
	if o == nil {
		return ErrOrderIsNotConstructed
	}
	return o.guard.Validate(ErrOrderIsNotConstructed)
}

func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

func (o *Order) ID() kernel.UUID               { return o.id }
func (o *Order) State() State                  { return o.state }
func (o *Order) Currency() kernel.CurrencyCode { return o.currency }
func (o *Order) CustomerRef() *kernel.UUID     { return o.customerRef }
func (o *Order) ShippingAddress() *Address     { return o.shippingAddress }
func (o *Order) ShippingMethod() *ShippingMethod {
	return o.shippingMethod
}
func (o *Order) SubTotal() int64        { return o.subTotal }
func (o *Order) ShippingTotal() int64   { return o.shippingTotal }
func (o *Order) AdjustmentTotal() int64 { return o.adjustmentTotal }
func (o *Order) Total() int64           { return o.total }
func (o *Order) SaleRecorded() bool     { return o.saleRecorded }
func (o *Order) CreatedAt() time.Time   { return o.createdAt }
func (o *Order) UpdatedAt() time.Time   { return o.updatedAt }

// Lines returns the order lines in display order.
func (o *Order) Lines() []*Line { return append([]*Line(nil), o.lines...) }

// Payments returns the payments in the order they were added.
func (o *Order) Payments() []*Payment { return append([]*Payment(nil), o.payments...) }

func (o *Order) Adjustments() []Adjustment { return append([]Adjustment(nil), o.adjustments...) }

func (o *Order) Fulfillments() []*Fulfillment {
	return append([]*Fulfillment(nil), o.fulfillments...)
}

// ActiveItemCount is the number of items across all lines that are not cancelled.
func (o *Order) ActiveItemCount() int {
	n := 0
	for _, l := range o.lines {
		n += l.ActiveQuantity()
	}
	return n
}

// AddItem adds quantity units of a variant. Units of a variant already in the
// order are merged into its line and keep the line's original unit price.
//
// Only allowed in AddingItems.
func (o *Order) AddItem(variantID kernel.UUID, unitPrice int64, quantity int) (*Line, error) {
	if err := o.requireState("add items", AddingItems); err != nil {
		return nil, err
	}
	if quantity <= 0 {
		return nil, errs.NewValueIsOutOfRangeError("quantity", quantity, 1, "+inf")
	}

	line := o.lineForVariant(variantID)
	if line == nil {
		var err error
		if line, err = newLine(variantID, unitPrice); err != nil {
			return nil, err
		}
		o.lines = append(o.lines, line)
	}
	line.addUnits(quantity)

	o.touch()
	return line, nil
}

func (o *Order) SetCustomer(customerRef kernel.UUID) error {
	if err := o.requireState("set the customer", AddingItems); err != nil {
		return err
	}
	if err := customerRef.Validate(); err != nil {
		return err
	}
	o.customerRef = &customerRef
	o.touch()
	return nil
}

func (o *Order) SetShippingAddress(address Address) error {
	if err := o.requireState("set the shipping address", AddingItems); err != nil {
		return err
	}
	if err := address.Validate(); err != nil {
		return err
	}
	o.shippingAddress = &address
	o.touch()
	return nil
}

// SetShippingMethod applies a chosen shipping quote; its price becomes shippingTotal.
func (o *Order) SetShippingMethod(method ShippingMethod) error {
	if err := o.requireState("set the shipping method", AddingItems); err != nil {
		return err
	}
	if err := method.Validate(); err != nil {
		return err
	}
	o.shippingMethod = &method
	o.touch()
	return nil
}

// ReplaceAdjustments replaces the whole adjustment set and recomputes the totals.
// It fails, leaving the order untouched, if the resulting total would be negative.
//
// Only allowed while the order can still change: AddingItems and ArrangingPayment.
func (o *Order) ReplaceAdjustments(adjustments []Adjustment) error {
	if err := o.requireState("apply adjustments", AddingItems, ArrangingPayment); err != nil {
		return err
	}

	var sum int64
	for _, a := range adjustments {
		if err := a.Validate(); err != nil {
			return err
		}
		sum += a.amount
	}
	if total := o.subTotal + o.shippingTotal + sum; total < 0 {
		return errs.NewValueIsInvalidErrorWithCause(
			"adjustments", fmt.Errorf("order total would be %d, adjustments cannot make it negative", total))
	}

	o.adjustments = append([]Adjustment(nil), adjustments...)
	o.touch()
	return nil
}

// ValidateAddPayment reports whether the order currently accepts new payment
// attempts.
func (o *Order) ValidateAddPayment() error {
	return o.requireState("add payments", ArrangingPayment)
}

// AddPayment appends a payment attempt in any state. The payment history is
// append-only: an attempt that completes after the order left ArrangingPayment
// is still recorded, it just no longer moves the order.
func (o *Order) AddPayment(p *Payment) error {
	if err := p.Validate(); err != nil {
		return err
	}

	o.payments = append(o.payments, p)
	o.Record(PaymentAdded{
		OrderID:   o.id,
		PaymentID: p.id,
		Method:    p.method,
		Amount:    p.amount,
		State:     p.state,
		At:        p.createdAt,
	})
	o.touch()
	return nil
}

// CoveredAmount sums the payments in any of the given states.
func (o *Order) CoveredAmount(states ...PaymentState) int64 {
	var sum int64
	for _, p := range o.payments {
		if p.counts(states...) {
			sum += p.amount
		}
	}
	return sum
}

// OutstandingAmount is the part of the total not yet covered by authorized or
// settled payments. It is never negative.
func (o *Order) OutstandingAmount() int64 {
	return max(o.total-o.CoveredAmount(PaymentStateAuthorized, PaymentStateSettled), 0)
}

// CancelItems marks the given items cancelled. Already cancelled items are
// skipped. Nothing changes if any id fails.
//
// Stock for items cancelled after the sale point is given back by the caller
// through RestockQuantities and MarkRestocked. Fulfilled items have left the
// warehouse, so cancelling them never restores stock.
func (o *Order) CancelItems(itemIDs []kernel.UUID) error {
	if o.state.IsTerminal() {
		return o.stateError("cancel items")
	}
	if len(itemIDs) == 0 {
		return errs.NewValueIsRequiredError("itemIds")
	}

	items := make([]*Item, 0, len(itemIDs))
	for _, id := range itemIDs {
		it := o.item(id)
		if it == nil {
			return errs.NewObjectNotFoundError("orderItem", id)
		}
		items = append(items, it)
	}

	for _, it := range items {
		it.cancelled = true
	}
	o.touch()
	return nil
}

// CancelAllItems cancels every item that is still active, fulfilled or not.
func (o *Order) CancelAllItems() error {
	var ids []kernel.UUID
	for _, l := range o.lines {
		for _, it := range l.items {
			if !it.cancelled {
				ids = append(ids, it.id)
			}
		}
	}
	if len(ids) == 0 {
		return nil
	}
	return o.CancelItems(ids)
}

// CreateFulfillment groups unfulfilled, active items into a new Pending
// fulfillment. Only possible once stock has been sold to the order.
func (o *Order) CreateFulfillment(itemIDs []kernel.UUID, method, trackingCode string) (*Fulfillment, error) {
	if !o.saleRecorded || o.state.IsTerminal() {
		return nil, o.stateError("create a fulfillment")
	}
	if len(itemIDs) == 0 {
		return nil, errs.NewValueIsRequiredError("itemIds")
	}

	items := make([]*Item, 0, len(itemIDs))
	for _, id := range itemIDs {
		it := o.item(id)
		if it == nil {
			return nil, errs.NewObjectNotFoundError("orderItem", id)
		}
		if it.cancelled || it.isFulfilled() || slices.Contains(items, it) {
			return nil, errs.NewValueIsInvalidErrorWithCause(
				"orderItem", fmt.Errorf("item %s is cancelled, already fulfilled or listed twice", id))
		}
		items = append(items, it)
	}

	f, err := newFulfillment(method, trackingCode)
	if err != nil {
		return nil, err
	}
	for _, it := range items {
		ref := f.id
		it.fulfillmentRef = &ref
	}
	o.fulfillments = append(o.fulfillments, f)
	o.touch()
	return f, nil
}

// TransitionFulfillment moves a fulfillment forward to Shipped or Delivered.
func (o *Order) TransitionFulfillment(fulfillmentID kernel.UUID, target FulfillmentState) error {
	f := o.fulfillment(fulfillmentID)
	if f == nil {
		return errs.NewObjectNotFoundError("fulfillment", fulfillmentID)
	}
	if err := f.advance(target); err != nil {
		return err
	}
	o.touch()
	return nil
}

// FulfillmentTarget returns the order state matching the current fulfillment
// coverage of active items, furthest stage first. ok is false when no item is
// fulfilled.
func (o *Order) FulfillmentTarget() (State, bool) {
	stages := []struct {
		stage        FulfillmentState
		all, partial State
	}{
		{FulfillmentDelivered, Delivered, PartiallyDelivered},
		{FulfillmentShipped, Shipped, PartiallyShipped},
		{FulfillmentPending, Fulfilled, PartiallyFulfilled},
	}
	for _, s := range stages {
		matched, active := o.coverage(s.stage)
		switch {
		case active > 0 && matched == active:
			return s.all, true
		case matched > 0:
			return s.partial, true
		}
	}
	return Unknown, false
}

// IsSalePoint reports whether entering target commits stock to the order.
func (o *Order) IsSalePoint(target State) bool {
	return target.isPaymentState() && !o.saleRecorded
}

// SaleQuantities returns, per line, the active quantity to record as SALE.
func (o *Order) SaleQuantities() []StockLine {
	out := make([]StockLine, 0, len(o.lines))
	for _, l := range o.lines {
		if q := l.ActiveQuantity(); q > 0 {
			out = append(out, StockLine{VariantID: l.variantID, Quantity: q})
		}
	}
	return out
}

// MarkSaleRecorded flags active items as sold once their SALE movements exist.
func (o *Order) MarkSaleRecorded() {
	for _, l := range o.lines {
		for _, it := range l.items {
			if !it.cancelled {
				it.sold = true
			}
		}
	}
	o.saleRecorded = true
	o.touch()
}

// RestockQuantities returns, per line, the number of sold items that were
// cancelled before fulfillment and have not been returned to stock yet.
func (o *Order) RestockQuantities() []StockLine {
	var out []StockLine
	for _, l := range o.lines {
		n := 0
		for _, it := range l.items {
			if it.isRestockable() {
				n++
			}
		}
		if n > 0 {
			out = append(out, StockLine{VariantID: l.variantID, Quantity: n})
		}
	}
	return out
}

// MarkRestocked flags the items counted by RestockQuantities as restored.
func (o *Order) MarkRestocked() {
	for _, l := range o.lines {
		for _, it := range l.items {
			if it.isRestockable() {
				it.restocked = true
			}
		}
	}
	o.touch()
}

// UncommittedTransitions returns the transitions made since the order was loaded.
func (o *Order) UncommittedTransitions() []OrderStateChanged {
	return append([]OrderStateChanged(nil), o.uncommittedTransitions...)
}

// MarkTransitionsCommitted is called by the repository once the history is stored.
func (o *Order) MarkTransitionsCommitted() {
	o.uncommittedTransitions = nil
}

func (o *Order) recalculate() {
	var sub int64
	for _, l := range o.lines {
		sub += l.LineTotal()
	}
	var shipping int64
	if o.shippingMethod != nil {
		shipping = o.shippingMethod.price
	}
	var adj int64
	for _, a := range o.adjustments {
		adj += a.amount
	}

	o.subTotal = sub
	o.shippingTotal = shipping
	o.adjustmentTotal = adj
	o.total = sub + shipping + adj
}

// touch recomputes the totals and the modification time after a mutation.
func (o *Order) touch() {
	o.recalculate()
	o.updatedAt = time.Now().UTC()
}

func (o *Order) requireState(action string, allowed ...State) error {
	if slices.Contains(allowed, o.state) {
		return nil
	}
	return o.stateError(action)
}

func (o *Order) stateError(action string) error {
	return errs.NewValueIsInvalidErrorWithCause(
		"order state", fmt.Errorf("cannot %s while the order is in the %q state", action, o.state))
}

func (o *Order) lineForVariant(variantID kernel.UUID) *Line {
	for _, l := range o.lines {
		if l.variantID.IsEqual(variantID) {
			return l
		}
	}
	return nil
}

func (o *Order) item(id kernel.UUID) *Item {
	for _, l := range o.lines {
		for _, it := range l.items {
			if it.id.IsEqual(id) {
				return it
			}
		}
	}
	return nil
}

func (o *Order) fulfillment(id kernel.UUID) *Fulfillment {
	for _, f := range o.fulfillments {
		if f.id.IsEqual(id) {
			return f
		}
	}
	return nil
}

// coverage counts active items whose fulfillment reached at least stage.
func (o *Order) coverage(stage FulfillmentState) (matched, active int) {
	for _, l := range o.lines {
		for _, it := range l.items {
			if it.cancelled {
				continue
			}
			active++
			if it.fulfillmentRef == nil {
				continue
			}
			if f := o.fulfillment(*it.fulfillmentRef); f != nil && f.state >= stage {
				matched++
			}
		}
	}
	return matched, active
}
