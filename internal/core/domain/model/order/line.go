package order

import (
	"errors"
	"fmt"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var (
	ErrLineIsNotConstructed = errors.New("Line must be created via Order.AddItem or RestoreLine")
	ErrItemIsNotConstructed = errors.New("Item must be created via Order.AddItem or RestoreItem")
)

// Line is one product variant within an order. It holds one Item per unit so
// cancellation and fulfillment can address single units.
type Line struct {
	id        kernel.UUID
	variantID kernel.UUID
	unitPrice int64
	items     []*Item

	guard guard.ConstructorGuard
}

// Item is the unit of fulfillment and cancellation.
//
// sold is set when the order passes the sale point with the item active, and
// restocked once a CANCELLATION movement has returned it to stock. Together they
// keep an item from being restored twice.
type Item struct {
	id             kernel.UUID
	cancelled      bool
	fulfillmentRef *kernel.UUID
	sold           bool
	restocked      bool

	guard guard.ConstructorGuard
}

func newLine(variantID kernel.UUID, unitPrice int64) (*Line, error) {
	return RestoreLine(kernel.NewUUID(), variantID, unitPrice, nil)
}

// RestoreLine rehydrates a persisted line with its items in display order.
func RestoreLine(id, variantID kernel.UUID, unitPrice int64, items []*Item) (*Line, error) {
	var err error
	if vErr := id.Validate(); vErr != nil {
		err = errors.Join(err, vErr)
	}
	if vErr := variantID.Validate(); vErr != nil {
		err = errors.Join(err, vErr)
	}
	if unitPrice < 0 {
		err = errors.Join(err, errs.NewValueIsInvalidErrorWithCause("unitPrice", fmt.Errorf("%d is negative", unitPrice)))
	}
	for _, it := range items {
		if vErr := it.Validate(); vErr != nil {
			err = errors.Join(err, vErr)
		}
	}
	if err != nil {
		return nil, err
	}

	return &Line{
		id:        id,
		variantID: variantID,
		unitPrice: unitPrice,
		items:     append([]*Item(nil), items...),
		guard:     guard.NewConstructorGuard(),
	}, nil
}

// RestoreItem rehydrates a persisted item.
func RestoreItem(id kernel.UUID, cancelled bool, fulfillmentRef *kernel.UUID, sold, restocked bool) (*Item, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	if restocked && !(sold && cancelled) {
		return nil, errs.NewValueIsInvalidErrorWithCause("item", fmt.Errorf("item %s is restocked but was not sold and cancelled", id))
	}
	return &Item{
		id:             id,
		cancelled:      cancelled,
		fulfillmentRef: fulfillmentRef,
		sold:           sold,
		restocked:      restocked,
		guard:          guard.NewConstructorGuard(),
	}, nil
}

func (l *Line) Validate() error {
	if l == nil {
		return ErrLineIsNotConstructed
	}
	return l.guard.Validate(ErrLineIsNotConstructed)
}

func (l *Line) ID() kernel.UUID        { return l.id }
func (l *Line) VariantID() kernel.UUID { return l.variantID }
func (l *Line) UnitPrice() int64       { return l.unitPrice }

// Items returns the line's items in creation order.
func (l *Line) Items() []*Item {
	return append([]*Item(nil), l.items...)
}

// Quantity is the number of items, cancelled ones included.
func (l *Line) Quantity() int { return len(l.items) }

// ActiveQuantity is the number of items that are not cancelled.
func (l *Line) ActiveQuantity() int {
	n := 0
	for _, it := range l.items {
		if !it.cancelled {
			n++
		}
	}
	return n
}

// LineTotal is unitPrice times the active quantity.
func (l *Line) LineTotal() int64 {
	return l.unitPrice * int64(l.ActiveQuantity())
}

func (l *Line) addUnits(quantity int) {
	for range quantity {
		l.items = append(l.items, &Item{id: kernel.NewUUID(), guard: guard.NewConstructorGuard()})
	}
}

func (it *Item) Validate() error {
	if it == nil {
		return ErrItemIsNotConstructed
	}
	return it.guard.Validate(ErrItemIsNotConstructed)
}

func (it *Item) ID() kernel.UUID              { return it.id }
func (it *Item) IsCancelled() bool            { return it.cancelled }
func (it *Item) FulfillmentRef() *kernel.UUID { return it.fulfillmentRef }
func (it *Item) IsSold() bool                 { return it.sold }
func (it *Item) IsRestocked() bool            { return it.restocked }

func (it *Item) isFulfilled() bool { return it.fulfillmentRef != nil }

// isRestockable reports whether the item still holds stock that a cancellation
// must give back.
func (it *Item) isRestockable() bool {
	return it.sold && it.cancelled && !it.restocked && !it.isFulfilled()
}
