package stock

import (
	"errors"
	"fmt"
	"strings"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var ErrVariantIsNotConstructed = errors.New("Variant must be created via NewVariant or RestoreVariant")

// Variant is the purchasable unit and the aggregate that owns its stock counter.
//
// stockOnHand is a cached projection of the variant's movements: every change to
// it goes through RecordMovement, which appends the movement that explains the
// change. Movements appended since the variant was loaded are kept until the
// repository persists them in the same transaction as the counter.
//
// When trackInventory is false, SALE, CANCELLATION and RETURN movements are still
// appended for audit but leave the counter untouched. ADJUSTMENT always applies.
type Variant struct {
	id             kernel.UUID
	sku            string
	price          int64
	currency       kernel.CurrencyCode
	stockOnHand    int
	trackInventory bool

	uncommitted []*Movement

	kernel.EventRecorder
	guard guard.ConstructorGuard
}

// NewVariant creates a variant with zero stock on hand. Initial stock is set
// afterwards with SetStockOnHand so that it is explained by an ADJUSTMENT.
func NewVariant(id kernel.UUID, sku string, price int64, currency kernel.CurrencyCode, trackInventory bool) (*Variant, error) {
	return RestoreVariant(id, sku, price, currency, 0, trackInventory)
}

// RestoreVariant rehydrates a persisted variant. stockOnHand may be negative when
// the variant was oversold.
func RestoreVariant(
	id kernel.UUID,
	sku string,
	price int64,
	currency kernel.CurrencyCode,
	stockOnHand int,
	trackInventory bool,
) (*Variant, error) {
	v := &Variant{
		stockOnHand:    stockOnHand,
		trackInventory: trackInventory,
		guard:          guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		v.setID(id),
		v.setSKU(sku),
		v.setPrice(price),
		v.setCurrency(currency),
	); err != nil {
		return nil, err
	}

	return v, nil
}

func (v *Variant) Validate() error {
	if v == nil {
		return ErrVariantIsNotConstructed
	}
	return v.guard.Validate(ErrVariantIsNotConstructed)
}

func (v *Variant) ID() kernel.UUID               { return v.id }
func (v *Variant) SKU() string                   { return v.sku }
func (v *Variant) Price() int64                  { return v.price }
func (v *Variant) Currency() kernel.CurrencyCode { return v.currency }
func (v *Variant) StockOnHand() int              { return v.stockOnHand }
func (v *Variant) TracksInventory() bool         { return v.trackInventory }

// RecordMovement appends a movement to the variant's ledger and applies it to the
// counter.
//
// Quantity signs are fixed per type: SALE is negative, CANCELLATION and RETURN are
// positive, ADJUSTMENT is any non-zero delta. SALE, CANCELLATION and RETURN must
// reference the order that caused them.
//
// Returns the appended movement, or an error if the arguments break the rules
// above. The ledger and the counter are unchanged on error.
func (v *Variant) RecordMovement(movementType MovementType, quantity int, orderRef *kernel.UUID) (*Movement, error) {
	if err := v.Validate(); err != nil {
		return nil, err
	}

	m, err := newMovement(v.id, movementType, quantity, orderRef)
	if err != nil {
		return nil, err
	}

	if movementType == Adjustment || v.trackInventory {
		v.stockOnHand += quantity
	}
	v.uncommitted = append(v.uncommitted, m)

	v.Record(StockMovementRecorded{
		VariantID:   v.id,
		SKU:         v.sku,
		MovementID:  m.id,
		Type:        m.movementType,
		Quantity:    m.quantity,
		OrderRef:    m.orderRef,
		StockOnHand: v.stockOnHand,
		At:          m.createdAt,
	})

	return m, nil
}

// SetStockOnHand sets the counter to an absolute value by recording an ADJUSTMENT
// for the difference. It returns a nil movement when the value is unchanged.
func (v *Variant) SetStockOnHand(newValue int) (*Movement, error) {
	if err := v.Validate(); err != nil {
		return nil, err
	}
	if newValue < 0 {
		return nil, errs.NewNegativeStockError(newValue)
	}

	delta := newValue - v.stockOnHand
	if delta == 0 {
		return nil, nil
	}
	return v.RecordMovement(Adjustment, delta, nil)
}

// UncommittedMovements returns the movements appended since the variant was loaded.
func (v *Variant) UncommittedMovements() []*Movement {
	out := make([]*Movement, len(v.uncommitted))
	copy(out, v.uncommitted)
	return out
}

// MarkMovementsCommitted is called by the repository once the pending movements
// are stored.
func (v *Variant) MarkMovementsCommitted() {
	v.uncommitted = nil
}

func (v *Variant) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	v.id = id
	return nil
}

func (v *Variant) setSKU(sku string) error {
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return errs.NewValueIsRequiredError("sku")
	}
	v.sku = sku
	return nil
}

func (v *Variant) setPrice(price int64) error {
	if price < 0 {
		return errs.NewValueIsInvalidErrorWithCause("price", fmt.Errorf("%d is negative", price))
	}
	v.price = price
	return nil
}

func (v *Variant) setCurrency(currency kernel.CurrencyCode) error {
	if err := currency.Validate(); err != nil {
		return err
	}
	v.currency = currency
	return nil
}
