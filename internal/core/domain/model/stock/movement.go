package stock

import (
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var ErrMovementIsNotConstructed = errors.New("Movement must be created via Variant.RecordMovement or RestoreMovement")

// Movement is an immutable ledger entry. It has no setters: once created it is
// only ever read back.
type Movement struct {
	id             kernel.UUID
	variantID      kernel.UUID
	movementType   MovementType
	quantity       int
	orderRef       *kernel.UUID
	idempotencyKey string
	createdAt      time.Time

	// sequence is assigned by storage on append and orders movements of a variant
	// by commit; it is zero until the movement is persisted.
	sequence int64

	guard guard.ConstructorGuard
}

// RestoreMovement rehydrates a persisted movement.
func RestoreMovement(
	id, variantID kernel.UUID,
	movementType MovementType,
	quantity int,
	orderRef *kernel.UUID,
	idempotencyKey string,
	createdAt time.Time,
	sequence int64,
) (*Movement, error) {
	m := &Movement{
		id:             id,
		variantID:      variantID,
		movementType:   movementType,
		quantity:       quantity,
		orderRef:       orderRef,
		idempotencyKey: idempotencyKey,
		createdAt:      createdAt,
		sequence:       sequence,
		guard:          guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		id.Validate(),
		variantID.Validate(),
		movementType.validateQuantity(quantity),
		validateOrderRef(movementType, orderRef),
	); err != nil {
		return nil, err
	}

	return m, nil
}

func newMovement(variantID kernel.UUID, movementType MovementType, quantity int, orderRef *kernel.UUID) (*Movement, error) {
	if err := errors.Join(
		movementType.validateQuantity(quantity),
		validateOrderRef(movementType, orderRef),
	); err != nil {
		return nil, err
	}

	m := &Movement{
		id:           kernel.NewUUID(),
		variantID:    variantID,
		movementType: movementType,
		quantity:     quantity,
		orderRef:     orderRef,
		createdAt:    time.Now().UTC(),
		guard:        guard.NewConstructorGuard(),
	}
	if movementType == Sale {
		m.idempotencyKey = SaleIdempotencyKey(*orderRef, variantID)
	}
	return m, nil
}

// SaleIdempotencyKey is the unique key of the single SALE movement an order may
// record against a variant.
func SaleIdempotencyKey(orderID, variantID kernel.UUID) string {
	return orderID.String() + ":sale:" + variantID.String()
}

func validateOrderRef(movementType MovementType, orderRef *kernel.UUID) error {
	if orderRef == nil {
		if movementType.requiresOrder() {
			return errs.NewValueIsRequiredError("orderRef")
		}
		return nil
	}
	return orderRef.Validate()
}

func (m *Movement) Validate() error {
	if m == nil {
		return ErrMovementIsNotConstructed
	}
	return m.guard.Validate(ErrMovementIsNotConstructed)
}

func (m *Movement) ID() kernel.UUID        { return m.id }
func (m *Movement) VariantID() kernel.UUID { return m.variantID }
func (m *Movement) Type() MovementType     { return m.movementType }
func (m *Movement) Quantity() int          { return m.quantity }
func (m *Movement) OrderRef() *kernel.UUID { return m.orderRef }
func (m *Movement) IdempotencyKey() string { return m.idempotencyKey }
func (m *Movement) CreatedAt() time.Time   { return m.createdAt }
func (m *Movement) Sequence() int64        { return m.sequence }
