// Package stockrepo persists variants and their movement ledger. A variant's
// stock_on_hand and the movements that explain it are always written together.
package stockrepo

import (
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/stock"

	"github.com/google/uuid"
)

type VariantDTO struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	SKU            string    `gorm:"type:varchar(128);not null;uniqueIndex"`
	Price          int64     `gorm:"not null"`
	Currency       string    `gorm:"type:char(3);not null"`
	StockOnHand    int       `gorm:"not null"`
	TrackInventory bool      `gorm:"not null"`
}

func (VariantDTO) TableName() string {
	return "variants"
}

// StockMovementDTO is one ledger row. Sequence is assigned by the database and
// orders the movements of a variant; IdempotencyKey is only set for SALE rows,
// so the unique index rejects a second sale of the same variant to an order.
type StockMovementDTO struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Sequence       int64      `gorm:"autoIncrement;not null;uniqueIndex;index:idx_stock_movements_variant_sequence,priority:2"`
	VariantID      uuid.UUID  `gorm:"type:uuid;not null;index:idx_stock_movements_variant_sequence,priority:1"`
	Type           string     `gorm:"type:varchar(16);not null"`
	Quantity       int        `gorm:"not null"`
	OrderRef       *uuid.UUID `gorm:"type:uuid;index"`
	IdempotencyKey *string    `gorm:"type:varchar(128);uniqueIndex"`
	CreatedAt      time.Time  `gorm:"not null"`
}

func (StockMovementDTO) TableName() string {
	return "stock_movements"
}

// Models lists every table of the package, for AutoMigrate.
func Models() []any {
	return []any{&VariantDTO{}, &StockMovementDTO{}}
}

func fromDomain(v *stock.Variant) VariantDTO {
	return VariantDTO{
		ID:             v.ID().Bytes(),
		SKU:            v.SKU(),
		Price:          v.Price(),
		Currency:       v.Currency().String(),
		StockOnHand:    v.StockOnHand(),
		TrackInventory: v.TracksInventory(),
	}
}

func toDomain(dto VariantDTO) (*stock.Variant, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	return stock.RestoreVariant(id, dto.SKU, dto.Price, kernel.CurrencyCode(dto.Currency), dto.StockOnHand, dto.TrackInventory)
}

func movementFromDomain(m *stock.Movement) StockMovementDTO {
	dto := StockMovementDTO{
		ID:        m.ID().Bytes(),
		VariantID: m.VariantID().Bytes(),
		Type:      m.Type().String(),
		Quantity:  m.Quantity(),
		CreatedAt: m.CreatedAt(),
	}
	if ref := m.OrderRef(); ref != nil {
		raw := ref.Bytes()
		dto.OrderRef = &raw
	}
	if key := m.IdempotencyKey(); key != "" {
		dto.IdempotencyKey = &key
	}
	return dto
}

// MovementToDomain converts a ledger row, as read by the queries package.
func MovementToDomain(dto StockMovementDTO) (*stock.Movement, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	variantID, err := kernel.UUIDFromBytes(dto.VariantID[:])
	if err != nil {
		return nil, err
	}
	movementType, err := stock.ParseMovementType(dto.Type)
	if err != nil {
		return nil, err
	}

	var orderRef *kernel.UUID
	if dto.OrderRef != nil {
		ref, refErr := kernel.UUIDFromBytes(dto.OrderRef[:])
		if refErr != nil {
			return nil, refErr
		}
		orderRef = &ref
	}

	var key string
	if dto.IdempotencyKey != nil {
		key = *dto.IdempotencyKey
	}

	return stock.RestoreMovement(id, variantID, movementType, dto.Quantity, orderRef, key, dto.CreatedAt, dto.Sequence)
}
