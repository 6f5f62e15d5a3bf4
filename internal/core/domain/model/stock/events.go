package stock

import (
	"time"

	"fulfillment/internal/core/domain/model/kernel"
)

const StockMovementRecordedEvent = "stock.movement_recorded"

// StockMovementRecorded is raised for every ledger append. StockOnHand is the
// counter value after the movement was applied.
type StockMovementRecorded struct {
	VariantID   kernel.UUID
	SKU         string
	MovementID  kernel.UUID
	Type        MovementType
	Quantity    int
	OrderRef    *kernel.UUID
	StockOnHand int
	At          time.Time
}

func (e StockMovementRecorded) EventName() string        { return StockMovementRecordedEvent }
func (e StockMovementRecorded) AggregateID() kernel.UUID { return e.VariantID }
func (e StockMovementRecorded) OccurredAt() time.Time    { return e.At }
