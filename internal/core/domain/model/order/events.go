package order

import (
	"time"

	"fulfillment/internal/core/domain/model/kernel"
)

const (
	OrderStateChangedEvent = "order.state_changed"
	PaymentAddedEvent      = "order.payment_added"
)

// OrderStateChanged is raised by every committed transition. It doubles as the
// order's state history record.
type OrderStateChanged struct {
	OrderID kernel.UUID
	From    State
	To      State
	ActorID string
	At      time.Time
}

func (e OrderStateChanged) EventName() string        { return OrderStateChangedEvent }
func (e OrderStateChanged) AggregateID() kernel.UUID { return e.OrderID }
func (e OrderStateChanged) OccurredAt() time.Time    { return e.At }

// PaymentAdded is raised when a payment attempt is recorded, declined ones included.
type PaymentAdded struct {
	OrderID   kernel.UUID
	PaymentID kernel.UUID
	Method    string
	Amount    int64
	State     PaymentState
	At        time.Time
}

func (e PaymentAdded) EventName() string        { return PaymentAddedEvent }
func (e PaymentAdded) AggregateID() kernel.UUID { return e.OrderID }
func (e PaymentAdded) OccurredAt() time.Time    { return e.At }
