// Package queries contains the read side: handlers that read straight from the
// database and return read models shaped for the caller.
package queries

import (
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/guard"
)

var ErrGetOrderQueryIsNotConstructed = errors.New(
	"GetOrderQuery must be created via NewGetOrderQuery constructor",
)

// GetOrderQuery reads one order with its lines, payments, adjustments,
// fulfillments and transition history.
type GetOrderQuery struct {
	orderID kernel.UUID

	guard guard.ConstructorGuard
}

func NewGetOrderQuery(orderID kernel.UUID) (GetOrderQuery, error) {
	if err := orderID.Validate(); err != nil {
		return GetOrderQuery{}, err
	}
	return GetOrderQuery{orderID: orderID, guard: guard.NewConstructorGuard()}, nil
}

func (q GetOrderQuery) OrderID() kernel.UUID { return q.orderID }

func (q GetOrderQuery) Validate() error {
	return q.guard.Validate(ErrGetOrderQueryIsNotConstructed)
}

// GetOrderQueryResponse is the order read model. Amounts are minor units of
// Currency.
type GetOrderQueryResponse struct {
	ID              kernel.UUID
	State           string
	Currency        string
	CustomerRef     *kernel.UUID
	ShippingAddress *AddressView
	ShippingMethod  *ShippingMethodView
	SubTotal        int64
	ShippingTotal   int64
	AdjustmentTotal int64
	Total           int64
	Lines           []LineView
	Payments        []PaymentView
	Adjustments     []AdjustmentView
	Fulfillments    []FulfillmentView
	History         []TransitionView
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type AddressView struct {
	FullName    string
	StreetLine1 string
	StreetLine2 string
	City        string
	PostalCode  string
	CountryCode string
}

type ShippingMethodView struct {
	Code  string
	Price int64
}

type LineView struct {
	ID        kernel.UUID
	VariantID kernel.UUID
	UnitPrice int64
	Quantity  int
	Items     []ItemView
}

type ItemView struct {
	ID            kernel.UUID
	Cancelled     bool
	FulfillmentID *kernel.UUID
}

type PaymentView struct {
	ID            kernel.UUID
	Method        string
	Amount        int64
	State         string
	ErrorMessage  string
	TransactionID string
	Metadata      map[string]string
	CreatedAt     time.Time
}

type AdjustmentView struct {
	SourceID    string
	Description string
	Amount      int64
}

type FulfillmentView struct {
	ID           kernel.UUID
	Method       string
	TrackingCode string
	State        string
	CreatedAt    time.Time
}

// TransitionView is one committed state change, oldest first.
type TransitionView struct {
	From    string
	To      string
	ActorID string
	At      time.Time
}
