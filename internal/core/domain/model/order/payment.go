package order

import (
	"errors"
	"fmt"
	"maps"
	"strings"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var ErrPaymentIsNotConstructed = errors.New("Payment must be created via NewPayment or RestorePayment")

// PaymentState is the outcome of a payment attempt as reported by the payment
// method handler.
type PaymentState int

const (
	UnknownPaymentState PaymentState = iota
	PaymentStateCreated
	PaymentStateAuthorized
	PaymentStateSettled
	PaymentStateDeclined
	PaymentStateCancelled
)

func getPaymentStateStrings() map[PaymentState]string {
	return map[PaymentState]string{
		PaymentStateCreated:    "Created",
		PaymentStateAuthorized: "Authorized",
		PaymentStateSettled:    "Settled",
		PaymentStateDeclined:   "Declined",
		PaymentStateCancelled:  "Cancelled",
	}
}

func (s PaymentState) String() string {
	if str, ok := getPaymentStateStrings()[s]; ok {
		return str
	}
	return "Unknown"
}

func (s PaymentState) Validate() error {
	if _, ok := getPaymentStateStrings()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("payment state", fmt.Errorf("%d is not a valid payment state", s))
	}
	return nil
}

func ParsePaymentState(name string) (PaymentState, error) {
	for s, str := range getPaymentStateStrings() {
		if str == name {
			return s, nil
		}
	}
	return UnknownPaymentState, errs.NewValueIsInvalidErrorWithCause(
		"payment state", fmt.Errorf("%q is not a valid payment state", name))
}

// Payment records one payment attempt against an order. It is immutable: a
// correction is a new Payment.
type Payment struct {
	id            kernel.UUID
	method        string
	amount        int64
	state         PaymentState
	errorMessage  string
	transactionID string
	metadata      map[string]string
	createdAt     time.Time

	guard guard.ConstructorGuard
}

// NewPayment creates a payment from a handler result.
//
// Parameters:
//   - method: code of the payment method that handled the attempt
//   - amount: amount attempted, in the order's currency minor units
//   - state: the state the handler reported
//   - errorMessage: handler detail, usually set for Declined
//   - transactionID: the handler's reference, may be empty
//   - metadata: opaque key/value data returned by the handler
func NewPayment(
	method string,
	amount int64,
	state PaymentState,
	errorMessage string,
	transactionID string,
	metadata map[string]string,
) (*Payment, error) {
	return RestorePayment(kernel.NewUUID(), method, amount, state, errorMessage, transactionID, metadata, time.Now().UTC())
}

// RestorePayment rehydrates a persisted payment.
func RestorePayment(
	id kernel.UUID,
	method string,
	amount int64,
	state PaymentState,
	errorMessage string,
	transactionID string,
	metadata map[string]string,
	createdAt time.Time,
) (*Payment, error) {
	var err error
	if vErr := id.Validate(); vErr != nil {
		err = errors.Join(err, vErr)
	}
	if strings.TrimSpace(method) == "" {
		err = errors.Join(err, errs.NewValueIsRequiredError("payment method"))
	}
	if amount < 0 {
		err = errors.Join(err, errs.NewValueIsInvalidErrorWithCause("payment amount", fmt.Errorf("%d is negative", amount)))
	}
	if vErr := state.Validate(); vErr != nil {
		err = errors.Join(err, vErr)
	}
	if err != nil {
		return nil, err
	}

	return &Payment{
		id:            id,
		method:        strings.TrimSpace(method),
		amount:        amount,
		state:         state,
		errorMessage:  errorMessage,
		transactionID: transactionID,
		metadata:      maps.Clone(metadata),
		createdAt:     createdAt,
		guard:         guard.NewConstructorGuard(),
	}, nil
}

func (p *Payment) Validate() error {
	if p == nil {
		return ErrPaymentIsNotConstructed
	}
	return p.guard.Validate(ErrPaymentIsNotConstructed)
}

func (p *Payment) ID() kernel.UUID       { return p.id }
func (p *Payment) Method() string        { return p.method }
func (p *Payment) Amount() int64         { return p.amount }
func (p *Payment) State() PaymentState   { return p.state }
func (p *Payment) ErrorMessage() string  { return p.errorMessage }
func (p *Payment) TransactionID() string { return p.transactionID }
func (p *Payment) CreatedAt() time.Time  { return p.createdAt }

// Metadata returns a copy of the handler metadata.
func (p *Payment) Metadata() map[string]string {
	return maps.Clone(p.metadata)
}

// counts reports whether the payment contributes to coverage for any of states.
func (p *Payment) counts(states ...PaymentState) bool {
	for _, s := range states {
		if p.state == s {
			return true
		}
	}
	return false
}
