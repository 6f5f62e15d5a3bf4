package order

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var ErrFulfillmentIsNotConstructed = errors.New("Fulfillment must be created via Order.CreateFulfillment or RestoreFulfillment")

// FulfillmentState tracks a shipment: Pending -> Shipped -> Delivered.
type FulfillmentState int

const (
	UnknownFulfillmentState FulfillmentState = iota
	FulfillmentPending
	FulfillmentShipped
	FulfillmentDelivered
)

func getFulfillmentStateStrings() map[FulfillmentState]string {
	return map[FulfillmentState]string{
		FulfillmentPending:   "Pending",
		FulfillmentShipped:   "Shipped",
		FulfillmentDelivered: "Delivered",
	}
}

func (s FulfillmentState) String() string {
	if str, ok := getFulfillmentStateStrings()[s]; ok {
		return str
	}
	return "Unknown"
}

func (s FulfillmentState) Validate() error {
	if _, ok := getFulfillmentStateStrings()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("fulfillment state", fmt.Errorf("%d is not a valid fulfillment state", s))
	}
	return nil
}

func ParseFulfillmentState(name string) (FulfillmentState, error) {
	for s, str := range getFulfillmentStateStrings() {
		if str == name {
			return s, nil
		}
	}
	return UnknownFulfillmentState, errs.NewValueIsInvalidErrorWithCause(
		"fulfillment state", fmt.Errorf("%q is not a valid fulfillment state", name))
}

// Fulfillment is a shipment of one or more OrderItems. Items point at it through
// their fulfillmentRef.
type Fulfillment struct {
	id           kernel.UUID
	method       string
	trackingCode string
	state        FulfillmentState
	createdAt    time.Time

	guard guard.ConstructorGuard
}

func newFulfillment(method, trackingCode string) (*Fulfillment, error) {
	return RestoreFulfillment(kernel.NewUUID(), method, trackingCode, FulfillmentPending, time.Now().UTC())
}

// RestoreFulfillment rehydrates a persisted fulfillment.
func RestoreFulfillment(id kernel.UUID, method, trackingCode string, state FulfillmentState, createdAt time.Time) (*Fulfillment, error) {
	method = strings.TrimSpace(method)
	var err error
	if vErr := id.Validate(); vErr != nil {
		err = errors.Join(err, vErr)
	}
	if method == "" {
		err = errors.Join(err, errs.NewValueIsRequiredError("fulfillment method"))
	}
	if vErr := state.Validate(); vErr != nil {
		err = errors.Join(err, vErr)
	}
	if err != nil {
		return nil, err
	}

	return &Fulfillment{
		id:           id,
		method:       method,
		trackingCode: strings.TrimSpace(trackingCode),
		state:        state,
		createdAt:    createdAt,
		guard:        guard.NewConstructorGuard(),
	}, nil
}

func (f *Fulfillment) Validate() error {
	if f == nil {
		return ErrFulfillmentIsNotConstructed
	}
	return f.guard.Validate(ErrFulfillmentIsNotConstructed)
}

func (f *Fulfillment) ID() kernel.UUID         { return f.id }
func (f *Fulfillment) Method() string          { return f.method }
func (f *Fulfillment) TrackingCode() string    { return f.trackingCode }
func (f *Fulfillment) State() FulfillmentState { return f.state }
func (f *Fulfillment) CreatedAt() time.Time    { return f.createdAt }

// advance moves the fulfillment forward; it never moves back.
func (f *Fulfillment) advance(target FulfillmentState) error {
	if err := target.Validate(); err != nil {
		return err
	}
	if target <= f.state {
		return errs.NewValueIsInvalidErrorWithCause(
			"fulfillment state",
			fmt.Errorf("cannot move fulfillment from %q to %q", f.state, target),
		)
	}
	f.state = target
	return nil
}
